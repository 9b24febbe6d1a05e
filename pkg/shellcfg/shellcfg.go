// Package shellcfg mutates the user's shell startup file through marked
// blocks: a sentinel comment line followed by exactly one directive line.
// The marker makes every edit idempotent and cleanly reversible without
// disturbing unrelated content.
package shellcfg

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/halfdome/devkit/pkg/errors"
	"github.com/halfdome/devkit/pkg/logging"
	"github.com/halfdome/devkit/pkg/usercontext"
)

// Mutator performs marked-block edits, keeping written files owned by the
// real user even when the process is elevated.
type Mutator struct {
	user   *usercontext.Context
	logger zerolog.Logger
}

// New returns a Mutator that attributes created files to the given user.
func New(user *usercontext.Context) *Mutator {
	return &Mutator{
		user:   user,
		logger: logging.GetLogger("shellcfg"),
	}
}

// AddMarkedBlock inserts payload preceded by the marker line, creating the
// file if needed. If the marker is already present the file is left
// untouched; re-running never duplicates the block.
func (m *Mutator) AddMarkedBlock(file, marker, payload string) error {
	content, err := readOrEmpty(file)
	if err != nil {
		return err
	}

	if hasLine(content, marker) {
		m.logger.Debug().Str("file", file).Str("marker", marker).Msg("Marker already present, skipping")
		return nil
	}

	var b strings.Builder
	b.WriteString(content)
	if content != "" && !strings.HasSuffix(content, "\n") {
		b.WriteString("\n")
	}
	if content != "" {
		b.WriteString("\n")
	}
	b.WriteString(marker)
	b.WriteString("\n")
	b.WriteString(payload)
	b.WriteString("\n")

	if err := m.write(file, b.String()); err != nil {
		return err
	}
	m.logger.Info().Str("file", file).Str("marker", marker).Msg("Marked block added")
	return nil
}

// RemoveMarkedBlock deletes the marker line and the single directive line
// that follows it, then collapses any run of blank lines left at end of
// file. Missing file or missing marker is a no-op.
func (m *Mutator) RemoveMarkedBlock(file, marker string) error {
	content, err := readOrEmpty(file)
	if err != nil {
		return err
	}
	if content == "" || !hasLine(content, marker) {
		m.logger.Debug().Str("file", file).Str("marker", marker).Msg("Marker not present, nothing to remove")
		return nil
	}

	lines := strings.Split(content, "\n")
	out := make([]string, 0, len(lines))
	for i := 0; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == marker {
			// drop the marker and its associated directive line as
			// an atomic pair
			if i+1 < len(lines) {
				i++
			}
			continue
		}
		out = append(out, lines[i])
	}

	result := strings.Join(out, "\n")
	result = strings.TrimRight(result, "\n")
	if result != "" {
		result += "\n"
	}

	if err := m.write(file, result); err != nil {
		return err
	}
	m.logger.Info().Str("file", file).Str("marker", marker).Msg("Marked block removed")
	return nil
}

// HasMarker reports whether the marker line exists in the file. An
// unreadable file counts as no marker.
func (m *Mutator) HasMarker(file, marker string) bool {
	content, err := readOrEmpty(file)
	if err != nil {
		return false
	}
	return hasLine(content, marker)
}

// WriteFile writes a whole owned file, creating parent directories, and
// chowns both to the real user when elevated.
func (m *Mutator) WriteFile(path, content string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.Wrapf(err, errors.ErrDirCreate, "creating %s", dir)
	}
	if m.user != nil {
		_ = m.user.Chown(dir)
	}
	return m.write(path, content)
}

func (m *Mutator) write(file, content string) error {
	// write-then-rename so a crash never leaves a half-written rc file
	tmp := file + ".devkit.tmp"
	if err := os.WriteFile(tmp, []byte(content), 0644); err != nil {
		return errors.Wrapf(err, errors.ErrFileWrite, "writing %s", tmp)
	}
	if err := os.Rename(tmp, file); err != nil {
		_ = os.Remove(tmp)
		return errors.Wrapf(err, errors.ErrFileWrite, "replacing %s", file)
	}
	if m.user != nil {
		_ = m.user.Chown(file)
	}
	return nil
}

func readOrEmpty(file string) (string, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", errors.Wrapf(err, errors.ErrFileAccess, "reading %s", file)
	}
	return string(data), nil
}

func hasLine(content, line string) bool {
	for _, l := range strings.Split(content, "\n") {
		if strings.TrimSpace(l) == line {
			return true
		}
	}
	return false
}
