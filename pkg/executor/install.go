package executor

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/halfdome/devkit/pkg/catalog"
	"github.com/halfdome/devkit/pkg/download"
	"github.com/halfdome/devkit/pkg/errors"
	"github.com/halfdome/devkit/pkg/paths"
	"github.com/halfdome/devkit/pkg/verify"
)

// Install brings a component to the present state. If the detector already
// reports it present the transition is a no-op reported as a skip, never an
// error.
func (e *Executor) Install(c catalog.Component) Result {
	if e.detector.IsPresent(c) {
		return skip(c, "already installed")
	}

	var err error
	switch c.Kind {
	case catalog.KindPackage:
		err = e.packages.Install(c.Packages)
	case catalog.KindArchive:
		err = e.installArchive(c)
	case catalog.KindScript:
		err = e.installScript(c)
	case catalog.KindConfig:
		err = e.installConfig(c)
	default:
		err = errors.Newf(errors.ErrInternal, "component %s has unknown kind", c.ID)
	}

	if err != nil {
		return fail(c, err)
	}
	return done(c, StatusInstalled, "installed")
}

// installArchive downloads, verifies and places a release archive. On any
// failure before placement the prior installed state is untouched and the
// temporary download is removed.
func (e *Executor) installArchive(c catalog.Component) error {
	url, digest, err := c.Archive.ForArch(catalog.HostArch())
	if err != nil {
		return err
	}

	artifact, cleanup, err := e.fetcher.Fetch(url)
	if err != nil {
		return err
	}
	defer cleanup()

	if err := verify.File(artifact, digest); err != nil {
		return err
	}

	extractDir := filepath.Join(filepath.Dir(artifact), "extracted")
	if err := download.ExtractTarGz(artifact, extractDir, c.Archive.Strip); err != nil {
		return err
	}

	// Verified and fully extracted. Stage every entry on the destination
	// filesystem first: if anything goes wrong here the prior installed
	// state is untouched, and the commit below is a series of
	// same-filesystem renames.
	if err := os.MkdirAll(e.cfg.InstallPrefix, 0755); err != nil {
		return errors.Wrapf(err, errors.ErrDirCreate, "creating %s", e.cfg.InstallPrefix)
	}
	stage, err := os.MkdirTemp(e.cfg.InstallPrefix, ".devkit-stage-")
	if err != nil {
		return errors.Wrap(err, errors.ErrDirCreate, "creating staging directory")
	}
	defer func() { _ = os.RemoveAll(stage) }()

	entries := commitOrder(c)
	staged := make([]string, len(entries))
	for i, entry := range entries {
		src := filepath.Join(extractDir, filepath.FromSlash(entry.Src))
		dst := filepath.Join(e.cfg.InstallPrefix, filepath.FromSlash(entry.Dst))
		target := filepath.Join(stage, fmt.Sprintf("entry-%d", i))
		if err := download.InstallTree(src, target); err != nil {
			return err
		}
		// surface unusable destination parents now, while nothing has
		// been replaced yet
		if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
			return errors.Wrapf(err, errors.ErrDirCreate, "creating parent of %s", dst)
		}
		staged[i] = target
	}

	for i, entry := range entries {
		dst := filepath.Join(e.cfg.InstallPrefix, filepath.FromSlash(entry.Dst))
		if err := download.InstallTree(staged[i], dst); err != nil {
			return err
		}
	}
	return nil
}

// commitOrder returns the archive entries with the detector's presence
// path last, so an interrupted commit is never mistaken for a completed
// install on the next run.
func commitOrder(c catalog.Component) []catalog.ArchiveEntry {
	presence := strings.TrimPrefix(c.PresencePath, "{prefix}/")
	entries := make([]catalog.ArchiveEntry, 0, len(c.Archive.Entries))
	var last []catalog.ArchiveEntry
	for _, entry := range c.Archive.Entries {
		if entry.Dst == presence {
			last = append(last, entry)
			continue
		}
		entries = append(entries, entry)
	}
	return append(entries, last...)
}

// installScript runs the documented installer for the tool, then applies
// any configuration the component owns.
func (e *Executor) installScript(c catalog.Component) error {
	argv := paths.ExpandArgv(c.Script.Argv, e.cfg.InstallPrefix, e.user.Home)
	if err := e.scripts.Run(argv, c.Script.AsUser); err != nil {
		return err
	}
	return e.applyConfig(c)
}

func (e *Executor) installConfig(c catalog.Component) error {
	if c.GitAliases {
		return e.aliases.Install()
	}
	return e.applyConfig(c)
}

// applyConfig writes the component's owned files and rc blocks.
func (e *Executor) applyConfig(c catalog.Component) error {
	for _, f := range c.Files {
		if err := e.mutator.WriteFile(e.resolvePath(f.Path), f.Content); err != nil {
			return err
		}
	}
	for _, b := range c.Blocks {
		if err := e.mutator.AddMarkedBlock(e.cfg.ShellRC, b.Marker, b.Payload); err != nil {
			return err
		}
	}
	return nil
}
