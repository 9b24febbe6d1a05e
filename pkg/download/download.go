// Package download fetches release artifacts into temporary locations and
// places extracted trees into the install prefix.
//
// The flow is always download -> verify -> extract -> atomic place; nothing
// here writes into the prefix before the caller has verified the artifact.
package download

import (
	"archive/tar"
	"compress/gzip"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/halfdome/devkit/pkg/errors"
	"github.com/halfdome/devkit/pkg/logging"
)

// Fetcher downloads an artifact to a temporary path. The cleanup function
// removes the temporary directory and is safe to call more than once.
type Fetcher interface {
	Fetch(url string) (path string, cleanup func(), err error)
}

// HTTPFetcher downloads over HTTP(S). A zero Timeout means no deadline.
type HTTPFetcher struct {
	Timeout time.Duration
}

// Fetch downloads url into a fresh temporary directory.
func (f *HTTPFetcher) Fetch(url string) (string, func(), error) {
	logger := logging.GetLogger("download")

	tmpDir, err := os.MkdirTemp("", "devkit-download-")
	if err != nil {
		return "", nil, errors.Wrap(err, errors.ErrDirCreate, "creating download directory")
	}
	cleanup := func() { _ = os.RemoveAll(tmpDir) }

	client := &http.Client{Timeout: f.Timeout}
	resp, err := client.Get(url)
	if err != nil {
		cleanup()
		return "", nil, errors.Wrapf(err, errors.ErrDownload, "downloading %s", url)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		cleanup()
		return "", nil, errors.Newf(errors.ErrDownload, "downloading %s: HTTP %d", url, resp.StatusCode)
	}

	dest := filepath.Join(tmpDir, filepath.Base(url))
	out, err := os.Create(dest)
	if err != nil {
		cleanup()
		return "", nil, errors.Wrap(err, errors.ErrFileWrite, "creating download file")
	}

	n, err := io.Copy(out, resp.Body)
	closeErr := out.Close()
	if err != nil {
		cleanup()
		return "", nil, errors.Wrapf(err, errors.ErrDownload, "reading %s", url)
	}
	if closeErr != nil {
		cleanup()
		return "", nil, errors.Wrap(closeErr, errors.ErrFileWrite, "writing download file")
	}

	logger.Debug().Str("url", url).Int64("bytes", n).Str("path", dest).Msg("Artifact downloaded")
	return dest, cleanup, nil
}

// ExtractTarGz unpacks archive into dest, dropping strip leading path
// components from every entry. Entries that would escape dest are rejected.
func ExtractTarGz(archive, dest string, strip int) error {
	f, err := os.Open(archive)
	if err != nil {
		return errors.Wrapf(err, errors.ErrFileAccess, "opening archive %s", archive)
	}
	defer func() { _ = f.Close() }()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return errors.Wrap(err, errors.ErrExtract, "reading gzip stream")
	}
	defer func() { _ = gz.Close() }()

	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return errors.Wrap(err, errors.ErrExtract, "reading tar stream")
		}

		name, ok := stripComponents(hdr.Name, strip)
		if !ok {
			continue
		}

		target, err := securePath(dest, name)
		if err != nil {
			return err
		}

		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0755); err != nil {
				return errors.Wrapf(err, errors.ErrDirCreate, "creating %s", target)
			}
		case tar.TypeReg:
			if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
				return errors.Wrapf(err, errors.ErrDirCreate, "creating parent of %s", target)
			}
			out, err := os.OpenFile(target, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, os.FileMode(hdr.Mode)&0777)
			if err != nil {
				return errors.Wrapf(err, errors.ErrFileWrite, "creating %s", target)
			}
			if _, err := io.Copy(out, tr); err != nil {
				_ = out.Close()
				return errors.Wrapf(err, errors.ErrExtract, "extracting %s", name)
			}
			if err := out.Close(); err != nil {
				return errors.Wrapf(err, errors.ErrFileWrite, "writing %s", target)
			}
		case tar.TypeSymlink:
			if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
				return errors.Wrapf(err, errors.ErrDirCreate, "creating parent of %s", target)
			}
			_ = os.Remove(target)
			if err := os.Symlink(hdr.Linkname, target); err != nil {
				return errors.Wrapf(err, errors.ErrExtract, "linking %s", name)
			}
		default:
			// device nodes and the like have no business in a
			// release tarball
			continue
		}
	}
}

// InstallTree moves src into place at dst, replacing any prior version.
// Rename is attempted first; cross-device moves fall back to copy.
func InstallTree(src, dst string) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return errors.Wrapf(err, errors.ErrDirCreate, "creating parent of %s", dst)
	}

	// Replace, not merge: the destination is owned by exactly one
	// component, so the prior version goes away wholesale.
	if err := os.RemoveAll(dst); err != nil {
		return errors.Wrapf(err, errors.ErrFileWrite, "removing prior %s", dst)
	}

	if err := os.Rename(src, dst); err == nil {
		return nil
	}

	if err := copyTree(src, dst); err != nil {
		return err
	}
	return nil
}

func copyTree(src, dst string) error {
	info, err := os.Lstat(src)
	if err != nil {
		return errors.Wrapf(err, errors.ErrFileAccess, "reading %s", src)
	}

	switch {
	case info.Mode()&os.ModeSymlink != 0:
		link, err := os.Readlink(src)
		if err != nil {
			return errors.Wrapf(err, errors.ErrFileAccess, "reading link %s", src)
		}
		return os.Symlink(link, dst)
	case info.IsDir():
		if err := os.MkdirAll(dst, info.Mode().Perm()); err != nil {
			return errors.Wrapf(err, errors.ErrDirCreate, "creating %s", dst)
		}
		entries, err := os.ReadDir(src)
		if err != nil {
			return errors.Wrapf(err, errors.ErrFileAccess, "reading %s", src)
		}
		for _, e := range entries {
			if err := copyTree(filepath.Join(src, e.Name()), filepath.Join(dst, e.Name())); err != nil {
				return err
			}
		}
		return nil
	default:
		in, err := os.Open(src)
		if err != nil {
			return errors.Wrapf(err, errors.ErrFileAccess, "opening %s", src)
		}
		defer func() { _ = in.Close() }()

		out, err := os.OpenFile(dst, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, info.Mode().Perm())
		if err != nil {
			return errors.Wrapf(err, errors.ErrFileWrite, "creating %s", dst)
		}
		if _, err := io.Copy(out, in); err != nil {
			_ = out.Close()
			return errors.Wrapf(err, errors.ErrFileWrite, "copying to %s", dst)
		}
		return out.Close()
	}
}

func stripComponents(name string, strip int) (string, bool) {
	name = filepath.ToSlash(name)
	parts := strings.Split(strings.TrimPrefix(name, "./"), "/")
	if len(parts) <= strip {
		return "", false
	}
	out := strings.Join(parts[strip:], "/")
	if out == "" {
		return "", false
	}
	return out, true
}

func securePath(dest, name string) (string, error) {
	target := filepath.Join(dest, filepath.FromSlash(name))
	rel, err := filepath.Rel(dest, target)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(os.PathSeparator)) {
		return "", errors.New(errors.ErrExtract, fmt.Sprintf("archive entry %q escapes extraction directory", name))
	}
	return target, nil
}
