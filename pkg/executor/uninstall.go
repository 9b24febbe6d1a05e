package executor

import (
	"os"

	"github.com/halfdome/devkit/pkg/catalog"
	"github.com/halfdome/devkit/pkg/errors"
)

// Uninstall brings a component to the absent state, removing only the
// artifacts the catalog attributes to it. An already-absent component is
// reported as a skip with no side effects.
func (e *Executor) Uninstall(c catalog.Component) Result {
	if !e.detector.IsPresent(c) {
		return skip(c, "already absent")
	}

	var err error
	switch c.Kind {
	case catalog.KindPackage:
		err = e.packages.Remove(c.Packages)
	case catalog.KindArchive, catalog.KindScript:
		err = e.removeArtifacts(c)
	case catalog.KindConfig:
		err = e.removeConfig(c)
	default:
		err = errors.Newf(errors.ErrInternal, "component %s has unknown kind", c.ID)
	}

	if err != nil {
		return fail(c, err)
	}
	return done(c, StatusRemoved, "removed")
}

// removeArtifacts deletes every path the component owns, then its rc
// blocks and files. A runtime manager's data directory is removed in one
// step: that directory is the sole source of truth for what it owns, so
// nested runtime installs go with it.
func (e *Executor) removeArtifacts(c catalog.Component) error {
	for _, owned := range c.OwnedPaths {
		target := e.resolvePath(owned)
		if _, err := os.Lstat(target); err != nil {
			if os.IsNotExist(err) {
				e.logger.Debug().Str("component", c.ID).Str("path", target).Msg("Already absent")
				continue
			}
			return errors.Wrapf(err, errors.ErrFileAccess, "inspecting %s", target)
		}
		if err := os.RemoveAll(target); err != nil {
			return errors.Wrapf(err, errors.ErrFileWrite, "removing %s", target)
		}
		e.logger.Debug().Str("component", c.ID).Str("path", target).Msg("Removed owned path")
	}
	return e.removeConfig(c)
}

// removeConfig undoes the configuration side of a component: git aliases,
// rc blocks, owned files and config directories.
func (e *Executor) removeConfig(c catalog.Component) error {
	if c.GitAliases {
		return e.aliases.Remove()
	}

	for _, b := range c.Blocks {
		if err := e.mutator.RemoveMarkedBlock(e.cfg.ShellRC, b.Marker); err != nil {
			return err
		}
	}

	for _, f := range c.Files {
		target := e.resolvePath(f.Path)
		if err := os.Remove(target); err != nil && !os.IsNotExist(err) {
			return errors.Wrapf(err, errors.ErrFileWrite, "removing %s", target)
		}
	}

	// config-only components may own a directory (the devkit config
	// dir); archive/script components already handled theirs above
	if c.Kind == catalog.KindConfig {
		for _, owned := range c.OwnedPaths {
			target := e.resolvePath(owned)
			if err := os.RemoveAll(target); err != nil {
				return errors.Wrapf(err, errors.ErrFileWrite, "removing %s", target)
			}
		}
	}
	return nil
}
