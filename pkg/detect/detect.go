// Package detect answers "is this component currently present?" without
// side effects. A probe that cannot be completed counts as absent: the
// conservative default re-attempts an install or skips an uninstall rather
// than risking a wrong removal.
package detect

import (
	"os"

	"github.com/rs/zerolog"

	"github.com/halfdome/devkit/pkg/catalog"
	"github.com/halfdome/devkit/pkg/config"
	"github.com/halfdome/devkit/pkg/logging"
	"github.com/halfdome/devkit/pkg/paths"
	"github.com/halfdome/devkit/pkg/usercontext"
)

// PackageChecker is the slice of the package manager detection needs.
type PackageChecker interface {
	Installed(pkg string) bool
}

// AliasChecker reports whether the git alias set is fully installed.
type AliasChecker interface {
	Installed() bool
}

// MarkerChecker reports whether a marked block exists in a file.
type MarkerChecker interface {
	HasMarker(file, marker string) bool
}

// Detector holds the read-only probes for every component kind.
type Detector struct {
	Packages PackageChecker
	Aliases  AliasChecker
	Markers  MarkerChecker
	User     *usercontext.Context
	Cfg      *config.Config

	logger zerolog.Logger
}

// New assembles a Detector.
func New(pkgs PackageChecker, aliases AliasChecker, markers MarkerChecker, user *usercontext.Context, cfg *config.Config) *Detector {
	return &Detector{
		Packages: pkgs,
		Aliases:  aliases,
		Markers:  markers,
		User:     user,
		Cfg:      cfg,
		logger:   logging.GetLogger("detect"),
	}
}

// IsPresent reports whether the component is currently in the installed
// state. Never mutates anything and never fails.
func (d *Detector) IsPresent(c catalog.Component) bool {
	switch c.Kind {
	case catalog.KindPackage:
		for _, pkg := range c.Packages {
			if !d.Packages.Installed(pkg) {
				return false
			}
		}
		return true

	case catalog.KindArchive, catalog.KindScript:
		probe := paths.Resolve(c.PresencePath, d.Cfg.InstallPrefix, d.User.Home)
		if _, err := os.Stat(probe); err != nil {
			if !os.IsNotExist(err) {
				d.logger.Debug().Err(err).Str("component", c.ID).Str("path", probe).
					Msg("Presence probe inconclusive, treating as absent")
			}
			return false
		}
		return true

	case catalog.KindConfig:
		if c.GitAliases {
			return d.Aliases.Installed()
		}
		if len(c.Blocks) > 0 {
			return d.Markers.HasMarker(d.Cfg.ShellRC, c.Blocks[0].Marker)
		}
		return false

	default:
		d.logger.Debug().Str("component", c.ID).Msg("Unknown component kind, treating as absent")
		return false
	}
}
