// Package config loads the optional devkit override file.
//
// devkit works with zero configuration; the file only exists to relocate
// the install prefix or point at a non-default shell rc file.
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/halfdome/devkit/pkg/errors"
	"github.com/halfdome/devkit/pkg/logging"
	"github.com/halfdome/devkit/pkg/usercontext"
)

// Config holds the tunables for a devkit run.
type Config struct {
	// InstallPrefix is where verified archives place binaries and trees.
	InstallPrefix string `toml:"install_prefix"`

	// ShellRC is the user's shell startup file, absolute after Load.
	ShellRC string `toml:"shell_rc"`

	// AptBin overrides the apt-get executable.
	AptBin string `toml:"apt_bin"`

	// DownloadTimeoutSec bounds a single artifact download. Zero means
	// no timeout, matching the core's no-deadline contract.
	DownloadTimeoutSec int `toml:"download_timeout_sec"`
}

// Default returns the built-in configuration for the given user.
func Default(user *usercontext.Context) *Config {
	return &Config{
		InstallPrefix: "/usr/local",
		ShellRC:       filepath.Join(user.Home, ".bashrc"),
		AptBin:        "apt-get",
	}
}

// DownloadTimeout returns the configured timeout as a duration.
func (c *Config) DownloadTimeout() time.Duration {
	return time.Duration(c.DownloadTimeoutSec) * time.Second
}

// Load reads the first override file found and merges it over the defaults.
// Search order: /etc/devkit.toml, then the real user's XDG config dir.
// A missing file is not an error.
func Load(user *usercontext.Context) (*Config, error) {
	return loadFrom(user, []string{
		"/etc/devkit.toml",
		filepath.Join(user.Home, ".config", "devkit", "config.toml"),
	})
}

func loadFrom(user *usercontext.Context, candidates []string) (*Config, error) {
	cfg := Default(user)
	logger := logging.GetLogger("config")

	for _, path := range candidates {
		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, errors.Wrapf(err, errors.ErrConfigLoad, "reading config file %s", path)
		}

		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, errors.Wrapf(err, errors.ErrConfigParse, "parsing config file %s", path)
		}

		logger.Debug().Str("path", path).Msg("Loaded configuration overrides")
		break
	}

	cfg.ShellRC = user.ExpandHome(cfg.ShellRC)
	return cfg, nil
}
