// Package pkgmgr adapts the system package manager behind a small
// interface. All package-database mutation in devkit goes through here so
// ordering and idempotence are enforced in one place.
package pkgmgr

import (
	"os/exec"
	"strings"

	"github.com/rs/zerolog"

	"github.com/halfdome/devkit/pkg/errors"
	"github.com/halfdome/devkit/pkg/logging"
)

// Runner executes an external command and returns its combined output.
// Split out so tests can record invocations instead of running apt.
type Runner interface {
	Run(name string, args ...string) ([]byte, error)
}

// ExecRunner runs commands through os/exec.
type ExecRunner struct{}

// Run implements Runner.
func (ExecRunner) Run(name string, args ...string) ([]byte, error) {
	logging.LogCommand(name, args)
	return exec.Command(name, args...).CombinedOutput()
}

// Manager is the package-manager surface the executor needs.
type Manager interface {
	Install(pkgs []string) error
	Remove(pkgs []string) error
	// Autoremove sweeps now-unneeded transitive dependencies. Called
	// once after a removal batch, never per package.
	Autoremove() error
	Installed(pkg string) bool
}

// Apt is the Debian-family implementation of Manager.
type Apt struct {
	Bin    string
	Runner Runner
	logger zerolog.Logger
}

// NewApt returns an apt adapter using the given apt-get binary.
func NewApt(bin string, runner Runner) *Apt {
	if bin == "" {
		bin = "apt-get"
	}
	if runner == nil {
		runner = ExecRunner{}
	}
	return &Apt{
		Bin:    bin,
		Runner: runner,
		logger: logging.GetLogger("pkgmgr"),
	}
}

// Install installs the given packages in one apt transaction.
func (a *Apt) Install(pkgs []string) error {
	if len(pkgs) == 0 {
		return nil
	}
	args := append([]string{"install", "-y"}, pkgs...)
	out, err := a.Runner.Run(a.Bin, args...)
	if err != nil {
		return errors.Wrapf(err, errors.ErrExternalTool, "apt-get install failed: %s", tail(out))
	}
	a.logger.Debug().Strs("packages", pkgs).Msg("Packages installed")
	return nil
}

// Remove removes the given packages. The autoremove sweep is separate.
func (a *Apt) Remove(pkgs []string) error {
	if len(pkgs) == 0 {
		return nil
	}
	args := append([]string{"remove", "-y"}, pkgs...)
	out, err := a.Runner.Run(a.Bin, args...)
	if err != nil {
		return errors.Wrapf(err, errors.ErrExternalTool, "apt-get remove failed: %s", tail(out))
	}
	a.logger.Debug().Strs("packages", pkgs).Msg("Packages removed")
	return nil
}

// Autoremove drops dependencies no longer needed by anything installed.
func (a *Apt) Autoremove() error {
	out, err := a.Runner.Run(a.Bin, "autoremove", "-y")
	if err != nil {
		return errors.Wrapf(err, errors.ErrExternalTool, "apt-get autoremove failed: %s", tail(out))
	}
	a.logger.Debug().Msg("Autoremove sweep completed")
	return nil
}

// Installed reports whether pkg is installed according to dpkg. A failed
// query counts as not installed; detection never errors.
func (a *Apt) Installed(pkg string) bool {
	out, err := a.Runner.Run("dpkg-query", "-W", "-f=${Status}", pkg)
	if err != nil {
		a.logger.Debug().Err(err).Str("package", pkg).Msg("dpkg query inconclusive, treating as absent")
		return false
	}
	return strings.Contains(string(out), "install ok installed")
}

// tail returns the last portion of command output for error messages.
func tail(out []byte) string {
	const max = 512
	s := strings.TrimSpace(string(out))
	if len(s) > max {
		s = "..." + s[len(s)-max:]
	}
	return s
}
