// Package gitalias manages the fixed set of global git aliases devkit
// installs. All git config writes are scoped to the actual user, never to
// root's global config.
package gitalias

import (
	"sort"

	"github.com/rs/zerolog"

	"github.com/halfdome/devkit/pkg/errors"
	"github.com/halfdome/devkit/pkg/logging"
	"github.com/halfdome/devkit/pkg/usercontext"
)

// Aliases is the fixed alias set. Key is the alias name, value the git
// command it expands to.
var Aliases = map[string]string{
	"co":      "checkout",
	"br":      "branch",
	"st":      "status -sb",
	"lg":      "log --oneline --graph --decorate",
	"unstage": "reset HEAD --",
	"last":    "log -1 HEAD",
}

// GitRunner executes a git invocation as the real user and returns its
// combined output. Tests substitute a fake.
type GitRunner interface {
	Git(args ...string) ([]byte, error)
}

type userGitRunner struct {
	user *usercontext.Context
}

func (r userGitRunner) Git(args ...string) ([]byte, error) {
	logging.LogCommand("git", args)
	return r.user.Command("git", args...).CombinedOutput()
}

// Manager installs and removes the alias set.
type Manager struct {
	runner GitRunner
	logger zerolog.Logger
}

// New returns a Manager operating as the given user.
func New(user *usercontext.Context) *Manager {
	return &Manager{
		runner: userGitRunner{user: user},
		logger: logging.GetLogger("gitalias"),
	}
}

// NewWithRunner returns a Manager with a custom runner, for tests.
func NewWithRunner(runner GitRunner) *Manager {
	return &Manager{
		runner: runner,
		logger: logging.GetLogger("gitalias"),
	}
}

// names returns alias names in stable order so runs are deterministic.
func names() []string {
	out := make([]string, 0, len(Aliases))
	for name := range Aliases {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Install sets every alias in the user's global git config. Setting an
// alias that already exists simply overwrites it with the same value, so
// the operation is idempotent.
func (m *Manager) Install() error {
	for _, name := range names() {
		out, err := m.runner.Git("config", "--global", "alias."+name, Aliases[name])
		if err != nil {
			return errors.Wrapf(err, errors.ErrExternalTool, "setting git alias %s: %s", name, string(out))
		}
	}
	m.logger.Info().Int("count", len(Aliases)).Msg("Git aliases installed")
	return nil
}

// Remove unsets each alias that is currently set. An alias that is already
// absent is skipped, not an error.
func (m *Manager) Remove() error {
	for _, name := range names() {
		if !m.isSet(name) {
			m.logger.Debug().Str("alias", name).Msg("Alias already absent")
			continue
		}
		out, err := m.runner.Git("config", "--global", "--unset", "alias."+name)
		if err != nil {
			return errors.Wrapf(err, errors.ErrExternalTool, "unsetting git alias %s: %s", name, string(out))
		}
	}
	m.logger.Info().Msg("Git aliases removed")
	return nil
}

// Installed reports whether every alias in the set currently resolves.
func (m *Manager) Installed() bool {
	for _, name := range names() {
		if !m.isSet(name) {
			return false
		}
	}
	return true
}

func (m *Manager) isSet(name string) bool {
	out, err := m.runner.Git("config", "--global", "--get", "alias."+name)
	if err != nil {
		return false
	}
	return len(out) > 0
}
