package gitalias_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/halfdome/devkit/pkg/errors"
	"github.com/halfdome/devkit/pkg/gitalias"
)

// fakeGit emulates the alias slice of git config state.
type fakeGit struct {
	aliases map[string]string
	calls   [][]string
	failSet bool
}

func newFakeGit() *fakeGit {
	return &fakeGit{aliases: make(map[string]string)}
}

func (g *fakeGit) Git(args ...string) ([]byte, error) {
	g.calls = append(g.calls, args)

	switch {
	case len(args) == 4 && args[0] == "config" && args[2] == "--get":
		name := strings.TrimPrefix(args[3], "alias.")
		if v, ok := g.aliases[name]; ok {
			return []byte(v + "\n"), nil
		}
		return nil, fmt.Errorf("exit status 1")
	case len(args) == 4 && args[0] == "config" && args[2] == "--unset":
		name := strings.TrimPrefix(args[3], "alias.")
		if _, ok := g.aliases[name]; !ok {
			return nil, fmt.Errorf("exit status 5")
		}
		delete(g.aliases, name)
		return nil, nil
	case len(args) == 4 && args[0] == "config" && args[1] == "--global":
		if g.failSet {
			return []byte("error: could not lock config file"), fmt.Errorf("exit status 255")
		}
		g.aliases[strings.TrimPrefix(args[2], "alias.")] = args[3]
		return nil, nil
	}
	return nil, fmt.Errorf("unexpected git invocation: %v", args)
}

func TestInstall_SetsEveryAlias(t *testing.T) {
	git := newFakeGit()
	m := gitalias.NewWithRunner(git)

	require.NoError(t, m.Install())

	assert.Len(t, git.aliases, len(gitalias.Aliases))
	assert.Equal(t, "status -sb", git.aliases["st"])
	assert.True(t, m.Installed())
}

func TestInstall_Idempotent(t *testing.T) {
	git := newFakeGit()
	m := gitalias.NewWithRunner(git)

	require.NoError(t, m.Install())
	require.NoError(t, m.Install())

	assert.Len(t, git.aliases, len(gitalias.Aliases))
}

func TestInstall_SurfacesGitFailure(t *testing.T) {
	git := newFakeGit()
	git.failSet = true
	m := gitalias.NewWithRunner(git)

	err := m.Install()
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrExternalTool))
}

func TestRemove_UnsetsOnlyPresentAliases(t *testing.T) {
	git := newFakeGit()
	git.aliases["st"] = "status -sb"
	git.aliases["co"] = "checkout"
	m := gitalias.NewWithRunner(git)

	require.NoError(t, m.Remove())

	assert.Empty(t, git.aliases)
	for _, c := range git.calls {
		if len(c) == 4 && c[2] == "--unset" {
			name := strings.TrimPrefix(c[3], "alias.")
			assert.Contains(t, []string{"st", "co"}, name,
				"must not unset an alias that was never set")
		}
	}
}

func TestRemove_AllAbsentIsNoError(t *testing.T) {
	git := newFakeGit()
	m := gitalias.NewWithRunner(git)

	require.NoError(t, m.Remove())
	assert.Empty(t, git.aliases)
}

func TestInstalled_FalseWhenPartial(t *testing.T) {
	git := newFakeGit()
	git.aliases["st"] = "status -sb"
	m := gitalias.NewWithRunner(git)

	assert.False(t, m.Installed())
}
