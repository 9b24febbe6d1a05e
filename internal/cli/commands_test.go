package cli

import (
	"bytes"
	"os"
	"testing"

	"github.com/adrg/xdg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/halfdome/devkit/internal/version"
	"github.com/halfdome/devkit/pkg/errors"
	"github.com/halfdome/devkit/pkg/executor"
)

func TestHelp(t *testing.T) {
	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs([]string{"--help"})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "install")
	assert.Contains(t, out.String(), "uninstall")
}

func TestUnknownSubcommand(t *testing.T) {
	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs([]string{"frobnicate"})

	err := cmd.Execute()
	assert.Error(t, err)
}

func TestList_NeedsNoPrivilege(t *testing.T) {
	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs([]string{"list"})

	require.NoError(t, cmd.Execute())
}

func TestVersion(t *testing.T) {
	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"version"})
	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "devkit version")
}

func TestVersion_SuppressesPlaceholderBuildInfo(t *testing.T) {
	origCommit, origDate := version.Commit, version.Date
	t.Cleanup(func() { version.Commit, version.Date = origCommit, origDate })
	version.Commit, version.Date = "unknown", "unknown"

	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"version"})
	require.NoError(t, cmd.Execute())

	assert.NotContains(t, out.String(), "unknown",
		"a dev build prints no commit or date line")
}

func TestVersion_PrintsRealBuildInfo(t *testing.T) {
	origCommit, origDate := version.Commit, version.Date
	t.Cleanup(func() { version.Commit, version.Date = origCommit, origDate })
	version.Commit, version.Date = "abc1234", "2026-08-29"

	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"version"})
	require.NoError(t, cmd.Execute())

	assert.Contains(t, out.String(), "Commit: abc1234")
	assert.Contains(t, out.String(), "Built:  2026-08-29")
}

func TestPrivilegeGate(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("running as root, gate cannot trip")
	}

	err := runTransition(executor.OpInstall, []string{"tmux"}, true)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrNotPrivileged),
		"unprivileged invocation must fail before any side effect")
}

func TestPrivilegeGate_MakesNoFileSystemChanges(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("running as root, gate cannot trip")
	}

	stateHome := t.TempDir()
	t.Cleanup(xdg.Reload)
	t.Setenv("XDG_STATE_HOME", stateHome)
	xdg.Reload()

	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs([]string{"install", "tmux", "--yes"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrNotPrivileged))

	entries, readErr := os.ReadDir(stateHome)
	require.NoError(t, readErr)
	assert.Empty(t, entries, "a refused invocation must not create the state dir or log file")
}
