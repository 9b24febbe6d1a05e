package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/adrg/xdg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// withStateHome points the XDG state dir at a fresh temp dir for the
// duration of the test.
func withStateHome(t *testing.T) string {
	t.Helper()
	stateHome := t.TempDir()
	t.Cleanup(xdg.Reload)
	t.Setenv("XDG_STATE_HOME", stateHome)
	xdg.Reload()
	return stateHome
}

func TestSetupLogger_TouchesNoFiles(t *testing.T) {
	stateHome := withStateHome(t)

	SetupLogger(1)

	entries, err := os.ReadDir(stateHome)
	require.NoError(t, err)
	assert.Empty(t, entries, "console-only setup must not create the state dir")
}

func TestEnableFileLogging_CreatesLogFile(t *testing.T) {
	stateHome := withStateHome(t)

	SetupLogger(0)
	EnableFileLogging()

	_, err := os.Stat(filepath.Join(stateHome, "devkit", "devkit.log"))
	assert.NoError(t, err, "file logging writes to the state-dir log file")
}
