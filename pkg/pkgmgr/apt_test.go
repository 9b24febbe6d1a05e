package pkgmgr_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/halfdome/devkit/pkg/errors"
	"github.com/halfdome/devkit/pkg/pkgmgr"
)

type call struct {
	name string
	args []string
}

type fakeRunner struct {
	calls   []call
	output  map[string]string
	failing map[string]bool
}

func newFakeRunner() *fakeRunner {
	return &fakeRunner{
		output:  make(map[string]string),
		failing: make(map[string]bool),
	}
}

func (r *fakeRunner) Run(name string, args ...string) ([]byte, error) {
	r.calls = append(r.calls, call{name: name, args: args})
	key := name
	if len(args) > 0 {
		key = name + " " + args[0]
	}
	if r.failing[key] {
		return []byte("E: something broke"), fmt.Errorf("exit status 100")
	}
	return []byte(r.output[key]), nil
}

func TestInstall(t *testing.T) {
	r := newFakeRunner()
	apt := pkgmgr.NewApt("apt-get", r)

	require.NoError(t, apt.Install([]string{"tmux", "gh"}))

	require.Len(t, r.calls, 1)
	assert.Equal(t, "apt-get", r.calls[0].name)
	assert.Equal(t, []string{"install", "-y", "tmux", "gh"}, r.calls[0].args)
}

func TestInstall_EmptyIsNoop(t *testing.T) {
	r := newFakeRunner()
	apt := pkgmgr.NewApt("apt-get", r)

	require.NoError(t, apt.Install(nil))
	assert.Empty(t, r.calls)
}

func TestInstall_SurfacesToolFailure(t *testing.T) {
	r := newFakeRunner()
	r.failing["apt-get install"] = true
	apt := pkgmgr.NewApt("apt-get", r)

	err := apt.Install([]string{"tmux"})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrExternalTool))
	assert.Contains(t, err.Error(), "E: something broke")
}

func TestRemove(t *testing.T) {
	r := newFakeRunner()
	apt := pkgmgr.NewApt("apt-get", r)

	require.NoError(t, apt.Remove([]string{"tmux"}))

	require.Len(t, r.calls, 1)
	assert.Equal(t, []string{"remove", "-y", "tmux"}, r.calls[0].args)
}

func TestAutoremove(t *testing.T) {
	r := newFakeRunner()
	apt := pkgmgr.NewApt("apt-get", r)

	require.NoError(t, apt.Autoremove())

	require.Len(t, r.calls, 1)
	assert.Equal(t, []string{"autoremove", "-y"}, r.calls[0].args)
}

func TestInstalled(t *testing.T) {
	r := newFakeRunner()
	r.output["dpkg-query -W"] = "install ok installed"
	apt := pkgmgr.NewApt("apt-get", r)

	assert.True(t, apt.Installed("tmux"))

	r.output["dpkg-query -W"] = "deinstall ok config-files"
	assert.False(t, apt.Installed("tmux"))
}

func TestInstalled_QueryFailureIsAbsent(t *testing.T) {
	r := newFakeRunner()
	r.failing["dpkg-query -W"] = true
	apt := pkgmgr.NewApt("apt-get", r)

	assert.False(t, apt.Installed("no-such-package"))
}

func TestNewApt_Defaults(t *testing.T) {
	apt := pkgmgr.NewApt("", nil)
	assert.Equal(t, "apt-get", apt.Bin)
	assert.NotNil(t, apt.Runner)
}
