package detect_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/halfdome/devkit/pkg/catalog"
	"github.com/halfdome/devkit/pkg/config"
	"github.com/halfdome/devkit/pkg/detect"
	"github.com/halfdome/devkit/pkg/shellcfg"
	"github.com/halfdome/devkit/pkg/usercontext"
)

type fakePackages struct{ installed map[string]bool }

func (f fakePackages) Installed(pkg string) bool { return f.installed[pkg] }

type fakeAliases struct{ installed bool }

func (f fakeAliases) Installed() bool { return f.installed }

func newDetector(t *testing.T, pkgs map[string]bool, aliases bool) (*detect.Detector, *config.Config, string) {
	t.Helper()
	home := t.TempDir()
	prefix := t.TempDir()
	user := &usercontext.Context{Username: "dev", Home: home}
	cfg := &config.Config{InstallPrefix: prefix, ShellRC: filepath.Join(home, ".bashrc")}
	d := detect.New(fakePackages{installed: pkgs}, fakeAliases{installed: aliases}, shellcfg.New(nil), user, cfg)
	return d, cfg, prefix
}

func TestIsPresent_Package(t *testing.T) {
	d, _, _ := newDetector(t, map[string]bool{"tmux": true}, false)

	assert.True(t, d.IsPresent(catalog.Component{Kind: catalog.KindPackage, Packages: []string{"tmux"}}))
	assert.False(t, d.IsPresent(catalog.Component{Kind: catalog.KindPackage, Packages: []string{"gh"}}))
}

func TestIsPresent_PackageRequiresAll(t *testing.T) {
	d, _, _ := newDetector(t, map[string]bool{"ripgrep": true, "fzf": false}, false)

	c := catalog.Component{Kind: catalog.KindPackage, Packages: []string{"ripgrep", "fzf"}}
	assert.False(t, d.IsPresent(c))
}

func TestIsPresent_ArchiveProbesPrefix(t *testing.T) {
	d, _, prefix := newDetector(t, nil, false)
	c := catalog.Component{Kind: catalog.KindArchive, PresencePath: "{prefix}/bin/nvim"}

	assert.False(t, d.IsPresent(c))

	require.NoError(t, os.MkdirAll(filepath.Join(prefix, "bin"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(prefix, "bin", "nvim"), []byte("bin"), 0755))
	assert.True(t, d.IsPresent(c))
}

func TestIsPresent_ScriptProbesHome(t *testing.T) {
	d, _, _ := newDetector(t, nil, false)
	c := catalog.Component{Kind: catalog.KindScript, PresencePath: "~/.asdf"}

	assert.False(t, d.IsPresent(c))
}

func TestIsPresent_GitAliases(t *testing.T) {
	d, _, _ := newDetector(t, nil, true)
	c := catalog.Component{Kind: catalog.KindConfig, GitAliases: true}
	assert.True(t, d.IsPresent(c))

	d2, _, _ := newDetector(t, nil, false)
	assert.False(t, d2.IsPresent(c))
}

func TestIsPresent_ConfigMarker(t *testing.T) {
	d, cfg, _ := newDetector(t, nil, false)
	marker := catalog.Marker("shell-aliases")
	c := catalog.Component{Kind: catalog.KindConfig, Blocks: []catalog.Block{{Marker: marker, Payload: "x"}}}

	assert.False(t, d.IsPresent(c))

	m := shellcfg.New(nil)
	require.NoError(t, m.AddMarkedBlock(cfg.ShellRC, marker, "x"))
	assert.True(t, d.IsPresent(c))
}
