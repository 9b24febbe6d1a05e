// Package catalog defines the static table of components devkit manages.
//
// The catalog is the single source of truth the rest of the system iterates
// over: each entry carries exactly the data its transition executor needs,
// keyed by a stable id that is identical on the install and uninstall paths.
// It is pure and read-only; the only I/O is parsing the embedded archive
// manifest at init.
package catalog

import (
	"sort"

	"github.com/halfdome/devkit/pkg/errors"
)

// Kind is the closed set of installation mechanisms.
type Kind int

const (
	// KindPackage installs through the system package manager.
	KindPackage Kind = iota
	// KindArchive downloads a checksum-verified release archive.
	KindArchive
	// KindScript runs a documented remote installer command.
	KindScript
	// KindConfig only mutates configuration (shell rc, git config).
	KindConfig
)

func (k Kind) String() string {
	switch k {
	case KindPackage:
		return "package"
	case KindArchive:
		return "archive"
	case KindScript:
		return "script"
	case KindConfig:
		return "config"
	default:
		return "unknown"
	}
}

// Block is a marked snippet injected into the user's shell rc file.
// Marker is a full comment line; Payload is the single directive line that
// follows it. The pair is inserted and removed atomically.
type Block struct {
	Marker  string
	Payload string
}

// ManagedFile is a file devkit writes on install and owns outright.
type ManagedFile struct {
	// Path may start with ~/ for the real user's home.
	Path    string
	Content string
}

// ScriptSpec is a remote installer invocation. Argv entries may contain the
// {prefix} and {home} placeholders.
type ScriptSpec struct {
	Argv []string
	// AsUser demotes the command to the real (non-elevated) user so
	// user-level directories are populated, not root's.
	AsUser bool
}

// Component is one independently installable/removable unit.
type Component struct {
	ID    string
	Name  string
	Desc  string
	Kind  Kind
	Order int

	// Packages lists the package-manager names owned by a KindPackage
	// component. All must be present for the component to count as
	// installed.
	Packages []string

	// Archive describes the verified download for a KindArchive
	// component. Populated from the embedded manifest.
	Archive *ArchiveSource

	// Script is the installer command for a KindScript component.
	Script *ScriptSpec

	// Blocks are shell rc snippets owned by this component.
	Blocks []Block

	// Files are whole files owned by this component.
	Files []ManagedFile

	// GitAliases marks the component that manages global git aliases.
	GitAliases bool

	// OwnedPaths are files and directories this component exclusively
	// owns. Entries start with {prefix}/ or ~/ and are the only paths
	// uninstall may remove.
	OwnedPaths []string

	// PresencePath is the single path the detector probes for archive
	// and script components.
	PresencePath string

	// DangerousRemove requests a dedicated confirmation before
	// uninstall, on top of any batch-level gate.
	DangerousRemove bool

	// ManagesRuntimes marks a component whose private data directory is
	// the sole source of truth for nested artifacts (installed runtime
	// versions); uninstall removes that directory in one step.
	ManagesRuntimes bool
}

// Marker returns the shell rc marker line for a component id. Kept as a
// plain function of the id so a newer devkit recognizes blocks written by
// an older one.
func Marker(id string) string {
	return "# devkit: " + id
}

var components = []Component{
	{
		ID:       "build-tools",
		Name:     "Build tools",
		Desc:     "Compiler toolchain plus curl, git and unzip",
		Kind:     KindPackage,
		Order:    10,
		Packages: []string{"build-essential", "curl", "git", "unzip"},
	},
	{
		ID:       "tmux",
		Name:     "tmux",
		Desc:     "Terminal multiplexer",
		Kind:     KindPackage,
		Order:    20,
		Packages: []string{"tmux"},
	},
	{
		ID:       "cli-tools",
		Name:     "CLI tools",
		Desc:     "ripgrep, fd, fzf and jq",
		Kind:     KindPackage,
		Order:    30,
		Packages: []string{"ripgrep", "fd-find", "fzf", "jq"},
	},
	{
		ID:       "gh",
		Name:     "GitHub CLI",
		Desc:     "gh command line client",
		Kind:     KindPackage,
		Order:    40,
		Packages: []string{"gh"},
	},
	{
		ID:    "neovim",
		Name:  "Neovim",
		Desc:  "Neovim editor from the official release tarball",
		Kind:  KindArchive,
		Order: 50,
		OwnedPaths: []string{
			"{prefix}/bin/nvim",
			"{prefix}/lib/nvim",
			"{prefix}/share/nvim",
		},
		PresencePath: "{prefix}/bin/nvim",
	},
	{
		ID:    "lazygit",
		Name:  "lazygit",
		Desc:  "Terminal UI for git",
		Kind:  KindArchive,
		Order: 60,
		OwnedPaths: []string{
			"{prefix}/bin/lazygit",
		},
		PresencePath: "{prefix}/bin/lazygit",
	},
	{
		ID:    "asdf",
		Name:  "asdf",
		Desc:  "Runtime version manager and every runtime installed through it",
		Kind:  KindScript,
		Order: 70,
		Script: &ScriptSpec{
			Argv:   []string{"git", "clone", "--depth", "1", "--branch", "v0.14.1", "https://github.com/asdf-vm/asdf.git", "{home}/.asdf"},
			AsUser: true,
		},
		Blocks: []Block{
			{Marker: Marker("asdf"), Payload: `. "$HOME/.asdf/asdf.sh"`},
		},
		OwnedPaths:      []string{"~/.asdf"},
		PresencePath:    "~/.asdf",
		DangerousRemove: true,
		ManagesRuntimes: true,
	},
	{
		ID:    "starship",
		Name:  "Starship",
		Desc:  "Cross-shell prompt",
		Kind:  KindScript,
		Order: 80,
		Script: &ScriptSpec{
			Argv: []string{"sh", "-c", "curl -fsSL https://starship.rs/install.sh | sh -s -- --yes --bin-dir {prefix}/bin"},
		},
		Blocks: []Block{
			{Marker: Marker("starship"), Payload: `eval "$(starship init bash)"`},
		},
		Files: []ManagedFile{
			{Path: "~/.config/starship.toml", Content: starshipConfig},
		},
		OwnedPaths: []string{
			"{prefix}/bin/starship",
			"~/.config/starship.toml",
		},
		PresencePath: "{prefix}/bin/starship",
	},
	{
		ID:    "shell-aliases",
		Name:  "Shell aliases",
		Desc:  "Common aliases sourced from the devkit config dir",
		Kind:  KindConfig,
		Order: 90,
		Blocks: []Block{
			{Marker: Marker("shell-aliases"), Payload: `[ -f "$HOME/.config/devkit/aliases.sh" ] && . "$HOME/.config/devkit/aliases.sh"`},
		},
		Files: []ManagedFile{
			{Path: "~/.config/devkit/aliases.sh", Content: shellAliases},
		},
		OwnedPaths: []string{"~/.config/devkit"},
	},
	{
		ID:         "git-aliases",
		Name:       "Git aliases",
		Desc:       "Global git alias shortcuts",
		Kind:       KindConfig,
		Order:      100,
		GitAliases: true,
	},
}

const shellAliases = `alias ll='ls -alF'
alias la='ls -A'
alias gs='git status -sb'
alias gd='git diff'
alias vim='nvim'
`

const starshipConfig = `add_newline = false

[character]
success_symbol = "[>](bold green)"
error_symbol = "[>](bold red)"
`

// Lookup returns the component with the given id.
func Lookup(id string) (Component, error) {
	for _, c := range components {
		if c.ID == id {
			return c, nil
		}
	}
	return Component{}, errors.Newf(errors.ErrInvalidSelection, "unknown component %q", id)
}

// All returns every component in install order: ascending order weight,
// definition order as tie-breaker. Dependent components (asdf before the
// blocks that source it, build-tools before everything that needs git or
// curl) are ordered by weight, not by definition position.
func All() []Component {
	out := make([]Component, len(components))
	copy(out, components)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Order < out[j].Order
	})
	return out
}

// Reversed returns every component in uninstall order, the reverse of All.
func Reversed() []Component {
	all := All()
	for i, j := 0, len(all)-1; i < j; i, j = i+1, j-1 {
		all[i], all[j] = all[j], all[i]
	}
	return all
}

// IDs returns the ids of all components in install order.
func IDs() []string {
	all := All()
	ids := make([]string, len(all))
	for i, c := range all {
		ids[i] = c.ID
	}
	return ids
}
