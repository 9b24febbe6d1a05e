// Package executor performs the install and uninstall transitions for
// catalog components.
//
// Batches run strictly sequentially in catalog order (reverse order for
// uninstall): later components may depend on earlier ones, and the package
// database and shell rc file tolerate no concurrent mutation. A failure is
// contained to its component; the batch always continues.
package executor

import (
	"os/exec"

	"github.com/rs/zerolog"

	"github.com/halfdome/devkit/pkg/catalog"
	"github.com/halfdome/devkit/pkg/config"
	"github.com/halfdome/devkit/pkg/download"
	"github.com/halfdome/devkit/pkg/errors"
	"github.com/halfdome/devkit/pkg/logging"
	"github.com/halfdome/devkit/pkg/paths"
	"github.com/halfdome/devkit/pkg/pkgmgr"
	"github.com/halfdome/devkit/pkg/usercontext"
)

// Detector is the presence probe the executor consults to skip no-op work.
type Detector interface {
	IsPresent(c catalog.Component) bool
}

// ConfigMutator is the slice of shellcfg the executor needs.
type ConfigMutator interface {
	AddMarkedBlock(file, marker, payload string) error
	RemoveMarkedBlock(file, marker string) error
	WriteFile(path, content string) error
}

// AliasManager installs and removes the global git alias set.
type AliasManager interface {
	Install() error
	Remove() error
}

// ScriptRunner executes a remote installer command.
type ScriptRunner interface {
	Run(argv []string, asUser bool) error
}

// UserScriptRunner runs scripts through os/exec, demoted to the real user
// when asUser is set.
type UserScriptRunner struct {
	User *usercontext.Context
}

// Run implements ScriptRunner.
func (r *UserScriptRunner) Run(argv []string, asUser bool) error {
	logging.LogCommand(argv[0], argv[1:])
	var cmd *exec.Cmd
	if asUser {
		cmd = r.User.Command(argv[0], argv[1:]...)
	} else {
		cmd = exec.Command(argv[0], argv[1:]...)
	}
	out, err := cmd.CombinedOutput()
	if err != nil {
		return errors.Wrapf(err, errors.ErrExternalTool, "installer command failed: %s", string(out))
	}
	return nil
}

// Options wires an Executor.
type Options struct {
	Detector Detector
	Packages pkgmgr.Manager
	Mutator  ConfigMutator
	Aliases  AliasManager
	Scripts  ScriptRunner
	Fetcher  download.Fetcher
	User     *usercontext.Context
	Cfg      *config.Config

	// Report, when set, is called with each Result as it is produced,
	// before the next component starts.
	Report func(Result)
}

// Executor drives component transitions.
type Executor struct {
	detector Detector
	packages pkgmgr.Manager
	mutator  ConfigMutator
	aliases  AliasManager
	scripts  ScriptRunner
	fetcher  download.Fetcher
	user     *usercontext.Context
	cfg      *config.Config
	report   func(Result)
	logger   zerolog.Logger
}

// New creates an executor.
func New(opts Options) *Executor {
	scripts := opts.Scripts
	if scripts == nil {
		scripts = &UserScriptRunner{User: opts.User}
	}
	fetcher := opts.Fetcher
	if fetcher == nil {
		fetcher = &download.HTTPFetcher{Timeout: opts.Cfg.DownloadTimeout()}
	}
	return &Executor{
		detector: opts.Detector,
		packages: opts.Packages,
		mutator:  opts.Mutator,
		aliases:  opts.Aliases,
		scripts:  scripts,
		fetcher:  fetcher,
		user:     opts.User,
		cfg:      opts.Cfg,
		report:   opts.Report,
		logger:   logging.GetLogger("executor"),
	}
}

// Run processes a batch, one component at a time. For uninstall the batch
// is processed in reverse catalog order, and a single autoremove sweep
// runs after all package removals.
func (e *Executor) Run(op Operation, batch []catalog.Component) Summary {
	ordered := make([]catalog.Component, len(batch))
	copy(ordered, batch)
	if op == OpUninstall {
		for i, j := 0, len(ordered)-1; i < j; i, j = i+1, j-1 {
			ordered[i], ordered[j] = ordered[j], ordered[i]
		}
	}

	summary := Summary{Op: op}
	removedPackages := false

	for _, c := range ordered {
		e.logger.Debug().Str("component", c.ID).Str("op", string(op)).Msg("Processing component")

		var res Result
		if op == OpInstall {
			res = e.Install(c)
		} else {
			res = e.Uninstall(c)
		}

		if op == OpUninstall && c.Kind == catalog.KindPackage && res.Status == StatusRemoved {
			removedPackages = true
		}

		if e.report != nil {
			e.report(res)
		}
		summary.Results = append(summary.Results, res)
	}

	if removedPackages {
		if err := e.packages.Autoremove(); err != nil {
			e.logger.Warn().Err(err).Msg("Autoremove sweep failed")
		}
	}

	return summary
}

func (e *Executor) resolvePath(p string) string {
	return paths.Resolve(p, e.cfg.InstallPrefix, e.user.Home)
}
