// Package cli wires the cobra command tree.
package cli

import (
	"fmt"

	"github.com/pterm/pterm"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/halfdome/devkit/internal/version"
	"github.com/halfdome/devkit/pkg/catalog"
	"github.com/halfdome/devkit/pkg/config"
	"github.com/halfdome/devkit/pkg/detect"
	"github.com/halfdome/devkit/pkg/errors"
	"github.com/halfdome/devkit/pkg/executor"
	"github.com/halfdome/devkit/pkg/gitalias"
	"github.com/halfdome/devkit/pkg/logging"
	"github.com/halfdome/devkit/pkg/pkgmgr"
	"github.com/halfdome/devkit/pkg/selection"
	"github.com/halfdome/devkit/pkg/shellcfg"
	"github.com/halfdome/devkit/pkg/ui"
	"github.com/halfdome/devkit/pkg/usercontext"
)

// NewRootCmd creates and returns the root command
func NewRootCmd() *cobra.Command {
	var (
		verbosity int
		assumeYes bool
	)

	rootCmd := &cobra.Command{
		Use:   "devkit",
		Short: "Idempotent developer environment provisioning",
		Long: `devkit installs and removes a fixed catalog of developer-environment
components (packages, editors, runtime managers, shell and git configuration)
on this machine. Every operation is idempotent: running it again converges to
the same state without duplicating side effects.`,
		Version: version.Version,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.SetupLogger(verbosity)
			log.Debug().Str("command", cmd.Name()).Msg("Command started")
		},
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		DisableAutoGenTag: true,
	}

	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", "Increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE)")
	rootCmd.PersistentFlags().BoolVarP(&assumeYes, "yes", "y", false, "Assume yes on every confirmation prompt")

	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newListCmd())
	rootCmd.AddCommand(newTransitionCmd(executor.OpInstall, &assumeYes))
	rootCmd.AddCommand(newTransitionCmd(executor.OpUninstall, &assumeYes))

	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Printf("devkit version %s\n", version.Version)
			if hasBuildInfo(version.Commit) {
				cmd.Printf("Commit: %s\n", version.Commit)
			}
			if hasBuildInfo(version.Date) {
				cmd.Printf("Built:  %s\n", version.Date)
			}
		},
	}
}

// hasBuildInfo reports whether a build-time variable carries a real
// value rather than the default a non-goreleaser build leaves behind.
func hasBuildInfo(v string) bool {
	return v != "" && v != "unknown"
}

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the component catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			rows := pterm.TableData{{"ID", "KIND", "DESCRIPTION"}}
			for _, c := range catalog.All() {
				rows = append(rows, []string{c.ID, c.Kind.String(), c.Desc})
			}
			return pterm.DefaultTable.WithHasHeader().WithData(rows).Render()
		},
	}
}

func newTransitionCmd(op executor.Operation, assumeYes *bool) *cobra.Command {
	short := "Install components from the catalog"
	long := `Install one or more components. Targets:

  (nothing) or menu   interactive multi-select
  all                 the whole catalog (confirmation required)
  <id>[,<id>...]      specific components by id`
	if op == executor.OpUninstall {
		short = "Uninstall components and their owned artifacts"
		long = `Uninstall one or more components, removing only the artifacts devkit
attributes to them. Targets are the same as for install; removal always
asks for confirmation.`
	}

	return &cobra.Command{
		Use:     string(op) + " [target]",
		Short:   short,
		Long:    long,
		Args:    cobra.ArbitraryArgs,
		Example: fmt.Sprintf("  devkit %s neovim\n  devkit %s neovim,gh,tmux\n  devkit %s all", op, op, op),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTransition(op, args, *assumeYes)
		},
	}
}

// runTransition is the front-end control flow: privilege gate, selection,
// confirmation, execution, reporting.
func runTransition(op executor.Operation, args []string, assumeYes bool) error {
	user, err := usercontext.Resolve()
	if err != nil {
		return err
	}

	// Checked once, before any side effect; everything after this line
	// may assume elevation. File logging comes after the gate so that a
	// refused invocation leaves the file system untouched.
	if !user.IsElevated() {
		return errors.New(errors.ErrNotPrivileged, "devkit must run with elevated privileges (try: sudo devkit ...)")
	}
	logging.EnableFileLogging()

	cfg, err := config.Load(user)
	if err != nil {
		return err
	}

	apt := pkgmgr.NewApt(cfg.AptBin, nil)
	mutator := shellcfg.New(user)
	aliases := gitalias.New(user)
	detector := detect.New(apt, aliases, mutator, user, cfg)

	exec := executor.New(executor.Options{
		Detector: detector,
		Packages: apt,
		Mutator:  mutator,
		Aliases:  aliases,
		User:     user,
		Cfg:      cfg,
		Report:   ui.PrintResult,
	})

	controller := selection.New(assumeYes)
	res, err := controller.Resolve(args)
	if err != nil {
		return err
	}
	if controller.State() == selection.Terminated {
		pterm.Info.Println("Nothing selected.")
		return nil
	}

	ui.PrintInvalid(res.Invalid)
	if len(res.Components) == 0 {
		pterm.Info.Println("No valid components to process.")
		return nil
	}

	ok, err := controller.Confirm(op, &res)
	if err != nil {
		return err
	}
	if !ok {
		pterm.Info.Println("Aborted, nothing changed.")
		return nil
	}
	if len(res.Components) == 0 {
		pterm.Info.Println("All selected removals declined, nothing changed.")
		return nil
	}

	summary := exec.Run(op, res.Components)
	controller.FinishReporting()
	ui.PrintSummary(summary)
	return nil
}
