// Package selection resolves what the user asked for into an ordered batch
// of catalog components, and gates destructive or bulk operations behind
// explicit confirmation.
package selection

import (
	"fmt"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/pterm/pterm"
	"github.com/rs/zerolog"

	"github.com/halfdome/devkit/pkg/catalog"
	"github.com/halfdome/devkit/pkg/errors"
	"github.com/halfdome/devkit/pkg/executor"
	"github.com/halfdome/devkit/pkg/logging"
)

// State tracks the controller through one invocation.
type State int

const (
	Idle State = iota
	AwaitingSelection
	Confirming
	Executing
	Reporting
	Terminated
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case AwaitingSelection:
		return "awaiting-selection"
	case Confirming:
		return "confirming"
	case Executing:
		return "executing"
	case Reporting:
		return "reporting"
	case Terminated:
		return "terminated"
	default:
		return "unknown"
	}
}

// Resolution is the outcome of target resolution: the valid components in
// install order plus every token that matched nothing. Invalid tokens are
// reported individually and never abort the valid subset.
type Resolution struct {
	Components []catalog.Component
	Invalid    []string
	// All marks a whole-catalog selection, which always confirms.
	All bool
}

// Controller is the selection state machine.
type Controller struct {
	// AssumeYes approves every confirmation gate without prompting,
	// for non-interactive use.
	AssumeYes bool

	state   State
	menu    func(options []string) ([]string, error)
	confirm func(prompt string) (bool, error)
	tty     func() bool
	logger  zerolog.Logger
}

// New returns a controller using pterm for interaction.
func New(assumeYes bool) *Controller {
	return &Controller{
		AssumeYes: assumeYes,
		state:     Idle,
		menu:      ptermMenu,
		confirm:   ptermConfirm,
		tty:       isTerminal,
		logger:    logging.GetLogger("selection"),
	}
}

// State returns the controller's current state.
func (c *Controller) State() State { return c.state }

// Resolve turns the CLI arguments into a Resolution. Accepted specifiers:
// nothing or "menu" (interactive multi-select), "all", a single component
// id, or a comma-separated id list.
func (c *Controller) Resolve(args []string) (Resolution, error) {
	c.state = AwaitingSelection

	if len(args) == 0 || (len(args) == 1 && args[0] == "menu") {
		return c.resolveMenu()
	}

	if len(args) == 1 && args[0] == "all" {
		return Resolution{Components: catalog.All(), All: true}, nil
	}

	var tokens []string
	for _, arg := range args {
		for _, tok := range strings.Split(arg, ",") {
			tok = strings.TrimSpace(tok)
			if tok != "" {
				tokens = append(tokens, tok)
			}
		}
	}

	return c.resolveTokens(tokens), nil
}

func (c *Controller) resolveMenu() (Resolution, error) {
	// --yes approves gates, it does not conjure a terminal: menu mode
	// always needs one.
	if !c.tty() {
		return Resolution{}, errors.New(errors.ErrNotInteractive,
			"interactive selection needs a terminal; pass component ids or \"all\" instead")
	}

	selected, err := c.menu(catalog.IDs())
	if err != nil {
		return Resolution{}, errors.Wrap(err, errors.ErrInternal, "interactive selection failed")
	}
	if len(selected) == 0 {
		c.state = Terminated
		return Resolution{}, nil
	}
	return c.resolveTokens(selected), nil
}

// resolveTokens maps tokens to components, deduplicates, and orders the
// result by catalog install order.
func (c *Controller) resolveTokens(tokens []string) Resolution {
	var res Resolution
	want := make(map[string]bool)

	for _, tok := range tokens {
		if _, err := catalog.Lookup(tok); err != nil {
			c.logger.Debug().Str("token", tok).Msg("Invalid component token")
			res.Invalid = append(res.Invalid, tok)
			continue
		}
		want[tok] = true
	}

	for _, comp := range catalog.All() {
		if want[comp.ID] {
			res.Components = append(res.Components, comp)
		}
	}
	return res
}

// Confirm applies the confirmation gates for the batch and advances the
// state machine. It returns false when the user declined the batch gate;
// a decline is a clean exit, not an error. Components whose dedicated
// destructive-removal gate is declined are dropped from the batch.
func (c *Controller) Confirm(op executor.Operation, res *Resolution) (bool, error) {
	c.state = Confirming

	if needsBatchGate(op, res) {
		prompt := fmt.Sprintf("%s %d component(s)?", verb(op), len(res.Components))
		if res.All {
			prompt = fmt.Sprintf("%s ALL %d catalog components?", verb(op), len(res.Components))
		}
		ok, err := c.gate(prompt)
		if err != nil {
			return false, err
		}
		if !ok {
			c.logger.Info().Msg("Batch declined by user")
			c.state = Terminated
			return false, nil
		}
	}

	if op == executor.OpUninstall {
		kept := res.Components[:0]
		for _, comp := range res.Components {
			if !comp.DangerousRemove {
				kept = append(kept, comp)
				continue
			}
			ok, err := c.gate(fmt.Sprintf(
				"%s removes its entire data directory, including everything installed through it. Remove?",
				comp.Name))
			if err != nil {
				return false, err
			}
			if ok {
				kept = append(kept, comp)
			} else {
				c.logger.Info().Str("component", comp.ID).Msg("Destructive removal declined, skipping component")
			}
		}
		res.Components = kept
	}

	c.state = Executing
	return true, nil
}

// FinishReporting moves the controller through Reporting to its terminal
// state after a batch completes.
func (c *Controller) FinishReporting() {
	c.state = Reporting
	c.state = Idle
}

// Terminate marks an explicit quit.
func (c *Controller) Terminate() {
	c.state = Terminated
}

func (c *Controller) gate(prompt string) (bool, error) {
	if c.AssumeYes {
		c.logger.Debug().Str("prompt", prompt).Msg("Confirmation auto-approved (--yes)")
		return true, nil
	}
	return c.confirm(prompt)
}

// needsBatchGate: any bulk or multi-component batch confirms before
// executing, and so does every uninstall; only a single named install
// skips the gate.
func needsBatchGate(op executor.Operation, res *Resolution) bool {
	if res.All || len(res.Components) > 1 {
		return true
	}
	return op == executor.OpUninstall
}

func verb(op executor.Operation) string {
	if op == executor.OpInstall {
		return "Install"
	}
	return "Uninstall"
}

func isTerminal() bool {
	fd := os.Stdin.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func ptermMenu(options []string) ([]string, error) {
	return pterm.DefaultInteractiveMultiselect.
		WithOptions(options).
		WithFilter(false).
		Show("Select components")
}

func ptermConfirm(prompt string) (bool, error) {
	return pterm.DefaultInteractiveConfirm.Show(prompt)
}
