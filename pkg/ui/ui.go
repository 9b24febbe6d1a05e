// Package ui renders per-component status lines and batch summaries.
package ui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/pterm/pterm"

	"github.com/halfdome/devkit/pkg/executor"
)

var errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)

// RenderError formats a fatal error for stderr.
func RenderError(err error) string {
	return errorStyle.Render(fmt.Sprintf("Error: %v", err))
}

// PrintResult emits the single terminal status line for one component.
func PrintResult(r executor.Result) {
	line := fmt.Sprintf("%-14s %s", r.Component.ID, r.Message)
	switch r.Status {
	case executor.StatusInstalled, executor.StatusRemoved:
		pterm.Success.Println(line)
	case executor.StatusSkipped:
		pterm.Info.Println(line)
	case executor.StatusFailed:
		pterm.Error.Println(line)
	}
}

// PrintInvalid reports tokens that matched no catalog component.
func PrintInvalid(tokens []string) {
	for _, tok := range tokens {
		pterm.Warning.Printfln("%-14s unknown component, skipped", tok)
	}
}

// PrintSummary emits the batch summary after all status lines.
func PrintSummary(s executor.Summary) {
	verb := "installed"
	if s.Op == executor.OpUninstall {
		verb = "removed"
	}
	pterm.Println()
	pterm.Printfln("%d %s, %d skipped, %d failed",
		s.Succeeded(), verb, s.Skipped(), s.Failed())
}
