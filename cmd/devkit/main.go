package main

import (
	"fmt"
	"os"

	"github.com/halfdome/devkit/internal/cli"
	"github.com/halfdome/devkit/pkg/ui"
)

func main() {
	rootCmd := cli.NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, ui.RenderError(err))
		os.Exit(1)
	}
}
