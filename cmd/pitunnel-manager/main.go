// Package main is the entry point for the pitunnel-manager binary.
//
// pitunnel-manager is a terminal application that combines an interactive
// full-screen menu (built with Bubble Tea) and a CLI (built with Cobra) for
// managing tunnels run through the external pitunnel binary.
//
// When invoked without arguments, it launches the interactive menu.
// When invoked with subcommands (e.g. "list", "create", "reload"), it runs
// the corresponding operation and exits.
//
// Usage:
//
//	pitunnel-manager                  # launch the interactive menu
//	pitunnel-manager list             # list running tunnel processes
//	pitunnel-manager create --port 80 # launch a tunnel without the menu
//
// The CLI is constructed in internal/cli and the menu in internal/ui. This
// file simply wires them together and handles top-level error reporting.
package main

import (
	"fmt"
	"os"

	"github.com/treykane/pitunnel-manager/internal/cli"
)

func main() {
	cmd := cli.NewRootCommand()

	// Execute the resolved command. Cobra handles argument parsing,
	// subcommand routing, and help/usage output automatically. Any error
	// returned by a RunE handler is printed to stderr and the process
	// exits with a non-zero status code. A normal quit or operator
	// interrupt of the menu exits 0.
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
