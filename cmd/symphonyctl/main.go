// Package main is the entry point for the symphonyctl CLI.
//
// symphonyctl bootstraps IBM Spectrum Symphony cluster nodes. It discovers
// the cluster master and management hosts in a shared directory, renders
// the EGO configuration consistently on every node and runs the scheduled
// autoscale jobs (autostart, cleanup, autostop).
//
// Commands: bootstrap, resolve, register, show, cleanup, autostart,
// autostop, version, completion.
//
// For detailed usage information, run:
//
//	symphonyctl --help
package main

import (
	"fmt"
	"os"

	"github.com/imamik/symphonyctl/cmd/symphonyctl/commands"
)

// Version information set by goreleaser at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	commands.SetVersionInfo(version, commit, date)
	if err := commands.Root().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
