package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "xvsched",
	Short: "A command-line tool for driving and inspecting the xvsched scheduler core.",
	Run:   runRoot,
}

var runCmd = &cobra.Command{
	Use:     "run",
	Aliases: []string{"demo"},
	Short:   "Run a scheduling demo scenario and report the resulting process table.",
	Run:     runRun,
}
