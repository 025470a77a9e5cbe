// Package cmd provides the command-line interface of oceandist.
package cmd

import (
	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "oceandist",
	Short: "oceandist runs and inspects domain-decomposed ocean model runs.",
	Long: `oceandist runs a domain-decomposed ocean model over an ` +
		`in-process group of ranks and prints how a domain is split ` +
		`across a process grid.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags
// appropriately.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		atexit.Exit(exitCode(err))
	}
}
