package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "battlecast",
	Short: "BattleCast live game event tracker",
	Long: `BattleCast connects to a live game telemetry stream, maintains the
game state and fires configurable audio/visual triggers on notable events.

Available commands:
  serve      Connect to the stream and run the tracker with its control API
  triggers   List the built-in trigger catalog

Use "battlecast [command] --help" for more information about a specific command.`,
}

// Execute executes the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
