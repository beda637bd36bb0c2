package cmd

import (
	"github.com/spf13/cobra"

	"github.com/battlecast/battlecast/internal/app"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the tracker: stream ingestion, triggers and the control API",
	Run: func(cmd *cobra.Command, args []string) {
		app.Main()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
