package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/battlecast/battlecast/internal/gamestate"
	"github.com/battlecast/battlecast/internal/rules"
	"github.com/battlecast/battlecast/internal/rules/scripts"
	"github.com/battlecast/battlecast/internal/script"
)

// triggersCmd represents the triggers command
var triggersCmd = &cobra.Command{
	Use:   "triggers",
	Short: "List the built-in trigger catalog",
	Long: `Prints every trigger the tracker registers at startup, with its
default cooldown and whether it fires repeatedly or once per game.`,
	Run: func(cmd *cobra.Command, args []string) {
		registry := script.NewRegistry("")
		for name, content := range scripts.All() {
			registry.AddEmbedded(name, content)
		}
		defs := rules.Catalog(gamestate.New(), script.NewEngine(script.DefaultTimeout), registry)

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tCOOLDOWN\tREPEATABLE")
		for _, def := range defs {
			fmt.Fprintf(w, "%s\t%s\t%s\t%t\n", def.ID, def.Name, def.Cooldown, def.Repeatable)
		}
		w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(triggersCmd)
}
