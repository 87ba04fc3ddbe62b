package cmd

import (
	"github.com/spf13/cobra"
)

var shareCmd = &cobra.Command{
	Use:   "share",
	Short: "Inspect and manage inter-widget sharing permissions",
	Long: `The share command group manages the data-sharing state of a board
document: which consumer widgets read from which providers, under which
contracts. Mutations save the document before returning.`,
}

func init() {
	rootCmd.AddCommand(shareCmd)
}
