package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "cleanup <widget-id>",
		Short: "Remove every permission touching a widget",
		Long: `Removes all permissions and links where the widget is consumer or
provider. Run after deleting a widget to clear its sharing state; consumers
that were reading from it drop to disconnected.`,
		Args: cobra.ExactArgs(1),
		RunE: runShareCleanup,
	}
	shareCmd.AddCommand(cmd)
}

func runShareCleanup(cmd *cobra.Command, args []string) error {
	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	removed := s.Share.CleanupWidget(args[0])
	if removed > 0 {
		if err := s.Save(cmd.Context()); err != nil {
			return err
		}
	}

	fmt.Fprintf(cmd.OutOrStdout(), "removed %d permission(s) for %s\n", removed, args[0])
	return nil
}
