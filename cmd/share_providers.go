package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/boardkit/boardkit/internal/access"
	"github.com/boardkit/boardkit/internal/ui"
)

func init() {
	cmd := &cobra.Command{
		Use:   "providers <contract>",
		Short: "List widgets that can provide a contract",
		Long: `Lists the widgets currently on the canvas whose module provides the
given contract, in canvas order. This is the set a consumer's source picker
would offer.`,
		Args: cobra.ExactArgs(1),
		RunE: runShareProviders,
	}
	shareCmd.AddCommand(cmd)
}

func runShareProviders(cmd *cobra.Command, args []string) error {
	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	contractID := args[0]
	c, ok := s.Contracts.Get(contractID)
	if !ok {
		return fmt.Errorf("unknown contract: %s", contractID)
	}
	name := c.Name
	if name == "" {
		name = c.ID
	}

	widgets := access.AvailableProviders(s.Contracts, s.Share.Doc.Widgets, contractID)
	fmt.Fprint(cmd.OutOrStdout(), ui.RenderProviders(name, widgets))
	return nil
}
