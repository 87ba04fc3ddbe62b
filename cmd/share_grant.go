package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "grant <consumer-widget> <provider-widget> <contract>",
		Short: "Grant a consumer widget read access to a provider",
		Long: `Grants a read permission for the (consumer, provider, contract) triple
and mirrors it as a link. Granting an already-granted triple is a no-op and
returns the existing permission.`,
		Args: cobra.ExactArgs(3),
		RunE: runShareGrant,
	}
	shareCmd.AddCommand(cmd)
}

func runShareGrant(cmd *cobra.Command, args []string) error {
	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	consumerID, providerID, contractID := args[0], args[1], args[2]
	if !s.Share.Doc.HasWidget(providerID) {
		return fmt.Errorf("provider widget %s is not on the canvas", providerID)
	}

	p, err := s.Share.GrantPermission(consumerID, providerID, contractID)
	if err != nil {
		return fmt.Errorf("grant: %w", err)
	}
	if err := s.Save(cmd.Context()); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "granted %s: %s ← %s (%s)\n",
		p.ID, consumerID, providerID, contractID)
	return nil
}
