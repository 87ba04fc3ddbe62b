package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "revoke <permission-id>",
		Short: "Revoke a sharing permission by id",
		Long: `Removes the permission and its mirrored link. Use 'share status' to
find permission details; ids are the ULIDs shown by 'share grant'.`,
		Args: cobra.ExactArgs(1),
		RunE: runShareRevoke,
	}
	shareCmd.AddCommand(cmd)
}

func runShareRevoke(cmd *cobra.Command, args []string) error {
	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	if err := s.Share.RevokePermission(args[0]); err != nil {
		return fmt.Errorf("revoke: %w", err)
	}
	if err := s.Save(cmd.Context()); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "revoked %s\n", args[0])
	return nil
}
