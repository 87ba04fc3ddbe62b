package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/boardkit/boardkit/internal/config"
	"github.com/boardkit/boardkit/internal/contract"
)

var contractsCmd = &cobra.Command{
	Use:   "contracts",
	Short: "List registered data contracts",
	Long: `Lists the built-in contract catalogue plus any contracts registered by
manifests in the configured manifest directory.`,
	RunE: runContracts,
}

func init() {
	rootCmd.AddCommand(contractsCmd)
}

func runContracts(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	contracts := contract.NewRegistry()
	consumers := contract.NewConsumerRegistry(contracts)
	if err := contract.RegisterBuiltins(contracts, consumers); err != nil {
		return err
	}
	if err := loadManifests(cfg.ManifestDir, contracts, consumers); err != nil {
		return err
	}

	for _, c := range contracts.All() {
		fmt.Fprintf(cmd.OutOrStdout(), "%-28s %-10s %s\n", c.ID, c.Version, c.Name)
		if cfg.Verbose && c.Description != "" {
			fmt.Fprintf(cmd.OutOrStdout(), "  %s\n", c.Description)
		}
	}
	return nil
}
