package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/boardkit/boardkit/internal/ui"
)

func init() {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show every sharing connection and its state",
		Long: `Lists each granted permission with its consumer, provider, contract,
and derived connection status. A provider removed from the canvas shows as
broken; its permission stays until revoked or cleaned up.`,
		RunE: runShareStatus,
	}
	shareCmd.AddCommand(cmd)
}

func runShareStatus(cmd *cobra.Command, _ []string) error {
	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	doc := s.Share.Doc
	rows := make([]ui.ConnectionRow, 0, len(doc.DataSharing.Permissions))
	for _, p := range doc.DataSharing.Permissions {
		name := p.ContractID
		if c, ok := s.Contracts.Get(p.ContractID); ok && c.Name != "" {
			name = c.Name
		}
		rows = append(rows, ui.ConnectionRow{
			ConsumerTitle: widgetTitle(doc, p.ConsumerWidgetID),
			ProviderTitle: widgetTitle(doc, p.ProviderWidgetID),
			ContractName:  name,
			Status:        s.Share.Status(p.ConsumerWidgetID, p.ProviderWidgetID, p.ContractID),
			GrantedAt:     p.GrantedAt,
		})
	}

	fmt.Fprint(cmd.OutOrStdout(), ui.RenderConnections(doc.Title, rows))
	return nil
}
