package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/boardkit/boardkit/internal/board"
	"github.com/boardkit/boardkit/internal/config"
	"github.com/boardkit/boardkit/internal/contract"
	"github.com/boardkit/boardkit/internal/store"
	"github.com/boardkit/boardkit/internal/ui"
)

var validateCmd = &cobra.Command{
	Use:   "validate [file]",
	Short: "Check a board document for sharing-state problems",
	Long: `Validates every document in the board file: schema version, link and
permission consistency, contract ids, and provider existence. Exits non-zero
when problems are found.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	path := documentPath(cfg)
	if len(args) == 1 {
		path = args[0]
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return fmt.Errorf("board document not found: %s", path)
	}

	ctx := cmd.Context()
	db, err := store.Open(ctx, path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer db.Close()

	contracts := contract.NewRegistry()
	consumers := contract.NewConsumerRegistry(contracts)
	if err := contract.RegisterBuiltins(contracts, consumers); err != nil {
		return err
	}
	if err := loadManifests(cfg.ManifestDir, contracts, consumers); err != nil {
		return err
	}

	infos, err := db.Documents(ctx)
	if err != nil {
		return err
	}

	var findings []ui.ValidationFinding
	for _, info := range infos {
		doc, err := db.Load(ctx, info.ID)
		if err != nil {
			return err
		}
		findings = append(findings, validateDocument(doc, contracts)...)
	}

	fmt.Fprint(cmd.OutOrStdout(), ui.RenderValidation(path, findings))
	if len(findings) > 0 {
		// Returned rather than exiting here so the deferred db.Close runs;
		// Execute turns the error into a non-zero exit.
		return fmt.Errorf("validate: %d problem(s) found in %s", len(findings), path)
	}
	return nil
}

// validateDocument checks one document's sharing state against the
// registered contracts. Broken connections are reported but are not
// repaired; they are a legitimate state the user resolves by reconnecting.
func validateDocument(doc *board.Document, contracts *contract.Registry) []ui.ValidationFinding {
	var findings []ui.ValidationFinding

	if doc.SchemaVersion > board.SchemaVersion {
		findings = append(findings, ui.ValidationFinding{
			Kind:   "future-schema",
			Detail: fmt.Sprintf("document %s is schema v%d, newer than supported v%d", doc.ID, doc.SchemaVersion, board.SchemaVersion),
		})
		return findings
	}
	if doc.SchemaVersion < board.SchemaVersion {
		findings = append(findings, ui.ValidationFinding{
			Kind:   "stale-schema",
			Detail: fmt.Sprintf("document %s is schema v%d and will be migrated on open", doc.ID, doc.SchemaVersion),
		})
	}

	for _, p := range doc.DataSharing.Permissions {
		if !contracts.Has(p.ContractID) {
			findings = append(findings, ui.ValidationFinding{
				Kind:   "unknown-contract",
				Detail: fmt.Sprintf("permission %s references unregistered contract %s", p.ID, p.ContractID),
			})
		}
		if !doc.HasWidget(p.ProviderWidgetID) {
			findings = append(findings, ui.ValidationFinding{
				Kind:   "broken-provider",
				Detail: fmt.Sprintf("permission %s: provider widget %s is not on the canvas", p.ID, p.ProviderWidgetID),
			})
		}
		if !doc.HasWidget(p.ConsumerWidgetID) {
			findings = append(findings, ui.ValidationFinding{
				Kind:   "missing-consumer",
				Detail: fmt.Sprintf("permission %s: consumer widget %s is not on the canvas", p.ID, p.ConsumerWidgetID),
			})
		}
	}

	// Links must mirror permissions one-to-one.
	perms := make(map[board.Link]bool, len(doc.DataSharing.Permissions))
	for _, p := range doc.DataSharing.Permissions {
		perms[board.Link{
			ConsumerWidgetID: p.ConsumerWidgetID,
			ProviderWidgetID: p.ProviderWidgetID,
			ContractID:       p.ContractID,
		}] = true
	}
	linked := make(map[board.Link]bool, len(doc.DataSharing.Links))
	for _, l := range doc.DataSharing.Links {
		linked[l] = true
		if !perms[l] {
			findings = append(findings, ui.ValidationFinding{
				Kind:   "orphan-link",
				Detail: fmt.Sprintf("link %s ← %s (%s) has no matching permission", l.ConsumerWidgetID, l.ProviderWidgetID, l.ContractID),
			})
		}
	}
	for l := range perms {
		if !linked[l] {
			findings = append(findings, ui.ValidationFinding{
				Kind:   "missing-link",
				Detail: fmt.Sprintf("permission for %s ← %s (%s) has no mirrored link", l.ConsumerWidgetID, l.ProviderWidgetID, l.ContractID),
			})
		}
	}

	return findings
}
