package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/boardkit/boardkit/internal/config"
	"github.com/boardkit/boardkit/internal/store"
	"github.com/boardkit/boardkit/internal/ui"
)

var docsCmd = &cobra.Command{
	Use:   "docs",
	Short: "List documents in a board file",
	RunE:  runDocs,
}

var docsShowCmd = &cobra.Command{
	Use:   "show <document-id>",
	Short: "Show a document summary",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocsShow,
}

func init() {
	docsCmd.AddCommand(docsShowCmd)
	rootCmd.AddCommand(docsCmd)
}

func openStore(cmd *cobra.Command) (*store.DB, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	path := documentPath(cfg)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("board document not found: %s", path)
	}
	return store.Open(cmd.Context(), path)
}

func runDocs(cmd *cobra.Command, _ []string) error {
	db, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer db.Close()

	infos, err := db.Documents(cmd.Context())
	if err != nil {
		return err
	}
	if len(infos) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "no documents")
		return nil
	}
	for _, info := range infos {
		fmt.Fprintf(cmd.OutOrStdout(), "%s  %-30s saved %s\n",
			info.ID, info.Title, info.SavedAt.Format(time.RFC3339))
	}
	return nil
}

func runDocsShow(cmd *cobra.Command, args []string) error {
	db, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer db.Close()

	doc, err := db.Load(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), ui.RenderDocumentSummary(doc))
	return nil
}
