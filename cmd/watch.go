package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/boardkit/boardkit/internal/config"
	"github.com/boardkit/boardkit/internal/store"
)

var watchCmd = &cobra.Command{
	Use:   "watch [file]",
	Short: "Watch a board document for external changes",
	Long: `Watches the board file and reports every external modification until
interrupted. Use this to observe another process editing the same document.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
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

	w, err := store.NewWatcher(path)
	if err != nil {
		return fmt.Errorf("watch %s: %w", path, err)
	}
	if err := w.Start(); err != nil {
		return fmt.Errorf("watch %s: %w", path, err)
	}
	defer w.Stop()

	fmt.Fprintf(cmd.ErrOrStderr(), "watching %s (ctrl-c to stop)\n", path)
	for {
		select {
		case change, ok := <-w.Changes:
			if !ok {
				return nil
			}
			switch change.Kind {
			case store.ChangeRemoved:
				fmt.Fprintf(cmd.OutOrStdout(), "removed  %s\n", change.File)
			default:
				fmt.Fprintf(cmd.OutOrStdout(), "modified %s\n", change.File)
			}
		case <-cmd.Context().Done():
			return nil
		}
	}
}
