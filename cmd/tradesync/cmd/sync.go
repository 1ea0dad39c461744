package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Run a full bidirectional sync (push, then pull)",
	Long: `Push every local edit to the backend, then pull remote changes back.

Push always runs before pull, so offline edits reach the backend before
any remote data is merged into the local store.`,
	Args: cobra.NoArgs,
	RunE: runSync,
}

func init() {
	rootCmd.AddCommand(syncCmd)
}

func runSync(cmd *cobra.Command, args []string) error {
	eng, cfg, err := buildEngine()
	if err != nil {
		return err
	}

	res, err := eng.SyncBidirectional(cmd.Context(), cfg.Owner)
	if err != nil {
		return fmt.Errorf("sync: %w", err)
	}

	return printJSON(res)
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
