package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var pullCmd = &cobra.Command{
	Use:   "pull",
	Short: "Pull remote records into the local store",
	Long: `Fetch the owner's remote records and apply them locally: insert
unknown records, merge newer ones, skip the rest. Never deletes local
records.

Examples:
  tradesync pull
  tradesync pull --updated-after 2026-01-15T00:00:00Z`,
	Args: cobra.NoArgs,
	RunE: runPull,
}

var pullUpdatedAfter string

func init() {
	rootCmd.AddCommand(pullCmd)
	pullCmd.Flags().StringVar(&pullUpdatedAfter, "updated-after", "", "only fetch records modified after this RFC3339 timestamp")
}

func runPull(cmd *cobra.Command, args []string) error {
	eng, cfg, err := buildEngine()
	if err != nil {
		return err
	}

	var cursor *time.Time
	if pullUpdatedAfter != "" {
		t, err := time.Parse(time.RFC3339, pullUpdatedAfter)
		if err != nil {
			return fmt.Errorf("parse --updated-after: %w", err)
		}
		cursor = &t
	}

	res, err := eng.PullAfter(cmd.Context(), cfg.Owner, cursor)
	if err != nil {
		return fmt.Errorf("pull: %w", err)
	}

	return printJSON(res)
}
