package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show sync state for the owner",
	Long:  `Read-only diagnostic: counts unsynced records, total mappings, and mappings whose local record is missing.`,
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	eng, cfg, err := buildEngine()
	if err != nil {
		return err
	}

	st, err := eng.DebugState(cmd.Context(), cfg.Owner)
	if err != nil {
		return fmt.Errorf("status: %w", err)
	}

	return printJSON(st)
}
