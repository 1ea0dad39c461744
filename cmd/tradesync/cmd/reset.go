package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Discard the local store, mappings included",
	Long: `Delete the local store files so the next run starts from an empty
store. All local records and sync mappings are lost; anything already
pushed can be pulled back from the backend.`,
	Args: cobra.NoArgs,
	RunE: runReset,
}

var resetYes bool

func init() {
	rootCmd.AddCommand(resetCmd)
	resetCmd.Flags().BoolVar(&resetYes, "yes", false, "confirm the reset")
}

func runReset(cmd *cobra.Command, args []string) error {
	if !resetYes {
		return fmt.Errorf("reset is a destructive recovery action; re-run with --yes to confirm")
	}

	eng, cfg, err := buildEngine()
	if err != nil {
		return err
	}

	if err := eng.Reset(); err != nil {
		return fmt.Errorf("reset store: %w", err)
	}
	fmt.Printf("local store at %s reset\n", cfg.Store.Path)
	return nil
}
