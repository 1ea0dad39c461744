package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/tradesync/export"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export local trade records to CSV",
	Args:  cobra.NoArgs,
	RunE:  runExport,
}

var exportOut string

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringVar(&exportOut, "out", "", "output file (default stdout)")
}

func runExport(cmd *cobra.Command, args []string) error {
	eng, cfg, err := buildEngine()
	if err != nil {
		return err
	}

	recs, err := eng.LocalRecords(cmd.Context(), cfg.Owner)
	if err != nil {
		return fmt.Errorf("list records: %w", err)
	}

	w := os.Stdout
	if exportOut != "" {
		f, err := os.Create(exportOut)
		if err != nil {
			return fmt.Errorf("create output: %w", err)
		}
		defer f.Close()
		w = f
	}

	if err := export.WriteCSV(w, recs); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	return nil
}
