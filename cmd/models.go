package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/voiceops/speechadmin/internal/catalog"
	"github.com/voiceops/speechadmin/internal/config"
)

var modelsJSON bool

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List available and downloaded models",
	Long: `List the models in the catalog and whether each has been downloaded.

Examples:
  speechadmin models          # table output
  speechadmin models --json   # output as JSON`,
	RunE: runModels,
}

func init() {
	rootCmd.AddCommand(modelsCmd)
	modelsCmd.Flags().BoolVar(&modelsJSON, "json", false, "Output as JSON")
}

func runModels(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	downloaded := catalog.Downloaded(cfg.ModelsDir())

	if modelsJSON {
		type row struct {
			ID         string `json:"id"`
			Language   string `json:"language"`
			SizeMB     int    `json:"size_mb"`
			Downloaded bool   `json:"downloaded"`
		}
		rows := make([]row, 0, len(catalog.Models))
		for _, m := range catalog.List() {
			rows = append(rows, row{
				ID:         m.ID,
				Language:   m.Language,
				SizeMB:     m.SizeMB,
				Downloaded: downloaded[m.ID],
			})
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(rows)
	}

	for _, m := range catalog.List() {
		mark := " "
		if downloaded[m.ID] {
			mark = "*"
		}
		fmt.Printf("%s %-16s %-14s %d MB\n", mark, m.ID, m.Language, m.SizeMB)
	}
	fmt.Println("\n* = downloaded")
	return nil
}
