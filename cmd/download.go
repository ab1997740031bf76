package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/voiceops/speechadmin/internal/catalog"
	"github.com/voiceops/speechadmin/internal/config"
	"github.com/voiceops/speechadmin/internal/download"
)

var downloadCmd = &cobra.Command{
	Use:   "download <model-id>",
	Short: "Download and extract a model",
	Args:  cobra.ExactArgs(1),
	RunE:  runDownload,
}

func init() {
	rootCmd.AddCommand(downloadCmd)
}

func runDownload(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	model, err := catalog.Get(args[0])
	if err != nil {
		return err
	}
	if catalog.IsDownloaded(cfg.ModelsDir(), model.ID) {
		fmt.Printf("%s is already downloaded\n", model.ID)
		return nil
	}

	d := download.New(cfg.ModelsDir())
	return d.Download(cmd.Context(), model, func(line string) {
		fmt.Println(line)
	})
}
