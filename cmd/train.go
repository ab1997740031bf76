package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"os/signal"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/voiceops/speechadmin/internal/catalog"
	"github.com/voiceops/speechadmin/internal/exitcode"
	"github.com/voiceops/speechadmin/internal/trainview"
)

var trainServerURL string

var trainCmd = &cobra.Command{
	Use:   "train <model-id>",
	Short: "Train a model and stream its log",
	Args:  cobra.ExactArgs(1),
	RunE:  runTrain,
}

func init() {
	trainCmd.Flags().StringVar(&trainServerURL, "server", "http://127.0.0.1:8099", "speechadmin server to train against")
	rootCmd.AddCommand(trainCmd)
}

func runTrain(cmd *cobra.Command, args []string) error {
	model, err := catalog.Get(args[0])
	if err != nil {
		return err
	}

	trainURL := fmt.Sprintf("%s/api/train?id=%s", trainServerURL, url.QueryEscape(model.ID))
	client := &http.Client{}

	if term.IsTerminal(int(os.Stdout.Fd())) {
		p := tea.NewProgram(trainview.New(client, trainURL, model.ID))
		_, err := p.Run()
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	err = trainview.RunPlain(ctx, client, trainURL, func(s string) {
		fmt.Print(s)
	})
	if errors.Is(err, context.Canceled) {
		return exitcode.Cancel()
	}
	return err
}
