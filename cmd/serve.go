package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/voiceops/speechadmin/internal/config"
	"github.com/voiceops/speechadmin/internal/download"
	"github.com/voiceops/speechadmin/internal/hass"
	"github.com/voiceops/speechadmin/internal/lexicon"
	"github.com/voiceops/speechadmin/internal/pprof"
	"github.com/voiceops/speechadmin/internal/sentences"
	"github.com/voiceops/speechadmin/internal/training"
	"github.com/voiceops/speechadmin/internal/web"
)

var serveAddr string
var servePprofPort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the model management web server",
	Long: `Run the web UI for managing speech models: downloading, editing
sentences, looking up pronunciations, and training with a live log.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default from config)")
	serveCmd.Flags().IntVar(&servePprofPort, "pprof-port", -1, "Serve pprof on this localhost port (0 picks a free one)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	addr := serveAddr
	if addr == "" {
		addr = cfg.ListenAddr()
	}

	opts := web.Options{
		ModelsDir:  cfg.ModelsDir(),
		Trainer:    training.New(cfg.ModelsDir(), cfg.TrainDir(), cfg.ToolsDir()),
		Downloader: download.New(cfg.ModelsDir()),
		Sentences:  sentences.NewStore(cfg.TrainDir()),
		Resolver: &lexicon.Resolver{
			ModelsDir:        cfg.ModelsDir(),
			PhonetisaurusBin: cfg.ToolsDir() + "/phonetisaurus",
		},
		Debug: debug,
	}
	if cfg.Hass.Token != "" {
		opts.Hass = &hass.Client{
			Host:     cfg.Hass.Host,
			Port:     cfg.Hass.Port,
			Protocol: cfg.Hass.Protocol,
			Token:    cfg.Hass.Token,
		}
	}

	srv, err := web.NewServer(opts)
	if err != nil {
		return err
	}

	if servePprofPort >= 0 {
		pp := pprof.NewServer()
		port, err := pp.Start(servePprofPort)
		if err != nil {
			return fmt.Errorf("start pprof server: %w", err)
		}
		fmt.Fprintf(os.Stderr, "pprof on http://127.0.0.1:%d/debug/pprof/\n", port)
		defer pp.Stop(context.Background())
	}

	bound, err := srv.Start(addr)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "listening on http://%s\n", bound)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Stop(ctx)
}
