package cmd

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/voiceops/speechadmin/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Interactive first-run setup",
	RunE:  runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	if config.Exists() {
		var overwrite bool
		confirm := huh.NewForm(
			huh.NewGroup(
				huh.NewConfirm().
					Title("A config file already exists. Overwrite it?").
					Value(&overwrite),
			),
		)
		if err := confirm.Run(); err != nil {
			return err
		}
		if !overwrite {
			return nil
		}
	}

	fmt.Println("Welcome to speechadmin! Let's get you set up.")

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	dataDir := cfg.DataDir
	port := strconv.Itoa(cfg.Server.Port)
	useHass := cfg.Hass.Token != ""
	hassHost := cfg.Hass.Host
	hassToken := cfg.Hass.Token

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Data directory").
				Description("Models, sentences and training artifacts live here").
				Value(&dataDir),
			huh.NewInput().
				Title("Web server port").
				Value(&port).
				Validate(func(s string) error {
					n, err := strconv.Atoi(s)
					if err != nil || n < 1 || n > 65535 {
						return fmt.Errorf("enter a port between 1 and 65535")
					}
					return nil
				}),
			huh.NewConfirm().
				Title("Connect to Home Assistant?").
				Description("Used to list entities exposed to voice assistants").
				Value(&useHass),
		),
	)
	if err := form.Run(); err != nil {
		return err
	}

	if useHass {
		hassForm := huh.NewForm(
			huh.NewGroup(
				huh.NewInput().
					Title("Home Assistant host").
					Value(&hassHost),
				huh.NewInput().
					Title("Long-lived access token").
					Description("You can also leave this as ${HASS_TOKEN} to read it from the environment").
					Value(&hassToken),
			),
		)
		if err := hassForm.Run(); err != nil {
			return err
		}
	} else {
		hassToken = ""
	}

	cfg.DataDir = dataDir
	cfg.Server.Port, _ = strconv.Atoi(port)
	cfg.Hass.Host = hassHost
	cfg.Hass.Token = hassToken

	if err := config.Save(cfg); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	path, _ := config.GetConfigPath()
	fmt.Printf("Config saved to %s\n", path)
	return nil
}
