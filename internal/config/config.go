package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	DataDir string       `mapstructure:"data_dir"`
	Server  ServerConfig `mapstructure:"server"`
	Hass    HassConfig   `mapstructure:"hass"`
}

type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

// HassConfig holds the Home Assistant connection used to fetch
// entities exposed to voice assistants.
type HassConfig struct {
	Token    string `mapstructure:"token"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Protocol string `mapstructure:"protocol"`
}

func Load() (*Config, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get config dir: %w", err)
	}

	configPath := filepath.Join(configDir, "speechadmin")

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(configPath)
	viper.AddConfigPath(".")

	// Set defaults
	viper.SetDefault("data_dir", defaultDataDir())
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8099)
	viper.SetDefault("hass.host", "homeassistant.local")
	viper.SetDefault("hass.port", 8123)
	viper.SetDefault("hass.protocol", "http")

	// Read config file (optional - won't error if missing)
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Expand environment variables in the token
	cfg.Hass.Token = expandEnv(cfg.Hass.Token)

	// Fall back to environment variables if not set
	if cfg.Hass.Token == "" {
		cfg.Hass.Token = os.Getenv("HASS_TOKEN")
	}

	return &cfg, nil
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "data"
	}
	return filepath.Join(home, ".local", "share", "speechadmin")
}

// ModelsDir is where downloaded models are extracted.
func (c *Config) ModelsDir() string { return filepath.Join(c.DataDir, "models") }

// TrainDir holds per-model sentences and training artifacts.
func (c *Config) TrainDir() string { return filepath.Join(c.DataDir, "train") }

// ToolsDir holds the external training toolchain (kaldi, opengrm, phonetisaurus).
func (c *Config) ToolsDir() string { return filepath.Join(c.DataDir, "tools") }

// SentencesPath is the sentences.yaml location for a model.
func (c *Config) SentencesPath(modelID string) string {
	return filepath.Join(c.TrainDir(), modelID, "sentences.yaml")
}

// ListenAddr is the host:port the web server binds to.
func (c *Config) ListenAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// expandEnv expands ${VAR} or $VAR in a string
func expandEnv(s string) string {
	if strings.HasPrefix(s, "${") && strings.HasSuffix(s, "}") {
		varName := s[2 : len(s)-1]
		return os.Getenv(varName)
	}
	if strings.HasPrefix(s, "$") {
		return os.Getenv(s[1:])
	}
	return s
}

// GetConfigPath returns the path where the config file should be located
func GetConfigPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "speechadmin", "config.yaml"), nil
}

// Exists returns true if a config file exists
func Exists() bool {
	path, err := GetConfigPath()
	if err != nil {
		return false
	}
	_, err = os.Stat(path)
	return err == nil
}

// Save writes the config to disk
func Save(cfg *Config) error {
	path, err := GetConfigPath()
	if err != nil {
		return err
	}

	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	content := fmt.Sprintf(`data_dir: %s

server:
  host: %s
  port: %d

# Home Assistant connection, used to list entities exposed to voice
# assistants. Token may reference an env var, e.g. ${HASS_TOKEN}.
hass:
  host: %s
  port: %d
  protocol: %s
  token: %s
`, cfg.DataDir, cfg.Server.Host, cfg.Server.Port,
		cfg.Hass.Host, cfg.Hass.Port, cfg.Hass.Protocol, cfg.Hass.Token)

	return os.WriteFile(path, []byte(content), 0600)
}
