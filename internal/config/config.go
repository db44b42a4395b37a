package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

type Config struct {
	Server  ServerConfig
	Remote  RemoteConfig
	Storage StorageConfig
	Log     LogConfig
	Chat    ChatConfig
}

type ServerConfig struct {
	Addr string
}

// RemoteConfig is where the CLI finds the record store. A zero Timeout
// disables the client timeout.
type RemoteConfig struct {
	BaseURL string
	Timeout time.Duration
}

type StorageConfig struct {
	DataDir string
}

type LogConfig struct {
	Level string
}

type ChatConfig struct {
	DefaultReply string
}

func defaults() Config {
	return Config{
		Server: ServerConfig{
			Addr: "127.0.0.1:8000",
		},
		Remote: RemoteConfig{
			BaseURL: "http://127.0.0.1:8000/api/v1",
			Timeout: 30 * time.Second,
		},
		Storage: StorageConfig{
			DataDir: defaultDataDir(),
		},
		Log: LogConfig{
			Level: "info",
		},
		Chat: ChatConfig{
			DefaultReply: "Interaction logged successfully!",
		},
	}
}

// Load reads configuration from the YAML file at
// $XDG_CONFIG_HOME/hcpcrm/config.yaml, then applies HCPCRM_* environment
// variable overrides.
func Load() (Config, error) {
	return loadWith(newFileBackend(configFilePath()))
}

func loadWith(b ConfigBackend) (Config, error) {
	cfg := defaults()

	if err := applyBackend(&cfg, b); err != nil {
		return Config{}, err
	}

	applyEnvOverrides(&cfg)

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if strings.TrimSpace(c.Remote.BaseURL) == "" {
		return fmt.Errorf("missing required config: remote.base_url (env %s)", envName("remote.base_url"))
	}
	if c.Remote.Timeout < 0 {
		return fmt.Errorf("remote.timeout must not be negative, got %s", c.Remote.Timeout)
	}
	if _, err := parseLevel(c.Log.Level); err != nil {
		return err
	}
	return nil
}

// SlogLevel is Log.Level as a slog.Level. Unknown levels were rejected by
// Load, so they fall back to info here.
func (c Config) SlogLevel() slog.Level {
	l, err := parseLevel(c.Log.Level)
	if err != nil {
		return slog.LevelInfo
	}
	return l
}

func parseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo, fmt.Errorf("log.level must be one of debug, info, warn, error: got %q", s)
	}
	return l, nil
}

func defaultDataDir() string {
	dir := os.Getenv("XDG_DATA_HOME")
	if dir == "" {
		if home, err := os.UserHomeDir(); err == nil {
			dir = filepath.Join(home, ".local", "share")
		} else {
			return "hcpcrm-data"
		}
	}
	return filepath.Join(dir, "hcpcrm")
}

func configFilePath() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		if home, err := os.UserHomeDir(); err == nil {
			dir = filepath.Join(home, ".config")
		} else {
			dir = "."
		}
	}
	return filepath.Join(dir, "hcpcrm", "config.yaml")
}
