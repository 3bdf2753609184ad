// Package config provides configuration management for the clip bot.
// Settings come from an optional YAML file with environment variable
// overrides. The Telegram bot token is the one required setting.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"
)

const (
	// Default values
	DefaultLogLevel  = "info"
	DefaultDataDir   = ".clipbot"
	DefaultAdminPort = 8788
	DefaultYtDlp     = "yt-dlp"
	DefaultFFmpeg    = "ffmpeg"

	// Environment variable names
	EnvConfigFile = "CLIPBOT_CONFIG"
	EnvToken      = "CLIPBOT_TELEGRAM_TOKEN"
	EnvLogLevel   = "CLIPBOT_LOG_LEVEL"
	EnvDataDir    = "CLIPBOT_DATA_DIR"
	EnvAdminPort  = "CLIPBOT_ADMIN_PORT"
	EnvYtDlpPath  = "CLIPBOT_YTDLP_PATH"
	EnvFFmpegPath = "CLIPBOT_FFMPEG_PATH"

	// History database filename
	DBFilename = "clipbot.db"
)

// Config holds the resolved application configuration.
type Config struct {
	TelegramToken string `yaml:"telegram_token"`
	LogLevel      string `yaml:"log_level"`
	DataDir       string `yaml:"data_dir"`
	AdminPort     int    `yaml:"admin_port"`
	YtDlpPath     string `yaml:"ytdlp_path"`
	FFmpegPath    string `yaml:"ffmpeg_path"`
}

// New loads configuration from the optional YAML file and the environment.
// File values are applied first, then environment overrides. It returns an
// error when the Telegram token is missing; startup cannot proceed without it.
func New() (*Config, error) {
	cfg := &Config{
		LogLevel:   DefaultLogLevel,
		DataDir:    defaultDataDir(),
		AdminPort:  DefaultAdminPort,
		YtDlpPath:  DefaultYtDlp,
		FFmpegPath: DefaultFFmpeg,
	}

	path := os.Getenv(EnvConfigFile)
	if path == "" {
		path = "config.yaml"
	}
	if err := cfg.loadFile(path); err != nil {
		return nil, err
	}

	if t := os.Getenv(EnvToken); t != "" {
		cfg.TelegramToken = t
	}
	if ll := os.Getenv(EnvLogLevel); ll != "" {
		cfg.LogLevel = ll
	}
	if dd := os.Getenv(EnvDataDir); dd != "" {
		cfg.DataDir = dd
	}
	if p := os.Getenv(EnvAdminPort); p != "" {
		port, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", EnvAdminPort, err)
		}
		if port < 1 || port > 65535 {
			return nil, fmt.Errorf("invalid %s: port must be between 1 and 65535", EnvAdminPort)
		}
		cfg.AdminPort = port
	}
	if y := os.Getenv(EnvYtDlpPath); y != "" {
		cfg.YtDlpPath = y
	}
	if f := os.Getenv(EnvFFmpegPath); f != "" {
		cfg.FFmpegPath = f
	}

	if cfg.TelegramToken == "" {
		return nil, fmt.Errorf("telegram token is required: set %s or telegram_token in the config file", EnvToken)
	}

	return cfg, nil
}

// loadFile merges the YAML file at path into the config. A missing file is
// not an error; the environment may carry everything.
func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

// DBPath returns the full path to the SQLite history database file
func (c *Config) DBPath() string {
	return filepath.Join(c.DataDir, DBFilename)
}

// WorkDir returns the directory for transient download and clip files
func (c *Config) WorkDir() string {
	return filepath.Join(c.DataDir, "work")
}

// defaultDataDir returns the default data directory path
func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current directory if home is not available
		return DefaultDataDir
	}
	return filepath.Join(home, DefaultDataDir)
}

// Version information (set at build time via ldflags)
var (
	Version   = "0.1.0"
	BuildTime = "unknown"
	GitCommit = "unknown"
)
