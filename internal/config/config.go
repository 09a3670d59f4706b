// Package config loads and saves the campus configuration file.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/mmcdole/campus/internal/listcache"
	"github.com/mmcdole/campus/internal/log"
)

// Config holds all application configuration
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Lists     ListsConfig     `mapstructure:"lists"`
	UI        UIConfig        `mapstructure:"ui"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	DevServer DevServerConfig `mapstructure:"devserver"`
}

// ServerConfig holds the school API connection
type ServerConfig struct {
	URL   string `mapstructure:"url"`
	Token string `mapstructure:"token"` // Bearer token
}

// ListsConfig holds list cache tuning
type ListsConfig struct {
	PageSize       int           `mapstructure:"page_size"`
	SearchDebounce time.Duration `mapstructure:"search_debounce"`
	FetchTimeout   time.Duration `mapstructure:"fetch_timeout"`
}

// UIConfig holds UI configuration
type UIConfig struct {
	Theme string `mapstructure:"theme"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	File  string `mapstructure:"file"`
	Level string `mapstructure:"level"`
}

// DevServerConfig holds settings for `campus serve`
type DevServerConfig struct {
	Addr      string `mapstructure:"addr"`
	DBPath    string `mapstructure:"db_path"`
	JWTSecret string `mapstructure:"jwt_secret"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Lists: ListsConfig{
			PageSize:       listcache.DefaultPageSize,
			SearchDebounce: listcache.DefaultSearchDebounce,
			FetchTimeout:   listcache.DefaultFetchTimeout,
		},
		UI: UIConfig{
			Theme: "default",
		},
		Logging: LoggingConfig{
			File:  filepath.Join(defaultDataPath(), "campus.log"),
			Level: "INFO",
		},
		DevServer: DevServerConfig{
			Addr:   "127.0.0.1:8080",
			DBPath: filepath.Join(defaultDataPath(), "devserver.db"),
		},
	}
}

// ListCache converts the lists section to listcache settings.
func (c *Config) ListCache() listcache.Config {
	return listcache.Config{
		PageSize:       c.Lists.PageSize,
		SearchDebounce: c.Lists.SearchDebounce,
		FetchTimeout:   c.Lists.FetchTimeout,
	}
}

// Log converts the logging section to log settings.
func (c *Config) Log() log.Config {
	return log.Config{File: c.Logging.File, Level: c.Logging.Level}
}

// IsConfigured returns true if the server URL and token are set
func (c *Config) IsConfigured() bool {
	return c.Server.URL != "" && c.Server.Token != ""
}

// DefaultDir returns the directory holding config.yaml for the current OS.
func DefaultDir() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "campus")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "campus")
	}
}

func defaultDataPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("LOCALAPPDATA"), "campus")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".local", "share", "campus")
	}
}

// LoadConfig loads configuration from the default directory and environment
func LoadConfig() (*Config, error) {
	return Load(DefaultDir())
}

// Load reads config.yaml from dir, applies CAMPUS_* environment overrides and
// fills everything else from DefaultConfig. A missing file is not an error.
func Load(dir string) (*Config, error) {
	cfg := DefaultConfig()

	v := newViper(dir)
	setDefaults(v, cfg)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, use defaults
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}

	return cfg, nil
}

// SaveConfig writes cfg to the default directory
func SaveConfig(cfg *Config) error {
	return Save(DefaultDir(), cfg)
}

// Save writes cfg to dir/config.yaml
func Save(dir string, cfg *Config) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	v := viper.New()
	setDefaults(v, cfg)

	configFile := filepath.Join(dir, "config.yaml")
	if err := v.WriteConfigAs(configFile); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

func newViper(dir string) *viper.Viper {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(dir)

	// Environment variable overrides, e.g. CAMPUS_SERVER_TOKEN
	v.SetEnvPrefix("CAMPUS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// setDefaults registers every key so AutomaticEnv can override keys absent
// from the file, and so WriteConfigAs uses snake_case names.
func setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("server.url", cfg.Server.URL)
	v.SetDefault("server.token", cfg.Server.Token)

	v.SetDefault("lists.page_size", cfg.Lists.PageSize)
	v.SetDefault("lists.search_debounce", cfg.Lists.SearchDebounce.String())
	v.SetDefault("lists.fetch_timeout", cfg.Lists.FetchTimeout.String())

	v.SetDefault("ui.theme", cfg.UI.Theme)

	v.SetDefault("logging.file", cfg.Logging.File)
	v.SetDefault("logging.level", cfg.Logging.Level)

	v.SetDefault("devserver.addr", cfg.DevServer.Addr)
	v.SetDefault("devserver.db_path", cfg.DevServer.DBPath)
	v.SetDefault("devserver.jwt_secret", cfg.DevServer.JWTSecret)
}
