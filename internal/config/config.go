package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// AuthConfig holds the OAuth identity provider settings.
type AuthConfig struct {
	Domain   string `json:"domain"`
	ClientID string `json:"clientId"`
	Audience string `json:"audience"`
	Scopes   string `json:"scopes"`
}

// SessionConfig controls the conversation session time budget.
type SessionConfig struct {
	BudgetMinutes int `json:"budgetMinutes"`
}

// ReviewConfig controls the local review history store.
type ReviewConfig struct {
	MaxBatches int `json:"maxBatches"`
}

// Data defines local storage configuration.
type Data struct {
	Directory string `json:"directory,omitempty"`
}

// Config is the main configuration structure for the application.
type Config struct {
	Data             Data          `json:"data"`
	WorkingDir       string        `json:"wd,omitempty"`
	APIBaseURL       string        `json:"apiBaseUrl"`
	RequestTimeoutMs int           `json:"requestTimeoutMs"`
	Auth             AuthConfig    `json:"auth"`
	Session          SessionConfig `json:"session"`
	Review           ReviewConfig  `json:"review"`
	Register         string        `json:"register,omitempty"` // "casual" or "formal"
	Debug            bool          `json:"debug,omitempty"`
}

// Application constants
const (
	defaultDataDirectory = ".lingomate"
	defaultLogLevel      = "info"
	appName              = "lingomate"

	defaultAPIBaseURL     = "https://api.lingomate.app"
	defaultRequestTimeout = 15_000 // ms
	defaultSessionBudget  = 10     // minutes
	defaultReviewBatches  = 100
)

// Global configuration instance
var cfg *Config

// Load initializes the configuration from environment variables and config files
func Load(workingDir string, debug bool) (*Config, error) {
	if cfg != nil {
		return cfg, nil
	}

	cfg = &Config{
		WorkingDir: workingDir,
	}

	configureViper()
	setDefaults(debug)

	if err := readConfig(viper.ReadInConfig()); err != nil {
		return cfg, err
	}

	if cfg.Data.Directory == "" {
		cfg.Data.Directory = defaultDataDirectory
	}

	return cfg, nil
}

// configureViper sets up viper's configuration paths and environment variables
func configureViper() {
	viper.SetConfigName(fmt.Sprintf(".%s", appName))
	viper.SetConfigType("json")
	viper.AddConfigPath("$HOME")
	viper.AddConfigPath(fmt.Sprintf("$XDG_CONFIG_HOME/%s", appName))
	viper.AddConfigPath(fmt.Sprintf("$HOME/.config/%s", appName))
	viper.SetEnvPrefix(strings.ToUpper(appName))
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
}

// setDefaults configures default values for configuration options
func setDefaults(debug bool) {
	viper.SetDefault("data.directory", defaultDataDirectory)
	viper.SetDefault("apiBaseUrl", defaultAPIBaseURL)
	viper.SetDefault("requestTimeoutMs", defaultRequestTimeout)

	viper.SetDefault("auth.scopes", "openid profile email offline_access")

	viper.SetDefault("session.budgetMinutes", defaultSessionBudget)
	viper.SetDefault("review.maxBatches", defaultReviewBatches)
	viper.SetDefault("register", "casual")

	if debug {
		viper.SetDefault("debug", true)
		viper.Set("log.level", "debug")
	} else {
		viper.SetDefault("debug", false)
		viper.SetDefault("log.level", defaultLogLevel)
	}
}

// readConfig reads configuration from file and environment
func readConfig(err error) error {
	if err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// Config file not found; ignore error
			return nil
		}
		return fmt.Errorf("error reading config file: %w", err)
	}

	if err := viper.Unmarshal(cfg); err != nil {
		return fmt.Errorf("unable to decode config: %w", err)
	}

	return nil
}

// Get returns the global configuration instance
func Get() *Config {
	return cfg
}

// RequestTimeout returns the per-request HTTP timeout.
func (c *Config) RequestTimeout() time.Duration {
	if c.RequestTimeoutMs <= 0 {
		return defaultRequestTimeout * time.Millisecond
	}
	return time.Duration(c.RequestTimeoutMs) * time.Millisecond
}

// SessionBudget returns the conversation time budget.
func (c *Config) SessionBudget() time.Duration {
	m := c.Session.BudgetMinutes
	if m <= 0 {
		m = defaultSessionBudget
	}
	return time.Duration(m) * time.Minute
}

// DataDir returns the absolute data directory, creating it if needed.
func (c *Config) DataDir() (string, error) {
	dir := c.Data.Directory
	if !filepath.IsAbs(dir) {
		home, err := os.UserHomeDir()
		if err != nil {
			home = "."
		}
		dir = filepath.Join(home, dir)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create data directory: %w", err)
	}
	return dir, nil
}

// GetString returns a string configuration value with a default
func (c *Config) GetString(key, defaultValue string) string {
	if viper.IsSet(key) {
		return viper.GetString(key)
	}
	return defaultValue
}

// GetDuration returns a duration configuration value with a default
func (c *Config) GetDuration(key, defaultValue string) time.Duration {
	if viper.IsSet(key) {
		return viper.GetDuration(key)
	}
	duration, _ := time.ParseDuration(defaultValue)
	return duration
}
