// Package config handles the configuration directory, config.yaml and
// environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const (
	// AppName is the application directory name.
	AppName = "taskdash"

	// ConfigFile is the settings filename.
	ConfigFile = "config.yaml"

	// SessionFile is the cookie jar database filename.
	SessionFile = "session.db"

	// EnvPrefix prefixes environment overrides (TASKDASH_API_URL, ...).
	EnvPrefix = "TASKDASH"

	// DefaultAPIURL is the base URL of the task API.
	DefaultAPIURL = "https://y97kbmz70d.execute-api.eu-west-1.amazonaws.com/dev"

	// DefaultTimeout bounds a single API request.
	DefaultTimeout = 10 * time.Second
)

// Settings is the persisted part of the configuration.
type Settings struct {
	APIURL  string        `yaml:"api_url" mapstructure:"api_url"`
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

// Config holds configuration paths and settings.
type Config struct {
	// Dir is the configuration directory path.
	Dir string

	// Debug enables debug logging.
	Debug bool

	// Quiet suppresses informational output.
	Quiet bool

	Settings
}

// New creates a Config with the default or specified config directory and
// loads config.yaml plus environment overrides.
// If configDir is empty, uses XDG_CONFIG_HOME/taskdash or $HOME/.config/taskdash.
func New(configDir string) (*Config, error) {
	dir := configDir
	if dir == "" {
		dir = DefaultConfigDir()
	}
	cfg := &Config{Dir: dir}
	settings, err := Load(cfg.ConfigPath())
	if err != nil {
		return nil, err
	}
	cfg.Settings = settings
	return cfg, nil
}

// Defaults returns the built-in settings.
func Defaults() Settings {
	return Settings{
		APIURL:  DefaultAPIURL,
		Timeout: DefaultTimeout,
	}
}

// Load reads settings from path. A missing file yields the defaults.
// TASKDASH_* environment variables override file values.
func Load(path string) (Settings, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	d := Defaults()
	v.SetDefault("api_url", d.APIURL)
	v.SetDefault("timeout", d.Timeout)

	if err := v.ReadInConfig(); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return Settings{}, fmt.Errorf("read %s: %w", ConfigFile, err)
		}
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return Settings{}, fmt.Errorf("parse %s: %w", ConfigFile, err)
	}
	s.APIURL = strings.TrimRight(strings.TrimSpace(s.APIURL), "/")
	if s.APIURL == "" {
		return Settings{}, fmt.Errorf("api_url must not be empty")
	}
	if s.Timeout <= 0 {
		s.Timeout = DefaultTimeout
	}
	return s, nil
}

// Save writes settings to config.yaml in the config directory.
func (c *Config) Save() error {
	if err := c.EnsureDir(); err != nil {
		return err
	}
	data, err := yaml.Marshal(fileSettings{
		APIURL:  c.APIURL,
		Timeout: c.Timeout.String(),
	})
	if err != nil {
		return err
	}
	return os.WriteFile(c.ConfigPath(), data, 0600)
}

// fileSettings is the on-disk form; durations are written as "10s".
type fileSettings struct {
	APIURL  string `yaml:"api_url"`
	Timeout string `yaml:"timeout"`
}

// DefaultConfigDir returns the default configuration directory.
// Uses XDG_CONFIG_HOME if set, otherwise $HOME/.config.
func DefaultConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, AppName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current directory if home can't be determined
		return AppName
	}
	return filepath.Join(home, ".config", AppName)
}

// ConfigPath returns the path to config.yaml.
func (c *Config) ConfigPath() string {
	return filepath.Join(c.Dir, ConfigFile)
}

// SessionPath returns the path to the session database.
func (c *Config) SessionPath() string {
	return filepath.Join(c.Dir, SessionFile)
}

// EnsureDir creates the config directory if it doesn't exist.
// Directory is created with mode 0700.
func (c *Config) EnsureDir() error {
	return os.MkdirAll(c.Dir, 0700)
}
