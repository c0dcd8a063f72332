// Package config loads the console configuration from a YAML file,
// falling back to defaults for anything unset.
package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the full console configuration.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Refresh RefreshConfig `yaml:"refresh"`
}

// ServerConfig locates and authenticates against the admin API.
type ServerConfig struct {
	URL      string `yaml:"url"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// RefreshConfig holds the scheduling intervals of the detail view. The
// defaults match the server's admin web interface.
type RefreshConfig struct {
	SessionInterval  time.Duration `yaml:"session_interval"`
	ChatInterval     time.Duration `yaml:"chat_interval"`
	SettingsDebounce time.Duration `yaml:"settings_debounce"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			URL: "http://127.0.0.1:27780/api",
		},
		Refresh: RefreshConfig{
			SessionInterval:  10 * time.Second,
			ChatInterval:     4 * time.Second,
			SettingsDebounce: time.Second,
		},
	}
}

// Load reads the config file at path on top of the defaults. A missing
// file is not an error; the defaults are returned.
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
