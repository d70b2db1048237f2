package config

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed config.toml.sample
var configTemplate string

// Config holds the program configuration: which backend a session starts
// with and per-backend settings keyed by kind name.
type Config struct {
	DefaultBackend string                 `toml:"default_backend"`
	Debug          bool                   `toml:"debug"`
	Backends       map[string]interface{} `toml:"backends"`
}

// Duration wraps time.Duration for TOML text encoding ("500ms", "30s").
type Duration struct {
	time.Duration
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// GetDefaultConfig returns the configuration used when no file exists.
func GetDefaultConfig() *Config {
	return &Config{
		DefaultBackend: "Nominatim",
		Backends:       make(map[string]interface{}),
	}
}

// LoadConfig reads the TOML configuration at configPath. A missing file is
// not an error; defaults are returned.
func LoadConfig(configPath string) (*Config, error) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return GetDefaultConfig(), nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if config.DefaultBackend == "" {
		config.DefaultBackend = "Nominatim"
	}
	if config.Backends == nil {
		config.Backends = make(map[string]interface{})
	}

	return &config, nil
}

// SaveConfig writes the configuration to configPath.
func (c *Config) SaveConfig(configPath string) error {
	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	return os.WriteFile(configPath, data, 0644)
}

// SaveTemplateConfig writes the commented sample configuration.
func (c *Config) SaveTemplateConfig(configPath string) error {
	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	return os.WriteFile(configPath, []byte(configTemplate), 0644)
}

// BackendConfig returns the raw configuration table for a backend kind, or
// nil when none is present. Use Decode to convert it to a typed config.
func (c *Config) BackendConfig(kind string) interface{} {
	if c == nil || c.Backends == nil {
		return nil
	}
	return c.Backends[kind]
}

// Decode converts a raw configuration value (as produced by TOML
// unmarshaling into interface{}) into the typed config struct pointed to by
// target, via a marshal/unmarshal round trip.
func Decode(raw interface{}, target interface{}) error {
	if raw == nil {
		return nil
	}

	data, err := toml.Marshal(raw)
	if err != nil {
		return fmt.Errorf("marshaling config data: %w", err)
	}

	if err := toml.Unmarshal(data, target); err != nil {
		return fmt.Errorf("unmarshaling backend config: %w", err)
	}

	return nil
}

// GetConfigDir returns the citysearch configuration directory, creating it
// if needed. XDG_CONFIG_HOME is honored; the fallback is ~/.config.
func GetConfigDir() (string, error) {
	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("getting user home directory: %w", err)
		}
		configDir = filepath.Join(homeDir, ".config")
	}

	dir := filepath.Join(configDir, "citysearch")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("creating config directory %s: %w", dir, err)
	}

	return dir, nil
}

// GetDefaultConfigPath returns the default configuration file path.
func GetDefaultConfigPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "config.toml"), nil
}
