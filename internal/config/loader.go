package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the configuration file looked up in the working directory.
const DefaultConfigFile = ".dupman.yaml"

// UserConfigFile is the configuration file name inside the XDG config directory.
const UserConfigFile = "config.yaml"

// ErrConfigNotFound is returned when the configuration file does not exist.
var ErrConfigNotFound = errors.New("configuration file not found")

// LoadConfigFile reads a YAML (or JSON) configuration file and merges it over
// the defaults from NewConfig. Unknown keys are ignored and missing keys keep
// their default value.
// If the file does not exist, it returns ErrConfigNotFound.
func LoadConfigFile(path string) (*Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided config path is intentional
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	cfg := NewConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	cfg.ConfigFilePath = path

	return cfg, nil
}

// Load resolves the configuration file with FindConfigFile and loads it.
// A broken or missing file never aborts startup: the defaults are returned
// together with the error so the caller can report it.
// The one exception is an explicit path that does not exist, which is
// returned as ErrConfigNotFound with a nil Config.
func Load(explicitPath string) (*Config, error) {
	path := FindConfigFile(explicitPath)
	if path == "" {
		if explicitPath != "" {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, explicitPath)
		}
		return NewConfig(), nil
	}

	cfg, err := LoadConfigFile(path)
	if err != nil {
		fallback := NewConfig()
		fallback.ConfigFilePath = path
		return fallback, err
	}
	return cfg, nil
}

// FindConfigFile searches for the configuration file in the following order:
// 1. If configPath is specified, use it directly
// 2. Look for .dupman.yaml in the current directory
// 3. Look for config.yaml in the XDG config directory
//
// Returns the path to the configuration file if found, or empty string if not found.
func FindConfigFile(configPath string) string {
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
		return ""
	}

	cwd, err := os.Getwd()
	if err == nil {
		cwdConfig := filepath.Join(cwd, DefaultConfigFile)
		if _, err := os.Stat(cwdConfig); err == nil {
			return cwdConfig
		}
	}

	userConfig := filepath.Join(XDGConfigDir(), UserConfigFile)
	if _, err := os.Stat(userConfig); err == nil {
		return userConfig
	}

	return ""
}

// Save writes the configuration to path as YAML, creating parent directories.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to encode configuration: %w", err)
	}

	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write configuration file: %w", err)
	}
	return nil
}

// Set updates a single option by its YAML key. The value is parsed as YAML,
// so lists ("[.txt, .md]"), numbers and null are accepted.
func (c *Config) Set(key, value string) error {
	current, err := c.asMap()
	if err != nil {
		return err
	}
	if _, ok := current[key]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}

	var parsed any
	if err := yaml.Unmarshal([]byte(value), &parsed); err != nil {
		return fmt.Errorf("invalid value for %s: %w", key, err)
	}
	current[key] = parsed

	data, err := yaml.Marshal(current)
	if err != nil {
		return fmt.Errorf("failed to encode configuration: %w", err)
	}

	updated := *c
	if err := yaml.Unmarshal(data, &updated); err != nil {
		return fmt.Errorf("invalid value for %s: %w", key, err)
	}
	*c = updated
	return nil
}

// Get returns the YAML rendering of a single option.
func (c *Config) Get(key string) (string, error) {
	current, err := c.asMap()
	if err != nil {
		return "", err
	}
	v, ok := current[key]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
	out, err := yaml.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// asMap renders the configuration as a key/value document.
func (c *Config) asMap() (map[string]any, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("failed to encode configuration: %w", err)
	}
	doc := make(map[string]any)
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode configuration: %w", err)
	}
	return doc, nil
}
