package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

type Config struct {
	StoreAddress string `yaml:"store_address"`
	ClientID     string `yaml:"client_id"`
	LogDir       string `yaml:"log_dir"`
	LogLevel     string `yaml:"log_level"`
}

func Default() *Config {
	return &Config{
		StoreAddress: "localhost:19034",
		ClientID:     "crudfs-client",
		LogDir:       "./logs",
		LogLevel:     "INFO",
	}
}

// Load reads the yaml config at path. A missing file is not an error:
// the default config is written there and returned.
func Load(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		defaultConfig := Default()

		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create config directory: %w", err)
		}

		data, err := yaml.Marshal(defaultConfig)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal default config: %w", err)
		}

		if err := os.WriteFile(path, data, 0644); err != nil {
			return nil, fmt.Errorf("failed to write default config: %w", err)
		}

		return defaultConfig, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := Default()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return config, nil
}
