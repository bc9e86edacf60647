package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// FileConfig is the optional YAML configuration file.
type FileConfig struct {
	Port           string            `yaml:"port"`
	AppName        string            `yaml:"app_name"`
	DataFolder     string            `yaml:"data_folder"`
	LogLevel       string            `yaml:"log_level"`
	LogFile        string            `yaml:"log_file"`
	Env            string            `yaml:"env"`
	AllowedOrigins []string          `yaml:"allowed_origins"`
	API            APIFileConfig     `yaml:"api"`
	Session        SessionFileConfig `yaml:"session"`
}

type APIFileConfig struct {
	BaseURL       string `yaml:"base_url"`
	RetryAttempts int    `yaml:"retry_attempts"`
}

type SessionFileConfig struct {
	Store string `yaml:"store"`
	File  string `yaml:"file"`
}

// LoadFile reads a FileConfig from path. An empty path yields the zero value.
func LoadFile(path string) (FileConfig, error) {
	var cfg FileConfig
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config file: %w", err)
	}
	return cfg, nil
}
