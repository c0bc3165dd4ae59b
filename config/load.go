package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Load builds the configuration from defaults, the YAML file at path and
// environment expansion, then validates it.
//
// When path is empty, TLROUTER_CONFIG is consulted, then ./tlrouter.yaml.
// No file at all is not an error: the defaults are used.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if filePath := discoverConfigFile(path); filePath != "" {
		if err := loadYAMLFile(filePath, &cfg); err != nil {
			return nil, fmt.Errorf("loading config file %s: %w", filePath, err)
		}
	}

	expandEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return &cfg, nil
}

// Parse reads configuration from YAML bytes on top of the defaults.
func Parse(data []byte) (*Config, error) {
	cfg := Defaults()
	if err := unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	expandEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	return &cfg, nil
}

func discoverConfigFile(path string) string {
	if path != "" {
		return path
	}
	if envPath := os.Getenv("TLROUTER_CONFIG"); envPath != "" {
		return envPath
	}
	if _, err := os.Stat("tlrouter.yaml"); err == nil {
		return "tlrouter.yaml"
	}
	return ""
}

func loadYAMLFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return unmarshal(data, cfg)
}

// unmarshal decodes data into cfg. Fields absent from data keep their
// current values; a plan in data replaces the default plan.
func unmarshal(data []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// expandEnv resolves ${VAR} references in fields that may carry secrets or
// paths, and a leading ~ in file paths.
func expandEnv(cfg *Config) {
	for id, key := range cfg.Keys.Static {
		cfg.Keys.Static[id] = strings.TrimSpace(os.ExpandEnv(key))
	}
	cfg.Keys.File = expandPath(os.ExpandEnv(cfg.Keys.File))
	cfg.Keys.Redis.URL = os.ExpandEnv(cfg.Keys.Redis.URL)
	for i := range cfg.Plan {
		cfg.Plan[i].Endpoint = os.ExpandEnv(cfg.Plan[i].Endpoint)
	}
}

func expandPath(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	return path
}
