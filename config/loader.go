package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultFileName is where project configuration is looked for by default.
const DefaultFileName = "devflow.yaml"

// Loader loads and parses project configuration files.
type Loader struct{}

// NewLoader creates a new configuration loader.
func NewLoader() *Loader {
	return &Loader{}
}

// LoadFromFile loads and parses a project configuration from a YAML file.
// Returns the validated ProjectConfig or an error.
// File errors are wrapped with context (use os.IsNotExist to check for missing file).
func (l *Loader) LoadFromFile(path string) (*ProjectConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	cfg, err := l.LoadFromBytes(data)
	if err != nil {
		return nil, fmt.Errorf("loading config %s: %w", path, err)
	}

	return cfg, nil
}

// LoadFromBytes parses project configuration from raw YAML bytes.
// Returns the validated ProjectConfig or an error.
// Empty data (len==0) returns ErrConfigEmpty.
func (l *Loader) LoadFromBytes(data []byte) (*ProjectConfig, error) {
	if len(data) == 0 {
		return nil, ErrConfigEmpty
	}

	var config ProjectConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("parsing YAML: %w", err)
	}

	validator := NewValidator()
	if err := validator.Validate(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// SaveToFile writes the configuration as YAML to path.
func (l *Loader) SaveToFile(cfg *ProjectConfig, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config %s: %w", path, err)
	}
	return nil
}
