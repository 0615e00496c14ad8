// Package config provides JSON-based configuration loading with environment
// variable expansion and first-run default materialization.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

// Validator is an interface for configuration validation.
type Validator interface {
	Validate() error
}

// Load loads configuration from a JSON file with environment variable expansion.
func Load[T any](filename string, target *T) error {
	data, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", filename, err)
	}

	expandedData := os.ExpandEnv(string(data))

	if err := json.Unmarshal([]byte(expandedData), target); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", filename, err)
	}

	if validator, ok := any(target).(Validator); ok {
		if err := validator.Validate(); err != nil {
			return fmt.Errorf("config validation failed: %w", err)
		}
	}

	return nil
}

// LoadOrInit loads configuration from filename. When the file does not
// exist the current contents of target are written to it as defaults and
// returned unchanged.
func LoadOrInit[T any](filename string, target *T) error {
	if _, err := os.Stat(filename); errors.Is(err, os.ErrNotExist) {
		data, err := json.MarshalIndent(target, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode default config: %w", err)
		}
		if err := os.WriteFile(filename, append(data, '\n'), 0o644); err != nil {
			return fmt.Errorf("failed to write default config %s: %w", filename, err)
		}
		return nil
	}
	return Load(filename, target)
}
