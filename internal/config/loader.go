package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// FileName is the config file name looked up in the search directories.
const FileName = "flapline.yaml"

// Load loads the simulation configuration.
// Search order: customPath -> ~/.flapline/configs/flapline.yaml -> ./configs/flapline.yaml -> embedded default.
// Files are applied on top of the defaults, so a file may set only the fields it changes.
func Load(customPath string) (FlapConfig, error) {
	// Try custom path first
	if customPath != "" {
		data, err := os.ReadFile(customPath)
		if err != nil {
			return FlapConfig{}, fmt.Errorf("failed to read config %s: %w", customPath, err)
		}
		cfg, err := Parse(data)
		if err != nil {
			return FlapConfig{}, fmt.Errorf("failed to parse config %s: %w", customPath, err)
		}
		return cfg, nil
	}

	// Try user config directory
	if userCfgPath := userConfigPath(FileName); userCfgPath != "" {
		if data, err := os.ReadFile(userCfgPath); err == nil {
			if cfg, err := Parse(data); err == nil {
				return cfg, nil
			}
		}
	}

	// Try local configs directory
	if data, err := os.ReadFile(filepath.Join("configs", FileName)); err == nil {
		if cfg, err := Parse(data); err == nil {
			return cfg, nil
		}
	}

	// Use embedded default YAML
	cfg, err := Parse(defaultFlapYAML)
	if err != nil {
		return DefaultFlapConfig(), nil // Fallback to hardcoded if embed fails
	}
	return cfg, nil
}

// Parse decodes YAML on top of DefaultFlapConfig and validates the result.
func Parse(data []byte) (FlapConfig, error) {
	cfg := DefaultFlapConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return FlapConfig{}, err
	}
	if err := cfg.Validate(); err != nil {
		return FlapConfig{}, err
	}
	return cfg, nil
}

// userConfigPath returns the path to user config file, or empty if home is unavailable.
func userConfigPath(filename string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".flapline", "configs", filename)
}
