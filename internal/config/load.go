package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"
)

// Load resolves the walk settings for one walktool run. Defaults are
// overlaid by the config file (the -config path, else the first file
// found by findConfigFile) and then by any walk or data flag given on the
// command line. The merged result must pass Validate.
func Load() (*Config, error) {
	cfg := Default()

	configPath := ConfigPath()
	if configPath == "" {
		configPath = findConfigFile()
	}

	if configPath != "" {
		if err := loadFromFile(cfg, configPath); err != nil {
			return nil, fmt.Errorf("loading config from %s: %w", configPath, err)
		}
	}

	applyFlags(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// findConfigFile returns the first existing candidate: walktool.yaml or
// config.yaml next to the walk mesh being worked on, then the file
// written by Save.
func findConfigFile() string {
	candidates := []string{
		"./walktool.yaml",
		"./config.yaml",
		UserConfigPath(),
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// ConfigDir returns the per-user directory walktool saves its settings in.
func ConfigDir() string {
	switch runtime.GOOS {
	case "darwin":
		home, _ := os.UserHomeDir()
		return filepath.Join(home, "Library", "Application Support", "Walkmesh")
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "Walkmesh")
	default:
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, "walkmesh")
		}
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "walkmesh")
	}
}

// UserConfigPath is the file Save writes and Load falls back to.
func UserConfigPath() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}

// loadFromFile overlays the walk, data and logging sections found in path.
// Keys missing from the file keep their current value, so a file holding
// only "walk: {bounce: 1.5}" changes nothing else.
func loadFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parsing yaml: %w", err)
	}
	return nil
}
