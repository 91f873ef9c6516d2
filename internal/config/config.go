// Package config handles walk tool configuration loading and management.
package config

import (
	"errors"
	"fmt"
)

// ErrInvalidConfig is returned by Validate for out-of-range settings.
var ErrInvalidConfig = errors.New("invalid config")

// Config holds all walk tool settings.
type Config struct {
	Walk    WalkConfig    `yaml:"walk"`
	Data    DataConfig    `yaml:"data"`
	Logging LoggingConfig `yaml:"logging"`
}

// WalkConfig holds motion integrator settings.
type WalkConfig struct {
	MaxIterations int     `yaml:"max_iterations"` // Hard cap of the integrator loop
	Bounce        float32 `yaml:"bounce"`         // Wall amplification coefficient
	Nudge         float32 `yaml:"nudge"`          // Tangential push-off coefficient
	Speed         float32 `yaml:"speed"`          // World units per second for unit input
}

// DataConfig holds walk mesh asset settings.
type DataConfig struct {
	WalkMeshPath string `yaml:"walkmesh_path"` // Path to the .w file
	MeshName     string `yaml:"mesh_name"`     // Mesh to walk on
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Walk: WalkConfig{
			MaxIterations: 10,
			Bounce:        1.25,
			Nudge:         0.01,
			Speed:         3.0,
		},
		Data: DataConfig{
			WalkMeshPath: "walkmesh.w",
			MeshName:     "WalkMesh",
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// Validate checks that walk settings are usable.
func (c *Config) Validate() error {
	if c.Walk.MaxIterations < 1 {
		return fmt.Errorf("%w: max_iterations must be at least 1, got %d", ErrInvalidConfig, c.Walk.MaxIterations)
	}
	// A bounce of 1 or less leaves the walker pressed against the wall.
	if c.Walk.Bounce <= 1 {
		return fmt.Errorf("%w: bounce must be greater than 1, got %g", ErrInvalidConfig, c.Walk.Bounce)
	}
	if c.Walk.Nudge < 0 {
		return fmt.Errorf("%w: nudge must not be negative, got %g", ErrInvalidConfig, c.Walk.Nudge)
	}
	if c.Walk.Speed < 0 {
		return fmt.Errorf("%w: speed must not be negative, got %g", ErrInvalidConfig, c.Walk.Speed)
	}
	return nil
}
