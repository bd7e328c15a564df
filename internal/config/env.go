package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"

	"winguard/internal/types"
)

// Env holds configuration overrides read from environment variables.
// Hook handlers run without a CLI invocation the user controls, so the
// environment is the practical override channel there.
type Env struct {
	// ConfigPath overrides the config file location.
	// Env: WINGUARD_CONFIG
	ConfigPath string `envconfig:"WINGUARD_CONFIG"`

	// LogLevel overrides server.log_level.
	// Env: WINGUARD_LOG_LEVEL
	LogLevel string `envconfig:"WINGUARD_LOG_LEVEL"`

	// NoColor disables colored log output.
	// Env: WINGUARD_NO_COLOR
	NoColor bool `envconfig:"WINGUARD_NO_COLOR"`

	// Force runs the guard regardless of platform.
	// Env: WINGUARD_FORCE
	Force bool `envconfig:"WINGUARD_FORCE"`

	// Mode overrides guard.mode.
	// Env: WINGUARD_MODE
	Mode string `envconfig:"WINGUARD_MODE"`
}

// LoadEnv reads overrides from the environment.
func LoadEnv() (*Env, error) {
	var e Env
	if err := envconfig.Process("", &e); err != nil {
		return nil, fmt.Errorf("failed to load environment overrides: %w", err)
	}
	return &e, nil
}

// Apply copies set overrides onto cfg. Unset variables leave the
// corresponding fields alone.
func (e *Env) Apply(cfg *Config) {
	if e.LogLevel != "" {
		cfg.Server.LogLevel = types.LogLevel(e.LogLevel)
	}
	if e.NoColor {
		cfg.Server.NoColor = true
	}
	if e.Force {
		cfg.Guard.Force = true
	}
	if e.Mode != "" {
		cfg.Guard.Mode = types.GuardMode(e.Mode)
	}
}
