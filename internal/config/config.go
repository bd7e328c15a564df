package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gobwas/glob"
	"gopkg.in/yaml.v3"

	"winguard/internal/logger"
	"winguard/internal/types"
)

var cfgLog = logger.New("config")

// Config represents the winguard configuration
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Guard      GuardConfig      `yaml:"guard"`
	Transcript TranscriptConfig `yaml:"transcript"`
	EventLog   EventLogConfig   `yaml:"event_log"`
}

// ServerConfig holds settings for the inspection API server and logging.
type ServerConfig struct {
	Port     int            `yaml:"port"`
	LogLevel types.LogLevel `yaml:"log_level"`
	NoColor  bool           `yaml:"no_color"`
	Watch    bool           `yaml:"watch"` // reload config on file change while serving
}

// GuardConfig holds settings for the pre-tool-use command guard.
type GuardConfig struct {
	// Mode selects what happens when a hazardous command is seen:
	// fix (rewrite in place), warn (pass through with a diagnostic), or block.
	Mode types.GuardMode `yaml:"mode"`
	// Force runs the guard on every platform. By default commands pass
	// untouched anywhere except Windows, where the hazards exist.
	Force bool `yaml:"force"`
	// DeviceFix substitutes /dev/stdin-style aliases with file descriptor numbers.
	DeviceFix *bool `yaml:"device_fix"`
	// PathFix rewrites backslash drive paths to forward slashes.
	PathFix *bool `yaml:"path_fix"`
	// Markers are substrings identifying inline-script invocations (default: node).
	Markers []string `yaml:"markers"`
	// BypassTag in the tool-call description skips rewriting for that call.
	BypassTag string `yaml:"bypass_tag"`
	// SkipCommands are glob patterns; a command matching one is never touched.
	SkipCommands []string `yaml:"skip_commands"`

	// compiled skip patterns, built during Validate
	skipGlobs []glob.Glob
}

// TranscriptConfig holds settings for the transcript-scanning hooks.
type TranscriptConfig struct {
	// Hedging enables the stop-hook scan for hedging language in the last turn.
	Hedging *bool `yaml:"hedging"`
	// Dismissal enables the post-tool-use scan for issue-dismissal language.
	Dismissal *bool `yaml:"dismissal"`
	// OffsetDir overrides where per-session scan offsets are stored
	// (default: the system temp directory).
	OffsetDir string `yaml:"offset_dir"`
}

// EventLogConfig holds settings for the decision journal.
type EventLogConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"` // default: ~/.winguard/events.jsonl
}

// DefaultConfigPath returns the default config file path (~/.winguard/config.yaml).
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "config.yaml"
	}
	return filepath.Join(home, ".winguard", "config.yaml")
}

// defaultEventLogPath returns the default decision journal path under ~/.winguard/.
func defaultEventLogPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "./winguard-events.jsonl"
	}
	return filepath.Join(home, ".winguard", "events.jsonl")
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	on := true
	return &Config{
		Server: ServerConfig{
			Port:     9190,
			LogLevel: types.LogLevelInfo,
			NoColor:  false,
			Watch:    true,
		},
		Guard: GuardConfig{
			Mode:      types.GuardModeFix,
			Force:     false,
			DeviceFix: &on,
			PathFix:   &on,
			Markers:   nil, // empty means the built-in marker list
			BypassTag: "[no-rewrite]",
		},
		Transcript: TranscriptConfig{
			Hedging:   &on,
			Dismissal: &on,
		},
		EventLog: EventLogConfig{
			Enabled: true,
			Path:    defaultEventLogPath(),
		},
	}
}

// DeviceFixEnabled reports whether device-alias substitution is on.
func (g *GuardConfig) DeviceFixEnabled() bool {
	return g.DeviceFix == nil || *g.DeviceFix
}

// PathFixEnabled reports whether backslash path rewriting is on.
func (g *GuardConfig) PathFixEnabled() bool {
	return g.PathFix == nil || *g.PathFix
}

// ShouldSkip reports whether the command matches a configured skip pattern.
// Patterns are compiled by Validate; an unvalidated config skips nothing.
func (g *GuardConfig) ShouldSkip(cmd string) bool {
	for _, m := range g.skipGlobs {
		if m.Match(cmd) {
			return true
		}
	}
	return false
}

// HedgingEnabled reports whether the stop-hook hedging scan is on.
func (t *TranscriptConfig) HedgingEnabled() bool {
	return t.Hedging == nil || *t.Hedging
}

// DismissalEnabled reports whether the post-tool-use dismissal scan is on.
func (t *TranscriptConfig) DismissalEnabled() bool {
	return t.Dismissal == nil || *t.Dismissal
}

// Validate checks all Config fields, compiles skip patterns, and returns a
// multi-error report. Call this AFTER CLI overrides have been applied, not
// during Load().
func (c *Config) Validate() error {
	var errs []string

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("server.port: must be 1-65535 (got %d)", c.Server.Port))
	}

	if !c.Server.LogLevel.Valid() {
		errs = append(errs, fmt.Sprintf("server.log_level: unknown log level %q (valid: trace, debug, info, warn, error)", c.Server.LogLevel))
	}

	if c.Guard.Mode == "" {
		c.Guard.Mode = types.GuardModeFix
	} else if !c.Guard.Mode.Valid() {
		errs = append(errs, fmt.Sprintf("guard.mode: must be 'fix', 'warn' or 'block' (got %q)", c.Guard.Mode))
	}

	for _, m := range c.Guard.Markers {
		if strings.TrimSpace(m) == "" {
			errs = append(errs, "guard.markers: entries must not be empty")
			break
		}
	}

	if tag := c.Guard.BypassTag; tag != "" && strings.TrimSpace(tag) != tag {
		errs = append(errs, fmt.Sprintf("guard.bypass_tag: must not have surrounding whitespace (got %q)", tag))
	}

	c.Guard.skipGlobs = c.Guard.skipGlobs[:0]
	for _, pattern := range c.Guard.SkipCommands {
		g, err := glob.Compile(pattern)
		if err != nil {
			errs = append(errs, fmt.Sprintf("guard.skip_commands: invalid pattern %q: %v", pattern, err))
			continue
		}
		c.Guard.skipGlobs = append(c.Guard.skipGlobs, g)
	}

	if c.EventLog.Enabled && c.EventLog.Path == "" {
		c.EventLog.Path = defaultEventLogPath()
	}

	if len(errs) == 0 {
		return nil
	}
	var sb strings.Builder
	sb.WriteString("config validation failed:\n")
	for i, e := range errs {
		fmt.Fprintf(&sb, "  %d. %s\n", i+1, e)
	}
	return errors.New(sb.String())
}

// isUnknownFieldError returns true if the error is from yaml.Decoder.KnownFields(true)
// detecting an unrecognized key (e.g. typo like "gaurd:").
func isUnknownFieldError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "not found in type")
}

// Load loads configuration from a YAML file.
// Note: Load does NOT call Validate(). Callers should apply CLI overrides
// first, then call cfg.Validate() themselves.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	// Try strict decode to warn about unknown fields (typos like "gaurd:")
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		if isUnknownFieldError(err) {
			cfgLog.Warn("config has unknown fields (ignored): %v", err)
			// Re-parse without strict mode for forward compatibility
			cfg = DefaultConfig()
			if err2 := yaml.Unmarshal(data, cfg); err2 != nil {
				return nil, fmt.Errorf("config parse error: %w", err2)
			}
		} else {
			return nil, fmt.Errorf("config parse error: %w", err)
		}
	}

	return cfg, nil
}
