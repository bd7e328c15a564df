package main

import (
	"flag"
	"os"
	"path/filepath"
	"testing"
	"time"

	"winguard/internal/config"
	"winguard/internal/eventlog"
	"winguard/internal/types"
)

func TestLoadConfigOverrides(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")
	yaml := "server:\n  port: 9300\nguard:\n  mode: warn\n"
	if err := os.WriteFile(cfgPath, []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}

	t.Run("file values load", func(t *testing.T) {
		gf := &guardFlags{configPath: cfgPath}
		cfg, err := loadConfig(gf)
		if err != nil {
			t.Fatal(err)
		}
		if cfg.Server.Port != 9300 {
			t.Errorf("port = %d", cfg.Server.Port)
		}
		if !cfg.Guard.Mode.IsWarn() {
			t.Errorf("mode = %q", cfg.Guard.Mode)
		}
	})

	t.Run("flags beat file", func(t *testing.T) {
		gf := &guardFlags{configPath: cfgPath, mode: "block", force: true}
		cfg, err := loadConfig(gf)
		if err != nil {
			t.Fatal(err)
		}
		if !cfg.Guard.Mode.IsBlock() {
			t.Errorf("mode = %q", cfg.Guard.Mode)
		}
		if !cfg.Guard.Force {
			t.Error("force flag not applied")
		}
	})

	t.Run("env beats file, flags beat env", func(t *testing.T) {
		t.Setenv("WINGUARD_MODE", "block")
		gf := &guardFlags{configPath: cfgPath}
		cfg, err := loadConfig(gf)
		if err != nil {
			t.Fatal(err)
		}
		if !cfg.Guard.Mode.IsBlock() {
			t.Errorf("env override lost: mode = %q", cfg.Guard.Mode)
		}

		gf.mode = "fix"
		cfg, err = loadConfig(gf)
		if err != nil {
			t.Fatal(err)
		}
		if !cfg.Guard.Mode.IsFix() {
			t.Errorf("flag should beat env: mode = %q", cfg.Guard.Mode)
		}
	})

	t.Run("invalid mode rejected", func(t *testing.T) {
		gf := &guardFlags{configPath: cfgPath, mode: "bogus"}
		if _, err := loadConfig(gf); err == nil {
			t.Error("invalid mode should fail validation")
		}
	})

	t.Run("missing file falls back to defaults", func(t *testing.T) {
		gf := &guardFlags{configPath: filepath.Join(dir, "nope.yaml")}
		cfg, err := loadConfig(gf)
		if err != nil {
			t.Fatal(err)
		}
		if cfg.Server.Port != 9190 {
			t.Errorf("port = %d, want default", cfg.Server.Port)
		}
	})
}

func TestResolveConfigPath(t *testing.T) {
	env := &config.Env{ConfigPath: "/env/config.yaml"}

	if got := resolveConfigPath(&guardFlags{configPath: "/flag/config.yaml"}, env); got != "/flag/config.yaml" {
		t.Errorf("flag should win: %q", got)
	}
	if got := resolveConfigPath(&guardFlags{}, env); got != "/env/config.yaml" {
		t.Errorf("env should win over default: %q", got)
	}
	if got := resolveConfigPath(&guardFlags{}, &config.Env{}); got != config.DefaultConfigPath() {
		t.Errorf("default expected: %q", got)
	}
}

func TestJoinArgs(t *testing.T) {
	if got := joinArgs([]string{"rm", `C:\src\a`}); got != `rm C:\src\a` {
		t.Errorf("joinArgs = %q", got)
	}
	if got := joinArgs([]string{"single"}); got != "single" {
		t.Errorf("joinArgs = %q", got)
	}
	if got := joinArgs(nil); got != "" {
		t.Errorf("joinArgs = %q", got)
	}
}

func TestRegisterGuardFlags(t *testing.T) {
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	gf := registerGuardFlags(fs)
	err := fs.Parse([]string{"--config", "c.yaml", "--force", "--mode", "block", "rest"})
	if err != nil {
		t.Fatal(err)
	}
	if gf.configPath != "c.yaml" || !gf.force || gf.mode != "block" {
		t.Errorf("flags = %+v", gf)
	}
	if len(fs.Args()) != 1 || fs.Args()[0] != "rest" {
		t.Errorf("positional args = %v", fs.Args())
	}
}

func TestFormatEntry(t *testing.T) {
	ts := time.Date(2026, 3, 1, 10, 30, 0, 0, time.UTC)

	e := eventlog.Entry{Time: ts, Verdict: types.VerdictRewrite, Command: `cat C:\a`, Rewritten: "cat C:/a"}
	got := formatEntry(e)
	want := `2026-03-01 10:30:00  rewrite  cat C:\a  -> cat C:/a`
	if got != want {
		t.Errorf("formatEntry = %q, want %q", got, want)
	}

	e = eventlog.Entry{Time: ts, Verdict: types.VerdictBlock, Command: "x", Hazard: "TrailingQuoteCollision"}
	got = formatEntry(e)
	if got != `2026-03-01 10:30:00  block    x  [TrailingQuoteCollision]` {
		t.Errorf("formatEntry = %q", got)
	}
}
