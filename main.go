package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"winguard/internal/completion"
	"winguard/internal/config"
	"winguard/internal/eventlog"
	"winguard/internal/hook"
	"winguard/internal/logger"
	"winguard/internal/server"
	"winguard/internal/shellparse"
	"winguard/internal/transcript"
	"winguard/internal/types"
)

// Version is set at build time via ldflags: -X main.Version=x.y.z
var Version = "1.0.0"

var log = logger.New("main")

func main() {
	// Shell completion short-circuit: when COMP_LINE is set the binary is
	// being asked for completions, nothing else.
	if completion.Run() {
		return
	}

	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "hook":
			runHook(os.Args[2:], "")
			return
		case "gate":
			runHook(os.Args[2:], types.GuardModeBlock)
			return
		case "stop":
			runStopHook(os.Args[2:])
			return
		case "posttool":
			runPostToolHook(os.Args[2:])
			return
		case "check":
			runCheck(os.Args[2:])
			return
		case "fix":
			runFix(os.Args[2:])
			return
		case "explain":
			runExplain(os.Args[2:])
			return
		case "serve":
			runServe(os.Args[2:])
			return
		case "events":
			runEvents(os.Args[2:])
			return
		case "completion":
			runCompletion(os.Args[2:])
			return
		case "help", "-h", "--help":
			printUsage()
			return
		case "version", "-v", "--version":
			fmt.Printf("winguard version %s\n", Version)
			return
		}
	}

	// No subcommand - show help
	printUsage()
}

// guardFlags holds the flags shared by every guard-running subcommand.
type guardFlags struct {
	configPath string
	force      bool
	mode       string
	logLevel   string
	noColor    bool
}

func registerGuardFlags(fs *flag.FlagSet) *guardFlags {
	gf := &guardFlags{}
	fs.StringVar(&gf.configPath, "config", "", "Path to configuration file (default ~/.winguard/config.yaml)")
	fs.BoolVar(&gf.force, "force", false, "Run the guard on every platform, not just Windows")
	fs.StringVar(&gf.mode, "mode", "", "Guard mode: fix, warn or block")
	fs.StringVar(&gf.logLevel, "log-level", "", "Log level: trace, debug, info, warn, error")
	fs.BoolVar(&gf.noColor, "no-color", false, "Disable colored log output")
	return gf
}

// resolveConfigPath picks the config location: flag, then environment, then
// the default under ~/.winguard/.
func resolveConfigPath(gf *guardFlags, env *config.Env) string {
	if gf.configPath != "" {
		return gf.configPath
	}
	if env.ConfigPath != "" {
		return env.ConfigPath
	}
	return config.DefaultConfigPath()
}

// loadConfig builds the effective config: file, then environment, then flags.
// It also applies the logger settings.
func loadConfig(gf *guardFlags) (*config.Config, error) {
	env, err := config.LoadEnv()
	if err != nil {
		return nil, err
	}

	cfg, err := config.Load(resolveConfigPath(gf, env))
	if err != nil {
		return nil, err
	}
	env.Apply(cfg)

	if gf.force {
		cfg.Guard.Force = true
	}
	if gf.mode != "" {
		cfg.Guard.Mode = types.GuardMode(gf.mode)
	}
	if gf.logLevel != "" {
		cfg.Server.LogLevel = types.LogLevel(gf.logLevel)
	}
	if gf.noColor {
		cfg.Server.NoColor = true
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger.SetGlobalLevelFromString(string(cfg.Server.LogLevel))
	logger.SetColored(!cfg.Server.NoColor)
	return cfg, nil
}

// runHook handles the hook and gate subcommands: one PreToolUse invocation,
// payload on stdin, response on stdout. modeOverride forces the guard mode
// regardless of config (gate is hook with mode=block).
func runHook(args []string, modeOverride types.GuardMode) {
	fs := flag.NewFlagSet("hook", flag.ExitOnError)
	gf := registerGuardFlags(fs)
	_ = fs.Parse(args)

	cfg, err := loadConfig(gf)
	if err != nil {
		// A broken config must not break the tool call the hook observes.
		log.Warn("config error, allowing command: %v", err)
		return
	}
	if modeOverride != "" {
		cfg.Guard.Mode = modeOverride
	}

	g := hook.NewGuard(cfg)
	if err := g.RunPreToolUse(os.Stdin, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "winguard: %v\n", err)
		os.Exit(1)
	}
}

// runStopHook handles the stop subcommand: scan the last turn's transcript
// for hedging language.
func runStopHook(args []string) {
	fs := flag.NewFlagSet("stop", flag.ExitOnError)
	gf := registerGuardFlags(fs)
	_ = fs.Parse(args)

	cfg, err := loadConfig(gf)
	if err != nil {
		log.Warn("config error, allowing stop: %v", err)
		return
	}
	if !cfg.Transcript.HedgingEnabled() {
		return
	}

	if err := transcript.RunStop(os.Stdin, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "winguard: %v\n", err)
		os.Exit(1)
	}
}

// runPostToolHook handles the posttool subcommand: scan fresh transcript
// content for issue-dismissal language.
func runPostToolHook(args []string) {
	fs := flag.NewFlagSet("posttool", flag.ExitOnError)
	gf := registerGuardFlags(fs)
	_ = fs.Parse(args)

	cfg, err := loadConfig(gf)
	if err != nil {
		log.Warn("config error, allowing: %v", err)
		return
	}
	if !cfg.Transcript.DismissalEnabled() {
		return
	}

	offsets := transcript.NewOffsetStore(cfg.Transcript.OffsetDir)
	if err := transcript.RunPostToolUse(os.Stdin, os.Stdout, offsets); err != nil {
		fmt.Fprintf(os.Stderr, "winguard: %v\n", err)
		os.Exit(1)
	}
}

// runCheck handles the check subcommand: classify a command given as an
// argument. Exits 1 when a hazard is found, so scripts can gate on it.
func runCheck(args []string) {
	fs := flag.NewFlagSet("check", flag.ExitOnError)
	gf := registerGuardFlags(fs)
	_ = fs.Parse(args)

	cmd := commandArg(fs, "check")
	cfg, err := loadConfig(gf)
	if err != nil {
		fmt.Fprintf(os.Stderr, "winguard: %v\n", err)
		os.Exit(1)
	}

	g := hook.NewGuard(cfg)
	f := g.Classify(cmd)
	if f == nil {
		fmt.Println("ok")
		return
	}
	fmt.Printf("%s at offset %d: %s\n", f.Kind, f.Offset, f.Message)
	os.Exit(1)
}

// runFix handles the fix subcommand: print the corrected form of a command.
func runFix(args []string) {
	fs := flag.NewFlagSet("fix", flag.ExitOnError)
	gf := registerGuardFlags(fs)
	_ = fs.Parse(args)

	cmd := commandArg(fs, "fix")
	cfg, err := loadConfig(gf)
	if err != nil {
		fmt.Fprintf(os.Stderr, "winguard: %v\n", err)
		os.Exit(1)
	}

	g := hook.NewGuard(cfg)
	out := g.Normalize(cmd)
	fmt.Println(out.Command)
	if out.Changed {
		fmt.Fprintln(os.Stderr, out.Note())
	}
}

// runExplain handles the explain subcommand: show what bash delivers for
// each word of a command.
func runExplain(args []string) {
	fs := flag.NewFlagSet("explain", flag.ExitOnError)
	_ = fs.Parse(args)

	cmd := commandArg(fs, "explain")
	out, err := shellparse.Explain(cmd)
	if err != nil {
		fmt.Fprintf(os.Stderr, "winguard: %v\n", err)
		os.Exit(1)
	}
	fmt.Print(out)
}

// commandArg joins the remaining arguments into the command text, so quoted
// and bare invocations mean the same thing:
// winguard check "rm C:\a" and winguard check rm C:\a
func commandArg(fs *flag.FlagSet, sub string) string {
	rest := fs.Args()
	if len(rest) == 0 {
		fmt.Fprintf(os.Stderr, "Usage: winguard %s [flags] <command>\n", sub)
		os.Exit(1)
	}
	return joinArgs(rest)
}

func joinArgs(args []string) string {
	out := ""
	for i, a := range args {
		if i > 0 {
			out += " "
		}
		out += a
	}
	return out
}

// runServe handles the serve subcommand: run the inspection API until
// interrupted.
func runServe(args []string) {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	gf := registerGuardFlags(fs)
	port := fs.Int("port", 0, "Listen port (default from config)")
	watch := fs.Bool("watch", true, "Reload config on file change")
	_ = fs.Parse(args)

	env, err := config.LoadEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "winguard: %v\n", err)
		os.Exit(1)
	}
	cfgPath := resolveConfigPath(gf, env)

	cfg, err := loadConfig(gf)
	if err != nil {
		fmt.Fprintf(os.Stderr, "winguard: %v\n", err)
		os.Exit(1)
	}
	if *port > 0 {
		cfg.Server.Port = *port
		if err := cfg.Validate(); err != nil {
			fmt.Fprintf(os.Stderr, "winguard: %v\n", err)
			os.Exit(1)
		}
	}

	srv := server.New(cfgPath, cfg)

	if *watch && cfg.Server.Watch {
		w, err := server.NewWatcher(srv)
		if err != nil {
			log.Warn("Failed to create config watcher: %v", err)
		} else {
			if err := w.Start(); err != nil {
				log.Warn("Failed to start config watcher: %v", err)
			}
			defer func() { _ = w.Stop() }()
		}
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Run() }()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		fmt.Fprintf(os.Stderr, "winguard: %v\n", err)
		os.Exit(1)
	case sig := <-sigCh:
		log.Info("Received %v, shutting down", sig)
	}
}

// runEvents handles the events subcommand: print recent guard decisions.
func runEvents(args []string) {
	fs := flag.NewFlagSet("events", flag.ExitOnError)
	gf := registerGuardFlags(fs)
	n := fs.Int("n", 20, "Number of entries to show")
	asJSON := fs.Bool("json", false, "Print entries as JSON lines")
	_ = fs.Parse(args)

	cfg, err := loadConfig(gf)
	if err != nil {
		fmt.Fprintf(os.Stderr, "winguard: %v\n", err)
		os.Exit(1)
	}
	if !cfg.EventLog.Enabled {
		fmt.Println("Event log is disabled (set event_log.enabled=true)")
		return
	}

	j := eventlog.New(cfg.EventLog.Path)
	entries, err := j.Tail(*n)
	if err != nil {
		fmt.Fprintf(os.Stderr, "winguard: %v\n", err)
		os.Exit(1)
	}
	if len(entries) == 0 {
		fmt.Printf("No events recorded at %s\n", j.Path())
		return
	}

	for _, e := range entries {
		if *asJSON {
			line, err := json.Marshal(e)
			if err != nil {
				continue
			}
			fmt.Println(string(line))
			continue
		}
		fmt.Println(formatEntry(e))
	}
}

// formatEntry renders one journal entry for the events listing.
func formatEntry(e eventlog.Entry) string {
	line := fmt.Sprintf("%s  %-7s  %s", e.Time.Format("2006-01-02 15:04:05"), e.Verdict, e.Command)
	if e.Verdict.IsRewrite() && e.Rewritten != "" {
		line += fmt.Sprintf("  -> %s", e.Rewritten)
	}
	if e.Hazard != "" {
		line += fmt.Sprintf("  [%s]", e.Hazard)
	}
	return line
}

// runCompletion handles the completion subcommand
func runCompletion(args []string) {
	fs := flag.NewFlagSet("completion", flag.ExitOnError)
	installFlag := fs.Bool("install", false, "Install shell completion")
	uninstallFlag := fs.Bool("uninstall", false, "Uninstall shell completion")
	_ = fs.Parse(args)

	switch {
	case *installFlag:
		if completion.IsInstalled() {
			fmt.Println("Shell completion is already installed")
			return
		}
		if err := completion.Install(); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to install completion: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("✓ Shell completion installed (restart your shell)")
	case *uninstallFlag:
		if err := completion.Uninstall(); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to uninstall completion: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("✓ Shell completion uninstalled")
	default:
		fmt.Println("Usage: winguard completion --install | --uninstall")
	}
}

func printUsage() {
	fmt.Println(`winguard - Windows drive-path guard for bash tool calls

Usage:
  winguard hook [flags]          PreToolUse hook: rewrite hazardous commands (stdin/stdout)
  winguard gate [flags]          PreToolUse hook in block mode: deny instead of rewriting
  winguard stop [flags]          Stop hook: flag hedging language in the last turn
  winguard posttool [flags]      PostToolUse hook: flag dismissed pre-existing issues

  winguard check <command>       Classify a command; exit 1 if hazardous
  winguard fix <command>         Print the corrected form of a command
  winguard explain <command>     Show what bash delivers for each word

  winguard serve [flags]         Run the inspection HTTP API
  winguard events [-n N] [--json]  Show recent guard decisions

  winguard completion --install  Install shell tab-completion
  winguard help                  Show this help message
  winguard version               Show version

Flags (guard subcommands):
  --config string     Path to configuration file (default ~/.winguard/config.yaml)
  --force             Run the guard on every platform, not just Windows
  --mode string       Guard mode: fix, warn or block
  --log-level string  Log level: trace, debug, info, warn, error
  --no-color          Disable colored log output

Environment Variables:
  WINGUARD_CONFIG     Config file path
  WINGUARD_MODE       Guard mode override
  WINGUARD_FORCE      Run on every platform (true/false)
  WINGUARD_LOG_LEVEL  Log level override
  WINGUARD_NO_COLOR   Disable colored output (true/false)

Examples:
  winguard check 'cat C:\src\file.json | node parse.js'
  winguard fix 'node -e "console.log(1)" < /dev/stdin'
  WINGUARD_FORCE=true winguard hook < payload.json`)
}
