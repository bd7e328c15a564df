package hook

import (
	"io"
	"runtime"
	"strings"

	"winguard/internal/config"
	"winguard/internal/eventlog"
	"winguard/internal/logger"
	"winguard/internal/pathfix"
	"winguard/internal/types"
)

var guardLog = logger.New("guard")

// Guard wires the scanning core into the PreToolUse hook protocol. It owns
// the policy around the core: platform gate, bypass tag, skip patterns,
// guard mode, and the decision journal.
type Guard struct {
	cfg        *config.Config
	normalizer *pathfix.Normalizer
	classifier *pathfix.Classifier
	journal    *eventlog.Journal
	goos       string
}

// GuardOption configures a Guard.
type GuardOption func(*Guard)

// WithGOOS overrides the platform the guard believes it runs on. Tests use
// it to exercise both sides of the platform gate.
func WithGOOS(goos string) GuardOption {
	return func(g *Guard) { g.goos = goos }
}

// WithJournal overrides the decision journal.
func WithJournal(j *eventlog.Journal) GuardOption {
	return func(g *Guard) { g.journal = j }
}

// NewGuard builds a Guard from config.
func NewGuard(cfg *config.Config, opts ...GuardOption) *Guard {
	g := &Guard{
		cfg: cfg,
		normalizer: pathfix.NewNormalizer(
			pathfix.WithMarkers(cfg.Guard.Markers),
			pathfix.WithDeviceFix(cfg.Guard.DeviceFixEnabled()),
			pathfix.WithPathFix(cfg.Guard.PathFixEnabled()),
		),
		classifier: pathfix.NewClassifier(
			pathfix.WithClassifierMarkers(cfg.Guard.Markers),
		),
		goos: runtime.GOOS,
	}
	if cfg.EventLog.Enabled {
		g.journal = eventlog.New(cfg.EventLog.Path)
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Normalize exposes the configured normalizer for the CLI and API surfaces.
func (g *Guard) Normalize(cmd string) pathfix.Outcome {
	return g.normalizer.Normalize(cmd)
}

// Classify exposes the configured classifier for the CLI and API surfaces.
func (g *Guard) Classify(cmd string) *pathfix.Finding {
	return g.classifier.Classify(cmd)
}

// Active reports whether the guard runs on this platform. The hazards only
// exist where bash commands execute against a Windows filesystem.
func (g *Guard) Active() bool {
	return g.goos == "windows" || g.cfg.Guard.Force
}

// RunPreToolUse handles one PreToolUse invocation: payload on r, response on
// w. Anything unexpected results in a silent allow; a hook must never break
// the tool call it observes. The returned error covers response-write
// failures only.
func (g *Guard) RunPreToolUse(r io.Reader, w io.Writer) error {
	if !g.Active() {
		return nil
	}

	p, err := ReadPayload(r)
	if err != nil {
		guardLog.Debug("unreadable payload, allowing: %v", err)
		return nil
	}
	cmd, desc, ok := p.BashCommand()
	if !ok {
		return nil
	}
	// Payloads run to megabytes; only render the raw input when trace is on.
	if logger.Enabled(logger.LevelTrace) {
		guardLog.Trace("tool input: %s", string(p.ToolInput))
	}

	if tag := g.cfg.Guard.BypassTag; tag != "" && strings.Contains(desc, tag) {
		g.record(p, eventlog.Entry{Verdict: types.VerdictAllow, Command: cmd, Note: "bypass tag"})
		return nil
	}
	if g.cfg.Guard.ShouldSkip(cmd) {
		g.record(p, eventlog.Entry{Verdict: types.VerdictAllow, Command: cmd, Note: "skip pattern"})
		return nil
	}

	switch {
	case g.cfg.Guard.Mode.IsBlock():
		return g.gate(p, cmd, w)
	case g.cfg.Guard.Mode.IsWarn():
		return g.warn(p, cmd, w)
	default:
		return g.repair(p, cmd, w)
	}
}

func (g *Guard) repair(p *Payload, cmd string, w io.Writer) error {
	out := g.normalizer.Normalize(cmd)
	if !out.Changed {
		return nil
	}
	updated, err := p.UpdatedInput(out.Command)
	if err != nil {
		guardLog.Debug("cannot rebuild tool input, allowing: %v", err)
		return nil
	}

	g.record(p, eventlog.Entry{
		Verdict:   types.VerdictRewrite,
		Command:   cmd,
		Rewritten: out.Command,
		Note:      out.Note(),
	})
	guardLog.Debug("rewrote command: %q -> %q", cmd, out.Command)
	return WriteRewrite(w, updated, out.Note())
}

func (g *Guard) warn(p *Payload, cmd string, w io.Writer) error {
	f := g.classifier.Classify(cmd)
	if f == nil {
		return nil
	}
	g.record(p, eventlog.Entry{
		Verdict: types.VerdictAllow,
		Command: cmd,
		Hazard:  string(f.Kind),
		Note:    "warn mode",
	})
	return WriteContext(w, f.Message)
}

func (g *Guard) gate(p *Payload, cmd string, w io.Writer) error {
	f := g.classifier.Classify(cmd)
	if f == nil {
		return nil
	}
	g.record(p, eventlog.Entry{
		Verdict: types.VerdictBlock,
		Command: cmd,
		Hazard:  string(f.Kind),
	})
	guardLog.Debug("blocked command: %q (%s)", cmd, f.Kind)
	return WriteDeny(w, f.Message)
}

// record appends to the journal. Journal failures must not affect the
// hook's decision, so they are logged and dropped.
func (g *Guard) record(p *Payload, e eventlog.Entry) {
	if g.journal == nil {
		return
	}
	e.SessionID = p.SessionID
	e.Event = types.HookPreToolUse
	if err := g.journal.Append(e); err != nil {
		guardLog.Debug("event log append failed: %v", err)
	}
}
