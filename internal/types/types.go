// Package types defines common type-safe enums used across the codebase.
package types

// Verdict represents the outcome of inspecting a tool call.
type Verdict string

const (
	// VerdictAllow lets the command through untouched.
	VerdictAllow Verdict = "allow"
	// VerdictRewrite lets the command through with a corrected form substituted.
	VerdictRewrite Verdict = "rewrite"
	// VerdictBlock denies the command and reports a hazard diagnostic.
	VerdictBlock Verdict = "block"
)

// Valid returns true if the Verdict is a known valid value.
func (v Verdict) Valid() bool {
	return v == VerdictAllow || v == VerdictRewrite || v == VerdictBlock
}

// IsAllow returns true if the command passes untouched.
func (v Verdict) IsAllow() bool {
	return v == VerdictAllow
}

// IsRewrite returns true if a corrected command is substituted.
func (v Verdict) IsRewrite() bool {
	return v == VerdictRewrite
}

// IsBlock returns true if the command is denied.
func (v Verdict) IsBlock() bool {
	return v == VerdictBlock
}

// HookEvent represents which agent lifecycle hook invoked the binary.
type HookEvent string

const (
	// HookPreToolUse fires before a tool call executes.
	HookPreToolUse HookEvent = "PreToolUse"
	// HookPostToolUse fires after a tool call returns.
	HookPostToolUse HookEvent = "PostToolUse"
	// HookStop fires when the agent finishes a turn.
	HookStop HookEvent = "Stop"
)

// Valid returns true if the HookEvent is a known valid value.
func (e HookEvent) Valid() bool {
	return e == HookPreToolUse || e == HookPostToolUse || e == HookStop
}

// LogLevel represents logging verbosity as configured.
type LogLevel string

const (
	LogLevelTrace LogLevel = "trace"
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

// Valid returns true if the LogLevel is a known valid value.
// Empty is valid and means the default level.
func (l LogLevel) Valid() bool {
	switch l {
	case LogLevelTrace, LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError, "":
		return true
	}
	return false
}

// GuardMode represents how the pre-tool-use guard handles hazardous commands.
type GuardMode string

const (
	// GuardModeFix rewrites hazardous commands into their corrected form.
	GuardModeFix GuardMode = "fix"
	// GuardModeWarn allows hazardous commands but attaches a diagnostic.
	GuardModeWarn GuardMode = "warn"
	// GuardModeBlock denies hazardous commands outright.
	GuardModeBlock GuardMode = "block"
)

// Valid returns true if the GuardMode is a known valid value.
func (m GuardMode) Valid() bool {
	return m == GuardModeFix || m == GuardModeWarn || m == GuardModeBlock
}

// IsFix returns true if hazards should be rewritten in place.
func (m GuardMode) IsFix() bool {
	return m == GuardModeFix
}

// IsWarn returns true if hazards should pass with a diagnostic attached.
func (m GuardMode) IsWarn() bool {
	return m == GuardModeWarn
}

// IsBlock returns true if hazards should be denied.
func (m GuardMode) IsBlock() bool {
	return m == GuardModeBlock
}
