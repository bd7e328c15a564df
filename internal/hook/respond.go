package hook

import (
	"encoding/json"
	"io"
)

// preToolUseOutput is the hookSpecificOutput body for PreToolUse responses.
// A rewrite carries updatedInput + additionalContext; a denial carries
// permissionDecision + permissionDecisionReason. The host ignores fields it
// does not expect, but we never mix the two shapes.
type preToolUseOutput struct {
	HookEventName            string         `json:"hookEventName"`
	UpdatedInput             map[string]any `json:"updatedInput,omitempty"`
	AdditionalContext        string         `json:"additionalContext,omitempty"`
	PermissionDecision       string         `json:"permissionDecision,omitempty"`
	PermissionDecisionReason string         `json:"permissionDecisionReason,omitempty"`
}

type response struct {
	HookSpecificOutput *preToolUseOutput `json:"hookSpecificOutput,omitempty"`
	Decision           string            `json:"decision,omitempty"`
	Reason             string            `json:"reason,omitempty"`
}

func writeJSON(w io.Writer, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}

// WriteRewrite emits a PreToolUse response substituting the corrected tool
// input, with an advisory note explaining what changed.
func WriteRewrite(w io.Writer, updated map[string]any, note string) error {
	return writeJSON(w, response{
		HookSpecificOutput: &preToolUseOutput{
			HookEventName:     "PreToolUse",
			UpdatedInput:      updated,
			AdditionalContext: note,
		},
	})
}

// WriteContext emits a PreToolUse response that attaches a diagnostic note
// without touching the tool input. Used in warn mode.
func WriteContext(w io.Writer, note string) error {
	return writeJSON(w, response{
		HookSpecificOutput: &preToolUseOutput{
			HookEventName:     "PreToolUse",
			AdditionalContext: note,
		},
	})
}

// WriteDeny emits a PreToolUse response denying the tool call.
func WriteDeny(w io.Writer, reason string) error {
	return writeJSON(w, response{
		HookSpecificOutput: &preToolUseOutput{
			HookEventName:            "PreToolUse",
			PermissionDecision:       "deny",
			PermissionDecisionReason: reason,
		},
	})
}

// WriteBlock emits the Stop/PostToolUse blocking response. The reason is
// fed back to the agent as the thing to address before finishing.
func WriteBlock(w io.Writer, reason string) error {
	return writeJSON(w, response{Decision: "block", Reason: reason})
}
