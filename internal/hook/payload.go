// Package hook implements the agent host's hook protocol: payload decoding
// from stdin, response envelopes on stdout, and the guard that wires the
// scanning core into both.
package hook

import (
	"encoding/json"
	"errors"
	"io"
)

// maxPayloadBytes bounds the stdin read; hook payloads are small and a
// runaway producer must not balloon the process.
const maxPayloadBytes = 4 << 20

// Payload is the hook invocation read from stdin. ToolInput is kept raw so
// a rewrite response can return the object with only the command replaced,
// preserving fields this binary does not know about.
type Payload struct {
	SessionID      string          `json:"session_id"`
	TranscriptPath string          `json:"transcript_path"`
	HookEventName  string          `json:"hook_event_name"`
	ToolName       string          `json:"tool_name"`
	ToolInput      json.RawMessage `json:"tool_input"`
	StopHookActive bool            `json:"stop_hook_active"`
}

// ReadPayload decodes one hook payload from r.
func ReadPayload(r io.Reader) (*Payload, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxPayloadBytes))
	if err != nil {
		return nil, err
	}
	var p Payload
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// BashCommand extracts the command and description from a Bash tool call.
// ok is false for other tools, missing input, or an empty command.
func (p *Payload) BashCommand() (command, description string, ok bool) {
	if p.ToolName != "Bash" || len(p.ToolInput) == 0 {
		return "", "", false
	}
	var in struct {
		Command     string `json:"command"`
		Description string `json:"description"`
	}
	if err := json.Unmarshal(p.ToolInput, &in); err != nil || in.Command == "" {
		return "", "", false
	}
	return in.Command, in.Description, true
}

// UpdatedInput returns the tool input object with the command replaced and
// every other field carried through untouched.
func (p *Payload) UpdatedInput(command string) (map[string]any, error) {
	var in map[string]any
	if err := json.Unmarshal(p.ToolInput, &in); err != nil {
		return nil, err
	}
	if in == nil {
		return nil, errors.New("tool_input is not an object")
	}
	in["command"] = command
	return in, nil
}
