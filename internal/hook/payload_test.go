package hook

import (
	"strings"
	"testing"
)

func TestReadPayload(t *testing.T) {
	in := `{
		"session_id": "abc",
		"transcript_path": "/tmp/t.jsonl",
		"hook_event_name": "PreToolUse",
		"tool_name": "Bash",
		"tool_input": {"command": "ls", "description": "list files"},
		"stop_hook_active": true
	}`
	p, err := ReadPayload(strings.NewReader(in))
	if err != nil {
		t.Fatalf("ReadPayload: %v", err)
	}
	if p.SessionID != "abc" || p.TranscriptPath != "/tmp/t.jsonl" || !p.StopHookActive {
		t.Errorf("payload fields wrong: %+v", p)
	}

	cmd, desc, ok := p.BashCommand()
	if !ok || cmd != "ls" || desc != "list files" {
		t.Errorf("BashCommand = %q, %q, %v", cmd, desc, ok)
	}
}

func TestReadPayloadMalformed(t *testing.T) {
	if _, err := ReadPayload(strings.NewReader("{not json")); err == nil {
		t.Error("malformed input should error")
	}
	if _, err := ReadPayload(strings.NewReader("")); err == nil {
		t.Error("empty input should error")
	}
}

func TestBashCommandRejections(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"other tool", `{"tool_name":"Write","tool_input":{"command":"ls"}}`},
		{"no tool input", `{"tool_name":"Bash"}`},
		{"empty command", `{"tool_name":"Bash","tool_input":{"command":""}}`},
		{"input not an object", `{"tool_name":"Bash","tool_input":"ls"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := ReadPayload(strings.NewReader(tt.in))
			if err != nil {
				t.Fatal(err)
			}
			if _, _, ok := p.BashCommand(); ok {
				t.Error("BashCommand should reject this payload")
			}
		})
	}
}

func TestUpdatedInputPreservesFields(t *testing.T) {
	in := `{"tool_name":"Bash","tool_input":{"command":"ls C:\\src","description":"list","timeout":5000}}`
	p, err := ReadPayload(strings.NewReader(in))
	if err != nil {
		t.Fatal(err)
	}

	updated, err := p.UpdatedInput("ls C:/src")
	if err != nil {
		t.Fatalf("UpdatedInput: %v", err)
	}
	if updated["command"] != "ls C:/src" {
		t.Errorf("command = %v, want replaced", updated["command"])
	}
	if updated["description"] != "list" {
		t.Errorf("description = %v, want carried through", updated["description"])
	}
	if _, ok := updated["timeout"]; !ok {
		t.Error("unknown field dropped from updated input")
	}
}
