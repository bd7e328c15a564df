package transcript

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func scanOne(text string) []string {
	s := NewHedgingScanner()
	s.ScanText(text)
	return s.Findings()
}

func containsFinding(findings []string, substr string) bool {
	for _, f := range findings {
		if strings.Contains(f, substr) {
			return true
		}
	}
	return false
}

func TestScanTextPhrases(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "for now",
			text: "I used a simple implementation for now.",
			want: []string{"for now"},
		},
		{
			name: "multiple patterns",
			text: "This is good enough for now. I'll revisit later.",
			want: []string{"good enough", "for now", "revisit later"},
		},
		{
			name: "case insensitive",
			text: "This is a Basic Implementation.",
			want: []string{"basic implementation"},
		},
		{
			name: "temporary workaround",
			text: "I added a temporary workaround for the race condition.",
			want: []string{"temporary", "workaround"},
		},
		{
			name: "placeholder",
			text: "I added a placeholder for the authentication logic.",
			want: []string{"placeholder"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			findings := scanOne(tt.text)
			for _, w := range tt.want {
				if !containsFinding(findings, w) {
					t.Errorf("findings %v missing %q", findings, w)
				}
			}
		})
	}
}

func TestScanTextCodeMarkers(t *testing.T) {
	findings := scanOne("// TODO: handle edge case")
	if !containsFinding(findings, "TODO") {
		t.Errorf("findings %v missing TODO", findings)
	}

	// Lowercase prose must not trigger the case-sensitive marker.
	findings = scanOne("I updated the todo list component")
	if containsFinding(findings, "TODO") {
		t.Errorf("findings %v should not contain TODO", findings)
	}

	findings = scanOne("function init() {\n  // FIXME: needs proper error handling\n}")
	if !containsFinding(findings, "FIXME") {
		t.Errorf("findings %v missing FIXME", findings)
	}
}

func TestScanTextDeduplicates(t *testing.T) {
	s := NewHedgingScanner()
	s.ScanText("for now this is fine")
	s.ScanText("I did this for now")

	count := 0
	for _, f := range s.Findings() {
		if strings.Contains(f, "for now") {
			count++
		}
	}
	if count != 1 {
		t.Errorf("'for now' reported %d times, want 1", count)
	}
}

func TestScanTextClean(t *testing.T) {
	findings := scanOne("I implemented the feature with full error handling and comprehensive tests.")
	if len(findings) != 0 {
		t.Errorf("clean text produced findings: %v", findings)
	}
}

func TestScanTextCompatibilityForms(t *testing.T) {
	// Fullwidth letters normalize to ASCII before matching.
	findings := scanOne("This is ｇｏｏｄ ｅｎｏｕｇｈ.")
	if !containsFinding(findings, "good enough") {
		t.Errorf("findings %v missing fullwidth 'good enough'", findings)
	}
}

func TestFindTurnStart(t *testing.T) {
	t.Run("skips tool results", func(t *testing.T) {
		lines := []string{
			`{"type":"user","message":{"role":"user","content":"Fix the bug"}}`,
			`{"type":"assistant","message":{"role":"assistant","content":[{"type":"text","text":"On it."}]}}`,
			`{"type":"user","message":{"role":"user","content":[{"type":"tool_result","tool_use_id":"123"}]}}`,
			`{"type":"assistant","message":{"role":"assistant","content":[{"type":"text","text":"Done."}]}}`,
		}
		if got := FindTurnStart(lines); got != 0 {
			t.Errorf("FindTurnStart = %d, want 0", got)
		}
	})

	t.Run("latest user message", func(t *testing.T) {
		lines := []string{
			`{"type":"user","message":{"role":"user","content":"First task"}}`,
			`{"type":"assistant","message":{"role":"assistant","content":[{"type":"text","text":"Done."}]}}`,
			`{"type":"user","message":{"role":"user","content":"Second task"}}`,
			`{"type":"assistant","message":{"role":"assistant","content":[{"type":"text","text":"Working."}]}}`,
		}
		if got := FindTurnStart(lines); got != 2 {
			t.Errorf("FindTurnStart = %d, want 2", got)
		}
	})
}

func TestScanTurn(t *testing.T) {
	transcript := strings.Join([]string{
		`{"type":"user","message":{"role":"user","content":"Old task"}}`,
		`{"type":"assistant","message":{"role":"assistant","content":[{"type":"text","text":"This is good enough."}]}}`,
		`{"type":"user","message":{"role":"user","content":"New task"}}`,
		`{"type":"assistant","message":{"role":"assistant","content":[{"type":"text","text":"Implemented cleanly."},{"type":"tool_use","input":{"content":"// TODO: wire this up"}}]}}`,
	}, "\n")

	findings := ScanTurn(transcript)
	if !containsFinding(findings, "TODO") {
		t.Errorf("findings %v missing TODO from written file content", findings)
	}
	// The hedge in the previous turn is out of scope.
	if containsFinding(findings, "good enough") {
		t.Errorf("findings %v include previous turn", findings)
	}
}

func writeStopPayload(t *testing.T, transcript string, stopActive bool) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "transcript.jsonl")
	if err := os.WriteFile(path, []byte(transcript), 0o644); err != nil {
		t.Fatal(err)
	}
	b, _ := json.Marshal(map[string]any{
		"session_id":       "s1",
		"transcript_path":  path,
		"stop_hook_active": stopActive,
	})
	return string(b)
}

func TestRunStop(t *testing.T) {
	transcript := strings.Join([]string{
		`{"type":"user","message":{"role":"user","content":"Do the thing"}}`,
		`{"type":"assistant","message":{"role":"assistant","content":[{"type":"text","text":"Hardcoded the value for now."}]}}`,
	}, "\n")

	var out bytes.Buffer
	if err := RunStop(strings.NewReader(writeStopPayload(t, transcript, false)), &out); err != nil {
		t.Fatal(err)
	}
	var resp map[string]any
	if err := json.Unmarshal(out.Bytes(), &resp); err != nil {
		t.Fatalf("response not JSON: %s", out.String())
	}
	if resp["decision"] != "block" {
		t.Errorf("decision = %v, want block", resp["decision"])
	}
	reason, _ := resp["reason"].(string)
	if !strings.Contains(reason, "hardcoded") || !strings.Contains(reason, "for now") {
		t.Errorf("reason = %q, want both findings named", reason)
	}
}

func TestRunStopLoopGuard(t *testing.T) {
	transcript := `{"type":"assistant","message":{"role":"assistant","content":[{"type":"text","text":"good enough for now"}]}}`

	var out bytes.Buffer
	if err := RunStop(strings.NewReader(writeStopPayload(t, transcript, true)), &out); err != nil {
		t.Fatal(err)
	}
	if out.Len() != 0 {
		t.Errorf("stop_hook_active should pass silently, got %s", out.String())
	}
}

func TestRunStopCleanTurn(t *testing.T) {
	transcript := strings.Join([]string{
		`{"type":"user","message":{"role":"user","content":"Do the thing"}}`,
		`{"type":"assistant","message":{"role":"assistant","content":[{"type":"text","text":"Done, with tests."}]}}`,
	}, "\n")

	var out bytes.Buffer
	if err := RunStop(strings.NewReader(writeStopPayload(t, transcript, false)), &out); err != nil {
		t.Fatal(err)
	}
	if out.Len() != 0 {
		t.Errorf("clean turn should pass silently, got %s", out.String())
	}
}

func TestRunStopMissingTranscript(t *testing.T) {
	payload := `{"session_id":"s1","transcript_path":"/nonexistent/t.jsonl"}`
	var out bytes.Buffer
	if err := RunStop(strings.NewReader(payload), &out); err != nil {
		t.Fatal(err)
	}
	if out.Len() != 0 {
		t.Error("unreadable transcript should pass silently")
	}
}
