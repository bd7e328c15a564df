package eventlog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"winguard/internal/types"
)

func TestAppendAndTail(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "events.jsonl")
	j := New(path)

	entries := []Entry{
		{SessionID: "s1", Event: types.HookPreToolUse, Verdict: types.VerdictRewrite, Command: `ls C:\src`, Rewritten: `ls C:/src`},
		{SessionID: "s1", Event: types.HookPreToolUse, Verdict: types.VerdictAllow, Command: "git status"},
		{SessionID: "s2", Event: types.HookPreToolUse, Verdict: types.VerdictBlock, Command: `rm C:\a\b`, Hazard: "UnquotedBackslashLoss"},
	}
	for _, e := range entries {
		if err := j.Append(e); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}

	got, err := j.Tail(0)
	if err != nil {
		t.Fatalf("Tail: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("Tail returned %d entries, want 3", len(got))
	}
	if got[0].Verdict != types.VerdictRewrite || got[2].Hazard != "UnquotedBackslashLoss" {
		t.Errorf("entries out of order or mangled: %+v", got)
	}
	for _, e := range got {
		if e.Time.IsZero() {
			t.Error("Append should stamp a zero Time")
		}
	}

	last, err := j.Tail(2)
	if err != nil {
		t.Fatal(err)
	}
	if len(last) != 2 || last[1].SessionID != "s2" {
		t.Errorf("Tail(2) = %+v, want last two entries", last)
	}
}

func TestTailMissingFile(t *testing.T) {
	j := New(filepath.Join(t.TempDir(), "never-written.jsonl"))
	got, err := j.Tail(10)
	if err != nil {
		t.Fatalf("Tail on missing file: %v", err)
	}
	if got != nil {
		t.Errorf("Tail = %+v, want nil", got)
	}
}

func TestTailSkipsMalformedLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.jsonl")
	j := New(path)

	if err := j.Append(Entry{Verdict: types.VerdictAllow, Command: "ls"}); err != nil {
		t.Fatal(err)
	}
	// Simulate a torn write from a crashed process.
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := f.WriteString(`{"verdict":"allo` + "\n"); err != nil {
		t.Fatal(err)
	}
	f.Close()
	if err := j.Append(Entry{Verdict: types.VerdictBlock, Command: "rm"}); err != nil {
		t.Fatal(err)
	}

	got, err := j.Tail(0)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("Tail returned %d entries, want 2 (malformed line skipped)", len(got))
	}
	if got[1].Verdict != types.VerdictBlock {
		t.Errorf("last entry = %+v, want the block decision", got[1])
	}
}

func TestAppendOmitsEmptyFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.jsonl")
	j := New(path)
	if err := j.Append(Entry{Verdict: types.VerdictAllow}); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	line := string(data)
	for _, field := range []string{"session_id", "command", "rewritten", "hazard", "note"} {
		if strings.Contains(line, field) {
			t.Errorf("empty field %q serialized: %s", field, line)
		}
	}
}
