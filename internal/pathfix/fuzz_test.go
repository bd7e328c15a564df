package pathfix

import (
	"strings"
	"testing"
)

func FuzzNormalize(f *testing.F) {
	// Seed corpus
	seeds := []string{
		`ls -la C:\src\codeflow`,
		`ls -la "C:\src\project\"`,
		`rm C:\src\a\file.json C:\src\b\file.json`,
		`node -e "require('fs').readFileSync('C:\\\\src\\\\file.json','utf8')"`,
		`cat C:\\tmp\\data.json | node -e "JSON.parse(require('fs').readFileSync('/dev/stdin','utf8'))"`,
		`echo "Error: build failed"`,
		`echo "line1\nline2"`,
		`C:\`,
		`c:\\`,
		`C:\C:\`,
		`ls C:\x\C:\y`,
		"",
		`"'"'"'`,
		`\\\\\\\\`,
		`X:\a'b"c\d`,
	}
	for _, s := range seeds {
		f.Add(s)
	}

	n := NewNormalizer()
	f.Fuzz(func(t *testing.T, cmd string) {
		defer func() {
			if r := recover(); r != nil {
				t.Errorf("Normalize panicked on %q: %v", cmd, r)
			}
		}()

		out := n.Normalize(cmd)

		if !out.Changed {
			if out.Command != cmd {
				t.Errorf("Normalize(%q) altered input without Changed: %q", cmd, out.Command)
			}
			if len(out.Applied) != 0 {
				t.Errorf("Normalize(%q) reported fixes without change: %v", cmd, out.Applied)
			}
			return
		}
		if out.Command == cmd {
			t.Errorf("Normalize(%q) set Changed but output is identical", cmd)
		}

		// A normalized command must be a fixed point.
		again := n.Normalize(out.Command)
		if again.Changed {
			t.Errorf("Normalize not idempotent: %q -> %q -> %q", cmd, out.Command, again.Command)
		}
	})
}

func FuzzClassify(f *testing.F) {
	seeds := []string{
		`ls -la "C:\src\project\"`,
		`rm C:\src\a\file.json`,
		`node -e "require('fs').readFileSync('C:\src\file.json','utf8')"`,
		`cat x | node -e "readFileSync('/dev/stdin','utf8')"`,
		`git status`,
		"",
		`"""'''\\\\`,
		`C:\ D:\ E:\`,
	}
	for _, s := range seeds {
		f.Add(s)
	}

	cl := NewClassifier()
	f.Fuzz(func(t *testing.T, cmd string) {
		defer func() {
			if r := recover(); r != nil {
				t.Errorf("Classify panicked on %q: %v", cmd, r)
			}
		}()

		finding := cl.Classify(cmd)
		if finding == nil {
			return
		}
		if finding.Offset < 0 || finding.Offset > len(cmd) {
			t.Errorf("Classify(%q) offset %d out of range", cmd, finding.Offset)
		}
		if finding.Excerpt != "" && !strings.Contains(cmd, finding.Excerpt) {
			t.Errorf("Classify(%q) excerpt %q not present in command", cmd, finding.Excerpt)
		}
		if finding.Message == "" {
			t.Errorf("Classify(%q) returned finding with empty message", cmd)
		}
	})
}

func FuzzScanQuotes(f *testing.F) {
	seeds := []string{
		`echo "a" 'b' c\"d`,
		`echo "unterminated`,
		`echo '\'x`,
		`\\\\`,
		"",
	}
	for _, s := range seeds {
		f.Add(s)
	}

	f.Fuzz(func(t *testing.T, cmd string) {
		defer func() {
			if r := recover(); r != nil {
				t.Errorf("scanQuotes panicked on %q: %v", cmd, r)
			}
		}()

		qs := scanQuotes(cmd)
		if len(qs.states) != len(cmd) || len(qs.escaped) != len(cmd) {
			t.Fatalf("scanQuotes(%q): state slices have wrong length", cmd)
		}
		for i := range cmd {
			switch qs.states[i] {
			case Unquoted, SingleQuoted, DoubleQuoted:
			default:
				t.Errorf("scanQuotes(%q): invalid state %v at %d", cmd, qs.states[i], i)
			}
		}
	})
}
