package shellparse

import (
	"strings"
	"testing"
)

func parseOne(t *testing.T, cmd string) Command {
	t.Helper()
	cmds, err := Parse(cmd)
	if err != nil {
		t.Fatalf("Parse(%q): %v", cmd, err)
	}
	if len(cmds) != 1 {
		t.Fatalf("Parse(%q) = %d commands, want 1", cmd, len(cmds))
	}
	return cmds[0]
}

func TestParseDeliveredForms(t *testing.T) {
	tests := []struct {
		name string
		cmd  string
		want []string // delivered words, command name first
	}{
		{
			name: "unquoted backslashes consumed",
			cmd:  `rm C:\src\a\file.json`,
			want: []string{"rm", "C:srcafile.json"},
		},
		{
			name: "doubled backslashes survive as singles",
			cmd:  `grep pattern C:\\src\\f.txt`,
			want: []string{"grep", "pattern", `C:\src\f.txt`},
		},
		{
			name: "double quotes preserve non-special backslashes",
			cmd:  `ls "C:\src\project"`,
			want: []string{"ls", `C:\src\project`},
		},
		{
			name: "single quotes are verbatim",
			cmd:  `echo 'C:\src\a'`,
			want: []string{"echo", `C:\src\a`},
		},
		{
			name: "escaped quote inside double quotes",
			cmd:  `echo "say \"hi\""`,
			want: []string{"echo", `say "hi"`},
		},
		{
			name: "forward slashes untouched",
			cmd:  `ls -la C:/src/project`,
			want: []string{"ls", "-la", "C:/src/project"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := parseOne(t, tt.cmd)
			var got []string
			for _, w := range c.Words {
				got = append(got, w.Delivered)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("words = %q, want %q", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("word %d = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestParsePipeline(t *testing.T) {
	cmds, err := Parse(`cat data.json | node -e "console.log(1)"`)
	if err != nil {
		t.Fatal(err)
	}
	if len(cmds) != 2 {
		t.Fatalf("got %d commands, want 2", len(cmds))
	}
	if cmds[0].Words[0].Delivered != "cat" || cmds[1].Words[0].Delivered != "node" {
		t.Errorf("command names wrong: %+v", cmds)
	}
}

func TestParseRedirect(t *testing.T) {
	cmds, err := Parse(`echo hi > out.txt`)
	if err != nil {
		t.Fatal(err)
	}
	if len(cmds) != 1 || len(cmds[0].Redirects) != 1 || cmds[0].Redirects[0] != "out.txt" {
		t.Errorf("redirects = %+v, want [out.txt]", cmds)
	}
}

func TestParseDynamicWords(t *testing.T) {
	c := parseOne(t, `echo $HOME $(date)`)
	if !c.Words[1].HasParam {
		t.Error("$HOME should be flagged as parameter expansion")
	}
	if c.Words[1].Delivered != "$HOME" {
		t.Errorf("param word delivered = %q, want $HOME", c.Words[1].Delivered)
	}
	if !c.Words[2].HasSubst {
		t.Error("$(date) should be flagged as substitution")
	}
}

func TestParseError(t *testing.T) {
	if _, err := Parse(`echo "unterminated`); err == nil {
		t.Error("unterminated quote should fail to parse")
	}
	// The classic trailing-quote collision is also a parse error: the
	// escaped quote leaves the string open.
	if _, err := Parse(`ls "C:\src\project\"`); err == nil {
		t.Error("trailing backslash-quote should fail to parse")
	}
}

func TestExplain(t *testing.T) {
	out, err := Explain(`rm C:\src\a\file.json`)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "command 1: rm") {
		t.Errorf("missing command header: %s", out)
	}
	if !strings.Contains(out, `C:\src\a\file.json  -> C:srcafile.json`) {
		t.Errorf("missing before/after rendering: %s", out)
	}

	out, err = Explain(`echo hello`)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(out, "->") {
		t.Errorf("unchanged words should not show an arrow: %s", out)
	}
}
