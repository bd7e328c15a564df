// Package shellparse renders a bash command the way bash itself would
// deliver it: per-word, after quote removal and escape consumption. The
// explain surface uses it to make path corruption visible ("C:\src\a"
// arrives as "C:srca"). The scanning core does not depend on this package;
// hazard detection works on raw text.
package shellparse

import (
	"fmt"
	"strings"

	"mvdan.cc/sh/v3/syntax"
)

// Word is one argument as bash would hand it to the program.
type Word struct {
	Raw       string // source text as written
	Delivered string // after quote removal and escape consumption
	HasParam  bool   // contains $VAR / ${VAR} (value unknown statically)
	HasSubst  bool   // contains $(), backticks or process substitution
}

// Command is one simple command from a pipeline or chain.
type Command struct {
	Words     []Word
	Redirects []string // redirect targets, delivered form
}

// Parse splits cmd into the simple commands bash would run, covering
// pipelines, && / || / ; chains and subshells.
func Parse(cmd string) ([]Command, error) {
	parser := syntax.NewParser(syntax.KeepComments(false), syntax.Variant(syntax.LangBash))
	file, err := parser.Parse(strings.NewReader(cmd), "")
	if err != nil {
		return nil, fmt.Errorf("parse command: %w", err)
	}

	var commands []Command
	syntax.Walk(file, func(node syntax.Node) bool {
		switch n := node.(type) {
		case *syntax.CallExpr:
			if len(n.Args) == 0 {
				return true
			}
			var c Command
			for _, w := range n.Args {
				c.Words = append(c.Words, wordOf(cmd, w))
			}
			commands = append(commands, c)

		case *syntax.Redirect:
			if n.Op == syntax.RdrOut || n.Op == syntax.AppOut ||
				n.Op == syntax.RdrAll || n.Op == syntax.AppAll {
				if target := wordOf(cmd, n.Word); target.Delivered != "" && len(commands) > 0 {
					last := &commands[len(commands)-1]
					last.Redirects = append(last.Redirects, target.Delivered)
				}
			}
		}
		return true
	})

	return commands, nil
}

func wordOf(src string, w *syntax.Word) Word {
	if w == nil {
		return Word{}
	}
	word := Word{Raw: src[w.Pos().Offset():w.End().Offset()]}

	var sb strings.Builder
	for _, part := range w.Parts {
		renderPart(&sb, part, &word)
	}
	word.Delivered = sb.String()
	return word
}

func renderPart(sb *strings.Builder, part syntax.WordPart, word *Word) {
	switch p := part.(type) {
	case *syntax.Lit:
		sb.WriteString(unescapeUnquoted(p.Value))
	case *syntax.SglQuoted:
		sb.WriteString(p.Value)
	case *syntax.DblQuoted:
		for _, inner := range p.Parts {
			switch ip := inner.(type) {
			case *syntax.Lit:
				sb.WriteString(unescapeDouble(ip.Value))
			default:
				renderPart(sb, inner, word)
			}
		}
	case *syntax.ParamExp:
		word.HasParam = true
		if p.Param != nil {
			if p.Short {
				sb.WriteString("$" + p.Param.Value)
			} else {
				sb.WriteString("${" + p.Param.Value + "}")
			}
		}
	case *syntax.CmdSubst:
		word.HasSubst = true
		sb.WriteString("$(...)")
	case *syntax.ProcSubst:
		word.HasSubst = true
	}
}

// unescapeUnquoted consumes one escape layer: each backslash disappears and
// the following byte survives literally.
func unescapeUnquoted(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	var sb strings.Builder
	sb.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) {
			i++
		} else if s[i] == '\\' {
			continue
		}
		sb.WriteByte(s[i])
	}
	return sb.String()
}

// unescapeDouble consumes escapes inside double quotes, where a backslash
// is only special before $ ` " \ and newline.
func unescapeDouble(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	var sb strings.Builder
	sb.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) {
			switch s[i+1] {
			case '$', '`', '"', '\\', '\n':
				i++
			}
		}
		sb.WriteByte(s[i])
	}
	return sb.String()
}

// Explain renders a human-readable account of what each word becomes once
// bash has processed it. Words that survive unchanged are listed plainly;
// altered words show both forms.
func Explain(cmd string) (string, error) {
	commands, err := Parse(cmd)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	for i, c := range commands {
		if len(c.Words) == 0 {
			continue
		}
		fmt.Fprintf(&sb, "command %d: %s\n", i+1, c.Words[0].Delivered)
		for _, w := range c.Words[1:] {
			switch {
			case w.HasSubst:
				fmt.Fprintf(&sb, "  %s  (command substitution, value unknown until run time)\n", w.Raw)
			case w.HasParam:
				fmt.Fprintf(&sb, "  %s  (expands at run time)\n", w.Raw)
			case w.Raw != w.Delivered:
				fmt.Fprintf(&sb, "  %s  -> %s\n", w.Raw, w.Delivered)
			default:
				fmt.Fprintf(&sb, "  %s\n", w.Raw)
			}
		}
		for _, r := range c.Redirects {
			fmt.Fprintf(&sb, "  > %s\n", r)
		}
	}
	return sb.String(), nil
}
