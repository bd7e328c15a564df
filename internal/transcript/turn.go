// Package transcript implements the companion hooks that read the session
// transcript: a Stop-hook scan for hedging language and a PostToolUse scan
// for issue-dismissal language.
package transcript

import (
	"encoding/json"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// entry is one transcript JSONL line. Content appears either at the top
// level (bare message form) or nested under message, and is either a plain
// string or an array of typed blocks.
type entry struct {
	Type    string          `json:"type"`
	Role    string          `json:"role"`
	Content json.RawMessage `json:"content"`
	Message struct {
		Content json.RawMessage `json:"content"`
	} `json:"message"`
}

// contentBlock is one element of an array-form content field.
type contentBlock struct {
	Type  string `json:"type"`
	Text  string `json:"text"`
	Input struct {
		Content   string `json:"content"`
		NewString string `json:"new_string"`
	} `json:"input"`
}

// FindTurnStart walks backwards to the last real user message (string
// content, not a tool_result array). Everything after it belongs to the
// current turn.
func FindTurnStart(lines []string) int {
	for i := len(lines) - 1; i >= 0; i-- {
		// Cheap pre-filter before JSON parsing.
		if !strings.Contains(lines[i], `"user"`) {
			continue
		}
		var e entry
		if err := json.Unmarshal([]byte(lines[i]), &e); err != nil {
			continue
		}
		if e.Type == "user" && isJSONString(e.Message.Content) {
			return i
		}
	}
	return 0
}

// ExtractAssistantText returns the concatenated text content of an
// assistant entry, or "" for anything else.
func ExtractAssistantText(line string) string {
	var e entry
	if err := json.Unmarshal([]byte(line), &e); err != nil {
		return ""
	}

	var content json.RawMessage
	switch {
	case e.Role == "assistant":
		content = e.Content
	case e.Type == "assistant":
		content = e.Message.Content
	default:
		return ""
	}
	if len(content) == 0 {
		return ""
	}

	if isJSONString(content) {
		var s string
		if err := json.Unmarshal(content, &s); err != nil {
			return ""
		}
		return s
	}

	var blocks []contentBlock
	if err := json.Unmarshal(content, &blocks); err != nil {
		return ""
	}
	var texts []string
	for _, b := range blocks {
		if b.Type == "text" && b.Text != "" {
			texts = append(texts, b.Text)
		}
	}
	return strings.Join(texts, " ")
}

// assistantBlocks returns the scannable texts of an assistant entry: text
// blocks plus the file content carried by write/edit tool calls.
func assistantBlocks(line string) []string {
	var e entry
	if err := json.Unmarshal([]byte(line), &e); err != nil {
		return nil
	}
	if e.Type != "assistant" {
		return nil
	}

	var blocks []contentBlock
	if err := json.Unmarshal(e.Message.Content, &blocks); err != nil {
		return nil
	}

	var texts []string
	for _, b := range blocks {
		switch b.Type {
		case "text":
			if b.Text != "" {
				texts = append(texts, b.Text)
			}
		case "tool_use":
			if b.Input.Content != "" {
				texts = append(texts, b.Input.Content)
			}
			if b.Input.NewString != "" {
				texts = append(texts, b.Input.NewString)
			}
		}
	}
	return texts
}

func isJSONString(raw json.RawMessage) bool {
	for _, c := range raw {
		switch c {
		case ' ', '\t', '\n', '\r':
			continue
		}
		return c == '"'
	}
	return false
}

// foldText NFKC-normalizes text so fullwidth and other compatibility forms
// cannot dodge the phrase lists.
func foldText(s string) string {
	return norm.NFKC.String(s)
}
