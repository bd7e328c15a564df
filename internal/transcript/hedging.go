package transcript

import (
	"fmt"
	"io"
	"os"
	"strings"

	"winguard/internal/hook"
	"winguard/internal/logger"
)

var hedgeLog = logger.New("hedging")

// hedgingPhrases are matched case-insensitively against assistant text.
var hedgingPhrases = []string{
	// Deferred work
	"for now",
	"revisit later",
	"revisit this",
	"come back to this",
	"should be replaced",
	"should be updated",
	"should be revisited",
	"will need to be",
	// Quality shortcuts
	"good enough",
	"acceptable solution",
	"simple enough",
	"simple approach",
	"basic implementation",
	"simplified version",
	"quick and dirty",
	"not ideal",
	// Version hedging
	"first version",
	"initial version",
	// Placeholder/mock
	"placeholder",
	"hardcoded",
	"hard-coded",
	"workaround",
	"temporary fix",
	"temporary solution",
	"temporary",
	"pre-existing",
	"isn't related to",
	"aren't related to",
}

// codeMarkers are matched case-sensitively so prose mentioning a "todo
// list" does not trigger.
var codeMarkers = []string{"TODO", "FIXME", "HACK", "XXX"}

// HedgingScanner accumulates deduplicated findings across texts.
type HedgingScanner struct {
	findings []string
	seen     map[string]bool
}

// NewHedgingScanner creates an empty scanner.
func NewHedgingScanner() *HedgingScanner {
	return &HedgingScanner{seen: make(map[string]bool)}
}

// ScanText records each phrase or marker present in text, once per scanner.
func (s *HedgingScanner) ScanText(text string) {
	text = foldText(text)
	lower := strings.ToLower(text)

	for _, phrase := range hedgingPhrases {
		if !s.seen[phrase] && strings.Contains(lower, phrase) {
			s.findings = append(s.findings, fmt.Sprintf("%q", phrase))
			s.seen[phrase] = true
		}
	}
	for _, marker := range codeMarkers {
		if !s.seen[marker] && strings.Contains(text, marker) {
			s.findings = append(s.findings, marker+" comment")
			s.seen[marker] = true
		}
	}
}

// Findings returns the accumulated findings in detection order.
func (s *HedgingScanner) Findings() []string {
	return s.findings
}

// ScanTurn scans the current turn of a transcript: every assistant text
// block and written file content after the last real user message.
func ScanTurn(transcript string) []string {
	lines := strings.Split(transcript, "\n")
	start := FindTurnStart(lines)

	s := NewHedgingScanner()
	for _, line := range lines[start:] {
		for _, text := range assistantBlocks(line) {
			s.ScanText(text)
		}
	}
	return s.Findings()
}

// hedgingReason renders the block reason asking for an explicit report of
// each shortcut.
func hedgingReason(findings []string) string {
	return fmt.Sprintf(
		"Shortcut/assumption language detected in this turn: [%s]. "+
			"Before stopping, explicitly report to the user each shortcut or assumption. "+
			"For each: (1) what exactly you did and where, (2) why you chose this approach, "+
			"(3) what a complete solution looks like. Be specific so the user can make "+
			"an informed judgement call.",
		strings.Join(findings, ", "))
}

// RunStop handles one Stop-hook invocation: payload on r, block response on
// w when the turn contains hedging language. Anything unexpected is a
// silent pass; the hook must never wedge a session.
func RunStop(r io.Reader, w io.Writer) error {
	p, err := hook.ReadPayload(r)
	if err != nil {
		hedgeLog.Debug("unreadable payload, passing: %v", err)
		return nil
	}
	// A block from this hook re-enters with stop_hook_active set. Let that
	// one through or the session never stops.
	if p.StopHookActive {
		return nil
	}
	if p.TranscriptPath == "" {
		return nil
	}

	data, err := os.ReadFile(p.TranscriptPath)
	if err != nil {
		hedgeLog.Debug("cannot read transcript: %v", err)
		return nil
	}

	findings := ScanTurn(string(data))
	if len(findings) == 0 {
		return nil
	}
	hedgeLog.Debug("hedging findings: %v", findings)
	return hook.WriteBlock(w, hedgingReason(findings))
}
