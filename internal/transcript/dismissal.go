package transcript

import (
	"io"
	"os"
	"regexp"
	"strings"

	"winguard/internal/hook"
	"winguard/internal/logger"
)

var dismissLog = logger.New("dismissal")

// dismissalPatterns match language that waves an observed problem away
// without evidence. Applied to lowercased, NFKC-normalized assistant text.
var dismissalPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?:existing|pre-existing|preexisting)\s+(?:issues?|bugs?|problems?|errors?|defects?)`),
	regexp.MustCompile(`(?:not|isn'?t|aren'?t|is\s+not|are\s+not)\s+(?:related|caused|introduced)\s+(?:to|by)\s+(?:this|our|the|my)`),
	regexp.MustCompile(`unrelated\s+(?:issues?|bugs?|problems?|errors?|to\s+(?:this|our|the))`),
	regexp.MustCompile(`separate\s+(?:issues?|bugs?|problems?|concerns?|matters?)`),
	regexp.MustCompile(`(?:outside|beyond)\s+(?:the\s+)?scope\s+of\s+(?:this|our|the)`),
	regexp.MustCompile(`(?:was\s+)?already\s+(?:present|broken|failing|there)\s+(?:before|on\s+main|in\s+main)`),
	regexp.MustCompile(`known\s+(?:issues?|bugs?|problems?|limitations?)`),
	regexp.MustCompile(`not\s+something\s+we\s+introduced`),
	regexp.MustCompile(`(?:this|the|these)\s+(?:issues?|bugs?|problems?|errors?)\s+(?:is|are|was|were|appears?)\s+(?:to\s+be\s+)?(?:pre-existing|preexisting|unrelated)`),
}

const investigationInstructions = `STOP. You just dismissed an issue as "unrelated" or "pre-existing". Investigate before moving on.

1. Reproduce the issue on a clean checkout of the main branch, in a separate worktree.
2. If it reproduces on main (truly pre-existing): file an issue with a clear title, full description, reproduction steps, and expected vs actual behavior. Then you may continue.
3. If it does NOT reproduce on main: the issue was introduced by the current changes and you MUST fix it. Do not dismiss it again.

Do NOT skip this. Do NOT dismiss issues without evidence.`

// MatchesDismissal reports whether text contains dismissal language.
func MatchesDismissal(text string) bool {
	lower := strings.ToLower(foldText(text))
	for _, re := range dismissalPatterns {
		if re.MatchString(lower) {
			return true
		}
	}
	return false
}

// RunPostToolUse handles one PostToolUse invocation. Only transcript
// content appended since the previous invocation for this session is
// scanned, so each dismissal triggers exactly once.
func RunPostToolUse(r io.Reader, w io.Writer, offsets *OffsetStore) error {
	p, err := hook.ReadPayload(r)
	if err != nil {
		dismissLog.Debug("unreadable payload, passing: %v", err)
		return nil
	}
	if p.TranscriptPath == "" {
		return nil
	}
	session := p.SessionID
	if session == "" {
		session = "unknown"
	}

	last := offsets.Load(session)

	f, err := os.Open(p.TranscriptPath)
	if err != nil {
		dismissLog.Debug("cannot open transcript: %v", err)
		return nil
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil
	}
	size := info.Size()
	if size <= last {
		return nil
	}
	if _, err := f.Seek(last, io.SeekStart); err != nil {
		return nil
	}
	fresh, err := io.ReadAll(f)
	if err != nil {
		return nil
	}

	// Advance unconditionally so the same content is never re-scanned,
	// even when no match fires.
	offsets.Save(session, size)

	var texts []string
	for _, line := range strings.Split(string(fresh), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if text := ExtractAssistantText(line); text != "" {
			texts = append(texts, text)
		}
	}
	if len(texts) == 0 {
		return nil
	}

	if !MatchesDismissal(strings.Join(texts, "\n")) {
		return nil
	}
	dismissLog.Debug("dismissal language detected in session %s", session)
	return hook.WriteBlock(w, investigationInstructions)
}
