package pathfix

import (
	"fmt"
	"strings"
)

// Classifier decides which of the known hazard shapes applies to a command
// and renders one diagnostic for the first match.
type Classifier struct {
	markers []string
}

// ClassifierOption configures a Classifier.
type ClassifierOption func(*Classifier)

// WithClassifierMarkers overrides the inline-script invocation markers.
func WithClassifierMarkers(markers []string) ClassifierOption {
	return func(c *Classifier) {
		if len(markers) > 0 {
			c.markers = markers
		}
	}
}

// NewClassifier creates a Classifier with the default marker list.
func NewClassifier(opts ...ClassifierOption) *Classifier {
	c := &Classifier{markers: defaultMarkers()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Classify runs the hazard checks in a fixed order and returns the first
// match, or nil when the command is clean. The order is part of the
// contract: when several shapes coexist, callers depend on which diagnostic
// wins, so reordering is a behavior change rather than a refactor. A
// command with multiple hazards yields one finding per invocation; callers
// re-classify after addressing it.
func (cl *Classifier) Classify(cmd string) *Finding {
	checks := []func(string) *Finding{
		cl.checkSpecialDevice,
		cl.checkTrailingQuote,
		cl.checkInlineScript,
		cl.checkUnquotedLoss,
	}
	for _, check := range checks {
		if f := check(cmd); f != nil {
			return f
		}
	}
	return nil
}

// checkSpecialDevice flags a quoted standard-stream device path in a
// command that also invokes an inline script. The path resolves to nothing
// on Windows, so the embedded interpreter fails at open time.
func (cl *Classifier) checkSpecialDevice(cmd string) *Finding {
	if !hasMarker(cmd, cl.markers) {
		return nil
	}
	lit, at := findDeviceLiteral(cmd)
	if at < 0 {
		return nil
	}

	fd := "0"
	for _, d := range deviceAliases {
		if d.quoted == lit {
			fd = d.fd
			break
		}
	}

	return &Finding{
		Kind:    KindSpecialDevice,
		Offset:  at,
		Excerpt: lit,
		Message: fmt.Sprintf(
			"%s is a Unix device path that does not exist on Windows, so the inline script will fail to open it. "+
				"Pass the file descriptor %s instead (e.g. readFileSync(%s, 'utf8') reads the same stream on every platform).",
			lit, fd, fd),
	}
}

// checkTrailingQuote flags a double-quoted drive path whose trailing
// backslash sits directly against the closing quote. Bash reads \" as an
// escaped literal quote, so the string does not end where the author
// intended and everything after it is tokenized wrong. The check requires
// a word boundary after the quote: a quote followed by more word text was
// plausibly an intentional escaped quote mid-string.
func (cl *Classifier) checkTrailingQuote(cmd string) *Finding {
	qs := scanQuotes(cmd)

	for _, c := range findCandidates(cmd) {
		if qs.stateAt(c.start) != DoubleQuoted {
			continue
		}
		if c.end >= len(cmd) || cmd[c.end] != '"' || !c.trailingRunAt(c.end) {
			continue
		}
		if c.end+1 < len(cmd) && !isWordEnd(cmd[c.end+1]) {
			continue
		}

		return &Finding{
			Kind:    KindTrailingQuote,
			Offset:  c.start,
			Excerpt: c.text(cmd),
			Message: fmt.Sprintf(
				`the backslash before the closing quote turns it into a literal character (\" ), so the double-quoted string never ends where intended and the rest of the command is mis-tokenized. `+
					`Write "%s" instead: with forward slashes the trailing separator cannot collide with the quote.`,
				c.slashed(cmd)),
		}
	}
	return nil
}

// checkInlineScript flags a drive path appearing after an inline-script
// marker with a single-backslash separator. One escaping layer has already
// been consumed by the time the embedded interpreter sees the text, and its
// own escape rules rewrite sequences like \t, \n, \b, \r into control
// characters, silently altering the path.
func (cl *Classifier) checkInlineScript(cmd string) *Finding {
	markerAt := -1
	for _, m := range cl.markers {
		if m == "" {
			continue
		}
		if i := strings.Index(cmd, m); i >= 0 && (markerAt < 0 || i < markerAt) {
			markerAt = i
		}
	}
	if markerAt < 0 {
		return nil
	}

	for _, c := range findCandidates(cmd) {
		if c.start <= markerAt || !c.hasSingleRun() {
			continue
		}

		return &Finding{
			Kind:    KindInlineScript,
			Offset:  c.start,
			Excerpt: c.text(cmd),
			Message: fmt.Sprintf(
				`%s sits inside an inline script argument where single backslashes reach a second interpreter: sequences like \t, \n, \b and \r become control characters and silently change the path. `+
					`Use %s — forward slashes carry no escape meaning in either layer.`,
				c.text(cmd), c.slashed(cmd)),
		}
	}
	return nil
}

// checkUnquotedLoss flags a fully unquoted drive path with single-backslash
// separators. Outside quotes, bash consumes each single backslash as an
// escape character, stripping every separator before the program runs.
// Runs of two or more survive that pass and are not hazardous here.
func (cl *Classifier) checkUnquotedLoss(cmd string) *Finding {
	qs := scanQuotes(cmd)

	for _, c := range findCandidates(cmd) {
		if qs.stateAt(c.start) != Unquoted || !c.hasSingleRun() {
			continue
		}

		return &Finding{
			Kind:    KindUnquotedBackslash,
			Offset:  c.start,
			Excerpt: c.text(cmd),
			Message: fmt.Sprintf(
				"%s is unquoted, so bash consumes each single backslash as an escape character and the command runs against %s with every separator stripped. "+
					"Use %s instead, or double the backslashes.",
				c.text(cmd), stripSingleRuns(cmd, c), c.slashed(cmd)),
		}
	}
	return nil
}

// isWordEnd reports whether b terminates a shell word: whitespace, a
// command operator, or a grouping character.
func isWordEnd(b byte) bool {
	switch b {
	case ' ', '\t', '\n', '|', '&', ';', '<', '>', '(', ')':
		return true
	}
	return false
}

// stripSingleRuns renders the candidate the way one pass of unquoted
// escape consumption would leave it: each backslash pair collapses to one
// and a lone trailing backslash escapes the following byte and vanishes.
// Used only for diagnostic text.
func stripSingleRuns(cmd string, c candidate) string {
	var b strings.Builder
	b.Grow(c.end - c.start)

	i := c.start
	for _, r := range c.runs {
		b.WriteString(cmd[i:r.start])
		for k := 0; k < r.n/2; k++ {
			b.WriteByte('\\')
		}
		i = r.start + r.n
	}
	b.WriteString(cmd[i:c.end])
	return b.String()
}
