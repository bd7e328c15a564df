package pathfix

import "strings"

// sepRun is one run of consecutive backslashes inside a candidate.
// Runs of length 1, 2 and 4 all mean a single directory boundary: the
// separator may have passed through up to two layers of escaping before
// reaching this scanner, so they must match and normalize identically.
type sepRun struct {
	start int // offset of the first backslash, relative to the command
	n     int // run length
}

// candidate is one drive-letter path occurrence, cmd[start:end], with the
// positions of its backslash runs. A candidate always has at least one run
// because the anchor itself contains a backslash.
type candidate struct {
	start int
	end   int
	runs  []sepRun
}

// isPathByte reports whether b can appear inside a path component.
func isPathByte(b byte) bool {
	if isAlnum(b) {
		return true
	}
	switch b {
	case '-', '_', '.', '~', '+', '@', '#':
		return true
	}
	return false
}

func isAlnum(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9')
}

func isASCIILetter(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

// nextCandidate finds the first drive-path candidate at or after from.
// The anchor is the 3-byte shape <letter>:\ at a word boundary: the
// preceding byte must be absent or non-alphanumeric, which rejects colons
// inside identifiers ("Error:") and URL schemes ("https:").
func nextCandidate(cmd string, from int) (candidate, bool) {
	if from < 0 {
		from = 0
	}
	for i := from; i+2 < len(cmd); i++ {
		if anchorsAt(cmd, i) {
			return extendCandidate(cmd, i), true
		}
	}
	return candidate{}, false
}

// extendCandidate greedily grows a candidate from its anchor: backslash
// runs collapse to one separator each, path bytes extend the token, and
// anything else ends it. A trailing separator run still belongs to the
// candidate even when nothing follows it.
func extendCandidate(cmd string, start int) candidate {
	c := candidate{start: start}

	i := start + 2 // past "X:"
	for i < len(cmd) {
		switch {
		case cmd[i] == '\\':
			run := sepRun{start: i}
			for i < len(cmd) && cmd[i] == '\\' {
				i++
				run.n++
			}
			c.runs = append(c.runs, run)
			if i >= len(cmd) || !isPathByte(cmd[i]) {
				c.end = i
				return c
			}
		case anchorsAt(cmd, i):
			// The byte is a drive letter of a following anchor, not a path
			// byte of this candidate. Ending here lets the matcher re-anchor,
			// so the next path's ":\" cannot survive a rewrite and re-anchor
			// on a later pass.
			c.end = i
			return c
		case isPathByte(cmd[i]):
			i++
		default:
			c.end = i
			return c
		}
	}

	c.end = i
	return c
}

// anchorsAt reports whether cmd[i:] starts a drive-path anchor under the
// same boundary rule nextCandidate uses: <letter>:\ with a non-alphanumeric
// byte before it.
func anchorsAt(cmd string, i int) bool {
	if i+2 >= len(cmd) || !isASCIILetter(cmd[i]) || cmd[i+1] != ':' || cmd[i+2] != '\\' {
		return false
	}
	return i == 0 || !isAlnum(cmd[i-1])
}

// findCandidates returns every candidate left to right, non-overlapping.
func findCandidates(cmd string) []candidate {
	var out []candidate
	from := 0
	for {
		c, ok := nextCandidate(cmd, from)
		if !ok {
			return out
		}
		out = append(out, c)
		from = c.end
	}
}

// slashed renders a candidate with each backslash run replaced by a single
// forward slash. Used both for rewriting and for the corrected form shown
// in diagnostics.
func (c candidate) slashed(cmd string) string {
	var b strings.Builder
	b.Grow(c.end - c.start)

	i := c.start
	for _, r := range c.runs {
		b.WriteString(cmd[i:r.start])
		b.WriteByte('/')
		i = r.start + r.n
	}
	b.WriteString(cmd[i:c.end])
	return b.String()
}

// text returns the candidate's raw substring.
func (c candidate) text(cmd string) string {
	return cmd[c.start:c.end]
}

// hasSingleRun reports whether any backslash run has length exactly 1.
// Length >= 2 survives one pass of unquoted escape consumption unchanged,
// so only single backslashes are hazardous at that layer.
func (c candidate) hasSingleRun() bool {
	for _, r := range c.runs {
		if r.n == 1 {
			return true
		}
	}
	return false
}

// trailingRunAt reports whether the candidate's final backslash run ends
// exactly at offset end (i.e. the candidate's last byte is a backslash
// adjacent to whatever follows at end).
func (c candidate) trailingRunAt(end int) bool {
	if len(c.runs) == 0 {
		return false
	}
	last := c.runs[len(c.runs)-1]
	return last.start+last.n == end && end == c.end
}
