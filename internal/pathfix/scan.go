package pathfix

// QuoteState identifies the shell quoting context at a byte offset.
type QuoteState int

// Quote states. Exactly one holds at any position.
const (
	Unquoted QuoteState = iota
	SingleQuoted
	DoubleQuoted
)

// String returns the state name for diagnostics.
func (s QuoteState) String() string {
	switch s {
	case SingleQuoted:
		return "single-quoted"
	case DoubleQuoted:
		return "double-quoted"
	default:
		return "unquoted"
	}
}

// quoteScan holds the per-byte quote context of one command string.
// states[i] is the state in effect before byte i is consumed; escaped[i]
// reports that byte i is consumed by an immediately preceding unquoted
// backslash. final is the residual state after the last byte, which for
// unterminated quotes is simply reported, never treated as an error.
type quoteScan struct {
	states  []QuoteState
	escaped []bool
	final   QuoteState
}

// scanQuotes walks a command left to right tracking quote state.
// Rules: an unescaped ' flips unquoted/single-quoted and is inert inside
// double quotes; an unescaped " flips unquoted/double-quoted and is inert
// inside single quotes; a backslash escapes the next byte except inside
// single quotes, where it is a literal character. An escape is consumed by
// the following byte whatever it is, so escapes never chain.
func scanQuotes(cmd string) quoteScan {
	qs := quoteScan{
		states:  make([]QuoteState, len(cmd)),
		escaped: make([]bool, len(cmd)),
	}

	state := Unquoted
	pending := false
	for i := 0; i < len(cmd); i++ {
		qs.states[i] = state

		if pending {
			qs.escaped[i] = true
			pending = false
			continue
		}

		switch cmd[i] {
		case '\'':
			if state == Unquoted {
				state = SingleQuoted
			} else if state == SingleQuoted {
				state = Unquoted
			}
		case '"':
			if state == Unquoted {
				state = DoubleQuoted
			} else if state == DoubleQuoted {
				state = Unquoted
			}
		case '\\':
			if state != SingleQuoted {
				pending = true
			}
		}
	}

	qs.final = state
	return qs
}

// stateAt returns the quote state before byte i. Offsets at or past the end
// report the residual state.
func (q quoteScan) stateAt(i int) QuoteState {
	if i >= 0 && i < len(q.states) {
		return q.states[i]
	}
	return q.final
}
