// Package pathfix detects and repairs Windows drive paths that bash-style
// escaping would silently corrupt. One scanning core feeds two strategies:
// Normalize rewrites a command in place (auto-repair) and Classify renders a
// diagnostic naming the failure mode (pre-execution gate).
package pathfix

// Kind tags the failure mode a hazardous command would hit.
type Kind string

// Hazard kinds, in classification order.
const (
	KindSpecialDevice     Kind = "special-device-alias"
	KindTrailingQuote     Kind = "trailing-quote-collision"
	KindInlineScript      Kind = "inline-script-escape"
	KindUnquotedBackslash Kind = "unquoted-backslash-loss"
)

// Finding is one classified hazard: where it was found, the matched text,
// and a rendered diagnostic offering a corrected form.
type Finding struct {
	Kind    Kind   `json:"kind"`
	Offset  int    `json:"offset"`
	Excerpt string `json:"excerpt"`
	Message string `json:"message"`
}

// Outcome is the sole return contract of Normalize: either no change, or
// the rewritten command plus the ordered list of applied fix descriptions.
type Outcome struct {
	Changed bool     `json:"changed"`
	Command string   `json:"command"`
	Applied []string `json:"applied,omitempty"`
}

// NoChange is the Outcome for a command that needed no repair.
func NoChange(cmd string) Outcome {
	return Outcome{Changed: false, Command: cmd}
}

// defaultMarkers lists the inline-script invocation markers that gate the
// device-alias checks. A bare substring check is deliberate: parsing the
// full invocation would be disproportionate, and a false negative here only
// means we leave a working command alone.
func defaultMarkers() []string {
	return []string{"node"}
}

// deviceAliases maps quoted standard-stream device literals to the portable
// file-descriptor form. The path form resolves to nothing on Windows;
// descriptor access (readFileSync(0) and friends) works everywhere.
var deviceAliases = [...]struct {
	quoted string
	fd     string
}{
	{`'/dev/stdin'`, "0"},
	{`"/dev/stdin"`, "0"},
	{`'/dev/stdout'`, "1"},
	{`"/dev/stdout"`, "1"},
	{`'/dev/stderr'`, "2"},
	{`"/dev/stderr"`, "2"},
}
