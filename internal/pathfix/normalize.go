package pathfix

import "strings"

// Fix descriptions surfaced to the host in the advisory note.
const (
	fixDeviceAlias = "/dev/stdin replaced with fd number (doesn't exist on Windows)"
	fixDrivePaths  = "backslash paths converted to forward slashes (avoids bash escape issues)"
)

// Normalizer rewrites hazardous drive paths and device literals in place.
// The zero value is not usable; construct with NewNormalizer.
type Normalizer struct {
	markers       []string
	deviceEnabled bool
	pathsEnabled  bool
}

// NormalizerOption configures a Normalizer.
type NormalizerOption func(*Normalizer)

// WithMarkers overrides the inline-script invocation markers that gate the
// device-alias fix.
func WithMarkers(markers []string) NormalizerOption {
	return func(n *Normalizer) {
		if len(markers) > 0 {
			n.markers = markers
		}
	}
}

// WithDeviceFix enables or disables the device-alias substitution.
func WithDeviceFix(enabled bool) NormalizerOption {
	return func(n *Normalizer) { n.deviceEnabled = enabled }
}

// WithPathFix enables or disables backslash-to-forward-slash rewriting.
func WithPathFix(enabled bool) NormalizerOption {
	return func(n *Normalizer) { n.pathsEnabled = enabled }
}

// NewNormalizer creates a Normalizer with both fixes enabled and the
// default marker list.
func NewNormalizer(opts ...NormalizerOption) *Normalizer {
	n := &Normalizer{
		markers:       defaultMarkers(),
		deviceEnabled: true,
		pathsEnabled:  true,
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Normalize applies the repair fixes to a copy of cmd in fix order and
// returns the outcome. Re-running Normalize on an already-normalized
// command always reports no change: forward-slash paths produce no
// candidates and descriptor literals no longer match the device table.
func (n *Normalizer) Normalize(cmd string) Outcome {
	out := Outcome{Command: cmd}

	if n.deviceEnabled {
		if fixed, changed := n.fixDeviceAliases(out.Command); changed {
			out.Command = fixed
			out.Changed = true
			out.Applied = append(out.Applied, fixDeviceAlias)
		}
	}

	if n.pathsEnabled {
		if fixed, changed := rewriteDrivePaths(out.Command); changed {
			out.Command = fixed
			out.Changed = true
			out.Applied = append(out.Applied, fixDrivePaths)
		}
	}

	return out
}

// Note renders the applied fixes as one advisory string for the host to
// attach to execution context. Empty when nothing changed.
func (o Outcome) Note() string {
	if !o.Changed {
		return ""
	}
	return "command was rewritten: " + strings.Join(o.Applied, "; ") +
		". Use forward-slash paths on Windows to avoid this."
}

// hasMarker reports whether cmd contains any inline-script invocation
// marker. This substring gate keeps the device fix away from device-path
// usages that actually work in the current shell.
func hasMarker(cmd string, markers []string) bool {
	for _, m := range markers {
		if m != "" && strings.Contains(cmd, m) {
			return true
		}
	}
	return false
}

// findDeviceLiteral returns the first quoted device literal in cmd along
// with its offset, or "" and -1.
func findDeviceLiteral(cmd string) (string, int) {
	first, at := "", -1
	for _, d := range deviceAliases {
		if i := strings.Index(cmd, d.quoted); i >= 0 && (at < 0 || i < at) {
			first, at = d.quoted, i
		}
	}
	return first, at
}

// fixDeviceAliases replaces every quoted standard-stream device literal
// with its file-descriptor form, but only in commands that contain an
// inline-script marker.
func (n *Normalizer) fixDeviceAliases(cmd string) (string, bool) {
	if !hasMarker(cmd, n.markers) {
		return cmd, false
	}

	changed := false
	for _, d := range deviceAliases {
		if strings.Contains(cmd, d.quoted) {
			cmd = strings.ReplaceAll(cmd, d.quoted, d.fd)
			changed = true
		}
	}
	return cmd, changed
}

// rewriteDrivePaths converts every backslash run inside every drive-path
// candidate to a single forward slash. The rewrite ignores quote state on
// purpose: forward slashes are valid separators in the shell, in embedded
// interpreters, and in the Windows path APIs, so the repaired form is
// correct in every context the original could have run in.
func rewriteDrivePaths(cmd string) (string, bool) {
	cands := findCandidates(cmd)
	if len(cands) == 0 {
		return cmd, false
	}

	var b strings.Builder
	b.Grow(len(cmd))

	changed := false
	last := 0
	for _, c := range cands {
		b.WriteString(cmd[last:c.start])
		b.WriteString(c.slashed(cmd))
		if len(c.runs) > 0 {
			changed = true
		}
		last = c.end
	}
	b.WriteString(cmd[last:])

	return b.String(), changed
}
