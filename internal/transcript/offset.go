package transcript

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"winguard/internal/fileutil"
)

// OffsetStore persists a per-session byte offset into the transcript file.
// Offsets live as tiny files in a directory (the temp dir by default) so
// they vanish with the machine's temp cleanup rather than accumulating.
type OffsetStore struct {
	dir string
}

// NewOffsetStore creates a store rooted at dir; empty means the system
// temp directory.
func NewOffsetStore(dir string) *OffsetStore {
	if dir == "" {
		dir = os.TempDir()
	}
	return &OffsetStore{dir: dir}
}

func (o *OffsetStore) path(session string) string {
	// Session IDs come from the host; strip path separators before using
	// one as a filename component.
	session = strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':':
			return '-'
		}
		return r
	}, session)
	return filepath.Join(o.dir, fmt.Sprintf("winguard-dismissal-%s.offset", session))
}

// Load returns the saved offset for the session, or 0.
func (o *OffsetStore) Load(session string) int64 {
	data, err := os.ReadFile(o.path(session))
	if err != nil {
		return 0
	}
	n, err := strconv.ParseInt(strings.TrimSpace(string(data)), 10, 64)
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// Save records the offset for the session. Offset files carry session IDs
// in their names, so they are written owner-only. Failures are deliberately
// dropped; worst case the same content is scanned twice.
func (o *OffsetStore) Save(session string, offset int64) {
	_ = fileutil.SecureWriteFile(o.path(session), []byte(strconv.FormatInt(offset, 10)))
}
