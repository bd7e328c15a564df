// Package eventlog keeps an append-only JSONL journal of guard decisions.
package eventlog

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"winguard/internal/fileutil"
	"winguard/internal/logger"
	"winguard/internal/types"
)

var elLog = logger.New("eventlog")

// Entry is one recorded decision.
type Entry struct {
	Time      time.Time       `json:"time"`
	SessionID string          `json:"session_id,omitempty"`
	Event     types.HookEvent `json:"event,omitempty"`
	Verdict   types.Verdict   `json:"verdict"`
	Command   string          `json:"command,omitempty"`
	Rewritten string          `json:"rewritten,omitempty"`
	Hazard    string          `json:"hazard,omitempty"`
	Note      string          `json:"note,omitempty"`
}

// Journal appends entries to a JSONL file. One process may hold several
// Journal handles on the same path; appends are O_APPEND single writes, so
// lines never interleave.
type Journal struct {
	path string
	mu   sync.Mutex
}

// New creates a Journal writing to path. The file and its directory are
// created on first append.
func New(path string) *Journal {
	return &Journal{path: path}
}

// Path returns the journal file path.
func (j *Journal) Path() string {
	return j.path
}

// Append writes one entry. A zero Time is stamped with the current time.
func (j *Journal) Append(e Entry) error {
	if e.Time.IsZero() {
		e.Time = time.Now().UTC()
	}

	line, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	line = append(line, '\n')

	j.mu.Lock()
	defer j.mu.Unlock()

	// Entries contain full command lines; the journal is owner-only.
	if err := fileutil.SecureMkdirAll(filepath.Dir(j.path)); err != nil {
		return fmt.Errorf("create event log dir: %w", err)
	}
	f, err := fileutil.SecureOpenFile(j.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND)
	if err != nil {
		return fmt.Errorf("open event log: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(line); err != nil {
		return fmt.Errorf("append event: %w", err)
	}
	return nil
}

// Tail returns up to n most recent entries, oldest first. Lines that fail
// to parse are skipped with a warning; a journal survives partial writes
// from a crashed process.
func (j *Journal) Tail(n int) ([]Entry, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	f, err := os.Open(j.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	defer f.Close()

	var entries []Entry
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		var e Entry
		if err := json.Unmarshal(sc.Bytes(), &e); err != nil {
			elLog.Warn("skipping malformed event line: %v", err)
			continue
		}
		entries = append(entries, e)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}

	if n > 0 && len(entries) > n {
		entries = entries[len(entries)-n:]
	}
	return entries, nil
}
