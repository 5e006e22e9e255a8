package janitor

import (
	"os"
	"strconv"
	"strings"
	"sync"
	"time"
)

// MarkerStore persists the last-run timestamp of the throttled sweep.
// Implementations never surface errors: a lost marker only delays cleanup.
type MarkerStore interface {
	LastRun() (time.Time, bool)
	SetLastRun(t time.Time)
}

// FileMarker keeps the marker in memory for fast reads and mirrors it to a
// text file so the throttle survives process restarts. File contents are an
// RFC 3339 timestamp; a bare Unix epoch float is accepted for backward
// compatibility with markers written by the previous implementation.
type FileMarker struct {
	path string

	mu     sync.Mutex
	cached time.Time
	has    bool
}

func NewFileMarker(path string) *FileMarker {
	return &FileMarker{path: path}
}

func (m *FileMarker) LastRun() (time.Time, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.has {
		return m.cached, true
	}

	data, err := os.ReadFile(m.path)
	if err != nil {
		return time.Time{}, false
	}

	t, ok := parseMarker(strings.TrimSpace(string(data)))
	if !ok {
		return time.Time{}, false
	}
	m.cached, m.has = t, true
	return t, true
}

func (m *FileMarker) SetLastRun(t time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.cached, m.has = t, true
	// Best effort: an unavailable file only delays the next sweep.
	_ = os.WriteFile(m.path, []byte(t.UTC().Format(time.RFC3339Nano)), 0o644)
}

func parseMarker(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, true
	}
	// Legacy format: Unix epoch seconds as a float. Read-only.
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		sec := int64(f)
		nsec := int64((f - float64(sec)) * float64(time.Second))
		return time.Unix(sec, nsec).UTC(), true
	}
	return time.Time{}, false
}
