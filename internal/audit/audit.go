// Package audit keeps the append-only, size-bounded trail of authentication
// and administrative events. Entries are immutable once written; when the log
// is full the oldest entries are silently dropped.
package audit

import (
	"sync"
	"time"

	"sentra.org/internal/ids"
	"sentra.org/internal/obs"
)

// DefaultCapacity bounds the in-memory log to the most recent entries.
const DefaultCapacity = 10000

// Entry is a single immutable audit record.
type Entry struct {
	ID        string         `json:"id"`
	Timestamp time.Time      `json:"timestamp"`
	UserID    string         `json:"user_id"`
	Action    string         `json:"action"`
	Resource  string         `json:"resource"`
	Details   map[string]any `json:"details"`
	IPAddress string         `json:"ip_address,omitempty"`
	UserAgent string         `json:"user_agent,omitempty"`
	Success   bool           `json:"success"`
}

// Log is a fixed-capacity ring buffer of entries, safe for concurrent use.
type Log struct {
	mu      sync.Mutex
	entries []Entry
	head    int
	size    int
	now     func() time.Time
	emit    bool
}

// Option configures a Log.
type Option func(*Log)

// WithCapacity overrides the entry cap.
func WithCapacity(n int) Option {
	return func(l *Log) {
		if n > 0 {
			l.entries = make([]Entry, n)
		}
	}
}

// WithClock overrides the time source (useful for tests).
func WithClock(fn func() time.Time) Option {
	return func(l *Log) {
		if fn != nil {
			l.now = fn
		}
	}
}

// WithoutEmit disables the JSON audit line written per entry. Tests use this
// to keep output quiet.
func WithoutEmit() Option {
	return func(l *Log) {
		l.emit = false
	}
}

// NewLog constructs an empty log with DefaultCapacity unless overridden.
func NewLog(opts ...Option) *Log {
	l := &Log{
		entries: make([]Entry, DefaultCapacity),
		now:     time.Now,
		emit:    true,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Append records an entry, assigning id and timestamp when unset. Eviction of
// the oldest entry on overflow is O(1).
func (l *Log) Append(entry Entry) {
	l.mu.Lock()
	if entry.ID == "" {
		entry.ID = ids.New()
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = l.now().UTC()
	}
	if entry.Details == nil {
		entry.Details = map[string]any{}
	}

	idx := (l.head + l.size) % len(l.entries)
	l.entries[idx] = entry
	if l.size < len(l.entries) {
		l.size++
	} else {
		l.head = (l.head + 1) % len(l.entries)
	}
	l.mu.Unlock()

	obs.ObserveAuditAppend()
	if l.emit {
		obs.Emit(map[string]any{
			"ts":       entry.Timestamp.Format(time.RFC3339Nano),
			"level":    "info",
			"type":     "audit",
			"event":    entry.Action,
			"user_id":  entry.UserID,
			"resource": entry.Resource,
			"success":  entry.Success,
			"fields":   entry.Details,
		})
	}
}

// Len reports how many entries are currently retained.
func (l *Log) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.size
}

// Query returns at most limit of the most recent entries whose timestamps fall
// within the inclusive [start, end] bounds. Nil bounds are open. Results are
// ordered oldest first.
func (l *Log) Query(start, end *time.Time, limit int) []Entry {
	if limit <= 0 {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	// Walk newest to oldest so the limit keeps the most recent matches.
	matched := make([]Entry, 0, min(limit, l.size))
	for i := l.size - 1; i >= 0 && len(matched) < limit; i-- {
		e := l.entries[(l.head+i)%len(l.entries)]
		if start != nil && e.Timestamp.Before(*start) {
			continue
		}
		if end != nil && e.Timestamp.After(*end) {
			continue
		}
		matched = append(matched, e)
	}

	// Reverse into chronological order.
	for i, j := 0, len(matched)-1; i < j; i, j = i+1, j-1 {
		matched[i], matched[j] = matched[j], matched[i]
	}
	return matched
}
