package notify

import (
	"strconv"
	"sync"
	"time"
)

// DefaultCapacity is the maximum number of records the store retains.
const DefaultCapacity = 10

// Store is a bounded, ordered log of notifications, newest first.
// Insertion order is arrival order; inserting beyond capacity evicts the
// oldest record. Safe for concurrent use.
type Store struct {
	mu           sync.Mutex
	records      []Record
	capacity     int
	lastFallback int64
	onChange     func()
}

// NewStore creates a Store holding at most capacity records.
// A capacity <= 0 selects DefaultCapacity.
func NewStore(capacity int) *Store {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Store{capacity: capacity}
}

// SetOnChange registers a hook invoked after every mutation, outside the
// store lock. The dropdown render is driven from here so the visible list
// can never silently drift from the stored one.
func (s *Store) SetOnChange(fn func()) {
	s.mu.Lock()
	s.onChange = fn
	s.mu.Unlock()
}

// Add prepends a new record and trims the store to capacity.
// An empty id gets a timestamp-based fallback, kept strictly increasing so
// two records admitted in the same millisecond still get distinct ids.
// Missing optional fields are stored as empty strings, never rejected.
func (s *Store) Add(severity Severity, title, message, details, id string) Record {
	s.mu.Lock()
	if id == "" {
		id = s.nextFallbackIDLocked()
	}
	rec := Record{
		ID:         id,
		Severity:   severity,
		Title:      title,
		Message:    message,
		Details:    details,
		ReceivedAt: time.Now(),
	}
	s.records = append([]Record{rec}, s.records...)
	if len(s.records) > s.capacity {
		s.records = s.records[:s.capacity]
	}
	fn := s.onChange
	s.mu.Unlock()

	if fn != nil {
		fn()
	}
	return rec
}

// Contains reports whether an incoming event duplicates a stored record.
// A non-empty id matches on id alone; otherwise both title and message must
// be textually identical.
func (s *Store) Contains(id, title, message string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, rec := range s.records {
		if id != "" {
			if rec.ID == id {
				return true
			}
			continue
		}
		if rec.Title == title && rec.Message == message {
			return true
		}
	}
	return false
}

// Clear removes all records.
func (s *Store) Clear() {
	s.mu.Lock()
	s.records = nil
	fn := s.onChange
	s.mu.Unlock()

	if fn != nil {
		fn()
	}
}

// Reset replaces the store contents with the given records, newest first,
// trimmed to capacity. Used when loading the initial list from the server.
func (s *Store) Reset(records []Record) {
	s.mu.Lock()
	s.records = make([]Record, 0, len(records))
	for _, rec := range records {
		if rec.ID == "" {
			rec.ID = s.nextFallbackIDLocked()
		}
		s.records = append(s.records, rec)
	}
	if len(s.records) > s.capacity {
		s.records = s.records[:s.capacity]
	}
	fn := s.onChange
	s.mu.Unlock()

	if fn != nil {
		fn()
	}
}

// List returns a copy of the current records, newest first.
func (s *Store) List() []Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Record, len(s.records))
	copy(out, s.records)
	return out
}

// Len returns the number of stored records.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

func (s *Store) nextFallbackIDLocked() string {
	now := time.Now().UnixMilli()
	if now <= s.lastFallback {
		now = s.lastFallback + 1
	}
	s.lastFallback = now
	return strconv.FormatInt(now, 10)
}
