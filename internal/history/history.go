// Package history keeps a bounded, linear undo/redo stack of quotation
// snapshots.
package history

import (
	"sync"
	"time"

	"github.com/jsamuelsen/quote-engine/internal/domain"
)

// DefaultCapacity is the number of snapshots kept before the oldest is
// evicted.
const DefaultCapacity = 50

// Entry describes one recorded snapshot.
type Entry struct {
	Action     string
	RecordedAt time.Time
}

type snapshot struct {
	quotation *domain.Quotation
	entry     Entry
}

// Option configures a Stack.
type Option func(*Stack)

// WithOnRestore installs a callback invoked with the restored copy on every
// successful Undo or Redo. Record calls made from inside the callback are
// ignored.
func WithOnRestore(fn func(*domain.Quotation)) Option {
	return func(s *Stack) {
		s.onRestore = fn
	}
}

// WithClock overrides the time source for entry timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Stack) {
		s.now = now
	}
}

// Stack is safe for concurrent use.
type Stack struct {
	mu        sync.Mutex
	snapshots []snapshot
	cursor    int
	capacity  int
	restoring bool
	onRestore func(*domain.Quotation)
	now       func() time.Time
}

// New creates a Stack. When initial is non-nil it becomes the first snapshot,
// the state every undo chain ends at.
func New(capacity int, initial *domain.Quotation, opts ...Option) *Stack {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}

	s := &Stack{capacity: capacity, cursor: -1, now: time.Now}

	for _, opt := range opts {
		opt(s)
	}

	if initial != nil {
		s.Record(initial, "initial")
	}

	return s
}

// Record stores a deep copy of q after the cursor, discarding any redo
// branch. It reports false when the snapshot was skipped: q equals the
// current snapshot, q is nil, or an undo/redo is being applied.
func (s *Stack) Record(q *domain.Quotation, action string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if q == nil || s.restoring {
		return false
	}

	if s.cursor >= 0 && s.snapshots[s.cursor].quotation.Equal(q) {
		return false
	}

	s.snapshots = append(s.snapshots[:s.cursor+1], snapshot{
		quotation: q.Clone(),
		entry:     Entry{Action: action, RecordedAt: s.now()},
	})

	if over := len(s.snapshots) - s.capacity; over > 0 {
		s.snapshots = append([]snapshot(nil), s.snapshots[over:]...)
	}

	s.cursor = len(s.snapshots) - 1

	return true
}

// Undo moves the cursor back one snapshot and returns a copy of it.
func (s *Stack) Undo() (*domain.Quotation, bool) {
	return s.move(-1)
}

// Redo moves the cursor forward one snapshot and returns a copy of it.
func (s *Stack) Redo() (*domain.Quotation, bool) {
	return s.move(1)
}

func (s *Stack) move(delta int) (*domain.Quotation, bool) {
	s.mu.Lock()

	target := s.cursor + delta
	if target < 0 || target >= len(s.snapshots) || s.cursor < 0 {
		s.mu.Unlock()

		return nil, false
	}

	s.cursor = target
	restored := s.snapshots[target].quotation.Clone()
	callback := s.onRestore
	s.restoring = true
	s.mu.Unlock()

	if callback != nil {
		callback(restored.Clone())
	}

	s.mu.Lock()
	s.restoring = false
	s.mu.Unlock()

	return restored, true
}

// CanUndo reports whether an earlier snapshot exists.
func (s *Stack) CanUndo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.cursor > 0
}

// CanRedo reports whether a later snapshot exists.
func (s *Stack) CanRedo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.cursor >= 0 && s.cursor < len(s.snapshots)-1
}

// Current returns a copy of the snapshot at the cursor, or nil.
func (s *Stack) Current() *domain.Quotation {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cursor < 0 {
		return nil
	}

	return s.snapshots[s.cursor].quotation.Clone()
}

// Clear drops every snapshot and, when q is non-nil, starts over from it.
func (s *Stack) Clear(q *domain.Quotation) {
	s.mu.Lock()
	s.snapshots = nil
	s.cursor = -1
	s.mu.Unlock()

	if q != nil {
		s.Record(q, "initial")
	}
}

// Len returns the number of stored snapshots.
func (s *Stack) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.snapshots)
}

// Cursor returns the index of the current snapshot, -1 when empty.
func (s *Stack) Cursor() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.cursor
}

// Entries lists the recorded actions oldest first.
func (s *Stack) Entries() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Entry, len(s.snapshots))
	for i, snap := range s.snapshots {
		out[i] = snap.entry
	}

	return out
}
