// Package dedupe tracks processed set identifiers so that replaying the
// same set twice is a no-op.
package dedupe

import (
	"context"
	"sync"
	"sync/atomic"
)

// Tracker records processed set IDs to keep rating replays idempotent.
type Tracker interface {
	// SeenAndRecord atomically checks if id was seen and records it if not.
	// Returns true if id was already seen, false if it was newly recorded.
	SeenAndRecord(ctx context.Context, id string) bool

	// Unrecord removes an ID from the seen set, allowing it to be replayed.
	Unrecord(ctx context.Context, id string)

	Size() int64
}

// inMemoryTracker implements Tracker with a map plus an insertion-order
// slice used for eviction in bounded mode. maxSize <= 0 disables eviction.
type inMemoryTracker struct {
	mu      sync.Mutex
	seen    map[string]struct{}
	order   []string // insertion order, only maintained in bounded mode
	maxSize int
	size    atomic.Int64
}

// NewInMemoryTracker creates a new in-memory tracker with configuration options.
func NewInMemoryTracker(opts ...Option) Tracker {
	t := &inMemoryTracker{
		maxSize: 0, // unbounded: a full historical replay must see every set once
	}

	for _, opt := range opts {
		opt(t)
	}

	t.seen = make(map[string]struct{})
	if t.maxSize > 0 {
		t.order = make([]string, 0, t.maxSize)
	}
	return t
}

// SeenAndRecord atomically checks if id was seen and records it if not.
func (t *inMemoryTracker) SeenAndRecord(ctx context.Context, id string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.seen[id]; ok {
		return true
	}

	if t.maxSize > 0 && len(t.seen) >= t.maxSize {
		// Evict the oldest recorded ID.
		oldest := t.order[0]
		t.order = t.order[1:]
		delete(t.seen, oldest)
		t.size.Add(-1)
	}

	t.seen[id] = struct{}{}
	if t.maxSize > 0 {
		t.order = append(t.order, id)
	}
	t.size.Add(1)
	return false
}

// Unrecord removes an ID from the seen set.
func (t *inMemoryTracker) Unrecord(ctx context.Context, id string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.seen[id]; !ok {
		return
	}
	delete(t.seen, id)
	if t.maxSize > 0 {
		for i, v := range t.order {
			if v == id {
				t.order = append(t.order[:i], t.order[i+1:]...)
				break
			}
		}
	}
	t.size.Add(-1)
}

// Size returns the current number of recorded IDs.
func (t *inMemoryTracker) Size() int64 {
	return t.size.Load()
}
