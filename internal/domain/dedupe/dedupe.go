// Package dedupe tracks score event ids per match so a retried ball is
// acknowledged without being applied twice.
package dedupe

import (
	"container/list"
	"context"
	"sync"
	"sync/atomic"
)

const defaultMaxSize = 100_000

// Deduper records seen (match, event) pairs.
type Deduper interface {
	// SeenAndRecord atomically checks whether eventID was seen for matchID and
	// records it if not. Returns true if it was already seen.
	SeenAndRecord(ctx context.Context, matchID, eventID string) bool

	// Unrecord removes a pair so the event can be retried. Used when an event
	// was recorded but rejected by the match.
	Unrecord(ctx context.Context, matchID, eventID string)

	// Forget drops every pair of a match, e.g. once it is completed.
	Forget(ctx context.Context, matchID string)

	Size() int64
}

type key struct {
	match string
	event string
}

// inMemoryDeduper keeps pairs in insertion order and evicts the oldest once
// maxSize is reached. maxSize <= 0 means unbounded.
type inMemoryDeduper struct {
	mu      sync.Mutex
	order   *list.List
	seen    map[key]*list.Element
	byMatch map[string]map[string]struct{}
	maxSize int
	size    atomic.Int64
}

// NewInMemoryDeduper creates a new in-memory deduper with configuration options.
func NewInMemoryDeduper(opts ...Option) Deduper {
	d := &inMemoryDeduper{maxSize: defaultMaxSize}
	for _, opt := range opts {
		opt(d)
	}
	d.order = list.New()
	d.seen = make(map[key]*list.Element)
	d.byMatch = make(map[string]map[string]struct{})
	return d
}

func (d *inMemoryDeduper) SeenAndRecord(_ context.Context, matchID, eventID string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	k := key{match: matchID, event: eventID}
	if _, ok := d.seen[k]; ok {
		return true
	}
	if d.maxSize > 0 && len(d.seen) >= d.maxSize {
		if oldest := d.order.Front(); oldest != nil {
			d.removeLocked(oldest)
		}
	}
	d.seen[k] = d.order.PushBack(k)
	events, ok := d.byMatch[matchID]
	if !ok {
		events = make(map[string]struct{})
		d.byMatch[matchID] = events
	}
	events[eventID] = struct{}{}
	d.size.Add(1)
	return false
}

func (d *inMemoryDeduper) Unrecord(_ context.Context, matchID, eventID string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if el, ok := d.seen[key{match: matchID, event: eventID}]; ok {
		d.removeLocked(el)
	}
}

func (d *inMemoryDeduper) Forget(_ context.Context, matchID string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for eventID := range d.byMatch[matchID] {
		if el, ok := d.seen[key{match: matchID, event: eventID}]; ok {
			d.removeLocked(el)
		}
	}
	delete(d.byMatch, matchID)
}

// removeLocked must be called with d.mu held.
func (d *inMemoryDeduper) removeLocked(el *list.Element) {
	k := d.order.Remove(el).(key) //nolint:forcetypeassert // list only holds keys
	delete(d.seen, k)
	if events, ok := d.byMatch[k.match]; ok {
		delete(events, k.event)
		if len(events) == 0 {
			delete(d.byMatch, k.match)
		}
	}
	d.size.Add(-1)
}

// Size returns the current number of entries in the deduper.
func (d *inMemoryDeduper) Size() int64 {
	return d.size.Load()
}
