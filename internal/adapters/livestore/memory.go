package livestore

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/okian/scorebook/internal/domain/model"
)

// MemoryStore is an in-process Store.
type MemoryStore struct {
	mu     sync.RWMutex
	values map[string]json.RawMessage
	subs   map[string]map[*memorySub]struct{}
	closed bool
}

type memorySub struct {
	path   string
	fn     func(Snapshot)
	notify chan struct{}
	done   chan struct{}
	once   sync.Once
}

// NewMemoryStore creates an empty in-process store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		values: make(map[string]json.RawMessage),
		subs:   make(map[string]map[*memorySub]struct{}),
	}
}

func (s *MemoryStore) Write(_ context.Context, path string, value any) error {
	const op = "livestore.MemoryStore.Write"
	if err := ValidatePath(path); err != nil {
		return err
	}
	data, err := json.Marshal(value)
	if err != nil {
		return model.WrapError(op, model.ErrInvalidInput, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return model.NewError(op, model.ErrPersistenceUnavailable, "store is closed")
	}
	s.values[path] = data
	s.signalLocked(path)
	return nil
}

func (s *MemoryStore) Remove(_ context.Context, path string) error {
	if err := ValidatePath(path); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return model.NewError("livestore.MemoryStore.Remove", model.ErrPersistenceUnavailable, "store is closed")
	}
	for p := range s.values {
		if IsUnder(p, path) {
			delete(s.values, p)
		}
	}
	for p := range s.subs {
		if IsUnder(p, path) {
			s.signalLocked(p)
		}
	}
	return nil
}

func (s *MemoryStore) Read(_ context.Context, path string) (Snapshot, error) {
	if err := ValidatePath(path); err != nil {
		return Snapshot{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked(path), nil
}

func (s *MemoryStore) Subscribe(ctx context.Context, path string, fn func(Snapshot)) (Unsubscribe, error) {
	if err := ValidatePath(path); err != nil {
		return nil, err
	}
	sub := &memorySub{
		path:   path,
		fn:     fn,
		notify: make(chan struct{}, 1),
		done:   make(chan struct{}),
	}
	// the first delivery carries the current value
	sub.notify <- struct{}{}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, model.NewError("livestore.MemoryStore.Subscribe", model.ErrPersistenceUnavailable, "store is closed")
	}
	if s.subs[path] == nil {
		s.subs[path] = make(map[*memorySub]struct{})
	}
	s.subs[path][sub] = struct{}{}
	s.mu.Unlock()

	go s.deliver(ctx, sub)

	return func() { s.unsubscribe(sub) }, nil
}

// Close stops every subscription.
func (s *MemoryStore) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	var all []*memorySub
	for _, set := range s.subs {
		for sub := range set {
			all = append(all, sub)
		}
	}
	s.mu.Unlock()
	for _, sub := range all {
		s.unsubscribe(sub)
	}
	return nil
}

func (s *MemoryStore) deliver(ctx context.Context, sub *memorySub) {
	for {
		select {
		case <-ctx.Done():
			s.unsubscribe(sub)
			return
		case <-sub.done:
			return
		case <-sub.notify:
			s.mu.RLock()
			snap := s.snapshotLocked(sub.path)
			s.mu.RUnlock()
			select {
			case <-sub.done:
				return
			default:
			}
			sub.fn(snap)
		}
	}
}

func (s *MemoryStore) unsubscribe(sub *memorySub) {
	sub.once.Do(func() {
		close(sub.done)
		s.mu.Lock()
		if set, ok := s.subs[sub.path]; ok {
			delete(set, sub)
			if len(set) == 0 {
				delete(s.subs, sub.path)
			}
		}
		s.mu.Unlock()
	})
}

// signalLocked wakes subscribers of path; a pending wake-up is enough.
func (s *MemoryStore) signalLocked(path string) {
	for sub := range s.subs[path] {
		select {
		case sub.notify <- struct{}{}:
		default:
		}
	}
}

func (s *MemoryStore) snapshotLocked(path string) Snapshot {
	v, ok := s.values[path]
	if !ok {
		return Snapshot{Path: path}
	}
	return Snapshot{Path: path, Value: append(json.RawMessage(nil), v...), Exists: true}
}
