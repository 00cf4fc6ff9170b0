package storage

import (
	"context"
	"sync"
)

const watchBuffer = 32

type memoryHub struct {
	mu      sync.Mutex
	data    map[string]string
	members map[*MemoryStore]struct{}
}

// MemoryStore keeps values in process memory. Stores created with Sibling
// share data and see each other's writes, like two tabs of one browser.
type MemoryStore struct {
	hub *memoryHub

	mu       sync.Mutex
	watchers map[chan Change]struct{}
	closed   bool
}

func NewMemoryStore() *MemoryStore {
	hub := &memoryHub{
		data:    map[string]string{},
		members: map[*MemoryStore]struct{}{},
	}
	return hub.join()
}

func (h *memoryHub) join() *MemoryStore {
	s := &MemoryStore{hub: h, watchers: map[chan Change]struct{}{}}
	h.mu.Lock()
	h.members[s] = struct{}{}
	h.mu.Unlock()
	return s
}

// Sibling returns another store over the same data.
func (s *MemoryStore) Sibling() *MemoryStore {
	return s.hub.join()
}

func (s *MemoryStore) Get(_ context.Context, key string) (string, bool, error) {
	s.hub.mu.Lock()
	defer s.hub.mu.Unlock()
	v, ok := s.hub.data[key]
	return v, ok, nil
}

func (s *MemoryStore) Set(_ context.Context, key, value string) error {
	s.hub.mu.Lock()
	s.hub.data[key] = value
	others := s.othersLocked()
	s.hub.mu.Unlock()

	for _, o := range others {
		o.notify(Change{Key: key, NewValue: strPtr(value)})
	}
	return nil
}

func (s *MemoryStore) Remove(_ context.Context, key string) error {
	s.hub.mu.Lock()
	_, existed := s.hub.data[key]
	delete(s.hub.data, key)
	others := s.othersLocked()
	s.hub.mu.Unlock()

	if !existed {
		return nil
	}
	for _, o := range others {
		o.notify(Change{Key: key})
	}
	return nil
}

func (s *MemoryStore) othersLocked() []*MemoryStore {
	out := make([]*MemoryStore, 0, len(s.hub.members))
	for m := range s.hub.members {
		if m != s {
			out = append(out, m)
		}
	}
	return out
}

func (s *MemoryStore) Watch(ctx context.Context) (<-chan Change, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrClosed
	}

	ch := make(chan Change, watchBuffer)
	s.watchers[ch] = struct{}{}

	go func() {
		<-ctx.Done()
		s.mu.Lock()
		defer s.mu.Unlock()
		if _, ok := s.watchers[ch]; ok {
			delete(s.watchers, ch)
			close(ch)
		}
	}()
	return ch, nil
}

func (s *MemoryStore) notify(c Change) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for ch := range s.watchers {
		select {
		case ch <- c:
		default:
			// slow watcher, drop
		}
	}
}

func (s *MemoryStore) Close() error {
	s.hub.mu.Lock()
	delete(s.hub.members, s)
	s.hub.mu.Unlock()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	for ch := range s.watchers {
		delete(s.watchers, ch)
		close(ch)
	}
	return nil
}
