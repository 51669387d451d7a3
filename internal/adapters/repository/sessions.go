// Package repository keeps per-browser session state in memory.
package repository

import (
	"container/list"
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/okian/segview/pkg/metrics"
)

type entry[T any] struct {
	id    string
	value T
}

// SessionStore maps session ids to values created on demand. It is bounded
// and evicts in creation order.
type SessionStore[T any] struct {
	mu      sync.Mutex
	items   map[string]*list.Element
	order   *list.List // front is the oldest session
	create  func() T
	cfg     storeConfig
	evicted int64
}

// NewSessionStore constructs a store that builds new values with create.
func NewSessionStore[T any](create func() T, opts ...Option) *SessionStore[T] {
	cfg := storeConfig{
		capacity: DefaultCapacity,
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &SessionStore[T]{
		items:  make(map[string]*list.Element),
		order:  list.New(),
		create: create,
		cfg:    cfg,
	}
}

// GetOrCreate returns the session for id, creating a fresh one under a new
// id when id is empty or unknown. The returned id is the one to hand back to
// the client.
func (s *SessionStore[T]) GetOrCreate(_ context.Context, id string) (string, T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id != "" {
		if el, ok := s.items[id]; ok {
			return id, el.Value.(*entry[T]).value, false
		}
	}

	for len(s.items) >= s.cfg.capacity {
		s.evictOldest()
	}

	newID := s.cfg.newID()
	e := &entry[T]{id: newID, value: s.create()}
	s.items[newID] = s.order.PushBack(e)
	metrics.UpdateActiveSessions(len(s.items))
	return newID, e.value, true
}

// Delete removes a session.
func (s *SessionStore[T]) Delete(_ context.Context, id string) error {
	if id == "" {
		return ErrInvalidID
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	el, ok := s.items[id]
	if !ok {
		return ErrNotFound
	}
	s.order.Remove(el)
	delete(s.items, id)
	metrics.UpdateActiveSessions(len(s.items))
	return nil
}

// Len returns the number of live sessions.
func (s *SessionStore[T]) Len(_ context.Context) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// Evicted returns how many sessions were dropped to respect the capacity.
func (s *SessionStore[T]) Evicted() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.evicted
}

// Range calls fn for each session, oldest first, until fn returns false.
// fn must not call back into the store.
func (s *SessionStore[T]) Range(_ context.Context, fn func(id string, v T) bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for el := s.order.Front(); el != nil; el = el.Next() {
		e := el.Value.(*entry[T])
		if !fn(e.id, e.value) {
			return
		}
	}
}

// evictOldest must be called with mu held.
func (s *SessionStore[T]) evictOldest() {
	el := s.order.Front()
	if el == nil {
		return
	}
	s.order.Remove(el)
	delete(s.items, el.Value.(*entry[T]).id)
	s.evicted++
	metrics.RecordSessionEvicted()
}
