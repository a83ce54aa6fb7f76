package session

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/youruser/framecard/internal/editor"
)

var (
	ErrNotFound = errors.New("session not found")
	ErrFull     = errors.New("too many sessions")
)

// Factory builds the editor for a new session.
type Factory func(ctx context.Context) *editor.Editor

type entry struct {
	editor   *editor.Editor
	lastSeen time.Time
}

// Store keeps editors in memory, keyed by a random id, and forgets them
// after ttl without use.
type Store struct {
	mu      sync.Mutex
	entries map[string]*entry

	factory Factory
	ttl     time.Duration
	max     int
	now     func() time.Time
}

// NewStore returns an empty store holding at most limit sessions.
func NewStore(factory Factory, ttl time.Duration, limit int) *Store {
	return &Store{
		entries: map[string]*entry{},
		factory: factory,
		ttl:     ttl,
		max:     limit,
		now:     time.Now,
	}
}

// Create starts a new session.
func (s *Store) Create(ctx context.Context) (string, *editor.Editor, error) {
	s.mu.Lock()
	full := len(s.entries) >= s.max
	s.mu.Unlock()
	if full {
		return "", nil, ErrFull
	}

	// Building the editor renders both surfaces, so keep it off the lock.
	e := s.factory(ctx)
	id := uuid.NewString()

	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.entries) >= s.max {
		return "", nil, ErrFull
	}
	s.entries[id] = &entry{editor: e, lastSeen: s.now()}
	return id, e, nil
}

// Get returns the editor for id and marks the session as used.
func (s *Store) Get(id string) (*editor.Editor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ent, ok := s.entries[id]
	if !ok {
		return nil, ErrNotFound
	}
	ent.lastSeen = s.now()
	return ent.editor, nil
}

// Delete drops a session. Deleting an unknown id is not an error.
func (s *Store) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, id)
}

// Len is the number of live sessions.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Sweep removes sessions idle for longer than the ttl and returns how many
// were removed.
func (s *Store) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	cutoff := s.now().Add(-s.ttl)
	n := 0
	for id, ent := range s.entries {
		if ent.lastSeen.Before(cutoff) {
			delete(s.entries, id)
			n++
		}
	}
	return n
}

// Run sweeps every interval until ctx is done.
func (s *Store) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.Sweep(); n > 0 {
				log.Printf("[session] expired %d idle sessions, %d live", n, s.Len())
			}
		}
	}
}
