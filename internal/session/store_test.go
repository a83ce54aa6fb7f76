package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/youruser/framecard/internal/editor"
	imagepkg "github.com/youruser/framecard/internal/image"
)

func newTestStore(ttl time.Duration, limit int) *Store {
	frames := imagepkg.NewFrameSet(nil)
	return NewStore(func(ctx context.Context) *editor.Editor {
		return editor.New(ctx, editor.Options{Frames: frames})
	}, ttl, limit)
}

func TestStoreCreateGetDelete(t *testing.T) {
	s := newTestStore(time.Minute, 4)

	id, e, err := s.Create(context.Background())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if id == "" || e == nil {
		t.Fatal("expected an id and an editor")
	}
	got, err := s.Get(id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != e {
		t.Fatal("expected the same editor back")
	}

	s.Delete(id)
	if _, err := s.Get(id); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestStoreSessionsAreIsolated(t *testing.T) {
	s := newTestStore(time.Minute, 4)
	idA, a, _ := s.Create(context.Background())
	idB, b, _ := s.Create(context.Background())

	if idA == idB || a == b {
		t.Fatal("expected distinct sessions")
	}
	a.SetName("Nguyen")
	if b.State().Name != "" {
		t.Fatal("state leaked between sessions")
	}
}

func TestStoreRejectsWhenFull(t *testing.T) {
	s := newTestStore(time.Minute, 1)
	if _, _, err := s.Create(context.Background()); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, _, err := s.Create(context.Background()); !errors.Is(err, ErrFull) {
		t.Fatalf("expected ErrFull, got %v", err)
	}
}

func TestStoreSweepExpiresIdleSessions(t *testing.T) {
	s := newTestStore(10*time.Minute, 4)
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	idle, _, _ := s.Create(context.Background())
	busy, _, _ := s.Create(context.Background())

	now = now.Add(8 * time.Minute)
	if _, err := s.Get(busy); err != nil {
		t.Fatalf("get: %v", err)
	}
	now = now.Add(5 * time.Minute)

	if n := s.Sweep(); n != 1 {
		t.Fatalf("expected one expired session, got %d", n)
	}
	if _, err := s.Get(idle); !errors.Is(err, ErrNotFound) {
		t.Fatal("idle session should be gone")
	}
	if _, err := s.Get(busy); err != nil {
		t.Fatal("recently used session should survive")
	}
}

func TestStoreRunStopsWithContext(t *testing.T) {
	s := newTestStore(time.Minute, 1)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx, time.Millisecond)
		close(done)
	}()
	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
