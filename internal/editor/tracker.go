package editor

import (
	"fmt"
	"strings"

	"github.com/youruser/framecard/internal/surface"
)

// Source is the kind of device driving a gesture.
type Source string

const (
	SourcePointer Source = "pointer"
	SourceTouch   Source = "touch"
)

// ParseSource maps a client event type onto a gesture source.
func ParseSource(s string) (Source, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "pointer", "mouse", "pen":
		return SourcePointer, nil
	case "touch":
		return SourceTouch, nil
	}
	return "", fmt.Errorf("unknown gesture source %q", s)
}

// DragSession is the state of a gesture in progress.
type DragSession struct {
	Source Source
	Origin surface.Point
	Base   surface.Point
}

// DragTracker turns drag gestures on one surface into a persistent offset.
// It is Idle while session is nil and Dragging otherwise.
type DragTracker struct {
	surface surface.ID
	offset  surface.Point
	session *DragSession

	enabled func() bool
	changed func(surface.ID, surface.Point)
}

// NewDragTracker returns an idle tracker. Gestures are ignored while
// enabled reports false; changed is called after every offset update.
func NewDragTracker(id surface.ID, enabled func() bool, changed func(surface.ID, surface.Point)) *DragTracker {
	return &DragTracker{surface: id, enabled: enabled, changed: changed}
}

// Start begins a gesture at p. A Start while already dragging restarts from
// the current offset, which covers clients that lose the end event.
func (t *DragTracker) Start(src Source, p surface.Point) bool {
	if t.enabled != nil && !t.enabled() {
		return false
	}
	t.session = &DragSession{Source: src, Origin: p, Base: t.offset}
	return true
}

// Move follows the gesture to q. Moves from another source are ignored so
// that the mouse events browsers synthesize after a touch do not interfere.
func (t *DragTracker) Move(src Source, q surface.Point) bool {
	s := t.session
	if s == nil || s.Source != src {
		return false
	}
	t.offset = s.Base.Add(q.Sub(s.Origin))
	t.notify()
	return true
}

// End finishes the gesture, keeping the offset it reached.
func (t *DragTracker) End(src Source) bool {
	s := t.session
	if s == nil || s.Source != src {
		return false
	}
	t.session = nil
	t.notify()
	return true
}

// EndAt finishes the gesture at q, so a final position that raced ahead of
// the last Move is not lost.
func (t *DragTracker) EndAt(src Source, q surface.Point) bool {
	s := t.session
	if s == nil || s.Source != src {
		return false
	}
	t.offset = s.Base.Add(q.Sub(s.Origin))
	t.session = nil
	t.notify()
	return true
}

// Reset drops any gesture and returns the offset to the origin.
func (t *DragTracker) Reset() {
	t.session = nil
	t.offset = surface.Point{}
}

func (t *DragTracker) Offset() surface.Point { return t.offset }
func (t *DragTracker) Dragging() bool        { return t.session != nil }

func (t *DragTracker) notify() {
	if t.changed != nil {
		t.changed(t.surface, t.offset)
	}
}
