package editor

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	imagepkg "github.com/youruser/framecard/internal/image"
	"github.com/youruser/framecard/internal/surface"
	"golang.org/x/image/font/opentype"
)

var (
	ErrUnknownSurface = errors.New("unknown surface")
	ErrZoomRange      = errors.New("zoom out of range")
)

const (
	MaxZoom       = 100
	MaxNameRunes  = 64
	frameLoadWait = 15 * time.Second
)

// Options configures an Editor. Zero values pick the defaults.
type Options struct {
	Frames *imagepkg.FrameSet
	Font   *opentype.Font
	Locale string
	Now    func() time.Time
	Decode DecodeFunc
}

// Composite is a rendered surface. It is replaced, never modified.
type Composite struct {
	Surface         surface.ID
	PNG             []byte
	Version         uint64
	PhotoGeneration uint64
	HasPhoto        bool

	hours string
}

// State is a snapshot of the editor inputs.
type State struct {
	Name            string
	JoinDate        *Date
	HoursLabel      string
	Zoom            int
	PhotoGeneration uint64
	PhotoInstalled  uint64
	PhotoPending    bool
	Offsets         map[surface.ID]surface.Point
}

// Editor owns one visitor's photo, offsets and text, and keeps a current
// composite for every surface. All mutation happens under mu; the photo
// decode completion is dispatched onto the same lock. Every mutating
// operation calls recomposite for the surfaces it affects.
type Editor struct {
	mu sync.Mutex

	now      func() time.Time
	font     *opentype.Font
	labeler  *HoursLabeler
	frames   map[surface.ID]image.Image
	cache    *PhotoCache
	trackers map[surface.ID]*DragTracker

	name     string
	joinDate *Date
	zoom     int

	composites map[surface.ID]Composite
	renders    uint64
}

// New builds an editor, loads the frames and renders the frame-only
// composites.
func New(ctx context.Context, opts Options) *Editor {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Frames == nil {
		opts.Frames = imagepkg.NewFrameSet(nil)
	}

	e := &Editor{
		now:        opts.Now,
		font:       opts.Font,
		labeler:    NewHoursLabeler(opts.Locale),
		frames:     map[surface.ID]image.Image{},
		trackers:   map[surface.ID]*DragTracker{},
		composites: map[surface.ID]Composite{},
	}
	e.cache = NewPhotoCache(opts.Decode, e.dispatch, e.photoReady)

	ctx, cancel := context.WithTimeout(ctx, frameLoadWait)
	defer cancel()
	for _, id := range surface.All {
		e.trackers[id] = NewDragTracker(id, e.cache.Loaded, e.offsetChanged)
		frame, err := opts.Frames.Ensure(ctx, id)
		if err != nil {
			log.Printf("[editor] %s: drawing without frame: %v", id, err)
			continue
		}
		e.frames[id] = frame
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	for _, id := range surface.All {
		e.recomposite(id)
	}
	return e
}

func (e *Editor) dispatch(fn func()) {
	e.mu.Lock()
	defer e.mu.Unlock()
	fn()
}

// photoReady runs under mu once a new photo is installed. It reads the
// live state, not a snapshot taken at upload time.
func (e *Editor) photoReady(uint64) {
	for _, id := range surface.All {
		e.trackers[id].Reset()
	}
	for _, id := range surface.All {
		e.recomposite(id)
	}
}

// offsetChanged runs under mu from the tracker.
func (e *Editor) offsetChanged(id surface.ID, _ surface.Point) {
	e.recomposite(id)
}

func (e *Editor) hoursLabel() string {
	return e.labeler.Label(e.now(), e.joinDate)
}

func (e *Editor) recomposite(id surface.ID) {
	spec := surface.MustLookup(id)
	photo := e.cache.Photo(id)
	l := imagepkg.Layers{
		Spec:   spec,
		Photo:  photo,
		Offset: e.trackers[id].Offset(),
		Zoom:   float64(e.zoom) / 100,
		Frame:  e.frames[id],
		Font:   e.font,
	}
	if spec.Name != nil {
		l.Name = e.name
	}
	if spec.Hours != nil {
		l.Hours = e.hoursLabel()
	}

	png, err := imagepkg.Composite(l)
	if err != nil {
		log.Printf("[editor] %s: keeping previous composite: %v", id, err)
		return
	}
	e.renders++
	e.composites[id] = Composite{
		Surface:         id,
		PNG:             png,
		Version:         e.renders,
		PhotoGeneration: e.cache.Installed(),
		HasPhoto:        photo != nil,
		hours:           l.Hours,
	}
}

func (e *Editor) tracker(id surface.ID) (*DragTracker, error) {
	t, ok := e.trackers[id]
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownSurface, id)
	}
	return t, nil
}

// UploadPhoto starts decoding a new photo and returns its generation.
// Callers validate type and size first.
func (e *Editor) UploadPhoto(data []byte) uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cache.Set(data)
}

// WaitPhoto blocks until the latest upload settles and returns its decode
// error, if any.
func (e *Editor) WaitPhoto(ctx context.Context) error {
	e.mu.Lock()
	ready := e.cache.Ready()
	e.mu.Unlock()

	select {
	case <-ready:
	case <-ctx.Done():
		return ctx.Err()
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cache.Err()
}

// StartDrag begins a gesture on a surface. It reports false when there is
// no photo to move.
func (e *Editor) StartDrag(id surface.ID, src Source, p surface.Point) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	t, err := e.tracker(id)
	if err != nil {
		return false, err
	}
	return t.Start(src, p), nil
}

// MoveDrag follows a gesture and redraws the surface.
func (e *Editor) MoveDrag(id surface.ID, src Source, p surface.Point) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	t, err := e.tracker(id)
	if err != nil {
		return false, err
	}
	return t.Move(src, p), nil
}

// EndDrag finishes a gesture and redraws the surface. A non-nil at is the
// final pointer position and is applied before the offset is committed.
func (e *Editor) EndDrag(id surface.ID, src Source, at *surface.Point) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	t, err := e.tracker(id)
	if err != nil {
		return false, err
	}
	if at != nil {
		return t.EndAt(src, *at), nil
	}
	return t.End(src), nil
}

// Offset returns the stored offset of a surface.
func (e *Editor) Offset(id surface.ID) (surface.Point, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	t, err := e.tracker(id)
	if err != nil {
		return surface.Point{}, err
	}
	return t.Offset(), nil
}

// SetName sets the card name. Whitespace is trimmed and long names cut.
func (e *Editor) SetName(name string) string {
	name = strings.TrimSpace(name)
	if utf8.RuneCountInString(name) > MaxNameRunes {
		name = string([]rune(name)[:MaxNameRunes])
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.name = name
	e.recomposite(surface.Card)
	return name
}

// SetJoinDate sets or, with nil, clears the join date.
func (e *Editor) SetJoinDate(d *Date) {
	if d != nil {
		c := *d
		d = &c
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.joinDate = d
	e.recomposite(surface.Card)
}

// SetZoom sets the extra scale, 0..MaxZoom percent, on both surfaces.
func (e *Editor) SetZoom(zoom int) error {
	if zoom < 0 || zoom > MaxZoom {
		return fmt.Errorf("%w: %d not in 0..%d", ErrZoomRange, zoom, MaxZoom)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.zoom == zoom {
		return nil
	}
	e.zoom = zoom
	for _, id := range surface.All {
		e.recomposite(id)
	}
	return nil
}

// Composite returns the current composite of a surface. A card whose hours
// label went stale because the day changed is redrawn first.
func (e *Editor) Composite(id surface.ID) (Composite, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, err := e.tracker(id); err != nil {
		return Composite{}, err
	}
	if surface.MustLookup(id).Hours != nil && e.composites[id].hours != e.hoursLabel() {
		e.recomposite(id)
	}
	c, ok := e.composites[id]
	if !ok {
		return Composite{}, fmt.Errorf("%s: no composite rendered", id)
	}
	return c, nil
}

// State returns a snapshot of the inputs.
func (e *Editor) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()

	offsets := make(map[surface.ID]surface.Point, len(e.trackers))
	for id, t := range e.trackers {
		offsets[id] = t.Offset()
	}
	var join *Date
	if e.joinDate != nil {
		d := *e.joinDate
		join = &d
	}
	return State{
		Name:            e.name,
		JoinDate:        join,
		HoursLabel:      e.hoursLabel(),
		Zoom:            e.zoom,
		PhotoGeneration: e.cache.Generation(),
		PhotoInstalled:  e.cache.Installed(),
		PhotoPending:    e.cache.Pending(),
		Offsets:         offsets,
	}
}
