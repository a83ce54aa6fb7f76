package editor

import (
	"bytes"
	"image"
	"log"

	imagepkg "github.com/youruser/framecard/internal/image"
	"github.com/youruser/framecard/internal/surface"
)

// DecodeFunc turns uploaded bytes into a bitmap.
type DecodeFunc func([]byte) (image.Image, error)

// Dispatcher runs fn on the owner's event loop.
type Dispatcher func(fn func())

// PhotoCache holds the decoded user photo as one handle per surface.
//
// Decoding happens off the event loop; its result is handed back through
// the dispatcher and applied only if no newer photo was set in between.
// Apart from the background decode, every method must be called from the
// owner's event loop.
type PhotoCache struct {
	decode   DecodeFunc
	dispatch Dispatcher
	onReady  func(generation uint64)

	generation uint64 // bumped on every Set
	installed  uint64 // generation of the handles in photos
	photos     map[surface.ID]*imagepkg.Photo

	ready   chan struct{}
	settled bool
	err     error
}

// NewPhotoCache returns an empty cache. onReady runs on the dispatcher after
// a decode has been installed.
func NewPhotoCache(decode DecodeFunc, dispatch Dispatcher, onReady func(uint64)) *PhotoCache {
	if decode == nil {
		decode = imagepkg.DecodePhoto
	}
	c := &PhotoCache{
		decode:   decode,
		dispatch: dispatch,
		onReady:  onReady,
		ready:    make(chan struct{}),
	}
	c.settle()
	return c
}

// Set starts decoding data as the new user photo and returns its
// generation. The current handles stay in place until the decode succeeds.
func (c *PhotoCache) Set(data []byte) uint64 {
	c.settle()
	c.generation++
	gen := c.generation
	c.ready = make(chan struct{})
	c.settled = false
	c.err = nil

	data = bytes.Clone(data)
	go func() {
		img, err := c.decode(data)
		c.dispatch(func() { c.complete(gen, img, err) })
	}()
	return gen
}

func (c *PhotoCache) complete(gen uint64, img image.Image, err error) {
	if gen != c.generation {
		log.Printf("[cache] dropping stale decode %d (current %d)", gen, c.generation)
		return
	}
	if err != nil {
		log.Printf("[cache] decode %d failed, keeping generation %d: %v", gen, c.installed, err)
		c.err = err
		c.settle()
		return
	}

	photos := make(map[surface.ID]*imagepkg.Photo, len(surface.All))
	for _, id := range surface.All {
		photos[id] = imagepkg.NewPhoto(img)
	}
	c.photos = photos
	c.installed = gen
	c.settle()

	if c.onReady != nil {
		c.onReady(gen)
	}
}

func (c *PhotoCache) settle() {
	if !c.settled {
		close(c.ready)
		c.settled = true
	}
}

// Photo returns the handle for a surface, or nil when no photo is loaded.
func (c *PhotoCache) Photo(id surface.ID) *imagepkg.Photo {
	return c.photos[id]
}

// Loaded reports whether a decoded photo is installed.
func (c *PhotoCache) Loaded() bool {
	return c.photos != nil
}

// Generation is the tag of the most recent Set.
func (c *PhotoCache) Generation() uint64 { return c.generation }

// Installed is the tag of the photo currently drawn.
func (c *PhotoCache) Installed() uint64 { return c.installed }

// Ready is closed once the latest Set has been installed, has failed, or
// has been superseded.
func (c *PhotoCache) Ready() <-chan struct{} { return c.ready }

// Pending reports whether the latest Set is still decoding.
func (c *PhotoCache) Pending() bool { return !c.settled }

// Err is the decode error of the latest Set, if any.
func (c *PhotoCache) Err() error { return c.err }
