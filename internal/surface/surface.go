package surface

import (
	"fmt"
	"math"
	"strings"
)

// ID names one of the two output targets.
type ID string

const (
	Avatar ID = "avatar"
	Card   ID = "card"
)

// All lists the surfaces in render order.
var All = []ID{Avatar, Card}

// Tuning constants. They were fitted by eye against the frame artwork and
// have no derivation beyond that.
const (
	AvatarWidth        = 1080
	AvatarHeight       = 1080
	AvatarSlack        = 0.15
	AvatarSensitivity  = 2.0
	AvatarCornerRadius = 58

	CardWidth        = 1080
	CardHeight       = 1944
	CardSlack        = 0.25
	CardSensitivity  = 2.0
	CardCornerRadius = 35

	CardNameX        = 540
	CardNameY        = 1102
	CardNameFontSize = 69

	CardHoursX        = 540
	CardHoursY        = 1274
	CardHoursFontSize = 86

	AvatarFilename = "hexa-20years-avatar.png"
	CardFilename   = "hexa-20years-card.png"
)

// Point is a 2D coordinate or displacement in pixels.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func (p Point) Add(q Point) Point { return Point{X: p.X + q.X, Y: p.Y + q.Y} }
func (p Point) Sub(q Point) Point { return Point{X: p.X - q.X, Y: p.Y - q.Y} }

// TextAnchor is where a centered line of text is drawn.
type TextAnchor struct {
	At       Point
	FontSize float64
}

// Spec holds the fixed geometry of a surface.
type Spec struct {
	ID           ID
	Width        int
	Height       int
	Slack        float64
	Sensitivity  float64
	CornerRadius int
	Filename     string

	// Text anchors are only set on surfaces that carry text.
	Name  *TextAnchor
	Hours *TextAnchor
}

var specs = map[ID]Spec{
	Avatar: {
		ID:           Avatar,
		Width:        AvatarWidth,
		Height:       AvatarHeight,
		Slack:        AvatarSlack,
		Sensitivity:  AvatarSensitivity,
		CornerRadius: AvatarCornerRadius,
		Filename:     AvatarFilename,
	},
	Card: {
		ID:           Card,
		Width:        CardWidth,
		Height:       CardHeight,
		Slack:        CardSlack,
		Sensitivity:  CardSensitivity,
		CornerRadius: CardCornerRadius,
		Filename:     CardFilename,
		Name:         &TextAnchor{At: Point{X: CardNameX, Y: CardNameY}, FontSize: CardNameFontSize},
		Hours:        &TextAnchor{At: Point{X: CardHoursX, Y: CardHoursY}, FontSize: CardHoursFontSize},
	},
}

// Lookup returns the spec for id.
func Lookup(id ID) (Spec, bool) {
	s, ok := specs[id]
	return s, ok
}

// MustLookup is Lookup for ids known at compile time.
func MustLookup(id ID) Spec {
	s, ok := specs[id]
	if !ok {
		panic(fmt.Sprintf("surface: unknown id %q", id))
	}
	return s
}

// Parse maps a path or flag value onto a surface id.
func Parse(s string) (ID, error) {
	id := ID(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := specs[id]; !ok {
		return "", fmt.Errorf("unknown surface %q", s)
	}
	return id, nil
}

// Placement is where a photo lands on a surface.
type Placement struct {
	Scale  float64
	X, Y   int
	Width  int
	Height int
}

// Place computes the uniform scale and top-left corner for a src image of
// srcW x srcH pixels dragged by offset. zoom is an extra additive scale.
func (s Spec) Place(srcW, srcH int, offset Point, zoom float64) Placement {
	if srcW <= 0 || srcH <= 0 {
		return Placement{}
	}
	w, h := float64(s.Width), float64(s.Height)
	sw, sh := float64(srcW), float64(srcH)

	scale := math.Min(w/sw, h/sh) + s.Slack + zoom
	dw, dh := sw*scale, sh*scale
	x := (w-dw)/2 + offset.X*s.Sensitivity
	y := (h-dh)/2 + offset.Y*s.Sensitivity

	return Placement{
		Scale:  scale,
		X:      int(math.Round(x)),
		Y:      int(math.Round(y)),
		Width:  max(1, int(math.Round(dw))),
		Height: max(1, int(math.Round(dh))),
	}
}
