// Package overlay implements freehand drawing on top of the tile surface.
package overlay

import (
	"image/color"

	"github.com/fogleman/gg"
	colorful "github.com/lucasb-eyer/go-colorful"
	"github.com/rook-computer/pixeltoy/internal/render"
)

type Point struct{ X, Y float64 }

// Painter draws one stroke segment.
type Painter interface {
	Segment(from, to Point, width float64, c color.RGBA)
}

// Overlay tracks a single stroke. Each drag paints a round-capped segment
// from the previous point in a fresh random hue. Not safe for concurrent use.
type Overlay struct {
	Painter Painter
	// Hue returns a hue in degrees for the next segment.
	Hue func() float64

	// Width of new segments in pixels.
	Width float64
	// ColorMode false paints segments in gray.
	ColorMode bool

	anchor   Point
	drawing  bool
	segments int
}

func New(painter Painter, hue func() float64) *Overlay {
	if hue == nil {
		hue = render.NewNoiseSource().Hue
	}
	return &Overlay{Painter: painter, Hue: hue, Width: 10, ColorMode: true}
}

func (o *Overlay) Drawing() bool { return o.drawing }

// Segments reports how many segments were painted.
func (o *Overlay) Segments() int { return o.segments }

// PressStart anchors a new stroke at (x, y).
func (o *Overlay) PressStart(x, y float64) {
	o.anchor = Point{X: x, Y: y}
	o.drawing = true
}

// DragTo paints from the anchor to (x, y) and moves the anchor. Without a
// preceding PressStart it does nothing and returns false.
func (o *Overlay) DragTo(x, y float64) bool {
	if !o.drawing {
		return false
	}
	to := Point{X: x, Y: y}
	c := o.segmentColor()
	width := o.Width
	if width < 1 {
		width = 1
	}
	if o.Painter != nil {
		o.Painter.Segment(o.anchor, to, width, c)
	}
	o.anchor = to
	o.segments++
	return true
}

// PressEnd finishes the stroke. Also used when the pointer leaves the surface.
func (o *Overlay) PressEnd() {
	o.drawing = false
}

func (o *Overlay) segmentColor() color.RGBA {
	r, g, b := colorful.Hsv(o.Hue(), 1, 1).Clamped().RGB255()
	c := color.RGBA{R: r, G: g, B: b, A: 0xFF}
	if !o.ColorMode {
		c = render.Gray(c)
	}
	return c
}

// GGPainter strokes segments onto a surface with round caps.
type GGPainter struct {
	Surface *render.Surface
}

func (p GGPainter) Segment(from, to Point, width float64, c color.RGBA) {
	if p.Surface == nil {
		return
	}
	// The surface may have been reallocated by a resize, so the context
	// is built per segment.
	dc := gg.NewContextForRGBA(p.Surface.Image())
	dc.SetColor(c)
	dc.SetLineWidth(width)
	dc.SetLineCapRound()
	dc.DrawLine(from.X, from.Y, to.X, to.Y)
	dc.Stroke()
}
