package render

import (
	"image"
	"image/color"
	"image/draw"
)

// Surface is the shared drawing surface. Both the tile renderer and the
// freehand overlay paint into it.
type Surface struct {
	img *image.RGBA
}

func NewSurface(width, height int) *Surface {
	surface := &Surface{}
	surface.Resize(width, height)
	return surface
}

// Resize reallocates the surface. Existing content is discarded.
// Non-positive dimensions are clamped to 1.
func (s *Surface) Resize(width, height int) {
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	if s.img != nil && s.img.Rect.Dx() == width && s.img.Rect.Dy() == height {
		return
	}
	s.img = image.NewRGBA(image.Rect(0, 0, width, height))
}

func (s *Surface) Size() (width int, height int) {
	return s.img.Rect.Dx(), s.img.Rect.Dy()
}

func (s *Surface) Bounds() image.Rectangle { return s.img.Rect }

// Image exposes the backing pixels. Callers must not retain it across a Resize.
func (s *Surface) Image() *image.RGBA { return s.img }

func (s *Surface) Clear(c color.RGBA) {
	draw.Draw(s.img, s.img.Rect, &image.Uniform{C: c}, image.Point{}, draw.Src)
}

// FillRect paints an opaque rectangle clipped to the surface.
func (s *Surface) FillRect(rect image.Rectangle, c color.RGBA) {
	rect = rect.Intersect(s.img.Rect)
	if rect.Empty() {
		return
	}
	// Inline fill; draw.Draw with a Uniform is noticeably slower for the
	// thousands of small rects a pass paints.
	c.A = 0xFF
	rowLen := rect.Dx() * 4
	first := s.img.PixOffset(rect.Min.X, rect.Min.Y)
	row := s.img.Pix[first : first+rowLen]
	for i := 0; i < rowLen; i += 4 {
		row[i], row[i+1], row[i+2], row[i+3] = c.R, c.G, c.B, c.A
	}
	for y := rect.Min.Y + 1; y < rect.Max.Y; y++ {
		offset := s.img.PixOffset(rect.Min.X, y)
		copy(s.img.Pix[offset:offset+rowLen], row)
	}
}
