package render

import (
	"image"
	"image/color"
	"math"
	"math/rand/v2"
)

// TileSource answers the color of the tile whose top-left corner is (x, y).
type TileSource interface {
	ColorAt(x, y int) color.RGBA
}

// NoiseSource returns independent uniform random channels for every query.
type NoiseSource struct {
	rng *rand.Rand
}

func NewNoiseSource() *NoiseSource {
	return &NoiseSource{rng: rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))}
}

// NewSeededNoiseSource returns a reproducible noise source.
func NewSeededNoiseSource(seed uint64) *NoiseSource {
	return &NoiseSource{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

func (n *NoiseSource) ColorAt(x, y int) color.RGBA {
	return color.RGBA{
		R: uint8(n.rng.IntN(256)),
		G: uint8(n.rng.IntN(256)),
		B: uint8(n.rng.IntN(256)),
		A: 0xFF,
	}
}

// Hue returns a random value in [0, 360) for brush colors.
func (n *NoiseSource) Hue() float64 { return n.rng.Float64() * 360 }

// FrameSource samples the top-left pixel of each tile from a surface-sized
// frame buffer. A nil buffer yields Fallback for every tile.
type FrameSource struct {
	Frame *image.RGBA
}

func (f FrameSource) ColorAt(x, y int) color.RGBA {
	if f.Frame == nil || !(image.Point{X: x, Y: y}).In(f.Frame.Rect) {
		return Fallback
	}
	c := f.Frame.RGBAAt(x, y)
	c.A = 0xFF
	return c
}

// Gray replaces each channel with the luminance 0.299r + 0.587g + 0.114b.
// Applying it twice gives the same result as applying it once.
func Gray(c color.RGBA) color.RGBA {
	y := 0.299*float64(c.R) + 0.587*float64(c.G) + 0.114*float64(c.B)
	v := uint8(math.Min(255, math.Round(y)))
	return color.RGBA{R: v, G: v, B: v, A: c.A}
}
