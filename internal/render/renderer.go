package render

import (
	"image"

	"github.com/rook-computer/pixeltoy/internal/state"
)

// FrameSampler provides the camera frame scaled to the surface size.
// ok is false while no frame has arrived yet.
type FrameSampler interface {
	Sample(width, height int) (frame *image.RGBA, ok bool)
	Failed() bool
}

// Options configure a single pass.
type Options struct {
	PixelSize int
	ColorMode bool
	Source    state.SourceMode
}

func OptionsFromSettings(s state.Settings) Options {
	return Options{PixelSize: s.PixelSize, ColorMode: s.ColorMode, Source: s.Source}
}

type PassStats struct {
	Tiles  int
	Source state.SourceMode
}

// TileRenderer paints the surface in fixed-size tiles.
type TileRenderer struct {
	Surface *Surface
	Noise   TileSource
	Camera  FrameSampler
	Logger  Logger

	passes uint64
}

func NewTileRenderer(surface *Surface, noise TileSource, camera FrameSampler) *TileRenderer {
	if noise == nil {
		noise = NewNoiseSource()
	}
	return &TileRenderer{Surface: surface, Noise: noise, Camera: camera}
}

// Render performs one full pass over the surface.
func (r *TileRenderer) Render(opts Options) PassStats {
	source, fromCamera := r.sourceFor(opts.Source)
	if fromCamera {
		// Camera tiles may lag behind a resize; never show the previous pass.
		r.Surface.Clear(Fallback)
	}

	tiles := ForEachTile(r.Surface.Bounds(), opts.PixelSize, func(tile image.Rectangle) {
		c := source.ColorAt(tile.Min.X, tile.Min.Y)
		if !opts.ColorMode {
			c = Gray(c)
		}
		r.Surface.FillRect(tile, c)
	})

	r.passes++
	if r.Logger != nil && r.passes%300 == 0 {
		r.Logger.Infof("render", "pass %d, tiles=%d, source=%s", r.passes, tiles, opts.Source)
	}

	stats := PassStats{Tiles: tiles, Source: state.SourceNoise}
	if fromCamera {
		stats.Source = state.SourceCamera
	}
	return stats
}

// Passes reports how many passes ran since construction.
func (r *TileRenderer) Passes() uint64 { return r.passes }

// sourceFor picks the tile source for mode. Camera mode degrades to noise
// once acquisition has failed and to Fallback while no frame has arrived.
func (r *TileRenderer) sourceFor(mode state.SourceMode) (TileSource, bool) {
	if mode != state.SourceCamera || r.Camera == nil || r.Camera.Failed() {
		return r.Noise, false
	}
	width, height := r.Surface.Size()
	frame, ok := r.Camera.Sample(width, height)
	if !ok {
		return FrameSource{}, true
	}
	return FrameSource{Frame: frame}, true
}

// ForEachTile walks bounds column by column in steps of size starting at
// the top-left corner and calls fn with each tile clipped to bounds.
// A size below 1 is treated as 1. It returns the number of tiles visited.
func ForEachTile(bounds image.Rectangle, size int, fn func(tile image.Rectangle)) int {
	if size < 1 {
		size = 1
	}
	count := 0
	for x := bounds.Min.X; x < bounds.Max.X; x += size {
		for y := bounds.Min.Y; y < bounds.Max.Y; y += size {
			fn(image.Rect(x, y, x+size, y+size).Intersect(bounds))
			count++
		}
	}
	return count
}
