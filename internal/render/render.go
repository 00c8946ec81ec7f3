package render

import (
	"bytes"
	"image"
	"image/draw"
	"image/png"
	"sync"
)

// Presenter shows a finished frame on some output.
type Presenter interface {
	Present(frame *image.RGBA) error
	Close() error
}

// NoopPresenter discards frames.
type NoopPresenter struct{}

func (NoopPresenter) Present(frame *image.RGBA) error { return nil }
func (NoopPresenter) Close() error                    { return nil }

// SnapshotPresenter keeps a copy of the last presented frame so it can be
// fetched from another goroutine.
type SnapshotPresenter struct {
	mu     sync.RWMutex
	last   *image.RGBA
	frames uint64
}

func NewSnapshotPresenter() *SnapshotPresenter { return &SnapshotPresenter{} }

func (p *SnapshotPresenter) Present(frame *image.RGBA) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.last == nil || p.last.Rect != frame.Rect {
		p.last = image.NewRGBA(frame.Rect)
	}
	copy(p.last.Pix, frame.Pix)
	p.frames++
	return nil
}

func (p *SnapshotPresenter) Close() error { return nil }

// Frames reports how many frames were presented.
func (p *SnapshotPresenter) Frames() uint64 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.frames
}

// Snapshot returns a copy of the last frame, or nil before the first one.
func (p *SnapshotPresenter) Snapshot() *image.RGBA {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.last == nil {
		return nil
	}
	out := image.NewRGBA(p.last.Rect)
	copy(out.Pix, p.last.Pix)
	return out
}

// PNG encodes the last frame. ok is false before the first frame.
func (p *SnapshotPresenter) PNG() (data []byte, ok bool, err error) {
	frame := p.Snapshot()
	if frame == nil {
		return nil, false, nil
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, frame); err != nil {
		return nil, true, err
	}
	return buf.Bytes(), true, nil
}

// Compositor copies the surface into a scratch frame and draws the HUD on
// top of it, so the HUD never lands on the shared surface.
type Compositor struct {
	HUD   *HUD
	frame *image.RGBA
}

// Compose returns the frame to hand to a Presenter. The returned image is
// reused by the next call.
func (c *Compositor) Compose(surface *Surface, status HUDStatus, showHUD bool) *image.RGBA {
	src := surface.Image()
	if !showHUD || c.HUD == nil {
		return src
	}
	if c.frame == nil || c.frame.Rect != src.Rect {
		c.frame = image.NewRGBA(src.Rect)
	}
	draw.Draw(c.frame, c.frame.Rect, src, src.Rect.Min, draw.Src)
	c.HUD.Draw(c.frame, status)
	return c.frame
}
