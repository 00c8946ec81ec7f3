package camera

import (
	"image"
	"sync"

	xdraw "golang.org/x/image/draw"
)

// Status of the camera as shown to users.
const (
	StatusOff         = ""
	StatusWaiting     = "waiting"
	StatusLive        = "live"
	StatusUnavailable = "unavailable"
)

// Feed holds the most recent camera frame. Update may be called from any
// goroutine; Sample returns a surface-sized copy for one render pass.
type Feed struct {
	mu      sync.RWMutex
	latest  image.Image
	seq     uint64
	err     error
	started bool

	// Scaled buffer cache, only touched by Sample.
	sampleMu   sync.Mutex
	scaled     *image.RGBA
	scaledSeq  uint64
	scaledSize image.Point
}

func NewFeed() *Feed { return &Feed{} }

// MarkRequested records that acquisition was requested.
func (f *Feed) MarkRequested() {
	f.mu.Lock()
	f.started = true
	f.err = nil
	f.mu.Unlock()
}

// Update replaces the current frame.
func (f *Feed) Update(frame image.Image) {
	if frame == nil {
		return
	}
	f.mu.Lock()
	f.latest = frame
	f.seq++
	f.mu.Unlock()
}

// SetFailed records an acquisition failure. A nil error clears it.
func (f *Feed) SetFailed(err error) {
	f.mu.Lock()
	f.err = err
	f.mu.Unlock()
}

func (f *Feed) Failed() bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.err != nil
}

func (f *Feed) Err() error {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.err
}

// Frames reports how many frames arrived so far.
func (f *Feed) Frames() uint64 {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.seq
}

func (f *Feed) Status() string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	switch {
	case f.err != nil:
		return StatusUnavailable
	case f.seq > 0:
		return StatusLive
	case f.started:
		return StatusWaiting
	default:
		return StatusOff
	}
}

// Sample scales the latest frame to width x height. ok is false until the
// first frame arrives. The returned image is reused until the next frame or
// size change and must be treated as read-only.
func (f *Feed) Sample(width, height int) (*image.RGBA, bool) {
	f.mu.RLock()
	latest, seq := f.latest, f.seq
	f.mu.RUnlock()
	if latest == nil || width <= 0 || height <= 0 {
		return nil, false
	}

	f.sampleMu.Lock()
	defer f.sampleMu.Unlock()
	size := image.Pt(width, height)
	if f.scaled != nil && f.scaledSeq == seq && f.scaledSize == size {
		return f.scaled, true
	}
	if f.scaled == nil || f.scaledSize != size {
		f.scaled = image.NewRGBA(image.Rectangle{Max: size})
	}
	xdraw.ApproxBiLinear.Scale(f.scaled, f.scaled.Rect, latest, latest.Bounds(), xdraw.Src, nil)
	f.scaledSeq, f.scaledSize = seq, size
	return f.scaled, true
}
