package camera

import (
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"math"
	"sync"
	"time"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

var (
	// ErrDenied is returned when the camera cannot be opened.
	ErrDenied = errors.New("camera access denied")
	// ErrBusy is returned when a device is already open.
	ErrBusy = errors.New("camera already open")
	// ErrNotOpen is returned when frames are pushed before Open.
	ErrNotOpen = errors.New("camera not open")
	// ErrBadFrame is returned when a pushed frame cannot be decoded.
	ErrBadFrame = errors.New("undecodable camera frame")
)

// Device is a source of live frames. Open returns a channel that delivers
// frames until ctx is done, then closes.
type Device interface {
	Open(ctx context.Context) (<-chan image.Image, error)
}

// MaxFrameBytes bounds a pushed frame.
const MaxFrameBytes = 16 << 20

// PushDevice receives frames from outside, e.g. a phone posting camera
// snapshots to the web API.
type PushDevice struct {
	mu       sync.Mutex
	frames   chan image.Image
	disabled bool
}

func NewPushDevice() *PushDevice { return &PushDevice{} }

// Disable makes subsequent Open calls fail with ErrDenied.
func (d *PushDevice) Disable() {
	d.mu.Lock()
	d.disabled = true
	d.mu.Unlock()
}

func (d *PushDevice) Open(ctx context.Context) (<-chan image.Image, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.disabled {
		return nil, ErrDenied
	}
	if d.frames != nil {
		return nil, ErrBusy
	}
	frames := make(chan image.Image, 1)
	d.frames = frames
	go func() {
		<-ctx.Done()
		d.mu.Lock()
		close(frames)
		d.frames = nil
		d.mu.Unlock()
	}()
	return frames, nil
}

// Push delivers a frame. If the consumer is behind, the older pending
// frame is dropped.
func (d *PushDevice) Push(frame image.Image) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.frames == nil {
		return ErrNotOpen
	}
	for {
		select {
		case d.frames <- frame:
			return nil
		default:
		}
		select {
		case <-d.frames:
		default:
		}
	}
}

// PushEncoded decodes a PNG, JPEG, WebP or BMP image and pushes it.
func (d *PushDevice) PushEncoded(r io.Reader) error {
	frame, format, err := image.Decode(io.LimitReader(r, MaxFrameBytes))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBadFrame, err)
	}
	if err := d.Push(frame); err != nil {
		return fmt.Errorf("push %s frame: %w", format, err)
	}
	return nil
}

// SyntheticDevice produces a moving gradient, standing in for a webcam in
// the simulator.
type SyntheticDevice struct {
	Width, Height int
	Interval      time.Duration
	// Deny makes Open fail, simulating a refused permission prompt.
	Deny func() bool
}

func (d SyntheticDevice) Open(ctx context.Context) (<-chan image.Image, error) {
	if d.Deny != nil && d.Deny() {
		return nil, ErrDenied
	}
	width, height, interval := d.Width, d.Height, d.Interval
	if width <= 0 {
		width = 160
	}
	if height <= 0 {
		height = 120
	}
	if interval <= 0 {
		interval = time.Second / 15
	}

	frames := make(chan image.Image, 1)
	go func() {
		defer close(frames)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for step := 0; ; step++ {
			select {
			case <-ctx.Done():
				return
			case frames <- SyntheticFrame(width, height, step):
			}
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
		}
	}()
	return frames, nil
}

// SyntheticFrame renders frame number step of the simulator's gradient.
func SyntheticFrame(width, height, step int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	phase := float64(step) * 0.15
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			offset := img.PixOffset(x, y)
			fx := float64(x) / float64(width)
			fy := float64(y) / float64(height)
			img.Pix[offset+0] = uint8(127 + 127*math.Sin(2*math.Pi*fx+phase))
			img.Pix[offset+1] = uint8(127 + 127*math.Sin(2*math.Pi*fy+phase*0.7))
			img.Pix[offset+2] = uint8(127 + 127*math.Sin(2*math.Pi*(fx+fy)-phase))
			img.Pix[offset+3] = 0xFF
		}
	}
	return img
}
