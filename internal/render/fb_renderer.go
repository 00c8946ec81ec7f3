package render

import (
	"image"
	"image/color"

	fb "github.com/gonutz/framebuffer"
)

// FBPresenter blits frames to the Linux framebuffer.
type FBPresenter struct {
	fbDev *fb.Device
}

// OpenFBPresenter opens the framebuffer device, usually /dev/fb0.
func OpenFBPresenter(path string) (*FBPresenter, error) {
	dev, err := fb.Open(path)
	if err != nil {
		return nil, err
	}
	return &FBPresenter{fbDev: dev}, nil
}

// Size returns the framebuffer resolution, which is also the natural
// surface size on the device.
func (p *FBPresenter) Size() (width int, height int) {
	if p.fbDev == nil {
		return CanvasWidth, CanvasHeight
	}
	bounds := p.fbDev.Bounds()
	return bounds.Dx(), bounds.Dy()
}

func (p *FBPresenter) Present(frame *image.RGBA) error {
	return blitToFB(p.fbDev, frame)
}

func (p *FBPresenter) Close() error {
	if p.fbDev == nil {
		return nil
	}
	p.fbDev.Close()
	p.fbDev = nil
	return nil
}

// Helper: blit canvas to framebuffer via nearest-neighbor scaling.
func blitToFB(dev *fb.Device, canvas *image.RGBA) error {
	if dev == nil {
		return nil
	}
	bounds := dev.Bounds()
	fbWidth := bounds.Dx()
	fbHeight := bounds.Dy()
	canvasWidth := canvas.Rect.Dx()
	canvasHeight := canvas.Rect.Dy()
	for y := 0; y < fbHeight; y++ {
		sy := canvas.Rect.Min.Y + (y*canvasHeight)/fbHeight
		for x := 0; x < fbWidth; x++ {
			sx := canvas.Rect.Min.X + (x*canvasWidth)/fbWidth
			pixel := canvas.RGBAAt(sx, sy)
			dev.Set(bounds.Min.X+x, bounds.Min.Y+y, color.RGBA{R: pixel.R, G: pixel.G, B: pixel.B, A: 0xFF})
		}
	}
	return nil
}
