package render

import (
	"image"
	"image/color"
	"testing"

	"github.com/rook-computer/pixeltoy/internal/assets"
	"github.com/rook-computer/pixeltoy/internal/state"
	"github.com/skip2/go-qrcode"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHUDStatusLine(t *testing.T) {
	settings := state.DefaultSettings()
	assert.Equal(t, "pixel 10  color  noise  running", HUDStatus{Settings: settings}.Line())

	settings.ColorMode = false
	settings.Source = state.SourceCamera
	settings.Running = false
	settings.SynthOn = true
	settings.NoiseOn = true
	settings.NoiseType = state.NoisePink
	assert.Equal(t, "pixel 10  gray  camera (waiting)  stopped  synth  pink noise",
		HUDStatus{Settings: settings, Camera: "waiting"}.Line())
}

func TestCompositorKeepsSurfaceClean(t *testing.T) {
	surface := NewSurface(400, 300)
	surface.Clear(color.RGBA{1, 2, 3, 255})
	c := &Compositor{HUD: NewHUD(assets.FontTTF, "http://10.0.0.2/")}

	frame := c.Compose(surface, HUDStatus{Settings: state.DefaultSettings()}, true)
	require.NotSame(t, surface.Image(), frame)

	img := surface.Image()
	for i := 0; i < len(img.Pix); i += 4 {
		require.Equal(t, []uint8{1, 2, 3, 255}, img.Pix[i:i+4])
	}

	changed := 0
	for i := range frame.Pix {
		if frame.Pix[i] != img.Pix[i] {
			changed++
		}
	}
	assert.Positive(t, changed, "hud must draw something")

	assert.Same(t, surface.Image(), c.Compose(surface, HUDStatus{}, false))
}

func TestHUDFallsBackToBasicFont(t *testing.T) {
	hud := NewHUD([]byte("not a font"), "")
	surface := NewSurface(200, 60)
	c := &Compositor{HUD: hud}
	frame := c.Compose(surface, HUDStatus{Settings: state.DefaultSettings()}, true)
	assert.NotNil(t, frame)
}

func TestPanelQRCode(t *testing.T) {
	_, err := panelQRCode("", image.Rect(0, 0, 64, 64))
	assert.Error(t, err)

	img, err := panelQRCode("http://pixeltoy.local/", image.Rect(10, 10, 74, 74))
	require.NoError(t, err)
	assert.Equal(t, 64, img.Bounds().Dx())
	assert.Equal(t, 64, img.Bounds().Dy())

	assert.Equal(t, qrcode.Low, qrRecoveryLevel(64))
	assert.Equal(t, qrcode.Medium, qrRecoveryLevel(160))
}

func TestHUDDrawsQRInCorner(t *testing.T) {
	surface := NewSurface(640, 480)
	surface.Clear(color.RGBA{0, 0, 255, 255})
	hud := NewHUD(assets.FontTTF, "http://10.0.0.2/")
	c := &Compositor{HUD: hud}

	frame := c.Compose(surface, HUDStatus{Settings: state.DefaultSettings()}, true)
	require.NotNil(t, hud.qr, "qr generated on first draw")
	size := hud.qrSize
	assert.Equal(t, (480-2*hudMargin)/hudQRFraction, size, "a quarter of the shorter inset side")

	// The code sits bottom-right inside the margin and is black and white.
	bw := 0
	for y := 480 - hudMargin - size; y < 480-hudMargin; y++ {
		for x := 640 - hudMargin - size; x < 640-hudMargin; x++ {
			p := frame.RGBAAt(x, y)
			if p.R == p.G && p.G == p.B {
				bw++
			}
		}
	}
	assert.Equal(t, size*size, bw)

	qr := hud.qr
	c.Compose(surface, HUDStatus{}, true)
	assert.Same(t, qr, hud.qr, "cached while the size is unchanged")
}
