package render

import "image/color"

// Global render configuration for colors and the default logical canvas.
var (
	// Fallback is painted by camera tiles while no frame is available,
	// and used to clear the surface before camera passes.
	Fallback = color.RGBA{R: 0x00, G: 0x00, B: 0x00, A: 0xFF}

	// HUD colors.
	HUDForeground = color.RGBA{R: 0xFF, G: 0xDC, B: 0x00, A: 0xFF} // #ffdc00
	HUDBackground = color.RGBA{R: 0x00, G: 0x00, B: 0x00, A: 0xB0}

	// Logical canvas size used when the viewport size is unknown.
	CanvasWidth  = 1280
	CanvasHeight = 720
)

// Logger is the component logger the renderer and HUD report through.
type Logger interface {
	Infof(component string, format string, args ...interface{})
	Errorf(component string, format string, args ...interface{})
}
