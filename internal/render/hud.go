package render

import (
	"fmt"
	"image"
	"image/draw"
	"strings"

	"github.com/golang/freetype"
	"github.com/golang/freetype/truetype"
	"github.com/rook-computer/pixeltoy/internal/render/layout"
	"github.com/rook-computer/pixeltoy/internal/state"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

const (
	hudFontSize   = 18
	hudPadding    = 8
	hudMargin     = 12
	hudMaxQRSize  = 160
	hudQRFraction = 4 // QR is at most 1/4 of the shorter surface side
)

// HUDStatus is the information shown in the status line.
type HUDStatus struct {
	Settings state.Settings
	Camera   string // "", "waiting", "live" or "unavailable"
	Passes   uint64
}

// Line formats the status line.
func (s HUDStatus) Line() string {
	parts := []string{fmt.Sprintf("pixel %d", s.Settings.PixelSize)}
	if s.Settings.ColorMode {
		parts = append(parts, "color")
	} else {
		parts = append(parts, "gray")
	}
	source := string(s.Settings.Source)
	if s.Settings.Source == state.SourceCamera && s.Camera != "" {
		source += " (" + s.Camera + ")"
	}
	parts = append(parts, source)
	if s.Settings.Running {
		parts = append(parts, "running")
	} else {
		parts = append(parts, "stopped")
	}
	if s.Settings.SynthOn {
		parts = append(parts, "synth")
	}
	if s.Settings.NoiseOn {
		parts = append(parts, string(s.Settings.NoiseType)+" noise")
	}
	return strings.Join(parts, "  ")
}

// HUD draws a status line and, when PanelURL is set, a QR code pointing to
// the control panel.
type HUD struct {
	PanelURL string
	Logger   Logger

	ttFont *truetype.Font
	face   font.Face
	qr     image.Image
	qrSize int
}

// NewHUD parses fontTTF; on failure the HUD falls back to basicfont.
func NewHUD(fontTTF []byte, panelURL string) *HUD {
	hud := &HUD{PanelURL: panelURL}
	if tt, err := truetype.Parse(fontTTF); err == nil {
		hud.ttFont = tt
		hud.face = truetype.NewFace(tt, &truetype.Options{Size: hudFontSize, DPI: 72, Hinting: font.HintingFull})
	} else {
		hud.face = basicfont.Face7x13
	}
	return hud
}

func (h *HUD) Draw(dst *image.RGBA, status HUDStatus) {
	area := layout.Inset(dst.Rect, hudMargin)
	h.drawStatus(dst, area, status.Line())
	h.drawQR(dst, area)
}

func (h *HUD) drawStatus(dst *image.RGBA, area image.Rectangle, text string) {
	if h.face == nil {
		h.face = basicfont.Face7x13
	}
	metrics := h.face.Metrics()
	ascent := metrics.Ascent.Ceil()
	textHeight := ascent + metrics.Descent.Ceil()
	textWidth := font.MeasureString(h.face, text).Ceil()

	box := layout.AnchorBottomLeft(area, textWidth+2*hudPadding, textHeight+2*hudPadding)
	draw.Draw(dst, box, image.NewUniform(HUDBackground), image.Point{}, draw.Over)
	baseline := box.Min.Y + hudPadding + ascent
	x := box.Min.X + hudPadding

	if h.ttFont != nil {
		ctx := freetype.NewContext()
		ctx.SetDPI(72)
		ctx.SetFont(h.ttFont)
		ctx.SetFontSize(hudFontSize)
		ctx.SetClip(box)
		ctx.SetDst(dst)
		ctx.SetSrc(image.NewUniform(HUDForeground))
		ctx.SetHinting(font.HintingFull)
		_, err := ctx.DrawString(text, freetype.Pt(x, baseline))
		if err == nil {
			return
		}
		if h.Logger != nil {
			h.Logger.Errorf("hud", "freetype draw failed, using face drawer: %v", err)
		}
	}
	drawer := &font.Drawer{Dst: dst, Src: image.NewUniform(HUDForeground), Face: h.face}
	drawer.Dot = fixed.P(x, baseline)
	drawer.DrawString(text)
}

func (h *HUD) drawQR(dst *image.RGBA, area image.Rectangle) {
	if h.PanelURL == "" {
		return
	}
	shorter := area.Dx()
	if area.Dy() < shorter {
		shorter = area.Dy()
	}
	maxSize := shorter / hudQRFraction
	if maxSize > hudMaxQRSize {
		maxSize = hudMaxQRSize
	}
	rect := layout.FitSquare(area, maxSize)
	if rect.Dx() < 21 {
		// Smaller than one module per pixel of a version 1 code.
		return
	}
	if h.qr == nil || h.qrSize != rect.Dx() {
		img, err := panelQRCode(h.PanelURL, rect)
		if err != nil {
			if h.Logger != nil {
				h.Logger.Errorf("hud", "qr code generation failed: %v", err)
			}
			h.PanelURL = ""
			return
		}
		h.qr, h.qrSize = img, rect.Dx()
	}
	xdraw.NearestNeighbor.Scale(dst, rect, h.qr, h.qr.Bounds(), xdraw.Src, nil)
}
