package render

import (
	"errors"
	"image"

	"github.com/skip2/go-qrcode"
)

// Below this edge length the HUD trades error correction for larger
// modules so the code stays scannable from across the room.
const qrSmallEdgePx = 96

func qrRecoveryLevel(edgePx int) qrcode.RecoveryLevel {
	if edgePx < qrSmallEdgePx {
		return qrcode.Low
	}
	return qrcode.Medium
}

// panelQRCode renders url as a square QR image that fills rect exactly.
func panelQRCode(url string, rect image.Rectangle) (image.Image, error) {
	if url == "" {
		return nil, errors.New("empty panel url")
	}
	edge := rect.Dx()
	if rect.Dy() < edge {
		edge = rect.Dy()
	}
	code, err := qrcode.New(url, qrRecoveryLevel(edge))
	if err != nil {
		return nil, err
	}
	return code.Image(edge), nil
}
