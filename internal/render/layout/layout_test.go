package layout

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInset(t *testing.T) {
	assert.Equal(t, image.Rect(10, 10, 90, 40), Inset(image.Rect(0, 0, 100, 50), 10))
	assert.Equal(t, image.Rect(0, 0, 100, 50), Inset(image.Rect(0, 0, 100, 50), 0))
	// Over-inset flips and gets normalized rather than producing Min > Max.
	r := Inset(image.Rect(0, 0, 10, 10), 8)
	assert.LessOrEqual(t, r.Min.X, r.Max.X)
	assert.LessOrEqual(t, r.Min.Y, r.Max.Y)
}

func TestAnchors(t *testing.T) {
	area := image.Rect(0, 0, 200, 100)
	assert.Equal(t, image.Rect(0, 70, 50, 100), AnchorBottomLeft(area, 50, 30))
	assert.Equal(t, image.Rect(150, 70, 200, 100), AnchorBottomRight(area, 50, 30))
	assert.Equal(t, area, AnchorBottomRight(area, 500, 500), "size clamps to the area")
	assert.Equal(t, image.Rect(0, 100, 0, 100), AnchorBottomLeft(area, -1, -1))
}

func TestFitSquare(t *testing.T) {
	area := image.Rect(0, 0, 200, 100)
	assert.Equal(t, image.Rect(100, 0, 200, 100), FitSquare(area, 0))
	assert.Equal(t, image.Rect(160, 60, 200, 100), FitSquare(area, 40))
}
