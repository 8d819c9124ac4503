package document

import (
	"math"

	"github.com/wudi/pdfsearch/coords"
)

// Viewport maps page space onto a canvas at a given scale and rotation.
type Viewport struct {
	// Box is the normalized page box [llx lly urx ury].
	Box       [4]float64
	Width     float64
	Height    float64
	Scale     float64
	Rotation  int
	Transform coords.Matrix
}

// NewViewport builds the canvas transform for box: y grows downward on the
// canvas and the page is rotated clockwise by rotation degrees (a multiple of
// 90) about the box centre.
func NewViewport(box [4]float64, scale float64, rotation int) Viewport {
	box = normalizeBox(box)
	rotation %= 360
	if rotation < 0 {
		rotation += 360
	}
	rotation -= rotation % 90

	cx := (box[2] + box[0]) / 2
	cy := (box[3] + box[1]) / 2
	var rot coords.Matrix
	switch rotation {
	case 90:
		rot = coords.Matrix{0, 1, 1, 0, 0, 0}
	case 180:
		rot = coords.Matrix{-1, 0, 0, 1, 0, 0}
	case 270:
		rot = coords.Matrix{0, -1, -1, 0, 0, 0}
	default:
		rot = coords.Matrix{1, 0, 0, -1, 0, 0}
	}

	w := math.Abs(box[2]-box[0]) * scale
	h := math.Abs(box[3]-box[1]) * scale
	if rot[0] == 0 {
		w, h = h, w
	}

	// Centre the box on the origin, rotate with y flipped, scale, then move
	// the rotated box back into the positive quadrant.
	m := coords.Translate(-cx, -cy).
		Multiply(rot).
		Multiply(coords.Scale(scale, scale)).
		Multiply(coords.Translate(w/2, h/2))

	return Viewport{
		Box:       box,
		Width:     w,
		Height:    h,
		Scale:     scale,
		Rotation:  rotation,
		Transform: m,
	}
}

func normalizeBox(b [4]float64) [4]float64 {
	if b[0] > b[2] {
		b[0], b[2] = b[2], b[0]
	}
	if b[1] > b[3] {
		b[1], b[3] = b[3], b[1]
	}
	return b
}

// LetterBox is the fallback page box when a page declares none.
var LetterBox = [4]float64{0, 0, 612, 792}
