// Package highlight turns matched character ranges into canvas rectangles.
//
// Each run carries only its baseline origin, direction and advance width, so
// the run's box is rebuilt from the transform: the baseline segment of
// length Width, extended by the run height against the run's vertical axis.
package highlight

import (
	"errors"
	"math"

	"github.com/wudi/pdfsearch/coords"
	"github.com/wudi/pdfsearch/document"
	"github.com/wudi/pdfsearch/linearize"
	"github.com/wudi/pdfsearch/match"
)

// ErrInvalidTransform is reported for runs whose transform is missing, short
// or not finite.
var ErrInvalidTransform = errors.New("invalid run transform")

// Rect is an axis-aligned box in canvas pixels.
type Rect struct {
	X, Y, Width, Height float64
}

// Quad holds the four corners of a run box.
type Quad struct {
	TL, TR, BR, BL coords.Point
}

// Points returns the corners clockwise from the top-left.
func (q Quad) Points() [4]coords.Point { return [4]coords.Point{q.TL, q.TR, q.BR, q.BL} }

// Transform maps every corner through m.
func (q Quad) Transform(m coords.Matrix) Quad {
	return Quad{
		TL: m.Transform(q.TL),
		TR: m.Transform(q.TR),
		BR: m.Transform(q.BR),
		BL: m.Transform(q.BL),
	}
}

// RunQuad computes a run's box in page space.
func RunQuad(run document.TextRun) (Quad, error) {
	m, ok := coords.FromSlice(run.Transform)
	if !ok {
		return Quad{}, ErrInvalidTransform
	}
	a, b, c, d, e, f := m[0], m[1], m[2], m[3], m[4], m[5]

	exLen := math.Hypot(a, b)
	if exLen == 0 {
		exLen = 1
	}
	eyLen := math.Hypot(c, d)
	if eyLen == 0 {
		eyLen = 1
	}
	ex := coords.Point{X: a / exLen, Y: b / exLen}
	ey := coords.Point{X: c / eyLen, Y: d / eyLen}

	h := math.Hypot(c, d)
	if h == 0 {
		h = math.Abs(d)
	}

	bl := coords.Point{X: e, Y: f}
	br := bl.Add(ex.Scale(run.Width))
	return Quad{
		TL: bl.Sub(ey.Scale(h)),
		TR: br.Sub(ey.Scale(h)),
		BR: br,
		BL: bl,
	}, nil
}

// Map covers one span with one rectangle per contributing run, in run order.
// Separator positions, runs without a usable transform and boxes whose
// position or size overflows add nothing.
func Map(page *linearize.Page, runs []document.TextRun, span match.Span, viewport coords.Matrix) []Rect {
	if page == nil || span.Start < 0 || span.Len() <= 0 {
		return nil
	}
	var order []int
	bounds := make(map[int]*coords.Bounds)
	for pos := span.Start; pos < span.End && pos < len(page.Index); pos++ {
		if page.IsSeparator(pos) {
			continue
		}
		idx := page.Index[pos].Run
		if idx < 0 || idx >= len(runs) {
			continue
		}
		if _, seen := bounds[idx]; seen {
			continue
		}
		b := coords.EmptyBounds()
		if q, err := RunQuad(runs[idx]); err == nil {
			pts := q.Transform(viewport).Points()
			b.Extend(pts[:]...)
		}
		bounds[idx] = &b
		order = append(order, idx)
	}

	var rects []Rect
	for _, idx := range order {
		b := bounds[idx]
		if !b.Finite() {
			continue
		}
		rects = append(rects, Rect{X: b.MinX, Y: b.MinY, Width: b.Width(), Height: b.Height()})
	}
	return rects
}

// MapAll maps every span in order and concatenates the rectangles.
func MapAll(page *linearize.Page, runs []document.TextRun, spans []match.Span, viewport coords.Matrix) []Rect {
	var out []Rect
	for _, span := range spans {
		out = append(out, Map(page, runs, span, viewport)...)
	}
	return out
}

// InvalidRuns lists the indexes of runs whose transform cannot be used.
func InvalidRuns(runs []document.TextRun) []int {
	var out []int
	for i, run := range runs {
		if _, err := RunQuad(run); err != nil {
			out = append(out, i)
		}
	}
	return out
}
