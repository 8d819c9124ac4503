package coords

import "math"

// Matrix is a 2D affine transform [a b c d e f] mapping (x, y) to
// (a*x + c*y + e, b*x + d*y + f).
type Matrix [6]float64

// FromSlice copies the first six components of v. It reports false when v is
// too short or carries a non-finite component.
func FromSlice(v []float64) (Matrix, bool) {
	var m Matrix
	if len(v) < 6 {
		return m, false
	}
	copy(m[:], v[:6])
	return m, m.Finite()
}

// Multiply returns m followed by o.
func (m Matrix) Multiply(o Matrix) Matrix {
	return Matrix{
		m[0]*o[0] + m[1]*o[2],
		m[0]*o[1] + m[1]*o[3],
		m[2]*o[0] + m[3]*o[2],
		m[2]*o[1] + m[3]*o[3],
		m[4]*o[0] + m[5]*o[2] + o[4],
		m[4]*o[1] + m[5]*o[3] + o[5],
	}
}

func (m Matrix) Finite() bool {
	for _, v := range m {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

type Point struct{ X, Y float64 }

func (p Point) Add(o Point) Point     { return Point{p.X + o.X, p.Y + o.Y} }
func (p Point) Sub(o Point) Point     { return Point{p.X - o.X, p.Y - o.Y} }
func (p Point) Scale(k float64) Point { return Point{p.X * k, p.Y * k} }
func (p Point) Finite() bool          { return finite(p.X) && finite(p.Y) }

func (m Matrix) Transform(p Point) Point {
	return Point{X: m[0]*p.X + m[2]*p.Y + m[4], Y: m[1]*p.X + m[3]*p.Y + m[5]}
}

func Translate(tx, ty float64) Matrix { return Matrix{1, 0, 0, 1, tx, ty} }
func Scale(sx, sy float64) Matrix     { return Matrix{sx, 0, 0, sy, 0, 0} }

// Bounds accumulates an axis-aligned box. Start from EmptyBounds so the first
// Extend sets both corners.
type Bounds struct {
	MinX, MinY, MaxX, MaxY float64
}

// EmptyBounds returns bounds that contain no point.
func EmptyBounds() Bounds {
	return Bounds{
		MinX: math.Inf(1), MinY: math.Inf(1),
		MaxX: math.Inf(-1), MaxY: math.Inf(-1),
	}
}

// Extend grows b to include every point.
func (b *Bounds) Extend(pts ...Point) {
	for _, p := range pts {
		b.MinX = math.Min(b.MinX, p.X)
		b.MinY = math.Min(b.MinY, p.Y)
		b.MaxX = math.Max(b.MaxX, p.X)
		b.MaxY = math.Max(b.MaxY, p.Y)
	}
}

// Finite reports whether every corner of b and its extent are finite. Two
// finite corners can still be too far apart for their distance to be.
func (b Bounds) Finite() bool {
	return finite(b.MinX) && finite(b.MinY) && finite(b.MaxX) && finite(b.MaxY) &&
		finite(b.MaxX-b.MinX) && finite(b.MaxY-b.MinY)
}

func (b Bounds) Width() float64  { return math.Max(0, b.MaxX-b.MinX) }
func (b Bounds) Height() float64 { return math.Max(0, b.MaxY-b.MinY) }

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }
