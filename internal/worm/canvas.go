package worm

import "math"

// Canvas is the drawing surface a WormSet renders onto.
//
// Angles are radians, 0 on the positive x-axis and increasing clockwise
// (y grows downwards). DrawArc always receives start <= end and sweeps
// clockwise from start to end along the ellipse inscribed in w x h.
type Canvas interface {
	// Size is read every frame so hosts may resize freely.
	Size() (w, h float64)
	SetColor(c RGB)
	DrawLine(x1, y1, x2, y2 float64)
	DrawArc(cx, cy, w, h, start, end float64)
}

// Point is a position in canvas pixel space.
type Point struct {
	X, Y float64
}

func (p Point) Add(q Point) Point { return Point{X: p.X + q.X, Y: p.Y + q.Y} }
func (p Point) Sub(q Point) Point { return Point{X: p.X - q.X, Y: p.Y - q.Y} }

// Lerp interpolates from p (t=0) to q (t=1).
func Lerp(p, q Point, t float64) Point {
	return Point{
		X: p.X*(1.0-t) + q.X*t,
		Y: p.Y*(1.0-t) + q.Y*t,
	}
}

// ArcPoints flattens a clockwise arc into a polyline for backends that
// only draw straight lines. Points are appended to dst.
func ArcPoints(dst []Point, cx, cy, radius, start, end float64, maxStep float64) []Point {
	if maxStep <= 0 {
		maxStep = math.Pi / 32
	}
	sweep := end - start
	n := int(math.Ceil(math.Abs(sweep) / maxStep))
	if n < 1 {
		n = 1
	}
	for i := 0; i <= n; i++ {
		a := start + sweep*float64(i)/float64(n)
		dst = append(dst, Point{X: cx + radius*math.Cos(a), Y: cy + radius*math.Sin(a)})
	}
	return dst
}

func clampF(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
