package hittest

import (
	"fmt"

	"golang.org/x/image/math/f64"
)

// Point is a position in some coordinate space, in surface units.
type Point struct {
	X, Y float64
}

// Pt is shorthand for Point{X: x, Y: y}.
func Pt(x, y float64) Point {
	return Point{X: x, Y: y}
}

func (p Point) String() string {
	return fmt.Sprintf("(%g,%g)", p.X, p.Y)
}

// Size is a width and height.
type Size struct {
	W, H float64
}

// Rect is an axis-aligned rectangle. Min is inclusive, Max exclusive.
type Rect struct {
	Min, Max Point
}

// XYWH returns the rectangle at (x, y) with the given width and height.
func XYWH(x, y, w, h float64) Rect {
	return Rect{Min: Point{x, y}, Max: Point{x + w, y + h}}
}

// Dx returns the width.
func (r Rect) Dx() float64 { return r.Max.X - r.Min.X }

// Dy returns the height.
func (r Rect) Dy() float64 { return r.Max.Y - r.Min.Y }

// Empty reports whether the rectangle contains no points.
func (r Rect) Empty() bool {
	return r.Min.X >= r.Max.X || r.Min.Y >= r.Max.Y
}

// Contains reports whether p lies inside r.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.Min.X && p.X < r.Max.X &&
		p.Y >= r.Min.Y && p.Y < r.Max.Y
}

func (r Rect) String() string {
	return fmt.Sprintf("[%v-%v]", r.Min, r.Max)
}

// Affine transforms use f64.Aff3 in row-major order with an implicit
// bottom row of [0 0 1]:
//
//	x' = m[0]*x + m[1]*y + m[2]
//	y' = m[3]*x + m[4]*y + m[5]
//
// The zero Aff3 is treated as the identity so that nodes without a
// transform need not set one.

// Identity returns the identity transform.
func Identity() f64.Aff3 {
	return f64.Aff3{1, 0, 0, 0, 1, 0}
}

// Translate returns a transform that moves points by (dx, dy).
func Translate(dx, dy float64) f64.Aff3 {
	return f64.Aff3{1, 0, dx, 0, 1, dy}
}

// Scale returns a transform that scales points about the origin.
func Scale(sx, sy float64) f64.Aff3 {
	return f64.Aff3{sx, 0, 0, 0, sy, 0}
}

// normalize maps the zero transform to the identity.
func normalize(m f64.Aff3) f64.Aff3 {
	if m == (f64.Aff3{}) {
		return Identity()
	}
	return m
}

// Mul returns the transform that applies b first, then a.
func Mul(a, b f64.Aff3) f64.Aff3 {
	a, b = normalize(a), normalize(b)
	return f64.Aff3{
		a[0]*b[0] + a[1]*b[3],
		a[0]*b[1] + a[1]*b[4],
		a[0]*b[2] + a[1]*b[5] + a[2],
		a[3]*b[0] + a[4]*b[3],
		a[3]*b[1] + a[4]*b[4],
		a[3]*b[2] + a[4]*b[5] + a[5],
	}
}

// Invert returns the inverse of m. ok is false for singular transforms.
func Invert(m f64.Aff3) (inv f64.Aff3, ok bool) {
	m = normalize(m)
	det := m[0]*m[4] - m[1]*m[3]
	if det == 0 {
		return f64.Aff3{}, false
	}
	return f64.Aff3{
		m[4] / det,
		-m[1] / det,
		(m[1]*m[5] - m[2]*m[4]) / det,
		-m[3] / det,
		m[0] / det,
		(m[2]*m[3] - m[0]*m[5]) / det,
	}, true
}

// Apply transforms p by m.
func Apply(m f64.Aff3, p Point) Point {
	m = normalize(m)
	return Point{
		X: m[0]*p.X + m[1]*p.Y + m[2],
		Y: m[3]*p.X + m[4]*p.Y + m[5],
	}
}
