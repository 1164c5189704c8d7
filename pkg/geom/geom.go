package geom

import (
	"fmt"
	"math"
)

// Point is a position in viewport pixels. Y grows downwards.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Pt is shorthand for Point{X: x, Y: y}
func Pt(x, y float64) Point {
	return Point{X: x, Y: y}
}

func (p Point) Add(o Point) Point {
	return Point{X: p.X + o.X, Y: p.Y + o.Y}
}

func (p Point) Sub(o Point) Point {
	return Point{X: p.X - o.X, Y: p.Y - o.Y}
}

// Dist returns the euclidean distance between two points
func (p Point) Dist(o Point) float64 {
	return math.Hypot(p.X-o.X, p.Y-o.Y)
}

func (p Point) String() string {
	return fmt.Sprintf("(%g,%g)", p.X, p.Y)
}

// Rect is an axis aligned box. Width and Height are never negative for
// rects produced by this package.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

func (r Rect) Min() Point {
	return Point{X: r.X, Y: r.Y}
}

func (r Rect) Max() Point {
	return Point{X: r.X + r.Width, Y: r.Y + r.Height}
}

func (r Rect) Center() Point {
	return Point{X: r.X + r.Width/2, Y: r.Y + r.Height/2}
}

// MidY is the vertical midpoint used for flow insertion index computation
func (r Rect) MidY() float64 {
	return r.Y + r.Height/2
}

func (r Rect) MidX() float64 {
	return r.X + r.Width/2
}

// Contains reports whether p lies inside r, edges included
func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.X <= r.X+r.Width && p.Y >= r.Y && p.Y <= r.Y+r.Height
}

func (r Rect) Translate(d Point) Rect {
	return Rect{X: r.X + d.X, Y: r.Y + d.Y, Width: r.Width, Height: r.Height}
}

func (r Rect) IsEmpty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// ClampPoint keeps the top-left corner of a box of the given size inside
// bounds, expressed in bounds-local coordinates. A box larger than the
// bounds is pinned to the origin.
func ClampPoint(p Point, w, h float64, bounds Rect) Point {
	maxX := bounds.Width - w
	maxY := bounds.Height - h
	return Point{X: clamp(p.X, 0, maxX), Y: clamp(p.Y, 0, maxY)}
}

// Clamp restricts v to [lo, hi]. If hi < lo the lower bound wins.
func Clamp(v, lo, hi float64) float64 {
	return clamp(v, lo, hi)
}

func clamp(v, lo, hi float64) float64 {
	if v > hi {
		v = hi
	}
	if v < lo {
		v = lo
	}
	return v
}

// AngleDeg returns the angle of p around center in degrees, using atan2.
func AngleDeg(center, p Point) float64 {
	return math.Atan2(p.Y-center.Y, p.X-center.X) * 180 / math.Pi
}

// NormalizeDeg maps any angle into [0, 360)
func NormalizeDeg(deg float64) float64 {
	deg = math.Mod(deg, 360)
	if deg < 0 {
		deg += 360
	}
	// -0 and values rounding to 360
	if deg >= 360 || deg == 0 {
		return 0
	}
	return deg
}

// Round rounds to the given number of decimals
func Round(v float64, decimals int) float64 {
	p := math.Pow(10, float64(decimals))
	return math.Round(v*p) / p
}
