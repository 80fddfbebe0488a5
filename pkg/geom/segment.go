// Package geom holds the pure 2D predicates the curve pipeline relies on:
// segment crossing, polygon self-intersection, collinearity and duplicates.
//
// Inputs are float32 points; orientation tests are evaluated in float64 so the
// sign of near-zero cross products is stable across callers.
package geom

import (
	"math"

	m "github.com/Faultbox/curvetex/pkg/math"
)

// CollinearEpsilon is the absolute cross-product threshold below which three
// points count as collinear. It is not scale-relative: the same layout scaled
// down by 10x may become collinear.
const CollinearEpsilon = 0.1

// orient returns the signed area of the parallelogram (b-a) x (c-a).
func orient(a, b, c m.Vec2) float64 {
	return (float64(b.X)-float64(a.X))*(float64(c.Y)-float64(a.Y)) -
		(float64(b.Y)-float64(a.Y))*(float64(c.X)-float64(a.X))
}

// onSegment reports whether c lies inside the bounding box of a-b.
// Only meaningful when a, b and c are collinear.
func onSegment(a, b, c m.Vec2) bool {
	return min(a.X, b.X) <= c.X && c.X <= max(a.X, b.X) &&
		min(a.Y, b.Y) <= c.Y && c.Y <= max(a.Y, b.Y)
}

// SegmentsIntersect reports whether segment p1-p2 and segment q1-q2 share a
// point. Proper crossings, touching endpoints and collinear overlap all count.
func SegmentsIntersect(p1, p2, q1, q2 m.Vec2) bool {
	// Bounding box rejection
	if max(p1.X, p2.X) < min(q1.X, q2.X) ||
		max(q1.X, q2.X) < min(p1.X, p2.X) ||
		max(p1.Y, p2.Y) < min(q1.Y, q2.Y) ||
		max(q1.Y, q2.Y) < min(p1.Y, p2.Y) {
		return false
	}

	d1 := orient(q1, q2, p1)
	d2 := orient(q1, q2, p2)
	d3 := orient(p1, p2, q1)
	d4 := orient(p1, p2, q2)

	if d1*d2 < 0 && d3*d4 < 0 {
		return true
	}

	if d1 == 0 && onSegment(q1, q2, p1) {
		return true
	}
	if d2 == 0 && onSegment(q1, q2, p2) {
		return true
	}
	if d3 == 0 && onSegment(p1, p2, q1) {
		return true
	}
	if d4 == 0 && onSegment(p1, p2, q2) {
		return true
	}
	return false
}

// LineIntersection intersects line a-b with line c-d.
//
// With extended set, both are treated as infinite lines and the crossing point
// is returned whenever they are not parallel. Otherwise the point must lie on
// both segments. ok is false for parallel or collinear input.
func LineIntersection(a, b, c, d m.Vec2, extended bool) (p m.Vec2, ok bool) {
	ax, ay := float64(a.X), float64(a.Y)
	bx, by := float64(b.X), float64(b.Y)
	cx, cy := float64(c.X), float64(c.Y)
	dx, dy := float64(d.X), float64(d.Y)

	den := (dy-cy)*(bx-ax) - (dx-cx)*(by-ay)
	if den == 0 {
		return m.Vec2{}, false
	}

	ua := ((dx-cx)*(ay-cy) - (dy-cy)*(ax-cx)) / den
	ub := ((bx-ax)*(ay-cy) - (by-ay)*(ax-cx)) / den

	if !extended && (ua < 0 || ua > 1 || ub < 0 || ub > 1) {
		return m.Vec2{}, false
	}
	return m.Vec2{X: float32(ax + ua*(bx-ax)), Y: float32(ay + ua*(by-ay))}, true
}

// SignedAngle returns the angle in radians from a to b, in (-pi, pi].
// Positive means anticlockwise. NaN is returned if either vector is zero.
func SignedAngle(a, b m.Vec2) float64 {
	ax, ay := float64(a.X), float64(a.Y)
	bx, by := float64(b.X), float64(b.Y)
	magA := math.Hypot(ax, ay)
	magB := math.Hypot(bx, by)
	if magA == 0 || magB == 0 {
		return math.NaN()
	}

	cos := (ax*bx + ay*by) / (magA * magB)
	cos = math.Max(-1, math.Min(1, cos))
	angle := math.Acos(cos)

	if ax*by-ay*bx < 0 {
		return -angle
	}
	return angle
}
