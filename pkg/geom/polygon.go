package geom

import m "github.com/Faultbox/curvetex/pkg/math"

// Intersection is the result of a self-intersection scan.
type Intersection struct {
	Result bool
	// Index of the first edge (points[Index]..points[Index+1]) that crosses a
	// later non-adjacent edge, or -1.
	Index int
}

// PolygonSelfIntersects checks every pair of non-adjacent edges of the open
// polyline points[0..n-1]. The first and last edges are treated as adjacent,
// so passing a loop with its first point repeated at the end checks the
// closing edge too. Fewer than four points can never self-intersect.
func PolygonSelfIntersects(points []m.Vec2) Intersection {
	n := len(points)
	if n < 4 {
		return Intersection{Index: -1}
	}

	for i := 0; i < n-1; i++ {
		a1, a2 := points[i], points[i+1]
		for j := i + 2; j < n-1; j++ {
			if i == 0 && j == n-2 {
				continue
			}
			if SegmentsIntersect(a1, a2, points[j], points[j+1]) {
				return Intersection{Result: true, Index: i}
			}
		}
	}
	return Intersection{Index: -1}
}

// CollinearThree reports whether a, b and c are collinear within
// CollinearEpsilon.
func CollinearThree(a, b, c m.Vec2) bool {
	cross := orient(a, b, c)
	if cross < 0 {
		cross = -cross
	}
	return cross < CollinearEpsilon
}

// FirstCollinear returns the index i of the first consecutive triple
// points[i], points[i+1], points[i+2] that is collinear. With wrap set the
// triples crossing the end of the list are checked as well. Returns -1 when
// no triple is collinear.
func FirstCollinear(points []m.Vec2, wrap bool) int {
	n := len(points)
	if n < 3 {
		return -1
	}
	last := n - 2
	if wrap {
		last = n
	}
	for i := 0; i < last; i++ {
		if CollinearThree(points[i], points[(i+1)%n], points[(i+2)%n]) {
			return i
		}
	}
	return -1
}

// HasDuplicates reports whether any two points are exactly equal.
func HasDuplicates(points []m.Vec2) bool {
	for i := 0; i < len(points); i++ {
		for j := i + 1; j < len(points); j++ {
			if points[i] == points[j] {
				return true
			}
		}
	}
	return false
}
