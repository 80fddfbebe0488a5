package curve

import m "github.com/Faultbox/curvetex/pkg/math"

const (
	// ShortInterval is the control-point distance below which an interval is
	// drawn as a single straight segment.
	ShortInterval = 40
	// MinSegmentLength is the shortest segment subdivision may produce before
	// the segment count is halved.
	MinSegmentLength = 8
)

// Subdivide interpolates a Catmull-Rom curve through points.
//
// density is the number of segments per interval; it is halved per interval
// until every segment is at least MinSegmentLength long, and intervals shorter
// than ShortInterval get one segment. density 0 returns the points unchanged
// (with the first point appended when closed). A closed curve starts and ends
// on points[0].
func Subdivide(points []m.Vec2, density int, closed bool) []m.Vec2 {
	n := len(points)
	if n == 0 {
		return nil
	}

	if density <= 0 {
		out := make([]m.Vec2, 0, n+1)
		out = append(out, points...)
		if closed {
			out = append(out, points[0])
		}
		return out
	}

	if n == 1 {
		return []m.Vec2{points[0]}
	}
	if n == 2 {
		return []m.Vec2{points[0], points[1]}
	}

	var padded []m.Vec2
	var intervals int
	if closed {
		padded = make([]m.Vec2, 0, n+3)
		padded = append(padded, points[n-1])
		padded = append(padded, points...)
		padded = append(padded, points[0], points[1])
		intervals = n
	} else {
		padded = make([]m.Vec2, 0, n+2)
		padded = append(padded, points[0].Add(points[0].Sub(points[1])))
		padded = append(padded, points...)
		padded = append(padded, points[n-1].Add(points[n-1].Sub(points[n-2])))
		intervals = n - 1
	}

	out := make([]m.Vec2, 0, intervals*density+1)
	out = append(out, padded[1])
	for i := 0; i < intervals; i++ {
		p0, p1, p2, p3 := padded[i], padded[i+1], padded[i+2], padded[i+3]

		seg := intervalSegments(p1.Distance(p2), density)
		step := 1 / float32(seg)
		for j := 1; j < seg; j++ {
			out = append(out, catmullRom(p0, p1, p2, p3, float32(j)*step))
		}
		// t=1 is exactly p2
		out = append(out, p2)
	}
	return out
}

// intervalSegments returns how many segments an interval of length dist gets.
func intervalSegments(dist float32, density int) int {
	if dist < ShortInterval {
		return 1
	}
	seg := density
	for seg > 1 && dist/float32(seg) < MinSegmentLength {
		seg /= 2
	}
	return seg
}

// catmullRom evaluates the uniform Catmull-Rom segment between p1 and p2.
func catmullRom(p0, p1, p2, p3 m.Vec2, t float32) m.Vec2 {
	t2 := t * t
	t3 := t2 * t
	return m.Vec2{
		X: 0.5 * (2*p1.X + (-p0.X+p2.X)*t + (2*p0.X-5*p1.X+4*p2.X-p3.X)*t2 + (-p0.X+3*p1.X-3*p2.X+p3.X)*t3),
		Y: 0.5 * (2*p1.Y + (-p0.Y+p2.Y)*t + (2*p0.Y-5*p1.Y+4*p2.Y-p3.Y)*t2 + (-p0.Y+3*p1.Y-3*p2.Y+p3.Y)*t3),
	}
}
