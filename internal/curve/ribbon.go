package curve

import (
	"math"

	"github.com/Faultbox/curvetex/pkg/geom"
	m "github.com/Faultbox/curvetex/pkg/math"
)

// ClampDensity is the density above which mitered joins are clamped to
// √2 × thickness from their source point.
const ClampDensity = 6

// RibbonParams configures BuildRibbon.
type RibbonParams struct {
	Mode      RenderMode
	Thickness float32
	Closed    bool
	// Configured subdivision density. Only used to decide whether sharp
	// joins are clamped.
	Density int
}

// Ribbon is the strip vertex list built around a centerline.
//
// Vertices come in pairs, one pair per centerline point. Vertical mode pairs
// (point, point dropped by thickness); tangent mode pairs (point, clockwise
// offset); center mode pairs (anticlockwise offset, clockwise offset).
type Ribbon struct {
	Vertices []m.Vec2
	// DegradedJoins counts joins whose adjacent offset lines were parallel
	// and fell back to the plain offset point.
	DegradedJoins int
	// Snapped counts offset vertices moved back onto the centerline because
	// they overshot it.
	Snapped int
}

// Top returns the even vertices (the first of each pair).
func (r Ribbon) Top() []m.Vec2 {
	return pairSide(r.Vertices, 0)
}

// Bottom returns the odd vertices (the second of each pair).
func (r Ribbon) Bottom() []m.Vec2 {
	return pairSide(r.Vertices, 1)
}

func pairSide(vertices []m.Vec2, side int) []m.Vec2 {
	out := make([]m.Vec2, 0, len(vertices)/2)
	for i := side; i < len(vertices); i += 2 {
		out = append(out, vertices[i])
	}
	return out
}

// BuildRibbon lays out strip vertices around centerline. Fewer than two
// centerline points give an empty ribbon in the tangent modes.
func BuildRibbon(centerline []m.Vec2, p RibbonParams) Ribbon {
	switch p.Mode {
	case RenderTangent, RenderTangentCenter:
		return buildTangent(centerline, p)
	default:
		return buildVertical(centerline, p.Thickness)
	}
}

func buildVertical(centerline []m.Vec2, thickness float32) Ribbon {
	out := make([]m.Vec2, 0, len(centerline)*2)
	drop := m.Vec2{Y: -thickness}
	for _, pt := range centerline {
		out = append(out, pt, pt.Add(drop))
	}
	return Ribbon{Vertices: out}
}

func buildTangent(centerline []m.Vec2, p RibbonParams) Ribbon {
	if len(centerline) < 2 {
		return Ribbon{}
	}

	thickness := p.Thickness
	if thickness < 0 {
		thickness = 1
	}

	// A closed loop gets one wrap point so the seam is mitered like any
	// other join.
	pts := centerline
	if p.Closed {
		pts = make([]m.Vec2, 0, len(centerline)+1)
		pts = append(pts, centerline...)
		pts = append(pts, centerline[1])
	}

	var r Ribbon
	var first, second []m.Vec2
	if p.Mode == RenderTangentCenter {
		var d1, d2 int
		first, d1 = offsetSide(pts, thickness/2, m.Vec2.PerpCCW, p.Density)
		second, d2 = offsetSide(pts, thickness/2, m.Vec2.PerpCW, p.Density)
		r.DegradedJoins = d1 + d2
	} else {
		first = pts
		second, r.DegradedJoins = offsetSide(pts, thickness, m.Vec2.PerpCW, p.Density)
	}

	n := len(pts)
	if p.Closed {
		n--
	}
	out := make([]m.Vec2, 0, n*2)
	for i := 0; i < n; i++ {
		out = append(out, first[i], second[i])
	}
	if p.Closed {
		// The first pair was mitered without a predecessor; reuse the pair
		// of the closing point, which sits on the same spot.
		out[0], out[1] = out[len(out)-2], out[len(out)-1]
	}

	r.Vertices = out
	r.Snapped = snapOvershoots(out, pts[:n], p.Mode == RenderTangentCenter)
	return r
}

// offsetSide offsets every point by dist along perp(direction). Interior
// points take the crossing of the two adjacent offset lines.
func offsetSide(pts []m.Vec2, dist float32, perp func(m.Vec2) m.Vec2, density int) ([]m.Vec2, int) {
	n := len(pts)
	out := make([]m.Vec2, n)
	limit := float32(math.Sqrt2) * dist
	degraded := 0

	var prevCur, prevNext m.Vec2
	for i := 0; i < n; i++ {
		var dir m.Vec2
		if i == n-1 {
			dir = pts[i].Sub(pts[i-1]).Normalize()
		} else {
			dir = pts[i+1].Sub(pts[i]).Normalize()
		}
		o := perp(dir).Scale(dist)
		cur := pts[i].Add(o)

		if i == 0 || i == n-1 {
			out[i] = cur
		}
		if i < n-1 {
			next := pts[i+1].Add(o)
			if i > 0 {
				miter, ok := geom.LineIntersection(prevCur, prevNext, cur, next, true)
				if !ok {
					miter = cur
					degraded++
				} else if v := miter.Sub(pts[i]); v.Length() > limit && density > ClampDensity {
					miter = pts[i].Add(v.Normalize().Scale(limit))
				}
				out[i] = miter
			}
			prevNext = next
		}
		prevCur = cur
	}
	return out, degraded
}

// snapOvershoots pulls offset vertices back onto the centerline where the
// segment from their source point crosses a non-adjacent centerline edge.
// The crossing nearest to the source wins. Endpoint pairs are left alone.
func snapOvershoots(vertices, sources []m.Vec2, bothSides bool) int {
	n := len(sources)
	snapped := 0
	for i := 1; i < n-1; i++ {
		src := sources[i]
		for side := 0; side < 2; side++ {
			if side == 0 && !bothSides {
				continue
			}
			idx := i*2 + side
			v := vertices[idx]

			best := v
			bestDist := float32(math.MaxFloat32)
			for j := 0; j < n-1; j++ {
				if j >= i-1 && j <= i+1 {
					continue
				}
				hit, ok := geom.LineIntersection(src, v, sources[j], sources[j+1], false)
				if !ok {
					continue
				}
				if d := hit.Distance(src); d < bestDist {
					best, bestDist = hit, d
				}
			}
			if best != v {
				vertices[idx] = best
				snapped++
			}
		}
	}
	return snapped
}
