package geom

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	m "github.com/Faultbox/curvetex/pkg/math"
)

func pts(xy ...float32) []m.Vec2 {
	out := make([]m.Vec2, 0, len(xy)/2)
	for i := 0; i+1 < len(xy); i += 2 {
		out = append(out, m.Vec2{X: xy[i], Y: xy[i+1]})
	}
	return out
}

func TestSegmentsIntersect(t *testing.T) {
	tests := []struct {
		name string
		seg  []m.Vec2
		want bool
	}{
		{"proper crossing", pts(0, 0, 10, 10, 0, 10, 10, 0), true},
		{"disjoint boxes", pts(0, 0, 1, 1, 5, 5, 6, 7), false},
		{"touching endpoint", pts(0, 0, 5, 5, 5, 5, 10, 0), true},
		{"collinear overlap", pts(0, 0, 10, 0, 5, 0, 15, 0), true},
		{"collinear apart", pts(0, 0, 4, 0, 5, 0, 9, 0), false},
		{"t junction", pts(0, 0, 10, 0, 5, -5, 5, 0), true},
		{"parallel offset", pts(0, 0, 10, 0, 0, 1, 10, 1), false},
		{"boxes overlap but no contact", pts(0, 0, 10, 10, 6, 0, 10, 3), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := tt.seg
			assert.Equal(t, tt.want, SegmentsIntersect(s[0], s[1], s[2], s[3]))
			assert.Equal(t, tt.want, SegmentsIntersect(s[2], s[3], s[0], s[1]), "symmetry")
		})
	}
}

func TestLineIntersection(t *testing.T) {
	p, ok := LineIntersection(m.V2(0, 0), m.V2(10, 0), m.V2(5, -5), m.V2(5, 5), false)
	assert.True(t, ok)
	assert.Equal(t, m.V2(5, 0), p)

	_, ok = LineIntersection(m.V2(0, 0), m.V2(1, 0), m.V2(5, -5), m.V2(5, 5), false)
	assert.False(t, ok, "bounded segments do not reach each other")

	p, ok = LineIntersection(m.V2(0, 0), m.V2(1, 0), m.V2(5, -5), m.V2(5, 5), true)
	assert.True(t, ok, "extended lines cross")
	assert.Equal(t, m.V2(5, 0), p)

	_, ok = LineIntersection(m.V2(0, 0), m.V2(10, 0), m.V2(0, 2), m.V2(10, 2), true)
	assert.False(t, ok, "parallel lines never cross")
}

func TestSignedAngle(t *testing.T) {
	assert.InDelta(t, math.Pi/2, SignedAngle(m.V2(1, 0), m.V2(0, 1)), 1e-9)
	assert.InDelta(t, -math.Pi/2, SignedAngle(m.V2(1, 0), m.V2(0, -1)), 1e-9)
	assert.InDelta(t, 0, SignedAngle(m.V2(2, 0), m.V2(5, 0)), 1e-9)
	assert.True(t, math.IsNaN(SignedAngle(m.V2(0, 0), m.V2(1, 0))))
}

func TestPolygonSelfIntersects(t *testing.T) {
	t.Run("triangle", func(t *testing.T) {
		r := PolygonSelfIntersects(pts(0, 0, 10, 0, 5, 5))
		assert.False(t, r.Result)
		assert.Equal(t, -1, r.Index)
	})

	t.Run("square", func(t *testing.T) {
		r := PolygonSelfIntersects(pts(0, 0, 10, 0, 10, 10, 0, 10))
		assert.False(t, r.Result)
	})

	t.Run("bow tie", func(t *testing.T) {
		// first and last edges are adjacent in an open list
		open := pts(0, 0, 10, 10, 10, 0, 0, 10)
		assert.False(t, PolygonSelfIntersects(open).Result)

		r := PolygonSelfIntersects(append(open, m.V2(0, 0)))
		assert.True(t, r.Result)
		assert.Equal(t, 0, r.Index)
	})

	t.Run("doubling back", func(t *testing.T) {
		r := PolygonSelfIntersects(pts(0, 0, 10, 0, 10, 10, 5, -5, 0, -8))
		assert.True(t, r.Result)
		assert.Equal(t, 0, r.Index)
	})

	t.Run("closing edge checked when first point repeated", func(t *testing.T) {
		open := pts(0, 0, 10, 0, 10, 10, 20, 5)
		assert.False(t, PolygonSelfIntersects(open).Result)

		r := PolygonSelfIntersects(append(open, m.V2(0, 0)))
		assert.True(t, r.Result)
		assert.Equal(t, 1, r.Index)
	})
}

func TestCollinear(t *testing.T) {
	assert.True(t, CollinearThree(m.V2(0, 0), m.V2(5, 0.01), m.V2(10, 0)))
	assert.False(t, CollinearThree(m.V2(0, 0), m.V2(5, 1), m.V2(10, 0)))

	assert.Equal(t, 1, FirstCollinear(pts(0, 10, 0, 0, 10, 0, 20, 0), false))
	assert.Equal(t, -1, FirstCollinear(pts(0, 0, 10, 0, 5, 5), false))
	assert.Equal(t, -1, FirstCollinear(pts(0, 0), true))

	// Only collinear across the seam: (20,0) -> (0,0) -> (10,0).
	loop := pts(0, 0, 10, 0, 15, 10, 20, 0)
	assert.Equal(t, -1, FirstCollinear(loop, false))
	assert.Equal(t, 3, FirstCollinear(loop, true))
}

func TestCollinearIsScaleDependent(t *testing.T) {
	a, b, c := m.V2(0, 0), m.V2(50, 1), m.V2(100, 0)
	assert.False(t, CollinearThree(a, b, c))

	s := float32(0.01)
	assert.True(t, CollinearThree(a.Scale(s), b.Scale(s), c.Scale(s)))
}

func TestHasDuplicates(t *testing.T) {
	assert.True(t, HasDuplicates(pts(0, 0, 10, 0, 20, 0, 0, 0)))
	assert.False(t, HasDuplicates(pts(0, 0, 10, 0, 20, 0)))
	assert.False(t, HasDuplicates(nil))
}
