package curve

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	m "github.com/Faultbox/curvetex/pkg/math"
)

func assertVecsNear(t *testing.T, want, got []m.Vec2) {
	t.Helper()
	require.Len(t, got, len(want))
	for i := range want {
		assert.InDelta(t, want[i].X, got[i].X, 1e-4, "x of vertex %d", i)
		assert.InDelta(t, want[i].Y, got[i].Y, 1e-4, "y of vertex %d", i)
	}
}

func TestRibbonVertical(t *testing.T) {
	r := BuildRibbon([]m.Vec2{m.V2(0, 0), m.V2(10, 5)}, RibbonParams{Mode: RenderVertical, Thickness: 3})
	assert.Equal(t, []m.Vec2{m.V2(0, 0), m.V2(0, -3), m.V2(10, 5), m.V2(10, 2)}, r.Vertices)
	assert.Equal(t, []m.Vec2{m.V2(0, 0), m.V2(10, 5)}, r.Top())
	assert.Equal(t, []m.Vec2{m.V2(0, -3), m.V2(10, 2)}, r.Bottom())
}

func TestRibbonTangentParallelFallsBack(t *testing.T) {
	line := []m.Vec2{m.V2(0, 0), m.V2(10, 0), m.V2(20, 0)}
	r := BuildRibbon(line, RibbonParams{Mode: RenderTangent, Thickness: 2, Density: 8})

	assertVecsNear(t, []m.Vec2{
		m.V2(0, 0), m.V2(0, -2),
		m.V2(10, 0), m.V2(10, -2),
		m.V2(20, 0), m.V2(20, -2),
	}, r.Vertices)
	assert.Equal(t, 1, r.DegradedJoins)
}

func TestRibbonTangentMitersCorner(t *testing.T) {
	corner := []m.Vec2{m.V2(0, 0), m.V2(10, 0), m.V2(10, -10)}
	r := BuildRibbon(corner, RibbonParams{Mode: RenderTangent, Thickness: 1})

	assertVecsNear(t, []m.Vec2{
		m.V2(0, 0), m.V2(0, -1),
		m.V2(10, 0), m.V2(9, -1),
		m.V2(10, -10), m.V2(9, -10),
	}, r.Vertices)
	assert.Zero(t, r.DegradedJoins)
}

func TestRibbonSharpJoinClamp(t *testing.T) {
	hairpin := []m.Vec2{m.V2(0, 0), m.V2(10, 0), m.V2(0, 1)}

	clamped := BuildRibbon(hairpin, RibbonParams{Mode: RenderTangent, Thickness: 1, Density: 8})
	assert.InDelta(t, math.Sqrt2, clamped.Vertices[3].Distance(hairpin[1]), 1e-3)

	loose := BuildRibbon(hairpin, RibbonParams{Mode: RenderTangent, Thickness: 1, Density: 4})
	assert.Greater(t, loose.Vertices[3].Distance(hairpin[1]), float32(10))
}

func TestRibbonCenterUsesHalfThickness(t *testing.T) {
	line := []m.Vec2{m.V2(0, 0), m.V2(10, 0), m.V2(20, 0)}
	r := BuildRibbon(line, RibbonParams{Mode: RenderTangentCenter, Thickness: 4})

	assertVecsNear(t, []m.Vec2{
		m.V2(0, 2), m.V2(0, -2),
		m.V2(10, 2), m.V2(10, -2),
		m.V2(20, 2), m.V2(20, -2),
	}, r.Vertices)
	assert.Equal(t, 2, r.DegradedJoins)
}

func TestRibbonNegativeThicknessBecomesOne(t *testing.T) {
	r := BuildRibbon([]m.Vec2{m.V2(0, 0), m.V2(10, 0)}, RibbonParams{Mode: RenderTangent, Thickness: -5})
	assertVecsNear(t, []m.Vec2{m.V2(0, 0), m.V2(0, -1), m.V2(10, 0), m.V2(10, -1)}, r.Vertices)
}

func TestRibbonTangentNeedsTwoPoints(t *testing.T) {
	assert.Empty(t, BuildRibbon([]m.Vec2{m.V2(1, 1)}, RibbonParams{Mode: RenderTangent, Thickness: 1}).Vertices)
	assert.Empty(t, BuildRibbon(nil, RibbonParams{Mode: RenderTangentCenter, Thickness: 1}).Vertices)
}

func TestRibbonClosedSeam(t *testing.T) {
	square := []m.Vec2{m.V2(0, 0), m.V2(10, 0), m.V2(10, 10), m.V2(0, 10), m.V2(0, 0)}
	r := BuildRibbon(square, RibbonParams{Mode: RenderTangent, Thickness: 1, Closed: true})

	assertVecsNear(t, []m.Vec2{
		m.V2(0, 0), m.V2(-1, -1),
		m.V2(10, 0), m.V2(11, -1),
		m.V2(10, 10), m.V2(11, 11),
		m.V2(0, 10), m.V2(-1, 11),
		m.V2(0, 0), m.V2(-1, -1),
	}, r.Vertices)
	assert.Len(t, r.Vertices, 2*len(square))
	assert.Zero(t, r.Snapped)
}

func TestRibbonSnapsOvershoot(t *testing.T) {
	// a narrow U whose inward offset is wider than the gap
	u := []m.Vec2{
		m.V2(10, 20), m.V2(10, 10), m.V2(10, 0),
		m.V2(0, 0), m.V2(0, 10), m.V2(0, 20),
	}
	r := BuildRibbon(u, RibbonParams{Mode: RenderTangent, Thickness: 15})

	assert.Positive(t, r.Snapped)
	assert.InDelta(t, 0, r.Vertices[3].X, 1e-4)
	assert.InDelta(t, 10, r.Vertices[3].Y, 1e-4)
	// endpoints are never snapped
	assertVecsNear(t, []m.Vec2{m.V2(-5, 20)}, r.Vertices[1:2])
}
