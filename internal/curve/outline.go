package curve

import (
	"slices"

	"github.com/Faultbox/curvetex/pkg/geom"
	m "github.com/Faultbox/curvetex/pkg/math"
)

// MinOutlineDensity is the density floor of outline degradation.
const MinOutlineDensity = 2

// OutlineParams configures ExtractOutline.
type OutlineParams struct {
	Mode      RenderMode
	Thickness float32
	Offset    m.Vec2
	Closed    bool
	Density   int
}

// Outline is a closed contour for a collider.
type Outline struct {
	Points []m.Vec2
	// Density the contour was finally built at. Lower than the requested
	// density when degradation kicked in.
	Density int
	// Degraded is set when the contour still self-intersects after density
	// reached MinOutlineDensity. Points is returned anyway.
	Degraded bool
	// Interpolations counts the extra subdivisions degradation ran.
	Interpolations int
}

// ExtractOutline derives a collider contour from a centerline.
//
// Vertical mode returns the centerline followed by its copy dropped by
// thickness, reversed. Tangent modes return the first side of the ribbon
// followed by the second side reversed. When the first side self-intersects,
// the centerline is re-subdivided from control with density lowered by 2
// until it no longer does or the floor is reached. Join clamping keeps
// following p.Density throughout.
func ExtractOutline(control, centerline []m.Vec2, p OutlineParams) Outline {
	shifted := translate(centerline, p.Offset)

	if p.Mode != RenderTangent && p.Mode != RenderTangentCenter {
		points := make([]m.Vec2, 0, len(shifted)*2)
		points = append(points, shifted...)
		down := translate(shifted, m.Vec2{Y: -p.Thickness})
		slices.Reverse(down)
		points = append(points, down...)
		return Outline{Points: points, Density: p.Density}
	}

	// joins stay clamped by the configured density while degrading
	rp := RibbonParams{Mode: p.Mode, Thickness: p.Thickness, Closed: p.Closed, Density: p.Density}
	ribbon := BuildRibbon(shifted, rp)
	out := Outline{Density: p.Density}

	density := p.Density
	for geom.PolygonSelfIntersects(ribbon.Top()).Result && density > MinOutlineDensity {
		density -= 2
		ribbon = BuildRibbon(translate(Subdivide(control, density, p.Closed), p.Offset), rp)
		out.Interpolations++
	}
	out.Density = density
	out.Degraded = geom.PolygonSelfIntersects(ribbon.Top()).Result

	top, bottom := ribbon.Top(), ribbon.Bottom()
	slices.Reverse(bottom)
	out.Points = append(top, bottom...)
	return out
}

func translate(points []m.Vec2, by m.Vec2) []m.Vec2 {
	out := make([]m.Vec2, len(points))
	for i, p := range points {
		out[i] = p.Add(by)
	}
	return out
}
