package curve

import (
	"fmt"

	"github.com/rclancey/earcut"

	m "github.com/Faultbox/curvetex/pkg/math"
)

// FillClosed triangulates the interior of a closed centerline. A trailing
// point equal to the first is ignored. UVs use the grid mapping so the fill
// tiles seamlessly with a grid-mapped texture.
func FillClosed(centerline []m.Vec2, uv UVParams) (Mesh, error) {
	pts := centerline
	if n := len(pts); n > 1 && pts[0] == pts[n-1] {
		pts = pts[:n-1]
	}
	if len(pts) < 3 {
		return Mesh{}, fmt.Errorf("fill needs 3 points, got %d", len(pts))
	}

	coords := make([]float64, 0, len(pts)*2)
	for _, p := range pts {
		coords = append(coords, float64(p.X), float64(p.Y))
	}
	tris, err := earcut.Earcut(coords, nil, 2)
	if err != nil {
		return Mesh{}, fmt.Errorf("triangulate fill: %w", err)
	}
	if len(tris)%3 != 0 {
		return Mesh{}, fmt.Errorf("triangulate fill: %d indices", len(tris))
	}

	indices := make([]uint32, len(tris))
	for i, idx := range tris {
		indices[i] = uint32(idx)
	}

	uv.Mode = UVGrid
	return Mesh{
		Positions: BuildPositions(pts),
		UVs:       BuildUVs(pts, nil, uv),
		Indices:   indices,
	}, nil
}
