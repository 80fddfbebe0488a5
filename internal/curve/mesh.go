package curve

import (
	"slices"

	m "github.com/Faultbox/curvetex/pkg/math"
)

// UVParams configures BuildUVs.
type UVParams struct {
	Mode UVMode
	// Texture size in pixels.
	TexWidth, TexHeight float32
	// Thickness is the resolved ribbon thickness.
	Thickness float32
	UpDownFix bool
}

// UVRect is a sub-rectangle of a texture atlas in normalized coordinates:
// origin (U, V) at the bottom-left corner, size (W, H).
type UVRect struct {
	U, V, W, H float32
}

// FullRect covers the whole texture.
var FullRect = UVRect{W: 1, H: 1}

// BuildPositions flattens ribbon vertices into x,y,z triples with z = 0.
func BuildPositions(vertices []m.Vec2) []float32 {
	out := make([]float32, 0, len(vertices)*3)
	for _, v := range vertices {
		out = append(out, v.X, v.Y, 0)
	}
	return out
}

// BuildIndices triangulates a strip of vertexCount vertices laid out as
// consecutive pairs. mirrored flips the winding, for transforms whose x and y
// scales have opposite signs. The result has (vertexCount-2)*3 entries.
func BuildIndices(vertexCount int, mirrored bool) []uint32 {
	if vertexCount < 3 {
		return nil
	}
	out := make([]uint32, 0, (vertexCount-2)*3)
	for i := 0; i < vertexCount-2; i++ {
		a, b, c := uint32(i), uint32(i+1), uint32(i+2)
		if i%2 != 0 {
			b, c = c, b
		}
		if mirrored {
			b, c = c, b
		}
		out = append(out, a, b, c)
	}
	return out
}

// BuildUVs returns one u,v pair per ribbon vertex. centerline is only read
// in UVNormalized mode, where it must have one point per vertex pair.
func BuildUVs(vertices, centerline []m.Vec2, p UVParams) []float32 {
	switch p.Mode {
	case UVLength:
		return lengthUVs(vertices, p, p.TexWidth)
	case UVNormalized:
		return normalizedUVs(vertices, centerline, p)
	default:
		return gridUVs(vertices, p)
	}
}

func gridUVs(vertices []m.Vec2, p UVParams) []float32 {
	out := make([]float32, 0, len(vertices)*2)
	for _, v := range vertices {
		u := v.X / p.TexWidth
		vv := 1 - v.Y/p.TexHeight
		if p.UpDownFix {
			vv = v.Y / p.TexHeight
		}
		out = append(out, u, vv)
	}
	return out
}

// stripV returns the v coordinate of the top and bottom rows.
func stripV(p UVParams) (top, bottom float32) {
	full := p.Thickness / p.TexHeight
	if p.UpDownFix {
		return full, 0
	}
	return 0, full
}

// lengthUVs walks the top vertices, setting u to travelled length / span.
// Bottom vertices copy the u of their top neighbour.
func lengthUVs(vertices []m.Vec2, p UVParams, span float32) []float32 {
	top, bottom := stripV(p)
	out := make([]float32, 0, len(vertices)*2)
	var travelled, u float32
	for i, v := range vertices {
		if i%2 != 0 {
			out = append(out, u, bottom)
			continue
		}
		if i > 0 {
			travelled += v.Sub(vertices[i-2]).Length()
			u = travelled / span
		}
		out = append(out, u, top)
	}
	return out
}

// normalizedUVs is lengthUVs measured along the centerline and divided by its
// total length, so the last top vertex gets u = 1.
func normalizedUVs(vertices, centerline []m.Vec2, p UVParams) []float32 {
	total := m.PolylineLength(centerline)
	top, bottom := stripV(p)
	out := make([]float32, 0, len(vertices)*2)
	var travelled, u float32
	for i := range vertices {
		if i%2 != 0 {
			out = append(out, u, bottom)
			continue
		}
		k := i / 2
		if k > 0 && k < len(centerline) {
			travelled += centerline[k].Sub(centerline[k-1]).Length()
			if total > 0 {
				u = travelled / total
			}
		}
		out = append(out, u, top)
	}
	return out
}

// RemapUVs maps UVs computed for a whole texture into an atlas sub-rectangle,
// in place.
func RemapUVs(uvs []float32, r UVRect) {
	for i := 0; i+1 < len(uvs); i += 2 {
		uvs[i] = r.U + uvs[i]*r.W
		uvs[i+1] = r.V + uvs[i+1]*r.H
	}
}

// Assembler converts ribbons into meshes, re-triangulating only when the
// vertex count or the winding changes.
type Assembler struct {
	vertexCount int
	mirrored    bool
	indices     []uint32

	// Triangulations counts how often indices were regenerated.
	Triangulations int
}

// Assemble builds a mesh for vertices. prev is the previously published mesh
// (or nil); the returned Parts flags the buffers that differ from it. The
// returned slices are freshly allocated except for indices, which are shared
// between meshes until they change and must be treated as read-only.
func (a *Assembler) Assemble(vertices, centerline []m.Vec2, mirrored bool, uv UVParams, atlas UVRect, prev *Mesh) (Mesh, Parts) {
	mesh := Mesh{
		Positions: BuildPositions(vertices),
		UVs:       BuildUVs(vertices, centerline, uv),
	}
	RemapUVs(mesh.UVs, atlas)

	if a.indices == nil || a.vertexCount != len(vertices) || a.mirrored != mirrored {
		a.indices = BuildIndices(len(vertices), mirrored)
		a.vertexCount = len(vertices)
		a.mirrored = mirrored
		a.Triangulations++
	}
	mesh.Indices = a.indices

	if prev == nil {
		return mesh, PartAll
	}
	var parts Parts
	if !slices.Equal(prev.Positions, mesh.Positions) {
		parts |= PartVertices
	}
	if !slices.Equal(prev.UVs, mesh.UVs) {
		parts |= PartUVs
	}
	if !slices.Equal(prev.Indices, mesh.Indices) {
		parts |= PartIndices
	}
	return mesh, parts
}

