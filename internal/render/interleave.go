// Package render uploads terrain meshes to OpenGL and draws them.
package render

import (
	"github.com/Faultbox/curvetex/internal/curve"
	m "github.com/Faultbox/curvetex/pkg/math"
)

// Stride is the number of floats per interleaved vertex: x, y, z, u, v, r, g, b, a.
const Stride = 9

// Color is a straight RGBA color.
type Color [4]float32

// White leaves the texture untouched.
var White = Color{1, 1, 1, 1}

// Interleave builds the vertex stream of mesh with positions moved into world
// space. A mesh without UVs gets (0, 0) for every vertex.
func Interleave(mesh curve.Mesh, world m.Mat4, color Color) []float32 {
	n := mesh.VertexCount()
	out := make([]float32, 0, n*Stride)
	for i := 0; i < n; i++ {
		p := world.TransformPoint2(m.V2(mesh.Positions[i*3], mesh.Positions[i*3+1]))
		var u, v float32
		if len(mesh.UVs) >= (i+1)*2 {
			u, v = mesh.UVs[i*2], mesh.UVs[i*2+1]
		}
		out = append(out, p[0], p[1], p[2], u, v, color[0], color[1], color[2], color[3])
	}
	return out
}
