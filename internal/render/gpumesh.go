package render

import (
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"

	"github.com/Faultbox/curvetex/internal/curve"
	"github.com/Faultbox/curvetex/internal/logger"
)

// GPUMesh holds one terrain mesh in OpenGL buffers. Positions and UVs live
// in separate buffers so either can be rewritten alone. It implements the
// terrain's mesh surface and must only be used on the GL thread.
type GPUMesh struct {
	vao        uint32
	buffers    [3]uint32
	sizes      [3]int
	indexCount int32
	uploads    int
	log        *zap.Logger
}

// NewGPUMesh creates the vertex array and its buffers.
func NewGPUMesh(name string) *GPUMesh {
	g := &GPUMesh{log: logger.Named("render").With(zap.String("mesh", name))}

	gl.GenVertexArrays(1, &g.vao)
	gl.BindVertexArray(g.vao)
	gl.GenBuffers(3, &g.buffers[0])

	gl.BindBuffer(gl.ARRAY_BUFFER, g.buffers[bufferPositions])
	gl.VertexAttribPointer(0, 3, gl.FLOAT, false, 3*4, nil)
	gl.EnableVertexAttribArray(0)

	gl.BindBuffer(gl.ARRAY_BUFFER, g.buffers[bufferUVs])
	gl.VertexAttribPointer(1, 2, gl.FLOAT, false, 2*4, nil)
	gl.EnableVertexAttribArray(1)

	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, g.buffers[bufferIndices])

	gl.BindVertexArray(0)
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	return g
}

// SubmitMesh writes the changed parts of mesh.
func (g *GPUMesh) SubmitMesh(mesh curve.Mesh, parts curve.Parts) error {
	plan := planUploads(g.sizes, mesh, parts)
	if len(plan) == 0 {
		return nil
	}

	gl.BindVertexArray(g.vao)
	for _, u := range plan {
		target := uint32(gl.ARRAY_BUFFER)
		var data unsafe.Pointer
		switch u.kind {
		case bufferPositions:
			data = ptr(mesh.Positions)
		case bufferUVs:
			data = ptr(mesh.UVs)
		case bufferIndices:
			target = gl.ELEMENT_ARRAY_BUFFER
			if len(mesh.Indices) > 0 {
				data = unsafe.Pointer(&mesh.Indices[0])
			}
		}

		gl.BindBuffer(target, g.buffers[u.kind])
		if u.realloc {
			gl.BufferData(target, u.bytes, data, gl.DYNAMIC_DRAW)
			g.sizes[u.kind] = u.bytes
		} else if u.bytes > 0 {
			gl.BufferSubData(target, 0, u.bytes, data)
		}
		g.uploads++
		g.log.Debug("buffer upload",
			zap.Stringer("buffer", u.kind),
			zap.Int("bytes", u.bytes),
			zap.Bool("realloc", u.realloc),
		)
	}
	gl.BindVertexArray(0)
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)

	g.indexCount = int32(len(mesh.Indices))
	return nil
}

// Uploads returns the number of buffer writes so far.
func (g *GPUMesh) Uploads() int { return g.uploads }

// Draw issues the indexed draw call. The caller binds program and uniforms.
func (g *GPUMesh) Draw() {
	if g.indexCount == 0 {
		return
	}
	gl.BindVertexArray(g.vao)
	gl.DrawElements(gl.TRIANGLES, g.indexCount, gl.UNSIGNED_INT, nil)
	gl.BindVertexArray(0)
}

// Delete frees the GL objects.
func (g *GPUMesh) Delete() {
	gl.DeleteBuffers(3, &g.buffers[0])
	gl.DeleteVertexArrays(1, &g.vao)
	g.vao = 0
	g.sizes = [3]int{}
	g.indexCount = 0
}

func ptr(data []float32) unsafe.Pointer {
	if len(data) == 0 {
		return nil
	}
	return unsafe.Pointer(&data[0])
}
