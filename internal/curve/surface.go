package curve

import m "github.com/Faultbox/curvetex/pkg/math"

// Texture is the sprite metadata a terrain is drawn with.
type Texture interface {
	// Size returns the pixel dimensions. Both must be powers of two.
	Size() (width, height int)
	// UVRect returns the sprite's sub-rectangle inside its atlas,
	// (0, 0, 1, 1) for a standalone texture.
	UVRect() (u, v, w, h float32)
}

// MeshSurface receives published meshes. parts names the buffers that
// changed since the previous submission; PartAll means a full upload.
type MeshSurface interface {
	SubmitMesh(mesh Mesh, parts Parts) error
}

// ColliderSurface receives collider outlines.
type ColliderSurface interface {
	ApplyOutline(points []m.Vec2) error
}
