// Package curve turns ordered 2D control points into a smooth centerline, a
// textured strip mesh and a collider outline.
//
// A Terrain owns one curve and its derived data. Callers mutate it through
// plain setters (each bumps a version counter) and call Rebuild once per tick;
// the result is published as an immutable Snapshot that renderers may read at
// any time. A Registry owns many terrains and drives follow mode, where one
// terrain mirrors another's geometry without interpolating it again.
package curve

import (
	"fmt"
	"strings"

	m "github.com/Faultbox/curvetex/pkg/math"
)

// RenderMode selects how the ribbon is laid out around the centerline.
type RenderMode uint8

const (
	// RenderVertical drops every centerline point straight down by the
	// thickness.
	RenderVertical RenderMode = iota
	// RenderTangent offsets one side along the clockwise normal.
	RenderTangent
	// RenderTangentCenter offsets both sides by half the thickness.
	RenderTangentCenter
)

var renderModeNames = [...]string{"vertical", "tangent", "tangent-center"}

func (r RenderMode) String() string {
	if int(r) < len(renderModeNames) {
		return renderModeNames[r]
	}
	return fmt.Sprintf("RenderMode(%d)", r)
}

// ParseRenderMode parses a render mode name.
func ParseRenderMode(s string) (RenderMode, error) {
	for i, name := range renderModeNames {
		if strings.EqualFold(s, name) {
			return RenderMode(i), nil
		}
	}
	return 0, fmt.Errorf("unknown render mode %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (r RenderMode) MarshalText() ([]byte, error) {
	if int(r) >= len(renderModeNames) {
		return nil, fmt.Errorf("invalid render mode %d", r)
	}
	return []byte(r.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (r *RenderMode) UnmarshalText(text []byte) error {
	v, err := ParseRenderMode(string(text))
	if err != nil {
		return err
	}
	*r = v
	return nil
}

// UVMode selects how texture coordinates are generated.
type UVMode uint8

const (
	// UVGrid maps local position to UV, tiling in a fixed world grid.
	UVGrid UVMode = iota
	// UVLength repeats the texture every texture width along the curve.
	UVLength
	// UVNormalized stretches the texture once over the whole curve.
	UVNormalized
)

var uvModeNames = [...]string{"grid", "length", "normalized"}

func (u UVMode) String() string {
	if int(u) < len(uvModeNames) {
		return uvModeNames[u]
	}
	return fmt.Sprintf("UVMode(%d)", u)
}

// ParseUVMode parses a UV mode name.
func ParseUVMode(s string) (UVMode, error) {
	for i, name := range uvModeNames {
		if strings.EqualFold(s, name) {
			return UVMode(i), nil
		}
	}
	return 0, fmt.Errorf("unknown uv mode %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (u UVMode) MarshalText() ([]byte, error) {
	if int(u) >= len(uvModeNames) {
		return nil, fmt.Errorf("invalid uv mode %d", u)
	}
	return []byte(u.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (u *UVMode) UnmarshalText(text []byte) error {
	v, err := ParseUVMode(string(text))
	if err != nil {
		return err
	}
	*u = v
	return nil
}

// BuildContext tells the pipeline who is asking for a rebuild.
type BuildContext uint8

const (
	// ContextEdit is an interactive editing session. Diagnostics are verbose
	// and degraded outlines are reported as warnings.
	ContextEdit BuildContext = iota
	// ContextPreview is a play-in-editor run.
	ContextPreview
	// ContextRuntime is a shipped game loop. Only warnings are logged.
	ContextRuntime
)

func (c BuildContext) String() string {
	switch c {
	case ContextEdit:
		return "edit"
	case ContextPreview:
		return "preview"
	case ContextRuntime:
		return "runtime"
	}
	return fmt.Sprintf("BuildContext(%d)", c)
}

// MaxDensity is the largest accepted subdivision density.
const MaxDensity = 32

// Settings is the persisted configuration of a terrain.
type Settings struct {
	// Density is the number of segments per control-point interval. Even,
	// 0..MaxDensity, 0 disables subdivision.
	Density int
	// Thickness of the ribbon; 0 uses the texture height.
	Thickness float32
	// ColliderThickness of the outline; 0 uses the texture height.
	ColliderThickness float32

	RenderMode RenderMode
	UVMode     UVMode

	// Closed joins the last control point back to the first.
	Closed bool
	// Offset shifts the centerline before the ribbon is built.
	Offset m.Vec2
	// ColliderOffset shifts the outline.
	ColliderOffset m.Vec2
	// UpDownFix flips V in every UV mode.
	UpDownFix bool
	// Collider enables outline extraction.
	Collider bool
	// SortX orders control points by X when they are set.
	SortX bool
}

// DefaultSettings returns the settings a new terrain starts with.
func DefaultSettings() Settings {
	return Settings{
		Density:    16,
		RenderMode: RenderVertical,
		UVMode:     UVGrid,
		Collider:   true,
	}
}

// Parts flags which buffers of a mesh changed in a rebuild.
type Parts uint8

const (
	PartVertices Parts = 1 << iota
	PartUVs
	PartIndices

	PartNone Parts = 0
	PartAll        = PartVertices | PartUVs | PartIndices
)

// Has reports whether all bits of other are set.
func (p Parts) Has(other Parts) bool {
	return p&other == other
}

func (p Parts) String() string {
	if p == PartNone {
		return "none"
	}
	var names []string
	if p.Has(PartVertices) {
		names = append(names, "vertices")
	}
	if p.Has(PartUVs) {
		names = append(names, "uvs")
	}
	if p.Has(PartIndices) {
		names = append(names, "indices")
	}
	return strings.Join(names, "|")
}

// Mesh is a renderable triangle list. Positions hold x,y,z triples and UVs
// hold u,v pairs, one per vertex.
type Mesh struct {
	Positions []float32
	UVs       []float32
	Indices   []uint32
}

// VertexCount returns the number of vertices.
func (ms Mesh) VertexCount() int {
	return len(ms.Positions) / 3
}

// Empty reports whether the mesh has no triangles.
func (ms Mesh) Empty() bool {
	return len(ms.Indices) == 0
}

// Snapshot is the published, read-only result of one rebuild.
// Nothing in it is mutated after publication.
type Snapshot struct {
	Version uint64

	Centerline []m.Vec2
	Ribbon     []m.Vec2
	Mesh       Mesh
	// Fill is the triangulated interior of a closed loop, nil otherwise.
	Fill    *Mesh
	Outline Outline

	// Resolved thicknesses after the texture-height fallback.
	Thickness         float32
	ColliderThickness float32

	Position m.Vec2
	Scale    m.Vec2
}

// World returns the local-to-world matrix of the snapshot.
func (s *Snapshot) World() m.Mat4 {
	return m.TRS2D(s.Position, 0, s.Scale)
}
