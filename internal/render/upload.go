package render

import "github.com/Faultbox/curvetex/internal/curve"

type bufferKind int

const (
	bufferPositions bufferKind = iota
	bufferUVs
	bufferIndices
)

func (b bufferKind) String() string {
	switch b {
	case bufferPositions:
		return "positions"
	case bufferUVs:
		return "uvs"
	case bufferIndices:
		return "indices"
	}
	return "unknown"
}

// upload is one buffer write. Reallocating writes use BufferData, in-place
// writes use BufferSubData.
type upload struct {
	kind    bufferKind
	bytes   int
	realloc bool
}

// planUploads decides which buffers to write for a submission. sizes holds
// the current byte size of each buffer. Parts not named in parts are skipped
// unless their size changed, which cannot happen for a consistent mesh.
func planUploads(sizes [3]int, mesh curve.Mesh, parts curve.Parts) []upload {
	want := [3]int{
		len(mesh.Positions) * 4,
		len(mesh.UVs) * 4,
		len(mesh.Indices) * 4,
	}
	flags := [3]curve.Parts{curve.PartVertices, curve.PartUVs, curve.PartIndices}

	var plan []upload
	for k := range want {
		if !parts.Has(flags[k]) && want[k] == sizes[k] {
			continue
		}
		plan = append(plan, upload{
			kind:    bufferKind(k),
			bytes:   want[k],
			realloc: want[k] != sizes[k],
		})
	}
	return plan
}
