package curve

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	m "github.com/Faultbox/curvetex/pkg/math"
)

func TestRenderModeText(t *testing.T) {
	for _, mode := range []RenderMode{RenderVertical, RenderTangent, RenderTangentCenter} {
		text, err := mode.MarshalText()
		require.NoError(t, err)

		var got RenderMode
		require.NoError(t, got.UnmarshalText(text))
		assert.Equal(t, mode, got)
	}

	mode, err := ParseRenderMode("Tangent-Center")
	require.NoError(t, err)
	assert.Equal(t, RenderTangentCenter, mode)

	_, err = ParseRenderMode("diagonal")
	assert.Error(t, err)
	_, err = RenderMode(9).MarshalText()
	assert.Error(t, err)
	assert.Equal(t, "RenderMode(9)", RenderMode(9).String())
}

func TestUVModeText(t *testing.T) {
	var mode UVMode
	require.NoError(t, mode.UnmarshalText([]byte("normalized")))
	assert.Equal(t, UVNormalized, mode)
	assert.Equal(t, "length", UVLength.String())
	assert.Error(t, mode.UnmarshalText([]byte("sphere")))
	assert.Equal(t, UVNormalized, mode, "failed parse keeps the old value")
}

func TestDefaultSettings(t *testing.T) {
	s := DefaultSettings()
	assert.Equal(t, 16, s.Density)
	assert.Equal(t, RenderVertical, s.RenderMode)
	assert.Equal(t, UVGrid, s.UVMode)
	assert.True(t, s.Collider)
	assert.False(t, s.Closed)
}

func TestSnapshotWorld(t *testing.T) {
	s := &Snapshot{Position: m.V2(10, 20), Scale: m.V2(2, 3)}
	p := s.World().TransformPoint2(m.V2(1, 1))
	assert.Equal(t, [3]float32{12, 23, 0}, p)
}
