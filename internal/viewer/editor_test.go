package viewer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/curvetex/internal/curve"
	"github.com/Faultbox/curvetex/internal/scene"
	m "github.com/Faultbox/curvetex/pkg/math"
)

func newEditor(t *testing.T) *Editor {
	t.Helper()
	doc := &scene.Document{Terrains: []scene.Terrain{
		{
			ID:            1,
			Name:          "ground",
			Position:      [2]float32{100, 0},
			Scale:         [2]float32{2, 1},
			ControlPoints: [][2]float32{{0, 0}, {50, 0}, {100, 0}},
			Settings:      scene.SettingsFrom(curve.DefaultSettings()),
		},
		{
			ID:            2,
			Name:          "grass",
			Scale:         [2]float32{1, 1},
			Settings:      scene.SettingsFrom(curve.DefaultSettings()),
			Follow:        1,
		},
	}}
	s, err := scene.Build(doc, nil)
	require.NoError(t, err)
	return NewEditor(s)
}

func TestEditorPickUsesTerrainTransform(t *testing.T) {
	e := newEditor(t)
	require.Equal(t, "ground", e.Selected().Name())

	i, ok := e.Pick(m.V2(205, 3))
	assert.True(t, ok)
	assert.Equal(t, 1, i)

	_, ok = e.Pick(m.V2(150, 30))
	assert.False(t, ok)
}

func TestEditorDrag(t *testing.T) {
	e := newEditor(t)
	require.True(t, e.BeginDrag(m.V2(300, 0)))
	assert.True(t, e.Dragging())

	require.NoError(t, e.Drag(m.V2(320, 40)))
	e.EndDrag()
	assert.False(t, e.Dragging())
	assert.Equal(t, m.V2(110, 40), e.Selected().ControlPoints()[2])

	assert.False(t, e.BeginDrag(m.V2(-500, -500)))
}

func TestEditorInsertPoint(t *testing.T) {
	e := newEditor(t)
	tr := e.Selected()

	require.NoError(t, e.InsertPoint(m.V2(150, 10)))
	assert.Equal(t, []m.Vec2{m.V2(0, 0), m.V2(25, 10), m.V2(50, 0), m.V2(100, 0)}, tr.ControlPoints())

	require.NoError(t, e.InsertPoint(m.V2(60, 0)))
	assert.Equal(t, m.V2(-20, 0), tr.ControlPoints()[0], "extends before the first point")

	require.NoError(t, e.InsertPoint(m.V2(400, 0)))
	pts := tr.ControlPoints()
	assert.Equal(t, m.V2(150, 0), pts[len(pts)-1], "extends past the last point")
}

func TestEditorDeletePoint(t *testing.T) {
	e := newEditor(t)
	removed, err := e.DeletePoint(m.V2(200, 0))
	require.NoError(t, err)
	assert.True(t, removed)
	assert.Equal(t, []m.Vec2{m.V2(0, 0), m.V2(100, 0)}, e.Selected().ControlPoints())

	removed, err = e.DeletePoint(m.V2(0, 500))
	assert.NoError(t, err)
	assert.False(t, removed)
}

func TestEditorFollowerRejectsEdits(t *testing.T) {
	e := newEditor(t)
	require.Equal(t, "grass", e.NextTerrain().Name())

	assert.ErrorIs(t, e.InsertPoint(m.V2(0, 0)), curve.ErrFollowing)
	assert.Equal(t, "ground", e.NextTerrain().Name(), "selection wraps")
}

func TestEditorModes(t *testing.T) {
	e := newEditor(t)
	assert.Equal(t, curve.RenderTangent, e.CycleRenderMode())
	assert.Equal(t, curve.RenderTangentCenter, e.CycleRenderMode())
	assert.Equal(t, curve.RenderVertical, e.CycleRenderMode())
	assert.Equal(t, curve.UVLength, e.CycleUVMode())

	require.NoError(t, e.AdjustDensity(-2))
	assert.Equal(t, 14, e.Selected().Settings().Density)
	require.NoError(t, e.AdjustDensity(100))
	assert.Equal(t, curve.MaxDensity, e.Selected().Settings().Density)

	// three collinear points cannot close
	assert.ErrorIs(t, e.ToggleClosed(), curve.ErrCollinear)
	assert.False(t, e.Selected().Settings().Closed)
}

func TestEditorEmptyScene(t *testing.T) {
	s, err := scene.Build(&scene.Document{}, nil)
	require.NoError(t, err)
	e := NewEditor(s)

	assert.Nil(t, e.Selected())
	assert.Nil(t, e.NextTerrain())
	assert.NoError(t, e.InsertPoint(m.V2(0, 0)))
	assert.NoError(t, e.ToggleClosed())
}
