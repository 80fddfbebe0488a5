package viewer

import (
	"slices"

	"github.com/Faultbox/curvetex/internal/curve"
	"github.com/Faultbox/curvetex/internal/scene"
	m "github.com/Faultbox/curvetex/pkg/math"
)

// DefaultPickRadius is how close, in world units, a click must land to grab
// a control point.
const DefaultPickRadius = 12

// Editor applies mouse and keyboard edits to the terrains of a scene. It
// holds no GL state.
type Editor struct {
	scene      *scene.Scene
	selected   curve.ID
	dragIndex  int
	PickRadius float32
}

// NewEditor selects the first terrain of s.
func NewEditor(s *scene.Scene) *Editor {
	e := &Editor{scene: s, dragIndex: -1, PickRadius: DefaultPickRadius}
	if all := s.Registry.All(); len(all) > 0 {
		e.selected = all[0].ID()
	}
	return e
}

// Selected returns the terrain being edited, or nil for an empty scene.
func (e *Editor) Selected() *curve.Terrain {
	return e.scene.Registry.Get(e.selected)
}

// NextTerrain moves the selection to the terrain with the next ID,
// wrapping around.
func (e *Editor) NextTerrain() *curve.Terrain {
	all := e.scene.Registry.All()
	if len(all) == 0 {
		return nil
	}
	i := slices.IndexFunc(all, func(t *curve.Terrain) bool { return t.ID() == e.selected })
	next := all[(i+1)%len(all)]
	e.selected = next.ID()
	e.dragIndex = -1
	return next
}

func toLocal(t *curve.Terrain, p m.Vec2) m.Vec2 {
	pos, scale := t.Position(), t.Scale()
	local := p.Sub(pos)
	if scale.X != 0 {
		local.X /= scale.X
	}
	if scale.Y != 0 {
		local.Y /= scale.Y
	}
	return local
}

// Pick returns the index of the control point of the selected terrain
// nearest to the world point p, if one lies within PickRadius.
func (e *Editor) Pick(p m.Vec2) (int, bool) {
	t := e.Selected()
	if t == nil {
		return -1, false
	}
	local := toLocal(t, p)
	best, bestDist := -1, e.PickRadius
	for i, c := range t.ControlPoints() {
		if d := c.Distance(local); d <= bestDist {
			best, bestDist = i, d
		}
	}
	return best, best >= 0
}

// BeginDrag grabs the control point under p.
func (e *Editor) BeginDrag(p m.Vec2) bool {
	i, ok := e.Pick(p)
	if ok {
		e.dragIndex = i
	}
	return ok
}

// Dragging reports whether a control point is grabbed.
func (e *Editor) Dragging() bool { return e.dragIndex >= 0 }

// Drag moves the grabbed control point to p.
func (e *Editor) Drag(p m.Vec2) error {
	t := e.Selected()
	if t == nil || e.dragIndex < 0 {
		return nil
	}
	pts := t.ControlPoints()
	if e.dragIndex >= len(pts) {
		e.dragIndex = -1
		return nil
	}
	pts[e.dragIndex] = toLocal(t, p)
	return t.SetControlPoints(pts)
}

// EndDrag releases the grabbed point.
func (e *Editor) EndDrag() { e.dragIndex = -1 }

// InsertPoint adds a control point at p, splitting the control polygon edge
// closest to it. With fewer than two points it appends.
func (e *Editor) InsertPoint(p m.Vec2) error {
	t := e.Selected()
	if t == nil {
		return nil
	}
	local := toLocal(t, p)
	pts := t.ControlPoints()
	if len(pts) < 2 {
		return t.SetControlPoints(append(pts, local))
	}

	closed := t.Settings().Closed
	edges := len(pts) - 1
	if closed {
		edges = len(pts)
	}
	edge, best := 0, float32(-1)
	for i := range edges {
		d := distanceToSegment(local, pts[i], pts[(i+1)%len(pts)])
		if best < 0 || d < best {
			edge, best = i, d
		}
	}
	at := edge + 1
	// past either end of an open curve, extend it instead of splitting
	if !closed {
		s := segmentParam(local, pts[edge], pts[edge+1])
		if edge == 0 && s < 0 {
			at = 0
		} else if edge == edges-1 && s > 1 {
			at = len(pts)
		}
	}
	return t.SetControlPoints(slices.Insert(pts, at, local))
}

// DeletePoint removes the control point under p.
func (e *Editor) DeletePoint(p m.Vec2) (bool, error) {
	i, ok := e.Pick(p)
	if !ok {
		return false, nil
	}
	t := e.Selected()
	return true, t.SetControlPoints(slices.Delete(t.ControlPoints(), i, i+1))
}

// CycleRenderMode switches the selected terrain to the next render mode.
func (e *Editor) CycleRenderMode() curve.RenderMode {
	t := e.Selected()
	if t == nil {
		return 0
	}
	next := (t.Settings().RenderMode + 1) % (curve.RenderTangentCenter + 1)
	t.SetRenderMode(next)
	return next
}

// CycleUVMode switches the selected terrain to the next UV mode.
func (e *Editor) CycleUVMode() curve.UVMode {
	t := e.Selected()
	if t == nil {
		return 0
	}
	next := (t.Settings().UVMode + 1) % (curve.UVNormalized + 1)
	t.SetUVMode(next)
	return next
}

// ToggleClosed opens or closes the selected loop.
func (e *Editor) ToggleClosed() error {
	t := e.Selected()
	if t == nil {
		return nil
	}
	return t.SetClosed(!t.Settings().Closed)
}

// AdjustDensity changes the density by delta, clamped to the valid range.
func (e *Editor) AdjustDensity(delta int) error {
	t := e.Selected()
	if t == nil {
		return nil
	}
	d := min(max(t.Settings().Density+delta, 0), curve.MaxDensity)
	return t.SetDensity(d)
}

// segmentParam projects p onto the line through a and b, returning 0 at a
// and 1 at b.
func segmentParam(p, a, b m.Vec2) float32 {
	ab := b.Sub(a)
	l2 := ab.Dot(ab)
	if l2 == 0 {
		return 0
	}
	return p.Sub(a).Dot(ab) / l2
}

func distanceToSegment(p, a, b m.Vec2) float32 {
	s := min(max(segmentParam(p, a, b), 0), 1)
	return p.Distance(a.Add(b.Sub(a).Scale(s)))
}
