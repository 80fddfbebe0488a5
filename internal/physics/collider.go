// Package physics mirrors terrain collider outlines into a chipmunk space as
// chains of static segments.
package physics

import (
	"fmt"

	"github.com/jakecoffman/cp/v2"
	"go.uber.org/zap"

	"github.com/Faultbox/curvetex/internal/logger"
	m "github.com/Faultbox/curvetex/pkg/math"
)

// Options configures the segments created for every collider.
type Options struct {
	Friction   float64
	Elasticity float64
	// Radius rounds the segments. Zero gives infinitely thin edges.
	Radius float64
}

// DefaultOptions returns the options used by the viewer.
func DefaultOptions() Options {
	return Options{Friction: 0.8, Elasticity: 0.1}
}

// World owns the chipmunk space shared by all terrain colliders.
type World struct {
	space     *cp.Space
	opts      Options
	colliders map[string]*StaticCollider
	log       *zap.Logger
}

// NewWorld creates an empty space.
func NewWorld(opts Options) *World {
	return &World{
		space:     cp.NewSpace(),
		opts:      opts,
		colliders: make(map[string]*StaticCollider),
		log:       logger.Named("physics"),
	}
}

// Collider returns the collider registered under name, creating it on first
// use.
func (w *World) Collider(name string) *StaticCollider {
	if c, ok := w.colliders[name]; ok {
		return c
	}
	c := &StaticCollider{world: w, name: name, scale: m.V2(1, 1)}
	w.colliders[name] = c
	return c
}

// Remove drops a collider and its shapes from the space.
func (w *World) Remove(name string) {
	c, ok := w.colliders[name]
	if !ok {
		return
	}
	c.clear()
	delete(w.colliders, name)
}

// Segments returns the number of segment shapes in the space.
func (w *World) Segments() int {
	n := 0
	for _, c := range w.colliders {
		n += len(c.shapes)
	}
	return n
}

// Nearest returns the closest point on any collider edge within maxDist.
func (w *World) Nearest(p m.Vec2, maxDist float32) (point m.Vec2, dist float32, ok bool) {
	info := w.space.PointQueryNearest(toCP(p), float64(maxDist), cp.SHAPE_FILTER_ALL)
	if info == nil || info.Shape == nil {
		return m.Vec2{}, 0, false
	}
	return fromCP(info.Point), float32(info.Distance), true
}

// GroundAt casts a vertical ray from top down to bottom at x and returns the
// height of the first edge it hits.
func (w *World) GroundAt(x, top, bottom float32) (float32, bool) {
	hit := w.space.SegmentQueryFirst(cp.Vector{X: float64(x), Y: float64(top)}, cp.Vector{X: float64(x), Y: float64(bottom)}, 0, cp.SHAPE_FILTER_ALL)
	if hit.Shape == nil {
		return 0, false
	}
	return float32(hit.Point.Y), true
}

// StaticCollider is one terrain's outline in the space. It implements the
// terrain's collider surface.
type StaticCollider struct {
	world    *World
	name     string
	outline  []m.Vec2
	position m.Vec2
	scale    m.Vec2
	shapes   []*cp.Shape
}

// Name returns the registration name.
func (c *StaticCollider) Name() string { return c.name }

// Segments returns the number of live segment shapes.
func (c *StaticCollider) Segments() int { return len(c.shapes) }

// ApplyOutline replaces the collider with a closed chain through points, in
// the terrain's local space. An empty outline clears the collider.
func (c *StaticCollider) ApplyOutline(points []m.Vec2) error {
	if len(points) == 1 || len(points) == 2 {
		return fmt.Errorf("collider %s: outline needs at least 3 points, got %d", c.name, len(points))
	}
	c.outline = append(c.outline[:0], points...)
	c.rebuild()
	return nil
}

// SetTransform places the local outline in the world. The outline is
// re-applied with the new transform.
func (c *StaticCollider) SetTransform(position, scale m.Vec2) {
	if c.position == position && c.scale == scale {
		return
	}
	c.position, c.scale = position, scale
	c.rebuild()
}

func (c *StaticCollider) rebuild() {
	c.clear()
	n := len(c.outline)
	if n == 0 {
		return
	}

	space := c.world.space
	opts := c.world.opts
	skipped := 0
	for i := 0; i < n; i++ {
		a := c.toWorld(c.outline[i])
		b := c.toWorld(c.outline[(i+1)%n])
		if a == b {
			skipped++
			continue
		}
		shape := cp.NewSegment(space.StaticBody, toCP(a), toCP(b), opts.Radius)
		shape.SetFriction(opts.Friction)
		shape.SetElasticity(opts.Elasticity)
		c.shapes = append(c.shapes, space.AddShape(shape))
	}
	c.world.log.Debug("collider applied",
		zap.String("collider", c.name),
		zap.Int("segments", len(c.shapes)),
		zap.Int("zero_length", skipped),
	)
}

func (c *StaticCollider) clear() {
	for _, s := range c.shapes {
		c.world.space.RemoveShape(s)
	}
	c.shapes = c.shapes[:0]
}

func (c *StaticCollider) toWorld(p m.Vec2) m.Vec2 {
	return m.V2(p.X*c.scale.X+c.position.X, p.Y*c.scale.Y+c.position.Y)
}

func toCP(v m.Vec2) cp.Vector {
	return cp.Vector{X: float64(v.X), Y: float64(v.Y)}
}

func fromCP(v cp.Vector) m.Vec2 {
	return m.V2(float32(v.X), float32(v.Y))
}
