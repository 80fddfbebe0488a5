package curve

import (
	"cmp"
	"fmt"
	"slices"

	"go.uber.org/zap"

	"github.com/Faultbox/curvetex/internal/logger"
)

// Registry owns all terrains of a scene and drives follow mode.
//
// Followers refer to their target by ID only. Every Tick copies the target's
// control points, centerline, position, scale and closed flag into the
// follower by value; the follower then builds its own ribbon and mesh from
// the copied centerline without interpolating it again. The one exception is
// outline degradation: a follower whose outline self-intersects re-subdivides
// its control points at lower densities, counted in
// Stats.DegradeInterpolations rather than Stats.Interpolations.
type Registry struct {
	terrains map[ID]*Terrain
	nextID   ID
	log      *zap.Logger
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		terrains: make(map[ID]*Terrain),
		nextID:   1,
		log:      logger.Named("curve.registry"),
	}
}

// Create adds a new independent terrain and returns it.
func (r *Registry) Create(name string) *Terrain {
	t := NewTerrain(r.nextID, name)
	r.terrains[t.id] = t
	r.nextID++
	return t
}

// Add registers an existing terrain. Its ID must be unused.
func (r *Registry) Add(t *Terrain) error {
	if t.id == 0 {
		return fmt.Errorf("add %s: zero id", t.name)
	}
	if _, ok := r.terrains[t.id]; ok {
		return fmt.Errorf("add %s: id %d already registered", t.name, t.id)
	}
	r.terrains[t.id] = t
	if t.id >= r.nextID {
		r.nextID = t.id + 1
	}
	return nil
}

// Remove deletes a terrain. Terrains following it become independent and
// keep the geometry they last mirrored.
func (r *Registry) Remove(id ID) {
	if _, ok := r.terrains[id]; !ok {
		return
	}
	delete(r.terrains, id)
	for _, t := range r.terrains {
		if t.following == id {
			t.following = 0
			t.touch()
			r.log.Info("follow target removed", zap.String("terrain", t.name), zap.Uint32("target", uint32(id)))
		}
	}
}

// Get returns a terrain by ID, or nil.
func (r *Registry) Get(id ID) *Terrain {
	return r.terrains[id]
}

// ByName returns the first terrain (in ID order) with the given name.
func (r *Registry) ByName(name string) *Terrain {
	for _, t := range r.All() {
		if t.name == name {
			return t
		}
	}
	return nil
}

// All returns all terrains ordered by ID.
func (r *Registry) All() []*Terrain {
	out := make([]*Terrain, 0, len(r.terrains))
	for _, t := range r.terrains {
		out = append(out, t)
	}
	slices.SortFunc(out, func(a, b *Terrain) int { return cmp.Compare(a.id, b.id) })
	return out
}

// Count returns the number of terrains.
func (r *Registry) Count() int {
	return len(r.terrains)
}

// Follow makes follower mirror target. A terrain cannot follow itself or a
// terrain that directly follows it. Longer cycles are not detected.
func (r *Registry) Follow(follower, target ID) error {
	if follower == target {
		return fmt.Errorf("follow %d: %w", follower, ErrFollowSelf)
	}
	f, ok := r.terrains[follower]
	if !ok {
		return fmt.Errorf("follower %d: %w", follower, ErrUnknownTerrain)
	}
	tg, ok := r.terrains[target]
	if !ok {
		return fmt.Errorf("target %d: %w", target, ErrUnknownTerrain)
	}
	if tg.following == follower {
		r.log.Warn("circular follow rejected", zap.String("terrain", f.name), zap.String("target", tg.name))
		return fmt.Errorf("%s follow %s: %w", f.name, tg.name, ErrFollowCycle)
	}

	f.following = target
	f.mirror(tg)
	f.touch()
	return nil
}

// Unfollow returns a follower to independent mode. Its next rebuild
// interpolates from the mirrored control points.
func (r *Registry) Unfollow(follower ID) error {
	f, ok := r.terrains[follower]
	if !ok {
		return fmt.Errorf("follower %d: %w", follower, ErrUnknownTerrain)
	}
	if f.following == 0 {
		return fmt.Errorf("unfollow %s: %w", f.name, ErrNotFollowing)
	}
	f.following = 0
	f.touch()
	return nil
}

// Tick rebuilds every terrain once: independent terrains first, then
// followers, each group in ID order. A follower of a follower sees its
// target's state from this tick only if the target has the lower ID.
func (r *Registry) Tick(ctx BuildContext) []BuildReport {
	all := r.All()
	reports := make([]BuildReport, 0, len(all))

	for _, t := range all {
		if t.following == 0 {
			reports = append(reports, t.Rebuild(ctx))
		}
	}
	for _, t := range all {
		if t.following == 0 {
			continue
		}
		target, ok := r.terrains[t.following]
		if !ok {
			t.following = 0
			t.touch()
		} else {
			t.mirror(target)
		}
		reports = append(reports, t.Rebuild(ctx))
	}
	return reports
}
