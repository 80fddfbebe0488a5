package viewer

import (
	"fmt"

	"github.com/Faultbox/curvetex/internal/physics"
	m "github.com/Faultbox/curvetex/pkg/math"
)

// DefaultHoverRadius is how far from the cursor collider surfaces are
// reported.
const DefaultHoverRadius = 40

// describeHover names the collider surface point nearest to p, or returns
// "" when none lies within radius.
func describeHover(world *physics.World, p m.Vec2, radius float32) string {
	if world == nil {
		return ""
	}
	q, dist, ok := world.Nearest(p, radius)
	if !ok {
		return ""
	}
	return fmt.Sprintf("surface (%.1f, %.1f) %.1f away", q.X, q.Y, dist)
}
