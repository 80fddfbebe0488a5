package curve

import (
	"errors"
	"fmt"

	"github.com/Faultbox/curvetex/pkg/geom"
	m "github.com/Faultbox/curvetex/pkg/math"
)

var (
	ErrTooFewPoints     = errors.New("closed loop needs at least 3 control points")
	ErrSelfIntersecting = errors.New("control points self-intersect")
	ErrCollinear        = errors.New("control points have a collinear triple")
	ErrDuplicatePoints  = errors.New("control points contain duplicates")

	ErrInvalidDensity = errors.New("density must be even and within 0..32")
	ErrFollowing      = errors.New("terrain is following another terrain")
	ErrFollowSelf     = errors.New("terrain cannot follow itself")
	ErrFollowCycle    = errors.New("target already follows this terrain")
	ErrUnknownTerrain = errors.New("unknown terrain")
	ErrNotFollowing   = errors.New("terrain is not following")
)

// ValidationKind is the first rule a closed loop broke.
type ValidationKind uint8

const (
	Valid ValidationKind = iota
	InvalidTooFewPoints
	InvalidSelfIntersecting
	InvalidCollinear
	InvalidDuplicatePoints
)

// Validation is the result of checking control points for closing.
type Validation struct {
	Kind ValidationKind
	// Index of the offending edge (self-intersection) or of the first point
	// of the collinear triple. -1 when not applicable.
	Index int
}

// OK reports whether the points may be closed.
func (v Validation) OK() bool {
	return v.Kind == Valid
}

// Err returns nil for a valid result, or an error wrapping the sentinel
// for the broken rule.
func (v Validation) Err() error {
	switch v.Kind {
	case Valid:
		return nil
	case InvalidTooFewPoints:
		return ErrTooFewPoints
	case InvalidSelfIntersecting:
		return fmt.Errorf("edge %d: %w", v.Index, ErrSelfIntersecting)
	case InvalidCollinear:
		return fmt.Errorf("points %d-%d: %w", v.Index, v.Index+2, ErrCollinear)
	case InvalidDuplicatePoints:
		return ErrDuplicatePoints
	}
	return fmt.Errorf("unknown validation kind %d", v.Kind)
}

// ValidateClosed checks whether points can form a closed loop. Rules are
// checked in order: count, self-intersection including the closing edge,
// collinear triples including those that wrap, duplicates.
func ValidateClosed(points []m.Vec2) Validation {
	if len(points) < 3 {
		return Validation{Kind: InvalidTooFewPoints, Index: -1}
	}

	loop := make([]m.Vec2, 0, len(points)+1)
	loop = append(loop, points...)
	loop = append(loop, points[0])
	if r := geom.PolygonSelfIntersects(loop); r.Result {
		return Validation{Kind: InvalidSelfIntersecting, Index: r.Index}
	}

	if i := geom.FirstCollinear(points, true); i >= 0 {
		return Validation{Kind: InvalidCollinear, Index: i}
	}

	if geom.HasDuplicates(points) {
		return Validation{Kind: InvalidDuplicatePoints, Index: -1}
	}
	return Validation{Index: -1}
}
