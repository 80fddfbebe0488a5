package curve

import (
	"cmp"
	"fmt"
	"slices"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/Faultbox/curvetex/internal/logger"
	"github.com/Faultbox/curvetex/internal/texture"
	m "github.com/Faultbox/curvetex/pkg/math"
)

// ID identifies a terrain inside a Registry. Zero is never assigned.
type ID uint32

// BuildStatus is the outcome of a Rebuild call.
type BuildStatus uint8

const (
	StatusBuilt BuildStatus = iota
	StatusUnchanged
	StatusSkippedNoTexture
	StatusSkippedBadTexture
	StatusSkippedTooFewPoints
	StatusSkippedEmpty
)

func (s BuildStatus) String() string {
	switch s {
	case StatusBuilt:
		return "built"
	case StatusUnchanged:
		return "unchanged"
	case StatusSkippedNoTexture:
		return "skipped: no texture"
	case StatusSkippedBadTexture:
		return "skipped: texture size not a power of two"
	case StatusSkippedTooFewPoints:
		return "skipped: fewer than 2 control points"
	case StatusSkippedEmpty:
		return "skipped: empty ribbon"
	}
	return fmt.Sprintf("BuildStatus(%d)", s)
}

// Skipped reports whether the rebuild was skipped for missing input.
func (s BuildStatus) Skipped() bool {
	return s >= StatusSkippedNoTexture
}

// BuildReport describes one Rebuild call.
type BuildReport struct {
	ID      ID
	Status  BuildStatus
	Version uint64
	// Parts changed relative to the previous snapshot.
	Parts Parts
	// Degraded is set when the collider outline may self-intersect.
	Degraded bool
	// SurfaceErr holds the first error reported by a mesh or collider
	// surface. The snapshot is published regardless.
	SurfaceErr error
}

// Stats counts pipeline work done by a terrain.
type Stats struct {
	Rebuilds int
	Skips    int
	// Interpolations counts centerline subdivisions for rendering.
	Interpolations int
	// DegradeInterpolations counts extra subdivisions run by outline
	// degradation.
	DegradeInterpolations int
	Triangulations        int
}

// Terrain is one curve-textured terrain.
//
// All methods except Snapshot must be called from a single goroutine (the
// simulation loop). Snapshot may be called from any goroutine.
type Terrain struct {
	id   ID
	name string
	log  *zap.Logger

	control  []m.Vec2
	settings Settings
	texture  Texture
	position m.Vec2
	scale    m.Vec2

	following  ID
	centerline []m.Vec2

	version      uint64
	builtVersion uint64
	lastSkip     BuildStatus

	assembler Assembler
	snapshot  atomic.Pointer[Snapshot]
	stats     Stats

	meshSurface     MeshSurface
	colliderSurface ColliderSurface
}

// NewTerrain creates an independent terrain with default settings.
func NewTerrain(id ID, name string) *Terrain {
	return &Terrain{
		id:       id,
		name:     name,
		log:      logger.Named("curve").With(zap.String("terrain", name), zap.Uint32("id", uint32(id))),
		settings: DefaultSettings(),
		scale:    m.V2(1, 1),
		version:  1,
		lastSkip: StatusBuilt,
	}
}

// ID returns the terrain's ID.
func (t *Terrain) ID() ID { return t.id }

// Name returns the terrain's name.
func (t *Terrain) Name() string { return t.name }

// Version returns the structural version, bumped by every mutation.
func (t *Terrain) Version() uint64 { return t.version }

// Stats returns work counters.
func (t *Terrain) Stats() Stats { return t.stats }

// Snapshot returns the last published build, or nil before the first one.
func (t *Terrain) Snapshot() *Snapshot {
	return t.snapshot.Load()
}

func (t *Terrain) touch() {
	t.version++
}

// SetControlPoints replaces the control points. Points are sorted by X
// first when SortX is enabled. Followers reject edits.
func (t *Terrain) SetControlPoints(points []m.Vec2) error {
	if t.following != 0 {
		return fmt.Errorf("set control points on %s: %w", t.name, ErrFollowing)
	}
	pts := slices.Clone(points)
	if t.settings.SortX {
		slices.SortStableFunc(pts, func(a, b m.Vec2) int { return cmp.Compare(a.X, b.X) })
	}
	t.control = pts
	t.touch()
	return nil
}

// ControlPoints returns a copy of the control points.
func (t *Terrain) ControlPoints() []m.Vec2 {
	return slices.Clone(t.control)
}

// CurveTexturePoints returns a copy of the subdivided centerline in local
// space, without the render offset.
func (t *Terrain) CurveTexturePoints() []m.Vec2 {
	return slices.Clone(t.centerline)
}

// Settings returns the current settings.
func (t *Terrain) Settings() Settings { return t.settings }

// ApplySettings replaces all settings at once. Density is validated, and a
// closed loop is validated against the current control points; on error
// nothing changes.
func (t *Terrain) ApplySettings(s Settings) error {
	if err := checkDensity(s.Density); err != nil {
		return err
	}
	if s.Closed && !t.settings.Closed {
		if err := t.validateClosing(); err != nil {
			return err
		}
	}
	t.settings = s
	t.touch()
	return nil
}

func checkDensity(d int) error {
	if d < 0 || d > MaxDensity || d%2 != 0 {
		return fmt.Errorf("density %d: %w", d, ErrInvalidDensity)
	}
	return nil
}

// SetDensity sets the subdivision density (even, 0..MaxDensity).
func (t *Terrain) SetDensity(d int) error {
	if err := checkDensity(d); err != nil {
		return err
	}
	t.settings.Density = d
	t.touch()
	return nil
}

// SetThickness sets the ribbon thickness; 0 uses the texture height.
func (t *Terrain) SetThickness(v float32) {
	t.settings.Thickness = v
	t.touch()
}

// SetColliderThickness sets the outline thickness; 0 uses the texture height.
func (t *Terrain) SetColliderThickness(v float32) {
	t.settings.ColliderThickness = v
	t.touch()
}

// SetRenderMode sets the ribbon layout.
func (t *Terrain) SetRenderMode(mode RenderMode) {
	t.settings.RenderMode = mode
	t.touch()
}

// SetUVMode sets the UV mapping.
func (t *Terrain) SetUVMode(mode UVMode) {
	t.settings.UVMode = mode
	t.touch()
}

// SetOffset shifts the rendered ribbon.
func (t *Terrain) SetOffset(v m.Vec2) {
	t.settings.Offset = v
	t.touch()
}

// SetColliderOffset shifts the collider outline.
func (t *Terrain) SetColliderOffset(v m.Vec2) {
	t.settings.ColliderOffset = v
	t.touch()
}

// SetUpDownFix flips V.
func (t *Terrain) SetUpDownFix(on bool) {
	t.settings.UpDownFix = on
	t.touch()
}

// SetColliderEnabled toggles outline extraction.
func (t *Terrain) SetColliderEnabled(on bool) {
	t.settings.Collider = on
	t.touch()
}

// SetSortX toggles sorting control points by X on SetControlPoints.
func (t *Terrain) SetSortX(on bool) {
	t.settings.SortX = on
	t.touch()
}

// SetClosed opens or closes the loop. Closing is rejected, leaving the
// terrain unchanged, when the control points fail ValidateClosed.
func (t *Terrain) SetClosed(closed bool) error {
	if closed && !t.settings.Closed {
		if err := t.validateClosing(); err != nil {
			return err
		}
	}
	t.settings.Closed = closed
	t.touch()
	return nil
}

func (t *Terrain) validateClosing() error {
	v := t.Validate()
	if v.OK() {
		return nil
	}
	err := v.Err()
	t.log.Warn("cannot close loop", zap.Error(err))
	return fmt.Errorf("close %s: %w", t.name, err)
}

// Validate checks whether the current control points may form a closed loop.
func (t *Terrain) Validate() Validation {
	return ValidateClosed(t.control)
}

// SetTexture assigns the texture; nil clears it.
func (t *Terrain) SetTexture(tex Texture) {
	t.texture = tex
	t.touch()
}

// Texture returns the assigned texture, or nil.
func (t *Terrain) Texture() Texture { return t.texture }

// SetPosition moves the terrain.
func (t *Terrain) SetPosition(p m.Vec2) {
	t.position = p
	t.touch()
}

// Position returns the terrain's position.
func (t *Terrain) Position() m.Vec2 { return t.position }

// SetScale sets the terrain's scale. A negative x*y product mirrors the
// winding of the mesh.
func (t *Terrain) SetScale(s m.Vec2) {
	t.scale = s
	t.touch()
}

// Scale returns the terrain's scale.
func (t *Terrain) Scale() m.Vec2 { return t.scale }

// Following returns the ID of the followed terrain, if any.
func (t *Terrain) Following() (ID, bool) {
	return t.following, t.following != 0
}

// SetMeshSurface sets where published meshes are submitted.
func (t *Terrain) SetMeshSurface(s MeshSurface) {
	t.meshSurface = s
}

// SetColliderSurface sets where collider outlines are applied.
func (t *Terrain) SetColliderSurface(s ColliderSurface) {
	t.colliderSurface = s
}

// mirror copies the follow target's shared geometry by value.
func (t *Terrain) mirror(src *Terrain) {
	changed := false
	if !slices.Equal(t.control, src.control) {
		t.control = slices.Clone(src.control)
		changed = true
	}
	if !slices.Equal(t.centerline, src.centerline) {
		t.centerline = slices.Clone(src.centerline)
		changed = true
	}
	if t.position != src.position || t.scale != src.scale {
		t.position, t.scale = src.position, src.scale
		changed = true
	}
	if t.settings.Closed != src.settings.Closed {
		t.settings.Closed = src.settings.Closed
		changed = true
	}
	if changed {
		t.touch()
	}
}

func resolveThickness(v float32, texHeight int) float32 {
	if v == 0 {
		return float32(texHeight)
	}
	return v
}

func (t *Terrain) checkInputs() BuildStatus {
	if t.texture == nil {
		return StatusSkippedNoTexture
	}
	if err := texture.ValidateSize(t.texture.Size()); err != nil {
		return StatusSkippedBadTexture
	}
	if len(t.control) < 2 {
		return StatusSkippedTooFewPoints
	}
	return StatusBuilt
}

func (t *Terrain) skip(status BuildStatus) BuildReport {
	t.stats.Skips++
	if status != t.lastSkip {
		t.log.Warn("rebuild skipped", zap.Stringer("reason", status))
		t.lastSkip = status
	}
	return BuildReport{ID: t.id, Status: status, Version: t.version}
}

// Rebuild regenerates all derived data when the version changed since the
// last successful build, then publishes a new Snapshot. Missing input skips
// the rebuild and keeps the previous snapshot. Rebuild never fails; surface
// errors are logged and reported.
func (t *Terrain) Rebuild(ctx BuildContext) BuildReport {
	if status := t.checkInputs(); status != StatusBuilt {
		return t.skip(status)
	}
	if t.version == t.builtVersion {
		return BuildReport{ID: t.id, Status: StatusUnchanged, Version: t.version}
	}

	s := t.settings
	texW, texH := t.texture.Size()
	thickness := resolveThickness(s.Thickness, texH)
	colliderThickness := resolveThickness(s.ColliderThickness, texH)

	if t.following == 0 {
		t.centerline = Subdivide(t.control, s.Density, s.Closed)
		t.stats.Interpolations++
	}
	if len(t.centerline) < 2 {
		return t.skip(StatusSkippedEmpty)
	}

	shifted := translate(t.centerline, s.Offset)
	ribbon := BuildRibbon(shifted, RibbonParams{
		Mode:      s.RenderMode,
		Thickness: thickness,
		Closed:    s.Closed,
		Density:   s.Density,
	})
	if len(ribbon.Vertices) == 0 {
		return t.skip(StatusSkippedEmpty)
	}
	if ribbon.DegradedJoins > 0 {
		t.log.Debug("parallel offset lines, using unmitered points", zap.Int("joins", ribbon.DegradedJoins))
	}

	u, v, w, h := t.texture.UVRect()
	atlas := UVRect{U: u, V: v, W: w, H: h}
	uv := UVParams{
		Mode:      s.UVMode,
		TexWidth:  float32(texW),
		TexHeight: float32(texH),
		Thickness: thickness,
		UpDownFix: s.UpDownFix,
	}

	var prevMesh *Mesh
	if prev := t.snapshot.Load(); prev != nil {
		prevMesh = &prev.Mesh
	}
	mirrored := !(t.scale.X*t.scale.Y > 0)
	mesh, parts := t.assembler.Assemble(ribbon.Vertices, t.centerline, mirrored, uv, atlas, prevMesh)
	t.stats.Triangulations = t.assembler.Triangulations

	snap := &Snapshot{
		Version:           t.version,
		Centerline:        slices.Clone(t.centerline),
		Ribbon:            ribbon.Vertices,
		Mesh:              mesh,
		Thickness:         thickness,
		ColliderThickness: colliderThickness,
		Position:          t.position,
		Scale:             t.scale,
	}

	if s.Collider {
		snap.Outline = ExtractOutline(t.control, t.centerline, OutlineParams{
			Mode:      s.RenderMode,
			Thickness: colliderThickness,
			Offset:    s.ColliderOffset,
			Closed:    s.Closed,
			Density:   s.Density,
		})
		t.stats.DegradeInterpolations += snap.Outline.Interpolations
		if snap.Outline.Degraded {
			fields := []zap.Field{zap.Int("density", snap.Outline.Density)}
			if ctx == ContextEdit {
				t.log.Warn("collider outline still self-intersects", fields...)
			} else {
				t.log.Debug("collider outline still self-intersects", fields...)
			}
		}
	}

	if s.Closed {
		fill, err := FillClosed(shifted, uv)
		if err != nil {
			t.log.Debug("no inner fill", zap.Error(err))
		} else {
			RemapUVs(fill.UVs, atlas)
			snap.Fill = &fill
		}
	}

	t.snapshot.Store(snap)
	t.builtVersion = t.version
	t.lastSkip = StatusBuilt
	t.stats.Rebuilds++

	if ctx != ContextRuntime {
		t.log.Debug("rebuilt",
			zap.Stringer("context", ctx),
			zap.Int("centerline", len(snap.Centerline)),
			zap.Int("vertices", mesh.VertexCount()),
			zap.Stringer("parts", parts),
		)
	}

	report := BuildReport{
		ID:       t.id,
		Status:   StatusBuilt,
		Version:  t.version,
		Parts:    parts,
		Degraded: snap.Outline.Degraded,
	}
	report.SurfaceErr = t.submit(snap, parts)
	return report
}

func (t *Terrain) submit(snap *Snapshot, parts Parts) error {
	var first error
	if t.meshSurface != nil && parts != PartNone {
		if err := t.meshSurface.SubmitMesh(snap.Mesh, parts); err != nil {
			t.log.Warn("mesh submission failed", zap.Error(err))
			first = err
		}
	}
	if t.colliderSurface != nil && t.settings.Collider {
		if err := t.colliderSurface.ApplyOutline(snap.Outline.Points); err != nil {
			t.log.Warn("collider update failed", zap.Error(err))
			if first == nil {
				first = err
			}
		}
	}
	return first
}

// DebugPrint logs texture dimensions and point counts.
func (t *Terrain) DebugPrint() {
	fields := []zap.Field{
		zap.Int("control_points", len(t.control)),
		zap.Int("centerline", len(t.centerline)),
		zap.Uint64("version", t.version),
		zap.Stringer("render_mode", t.settings.RenderMode),
		zap.Stringer("uv_mode", t.settings.UVMode),
	}
	if t.texture != nil {
		w, h := t.texture.Size()
		fields = append(fields, zap.Int("texture_width", w), zap.Int("texture_height", h))
	}
	if snap := t.Snapshot(); snap != nil {
		fields = append(fields,
			zap.Float32("thickness", snap.Thickness),
			zap.Int("ribbon", len(snap.Ribbon)),
			zap.Int("indices", len(snap.Mesh.Indices)),
			zap.Int("outline", len(snap.Outline.Points)),
		)
	}
	t.log.Info("terrain diagnostics", fields...)
}
