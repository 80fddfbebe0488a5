// Package viewer is the interactive terrain editor: an SDL2 window that
// rebuilds every terrain of a scene each frame and draws the results.
package viewer

import (
	"context"
	"fmt"
	"path/filepath"
	"reflect"
	"time"

	"github.com/sqweek/dialog"
	"github.com/veandco/go-sdl2/sdl"
	"go.uber.org/zap"

	"github.com/Faultbox/curvetex/internal/config"
	"github.com/Faultbox/curvetex/internal/curve"
	"github.com/Faultbox/curvetex/internal/input"
	"github.com/Faultbox/curvetex/internal/logger"
	"github.com/Faultbox/curvetex/internal/physics"
	"github.com/Faultbox/curvetex/internal/render"
	"github.com/Faultbox/curvetex/internal/scene"
	"github.com/Faultbox/curvetex/internal/texture"
	"github.com/Faultbox/curvetex/internal/window"
	m "github.com/Faultbox/curvetex/pkg/math"
)

var (
	colorCenterline = render.Color{1, 0.85, 0.2, 1}
	colorOutline    = render.Color{0.2, 1, 0.4, 1}
	colorControl    = render.Color{1, 0.3, 0.3, 1}
	colorFill       = render.Color{1, 1, 1, 0.6}
)

// terrainView is the GPU and physics side of one terrain.
type terrainView struct {
	mesh     *render.GPUMesh
	fill     *render.GPUMesh
	collider *physics.StaticCollider
	texture  uint32
	version  uint64
}

// Viewer owns the window, the renderer and the loaded scene.
type Viewer struct {
	cfg      *config.Config
	window   *window.Window
	renderer *render.Renderer
	input    *input.Input

	scenePath string
	scene     *scene.Scene
	editor    *Editor
	world     *physics.World
	views     map[curve.ID]*terrainView
	textures  map[string]uint32

	cursor      m.Vec2
	showOutline bool
	showCenter  bool
	running     bool

	reloads chan *scene.Document
	opens   chan string
	cancel  context.CancelFunc
	log     *zap.Logger
}

// New opens the window and loads the configured scene. A missing scene
// file starts an empty scene with one terrain.
func New(cfg *config.Config) (*Viewer, error) {
	v := &Viewer{
		cfg:         cfg,
		scenePath:   cfg.Scene.Path,
		views:       make(map[curve.ID]*terrainView),
		textures:    make(map[string]uint32),
		showOutline: true,
		showCenter:  true,
		reloads:     make(chan *scene.Document, 1),
		opens:       make(chan string, 1),
		log:         logger.Named("viewer"),
	}

	var err error
	v.window, err = window.New(window.Config{
		Title:      "curvetex",
		Width:      cfg.Viewer.Width,
		Height:     cfg.Viewer.Height,
		Fullscreen: cfg.Viewer.Fullscreen,
		VSync:      cfg.Viewer.VSync,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create window: %w", err)
	}

	width, height := v.window.Size()
	v.renderer, err = render.New(render.Config{Width: width, Height: height})
	if err != nil {
		v.window.Close()
		return nil, fmt.Errorf("failed to create renderer: %w", err)
	}
	v.renderer.Zoom = cfg.Viewer.Zoom
	v.input = input.New()

	doc, err := scene.Load(v.scenePath)
	if err != nil {
		v.log.Warn("starting with an empty scene", zap.String("path", v.scenePath), zap.Error(err))
		doc = v.emptyDocument()
	}
	if err := v.load(doc); err != nil {
		v.Close()
		return nil, err
	}

	if cfg.Scene.Watch {
		v.startWatcher()
	}
	return v, nil
}

func (v *Viewer) emptyDocument() *scene.Document {
	return &scene.Document{
		Version: scene.FormatVersion,
		Terrains: []scene.Terrain{{
			ID:            1,
			Name:          "terrain",
			Scale:         [2]float32{1, 1},
			ControlPoints: [][2]float32{{-300, 0}, {-100, 60}, {100, -40}, {300, 20}},
			Settings:      scene.SettingsFrom(v.cfg.Terrain.Settings()),
		}},
	}
}

func (v *Viewer) textureDir() string {
	if v.cfg.Scene.TextureDir != "" {
		return v.cfg.Scene.TextureDir
	}
	return filepath.Dir(v.scenePath)
}

// load replaces the current scene with doc.
func (v *Viewer) load(doc *scene.Document) error {
	s, err := scene.Build(doc, scene.FileLoader(v.textureDir()))
	if err != nil {
		return fmt.Errorf("building scene: %w", err)
	}

	v.dropViews()
	v.scene = s
	v.editor = NewEditor(s)
	v.world = physics.NewWorld(v.cfg.Physics.Options())

	for _, t := range s.Registry.All() {
		view := &terrainView{
			mesh:     render.NewGPUMesh(t.Name()),
			fill:     render.NewGPUMesh(t.Name() + ".fill"),
			collider: v.world.Collider(t.Name()),
		}
		if ref, ok := s.Textures[t.ID()]; ok {
			view.texture = v.uploadTexture(ref, t.Texture())
		}
		t.SetMeshSurface(view.mesh)
		t.SetColliderSurface(view.collider)
		v.views[t.ID()] = view
	}
	v.log.Info("scene loaded", zap.String("path", v.scenePath), zap.Int("terrains", s.Registry.Count()))
	return nil
}

func (v *Viewer) uploadTexture(ref string, tex curve.Texture) uint32 {
	if id, ok := v.textures[ref]; ok {
		return id
	}
	sprite, ok := tex.(*texture.Sprite)
	if !ok || sprite.Image == nil {
		return 0
	}
	id := render.UploadTexture(sprite.Image)
	v.textures[ref] = id
	return id
}

func (v *Viewer) dropViews() {
	for id, view := range v.views {
		view.mesh.Delete()
		view.fill.Delete()
		delete(v.views, id)
	}
	for ref, tex := range v.textures {
		render.DeleteTexture(tex)
		delete(v.textures, ref)
	}
}

func (v *Viewer) startWatcher() {
	w, err := scene.NewWatcher(v.scenePath)
	if err != nil {
		v.log.Warn("scene watching disabled", zap.Error(err))
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	v.cancel = cancel
	go func() {
		_ = w.Run(ctx, func(doc *scene.Document, err error) {
			if err != nil {
				return
			}
			select {
			case v.reloads <- doc:
			default:
			}
		})
	}()
}

// Run drives the frame loop until the window closes or Escape is pressed.
func (v *Viewer) Run() error {
	v.running = true
	frameCount := 0
	fpsTimer := time.Now()

	var frameBudget time.Duration
	if v.cfg.Viewer.FPSLimit > 0 {
		frameBudget = time.Second / time.Duration(v.cfg.Viewer.FPSLimit)
	}

	v.log.Info("starting frame loop")
	for v.running {
		start := time.Now()
		if v.input.Update() {
			break
		}
		for _, e := range v.input.Events() {
			v.handle(e)
		}

		select {
		case path := <-v.opens:
			v.open(path)
		case doc := <-v.reloads:
			if !reflect.DeepEqual(doc, v.scene.Document()) {
				if err := v.load(doc); err != nil {
					v.log.Warn("reload rejected", zap.Error(err))
				}
			}
		default:
		}

		v.update()
		v.draw()
		v.window.SwapBuffers()

		frameCount++
		if time.Since(fpsTimer) >= time.Second {
			v.log.Debug("fps", zap.Int("count", frameCount))
			v.updateTitle(frameCount)
			frameCount = 0
			fpsTimer = time.Now()
		}
		if frameBudget > 0 {
			if rest := frameBudget - time.Since(start); rest > 0 {
				time.Sleep(rest)
			}
		}
	}
	return nil
}

func (v *Viewer) updateTitle(fps int) {
	title := fmt.Sprintf("curvetex - %d fps", fps)
	if t := v.editor.Selected(); t != nil {
		s := t.Settings()
		title = fmt.Sprintf("curvetex - %s [%s, %s, density %d] - %d fps", t.Name(), s.RenderMode, s.UVMode, s.Density, fps)
	}
	if hover := describeHover(v.world, v.cursor, DefaultHoverRadius/v.renderer.Zoom); hover != "" {
		title += " - " + hover
	}
	v.window.SetTitle(title)
}

func (v *Viewer) handle(e input.Event) {
	switch e.Type {
	case input.EventWindowResize:
		v.renderer.Resize(e.Width, e.Height)

	case input.EventMouseDown:
		p := v.renderer.ScreenToWorld(e.MouseX, e.MouseY)
		switch e.Button {
		case sdl.BUTTON_LEFT:
			if !v.editor.BeginDrag(p) {
				v.report("insert point", v.editor.InsertPoint(p))
			}
		case sdl.BUTTON_RIGHT:
			_, err := v.editor.DeletePoint(p)
			v.report("delete point", err)
		}

	case input.EventMouseMove:
		v.cursor = v.renderer.ScreenToWorld(e.MouseX, e.MouseY)
		if v.editor.Dragging() {
			v.report("move point", v.editor.Drag(v.renderer.ScreenToWorld(e.MouseX, e.MouseY)))
		}

	case input.EventMouseUp:
		v.editor.EndDrag()

	case input.EventWheel:
		zoom := v.renderer.Zoom * (1 + 0.1*float32(e.Wheel))
		v.renderer.Zoom = min(max(zoom, 0.05), 20)

	case input.EventKeyDown:
		v.handleKey(e)
	}
}

func (v *Viewer) handleKey(e input.Event) {
	switch e.Key {
	case sdl.SCANCODE_ESCAPE:
		v.running = false
	case sdl.SCANCODE_S:
		if e.Ctrl {
			v.save()
		}
	case sdl.SCANCODE_R:
		v.editor.CycleRenderMode()
	case sdl.SCANCODE_U:
		v.editor.CycleUVMode()
	case sdl.SCANCODE_C:
		v.report("toggle closed", v.editor.ToggleClosed())
	case sdl.SCANCODE_EQUALS, sdl.SCANCODE_KP_PLUS:
		v.report("density", v.editor.AdjustDensity(2))
	case sdl.SCANCODE_MINUS, sdl.SCANCODE_KP_MINUS:
		v.report("density", v.editor.AdjustDensity(-2))
	case sdl.SCANCODE_TAB:
		v.editor.NextTerrain()
	case sdl.SCANCODE_O:
		if e.Ctrl {
			v.openDialog()
			break
		}
		v.showOutline = !v.showOutline
	case sdl.SCANCODE_L:
		v.showCenter = !v.showCenter
	case sdl.SCANCODE_D:
		if t := v.editor.Selected(); t != nil {
			t.DebugPrint()
		}
	}
}

// openDialog asks for a scene file without blocking the frame loop. The
// chosen path is loaded on the main thread.
func (v *Viewer) openDialog() {
	go func() {
		path, err := dialog.File().
			Filter("Scenes", "yaml", "yml", "toml").
			Filter("All Files", "*").
			Title("Open Scene").
			Load()
		if err != nil {
			if err != dialog.ErrCancelled {
				v.log.Warn("file dialog", zap.Error(err))
			}
			return
		}
		select {
		case v.opens <- path:
		default:
		}
	}()
}

// open switches to the scene at path and moves the watcher to it.
func (v *Viewer) open(path string) {
	doc, err := scene.Load(path)
	if err != nil {
		v.log.Warn("open scene", zap.String("path", path), zap.Error(err))
		return
	}
	prev := v.scenePath
	v.scenePath = path
	if err := v.load(doc); err != nil {
		v.scenePath = prev
		v.log.Warn("open scene", zap.String("path", path), zap.Error(err))
		return
	}
	v.log.Info("scene opened", zap.String("path", path))

	if v.cancel != nil {
		v.cancel()
		v.cancel = nil
	}
	// drop a reload still queued from the old file
	select {
	case <-v.reloads:
	default:
	}
	if v.cfg.Scene.Watch {
		v.startWatcher()
	}
}

func (v *Viewer) report(action string, err error) {
	if err != nil {
		v.log.Warn(action+" rejected", zap.Error(err))
	}
}

func (v *Viewer) save() {
	if err := scene.Save(v.scenePath, v.scene.Document()); err != nil {
		v.log.Error("saving scene", zap.String("path", v.scenePath), zap.Error(err))
		return
	}
	v.log.Info("scene saved", zap.String("path", v.scenePath))
}

func (v *Viewer) update() {
	for _, report := range v.scene.Registry.Tick(curve.ContextEdit) {
		if report.SurfaceErr != nil {
			v.log.Warn("surface update failed", zap.Uint32("terrain", uint32(report.ID)), zap.Error(report.SurfaceErr))
		}
	}
	for _, t := range v.scene.Registry.All() {
		view := v.views[t.ID()]
		snap := t.Snapshot()
		if view == nil || snap == nil || snap.Version == view.version {
			continue
		}
		view.version = snap.Version
		view.collider.SetTransform(snap.Position, snap.Scale)
		submitFill(view.fill, t, snap, v.log)
	}
}

// submitFill uploads the interior of a closed loop, or an empty mesh once the
// loop is opened again.
func submitFill(surface curve.MeshSurface, t *curve.Terrain, snap *curve.Snapshot, log *zap.Logger) {
	fill := curve.Mesh{}
	if snap.Fill != nil {
		fill = *snap.Fill
	}
	if err := surface.SubmitMesh(fill, curve.PartAll); err != nil {
		log.Warn("fill update failed", zap.String("terrain", t.Name()), zap.Error(err))
	}
}

func (v *Viewer) draw() {
	v.renderer.Begin()
	for _, t := range v.scene.Registry.All() {
		view := v.views[t.ID()]
		snap := t.Snapshot()
		if view == nil || snap == nil {
			continue
		}
		world := snap.World()
		v.renderer.DrawMesh(view.fill, world, view.texture, colorFill)
		v.renderer.DrawMesh(view.mesh, world, view.texture, render.White)
		if v.showCenter {
			v.renderer.DrawLines(snap.Centerline, world, colorCenterline, false, false)
		}
		if v.showOutline {
			v.renderer.DrawLines(snap.Outline.Points, world, colorOutline, true, false)
		}
	}
	if t := v.editor.Selected(); t != nil {
		world := m.TRS2D(t.Position(), 0, t.Scale())
		v.renderer.DrawLines(t.ControlPoints(), world, colorControl, false, true)
	}
}

// Close releases all resources.
func (v *Viewer) Close() {
	v.log.Info("closing viewer")
	if v.cancel != nil {
		v.cancel()
	}
	v.dropViews()
	if v.renderer != nil {
		v.renderer.Close()
	}
	if v.window != nil {
		v.window.Close()
	}
}
