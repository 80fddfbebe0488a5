// curvetool is a CLI utility for inspecting and checking terrain scenes.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/Faultbox/curvetex/internal/curve"
	"github.com/Faultbox/curvetex/internal/logger"
	"github.com/Faultbox/curvetex/internal/physics"
	"github.com/Faultbox/curvetex/internal/render"
	"github.com/Faultbox/curvetex/internal/scene"
	m "github.com/Faultbox/curvetex/pkg/math"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "info":
		cmdInfo(args)
	case "build", "b":
		cmdBuild(args)
	case "validate", "check":
		cmdValidate(args)
	case "outline":
		cmdOutline(args)
	case "watch":
		cmdWatch(args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`curvetool - terrain scene utility

Usage:
  curvetool <command> [options] <scene>

Commands:
  info <scene>                     Show terrains and their settings
  build [-dump] <scene>            Run one rebuild and report build statuses
  validate <scene>                 Check closed terrains can form a loop
  outline [-step N] <scene>        Print collider outlines and sample ground height
  watch <scene>                    Rebuild every time the scene file changes

Scenes are .yaml, .yml or .toml files.

Examples:
  curvetool info levels/hills.yaml
  curvetool build -dump levels/hills.yaml
  curvetool outline -step 50 levels/hills.toml`)
}

func fail(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}

// loadScene reads and builds a scene. Only texture headers are read, so
// large textures are never decoded.
func loadScene(path string) *scene.Scene {
	doc, err := scene.Load(path)
	if err != nil {
		fail("%v", err)
	}
	s, err := scene.Build(doc, scene.HeaderLoader(filepath.Dir(path)))
	if err != nil {
		fail("%v", err)
	}
	return s
}

func sceneArg(fs *flag.FlagSet, usage string) string {
	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: "+usage)
		os.Exit(1)
	}
	return fs.Arg(0)
}

func initLogger(debug bool) {
	level := "warn"
	if debug {
		level = "debug"
	}
	if err := logger.Init(level, ""); err != nil {
		fail("%v", err)
	}
}

func cmdInfo(args []string) {
	fs := flag.NewFlagSet("info", flag.ExitOnError)
	debug := fs.Bool("debug", false, "Enable debug logging")
	fs.Parse(args)
	path := sceneArg(fs, "curvetool info <scene>")
	initLogger(*debug)
	defer logger.Sync()

	s := loadScene(path)
	all := s.Registry.All()

	fmt.Printf("Scene: %s\n", path)
	fmt.Printf("Terrains: %d\n\n", len(all))
	for _, t := range all {
		st := t.Settings()
		fmt.Printf("[%d] %s\n", t.ID(), t.Name())
		if target, ok := t.Following(); ok {
			fmt.Printf("  follows:     %d\n", target)
		}
		fmt.Printf("  points:      %d\n", len(t.ControlPoints()))
		fmt.Printf("  texture:     %s\n", textureInfo(s, t))
		fmt.Printf("  position:    (%.1f, %.1f)  scale: (%.2f, %.2f)\n",
			t.Position().X, t.Position().Y, t.Scale().X, t.Scale().Y)
		fmt.Printf("  mode:        %s, uv %s, density %d\n", st.RenderMode, st.UVMode, st.Density)
		fmt.Printf("  thickness:   %.1f  collider: %.1f\n", st.Thickness, st.ColliderThickness)
		fmt.Printf("  closed:      %v  collider enabled: %v\n\n", st.Closed, st.Collider)
	}
}

func textureInfo(s *scene.Scene, t *curve.Terrain) string {
	ref := s.Textures[t.ID()]
	tex := t.Texture()
	switch {
	case ref == "":
		return "(none)"
	case tex == nil:
		return ref + " (failed to load)"
	}
	w, h := tex.Size()
	return fmt.Sprintf("%s %dx%d", ref, w, h)
}

func cmdBuild(args []string) {
	fs := flag.NewFlagSet("build", flag.ExitOnError)
	dump := fs.Bool("dump", false, "Print interleaved vertex data")
	debug := fs.Bool("debug", false, "Enable debug logging")
	fs.Parse(args)
	path := sceneArg(fs, "curvetool build [-dump] <scene>")
	initLogger(*debug)
	defer logger.Sync()

	s := loadScene(path)
	failed := false
	for _, r := range s.Registry.Tick(curve.ContextEdit) {
		t := s.Registry.Get(r.ID)
		snap := t.Snapshot()
		fmt.Printf("%-20s %-40s v%d", t.Name(), r.Status, r.Version)
		if r.Status == curve.StatusBuilt {
			fmt.Printf("  verts=%d tris=%d outline=%d", snap.Mesh.VertexCount(), len(snap.Mesh.Indices)/3, len(snap.Outline.Points))
		}
		if r.Degraded {
			fmt.Print("  DEGRADED")
		}
		fmt.Println()
		if r.Status.Skipped() {
			failed = true
		}

		if *dump && snap != nil && !snap.Mesh.Empty() {
			dumpMesh(snap)
		}
	}
	if failed {
		os.Exit(2)
	}
}

func dumpMesh(snap *curve.Snapshot) {
	data := render.Interleave(snap.Mesh, snap.World(), render.White)
	for i := 0; i < len(data); i += render.Stride {
		v := data[i : i+render.Stride]
		fmt.Printf("  %4d  pos(%8.2f %8.2f)  uv(%6.3f %6.3f)\n", i/render.Stride, v[0], v[1], v[7], v[8])
	}
	fmt.Printf("  indices: %v\n", snap.Mesh.Indices)
}

func cmdValidate(args []string) {
	fs := flag.NewFlagSet("validate", flag.ExitOnError)
	fs.Parse(args)
	path := sceneArg(fs, "curvetool validate <scene>")
	initLogger(false)
	defer logger.Sync()

	// Build rejects scenes with invalid closed loops, so read the document
	// directly and check every terrain that asks to be closed.
	doc, err := scene.Load(path)
	if err != nil {
		fail("%v", err)
	}

	bad := 0
	for _, td := range doc.Terrains {
		if !td.Settings.Closed {
			continue
		}
		if err := curve.ValidateClosed(sceneTerrainPoints(td)).Err(); err != nil {
			fmt.Printf("FAIL  %s: %v\n", td.Name, err)
			bad++
			continue
		}
		fmt.Printf("ok    %s\n", td.Name)
	}
	if bad > 0 {
		fmt.Printf("\n%d closed terrain(s) invalid\n", bad)
		os.Exit(2)
	}
}

func sceneTerrainPoints(td scene.Terrain) []m.Vec2 {
	pts := make([]m.Vec2, len(td.ControlPoints))
	for i, p := range td.ControlPoints {
		pts[i] = m.V2(p[0], p[1])
	}
	return pts
}

func cmdOutline(args []string) {
	fs := flag.NewFlagSet("outline", flag.ExitOnError)
	step := fs.Float64("step", 100, "Ground sampling step in world units")
	points := fs.Bool("points", false, "Print every outline point")
	fs.Parse(args)
	path := sceneArg(fs, "curvetool outline [-step N] [-points] <scene>")
	initLogger(false)
	defer logger.Sync()

	s := loadScene(path)
	world := physics.NewWorld(physics.DefaultOptions())
	for _, t := range s.Registry.All() {
		t.SetColliderSurface(world.Collider(t.Name()))
	}

	var minX, maxX, minY, maxY float32
	first := true
	for _, r := range s.Registry.Tick(curve.ContextRuntime) {
		t := s.Registry.Get(r.ID)
		snap := t.Snapshot()
		if snap == nil || len(snap.Outline.Points) == 0 {
			fmt.Printf("%s: no outline (%s)\n", t.Name(), r.Status)
			continue
		}
		c := world.Collider(t.Name())
		c.SetTransform(snap.Position, snap.Scale)

		o := snap.Outline
		fmt.Printf("%s: %d points, density %d, %d segments", t.Name(), len(o.Points), o.Density, c.Segments())
		if o.Degraded {
			fmt.Print(", degraded")
		}
		fmt.Println()

		xf := snap.World()
		for _, p := range o.Points {
			w := xf.TransformPoint2(p)
			if *points {
				fmt.Printf("  (%.2f, %.2f)\n", w[0], w[1])
			}
			if first {
				minX, maxX, minY, maxY = w[0], w[0], w[1], w[1]
				first = false
			}
			minX, maxX = min(minX, w[0]), max(maxX, w[0])
			minY, maxY = min(minY, w[1]), max(maxY, w[1])
		}
	}
	if first || *step <= 0 {
		return
	}

	fmt.Printf("\nGround height (%d segments):\n", world.Segments())
	var b strings.Builder
	for x := minX; x <= maxX; x += float32(*step) {
		y, ok := world.GroundAt(x, maxY+1, minY-1)
		if ok {
			fmt.Fprintf(&b, "  x=%8.1f  y=%8.2f\n", x, y)
		} else {
			fmt.Fprintf(&b, "  x=%8.1f  -\n", x)
		}
	}
	fmt.Print(b.String())
}

func cmdWatch(args []string) {
	fs := flag.NewFlagSet("watch", flag.ExitOnError)
	debug := fs.Bool("debug", false, "Enable debug logging")
	fs.Parse(args)
	path := sceneArg(fs, "curvetool watch <scene>")
	initLogger(*debug)
	defer logger.Sync()

	w, err := scene.NewWatcher(path)
	if err != nil {
		fail("%v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Printf("Watching %s (Ctrl+C to stop)\n", path)
	err = w.Run(ctx, func(doc *scene.Document, err error) {
		if err != nil {
			fmt.Printf("reload failed: %v\n", err)
			return
		}
		s, err := scene.Build(doc, scene.HeaderLoader(filepath.Dir(path)))
		if err != nil {
			fmt.Printf("build failed: %v\n", err)
			return
		}
		built, skipped := 0, 0
		for _, r := range s.Registry.Tick(curve.ContextEdit) {
			if r.Status.Skipped() {
				skipped++
				fmt.Printf("  %s: %s\n", s.Registry.Get(r.ID).Name(), r.Status)
				continue
			}
			built++
		}
		fmt.Printf("reloaded: %d built, %d skipped\n", built, skipped)
	})
	if err != nil && ctx.Err() == nil {
		fail("%v", err)
	}
}
