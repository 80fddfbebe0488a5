// Package config handles viewer configuration loading and management.
package config

import (
	"github.com/Faultbox/curvetex/internal/curve"
	"github.com/Faultbox/curvetex/internal/physics"
)

// Config holds all viewer settings.
type Config struct {
	Viewer  ViewerConfig  `yaml:"viewer"`
	Terrain TerrainConfig `yaml:"terrain"`
	Physics PhysicsConfig `yaml:"physics"`
	Scene   SceneConfig   `yaml:"scene"`
	Logging LoggingConfig `yaml:"logging"`
}

// ViewerConfig holds window and display settings.
type ViewerConfig struct {
	Width      int     `yaml:"width"`
	Height     int     `yaml:"height"`
	Fullscreen bool    `yaml:"fullscreen"`
	VSync      bool    `yaml:"vsync"`
	FPSLimit   int     `yaml:"fps_limit"`
	Zoom       float32 `yaml:"zoom"`
}

// TerrainConfig holds the settings given to newly created terrains.
type TerrainConfig struct {
	Density           int              `yaml:"density"`
	Thickness         float32          `yaml:"thickness"`
	ColliderThickness float32          `yaml:"collider_thickness"`
	RenderMode        curve.RenderMode `yaml:"render_mode"`
	UVMode            curve.UVMode     `yaml:"uv_mode"`
	Collider          bool             `yaml:"collider"`
}

// PhysicsConfig holds collider segment properties.
type PhysicsConfig struct {
	Friction      float64 `yaml:"friction"`
	Elasticity    float64 `yaml:"elasticity"`
	SegmentRadius float64 `yaml:"segment_radius"`
}

// SceneConfig holds the scene file settings.
type SceneConfig struct {
	Path       string `yaml:"path"`
	Watch      bool   `yaml:"watch"`
	TextureDir string `yaml:"texture_dir"` // Empty means the scene file's directory
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	terrain := curve.DefaultSettings()
	phys := physics.DefaultOptions()
	return &Config{
		Viewer: ViewerConfig{
			Width:      1280,
			Height:     720,
			Fullscreen: false,
			VSync:      true,
			FPSLimit:   0,
			Zoom:       1,
		},
		Terrain: TerrainConfig{
			Density:           terrain.Density,
			Thickness:         terrain.Thickness,
			ColliderThickness: terrain.ColliderThickness,
			RenderMode:        terrain.RenderMode,
			UVMode:            terrain.UVMode,
			Collider:          terrain.Collider,
		},
		Physics: PhysicsConfig{
			Friction:      phys.Friction,
			Elasticity:    phys.Elasticity,
			SegmentRadius: phys.Radius,
		},
		Scene: SceneConfig{
			Path:  "scene.yaml",
			Watch: true,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// Settings returns terrain settings built from the configured defaults.
func (t TerrainConfig) Settings() curve.Settings {
	s := curve.DefaultSettings()
	s.Density = t.Density
	s.Thickness = t.Thickness
	s.ColliderThickness = t.ColliderThickness
	s.RenderMode = t.RenderMode
	s.UVMode = t.UVMode
	s.Collider = t.Collider
	return s
}

// Options returns the collider options.
func (p PhysicsConfig) Options() physics.Options {
	return physics.Options{
		Friction:   p.Friction,
		Elasticity: p.Elasticity,
		Radius:     p.SegmentRadius,
	}
}
