package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/Faultbox/curvetex/internal/curve"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	// Viewer defaults
	if cfg.Viewer.Width != 1280 {
		t.Errorf("expected width 1280, got %d", cfg.Viewer.Width)
	}
	if cfg.Viewer.Height != 720 {
		t.Errorf("expected height 720, got %d", cfg.Viewer.Height)
	}
	if cfg.Viewer.Fullscreen {
		t.Error("expected fullscreen to be false by default")
	}
	if !cfg.Viewer.VSync {
		t.Error("expected vsync to be true by default")
	}

	// Terrain defaults follow the curve package
	if cfg.Terrain.Density != 16 {
		t.Errorf("expected density 16, got %d", cfg.Terrain.Density)
	}
	if cfg.Terrain.RenderMode != curve.RenderVertical {
		t.Errorf("expected vertical render mode, got %s", cfg.Terrain.RenderMode)
	}
	if !cfg.Terrain.Collider {
		t.Error("expected collider to be enabled by default")
	}

	if cfg.Scene.Path != "scene.yaml" || !cfg.Scene.Watch {
		t.Errorf("unexpected scene defaults %+v", cfg.Scene)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("expected log level 'info', got %s", cfg.Logging.Level)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("expected defaults to validate, got %v", err)
	}
}

func TestLoadFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
viewer:
  width: 1920
  height: 1080
  fullscreen: true
  vsync: false
  zoom: 2

terrain:
  density: 8
  thickness: 48
  render_mode: tangent-center
  uv_mode: normalized
  collider: false

physics:
  friction: 0.3
  segment_radius: 2

scene:
  path: "levels/hills.toml"
  watch: false

logging:
  level: "debug"
  log_file: "curvetex.log"
`

	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Viewer.Width != 1920 || cfg.Viewer.Height != 1080 {
		t.Errorf("expected 1920x1080, got %dx%d", cfg.Viewer.Width, cfg.Viewer.Height)
	}
	if !cfg.Viewer.Fullscreen {
		t.Error("expected fullscreen to be true")
	}
	if cfg.Viewer.Zoom != 2 {
		t.Errorf("expected zoom 2, got %v", cfg.Viewer.Zoom)
	}

	s := cfg.Terrain.Settings()
	if s.Density != 8 || s.Thickness != 48 {
		t.Errorf("expected density 8 and thickness 48, got %d and %v", s.Density, s.Thickness)
	}
	if s.RenderMode != curve.RenderTangentCenter {
		t.Errorf("expected tangent-center, got %s", s.RenderMode)
	}
	if s.UVMode != curve.UVNormalized {
		t.Errorf("expected normalized uvs, got %s", s.UVMode)
	}
	if s.Collider {
		t.Error("expected collider to be disabled")
	}

	opts := cfg.Physics.Options()
	if opts.Friction != 0.3 || opts.Radius != 2 {
		t.Errorf("unexpected physics options %+v", opts)
	}
	if opts.Elasticity != Default().Physics.Elasticity {
		t.Errorf("expected default elasticity to survive, got %v", opts.Elasticity)
	}

	if cfg.Scene.Path != "levels/hills.toml" || cfg.Scene.Watch {
		t.Errorf("unexpected scene config %+v", cfg.Scene)
	}
	if cfg.Logging.LogFile != "curvetex.log" {
		t.Errorf("expected log file 'curvetex.log', got %s", cfg.Logging.LogFile)
	}
}

func TestLoadFromFileInvalid(t *testing.T) {
	tmpDir := t.TempDir()

	cases := map[string]string{
		"syntax.yaml": "viewer:\n  width: not a number\n  invalid syntax here\n",
		"mode.yaml":   "terrain:\n  render_mode: diagonal\n",
	}
	for name, content := range cases {
		configPath := filepath.Join(tmpDir, name)
		if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}
		if err := loadFromFile(Default(), configPath); err == nil {
			t.Errorf("%s: expected error, got nil", name)
		}
	}
}

func TestLoadFromFileMissing(t *testing.T) {
	cfg := Default()
	err := loadFromFile(cfg, "/nonexistent/path/config.yaml")
	if err == nil {
		t.Error("expected error loading missing file, got nil")
	}
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.Terrain.Density = 7
	if err := cfg.Validate(); !errors.Is(err, curve.ErrInvalidDensity) {
		t.Errorf("expected invalid density, got %v", err)
	}

	cfg = Default()
	cfg.Viewer.Zoom = 0
	if err := cfg.Validate(); err == nil {
		t.Error("expected zero zoom to be rejected")
	}

	cfg = Default()
	cfg.Viewer.Height = -1
	if err := cfg.Validate(); err == nil {
		t.Error("expected negative height to be rejected")
	}

	cfg = Default()
	cfg.Logging.Level = "trace"
	if err := cfg.Validate(); err == nil {
		t.Error("expected unknown log level to be rejected")
	}
}

func TestConfigDir(t *testing.T) {
	dir := ConfigDir()
	if dir == "" {
		t.Error("ConfigDir returned empty string")
	}
	if !filepath.IsAbs(dir) {
		t.Errorf("ConfigDir should return absolute path, got %s", dir)
	}
}

func TestFindConfigFile(t *testing.T) {
	origDir, _ := os.Getwd()
	defer os.Chdir(origDir)

	tmpDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(tmpDir, "xdg"))
	os.Chdir(tmpDir)

	if path := findConfigFile(); path != "" {
		t.Errorf("expected empty path when no config exists, got %s", path)
	}

	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte("viewer:\n  width: 800\n"), 0644); err != nil {
		t.Fatalf("failed to create test config: %v", err)
	}
	if path := findConfigFile(); path == "" {
		t.Error("expected to find config.yaml in current directory")
	}
}

func TestApplyFlags(t *testing.T) {
	tests := []struct {
		name     string
		setup    func()
		verify   func(*Config)
		teardown func()
	}{
		{
			name:  "debug flag",
			setup: func() { *flagDebug = true },
			verify: func(cfg *Config) {
				if cfg.Logging.Level != "debug" {
					t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
				}
			},
			teardown: func() { *flagDebug = false },
		},
		{
			name:  "scene flag",
			setup: func() { *flagScene = "caves.toml" },
			verify: func(cfg *Config) {
				if cfg.Scene.Path != "caves.toml" {
					t.Errorf("expected scene caves.toml, got %s", cfg.Scene.Path)
				}
			},
			teardown: func() { *flagScene = "" },
		},
		{
			name:  "windowed flag",
			setup: func() { *flagWindowed = true },
			verify: func(cfg *Config) {
				if cfg.Viewer.Fullscreen {
					t.Error("expected fullscreen to be false with windowed flag")
				}
			},
			teardown: func() { *flagWindowed = false },
		},
		{
			name:  "fullscreen flag",
			setup: func() { *flagFullscreen = true },
			verify: func(cfg *Config) {
				if !cfg.Viewer.Fullscreen {
					t.Error("expected fullscreen to be true with fullscreen flag")
				}
			},
			teardown: func() { *flagFullscreen = false },
		},
		{
			name: "width and height flags",
			setup: func() {
				*flagWidth = 2560
				*flagHeight = 1440
			},
			verify: func(cfg *Config) {
				if cfg.Viewer.Width != 2560 || cfg.Viewer.Height != 1440 {
					t.Errorf("expected 2560x1440, got %dx%d", cfg.Viewer.Width, cfg.Viewer.Height)
				}
			},
			teardown: func() {
				*flagWidth = 0
				*flagHeight = 0
			},
		},
		{
			name:  "zoom flag",
			setup: func() { *flagZoom = 2.5 },
			verify: func(cfg *Config) {
				if cfg.Viewer.Zoom != 2.5 {
					t.Errorf("expected zoom 2.5, got %v", cfg.Viewer.Zoom)
				}
			},
			teardown: func() { *flagZoom = 0 },
		},
		{
			name:  "no-watch flag",
			setup: func() { *flagNoWatch = true },
			verify: func(cfg *Config) {
				if cfg.Scene.Watch {
					t.Error("expected watching to be disabled")
				}
			},
			teardown: func() { *flagNoWatch = false },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setup()
			defer tt.teardown()

			cfg := Default()
			applyFlags(cfg)
			tt.verify(cfg)
		})
	}
}

func TestLoadPriority(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
viewer:
  width: 1600
  height: 900
`
	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	*flagConfig = configPath
	*flagWidth = 1920
	defer func() {
		*flagConfig = ""
		*flagWidth = 0
	}()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	// Width from flag, height from file
	if cfg.Viewer.Width != 1920 {
		t.Errorf("expected width 1920 from flag, got %d", cfg.Viewer.Width)
	}
	if cfg.Viewer.Height != 900 {
		t.Errorf("expected height 900 from file, got %d", cfg.Viewer.Height)
	}
}

func TestSaveTo(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := Default()
	cfg.Terrain.RenderMode = curve.RenderTangent
	cfg.Scene.Path = "saved.yaml"
	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("failed to save config: %v", err)
	}

	loaded := Default()
	if err := loadFromFile(loaded, path); err != nil {
		t.Fatalf("failed to reload config: %v", err)
	}
	if loaded.Terrain.RenderMode != curve.RenderTangent {
		t.Errorf("expected tangent render mode, got %s", loaded.Terrain.RenderMode)
	}
	if loaded.Scene.Path != "saved.yaml" {
		t.Errorf("expected scene saved.yaml, got %s", loaded.Scene.Path)
	}

	entries, _ := os.ReadDir(filepath.Dir(path))
	if len(entries) != 1 {
		t.Errorf("expected only config.yaml in directory, got %d entries", len(entries))
	}
}
