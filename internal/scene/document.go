// Package scene reads and writes terrain layouts and turns them into a
// curve registry.
//
// A document stores only what a user authored: control points, settings,
// texture references, transforms and follow links. Centerlines, meshes and
// outlines are always rebuilt after loading.
package scene

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/Faultbox/curvetex/internal/curve"
	m "github.com/Faultbox/curvetex/pkg/math"
)

// FormatVersion is written to every saved document.
const FormatVersion = 1

// ErrUnknownFormat is returned for files that are neither YAML nor TOML.
var ErrUnknownFormat = errors.New("unknown scene format")

// Format is a document encoding.
type Format int

const (
	FormatYAML Format = iota
	FormatTOML
)

func (f Format) String() string {
	if f == FormatTOML {
		return "toml"
	}
	return "yaml"
}

// FormatFor picks the encoding from a file extension.
func FormatFor(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	}
	return 0, fmt.Errorf("%s: %w", path, ErrUnknownFormat)
}

// Document is a persisted scene.
type Document struct {
	Version  int       `yaml:"version" toml:"version"`
	Terrains []Terrain `yaml:"terrains" toml:"terrains"`
}

// Terrain is one persisted terrain.
type Terrain struct {
	ID            uint32       `yaml:"id" toml:"id"`
	Name          string       `yaml:"name" toml:"name"`
	Texture       string       `yaml:"texture,omitempty" toml:"texture,omitempty"`
	Position      [2]float32   `yaml:"position,flow" toml:"position"`
	Scale         [2]float32   `yaml:"scale,flow" toml:"scale"`
	ControlPoints [][2]float32 `yaml:"control_points,flow" toml:"control_points"`
	Settings      Settings     `yaml:"settings" toml:"settings"`
	Follow        uint32       `yaml:"follow,omitempty" toml:"follow,omitempty"`
}

// Settings mirrors curve.Settings with stable key names.
type Settings struct {
	Density           int              `yaml:"density" toml:"density"`
	Thickness         float32          `yaml:"thickness" toml:"thickness"`
	ColliderThickness float32          `yaml:"collider_thickness" toml:"collider_thickness"`
	RenderMode        curve.RenderMode `yaml:"render_mode" toml:"render_mode"`
	UVMode            curve.UVMode     `yaml:"uv_mode" toml:"uv_mode"`
	Closed            bool             `yaml:"closed" toml:"closed"`
	Offset            [2]float32       `yaml:"offset,flow" toml:"offset"`
	ColliderOffset    [2]float32       `yaml:"collider_offset,flow" toml:"collider_offset"`
	UpDownFix         bool             `yaml:"up_down_fix" toml:"up_down_fix"`
	Collider          bool             `yaml:"collider" toml:"collider"`
	SortX             bool             `yaml:"sort_x" toml:"sort_x"`
}

// SettingsFrom converts terrain settings for persistence.
func SettingsFrom(s curve.Settings) Settings {
	return Settings{
		Density:           s.Density,
		Thickness:         s.Thickness,
		ColliderThickness: s.ColliderThickness,
		RenderMode:        s.RenderMode,
		UVMode:            s.UVMode,
		Closed:            s.Closed,
		Offset:            pair(s.Offset),
		ColliderOffset:    pair(s.ColliderOffset),
		UpDownFix:         s.UpDownFix,
		Collider:          s.Collider,
		SortX:             s.SortX,
	}
}

// Curve converts persisted settings back to terrain settings.
func (s Settings) Curve() curve.Settings {
	return curve.Settings{
		Density:           s.Density,
		Thickness:         s.Thickness,
		ColliderThickness: s.ColliderThickness,
		RenderMode:        s.RenderMode,
		UVMode:            s.UVMode,
		Closed:            s.Closed,
		Offset:            vec(s.Offset),
		ColliderOffset:    vec(s.ColliderOffset),
		UpDownFix:         s.UpDownFix,
		Collider:          s.Collider,
		SortX:             s.SortX,
	}
}

// Decode parses a document. Terrains missing a settings block get the
// terrain defaults and a missing scale becomes (1, 1).
func Decode(data []byte, format Format) (*Document, error) {
	var raw struct {
		Version  int          `yaml:"version" toml:"version"`
		Terrains []rawTerrain `yaml:"terrains" toml:"terrains"`
	}
	var err error
	switch format {
	case FormatTOML:
		err = toml.Unmarshal(data, &raw)
	default:
		err = yaml.Unmarshal(data, &raw)
	}
	if err != nil {
		return nil, fmt.Errorf("decoding %s scene: %w", format, err)
	}
	if raw.Version > FormatVersion {
		return nil, fmt.Errorf("scene version %d is newer than supported version %d", raw.Version, FormatVersion)
	}

	doc := &Document{Version: raw.Version, Terrains: make([]Terrain, 0, len(raw.Terrains))}
	for _, rt := range raw.Terrains {
		doc.Terrains = append(doc.Terrains, rt.resolve())
	}
	return doc, nil
}

// rawTerrain decodes settings through a pointer so a missing block can be
// told apart from an explicit one.
type rawTerrain struct {
	ID            uint32       `yaml:"id" toml:"id"`
	Name          string       `yaml:"name" toml:"name"`
	Texture       string       `yaml:"texture" toml:"texture"`
	Position      [2]float32   `yaml:"position" toml:"position"`
	Scale         *[2]float32  `yaml:"scale" toml:"scale"`
	ControlPoints [][2]float32 `yaml:"control_points" toml:"control_points"`
	Settings      *Settings    `yaml:"settings" toml:"settings"`
	Follow        uint32       `yaml:"follow" toml:"follow"`
}

func (rt rawTerrain) resolve() Terrain {
	t := Terrain{
		ID:            rt.ID,
		Name:          rt.Name,
		Texture:       rt.Texture,
		Position:      rt.Position,
		Scale:         [2]float32{1, 1},
		ControlPoints: rt.ControlPoints,
		Settings:      SettingsFrom(curve.DefaultSettings()),
		Follow:        rt.Follow,
	}
	if rt.Scale != nil {
		t.Scale = *rt.Scale
	}
	if rt.Settings != nil {
		t.Settings = *rt.Settings
	}
	return t
}

// Encode serialises a document.
func Encode(doc *Document, format Format) ([]byte, error) {
	out := *doc
	out.Version = FormatVersion
	switch format {
	case FormatTOML:
		return toml.Marshal(out)
	default:
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(out); err != nil {
			return nil, err
		}
		if err := enc.Close(); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	}
}

// Load reads a document, choosing the format by extension.
func Load(path string) (*Document, error) {
	format, err := FormatFor(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	doc, err := Decode(data, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

// Save writes a document, choosing the format by extension.
func Save(path string, doc *Document) error {
	format, err := FormatFor(path)
	if err != nil {
		return err
	}
	data, err := Encode(doc, format)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func pair(v m.Vec2) [2]float32 { return [2]float32{v.X, v.Y} }

func vec(p [2]float32) m.Vec2 { return m.V2(p[0], p[1]) }

func points(pts [][2]float32) []m.Vec2 {
	out := make([]m.Vec2, len(pts))
	for i, p := range pts {
		out[i] = vec(p)
	}
	return out
}

func pairs(pts []m.Vec2) [][2]float32 {
	out := make([][2]float32, len(pts))
	for i, p := range pts {
		out[i] = pair(p)
	}
	return out
}
