package scene

import (
	"fmt"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/Faultbox/curvetex/internal/curve"
	"github.com/Faultbox/curvetex/internal/logger"
	"github.com/Faultbox/curvetex/internal/texture"
)

// TextureLoader resolves a document's texture reference.
type TextureLoader func(ref string) (curve.Texture, error)

// FileLoader loads and decodes textures relative to dir.
func FileLoader(dir string) TextureLoader {
	return func(ref string) (curve.Texture, error) {
		return texture.Load(resolve(dir, ref))
	}
}

// HeaderLoader reads only texture dimensions, for tools without a GPU.
func HeaderLoader(dir string) TextureLoader {
	return func(ref string) (curve.Texture, error) {
		return texture.DecodeConfig(resolve(dir, ref))
	}
}

func resolve(dir, ref string) string {
	if filepath.IsAbs(ref) || dir == "" {
		return ref
	}
	return filepath.Join(dir, ref)
}

// Scene is a built document: the registry plus the texture reference of
// every terrain, kept so the scene can be saved again.
type Scene struct {
	Registry *curve.Registry
	Textures map[curve.ID]string
}

// Build creates a registry from doc. A texture that fails to load is logged
// and left unset; the terrain then skips its rebuilds until one is assigned.
func Build(doc *Document, load TextureLoader) (*Scene, error) {
	log := logger.Named("scene")
	s := &Scene{
		Registry: curve.NewRegistry(),
		Textures: make(map[curve.ID]string),
	}

	for _, td := range doc.Terrains {
		t := curve.NewTerrain(curve.ID(td.ID), td.Name)
		if err := s.Registry.Add(t); err != nil {
			return nil, err
		}

		settings := td.Settings.Curve()
		closed := settings.Closed
		settings.Closed = false
		if err := t.ApplySettings(settings); err != nil {
			return nil, fmt.Errorf("terrain %s: %w", td.Name, err)
		}
		if err := t.SetControlPoints(points(td.ControlPoints)); err != nil {
			return nil, fmt.Errorf("terrain %s: %w", td.Name, err)
		}
		if closed {
			if err := t.SetClosed(true); err != nil {
				return nil, fmt.Errorf("terrain %s: %w", td.Name, err)
			}
		}
		t.SetPosition(vec(td.Position))
		t.SetScale(vec(td.Scale))

		if td.Texture != "" {
			s.Textures[t.ID()] = td.Texture
			if load != nil {
				tex, err := load(td.Texture)
				if err != nil {
					log.Warn("texture not loaded", zap.String("terrain", td.Name), zap.String("texture", td.Texture), zap.Error(err))
				} else {
					t.SetTexture(tex)
				}
			}
		}
	}

	for _, td := range doc.Terrains {
		if td.Follow == 0 {
			continue
		}
		if err := s.Registry.Follow(curve.ID(td.ID), curve.ID(td.Follow)); err != nil {
			return nil, fmt.Errorf("terrain %s: %w", td.Name, err)
		}
	}

	log.Info("scene built", zap.Int("terrains", s.Registry.Count()))
	return s, nil
}

// Document exports the scene's authored state.
func (s *Scene) Document() *Document {
	doc := &Document{Version: FormatVersion}
	for _, t := range s.Registry.All() {
		td := Terrain{
			ID:            uint32(t.ID()),
			Name:          t.Name(),
			Texture:       s.Textures[t.ID()],
			Position:      pair(t.Position()),
			Scale:         pair(t.Scale()),
			ControlPoints: pairs(t.ControlPoints()),
			Settings:      SettingsFrom(t.Settings()),
		}
		if target, ok := t.Following(); ok {
			td.Follow = uint32(target)
		}
		doc.Terrains = append(doc.Terrains, td)
	}
	return doc
}
