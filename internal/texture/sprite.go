// Package texture loads terrain textures and describes them as sprites.
package texture

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // register GIF decoder
	_ "image/jpeg" // register JPEG decoder
	_ "image/png"  // register PNG decoder
	"os"
	"path/filepath"
	"strings"

	_ "golang.org/x/image/bmp"  // register BMP decoder
	_ "golang.org/x/image/tiff" // register TIFF decoder
)

// ErrNotPowerOfTwo is returned for textures whose sides are not powers of two.
var ErrNotPowerOfTwo = errors.New("texture size is not a power of two")

// Rect is a sprite's sub-rectangle inside its atlas in normalized texture
// coordinates, measured from the bottom-left corner.
type Rect struct {
	U, V, W, H float32
}

// Sprite is a texture (or atlas region) used to draw terrain.
type Sprite struct {
	Name   string
	Width  int
	Height int
	Rect   Rect
	// Image is nil when only the header was decoded.
	Image image.Image
}

// NewSprite returns a sprite covering a whole width x height texture.
func NewSprite(name string, width, height int) *Sprite {
	return &Sprite{
		Name:   name,
		Width:  width,
		Height: height,
		Rect:   Rect{W: 1, H: 1},
	}
}

// Size returns the pixel dimensions.
func (s *Sprite) Size() (int, int) {
	return s.Width, s.Height
}

// UVRect returns the atlas sub-rectangle.
func (s *Sprite) UVRect() (u, v, w, h float32) {
	return s.Rect.U, s.Rect.V, s.Rect.W, s.Rect.H
}

// Validate checks that both sides are powers of two.
func (s *Sprite) Validate() error {
	return ValidateSize(s.Width, s.Height)
}

// IsPowerOfTwo reports whether n is a positive power of two.
func IsPowerOfTwo(n int) bool {
	return n > 0 && n&(n-1) == 0
}

// ValidateSize checks that width and height are powers of two.
func ValidateSize(width, height int) error {
	if !IsPowerOfTwo(width) {
		return fmt.Errorf("width %d: %w", width, ErrNotPowerOfTwo)
	}
	if !IsPowerOfTwo(height) {
		return fmt.Errorf("height %d: %w", height, ErrNotPowerOfTwo)
	}
	return nil
}

func isTGA(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".tga")
}

// Load decodes the image at path into a sprite named after the file.
func Load(path string) (*Sprite, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading texture: %w", err)
	}

	var img image.Image
	if isTGA(path) {
		img, err = DecodeTGA(data)
	} else {
		img, _, err = image.Decode(bytes.NewReader(data))
	}
	if err != nil {
		return nil, fmt.Errorf("decoding texture %s: %w", path, err)
	}

	b := img.Bounds()
	s := NewSprite(filepath.Base(path), b.Dx(), b.Dy())
	s.Image = img
	return s, nil
}

// DecodeConfig reads only the dimensions of the image at path.
func DecodeConfig(path string) (*Sprite, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading texture: %w", err)
	}

	var cfg image.Config
	if isTGA(path) {
		cfg, err = DecodeTGAConfig(data)
	} else {
		cfg, _, err = image.DecodeConfig(bytes.NewReader(data))
	}
	if err != nil {
		return nil, fmt.Errorf("decoding texture header %s: %w", path, err)
	}
	return NewSprite(filepath.Base(path), cfg.Width, cfg.Height), nil
}
