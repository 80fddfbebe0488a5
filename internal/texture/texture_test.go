package texture

import (
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/image/bmp"
)

func TestIsPowerOfTwo(t *testing.T) {
	tests := []struct {
		n    int
		want bool
	}{
		{0, false},
		{-4, false},
		{1, true},
		{2, true},
		{3, false},
		{256, true},
		{384, false},
		{512, true},
	}
	for _, tt := range tests {
		if got := IsPowerOfTwo(tt.n); got != tt.want {
			t.Errorf("IsPowerOfTwo(%d) = %v, expected %v", tt.n, got, tt.want)
		}
	}
}

func TestSpriteValidate(t *testing.T) {
	if err := NewSprite("ok", 512, 256).Validate(); err != nil {
		t.Errorf("expected valid sprite, got %v", err)
	}
	err := NewSprite("bad", 500, 512).Validate()
	if !errors.Is(err, ErrNotPowerOfTwo) {
		t.Errorf("expected ErrNotPowerOfTwo, got %v", err)
	}
}

func TestSpriteSizeAndRect(t *testing.T) {
	s := NewSprite("a", 128, 64)
	w, h := s.Size()
	if w != 128 || h != 64 {
		t.Errorf("expected 128x64, got %dx%d", w, h)
	}
	u, v, rw, rh := s.UVRect()
	if u != 0 || v != 0 || rw != 1 || rh != 1 {
		t.Errorf("expected full rect, got %v %v %v %v", u, v, rw, rh)
	}
}

// tgaBytes builds a 2x2 TGA image, bottom-to-top rows.
func tgaBytes(imageType byte, body []byte) []byte {
	header := make([]byte, tgaHeaderSize)
	header[2] = imageType
	header[12] = 2
	header[14] = 2
	header[16] = 32
	return append(header, body...)
}

func TestDecodeTGAUncompressed(t *testing.T) {
	// BGRA, bottom row first
	body := []byte{
		255, 0, 0, 255, 0, 255, 0, 255, // bottom: blue, green
		0, 0, 255, 255, 0, 0, 0, 128, // top: red, translucent black
	}
	img, err := DecodeTGA(tgaBytes(TGATypeUncompressed, body))
	if err != nil {
		t.Fatalf("DecodeTGA failed: %v", err)
	}
	rgba := img.(*image.RGBA)
	if got := rgba.RGBAAt(0, 0); got != (color.RGBA{R: 255, A: 255}) {
		t.Errorf("expected red at top-left, got %v", got)
	}
	if got := rgba.RGBAAt(0, 1); got != (color.RGBA{B: 255, A: 255}) {
		t.Errorf("expected blue at bottom-left, got %v", got)
	}
	if got := rgba.RGBAAt(1, 0); got.A != 128 {
		t.Errorf("expected alpha 128, got %d", got.A)
	}
}

func TestDecodeTGARLE(t *testing.T) {
	// one run packet of 4 white pixels
	body := []byte{0x80 | 3, 255, 255, 255, 255}
	img, err := DecodeTGA(tgaBytes(TGATypeRLE, body))
	if err != nil {
		t.Fatalf("DecodeTGA failed: %v", err)
	}
	rgba := img.(*image.RGBA)
	for y := 0; y < 2; y++ {
		for x := 0; x < 2; x++ {
			if got := rgba.RGBAAt(x, y); got != (color.RGBA{R: 255, G: 255, B: 255, A: 255}) {
				t.Errorf("expected white at %d,%d, got %v", x, y, got)
			}
		}
	}
}

func TestDecodeTGAErrors(t *testing.T) {
	if _, err := DecodeTGA([]byte{1, 2, 3}); err == nil {
		t.Error("expected error for short header")
	}
	data := tgaBytes(TGATypeUncompressed, nil)
	data[16] = 8
	if _, err := DecodeTGA(data); err == nil {
		t.Error("expected error for 8-bit depth")
	}
	if _, err := DecodeTGA(tgaBytes(TGATypeUncompressed, []byte{1, 2})); err == nil {
		t.Error("expected error for truncated pixels")
	}
}

func writeImage(t *testing.T, path string, encode func(*os.File, image.Image) error, w, h int) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	defer f.Close()
	if err := encode(f, image.NewRGBA(image.Rect(0, 0, w, h))); err != nil {
		t.Fatalf("encode: %v", err)
	}
}

func TestLoadPNG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ground.png")
	writeImage(t, path, func(f *os.File, img image.Image) error { return png.Encode(f, img) }, 64, 32)

	s, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if s.Name != "ground.png" || s.Width != 64 || s.Height != 32 {
		t.Errorf("expected ground.png 64x32, got %s %dx%d", s.Name, s.Width, s.Height)
	}
	if s.Image == nil {
		t.Error("expected decoded image")
	}
}

func TestDecodeConfigBMP(t *testing.T) {
	path := filepath.Join(t.TempDir(), "road.bmp")
	writeImage(t, path, func(f *os.File, img image.Image) error { return bmp.Encode(f, img) }, 16, 8)

	s, err := DecodeConfig(path)
	if err != nil {
		t.Fatalf("DecodeConfig failed: %v", err)
	}
	if s.Width != 16 || s.Height != 8 {
		t.Errorf("expected 16x8, got %dx%d", s.Width, s.Height)
	}
	if s.Image != nil {
		t.Error("expected no pixel data")
	}
}

func TestDecodeConfigTGA(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hill.tga")
	if err := os.WriteFile(path, tgaBytes(TGATypeRLE, nil), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	s, err := DecodeConfig(path)
	if err != nil {
		t.Fatalf("DecodeConfig failed: %v", err)
	}
	if s.Width != 2 || s.Height != 2 {
		t.Errorf("expected 2x2, got %dx%d", s.Width, s.Height)
	}
}

func TestLoadMissing(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.png")); err == nil {
		t.Error("expected error for missing file")
	}
}
