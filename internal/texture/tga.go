package texture

import (
	"fmt"
	"image"
	"image/color"
)

// TGA image types handled by DecodeTGA.
const (
	TGATypeUncompressed = 2  // Uncompressed true-color
	TGATypeRLE          = 10 // RLE compressed true-color
)

const tgaHeaderSize = 18

type tgaHeader struct {
	idLength    int
	imageType   byte
	width       int
	height      int
	bpp         int
	topToBottom bool
}

func parseTGAHeader(data []byte) (tgaHeader, error) {
	if len(data) < tgaHeaderSize {
		return tgaHeader{}, fmt.Errorf("tga: header too short")
	}
	h := tgaHeader{
		idLength:    int(data[0]),
		imageType:   data[2],
		width:       int(data[12]) | int(data[13])<<8,
		height:      int(data[14]) | int(data[15])<<8,
		bpp:         int(data[16]),
		topToBottom: data[17]&0x20 != 0,
	}
	if data[1] != 0 {
		return h, fmt.Errorf("tga: color-mapped images not supported")
	}
	if h.imageType != TGATypeUncompressed && h.imageType != TGATypeRLE {
		return h, fmt.Errorf("tga: unsupported image type %d", h.imageType)
	}
	if h.bpp != 24 && h.bpp != 32 {
		return h, fmt.Errorf("tga: unsupported bit depth %d", h.bpp)
	}
	return h, nil
}

// DecodeTGAConfig returns the dimensions of a TGA image without decoding
// pixels.
func DecodeTGAConfig(data []byte) (image.Config, error) {
	h, err := parseTGAHeader(data)
	if err != nil {
		return image.Config{}, err
	}
	return image.Config{ColorModel: color.RGBAModel, Width: h.width, Height: h.height}, nil
}

// DecodeTGA decodes an uncompressed or RLE compressed 24/32-bit TGA image.
func DecodeTGA(data []byte) (image.Image, error) {
	h, err := parseTGAHeader(data)
	if err != nil {
		return nil, err
	}
	offset := tgaHeaderSize + h.idLength
	if offset > len(data) {
		return nil, fmt.Errorf("tga: data truncated")
	}
	pix := data[offset:]
	bytesPerPixel := h.bpp / 8

	img := image.NewRGBA(image.Rect(0, 0, h.width, h.height))
	total := h.width * h.height
	put := func(i int, c color.RGBA) {
		x, y := i%h.width, i/h.width
		if !h.topToBottom {
			y = h.height - 1 - y
		}
		img.SetRGBA(x, y, c)
	}
	read := func(at int) color.RGBA {
		c := color.RGBA{B: pix[at], G: pix[at+1], R: pix[at+2], A: 255}
		if bytesPerPixel == 4 {
			c.A = pix[at+3]
		}
		return c
	}

	if h.imageType == TGATypeUncompressed {
		if len(pix) < total*bytesPerPixel {
			return nil, fmt.Errorf("tga: pixel data truncated")
		}
		for i := 0; i < total; i++ {
			put(i, read(i*bytesPerPixel))
		}
		return img, nil
	}

	i, at := 0, 0
	for i < total && at < len(pix) {
		packet := pix[at]
		at++
		count := int(packet&0x7F) + 1

		if packet&0x80 != 0 {
			if at+bytesPerPixel > len(pix) {
				break
			}
			c := read(at)
			at += bytesPerPixel
			for ; count > 0 && i < total; count-- {
				put(i, c)
				i++
			}
			continue
		}
		for ; count > 0 && i < total && at+bytesPerPixel <= len(pix); count-- {
			put(i, read(at))
			at += bytesPerPixel
			i++
		}
	}
	return img, nil
}
