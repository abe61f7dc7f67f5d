// Package texture decodes embedded or external images into RGBA pixel
// staging buffers ready for GPU upload.
package texture

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/draw"

	// Codecs registered for image.Decode.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// ErrDecode indicates the image data could not be decoded.
var ErrDecode = errors.New("texture: decode failed")

// Image is a decoded texture in tightly packed 8-bit RGBA, top row first.
type Image struct {
	Width  int
	Height int
	Pixels []byte // Width*Height*4 bytes
}

// Decode decodes image bytes into an RGBA staging image. The source format
// is sniffed from the data; alpha is always expanded to four channels.
//
// Parameters:
//   - data: encoded image bytes (PNG, JPEG, GIF, BMP, TIFF or WebP)
//
// Returns:
//   - *Image: decoded RGBA image
//   - error: ErrDecode-wrapped error if the data is not a supported image
func Decode(data []byte) (*Image, error) {
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return fromImage(src), nil
}

// White returns a 2x2 opaque white image used as the fallback when a
// material has no texture or its texture fails to decode.
func White() *Image {
	px := make([]byte, 2*2*4)
	for i := range px {
		px[i] = 0xFF
	}
	return &Image{Width: 2, Height: 2, Pixels: px}
}

func fromImage(src image.Image) *Image {
	b := src.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Src)
	return &Image{
		Width:  b.Dx(),
		Height: b.Dy(),
		Pixels: dst.Pix,
	}
}
