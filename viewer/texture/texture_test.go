package texture

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodePNG(t *testing.T, w, h int, c color.NRGBA) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestDecodePNG(t *testing.T) {
	data := encodePNG(t, 4, 3, color.NRGBA{R: 10, G: 20, B: 30, A: 255})

	img, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, 4, img.Width)
	assert.Equal(t, 3, img.Height)
	require.Len(t, img.Pixels, 4*3*4)
	assert.Equal(t, []byte{10, 20, 30, 255}, img.Pixels[:4])
}

func TestDecodeInvalid(t *testing.T) {
	_, err := Decode([]byte("not an image"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDecode)
}

func TestWhite(t *testing.T) {
	img := White()
	assert.Equal(t, 2, img.Width)
	assert.Equal(t, 2, img.Height)
	require.Len(t, img.Pixels, 16)
	for i, b := range img.Pixels {
		assert.Equal(t, byte(0xFF), b, "byte %d", i)
	}
}
