package thumbnail

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 20), G: uint8(y * 20), B: 128, A: 255})
		}
	}

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func decodeSize(t *testing.T, data []byte) (int, int, string) {
	t.Helper()

	img, format, err := image.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	return img.Bounds().Dx(), img.Bounds().Dy(), format
}

func TestResize_ScalesUpSmallImage(t *testing.T) {
	resized, err := Resize(encodePNG(t, 10, 10), 100)
	require.NoError(t, err)

	w, h, format := decodeSize(t, resized)
	assert.Equal(t, 100, w)
	assert.Equal(t, 100, h)
	assert.Equal(t, "png", format)
}

func TestResize_PreservesAspectRatio(t *testing.T) {
	resized, err := Resize(encodePNG(t, 200, 100), 100)
	require.NoError(t, err)

	w, h, _ := decodeSize(t, resized)
	assert.Equal(t, 100, w)
	assert.Equal(t, 50, h)
}

func TestResize_KeepsJPEGFormat(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 40, 40))
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, nil))

	resized, err := Resize(buf.Bytes(), 20)
	require.NoError(t, err)

	w, _, format := decodeSize(t, resized)
	assert.Equal(t, 20, w)
	assert.Equal(t, "jpeg", format)
}

func TestResize_VeryWideImageClampsHeight(t *testing.T) {
	resized, err := Resize(encodePNG(t, 500, 1), 100)
	require.NoError(t, err)

	_, h, _ := decodeSize(t, resized)
	assert.Equal(t, 1, h, "height never rounds down to zero")
}

func TestResize_RejectsGarbage(t *testing.T) {
	_, err := Resize([]byte("definitely not an image"), 100)
	assert.Error(t, err)
}

func TestResize_RejectsInvalidWidth(t *testing.T) {
	_, err := Resize(encodePNG(t, 10, 10), 0)
	assert.Error(t, err)
}
