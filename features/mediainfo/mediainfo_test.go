package mediainfo

import (
	"image"
	"image/color"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sagan/aimeta/features/container"
	"github.com/sagan/aimeta/features/testimg"
)

func TestParse(t *testing.T) {
	data := testimg.PNG(testimg.Image(20, 10), testimg.Text("parameters", "a cat"))
	info, err := Parse(data, 8)
	require.NoError(t, err)
	assert.Equal(t, 20, info.Width)
	assert.Equal(t, 10, info.Height)
	assert.Len(t, info.Signature, 64)
	assert.True(t, strings.HasPrefix(info.Thumbnail, "data:image/jpeg"))

	// metadata does not change the signature
	plain, err := Parse(testimg.PNG(testimg.Image(20, 10)), 0)
	require.NoError(t, err)
	assert.Equal(t, info.Signature, plain.Signature)
	assert.Empty(t, plain.Thumbnail)

	_, err = Parse([]byte("garbage"), 0)
	assert.Error(t, err)

	_, err = Parse(testimg.HeaderPNG(1<<24, 1<<24), 64)
	assert.ErrorIs(t, err, container.ErrTooLarge)
}

func TestPixelDataHashAlphaAware(t *testing.T) {
	a := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	b := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	a.SetNRGBA(0, 0, color.NRGBA{255, 0, 0, 0})
	b.SetNRGBA(0, 0, color.NRGBA{0, 255, 0, 0})
	assert.Equal(t, PixelDataHashAlphaAware(a), PixelDataHashAlphaAware(b))

	b.SetNRGBA(1, 0, color.NRGBA{0, 0, 0, 1})
	assert.NotEqual(t, PixelDataHashAlphaAware(a), PixelDataHashAlphaAware(b))
}
