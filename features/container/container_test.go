package container_test

import (
	"bytes"
	"context"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sagan/aimeta/features/container"
	"github.com/sagan/aimeta/features/testimg"
)

func TestDetect(t *testing.T) {
	assert.Equal(t, container.KindPNG, container.Detect(testimg.PNG(testimg.Image(2, 2))))
	assert.Equal(t, container.KindJPEG, container.Detect(testimg.JPEG(nil)))
	assert.Equal(t, container.KindWebP, container.Detect(testimg.WebP([]byte("II*\x00"))))
	assert.Equal(t, container.KindUnknown, container.Detect([]byte("GIF89a")))
	assert.Equal(t, container.KindUnknown, container.Detect(nil))
}

func TestTextEntries(t *testing.T) {
	data := testimg.PNG(testimg.Image(2, 2),
		testimg.IText("prompt", `{"1": {}}`, true),
		testimg.Text("parameters", "a cat\nSteps: 20"),
		testimg.ZText("workflow", `{"nodes": []}`),
		testimg.IText("Title", "héllo", false),
		testimg.Text("", "no keyword"),
	)
	entries := container.ReadPNG(data).TextEntries(context.Background())
	require.Len(t, entries, 4)
	assert.Equal(t, container.TextEntry{ChunkType: "tEXt", Keyword: "parameters", Text: "a cat\nSteps: 20"}, entries[0])
	assert.Equal(t, container.TextEntry{ChunkType: "zTXt", Keyword: "workflow", Text: `{"nodes": []}`}, entries[1])
	assert.Equal(t, container.TextEntry{ChunkType: "iTXt", Keyword: "prompt", Text: `{"1": {}}`}, entries[2])
	assert.Equal(t, container.TextEntry{ChunkType: "iTXt", Keyword: "Title", Text: "héllo"}, entries[3])
}

func TestReadPNGTruncated(t *testing.T) {
	data := testimg.PNG(testimg.Image(2, 2), testimg.Text("parameters", "a cat"))
	pc := container.ReadPNG(data[:len(data)-20])
	assert.NotEmpty(t, pc.Chunks)
	assert.Empty(t, pc.Get("IEND"))
}

func TestPNGExif(t *testing.T) {
	tiff := testimg.TIFF([]testimg.Tag{{ID: 0x010F, Text: "maker"}}, nil)
	data := testimg.PNG(testimg.Image(2, 2), testimg.Exif(tiff))
	assert.Equal(t, tiff, container.ReadPNG(data).Exif())
	assert.Empty(t, container.ReadPNG(testimg.PNG(testimg.Image(2, 2))).Exif())
}

func TestReadJPEGExif(t *testing.T) {
	tiff := testimg.TIFF([]testimg.Tag{{ID: 0x010E, Text: "a description"}}, nil)
	assert.Equal(t, tiff, container.ReadJPEGExif(testimg.JPEG(tiff)))
	assert.Nil(t, container.ReadJPEGExif(testimg.JPEG(nil)))
}

func TestReadWebPExif(t *testing.T) {
	tiff := testimg.TIFF([]testimg.Tag{{ID: 0x010F, Text: "abc"}}, nil)
	assert.Equal(t, tiff, container.ReadWebPExif(testimg.WebP(tiff)))
	// leading junk before the byte order mark
	assert.Equal(t, tiff, container.ReadWebPExif(testimg.WebP(append([]byte("Exif\x00\x00"), tiff...))))
	assert.Nil(t, container.ReadWebPExif([]byte("RIFF\x04\x00\x00\x00WEBP")))
}

func TestReadAlphaLSB(t *testing.T) {
	payload := `{"prompt": "a fox", "steps": 28}`
	text, ok, err := container.ReadAlphaLSB(testimg.AlphaPNG(32, 16, payload))
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, payload, text)

	_, ok, err = container.ReadAlphaLSB(testimg.PNG(testimg.Image(8, 8)))
	require.NoError(t, err)
	assert.False(t, ok)

	_, _, err = container.ReadAlphaLSB([]byte("not an image"))
	assert.Error(t, err)

	_, ok, err = container.ReadAlphaLSB(testimg.HeaderPNG(1<<20, 1<<20))
	assert.ErrorIs(t, err, container.ErrTooLarge)
	assert.False(t, ok)
}

func TestDecodeImage(t *testing.T) {
	img, err := container.DecodeImage(testimg.PNG(testimg.Image(6, 3)))
	require.NoError(t, err)
	assert.Equal(t, 6, img.Bounds().Dx())

	tests := []struct {
		name string
		w, h uint32
	}{
		{"wide", 1 << 30, 1},
		{"square", 50000, 50000},
		{"tall", 1, 1 << 30},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := container.DecodeImage(testimg.HeaderPNG(tt.w, tt.h))
			assert.ErrorIs(t, err, container.ErrTooLarge)
		})
	}
}

func TestStripAncillaryChunks(t *testing.T) {
	data := testimg.PNG(testimg.Image(4, 4), testimg.Text("parameters", "a cat"))
	stripped := container.StripAncillaryChunks(data)
	pc := container.ReadPNG(stripped)
	assert.Empty(t, pc.Get("tEXt"))
	assert.Len(t, pc.Get("IEND"), 1)
	img, err := png.Decode(bytes.NewReader(stripped))
	require.NoError(t, err)
	assert.Equal(t, 4, img.Bounds().Dx())
}

func TestInflate(t *testing.T) {
	entries := container.ReadPNG(testimg.PNG(testimg.Image(1, 1), testimg.ZText("k", "value"))).
		TextEntries(context.Background())
	require.Len(t, entries, 1)
	assert.Equal(t, "value", entries[0].Text)

	corrupt := testimg.Chunk{Type: "zTXt", Data: []byte("parameters\x00\x00not a zlib stream")}
	entries = container.ReadPNG(testimg.PNG(testimg.Image(1, 1), corrupt)).TextEntries(context.Background())
	require.Len(t, entries, 1)
	assert.Equal(t, "parameters", entries[0].Keyword)
	assert.Equal(t, "not a zlib stream", entries[0].Text)

	_, err := container.Inflate(context.Background(), []byte("not zlib"))
	assert.Error(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = container.Inflate(ctx, []byte{0x78, 0x9c, 0x03, 0x00, 0x00, 0x00, 0x00, 0x01})
	assert.ErrorIs(t, err, context.Canceled)
}
