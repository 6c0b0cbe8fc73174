package exifdec_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sagan/aimeta/features/exifdec"
	"github.com/sagan/aimeta/features/testimg"
)

func TestDecode(t *testing.T) {
	tiff := testimg.TIFF(
		[]testimg.Tag{{ID: exifdec.TagMake, Text: "maker"}, {ID: exifdec.TagImageDescription, Text: "ab"}},
		[]testimg.Tag{{ID: exifdec.TagUserComment, Raw: testimg.UserComment(`{"prompt": "a cat"}`)}},
	)
	tags := exifdec.Decode(tiff)
	assert.Equal(t, "maker", tags.Text(exifdec.TagMake))
	assert.Equal(t, "ab", tags.Text(exifdec.TagImageDescription))
	assert.Equal(t, `{"prompt": "a cat"}`, tags.Text(exifdec.TagUserComment))
	assert.Equal(t, "", tags.Text(exifdec.TagExifIFDPointer))
	assert.Equal(t, map[string]string{
		"Make":             "maker",
		"ImageDescription": "ab",
		"UserComment":      `{"prompt": "a cat"}`,
	}, tags.Named())
}

func TestDecodeAt(t *testing.T) {
	tiff := testimg.TIFF([]testimg.Tag{{ID: exifdec.TagMake, Text: "maker"}}, nil)
	b := append([]byte("Exif\x00\x00"), tiff...)
	offset := exifdec.FindTIFFHeader(b)
	assert.Equal(t, 6, offset)
	assert.Equal(t, "maker", exifdec.DecodeAt(b, offset).Text(exifdec.TagMake))
	assert.Empty(t, exifdec.DecodeAt(b, -1))
	assert.Equal(t, -1, exifdec.FindTIFFHeader([]byte("Exif")))
}

func TestDecodeTruncated(t *testing.T) {
	tiff := testimg.TIFF(
		[]testimg.Tag{{ID: exifdec.TagMake, Text: "m"}, {ID: exifdec.TagImageDescription, Text: "a long description"}},
		nil,
	)
	tags := exifdec.Decode(tiff[:len(tiff)-4])
	assert.Equal(t, "m", tags.Text(exifdec.TagMake))
	assert.Equal(t, "", tags.Text(exifdec.TagImageDescription))
	assert.Empty(t, exifdec.Decode([]byte("XX*\x00\x08\x00\x00\x00")))
}

func TestDecodeUserComment(t *testing.T) {
	tests := []struct {
		name string
		raw  []byte
		want string
	}{
		{"ascii", []byte("ASCII\x00\x00\x00hello\x00"), "hello"},
		{"utf8 json", []byte("UNICODE\x00{\"a\": 1}"), `{"a": 1}`},
		{"utf16 le", testimg.UserComment("Steps: 20"), "Steps: 20"},
		{"utf16 be", []byte("UNICODE\x00\x00h\x00i"), "hi"},
		{"utf8", []byte("UTF-8\x00\x00\x00caf\xc3\xa9"), "café"},
		{"short", []byte("abc"), ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, exifdec.DecodeUserComment(tt.raw))
		})
	}
}

func TestTagName(t *testing.T) {
	assert.Equal(t, "UserComment", exifdec.TagName(exifdec.TagUserComment))
	assert.Equal(t, "Prompt", exifdec.TagName(exifdec.TagPrompt))
	assert.Equal(t, "305", exifdec.TagName(0x0131))
}

func TestDump(t *testing.T) {
	tiff := testimg.TIFF([]testimg.Tag{{ID: exifdec.TagMake, Text: "maker"}}, nil)
	fields, err := exifdec.Dump(testimg.JPEG(tiff))
	require.NoError(t, err)
	names := []string{}
	for _, f := range fields {
		names = append(names, f.Name)
	}
	assert.Contains(t, names, "Make")

	fields, err = exifdec.Dump([]byte("no exif here"))
	assert.NoError(t, err)
	assert.Nil(t, fields)
}

func TestCameraInfo(t *testing.T) {
	tiff := testimg.TIFF([]testimg.Tag{
		{ID: exifdec.TagMake, Text: `{"prompt": "x"}`},
		{ID: exifdec.TagModel, Text: "EOS R5"},
	}, nil)
	camera, err := exifdec.CameraInfo(testimg.JPEG(tiff))
	require.NoError(t, err)
	assert.Equal(t, "EOS R5", camera.Model)
	assert.False(t, camera.IsEmpty())

	var empty *exifdec.Camera
	assert.True(t, empty.IsEmpty())
}
