package extract

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sagan/aimeta/constants"
	"github.com/sagan/aimeta/features/dialect"
	"github.com/sagan/aimeta/features/exifdec"
	"github.com/sagan/aimeta/features/modelref"
	"github.com/sagan/aimeta/features/testimg"
)

const comfyPrompt = `{
	"3": {"class_type": "KSampler", "inputs": {"seed": 42, "steps": 20, "cfg": 7, "sampler_name": "euler"}},
	"6": {"class_type": "CLIPTextEncode", "inputs": {"text": "masterpiece, 1girl"}},
	"7": {"class_type": "CLIPTextEncode", "inputs": {"text": "lowres, bad anatomy"}}
}`

func extractPNG(t *testing.T, opts Options, chunks ...testimg.Chunk) *Result {
	t.Helper()
	return Extract(context.Background(), testimg.PNG(testimg.Image(4, 4), chunks...), opts)
}

func TestExtractPNGParameters(t *testing.T) {
	res := extractPNG(t, Options{CivitaiLookup: true, FileName: "a.png"},
		testimg.Text("parameters", "a cat\nNegative prompt: blurry\nSteps: 20, Model hash: 1a2b3c4d5e"),
		testimg.ZText("workflow", `{"nodes": []}`),
		testimg.Text("Software", "ComfyUI"),
	)
	rec := res.Record
	require.True(t, rec.Found)
	assert.Empty(t, res.Warning)
	assert.Equal(t, constants.FORMAT_A1111, rec.Format)
	assert.Equal(t, "parameters", rec.SourceTag)
	assert.Equal(t, "a cat", rec.Positive)
	assert.Equal(t, "blurry", rec.Negative)
	steps, _ := rec.Param("Steps")
	assert.Equal(t, "20", steps)
	require.Len(t, rec.Raw, 1)
	assert.Equal(t, dialect.FieldLabel("workflow"), rec.Raw[0].Label)

	require.Len(t, res.References, 1)
	assert.Equal(t, "1a2b3c4d5e", res.References[0].Identifier)
	assert.Equal(t, modelref.KindHash, res.References[0].Kind)

	info := res.Info
	assert.Equal(t, "a.png", info.FileName)
	assert.Equal(t, constants.MIME_PNG, info.FileType)
	assert.Equal(t, constants.FORMAT_A1111, info.MetadataType)
	assert.Equal(t, 4, info.Width)
	assert.Equal(t, 4, info.Height)
	assert.NotEmpty(t, info.Signature)
	assert.Contains(t, info.Items, dialect.Item{Label: "Software", Value: "ComfyUI"})
}

func TestExtractPNGComfyUI(t *testing.T) {
	res := extractPNG(t, Options{},
		testimg.IText("prompt", comfyPrompt, true),
		testimg.Text("workflow", `{"nodes": []}`),
	)
	rec := res.Record
	assert.Equal(t, constants.FORMAT_COMFYUI, rec.Format)
	assert.Equal(t, "prompt", rec.SourceTag)
	assert.Equal(t, "masterpiece, 1girl", rec.Positive)
	assert.Equal(t, "lowres, bad anatomy", rec.Negative)
	seed, _ := rec.Param("Seed")
	assert.Equal(t, "42", seed)
	assert.Nil(t, res.References)
}

func TestExtractPNGInvokeAI(t *testing.T) {
	res := extractPNG(t, Options{},
		testimg.Text("parameters", "ignored\nSteps: 1"),
		testimg.Text("invokeai_metadata", `{"positive_prompt": "a fox", "negative_prompt": "blurry", "steps": 30}`),
	)
	rec := res.Record
	assert.Equal(t, constants.FORMAT_INVOKEAI, rec.Format)
	assert.Equal(t, "invokeai_metadata", rec.SourceTag)
	assert.Equal(t, "a fox", rec.Positive)
	assert.Equal(t, "blurry", rec.Negative)
}

func TestExtractPNGNovelAI(t *testing.T) {
	res := extractPNG(t, Options{},
		testimg.Text("Title", "AI generated image"),
		testimg.Text("Software", "NovelAI"),
		testimg.Text("Description", "1girl"),
		testimg.Text("Comment", `{"prompt": "1girl", "uc": "lowres", "steps": 28, "sampler": "k_euler", "signed_hash": "x"}`),
	)
	rec := res.Record
	assert.Equal(t, constants.FORMAT_NOVELAI, rec.Format)
	assert.Equal(t, "Comment", rec.SourceTag)
	assert.Equal(t, "1girl", rec.Positive)
	assert.Equal(t, "lowres", rec.Negative)
	steps, _ := rec.Param("steps")
	assert.Equal(t, "28", steps)
	assert.Equal(t, []dialect.Item{
		{Label: "Title", Value: "AI generated image"},
		{Label: "Software", Value: "NovelAI"},
	}, res.Info.Items)
}

func TestExtractPNGMidjourney(t *testing.T) {
	res := extractPNG(t, Options{},
		testimg.Text("Description", "a castle --ar 16:9"),
		testimg.Text("Author", "someone"),
	)
	assert.Equal(t, constants.FORMAT_MIDJOURNEY, res.Record.Format)
	assert.Equal(t, "a castle --ar 16:9", res.Record.Positive)
	assert.Contains(t, res.Info.Items, dialect.Item{Label: "Author", Value: "someone"})
}

func TestExtractPNGExifFallback(t *testing.T) {
	tiff := testimg.TIFF(nil, []testimg.Tag{{ID: exifdec.TagUserComment, Raw: testimg.UserComment("a cat\nSteps: 20")}})
	res := extractPNG(t, Options{}, testimg.Text("parameters", "a dog\nSteps: 5"), testimg.Exif(tiff))
	assert.Equal(t, "a dog", res.Record.Positive)

	tests := []struct {
		name     string
		comment  string
		format   string
		positive string
		negative string
		param    string
		value    string
	}{
		{"plain text", "a cat\nSteps: 20", constants.FORMAT_A1111, "a cat", "", "Steps", "20"},
		{"comfyui json", comfyPrompt, constants.FORMAT_COMFYUI, "masterpiece, 1girl", "lowres, bad anatomy", "Seed", "42"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tiff := testimg.TIFF(nil, []testimg.Tag{{ID: exifdec.TagUserComment, Raw: testimg.UserComment(tt.comment)}})
			fromPNG := extractPNG(t, Options{}, testimg.Exif(tiff))
			rec := fromPNG.Record
			require.True(t, rec.Found)
			assert.Equal(t, "UserComment", rec.SourceTag)
			assert.Equal(t, tt.format, rec.Format)
			assert.Equal(t, tt.positive, rec.Positive)
			assert.Equal(t, tt.negative, rec.Negative)
			value, ok := rec.Param(tt.param)
			assert.True(t, ok)
			assert.Equal(t, tt.value, value)

			fromJPEG := Extract(context.Background(), testimg.JPEG(tiff), Options{})
			assert.Equal(t, fromJPEG.Record, fromPNG.Record)
		})
	}
}

func TestExtractOversizedImage(t *testing.T) {
	data := testimg.HeaderPNG(1<<24, 1<<24)
	data = data[:len(data)-12]
	data = testimg.AppendChunk(data, "tEXt", []byte("parameters\x00a cat\nSteps: 20"))
	data = testimg.AppendChunk(data, "IEND", nil)

	res := Extract(context.Background(), data, Options{Thumbnail: 64})
	assert.Equal(t, "a cat", res.Record.Positive)
	assert.Zero(t, res.Info.Width)
	assert.Empty(t, res.Info.Signature)

	res = Extract(context.Background(), testimg.HeaderPNG(1<<24, 1<<24), Options{AlphaFallback: true})
	assert.False(t, res.Record.Found)
	assert.Equal(t, constants.NO_METADATA_WARNING, res.Warning)
}

func TestExtractJPEG(t *testing.T) {
	tiff := testimg.TIFF(
		[]testimg.Tag{
			{ID: exifdec.TagImageDescription, Text: "a description"},
			{ID: exifdec.TagMake, Text: `{"prompt": "a cat, masterpiece", "steps": 12}`},
			{ID: exifdec.TagModel, Text: "EOS R5"},
		},
		nil,
	)
	res := Extract(context.Background(), testimg.JPEG(tiff), Options{DumpExif: true})
	assert.Equal(t, "Make", res.Record.SourceTag)
	assert.True(t, res.Record.Found)
	assert.Equal(t, constants.MIME_JPEG, res.Info.FileType)
	assert.Equal(t, 8, res.Info.Width)
	require.NotNil(t, res.Info.Camera)
	assert.Equal(t, "EOS R5", res.Info.Camera.Model)
	assert.NotEmpty(t, res.Exif)
}

func TestExtractWebP(t *testing.T) {
	t.Run("make", func(t *testing.T) {
		tiff := testimg.TIFF([]testimg.Tag{{ID: exifdec.TagMake, Text: "a dog\nSteps: 5"}},
			[]testimg.Tag{{ID: exifdec.TagUserComment, Raw: testimg.UserComment("a cat\nSteps: 20")}})
		res := Extract(context.Background(), testimg.WebP(tiff), Options{})
		assert.Equal(t, "Make", res.Record.SourceTag)
		assert.Equal(t, "a dog", res.Record.Positive)
		assert.Equal(t, constants.MIME_WEBP, res.Info.FileType)
	})
	t.Run("user comment", func(t *testing.T) {
		tiff := testimg.TIFF(nil, []testimg.Tag{{ID: exifdec.TagUserComment, Raw: testimg.UserComment("a cat\nSteps: 20")}})
		res := Extract(context.Background(), testimg.WebP(tiff), Options{})
		assert.Equal(t, "UserComment", res.Record.SourceTag)
		assert.Equal(t, constants.FORMAT_A1111, res.Record.Format)
		assert.Equal(t, "a cat", res.Record.Positive)
	})
	t.Run("no exif", func(t *testing.T) {
		res := Extract(context.Background(), testimg.WebP(nil), Options{})
		assert.False(t, res.Record.Found)
		assert.Equal(t, constants.NO_METADATA_WARNING, res.Warning)
	})
}

func TestExtractAlphaFallback(t *testing.T) {
	payload := `{"prompt": "a fox", "uc": "lowres", "sampler": "k_euler", "signed_hash": "abc"}`
	data := testimg.AlphaPNG(32, 32, payload)

	res := Extract(context.Background(), data, Options{AlphaFallback: true})
	assert.Equal(t, constants.FORMAT_NOVELAI, res.Record.Format)
	assert.Equal(t, constants.SOURCE_NOVELAI_ALPHA, res.Record.SourceTag)
	assert.Equal(t, "a fox", res.Record.Positive)

	res = Extract(context.Background(), data, Options{})
	assert.False(t, res.Record.Found)
	assert.Equal(t, constants.NO_METADATA_WARNING, res.Warning)
}

func TestExtractUnknown(t *testing.T) {
	res := Extract(context.Background(), []byte("hello"), Options{})
	assert.False(t, res.Record.Found)
	assert.Equal(t, constants.FORMAT_UNKNOWN, res.Record.Format)
	assert.Equal(t, constants.NO_METADATA_WARNING, res.Warning)
	assert.Equal(t, constants.MIME_BINARY, res.Info.FileType)
	assert.Equal(t, int64(5), res.Info.FileSize)
	assert.Equal(t, "5 Bytes", res.Info.FileSizeText)
	assert.Zero(t, res.Info.Width)
}

func TestExtractThumbnail(t *testing.T) {
	res := Extract(context.Background(), testimg.PNG(testimg.Image(64, 32)), Options{Thumbnail: 16})
	assert.Contains(t, res.Info.Thumbnail, "data:image/jpeg")
	assert.Equal(t, 64, res.Info.Width)
}

func TestExtractFile(t *testing.T) {
	dir := t.TempDir()
	filename := filepath.Join(dir, "image.png")
	require.NoError(t, os.WriteFile(filename,
		testimg.PNG(testimg.Image(2, 2), testimg.Text("parameters", "a cat\nSteps: 20")), 0644))

	res, err := ExtractFile(context.Background(), filename, Options{})
	require.NoError(t, err)
	assert.Equal(t, "image.png", res.Info.FileName)
	assert.Equal(t, "a cat", res.Record.Positive)

	_, err = ExtractFile(context.Background(), filepath.Join(dir, "missing.png"), Options{})
	assert.Error(t, err)
}

func TestSession(t *testing.T) {
	s := &Session{}
	first := s.Begin()
	second := s.Begin()
	assert.True(t, s.Stale(first))
	assert.False(t, s.Stale(second))

	newer := &Result{}
	assert.True(t, s.Commit(second, newer))
	assert.False(t, s.Commit(first, &Result{}))
	assert.Same(t, newer, s.Current())

	res, ok := s.Extract(context.Background(), []byte("x"), Options{})
	assert.True(t, ok)
	assert.Same(t, res, s.Current())
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		n    int64
		want string
	}{
		{0, "0 Bytes"},
		{1023, "1023 Bytes"},
		{1024, "1 KB"},
		{1536, "1.5 KB"},
		{1234567, "1.18 MB"},
		{5 << 30, "5 GB"},
		{1 << 40, "1024 GB"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatBytes(tt.n), "%d", tt.n)
	}
}
