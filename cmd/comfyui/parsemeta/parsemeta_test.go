package parsemeta

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sagan/aimeta/features/jsonrepair"
	"github.com/sagan/aimeta/features/testimg"
	"github.com/sagan/aimeta/util"
)

func TestExtractComfyMetadata(t *testing.T) {
	data := testimg.PNG(testimg.Image(2, 2),
		testimg.Text("prompt", `{"3": {"class_type": "KSampler", "inputs": {"seed": NaN}}}`),
		testimg.ZText("workflow", `{"nodes": [], "version": 0.4}`),
		testimg.Text("prompt", `{"ignored": true}`),
	)
	meta, err := ExtractComfyMetadata(context.Background(), data)
	require.NoError(t, err)
	prompt, ok := jsonrepair.AsObject(meta.Prompt)
	require.True(t, ok)
	assert.Equal(t, []string{"3"}, prompt.Keys())
	assert.Equal(t, `{"prompt":{"3":{"class_type":"KSampler","inputs":{"seed":null}}},"workflow":{"nodes":[],"version":0.4}}`,
		util.ToJson(meta))

	_, err = ExtractComfyMetadata(context.Background(), testimg.PNG(testimg.Image(2, 2)))
	assert.Error(t, err)
	_, err = ExtractComfyMetadata(context.Background(), []byte("GIF89a"))
	assert.Error(t, err)
}
