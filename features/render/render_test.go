package render

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sagan/aimeta/constants"
	"github.com/sagan/aimeta/features/civitai"
	"github.com/sagan/aimeta/features/dialect"
	"github.com/sagan/aimeta/features/extract"
	"github.com/sagan/aimeta/features/modelref"
)

func TestText(t *testing.T) {
	res := &extract.Result{
		Info: extract.ImageInfo{
			FileName:     "a.png",
			FileType:     constants.MIME_PNG,
			FileSizeText: "1.5 KB",
			Width:        512,
			Height:       768,
			MetadataType: constants.FORMAT_A1111,
			Items:        []dialect.Item{{Label: "Software", Value: "ComfyUI"}},
		},
		Record: &dialect.Record{
			Format:    constants.FORMAT_A1111,
			SourceTag: "parameters",
			Positive:  "a cat\non a mat",
			Negative:  "blurry",
			Params:    []dialect.Item{{Label: "Steps", Value: "20"}, {Label: "Sampler", Value: "Euler a"}},
			Models:    []dialect.Item{{Label: "Model hash", Value: "1a2b3c4d5e"}},
			Raw:       []dialect.Block{{Label: "Workflow", Text: `{"nodes": []}`}},
			Found:     true,
		},
		References: []modelref.ModelReference{{
			Label: "Model hash", Identifier: "1a2b3c4d5e", Kind: modelref.KindHash,
			Resolved: &civitai.Version{ModelName: "SDXL", URL: "https://civitai.com/models/1?modelVersionId=2"},
		}},
	}
	buf := &bytes.Buffer{}
	Text(buf, res, Options{})
	assert.Equal(t, `File: a.png (image/png, 1.5 KB, 512x768)
Metadata: A1111 (parameters)
  Software : ComfyUI

Positive prompt:
  a cat
  on a mat

Negative prompt:
  blurry

Parameters:
  Steps   : 20
  Sampler : Euler a

Models:
  Model hash : 1a2b3c4d5e

References:
  Model hash : 1a2b3c4d5e -> SDXL <https://civitai.com/models/1?modelVersionId=2>
`, buf.String())

	buf.Reset()
	Text(buf, res, Options{Raw: true})
	assert.Contains(t, buf.String(), "\nWorkflow:\n  {\"nodes\": []}\n")
}

func TestTextNotFound(t *testing.T) {
	res := &extract.Result{
		Info:    extract.ImageInfo{FileType: constants.MIME_BINARY, FileSizeText: "5 Bytes", MetadataType: constants.FORMAT_UNKNOWN},
		Record:  dialect.NotFound(),
		Warning: constants.NO_METADATA_WARNING,
	}
	buf := &bytes.Buffer{}
	Text(buf, res, Options{})
	assert.Equal(t, "File: - (application/octet-stream, 5 Bytes)\nMetadata: Unknown\nWarning: No metadata found\n", buf.String())
}

func TestPrintItemsWide(t *testing.T) {
	buf := &bytes.Buffer{}
	printItems(buf, []dialect.Item{{Label: "模型", Value: "a\nb"}, {Label: "x", Value: "y"}}, 24)
	assert.Equal(t, "  模型 : a\n         b\n  x    : y\n", buf.String())
}
