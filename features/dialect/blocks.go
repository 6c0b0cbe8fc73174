package dialect

import (
	"strings"

	"github.com/sagan/aimeta/constants"
	"github.com/sagan/aimeta/features/jsonrepair"
)

// Top level fields that get their own debug block, per format.
var formatFields = map[string][]string{
	"CivitAI":                   {"parameters"},
	constants.FORMAT_COMFYUI:    {"prompt", "workflow", "generation_data"},
	constants.FORMAT_INVOKEAI:   {"invokeai_metadata", "invokeai_graph"},
	constants.FORMAT_MIDJOURNEY: {"description"},
}

var fieldLabels = map[string]string{
	"prompt":                   "Prompt",
	"workflow":                 "Workflow",
	"generation_data":          "Generation data",
	"invokeai_graph":           "InvokeAI graph",
	"invokeai_metadata":        "InvokeAI metadata",
	"parameters":               "Parameters",
	"user_comment":             "User comment",
	"comment":                  "Comment",
	"description":              "Description",
	"title":                    "Title",
	"software":                 "Software",
	"source":                   "Source",
	"fooocus_scheme":           "Fooocus scheme",
	"davant__batch_parameters": "DAVANT batch parameters",
	"creatortool":              "Creator tool",
	"camera_manufacturer":      "Camera manufacturer",
	"image_description":        "Image description",
}

// FieldLabel returns the display label of a metadata field or chunk keyword.
func FieldLabel(field string) string {
	if label, ok := fieldLabels[strings.ToLower(field)]; ok {
		return label
	}
	return leadingWordRe.ReplaceAllStringFunc(strings.ReplaceAll(field, "_", " "), strings.ToUpper)
}

// addBlock appends a debug block. Strings are kept as is, other values are pretty printed.
func (r *Record) addBlock(label string, value any) {
	text, ok := value.(string)
	if !ok {
		text = jsonrepair.StringifyIndent(value, "  ")
	}
	r.Raw = append(r.Raw, Block{label, text})
}

// addFormatBlocks adds one block per known top level field of format present in
// parsed, or a single block with the whole payload if there is none.
func (r *Record) addFormatBlocks(parsed any, format, sourceLabel string) {
	added := 0
	if obj, ok := jsonrepair.AsObject(parsed); ok {
		for _, field := range formatFields[format] {
			value, _ := obj.GetFold(field)
			if value == nil {
				continue
			}
			if s, ok := value.(string); ok && (field == "prompt" || field == "parameters") {
				value = StripSurroundingQuotes(strings.TrimSpace(s))
			}
			r.addBlock(FieldLabel(field), value)
			added++
		}
	}
	if added == 0 {
		if sourceLabel == "" {
			sourceLabel = "Metadata"
		}
		r.addBlock(sourceLabel, parsed)
	}
}

// AddBlock appends a debug block with the given label.
func (r *Record) AddBlock(label string, value any) {
	r.addBlock(label, value)
}
