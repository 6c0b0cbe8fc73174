// Package dialect classifies decoded generation metadata into one of the known
// generator dialects and maps its fields into a Record.
package dialect

import (
	"strings"

	"github.com/sagan/aimeta/constants"
	"github.com/sagan/aimeta/features/jsonrepair"
)

// Item is one labelled value of the parameter or model list.
type Item struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Block is a labelled raw metadata dump, shown collapsed in the debug view.
type Block struct {
	Label string `json:"label"`
	Text  string `json:"text"`
}

// Resource is a Civitai model version listed in extraMetadata.resources.
type Resource struct {
	VersionID string `json:"version_id"`
	Strength  string `json:"strength,omitempty"`
}

// Record is the normalized extraction result of one image.
type Record struct {
	Format    string     `json:"format"`
	SourceTag string     `json:"source_tag,omitempty"`
	Positive  string     `json:"positive_prompt"`
	Negative  string     `json:"negative_prompt"`
	Auxiliary string     `json:"auxiliary_text,omitempty"`
	Params    []Item     `json:"parameters"`
	Models    []Item     `json:"models"`
	Resources []Resource `json:"resources,omitempty"`
	Raw       []Block    `json:"raw,omitempty"`
	// Found is false when nothing could be extracted.
	Found bool `json:"found"`
}

func newRecord(format, sourceTag string) *Record {
	return &Record{Format: format, SourceTag: sourceTag, Params: []Item{}, Models: []Item{}, Found: true}
}

// NotFound returns the record reported when no metadata could be extracted.
func NotFound() *Record {
	return &Record{Format: constants.FORMAT_UNKNOWN, Params: []Item{}, Models: []Item{}}
}

// Param returns the value of the first parameter labelled label (case-insensitive).
func (r *Record) Param(label string) (string, bool) {
	return findItem(r.Params, label)
}

// Model returns the value of the first model item labelled label (case-insensitive).
func (r *Record) Model(label string) (string, bool) {
	return findItem(r.Models, label)
}

func findItem(items []Item, label string) (string, bool) {
	for _, item := range items {
		if strings.EqualFold(item.Label, label) {
			return item.Value, true
		}
	}
	return "", false
}

func (r *Record) addParam(label string, value any) {
	r.Params = append(r.Params, Item{Label: label, Value: jsonrepair.ToString(value)})
}

// addModel adds a model item unless the same label / value pair is already listed.
func (r *Record) addModel(label string, value any) {
	item := Item{Label: label, Value: renderValue(value)}
	for _, existing := range r.Models {
		if existing == item {
			return
		}
	}
	r.Models = append(r.Models, item)
}

// addModelInfo adds a model item under its normalized display label.
func (r *Record) addModelInfo(key string, value any) {
	r.addModel(NormalizeModelLabel(key), value)
}

func (r *Record) addResources(resources []Resource) {
	r.Resources = append(r.Resources, resources...)
}

// renderValue renders primitives like String() and nested values as "key: value" lines.
func renderValue(value any) string {
	switch v := value.(type) {
	case *jsonrepair.Object:
		var lines []string
		v.Range(func(key string, item any) bool {
			lines = append(lines, key+": "+jsonrepair.ToString(item))
			return true
		})
		return strings.Join(lines, "\n")
	case []any:
		var lines []string
		for _, item := range v {
			if obj, ok := jsonrepair.AsObject(item); ok {
				var parts []string
				obj.Range(func(key string, sub any) bool {
					parts = append(parts, key+": "+jsonrepair.ToString(sub))
					return true
				})
				lines = append(lines, strings.Join(parts, ", "))
			} else {
				lines = append(lines, jsonrepair.ToString(item))
			}
		}
		return strings.Join(lines, "\n")
	}
	return jsonrepair.ToString(value)
}
