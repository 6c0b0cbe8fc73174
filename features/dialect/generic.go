package dialect

import (
	"slices"
	"strings"

	"github.com/sagan/aimeta/constants"
	"github.com/sagan/aimeta/features/jsonrepair"
)

var promptKeys = []string{
	"text", "text_l", "text_a", "text_b", "negative", "positive", "result", "tags", "string",
	"string_field", "string_a", "string_b", "prompt", "populated_text", "value",
}

// extractGeneric handles any other JSON payload, typically ComfyUI API prompts
// without a recognizable graph and Civitai extraMetadata comments.
func extractGeneric(c Candidate, p *Patterns) *Record {
	r := newRecord(constants.FORMAT_COMFYUI, c.SourceTag)
	var positives, negatives []string
	collectTexts(c.Parsed, p, &positives, &negatives)

	var wildcards []string
	collectKeyValues(c.Parsed, "wildcard_text", &wildcards)

	var extraPositives []string
	collectExtraPrompts(c.Parsed, func(prompt string, negative bool) {
		if negative {
			negatives = append(negatives, prompt)
		} else if strings.TrimSpace(prompt) != "" {
			extraPositives = append(extraPositives, prompt)
		}
	})
	positives = append(positives, extraPositives...)

	r.Positive = joinUnescaped(positives, "\n")
	r.Negative = joinUnescaped(negatives, "\n")
	r.Auxiliary = strings.Join(wildcards, "\n")

	r.addFormatBlocks(c.Parsed, constants.FORMAT_COMFYUI, c.SourceTag)
	walkForModelInfo(c.Parsed, r.addModelInfo)
	r.addResources(collectResources(c.Parsed))
	return r
}

func joinUnescaped(texts []string, sep string) string {
	out := make([]string, len(texts))
	for i, text := range texts {
		out[i] = UnescapePrompt(text)
	}
	return strings.Join(out, sep)
}

// collectTexts sorts every string under a prompt key into positives or negatives.
// value, string_a and string_b are always positive. Other keys go by content:
// a positive word wins over a negative word and text with neither is dropped.
func collectTexts(v any, p *Patterns, positives, negatives *[]string) {
	switch v := v.(type) {
	case []any:
		for _, item := range v {
			collectTexts(item, p, positives, negatives)
		}
	case *jsonrepair.Object:
		v.Range(func(key string, value any) bool {
			s, ok := value.(string)
			if !ok {
				collectTexts(value, p, positives, negatives)
				return true
			}
			normKey := strings.ToLower(strings.TrimSuffix(strings.TrimSpace(key), ":"))
			switch {
			case normKey == "value" || normKey == "string_a" || normKey == "string_b":
				*positives = append(*positives, s)
			case !slices.Contains(promptKeys, normKey):
			case p.GenericPositive.MatchString(s):
				*positives = append(*positives, s)
			case p.GenericNegative.MatchString(s):
				*negatives = append(*negatives, s)
			}
			return true
		})
	}
}

// collectKeyValues appends every string value of key found at any depth.
func collectKeyValues(v any, key string, out *[]string) {
	switch v := v.(type) {
	case []any:
		for _, item := range v {
			collectKeyValues(item, key, out)
		}
	case *jsonrepair.Object:
		v.Range(func(k string, value any) bool {
			if s, ok := value.(string); ok && k == key {
				*out = append(*out, s)
			} else {
				collectKeyValues(value, key, out)
			}
			return true
		})
	}
}

// extraMetadata returns the decoded value of a Civitai extraMetadata field, which
// is either an object or a JSON string of one.
func extraMetadata(value any) (*jsonrepair.Object, bool) {
	if s, ok := value.(string); ok {
		parsed, err := jsonrepair.Decode([]byte(jsonrepair.EscapeControlChars(s)))
		if err != nil {
			return nil, false
		}
		return jsonrepair.AsObject(parsed)
	}
	return jsonrepair.AsObject(value)
}

// eachExtraMetadata calls fn with every extraMetadata object at any depth.
// extraMetadata values are not searched further.
func eachExtraMetadata(v any, fn func(md *jsonrepair.Object)) {
	switch v := v.(type) {
	case []any:
		for _, item := range v {
			eachExtraMetadata(item, fn)
		}
	case *jsonrepair.Object:
		v.Range(func(key string, value any) bool {
			if key != "extraMetadata" {
				eachExtraMetadata(value, fn)
			} else if md, ok := extraMetadata(value); ok {
				fn(md)
			}
			return true
		})
	}
}

// collectExtraPrompts reports the prompt and negativePrompt of every extraMetadata.
func collectExtraPrompts(v any, fn func(prompt string, negative bool)) {
	eachExtraMetadata(v, func(md *jsonrepair.Object) {
		if s, ok := md.Get("prompt").(string); ok {
			fn(s, false)
		}
		if s, ok := md.Get("negativePrompt").(string); ok {
			fn(s, true)
		}
	})
}

// collectResources returns the extraMetadata.resources entries that carry a
// model version id.
func collectResources(v any) (resources []Resource) {
	eachExtraMetadata(v, func(md *jsonrepair.Object) {
		list, _ := md.Get("resources").([]any)
		for _, item := range list {
			res, ok := jsonrepair.AsObject(item)
			if !ok {
				continue
			}
			id := res.Get("modelVersionId")
			if id == nil {
				id = res.Get("id")
			}
			if id == nil {
				continue
			}
			strength := res.Get("strength")
			if strength == nil {
				strength = res.Get("weight")
			}
			resource := Resource{VersionID: jsonrepair.ToString(id)}
			if strength != nil {
				resource.Strength = jsonrepair.ToString(strength)
			}
			resources = append(resources, resource)
		}
	})
	return resources
}
