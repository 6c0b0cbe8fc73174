package dialect

import (
	"strings"

	"github.com/sagan/aimeta/constants"
	"github.com/sagan/aimeta/features/jsonrepair"
)

// extractNovelAI handles the NovelAI v3 / v4 JSON comment. v4 character
// captions are appended to the base prompt.
func extractNovelAI(c Candidate) *Record {
	r := newRecord(constants.FORMAT_NOVELAI, c.SourceTag)
	obj, _ := jsonrepair.AsObject(c.Parsed)

	var positives []string
	if prompt, ok := obj.Get("prompt").(string); ok && prompt != "" {
		positives = append(positives, prompt)
	}
	if captions, ok := path(obj, "v4_prompt", "caption", "char_captions").([]any); ok {
		for _, item := range captions {
			caption, _ := jsonrepair.AsObject(item)
			if text, ok := caption.Get("char_caption").(string); ok && strings.TrimSpace(text) != "" {
				positives = append(positives, text)
			}
		}
	}
	for i := range positives {
		positives[i] = UnescapePrompt(positives[i])
	}
	r.Positive = strings.Join(positives, "\n\n")

	if uc, ok := obj.Get("uc").(string); ok && uc != "" {
		r.Negative = UnescapePrompt(uc)
	} else if base := path(obj, "v4_negative_prompt", "caption", "base_caption"); jsonrepair.Truthy(base) {
		r.Negative = UnescapePrompt(jsonrepair.ToString(base))
	}

	info := obj.Clone()
	for _, key := range []string{"prompt", "uc", "v4_prompt", "v4_negative_prompt"} {
		info.Delete(key)
	}
	collectPromptInfo(info, r.addParam, r.addModelInfo)
	walkForModelInfo(obj, r.addModelInfo)
	return r
}

// path follows nested object keys and returns nil if any step is missing.
func path(v any, keys ...string) any {
	for _, key := range keys {
		obj, ok := jsonrepair.AsObject(v)
		if !ok {
			return nil
		}
		v = obj.Get(key)
	}
	return v
}
