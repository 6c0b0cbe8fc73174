package dialect

import (
	"strings"

	"github.com/sagan/aimeta/constants"
	"github.com/sagan/aimeta/features/jsonrepair"
)

// extractInvokeAI handles invokeai_metadata / invokeai_graph chunks. The payload is
// either the metadata object itself or a merged {invokeai_metadata, invokeai_graph} object.
func extractInvokeAI(c Candidate) *Record {
	r := newRecord(constants.FORMAT_INVOKEAI, c.SourceTag)
	meta := getFold(c.Parsed, "invokeai_metadata")
	if !jsonrepair.IsContainer(meta) {
		meta = c.Parsed
	}
	obj, _ := jsonrepair.AsObject(meta)

	var positives []string
	if s, ok := obj.Get("positive_prompt").(string); ok && strings.TrimSpace(s) != "" {
		positives = append(positives, s)
	}
	value := obj.Get("Value")
	if obj.Has("value") {
		value = obj.Get("value")
	}
	if s, ok := value.(string); ok && strings.TrimSpace(s) != "" {
		positives = append(positives, s)
	}
	for i := range positives {
		positives[i] = UnescapePrompt(positives[i])
	}
	r.Positive = strings.Join(positives, "\n\n")
	if s, ok := obj.Get("negative_prompt").(string); ok {
		r.Negative = UnescapePrompt(s)
	}

	r.addFormatBlocks(c.Parsed, constants.FORMAT_INVOKEAI, c.SourceTag)
	walkForModelInfo(meta, r.addModelInfo)
	return r
}
