package dialect

import (
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/sagan/aimeta/constants"
	"github.com/sagan/aimeta/features/jsonrepair"
)

// Candidate is a metadata payload found in a container, tagged with the tag or
// chunk keyword it came from.
type Candidate struct {
	SourceTag string
	// Text is the payload as decoded from bytes.
	Text string
	// Parsed is the repaired JSON value of Text, or nil if Text is not JSON.
	Parsed any
}

// NewCandidate repair-parses text and returns the candidate.
func NewCandidate(sourceTag, text string) Candidate {
	parsed, _ := jsonrepair.Parse(text)
	return Candidate{SourceTag: sourceTag, Text: text, Parsed: parsed}
}

// IsInvokeAIKeyword reports whether tag is an InvokeAI chunk keyword.
func IsInvokeAIKeyword(tag string) bool {
	n := strings.TrimSpace(strings.ReplaceAll(strings.ToLower(tag), "-", "_"))
	return n == "invokeai_metadata" || n == "invokeai_graph"
}

// IsMidjourneyKeyword reports whether tag is the "Description" keyword Midjourney writes.
func IsMidjourneyKeyword(tag string) bool {
	return strings.ToLower(strings.TrimSpace(tag)) == "description"
}

// IsNovelAI reports whether parsed is a NovelAI payload: it has both signed_hash
// and sampler keys or its software field mentions NovelAI.
func IsNovelAI(parsed any) bool {
	obj, ok := jsonrepair.AsObject(parsed)
	if !ok {
		return false
	}
	if obj.Has("signed_hash") && obj.Has("sampler") {
		return true
	}
	software := obj.Get("software")
	if !jsonrepair.Truthy(software) {
		software = obj.Get("Software")
	}
	s, ok := software.(string)
	return ok && strings.Contains(strings.ToLower(s), "novelai")
}

// Classify picks the dialect of a candidate and extracts its record. The order is
// Midjourney, ComfyUI graph, NovelAI, InvokeAI, generic JSON and finally A1111
// plain text. p may be nil for the default pattern tables.
func Classify(c Candidate, p *Patterns) *Record {
	if p == nil {
		p = DefaultPatterns()
	}
	if IsMidjourneyKeyword(c.SourceTag) && !IsNovelAI(c.Parsed) {
		return extractMidjourney(c)
	}
	if jsonrepair.IsContainer(c.Parsed) {
		if obj, ok := jsonrepair.AsObject(c.Parsed); ok && IsComfyUIGraph(obj) {
			if comfy := extractComfyUI(obj, p); comfy != nil {
				return comfyRecord(c, comfy)
			}
		}
		switch {
		case IsNovelAI(c.Parsed):
			return extractNovelAI(c)
		case IsInvokeAIKeyword(c.SourceTag):
			return extractInvokeAI(c)
		default:
			return extractGeneric(c, p)
		}
	}
	if strings.TrimSpace(c.Text) != "" {
		r := ParseA1111(c.Text)
		r.SourceTag = c.SourceTag
		return r
	}
	log.Debugf("no metadata in %q candidate", c.SourceTag)
	return NotFound()
}

func extractMidjourney(c Candidate) *Record {
	r := newRecord(constants.FORMAT_MIDJOURNEY, c.SourceTag)
	r.Positive = UnescapePrompt(c.Text)
	if strings.TrimSpace(c.Text) != "" {
		r.addParam("Description", c.Text)
	}
	if obj, ok := jsonrepair.AsObject(c.Parsed); ok && obj.Len() > 0 {
		r.addFormatBlocks(obj, constants.FORMAT_MIDJOURNEY, c.SourceTag)
	} else if arr, ok := c.Parsed.([]any); ok && len(arr) > 0 {
		r.addFormatBlocks(arr, constants.FORMAT_MIDJOURNEY, c.SourceTag)
	}
	return r
}

func comfyRecord(c Candidate, comfy *comfyResult) *Record {
	r := newRecord(constants.FORMAT_COMFYUI, c.SourceTag)
	r.Positive = UnescapePrompt(comfy.prompt)
	r.Negative = UnescapePrompt(comfy.negative)
	r.Params = append(r.Params, comfy.extras...)
	for _, item := range comfy.models {
		r.addModel(item.Label, item.Value)
	}
	r.addFormatBlocks(c.Parsed, constants.FORMAT_COMFYUI, c.SourceTag)
	walkForModelInfo(c.Parsed, r.addModelInfo)
	r.addResources(collectResources(c.Parsed))
	return r
}
