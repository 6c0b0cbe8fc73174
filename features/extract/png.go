package extract

import (
	"slices"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/sagan/aimeta/constants"
	"github.com/sagan/aimeta/features/container"
	"github.com/sagan/aimeta/features/dialect"
	"github.com/sagan/aimeta/features/jsonrepair"
)

type pngEntry struct {
	keyword string
	text    string
	parsed  any
}

func (e pngEntry) candidate() dialect.Candidate {
	return dialect.Candidate{SourceTag: e.keyword, Text: e.text, Parsed: e.parsed}
}

// pngEntries groups text chunk entries by lowercased keyword, in order of first appearance.
type pngEntries struct {
	keywords []string
	entries  map[string][]pngEntry
}

func (pe *pngEntries) add(key string, e pngEntry) {
	if _, ok := pe.entries[key]; !ok {
		pe.keywords = append(pe.keywords, key)
	}
	pe.entries[key] = append(pe.entries[key], e)
}

func (pe *pngEntries) first(key string) (pngEntry, bool) {
	if list := pe.entries[key]; len(list) > 0 {
		return list[0], true
	}
	return pngEntry{}, false
}

// Image info items taken from text chunks.
var pngInfoKeywords = []struct{ keyword, label string }{
	{"title", "Title"},
	{"author", "Author"},
	{"creation time", "Creation Time"},
	{"source", "Source"},
	{"generation_time", "Generation Time"},
	{"software", "Software"},
}

// parsePNGText parses a chunk text as JSON. parameters is always plain text.
func parsePNGText(key, text string) any {
	if key == "parameters" {
		return nil
	}
	toParse := text
	if strings.Contains(text, `"sampler"`) && strings.Contains(text, `"signed_hash"`) {
		if i := strings.Index(text, "{"); i >= 0 {
			toParse = text[i:]
		}
	}
	parsed, _ := jsonrepair.Parse(toParse)
	if parsed == nil && key == "prompt" {
		if i := strings.IndexAny(text, "{["); i >= 0 {
			if retry, _ := jsonrepair.Parse(text[i:]); jsonrepair.IsContainer(retry) {
				parsed = retry
			}
		}
	}
	return parsed
}

func (r *router) collectPNGEntries(pc *container.PNGChunks) *pngEntries {
	pe := &pngEntries{entries: map[string][]pngEntry{}}
	for _, te := range pc.TextEntries(r.ctx) {
		if te.Keyword == "" {
			continue
		}
		key := strings.ToLower(te.Keyword)
		if !slices.Contains(constants.PngKeywords, key) {
			log.Tracef("skip png %s chunk %q", te.ChunkType, te.Keyword)
			continue
		}
		pe.add(key, pngEntry{keyword: te.Keyword, text: te.Text, parsed: parsePNGText(key, te.Text)})
	}
	return pe
}

// png tries, in order: merged InvokeAI chunks, a NovelAI chunk, a Midjourney
// Description, A1111 parameters, a ComfyUI prompt + workflow pair, any other
// known chunk, the eXIf chunk and finally the alpha channel.
func (r *router) png() *dialect.Record {
	pc := container.ReadPNG(r.data)
	pe := r.collectPNGEntries(pc)
	for _, info := range pngInfoKeywords {
		if e, ok := pe.first(info.keyword); ok && strings.TrimSpace(e.text) != "" {
			r.items = append(r.items, dialect.Item{Label: info.label, Value: e.text})
		}
	}

	if rec := r.pngText(pe); rec != nil && rec.Found {
		return rec
	}
	if tiff := pc.Exif(); len(tiff) > 0 {
		r.tiff = tiff
		if rec := r.exif(tiff); rec != nil && rec.Found {
			return rec
		}
	}
	if r.opts.AlphaFallback {
		text, ok, err := container.ReadAlphaLSB(r.data)
		if err != nil {
			log.Debugf("%s: alpha channel: %v", r.opts.FileName, err)
		} else if ok {
			return dialect.Classify(dialect.NewCandidate(constants.SOURCE_NOVELAI_ALPHA, text), r.patterns)
		}
	}
	return nil
}

func (r *router) pngText(pe *pngEntries) *dialect.Record {
	var meta, graph []pngEntry
	for _, key := range pe.keywords {
		switch {
		case !dialect.IsInvokeAIKeyword(key):
		case strings.Contains(key, "metadata"):
			meta = pe.entries[key]
		default:
			graph = pe.entries[key]
		}
	}
	if len(meta) > 0 || len(graph) > 0 {
		merged := jsonrepair.NewObject()
		var first pngEntry
		if len(meta) > 0 {
			first = meta[0]
			merged.Set("invokeai_metadata", containerOrText(meta[0]))
		}
		if len(graph) > 0 {
			if len(meta) == 0 {
				first = graph[0]
			}
			merged.Set("invokeai_graph", containerOrText(graph[0]))
		}
		return dialect.Classify(dialect.Candidate{SourceTag: first.keyword, Text: first.text, Parsed: merged}, r.patterns)
	}

	for _, key := range pe.keywords {
		for _, e := range pe.entries[key] {
			if dialect.IsNovelAI(e.parsed) {
				return dialect.Classify(e.candidate(), r.patterns)
			}
		}
	}

	if e, ok := pe.first("description"); ok && !dialect.IsNovelAI(e.parsed) {
		return dialect.Classify(e.candidate(), r.patterns)
	}

	if e, ok := pe.first("parameters"); ok {
		if text := dialect.StripSurroundingQuotes(strings.TrimSpace(e.text)); text != "" {
			rec := dialect.ParseA1111(text)
			rec.SourceTag = e.keyword
			if wf, ok := pe.first("workflow"); ok && jsonrepair.IsContainer(wf.parsed) {
				rec.AddBlock(dialect.FieldLabel("workflow"), wf.parsed)
			}
			return rec
		}
	}

	prompt, hasPrompt := pe.first("prompt")
	workflow, hasWorkflow := pe.first("workflow")
	if hasPrompt && hasWorkflow && jsonrepair.IsContainer(prompt.parsed) && jsonrepair.IsContainer(workflow.parsed) {
		merged := jsonrepair.NewObject()
		merged.Set("prompt", prompt.parsed)
		merged.Set("workflow", workflow.parsed)
		return dialect.Classify(dialect.Candidate{SourceTag: prompt.keyword, Text: prompt.text, Parsed: merged},
			r.patterns)
	}

	// last found entry wins
	var rec *dialect.Record
	for _, key := range pe.keywords {
		if dialect.IsInvokeAIKeyword(key) {
			continue
		}
		for _, e := range pe.entries[key] {
			if next := dialect.Classify(e.candidate(), r.patterns); next.Found {
				rec = next
			}
		}
	}
	return rec
}

func containerOrText(e pngEntry) any {
	if jsonrepair.IsContainer(e.parsed) {
		return e.parsed
	}
	return e.text
}
