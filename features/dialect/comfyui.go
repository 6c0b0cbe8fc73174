package dialect

import (
	"regexp"
	"strings"

	"github.com/sagan/aimeta/features/jsonrepair"
)

var (
	comfyPositiveFields = []string{"text", "positive", "wildcard_text", "clip_l", "t5xxl", "string_a", "string_b"}
	comfyNegativeFields = []string{"text", "negative", "wildcard_text"}
)

type comfyResult struct {
	prompt   string
	negative string
	extras   []Item
	// model items the graph walk can't see, such as the generation_data checkpoint
	models []Item
}

// IsComfyUIGraph reports whether parsed has a generation_data field or a
// "prompt" node graph with at least one class_type node.
func IsComfyUIGraph(parsed any) bool {
	obj, ok := jsonrepair.AsObject(parsed)
	if !ok {
		return false
	}
	if jsonrepair.Truthy(obj.Get("generation_data")) {
		return true
	}
	graph, ok := jsonrepair.AsObject(obj.Get("prompt"))
	return ok && hasClassType(graph)
}

func hasClassType(graph *jsonrepair.Object) bool {
	found := false
	graph.Range(func(_ string, node any) bool {
		if n, ok := jsonrepair.AsObject(node); ok && jsonrepair.Truthy(n.Get("class_type")) {
			found = true
		}
		return !found
	})
	return found
}

// extractComfyUI reads the Civitai flavored generation_data field or the node
// graph under "prompt". It returns nil if neither yields a result.
func extractComfyUI(obj *jsonrepair.Object, p *Patterns) *comfyResult {
	if s, ok := obj.Get("generation_data").(string); ok && s != "" {
		if end := strings.LastIndex(s, "}") + 1; end > 0 {
			if md, ok := jsonrepair.ParseObject(s[:end]); ok {
				return generationData(md)
			}
		}
	}
	graph, ok := jsonrepair.AsObject(obj.Get("prompt"))
	if !ok || !hasClassType(graph) {
		return nil
	}
	return nodeGraph(graph, p)
}

func generationData(md *jsonrepair.Object) *comfyResult {
	res := &comfyResult{}
	if v := md.Get("prompt"); v != nil {
		res.prompt = jsonrepair.ToString(v)
	}
	if v := md.Get("negativePrompt"); v != nil {
		res.negative = jsonrepair.ToString(v)
	}
	if v := md.Get("negative"); res.negative == "" && jsonrepair.Truthy(v) {
		res.negative = jsonrepair.ToString(v)
	}
	if v := md.Get("steps"); v != nil {
		res.add("Steps", v)
	}
	if v := md.Get("samplerName"); jsonrepair.Truthy(v) {
		res.add("Sampler", v)
	}
	if v := md.Get("cfgScale"); v != nil {
		res.add("CFG scale", v)
	}
	if v := md.Get("seed"); v != nil {
		res.add("Seed", v)
	}
	if w, h := md.Get("width"), md.Get("height"); w != nil && h != nil {
		res.add("Size", jsonrepair.ToString(w)+"x"+jsonrepair.ToString(h))
	}
	if base, ok := jsonrepair.AsObject(md.Get("baseModel")); ok {
		if hash := base.Get("hash"); jsonrepair.Truthy(hash) {
			res.models = append(res.models, Item{Label: "Model hash", Value: jsonrepair.ToString(hash)})
		}
		if name := base.Get("modelFileName"); jsonrepair.Truthy(name) {
			res.models = append(res.models, Item{Label: "Model", Value: jsonrepair.ToString(name)})
		}
	}
	return res
}

func nodeGraph(graph *jsonrepair.Object, p *Patterns) *comfyResult {
	res := &comfyResult{
		prompt:   strings.Join(nodeValues(graph, p.TextNodeClass, comfyPositiveFields, true, p), "\n"),
		negative: strings.Join(nodeValues(graph, p.TextNodeClass, comfyNegativeFields, false, p), "\n"),
	}
	first := func(re *regexp.Regexp, fields ...string) (string, bool) {
		values := nodeValues(graph, re, fields, true, p)
		if len(values) == 0 {
			return "", false
		}
		return values[0], true
	}
	if steps, ok := first(p.SamplerClass, "steps"); ok {
		res.add("Steps", steps)
	}
	if sampler, _ := first(p.SamplerClass, "sampler_name"); sampler != "" {
		res.add("Sampler", sampler)
	}
	if cfg, ok := first(p.CFGClass, "guidance", "cfg"); ok {
		res.add("CFG scale", cfg)
	}
	if seed, ok := first(p.SeedClass, "noise_seed", "seed"); ok {
		res.add("Seed", seed)
	}
	w, wok := first(p.LatentClass, "width", "empty_latent_width")
	h, hok := first(p.LatentClass, "height", "empty_latent_height")
	if wok && hok {
		res.add("Size", w+"x"+h)
	}
	if model, _ := first(p.CheckpointClass, "ckpt_name", "base_ckpt_name", "unet_name"); model != "" {
		res.add("Model", model)
	}
	return res
}

// nodeValues returns the string or number inputs named fields of every node whose
// class_type matches classRe. With positive set, values with negative words are
// skipped; otherwise only values with negative words and no positive words are kept.
func nodeValues(graph *jsonrepair.Object, classRe *regexp.Regexp, fields []string, positive bool,
	p *Patterns) (values []string) {
	graph.Range(func(_ string, item any) bool {
		node, ok := jsonrepair.AsObject(item)
		if !ok {
			return true
		}
		classType := ""
		if ct := node.Get("class_type"); jsonrepair.Truthy(ct) {
			classType = strings.ToLower(jsonrepair.ToString(ct))
		}
		if !classRe.MatchString(classType) {
			return true
		}
		inputs, ok := jsonrepair.AsObject(node.Get("inputs"))
		if !ok {
			return true
		}
		for _, field := range fields {
			var value string
			switch v := inputs.Get(field).(type) {
			case string:
				value = v
			case float64:
				value = jsonrepair.FormatNumber(v)
			default:
				continue
			}
			str := strings.ReplaceAll(value, "_", " ")
			if positive {
				if p.NegativeWords.MatchString(str) {
					continue
				}
			} else if !p.NegativeWords.MatchString(str) || p.PositiveWords.MatchString(str) {
				continue
			}
			values = append(values, value)
		}
		return true
	})
	return values
}

func (c *comfyResult) add(label string, value any) {
	c.extras = append(c.extras, Item{Label: label, Value: jsonrepair.ToString(value)})
}
