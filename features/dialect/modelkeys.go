package dialect

import (
	"regexp"
	"slices"
	"strings"

	"github.com/sagan/aimeta/features/jsonrepair"
)

var (
	whitespaceRe = regexp.MustCompile(`\s+`)
	// lora weight / count style keys that look like model keys but are parameters
	loraWeightRe       = regexp.MustCompile(`(?i)^lora(wt|weight|weights?|count|modelstrength|strength|clipstrength)`)
	loraWeightSpacedRe = regexp.MustCompile(`(?i)^lora\s*(wt|weight|count|model\s*strength|strength)`)
	strengthKeyRe      = regexp.MustCompile(`(?i)strength_model|strength_clip|loracount|lorawt`)
	loraNameKeyRe      = regexp.MustCompile(`(?i)^lora[_\-]name$`)

	modelNameKeyRe = regexp.MustCompile(`^(model_?name|vae_?name|vae_?hash)$`)

	modelInfoKeys = []string{
		"ckpt", "ckpt_name", "checkpoint", "model", "modelname", "lora", "lora_name", "loraname",
		"lorahashes", "modelhash", "model_hash", "ckpt_hash", "hash", "vae", "vae_name", "vaename", "vae_hash", "vaehash",
	}
)

// IsModelInfoKey reports whether key names model information (checkpoint, lora, vae,
// hashes ...). Empty and "none" values never count.
func IsModelInfoKey(key string, value any) bool {
	if key == "" || value == nil {
		return false
	}
	if s, ok := value.(string); ok {
		s = strings.TrimSpace(s)
		if s == "" || strings.EqualFold(s, "none") {
			return false
		}
	}
	spaced := strings.ToLower(strings.TrimSpace(key))
	normalized := whitespaceRe.ReplaceAllString(spaced, "")
	if loraWeightRe.MatchString(normalized) || loraWeightSpacedRe.MatchString(spaced) ||
		strengthKeyRe.MatchString(normalized) {
		return false
	}
	return slices.Contains(modelInfoKeys, normalized) || modelNameKeyRe.MatchString(normalized) ||
		loraNameKeyRe.MatchString(normalized)
}

var (
	modelLabelRe     = regexp.MustCompile(`^(ckpt_name|checkpoint|model|ckpt|modelname|model_name)$`)
	baseModelLabelRe = regexp.MustCompile(`^(base_ckpt_name|base model)$`)
	hashLabelRe      = regexp.MustCompile(`^(model_hash|ckpt_hash|hash)$`)
	numberedLoraRe   = regexp.MustCompile(`^lora[_\-]?(\d*)$`)
	leadingWordRe    = regexp.MustCompile(`^\w`)
)

// NormalizeModelLabel maps a raw model key to its display label,
// e.g. "ckpt_name" to "Model" and "lora_2" to "Lora 2".
// Unknown keys get underscores replaced by spaces and a capitalized first letter.
func NormalizeModelLabel(key string) string {
	if key == "" {
		return key
	}
	k := whitespaceRe.ReplaceAllString(strings.ToLower(strings.TrimSpace(key)), " ")
	switch {
	case modelLabelRe.MatchString(k):
		return "Model"
	case baseModelLabelRe.MatchString(k):
		return "Base model"
	case hashLabelRe.MatchString(k):
		return "Model hash"
	case k == "lora" || k == "lora_name":
		return "Lora"
	case whitespaceRe.ReplaceAllString(k, "") == "lorahashes":
		return "Lora hashes"
	}
	if m := numberedLoraRe.FindStringSubmatch(k); m != nil {
		if m[1] == "" {
			return "Lora"
		}
		return "Lora " + m[1]
	}
	label := strings.ReplaceAll(key, "_", " ")
	return leadingWordRe.ReplaceAllStringFunc(label, strings.ToUpper)
}

// walkForModelInfo calls fn for every primitive value anywhere in v whose key
// is a model info key.
func walkForModelInfo(v any, fn func(key string, value any)) {
	switch v := v.(type) {
	case []any:
		for _, item := range v {
			walkForModelInfo(item, fn)
		}
	case *jsonrepair.Object:
		v.Range(func(key string, value any) bool {
			if jsonrepair.IsPrimitive(value) && IsModelInfoKey(key, value) {
				fn(key, value)
			}
			walkForModelInfo(value, fn)
			return true
		})
	}
}

// collectPromptInfo walks v: model keys go to onModel, other primitives to
// onParam and nested containers are descended into. Structured model values
// are rendered as text; arrays of primitives under a model key are dropped.
func collectPromptInfo(v any, onParam, onModel func(key string, value any)) {
	switch v := v.(type) {
	case []any:
		for _, item := range v {
			collectPromptInfo(item, onParam, onModel)
		}
	case *jsonrepair.Object:
		v.Range(func(key string, value any) bool {
			switch {
			case IsModelInfoKey(key, value):
				switch value := value.(type) {
				case *jsonrepair.Object:
					onModel(key, renderValue(value))
				case []any:
					if len(value) > 0 && allContainers(value) {
						onModel(key, renderValue(value))
					}
				default:
					onModel(key, value)
				}
			case jsonrepair.IsPrimitive(value):
				onParam(key, value)
			case jsonrepair.IsContainer(value):
				collectPromptInfo(value, onParam, onModel)
			}
			return true
		})
	}
}

func allContainers(values []any) bool {
	for _, v := range values {
		if v != nil && !jsonrepair.IsContainer(v) {
			return false
		}
	}
	return true
}

// getFold is the case-insensitive property lookup of an object. Other values have no properties.
func getFold(v any, key string) any {
	if obj, ok := jsonrepair.AsObject(v); ok {
		value, _ := obj.GetFold(key)
		return value
	}
	return nil
}
