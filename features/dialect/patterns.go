package dialect

import (
	"fmt"
	"regexp"
)

// Default heuristic tables. All are matched case-insensitively.
const (
	DefaultTextNodeClass   = `cliptextencode|wildcard|textboxmira|eff\. loader|ttn text`
	DefaultNegativeWords   = `bad quality|worst quality|low quality|bad anatomy|lowres`
	DefaultPositiveWords   = `masterpiece|absurdres|best quality|very aesthetic|1girl|2girls|3girls`
	DefaultGenericNegative = `low quality|censored|lowres|watermark|jpeg artifacts|worst quality|bad quality`
	DefaultGenericPositive = DefaultPositiveWords
	DefaultSamplerClass    = `scheduler|sampler`
	DefaultCFGClass        = `guidance|sampler|cliptextencode`
	DefaultSeedClass       = `randomnoise|sampler|seed`
	DefaultLatentClass     = `latentimage|loader`
	DefaultCheckpointClass = `checkpoint|loader`
)

// Patterns are the regular expressions the ComfyUI and generic JSON extractors use
// to pick nodes by class_type and to sort prompt text into positive / negative.
type Patterns struct {
	// class_type of nodes that carry prompt text
	TextNodeClass *regexp.Regexp
	// ComfyUI graph prompt sentiment
	NegativeWords *regexp.Regexp
	PositiveWords *regexp.Regexp
	// generic JSON prompt sentiment
	GenericNegative *regexp.Regexp
	GenericPositive *regexp.Regexp
	// class_type of nodes the auxiliary parameters are read from
	SamplerClass    *regexp.Regexp
	CFGClass        *regexp.Regexp
	SeedClass       *regexp.Regexp
	LatentClass     *regexp.Regexp
	CheckpointClass *regexp.Regexp
}

// PatternConfig is the user tunable form of Patterns. Empty fields keep the default.
type PatternConfig struct {
	TextNodeClass   string `toml:"text_node_class,omitempty" json:"text_node_class,omitempty"`
	NegativeWords   string `toml:"negative_words,omitempty" json:"negative_words,omitempty"`
	PositiveWords   string `toml:"positive_words,omitempty" json:"positive_words,omitempty"`
	GenericNegative string `toml:"generic_negative,omitempty" json:"generic_negative,omitempty"`
	GenericPositive string `toml:"generic_positive,omitempty" json:"generic_positive,omitempty"`
	SamplerClass    string `toml:"sampler_class,omitempty" json:"sampler_class,omitempty"`
	CFGClass        string `toml:"cfg_class,omitempty" json:"cfg_class,omitempty"`
	SeedClass       string `toml:"seed_class,omitempty" json:"seed_class,omitempty"`
	LatentClass     string `toml:"latent_class,omitempty" json:"latent_class,omitempty"`
	CheckpointClass string `toml:"checkpoint_class,omitempty" json:"checkpoint_class,omitempty"`
}

var defaultPatterns = mustCompile(PatternConfig{})

// DefaultPatterns returns the built-in tables. The result is shared and must not be modified.
func DefaultPatterns() *Patterns {
	return defaultPatterns
}

// Compile builds Patterns, using the default table for every empty field.
func (pc PatternConfig) Compile() (*Patterns, error) {
	p := &Patterns{}
	fields := []struct {
		name   string
		value  string
		def    string
		target **regexp.Regexp
	}{
		{"text_node_class", pc.TextNodeClass, DefaultTextNodeClass, &p.TextNodeClass},
		{"negative_words", pc.NegativeWords, DefaultNegativeWords, &p.NegativeWords},
		{"positive_words", pc.PositiveWords, DefaultPositiveWords, &p.PositiveWords},
		{"generic_negative", pc.GenericNegative, DefaultGenericNegative, &p.GenericNegative},
		{"generic_positive", pc.GenericPositive, DefaultGenericPositive, &p.GenericPositive},
		{"sampler_class", pc.SamplerClass, DefaultSamplerClass, &p.SamplerClass},
		{"cfg_class", pc.CFGClass, DefaultCFGClass, &p.CFGClass},
		{"seed_class", pc.SeedClass, DefaultSeedClass, &p.SeedClass},
		{"latent_class", pc.LatentClass, DefaultLatentClass, &p.LatentClass},
		{"checkpoint_class", pc.CheckpointClass, DefaultCheckpointClass, &p.CheckpointClass},
	}
	for _, field := range fields {
		expr := field.value
		if expr == "" {
			expr = field.def
		}
		re, err := regexp.Compile("(?i)" + expr)
		if err != nil {
			return nil, fmt.Errorf("invalid %s pattern %q: %w", field.name, expr, err)
		}
		*field.target = re
	}
	return p, nil
}

func mustCompile(pc PatternConfig) *Patterns {
	p, err := pc.Compile()
	if err != nil {
		panic(err)
	}
	return p
}
