package dialect

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/sagan/aimeta/constants"
	"github.com/sagan/aimeta/features/jsonrepair"
)

var (
	negativeMarkerRe = regexp.MustCompile(`(?i)\bnegative\s+prompt\s*:`)
	stepsMarkerRe    = regexp.MustCompile(`(?i)\bsteps\s*:`)
	promptPrefixRe   = regexp.MustCompile(`^(Prompt:|Workflow:)`)
)

// ParseA1111 parses a Stable Diffusion WebUI style plain-text parameters block:
//
//	positive prompt
//	Negative prompt: negative prompt
//	Steps: 20, Sampler: Euler a, CFG scale: 7, Seed: 42, Model hash: 1a2b3c4d, Model: foo
func ParseA1111(comment string) *Record {
	r := newRecord(constants.FORMAT_A1111, "")
	comment = strings.TrimSpace(comment)
	comment = StripSurroundingQuotes(comment)
	comment = UnescapePrompt(comment)
	if rest, ok := strings.CutPrefix(comment, "UNICODE"); ok {
		comment = strings.TrimSpace(rest)
	}

	negIdx, stepsIdx := -1, -1
	if loc := negativeMarkerRe.FindStringIndex(comment); loc != nil {
		negIdx = loc[0]
	}
	if loc := stepsMarkerRe.FindStringIndex(comment); loc != nil {
		stepsIdx = loc[0]
	}
	var additional string
	if negIdx != -1 {
		r.Positive = strings.TrimSpace(comment[:negIdx])
		negEnd := len(comment)
		if stepsIdx > negIdx {
			negEnd = stepsIdx
			additional = strings.TrimSpace(comment[stepsIdx:])
		}
		if colon := strings.IndexByte(comment[negIdx:], ':'); colon != -1 && negIdx+colon+1 <= negEnd {
			r.Negative = strings.TrimSpace(comment[negIdx+colon+1 : negEnd])
		}
	} else if stepsIdx != -1 {
		r.Positive = strings.TrimSpace(comment[:stepsIdx])
		additional = strings.TrimSpace(comment[stepsIdx:])
	} else {
		r.Positive = comment
	}

	for _, item := range SplitPromptInfo(additional) {
		label, value, ok := strings.Cut(item, ":")
		if !ok {
			continue
		}
		label = strings.TrimSpace(label)
		value = strings.TrimSpace(value)
		if (strings.HasPrefix(value, "[") && !strings.HasSuffix(value, "]")) ||
			(strings.HasPrefix(value, "{") && !strings.HasSuffix(value, "}")) {
			if start := strings.Index(additional, value); start != -1 {
				if full := extractJSONValue(additional, start); full != "" {
					value = full
				}
			}
		}
		if strings.HasPrefix(value, "[") || strings.HasPrefix(value, "{") {
			if parsed, err := jsonrepair.Decode([]byte(value)); err == nil && jsonrepair.IsContainer(parsed) {
				walkForModelInfo(parsed, r.addModel)
				continue
			}
		}
		if IsModelInfoKey(label, value) {
			r.addModel(label, value)
		} else {
			r.addParam(label, value)
		}
	}
	return r
}

// SplitPromptInfo splits a parameters line at commas, except commas nested in
// (), [] or {} or inside a double-quoted string. A space following a separator is skipped.
func SplitPromptInfo(str string) []string {
	var result []string
	var current strings.Builder
	parenDepth, bracketDepth, braceDepth := 0, 0, 0
	inQuote := false
	for i := 0; i < len(str); i++ {
		c := str[i]
		if c == '"' {
			inQuote = !inQuote
			current.WriteByte(c)
			continue
		}
		if !inQuote {
			switch c {
			case '(':
				parenDepth++
			case ')':
				parenDepth--
			case '[':
				bracketDepth++
			case ']':
				bracketDepth--
			case '{':
				braceDepth++
			case '}':
				braceDepth--
			}
		}
		if c == ',' && !inQuote && parenDepth == 0 && bracketDepth == 0 && braceDepth == 0 {
			result = append(result, current.String())
			current.Reset()
			if i+1 < len(str) && str[i+1] == ' ' {
				i++
			}
		} else {
			current.WriteByte(c)
		}
	}
	if strings.TrimSpace(current.String()) != "" {
		result = append(result, current.String())
	}
	return result
}

// extractJSONValue returns the balanced bracket run of str starting at start,
// counting only the opening character found there. It returns "" if unbalanced.
func extractJSONValue(str string, start int) string {
	if start < 0 || start >= len(str) {
		return ""
	}
	open := str[start]
	close := byte('}')
	if open == '[' {
		close = ']'
	}
	depth := 0
	for i := start; i < len(str); i++ {
		if str[i] == open {
			depth++
		}
		if str[i] == close {
			depth--
		}
		if depth == 0 {
			return str[start : i+1]
		}
	}
	return ""
}

func isQuoteRune(r rune) bool {
	switch r {
	case '"', '\'', '“', '”', '„', '‘', '’':
		return true
	}
	return false
}

// StripSurroundingQuotes removes any run of ASCII or typographic quote characters
// from both ends, independently, then unescapes \".
func StripSurroundingQuotes(str string) string {
	for str != "" {
		r, size := utf8.DecodeRuneInString(str)
		if !isQuoteRune(r) {
			break
		}
		str = str[size:]
	}
	for str != "" {
		r, size := utf8.DecodeLastRuneInString(str)
		if !isQuoteRune(r) {
			break
		}
		str = str[:len(str)-size]
	}
	return strings.ReplaceAll(str, `\"`, `"`)
}

var unescaper = strings.NewReplacer(`\\n`, "\n", `\n`, "\n")

// UnescapePrompt turns literal \n and \\n sequences into newlines and \\ into \.
func UnescapePrompt(str string) string {
	return strings.ReplaceAll(unescaper.Replace(str), `\\`, `\`)
}

// StripPromptPrefix removes a leading "Prompt:" or "Workflow:" label that some
// tools put in front of JSON stored in EXIF tags.
func StripPromptPrefix(str string) string {
	return strings.TrimSpace(promptPrefixRe.ReplaceAllString(str, ""))
}
