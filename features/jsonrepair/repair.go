package jsonrepair

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	log "github.com/sirupsen/logrus"
)

var ErrNotParseable = errors.New("not parseable")

var (
	zeroWidthRegex       = regexp.MustCompile("[\u200B-\u200D\u2060\uFEFF]")
	leadingControlRegex  = regexp.MustCompile(`^([{\[])[\x00-\x1f]+`)
	doubleEscapedNewline = regexp.MustCompile(`\\\\n`)
	nanRegex             = regexp.MustCompile(`\bNaN\b`)
	trailingCommaRegex   = regexp.MustCompile(`,\s*([}\]])`)
	bracketedRegex       = regexp.MustCompile(`^\s*[\[{].*[}\]]\s*$`)
)

// Parse decodes text that is believed to hold a JSON object or array,
// repairing the damage metadata writers and lossy encodings commonly do to it.
// It returns ErrNotParseable if no repair produced a value.
func Parse(str string) (any, error) {
	fixed := Sanitize(str)
	if fixed == "" {
		return nil, fmt.Errorf("%w: not json-shaped", ErrNotParseable)
	}
	if v, err := Decode([]byte(fixed)); err == nil {
		return v, nil
	}
	if v, err := Decode([]byte(strings.ReplaceAll(fixed, "'", `"`))); err == nil {
		return v, nil
	}
	if bracketedRegex.MatchString(fixed) {
		if v, err := parseLiteral(fixed); err == nil {
			log.Tracef("parsed json-like text as object literal")
			return v, nil
		} else {
			log.Tracef("object literal fallback failed: %v", err)
		}
	}
	return nil, ErrNotParseable
}

// Sanitize applies the textual repairs Parse does before decoding.
// It returns "" if str does not start with "{" or "[" after cleanup.
func Sanitize(str string) string {
	fixed := zeroWidthRegex.ReplaceAllString(strings.TrimSpace(str), "")
	fixed = strings.TrimSpace(fixed)
	// UTF-16 text decoded as UTF-8 leaves a NUL between every character.
	fixed = strings.ReplaceAll(fixed, "\x00", "")
	fixed = leadingControlRegex.ReplaceAllString(fixed, "$1")
	if !strings.HasPrefix(fixed, "{") && !strings.HasPrefix(fixed, "[") {
		return ""
	}
	fixed = doubleEscapedNewline.ReplaceAllString(fixed, `\n`)
	fixed = nanRegex.ReplaceAllString(fixed, "null")
	fixed = trailingCommaRegex.ReplaceAllString(fixed, "$1")
	return EscapeControlChars(fixed)
}

// EscapeControlChars escapes raw control characters found inside JSON string literals.
func EscapeControlChars(str string) string {
	var sb strings.Builder
	sb.Grow(len(str))
	inString := false
	escapeNext := false
	for _, c := range str {
		switch {
		case escapeNext:
			escapeNext = false
		case inString && c == '\\':
			escapeNext = true
		case c == '"':
			inString = !inString
		case inString && (c < 32 || c == 127):
			switch c {
			case '\t':
				sb.WriteString(`\t`)
			case '\n':
				sb.WriteString(`\n`)
			case '\r':
				sb.WriteString(`\r`)
			default:
				fmt.Fprintf(&sb, `\u%04x`, c)
			}
			continue
		}
		sb.WriteRune(c)
	}
	return sb.String()
}

// ParseObject is Parse restricted to objects.
func ParseObject(str string) (*Object, bool) {
	v, err := Parse(str)
	if err != nil {
		return nil, false
	}
	return AsObject(v)
}
