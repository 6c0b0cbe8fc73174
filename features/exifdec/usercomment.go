package exifdec

import (
	"bytes"
	"strings"

	"github.com/sagan/aimeta/util/stringutil"
)

// DecodeUserComment decodes an UNDEFINED-typed value such as UserComment:
// an 8 byte charset prefix ("ASCII\0\0\0", "UNICODE\0", "UTF-8\0\0\0") followed by the text.
// Many writers store raw UTF-8 JSON regardless of the prefix, so that is tried first.
func DecodeUserComment(raw []byte) string {
	var payload []byte
	if len(raw) > 8 {
		payload = raw[8:]
	}
	if text := trimComment(stringutil.BytesToString(payload)); len(strings.TrimSpace(text)) > 1 &&
		!strings.ContainsRune(text, 0) {
		if trimmed := strings.TrimSpace(text); trimmed[0] == '{' || trimmed[0] == '[' {
			return text
		}
	}
	prefix := raw[:min(8, len(raw))]
	var text string
	switch {
	case bytes.HasPrefix(prefix, []byte("ASCII")):
		text = stringutil.DecodeLatin1(payload)
	case bytes.HasPrefix(prefix, []byte("UNICODE")):
		text = stringutil.DecodeUTF16(payload, !looksLittleEndian(payload))
	default: // "UTF-8", "UTF8", undefined prefix
		text = stringutil.BytesToString(payload)
	}
	return trimComment(text)
}

// looksLittleEndian reports whether UTF-16 text without BOM starts with an ASCII
// character in little endian order ("A\x00").
func looksLittleEndian(b []byte) bool {
	return len(b) >= 2 && b[0] != 0 && b[1] == 0
}
