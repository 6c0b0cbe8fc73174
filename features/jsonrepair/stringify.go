package jsonrepair

import (
	"bytes"
	"encoding/json"
	"math"
	"strings"
)

// Stringify renders v as compact JSON, keeping object key order.
func Stringify(v any) string {
	var sb strings.Builder
	writeValue(&sb, v, "", "")
	return sb.String()
}

// StringifyIndent is like Stringify but pretty prints with indent per level.
func StringifyIndent(v any, indent string) string {
	var sb strings.Builder
	writeValue(&sb, v, indent, "")
	return sb.String()
}

func writeValue(sb *strings.Builder, v any, indent, prefix string) {
	switch v := v.(type) {
	case nil:
		sb.WriteString("null")
	case bool:
		if v {
			sb.WriteString("true")
		} else {
			sb.WriteString("false")
		}
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			sb.WriteString("null")
		} else {
			sb.WriteString(FormatNumber(v))
		}
	case string:
		writeString(sb, v)
	case []any:
		if len(v) == 0 {
			sb.WriteString("[]")
			return
		}
		inner := prefix + indent
		sb.WriteByte('[')
		for i, item := range v {
			if i > 0 {
				sb.WriteByte(',')
			}
			newline(sb, indent, inner)
			writeValue(sb, item, indent, inner)
		}
		newline(sb, indent, prefix)
		sb.WriteByte(']')
	case *Object:
		if v.Len() == 0 {
			sb.WriteString("{}")
			return
		}
		inner := prefix + indent
		sb.WriteByte('{')
		i := 0
		v.Range(func(key string, value any) bool {
			if i > 0 {
				sb.WriteByte(',')
			}
			i++
			newline(sb, indent, inner)
			writeString(sb, key)
			sb.WriteByte(':')
			if indent != "" {
				sb.WriteByte(' ')
			}
			writeValue(sb, value, indent, inner)
			return true
		})
		newline(sb, indent, prefix)
		sb.WriteByte('}')
	default:
		data, err := json.Marshal(v)
		if err != nil {
			sb.WriteString("null")
		} else {
			sb.Write(data)
		}
	}
}

func newline(sb *strings.Builder, indent, prefix string) {
	if indent == "" {
		return
	}
	sb.WriteByte('\n')
	sb.WriteString(prefix)
}

func writeString(sb *strings.Builder, s string) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		sb.WriteString(`""`)
		return
	}
	sb.Write(bytes.TrimSuffix(buf.Bytes(), []byte{'\n'}))
}
