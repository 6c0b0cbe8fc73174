package jsonrepair

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string // Stringify of the result
	}{
		{"plain object", `{"a": 1, "b": "x"}`, `{"a":1,"b":"x"}`},
		{"trailing comma", `{"a": 1, "b": 2,}`, `{"a":1,"b":2}`},
		{"trailing comma in array", `[1, 2, ]`, `[1,2]`},
		{"nul poisoned", "{\x00\"\x00a\x00\"\x00:\x00 \x001\x00,\x00\"\x00b\x00\"\x00:\x002\x00}", `{"a":1,"b":2}`},
		{"bom and zero width", "\ufeff\u200b {\"a\":true}", `{"a":true}`},
		{"NaN", `{"cfg": NaN}`, `{"cfg":null}`},
		{"raw newline inside string", "{\"text\": \"line1\nline2\ttab\"}", `{"text":"line1\nline2\ttab"}`},
		{"double escaped newline", `{"text": "a\\nb"}`, `{"text":"a\nb"}`},
		{"control chars after bracket", "{\x01\x02\"a\": 1}", `{"a":1}`},
		{"single quotes", `{'a': 'b'}`, `{"a":"b"}`},
		{"unquoted keys", `{steps: 20, sampler: "euler", cfg: -7.5}`, `{"steps":20,"sampler":"euler","cfg":-7.5}`},
		{"numeric key order", `{"10": "a", "2": "b", "x": "c", "1": "d"}`, `{"1":"d","2":"b","10":"a","x":"c"}`},
		{"nested", `{"prompt": {"3": {"class_type": "KSampler", "inputs": {"seed": 42}}}}`,
			`{"prompt":{"3":{"class_type":"KSampler","inputs":{"seed":42}}}}`},
		{"unicode", `{"text": "猫 猫"}`, `{"text":"猫 猫"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := Parse(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, Stringify(v))
		})
	}
}

func TestParseRejects(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"plain text", "masterpiece, 1girl"},
		{"leading text", `Prompt: {"a": 1}`},
		{"broken", `{"a": `},
		{"function call", `{"a": alert(1)}`},
		{"getter", `{get a() { return 1 }}`},
		{"spread", `{...x}`},
		{"identifier", `{"a": window}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.input)
			assert.ErrorIs(t, err, ErrNotParseable)
		})
	}
}

func TestParseIdempotent(t *testing.T) {
	inputs := []string{
		`{"a": 1, "b": [1, 2, {"c": "d\ne"}],}`,
		`{'x': 'y', "z": NaN}`,
		`{k: [true, false, null], "s": "with \"quotes\""}`,
		`[{"0": 1, "-1": 2, "b": 3}]`,
	}
	for _, input := range inputs {
		first, err := Parse(input)
		require.NoError(t, err, input)
		out := Stringify(first)
		second, err := Parse(out)
		require.NoError(t, err, out)
		assert.Equal(t, out, Stringify(second))
		assert.Equal(t, out, Stringify(mustParse(t, StringifyIndent(second, "  "))))
	}
}

func mustParse(t *testing.T, s string) any {
	t.Helper()
	v, err := Parse(s)
	require.NoError(t, err)
	return v
}

func TestObject(t *testing.T) {
	o := NewObject()
	o.Set("b", 1.0)
	o.Set("a", 2.0)
	o.Set("b", 3.0)
	assert.Equal(t, []string{"b", "a"}, o.Keys())
	assert.Equal(t, 3.0, o.Get("b"))

	v, ok := o.GetFold("A")
	assert.True(t, ok)
	assert.Equal(t, 2.0, v)

	o.Delete("b")
	assert.Equal(t, []string{"a"}, o.Keys())
	assert.False(t, o.Has("b"))

	var nilObj *Object
	assert.Equal(t, 0, nilObj.Len())
	assert.Nil(t, nilObj.Get("x"))
}

func TestToString(t *testing.T) {
	assert.Equal(t, "20", ToString(20.0))
	assert.Equal(t, "7.5", ToString(7.5))
	assert.Equal(t, "123456789012", ToString(123456789012.0))
	assert.Equal(t, "1e+21", ToString(1e21))
	assert.Equal(t, "1e-7", ToString(1e-7))
	assert.Equal(t, "true", ToString(true))
	assert.Equal(t, "a,1", ToString([]any{"a", 1.0}))
	assert.Equal(t, "[object Object]", ToString(NewObject()))
}

func TestEscapeControlChars(t *testing.T) {
	assert.Equal(t, `{"a":"x\ny"}`+"\n", EscapeControlChars("{\"a\":\"x\ny\"}\n"))
	assert.Equal(t, `{"a":"\"\u0001"}`, EscapeControlChars("{\"a\":\"\\\"\x01\"}"))
}
