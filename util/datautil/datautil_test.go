package datautil

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiff(t *testing.T) {
	a := map[string]any{
		"format":     "A1111",
		"parameters": map[string]any{"Steps": "20", "Seed": "42"},
		"tags":       []any{"a", "b"},
	}
	b := map[string]any{
		"format":     "A1111",
		"parameters": map[string]any{"Steps": "30", "CFG scale": "7"},
		"tags":       []any{"a", "b", "c"},
	}
	d := Diff(a, b)
	require.NotNil(t, d)
	assert.Equal(t, []Change{
		{Path: "parameters.CFG scale", Op: OpAdded, To: "7"},
		{Path: "parameters.Seed", Op: OpRemoved, From: "42"},
		{Path: "parameters.Steps", Op: OpChanged, From: "20", To: "30"},
		{Path: "tags[2]", Op: OpAdded, To: "c"},
	}, d.Changes)

	buf := &bytes.Buffer{}
	require.NoError(t, d.Print(buf))
	assert.Equal(t, "+ parameters.CFG scale = 7\n- parameters.Seed = 42\n~ parameters.Steps: 20 -> 30\n+ tags[2] = c\n",
		buf.String())
}

func TestDiffEqual(t *testing.T) {
	d := Diff(map[string]any{"a": []any{1.0}}, map[string]any{"a": []any{1.0}})
	assert.Nil(t, d)
	assert.True(t, d.Empty())
	buf := &bytes.Buffer{}
	require.NoError(t, d.Print(buf))
	assert.Equal(t, "no differences\n", buf.String())
	b, err := d.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, "null", string(b))
}

func TestDiffScalar(t *testing.T) {
	d := Diff("x", 1.0)
	require.NotNil(t, d)
	assert.Equal(t, []Change{{Path: "", Op: OpChanged, From: "x", To: 1.0}}, d.Changes)
}
