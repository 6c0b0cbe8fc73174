package modelref

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sagan/aimeta/features/civitai"
	"github.com/sagan/aimeta/features/dialect"
)

func TestParseHashes(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []HashEntry
	}{
		{"single", "1a2b3c4d5e", []HashEntry{{"", "1a2b3c4d5e"}}},
		{"quoted list", `"detail: 0123456789ab, style: abcdef123456"`,
			[]HashEntry{{"detail", "0123456789ab"}, {"style", "abcdef123456"}}},
		{"json object", `{"lora1": "aaaaaa", "lora2": "bbbbbb"}`,
			[]HashEntry{{"lora1", "aaaaaa"}, {"lora2", "bbbbbb"}}},
		{"mixed bare", "abcdef1, x", []HashEntry{{"", "abcdef1"}}},
		{"too short", "abc", nil},
		{"empty", `""`, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseHashes(tt.input))
		})
	}
}

func TestParseCivitaiURNs(t *testing.T) {
	assert.Equal(t, []string{"1911770", "42"},
		ParseCivitaiURNs("urn:air:sdxl:checkpoint:civitai:1689192@1911770, urn:air:sdxl:lora:civitai:42"))
	assert.Empty(t, ParseCivitaiURNs("sdxl.safetensors"))
}

func TestFromRecord(t *testing.T) {
	rec := &dialect.Record{
		Models: []dialect.Item{
			{Label: "Model hash", Value: "1a2b3c4d"},
			{Label: "Lora hashes", Value: "a: 0123456789ab, b: abcdef123456"},
			{Label: "Model", Value: "urn:air:sdxl:checkpoint:civitai:1689192@1911770"},
			{Label: "Lora", Value: "plain.safetensors"},
		},
		Resources: []dialect.Resource{{VersionID: "12345", Strength: "0.8"}},
	}
	refs := FromRecord(rec)
	require.Len(t, refs, 5)
	assert.Equal(t, ModelReference{Label: "Model hash", Identifier: "1a2b3c4d", Kind: KindHash}, refs[0])
	assert.Equal(t, "a: 0123456789ab", refs[1].Text())
	assert.Equal(t, KindVersionID, refs[3].Kind)
	assert.Equal(t, "1911770", refs[3].Identifier)
	assert.Equal(t, ModelReference{Label: ResourcesLabel, Identifier: "12345", Kind: KindVersionID,
		DisplayHint: "0.8"}, refs[4])
	assert.Equal(t, "v12345 (0.8)", refs[4].Text())
}

func TestFromRecordGenerationData(t *testing.T) {
	rec := dialect.Classify(dialect.NewCandidate("generation_data", `{"generation_data": `+
		`"{\"prompt\":\"a fox\",\"baseModel\":{\"modelFileName\":\"illustrious\",\"hash\":\"deadbeef01\"}}"}`), nil)
	require.Equal(t, "ComfyUI", rec.Format)
	refs := FromRecord(rec)
	require.Len(t, refs, 1)
	assert.Equal(t, ModelReference{Label: "Model hash", Identifier: "deadbeef01", Kind: KindHash}, refs[0])
}

type fakeResolver struct {
	mu    sync.Mutex
	calls []string
}

func (f *fakeResolver) ByHash(ctx context.Context, hash string) (*civitai.Version, error) {
	f.mu.Lock()
	f.calls = append(f.calls, hash)
	f.mu.Unlock()
	if hash == "bad" {
		return nil, errors.New("boom")
	}
	return &civitai.Version{ModelID: 1, VersionID: 2, ModelName: "Model " + hash}, nil
}

func (f *fakeResolver) ByVersionID(ctx context.Context, id int64) (*civitai.Version, error) {
	f.mu.Lock()
	f.calls = append(f.calls, "v")
	f.mu.Unlock()
	return &civitai.Version{ModelID: 10, VersionID: id, VersionName: "v1.0"}, nil
}

func TestResolveAll(t *testing.T) {
	refs := []ModelReference{
		{Identifier: "good", Kind: KindHash},
		{Identifier: "bad", Kind: KindHash},
		{Identifier: "77", Kind: KindVersionID, DisplayHint: "0.5"},
		{Identifier: "x", Kind: KindVersionID},
	}
	resolver := &fakeResolver{}
	n := ResolveAll(context.Background(), refs, resolver, 2)
	assert.Equal(t, 2, n)
	assert.Len(t, resolver.calls, 3)
	require.NotNil(t, refs[0].Resolved)
	assert.Equal(t, "Model good", refs[0].Resolved.DisplayName())
	assert.Nil(t, refs[1].Resolved)
	assert.Equal(t, "bad", refs[1].Text())
	assert.Equal(t, "v1.0 (0.5)", refs[2].Text())
	assert.Nil(t, refs[3].Resolved)
}
