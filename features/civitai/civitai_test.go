package civitai

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, hits *atomic.Int32) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/model-versions/by-hash/{hash}", func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if r.PathValue("hash") != "ABCDEF1234" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id": 200, "modelId": 100, "name": "v2.0", "model": {"name": "Detail Tweaker"}}`))
	})
	mux.HandleFunc("/model-versions/{id}", func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Header().Set("Content-Type", "application/json")
		switch r.PathValue("id") {
		case "300":
			w.Write([]byte(`{"id": 300, "name": "", "model": {"id": 30, "name": ""}}`))
		case "400":
			w.Write([]byte(`{"id": 400}`))
		default:
			http.NotFound(w, r)
		}
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestClient(t *testing.T) {
	var hits atomic.Int32
	srv := newTestServer(t, &hits)
	client, err := NewClient(Config{ApiBase: srv.URL, Site: "https://example.com", RatePerSecond: 1000})
	require.NoError(t, err)
	ctx := context.Background()

	v, err := client.ByHash(ctx, " ABCDEF1234 ")
	require.NoError(t, err)
	assert.Equal(t, int64(100), v.ModelID)
	assert.Equal(t, int64(200), v.VersionID)
	assert.Equal(t, "Detail Tweaker", v.DisplayName())
	assert.Equal(t, "https://example.com/models/100?modelVersionId=200", v.URL)

	_, err = client.ByHash(ctx, "abcdef1234")
	require.NoError(t, err, "cache key is case-insensitive")
	assert.Equal(t, int32(1), hits.Load())

	v, err = client.ByVersionID(ctx, 300)
	require.NoError(t, err)
	assert.Equal(t, int64(30), v.ModelID)
	assert.Equal(t, "v300", v.DisplayName())

	_, err = client.ByVersionID(ctx, 400)
	assert.ErrorIs(t, err, ErrIncomplete)

	_, err = client.ByVersionID(ctx, 404)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = client.ByVersionID(ctx, 0)
	assert.ErrorIs(t, err, ErrInvalidID)

	_, err = client.ByHash(ctx, "  ")
	assert.ErrorIs(t, err, ErrEmptyHash)
}
