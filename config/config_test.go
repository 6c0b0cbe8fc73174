package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sagan/aimeta/constants"
)

func TestLoad(t *testing.T) {
	t.Setenv(constants.ENV_CIVITAI, "")
	t.Setenv(constants.ENV_CIVITAI_API, "")
	t.Setenv(constants.ENV_CIVITAI_API_KEY, "")
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
alpha_fallback = false
thumbnail = 128

[civitai]
enabled = true
api_key = "secret"
timeout = "3s"

[patterns]
negative_words = "ugly"
`), 0644))

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, path, c.Path)
	assert.False(t, c.AlphaFallback)
	assert.Equal(t, 128, c.Thumbnail)
	assert.True(t, c.Civitai.Enabled)
	assert.Equal(t, "secret", c.Civitai.ApiKey)
	assert.Equal(t, constants.DEFAULT_CIVITAI_API, c.Civitai.ApiBase)
	assert.Equal(t, "ugly", c.Patterns.NegativeWords)

	cfg, err := c.Civitai.ClientConfig()
	require.NoError(t, err)
	assert.Equal(t, 3*time.Second, cfg.Timeout)

	client, err := c.NewCivitaiClient()
	require.NoError(t, err)
	assert.NotNil(t, client)
}

func TestLoadEnv(t *testing.T) {
	t.Setenv(constants.ENV_CONFIG, "")
	t.Setenv(constants.ENV_CIVITAI, "true")
	t.Setenv(constants.ENV_CIVITAI_API, "http://localhost:1234/api/v1")
	t.Setenv(constants.ENV_CIVITAI_API_KEY, "k")
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())

	c, err := Load("")
	require.NoError(t, err)
	assert.Empty(t, c.Path)
	assert.True(t, c.AlphaFallback)
	assert.True(t, c.Civitai.Enabled)
	assert.Equal(t, "http://localhost:1234/api/v1", c.Civitai.ApiBase)
	assert.Equal(t, "k", c.Civitai.ApiKey)

	t.Setenv(constants.ENV_CIVITAI, "maybe")
	_, err = Load("")
	assert.Error(t, err)
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()
	_, err := Load(filepath.Join(dir, "missing.toml"))
	assert.Error(t, err)

	bad := filepath.Join(dir, "bad.toml")
	require.NoError(t, os.WriteFile(bad, []byte("civitai = ["), 0644))
	_, err = Load(bad)
	assert.Error(t, err)

	c := Default()
	c.Civitai.Timeout = "soon"
	_, err = c.Civitai.ClientConfig()
	assert.Error(t, err)

	client, err := Default().NewCivitaiClient()
	assert.NoError(t, err)
	assert.Nil(t, client)
}

func TestExtractOptions(t *testing.T) {
	c := Default()
	c.Thumbnail = 64
	opts, err := c.ExtractOptions()
	require.NoError(t, err)
	assert.True(t, opts.AlphaFallback)
	assert.False(t, opts.CivitaiLookup)
	assert.Equal(t, 64, opts.Thumbnail)
	require.NotNil(t, opts.Patterns)
	assert.True(t, opts.Patterns.NegativeWords.MatchString("Worst Quality"))

	c.Patterns.SeedClass = "("
	_, err = c.ExtractOptions()
	assert.Error(t, err)
}
