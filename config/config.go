// Package config loads the optional aimeta TOML config file.
//
// Example config.toml:
//
//	alpha_fallback = true
//	thumbnail = 0
//
//	[civitai]
//	enabled = true
//	api_base = "https://civitai.com/api/v1"
//	api_key = ""
//	timeout = "10s"
//	rate_per_second = 5
//	cache_size = 256
//
//	[patterns]
//	negative_words = "bad quality|worst quality|low quality|bad anatomy|lowres"
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/pelletier/go-toml/v2"
	log "github.com/sirupsen/logrus"

	"github.com/sagan/aimeta/constants"
	"github.com/sagan/aimeta/features/civitai"
	"github.com/sagan/aimeta/features/dialect"
	"github.com/sagan/aimeta/features/extract"
)

type CivitaiConfig struct {
	Enabled bool   `toml:"enabled"`
	ApiBase string `toml:"api_base"`
	ApiKey  string `toml:"api_key"`
	Site    string `toml:"site"`
	// Go duration string, e.g. "10s"
	Timeout       string  `toml:"timeout"`
	RatePerSecond float64 `toml:"rate_per_second"`
	CacheSize     int     `toml:"cache_size"`
}

type Config struct {
	// Try the NovelAI alpha channel when a PNG has no other metadata.
	AlphaFallback bool `toml:"alpha_fallback"`
	// Thumbnail max side in px, 0 to disable.
	Thumbnail int                   `toml:"thumbnail"`
	Civitai   CivitaiConfig         `toml:"civitai"`
	Patterns  dialect.PatternConfig `toml:"patterns"`

	// Path of the loaded file, empty if defaults are used.
	Path string `toml:"-"`
}

func Default() *Config {
	return &Config{
		AlphaFallback: true,
		Thumbnail:     constants.DEFAULT_THUMBNAIL_SIZE,
		Civitai: CivitaiConfig{
			ApiBase:       constants.DEFAULT_CIVITAI_API,
			Site:          constants.DEFAULT_CIVITAI_SITE,
			Timeout:       constants.DEFAULT_CIVITAI_TIMEOUT,
			RatePerSecond: constants.DEFAULT_CIVITAI_RATE,
			CacheSize:     constants.DEFAULT_CIVITAI_CACHE,
		},
	}
}

var current = Default()

// Get returns the config loaded by the root command, or the defaults.
func Get() *Config {
	return current
}

func Set(c *Config) {
	current = c
}

// DefaultPath is "<user config dir>/aimeta/config.toml".
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "aimeta", "config.toml")
}

// Load reads the config file at path, then applies env overrides.
// An empty path means $AIMETA_CONFIG, then DefaultPath(). Only an explicitly named
// file must exist; a missing default file yields the defaults.
func Load(path string) (*Config, error) {
	c := Default()
	explicit := true
	if path == "" {
		path = os.Getenv(constants.ENV_CONFIG)
	}
	if path == "" {
		path, explicit = DefaultPath(), false
	}
	if path != "" {
		contents, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := toml.Unmarshal(contents, c); err != nil {
				return nil, fmt.Errorf("invalid config file %q: %w", path, err)
			}
			c.Path = path
			log.Debugf("loaded config file %q", path)
		case errors.Is(err, fs.ErrNotExist) && !explicit:
		default:
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}
	if err := c.applyEnv(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Config) applyEnv() error {
	if value := os.Getenv(constants.ENV_CIVITAI); value != "" {
		enabled, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid %s value %q: %w", constants.ENV_CIVITAI, value, err)
		}
		c.Civitai.Enabled = enabled
	}
	if value := os.Getenv(constants.ENV_CIVITAI_API); value != "" {
		c.Civitai.ApiBase = value
	}
	if value := os.Getenv(constants.ENV_CIVITAI_API_KEY); value != "" {
		c.Civitai.ApiKey = value
	}
	return nil
}

// ClientConfig converts the civitai section into a client config.
func (c *CivitaiConfig) ClientConfig() (civitai.Config, error) {
	cfg := civitai.Config{
		ApiBase:       c.ApiBase,
		ApiKey:        c.ApiKey,
		Site:          c.Site,
		RatePerSecond: c.RatePerSecond,
		CacheSize:     c.CacheSize,
	}
	if c.Timeout != "" {
		timeout, err := time.ParseDuration(c.Timeout)
		if err != nil {
			return cfg, fmt.Errorf("invalid civitai timeout %q: %w", c.Timeout, err)
		}
		cfg.Timeout = timeout
	}
	return cfg, nil
}

// NewCivitaiClient returns a client from the config, or nil if lookups are disabled.
func (c *Config) NewCivitaiClient() (*civitai.Client, error) {
	if !c.Civitai.Enabled {
		return nil, nil
	}
	cfg, err := c.Civitai.ClientConfig()
	if err != nil {
		return nil, err
	}
	return civitai.NewClient(cfg)
}

// ExtractOptions returns the extraction options the config implies.
func (c *Config) ExtractOptions() (extract.Options, error) {
	patterns, err := c.Patterns.Compile()
	if err != nil {
		return extract.Options{}, err
	}
	return extract.Options{
		CivitaiLookup: c.Civitai.Enabled,
		AlphaFallback: c.AlphaFallback,
		Patterns:      patterns,
		Thumbnail:     c.Thumbnail,
	}, nil
}
