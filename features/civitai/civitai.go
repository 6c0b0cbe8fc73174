// Package civitai looks up model versions on the Civitai REST API by file hash
// or by model version id.
package civitai

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	lru "github.com/hashicorp/golang-lru/v2"
	log "github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/sagan/aimeta/constants"
)

var (
	ErrInvalidID  = errors.New("invalid model version id")
	ErrEmptyHash  = errors.New("empty hash")
	ErrIncomplete = errors.New("missing modelId or version id")
	ErrNotFound   = errors.New("model version not found")
)

type Config struct {
	ApiBase string
	ApiKey  string
	// Site is the web site base used to build model page urls.
	Site          string
	Timeout       time.Duration
	RatePerSecond float64
	CacheSize     int
}

// Version is a resolved model version.
type Version struct {
	ModelID     int64  `json:"model_id"`
	VersionID   int64  `json:"model_version_id"`
	ModelName   string `json:"model_name,omitempty"`
	VersionName string `json:"version_name,omitempty"`
	URL         string `json:"url"`
}

// DisplayName is the model name, else the version name, else "v<id>".
func (v *Version) DisplayName() string {
	if v.ModelName != "" {
		return v.ModelName
	}
	if v.VersionName != "" {
		return v.VersionName
	}
	return "v" + strconv.FormatInt(v.VersionID, 10)
}

// model-versions API response; only the fields used.
type modelVersion struct {
	ID      int64  `json:"id"`
	ModelID int64  `json:"modelId"`
	Name    string `json:"name"`
	Model   *struct {
		ID   int64  `json:"id"`
		Name string `json:"name"`
	} `json:"model"`
}

type Client struct {
	site    string
	http    *resty.Client
	limiter *rate.Limiter
	cache   *lru.Cache[string, *Version]
}

// NewClient creates a client. Zero fields of cfg take the defaults.
func NewClient(cfg Config) (*Client, error) {
	if cfg.ApiBase == "" {
		cfg.ApiBase = constants.DEFAULT_CIVITAI_API
	}
	if cfg.Site == "" {
		cfg.Site = constants.DEFAULT_CIVITAI_SITE
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout, _ = time.ParseDuration(constants.DEFAULT_CIVITAI_TIMEOUT)
	}
	if cfg.RatePerSecond <= 0 {
		cfg.RatePerSecond = constants.DEFAULT_CIVITAI_RATE
	}
	if cfg.CacheSize <= 0 {
		cfg.CacheSize = constants.DEFAULT_CIVITAI_CACHE
	}
	cache, err := lru.New[string, *Version](cfg.CacheSize)
	if err != nil {
		return nil, fmt.Errorf("civitai cache: %w", err)
	}
	httpClient := resty.New().
		SetBaseURL(strings.TrimSuffix(cfg.ApiBase, "/")).
		SetTimeout(cfg.Timeout).
		SetHeader("Accept", "application/json")
	if cfg.ApiKey != "" {
		httpClient.SetAuthToken(cfg.ApiKey)
	}
	return &Client{
		site:    strings.TrimSuffix(cfg.Site, "/"),
		http:    httpClient,
		limiter: rate.NewLimiter(rate.Limit(cfg.RatePerSecond), 1),
		cache:   cache,
	}, nil
}

// ByHash resolves a model file hash (AutoV1/AutoV2/SHA256/BLAKE3 ...).
func (c *Client) ByHash(ctx context.Context, hash string) (*Version, error) {
	hash = strings.TrimSpace(hash)
	if hash == "" {
		return nil, ErrEmptyHash
	}
	return c.get(ctx, "hash:"+strings.ToLower(hash), "/model-versions/by-hash/{id}", hash)
}

// ByVersionID resolves a model version id. id must be positive.
func (c *Client) ByVersionID(ctx context.Context, id int64) (*Version, error) {
	if id <= 0 {
		return nil, ErrInvalidID
	}
	idStr := strconv.FormatInt(id, 10)
	return c.get(ctx, "version:"+idStr, "/model-versions/{id}", idStr)
}

func (c *Client) get(ctx context.Context, cacheKey, path, id string) (*Version, error) {
	if v, ok := c.cache.Get(cacheKey); ok {
		return v, nil
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	var data modelVersion
	res, err := c.http.R().SetContext(ctx).SetPathParam("id", id).SetResult(&data).Get(path)
	if err != nil {
		return nil, fmt.Errorf("civitai %s: %w", id, err)
	}
	if res.StatusCode() == 404 {
		return nil, fmt.Errorf("civitai %s: %w", id, ErrNotFound)
	}
	if res.StatusCode() != 200 {
		return nil, fmt.Errorf("civitai %s: api returned %d", id, res.StatusCode())
	}
	v := &Version{VersionID: data.ID, ModelID: data.ModelID, VersionName: data.Name}
	if data.Model != nil {
		if v.ModelID == 0 {
			v.ModelID = data.Model.ID
		}
		v.ModelName = data.Model.Name
	}
	if v.ModelID == 0 || v.VersionID == 0 {
		return nil, ErrIncomplete
	}
	v.URL = fmt.Sprintf("%s/models/%d?modelVersionId=%d", c.site, v.ModelID, v.VersionID)
	log.Debugf("civitai %s resolved to %s", id, v.URL)
	c.cache.Add(cacheKey, v)
	return v, nil
}
