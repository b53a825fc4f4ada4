// Package omdb enriches matched shows with poster URLs looked up by IMDb
// id. Responses go through the shared catalog cache; failures degrade to
// an empty poster, never an error.
package omdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"aerial/internal/logging"
)

// Cache stores raw provider response bodies addressed by call key.
type Cache interface {
	CacheGet(ctx context.Context, key string, validity time.Duration) ([]byte, bool, error)
	CachePut(ctx context.Context, key string, result []byte) error
}

// Client queries the OMDB API for poster art.
type Client struct {
	apiKey        string
	baseURL       string
	httpClient    *http.Client
	cache         Cache
	cacheValidity time.Duration
	logger        *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithCache attaches a persistent response cache with the given validity.
func WithCache(cache Cache, validity time.Duration) Option {
	return func(c *Client) {
		c.cache = cache
		c.cacheValidity = validity
	}
}

// WithLogger attaches a logger for degraded-call reporting.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logging.NewComponentLogger(logger, "omdb")
		}
	}
}

// New creates an OMDB client.
func New(apiKey, baseURL string, opts ...Option) (*Client, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("omdb api key required")
	}
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errors.New("omdb base url required")
	}
	client := &Client{
		apiKey:     apiKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
		logger:     logging.NewNop(),
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// PosterURL returns the poster for an IMDb id, or "" when OMDB has none or
// the call fails.
func (c *Client) PosterURL(ctx context.Context, imdbID string) string {
	imdbID = strings.TrimSpace(imdbID)
	if imdbID == "" {
		return ""
	}
	key := "omdb|poster|" + imdbID

	body, err := c.fetch(ctx, key, imdbID)
	if err != nil {
		c.logger.Warn("omdb poster lookup degraded",
			slog.String("imdb_id", imdbID), logging.Error(err))
		return ""
	}

	var payload struct {
		Poster   string `json:"Poster"`
		Response string `json:"Response"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		c.logger.Warn("omdb poster decode failed",
			slog.String("imdb_id", imdbID), logging.Error(err))
		return ""
	}
	if payload.Response == "False" || payload.Poster == "N/A" {
		return ""
	}
	return payload.Poster
}

func (c *Client) fetch(ctx context.Context, key, imdbID string) ([]byte, error) {
	if c.cache != nil {
		body, hit, err := c.cache.CacheGet(ctx, key, c.cacheValidity)
		if err != nil {
			return nil, fmt.Errorf("cache get: %w", err)
		}
		if hit {
			return body, nil
		}
	}

	endpoint, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse omdb url: %w", err)
	}
	params := url.Values{}
	params.Set("apikey", c.apiKey)
	params.Set("i", imdbID)
	endpoint.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	requestStart := time.Now()
	resp, err := c.httpClient.Do(req)
	latency := time.Since(requestStart)
	if err != nil {
		return nil, fmt.Errorf("execute request (latency=%v): %w", latency, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("omdb returned %d (latency=%v)", resp.StatusCode, latency)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read omdb response: %w", err)
	}

	if c.cache != nil {
		if err := c.cache.CachePut(ctx, key, body); err != nil {
			return nil, fmt.Errorf("cache put: %w", err)
		}
	}
	return body, nil
}
