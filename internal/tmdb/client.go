package tmdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"aerial/internal/logging"
)

// Cache stores raw provider response bodies addressed by call key.
// *catalog.Store satisfies it.
type Cache interface {
	CacheGet(ctx context.Context, key string, validity time.Duration) ([]byte, bool, error)
	CachePut(ctx context.Context, key string, result []byte) error
}

// Searcher defines the TMDB operations the matcher and enrichment use.
type Searcher interface {
	SearchShows(ctx context.Context, query string, year int, isMovie bool) []Result
	GetShowByID(ctx context.Context, id int64, isMovie bool) *Show
	GetTranslations(ctx context.Context, id int64, isMovie bool) []Translation
	GetAliases(ctx context.Context, id int64, isMovie bool) []Alias
	GetCrew(ctx context.Context, id int64, isMovie bool) *Credits
	CollectTitles(ctx context.Context, id int64, isMovie bool) []string
}

// Client provides cached, rate-limited access to the TMDB API.
type Client struct {
	apiKey        string
	baseURL       string
	language      string
	httpClient    *http.Client
	limiter       *rate.Limiter
	cache         Cache
	cacheValidity time.Duration
	logger        *slog.Logger
}

var _ Searcher = (*Client)(nil)

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

// WithRateLimit caps outbound requests per second.
func WithRateLimit(perSecond float64) Option {
	return func(c *Client) {
		if perSecond > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(perSecond), 1)
		}
	}
}

// WithLogger attaches a logger for degraded-call reporting.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger.With(logging.FieldComponent, "tmdb")
		}
	}
}

// New creates a TMDB client.
func New(apiKey, baseURL, language string, opts ...Option) (*Client, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("tmdb api key required")
	}
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errors.New("tmdb base url required")
	}
	client := &Client{
		apiKey:     apiKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		language:   strings.TrimSpace(language),
		httpClient: &http.Client{Timeout: 10 * time.Second},
		logger:     logging.NewNop(),
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// cacheKey builds the stable call key: tmdb|<kind>|<params joined by '-'>.
func cacheKey(kind string, params ...string) string {
	return "tmdb|" + kind + "|" + strings.Join(params, "-")
}

func kindPath(isMovie bool) string {
	if isMovie {
		return "movie"
	}
	return "tv"
}

// get fetches path with params, going through the cache unless skipCache is
// set. The raw body is returned; non-200 statuses and transport failures
// are errors for the caller to degrade on.
func (c *Client) get(ctx context.Context, key, path string, params url.Values, skipCache bool) ([]byte, error) {
	if !skipCache && c.cache != nil {
		body, hit, err := c.cache.CacheGet(ctx, key, c.cacheValidity)
		if err != nil {
			return nil, fmt.Errorf("cache get: %w", err)
		}
		if hit {
			return body, nil
		}
	}

	endpoint, err := url.Parse(c.baseURL + path)
	if err != nil {
		return nil, fmt.Errorf("parse tmdb url: %w", err)
	}
	params.Set("api_key", c.apiKey)
	endpoint.RawQuery = params.Encode()

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limit wait: %w", err)
		}
	}

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
		return nil, fmt.Errorf("tmdb %s returned %d (latency=%v)", path, resp.StatusCode, latency)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read tmdb response: %w", err)
	}

	if !skipCache && c.cache != nil {
		// A concurrent miss for the same key may already have stored a
		// body; the losing write is a no-op.
		if err := c.cache.CachePut(ctx, key, body); err != nil {
			return nil, fmt.Errorf("cache put: %w", err)
		}
	}
	return body, nil
}

func (c *Client) degraded(op string, err error) {
	c.logger.Warn("tmdb call degraded to empty result",
		slog.String("operation", op), logging.Error(err))
}

// SearchShows searches movies or series by text, optionally pinned to a
// year. Failures return an empty slice.
func (c *Client) SearchShows(ctx context.Context, query string, year int, isMovie bool) []Result {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil
	}
	params := url.Values{}
	params.Set("query", query)
	if c.language != "" {
		params.Set("language", c.language)
	}
	yearKey := "0"
	if year > 0 {
		yearKey = strconv.Itoa(year)
		if isMovie {
			params.Set("primary_release_year", yearKey)
		} else {
			params.Set("first_air_date_year", yearKey)
		}
	}
	kind := "search_" + kindPath(isMovie)
	key := cacheKey(kind, query, yearKey, c.language)

	body, err := c.get(ctx, key, "/search/"+kindPath(isMovie), params, false)
	if err != nil {
		c.degraded(kind, err)
		return nil
	}
	var payload Response
	if err := json.Unmarshal(body, &payload); err != nil {
		c.degraded(kind, fmt.Errorf("decode search response: %w", err))
		return nil
	}
	return payload.Results
}

// GetShowByID fetches the full detail payload including external ids.
// Failures return nil.
func (c *Client) GetShowByID(ctx context.Context, id int64, isMovie bool) *Show {
	if id <= 0 {
		return nil
	}
	params := url.Values{}
	params.Set("append_to_response", "external_ids")
	if c.language != "" {
		params.Set("language", c.language)
	}
	kind := "details_" + kindPath(isMovie)
	key := cacheKey(kind, strconv.FormatInt(id, 10), c.language)

	body, err := c.get(ctx, key, fmt.Sprintf("/%s/%d", kindPath(isMovie), id), params, false)
	if err != nil {
		c.degraded(kind, err)
		return nil
	}
	var payload Show
	if err := json.Unmarshal(body, &payload); err != nil {
		c.degraded(kind, fmt.Errorf("decode detail response: %w", err))
		return nil
	}
	return &payload
}

// GetTranslations fetches every translation entry. Failures return an
// empty slice.
func (c *Client) GetTranslations(ctx context.Context, id int64, isMovie bool) []Translation {
	if id <= 0 {
		return nil
	}
	kind := "translations_" + kindPath(isMovie)
	key := cacheKey(kind, strconv.FormatInt(id, 10))

	body, err := c.get(ctx, key, fmt.Sprintf("/%s/%d/translations", kindPath(isMovie), id), url.Values{}, false)
	if err != nil {
		c.degraded(kind, err)
		return nil
	}
	var payload struct {
		Translations []Translation `json:"translations"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		c.degraded(kind, fmt.Errorf("decode translations: %w", err))
		return nil
	}
	return payload.Translations
}

// GetAliases fetches alternative titles. TMDB keys the list "titles" for
// movies and "results" for series. Failures return an empty slice.
func (c *Client) GetAliases(ctx context.Context, id int64, isMovie bool) []Alias {
	if id <= 0 {
		return nil
	}
	kind := "aliases_" + kindPath(isMovie)
	key := cacheKey(kind, strconv.FormatInt(id, 10))

	body, err := c.get(ctx, key, fmt.Sprintf("/%s/%d/alternative_titles", kindPath(isMovie), id), url.Values{}, false)
	if err != nil {
		c.degraded(kind, err)
		return nil
	}
	var payload struct {
		Titles  []Alias `json:"titles"`
		Results []Alias `json:"results"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		c.degraded(kind, fmt.Errorf("decode aliases: %w", err))
		return nil
	}
	if len(payload.Titles) > 0 {
		return payload.Titles
	}
	return payload.Results
}

// GetCrew fetches credits. Deliberately uncached: credits payloads are
// large and churn often. Failures return nil.
func (c *Client) GetCrew(ctx context.Context, id int64, isMovie bool) *Credits {
	if id <= 0 {
		return nil
	}
	kind := "credits_" + kindPath(isMovie)

	body, err := c.get(ctx, kind, fmt.Sprintf("/%s/%d/credits", kindPath(isMovie), id), url.Values{}, true)
	if err != nil {
		c.degraded(kind, err)
		return nil
	}
	var payload Credits
	if err := json.Unmarshal(body, &payload); err != nil {
		c.degraded(kind, fmt.Errorf("decode credits: %w", err))
		return nil
	}
	return &payload
}

// CollectTitles unions the primary title, every English or pt-PT
// translation, and every alias for the US, PT, or (for series) the origin
// country. Empty strings are dropped; order is stable, first occurrence
// wins.
func (c *Client) CollectTitles(ctx context.Context, id int64, isMovie bool) []string {
	show := c.GetShowByID(ctx, id, isMovie)
	if show == nil {
		return nil
	}

	seen := make(map[string]struct{})
	var titles []string
	add := func(title string) {
		title = strings.TrimSpace(title)
		if title == "" {
			return
		}
		if _, dup := seen[title]; dup {
			return
		}
		seen[title] = struct{}{}
		titles = append(titles, title)
	}

	add(show.OriginalTitle())
	add(show.DisplayTitle())

	for _, tr := range c.GetTranslations(ctx, id, isMovie) {
		tag := tr.LanguageTag()
		if strings.HasPrefix(tag, "en") || tag == "pt-PT" {
			add(tr.TranslationTitle())
		}
	}

	countries := map[string]struct{}{"US": {}, "PT": {}}
	if !isMovie {
		for _, origin := range show.OriginCountry {
			countries[origin] = struct{}{}
		}
	}
	for _, alias := range c.GetAliases(ctx, id, isMovie) {
		if _, wanted := countries[alias.ISO3166]; wanted {
			add(alias.Title)
		}
	}
	return titles
}
