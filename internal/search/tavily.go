package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/avoropai/argus/internal/cache"
)

// Config holds evidence provider configuration.
type Config struct {
	APIKeys       []string
	BaseURL       string
	Timeout       time.Duration
	RatePerSecond float64
	RateBurst     int
	CacheEnabled  bool
	CacheTTL      time.Duration
}

// Client is a Tavily-style web search adapter. It owns key rotation, rate
// limiting, caching and retries so none of that leaks into the core: callers
// only ever see results or a transport error.
type Client struct {
	pool       *KeyPool
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	cache      cache.Cache
	cacheTTL   time.Duration
	logger     *zap.Logger
}

type searchRequest struct {
	APIKey        string `json:"api_key"`
	Query         string `json:"query"`
	SearchDepth   string `json:"search_depth"`
	MaxResults    int    `json:"max_results"`
	IncludeAnswer bool   `json:"include_answer"`
}

type searchResponse struct {
	Answer  string `json:"answer"`
	Results []struct {
		Title   string  `json:"title"`
		URL     string  `json:"url"`
		Content string  `json:"content"`
		Score   float64 `json:"score"`
	} `json:"results"`
}

// NewClient creates a search client. At least one API key is required.
func NewClient(cfg Config, logger *zap.Logger) (*Client, error) {
	if len(cfg.APIKeys) == 0 {
		return nil, fmt.Errorf("search API key is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "https://api.tavily.com"
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	perSecond := cfg.RatePerSecond
	if perSecond <= 0 {
		perSecond = 2
	}
	burst := cfg.RateBurst
	if burst <= 0 {
		burst = 5
	}

	var responseCache cache.Cache
	if cfg.CacheEnabled {
		ttl := cfg.CacheTTL
		if ttl == 0 {
			ttl = 15 * time.Minute
		}
		responseCache = cache.NewMemoryCache(ttl, 2*ttl)
	}

	return &Client{
		pool:       NewKeyPool(cfg.APIKeys),
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		limiter:    rate.NewLimiter(rate.Limit(perSecond), burst),
		cache:      responseCache,
		cacheTTL:   cfg.CacheTTL,
		logger:     logger,
	}, nil
}

// Search executes one query. Quota errors rotate the key pool and retry;
// when every key is exhausted the client degrades to empty results so a
// batch run is never aborted by the provider.
func (c *Client) Search(ctx context.Context, query string, maxResults int, deep bool) (*Response, error) {
	if maxResults <= 0 {
		maxResults = 5
	}

	cacheKey := cache.Key(fmt.Sprintf("%s|%d|%t", query, maxResults, deep))
	if c.cache != nil {
		if raw, found := c.cache.Get(cacheKey); found {
			var resp Response
			if err := json.Unmarshal(raw, &resp); err == nil {
				return &resp, nil
			}
		}
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	for {
		key := c.pool.Current()
		if key == "" {
			c.logger.Warn("all search API keys exhausted, returning empty results",
				zap.String("query", query))
			return &Response{Query: query, Results: []Result{}}, nil
		}

		resp, err := c.searchOnce(ctx, key, query, maxResults, deep)
		if err == nil {
			if c.cache != nil {
				if raw, merr := json.Marshal(resp); merr == nil {
					_ = c.cache.Set(cacheKey, raw, c.cacheTTL)
				}
			}
			return resp, nil
		}

		if IsQuotaError(err) && c.pool.Rotate() {
			c.logger.Info("search key quota exceeded, rotated to next key",
				zap.Int("pool_size", c.pool.Size()))
			continue
		}
		return nil, err
	}
}

func (c *Client) searchOnce(ctx context.Context, apiKey, query string, maxResults int, deep bool) (*Response, error) {
	depth := "basic"
	if deep {
		depth = "advanced"
	}

	body, err := json.Marshal(searchRequest{
		APIKey:        apiKey,
		Query:         query,
		SearchDepth:   depth,
		MaxResults:    maxResults,
		IncludeAnswer: true,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/search", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search API error (status %d): %s", resp.StatusCode, truncate(string(data), 200))
	}

	var parsed searchResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	results := make([]Result, 0, len(parsed.Results)+1)
	// The provider's own answer summary ranks first when present.
	if parsed.Answer != "" {
		results = append(results, Result{
			Title:   "[Search Summary]",
			Content: parsed.Answer,
			Score:   1.0,
		})
	}
	for _, r := range parsed.Results {
		results = append(results, Result{
			Title:   r.Title,
			URL:     r.URL,
			Content: r.Content,
			Score:   r.Score,
		})
	}

	return &Response{Query: query, Results: results}, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
