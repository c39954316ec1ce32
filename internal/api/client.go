package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/rs/zerolog"
	"go.uber.org/atomic"
	"golang.org/x/sync/singleflight"

	"github.com/justyntemme/bookseek-t/pkg/models"
)

const (
	DefaultTimeout   = 15 * time.Second
	DefaultCacheSize = 128
	maxCoverBytes    = 4 << 20
)

// Client is the HTTP client for the book search service
type Client struct {
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
	log        zerolog.Logger

	// Book metadata, recommendations, pages and covers never change for a
	// given key, so they are cached. Searches are always re-issued.
	cache *lru.Cache[string, any]
	group singleflight.Group
	seq   atomic.Uint64
}

// Option configures a Client
type Option func(*Client)

// WithTimeout sets the per-request deadline
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithHTTPClient replaces the underlying transport client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithLogger sets the request logger
func WithLogger(log zerolog.Logger) Option {
	return func(c *Client) {
		c.log = log
	}
}

// WithCacheSize sets the number of cached responses
func WithCacheSize(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.cache, _ = lru.New[string, any](n)
		}
	}
}

// NewClient creates a new API client rooted at baseURL
func NewClient(baseURL string, opts ...Option) *Client {
	cache, _ := lru.New[string, any](DefaultCacheSize)
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
		timeout:    DefaultTimeout,
		log:        zerolog.Nop(),
		cache:      cache,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the service root the client talks to
func (c *Client) BaseURL() string {
	return c.baseURL
}

// do sends a GET request and hands the response body to read. The deadline
// covers reading the body as well as the round trip.
func (c *Client) do(ctx context.Context, path string, params url.Values, read func(*http.Response) error) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	target := path
	if !isAbsURL(path) {
		target = c.baseURL + path
	}
	if len(params) > 0 {
		target += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	seq := c.seq.Inc()
	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			err = fmt.Errorf("GET %s: %w", path, ErrTimeout)
		}
		c.log.Warn().Uint64("seq", seq).Str("path", path).Err(err).Msg("request failed")
		return err
	}
	defer resp.Body.Close()

	c.log.Debug().
		Uint64("seq", seq).
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Msg("request")

	if resp.StatusCode >= 400 {
		return statusError(resp)
	}

	if err := read(resp); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return fmt.Errorf("GET %s: %w", path, ErrTimeout)
		}
		return err
	}
	return nil
}

// statusError builds a StatusError from an error reply
func statusError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	var errResp models.ErrorResponse
	if err := json.Unmarshal(body, &errResp); err != nil || errResp.Message() == "" {
		return &StatusError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(body))}
	}
	return &StatusError{StatusCode: resp.StatusCode, Message: errResp.Message()}
}

// getJSON performs a GET request and decodes the JSON body into T
func getJSON[T any](ctx context.Context, c *Client, path string, params url.Values) (T, error) {
	var result T
	err := c.do(ctx, path, params, func(resp *http.Response) error {
		if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
			return fmt.Errorf("decode %s: %w", path, err)
		}
		return nil
	})
	return result, err
}

// cached returns the cached value for key or fetches it once, even when
// several callers ask at the same time. The shared fetch is not cancelled
// with the caller that started it; it runs under the client timeout, and
// each caller stops waiting when its own ctx is done.
func cached[T any](ctx context.Context, c *Client, key string, fetch func(context.Context) (T, error)) (T, error) {
	var zero T
	if v, ok := c.cache.Get(key); ok {
		if t, ok := v.(T); ok {
			return t, nil
		}
	}

	ch := c.group.DoChan(key, func() (any, error) {
		t, err := fetch(context.WithoutCancel(ctx))
		if err != nil {
			return nil, err
		}
		c.cache.Add(key, t)
		return t, nil
	})

	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return zero, res.Err
		}
		return res.Val.(T), nil
	}
}

// Search methods

// SearchKeyword runs a keyword (or regex, when advanced) search
func (c *Client) SearchKeyword(ctx context.Context, q string, advanced bool, rankMode string, page, pageSize int) (*models.SearchResponse, error) {
	params := url.Values{}
	params.Set("q", q)
	params.Set("advanced", strconv.FormatBool(advanced))
	params.Set("rank_mode", rankMode)
	params.Set("page", strconv.Itoa(page))
	params.Set("page_size", strconv.Itoa(pageSize))
	return getJSON[*models.SearchResponse](ctx, c, "/search-keyword", params)
}

// SearchTitle runs a title search
func (c *Client) SearchTitle(ctx context.Context, q string, page, pageSize int) (*models.SearchResponse, error) {
	params := url.Values{}
	params.Set("q", q)
	params.Set("page", strconv.Itoa(page))
	params.Set("page_size", strconv.Itoa(pageSize))
	return getJSON[*models.SearchResponse](ctx, c, "/search-title", params)
}

// Book methods

// GetBook returns a single book's metadata
func (c *Client) GetBook(ctx context.Context, id int) (*models.Book, error) {
	return cached(ctx, c, fmt.Sprintf("book:%d", id), func(ctx context.Context) (*models.Book, error) {
		return getJSON[*models.Book](ctx, c, fmt.Sprintf("/book/%d", id), nil)
	})
}

// GetRecommendations returns books similar to id
func (c *Client) GetRecommendations(ctx context.Context, id int) ([]models.Recommendation, error) {
	return c.recommendations(ctx, "/recommend", id)
}

// GetPageRankRecommendations returns related books ordered by global rank
func (c *Client) GetPageRankRecommendations(ctx context.Context, id int) ([]models.Recommendation, error) {
	return c.recommendations(ctx, "/recommend-pagerank", id)
}

func (c *Client) recommendations(ctx context.Context, prefix string, id int) ([]models.Recommendation, error) {
	path := fmt.Sprintf("%s/%d", prefix, id)
	return cached(ctx, c, path, func(ctx context.Context) ([]models.Recommendation, error) {
		resp, err := getJSON[*models.RecommendationsResponse](ctx, c, path, nil)
		if err != nil {
			return nil, err
		}
		return resp.Recommendations, nil
	})
}

// Reading methods

// GetBookPage returns one page of a book's text
func (c *Client) GetBookPage(ctx context.Context, id, page, size int) (*models.BookPage, error) {
	key := fmt.Sprintf("page:%d:%d:%d", id, page, size)
	return cached(ctx, c, key, func(ctx context.Context) (*models.BookPage, error) {
		params := url.Values{}
		params.Set("page", strconv.Itoa(page))
		params.Set("size", strconv.Itoa(size))
		return getJSON[*models.BookPage](ctx, c, fmt.Sprintf("/book-page/%d", id), params)
	})
}

// Covers

// CoverURL resolves a cover path returned by the service against the base URL
func (c *Client) CoverURL(rel string) string {
	if rel == "" {
		return ""
	}
	if isAbsURL(rel) {
		return rel
	}
	return c.baseURL + "/" + strings.TrimLeft(rel, "/")
}

func isAbsURL(s string) bool {
	u, err := url.Parse(s)
	return err == nil && u.IsAbs()
}

// FetchCover downloads the raw image bytes of a cover
func (c *Client) FetchCover(ctx context.Context, rel string) ([]byte, error) {
	if rel == "" {
		return nil, ErrNotFound
	}
	return cached(ctx, c, "cover:"+rel, func(ctx context.Context) ([]byte, error) {
		path := rel
		if !isAbsURL(rel) {
			path = "/" + strings.TrimLeft(rel, "/")
		}
		var data []byte
		err := c.do(ctx, path, nil, func(resp *http.Response) error {
			var err error
			data, err = io.ReadAll(io.LimitReader(resp.Body, maxCoverBytes))
			return err
		})
		return data, err
	})
}

// Health check

// Health checks whether the service answers at all
func (c *Client) Health(ctx context.Context) error {
	return c.do(ctx, "/openapi.json", nil, func(resp *http.Response) error {
		_, err := io.Copy(io.Discard, resp.Body)
		return err
	})
}
