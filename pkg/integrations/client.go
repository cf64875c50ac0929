package integrations

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/matzehuels/riskgraph/pkg/cache"
	rgerrors "github.com/matzehuels/riskgraph/pkg/errors"
	"github.com/matzehuels/riskgraph/pkg/httputil"
	"github.com/matzehuels/riskgraph/pkg/observability"
)

// maxBodySize caps how much of a response body is read.
const maxBodySize = 32 << 20

// Client provides shared HTTP functionality for all upstream API clients.
// It handles caching, retry logic, and common request headers.
type Client struct {
	http      *http.Client
	cache     cache.Cache
	namespace string
	ttl       time.Duration
	headers   map[string]string
	retry     httputil.Policy
}

// NewClient creates a Client that caches under namespace with the given TTL.
// Headers are applied to all requests made through this client.
// Pass nil for headers if no default headers are needed, and nil for c to
// disable caching.
func NewClient(c cache.Cache, namespace string, ttl time.Duration, headers map[string]string) *Client {
	if c == nil {
		c = cache.NewNullCache()
	}
	return &Client{
		http:      NewHTTPClient(),
		cache:     c,
		namespace: namespace,
		ttl:       ttl,
		headers:   headers,
		retry:     httputil.DefaultPolicy(),
	}
}

// WithRetry returns a copy of the client that uses p for every retried call.
func (c *Client) WithRetry(p httputil.Policy) *Client {
	cp := *c
	cp.retry = p
	return &cp
}

// Retry runs fn under the client's retry policy.
func (c *Client) Retry(ctx context.Context, fn func() error) error {
	return c.retry.Do(ctx, fn)
}

// Cached retrieves a value from cache or executes fetch and caches the result.
// If refresh is true, the cache is bypassed and fetch is always called.
// The fetch function should populate v; it is retried under the client's
// policy, and on success v is stored in the cache as JSON.
func (c *Client) Cached(ctx context.Context, key string, refresh bool, v any, fetch func() error) error {
	key = c.namespace + ":" + key
	if !refresh {
		if data, ok, _ := c.cache.Get(ctx, key); ok && json.Unmarshal(data, v) == nil {
			observability.Cache().OnCacheHit(ctx, c.namespace)
			return nil
		}
		observability.Cache().OnCacheMiss(ctx, c.namespace)
	}
	if err := c.retry.Do(ctx, fetch); err != nil {
		return err
	}
	if data, err := json.Marshal(v); err == nil && c.cache.Set(ctx, key, data, c.ttl) == nil {
		observability.Cache().OnCacheSet(ctx, c.namespace, len(data))
	}
	return nil
}

// CachedRaw is like [Client.Cached] for payloads that are not plain JSON
// structs; the raw bytes returned by fetch are cached verbatim.
func (c *Client) CachedRaw(ctx context.Context, key string, refresh bool, fetch func() ([]byte, error)) ([]byte, error) {
	key = c.namespace + ":" + key
	if !refresh {
		if data, ok, _ := c.cache.Get(ctx, key); ok {
			observability.Cache().OnCacheHit(ctx, c.namespace)
			return data, nil
		}
		observability.Cache().OnCacheMiss(ctx, c.namespace)
	}

	var data []byte
	err := c.retry.Do(ctx, func() error {
		var err error
		data, err = fetch()
		return err
	})
	if err != nil {
		return nil, err
	}
	if c.cache.Set(ctx, key, data, c.ttl) == nil {
		observability.Cache().OnCacheSet(ctx, c.namespace, len(data))
	}
	return data, nil
}

// Get performs an HTTP GET request and JSON-decodes the response into v.
// It does not retry; wrap it in [Client.Cached] or [Client.Retry].
func (c *Client) Get(ctx context.Context, url string, v any) error {
	data, err := c.GetRaw(ctx, url)
	if err != nil {
		return err
	}
	return decode(url, data, v)
}

// GetRaw performs an HTTP GET request and returns the response body.
func (c *Client) GetRaw(ctx context.Context, url string) ([]byte, error) {
	return c.do(ctx, http.MethodGet, url, nil)
}

// Post JSON-encodes body, POSTs it to url and decodes the response into v.
func (c *Client) Post(ctx context.Context, url string, body, v any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}
	data, err := c.do(ctx, http.MethodPost, url, payload)
	if err != nil {
		return err
	}
	return decode(url, data, v)
}

func (c *Client) do(ctx context.Context, method, url string, payload []byte) ([]byte, error) {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	host, path := req.URL.Host, req.URL.Path
	observability.HTTP().OnRequest(ctx, method, host, path)
	start := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		observability.HTTP().OnError(ctx, method, host, path, err)
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	defer resp.Body.Close()
	observability.HTTP().OnResponse(ctx, method, host, path, resp.StatusCode, time.Since(start))

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", ErrNetwork, err)
	}
	if err := checkStatus(url, resp, data); err != nil {
		return nil, err
	}
	return data, nil
}

func checkStatus(url string, resp *http.Response, body []byte) error {
	code := resp.StatusCode
	if code >= 200 && code < 300 {
		return nil
	}
	err := &StatusError{StatusCode: code, URL: url, Body: snippet(body)}
	if code == http.StatusTooManyRequests {
		err.Cause = &rgerrors.RateLimitedError{RetryAfter: retryAfter(resp.Header, time.Now())}
	}
	return err
}

func decode(url string, data []byte, v any) error {
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrMalformed, url, err)
	}
	return nil
}

func snippet(body []byte) string {
	s := strings.TrimSpace(string(body))
	if len(s) > 200 {
		s = s[:200]
	}
	return s
}
