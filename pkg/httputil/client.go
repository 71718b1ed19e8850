package httputil

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"golang.org/x/time/rate"

	"github.com/wonny/nasdaq/pkg/config"
	"github.com/wonny/nasdaq/pkg/logger"
	"github.com/wonny/nasdaq/pkg/redis"
)

// Client is an HTTP client wrapper with rate limiting and request logging
// ⭐ SSOT: every outbound HTTP request goes through this client
type Client struct {
	httpClient *http.Client
	transport  *limitedTransport
	logger     *logger.Logger
	headers    http.Header
}

// DefaultTimeout is used when the config carries no HTTP timeout.
const DefaultTimeout = 30 * time.Second

// New creates a new HTTP client from config
// ⭐ SSOT: the only place an http.Client is built
//
// There is no transport retry; the NASDAQ client retries once after a
// credential rejection and nowhere else.
func New(cfg *config.Config, log *logger.Logger) *Client {
	timeout := cfg.Nasdaq.HTTPTimeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	lt := &limitedTransport{next: http.DefaultTransport.(*http.Transport).Clone()}
	c := &Client{
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: lt,
		},
		transport: lt,
		logger:    log,
		headers:   make(http.Header),
	}

	if cfg.Nasdaq.RateLimit > 0 {
		c.WithLimit(cfg.Nasdaq.RateLimit)
	}

	return c
}

// WithCloudflareBypass wraps the transport so TLS fingerprint and header
// order look like a desktop browser.
func (c *Client) WithCloudflareBypass() *Client {
	c.transport.next = cloudflarebp.AddCloudFlareByPass(c.transport.next)
	return c
}

// WithHeader sets a header sent on every request unless the call overrides it
func (c *Client) WithHeader(key, value string) *Client {
	c.headers.Set(key, value)
	return c
}

// WithLimit installs an in-process token bucket (requests per second, burst 1)
func (c *Client) WithLimit(rps float64) *Client {
	c.transport.limiter = rate.NewLimiter(rate.Limit(rps), 1)
	return c
}

// WithRateLimiter sets the shared (redis) rate limiter for this client
func (c *Client) WithRateLimiter(limiter *redis.RateLimiter, cfg redis.RateLimitConfig) *Client {
	c.transport.rateLimiter = limiter
	c.transport.rateLimitCfg = &cfg
	return c
}

// HTTPClient exposes the underlying client. Requests made through it pass
// the same limiters and browser transport as Do.
func (c *Client) HTTPClient() *http.Client {
	return c.httpClient
}

// Get performs a GET request
func (c *Client) Get(ctx context.Context, url string, headers http.Header) (*http.Response, error) {
	return c.Do(ctx, http.MethodGet, url, headers, nil)
}

// Do builds and executes a request. Per-call headers override client defaults.
func (c *Client) Do(ctx context.Context, method, url string, headers http.Header, body io.Reader) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s request: %w", method, err)
	}

	for k, vs := range c.headers {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	for k, vs := range headers {
		req.Header.Del(k)
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	return c.do(req)
}

// do executes the request with logging
func (c *Client) do(req *http.Request) (*http.Response, error) {
	startTime := time.Now()
	url := req.URL.String()
	method := req.Method

	c.logger.WithFields(map[string]interface{}{
		"method": method,
		"url":    url,
	}).Debug("HTTP request started")

	resp, err := c.httpClient.Do(req)
	duration := time.Since(startTime)

	if err != nil {
		c.logger.WithFields(map[string]interface{}{
			"method":   method,
			"url":      url,
			"duration": duration,
			"error":    err.Error(),
		}).Warn("HTTP request failed")
		return nil, err
	}

	c.logger.WithFields(map[string]interface{}{
		"method":      method,
		"url":         url,
		"status_code": resp.StatusCode,
		"duration":    duration,
	}).Debug("HTTP request completed")

	return resp, nil
}

// limitedTransport waits on the local limiter first, then the shared one,
// before handing the request to next.
type limitedTransport struct {
	next         http.RoundTripper
	limiter      *rate.Limiter
	rateLimiter  *redis.RateLimiter
	rateLimitCfg *redis.RateLimitConfig
}

func (t *limitedTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if err := t.wait(req.Context()); err != nil {
		if req.Body != nil {
			req.Body.Close()
		}
		return nil, fmt.Errorf("rate limit wait failed: %w", err)
	}
	return t.next.RoundTrip(req)
}

func (t *limitedTransport) wait(ctx context.Context) error {
	if t.limiter != nil {
		if err := t.limiter.Wait(ctx); err != nil {
			return err
		}
	}
	if t.rateLimiter != nil && t.rateLimitCfg != nil {
		return t.rateLimiter.Wait(ctx, *t.rateLimitCfg)
	}
	return nil
}
