package nasdaq

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/wonny/nasdaq/internal/normalize"
	"github.com/wonny/nasdaq/internal/session"
	"github.com/wonny/nasdaq/pkg/config"
	"github.com/wonny/nasdaq/pkg/httputil"
	"github.com/wonny/nasdaq/pkg/logger"
)

const (
	maxBodyBytes       = 32 << 20
	accessDeniedMarker = "Access Denied"
)

// Credentials hands out session credentials and takes back rejected ones.
// *session.Manager implements it.
type Credentials interface {
	GetValidCredential(ctx context.Context) (session.Credential, error)
	Reject(cred session.Credential) bool
}

// Client fetches NASDAQ endpoints and builds typed records.
// ⭐ SSOT: every NASDAQ API call goes through getData
type Client struct {
	httpClient *httputil.Client
	sessions   Credentials
	engine     *normalize.Engine
	logger     *logger.Logger
	apiBase    string
	siteURL    string
	userAgent  string
	now        func() time.Time
}

// NewClient creates a NASDAQ client
func NewClient(cfg *config.Config, httpClient *httputil.Client, sessions Credentials, engine *normalize.Engine, log *logger.Logger) *Client {
	ua := cfg.Nasdaq.UserAgent
	if ua == "" {
		ua = config.DefaultUserAgent
	}
	return &Client{
		httpClient: httpClient,
		sessions:   sessions,
		engine:     engine,
		logger:     log.WithComponent("nasdaq"),
		apiBase:    strings.TrimRight(cfg.Nasdaq.APIBaseURL, "/"),
		siteURL:    strings.TrimRight(cfg.Nasdaq.SiteURL, "/"),
		userAgent:  ua,
		now:        time.Now,
	}
}

// WithClock replaces the time source used for date windows (tests)
func (c *Client) WithClock(now func() time.Time) *Client {
	c.now = now
	return c
}

// Engine returns the normalization engine records are built with
func (c *Client) Engine() *normalize.Engine {
	return c.engine
}

func (c *Client) apiURL(path string, params url.Values) string {
	return withQuery(c.apiBase+path, params)
}

func (c *Client) siteAPIURL(path string, params url.Values) string {
	return withQuery(c.siteURL+"/api"+path, params)
}

func withQuery(u string, params url.Values) string {
	if len(params) == 0 {
		return u
	}
	return u + "?" + params.Encode()
}

// absoluteURL resolves site-relative links ("/articles/…") against the site URL.
func (c *Client) absoluteURL(link string) string {
	if strings.HasPrefix(link, "/") && !strings.HasPrefix(link, "//") {
		return c.siteURL + link
	}
	return link
}

func normSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}

func symbolPath(symbol string) string {
	return url.PathEscape(normSymbol(symbol))
}

// getData fetches one endpoint and returns the envelope's "data" member.
// A rejected credential is handed back to the session manager and the call
// is retried exactly once with a fresh credential.
func (c *Client) getData(ctx context.Context, op, rawURL string) (normalize.Value, error) {
	for attempt := 1; ; attempt++ {
		cred, err := c.sessions.GetValidCredential(ctx)
		if err != nil {
			return normalize.Null, err
		}

		body, status, err := c.fetch(ctx, op, rawURL, cred)
		if err == nil {
			return c.decodeEnvelope(op, rawURL, status, body)
		}
		if !errors.Is(err, ErrAuthenticationRejected) {
			return normalize.Null, err
		}

		c.sessions.Reject(cred)
		if attempt >= 2 {
			c.logger.WithFields(map[string]interface{}{
				"op":  op,
				"url": rawURL,
			}).Error("Credential rejected after refresh")
			return normalize.Null, fmt.Errorf("%w: %w", session.ErrCredentialUnavailable, err)
		}

		c.logger.WithFields(map[string]interface{}{
			"op":            op,
			"status_code":   status,
			"credential_id": cred.ID,
		}).Warn("Credential rejected, retrying with a fresh one")
	}
}

// fetch performs one request. It returns ErrAuthenticationRejected for the
// authentication-failure signal and a *TransportError for everything else
// that is not a 200.
func (c *Client) fetch(ctx context.Context, op, rawURL string, cred session.Credential) ([]byte, int, error) {
	headers := session.BrowserHeaders(c.userAgent)
	headers.Set("Accept", "application/json, text/plain, */*")
	headers.Set("Origin", c.siteURL)
	headers.Set("Referer", c.siteURL+"/")
	headers.Set("Sec-Fetch-Dest", "empty")
	headers.Set("Sec-Fetch-Mode", "cors")
	headers.Set("Sec-Fetch-Site", "same-site")
	headers.Del("Sec-Fetch-User")
	headers.Del("Upgrade-Insecure-Requests")
	headers.Set("Cookie", cred.CookieHeader())

	resp, err := c.httpClient.Do(ctx, http.MethodGet, rawURL, headers, nil)
	if err != nil {
		return nil, 0, &TransportError{Op: op, URL: rawURL, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, resp.StatusCode, &TransportError{Op: op, URL: rawURL, StatusCode: resp.StatusCode, Err: fmt.Errorf("failed to read response body: %w", err)}
	}

	if isRejection(resp.StatusCode, body) {
		return nil, resp.StatusCode, ErrAuthenticationRejected
	}
	if resp.StatusCode != http.StatusOK {
		return nil, resp.StatusCode, &TransportError{Op: op, URL: rawURL, StatusCode: resp.StatusCode, Err: fmt.Errorf("unexpected status code: %d", resp.StatusCode)}
	}
	return body, resp.StatusCode, nil
}

// isRejection is the authentication-failure signal: 401/403, or a
// non-JSON "Access Denied" page served with any status.
func isRejection(status int, body []byte) bool {
	if status == http.StatusUnauthorized || status == http.StatusForbidden {
		return true
	}
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > 0 && (trimmed[0] == '{' || trimmed[0] == '[') {
		return false
	}
	return bytes.Contains(body, []byte(accessDeniedMarker))
}

// decodeEnvelope unwraps {"data": …, "status": {"rCode": …}}. A payload that
// is not a JSON object never arrived intact and is a transport error; a null
// data member is an empty result.
func (c *Client) decodeEnvelope(op, rawURL string, status int, body []byte) (normalize.Value, error) {
	env, err := normalize.Decode(body)
	if err != nil {
		return normalize.Null, &TransportError{Op: op, URL: rawURL, StatusCode: status, Err: fmt.Errorf("failed to decode envelope: %w", err)}
	}
	if env.Kind() != normalize.KindObject {
		return normalize.Null, &TransportError{Op: op, URL: rawURL, StatusCode: status, Err: fmt.Errorf("envelope is %s, not an object", env.Kind())}
	}

	data := env.Field("data")
	if data.IsNull() {
		c.logger.WithFields(map[string]interface{}{
			"op":     op,
			"r_code": env.Path("status.rCode").Any(),
		}).Debug("No data in response")
	}
	return data, nil
}

// rowsAt returns the first non-empty list found at one of paths.
func rowsAt(data normalize.Value, paths ...string) []normalize.Value {
	for _, p := range paths {
		if rows := data.Path(p).List(); len(rows) > 0 {
			return rows
		}
	}
	return nil
}

// recoverable reports errors that let a multi-request fetch move on to its
// next source: transport failures only. Credential problems end the fetch.
func recoverable(err error) bool {
	return errors.Is(err, ErrTransport)
}
