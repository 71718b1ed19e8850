package session

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"os/exec"
	"strings"
	"time"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/go-resty/resty/v2"

	"github.com/wonny/nasdaq/pkg/config"
	"github.com/wonny/nasdaq/pkg/logger"
)

// Minter produces a brand-new credential. Only Cookies is significant:
// the manager stamps ID, MintedAt and TTL with its own clock and config.
// Implementations should honor ctx, but the manager bounds the call even
// when they do not.
type Minter interface {
	Mint(ctx context.Context) (Credential, error)
}

// MinterFunc adapts a plain function to Minter.
type MinterFunc func(ctx context.Context) (Credential, error)

// Mint implements Minter.
func (f MinterFunc) Mint(ctx context.Context) (Credential, error) {
	return f(ctx)
}

// NewMinter picks the configured minting capability: the external command
// when NASDAQ_MINT_COMMAND is set, the HTTP homepage visit otherwise.
// A non-nil hc is shared with the HTTP minter.
func NewMinter(cfg *config.Config, hc *http.Client, log *logger.Logger) Minter {
	if cfg.Nasdaq.MintCommand != "" {
		return NewCommandMinter(cfg.Nasdaq.MintCommand, log)
	}
	m := NewHTTPMinter(cfg, log)
	if hc != nil {
		m.WithHTTPClient(hc)
	}
	return m
}

// HTTPMinter visits the site homepage like a browser and harvests the
// cookies the bot-detection layer sets.
type HTTPMinter struct {
	siteURL   string
	apiURL    string
	userAgent string
	timeout   time.Duration
	bypass    bool
	shared    *http.Client
	logger    *logger.Logger
}

// NewHTTPMinter creates an HTTP minter from config
func NewHTTPMinter(cfg *config.Config, log *logger.Logger) *HTTPMinter {
	timeout := cfg.Nasdaq.MintTimeout
	if timeout <= 0 {
		timeout = DefaultMintTimeout
	}
	userAgent := cfg.Nasdaq.UserAgent
	if userAgent == "" {
		userAgent = config.DefaultUserAgent
	}
	return &HTTPMinter{
		siteURL:   strings.TrimRight(cfg.Nasdaq.SiteURL, "/"),
		apiURL:    strings.TrimRight(cfg.Nasdaq.APIBaseURL, "/"),
		userAgent: userAgent,
		timeout:   timeout,
		bypass:    true,
		logger:    log.WithComponent("minter"),
	}
}

// WithoutBypass skips the cloudflare transport (plain-HTTP test servers).
func (m *HTTPMinter) WithoutBypass() *HTTPMinter {
	m.bypass = false
	return m
}

// WithHTTPClient mints over hc's transport, so the visit passes the same
// rate limits and browser fingerprint as API calls. Each mint works on a
// copy of hc with its own cookie jar; hc itself is never modified.
func (m *HTTPMinter) WithHTTPClient(hc *http.Client) *HTTPMinter {
	m.shared = hc
	return m
}

// Mint implements Minter.
func (m *HTTPMinter) Mint(ctx context.Context) (Credential, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return Credential{}, fmt.Errorf("create cookie jar: %w", err)
	}

	var client *resty.Client
	if m.shared != nil {
		hc := *m.shared
		hc.Jar = jar
		client = resty.NewWithClient(&hc)
	} else {
		client = resty.New()
		client.SetCookieJar(jar)
		if m.bypass {
			client.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(client.GetClient().Transport)
		}
	}
	client.SetTimeout(m.timeout)
	client.SetRedirectPolicy(resty.FlexibleRedirectPolicy(10))
	for k, vs := range BrowserHeaders(m.userAgent) {
		client.SetHeader(k, vs[0])
	}

	home := m.siteURL + "/"
	resp, err := client.R().SetContext(ctx).Get(home)
	if err != nil {
		return Credential{}, fmt.Errorf("visit %s: %w", home, err)
	}

	cookies := make(map[string]string)
	for _, c := range resp.Cookies() {
		if c.Name != "" {
			cookies[c.Name] = c.Value
		}
	}
	// Cookies scoped to the parent domain apply to the API host too.
	for _, raw := range []string{m.siteURL, m.apiURL} {
		u, err := url.Parse(raw)
		if err != nil || u.Host == "" {
			continue
		}
		for _, c := range jar.Cookies(u) {
			if c.Name != "" {
				cookies[c.Name] = c.Value
			}
		}
	}

	m.logger.WithFields(map[string]interface{}{
		"url":     home,
		"status":  resp.StatusCode(),
		"cookies": len(cookies),
	}).Debug("Homepage visited")

	if len(cookies) == 0 {
		return Credential{}, fmt.Errorf("%w: %s answered %d", ErrNoCookies, home, resp.StatusCode())
	}
	return Credential{Cookies: cookies}, nil
}

// CommandMinter runs an external browser-automation command and reads a
// WebDriver-style cookie array from its stdout:
//
//	[{"name": "ak_bmsc", "value": "..."}, ...]
type CommandMinter struct {
	command string
	logger  *logger.Logger
}

// NewCommandMinter creates a minter that runs command through sh -c.
func NewCommandMinter(command string, log *logger.Logger) *CommandMinter {
	return &CommandMinter{
		command: command,
		logger:  log.WithComponent("minter"),
	}
}

type webDriverCookie struct {
	Name  *string `json:"name"`
	Value *string `json:"value"`
}

// Mint implements Minter.
func (m *CommandMinter) Mint(ctx context.Context) (Credential, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, "sh", "-c", m.command)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return Credential{}, fmt.Errorf("mint command failed: %w: %s", err, strings.TrimSpace(stderr.String()))
	}

	var raw []webDriverCookie
	if err := json.Unmarshal(bytes.TrimSpace(stdout.Bytes()), &raw); err != nil {
		return Credential{}, fmt.Errorf("decode mint command output: %w", err)
	}

	cookies := make(map[string]string, len(raw))
	for _, c := range raw {
		// Entries missing either half are skipped
		if c.Name == nil || c.Value == nil || *c.Name == "" {
			continue
		}
		cookies[*c.Name] = *c.Value
	}

	m.logger.WithField("cookies", len(cookies)).Debug("Mint command finished")

	if len(cookies) == 0 {
		return Credential{}, ErrNoCookies
	}
	return Credential{Cookies: cookies}, nil
}
