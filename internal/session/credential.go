package session

import (
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Credential is one browser-derived cookie set.
// A credential is replaced on refresh, never mutated in place.
type Credential struct {
	ID       string            `json:"id"`
	Cookies  map[string]string `json:"cookies"`
	MintedAt time.Time         `json:"minted_at"`
	TTL      time.Duration     `json:"ttl"`
}

// NewCredential stamps a cookie set with an ID, mint time and lifetime.
func NewCredential(cookies map[string]string, mintedAt time.Time, ttl time.Duration) Credential {
	copied := make(map[string]string, len(cookies))
	for k, v := range cookies {
		copied[k] = v
	}
	return Credential{
		ID:       uuid.NewString(),
		Cookies:  copied,
		MintedAt: mintedAt,
		TTL:      ttl,
	}
}

// IsZero reports whether c carries no cookies.
func (c Credential) IsZero() bool {
	return len(c.Cookies) == 0
}

// Age is the elapsed time since minting.
func (c Credential) Age(now time.Time) time.Duration {
	return now.Sub(c.MintedAt)
}

// ExpiresAt is the first instant at which c is stale.
func (c Credential) ExpiresAt() time.Time {
	return c.MintedAt.Add(c.TTL)
}

// IsFresh reports age < TTL. age == TTL is stale.
func (c Credential) IsFresh(now time.Time) bool {
	if c.IsZero() {
		return false
	}
	return c.Age(now) < c.TTL
}

// Names returns the cookie names in sorted order.
func (c Credential) Names() []string {
	names := make([]string, 0, len(c.Cookies))
	for name := range c.Cookies {
		if name == "" {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// CookieHeader renders "name=value; name=value" in sorted name order.
func (c Credential) CookieHeader() string {
	names := c.Names()
	pairs := make([]string, 0, len(names))
	for _, name := range names {
		pairs = append(pairs, name+"="+c.Cookies[name])
	}
	return strings.Join(pairs, "; ")
}

// BrowserHeaders are sent on the homepage visit and on every API call.
// Accept-Encoding is left to net/http so gzip is decoded transparently.
func BrowserHeaders(userAgent string) http.Header {
	h := http.Header{}
	h.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,image/apng,*/*;q=0.8,application/signed-exchange;v=b3;q=0.7")
	h.Set("Accept-Language", "en-GB,en;q=0.9,en-US;q=0.8")
	h.Set("Cache-Control", "max-age=0")
	h.Set("Dnt", "1")
	h.Set("Priority", "u=0, i")
	h.Set("Sec-Ch-Ua", `"Not A(Brand";v="8", "Chromium";v="132", "Microsoft Edge";v="132"`)
	h.Set("Sec-Ch-Ua-Mobile", "?0")
	h.Set("Sec-Ch-Ua-Platform", `"macOS"`)
	h.Set("Sec-Fetch-Dest", "document")
	h.Set("Sec-Fetch-Mode", "navigate")
	h.Set("Sec-Fetch-Site", "none")
	h.Set("Sec-Fetch-User", "?1")
	h.Set("Upgrade-Insecure-Requests", "1")
	h.Set("User-Agent", userAgent)
	return h
}
