package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/nasdaq/internal/api/handlers"
	"github.com/wonny/nasdaq/internal/nasdaq"
	"github.com/wonny/nasdaq/internal/records"
	"github.com/wonny/nasdaq/internal/scheduler"
	"github.com/wonny/nasdaq/internal/session"
	"github.com/wonny/nasdaq/pkg/logger"
)

// fakeFetcher implements only what the tests call; anything else panics
// through the nil embedded interface.
type fakeFetcher struct {
	handlers.Fetcher
	err error

	gotSymbol string
	gotDays   int
	gotClass  nasdaq.AssetClass
}

func (f *fakeFetcher) CompanyProfile(ctx context.Context, symbol string) (records.CompanyProfile, error) {
	f.gotSymbol = symbol
	name := "Apple Inc."
	return records.CompanyProfile{CompanyName: &name}, f.err
}

func (f *fakeFetcher) HistoricalQuotes(ctx context.Context, symbol string, days int, class nasdaq.AssetClass) ([]records.HistoricalQuote, error) {
	f.gotSymbol, f.gotDays, f.gotClass = symbol, days, class
	return []records.HistoricalQuote{}, f.err
}

func (f *fakeFetcher) StockNews(ctx context.Context, symbol string, daysBack int) ([]records.NewsArticle, error) {
	f.gotDays = daysBack
	return nil, f.err
}

func (f *fakeFetcher) Screener(ctx context.Context) ([]records.MarketScreenerResult, error) {
	panic("upstream exploded")
}

type fakeSessions struct {
	mu          sync.Mutex
	snap        session.Snapshot
	err         error
	invalidated int
}

func (s *fakeSessions) GetValidCredential(ctx context.Context) (session.Credential, error) {
	return session.Credential{}, s.err
}
func (s *fakeSessions) Invalidate() { s.invalidated++ }
func (s *fakeSessions) Snapshot() session.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snap
}

func (s *fakeSessions) set(snap session.Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap = snap
}

type fakeJobs struct{}

func (fakeJobs) GetJobStats() map[string]scheduler.JobStats {
	return map[string]scheduler.JobStats{"credential_warmer": {JobName: "credential_warmer", Schedule: "@every 20m"}}
}

func newTestRouter(f *fakeFetcher, s *fakeSessions) http.Handler {
	log := logger.Nop()
	return NewRouter(
		handlers.NewMarketHandler(f, log),
		handlers.NewSessionHandler(s, fakeJobs{}, log),
		log,
	)
}

func do(t *testing.T, h http.Handler, method, target string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return rec, body
}

func TestHealth(t *testing.T) {
	minted := time.Date(2024, 7, 20, 12, 0, 0, 0, time.UTC)
	s := &fakeSessions{snap: session.Snapshot{State: session.StateFresh, CookieNames: []string{"ak_bmsc"}, MintedAt: &minted, TTL: "30m0s", Mints: 1}}

	rec, body := do(t, newTestRouter(&fakeFetcher{}, s), "GET", "/health")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "nasdaq", body["service"])

	sess := body["session"].(map[string]interface{})
	assert.Equal(t, "fresh", sess["state"])
	assert.Contains(t, body, "jobs")
	assert.NotEmpty(t, rec.Header().Get(RequestIDHeader))
}

func TestHealthDegraded(t *testing.T) {
	s := &fakeSessions{snap: session.Snapshot{State: session.StateStale, LastError: "mint timed out"}}

	_, body := do(t, newTestRouter(&fakeFetcher{}, s), "GET", "/health")
	assert.Equal(t, "degraded", body["status"])
}

func TestGetProfile(t *testing.T) {
	f := &fakeFetcher{}
	rec, body := do(t, newTestRouter(f, &fakeSessions{}), "GET", "/api/v1/companies/AAPL/profile")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "AAPL", f.gotSymbol)
	assert.Equal(t, true, body["success"])
	data := body["data"].(map[string]interface{})
	assert.Equal(t, "Apple Inc.", data["company_name"])
	assert.Nil(t, data["sector"], "unset fields render as null")
}

func TestFetchErrorStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"credential", fmt.Errorf("%w: browser crashed", session.ErrCredentialUnavailable), http.StatusServiceUnavailable},
		{"transport", &nasdaq.TransportError{Op: "profile", URL: "u", StatusCode: 500, Err: errors.New("boom")}, http.StatusBadGateway},
		{"other", errors.New("unexpected"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, body := do(t, newTestRouter(&fakeFetcher{err: tt.err}, &fakeSessions{}), "GET", "/api/v1/companies/AAPL/profile")
			assert.Equal(t, tt.want, rec.Code)
			assert.Contains(t, body["error"], tt.err.Error())
		})
	}
}

func TestHistoricalQueryParams(t *testing.T) {
	f := &fakeFetcher{}
	h := newTestRouter(f, &fakeSessions{})

	rec, _ := do(t, h, "GET", "/api/v1/quotes/QQQ/historical?days=30&assetclass=etf")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 30, f.gotDays)
	assert.Equal(t, nasdaq.AssetETF, f.gotClass)

	rec, _ = do(t, h, "GET", "/api/v1/quotes/QQQ/historical?days=abc")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 5, f.gotDays, "invalid days falls back")

	rec, body := do(t, h, "GET", "/api/v1/quotes/QQQ/historical?assetclass=bond")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, body["error"], "bond")
}

func TestNewsDefaultWindow(t *testing.T) {
	f := &fakeFetcher{}
	rec, _ := do(t, newTestRouter(f, &fakeSessions{}), "GET", "/api/v1/quotes/AAPL/news")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, nasdaq.DefaultNewsDays, f.gotDays)
}

func TestSchemas(t *testing.T) {
	h := newTestRouter(&fakeFetcher{}, &fakeSessions{})

	rec, body := do(t, h, "GET", "/api/v1/schemas")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, body["data"], "DividendRecord")

	rec, body = do(t, h, "GET", "/api/v1/schemas/DividendRecord")
	assert.Equal(t, http.StatusOK, rec.Code)
	rules := body["data"].([]interface{})
	first := rules[0].(map[string]interface{})
	assert.Equal(t, "ex_or_eff_date", first["field"])
	assert.Equal(t, "date", first["rule"])

	rec, _ = do(t, h, "GET", "/api/v1/schemas/Nope")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSessionRefresh(t *testing.T) {
	s := &fakeSessions{snap: session.Snapshot{State: session.StateFresh}}
	h := newTestRouter(&fakeFetcher{}, s)

	rec, body := do(t, h, "POST", "/api/v1/session/refresh")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, s.invalidated)
	assert.Equal(t, "fresh", body["data"].(map[string]interface{})["state"])

	s.err = fmt.Errorf("%w: timeout", session.ErrCredentialUnavailable)
	rec, _ = do(t, h, "POST", "/api/v1/session/refresh")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestRecoveryMiddleware(t *testing.T) {
	rec, body := do(t, newTestRouter(&fakeFetcher{}, &fakeSessions{}), "GET", "/api/v1/screener")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Internal server error", body["error"])
}

func TestRequestIDPropagation(t *testing.T) {
	h := newTestRouter(&fakeFetcher{}, &fakeSessions{})

	id := "0b7e1c1e-5d51-4c1e-9f3a-2f0d8f2d9a11"
	req := httptest.NewRequest("GET", "/health", nil)
	req.Header.Set(RequestIDHeader, id)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, id, rec.Header().Get(RequestIDHeader))

	req = httptest.NewRequest("GET", "/health", nil)
	req.Header.Set(RequestIDHeader, "not-a-uuid")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.NotEqual(t, "not-a-uuid", rec.Header().Get(RequestIDHeader))
}

func TestSessionWatch(t *testing.T) {
	s := &fakeSessions{snap: session.Snapshot{State: session.StateAbsent}}
	log := logger.Nop()
	h := NewRouter(
		handlers.NewMarketHandler(&fakeFetcher{}, log),
		handlers.NewSessionHandler(s, nil, log).WithWatchInterval(10*time.Millisecond),
		log,
	)
	server := httptest.NewServer(h)
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "/api/v1/session/watch"
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()
	assert.Equal(t, http.StatusSwitchingProtocols, resp.StatusCode)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))

	var first session.Snapshot
	require.NoError(t, conn.ReadJSON(&first))
	assert.Equal(t, session.StateAbsent, first.State)

	s.set(session.Snapshot{State: session.StateFresh, Mints: 1})

	var second session.Snapshot
	require.NoError(t, conn.ReadJSON(&second))
	assert.Equal(t, session.StateFresh, second.State)
	assert.Equal(t, int64(1), second.Mints)
}
