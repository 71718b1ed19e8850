package handlers

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/wonny/nasdaq/internal/nasdaq"
	"github.com/wonny/nasdaq/internal/records"
	"github.com/wonny/nasdaq/pkg/logger"
)

// Fetcher is the NASDAQ surface served over HTTP. *nasdaq.Client implements it.
type Fetcher interface {
	CompanyProfile(ctx context.Context, symbol string) (records.CompanyProfile, error)
	RevenueEarnings(ctx context.Context, symbol string) ([]records.RevenueEarningsQuarter, error)
	FinancialRatios(ctx context.Context, symbol string) ([]records.FinancialRatio, error)
	HistoricalQuotes(ctx context.Context, symbol string, days int, class nasdaq.AssetClass) ([]records.HistoricalQuote, error)
	DividendHistory(ctx context.Context, symbol string) ([]records.DividendRecord, error)
	OptionChain(ctx context.Context, symbol, moneyType string) ([]records.OptionChainData, error)
	ShortInterest(ctx context.Context, symbol string) ([]records.ShortInterestRecord, error)
	Screener(ctx context.Context) ([]records.MarketScreenerResult, error)
	EarningsCalendar(ctx context.Context, days int) ([]records.EarningsCalendarEvent, error)
	StockNews(ctx context.Context, symbol string, daysBack int) ([]records.NewsArticle, error)
	PressReleases(ctx context.Context, symbol string, daysBack int) ([]records.PressRelease, error)
	InsiderTrading(ctx context.Context, symbol string) (nasdaq.InsiderActivity, error)
	InstitutionalHoldings(ctx context.Context, symbol string) (nasdaq.InstitutionalOwnership, error)
	SECFilings(ctx context.Context, symbol, filingType string) ([]records.SECFiling, error)
}

// MarketHandler serves NASDAQ records
// ⭐ SSOT: HTTP access to NASDAQ data goes through this handler only
type MarketHandler struct {
	fetcher Fetcher
	logger  *logger.Logger
}

// NewMarketHandler creates a new market handler
func NewMarketHandler(fetcher Fetcher, log *logger.Logger) *MarketHandler {
	return &MarketHandler{
		fetcher: fetcher,
		logger:  log,
	}
}

// serve runs one fetch and writes its records or the mapped error.
func (h *MarketHandler) serve(w http.ResponseWriter, r *http.Request, op string, fetch func(ctx context.Context, symbol string) (interface{}, error)) {
	symbol := mux.Vars(r)["symbol"]

	data, err := fetch(r.Context(), symbol)
	if err != nil {
		h.logger.WithError(err).WithFields(map[string]interface{}{
			"op":     op,
			"symbol": symbol,
		}).Error("Fetch failed")
		respondError(w, fetchStatus(err), err.Error())
		return
	}

	respondData(w, data)
}

// GetProfile returns the company profile
// GET /api/v1/companies/{symbol}/profile
func (h *MarketHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, "profile", func(ctx context.Context, symbol string) (interface{}, error) {
		return h.fetcher.CompanyProfile(ctx, symbol)
	})
}

// GetRevenue returns the trailing quarterly revenue table
// GET /api/v1/companies/{symbol}/revenue
func (h *MarketHandler) GetRevenue(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, "revenue", func(ctx context.Context, symbol string) (interface{}, error) {
		return h.fetcher.RevenueEarnings(ctx, symbol)
	})
}

// GetRatios returns financial ratios
// GET /api/v1/companies/{symbol}/ratios
func (h *MarketHandler) GetRatios(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, "ratios", func(ctx context.Context, symbol string) (interface{}, error) {
		return h.fetcher.FinancialRatios(ctx, symbol)
	})
}

// GetInsiderTrades returns insider activity
// GET /api/v1/companies/{symbol}/insider-trades
func (h *MarketHandler) GetInsiderTrades(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, "insider-trades", func(ctx context.Context, symbol string) (interface{}, error) {
		return h.fetcher.InsiderTrading(ctx, symbol)
	})
}

// GetInstitutionalHoldings returns institutional ownership
// GET /api/v1/companies/{symbol}/institutional-holdings
func (h *MarketHandler) GetInstitutionalHoldings(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, "institutional-holdings", func(ctx context.Context, symbol string) (interface{}, error) {
		return h.fetcher.InstitutionalHoldings(ctx, symbol)
	})
}

// GetSECFilings returns recent filings
// GET /api/v1/companies/{symbol}/sec-filings?type=10-K
func (h *MarketHandler) GetSECFilings(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, "sec-filings", func(ctx context.Context, symbol string) (interface{}, error) {
		return h.fetcher.SECFilings(ctx, symbol, r.URL.Query().Get("type"))
	})
}

// GetHistorical returns daily quotes
// GET /api/v1/quotes/{symbol}/historical?days=30&assetclass=etf
func (h *MarketHandler) GetHistorical(w http.ResponseWriter, r *http.Request) {
	class, err := nasdaq.ParseAssetClass(r.URL.Query().Get("assetclass"))
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	days := queryInt(r, "days", 5)

	h.serve(w, r, "historical", func(ctx context.Context, symbol string) (interface{}, error) {
		return h.fetcher.HistoricalQuotes(ctx, symbol, days, class)
	})
}

// GetDividends returns the dividend history
// GET /api/v1/quotes/{symbol}/dividends
func (h *MarketHandler) GetDividends(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, "dividends", func(ctx context.Context, symbol string) (interface{}, error) {
		return h.fetcher.DividendHistory(ctx, symbol)
	})
}

// GetOptionChain returns call and put legs
// GET /api/v1/quotes/{symbol}/option-chain?money=ALL
func (h *MarketHandler) GetOptionChain(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, "option-chain", func(ctx context.Context, symbol string) (interface{}, error) {
		return h.fetcher.OptionChain(ctx, symbol, r.URL.Query().Get("money"))
	})
}

// GetShortInterest returns recent short interest
// GET /api/v1/quotes/{symbol}/short-interest
func (h *MarketHandler) GetShortInterest(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, "short-interest", func(ctx context.Context, symbol string) (interface{}, error) {
		return h.fetcher.ShortInterest(ctx, symbol)
	})
}

// GetNews returns recent articles
// GET /api/v1/quotes/{symbol}/news?days=7
func (h *MarketHandler) GetNews(w http.ResponseWriter, r *http.Request) {
	days := queryInt(r, "days", nasdaq.DefaultNewsDays)
	h.serve(w, r, "news", func(ctx context.Context, symbol string) (interface{}, error) {
		return h.fetcher.StockNews(ctx, symbol, days)
	})
}

// GetPressReleases returns recent press releases
// GET /api/v1/quotes/{symbol}/press-releases?days=15
func (h *MarketHandler) GetPressReleases(w http.ResponseWriter, r *http.Request) {
	days := queryInt(r, "days", nasdaq.DefaultPressReleaseDays)
	h.serve(w, r, "press-releases", func(ctx context.Context, symbol string) (interface{}, error) {
		return h.fetcher.PressReleases(ctx, symbol, days)
	})
}

// GetScreener returns the stock and ETF screener
// GET /api/v1/screener
func (h *MarketHandler) GetScreener(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, "screener", func(ctx context.Context, _ string) (interface{}, error) {
		return h.fetcher.Screener(ctx)
	})
}

// GetEarningsCalendar returns upcoming earnings
// GET /api/v1/calendar/earnings?days=7
func (h *MarketHandler) GetEarningsCalendar(w http.ResponseWriter, r *http.Request) {
	days := queryInt(r, "days", 7)
	h.serve(w, r, "earnings", func(ctx context.Context, _ string) (interface{}, error) {
		return h.fetcher.EarningsCalendar(ctx, days)
	})
}
