package nasdaq

import (
	"context"
	"net/url"

	"github.com/wonny/nasdaq/internal/normalize"
	"github.com/wonny/nasdaq/internal/records"
)

var screenerQuery = url.Values{"tableonly": {"false"}, "download": {"true"}}

// Screener fetches the full stock screener followed by the ETF screener.
// ETF rows use different column names; the record aliases absorb them.
func (c *Client) Screener(ctx context.Context) ([]records.MarketScreenerResult, error) {
	stocks, err := c.getData(ctx, "screener-stocks", c.apiURL("/screener/stocks", screenerQuery))
	if err != nil {
		return nil, err
	}
	etfs, err := c.getData(ctx, "screener-etf", c.apiURL("/screener/etf", screenerQuery))
	if err != nil {
		return nil, err
	}

	stockRows := stocks.Path("rows").List()
	etfRows := etfs.Path("data.rows").List()

	rows := make([]normalize.Value, 0, len(stockRows)+len(etfRows))
	for _, r := range stockRows {
		rows = append(rows, r.With("asset_type", normalize.String("stock")))
	}
	for _, r := range etfRows {
		rows = append(rows, r.With("asset_type", normalize.String("etf")))
	}

	c.logger.WithFields(map[string]interface{}{
		"stocks": len(stockRows),
		"etfs":   len(etfRows),
	}).Info("Fetched screener")

	return records.BuildAll[records.MarketScreenerResult](c.engine, rows), nil
}

// DefaultEarningsDays is the calendar window when days is not positive.
const DefaultEarningsDays = 7

// EarningsCalendar fetches the earnings calendar for each of the next days
// days, today included. A day whose request fails is skipped; the call fails
// only when every day failed or a credential error occurred.
func (c *Client) EarningsCalendar(ctx context.Context, days int) ([]records.EarningsCalendarEvent, error) {
	if days <= 0 {
		days = DefaultEarningsDays
	}

	today := c.now()
	var (
		rows    []normalize.Value
		lastErr error
		failed  int
	)
	for i := 0; i < days; i++ {
		date := today.AddDate(0, 0, i).Format("2006-01-02")

		data, err := c.getData(ctx, "earnings", c.apiURL("/calendar/earnings", url.Values{"date": {date}}))
		if err != nil {
			if !recoverable(err) {
				return nil, err
			}
			failed++
			lastErr = err
			c.logger.WithError(err).WithField("date", date).Warn("Earnings day failed")
			continue
		}

		for _, r := range data.Path("rows").List() {
			rows = append(rows, r.With("callDate", normalize.String(date)))
		}
	}

	if failed == days {
		return nil, lastErr
	}
	return records.BuildAll[records.EarningsCalendarEvent](c.engine, rows), nil
}
