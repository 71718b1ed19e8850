package nasdaq

import (
	"context"
	"net/url"
	"time"

	"github.com/wonny/nasdaq/internal/normalize"
	"github.com/wonny/nasdaq/internal/records"
)

const (
	DefaultNewsDays         = 7
	DefaultPressReleaseDays = 15
)

// StockNews fetches articles about symbol published within the last daysBack days.
func (c *Client) StockNews(ctx context.Context, symbol string, daysBack int) ([]records.NewsArticle, error) {
	if daysBack <= 0 {
		daysBack = DefaultNewsDays
	}
	u := c.siteAPIURL("/news/topic/articlebysymbol", url.Values{
		"q":        {normSymbol(symbol) + "|STOCKS"},
		"offset":   {"0"},
		"limit":    {"5"},
		"fallback": {"true"},
	})

	rows, err := c.recentNews(ctx, "news", u, symbol, daysBack)
	if err != nil {
		return nil, err
	}
	return records.BuildAll[records.NewsArticle](c.engine, rows), nil
}

// PressReleases fetches company press releases from the last daysBack days.
func (c *Client) PressReleases(ctx context.Context, symbol string, daysBack int) ([]records.PressRelease, error) {
	if daysBack <= 0 {
		daysBack = DefaultPressReleaseDays
	}
	u := c.siteAPIURL("/news/topic/press_release", url.Values{
		"q":      {"symbol:" + normSymbol(symbol) + "|assetclass:stocks"},
		"limit":  {"10"},
		"offset": {"0"},
	})

	rows, err := c.recentNews(ctx, "press-release", u, symbol, daysBack)
	if err != nil {
		return nil, err
	}
	return records.BuildAll[records.PressRelease](c.engine, rows), nil
}

// recentNews returns feed rows created on or after the cutoff, with the
// symbol attached and links made absolute. Rows without a readable date are dropped.
func (c *Client) recentNews(ctx context.Context, op, u, symbol string, daysBack int) ([]normalize.Value, error) {
	data, err := c.getData(ctx, op, u)
	if err != nil {
		return nil, err
	}

	cutoff := c.now().Add(-time.Duration(daysBack) * 24 * time.Hour)

	var out []normalize.Value
	for _, row := range data.Path("rows").List() {
		created := c.engine.Date(row.Field("created"))
		if created == nil || created.Before(cutoff) {
			continue
		}

		row = row.With("symbol", normalize.String(symbol))
		if link, ok := row.Field("url").Str(); ok {
			row = row.With("url", normalize.String(c.absoluteURL(link)))
		}
		out = append(out, row)
	}
	return out, nil
}
