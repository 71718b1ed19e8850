package nasdaq

import (
	"context"
	"fmt"
	"net/url"
	"sort"

	"github.com/wonny/nasdaq/internal/normalize"
	"github.com/wonny/nasdaq/internal/records"
)

// revenueQuarters is how many trailing quarters RevenueEarnings keeps.
const revenueQuarters = 6

// CompanyProfile fetches the company-profile summary.
func (c *Client) CompanyProfile(ctx context.Context, symbol string) (records.CompanyProfile, error) {
	u := c.apiURL(fmt.Sprintf("/company/%s/company-profile", symbolPath(symbol)), nil)

	data, err := c.getData(ctx, "company-profile", u)
	if err != nil {
		return records.CompanyProfile{}, err
	}
	if data.IsNull() {
		return records.CompanyProfile{}, nil
	}

	return records.Build[records.CompanyProfile](c.engine, data.With("symbol", normalize.String(symbol))), nil
}

// RevenueEarnings fetches the quarterly revenue table.
// The table arrives as groups of four rows: the quarter label, then revenue,
// EPS and dividends, each in value2.
func (c *Client) RevenueEarnings(ctx context.Context, symbol string) ([]records.RevenueEarningsQuarter, error) {
	u := c.apiURL(fmt.Sprintf("/company/%s/revenue", symbolPath(symbol)), url.Values{"limit": {"1"}})

	data, err := c.getData(ctx, "revenue", u)
	if err != nil {
		return nil, err
	}

	rows := data.Path("revenueTable.rows").List()
	fiscalYear := data.Path("revenueTable.headers.value2")

	var quarters []normalize.Value
	for i := 0; i+3 < len(rows); i += 4 {
		quarters = append(quarters, normalize.FromAny(map[string]any{
			"quarter":     rows[i].Field("value1"),
			"revenue":     rows[i+1].Field("value2"),
			"eps":         rows[i+2].Field("value2"),
			"dividends":   rows[i+3].Field("value2"),
			"fiscal_year": fiscalYear,
		}))
	}
	if len(quarters) > revenueQuarters {
		quarters = quarters[len(quarters)-revenueQuarters:]
	}

	return records.BuildAll[records.RevenueEarningsQuarter](c.engine, quarters), nil
}

// ratioSource is one endpoint FinancialRatios may read from.
type ratioSource struct {
	op   string
	path string
	q    url.Values
}

// keyStatNames labels key-stat members that arrive without one.
var keyStatNames = map[string]string{
	"fiftyTwoWeekHighLow": "52 Week Range",
	"dayrange":            "Day Range",
}

// primaryRatioNames are the primaryData members reported as ratios, in order.
var primaryRatioNames = []struct{ key, name string }{
	{"lastSalePrice", "Current Price"},
	{"netChange", "Net Change"},
	{"percentageChange", "Percent Change"},
}

// FinancialRatios tries the ratio endpoints in order and returns the first
// non-empty result. A transport failure moves on to the next endpoint and
// the fetch fails only when every endpoint failed; credential failures end
// the fetch.
func (c *Client) FinancialRatios(ctx context.Context, symbol string) ([]records.FinancialRatio, error) {
	sym := symbolPath(symbol)
	sources := []ratioSource{
		{"ratios", fmt.Sprintf("/quote/%s/ratios", sym), url.Values{"assetClass": {"stocks"}}},
		{"company-ratios", fmt.Sprintf("/company/%s/ratios", sym), nil},
		{"info", fmt.Sprintf("/quote/%s/info", sym), url.Values{"assetclass": {"stocks"}}},
	}

	var (
		lastErr error
		failed  int
	)
	for _, src := range sources {
		data, err := c.getData(ctx, src.op, c.apiURL(src.path, src.q))
		if err != nil {
			if !recoverable(err) {
				return nil, err
			}
			lastErr = err
			failed++
			c.logger.WithError(err).WithField("op", src.op).Debug("Ratio source failed, trying next")
			continue
		}

		if rows := ratioRows(data); len(rows) > 0 {
			return records.BuildAll[records.FinancialRatio](c.engine, rows), nil
		}
	}

	if failed == len(sources) {
		return nil, lastErr
	}
	return []records.FinancialRatio{}, nil
}

// ratioRows flattens the three payload shapes into {name, value, displayValue, category} rows.
func ratioRows(data normalize.Value) []normalize.Value {
	var rows []normalize.Value

	for _, r := range data.Path("ratioTable.rows").List() {
		rows = append(rows, r.With("category", normalize.String("ratio")))
	}

	if len(rows) == 0 {
		stats := data.Field("keyStats")
		keys := stats.Keys()
		sort.Strings(keys)
		for _, k := range keys {
			member := stats.Field(k)
			name := member.Field("label")
			if label, ok := keyStatNames[k]; ok && name.IsNull() {
				name = normalize.String(label)
			}
			if name.IsNull() {
				name = normalize.String(k)
			}
			rows = append(rows, normalize.FromAny(map[string]any{
				"name":     name,
				"value":    member.Field("value"),
				"category": "key_stats",
			}))
		}
	}

	primary := data.Field("primaryData")
	for _, p := range primaryRatioNames {
		if v := primary.Field(p.key); !v.IsNull() {
			rows = append(rows, normalize.FromAny(map[string]any{
				"name":     p.name,
				"value":    v,
				"category": "primary",
			}))
		}
	}

	return rows
}
