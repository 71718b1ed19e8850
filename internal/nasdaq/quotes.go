package nasdaq

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/wonny/nasdaq/internal/normalize"
	"github.com/wonny/nasdaq/internal/records"
)

// AssetClass selects the quote universe of an endpoint.
type AssetClass string

const (
	AssetStocks AssetClass = "stocks"
	AssetETF    AssetClass = "etf"
)

// ParseAssetClass accepts "stock(s)" and "etf".
func ParseAssetClass(s string) (AssetClass, error) {
	switch s {
	case "", "stock", "stocks":
		return AssetStocks, nil
	case "etf", "etfs":
		return AssetETF, nil
	default:
		return "", fmt.Errorf("unknown asset class %q", s)
	}
}

const (
	// DefaultHistoricalDays applies when days is not positive.
	DefaultHistoricalDays = 5

	// longHistoryDays is where calendar padding for weekends and holidays starts.
	longHistoryDays  = 150
	shortInterestMax = 4
)

// HistoricalQuotes fetches daily quotes covering the last days trading days.
func (c *Client) HistoricalQuotes(ctx context.Context, symbol string, days int, class AssetClass) ([]records.HistoricalQuote, error) {
	if days <= 0 {
		days = DefaultHistoricalDays
	}
	if class == "" {
		class = AssetStocks
	}

	calendarDays := days
	if days >= longHistoryDays {
		calendarDays = days * 3 / 2
	}
	end := c.now()
	start := end.AddDate(0, 0, -calendarDays)

	u := c.apiURL(fmt.Sprintf("/quote/%s/historical", symbolPath(symbol)), url.Values{
		"assetclass": {string(class)},
		"fromdate":   {start.Format("2006-01-02")},
		"todate":     {end.Format("2006-01-02")},
		"limit":      {strconv.Itoa(calendarDays)},
	})

	data, err := c.getData(ctx, "historical", u)
	if err != nil {
		return nil, err
	}

	rows := data.Path("tradesTable.rows").List()
	c.logger.WithFields(map[string]interface{}{
		"symbol": symbol,
		"count":  len(rows),
	}).Debug("Fetched historical quotes")

	return records.BuildAll[records.HistoricalQuote](c.engine, rows), nil
}

// DividendHistory fetches the dividend table; both the current and the
// legacy payload shapes are read.
func (c *Client) DividendHistory(ctx context.Context, symbol string) ([]records.DividendRecord, error) {
	u := c.apiURL(fmt.Sprintf("/quote/%s/dividends", symbolPath(symbol)), url.Values{"assetClass": {"stocks"}})

	data, err := c.getData(ctx, "dividends", u)
	if err != nil {
		return nil, err
	}

	rows := rowsAt(data, "dividends.rows", "dividendTable.rows")
	return records.BuildAll[records.DividendRecord](c.engine, rows), nil
}

// optionLegs maps record fields to the call/put column prefixes.
var optionLegs = []struct {
	kind, prefix string
}{
	{"Call", "c_"},
	{"Put", "p_"},
}

var optionColumns = map[string]string{
	"last":         "Last",
	"change":       "Change",
	"bid":          "Bid",
	"ask":          "Ask",
	"volume":       "Volume",
	"openinterest": "Openinterest",
}

// OptionChain fetches the option chain. Each table row carries a call and a
// put leg and becomes two records. Expiry group header rows only set the
// expiration date for the rows below them.
func (c *Client) OptionChain(ctx context.Context, symbol, moneyType string) ([]records.OptionChainData, error) {
	if moneyType == "" {
		moneyType = "ALL"
	}
	u := c.apiURL(fmt.Sprintf("/quote/%s/option-chain", symbolPath(symbol)), url.Values{
		"assetClass": {"stocks"},
		"moneyType":  {moneyType},
		"expiryType": {"ALL"},
	})

	data, err := c.getData(ctx, "option-chain", u)
	if err != nil {
		return nil, err
	}

	var legs []normalize.Value
	group := normalize.Null
	for _, row := range data.Path("table.rows").List() {
		if g := row.Field("expirygroup"); !g.IsNull() {
			if s, ok := g.Str(); !ok || !c.engine.IsEmpty(s) {
				group = g
			}
		}
		strike := row.Field("strike")
		if s, ok := strike.Str(); strike.IsNull() || (ok && c.engine.IsEmpty(s)) {
			continue
		}

		for _, leg := range optionLegs {
			fields := map[string]any{
				"symbol":          symbol,
				"option_type":     leg.kind,
				"strike":          strike,
				"expiration_date": group,
				"expiryDate":      row.Field("expiryDate"),
			}
			for field, col := range optionColumns {
				fields[field] = row.Field(leg.prefix + col)
			}
			legs = append(legs, normalize.FromAny(fields))
		}
	}

	return records.BuildAll[records.OptionChainData](c.engine, legs), nil
}

// ShortInterest fetches the most recent short-interest settlements.
func (c *Client) ShortInterest(ctx context.Context, symbol string) ([]records.ShortInterestRecord, error) {
	u := c.apiURL(fmt.Sprintf("/quote/%s/short-interest", symbolPath(symbol)), url.Values{"assetClass": {"stocks"}})

	data, err := c.getData(ctx, "short-interest", u)
	if err != nil {
		return nil, err
	}

	rows := data.Path("shortInterestTable.rows").List()
	if len(rows) > shortInterestMax {
		rows = rows[:shortInterestMax]
	}
	return records.BuildAll[records.ShortInterestRecord](c.engine, rows), nil
}
