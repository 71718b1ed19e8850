package nasdaq

import (
	"context"
	"fmt"
	"net/url"

	"github.com/wonny/nasdaq/internal/records"
)

// SECFilings fetches recent EDGAR filings; filingType "" means ALL.
func (c *Client) SECFilings(ctx context.Context, symbol, filingType string) ([]records.SECFiling, error) {
	if filingType == "" {
		filingType = "ALL"
	}
	u := c.apiURL(fmt.Sprintf("/company/%s/sec-filings", symbolPath(symbol)), url.Values{
		"limit":      {"10"},
		"filingType": {filingType},
	})

	data, err := c.getData(ctx, "sec-filings", u)
	if err != nil {
		return nil, err
	}

	rows := rowsAt(data, "rows", "filingsTable.rows")
	return records.BuildAll[records.SECFiling](c.engine, rows), nil
}
