package nasdaq

import (
	"context"
	"fmt"
	"net/url"

	"github.com/wonny/nasdaq/internal/records"
)

// InsiderActivity is the insider-trades page: summary tables plus transactions.
type InsiderActivity struct {
	NumberOfTrades       []records.InsiderTradeSummary `json:"number_of_trades"`
	NumberOfSharesTraded []records.InsiderTradeSummary `json:"number_of_shares_traded"`
	Transactions         []records.InsiderTransaction  `json:"transactions"`
}

// InsiderTrading fetches recent insider transactions, newest first.
func (c *Client) InsiderTrading(ctx context.Context, symbol string) (InsiderActivity, error) {
	u := c.apiURL(fmt.Sprintf("/company/%s/insider-trades", symbolPath(symbol)), url.Values{
		"limit":      {"10"},
		"type":       {"all"},
		"sortColumn": {"lastDate"},
		"sortOrder":  {"DESC"},
	})

	data, err := c.getData(ctx, "insider-trades", u)
	if err != nil {
		return InsiderActivity{}, err
	}

	return InsiderActivity{
		NumberOfTrades:       records.BuildAll[records.InsiderTradeSummary](c.engine, data.Path("numberOfTrades.rows").List()),
		NumberOfSharesTraded: records.BuildAll[records.InsiderTradeSummary](c.engine, data.Path("numberOfSharesTraded.rows").List()),
		Transactions:         records.BuildAll[records.InsiderTransaction](c.engine, data.Path("transactionTable.table.rows").List()),
	}, nil
}

// InstitutionalOwnership is the institutional-holdings page.
type InstitutionalOwnership struct {
	Summary             records.OwnershipSummary       `json:"summary"`
	ActivePositions     []records.PositionSummary      `json:"active_positions"`
	NewSoldOutPositions []records.PositionSummary      `json:"new_sold_out_positions"`
	Holdings            []records.InstitutionalHolding `json:"holdings"`
}

// InstitutionalHoldings fetches the largest institutional holders by market value.
func (c *Client) InstitutionalHoldings(ctx context.Context, symbol string) (InstitutionalOwnership, error) {
	u := c.apiURL(fmt.Sprintf("/company/%s/institutional-holdings", symbolPath(symbol)), url.Values{
		"limit":      {"10"},
		"type":       {"TOTAL"},
		"sortColumn": {"marketValue"},
	})

	data, err := c.getData(ctx, "institutional-holdings", u)
	if err != nil {
		return InstitutionalOwnership{}, err
	}

	return InstitutionalOwnership{
		Summary:             records.Build[records.OwnershipSummary](c.engine, data.Field("ownershipSummary")),
		ActivePositions:     records.BuildAll[records.PositionSummary](c.engine, data.Path("activePositions.rows").List()),
		NewSoldOutPositions: records.BuildAll[records.PositionSummary](c.engine, data.Path("newSoldOutPositions.rows").List()),
		Holdings:            records.BuildAll[records.InstitutionalHolding](c.engine, data.Path("holdingsTransactions.table.rows").List()),
	}, nil
}
