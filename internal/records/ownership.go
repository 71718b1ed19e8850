package records

import "time"

type InsiderTransaction struct {
	TransactionDate  *time.Time `json:"transaction_date" src:"lastDate,transaction_date,date" rule:"date"`
	InsiderName      *string    `json:"insider_name" src:"insider,insider_name" rule:"text"`
	Relationship     *string    `json:"relationship" src:"relation,relationship" rule:"text"`
	TransactionType  *string    `json:"transaction_type" src:"transactionType,transaction_type" rule:"text"`
	OwnershipType    *string    `json:"ownership_type" src:"ownType,ownership_type" rule:"text"`
	Shares           *int64     `json:"shares" src:"sharesTraded,shares" rule:"int"`
	PricePerShare    *float64   `json:"price_per_share" src:"lastPrice,price_per_share,price" rule:"number"`
	TotalValue       *float64   `json:"total_value" src:"total_value,value" rule:"number"`
	SharesOwnedAfter *int64     `json:"shares_owned_after" src:"sharesHeld,shares_owned_after" rule:"int"`
	FilingDate       *time.Time `json:"filing_date" src:"filing_date,filingDate" rule:"date"`
}

type InstitutionalHolding struct {
	InstitutionName  *string    `json:"institution_name" src:"ownerName,institution_name" rule:"text"`
	SharesHeld       *int64     `json:"shares_held" src:"sharesHeld,shares_held" rule:"int"`
	MarketValue      *float64   `json:"market_value" src:"marketValue,market_value" rule:"number"`
	WeightPercent    *float64   `json:"weight_percent" src:"weight_percent,weightPercent" rule:"number"`
	ChangeInShares   *int64     `json:"change_in_shares" src:"sharesChange,change_in_shares" rule:"int"`
	ChangePercent    *float64   `json:"change_percent" src:"sharesChangePCT,change_percent" rule:"number"`
	LastReportedDate *time.Time `json:"last_reported_date" src:"date,last_reported_date" rule:"date"`
}

// ShortInterestRecord is one settlement-date snapshot.
type ShortInterestRecord struct {
	SettlementDate     *time.Time `json:"settlement_date" src:"settlementDate,settlement_date,date" rule:"date"`
	ShortInterest      *int64     `json:"short_interest" src:"interest,short_interest" rule:"int"`
	AverageDailyVolume *int64     `json:"average_daily_volume" src:"avgDailyShareVolume,average_daily_volume" rule:"int"`
	DaysToCover        *float64   `json:"days_to_cover" src:"daysToCover,days_to_cover" rule:"number"`
}

// InsiderTradeSummary is one row of the 3/12-month insider activity tables.
type InsiderTradeSummary struct {
	Label    *string `json:"label" src:"insiderTrade,label" rule:"text"`
	Months3  *int64  `json:"months_3" src:"months3" rule:"int"`
	Months12 *int64  `json:"months_12" src:"months12" rule:"int"`
}

// OwnershipSummary is the institutional ownership headline.
type OwnershipSummary struct {
	InstitutionalPercent   *float64 `json:"institutional_percent" src:"SharesOutstandingPCT.value" rule:"number"`
	SharesOutstandingTotal *int64   `json:"shares_outstanding_total" src:"ShareoutstandingTotal.value" rule:"int"`
	TotalHoldingsValue     *float64 `json:"total_holdings_value" src:"TotalHoldingsValue.value" rule:"number"`
}

// PositionSummary counts holders and shares per position bucket
// ("Increased Positions", "New Positions", …).
type PositionSummary struct {
	Positions *string `json:"positions" src:"positions" rule:"text"`
	Holders   *int64  `json:"holders" src:"holders" rule:"int"`
	Shares    *int64  `json:"shares" src:"shares" rule:"int"`
}
