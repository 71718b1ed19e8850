package records

import "time"

// RevenueEarningsQuarter is one fiscal quarter of the revenue table.
type RevenueEarningsQuarter struct {
	Quarter       *string  `json:"quarter" src:"quarter" rule:"text"`
	Revenue       *float64 `json:"revenue" src:"revenue" rule:"number"`
	EPS           *float64 `json:"eps" src:"eps" rule:"number"`
	Dividends     *float64 `json:"dividends" src:"dividends" rule:"number"`
	FiscalYear    *int64   `json:"fiscal_year" src:"fiscal_year,fiscalYear" rule:"int"`
	FiscalQuarter *int64   `json:"fiscal_quarter" src:"fiscal_quarter,fiscalQuarter" rule:"int"`
}

type DividendRecord struct {
	ExOrEffDate     *time.Time `json:"ex_or_eff_date" src:"exOrEffDate,ex_or_eff_date,date" rule:"date"`
	Type            *string    `json:"type" src:"type" rule:"text" default:"Cash"`
	Amount          *float64   `json:"amount" src:"amount" rule:"number"`
	DeclarationDate *time.Time `json:"declaration_date" src:"declarationDate,declaration_date" rule:"date"`
	RecordDate      *time.Time `json:"record_date" src:"recordDate,record_date" rule:"date"`
	PaymentDate     *time.Time `json:"payment_date" src:"paymentDate,payment_date" rule:"date"`
	Currency        *string    `json:"currency" src:"currency" rule:"text" default:"USD"`
}

// FinancialRatio is a named metric. Value holds the parsed number when the
// display form is numeric; ranges such as "52 Week Range" keep only DisplayValue.
type FinancialRatio struct {
	Name         *string  `json:"name" src:"name" rule:"text"`
	Value        *float64 `json:"value" src:"value" rule:"number"`
	DisplayValue *string  `json:"display_value" src:"displayValue,display_value,value" rule:"text"`
	Category     *string  `json:"category" src:"category" rule:"text"`
}
