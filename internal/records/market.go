package records

import "time"

// MarketScreenerResult is one row of the stock or ETF screener.
type MarketScreenerResult struct {
	Symbol           *string  `json:"symbol" src:"symbol" rule:"text"`
	Name             *string  `json:"name" src:"name,companyName" rule:"text"`
	LastSalePrice    *float64 `json:"last_sale_price" src:"lastsale,lastSalePrice,last_sale_price" rule:"number"`
	NetChange        *float64 `json:"net_change" src:"netchange,netChange,net_change" rule:"number"`
	PercentageChange *float64 `json:"percentage_change" src:"pctchange,percentageChange,percentage_change" rule:"number"`
	MarketCap        *float64 `json:"market_cap" src:"marketCap,market_cap" rule:"number"`
	Country          *string  `json:"country" src:"country" rule:"text"`
	IPOYear          *int64   `json:"ipo_year" src:"ipoyear,ipoYear,ipo_year" rule:"int"`
	Volume           *int64   `json:"volume" src:"volume" rule:"int"`
	Sector           *string  `json:"sector" src:"sector" rule:"text"`
	Industry         *string  `json:"industry" src:"industry" rule:"text"`
	URL              *string  `json:"url" src:"url" rule:"text"`
	AssetType        *string  `json:"asset_type" src:"asset_type" rule:"text" default:"stock"`
}

// HistoricalQuote is one trading day.
type HistoricalQuote struct {
	Date          *time.Time `json:"date" src:"date" rule:"date"`
	Open          *float64   `json:"open_price" src:"open,open_price" rule:"number"`
	High          *float64   `json:"high_price" src:"high,high_price" rule:"number"`
	Low           *float64   `json:"low_price" src:"low,low_price" rule:"number"`
	Close         *float64   `json:"close_price" src:"close,close_price" rule:"number"`
	Volume        *int64     `json:"volume" src:"volume" rule:"int"`
	AdjustedClose *float64   `json:"adjusted_close" src:"adjClose,adjusted_close" rule:"number"`
}

// OptionChainData is one leg (call or put) of an option-chain row.
type OptionChainData struct {
	Symbol            *string    `json:"symbol" src:"symbol" rule:"text"`
	ExpirationDate    *time.Time `json:"expiration_date" src:"expiration_date,expirygroup,expiryDate" rule:"date"`
	StrikePrice       *float64   `json:"strike_price" src:"strike,strike_price" rule:"number"`
	OptionType        *string    `json:"option_type" src:"option_type" rule:"text" default:"Call"`
	LastPrice         *float64   `json:"last_price" src:"last,last_price" rule:"number"`
	Change            *float64   `json:"change" src:"change" rule:"number"`
	Bid               *float64   `json:"bid" src:"bid" rule:"number"`
	Ask               *float64   `json:"ask" src:"ask" rule:"number"`
	Volume            *int64     `json:"volume" src:"volume" rule:"int"`
	OpenInterest      *int64     `json:"open_interest" src:"openinterest,open_interest" rule:"int"`
	ImpliedVolatility *float64   `json:"implied_volatility" src:"iv,implied_volatility" rule:"number"`
	Delta             *float64   `json:"delta" src:"delta" rule:"number"`
	Gamma             *float64   `json:"gamma" src:"gamma" rule:"number"`
	Theta             *float64   `json:"theta" src:"theta" rule:"number"`
	Vega              *float64   `json:"vega" src:"vega" rule:"number"`
}

// EarningsCalendarEvent is one scheduled earnings report.
type EarningsCalendarEvent struct {
	Symbol              *string    `json:"symbol" src:"symbol" rule:"text"`
	CompanyName         *string    `json:"company_name" src:"companyName,name" rule:"text"`
	EarningsDate        *time.Time `json:"earnings_date" src:"callDate,earningsDate" rule:"date"`
	FiscalQuarterEnding *string    `json:"fiscal_quarter_ending" src:"fiscalQuarterEnding" rule:"text"`
	EPSForecast         *float64   `json:"eps_forecast" src:"epsForecast,eps_forecast" rule:"number"`
	EPSActual           *float64   `json:"eps_actual" src:"epsActual,eps_actual" rule:"number"`
	RevenueForecast     *float64   `json:"revenue_forecast" src:"revenueForecast,revenue_forecast" rule:"number"`
	RevenueActual       *float64   `json:"revenue_actual" src:"revenueActual,revenue_actual" rule:"number"`
	NumberOfEstimates   *int64     `json:"number_of_estimates" src:"noOfEsts,number_of_estimates" rule:"int"`
	MarketCap           *float64   `json:"market_cap" src:"marketCap,market_cap" rule:"number"`
	ReportTime          *string    `json:"report_time" src:"time,report_time" rule:"text" default:"Before Market Open"`
	LastYearEPS         *float64   `json:"last_year_eps" src:"lastYearEPS,last_year_eps" rule:"number"`
	LastYearReportDate  *time.Time `json:"last_year_report_date" src:"lastYearRptDt,last_year_report_date" rule:"date"`
}
