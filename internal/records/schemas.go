package records

// Schemas returns the rule table of every record type, keyed by type name.
func Schemas() map[string][]FieldRule {
	return map[string][]FieldRule{
		"CompanyProfile":         Describe[CompanyProfile](),
		"MarketScreenerResult":   Describe[MarketScreenerResult](),
		"NewsArticle":            Describe[NewsArticle](),
		"PressRelease":           Describe[PressRelease](),
		"RevenueEarningsQuarter": Describe[RevenueEarningsQuarter](),
		"HistoricalQuote":        Describe[HistoricalQuote](),
		"DividendRecord":         Describe[DividendRecord](),
		"FinancialRatio":         Describe[FinancialRatio](),
		"OptionChainData":        Describe[OptionChainData](),
		"InsiderTransaction":     Describe[InsiderTransaction](),
		"InstitutionalHolding":   Describe[InstitutionalHolding](),
		"ShortInterestRecord":    Describe[ShortInterestRecord](),
		"SECFiling":              Describe[SECFiling](),
		"EarningsCalendarEvent":  Describe[EarningsCalendarEvent](),
		"InsiderTradeSummary":    Describe[InsiderTradeSummary](),
		"OwnershipSummary":       Describe[OwnershipSummary](),
		"PositionSummary":        Describe[PositionSummary](),
	}
}
