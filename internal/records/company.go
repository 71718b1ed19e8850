package records

// CompanyProfile is the company-profile summary of one listing.
// The profile endpoint wraps every member as {"label", "value"}.
type CompanyProfile struct {
	Symbol       *string  `json:"symbol" src:"Symbol.value,symbol" rule:"text"`
	CompanyName  *string  `json:"company_name" src:"CompanyName.value,companyName,company_name" rule:"text"`
	Description  *string  `json:"description" src:"CompanyDescription.value,description" rule:"text"`
	Sector       *string  `json:"sector" src:"Sector.value,sector" rule:"text"`
	Industry     *string  `json:"industry" src:"Industry.value,industry" rule:"text"`
	MarketCap    *float64 `json:"market_cap" src:"MarketCap.value,marketCap,market_cap" rule:"number"`
	Employees    *int64   `json:"employees" src:"Employees.value,employees" rule:"int"`
	Headquarters *string  `json:"headquarters" src:"Region.value,headquarters" rule:"text"`
	FoundedYear  *int64   `json:"founded_year" src:"FoundedYear.value,founded_year" rule:"int"`
	Website      *string  `json:"website" src:"CompanyUrl.value,website" rule:"text"`
	Phone        *string  `json:"phone" src:"Phone.value,phone" rule:"text"`
	Address      *string  `json:"address" src:"Address.value,address" rule:"text"`
	CEO          *string  `json:"ceo" src:"ceo" rule:"text"`
	AssetType    *string  `json:"asset_type" src:"asset_type" rule:"text" default:"stock"`
}
