package records

import "time"

// SECFiling is one EDGAR filing. DocumentURL prefers the HTML rendition.
type SECFiling struct {
	FormType       *string    `json:"form_type" src:"formType,filingType,form_type,type" rule:"text" default:"Unknown"`
	FiledDate      *time.Time `json:"filed_date" src:"filed,filedDate,date" rule:"date"`
	AcceptanceDate *time.Time `json:"acceptance_date" src:"acceptanceDate,acceptance_date" rule:"date"`
	PeriodOfReport *time.Time `json:"period_of_report" src:"period,periodOfReport,period_of_report" rule:"date"`
	ReportingOwner *string    `json:"reporting_owner" src:"reportingOwner,reporting_owner" rule:"text"`
	DocumentURL    *string    `json:"document_url" src:"view.htmlLink,view.docLink,url,document_url" rule:"text"`
	Description    *string    `json:"description" src:"description" rule:"text"`
	Size           *string    `json:"size" src:"size" rule:"text"`
}
