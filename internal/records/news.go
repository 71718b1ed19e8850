package records

import "time"

type NewsArticle struct {
	Title       *string    `json:"title" src:"title" rule:"text"`
	CreatedDate *time.Time `json:"created_date" src:"created,created_date" rule:"date"`
	Publisher   *string    `json:"publisher" src:"publisher" rule:"text"`
	URL         *string    `json:"url" src:"url" rule:"text"`
	Symbol      *string    `json:"symbol" src:"symbol" rule:"text"`
	Summary     *string    `json:"summary" src:"summary,description" rule:"text"`
	ArticleType *string    `json:"article_type" src:"article_type" rule:"text" default:"news"`
}

// PressRelease is a company-issued release; the feed shape matches NewsArticle.
type PressRelease struct {
	Title       *string    `json:"title" src:"title" rule:"text"`
	CreatedDate *time.Time `json:"created_date" src:"created,created_date" rule:"date"`
	Publisher   *string    `json:"publisher" src:"publisher" rule:"text"`
	URL         *string    `json:"url" src:"url" rule:"text"`
	Symbol      *string    `json:"symbol" src:"symbol" rule:"text"`
	Summary     *string    `json:"summary" src:"summary,description" rule:"text"`
	ContactInfo *string    `json:"contact_info" src:"contactInfo,contact_info" rule:"text"`
	ReleaseType *string    `json:"release_type" src:"releaseType,release_type" rule:"text"`
	ArticleType *string    `json:"article_type" src:"article_type" rule:"text" default:"press_release"`
}
