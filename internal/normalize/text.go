package normalize

import (
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// ParseText trims s and strips HTML markup. Empty markers → nil.
func (e *Engine) ParseText(s string) *string {
	s = strings.TrimSpace(s)
	if e.IsEmpty(s) {
		return nil
	}

	if strings.ContainsAny(s, "<&") {
		if doc, err := goquery.NewDocumentFromReader(strings.NewReader(s)); err == nil {
			s = doc.Text()
		}
	}

	s = strings.Join(strings.Fields(s), " ")
	if e.IsEmpty(s) {
		return nil
	}
	return &s
}

// ParseBool accepts true/false, yes/no, y/n and 1/0 in any case.
func (e *Engine) ParseBool(s string) *bool {
	var b bool
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "yes", "y", "1":
		b = true
	case "false", "no", "n", "0":
		b = false
	default:
		return nil
	}
	return &b
}

// ParseDate tries each layout in priority order. Date-only layouts yield
// midnight in the engine's location (UTC by default).
func (e *Engine) ParseDate(s string) *time.Time {
	s = strings.TrimSpace(s)
	if e.IsEmpty(s) {
		return nil
	}

	for _, layout := range e.layouts {
		if t, err := time.ParseInLocation(layout, s, e.loc); err == nil {
			return &t
		}
	}
	return nil
}
