// Package normalize turns the loosely typed, locale-formatted strings the
// NASDAQ API returns into typed values.
//
// Every function is total: unparseable input yields nil, never an error.
package normalize

import (
	"strings"
	"time"
)

// DefaultEmptyMarkers are the placeholder strings the API uses for "no value".
var DefaultEmptyMarkers = []string{"", "N/A", "NA", "n/a", "--", "-"}

// DefaultDateLayouts in priority order. The first layout that parses wins.
var DefaultDateLayouts = []string{
	"01/02/2006",
	"1/2/2006",
	"Jan 2, 2006",
	"January 2, 2006",
	"2006-01-02",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"01/02/2006 15:04:05",
	"20060102",
}

// Options configures an Engine. Nil slices take the defaults.
type Options struct {
	EmptyMarkers []string
	DateLayouts  []string
	Location     *time.Location // zone for layouts without an offset, UTC if nil
}

// Engine applies one fixed set of normalization rules.
// Safe for concurrent use: it is never mutated after New.
type Engine struct {
	empty   map[string]struct{}
	layouts []string
	loc     *time.Location
}

// New creates an engine from options
func New(opts Options) *Engine {
	markers := opts.EmptyMarkers
	if markers == nil {
		markers = DefaultEmptyMarkers
	}
	layouts := opts.DateLayouts
	if len(layouts) == 0 {
		layouts = DefaultDateLayouts
	}
	loc := opts.Location
	if loc == nil {
		loc = time.UTC
	}

	empty := make(map[string]struct{}, len(markers)+1)
	// Blank input is always empty, whatever the configuration says.
	empty[""] = struct{}{}
	for _, m := range markers {
		empty[strings.TrimSpace(m)] = struct{}{}
	}

	return &Engine{
		empty:   empty,
		layouts: append([]string(nil), layouts...),
		loc:     loc,
	}
}

// Default returns an engine with the default markers and layouts
func Default() *Engine {
	return New(Options{})
}

// IsEmpty reports whether s (after trimming) is an empty marker
func (e *Engine) IsEmpty(s string) bool {
	_, ok := e.empty[strings.TrimSpace(s)]
	return ok
}

// Layouts returns the date layouts in priority order
func (e *Engine) Layouts() []string {
	return append([]string(nil), e.layouts...)
}
