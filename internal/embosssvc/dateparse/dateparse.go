// Package dateparse turns the free-text issuance dates found in branch
// uploads into calendar dates. The reading of ambiguous numeric dates is a
// declared setting, not a guess: a parser configured day-first reads 01/02 as
// February 1st and never retries month-first on failure.
package dateparse

import (
	"strings"
	"time"
)

type Order string

const (
	DayFirst   Order = "day-first"
	MonthFirst Order = "month-first"
)

// ParseOrder maps a config value onto an Order, defaulting to day-first.
func ParseOrder(s string) Order {
	if Order(strings.TrimSpace(strings.ToLower(s))) == MonthFirst {
		return MonthFirst
	}
	return DayFirst
}

var (
	dayFirstLayouts = []string{
		"02/01/2006", "2/1/2006",
		"02-01-2006", "2-1-2006",
		"02.01.2006", "2.1.2006",
	}
	monthFirstLayouts = []string{
		"01/02/2006", "1/2/2006",
		"01-02-2006", "1-2-2006",
		"01.02.2006", "1.2.2006",
	}
	// Unambiguous forms accepted under either order.
	commonLayouts = []string{
		"2006-01-02",
		"2006/01/02",
		"02 Jan 2006",
		"2 Jan 2006",
		"Jan 2, 2006",
	}
)

type Parser struct {
	layouts []string
}

func New(order Order) *Parser {
	ordered := dayFirstLayouts
	if order == MonthFirst {
		ordered = monthFirstLayouts
	}
	p := &Parser{}
	p.layouts = append(p.layouts, commonLayouts...)
	p.layouts = append(p.layouts, ordered...)
	return p
}

// Parse reads s as a calendar date. The second return is false when no
// layout matches; callers keep such values as explicit unparseable markers.
func (p *Parser) Parse(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	// Uploads exported from spreadsheet tools often carry a time component.
	if i := strings.IndexAny(s, " T"); i > 0 && strings.ContainsAny(s[i+1:], ":") {
		s = s[:i]
	}
	for _, layout := range p.layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), true
		}
	}
	return time.Time{}, false
}
