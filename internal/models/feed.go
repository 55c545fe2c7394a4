package models

import "math"

// DefaultPerPage is the page size used when a caller does not supply one.
const DefaultPerPage = 30

// Page selects one page of an ordered result set. Number is 1-based.
type Page struct {
	Number  int
	PerPage int
}

// Normalize fills in defaults for zero or negative values and caps Number so
// that Offset cannot overflow. A capped page still lies past any real result set.
func (p Page) Normalize() Page {
	if p.Number < 1 {
		p.Number = 1
	}
	if p.PerPage < 1 {
		p.PerPage = DefaultPerPage
	}
	if maxNumber := math.MaxInt / p.PerPage; p.Number > maxNumber {
		p.Number = maxNumber
	}
	return p
}

// Offset returns the number of rows to skip.
func (p Page) Offset() int {
	p = p.Normalize()
	return (p.Number - 1) * p.PerPage
}

// FeedQuery describes a user's feed: posts owned by the user or anyone the user
// follows, newest first.
type FeedQuery struct {
	UserID string
	Page   Page
}
