package domain

import "math"

// MaxPageLimit caps the page size of every listing
const MaxPageLimit = 100

// Page is a 1-based page request
type Page struct {
	Number int `validate:"gte=1"`
	Limit  int `validate:"gte=1,lte=100"`
}

// Offset returns the number of rows to skip. It saturates at math.MaxInt
// rather than overflowing, so a page far past the end yields no rows.
func (p Page) Offset() int {
	if p.Number <= 1 || p.Limit <= 0 {
		return 0
	}
	if p.Number-1 > math.MaxInt/p.Limit {
		return math.MaxInt
	}
	return (p.Number - 1) * p.Limit
}
