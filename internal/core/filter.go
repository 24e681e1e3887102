package core

import "strings"

// PageSize is the explorer's load-more increment.
const PageSize = 20

// Filter narrows a transaction list. Zero values leave a dimension open:
// empty Search matches everything, empty Category (or "All") matches every
// category, zero From/To leave the date range unbounded on that side.
type Filter struct {
	Search   string
	Category string
	From     Date
	To       Date
}

// Match reports whether the transaction passes every filter dimension.
// The text search is a case-insensitive substring match over title and notes;
// the date range is inclusive on both ends.
func (f Filter) Match(t Transaction) bool {
	if f.Search != "" {
		needle := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(t.Title), needle) &&
			!strings.Contains(strings.ToLower(t.Notes), needle) {
			return false
		}
	}
	if f.Category != "" && f.Category != "All" && t.Category != f.Category {
		return false
	}
	if !f.From.IsZero() && t.Date.Before(f.From.Time) {
		return false
	}
	if !f.To.IsZero() && t.Date.After(f.To.Time) {
		return false
	}
	return true
}

// Apply returns the transactions matching the filter, preserving order.
func (f Filter) Apply(txns []Transaction) []Transaction {
	out := make([]Transaction, 0, len(txns))
	for _, t := range txns {
		if f.Match(t) {
			out = append(out, t)
		}
	}
	return out
}

// Page slices the first n entries of a filtered list and reports whether
// more remain, the load-more contract of the explorer view.
func Page(txns []Transaction, n int) (page []Transaction, hasMore bool) {
	if n < 0 {
		n = 0
	}
	if n > len(txns) {
		n = len(txns)
	}
	return txns[:n], n < len(txns)
}
