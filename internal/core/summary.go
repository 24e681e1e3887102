package core

import "sort"

// CategorySum is one category's slice of the total.
type CategorySum struct {
	Name   string
	Amount Money
	Share  float64 // percent of the total, 0-100
}

// Summary holds the derived dashboard figures for a transaction list.
type Summary struct {
	Total      Money
	ByCategory []CategorySum
	Recent     []Transaction
}

// RecentCount is how many transactions the dashboard preview shows.
const RecentCount = 5

// Summarize derives the dashboard view from a transaction list. The input is
// expected in date-descending order (as returned by list-all); Recent is its
// first RecentCount entries. Transactions without a category count as "Other".
func Summarize(txns []Transaction) Summary {
	var s Summary
	byCat := make(map[string]int64)
	for _, t := range txns {
		s.Total.Cents += t.Amount.Cents
		cat := t.Category
		if cat == "" {
			cat = "Other"
		}
		byCat[cat] += t.Amount.Cents
	}
	for name, cents := range byCat {
		cs := CategorySum{Name: name, Amount: Money{Cents: cents}}
		if s.Total.Cents > 0 {
			cs.Share = float64(cents) / float64(s.Total.Cents) * 100
		}
		s.ByCategory = append(s.ByCategory, cs)
	}
	sort.Slice(s.ByCategory, func(i, j int) bool {
		if s.ByCategory[i].Amount.Cents != s.ByCategory[j].Amount.Cents {
			return s.ByCategory[i].Amount.Cents > s.ByCategory[j].Amount.Cents
		}
		return s.ByCategory[i].Name < s.ByCategory[j].Name
	})
	n := RecentCount
	if len(txns) < n {
		n = len(txns)
	}
	s.Recent = append(s.Recent, txns[:n]...)
	return s
}

// SortByDateDesc orders transactions by date descending, breaking ties by
// creation time descending. This is the canonical list order everywhere.
func SortByDateDesc(txns []Transaction) {
	sort.SliceStable(txns, func(i, j int) bool {
		if !txns[i].Date.Equal(txns[j].Date.Time) {
			return txns[i].Date.After(txns[j].Date.Time)
		}
		return txns[i].CreatedAt.After(txns[j].CreatedAt)
	})
}
