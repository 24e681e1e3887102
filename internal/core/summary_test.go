package core

import (
	"testing"
	"time"
)

func txn(title, category string, cents int64, date Date) Transaction {
	return Transaction{
		ID:       "txn_" + title,
		Title:    title,
		Amount:   Money{Cents: cents},
		Category: category,
		Date:     date,
	}
}

func TestSummarize(t *testing.T) {
	txns := []Transaction{
		txn("rent", "Housing", 90000, NewDate(2026, 3, 1)),
		txn("groceries", "Food", 4250, NewDate(2026, 2, 28)),
		txn("dinner", "Food", 3600, NewDate(2026, 2, 25)),
		txn("bus", "Transport", 250, NewDate(2026, 2, 24)),
		txn("mystery", "", 1000, NewDate(2026, 2, 20)),
		txn("coffee", "Food", 450, NewDate(2026, 2, 18)),
	}

	s := Summarize(txns)

	if s.Total.Cents != 99550 {
		t.Errorf("Total = %d, want 99550", s.Total.Cents)
	}

	wantOrder := []string{"Housing", "Food", "Transport", "Other"}
	if len(s.ByCategory) != len(wantOrder) {
		t.Fatalf("ByCategory has %d entries, want %d: %v", len(s.ByCategory), len(wantOrder), s.ByCategory)
	}
	for i, name := range wantOrder {
		if s.ByCategory[i].Name != name {
			t.Errorf("ByCategory[%d] = %s, want %s", i, s.ByCategory[i].Name, name)
		}
	}

	if s.ByCategory[1].Amount.Cents != 8300 {
		t.Errorf("Food total = %d, want 8300", s.ByCategory[1].Amount.Cents)
	}

	if len(s.Recent) != RecentCount {
		t.Fatalf("Recent has %d entries, want %d", len(s.Recent), RecentCount)
	}
	if s.Recent[0].Title != "rent" {
		t.Errorf("Recent[0] = %s, want rent", s.Recent[0].Title)
	}
}

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(nil)
	if s.Total.Cents != 0 {
		t.Errorf("Total = %d, want 0", s.Total.Cents)
	}
	if len(s.ByCategory) != 0 {
		t.Errorf("ByCategory = %v, want empty", s.ByCategory)
	}
	if len(s.Recent) != 0 {
		t.Errorf("Recent = %v, want empty", s.Recent)
	}
}

func TestSummarizeShare(t *testing.T) {
	s := Summarize([]Transaction{
		txn("a", "Food", 7500, NewDate(2026, 1, 2)),
		txn("b", "Transport", 2500, NewDate(2026, 1, 1)),
	})

	if s.ByCategory[0].Share != 75 {
		t.Errorf("Food share = %v, want 75", s.ByCategory[0].Share)
	}
	if s.ByCategory[1].Share != 25 {
		t.Errorf("Transport share = %v, want 25", s.ByCategory[1].Share)
	}
}

func TestSortByDateDesc(t *testing.T) {
	base := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)

	a := txn("A", "Food", 100, NewDate(2026, 3, 1))
	a.CreatedAt = base
	b := txn("B", "Food", 200, NewDate(2026, 3, 1))
	b.CreatedAt = base.Add(time.Minute)
	c := txn("C", "Food", 300, NewDate(2026, 3, 5))
	c.CreatedAt = base.Add(-time.Hour)

	txns := []Transaction{a, b, c}
	SortByDateDesc(txns)

	// Newest date first; same date breaks ties on creation time, newest first
	want := []string{"C", "B", "A"}
	for i, title := range want {
		if txns[i].Title != title {
			t.Errorf("txns[%d] = %s, want %s", i, txns[i].Title, title)
		}
	}
}
