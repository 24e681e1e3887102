package main

import (
	"strings"
	"testing"
	"unicode/utf8"

	"expensio/internal/core"
)

func TestFormatCategoryRow(t *testing.T) {
	txns := []core.Transaction{
		{Title: "Rent", Amount: core.Money{Cents: 7500}, Category: "Housing"},
		{Title: "Lunch", Amount: core.Money{Cents: 2500}, Category: "Food"},
	}
	summary := core.Summarize(txns)

	housing := summary.ByCategory[0]
	if housing.Share != 75 {
		t.Fatalf("Share = %v, want 75", housing.Share)
	}

	row := formatCategoryRow(housing)
	if !strings.Contains(row, " 75.0%") {
		t.Errorf("formatCategoryRow() = %q, want a 75.0%% share", row)
	}
	if strings.Contains(row, "7500.0%") {
		t.Errorf("formatCategoryRow() = %q, share rendered as if it were a ratio", row)
	}
	if !strings.Contains(row, "$75.00") {
		t.Errorf("formatCategoryRow() = %q, want $75.00 amount", row)
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		name string
		in   string
		n    int
		want string
	}{
		{name: "short string untouched", in: "Groceries", n: 30, want: "Groceries"},
		{name: "exact length untouched", in: "abcde", n: 5, want: "abcde"},
		{name: "long string gets ellipsis", in: "abcdefgh", n: 5, want: "abcd…"},
		{name: "multi-byte runes stay intact", in: "Caffè più pasticcini al bar", n: 10, want: "Caffè più…"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := truncate(tt.in, tt.n)
			if got != tt.want {
				t.Errorf("truncate(%q, %d) = %q, want %q", tt.in, tt.n, got, tt.want)
			}
			if !utf8.ValidString(got) {
				t.Errorf("truncate(%q, %d) produced invalid UTF-8 %q", tt.in, tt.n, got)
			}
		})
	}
}

func TestFormatAmount(t *testing.T) {
	tests := []struct {
		cents int64
		want  string
	}{
		{1234, "$12.34"},
		{5, "$0.05"},
		{0, "$0.00"},
		{-1234, "-$12.34"},
	}

	for _, tt := range tests {
		if got := formatAmount(core.Money{Cents: tt.cents}); got != tt.want {
			t.Errorf("formatAmount(%d) = %q, want %q", tt.cents, got, tt.want)
		}
	}
}
