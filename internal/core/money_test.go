package core

import (
	"errors"
	"testing"
)

func TestParseDecimalToCents(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    int64
		wantErr bool
	}{
		{name: "integer amount", input: "12", want: 1200},
		{name: "dot separator", input: "12.34", want: 1234},
		{name: "comma separator", input: "12,34", want: 1234},
		{name: "single fractional digit", input: "5.5", want: 550},
		{name: "third decimal rounds up", input: "1.005", want: 101},
		{name: "third decimal rounds down", input: "1.004", want: 100},
		{name: "leading dot", input: ".50", want: 50},
		{name: "whitespace trimmed", input: "  3.00  ", want: 300},
		{name: "empty", input: "", wantErr: true},
		{name: "zero", input: "0", wantErr: true},
		{name: "zero with decimals", input: "0.00", wantErr: true},
		{name: "negative", input: "-5", wantErr: true},
		{name: "explicit plus", input: "+5", wantErr: true},
		{name: "letters", input: "abc", wantErr: true},
		{name: "two separators", input: "1.2.3", wantErr: true},
		{name: "mixed digits and letters", input: "12a.50", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDecimalToCents(tt.input)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidAmount) {
					t.Errorf("ParseDecimalToCents(%q) error = %v, want ErrInvalidAmount", tt.input, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseDecimalToCents(%q) unexpected error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseDecimalToCents(%q) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}

func TestMoneyFromFloat(t *testing.T) {
	tests := []struct {
		input float64
		want  int64
	}{
		{12.34, 1234},
		{0.1, 10},
		{19.99, 1999},
		{0.005, 1},
		{0, 0},
	}

	for _, tt := range tests {
		if got := MoneyFromFloat(tt.input); got.Cents != tt.want {
			t.Errorf("MoneyFromFloat(%v) = %d cents, want %d", tt.input, got.Cents, tt.want)
		}
	}
}

func TestMoneyFloat(t *testing.T) {
	m := Money{Cents: 1234}
	if got := m.Float(); got != 12.34 {
		t.Errorf("Float() = %v, want 12.34", got)
	}
}
