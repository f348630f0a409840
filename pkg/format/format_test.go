package format

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestCurrency(t *testing.T) {
	tests := []struct {
		amount      string
		want        string
		wantNumeric string
	}{
		{"0", "₹0.00", "0.00"},
		{"999.5", "₹999.50", "999.50"},
		{"1234.567", "₹1,234.57", "1,234.57"},
		{"700000", "₹700,000.00", "700,000.00"},
		{"-1234.5", "-₹1,234.50", "-1,234.50"},
		{"-0.001", "₹0.00", "0.00"},
		{"1000000000", "₹1,000,000,000.00", "1,000,000,000.00"},
	}

	for _, tt := range tests {
		t.Run(tt.amount, func(t *testing.T) {
			amount := decimal.RequireFromString(tt.amount)
			if got := Currency(amount); got != tt.want {
				t.Errorf("Currency(%s) = %q, want %q", tt.amount, got, tt.want)
			}
			if got := NumericCurrency(amount); got != tt.wantNumeric {
				t.Errorf("NumericCurrency(%s) = %q, want %q", tt.amount, got, tt.wantNumeric)
			}
		})
	}
}

func TestPercentage(t *testing.T) {
	tests := []struct {
		rate float64
		want string
	}{
		{0.15, "15.00%"},
		{0, "0.00%"},
		{-0.0525, "-5.25%"},
		{1.23456, "123.46%"},
	}
	for _, tt := range tests {
		if got := Percentage(tt.rate); got != tt.want {
			t.Errorf("Percentage(%v) = %q, want %q", tt.rate, got, tt.want)
		}
	}
}

func TestFrequencyLabel(t *testing.T) {
	tests := map[int]string{
		1:  "Yearly",
		2:  "Half-Yearly",
		3:  "Quarterly (4 months)",
		4:  "Quarterly",
		6:  "Bi-Monthly",
		12: "Monthly",
		5:  "5 times/year",
	}
	for freq, want := range tests {
		if got := FrequencyLabel(freq); got != want {
			t.Errorf("FrequencyLabel(%d) = %q, want %q", freq, got, want)
		}
	}
}
