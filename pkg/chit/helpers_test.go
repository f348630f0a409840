package chit

import (
	"testing"

	"github.com/shopspring/decimal"
)

func d(v int64) decimal.Decimal {
	return decimal.NewFromInt(v)
}

func amounts(vs ...int64) []decimal.Decimal {
	out := make([]decimal.Decimal, len(vs))
	for i, v := range vs {
		out[i] = d(v)
	}
	return out
}

// referenceParams is the 14-installment half-yearly chit won at the fifth
// installment.
func referenceParams() ConfigParams {
	return ConfigParams{
		TotalInstallments:        14,
		CurrentInstallmentNumber: 5,
		FullChitValue:            d(700000),
		FrequencyPerYear:         2,
		PreviousInstallments:     amounts(42000, 40000, 40000, 43000),
		BidAmount:                d(100000),
	}
}

func mustConfig(t *testing.T, p ConfigParams) Config {
	t.Helper()
	cfg, err := NewConfig(p)
	if err != nil {
		t.Fatalf("NewConfig returned error: %v", err)
	}
	return cfg
}
