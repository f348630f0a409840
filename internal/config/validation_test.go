package config

import (
	"strings"
	"testing"
)

func TestValidateConfiguration(t *testing.T) {
	risky := officeChit()
	risky.Sweep = &Sweep{MinBid: d(50000), MaxBid: d(680000)}
	risky.Comparison = &Comparison{WinInstallment: 2}

	inactive := officeChit()
	inactive.Name = "Dormant"
	inactive.Active = false
	inactive.Sweep = &Sweep{MinBid: d(50000), MaxBid: d(680000)}

	clean := officeChit()
	clean.Name = "Clean"
	clean.Sweep = &Sweep{MinBid: d(50000), MaxBid: d(300000)}
	clean.Comparison = &Comparison{}

	conf := Configuration{Chits: []Chit{risky, inactive, clean}}
	warnings := conf.ValidateConfiguration()

	if len(warnings) != 2 {
		t.Fatalf("got %d warnings %v, want 2", len(warnings), warnings)
	}
	if !strings.Contains(warnings[0], "leaves no prize") {
		t.Errorf("warnings[0] = %q, want a sweep warning", warnings[0])
	}
	if !strings.Contains(warnings[1], "ignores 3 of them") {
		t.Errorf("warnings[1] = %q, want a history warning", warnings[1])
	}
}

func TestWinnerInstallmentForWarnings(t *testing.T) {
	c := officeChit()
	if got := c.winnerInstallment(); !got.Equal(d(50000)) {
		t.Errorf("winnerInstallment() = %s, want 50000", got)
	}
	explicit := d(60000)
	c.WinnerInstallmentAmount = &explicit
	if got := c.winnerInstallment(); !got.Equal(explicit) {
		t.Errorf("winnerInstallment() = %s, want 60000", got)
	}
	c.TotalInstallments = 0
	c.WinnerInstallmentAmount = nil
	if got := c.winnerInstallment(); !got.IsZero() {
		t.Errorf("winnerInstallment() with no installments = %s, want 0", got)
	}
}
