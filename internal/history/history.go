// Package history holds the installment history a member keeps for a chit
// and derives the inputs the analysis engine needs from it.
package history

import (
	"fmt"
	"sort"

	"github.com/jagadeesanmuthuvel/chit-fund-analyzer/pkg/constants"
	"github.com/jagadeesanmuthuvel/chit-fund-analyzer/pkg/mathutil"
	"github.com/jagadeesanmuthuvel/chit-fund-analyzer/pkg/validation"
	"github.com/shopspring/decimal"
)

// Record is one paid installment of a chit. Money fields accept numbers or
// numeric strings when decoded from config.
type Record struct {
	ChitName          string          `json:"chit_name" mapstructure:"chitName" validate:"required"`
	Month             int             `json:"month" mapstructure:"month" validate:"gte=1"`
	Date              string          `json:"date" mapstructure:"date" validate:"omitempty,datetime=2006-01-02"`
	InstallmentAmount decimal.Decimal `json:"installment_amount" mapstructure:"installmentAmount" validate:"gt=0"`
	AuctionAmount     decimal.Decimal `json:"auction_amount" mapstructure:"auctionAmount" validate:"gte=0"`
	Dividend          decimal.Decimal `json:"dividend" mapstructure:"dividend" validate:"gte=0"`
	NetPayment        decimal.Decimal `json:"net_payment" mapstructure:"netPayment" validate:"gte=0"`
	MemberName        string          `json:"member_name" mapstructure:"memberName"`
	Notes             string          `json:"notes" mapstructure:"notes"`
}

var validate = validation.NewStructValidator()

// Validate checks the record's fields and that a recorded net payment
// reconciles with installment minus dividend.
func (r Record) Validate() error {
	if err := validate.Struct(r); err != nil {
		return fmt.Errorf("invalid history record for month %d: %w", r.Month, err)
	}

	if r.NetPayment.IsPositive() {
		want := r.InstallmentAmount.Sub(r.Dividend)
		if !mathutil.WithinTolerance(r.NetPayment, want, decimal.NewFromFloat(constants.NetPaymentTolerance)) {
			return fmt.Errorf("history record for month %d has net payment %s, expected installment %s minus dividend %s = %s",
				r.Month, r.NetPayment, r.InstallmentAmount, r.Dividend, want)
		}
	}
	return nil
}

// Terms are the chit figures needed to derive what a non-winner owes.
type Terms struct {
	FullChitValue     decimal.Decimal
	TotalInstallments int
}

// PaidAmount is what the member paid for the record's month: the net payment
// when recorded, else the non-winner share implied by the auction amount,
// else the full installment.
func (r Record) PaidAmount(terms Terms) decimal.Decimal {
	if r.NetPayment.IsPositive() {
		return r.NetPayment
	}
	if r.AuctionAmount.IsPositive() && terms.TotalInstallments > 0 {
		if share := NonWinnerInstallment(terms.FullChitValue, r.AuctionAmount, terms.TotalInstallments, r.Month); share.IsPositive() {
			return share
		}
	}
	return r.InstallmentAmount
}

// ValidateRecords validates every record and rejects repeated months or
// records belonging to more than one chit.
func ValidateRecords(records []Record) error {
	seen := make(map[int]bool, len(records))
	for i, r := range records {
		if err := r.Validate(); err != nil {
			return err
		}
		if i > 0 && r.ChitName != records[0].ChitName {
			return fmt.Errorf("history mixes chits %q and %q", records[0].ChitName, r.ChitName)
		}
		if seen[r.Month] {
			return fmt.Errorf("history has more than one record for month %d", r.Month)
		}
		seen[r.Month] = true
	}
	return nil
}

// PreviousInstallments returns the amounts paid for months 1 through
// currentInstallment-1 in month order. Every one of those months must be
// recorded; later months are ignored.
func PreviousInstallments(records []Record, currentInstallment int, terms Terms) ([]decimal.Decimal, error) {
	if currentInstallment < 1 {
		return nil, fmt.Errorf("current installment must be at least 1, got %d", currentInstallment)
	}
	if err := ValidateRecords(records); err != nil {
		return nil, err
	}

	sorted := append([]Record(nil), records...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Month < sorted[j].Month })

	amounts := make([]decimal.Decimal, 0, currentInstallment-1)
	for _, r := range sorted {
		if r.Month >= currentInstallment {
			break
		}
		if want := len(amounts) + 1; r.Month != want {
			return nil, fmt.Errorf("history is missing month %d", want)
		}
		amounts = append(amounts, r.PaidAmount(terms))
	}
	if len(amounts) != currentInstallment-1 {
		return nil, fmt.Errorf("history is missing month %d", len(amounts)+1)
	}
	return amounts, nil
}

// NonWinnerInstallment is what each member who has not yet won pays in an
// auction month: the pool less the winning discount, shared over the
// installments still to run.
func NonWinnerInstallment(fullChitValue, discount decimal.Decimal, totalInstallments, currentInstallment int) decimal.Decimal {
	remaining := totalInstallments - currentInstallment + 1
	if remaining <= 0 {
		return decimal.Zero
	}
	return fullChitValue.Sub(discount).Div(decimal.NewFromInt(int64(remaining)))
}
