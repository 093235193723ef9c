package credit

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/shopspring/decimal"
)

// ErrInvalidTerms indicates loan terms outside the supported domain.
var ErrInvalidTerms = errors.New("credit: invalid loan terms")

// GenerateSchedule computes a fixed-annuity amortization schedule.
//
// The monthly payment comes from the standard annuity formula
// P·r·(1+r)^n / ((1+r)^n - 1), or a flat P/n split when the rate is zero.
// Each installment's interest share is the remaining capital times the
// monthly rate, rounded to 2 decimals; the capital share is the payment
// minus interest. The final installment absorbs the rounding residue so the
// capital shares sum exactly to the principal.
func GenerateSchedule(principal, annualRatePct decimal.Decimal, termMonths int, start time.Time) (SchedulePlan, error) {
	if principal.LessThanOrEqual(decimal.Zero) {
		return SchedulePlan{}, fmt.Errorf("%w: principal must be positive", ErrInvalidTerms)
	}
	if annualRatePct.IsNegative() {
		return SchedulePlan{}, fmt.Errorf("%w: rate must not be negative", ErrInvalidTerms)
	}
	if termMonths < 1 {
		return SchedulePlan{}, fmt.Errorf("%w: term must be at least one month", ErrInvalidTerms)
	}

	months := decimal.NewFromInt(int64(termMonths))
	monthlyRate := annualRatePct.Div(decimal.NewFromInt(1200))

	var payment decimal.Decimal
	if monthlyRate.IsZero() {
		payment = principal.Div(months).Round(2)
	} else {
		// (1+r)^n needs a float pow; the money math stays in decimals.
		rate, _ := monthlyRate.Float64()
		factor := decimal.NewFromFloat(math.Pow(1+rate, float64(termMonths)))
		payment = principal.Mul(monthlyRate).Mul(factor).
			Div(factor.Sub(decimal.NewFromInt(1))).Round(2)
	}

	plan := SchedulePlan{
		Mensualite: payment,
		Echeances:  make([]Echeance, 0, termMonths),
	}

	remaining := principal
	for i := 1; i <= termMonths; i++ {
		interest := remaining.Mul(monthlyRate).Round(2)
		capital := payment.Sub(interest)
		total := payment
		if i == termMonths {
			capital = remaining
			total = capital.Add(interest)
		}
		remaining = remaining.Sub(capital)

		plan.Echeances = append(plan.Echeances, Echeance{
			Rang:           i,
			DateEcheance:   start.AddDate(0, i, 0),
			MontantTotal:   total,
			PartInterets:   interest,
			PartCapital:    capital,
			CapitalRestant: remaining,
			MontantPaye:    decimal.Zero,
			Statut:         EcheanceAPayer,
		})
		plan.TotalInterets = plan.TotalInterets.Add(interest)
	}
	return plan, nil
}
