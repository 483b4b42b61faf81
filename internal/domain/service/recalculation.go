package service

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ingatatech/loan-management-system-backend-sub003/internal/domain/model"
	"github.com/ingatatech/loan-management-system-backend-sub003/internal/domain/valueobject"
)

// ---------------------------------------------------------------------------
// Schedule recalculation
// ---------------------------------------------------------------------------

var (
	ErrEmptyTail           = errors.New("no unpaid future installments to recalculate")
	ErrExcessiveReduction  = errors.New("principal reduction exceeds remaining balance")
	ErrCannotRetireBalance = errors.New("remaining balance cannot be retired at the original installment amount")
)

// RecalculationInput drives one recalculation. PrincipalReduction is the lump
// principal retired by the triggering event (zero for a pure restructuring).
type RecalculationInput struct {
	Loan               model.Loan
	Ledger             []model.Installment
	Strategy           valueobject.RecalculationStrategy
	PrincipalReduction decimal.Decimal
	AsOf               time.Time
}

// Recalculate rebuilds the unpaid, not-yet-due tail of a ledger and returns
// the replacement rows. Paid rows, and any row that has received a payment or
// is already due, are never touched; the caller persists the new tail over
// the old one. On any error the ledger is left as it was.
//
// Both strategies conserve principal: the new tail's due principal sums
// exactly to the old tail's unpaid principal minus the reduction.
func Recalculate(in RecalculationInput) ([]model.Installment, error) {
	if in.PrincipalReduction.IsNegative() {
		return nil, ErrNonPositiveAmount
	}

	tail := recalculableTail(in.Ledger, in.AsOf)
	if len(tail) == 0 {
		return nil, ErrEmptyTail
	}

	oldPrincipal := decimal.Zero
	oldInterest := decimal.Zero
	for _, inst := range tail {
		oldPrincipal = oldPrincipal.Add(inst.DuePrincipal)
		oldInterest = oldInterest.Add(inst.DueInterest)
	}

	remainingPrincipal := oldPrincipal.Sub(in.PrincipalReduction).Round(2)
	if remainingPrincipal.LessThanOrEqual(decimal.Zero) {
		return nil, ErrExcessiveReduction
	}

	// The flat method forecasts interest up front, so the remaining forecast
	// scales with the surviving principal. Reducing balance recomputes
	// interest from the balance instead.
	forecastInterest := oldInterest
	if oldPrincipal.IsPositive() {
		forecastInterest = oldInterest.Mul(remainingPrincipal).Div(oldPrincipal).Round(2)
	}

	if in.Strategy.Equal(valueobject.StrategyReduceTerm) {
		return reduceTerm(in, tail, remainingPrincipal, forecastInterest)
	}
	return reduceInstallment(in, tail, remainingPrincipal, forecastInterest)
}

// recalculableTail picks the rows eligible for replacement: not yet due as of
// the trigger, and with no payment recorded against them.
func recalculableTail(ledger []model.Installment, asOf time.Time) []model.Installment {
	var tail []model.Installment
	for _, inst := range ledger {
		if inst.Status.IsSettled() || inst.IsDue(asOf) {
			continue
		}
		if inst.PaidTotal.IsPositive() || inst.PenaltyPaid.IsPositive() {
			continue
		}
		tail = append(tail, inst)
	}
	return tail
}

// reduceInstallment keeps the remaining period count and spreads the
// remaining principal and forecast interest evenly across it.
func reduceInstallment(in RecalculationInput, tail []model.Installment, remainingPrincipal, forecastInterest decimal.Decimal) ([]model.Installment, error) {
	count := len(tail)

	if in.Loan.Method.Equal(valueobject.InterestMethodReducingBalance) {
		return annuityTail(in, tail, remainingPrincipal, count)
	}

	periods := decimal.NewFromInt(int64(count))
	perPrincipal := remainingPrincipal.Div(periods).Round(2)
	perInterest := forecastInterest.Div(periods).Round(2)
	prior := decimal.NewFromInt(int64(count - 1))

	out := make([]model.Installment, count)
	for i, old := range tail {
		p, iv := perPrincipal, perInterest
		if i == count-1 {
			p = remainingPrincipal.Sub(perPrincipal.Mul(prior))
			iv = forecastInterest.Sub(perInterest.Mul(prior))
		}
		out[i] = rebuiltRow(old, p, iv, in.AsOf)
	}
	return out, nil
}

// reduceTerm keeps the original per-period amount and shortens the tail until
// the remaining principal is retired.
func reduceTerm(in RecalculationInput, tail []model.Installment, remainingPrincipal, forecastInterest decimal.Decimal) ([]model.Installment, error) {
	if in.Loan.Method.Equal(valueobject.InterestMethodReducingBalance) {
		return annuityTermTail(in, tail, remainingPrincipal)
	}

	perPrincipal := tail[0].DuePrincipal
	perInterest := tail[0].DueInterest
	if perPrincipal.LessThanOrEqual(decimal.Zero) {
		return nil, ErrCannotRetireBalance
	}

	count := int(remainingPrincipal.Div(perPrincipal).Ceil().IntPart())
	if count < 1 {
		count = 1
	}
	if count > len(tail) {
		return nil, ErrCannotRetireBalance
	}

	prior := decimal.NewFromInt(int64(count - 1))
	lastPrincipal := remainingPrincipal.Sub(perPrincipal.Mul(prior))
	lastInterest := decimal.Max(decimal.Zero, forecastInterest.Sub(perInterest.Mul(prior)))

	out := make([]model.Installment, count)
	for i := 0; i < count; i++ {
		p, iv := perPrincipal, perInterest
		if i == count-1 {
			p, iv = lastPrincipal, lastInterest
		}
		out[i] = rebuiltRow(tail[i], p, iv, in.AsOf)
	}
	return out, nil
}

// annuityTail regenerates a reducing-balance tail over a fixed period count.
func annuityTail(in RecalculationInput, tail []model.Installment, remainingPrincipal decimal.Decimal, count int) ([]model.Installment, error) {
	periodicRate := in.Loan.PeriodicRate()
	payment := annuityPayment(remainingPrincipal, periodicRate, count)

	out := make([]model.Installment, count)
	balance := remainingPrincipal
	for i := 0; i < count; i++ {
		interest := balance.Mul(periodicRate).Round(2)
		principalPart := payment.Sub(interest)
		if i == count-1 {
			principalPart = balance
		}
		out[i] = rebuiltRow(tail[i], principalPart, interest, in.AsOf)
		balance = balance.Sub(principalPart)
		if balance.IsNegative() {
			balance = decimal.Zero
		}
	}
	return out, nil
}

// annuityTermTail keeps the original level payment and simulates the declining
// balance forward until it is retired, failing if the payment cannot cover
// interest or the balance outlives the available periods.
func annuityTermTail(in RecalculationInput, tail []model.Installment, remainingPrincipal decimal.Decimal) ([]model.Installment, error) {
	periodicRate := in.Loan.PeriodicRate()
	payment := tail[0].DueTotal

	out := make([]model.Installment, 0, len(tail))
	balance := remainingPrincipal
	for i := 0; balance.IsPositive(); i++ {
		if i >= len(tail) {
			return nil, ErrCannotRetireBalance
		}
		interest := balance.Mul(periodicRate).Round(2)
		if payment.LessThanOrEqual(interest) {
			return nil, ErrCannotRetireBalance
		}
		principalPart := payment.Sub(interest)
		if principalPart.GreaterThanOrEqual(balance) {
			principalPart = balance
		}
		out = append(out, rebuiltRow(tail[i], principalPart, interest, in.AsOf))
		balance = balance.Sub(principalPart)
	}
	return out, nil
}

// rebuiltRow carries identity and due date over from the superseded row and
// resets all payment state.
func rebuiltRow(old model.Installment, duePrincipal, dueInterest decimal.Decimal, asOf time.Time) model.Installment {
	return model.Installment{
		LoanID:               old.LoanID,
		Number:               old.Number,
		DueDate:              old.DueDate,
		DuePrincipal:         duePrincipal,
		DueInterest:          dueInterest,
		DueTotal:             duePrincipal.Add(dueInterest),
		PaidPrincipal:        decimal.Zero,
		PaidInterest:         decimal.Zero,
		PaidTotal:            decimal.Zero,
		OutstandingPrincipal: duePrincipal,
		OutstandingInterest:  dueInterest,
		PenaltyDue:           decimal.Zero,
		PenaltyPaid:          decimal.Zero,
		Status:               valueobject.InstallmentStatusPending,
		Version:              1,
		CreatedAt:            old.CreatedAt,
		UpdatedAt:            asOf,
	}
}
