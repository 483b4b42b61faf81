package service

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ingatatech/loan-management-system-backend-sub003/internal/domain/model"
	"github.com/ingatatech/loan-management-system-backend-sub003/internal/domain/valueobject"
)

// ---------------------------------------------------------------------------
// Payment application
// ---------------------------------------------------------------------------

var ErrNonPositiveAmount = errors.New("payment amount must be positive")

// Block reasons returned on guarded attempts.
const (
	BlockReasonAlreadyPaid = "installment already paid"
	BlockReasonWrittenOff  = "installment written off"
	BlockReasonCooldown    = "duplicate payment attempt within cool-down window"
)

// PaymentCommand is one payment directed at one installment.
type PaymentCommand struct {
	Amount   decimal.Decimal
	PaidAt   time.Time
	Cooldown time.Duration
}

// PaymentResult reports how a payment was allocated. A blocked attempt is a
// successful call with WasBlocked set; it is not an error.
type PaymentResult struct {
	PrincipalPaid decimal.Decimal
	InterestPaid  decimal.Decimal
	PenaltyPaid   decimal.Decimal
	ExcessAmount  decimal.Decimal
	WasBlocked    bool
	BlockReason   string
}

// CanAcceptPayment is the idempotency guard: settled rows and rapid duplicate
// submissions are rejected before any money moves.
func CanAcceptPayment(inst model.Installment, asOf time.Time, cooldown time.Duration) (bool, string) {
	switch {
	case inst.FullyPaid || inst.Status.Equal(valueobject.InstallmentStatusPaid):
		return false, BlockReasonAlreadyPaid
	case inst.Status.Equal(valueobject.InstallmentStatusWrittenOff):
		return false, BlockReasonWrittenOff
	case cooldown > 0 && inst.LastAttemptAt != nil && asOf.Sub(*inst.LastAttemptAt) < cooldown:
		return false, BlockReasonCooldown
	}
	return true, ""
}

// ApplyPayment allocates a payment against one installment under the fixed
// waterfall: penalty, then interest, then principal. Anything beyond the
// row's remaining total comes back as ExcessAmount for the caller to handle.
//
// Every attempt, blocked or not, bumps AttemptCount and stamps LastAttemptAt.
// The returned installment is an updated copy; the input is not mutated.
func ApplyPayment(inst model.Installment, cmd PaymentCommand) (model.Installment, PaymentResult, error) {
	if cmd.Amount.LessThanOrEqual(decimal.Zero) {
		return inst, PaymentResult{}, ErrNonPositiveAmount
	}

	at := cmd.PaidAt
	ok, reason := CanAcceptPayment(inst, at, cmd.Cooldown)

	inst.AttemptCount++
	attemptAt := at
	inst.LastAttemptAt = &attemptAt

	if !ok {
		return inst, PaymentResult{
			PrincipalPaid: decimal.Zero,
			InterestPaid:  decimal.Zero,
			PenaltyPaid:   decimal.Zero,
			ExcessAmount:  decimal.Zero,
			WasBlocked:    true,
			BlockReason:   reason,
		}, nil
	}

	remaining := cmd.Amount

	penaltyPaid := decimal.Min(remaining, inst.PenaltyOutstanding()).Round(2)
	remaining = remaining.Sub(penaltyPaid)

	interestPaid := decimal.Min(remaining, inst.OutstandingInterest).Round(2)
	remaining = remaining.Sub(interestPaid)

	principalPaid := decimal.Min(remaining, inst.OutstandingPrincipal).Round(2)
	excess := remaining.Sub(principalPaid).Round(2)

	inst.PenaltyPaid = inst.PenaltyPaid.Add(penaltyPaid).Round(2)
	inst.PaidInterest = inst.PaidInterest.Add(interestPaid).Round(2)
	inst.PaidPrincipal = inst.PaidPrincipal.Add(principalPaid).Round(2)
	inst.PaidTotal = inst.PaidPrincipal.Add(inst.PaidInterest).Round(2)
	inst.OutstandingInterest = inst.OutstandingInterest.Sub(interestPaid).Round(2)
	inst.OutstandingPrincipal = inst.OutstandingPrincipal.Sub(principalPaid).Round(2)

	if inst.OutstandingPrincipal.IsZero() && inst.OutstandingInterest.IsZero() && inst.PenaltyOutstanding().IsZero() {
		paidAt := at
		inst.FullyPaid = true
		inst.Status = valueobject.InstallmentStatusPaid
		inst.PaidAt = &paidAt
		// DelayedDays freezes now; DaysOverdue resets for good.
		inst.DelayedDays = maxInt(0, dateDiffDays(inst.DueDate, at))
		inst.DaysOverdue = 0
	} else {
		inst.Status = DeriveStatus(inst.PaidTotal, inst.DueTotal, inst.DueDate, at)
	}
	inst.UpdatedAt = at

	return inst, PaymentResult{
		PrincipalPaid: principalPaid,
		InterestPaid:  interestPaid,
		PenaltyPaid:   penaltyPaid,
		ExcessAmount:  excess,
	}, nil
}

// DeriveStatus is the single source of truth for an installment's status: a
// deterministic function of (paid total, due total, due date, now). It is
// never set independently of these inputs.
func DeriveStatus(paidTotal, dueTotal decimal.Decimal, dueDate, asOf time.Time) valueobject.InstallmentStatus {
	switch {
	case paidTotal.GreaterThanOrEqual(dueTotal) && dueTotal.IsPositive():
		return valueobject.InstallmentStatusPaid
	case paidTotal.IsPositive():
		return valueobject.InstallmentStatusPartial
	case asOf.After(dueDate):
		return valueobject.InstallmentStatusOverdue
	default:
		return valueobject.InstallmentStatusPending
	}
}

// dateDiffDays is the whole number of calendar days from a to b, using the
// dates only. Negative when b precedes a.
func dateDiffDays(a, b time.Time) int {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	start := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)
	end := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)
	return int(end.Sub(start) / (24 * time.Hour))
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
