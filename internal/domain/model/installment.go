package model

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/ingatatech/loan-management-system-backend-sub003/internal/domain/valueobject"
)

// ---------------------------------------------------------------------------
// Installment – plain schedule record
// ---------------------------------------------------------------------------

// Installment is one due-date row of a loan's amortization ledger. It carries
// no behaviour: all mutations go through the stateless functions in
// internal/domain/service, which take an Installment and return an updated
// copy. (LoanID, Number) identifies a row; numbers are 1-based and contiguous.
type Installment struct {
	LoanID string
	Number int

	// Schedule fields. Immutable once the row is due, except by recalculation.
	DueDate      time.Time
	DuePrincipal decimal.Decimal
	DueInterest  decimal.Decimal
	DueTotal     decimal.Decimal

	// Payment fields, mutated only by the payment engine.
	PaidPrincipal        decimal.Decimal
	PaidInterest         decimal.Decimal
	PaidTotal            decimal.Decimal
	OutstandingPrincipal decimal.Decimal
	OutstandingInterest  decimal.Decimal
	PenaltyDue           decimal.Decimal
	PenaltyPaid          decimal.Decimal

	Status    valueobject.InstallmentStatus
	FullyPaid bool
	PaidAt    *time.Time

	// DaysOverdue is recomputed by each arrears sweep and resets to zero once
	// the row is paid. DelayedDays is frozen at the moment of actual payment.
	DaysOverdue int
	DelayedDays int

	// Duplicate-submission tracking. Every payment attempt, blocked or not,
	// bumps the counter and stamps the timestamp.
	LastAttemptAt *time.Time
	AttemptCount  int

	Version   int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// RemainingTotal is the amount still owed on this row: outstanding interest
// plus outstanding principal plus unpaid penalty.
func (i Installment) RemainingTotal() decimal.Decimal {
	return i.OutstandingInterest.Add(i.OutstandingPrincipal).Add(i.PenaltyOutstanding())
}

// PenaltyOutstanding is the accrued penalty not yet settled.
func (i Installment) PenaltyOutstanding() decimal.Decimal {
	return i.PenaltyDue.Sub(i.PenaltyPaid)
}

// IsDue reports whether the row's due date has passed as of the given time.
func (i Installment) IsDue(asOf time.Time) bool {
	return asOf.After(i.DueDate)
}
