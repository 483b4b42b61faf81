package event

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/ingatatech/loan-management-system-backend-sub003/pkg/events"
)

// DomainEvent is an alias for the shared pkg/events.DomainEvent interface.
type DomainEvent = events.DomainEvent

// ---------------------------------------------------------------------------
// Schedule events
// ---------------------------------------------------------------------------

// ScheduleGenerated is raised when a loan's full installment ledger is created.
type ScheduleGenerated struct {
	events.BaseEvent
	Principal        decimal.Decimal `json:"principal"`
	InterestMethod   string          `json:"interest_method"`
	InstallmentCount int             `json:"installment_count"`
	FirstDueDate     time.Time       `json:"first_due_date"`
	LastDueDate      time.Time       `json:"last_due_date"`
}

func NewScheduleGenerated(
	loanID, organizationID string,
	principal decimal.Decimal, method string,
	count int, firstDue, lastDue time.Time,
) ScheduleGenerated {
	return ScheduleGenerated{
		BaseEvent:        events.NewBaseEvent("servicing.schedule.generated", loanID, "Loan", organizationID),
		Principal:        principal,
		InterestMethod:   method,
		InstallmentCount: count,
		FirstDueDate:     firstDue,
		LastDueDate:      lastDue,
	}
}

// ScheduleRecalculated is raised when the unpaid tail of a ledger is replaced.
type ScheduleRecalculated struct {
	events.BaseEvent
	Strategy           string          `json:"strategy"`
	ReplacedCount      int             `json:"replaced_count"`
	NewTailCount       int             `json:"new_tail_count"`
	RemainingPrincipal decimal.Decimal `json:"remaining_principal"`
}

func NewScheduleRecalculated(
	loanID, organizationID, strategy string,
	replaced, newCount int, remaining decimal.Decimal,
) ScheduleRecalculated {
	return ScheduleRecalculated{
		BaseEvent:          events.NewBaseEvent("servicing.schedule.recalculated", loanID, "Loan", organizationID),
		Strategy:           strategy,
		ReplacedCount:      replaced,
		NewTailCount:       newCount,
		RemainingPrincipal: remaining,
	}
}

// ---------------------------------------------------------------------------
// Payment events
// ---------------------------------------------------------------------------

// PaymentApplied is raised when a payment mutates an installment.
type PaymentApplied struct {
	events.BaseEvent
	InstallmentNumber int             `json:"installment_number"`
	Reference         string          `json:"reference,omitempty"`
	PrincipalPaid     decimal.Decimal `json:"principal_paid"`
	InterestPaid      decimal.Decimal `json:"interest_paid"`
	PenaltyPaid       decimal.Decimal `json:"penalty_paid"`
	ExcessAmount      decimal.Decimal `json:"excess_amount"`
	InstallmentStatus string          `json:"installment_status"`
	DelayedDays       int             `json:"delayed_days"`
}

func NewPaymentApplied(
	loanID, organizationID string, number int, reference string,
	principalPaid, interestPaid, penaltyPaid, excess decimal.Decimal,
	status string, delayedDays int,
) PaymentApplied {
	return PaymentApplied{
		BaseEvent:         events.NewBaseEvent("servicing.payment.applied", loanID, "Installment", organizationID),
		InstallmentNumber: number,
		Reference:         reference,
		PrincipalPaid:     principalPaid,
		InterestPaid:      interestPaid,
		PenaltyPaid:       penaltyPaid,
		ExcessAmount:      excess,
		InstallmentStatus: status,
		DelayedDays:       delayedDays,
	}
}

// PaymentBlocked is raised when the idempotency guard rejects an attempt.
type PaymentBlocked struct {
	events.BaseEvent
	InstallmentNumber int             `json:"installment_number"`
	Reference         string          `json:"reference,omitempty"`
	Amount            decimal.Decimal `json:"amount"`
	Reason            string          `json:"reason"`
	AttemptCount      int             `json:"attempt_count"`
}

func NewPaymentBlocked(
	loanID, organizationID string, number int, reference string,
	amount decimal.Decimal, reason string, attempts int,
) PaymentBlocked {
	return PaymentBlocked{
		BaseEvent:         events.NewBaseEvent("servicing.payment.blocked", loanID, "Installment", organizationID),
		InstallmentNumber: number,
		Reference:         reference,
		Amount:            amount,
		Reason:            reason,
		AttemptCount:      attempts,
	}
}

// ---------------------------------------------------------------------------
// Delinquency events
// ---------------------------------------------------------------------------

// InstallmentOverdue is raised the first time a sweep moves a row into overdue.
type InstallmentOverdue struct {
	events.BaseEvent
	InstallmentNumber    int             `json:"installment_number"`
	DaysOverdue          int             `json:"days_overdue"`
	OutstandingPrincipal decimal.Decimal `json:"outstanding_principal"`
	OutstandingInterest  decimal.Decimal `json:"outstanding_interest"`
}

func NewInstallmentOverdue(
	loanID, organizationID string, number, daysOverdue int,
	outstandingPrincipal, outstandingInterest decimal.Decimal,
) InstallmentOverdue {
	return InstallmentOverdue{
		BaseEvent:            events.NewBaseEvent("servicing.installment.overdue", loanID, "Installment", organizationID),
		InstallmentNumber:    number,
		DaysOverdue:          daysOverdue,
		OutstandingPrincipal: outstandingPrincipal,
		OutstandingInterest:  outstandingInterest,
	}
}

// LoanReclassified is raised when a loan's risk category changes.
type LoanReclassified struct {
	events.BaseEvent
	PreviousCategory  string          `json:"previous_category"`
	Category          string          `json:"category"`
	DaysInArrears     int             `json:"days_in_arrears"`
	NetExposure       decimal.Decimal `json:"net_exposure"`
	ProvisionRequired decimal.Decimal `json:"provision_required"`
}

func NewLoanReclassified(
	loanID, organizationID, previous, category string,
	daysInArrears int, netExposure, provisionRequired decimal.Decimal,
) LoanReclassified {
	return LoanReclassified{
		BaseEvent:         events.NewBaseEvent("servicing.loan.reclassified", loanID, "Loan", organizationID),
		PreviousCategory:  previous,
		Category:          category,
		DaysInArrears:     daysInArrears,
		NetExposure:       netExposure,
		ProvisionRequired: provisionRequired,
	}
}
