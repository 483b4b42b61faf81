package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ---------------------------------------------------------------------------
// Request DTOs
// ---------------------------------------------------------------------------

// GenerateScheduleRequest identifies the loan whose ledger should be built
// from its stored commercial terms.
type GenerateScheduleRequest struct {
	LoanID string `json:"loan_id"`
}

// ApplyPaymentRequest carries one payment command. InstallmentNumber zero
// targets the earliest unsettled installment in due-date order. A zero
// PaymentDate defaults to processing time.
type ApplyPaymentRequest struct {
	LoanID            string          `json:"loan_id"`
	Amount            decimal.Decimal `json:"amount"`
	PaymentDate       time.Time       `json:"payment_date,omitempty"`
	InstallmentNumber int             `json:"installment_number,omitempty"`
	Reference         string          `json:"reference,omitempty"`
}

// RecalculateRequest rebuilds the unpaid future tail of a loan's ledger.
// PrincipalReduction is the lump principal retired by the triggering event.
type RecalculateRequest struct {
	LoanID             string          `json:"loan_id"`
	Strategy           string          `json:"strategy"`
	PrincipalReduction decimal.Decimal `json:"principal_reduction"`
	AsOf               time.Time       `json:"as_of,omitempty"`
}

// ClassifyRequest identifies the loan to classify.
type ClassifyRequest struct {
	LoanID string `json:"loan_id"`
}

// ---------------------------------------------------------------------------
// Response DTOs
// ---------------------------------------------------------------------------

// InstallmentResponse is the external representation of one ledger row.
type InstallmentResponse struct {
	LoanID               string          `json:"loan_id"`
	Number               int             `json:"number"`
	DueDate              time.Time       `json:"due_date"`
	DuePrincipal         decimal.Decimal `json:"due_principal"`
	DueInterest          decimal.Decimal `json:"due_interest"`
	DueTotal             decimal.Decimal `json:"due_total"`
	PaidPrincipal        decimal.Decimal `json:"paid_principal"`
	PaidInterest         decimal.Decimal `json:"paid_interest"`
	PaidTotal            decimal.Decimal `json:"paid_total"`
	OutstandingPrincipal decimal.Decimal `json:"outstanding_principal"`
	OutstandingInterest  decimal.Decimal `json:"outstanding_interest"`
	PenaltyDue           decimal.Decimal `json:"penalty_due"`
	Status               string          `json:"status"`
	FullyPaid            bool            `json:"fully_paid"`
	PaidAt               *time.Time      `json:"paid_at,omitempty"`
	DaysOverdue          int             `json:"days_overdue"`
	DelayedDays          int             `json:"delayed_days"`
}

// ScheduleResponse is a loan's ordered ledger.
type ScheduleResponse struct {
	LoanID       string                `json:"loan_id"`
	Installments []InstallmentResponse `json:"installments"`
}

// PaymentResultResponse reports how a payment landed. WasBlocked carries the
// idempotency-guard outcome; blocked calls are successful responses.
type PaymentResultResponse struct {
	LoanID            string          `json:"loan_id"`
	InstallmentNumber int             `json:"installment_number"`
	PrincipalPaid     decimal.Decimal `json:"principal_paid"`
	InterestPaid      decimal.Decimal `json:"interest_paid"`
	PenaltyPaid       decimal.Decimal `json:"penalty_paid"`
	ExcessAmount      decimal.Decimal `json:"excess_amount"`
	WasBlocked        bool            `json:"was_blocked"`
	BlockReason       string          `json:"block_reason,omitempty"`
	InstallmentStatus string          `json:"installment_status"`
}

// ClassificationResponse is the derived risk picture for one loan.
type ClassificationResponse struct {
	LoanID            string          `json:"loan_id"`
	Category          string          `json:"category"`
	DaysInArrears     int             `json:"days_in_arrears"`
	ProvisionRate     decimal.Decimal `json:"provision_rate"`
	NetExposure       decimal.Decimal `json:"net_exposure"`
	ProvisionRequired decimal.Decimal `json:"provision_required"`
}

// LoanSweepResult is one loan's outcome within a batch sweep. Err is nil on
// success; failures never abort the batch.
type LoanSweepResult struct {
	LoanID       string `json:"loan_id"`
	UpdatedRows  int    `json:"updated_rows"`
	NewlyOverdue int    `json:"newly_overdue"`
	WorstDays    int    `json:"worst_days_in_arrears"`
	Err          error  `json:"-"`
	ErrorMessage string `json:"error,omitempty"`
	LoanStatus   string `json:"loan_status,omitempty"`
}

// SweepReport aggregates a full arrears sweep run.
type SweepReport struct {
	AsOf      time.Time         `json:"as_of"`
	Processed int               `json:"processed"`
	Failed    int               `json:"failed"`
	Results   []LoanSweepResult `json:"results"`
}

// ReclassificationResult is one loan's outcome within a classification
// refresh.
type ReclassificationResult struct {
	LoanID           string `json:"loan_id"`
	PreviousCategory string `json:"previous_category"`
	Category         string `json:"category"`
	Changed          bool   `json:"changed"`
	Err              error  `json:"-"`
	ErrorMessage     string `json:"error,omitempty"`
}

// RefreshReport aggregates a classification refresh run.
type RefreshReport struct {
	AsOf      time.Time                `json:"as_of"`
	Processed int                      `json:"processed"`
	Failed    int                      `json:"failed"`
	Changed   int                      `json:"changed"`
	Results   []ReclassificationResult `json:"results"`
}
