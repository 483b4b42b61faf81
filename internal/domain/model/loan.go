package model

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/ingatatech/loan-management-system-backend-sub003/internal/domain/valueobject"
)

// ---------------------------------------------------------------------------
// Loan – external aggregate, referenced not owned
// ---------------------------------------------------------------------------

// Loan is the commercial-terms snapshot the servicing engine works from. The
// surrounding application owns borrower, approval and disbursement workflow;
// this engine only reads the terms and maintains the derived delinquency
// fields (Status, RiskCategory, DaysInArrears).
type Loan struct {
	ID             string
	OrganizationID string

	Principal    decimal.Decimal
	Currency     string
	AnnualRate   decimal.Decimal // fractional, e.g. 0.12 for 12% p.a.
	Method       valueobject.InterestMethod
	TermPeriods  int
	Frequency    valueobject.RepaymentFrequency
	GracePeriods int

	DisbursedAt time.Time
	MaturityAt  time.Time

	Status        valueobject.LoanStatus
	RiskCategory  valueobject.RiskCategory
	DaysInArrears int

	Version   int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// PeriodicRate is the per-period interest rate derived from the annual rate
// and the repayment frequency.
func (l Loan) PeriodicRate() decimal.Decimal {
	return l.AnnualRate.Div(decimal.NewFromInt(int64(l.Frequency.PeriodsPerYear())))
}

// RepaymentPeriods is the number of installments the schedule carries: the
// term net of the grace offset.
func (l Loan) RepaymentPeriods() int {
	return l.TermPeriods - l.GracePeriods
}
