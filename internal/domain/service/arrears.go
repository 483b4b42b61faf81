package service

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/ingatatech/loan-management-system-backend-sub003/internal/domain/model"
	"github.com/ingatatech/loan-management-system-backend-sub003/internal/domain/valueobject"
)

// ---------------------------------------------------------------------------
// Arrears tracking
// ---------------------------------------------------------------------------

var daysPerYear = decimal.NewFromInt(365)

// ArrearsPolicy configures the sweep. PenaltyAnnualRate is the fractional
// annual rate charged on overdue principal; zero disables penalty accrual.
type ArrearsPolicy struct {
	PenaltyAnnualRate decimal.Decimal
}

// UpdateArrears recomputes an installment's delinquency as of the given date.
// Days overdue are always recomputed from the due date, never incremented, so
// running the sweep twice in one day, or after missed days, lands on the same
// values as running it exactly once.
//
// Settled rows pass through untouched with their overdue counter at zero.
func UpdateArrears(inst model.Installment, asOf time.Time, policy ArrearsPolicy) model.Installment {
	if inst.Status.IsSettled() {
		return inst
	}
	if !inst.IsDue(asOf) {
		return inst
	}

	inst.DaysOverdue = maxInt(0, dateDiffDays(inst.DueDate, asOf))
	if inst.Status.Equal(valueobject.InstallmentStatusPending) {
		inst.Status = valueobject.InstallmentStatusOverdue
	}

	if policy.PenaltyAnnualRate.IsPositive() {
		accrued := inst.OutstandingPrincipal.
			Mul(policy.PenaltyAnnualRate).
			Div(daysPerYear).
			Mul(decimal.NewFromInt(int64(inst.DaysOverdue))).
			Round(2)
		// Accrued penalty never shrinks, even after principal payments lower
		// the accrual base.
		inst.PenaltyDue = decimal.Max(inst.PenaltyDue, accrued, inst.PenaltyPaid)
	}

	inst.UpdatedAt = asOf
	return inst
}

// WorstDaysInArrears is the loan-level delinquency figure: the maximum days
// overdue across the ledger.
func WorstDaysInArrears(ledger []model.Installment) int {
	worst := 0
	for _, inst := range ledger {
		if inst.DaysOverdue > worst {
			worst = inst.DaysOverdue
		}
	}
	return worst
}

// DeriveLoanStatus folds ledger state into the loan-level status. A loan with
// any overdue row is delinquent; a fully settled ledger is paid off.
func DeriveLoanStatus(current valueobject.LoanStatus, ledger []model.Installment) valueobject.LoanStatus {
	if current.Equal(valueobject.LoanStatusWrittenOff) {
		return current
	}
	if len(ledger) == 0 {
		return current
	}

	allPaid := true
	anyOverdue := false
	for _, inst := range ledger {
		if !inst.FullyPaid && !inst.Status.Equal(valueobject.InstallmentStatusWrittenOff) {
			allPaid = false
		}
		if inst.DaysOverdue > 0 && !inst.Status.IsSettled() {
			anyOverdue = true
		}
	}

	switch {
	case allPaid:
		return valueobject.LoanStatusPaidOff
	case anyOverdue:
		return valueobject.LoanStatusDelinquent
	default:
		return valueobject.LoanStatusActive
	}
}
