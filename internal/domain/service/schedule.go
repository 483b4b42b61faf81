package service

import (
	"errors"
	"math"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ingatatech/loan-management-system-backend-sub003/internal/domain/model"
	"github.com/ingatatech/loan-management-system-backend-sub003/internal/domain/valueobject"
)

// ---------------------------------------------------------------------------
// Schedule generation
// ---------------------------------------------------------------------------

var (
	ErrNonPositivePrincipal = errors.New("principal must be positive")
	ErrNegativeRate         = errors.New("annual interest rate must not be negative")
	ErrTermNotBeyondGrace   = errors.New("term must exceed the grace period")
)

// ScheduleTerms are the commercial inputs the generator works from. AnnualRate
// is fractional (0.12 means 12% p.a.).
type ScheduleTerms struct {
	Principal    decimal.Decimal
	AnnualRate   decimal.Decimal
	TermPeriods  int
	GracePeriods int
	Frequency    valueobject.RepaymentFrequency
	Method       valueobject.InterestMethod
	StartDate    time.Time
}

// TermsFromLoan builds ScheduleTerms from a loan's stored commercial terms.
func TermsFromLoan(l model.Loan) ScheduleTerms {
	return ScheduleTerms{
		Principal:    l.Principal,
		AnnualRate:   l.AnnualRate,
		TermPeriods:  l.TermPeriods,
		GracePeriods: l.GracePeriods,
		Frequency:    l.Frequency,
		Method:       l.Method,
		StartDate:    l.DisbursedAt,
	}
}

// GenerateSchedule builds the full ordered installment ledger for a loan. The
// first due date is offset past the grace period, and every monetary value is
// rounded to 2 decimal places as it is computed. The final installment's due
// principal absorbs rounding drift so the ledger sums exactly to the loan
// principal.
func GenerateSchedule(loanID string, t ScheduleTerms, now time.Time) ([]model.Installment, error) {
	if t.Principal.LessThanOrEqual(decimal.Zero) {
		return nil, ErrNonPositivePrincipal
	}
	if t.AnnualRate.IsNegative() {
		return nil, ErrNegativeRate
	}
	if t.TermPeriods <= t.GracePeriods {
		return nil, ErrTermNotBeyondGrace
	}

	n := t.TermPeriods - t.GracePeriods

	var rows []model.Installment
	switch {
	case t.Method.Equal(valueobject.InterestMethodFlat):
		rows = flatSchedule(t, n)
	default:
		rows = reducingBalanceSchedule(t, n)
	}

	for i := range rows {
		rows[i].LoanID = loanID
		rows[i].Number = i + 1
		rows[i].DueDate = t.Frequency.Advance(t.StartDate, t.GracePeriods+i+1)
		rows[i].DueTotal = rows[i].DuePrincipal.Add(rows[i].DueInterest)
		rows[i].PaidPrincipal = decimal.Zero
		rows[i].PaidInterest = decimal.Zero
		rows[i].PaidTotal = decimal.Zero
		rows[i].OutstandingPrincipal = rows[i].DuePrincipal
		rows[i].OutstandingInterest = rows[i].DueInterest
		rows[i].PenaltyDue = decimal.Zero
		rows[i].PenaltyPaid = decimal.Zero
		rows[i].Status = valueobject.InstallmentStatusPending
		rows[i].Version = 1
		rows[i].CreatedAt = now
		rows[i].UpdatedAt = now
	}

	return rows, nil
}

// flatSchedule computes level principal and level interest per period. Total
// interest is principal x annual rate x term in years.
func flatSchedule(t ScheduleTerms, n int) []model.Installment {
	periods := decimal.NewFromInt(int64(n))
	periodsPerYear := decimal.NewFromInt(int64(t.Frequency.PeriodsPerYear()))
	termYears := decimal.NewFromInt(int64(t.TermPeriods)).Div(periodsPerYear)

	totalInterest := t.Principal.Mul(t.AnnualRate).Mul(termYears).Round(2)
	perInterest := totalInterest.Div(periods).Round(2)
	perPrincipal := t.Principal.Div(periods).Round(2)

	rows := make([]model.Installment, n)
	for i := 0; i < n-1; i++ {
		rows[i].DuePrincipal = perPrincipal
		rows[i].DueInterest = perInterest
	}

	// Last row absorbs rounding drift on both legs.
	prior := decimal.NewFromInt(int64(n - 1))
	rows[n-1].DuePrincipal = t.Principal.Sub(perPrincipal.Mul(prior))
	rows[n-1].DueInterest = totalInterest.Sub(perInterest.Mul(prior))
	return rows
}

// reducingBalanceSchedule computes a standard annuity: level total payment,
// interest on the declining balance, principal as the remainder. The annuity
// factor is computed in float64, then all monetary arithmetic stays decimal.
func reducingBalanceSchedule(t ScheduleTerms, n int) []model.Installment {
	periodicRate := t.AnnualRate.Div(decimal.NewFromInt(int64(t.Frequency.PeriodsPerYear())))
	payment := annuityPayment(t.Principal, periodicRate, n)

	rows := make([]model.Installment, n)
	balance := t.Principal
	for i := 0; i < n; i++ {
		interest := balance.Mul(periodicRate).Round(2)
		principalPart := payment.Sub(interest)

		// Last period retires whatever balance is left.
		if i == n-1 {
			principalPart = balance
		}

		rows[i].DuePrincipal = principalPart
		rows[i].DueInterest = interest
		balance = balance.Sub(principalPart)
		if balance.IsNegative() {
			balance = decimal.Zero
		}
	}
	return rows
}

// annuityPayment is P * r * (1+r)^n / ((1+r)^n - 1), rounded to 2 decimals.
// A zero rate degenerates to an even principal split.
func annuityPayment(principal, periodicRate decimal.Decimal, n int) decimal.Decimal {
	if periodicRate.IsZero() {
		return principal.Div(decimal.NewFromInt(int64(n))).Round(2)
	}
	r := periodicRate.InexactFloat64()
	factor := math.Pow(1+r, float64(n))
	payment := principal.InexactFloat64() * r * factor / (factor - 1)
	return decimal.NewFromFloat(payment).Round(2)
}
