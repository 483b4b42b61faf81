package usecase_test

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ingatatech/loan-management-system-backend-sub003/internal/domain/event"
	"github.com/ingatatech/loan-management-system-backend-sub003/internal/domain/model"
	"github.com/ingatatech/loan-management-system-backend-sub003/internal/domain/port"
	"github.com/ingatatech/loan-management-system-backend-sub003/internal/domain/valueobject"
)

// ---------------------------------------------------------------------------
// Function-field mocks
// ---------------------------------------------------------------------------

type mockLoanRepository struct {
	saveFunc            func(ctx context.Context, loan model.Loan) error
	findByIDFunc        func(ctx context.Context, id string) (model.Loan, error)
	findOpenLoanIDsFunc func(ctx context.Context) ([]string, error)

	saved []model.Loan
}

func (m *mockLoanRepository) Save(ctx context.Context, loan model.Loan) error {
	m.saved = append(m.saved, loan)
	if m.saveFunc != nil {
		return m.saveFunc(ctx, loan)
	}
	return nil
}

func (m *mockLoanRepository) FindByID(ctx context.Context, id string) (model.Loan, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return model.Loan{}, port.ErrLoanNotFound
}

func (m *mockLoanRepository) FindOpenLoanIDs(ctx context.Context) ([]string, error) {
	if m.findOpenLoanIDsFunc != nil {
		return m.findOpenLoanIDsFunc(ctx)
	}
	return nil, nil
}

type mockInstallmentRepository struct {
	saveScheduleFunc func(ctx context.Context, installments []model.Installment) error
	findByLoanFunc   func(ctx context.Context, loanID string) ([]model.Installment, error)
	findByNumberFunc func(ctx context.Context, loanID string, number int) (model.Installment, error)
	updateFunc       func(ctx context.Context, inst model.Installment) error
	updateAllFunc    func(ctx context.Context, installments []model.Installment) error
	replaceTailFunc  func(ctx context.Context, loanID string, fromNumber int, tail []model.Installment) error

	savedSchedules [][]model.Installment
	updated        []model.Installment
}

func (m *mockInstallmentRepository) SaveSchedule(ctx context.Context, installments []model.Installment) error {
	m.savedSchedules = append(m.savedSchedules, installments)
	if m.saveScheduleFunc != nil {
		return m.saveScheduleFunc(ctx, installments)
	}
	return nil
}

func (m *mockInstallmentRepository) FindByLoan(ctx context.Context, loanID string) ([]model.Installment, error) {
	if m.findByLoanFunc != nil {
		return m.findByLoanFunc(ctx, loanID)
	}
	return nil, nil
}

func (m *mockInstallmentRepository) FindByNumber(ctx context.Context, loanID string, number int) (model.Installment, error) {
	if m.findByNumberFunc != nil {
		return m.findByNumberFunc(ctx, loanID, number)
	}
	return model.Installment{}, port.ErrInstallmentNotFound
}

func (m *mockInstallmentRepository) Update(ctx context.Context, inst model.Installment) error {
	m.updated = append(m.updated, inst)
	if m.updateFunc != nil {
		return m.updateFunc(ctx, inst)
	}
	return nil
}

func (m *mockInstallmentRepository) UpdateAll(ctx context.Context, installments []model.Installment) error {
	m.updated = append(m.updated, installments...)
	if m.updateAllFunc != nil {
		return m.updateAllFunc(ctx, installments)
	}
	return nil
}

func (m *mockInstallmentRepository) ReplaceTail(ctx context.Context, loanID string, fromNumber int, tail []model.Installment) error {
	if m.replaceTailFunc != nil {
		return m.replaceTailFunc(ctx, loanID, fromNumber, tail)
	}
	return nil
}

type mockEventPublisher struct {
	publishFunc func(ctx context.Context, events ...event.DomainEvent) error

	published []event.DomainEvent
}

func (m *mockEventPublisher) Publish(ctx context.Context, events ...event.DomainEvent) error {
	m.published = append(m.published, events...)
	if m.publishFunc != nil {
		return m.publishFunc(ctx, events...)
	}
	return nil
}

type mockAttemptLock struct {
	acquireFunc func(ctx context.Context, loanID string, number int, ttl time.Duration) (bool, error)

	released int
}

func (m *mockAttemptLock) Acquire(ctx context.Context, loanID string, number int, ttl time.Duration) (bool, error) {
	if m.acquireFunc != nil {
		return m.acquireFunc(ctx, loanID, number, ttl)
	}
	return true, nil
}

func (m *mockAttemptLock) Release(ctx context.Context, loanID string, number int) error {
	m.released++
	return nil
}

// ---------------------------------------------------------------------------
// Fixtures
// ---------------------------------------------------------------------------

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func activeLoan() model.Loan {
	start := time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)
	return model.Loan{
		ID:             "loan-001",
		OrganizationID: "org-001",
		Principal:      decimal.NewFromInt(1200),
		Currency:       "USD",
		AnnualRate:     decimal.RequireFromString("0.12"),
		Method:         valueobject.InterestMethodFlat,
		TermPeriods:    12,
		Frequency:      valueobject.FrequencyMonthly,
		DisbursedAt:    start,
		MaturityAt:     start.AddDate(1, 0, 0),
		Status:         valueobject.LoanStatusActive,
		RiskCategory:   valueobject.RiskCategoryNormal,
		Version:        1,
		CreatedAt:      start,
		UpdatedAt:      start,
	}
}

// twelveRowLedger is the flat ledger of activeLoan with the first `paid` rows
// settled: 100 principal + 12 interest per row, due monthly from 2025-02-15.
func twelveRowLedger(paid int) []model.Installment {
	ledger := make([]model.Installment, 12)
	for i := range ledger {
		ledger[i] = model.Installment{
			LoanID:               "loan-001",
			Number:               i + 1,
			DueDate:              time.Date(2025, time.Month(2+i), 15, 0, 0, 0, 0, time.UTC),
			DuePrincipal:         decimal.NewFromInt(100),
			DueInterest:          decimal.NewFromInt(12),
			DueTotal:             decimal.NewFromInt(112),
			OutstandingPrincipal: decimal.NewFromInt(100),
			OutstandingInterest:  decimal.NewFromInt(12),
			Status:               valueobject.InstallmentStatusPending,
			Version:              1,
		}
		if i < paid {
			ledger[i].PaidPrincipal = decimal.NewFromInt(100)
			ledger[i].PaidInterest = decimal.NewFromInt(12)
			ledger[i].PaidTotal = decimal.NewFromInt(112)
			ledger[i].OutstandingPrincipal = decimal.Zero
			ledger[i].OutstandingInterest = decimal.Zero
			ledger[i].Status = valueobject.InstallmentStatusPaid
			ledger[i].FullyPaid = true
		}
	}
	return ledger
}

func testProvisionRates() map[string]decimal.Decimal {
	return map[string]decimal.Decimal{
		"NORMAL":      decimal.RequireFromString("0.01"),
		"WATCH":       decimal.RequireFromString("0.05"),
		"SUBSTANDARD": decimal.RequireFromString("0.25"),
		"DOUBTFUL":    decimal.RequireFromString("0.5"),
		"LOSS":        decimal.NewFromInt(1),
	}
}
