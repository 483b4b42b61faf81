package port

import (
	"context"
	"errors"
	"time"

	"github.com/ingatatech/loan-management-system-backend-sub003/internal/domain/event"
	"github.com/ingatatech/loan-management-system-backend-sub003/internal/domain/model"
)

// ---------------------------------------------------------------------------
// Repository ports (driven/secondary adapters)
// ---------------------------------------------------------------------------

var (
	ErrLoanNotFound        = errors.New("loan not found")
	ErrInstallmentNotFound = errors.New("installment not found")
	ErrVersionConflict     = errors.New("optimistic locking conflict")
)

// LoanRepository persists and retrieves loan term snapshots.
type LoanRepository interface {
	Save(ctx context.Context, loan model.Loan) error
	FindByID(ctx context.Context, id string) (model.Loan, error)
	// FindOpenLoanIDs lists loans still accepting payments, for batch sweeps.
	FindOpenLoanIDs(ctx context.Context) ([]string, error)
}

// InstallmentRepository owns the installment ledger. All writes to ledger
// rows go through this engine; external callers only read.
type InstallmentRepository interface {
	// SaveSchedule inserts a loan's full ledger atomically. It fails if any
	// rows already exist for the loan.
	SaveSchedule(ctx context.Context, installments []model.Installment) error
	FindByLoan(ctx context.Context, loanID string) ([]model.Installment, error)
	FindByNumber(ctx context.Context, loanID string, number int) (model.Installment, error)
	// Update persists one mutated row with a compare-and-set on its version;
	// a stale version returns ErrVersionConflict.
	Update(ctx context.Context, inst model.Installment) error
	// UpdateAll persists a batch of mutated rows in a single transaction.
	UpdateAll(ctx context.Context, installments []model.Installment) error
	// ReplaceTail atomically removes the loan's rows numbered at or beyond
	// fromNumber that carry no payment history and inserts the replacement
	// tail. Rows with any amount paid against them, settled or partial, are
	// never removed.
	ReplaceTail(ctx context.Context, loanID string, fromNumber int, tail []model.Installment) error
}

// ---------------------------------------------------------------------------
// Event publisher port
// ---------------------------------------------------------------------------

// EventPublisher publishes domain events to external consumers.
type EventPublisher interface {
	Publish(ctx context.Context, events ...event.DomainEvent) error
}

// ---------------------------------------------------------------------------
// Concurrency guard port
// ---------------------------------------------------------------------------

// PaymentAttemptLock serializes payment submissions against one installment
// across processes. The cool-down guard on the row itself already suppresses
// bounded retries; the lock closes the race window under true concurrency.
type PaymentAttemptLock interface {
	// Acquire returns false when another submission holds the installment.
	Acquire(ctx context.Context, loanID string, number int, ttl time.Duration) (bool, error)
	Release(ctx context.Context, loanID string, number int) error
}
