package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	pkgpostgres "github.com/ingatatech/loan-management-system-backend-sub003/pkg/postgres"

	"github.com/ingatatech/loan-management-system-backend-sub003/internal/domain/model"
	"github.com/ingatatech/loan-management-system-backend-sub003/internal/domain/port"
	"github.com/ingatatech/loan-management-system-backend-sub003/internal/domain/valueobject"
)

// scannable lets the scan helpers work with both pgx.Row and pgx.Rows.
type scannable interface {
	Scan(dest ...any) error
}

const installmentColumns = `
	loan_id, number, due_date, due_principal, due_interest, due_total,
	paid_principal, paid_interest, paid_total,
	outstanding_principal, outstanding_interest,
	penalty_due, penalty_paid,
	status, fully_paid, paid_at, days_overdue, delayed_days,
	last_attempt_at, attempt_count,
	version, created_at, updated_at`

// InstallmentRepo implements port.InstallmentRepository.
type InstallmentRepo struct {
	pool *pgxpool.Pool
}

// NewInstallmentRepo creates a new PostgreSQL-backed installment repository.
func NewInstallmentRepo(pool *pgxpool.Pool) *InstallmentRepo {
	return &InstallmentRepo{pool: pool}
}

// SaveSchedule inserts a loan's full ledger atomically. The primary key on
// (loan_id, number) rejects regeneration over an existing schedule.
func (r *InstallmentRepo) SaveSchedule(ctx context.Context, installments []model.Installment) error {
	if len(installments) == 0 {
		return errors.New("save schedule: empty schedule")
	}
	return pkgpostgres.WithTransaction(ctx, r.pool, func(tx pgx.Tx) error {
		for _, inst := range installments {
			if err := insertInstallment(ctx, tx, inst); err != nil {
				return err
			}
		}
		return nil
	})
}

// FindByLoan returns the loan's full ledger ordered by installment number.
func (r *InstallmentRepo) FindByLoan(ctx context.Context, loanID string) ([]model.Installment, error) {
	query := `SELECT ` + installmentColumns + `
		FROM installments
		WHERE loan_id = $1
		ORDER BY number`

	rows, err := r.pool.Query(ctx, query, loanID)
	if err != nil {
		return nil, fmt.Errorf("query installments: %w", err)
	}
	defer rows.Close()

	var ledger []model.Installment
	for rows.Next() {
		inst, err := scanInstallmentRow(rows)
		if err != nil {
			return nil, err
		}
		ledger = append(ledger, inst)
	}
	return ledger, rows.Err()
}

// FindByNumber retrieves a single ledger row.
func (r *InstallmentRepo) FindByNumber(ctx context.Context, loanID string, number int) (model.Installment, error) {
	query := `SELECT ` + installmentColumns + `
		FROM installments
		WHERE loan_id = $1 AND number = $2`

	inst, err := scanInstallmentRow(r.pool.QueryRow(ctx, query, loanID, number))
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Installment{}, port.ErrInstallmentNotFound
	}
	return inst, err
}

// Update persists one mutated row with a compare-and-set on its version.
func (r *InstallmentRepo) Update(ctx context.Context, inst model.Installment) error {
	return updateInstallment(ctx, r.pool, inst)
}

// UpdateAll persists a batch of mutated rows in a single transaction. A
// version conflict on any row rolls back the whole batch.
func (r *InstallmentRepo) UpdateAll(ctx context.Context, installments []model.Installment) error {
	if len(installments) == 0 {
		return nil
	}
	return pkgpostgres.WithTransaction(ctx, r.pool, func(tx pgx.Tx) error {
		for _, inst := range installments {
			if err := updateInstallment(ctx, tx, inst); err != nil {
				return err
			}
		}
		return nil
	})
}

// ReplaceTail removes the loan's untouched rows numbered at or beyond
// fromNumber and inserts the replacement tail, all in one transaction. Rows
// with any payment recorded against them survive a recalculation untouched,
// whether settled or partial.
func (r *InstallmentRepo) ReplaceTail(ctx context.Context, loanID string, fromNumber int, tail []model.Installment) error {
	return pkgpostgres.WithTransaction(ctx, r.pool, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx,
			`DELETE FROM installments
			 WHERE loan_id = $1 AND number >= $2 AND fully_paid = FALSE
			   AND paid_total = 0 AND penalty_paid = 0`,
			loanID, fromNumber,
		)
		if err != nil {
			return fmt.Errorf("delete tail: %w", err)
		}
		for _, inst := range tail {
			if err := insertInstallment(ctx, tx, inst); err != nil {
				return err
			}
		}
		return nil
	})
}

// ---------------------------------------------------------------------------
// internal helpers
// ---------------------------------------------------------------------------

func insertInstallment(ctx context.Context, q pkgpostgres.Querier, inst model.Installment) error {
	query := `INSERT INTO installments (` + installmentColumns + `)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22,$23)`

	_, err := q.Exec(ctx, query,
		inst.LoanID, inst.Number, inst.DueDate, inst.DuePrincipal, inst.DueInterest, inst.DueTotal,
		inst.PaidPrincipal, inst.PaidInterest, inst.PaidTotal,
		inst.OutstandingPrincipal, inst.OutstandingInterest,
		inst.PenaltyDue, inst.PenaltyPaid,
		inst.Status.String(), inst.FullyPaid, inst.PaidAt, inst.DaysOverdue, inst.DelayedDays,
		inst.LastAttemptAt, inst.AttemptCount,
		inst.Version, inst.CreatedAt, inst.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert installment %d: %w", inst.Number, err)
	}
	return nil
}

func updateInstallment(ctx context.Context, q pkgpostgres.Querier, inst model.Installment) error {
	query := `
		UPDATE installments SET
			due_date = $3, due_principal = $4, due_interest = $5, due_total = $6,
			paid_principal = $7, paid_interest = $8, paid_total = $9,
			outstanding_principal = $10, outstanding_interest = $11,
			penalty_due = $12, penalty_paid = $13,
			status = $14, fully_paid = $15, paid_at = $16,
			days_overdue = $17, delayed_days = $18,
			last_attempt_at = $19, attempt_count = $20,
			version = version + 1, updated_at = $21
		WHERE loan_id = $1 AND number = $2 AND version = $22
	`
	tag, err := q.Exec(ctx, query,
		inst.LoanID, inst.Number,
		inst.DueDate, inst.DuePrincipal, inst.DueInterest, inst.DueTotal,
		inst.PaidPrincipal, inst.PaidInterest, inst.PaidTotal,
		inst.OutstandingPrincipal, inst.OutstandingInterest,
		inst.PenaltyDue, inst.PenaltyPaid,
		inst.Status.String(), inst.FullyPaid, inst.PaidAt,
		inst.DaysOverdue, inst.DelayedDays,
		inst.LastAttemptAt, inst.AttemptCount,
		inst.UpdatedAt, inst.Version,
	)
	if err != nil {
		return fmt.Errorf("update installment %d: %w", inst.Number, err)
	}
	if tag.RowsAffected() == 0 {
		return port.ErrVersionConflict
	}
	return nil
}

func scanInstallmentRow(s scannable) (model.Installment, error) {
	var (
		inst      model.Installment
		statusStr string
	)

	err := s.Scan(
		&inst.LoanID, &inst.Number, &inst.DueDate,
		&inst.DuePrincipal, &inst.DueInterest, &inst.DueTotal,
		&inst.PaidPrincipal, &inst.PaidInterest, &inst.PaidTotal,
		&inst.OutstandingPrincipal, &inst.OutstandingInterest,
		&inst.PenaltyDue, &inst.PenaltyPaid,
		&statusStr, &inst.FullyPaid, &inst.PaidAt,
		&inst.DaysOverdue, &inst.DelayedDays,
		&inst.LastAttemptAt, &inst.AttemptCount,
		&inst.Version, &inst.CreatedAt, &inst.UpdatedAt,
	)
	if err != nil {
		return model.Installment{}, fmt.Errorf("scan installment: %w", err)
	}

	inst.Status, err = valueobject.NewInstallmentStatus(statusStr)
	if err != nil {
		return model.Installment{}, fmt.Errorf("parse installment status: %w", err)
	}

	return inst, nil
}
