package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/ingatatech/loan-management-system-backend-sub003/internal/domain/model"
	"github.com/ingatatech/loan-management-system-backend-sub003/internal/domain/port"
	"github.com/ingatatech/loan-management-system-backend-sub003/internal/domain/valueobject"
)

// LoanRepo implements port.LoanRepository.
type LoanRepo struct {
	pool *pgxpool.Pool
}

// NewLoanRepo creates a new PostgreSQL-backed loan repository.
func NewLoanRepo(pool *pgxpool.Pool) *LoanRepo {
	return &LoanRepo{pool: pool}
}

// Save upserts a loan's terms and derived delinquency fields with an
// optimistic version check.
func (r *LoanRepo) Save(ctx context.Context, loan model.Loan) error {
	query := `
		INSERT INTO loans (
			id, organization_id, principal, currency, annual_rate,
			interest_method, term_periods, frequency, grace_periods,
			disbursed_at, maturity_at, status, risk_category, days_in_arrears,
			version, created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17)
		ON CONFLICT (id) DO UPDATE SET
			status          = EXCLUDED.status,
			risk_category   = EXCLUDED.risk_category,
			days_in_arrears = EXCLUDED.days_in_arrears,
			version         = loans.version + 1,
			updated_at      = EXCLUDED.updated_at
		WHERE loans.version = $15
	`
	tag, err := r.pool.Exec(ctx, query,
		loan.ID, loan.OrganizationID, loan.Principal, loan.Currency, loan.AnnualRate,
		loan.Method.String(), loan.TermPeriods, loan.Frequency.String(), loan.GracePeriods,
		loan.DisbursedAt, loan.MaturityAt, loan.Status.String(), loan.RiskCategory.String(), loan.DaysInArrears,
		loan.Version, loan.CreatedAt, loan.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("save loan: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return port.ErrVersionConflict
	}
	return nil
}

// FindByID retrieves a loan's terms snapshot.
func (r *LoanRepo) FindByID(ctx context.Context, id string) (model.Loan, error) {
	query := `
		SELECT id, organization_id, principal, currency, annual_rate,
		       interest_method, term_periods, frequency, grace_periods,
		       disbursed_at, maturity_at, status, risk_category, days_in_arrears,
		       version, created_at, updated_at
		FROM loans
		WHERE id = $1
	`
	loan, err := scanLoanRow(r.pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Loan{}, port.ErrLoanNotFound
	}
	return loan, err
}

// FindOpenLoanIDs lists loans still accepting payments, oldest first.
func (r *LoanRepo) FindOpenLoanIDs(ctx context.Context) ([]string, error) {
	query := `
		SELECT id FROM loans
		WHERE status IN ('ACTIVE', 'DELINQUENT')
		ORDER BY disbursed_at
	`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query open loans: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan loan id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// ---------------------------------------------------------------------------
// internal helpers
// ---------------------------------------------------------------------------

func scanLoanRow(s scannable) (model.Loan, error) {
	var (
		id, organizationID        string
		principal, annualRate     decimal.Decimal
		currency                  string
		methodStr, frequencyStr   string
		termPeriods, gracePeriods int
		disbursedAt, maturityAt   time.Time
		statusStr, categoryStr    string
		daysInArrears, version    int
		createdAt, updatedAt      time.Time
	)

	err := s.Scan(
		&id, &organizationID, &principal, &currency, &annualRate,
		&methodStr, &termPeriods, &frequencyStr, &gracePeriods,
		&disbursedAt, &maturityAt, &statusStr, &categoryStr, &daysInArrears,
		&version, &createdAt, &updatedAt,
	)
	if err != nil {
		return model.Loan{}, fmt.Errorf("scan loan: %w", err)
	}

	method, err := valueobject.NewInterestMethod(methodStr)
	if err != nil {
		return model.Loan{}, fmt.Errorf("parse interest method: %w", err)
	}
	frequency, err := valueobject.NewRepaymentFrequency(frequencyStr)
	if err != nil {
		return model.Loan{}, fmt.Errorf("parse frequency: %w", err)
	}
	status, err := valueobject.NewLoanStatus(statusStr)
	if err != nil {
		return model.Loan{}, fmt.Errorf("parse loan status: %w", err)
	}
	category, err := valueobject.NewRiskCategory(categoryStr)
	if err != nil {
		return model.Loan{}, fmt.Errorf("parse risk category: %w", err)
	}

	return model.Loan{
		ID:             id,
		OrganizationID: organizationID,
		Principal:      principal,
		Currency:       currency,
		AnnualRate:     annualRate,
		Method:         method,
		TermPeriods:    termPeriods,
		Frequency:      frequency,
		GracePeriods:   gracePeriods,
		DisbursedAt:    disbursedAt,
		MaturityAt:     maturityAt,
		Status:         status,
		RiskCategory:   category,
		DaysInArrears:  daysInArrears,
		Version:        version,
		CreatedAt:      createdAt,
		UpdatedAt:      updatedAt,
	}, nil
}
