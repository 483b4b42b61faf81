package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ingatatech/loan-management-system-backend-sub003/internal/application/dto"
	"github.com/ingatatech/loan-management-system-backend-sub003/internal/domain/event"
	"github.com/ingatatech/loan-management-system-backend-sub003/internal/domain/port"
	"github.com/ingatatech/loan-management-system-backend-sub003/internal/domain/service"
)

// RefreshClassificationsUseCase re-derives the risk category of every open
// loan and records tier changes. Like the arrears sweep it isolates failures
// per loan.
type RefreshClassificationsUseCase struct {
	loanRepo        port.LoanRepository
	installmentRepo port.InstallmentRepository
	publisher       port.EventPublisher
	policy          service.ProvisionPolicy
	logger          *slog.Logger
}

// NewRefreshClassificationsUseCase wires dependencies.
func NewRefreshClassificationsUseCase(
	loanRepo port.LoanRepository,
	installmentRepo port.InstallmentRepository,
	publisher port.EventPublisher,
	policy service.ProvisionPolicy,
	logger *slog.Logger,
) *RefreshClassificationsUseCase {
	return &RefreshClassificationsUseCase{
		loanRepo:        loanRepo,
		installmentRepo: installmentRepo,
		publisher:       publisher,
		policy:          policy,
		logger:          logger,
	}
}

// Execute refreshes classifications for all open loans.
func (uc *RefreshClassificationsUseCase) Execute(ctx context.Context, asOf time.Time) (dto.RefreshReport, error) {
	loanIDs, err := uc.loanRepo.FindOpenLoanIDs(ctx)
	if err != nil {
		return dto.RefreshReport{}, fmt.Errorf("list open loans: %w", err)
	}

	report := dto.RefreshReport{
		AsOf:    asOf,
		Results: make([]dto.ReclassificationResult, 0, len(loanIDs)),
	}

	for _, loanID := range loanIDs {
		result := uc.refreshLoan(ctx, loanID, asOf)
		if result.Err != nil {
			result.ErrorMessage = result.Err.Error()
			report.Failed++
			uc.logger.WarnContext(ctx, "classification refresh failed for loan",
				"loan_id", loanID, "error", result.Err)
		}
		if result.Changed {
			report.Changed++
		}
		report.Processed++
		report.Results = append(report.Results, result)
	}

	return report, nil
}

func (uc *RefreshClassificationsUseCase) refreshLoan(ctx context.Context, loanID string, asOf time.Time) dto.ReclassificationResult {
	result := dto.ReclassificationResult{LoanID: loanID}

	loan, err := uc.loanRepo.FindByID(ctx, loanID)
	if err != nil {
		result.Err = fmt.Errorf("find loan: %w", err)
		return result
	}

	ledger, err := uc.installmentRepo.FindByLoan(ctx, loanID)
	if err != nil {
		result.Err = fmt.Errorf("load ledger: %w", err)
		return result
	}

	c := service.ClassifyLoan(ledger, uc.policy)
	result.PreviousCategory = loan.RiskCategory.String()
	result.Category = c.Category.String()

	if loan.RiskCategory.Equal(c.Category) && loan.DaysInArrears == c.DaysInArrears {
		return result
	}
	result.Changed = !loan.RiskCategory.Equal(c.Category)

	previous := loan.RiskCategory
	loan.RiskCategory = c.Category
	loan.DaysInArrears = c.DaysInArrears
	loan.UpdatedAt = asOf
	if err := uc.loanRepo.Save(ctx, loan); err != nil {
		result.Err = fmt.Errorf("save loan: %w", err)
		return result
	}

	if result.Changed {
		evt := event.NewLoanReclassified(
			loan.ID, loan.OrganizationID,
			previous.String(), c.Category.String(),
			c.DaysInArrears, c.NetExposure, c.ProvisionRequired,
		)
		if err := uc.publisher.Publish(ctx, evt); err != nil {
			result.Err = fmt.Errorf("publish events: %w", err)
			return result
		}
	}

	return result
}
