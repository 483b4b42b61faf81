package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ingatatech/loan-management-system-backend-sub003/internal/application/dto"
	"github.com/ingatatech/loan-management-system-backend-sub003/internal/domain/event"
	"github.com/ingatatech/loan-management-system-backend-sub003/internal/domain/model"
	"github.com/ingatatech/loan-management-system-backend-sub003/internal/domain/port"
	"github.com/ingatatech/loan-management-system-backend-sub003/internal/domain/service"
	"github.com/ingatatech/loan-management-system-backend-sub003/internal/domain/valueobject"
)

// RunArrearsSweepUseCase is the recurring delinquency sweep. It processes one
// loan per transaction: a failure on one loan is recorded in the report and
// never aborts or rolls back the rest of the batch.
type RunArrearsSweepUseCase struct {
	loanRepo        port.LoanRepository
	installmentRepo port.InstallmentRepository
	publisher       port.EventPublisher
	policy          service.ArrearsPolicy
	logger          *slog.Logger
}

// NewRunArrearsSweepUseCase wires dependencies.
func NewRunArrearsSweepUseCase(
	loanRepo port.LoanRepository,
	installmentRepo port.InstallmentRepository,
	publisher port.EventPublisher,
	policy service.ArrearsPolicy,
	logger *slog.Logger,
) *RunArrearsSweepUseCase {
	return &RunArrearsSweepUseCase{
		loanRepo:        loanRepo,
		installmentRepo: installmentRepo,
		publisher:       publisher,
		policy:          policy,
		logger:          logger,
	}
}

// Execute sweeps every open loan as of the given time.
func (uc *RunArrearsSweepUseCase) Execute(ctx context.Context, asOf time.Time) (dto.SweepReport, error) {
	loanIDs, err := uc.loanRepo.FindOpenLoanIDs(ctx)
	if err != nil {
		return dto.SweepReport{}, fmt.Errorf("list open loans: %w", err)
	}

	report := dto.SweepReport{
		AsOf:    asOf,
		Results: make([]dto.LoanSweepResult, 0, len(loanIDs)),
	}

	for _, loanID := range loanIDs {
		result := uc.sweepLoan(ctx, loanID, asOf)
		if result.Err != nil {
			result.ErrorMessage = result.Err.Error()
			report.Failed++
			uc.logger.WarnContext(ctx, "arrears sweep failed for loan",
				"loan_id", loanID, "error", result.Err)
		}
		report.Processed++
		report.Results = append(report.Results, result)
	}

	return report, nil
}

// sweepLoan recomputes delinquency for one loan's ledger and persists the
// changed rows in a single transaction.
func (uc *RunArrearsSweepUseCase) sweepLoan(ctx context.Context, loanID string, asOf time.Time) dto.LoanSweepResult {
	result := dto.LoanSweepResult{LoanID: loanID}

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

	var (
		updates []model.Installment
		events  []event.DomainEvent
	)
	for _, inst := range ledger {
		updated := service.UpdateArrears(inst, asOf, uc.policy)
		if updated.DaysOverdue == inst.DaysOverdue &&
			updated.Status.Equal(inst.Status) &&
			updated.PenaltyDue.Equal(inst.PenaltyDue) {
			continue
		}
		updates = append(updates, updated)

		if !inst.Status.Equal(valueobject.InstallmentStatusOverdue) &&
			updated.Status.Equal(valueobject.InstallmentStatusOverdue) {
			result.NewlyOverdue++
			events = append(events, event.NewInstallmentOverdue(
				loan.ID, loan.OrganizationID, updated.Number, updated.DaysOverdue,
				updated.OutstandingPrincipal, updated.OutstandingInterest,
			))
		}
	}

	if len(updates) > 0 {
		if err := uc.installmentRepo.UpdateAll(ctx, updates); err != nil {
			result.Err = fmt.Errorf("save ledger: %w", err)
			return result
		}
	}

	// Refresh the view of the ledger for loan-level rollups.
	for i := range ledger {
		ledger[i] = service.UpdateArrears(ledger[i], asOf, uc.policy)
	}
	result.UpdatedRows = len(updates)
	result.WorstDays = service.WorstDaysInArrears(ledger)

	newStatus := service.DeriveLoanStatus(loan.Status, ledger)
	if !newStatus.Equal(loan.Status) {
		loan.Status = newStatus
		loan.DaysInArrears = result.WorstDays
		loan.UpdatedAt = asOf
		if err := uc.loanRepo.Save(ctx, loan); err != nil {
			result.Err = fmt.Errorf("save loan: %w", err)
			return result
		}
	}
	result.LoanStatus = newStatus.String()

	if len(events) > 0 {
		if err := uc.publisher.Publish(ctx, events...); err != nil {
			result.Err = fmt.Errorf("publish events: %w", err)
			return result
		}
	}

	return result
}
