package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/ingatatech/loan-management-system-backend-sub003/internal/application/dto"
	"github.com/ingatatech/loan-management-system-backend-sub003/internal/domain/event"
	"github.com/ingatatech/loan-management-system-backend-sub003/internal/domain/port"
	"github.com/ingatatech/loan-management-system-backend-sub003/internal/domain/service"
	"github.com/ingatatech/loan-management-system-backend-sub003/internal/domain/valueobject"
)

// RecalculateScheduleUseCase rebuilds the unpaid future tail of a ledger
// after a prepayment or restructuring. Any error leaves the ledger unchanged.
type RecalculateScheduleUseCase struct {
	loanRepo        port.LoanRepository
	installmentRepo port.InstallmentRepository
	publisher       port.EventPublisher
}

// NewRecalculateScheduleUseCase wires dependencies.
func NewRecalculateScheduleUseCase(
	loanRepo port.LoanRepository,
	installmentRepo port.InstallmentRepository,
	publisher port.EventPublisher,
) *RecalculateScheduleUseCase {
	return &RecalculateScheduleUseCase{
		loanRepo:        loanRepo,
		installmentRepo: installmentRepo,
		publisher:       publisher,
	}
}

// Execute runs one recalculation and persists the replacement tail.
func (uc *RecalculateScheduleUseCase) Execute(
	ctx context.Context,
	req dto.RecalculateRequest,
) (dto.ScheduleResponse, error) {
	strategy, err := valueobject.NewRecalculationStrategy(req.Strategy)
	if err != nil {
		return dto.ScheduleResponse{}, err
	}

	asOf := req.AsOf
	if asOf.IsZero() {
		asOf = time.Now().UTC()
	}

	loan, err := uc.loanRepo.FindByID(ctx, req.LoanID)
	if err != nil {
		return dto.ScheduleResponse{}, fmt.Errorf("find loan: %w", err)
	}

	ledger, err := uc.installmentRepo.FindByLoan(ctx, req.LoanID)
	if err != nil {
		return dto.ScheduleResponse{}, fmt.Errorf("load ledger: %w", err)
	}

	tail, err := service.Recalculate(service.RecalculationInput{
		Loan:               loan,
		Ledger:             ledger,
		Strategy:           strategy,
		PrincipalReduction: req.PrincipalReduction,
		AsOf:               asOf,
	})
	if err != nil {
		return dto.ScheduleResponse{}, fmt.Errorf("recalculate: %w", err)
	}

	replacedFrom := tail[0].Number
	replacedCount := 0
	for _, inst := range ledger {
		if inst.Number >= replacedFrom && !inst.Status.IsSettled() &&
			!inst.PaidTotal.IsPositive() && !inst.PenaltyPaid.IsPositive() {
			replacedCount++
		}
	}

	if err := uc.installmentRepo.ReplaceTail(ctx, loan.ID, replacedFrom, tail); err != nil {
		return dto.ScheduleResponse{}, fmt.Errorf("replace tail: %w", err)
	}

	remaining := tail[0].DuePrincipal
	for _, inst := range tail[1:] {
		remaining = remaining.Add(inst.DuePrincipal)
	}
	evt := event.NewScheduleRecalculated(
		loan.ID, loan.OrganizationID, strategy.String(),
		replacedCount, len(tail), remaining,
	)
	if err := uc.publisher.Publish(ctx, evt); err != nil {
		return dto.ScheduleResponse{}, fmt.Errorf("publish events: %w", err)
	}

	return toScheduleResponse(loan.ID, tail), nil
}
