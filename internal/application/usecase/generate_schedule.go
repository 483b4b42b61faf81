package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/ingatatech/loan-management-system-backend-sub003/internal/application/dto"
	"github.com/ingatatech/loan-management-system-backend-sub003/internal/domain/event"
	"github.com/ingatatech/loan-management-system-backend-sub003/internal/domain/model"
	"github.com/ingatatech/loan-management-system-backend-sub003/internal/domain/port"
	"github.com/ingatatech/loan-management-system-backend-sub003/internal/domain/service"
)

// GenerateScheduleUseCase builds and persists a loan's full installment
// ledger at disbursement.
type GenerateScheduleUseCase struct {
	loanRepo        port.LoanRepository
	installmentRepo port.InstallmentRepository
	publisher       port.EventPublisher
}

// NewGenerateScheduleUseCase wires dependencies.
func NewGenerateScheduleUseCase(
	loanRepo port.LoanRepository,
	installmentRepo port.InstallmentRepository,
	publisher port.EventPublisher,
) *GenerateScheduleUseCase {
	return &GenerateScheduleUseCase{
		loanRepo:        loanRepo,
		installmentRepo: installmentRepo,
		publisher:       publisher,
	}
}

// Execute generates the ledger from the loan's stored terms and saves it
// atomically.
func (uc *GenerateScheduleUseCase) Execute(
	ctx context.Context,
	req dto.GenerateScheduleRequest,
) (dto.ScheduleResponse, error) {
	now := time.Now().UTC()

	loan, err := uc.loanRepo.FindByID(ctx, req.LoanID)
	if err != nil {
		return dto.ScheduleResponse{}, fmt.Errorf("find loan: %w", err)
	}

	rows, err := service.GenerateSchedule(loan.ID, service.TermsFromLoan(loan), now)
	if err != nil {
		return dto.ScheduleResponse{}, fmt.Errorf("generate schedule: %w", err)
	}

	if err := uc.installmentRepo.SaveSchedule(ctx, rows); err != nil {
		return dto.ScheduleResponse{}, fmt.Errorf("save schedule: %w", err)
	}

	evt := event.NewScheduleGenerated(
		loan.ID, loan.OrganizationID,
		loan.Principal, loan.Method.String(),
		len(rows), rows[0].DueDate, rows[len(rows)-1].DueDate,
	)
	if err := uc.publisher.Publish(ctx, evt); err != nil {
		return dto.ScheduleResponse{}, fmt.Errorf("publish events: %w", err)
	}

	return toScheduleResponse(loan.ID, rows), nil
}

// toScheduleResponse maps ledger rows into their external representation.
func toScheduleResponse(loanID string, rows []model.Installment) dto.ScheduleResponse {
	out := dto.ScheduleResponse{
		LoanID:       loanID,
		Installments: make([]dto.InstallmentResponse, 0, len(rows)),
	}
	for _, r := range rows {
		out.Installments = append(out.Installments, dto.InstallmentResponse{
			LoanID:               r.LoanID,
			Number:               r.Number,
			DueDate:              r.DueDate,
			DuePrincipal:         r.DuePrincipal,
			DueInterest:          r.DueInterest,
			DueTotal:             r.DueTotal,
			PaidPrincipal:        r.PaidPrincipal,
			PaidInterest:         r.PaidInterest,
			PaidTotal:            r.PaidTotal,
			OutstandingPrincipal: r.OutstandingPrincipal,
			OutstandingInterest:  r.OutstandingInterest,
			PenaltyDue:           r.PenaltyDue,
			Status:               r.Status.String(),
			FullyPaid:            r.FullyPaid,
			PaidAt:               r.PaidAt,
			DaysOverdue:          r.DaysOverdue,
			DelayedDays:          r.DelayedDays,
		})
	}
	return out
}
