package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ingatatech/loan-management-system-backend-sub003/internal/application/dto"
	"github.com/ingatatech/loan-management-system-backend-sub003/internal/domain/event"
	"github.com/ingatatech/loan-management-system-backend-sub003/internal/domain/model"
	"github.com/ingatatech/loan-management-system-backend-sub003/internal/domain/port"
	"github.com/ingatatech/loan-management-system-backend-sub003/internal/domain/service"
)

// Block reason when another submission holds the installment lock.
const blockReasonConcurrent = "concurrent payment in progress"

// ApplyPaymentUseCase routes a payment to the right installment, applies the
// waterfall and persists the mutated row. Excess beyond the row's remaining
// total is returned to the caller rather than cascaded.
type ApplyPaymentUseCase struct {
	loanRepo        port.LoanRepository
	installmentRepo port.InstallmentRepository
	publisher       port.EventPublisher
	lock            port.PaymentAttemptLock // optional
	cooldown        time.Duration
	logger          *slog.Logger
}

// NewApplyPaymentUseCase wires dependencies. lock may be nil; cooldown is the
// duplicate-submission suppression window.
func NewApplyPaymentUseCase(
	loanRepo port.LoanRepository,
	installmentRepo port.InstallmentRepository,
	publisher port.EventPublisher,
	lock port.PaymentAttemptLock,
	cooldown time.Duration,
	logger *slog.Logger,
) *ApplyPaymentUseCase {
	return &ApplyPaymentUseCase{
		loanRepo:        loanRepo,
		installmentRepo: installmentRepo,
		publisher:       publisher,
		lock:            lock,
		cooldown:        cooldown,
		logger:          logger,
	}
}

// Execute processes one payment command.
func (uc *ApplyPaymentUseCase) Execute(
	ctx context.Context,
	req dto.ApplyPaymentRequest,
) (dto.PaymentResultResponse, error) {
	if req.Amount.LessThanOrEqual(decimal.Zero) {
		return dto.PaymentResultResponse{}, service.ErrNonPositiveAmount
	}

	paidAt := req.PaymentDate
	if paidAt.IsZero() {
		paidAt = time.Now().UTC()
	}

	loan, err := uc.loanRepo.FindByID(ctx, req.LoanID)
	if err != nil {
		return dto.PaymentResultResponse{}, fmt.Errorf("find loan: %w", err)
	}

	target, err := uc.resolveTarget(ctx, req)
	if err != nil {
		return dto.PaymentResultResponse{}, err
	}

	if uc.lock != nil {
		acquired, lockErr := uc.lock.Acquire(ctx, loan.ID, target.Number, uc.cooldown)
		if lockErr != nil {
			return dto.PaymentResultResponse{}, fmt.Errorf("acquire payment lock: %w", lockErr)
		}
		if !acquired {
			return uc.blockedResponse(ctx, loan, target, req, blockReasonConcurrent)
		}
		defer func() {
			if relErr := uc.lock.Release(ctx, loan.ID, target.Number); relErr != nil {
				uc.logger.WarnContext(ctx, "failed to release payment lock",
					"loan_id", loan.ID, "installment", target.Number, "error", relErr)
			}
		}()
	}

	updated, result, err := service.ApplyPayment(target, service.PaymentCommand{
		Amount:   req.Amount,
		PaidAt:   paidAt,
		Cooldown: uc.cooldown,
	})
	if err != nil {
		return dto.PaymentResultResponse{}, fmt.Errorf("apply payment: %w", err)
	}

	if err := uc.installmentRepo.Update(ctx, updated); err != nil {
		return dto.PaymentResultResponse{}, fmt.Errorf("save installment: %w", err)
	}

	var evt event.DomainEvent
	if result.WasBlocked {
		evt = event.NewPaymentBlocked(
			loan.ID, loan.OrganizationID, updated.Number, req.Reference,
			req.Amount, result.BlockReason, updated.AttemptCount,
		)
	} else {
		evt = event.NewPaymentApplied(
			loan.ID, loan.OrganizationID, updated.Number, req.Reference,
			result.PrincipalPaid, result.InterestPaid, result.PenaltyPaid, result.ExcessAmount,
			updated.Status.String(), updated.DelayedDays,
		)
	}
	if err := uc.publisher.Publish(ctx, evt); err != nil {
		return dto.PaymentResultResponse{}, fmt.Errorf("publish events: %w", err)
	}

	return dto.PaymentResultResponse{
		LoanID:            loan.ID,
		InstallmentNumber: updated.Number,
		PrincipalPaid:     result.PrincipalPaid,
		InterestPaid:      result.InterestPaid,
		PenaltyPaid:       result.PenaltyPaid,
		ExcessAmount:      result.ExcessAmount,
		WasBlocked:        result.WasBlocked,
		BlockReason:       result.BlockReason,
		InstallmentStatus: updated.Status.String(),
	}, nil
}

// resolveTarget picks the addressed installment, or the earliest unsettled
// row in due-date order when none is addressed.
func (uc *ApplyPaymentUseCase) resolveTarget(
	ctx context.Context,
	req dto.ApplyPaymentRequest,
) (model.Installment, error) {
	if req.InstallmentNumber > 0 {
		inst, err := uc.installmentRepo.FindByNumber(ctx, req.LoanID, req.InstallmentNumber)
		if err != nil {
			return model.Installment{}, fmt.Errorf("find installment: %w", err)
		}
		return inst, nil
	}

	ledger, err := uc.installmentRepo.FindByLoan(ctx, req.LoanID)
	if err != nil {
		return model.Installment{}, fmt.Errorf("load ledger: %w", err)
	}
	sort.Slice(ledger, func(i, j int) bool { return ledger[i].DueDate.Before(ledger[j].DueDate) })
	for _, inst := range ledger {
		if !inst.Status.IsSettled() {
			return inst, nil
		}
	}

	// Everything settled: address the last row so the guard reports it paid.
	if len(ledger) > 0 {
		return ledger[len(ledger)-1], nil
	}
	return model.Installment{}, port.ErrInstallmentNotFound
}

// blockedResponse records the attempt against the row and reports the block
// without applying money.
func (uc *ApplyPaymentUseCase) blockedResponse(
	ctx context.Context,
	loan model.Loan,
	target model.Installment,
	req dto.ApplyPaymentRequest,
	reason string,
) (dto.PaymentResultResponse, error) {
	now := time.Now().UTC()
	target.AttemptCount++
	target.LastAttemptAt = &now
	if err := uc.installmentRepo.Update(ctx, target); err != nil {
		return dto.PaymentResultResponse{}, fmt.Errorf("record blocked attempt: %w", err)
	}

	evt := event.NewPaymentBlocked(loan.ID, loan.OrganizationID, target.Number, req.Reference, req.Amount, reason, target.AttemptCount)
	if err := uc.publisher.Publish(ctx, evt); err != nil {
		return dto.PaymentResultResponse{}, fmt.Errorf("publish events: %w", err)
	}

	return dto.PaymentResultResponse{
		LoanID:            loan.ID,
		InstallmentNumber: target.Number,
		PrincipalPaid:     decimal.Zero,
		InterestPaid:      decimal.Zero,
		PenaltyPaid:       decimal.Zero,
		ExcessAmount:      decimal.Zero,
		WasBlocked:        true,
		BlockReason:       reason,
		InstallmentStatus: target.Status.String(),
	}, nil
}
