package usecase

import (
	"context"
	"fmt"

	"github.com/ingatatech/loan-management-system-backend-sub003/internal/application/dto"
	"github.com/ingatatech/loan-management-system-backend-sub003/internal/domain/port"
	"github.com/ingatatech/loan-management-system-backend-sub003/internal/domain/service"
)

// ClassifyLoanUseCase derives a loan's regulatory risk category and the
// provision it requires.
type ClassifyLoanUseCase struct {
	loanRepo        port.LoanRepository
	installmentRepo port.InstallmentRepository
	policy          service.ProvisionPolicy
}

// NewClassifyLoanUseCase wires dependencies.
func NewClassifyLoanUseCase(
	loanRepo port.LoanRepository,
	installmentRepo port.InstallmentRepository,
	policy service.ProvisionPolicy,
) *ClassifyLoanUseCase {
	return &ClassifyLoanUseCase{
		loanRepo:        loanRepo,
		installmentRepo: installmentRepo,
		policy:          policy,
	}
}

// Execute classifies one loan from its current ledger state.
func (uc *ClassifyLoanUseCase) Execute(
	ctx context.Context,
	req dto.ClassifyRequest,
) (dto.ClassificationResponse, error) {
	loan, err := uc.loanRepo.FindByID(ctx, req.LoanID)
	if err != nil {
		return dto.ClassificationResponse{}, fmt.Errorf("find loan: %w", err)
	}

	ledger, err := uc.installmentRepo.FindByLoan(ctx, req.LoanID)
	if err != nil {
		return dto.ClassificationResponse{}, fmt.Errorf("load ledger: %w", err)
	}

	c := service.ClassifyLoan(ledger, uc.policy)

	return dto.ClassificationResponse{
		LoanID:            loan.ID,
		Category:          c.Category.String(),
		DaysInArrears:     c.DaysInArrears,
		ProvisionRate:     c.ProvisionRate,
		NetExposure:       c.NetExposure,
		ProvisionRequired: c.ProvisionRequired,
	}, nil
}
