package usecase_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ingatatech/loan-management-system-backend-sub003/internal/application/dto"
	"github.com/ingatatech/loan-management-system-backend-sub003/internal/application/usecase"
	"github.com/ingatatech/loan-management-system-backend-sub003/internal/domain/model"
	"github.com/ingatatech/loan-management-system-backend-sub003/internal/domain/port"
	"github.com/ingatatech/loan-management-system-backend-sub003/internal/domain/service"
)

func TestClassifyLoanUseCase_Execute(t *testing.T) {
	policy, err := service.NewProvisionPolicy(testProvisionRates())
	require.NoError(t, err)

	loan := activeLoan()
	ledger := twelveRowLedger(2)
	ledger[2].DaysOverdue = 95

	loanRepo := &mockLoanRepository{
		findByIDFunc: func(_ context.Context, _ string) (model.Loan, error) { return loan, nil },
	}
	instRepo := &mockInstallmentRepository{
		findByLoanFunc: func(_ context.Context, _ string) ([]model.Installment, error) { return ledger, nil },
	}

	uc := usecase.NewClassifyLoanUseCase(loanRepo, instRepo, policy)
	resp, err := uc.Execute(context.Background(), dto.ClassifyRequest{LoanID: "loan-001"})
	require.NoError(t, err)

	assert.Equal(t, "SUBSTANDARD", resp.Category)
	assert.Equal(t, 95, resp.DaysInArrears)
	assert.True(t, resp.ProvisionRate.Equal(decimal.RequireFromString("0.25")))

	// Ten unsettled rows of 112 each.
	assert.True(t, resp.NetExposure.Equal(decimal.NewFromInt(1120)), "exposure %s", resp.NetExposure)
	assert.True(t, resp.ProvisionRequired.Equal(decimal.NewFromInt(280)), "provision %s", resp.ProvisionRequired)
}

func TestClassifyLoanUseCase_UnknownLoan(t *testing.T) {
	policy, err := service.NewProvisionPolicy(testProvisionRates())
	require.NoError(t, err)

	uc := usecase.NewClassifyLoanUseCase(&mockLoanRepository{}, &mockInstallmentRepository{}, policy)
	_, err = uc.Execute(context.Background(), dto.ClassifyRequest{LoanID: "missing"})
	assert.ErrorIs(t, err, port.ErrLoanNotFound)
}
