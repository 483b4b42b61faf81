package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ingatatech/loan-management-system-backend-sub003/internal/application/usecase"
	"github.com/ingatatech/loan-management-system-backend-sub003/internal/domain/model"
	"github.com/ingatatech/loan-management-system-backend-sub003/internal/domain/service"
	"github.com/ingatatech/loan-management-system-backend-sub003/internal/domain/valueobject"
)

func refreshUseCase(
	loanRepo *mockLoanRepository,
	instRepo *mockInstallmentRepository,
	publisher *mockEventPublisher,
	t *testing.T,
) *usecase.RefreshClassificationsUseCase {
	t.Helper()
	policy, err := service.NewProvisionPolicy(testProvisionRates())
	require.NoError(t, err)
	return usecase.NewRefreshClassificationsUseCase(loanRepo, instRepo, publisher, policy, discardLogger())
}

func TestRefreshClassifications_ReclassifiesAndPublishes(t *testing.T) {
	loan := activeLoan() // currently NORMAL

	ledger := twelveRowLedger(2)
	ledger[2].Status = valueobject.InstallmentStatusOverdue
	ledger[2].DaysOverdue = 95

	loanRepo := &mockLoanRepository{
		findOpenLoanIDsFunc: func(_ context.Context) ([]string, error) { return []string{"loan-001"}, nil },
		findByIDFunc:        func(_ context.Context, _ string) (model.Loan, error) { return loan, nil },
	}
	instRepo := &mockInstallmentRepository{
		findByLoanFunc: func(_ context.Context, _ string) ([]model.Installment, error) { return ledger, nil },
	}
	publisher := &mockEventPublisher{}
	uc := refreshUseCase(loanRepo, instRepo, publisher, t)

	report, err := uc.Execute(context.Background(), time.Now().UTC())
	require.NoError(t, err)

	assert.Equal(t, 1, report.Processed)
	assert.Equal(t, 1, report.Changed)
	require.Len(t, report.Results, 1)
	assert.Equal(t, "NORMAL", report.Results[0].PreviousCategory)
	assert.Equal(t, "SUBSTANDARD", report.Results[0].Category)

	require.Len(t, loanRepo.saved, 1)
	assert.True(t, loanRepo.saved[0].RiskCategory.Equal(valueobject.RiskCategorySubstandard))
	assert.Equal(t, 95, loanRepo.saved[0].DaysInArrears)

	require.Len(t, publisher.published, 1)
	assert.Equal(t, "servicing.loan.reclassified", publisher.published[0].EventType())
}

func TestRefreshClassifications_NoChangeNoWrite(t *testing.T) {
	loan := activeLoan() // NORMAL with a clean ledger stays put

	loanRepo := &mockLoanRepository{
		findOpenLoanIDsFunc: func(_ context.Context) ([]string, error) { return []string{"loan-001"}, nil },
		findByIDFunc:        func(_ context.Context, _ string) (model.Loan, error) { return loan, nil },
	}
	instRepo := &mockInstallmentRepository{
		findByLoanFunc: func(_ context.Context, _ string) ([]model.Installment, error) {
			return twelveRowLedger(2), nil
		},
	}
	publisher := &mockEventPublisher{}
	uc := refreshUseCase(loanRepo, instRepo, publisher, t)

	report, err := uc.Execute(context.Background(), time.Now().UTC())
	require.NoError(t, err)

	assert.Equal(t, 0, report.Changed)
	assert.Empty(t, loanRepo.saved)
	assert.Empty(t, publisher.published)
}

func TestRefreshClassifications_FailureIsolatedPerLoan(t *testing.T) {
	loan := activeLoan()
	loanRepo := &mockLoanRepository{
		findOpenLoanIDsFunc: func(_ context.Context) ([]string, error) {
			return []string{"loan-bad", "loan-001"}, nil
		},
		findByIDFunc: func(_ context.Context, id string) (model.Loan, error) {
			if id == "loan-bad" {
				return model.Loan{}, errStorageOffline
			}
			return loan, nil
		},
	}
	instRepo := &mockInstallmentRepository{
		findByLoanFunc: func(_ context.Context, _ string) ([]model.Installment, error) {
			return twelveRowLedger(2), nil
		},
	}
	uc := refreshUseCase(loanRepo, instRepo, &mockEventPublisher{}, t)

	report, err := uc.Execute(context.Background(), time.Now().UTC())
	require.NoError(t, err)

	assert.Equal(t, 2, report.Processed)
	assert.Equal(t, 1, report.Failed)
	assert.NotEmpty(t, report.Results[0].ErrorMessage)
	assert.Empty(t, report.Results[1].ErrorMessage)
}

var errStorageOffline = errors.New("storage offline")
