package service_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ingatatech/loan-management-system-backend-sub003/internal/domain/model"
	"github.com/ingatatech/loan-management-system-backend-sub003/internal/domain/service"
	"github.com/ingatatech/loan-management-system-backend-sub003/internal/domain/valueobject"
)

func testRates() map[string]decimal.Decimal {
	return map[string]decimal.Decimal{
		"NORMAL":      decimal.RequireFromString("0.01"),
		"WATCH":       decimal.RequireFromString("0.05"),
		"SUBSTANDARD": decimal.RequireFromString("0.25"),
		"DOUBTFUL":    decimal.RequireFromString("0.5"),
		"LOSS":        decimal.NewFromInt(1),
	}
}

func TestClassify_BandBoundaries(t *testing.T) {
	cases := []struct {
		days int
		want valueobject.RiskCategory
	}{
		{0, valueobject.RiskCategoryNormal},
		{30, valueobject.RiskCategoryNormal},
		{31, valueobject.RiskCategoryWatch},
		{90, valueobject.RiskCategoryWatch},
		{91, valueobject.RiskCategorySubstandard},
		{95, valueobject.RiskCategorySubstandard},
		{180, valueobject.RiskCategorySubstandard},
		{181, valueobject.RiskCategoryDoubtful},
		{365, valueobject.RiskCategoryDoubtful},
		{366, valueobject.RiskCategoryLoss},
		{1000, valueobject.RiskCategoryLoss},
	}
	for _, tc := range cases {
		got := service.Classify(tc.days)
		assert.True(t, got.Equal(tc.want), "%d days: got %s, want %s", tc.days, got, tc.want)
	}
}

func TestNewProvisionPolicy(t *testing.T) {
	t.Run("complete table", func(t *testing.T) {
		_, err := service.NewProvisionPolicy(testRates())
		require.NoError(t, err)
	})

	t.Run("missing category", func(t *testing.T) {
		rates := testRates()
		delete(rates, "DOUBTFUL")
		_, err := service.NewProvisionPolicy(rates)
		assert.ErrorContains(t, err, "DOUBTFUL")
	})

	t.Run("rate out of range", func(t *testing.T) {
		rates := testRates()
		rates["LOSS"] = decimal.RequireFromString("1.5")
		_, err := service.NewProvisionPolicy(rates)
		assert.ErrorContains(t, err, "LOSS")
	})
}

func TestNetExposure_ExcludesSettledRows(t *testing.T) {
	ledger := []model.Installment{
		{
			Status:               valueobject.InstallmentStatusPaid,
			FullyPaid:            true,
			OutstandingPrincipal: decimal.Zero,
			OutstandingInterest:  decimal.Zero,
		},
		{
			Status:               valueobject.InstallmentStatusOverdue,
			OutstandingPrincipal: decimal.NewFromInt(100),
			OutstandingInterest:  decimal.NewFromInt(12),
			PenaltyDue:           decimal.RequireFromString("2.50"),
		},
		{
			Status:               valueobject.InstallmentStatusPending,
			OutstandingPrincipal: decimal.NewFromInt(100),
			OutstandingInterest:  decimal.NewFromInt(12),
		},
	}

	assert.True(t, service.NetExposure(ledger).Equal(decimal.RequireFromString("226.50")))
}

func TestClassifyLoan(t *testing.T) {
	policy, err := service.NewProvisionPolicy(testRates())
	require.NoError(t, err)

	ledger := []model.Installment{
		{
			Status:               valueobject.InstallmentStatusOverdue,
			DaysOverdue:          95,
			OutstandingPrincipal: decimal.NewFromInt(100),
			OutstandingInterest:  decimal.NewFromInt(12),
		},
		{
			Status:               valueobject.InstallmentStatusOverdue,
			DaysOverdue:          64,
			OutstandingPrincipal: decimal.NewFromInt(100),
			OutstandingInterest:  decimal.NewFromInt(12),
		},
		{
			Status:               valueobject.InstallmentStatusPending,
			OutstandingPrincipal: decimal.NewFromInt(100),
			OutstandingInterest:  decimal.NewFromInt(12),
		},
	}

	got := service.ClassifyLoan(ledger, policy)

	// The worst row drives the category.
	assert.Equal(t, 95, got.DaysInArrears)
	assert.True(t, got.Category.Equal(valueobject.RiskCategorySubstandard))
	assert.True(t, got.ProvisionRate.Equal(decimal.RequireFromString("0.25")))
	assert.True(t, got.NetExposure.Equal(decimal.NewFromInt(336)))
	assert.True(t, got.ProvisionRequired.Equal(decimal.NewFromInt(84)), "provision %s", got.ProvisionRequired)
}

func TestClassifyLoan_CleanLedgerIsNormal(t *testing.T) {
	policy, err := service.NewProvisionPolicy(testRates())
	require.NoError(t, err)

	got := service.ClassifyLoan([]model.Installment{
		{Status: valueobject.InstallmentStatusPending, OutstandingPrincipal: decimal.NewFromInt(100)},
	}, policy)

	assert.True(t, got.Category.Equal(valueobject.RiskCategoryNormal))
	assert.Equal(t, 0, got.DaysInArrears)
}
