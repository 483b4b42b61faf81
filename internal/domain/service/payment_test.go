package service_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ingatatech/loan-management-system-backend-sub003/internal/domain/model"
	"github.com/ingatatech/loan-management-system-backend-sub003/internal/domain/service"
	"github.com/ingatatech/loan-management-system-backend-sub003/internal/domain/valueobject"
)

// openInstallment is a pending row of 100 principal + 12 interest due on
// 2025-02-15.
func openInstallment() model.Installment {
	due := time.Date(2025, 2, 15, 0, 0, 0, 0, time.UTC)
	return model.Installment{
		LoanID:               "loan-001",
		Number:               1,
		DueDate:              due,
		DuePrincipal:         decimal.NewFromInt(100),
		DueInterest:          decimal.NewFromInt(12),
		DueTotal:             decimal.NewFromInt(112),
		OutstandingPrincipal: decimal.NewFromInt(100),
		OutstandingInterest:  decimal.NewFromInt(12),
		Status:               valueobject.InstallmentStatusPending,
		Version:              1,
	}
}

func pay(amount string, at time.Time) service.PaymentCommand {
	return service.PaymentCommand{
		Amount: decimal.RequireFromString(amount),
		PaidAt: at,
	}
}

func TestApplyPayment_ExactAmountSettlesRow(t *testing.T) {
	inst := openInstallment()
	paidAt := inst.DueDate.AddDate(0, 0, -1)

	updated, result, err := service.ApplyPayment(inst, pay("112", paidAt))
	require.NoError(t, err)

	assert.False(t, result.WasBlocked)
	assert.True(t, result.InterestPaid.Equal(decimal.NewFromInt(12)))
	assert.True(t, result.PrincipalPaid.Equal(decimal.NewFromInt(100)))
	assert.True(t, result.ExcessAmount.IsZero())

	assert.True(t, updated.FullyPaid)
	assert.True(t, updated.Status.Equal(valueobject.InstallmentStatusPaid))
	require.NotNil(t, updated.PaidAt)
	assert.Equal(t, paidAt, *updated.PaidAt)
	assert.Equal(t, 0, updated.DelayedDays, "early payment carries no delay")
	assert.Equal(t, 0, updated.DaysOverdue)
	assert.Equal(t, 1, updated.AttemptCount)
}

func TestApplyPayment_LatePaymentFreezesDelayedDays(t *testing.T) {
	inst := openInstallment()
	inst.Status = valueobject.InstallmentStatusOverdue
	inst.DaysOverdue = 9
	paidAt := inst.DueDate.AddDate(0, 0, 9)

	updated, _, err := service.ApplyPayment(inst, pay("112", paidAt))
	require.NoError(t, err)

	assert.True(t, updated.FullyPaid)
	assert.Equal(t, 9, updated.DelayedDays)
	assert.Equal(t, 0, updated.DaysOverdue, "overdue counter resets once settled")
}

func TestApplyPayment_PartialWaterfallInterestFirst(t *testing.T) {
	inst := openInstallment()
	paidAt := inst.DueDate.AddDate(0, 0, -2)

	updated, result, err := service.ApplyPayment(inst, pay("50", paidAt))
	require.NoError(t, err)

	// 50 covers the 12 interest in full, the remaining 38 hits principal.
	assert.True(t, result.InterestPaid.Equal(decimal.NewFromInt(12)))
	assert.True(t, result.PrincipalPaid.Equal(decimal.NewFromInt(38)))
	assert.True(t, result.ExcessAmount.IsZero())

	assert.True(t, updated.OutstandingInterest.IsZero())
	assert.True(t, updated.OutstandingPrincipal.Equal(decimal.NewFromInt(62)))
	assert.True(t, updated.PaidTotal.Equal(decimal.NewFromInt(50)))
	assert.True(t, updated.Status.Equal(valueobject.InstallmentStatusPartial))
	assert.False(t, updated.FullyPaid)
}

func TestApplyPayment_PenaltyBeforeInterest(t *testing.T) {
	inst := openInstallment()
	inst.PenaltyDue = decimal.RequireFromString("5.50")
	paidAt := inst.DueDate.AddDate(0, 0, 3)

	_, result, err := service.ApplyPayment(inst, pay("10", paidAt))
	require.NoError(t, err)

	assert.True(t, result.PenaltyPaid.Equal(decimal.RequireFromString("5.50")))
	assert.True(t, result.InterestPaid.Equal(decimal.RequireFromString("4.50")))
	assert.True(t, result.PrincipalPaid.IsZero())
}

func TestApplyPayment_ExcessReturnedNotAbsorbed(t *testing.T) {
	inst := openInstallment()
	paidAt := inst.DueDate

	updated, result, err := service.ApplyPayment(inst, pay("150", paidAt))
	require.NoError(t, err)

	assert.True(t, result.ExcessAmount.Equal(decimal.NewFromInt(38)), "excess %s", result.ExcessAmount)
	assert.True(t, updated.FullyPaid)
	assert.True(t, updated.PaidTotal.Equal(decimal.NewFromInt(112)), "row never records more than its due total")
}

func TestApplyPayment_DuplicateOnPaidRowIsBlocked(t *testing.T) {
	inst := openInstallment()
	paidAt := inst.DueDate

	paid, _, err := service.ApplyPayment(inst, pay("112", paidAt))
	require.NoError(t, err)

	blocked, result, err := service.ApplyPayment(paid, pay("112", paidAt.Add(time.Hour)))
	require.NoError(t, err, "a blocked attempt is not an error")

	assert.True(t, result.WasBlocked)
	assert.Equal(t, service.BlockReasonAlreadyPaid, result.BlockReason)
	assert.True(t, result.PrincipalPaid.IsZero())

	// Money is untouched; only the attempt audit fields move.
	assert.True(t, blocked.PaidTotal.Equal(paid.PaidTotal))
	assert.Equal(t, paid.AttemptCount+1, blocked.AttemptCount)
	require.NotNil(t, blocked.LastAttemptAt)
}

func TestApplyPayment_CooldownSuppressesRapidRetry(t *testing.T) {
	inst := openInstallment()
	first := inst.DueDate.Add(10 * time.Hour)

	cmd := pay("50", first)
	cmd.Cooldown = 30 * time.Second
	partial, _, err := service.ApplyPayment(inst, cmd)
	require.NoError(t, err)

	retry := pay("50", first.Add(5*time.Second))
	retry.Cooldown = 30 * time.Second
	_, result, err := service.ApplyPayment(partial, retry)
	require.NoError(t, err)
	assert.True(t, result.WasBlocked)
	assert.Equal(t, service.BlockReasonCooldown, result.BlockReason)

	// Outside the window the retry lands normally.
	later := pay("62", first.Add(time.Minute))
	later.Cooldown = 30 * time.Second
	settled, result, err := service.ApplyPayment(partial, later)
	require.NoError(t, err)
	assert.False(t, result.WasBlocked)
	assert.True(t, settled.FullyPaid)
}

func TestApplyPayment_WrittenOffRowIsBlocked(t *testing.T) {
	inst := openInstallment()
	inst.Status = valueobject.InstallmentStatusWrittenOff

	_, result, err := service.ApplyPayment(inst, pay("112", inst.DueDate))
	require.NoError(t, err)
	assert.True(t, result.WasBlocked)
	assert.Equal(t, service.BlockReasonWrittenOff, result.BlockReason)
}

func TestApplyPayment_NonPositiveAmount(t *testing.T) {
	inst := openInstallment()

	_, _, err := service.ApplyPayment(inst, pay("0", inst.DueDate))
	assert.ErrorIs(t, err, service.ErrNonPositiveAmount)

	_, _, err = service.ApplyPayment(inst, pay("-5", inst.DueDate))
	assert.ErrorIs(t, err, service.ErrNonPositiveAmount)
}

func TestDeriveStatus(t *testing.T) {
	due := time.Date(2025, 2, 15, 0, 0, 0, 0, time.UTC)
	total := decimal.NewFromInt(112)

	cases := []struct {
		name string
		paid string
		asOf time.Time
		want valueobject.InstallmentStatus
	}{
		{"unpaid before due date", "0", due.AddDate(0, 0, -1), valueobject.InstallmentStatusPending},
		{"unpaid after due date", "0", due.AddDate(0, 0, 1), valueobject.InstallmentStatusOverdue},
		{"partially paid", "50", due.AddDate(0, 0, 1), valueobject.InstallmentStatusPartial},
		{"fully paid", "112", due.AddDate(0, 0, 5), valueobject.InstallmentStatusPaid},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := service.DeriveStatus(decimal.RequireFromString(tc.paid), total, due, tc.asOf)
			assert.True(t, got.Equal(tc.want), "got %s", got)
		})
	}
}
