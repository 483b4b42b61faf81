package valueobject

import "fmt"

// ---------------------------------------------------------------------------
// InstallmentStatus – immutable value object
// ---------------------------------------------------------------------------

// InstallmentStatus represents the repayment state of a single schedule row.
type InstallmentStatus struct {
	value string
}

const (
	installmentStatusPending    = "PENDING"
	installmentStatusPartial    = "PARTIAL"
	installmentStatusOverdue    = "OVERDUE"
	installmentStatusPaid       = "PAID"
	installmentStatusWrittenOff = "WRITTEN_OFF"
)

var (
	InstallmentStatusPending    = InstallmentStatus{value: installmentStatusPending}
	InstallmentStatusPartial    = InstallmentStatus{value: installmentStatusPartial}
	InstallmentStatusOverdue    = InstallmentStatus{value: installmentStatusOverdue}
	InstallmentStatusPaid       = InstallmentStatus{value: installmentStatusPaid}
	InstallmentStatusWrittenOff = InstallmentStatus{value: installmentStatusWrittenOff}
)

var validInstallmentStatuses = map[string]InstallmentStatus{
	installmentStatusPending:    InstallmentStatusPending,
	installmentStatusPartial:    InstallmentStatusPartial,
	installmentStatusOverdue:    InstallmentStatusOverdue,
	installmentStatusPaid:       InstallmentStatusPaid,
	installmentStatusWrittenOff: InstallmentStatusWrittenOff,
}

// NewInstallmentStatus creates an InstallmentStatus from a raw string.
func NewInstallmentStatus(s string) (InstallmentStatus, error) {
	v, ok := validInstallmentStatuses[s]
	if !ok {
		return InstallmentStatus{}, fmt.Errorf("invalid installment status: %q", s)
	}
	return v, nil
}

// String returns the string representation of the status.
func (s InstallmentStatus) String() string { return s.value }

// IsZero returns true if the status has not been initialised.
func (s InstallmentStatus) IsZero() bool { return s.value == "" }

// Equal returns true when both statuses carry the same value.
func (s InstallmentStatus) Equal(other InstallmentStatus) bool { return s.value == other.value }

// IsSettled returns true for terminal states that accept no further payments.
func (s InstallmentStatus) IsSettled() bool {
	return s.value == installmentStatusPaid || s.value == installmentStatusWrittenOff
}
