package valueobject

import (
	"fmt"
	"time"
)

// ---------------------------------------------------------------------------
// InterestMethod – immutable value object
// ---------------------------------------------------------------------------

// InterestMethod selects how due interest is computed across the schedule.
type InterestMethod struct {
	value string
}

const (
	interestMethodFlat            = "FLAT"
	interestMethodReducingBalance = "REDUCING_BALANCE"
)

var (
	InterestMethodFlat            = InterestMethod{value: interestMethodFlat}
	InterestMethodReducingBalance = InterestMethod{value: interestMethodReducingBalance}
)

var validInterestMethods = map[string]InterestMethod{
	interestMethodFlat:            InterestMethodFlat,
	interestMethodReducingBalance: InterestMethodReducingBalance,
}

// NewInterestMethod creates an InterestMethod from a raw string.
func NewInterestMethod(s string) (InterestMethod, error) {
	v, ok := validInterestMethods[s]
	if !ok {
		return InterestMethod{}, fmt.Errorf("invalid interest method: %q", s)
	}
	return v, nil
}

// String returns the string representation of the method.
func (m InterestMethod) String() string { return m.value }

// IsZero returns true if the method has not been initialised.
func (m InterestMethod) IsZero() bool { return m.value == "" }

// Equal returns true when both methods carry the same value.
func (m InterestMethod) Equal(other InterestMethod) bool { return m.value == other.value }

// ---------------------------------------------------------------------------
// RepaymentFrequency – immutable value object
// ---------------------------------------------------------------------------

// RepaymentFrequency is the cadence of installments, expressed internally as
// periods per year.
type RepaymentFrequency struct {
	value          string
	periodsPerYear int
}

const (
	frequencyWeekly    = "WEEKLY"
	frequencyBiweekly  = "BIWEEKLY"
	frequencyMonthly   = "MONTHLY"
	frequencyQuarterly = "QUARTERLY"
)

var (
	FrequencyWeekly    = RepaymentFrequency{value: frequencyWeekly, periodsPerYear: 52}
	FrequencyBiweekly  = RepaymentFrequency{value: frequencyBiweekly, periodsPerYear: 26}
	FrequencyMonthly   = RepaymentFrequency{value: frequencyMonthly, periodsPerYear: 12}
	FrequencyQuarterly = RepaymentFrequency{value: frequencyQuarterly, periodsPerYear: 4}
)

var validFrequencies = map[string]RepaymentFrequency{
	frequencyWeekly:    FrequencyWeekly,
	frequencyBiweekly:  FrequencyBiweekly,
	frequencyMonthly:   FrequencyMonthly,
	frequencyQuarterly: FrequencyQuarterly,
}

// NewRepaymentFrequency creates a RepaymentFrequency from a raw string.
func NewRepaymentFrequency(s string) (RepaymentFrequency, error) {
	v, ok := validFrequencies[s]
	if !ok {
		return RepaymentFrequency{}, fmt.Errorf("invalid repayment frequency: %q", s)
	}
	return v, nil
}

// String returns the string representation of the frequency.
func (f RepaymentFrequency) String() string { return f.value }

// IsZero returns true if the frequency has not been initialised.
func (f RepaymentFrequency) IsZero() bool { return f.value == "" }

// Equal returns true when both frequencies carry the same value.
func (f RepaymentFrequency) Equal(other RepaymentFrequency) bool { return f.value == other.value }

// PeriodsPerYear returns the number of installment periods in a year.
func (f RepaymentFrequency) PeriodsPerYear() int { return f.periodsPerYear }

// Advance moves a date forward by the given number of periods. Monthly and
// quarterly cadences step by calendar months so due dates stay on the same
// day-of-month where possible.
func (f RepaymentFrequency) Advance(from time.Time, periods int) time.Time {
	switch f.value {
	case frequencyWeekly:
		return from.AddDate(0, 0, 7*periods)
	case frequencyBiweekly:
		return from.AddDate(0, 0, 14*periods)
	case frequencyQuarterly:
		return from.AddDate(0, 3*periods, 0)
	default:
		return from.AddDate(0, periods, 0)
	}
}

// ---------------------------------------------------------------------------
// RecalculationStrategy – immutable value object
// ---------------------------------------------------------------------------

// RecalculationStrategy selects how the remaining schedule tail is rebuilt.
type RecalculationStrategy struct {
	value string
}

const (
	strategyReduceInstallment = "REDUCE_INSTALLMENT"
	strategyReduceTerm        = "REDUCE_TERM"
)

var (
	StrategyReduceInstallment = RecalculationStrategy{value: strategyReduceInstallment}
	StrategyReduceTerm        = RecalculationStrategy{value: strategyReduceTerm}
)

var validStrategies = map[string]RecalculationStrategy{
	strategyReduceInstallment: StrategyReduceInstallment,
	strategyReduceTerm:        StrategyReduceTerm,
}

// NewRecalculationStrategy creates a RecalculationStrategy from a raw string.
func NewRecalculationStrategy(s string) (RecalculationStrategy, error) {
	v, ok := validStrategies[s]
	if !ok {
		return RecalculationStrategy{}, fmt.Errorf("invalid recalculation strategy: %q", s)
	}
	return v, nil
}

// String returns the string representation of the strategy.
func (s RecalculationStrategy) String() string { return s.value }

// IsZero returns true if the strategy has not been initialised.
func (s RecalculationStrategy) IsZero() bool { return s.value == "" }

// Equal returns true when both strategies carry the same value.
func (s RecalculationStrategy) Equal(other RecalculationStrategy) bool { return s.value == other.value }
