package valueobject

import "fmt"

// ---------------------------------------------------------------------------
// RiskCategory – immutable value object
// ---------------------------------------------------------------------------

// RiskCategory is the regulatory risk tier derived from a loan's delinquency.
type RiskCategory struct {
	value string
	rank  int
}

const (
	riskCategoryNormal      = "NORMAL"
	riskCategoryWatch       = "WATCH"
	riskCategorySubstandard = "SUBSTANDARD"
	riskCategoryDoubtful    = "DOUBTFUL"
	riskCategoryLoss        = "LOSS"
)

var (
	RiskCategoryNormal      = RiskCategory{value: riskCategoryNormal, rank: 0}
	RiskCategoryWatch       = RiskCategory{value: riskCategoryWatch, rank: 1}
	RiskCategorySubstandard = RiskCategory{value: riskCategorySubstandard, rank: 2}
	RiskCategoryDoubtful    = RiskCategory{value: riskCategoryDoubtful, rank: 3}
	RiskCategoryLoss        = RiskCategory{value: riskCategoryLoss, rank: 4}
)

var validRiskCategories = map[string]RiskCategory{
	riskCategoryNormal:      RiskCategoryNormal,
	riskCategoryWatch:       RiskCategoryWatch,
	riskCategorySubstandard: RiskCategorySubstandard,
	riskCategoryDoubtful:    RiskCategoryDoubtful,
	riskCategoryLoss:        RiskCategoryLoss,
}

// NewRiskCategory creates a RiskCategory from a raw string.
func NewRiskCategory(s string) (RiskCategory, error) {
	v, ok := validRiskCategories[s]
	if !ok {
		return RiskCategory{}, fmt.Errorf("invalid risk category: %q", s)
	}
	return v, nil
}

// String returns the string representation of the category.
func (c RiskCategory) String() string { return c.value }

// IsZero returns true if the category has not been initialised.
func (c RiskCategory) IsZero() bool { return c.value == "" }

// Equal returns true when both categories carry the same value.
func (c RiskCategory) Equal(other RiskCategory) bool { return c.value == other.value }

// WorseThan returns true when c represents a higher delinquency tier than other.
func (c RiskCategory) WorseThan(other RiskCategory) bool { return c.rank > other.rank }
