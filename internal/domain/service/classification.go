package service

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/ingatatech/loan-management-system-backend-sub003/internal/domain/model"
	"github.com/ingatatech/loan-management-system-backend-sub003/internal/domain/valueobject"
)

// ---------------------------------------------------------------------------
// Risk classification and provisioning
// ---------------------------------------------------------------------------

// classificationBand maps an inclusive upper bound on days in arrears to a
// category. Bands are checked in order; anything past the last bound is LOSS.
type classificationBand struct {
	maxDays  int
	category valueobject.RiskCategory
}

var classificationBands = []classificationBand{
	{maxDays: 30, category: valueobject.RiskCategoryNormal},
	{maxDays: 90, category: valueobject.RiskCategoryWatch},
	{maxDays: 180, category: valueobject.RiskCategorySubstandard},
	{maxDays: 365, category: valueobject.RiskCategoryDoubtful},
}

// Classify maps days in arrears to the regulatory risk category.
func Classify(daysInArrears int) valueobject.RiskCategory {
	for _, band := range classificationBands {
		if daysInArrears <= band.maxDays {
			return band.category
		}
	}
	return valueobject.RiskCategoryLoss
}

// ProvisionPolicy is the percentage-per-category table. The rates are
// regulatory policy supplied through configuration, not baked into the
// engine.
type ProvisionPolicy struct {
	rates map[string]decimal.Decimal
}

// NewProvisionPolicy builds a policy from category-name -> fractional rate.
// All five categories must be present.
func NewProvisionPolicy(rates map[string]decimal.Decimal) (ProvisionPolicy, error) {
	required := []valueobject.RiskCategory{
		valueobject.RiskCategoryNormal,
		valueobject.RiskCategoryWatch,
		valueobject.RiskCategorySubstandard,
		valueobject.RiskCategoryDoubtful,
		valueobject.RiskCategoryLoss,
	}
	normalized := make(map[string]decimal.Decimal, len(required))
	for _, cat := range required {
		rate, ok := rates[cat.String()]
		if !ok {
			return ProvisionPolicy{}, fmt.Errorf("provision policy missing rate for %s", cat)
		}
		if rate.IsNegative() || rate.GreaterThan(decimal.NewFromInt(1)) {
			return ProvisionPolicy{}, fmt.Errorf("provision rate for %s must be within [0,1], got %s", cat, rate)
		}
		normalized[cat.String()] = rate
	}
	return ProvisionPolicy{rates: normalized}, nil
}

// Rate returns the fractional provisioning rate for a category.
func (p ProvisionPolicy) Rate(category valueobject.RiskCategory) decimal.Decimal {
	return p.rates[category.String()]
}

// NetExposure is the amount at risk across the ledger: outstanding principal
// and interest plus unsettled penalty on all unsettled rows. Collateral
// offsets belong to the upstream policy layer and are not modelled here.
func NetExposure(ledger []model.Installment) decimal.Decimal {
	exposure := decimal.Zero
	for _, inst := range ledger {
		if inst.Status.IsSettled() {
			continue
		}
		exposure = exposure.
			Add(inst.OutstandingPrincipal).
			Add(inst.OutstandingInterest).
			Add(inst.PenaltyOutstanding())
	}
	return exposure.Round(2)
}

// Classification is the derived risk picture for one loan.
type Classification struct {
	Category          valueobject.RiskCategory
	DaysInArrears     int
	ProvisionRate     decimal.Decimal
	NetExposure       decimal.Decimal
	ProvisionRequired decimal.Decimal
}

// ClassifyLoan derives the full classification from a loan's ledger. The
// loan-level delinquency figure is the worst (maximum) days overdue across
// installments.
func ClassifyLoan(ledger []model.Installment, policy ProvisionPolicy) Classification {
	days := WorstDaysInArrears(ledger)
	category := Classify(days)
	rate := policy.Rate(category)
	exposure := NetExposure(ledger)

	return Classification{
		Category:          category,
		DaysInArrears:     days,
		ProvisionRate:     rate,
		NetExposure:       exposure,
		ProvisionRequired: exposure.Mul(rate).Round(2),
	}
}
