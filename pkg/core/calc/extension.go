// Package calc prices benefit extensions: what it costs to keep a bundled
// subscription running after its free months for the rest of the contract.
package calc

import "github.com/nan702ya/skt-ai-adoption-plan/pkg/models"

// =============================================================================
// EXTENSION COST
// =============================================================================

// ExtensionCost is the cost of paying for a benefit after its free period.
type ExtensionCost struct {
	ExtensionMonths int   `json:"extension_months"`
	TotalCost       int64 `json:"total_cost"`
}

// CalculateExtensionCost returns the paid months left in the term (never
// negative) and their total price.
func CalculateExtensionCost(monthlyPrice int64, freeMonths, termMonths int) ExtensionCost {
	months := termMonths - freeMonths
	if months < 0 {
		months = 0
	}
	return ExtensionCost{
		ExtensionMonths: months,
		TotalCost:       monthlyPrice * int64(months),
	}
}

// DesignExtensionCost prices the benefit of a design over its contract term.
func DesignExtensionCost(d models.PlanDesign) ExtensionCost {
	return CalculateExtensionCost(d.Benefit.MonthlyPrice, d.Benefit.FreeMonths, d.TermMonths)
}

// =============================================================================
// COMPARISON
// =============================================================================

// Outcome of comparing an extension against an existing bundle.
type Outcome string

const (
	ExtensionCheaper Outcome = "extension_cheaper"
	ExistingCheaper  Outcome = "existing_cheaper"
	SameCost         Outcome = "same_cost"
)

// CostComparison is extension total minus existing total.
type CostComparison struct {
	Difference int64   `json:"difference"`
	Result     Outcome `json:"result"`
}

// CompareWithExisting compares the total cost of an extension with the
// total cost of an existing bundled plan.
func CompareWithExisting(extensionTotal, existingTotal int64) CostComparison {
	diff := extensionTotal - existingTotal
	result := SameCost
	switch {
	case diff < 0:
		result = ExtensionCheaper
	case diff > 0:
		result = ExistingCheaper
	}
	return CostComparison{Difference: diff, Result: result}
}

// Savings is existing total minus proposed total.
type Savings struct {
	Savings  int64 `json:"savings"`
	IsSaving bool  `json:"is_saving"`
}

// CalculateSavings returns how much the proposal saves over the existing
// cost. A negative amount means the proposal costs more.
func CalculateSavings(existingTotal, proposedTotal int64) Savings {
	s := existingTotal - proposedTotal
	return Savings{Savings: s, IsSaving: s > 0}
}
