package models

import "time"

// Benefit is a promotional subscription bundled with a device or plan,
// e.g. a number of free months of a streaming service.
type Benefit struct {
	Manufacturer string `json:"manufacturer" yaml:"manufacturer" validate:"required"`
	Name         string `json:"name" yaml:"name" validate:"required"`
	FreeMonths   int    `json:"free_months" yaml:"free_months" validate:"gte=0"`
	MonthlyPrice int64  `json:"monthly_price" yaml:"monthly_price" validate:"gte=0"`
	Notes        string `json:"notes,omitempty" yaml:"notes"`
}

// NewBenefit builds a validated Benefit.
func NewBenefit(manufacturer, name string, freeMonths int, monthlyPrice int64, notes string) (Benefit, error) {
	b := Benefit{
		Manufacturer: manufacturer,
		Name:         name,
		FreeMonths:   freeMonths,
		MonthlyPrice: monthlyPrice,
		Notes:        notes,
	}
	if err := b.Validate(); err != nil {
		return Benefit{}, err
	}
	return b, nil
}

func (b Benefit) Validate() error {
	return validateStruct("benefit", b)
}

func (b Benefit) ToMap() (map[string]any, error) {
	return toMap(b)
}

// BenefitFromMap is the inverse of Benefit.ToMap.
func BenefitFromMap(m map[string]any) (Benefit, error) {
	var b Benefit
	if err := fromMap(m, &b); err != nil {
		return Benefit{}, err
	}
	if err := b.Validate(); err != nil {
		return Benefit{}, err
	}
	return b, nil
}

// Provenance describes where an acquired record came from. It is carried
// along but never validated.
type Provenance struct {
	SourceURL   string    `json:"source_url"`
	SourceTitle string    `json:"source_title,omitempty"`
	FetchStatus string    `json:"fetch_status"`
	DataSource  string    `json:"data_source"`
	FetchedAt   time.Time `json:"fetched_at"`
}

// BenefitRecord is a benefit as returned by the benefit acquisition step.
type BenefitRecord struct {
	Benefit
	Provenance
}

// PlanRecord is an operator rate plan as returned by the acquisition step.
type PlanRecord struct {
	RatePlan
	Provenance
}
