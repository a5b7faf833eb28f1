package models

import (
	"bytes"
	"fmt"
	"time"

	"github.com/goccy/go-json"
)

// DefaultDiscountType is the contract-discount label used when a design does
// not name one.
const DefaultDiscountType = "선택약정"

// PlanDesign bundles a rate plan with a promotional benefit for a contract
// term. Designs are persisted by the store and identified by DesignID.
type PlanDesign struct {
	DesignID     string    `json:"design_id" validate:"required"`
	Manufacturer string    `json:"manufacturer" validate:"required"`
	RatePlan     RatePlan  `json:"rate_plan"`
	Benefit      Benefit   `json:"benefit"`
	TermMonths   int       `json:"term_months" validate:"gt=0"`
	DiscountType string    `json:"discount_type" validate:"required"`
	CreatedAt    time.Time `json:"created_at" validate:"required"`
	Memo         string    `json:"memo,omitempty"`
}

// NewPlanDesign builds a validated design. An empty id gets a fresh one, an
// empty discount type gets DefaultDiscountType and a zero createdAt becomes
// the current time.
func NewPlanDesign(id, manufacturer string, plan RatePlan, benefit Benefit, termMonths int, discountType string, createdAt time.Time, memo string) (PlanDesign, error) {
	if id == "" {
		id = NewDesignID()
	}
	if discountType == "" {
		discountType = DefaultDiscountType
	}
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	d := PlanDesign{
		DesignID:     id,
		Manufacturer: manufacturer,
		RatePlan:     plan.normalized(),
		Benefit:      benefit,
		TermMonths:   termMonths,
		DiscountType: discountType,
		CreatedAt:    createdAt.UTC(),
		Memo:         memo,
	}
	if err := d.Validate(); err != nil {
		return PlanDesign{}, err
	}
	return d, nil
}

func (d PlanDesign) Validate() error {
	return validateStruct("design", d)
}

// ToMap returns the serialized (dict-of-dicts) form used for reports and
// cross-boundary exchange.
func (d PlanDesign) ToMap() (map[string]any, error) {
	return toMap(d)
}

// DesignFromMap is the inverse of PlanDesign.ToMap.
func DesignFromMap(m map[string]any) (PlanDesign, error) {
	var d PlanDesign
	if err := fromMap(m, &d); err != nil {
		return PlanDesign{}, err
	}
	d.RatePlan = d.RatePlan.normalized()
	d.CreatedAt = d.CreatedAt.UTC()
	if err := d.Validate(); err != nil {
		return PlanDesign{}, err
	}
	return d, nil
}

// DesignInput is what callers hand to the design store. Required fields are
// pointers or checked for presence so a single validation pass can report
// every missing one.
type DesignInput struct {
	DesignID     string     `json:"design_id,omitempty"`
	Manufacturer string     `json:"manufacturer" validate:"required"`
	RatePlan     *RatePlan  `json:"rate_plan" validate:"required"`
	Benefit      *Benefit   `json:"benefit" validate:"required"`
	TermMonths   int        `json:"term_months" validate:"required,gt=0"`
	DiscountType string     `json:"discount_type,omitempty"`
	CreatedAt    *time.Time `json:"created_at,omitempty"`
	Memo         string     `json:"memo,omitempty"`
}

func (in DesignInput) Validate() error {
	return validateStruct("design", in)
}

// Design validates the input and turns it into a PlanDesign, assigning an
// identifier and defaults where the input left them empty.
func (in DesignInput) Design(now time.Time) (PlanDesign, error) {
	if err := in.Validate(); err != nil {
		return PlanDesign{}, err
	}
	createdAt := now
	if in.CreatedAt != nil && !in.CreatedAt.IsZero() {
		createdAt = *in.CreatedAt
	}
	return NewPlanDesign(in.DesignID, in.Manufacturer, *in.RatePlan, *in.Benefit, in.TermMonths, in.DiscountType, createdAt, in.Memo)
}

// DecodeDesignInput decodes a JSON document into a DesignInput. Unknown keys
// are rejected.
func DecodeDesignInput(data []byte) (DesignInput, error) {
	var in DesignInput
	if err := decodeStrict(data, &in); err != nil {
		return DesignInput{}, err
	}
	return in, nil
}

func decodeStrict(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedInput, err)
	}
	return nil
}
