package models

// =============================================================================
// RATE PLANS
// =============================================================================

// Segment is the customer segment a rate plan is aimed at.
type Segment string

const (
	SegmentGeneral Segment = "general"
	SegmentYouth   Segment = "youth"
	SegmentSenior  Segment = "senior"
)

// Channel is where a rate plan can be signed up for.
type Channel string

const (
	ChannelOnline  Channel = "online"
	ChannelOffline Channel = "offline"
	ChannelBoth    Channel = "both"
)

// Unlimited is the sentinel for unlimited voice minutes / SMS.
const Unlimited = -1

// RatePlan is a subscription rate plan as sold to customers.
type RatePlan struct {
	Name             string   `json:"name" yaml:"name" validate:"required"`
	MonthlyFee       int64    `json:"monthly_fee" yaml:"monthly_fee" validate:"gte=0"`
	IncludedBenefits []string `json:"included_benefits" yaml:"included_benefits"`
	Notes            string   `json:"notes,omitempty" yaml:"notes"`
}

// NewRatePlan builds a validated RatePlan. The benefit list is copied.
func NewRatePlan(name string, monthlyFee int64, benefits []string, notes string) (RatePlan, error) {
	p := RatePlan{
		Name:             name,
		MonthlyFee:       monthlyFee,
		IncludedBenefits: append([]string{}, benefits...),
		Notes:            notes,
	}
	if err := p.Validate(); err != nil {
		return RatePlan{}, err
	}
	return p, nil
}

// Validate checks the plan fields.
func (p RatePlan) Validate() error {
	return validateStruct("rate_plan", p)
}

// ToMap returns the plain structured form of the plan.
func (p RatePlan) ToMap() (map[string]any, error) {
	return toMap(p.normalized())
}

// RatePlanFromMap is the inverse of RatePlan.ToMap.
func RatePlanFromMap(m map[string]any) (RatePlan, error) {
	var p RatePlan
	if err := fromMap(m, &p); err != nil {
		return RatePlan{}, err
	}
	p = p.normalized()
	if err := p.Validate(); err != nil {
		return RatePlan{}, err
	}
	return p, nil
}

func (p RatePlan) normalized() RatePlan {
	if p.IncludedBenefits == nil {
		p.IncludedBenefits = []string{}
	}
	return p
}

// RatePlanSpec is a rate plan with its network allowances. New plans under
// evaluation are always described this way. VoiceMinutes and SMSCount use
// Unlimited (-1) for no cap; ThrottleSpeedKbps is the speed once the data
// allowance is used up.
type RatePlanSpec struct {
	RatePlan `yaml:",inline"`

	DataAllowanceGB   float64 `json:"data_allowance_gb" yaml:"data_allowance_gb" validate:"gte=0"`
	VoiceMinutes      int     `json:"voice_minutes" yaml:"voice_minutes" validate:"gte=-1"`
	SMSCount          int     `json:"sms_count" yaml:"sms_count" validate:"gte=-1"`
	ThrottleSpeedKbps int     `json:"throttle_speed_kbps" yaml:"throttle_speed_kbps" validate:"gte=0"`
	TargetSegment     Segment `json:"target_segment" yaml:"target_segment" validate:"omitempty,oneof=general youth senior"`
	Channel           Channel `json:"channel" yaml:"channel" validate:"omitempty,oneof=online offline both"`
}

// Normalize fills in the defaults for optional fields: general segment,
// both channels, and an empty (non-nil) benefit list.
func (s RatePlanSpec) Normalize() RatePlanSpec {
	s.RatePlan = s.RatePlan.normalized()
	if s.TargetSegment == "" {
		s.TargetSegment = SegmentGeneral
	}
	if s.Channel == "" {
		s.Channel = ChannelBoth
	}
	return s
}

// Clone returns a copy that shares no slices with s.
func (s RatePlanSpec) Clone() RatePlanSpec {
	if s.IncludedBenefits != nil {
		s.IncludedBenefits = append([]string(nil), s.IncludedBenefits...)
	}
	return s
}

// Validate checks the allowances and the embedded plan fields.
func (s RatePlanSpec) Validate() error {
	return validateStruct("rate_plan_spec", s)
}

// UnlimitedVoice reports whether voice minutes are unlimited.
func (s RatePlanSpec) UnlimitedVoice() bool { return s.VoiceMinutes == Unlimited }

// UnlimitedSMS reports whether SMS are unlimited.
func (s RatePlanSpec) UnlimitedSMS() bool { return s.SMSCount == Unlimited }

func (s RatePlanSpec) ToMap() (map[string]any, error) {
	return toMap(s.Normalize())
}

// RatePlanSpecFromMap is the inverse of RatePlanSpec.ToMap.
func RatePlanSpecFromMap(m map[string]any) (RatePlanSpec, error) {
	var s RatePlanSpec
	if err := fromMap(m, &s); err != nil {
		return RatePlanSpec{}, err
	}
	s = s.Normalize()
	if err := s.Validate(); err != nil {
		return RatePlanSpec{}, err
	}
	return s, nil
}

// CurrentPlan is one row of the existing plan line-up as produced by the
// spreadsheet ingestion. Subscribers <= 0 means the count is unknown.
type CurrentPlan struct {
	Name            string  `json:"name" yaml:"name" validate:"required"`
	MonthlyFee      int64   `json:"monthly_fee" yaml:"monthly_fee"`
	Subscribers     int64   `json:"subscribers,omitempty" yaml:"subscribers"`
	ARPU            float64 `json:"arpu,omitempty" yaml:"arpu"`
	DataAllowanceGB float64 `json:"data_allowance_gb,omitempty" yaml:"data_allowance_gb"`
}

// HasSubscribers reports whether the plan carries an explicit subscriber count.
func (p CurrentPlan) HasSubscribers() bool { return p.Subscribers > 0 }

// ValidateCurrentPlans checks every row and reports all offending rows at once.
func ValidateCurrentPlans(plans []CurrentPlan) error {
	return validateStruct("current_plans", struct {
		Plans []CurrentPlan `json:"current_plans" validate:"dive"`
	}{plans})
}
