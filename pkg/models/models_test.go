package models

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleSpec() RatePlanSpec {
	return RatePlanSpec{
		RatePlan: RatePlan{
			Name:             "5G 라이트35",
			MonthlyFee:       35000,
			IncludedBenefits: []string{"T멤버십 기본"},
		},
		DataAllowanceGB:   8,
		VoiceMinutes:      Unlimited,
		SMSCount:          Unlimited,
		ThrottleSpeedKbps: 400,
		TargetSegment:     SegmentGeneral,
		Channel:           ChannelBoth,
	}
}

func sampleDesign(t *testing.T) PlanDesign {
	t.Helper()
	plan, err := NewRatePlan("5GX 프라임", 89000, []string{"Netflix Standard"}, "선택약정 기준")
	require.NoError(t, err)
	benefit, err := NewBenefit("Apple", "Apple Music (Personal)", 6, 10900, "개인 요금제 기준")
	require.NoError(t, err)
	d, err := NewPlanDesign("design_fixed", "Apple", plan, benefit, 24, "", time.Date(2025, 2, 1, 9, 30, 0, 0, time.UTC), "launch bundle")
	require.NoError(t, err)
	return d
}

func TestNewPlanDesign_Defaults(t *testing.T) {
	d := sampleDesign(t)
	assert.Equal(t, DefaultDiscountType, d.DiscountType)
	assert.Equal(t, "design_fixed", d.DesignID)

	plan, _ := NewRatePlan("p", 1000, nil, "")
	benefit, _ := NewBenefit("Samsung", "Google One AI Premium", 6, 29000, "")
	generated, err := NewPlanDesign("", "Samsung", plan, benefit, 12, "", time.Time{}, "")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(generated.DesignID, "design_"))
	assert.False(t, generated.CreatedAt.IsZero())
}

func TestNewPlanDesign_RejectsNonPositiveTerm(t *testing.T) {
	plan, _ := NewRatePlan("p", 1000, nil, "")
	benefit, _ := NewBenefit("Samsung", "Google One AI Premium", 6, 29000, "")

	_, err := NewPlanDesign("", "Samsung", plan, benefit, 0, "", time.Time{}, "")
	var ve *ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Contains(t, ve.Fields(), "term_months")
}

func TestDesignRoundTrip(t *testing.T) {
	d := sampleDesign(t)

	m, err := d.ToMap()
	require.NoError(t, err)
	assert.Equal(t, "Apple", m["manufacturer"])
	assert.IsType(t, map[string]any{}, m["rate_plan"])
	assert.IsType(t, map[string]any{}, m["benefit"])

	back, err := DesignFromMap(m)
	require.NoError(t, err)
	assert.Equal(t, d, back)
}

func TestScenarioRoundTrip(t *testing.T) {
	premium := sampleSpec()
	premium.Name = "5G 프리미엄"
	premium.MonthlyFee = 89000
	s := SimulationScenario{
		ScenarioID:     "scenario_fixed",
		ScenarioType:   ScenarioBase,
		NewPlan:        sampleSpec(),
		PremiumPlan:    &premium,
		MigrationRates: map[string]float64{"5GX 슬림": 0.0432, "5GX 레귤러": 0.0246},
		WinbackRate:    0.0,
		Results: SimulationResult{
			ARPUChangePct:        -1.25,
			AnnualRevenueImpact:  -7_200_000_000,
			NewSubscribers:       30000,
			DowngradeSubscribers: 30000,
		},
		CreatedAt: time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC),
	}

	m, err := s.ToMap()
	require.NoError(t, err)
	back, err := ScenarioFromMap(m)
	require.NoError(t, err)
	assert.Equal(t, s, back)

	s.PremiumPlan = nil
	m, err = s.ToMap()
	require.NoError(t, err)
	assert.Nil(t, m["premium_plan"])
	back, err = ScenarioFromMap(m)
	require.NoError(t, err)
	assert.Equal(t, s, back)
}

func TestRatePlanSpecDefaults(t *testing.T) {
	spec, err := RatePlanSpecFromMap(map[string]any{"name": "basic", "monthly_fee": 30000})
	require.NoError(t, err)
	assert.Equal(t, SegmentGeneral, spec.TargetSegment)
	assert.Equal(t, ChannelBoth, spec.Channel)
	assert.Equal(t, []string{}, spec.IncludedBenefits)
	assert.False(t, spec.UnlimitedVoice())
}

func TestRatePlanSpecValidation(t *testing.T) {
	spec := sampleSpec()
	spec.TargetSegment = "kids"
	spec.VoiceMinutes = -5
	err := spec.Validate()

	var ve *ValidationError
	require.True(t, errors.As(err, &ve))
	assert.ElementsMatch(t, []string{"voice_minutes", "target_segment"}, ve.Fields())
}

func TestDesignInput_ReportsAllMissingFields(t *testing.T) {
	_, err := DesignInput{}.Design(time.Now())

	var ve *ValidationError
	require.True(t, errors.As(err, &ve))
	assert.ElementsMatch(t, []string{"manufacturer", "rate_plan", "benefit", "term_months"}, ve.Missing)
	assert.Contains(t, err.Error(), "manufacturer")
	assert.Contains(t, err.Error(), "term_months")
}

func TestScenarioInput_ReportsAllMissingFields(t *testing.T) {
	_, err := ScenarioInput{}.Scenario(time.Now())

	var ve *ValidationError
	require.True(t, errors.As(err, &ve))
	assert.ElementsMatch(t,
		[]string{"scenario_type", "new_plan", "migration_rates", "winback_rate", "results"},
		ve.Missing)
}

func TestScenarioInput_ZeroWinbackIsPresent(t *testing.T) {
	spec := sampleSpec()
	zero := 0.0
	in := ScenarioInput{
		ScenarioType:   ScenarioConservative,
		NewPlan:        &spec,
		MigrationRates: map[string]float64{},
		WinbackRate:    &zero,
		Results:        &SimulationResult{},
	}
	s, err := in.Scenario(time.Now())
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(s.ScenarioID, "scenario_"))
	assert.Equal(t, 0.0, s.WinbackRate)
}

func TestScenarioInput_RateOutOfRange(t *testing.T) {
	spec := sampleSpec()
	wr := 1.5
	in := ScenarioInput{
		ScenarioType:   ScenarioBase,
		NewPlan:        &spec,
		MigrationRates: map[string]float64{"a": 0.1},
		WinbackRate:    &wr,
		Results:        &SimulationResult{},
	}
	err := in.Validate()

	var ve *ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Empty(t, ve.Missing)
	assert.Equal(t, []string{"winback_rate"}, ve.Fields())
}

func TestDecodeDesignInput_UnknownKey(t *testing.T) {
	_, err := DecodeDesignInput([]byte(`{"manufacturer":"Apple","colour":"red"}`))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMalformedInput))
}

func TestDecodeDesignInput(t *testing.T) {
	in, err := DecodeDesignInput([]byte(`{
		"manufacturer": "Samsung",
		"rate_plan": {"name": "5GX 플래티넘", "monthly_fee": 93750, "included_benefits": ["Netflix Premium"]},
		"benefit": {"manufacturer": "Samsung", "name": "Google One AI Premium", "free_months": 6, "monthly_price": 29000},
		"term_months": 24
	}`))
	require.NoError(t, err)

	d, err := in.Design(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, int64(93750), d.RatePlan.MonthlyFee)
	assert.Equal(t, DefaultDiscountType, d.DiscountType)
	assert.Equal(t, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), d.CreatedAt)
}

func TestValidateCurrentPlans(t *testing.T) {
	err := ValidateCurrentPlans([]CurrentPlan{{Name: "ok", MonthlyFee: 1}, {MonthlyFee: 2}, {}})

	var ve *ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Len(t, ve.Missing, 2)
}

func TestScenarioTypeValid(t *testing.T) {
	for _, st := range ScenarioTypes {
		assert.True(t, st.Valid(), st)
	}
	assert.False(t, ScenarioType("aggressive").Valid())
}
