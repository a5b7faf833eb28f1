package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nan702ya/skt-ai-adoption-plan/pkg/core/calc"
)

func TestRun(t *testing.T) {
	data := CostData{
		MonthlyPrice:   29000,
		FreeMonths:     6,
		TermMonths:     24,
		ExtensionTotal: 522000,
		ExistingTotal:  600000,
		ProposedTotal:  522000,
	}

	tests := []struct {
		mode string
		want any
	}{
		{"extension", calc.ExtensionCost{ExtensionMonths: 18, TotalCost: 522000}},
		{"compare", calc.CostComparison{Difference: -78000, Result: calc.ExtensionCheaper}},
		{"savings", calc.Savings{Savings: 78000, IsSaving: true}},
	}
	for _, tt := range tests {
		t.Run(tt.mode, func(t *testing.T) {
			got, err := run(tt.mode, data)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRun_UnknownMode(t *testing.T) {
	_, err := run("calculate", CostData{})
	assert.ErrorContains(t, err, "unknown mode")
}

func TestParseData(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want CostData
	}{
		{"json", `{"monthly_price": 29000, "free_months": 6, "term_months": 24}`, CostData{MonthlyPrice: 29000, FreeMonths: 6, TermMonths: 24}},
		{"hjson", `{monthly_price: 10900, term_months: 12}`, CostData{MonthlyPrice: 10900, TermMonths: 12}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseData(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := parseData(`{monthly_price: "lots"}`)
	assert.Error(t, err)
}
