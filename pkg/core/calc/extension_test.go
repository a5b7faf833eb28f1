package calc

import (
	"testing"
	"time"

	"github.com/nan702ya/skt-ai-adoption-plan/pkg/models"
)

func TestCalculateExtensionCost(t *testing.T) {
	tests := []struct {
		name       string
		price      int64
		free, term int
		wantMonths int
		wantTotal  int64
	}{
		{"google one over 24 months", 29000, 6, 24, 18, 522000},
		{"apple music personal", 10900, 6, 12, 6, 65400},
		{"free period covers term", 10900, 6, 6, 0, 0},
		{"free period longer than term", 10900, 12, 6, 0, 0},
		{"no free months", 5000, 0, 3, 3, 15000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CalculateExtensionCost(tt.price, tt.free, tt.term)
			if got.ExtensionMonths != tt.wantMonths {
				t.Errorf("ExtensionMonths = %d, want %d", got.ExtensionMonths, tt.wantMonths)
			}
			if got.TotalCost != tt.wantTotal {
				t.Errorf("TotalCost = %d, want %d", got.TotalCost, tt.wantTotal)
			}
		})
	}
}

func TestDesignExtensionCost(t *testing.T) {
	plan, _ := models.NewRatePlan("5GX 플래티넘", 93750, nil, "")
	benefit, _ := models.NewBenefit("Samsung", "Google One AI Premium", 6, 29000, "")
	d, err := models.NewPlanDesign("", "Samsung", plan, benefit, 24, "", time.Now(), "")
	if err != nil {
		t.Fatalf("NewPlanDesign: %v", err)
	}

	if got := DesignExtensionCost(d); got.TotalCost != 522000 {
		t.Errorf("TotalCost = %d, want 522000", got.TotalCost)
	}
}

func TestCompareWithExisting(t *testing.T) {
	tests := []struct {
		name     string
		ext, cur int64
		want     CostComparison
	}{
		{"extension cheaper", 100, 250, CostComparison{-150, ExtensionCheaper}},
		{"existing cheaper", 300, 250, CostComparison{50, ExistingCheaper}},
		{"same", 250, 250, CostComparison{0, SameCost}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CompareWithExisting(tt.ext, tt.cur); got != tt.want {
				t.Errorf("CompareWithExisting(%d, %d) = %+v, want %+v", tt.ext, tt.cur, got, tt.want)
			}
		})
	}
}

func TestCalculateSavings(t *testing.T) {
	if got := CalculateSavings(522000, 400000); got != (Savings{122000, true}) {
		t.Errorf("got %+v", got)
	}
	if got := CalculateSavings(100, 100); got.IsSaving {
		t.Errorf("equal cost is not a saving: %+v", got)
	}
	if got := CalculateSavings(100, 150); got.Savings != -50 || got.IsSaving {
		t.Errorf("got %+v", got)
	}
}
