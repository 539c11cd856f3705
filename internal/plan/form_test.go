package plan

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestSplitList(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", []string{}},
		{"   ", []string{}},
		{"running shoes", []string{"running shoes"}},
		{" a, b ,,c ,", []string{"a", "b", "c"}},
		{",,,", []string{}},
	}
	for _, tt := range tests {
		got := SplitList(tt.in)
		if got == nil {
			t.Errorf("SplitList(%q) = nil, want non-nil", tt.in)
		}
		if diff := cmp.Diff(tt.want, got); diff != "" {
			t.Errorf("SplitList(%q) mismatch (-want +got):\n%s", tt.in, diff)
		}
	}
}

func TestValidate_MissingURLs(t *testing.T) {
	f := DefaultForm()
	f.BrandURL = "  "

	err := f.Validate()
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("Validate() = %v, want *ValidationError", err)
	}
	if diff := cmp.Diff([]string{"brandUrl", "competitorUrl"}, verr.Missing); diff != "" {
		t.Errorf("missing fields mismatch (-want +got):\n%s", diff)
	}
}

func TestValidate_OnlyCompetitorMissing(t *testing.T) {
	f := FormInput{BrandURL: "https://brand.com"}
	var verr *ValidationError
	if !errors.As(f.Validate(), &verr) {
		t.Fatal("expected validation error")
	}
	if len(verr.Missing) != 1 || verr.Missing[0] != "competitorUrl" {
		t.Errorf("Missing = %v, want [competitorUrl]", verr.Missing)
	}
}

func TestRequest(t *testing.T) {
	f := FormInput{
		BrandURL:         " https://brand.com ",
		CompetitorURL:    "https://rival.com",
		SeedKeywords:     "running shoes, trail shoes",
		ServiceLocations: "Austin",
		SearchBudget:     "500",
		ShoppingBudget:   "300.5",
		PMaxBudget:       "abc",
		ConversionRate:   "2.5",
		MinSearchVolume:  "",
	}

	req, err := f.Request()
	if err != nil {
		t.Fatalf("Request: %v", err)
	}

	want := PlanRequest{
		BrandURL:              "https://brand.com",
		CompetitorURL:         "https://rival.com",
		SeedKeywords:          []string{"running shoes", "trail shoes"},
		Locations:             []string{"Austin"},
		Budgets:               Budgets{Search: 500, Shopping: 300.5, PMax: 0},
		ConversionRatePercent: 2.5,
		MinSearchVolume:       0,
	}
	if diff := cmp.Diff(want, req); diff != "" {
		t.Errorf("Request mismatch (-want +got):\n%s", diff)
	}
	if got := req.ConversionRate(); got != 0.025 {
		t.Errorf("ConversionRate() = %v, want 0.025", got)
	}
	if got := req.Budgets.Total(); got != 800.5 {
		t.Errorf("Budgets.Total() = %v, want 800.5", got)
	}
}

func TestRequest_NonFiniteNumbersBecomeZero(t *testing.T) {
	f := FormInput{
		BrandURL:        "https://brand.com",
		CompetitorURL:   "https://rival.com",
		SearchBudget:    "Inf",
		ShoppingBudget:  "-Infinity",
		PMaxBudget:      "100",
		ConversionRate:  "NaN",
		MinSearchVolume: "NaN",
	}

	req, err := f.Request()
	if err != nil {
		t.Fatalf("Request: %v", err)
	}
	if diff := cmp.Diff(Budgets{PMax: 100}, req.Budgets); diff != "" {
		t.Errorf("Budgets mismatch (-want +got):\n%s", diff)
	}
	if req.MinSearchVolume != 0 || req.ConversionRatePercent != 0 {
		t.Errorf("MinSearchVolume = %v, ConversionRatePercent = %v, want 0 and 0",
			req.MinSearchVolume, req.ConversionRatePercent)
	}
}

func TestRequest_ValidationErrorLeavesZeroRequest(t *testing.T) {
	req, err := FormInput{CompetitorURL: "x"}.Request()
	if err == nil {
		t.Fatal("expected error")
	}
	if req.CompetitorURL != "" {
		t.Errorf("CompetitorURL = %q, want empty on error", req.CompetitorURL)
	}
}

func TestKeywordItem_CompetitionLabel(t *testing.T) {
	if got := (KeywordItem{}).CompetitionLabel(); got != CompetitionUnknown {
		t.Errorf("CompetitionLabel() = %q, want %q", got, CompetitionUnknown)
	}
	if got := (KeywordItem{Competition: "High"}).CompetitionLabel(); got != "High" {
		t.Errorf("CompetitionLabel() = %q, want High", got)
	}
}
