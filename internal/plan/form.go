package plan

import (
	"math"
	"strconv"
	"strings"
)

// Form defaults as shown to a user before they type anything.
const (
	DefaultConversionRate  = "2.0"
	DefaultMinSearchVolume = "500"
)

// FormInput is the raw, string-typed planner form. Numbers are kept as text
// until Request converts them.
type FormInput struct {
	BrandURL              string `json:"brandUrl"`
	CompetitorURL         string `json:"competitorUrl"`
	SeedKeywords          string `json:"seedKeywords"`
	ServiceLocations      string `json:"serviceLocations"`
	SearchBudget          string `json:"searchBudget"`
	ShoppingBudget        string `json:"shoppingBudget"`
	PMaxBudget            string `json:"pmaxBudget"`
	ConversionRate        string `json:"conversionRate"`
	MinSearchVolume       string `json:"minSearchVolume"`
	IncludeSemanticSearch bool   `json:"includeSemanticSearch"`
	IncludeAIOverviews    bool   `json:"includeAIOverviews"`
}

// DefaultForm returns a form populated with the default conversion rate and
// minimum search volume.
func DefaultForm() FormInput {
	return FormInput{
		ConversionRate:  DefaultConversionRate,
		MinSearchVolume: DefaultMinSearchVolume,
	}
}

// ValidationError lists required form fields that were left empty.
type ValidationError struct {
	Missing []string
}

func (e *ValidationError) Error() string {
	return "missing required fields: " + strings.Join(e.Missing, ", ")
}

// Validate checks that both URL fields are present.
func (f FormInput) Validate() error {
	var missing []string
	if strings.TrimSpace(f.BrandURL) == "" {
		missing = append(missing, "brandUrl")
	}
	if strings.TrimSpace(f.CompetitorURL) == "" {
		missing = append(missing, "competitorUrl")
	}
	if len(missing) > 0 {
		return &ValidationError{Missing: missing}
	}
	return nil
}

// Request validates the form and converts it into a PlanRequest. Numeric
// fields that do not parse become 0.
func (f FormInput) Request() (PlanRequest, error) {
	if err := f.Validate(); err != nil {
		return PlanRequest{}, err
	}
	return PlanRequest{
		BrandURL:      strings.TrimSpace(f.BrandURL),
		CompetitorURL: strings.TrimSpace(f.CompetitorURL),
		SeedKeywords:  SplitList(f.SeedKeywords),
		Locations:     SplitList(f.ServiceLocations),
		Budgets: Budgets{
			Search:   parseNumber(f.SearchBudget),
			Shopping: parseNumber(f.ShoppingBudget),
			PMax:     parseNumber(f.PMaxBudget),
		},
		ConversionRatePercent: parseNumber(f.ConversionRate),
		MinSearchVolume:       parseNumber(f.MinSearchVolume),
		IncludeSemanticSearch: f.IncludeSemanticSearch,
		IncludeAIOverviews:    f.IncludeAIOverviews,
	}, nil
}

// SplitList splits comma-separated text into trimmed, non-empty entries.
// Empty input yields an empty, non-nil slice.
func SplitList(s string) []string {
	out := []string{}
	for part := range strings.SplitSeq(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// parseNumber reads a form number; anything unparsable or non-finite is 0.
func parseNumber(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
