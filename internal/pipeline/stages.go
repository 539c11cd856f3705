package pipeline

import (
	"math"

	"github.com/kalambet/semplan/internal/plan"
)

// Stage names, used for error wrapping, spans and metric labels.
const (
	StageGenerate = "generate"
	StageFilter   = "filter"
	StageGroup    = "group"
	StageThemes   = "themes"
	StageBids     = "bids"
)

// Values of the synthesized ad group used when grouping yields nothing.
const (
	GeneralTermsName  = "General Terms"
	GeneralTermsTheme = "Auto-grouped keywords"

	generalTermsCPCLow    = 1.0
	generalTermsCPCHigh   = 3.0
	generalTermsTargetCPA = 50
	minGeneralClicks      = 200
	maxGeneralClicks      = 2000
	minGeneralConversions = 5
)

// Stage is the outcome of one pipeline step after its fallback rule has been
// applied.
type Stage[T any] struct {
	Value        T
	UsedFallback bool
}

// ResolveKeywords picks the keyword set used downstream of filtering. When the
// filter removed everything but raw keywords exist, the raw keywords are used.
func ResolveKeywords(raw, filtered []plan.KeywordItem) Stage[[]plan.KeywordItem] {
	if len(filtered) == 0 && len(raw) > 0 {
		return Stage[[]plan.KeywordItem]{Value: raw, UsedFallback: true}
	}
	if filtered == nil {
		filtered = []plan.KeywordItem{}
	}
	return Stage[[]plan.KeywordItem]{Value: filtered}
}

// ResolveGroups picks the ad groups. When grouping returned nothing but
// keywords exist, a single General Terms group holding all of them is used.
func ResolveGroups(keywords []plan.KeywordItem, groups []plan.AdGroup) Stage[[]plan.AdGroup] {
	if len(groups) == 0 && len(keywords) > 0 {
		return Stage[[]plan.AdGroup]{Value: []plan.AdGroup{GeneralTerms(keywords)}, UsedFallback: true}
	}
	if groups == nil {
		groups = []plan.AdGroup{}
	}
	return Stage[[]plan.AdGroup]{Value: groups}
}

// GeneralTerms synthesizes the catch-all ad group for keywords.
func GeneralTerms(keywords []plan.KeywordItem) plan.AdGroup {
	n := len(keywords)
	return plan.AdGroup{
		Name:     GeneralTermsName,
		Theme:    GeneralTermsTheme,
		Keywords: keywords,
		MatchTypes: plan.MatchTypes{
			Exact:  []string{},
			Phrase: []string{},
			BMM:    []string{},
		},
		CPCRange:             plan.CPCRange{Low: generalTermsCPCLow, High: generalTermsCPCHigh},
		EstimatedClicks:      min(maxGeneralClicks, max(minGeneralClicks, n*10)),
		EstimatedConversions: math.Max(minGeneralConversions, math.Round(float64(n)*0.2)),
		TargetCPA:            generalTermsTargetCPA,
	}
}
