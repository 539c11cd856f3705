// Package analytics derives aggregate metrics, keyword insights and a
// shopping plan from an already generated campaign plan. Every function here
// is pure: the same inputs always yield the same output.
package analytics

import "github.com/kalambet/semplan/internal/plan"

// Derive computes the analytics view over themes, groups and budget.
//
//   - impressions are summed over themes
//   - clicks and conversions are summed over ad groups
//   - spend is the budget total
//   - CTR, CPC and CPA are 0 when their denominator is 0
//
// Per-keyword, per-campaign and audience breakdowns are returned empty.
func Derive(themes []plan.PMaxTheme, groups []plan.AdGroup, budget plan.BudgetPlan) plan.Analytics {
	var impressions, clicks int
	var conversions float64
	for _, t := range themes {
		impressions += t.EstimatedImpressions
	}
	for _, g := range groups {
		clicks += g.EstimatedClicks
		conversions += g.EstimatedConversions
	}
	spend := budget.TotalBudget

	return plan.Analytics{
		TotalImpressions: impressions,
		TotalClicks:      clicks,
		TotalConversions: conversions,
		TotalSpend:       spend,
		AverageCTR:       safeDiv(float64(clicks), float64(impressions)),
		AverageCPC:       safeDiv(spend, float64(clicks)),
		AverageCPA:       safeDiv(spend, conversions),
		ROAS:             budget.OverallROAS,
		ConversionRate:   budget.ConversionRate,
		Trends: plan.Trends{
			Impressions: impressions,
			Clicks:      clicks,
			Conversions: conversions,
			Spend:       spend,
		},
		TopPerformingKeywords: []plan.KeywordPerformance{},
		CampaignPerformance:   []plan.CampaignPerformance{},
		AudienceInsights: plan.AudienceInsights{
			TopLocations: []plan.AudienceSegment{},
			TopDevices:   []plan.AudienceSegment{},
			TopTimeSlots: []plan.AudienceSegment{},
		},
	}
}

// ForSession derives analytics for a session.
func ForSession(s plan.Session) plan.Analytics {
	return Derive(s.Themes, s.AdGroups, s.Budget)
}

func safeDiv(a, b float64) float64 {
	if b == 0 {
		return 0
	}
	return a / b
}
