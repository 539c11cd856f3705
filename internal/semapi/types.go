package semapi

import "github.com/kalambet/semplan/internal/plan"

// KeywordRequest is the body of POST /api/v1/generate_keywords.
type KeywordRequest struct {
	SeedKeywords          []string `json:"seed_keywords"`
	BrandURL              string   `json:"brand_url,omitempty"`
	CompetitorURL         string   `json:"competitor_url,omitempty"`
	Locations             []string `json:"locations,omitempty"`
	MaxResults            int      `json:"max_results,omitempty"`
	IncludeSemanticSearch bool     `json:"include_semantic_search"`
	IncludeAIOverviews    bool     `json:"include_ai_overviews"`
}

// FilterRequest is the body of filter_keywords. group_keywords and
// pmax_themes accept the same shape with only Keywords set.
type FilterRequest struct {
	Keywords            []plan.KeywordItem `json:"keywords"`
	MinSearchVolume     float64            `json:"min_search_volume,omitempty"`
	MaxCompetition      string             `json:"max_competition,omitempty"`
	MinOpportunityScore float64            `json:"min_opportunity_score,omitempty"`
	ExcludeBranded      bool               `json:"exclude_branded,omitempty"`
}

// BudgetRequest is the body of calculate_bids and optimize_campaigns.
type BudgetRequest struct {
	AdGroups       []plan.AdGroup `json:"ad_groups"`
	Budgets        plan.Budgets   `json:"budgets"`
	ConversionRate float64        `json:"conversion_rate"`
	TargetROAS     float64        `json:"target_roas,omitempty"`
}

// BidRecommendation is one per-group entry of the bid calculation.
type BidRecommendation struct {
	AdGroupName          string        `json:"ad_group_name"`
	TargetCPA            float64       `json:"target_cpa"`
	TargetCPC            float64       `json:"target_cpc"`
	RecommendedBid       float64       `json:"recommended_bid"`
	BidRange             plan.CPCRange `json:"bid_range"`
	EstimatedClicks      int           `json:"estimated_clicks"`
	EstimatedConversions float64       `json:"estimated_conversions"`
}

// BidResult is the response of calculate_bids.
type BidResult struct {
	TotalBudget        float64             `json:"total_budget"`
	TargetCPA          float64             `json:"target_cpa"`
	ExpectedROAS       float64             `json:"expected_roas"`
	BudgetAllocation   map[string]float64  `json:"budget_allocation,omitempty"`
	BidRecommendations []BidRecommendation `json:"bid_recommendations"`
}

// CampaignOptimization is one campaign-type suggestion from optimize_campaigns.
type CampaignOptimization struct {
	CampaignType            string             `json:"campaign_type"`
	BudgetAllocation        map[string]float64 `json:"budget_allocation"`
	BidStrategy             string             `json:"bid_strategy"`
	TargetingOptimization   map[string]any     `json:"targeting_optimization"`
	CreativeRecommendations []string           `json:"creative_recommendations"`
	PerformancePredictions  map[string]float64 `json:"performance_predictions"`
}

// Optimization is the response of optimize_campaigns.
type Optimization struct {
	Optimizations []CampaignOptimization `json:"optimizations"`
	KeyInsights   []string               `json:"key_insights"`
	NextSteps     []string               `json:"next_steps"`
}

// Trend is a single market trend entry.
type Trend struct {
	Trend          string `json:"trend"`
	Description    string `json:"description"`
	Impact         string `json:"impact"`
	Recommendation string `json:"recommendation"`
}

// Trends is the response of GET /api/v1/trends.
type Trends struct {
	Trends        []Trend  `json:"trends"`
	BestPractices []string `json:"best_practices"`
	DataSource    string   `json:"data_source,omitempty"`
	GeneratedAt   string   `json:"generated_at,omitempty"`
}

type keywordsResponse struct {
	Keywords []plan.KeywordItem `json:"keywords"`
}

type groupsResponse struct {
	AdGroups []plan.AdGroup `json:"ad_groups"`
}

type themesResponse struct {
	Themes []plan.PMaxTheme `json:"themes"`
}

// errorBody covers the error shapes the API may return: {"error": ...},
// {"message": ...} and FastAPI's {"detail": ...}, where detail may be a
// string or a list of validation entries.
type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Detail  any    `json:"detail"`
}
