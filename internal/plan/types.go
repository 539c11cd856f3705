package plan

import "time"

// Status is the lifecycle state of a plan session.
type Status string

const (
	StatusIdle       Status = "idle"
	StatusGenerating Status = "generating"
	StatusFinished   Status = "finished"
)

// Competition levels reported by the keyword API. Values outside this set are
// kept verbatim; an empty value renders as CompetitionUnknown.
const (
	CompetitionLow     = "Low"
	CompetitionMedium  = "Medium"
	CompetitionHigh    = "High"
	CompetitionUnknown = "Unknown"
)

// Budgets holds the three per-channel budget amounts.
type Budgets struct {
	Search   float64 `json:"search"`
	Shopping float64 `json:"shopping"`
	PMax     float64 `json:"pmax"`
}

// Total returns the sum of all three budgets.
func (b Budgets) Total() float64 {
	return b.Search + b.Shopping + b.PMax
}

// PlanRequest is the validated, immutable input for one plan generation.
type PlanRequest struct {
	BrandURL              string
	CompetitorURL         string
	SeedKeywords          []string
	Locations             []string
	Budgets               Budgets
	ConversionRatePercent float64
	MinSearchVolume       float64
	IncludeSemanticSearch bool
	IncludeAIOverviews    bool
}

// ConversionRate returns the conversion rate as a fraction.
func (r PlanRequest) ConversionRate() float64 {
	return r.ConversionRatePercent / 100
}

// KeywordItem is a single keyword idea as produced by the keyword API.
type KeywordItem struct {
	Keyword            string  `json:"keyword"`
	AvgMonthlySearches int     `json:"avg_monthly_searches"`
	Competition        string  `json:"competition"`
	CPCLow             float64 `json:"top_of_page_bid_low"`
	CPCHigh            float64 `json:"top_of_page_bid_high"`
	Source             string  `json:"source"`
	Intent             string  `json:"intent"`
	DifficultyScore    float64 `json:"difficulty_score"`
	OpportunityScore   float64 `json:"opportunity_score"`
}

// CompetitionLabel returns the competition level, or CompetitionUnknown when unset.
func (k KeywordItem) CompetitionLabel() string {
	if k.Competition == "" {
		return CompetitionUnknown
	}
	return k.Competition
}

// CPCRange is a low/high cost-per-click band.
type CPCRange struct {
	Low  float64 `json:"low"`
	High float64 `json:"high"`
}

// Mid returns the midpoint of the range.
func (r CPCRange) Mid() float64 {
	return (r.Low + r.High) / 2
}

// MatchTypes lists keywords per match type.
type MatchTypes struct {
	Exact  []string `json:"exact"`
	Phrase []string `json:"phrase"`
	BMM    []string `json:"bmm"`
}

// AdGroup is a named cluster of keywords sharing a bidding strategy.
type AdGroup struct {
	Name                 string        `json:"name"`
	Theme                string        `json:"theme"`
	Keywords             []KeywordItem `json:"keywords"`
	MatchTypes           MatchTypes    `json:"suggested_match_types"`
	CPCRange             CPCRange      `json:"cpc_range"`
	EstimatedClicks      int           `json:"estimated_clicks"`
	EstimatedConversions float64       `json:"estimated_conversions"`
	TargetCPA            float64       `json:"target_cpa"`
}

// AssetSuggestions are creative hints attached to a PMax theme.
type AssetSuggestions struct {
	Headlines    []string `json:"headlines"`
	Descriptions []string `json:"descriptions"`
	Images       []string `json:"images"`
}

// PMaxTheme is a Performance Max asset-group theme.
type PMaxTheme struct {
	Title                string           `json:"title"`
	Category             string           `json:"category"`
	Description          string           `json:"description"`
	Keywords             []string         `json:"keywords"`
	TargetAudience       string           `json:"target_audience"`
	EstimatedImpressions int              `json:"estimated_impressions"`
	ExpectedCTR          float64          `json:"expected_ctr"`
	AssetSuggestions     AssetSuggestions `json:"asset_suggestions"`
}

// BudgetLine is one row of the budget breakdown.
type BudgetLine struct {
	CampaignType         string  `json:"campaignType"`
	Budget               float64 `json:"budget"`
	ExpectedCPC          float64 `json:"expectedCpc"`
	EstimatedClicks      int     `json:"estimatedClicks"`
	EstimatedConversions float64 `json:"estimatedConversions"`
	ExpectedROAS         float64 `json:"expectedRoas"`
}

// BudgetPlan is the budget projection derived from the bid calculation.
type BudgetPlan struct {
	TotalBudget    float64      `json:"totalBudget"`
	OverallROAS    float64      `json:"overallRoas"`
	ConversionRate float64      `json:"conversionRate"`
	Breakdown      []BudgetLine `json:"breakdown"`
}

// Trends mirrors the analytics totals for trend widgets.
type Trends struct {
	Impressions int     `json:"impressions"`
	Clicks      int     `json:"clicks"`
	Conversions float64 `json:"conversions"`
	Spend       float64 `json:"spend"`
}

// KeywordPerformance, CampaignPerformance and AudienceSegment are placeholders
// for a richer analytics source; nothing in this module fills them.
type KeywordPerformance struct {
	Keyword     string  `json:"keyword"`
	Clicks      int     `json:"clicks"`
	Conversions float64 `json:"conversions"`
	Spend       float64 `json:"spend"`
}

type CampaignPerformance struct {
	Campaign    string  `json:"campaign"`
	Clicks      int     `json:"clicks"`
	Conversions float64 `json:"conversions"`
	Spend       float64 `json:"spend"`
}

type AudienceSegment struct {
	Label string  `json:"label"`
	Share float64 `json:"share"`
}

type AudienceInsights struct {
	TopLocations []AudienceSegment `json:"topLocations"`
	TopDevices   []AudienceSegment `json:"topDevices"`
	TopTimeSlots []AudienceSegment `json:"topTimeSlots"`
}

// Analytics is the aggregate view over a plan. It is always recomputed from
// groups, themes and budget and never persisted on its own.
type Analytics struct {
	TotalImpressions      int                   `json:"totalImpressions"`
	TotalClicks           int                   `json:"totalClicks"`
	TotalConversions      float64               `json:"totalConversions"`
	TotalSpend            float64               `json:"totalSpend"`
	AverageCTR            float64               `json:"averageCtr"`
	AverageCPC            float64               `json:"averageCpc"`
	AverageCPA            float64               `json:"averageCpa"`
	ROAS                  float64               `json:"roas"`
	ConversionRate        float64               `json:"conversionRate"`
	Trends                Trends                `json:"trends"`
	TopPerformingKeywords []KeywordPerformance  `json:"topPerformingKeywords"`
	CampaignPerformance   []CampaignPerformance `json:"campaignPerformance"`
	AudienceInsights      AudienceInsights      `json:"audienceInsights"`
}

// Inputs records the URLs a plan was generated for.
type Inputs struct {
	BrandURL      string `json:"brandUrl,omitempty"`
	CompetitorURL string `json:"competitorUrl,omitempty"`
}

// Session is one generated (or loaded) campaign plan. Budgets holds the
// requested channel budgets and is not part of the persisted Document.
type Session struct {
	ID          string      `json:"id,omitempty"`
	Status      Status      `json:"status"`
	Generation  uint64      `json:"generation"`
	AdGroups    []AdGroup   `json:"adGroups"`
	Themes      []PMaxTheme `json:"themes"`
	Budget      BudgetPlan  `json:"budget"`
	Budgets     Budgets     `json:"budgets"`
	Inputs      Inputs      `json:"inputs"`
	Analytics   *Analytics  `json:"analytics,omitempty"`
	GeneratedAt time.Time   `json:"generatedAt,omitzero"`
}

// NewSession returns an empty idle session.
func NewSession() Session {
	return Session{
		Status:   StatusIdle,
		AdGroups: []AdGroup{},
		Themes:   []PMaxTheme{},
		Budget:   BudgetPlan{Breakdown: []BudgetLine{}},
	}
}

// Keywords returns every keyword across all ad groups, in group order.
func (s Session) Keywords() []KeywordItem {
	var out []KeywordItem
	for _, g := range s.AdGroups {
		out = append(out, g.Keywords...)
	}
	return out
}

// Document is the persisted and exported shape of a session.
type Document struct {
	AdGroups []AdGroup   `json:"adGroups"`
	Themes   []PMaxTheme `json:"themes"`
	Budget   BudgetPlan  `json:"budget"`
	Inputs   Inputs      `json:"inputs"`
}

// Document returns the persisted shape of s.
func (s Session) Document() Document {
	return Document{
		AdGroups: s.AdGroups,
		Themes:   s.Themes,
		Budget:   s.Budget,
		Inputs:   s.Inputs,
	}
}
