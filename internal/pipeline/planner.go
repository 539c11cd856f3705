package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/kalambet/semplan/internal/analytics"
	"github.com/kalambet/semplan/internal/plan"
	"github.com/kalambet/semplan/internal/semapi"
)

// DefaultMinSearchVolume is sent to the filter stage when the request does
// not carry a usable minimum.
const DefaultMinSearchVolume = 100

// KeywordAPI is the remote keyword and campaign generation service.
type KeywordAPI interface {
	GenerateKeywords(ctx context.Context, req semapi.KeywordRequest) ([]plan.KeywordItem, error)
	FilterKeywords(ctx context.Context, req semapi.FilterRequest) ([]plan.KeywordItem, error)
	GroupKeywords(ctx context.Context, keywords []plan.KeywordItem) ([]plan.AdGroup, error)
	PMaxThemes(ctx context.Context, keywords []plan.KeywordItem) ([]plan.PMaxTheme, error)
	CalculateBids(ctx context.Context, req semapi.BudgetRequest) (semapi.BidResult, error)
}

// Options configures a Planner.
type Options struct {
	Metrics *Metrics
	Logger  *slog.Logger
	// DefaultMinSearchVolume replaces a zero minimum search volume.
	// Zero selects DefaultMinSearchVolume.
	DefaultMinSearchVolume float64
	// TracerProvider records a span per run and per stage. Nil selects the
	// global provider.
	TracerProvider trace.TracerProvider
}

// Result is a finished plan plus diagnostics about how it was produced.
type Result struct {
	Session        plan.Session
	Fallbacks      []string
	StageDurations map[string]time.Duration
}

// Planner runs the keyword planning pipeline against a KeywordAPI.
type Planner struct {
	api       KeywordAPI
	metrics   *Metrics
	logger    *slog.Logger
	tracer    trace.Tracer
	minVolume float64
	now       func() time.Time
}

// NewPlanner creates a Planner.
func NewPlanner(api KeywordAPI, opts Options) *Planner {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	tp := opts.TracerProvider
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	minVolume := opts.DefaultMinSearchVolume
	if minVolume <= 0 {
		minVolume = DefaultMinSearchVolume
	}
	return &Planner{
		api:       api,
		metrics:   opts.Metrics,
		logger:    logger,
		tracer:    tp.Tracer("github.com/kalambet/semplan/internal/pipeline"),
		minVolume: minVolume,
		now:       time.Now,
	}
}

// Generate runs the five remote stages for req and assembles a finished
// session:
//  1. generate keyword ideas from seeds, locations and URLs
//  2. filter by minimum search volume, falling back to the raw ideas
//  3. group into ad groups, falling back to a single General Terms group
//  4. build PMax themes
//  5. calculate bids and derive the budget breakdown and analytics
//
// Any remote failure aborts the run; no partial session is returned.
func (p *Planner) Generate(ctx context.Context, req plan.PlanRequest) (Result, error) {
	ctx, span := p.tracer.Start(ctx, "pipeline.Generate", trace.WithAttributes(
		attribute.Int("seed_keywords", len(req.SeedKeywords)),
		attribute.Int("locations", len(req.Locations)),
	))
	defer span.End()

	res, err := p.generate(ctx, req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		p.metrics.run("error")
		return Result{}, err
	}
	p.metrics.run("success")
	return res, nil
}

func (p *Planner) generate(ctx context.Context, req plan.PlanRequest) (Result, error) {
	res := Result{StageDurations: make(map[string]time.Duration)}
	conversionRate := req.ConversionRate()

	// 1. Generate.
	var raw []plan.KeywordItem
	err := p.stage(ctx, StageGenerate, res.StageDurations, func(ctx context.Context) (err error) {
		raw, err = p.api.GenerateKeywords(ctx, semapi.KeywordRequest{
			SeedKeywords:          req.SeedKeywords,
			Locations:             req.Locations,
			BrandURL:              req.BrandURL,
			CompetitorURL:         req.CompetitorURL,
			IncludeSemanticSearch: req.IncludeSemanticSearch,
			IncludeAIOverviews:    req.IncludeAIOverviews,
		})
		return err
	})
	if err != nil {
		return Result{}, err
	}

	// 2. Filter.
	minVolume := req.MinSearchVolume
	if minVolume <= 0 {
		minVolume = p.minVolume
	}
	var filtered []plan.KeywordItem
	err = p.stage(ctx, StageFilter, res.StageDurations, func(ctx context.Context) (err error) {
		filtered, err = p.api.FilterKeywords(ctx, semapi.FilterRequest{
			Keywords:        raw,
			MinSearchVolume: minVolume,
		})
		return err
	})
	if err != nil {
		return Result{}, err
	}
	kw := ResolveKeywords(raw, filtered)
	if kw.UsedFallback {
		p.fallback(&res, StageFilter, "filter removed every keyword, using unfiltered list", len(raw))
	}
	keywords := kw.Value

	// 3. Group.
	var grouped []plan.AdGroup
	err = p.stage(ctx, StageGroup, res.StageDurations, func(ctx context.Context) (err error) {
		grouped, err = p.api.GroupKeywords(ctx, keywords)
		return err
	})
	if err != nil {
		return Result{}, err
	}
	gr := ResolveGroups(keywords, grouped)
	if gr.UsedFallback {
		p.fallback(&res, StageGroup, "no ad groups returned, synthesizing "+GeneralTermsName, len(keywords))
	}
	groups := gr.Value

	// 4. Themes.
	var themes []plan.PMaxTheme
	err = p.stage(ctx, StageThemes, res.StageDurations, func(ctx context.Context) (err error) {
		themes, err = p.api.PMaxThemes(ctx, keywords)
		return err
	})
	if err != nil {
		return Result{}, err
	}
	if themes == nil {
		themes = []plan.PMaxTheme{}
	}

	// 5. Bids.
	var bids semapi.BidResult
	err = p.stage(ctx, StageBids, res.StageDurations, func(ctx context.Context) (err error) {
		bids, err = p.api.CalculateBids(ctx, semapi.BudgetRequest{
			AdGroups:       groups,
			Budgets:        req.Budgets,
			ConversionRate: conversionRate,
		})
		return err
	})
	if err != nil {
		return Result{}, err
	}

	budget := BudgetFromBids(bids, req.Budgets, len(groups), conversionRate)
	a := analytics.Derive(themes, groups, budget)

	res.Session = plan.Session{
		ID:       uuid.NewString(),
		Status:   plan.StatusFinished,
		AdGroups: groups,
		Themes:   themes,
		Budget:   budget,
		Budgets:  req.Budgets,
		Inputs: plan.Inputs{
			BrandURL:      req.BrandURL,
			CompetitorURL: req.CompetitorURL,
		},
		Analytics:   &a,
		GeneratedAt: p.now().UTC(),
	}

	p.logger.Debug("plan generated",
		"ad_groups", len(groups),
		"keywords", len(keywords),
		"themes", len(themes),
		"fallbacks", res.Fallbacks,
	)
	return res, nil
}

// BudgetFromBids shapes the bid calculation into a BudgetPlan. Every
// breakdown line receives an even share of the summed budgets across
// groupCount groups and the overall expected ROAS.
func BudgetFromBids(bids semapi.BidResult, budgets plan.Budgets, groupCount int, conversionRate float64) plan.BudgetPlan {
	total := budgets.Total()
	share := 0.0
	if total > 0 {
		share = total / float64(max(1, groupCount))
	}

	lines := make([]plan.BudgetLine, 0, len(bids.BidRecommendations))
	for _, r := range bids.BidRecommendations {
		lines = append(lines, plan.BudgetLine{
			CampaignType:         r.AdGroupName,
			Budget:               share,
			ExpectedCPC:          r.TargetCPC,
			EstimatedClicks:      r.EstimatedClicks,
			EstimatedConversions: r.EstimatedConversions,
			ExpectedROAS:         bids.ExpectedROAS,
		})
	}
	return plan.BudgetPlan{
		TotalBudget:    bids.TotalBudget,
		OverallROAS:    bids.ExpectedROAS,
		ConversionRate: conversionRate,
		Breakdown:      lines,
	}
}

func (p *Planner) stage(ctx context.Context, name string, durations map[string]time.Duration, fn func(context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}

	ctx, span := p.tracer.Start(ctx, "pipeline."+name, trace.WithAttributes(attribute.String("stage", name)))
	defer span.End()

	start := time.Now()
	err := fn(ctx)
	d := time.Since(start)
	durations[name] = d
	p.metrics.observeStage(name, d)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}

func (p *Planner) fallback(res *Result, stage, msg string, n int) {
	res.Fallbacks = append(res.Fallbacks, stage)
	p.metrics.fallback(stage)
	p.logger.Info("pipeline: "+msg, "stage", stage, "keywords", n)
}
