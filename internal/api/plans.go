package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/kalambet/semplan/internal/analytics"
	"github.com/kalambet/semplan/internal/dashboard"
	"github.com/kalambet/semplan/internal/export"
	"github.com/kalambet/semplan/internal/plan"
	"github.com/kalambet/semplan/internal/semapi"
)

// InsightsResponse is the body of GET /v1/plan/insights.
type InsightsResponse struct {
	Tokens         []analytics.TokenCount `json:"tokens"`
	BrandHost      string                 `json:"brandHost"`
	CompetitorHost string                 `json:"competitorHost"`
}

// ShoppingResponse is the body of GET /v1/plan/shopping.
type ShoppingResponse struct {
	Groups []analytics.ShoppingGroup `json:"groups"`
}

// OptimizeRequest is the optional body of POST /v1/plan/optimize.
type OptimizeRequest struct {
	TargetROAS float64 `json:"targetRoas"`
}

func handleGenerate(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
		defer r.Body.Close()

		form := plan.DefaultForm()
		if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid request body: %v", err)
			return
		}

		req, err := form.Request()
		if err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "%v", err)
			return
		}

		s, err := deps.Plans.Generate(r.Context(), req)
		if err != nil {
			writeGenerateError(w, err)
			return
		}
		writeJSON(w, s)
	}
}

func writeGenerateError(w http.ResponseWriter, err error) {
	var apiErr *semapi.Error
	switch {
	case errors.Is(err, dashboard.ErrStale):
		httpError(w, http.StatusConflict, "conflict_error", "%v", err)
	case errors.As(err, &apiErr):
		httpError(w, http.StatusBadGateway, "api_error", "%v", err)
	default:
		httpError(w, http.StatusInternalServerError, "server_error", "%v", err)
	}
}

func handleCurrent(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, deps.Plans.Current())
	}
}

func handleReset(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, deps.Plans.Reset())
	}
}

func handleSave(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := deps.Plans.Save(); err != nil {
			if errors.Is(err, dashboard.ErrNotFinished) {
				httpError(w, http.StatusConflict, "conflict_error", "%v", err)
				return
			}
			httpError(w, http.StatusInternalServerError, "server_error", "saving plan: %v", err)
			return
		}
		writeJSON(w, map[string]string{"status": "saved"})
	}
}

func handleLoad(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, err := deps.Plans.Load()
		if err != nil {
			if errors.Is(err, dashboard.ErrNoSnapshot) {
				httpError(w, http.StatusNotFound, "not_found", "%v", err)
				return
			}
			httpError(w, http.StatusInternalServerError, "server_error", "loading plan: %v", err)
			return
		}
		writeJSON(w, s)
	}
}

func handleInsights(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, insightsFor(deps.Plans.Current()))
	}
}

func insightsFor(s plan.Session) InsightsResponse {
	tokens := analytics.Insights(s.AdGroups, s.Inputs.BrandURL, s.Inputs.CompetitorURL)
	if tokens == nil {
		tokens = []analytics.TokenCount{}
	}
	brand, competitor := analytics.Hosts(s.Inputs.BrandURL, s.Inputs.CompetitorURL)
	return InsightsResponse{Tokens: tokens, BrandHost: brand, CompetitorHost: competitor}
}

func handleShopping(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s := deps.Plans.Current()
		writeJSON(w, ShoppingResponse{Groups: analytics.ShoppingPlan(s.AdGroups)})
	}
}

func handleExportCSV(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeAttachment(w, export.CSVFileName, export.CSVContentType, export.CSV(deps.Plans.Current()))
	}
}

func handleExportJSON(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data, err := export.JSON(deps.Plans.Current())
		if err != nil {
			httpError(w, http.StatusInternalServerError, "server_error", "encoding plan: %v", err)
			return
		}
		writeAttachment(w, export.JSONFileName, export.JSONContentType, data)
	}
}

func writeAttachment(w http.ResponseWriter, name, contentType string, data []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.Write(data)
}

func handleTrends(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if deps.Market == nil {
			httpError(w, http.StatusServiceUnavailable, "api_error", "keyword API not configured")
			return
		}
		trends, err := deps.Market.Trends(r.Context())
		if err != nil {
			httpError(w, http.StatusBadGateway, "api_error", "%v", err)
			return
		}
		writeJSON(w, trends)
	}
}

func handleOptimize(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if deps.Market == nil {
			httpError(w, http.StatusServiceUnavailable, "api_error", "keyword API not configured")
			return
		}

		r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
		defer r.Body.Close()

		var body OptimizeRequest
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil && !errors.Is(err, io.EOF) {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid request body: %v", err)
			return
		}

		s := deps.Plans.Current()
		if s.Status != plan.StatusFinished {
			httpError(w, http.StatusConflict, "conflict_error", "no finished plan to optimize")
			return
		}
		// Saved plans do not carry channel budgets.
		if s.Budgets.Total() <= 0 {
			httpError(w, http.StatusConflict, "conflict_error", "plan has no channel budgets; generate it again before optimizing")
			return
		}

		opt, err := deps.Market.OptimizeCampaigns(r.Context(), semapi.BudgetRequest{
			AdGroups:       s.AdGroups,
			Budgets:        s.Budgets,
			ConversionRate: s.Budget.ConversionRate,
			TargetROAS:     body.TargetROAS,
		})
		if err != nil {
			httpError(w, http.StatusBadGateway, "api_error", "%v", err)
			return
		}
		writeJSON(w, opt)
	}
}
