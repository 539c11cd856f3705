package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/kalambet/semplan/internal/plan"
	"github.com/kalambet/semplan/internal/semapi"
)

const maxRequestBodySize = 1 << 20 // 1MB

// PlanService owns the current plan session.
type PlanService interface {
	Current() plan.Session
	Generate(ctx context.Context, req plan.PlanRequest) (plan.Session, error)
	Reset() plan.Session
	Save() error
	Load() (plan.Session, error)
}

// MarketAPI covers the remote calls that do not touch the session.
type MarketAPI interface {
	Trends(ctx context.Context) (semapi.Trends, error)
	OptimizeCampaigns(ctx context.Context, req semapi.BudgetRequest) (semapi.Optimization, error)
}

// AppDeps holds dependencies for the HTTP API.
type AppDeps struct {
	Plans          PlanService
	Market         MarketAPI
	Metrics        http.Handler // optional; serves /metrics when set
	AllowedOrigins []string
	Logger         *slog.Logger
	// TracerProvider traces each request; nil selects the global provider.
	TracerProvider trace.TracerProvider
}

// NewHandler returns the HTTP API for the plan dashboard.
func NewHandler(deps AppDeps) http.Handler {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.TracerProvider == nil {
		deps.TracerProvider = otel.GetTracerProvider()
	}

	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Use(Tracing(deps.TracerProvider))
	r.Use(RequestLogger(deps.Logger))
	if len(deps.AllowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: deps.AllowedOrigins,
			AllowedMethods: []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Content-Type"},
			ExposedHeaders: []string{"Content-Disposition"},
			MaxAge:         300,
		}))
	}

	r.Get("/health", handleHealth)
	if deps.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", deps.Metrics)
	}

	r.Post("/v1/plans", handleGenerate(deps))
	r.Route("/v1/plan", func(r chi.Router) {
		r.Get("/", handleCurrent(deps))
		r.Post("/reset", handleReset(deps))
		r.Post("/save", handleSave(deps))
		r.Post("/load", handleLoad(deps))
		r.Get("/insights", handleInsights(deps))
		r.Get("/shopping", handleShopping(deps))
		r.Get("/export.csv", handleExportCSV(deps))
		r.Get("/export.json", handleExportJSON(deps))
		r.Post("/optimize", handleOptimize(deps))
	})
	r.Get("/v1/trends", handleTrends(deps))

	return r
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

// writeJSON encodes v before touching w so an unencodable value becomes a
// 500 instead of an empty 200.
func writeJSON(w http.ResponseWriter, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		slog.Error("encoding response", "error", err)
		httpError(w, http.StatusInternalServerError, "server_error", "encoding response: %v", err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(append(data, '\n'))
}

func httpError(w http.ResponseWriter, code int, errType string, format string, args ...any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	msg := fmt.Sprintf(format, args...)
	json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]any{
			"message": msg,
			"type":    errType,
		},
	})
}
