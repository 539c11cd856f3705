// Package dashboard holds the current plan session and coordinates
// generation, reset and snapshot restore against it.
package dashboard

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/kalambet/semplan/internal/pipeline"
	"github.com/kalambet/semplan/internal/plan"
)

var (
	// ErrNoSnapshot is returned by Load when no usable snapshot exists.
	ErrNoSnapshot = errors.New("no saved plan")
	// ErrStale is returned by Generate when a reset, load or newer run
	// superseded it before it finished. Its result is discarded.
	ErrStale = errors.New("plan generation superseded")
	// ErrNotFinished is returned by Save when there is no finished plan.
	ErrNotFinished = errors.New("no finished plan to save")
)

// Planner produces a finished session for a request.
type Planner interface {
	Generate(ctx context.Context, req plan.PlanRequest) (pipeline.Result, error)
}

// Snapshots persists a single session.
type Snapshots interface {
	Save(s plan.Session) error
	Load() (plan.Session, bool)
}

// Dashboard owns the current session. Every change that replaces the
// session bumps the generation; a pipeline run only publishes its result if
// the generation it started with is still current.
type Dashboard struct {
	planner   Planner
	snapshots Snapshots
	logger    *slog.Logger

	mu         sync.Mutex
	session    plan.Session
	generation uint64
	cancel     context.CancelFunc
}

// New creates a Dashboard with an empty idle session.
func New(planner Planner, snapshots Snapshots, logger *slog.Logger) *Dashboard {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dashboard{
		planner:   planner,
		snapshots: snapshots,
		logger:    logger,
		session:   plan.NewSession(),
	}
}

// Current returns the current session.
func (d *Dashboard) Current() plan.Session {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.session
}

// Generate runs the planner for req and publishes the result as the current
// session. While it runs the session status is generating. On failure the
// previous session is restored with status idle and the error is returned.
// If the run was superseded, ErrStale is returned and nothing is published.
func (d *Dashboard) Generate(ctx context.Context, req plan.PlanRequest) (plan.Session, error) {
	d.mu.Lock()
	gen := d.advance()
	runCtx, cancel := context.WithCancel(ctx)
	d.cancel = cancel
	prev := d.session
	pending := prev
	pending.Status = plan.StatusGenerating
	pending.Generation = gen
	pending.Inputs = plan.Inputs{BrandURL: req.BrandURL, CompetitorURL: req.CompetitorURL}
	d.session = pending
	d.mu.Unlock()
	defer cancel()

	res, err := d.planner.Generate(runCtx, req)

	d.mu.Lock()
	defer d.mu.Unlock()

	if gen != d.generation {
		d.logger.Info("discarding superseded plan generation", "generation", gen, "current", d.generation)
		return plan.Session{}, ErrStale
	}
	d.cancel = nil

	if err != nil {
		d.logger.Error("plan generation failed", "generation", gen, "error", err)
		prev.Status = plan.StatusIdle
		prev.Generation = gen
		d.session = prev
		return plan.Session{}, err
	}

	s := res.Session
	s.Generation = gen
	d.session = s
	d.logger.Info("plan generated",
		"generation", gen,
		"ad_groups", len(s.AdGroups),
		"themes", len(s.Themes),
		"fallbacks", res.Fallbacks,
	)
	return s, nil
}

// Reset voids any in-flight generation and clears the session to idle.
func (d *Dashboard) Reset() plan.Session {
	d.mu.Lock()
	defer d.mu.Unlock()
	gen := d.advance()
	d.session = plan.NewSession()
	d.session.Generation = gen
	return d.session
}

// Save writes the current finished session to the snapshot store.
func (d *Dashboard) Save() error {
	s := d.Current()
	if s.Status != plan.StatusFinished {
		return ErrNotFinished
	}
	return d.snapshots.Save(s)
}

// Load replaces the current session with the saved snapshot, voiding any
// in-flight generation. It returns ErrNoSnapshot when nothing usable is
// stored, leaving the current session unchanged.
func (d *Dashboard) Load() (plan.Session, error) {
	s, ok := d.snapshots.Load()
	if !ok {
		return plan.Session{}, ErrNoSnapshot
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	s.Generation = d.advance()
	d.session = s
	return s, nil
}

// advance bumps the generation and cancels the in-flight run, if any.
// d.mu must be held.
func (d *Dashboard) advance() uint64 {
	d.generation++
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	return d.generation
}
