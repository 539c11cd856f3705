// Package snapshot keeps a single best-effort copy of the last plan.
package snapshot

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/kalambet/semplan/internal/analytics"
	"github.com/kalambet/semplan/internal/plan"
	"github.com/kalambet/semplan/internal/storage"
)

// Key is the fixed slot every snapshot is written to.
const Key = "sem_plan_last"

// Backend persists raw snapshot payloads.
type Backend interface {
	PutSnapshot(key, payload string) error
	GetSnapshot(key string) (storage.Snapshot, error)
}

// Store saves and restores plan sessions through a Backend.
type Store struct {
	backend Backend
	logger  *slog.Logger
}

// New creates a Store. A nil logger uses slog.Default().
func New(backend Backend, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{backend: backend, logger: logger}
}

// Save writes the session's groups, themes, budget and inputs to the
// snapshot slot, replacing whatever was there.
func (s *Store) Save(session plan.Session) error {
	data, err := json.Marshal(session.Document())
	if err != nil {
		return fmt.Errorf("marshaling snapshot: %w", err)
	}
	if err := s.backend.PutSnapshot(Key, string(data)); err != nil {
		return fmt.Errorf("writing snapshot: %w", err)
	}
	return nil
}

// Load restores the last saved session. It reports false when no snapshot
// exists or the stored payload cannot be decoded. Analytics are recomputed
// from the restored data and the session is marked finished.
func (s *Store) Load() (plan.Session, bool) {
	snap, err := s.backend.GetSnapshot(Key)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			s.logger.Debug("snapshot: read failed", "error", err)
		}
		return plan.Session{}, false
	}

	doc, err := Decode([]byte(snap.Payload))
	if err != nil {
		s.logger.Debug("snapshot: discarding malformed payload", "error", err)
		return plan.Session{}, false
	}

	session := plan.Session{
		ID:          uuid.NewString(),
		Status:      plan.StatusFinished,
		AdGroups:    doc.AdGroups,
		Themes:      doc.Themes,
		Budget:      doc.Budget,
		Inputs:      doc.Inputs,
		GeneratedAt: snap.SavedAt,
	}
	a := analytics.ForSession(session)
	session.Analytics = &a
	return session, true
}

// Decode parses a persisted document, filling missing lists with empty ones.
func Decode(data []byte) (plan.Document, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return plan.Document{}, errors.New("empty snapshot")
	}

	var doc plan.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return plan.Document{}, err
	}
	if doc.AdGroups == nil {
		doc.AdGroups = []plan.AdGroup{}
	}
	if doc.Themes == nil {
		doc.Themes = []plan.PMaxTheme{}
	}
	if doc.Budget.Breakdown == nil {
		doc.Budget.Breakdown = []plan.BudgetLine{}
	}
	return doc, nil
}
