// Package casefile wires one investigation case together: the database
// record, the on-disk quarantine layout, both journals, the focus registry,
// the cleanup queue and the executors. Everything state-bearing hangs off the
// Session; there are no package-level singletons.
package casefile

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"hostmedic/internal/audit"
	"hostmedic/internal/database"
	"hostmedic/internal/focus"
	"hostmedic/internal/harden"
	"hostmedic/internal/journal"
	"hostmedic/internal/remediation"
	"hostmedic/internal/winsys"
	"hostmedic/models"
)

// Session is the live handle for one case.
type Session struct {
	Case models.Case
	// Dir is the per-case root: files/, registry/, cleanup_journal.json and
	// the hardening journal all live under it.
	Dir string

	DB       database.DB
	Facility *winsys.Facility

	Focus         *focus.Registry
	Queue         *remediation.Queue
	Journal       *journal.CleanupJournal
	HardenJournal *journal.HardenJournal
	Executor      *remediation.Executor
	Harden        *harden.Engine
	Audit         *audit.Sink
}

// Create registers a new case and opens its session.
func Create(ctx context.Context, db database.DB, fac *winsys.Facility, caseRoot, name, operator string) (*Session, error) {
	hostname, _ := os.Hostname()
	c := models.Case{
		ID:        uuid.NewString(),
		Name:      name,
		Operator:  operator,
		Hostname:  hostname,
		Status:    "open",
		CreatedAt: time.Now().UTC(),
	}
	if err := database.CreateCase(ctx, db, c); err != nil {
		return nil, fmt.Errorf("create case: %w", err)
	}
	return Open(ctx, db, fac, caseRoot, c.ID)
}

// Open loads an existing case and assembles its session.
func Open(ctx context.Context, db database.DB, fac *winsys.Facility, caseRoot, caseID string) (*Session, error) {
	c, err := database.GetCase(ctx, db, caseID)
	if err != nil {
		return nil, fmt.Errorf("open case %s: %w", caseID, err)
	}

	dir := filepath.Join(caseRoot, caseID)
	for _, sub := range []string{"files", "registry"} {
		if err := os.MkdirAll(filepath.Join(dir, sub), 0o755); err != nil {
			return nil, fmt.Errorf("create case directory: %w", err)
		}
	}

	cleanupJournal, err := journal.OpenCleanup(filepath.Join(dir, "cleanup_journal.json"))
	if err != nil {
		return nil, err
	}
	hardenJournal, err := journal.OpenHarden(filepath.Join(dir, caseID+"_harden.json"))
	if err != nil {
		return nil, err
	}

	queue := remediation.NewQueue()
	hardenEngine, err := harden.NewEngine(fac, hardenJournal)
	if err != nil {
		return nil, err
	}

	s := &Session{
		Case:          *c,
		Dir:           dir,
		DB:            db,
		Facility:      fac,
		Focus:         focus.NewRegistry(),
		Queue:         queue,
		Journal:       cleanupJournal,
		HardenJournal: hardenJournal,
		Executor:      remediation.NewExecutor(fac, queue, cleanupJournal, dir),
		Harden:        hardenEngine,
		Audit:         audit.NewSink(db, caseID),
	}
	if err := s.loadState(); err != nil {
		return nil, err
	}
	return s, nil
}

// SaveSnapshot persists a scan's aggregate as the new baseline.
func (s *Session) SaveSnapshot(ctx context.Context, items []models.PersistItem) error {
	return database.SaveSnapshot(ctx, s.DB, s.Case.ID, items)
}

// Baseline returns the items of the most recent snapshot, or nil when this
// is the first scan of the case.
func (s *Session) Baseline(ctx context.Context) ([]models.PersistItem, error) {
	items, err := database.LatestSnapshot(ctx, s.DB, s.Case.ID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return items, nil
}
