package casefile

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"hostmedic/internal/config"
	"hostmedic/internal/database"
	"hostmedic/internal/winsys"
	"hostmedic/models"
)

func newTestDB(t *testing.T) database.DB {
	t.Helper()
	db, err := database.New(config.DatabaseConfig{
		Driver: "sqlite",
		Path:   filepath.Join(t.TempDir(), "hostmedic.db"),
	})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	if err := db.Migrate(context.Background()); err != nil {
		t.Fatal(err)
	}
	return db
}

func TestCreateAndReopenSession(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	caseRoot := t.TempDir()
	fac := winsys.NewMock().Facility()

	s, err := Create(ctx, db, fac, caseRoot, "ransomware triage", "rjones")
	if err != nil {
		t.Fatal(err)
	}
	if s.Case.Status != "open" || s.Case.Operator != "rjones" {
		t.Errorf("case = %+v", s.Case)
	}
	for _, sub := range []string{"files", "registry"} {
		if fi, err := os.Stat(filepath.Join(s.Dir, sub)); err != nil || !fi.IsDir() {
			t.Errorf("missing case subdir %s: %v", sub, err)
		}
	}

	reopened, err := Open(ctx, db, fac, caseRoot, s.Case.ID)
	if err != nil {
		t.Fatal(err)
	}
	if reopened.Case.Name != "ransomware triage" {
		t.Errorf("reopened case = %+v", reopened.Case)
	}
}

func TestOpenUnknownCase(t *testing.T) {
	db := newTestDB(t)
	fac := winsys.NewMock().Facility()
	if _, err := Open(context.Background(), db, fac, t.TempDir(), "no-such-case"); err == nil {
		t.Error("opening a missing case succeeded")
	}
}

func TestFocusAndQueueSurviveReopen(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	caseRoot := t.TempDir()
	fac := winsys.NewMock().Facility()

	s, err := Create(ctx, db, fac, caseRoot, "c", "op")
	if err != nil {
		t.Fatal(err)
	}
	s.Focus.SetFocusTarget("darkcomet")
	s.Focus.SetFocusTarget(`C:\Users\bob\Downloads\dropper.exe`)
	if err := s.SaveFocus(); err != nil {
		t.Fatal(err)
	}
	s.Queue.Enqueue(models.CleanupItem{Type: models.ItemFile, Name: "evil.exe", OriginalPath: `C:\Temp\evil.exe`})
	if err := s.SaveQueue(); err != nil {
		t.Fatal(err)
	}

	reopened, err := Open(ctx, db, fac, caseRoot, s.Case.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got := reopened.Focus.GetFocusTargets(); len(got) != 2 || got[0] != "darkcomet" {
		t.Errorf("focus targets = %v", got)
	}
	items := reopened.Queue.Items()
	if len(items) != 1 || items[0].OriginalPath != `C:\Temp\evil.exe` {
		t.Errorf("queue items = %+v", items)
	}
	if items[0].Status != models.StatusPending {
		t.Errorf("status = %s", items[0].Status)
	}
}

func TestBaselineRoundTrip(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	fac := winsys.NewMock().Facility()

	s, err := Create(ctx, db, fac, t.TempDir(), "c", "op")
	if err != nil {
		t.Fatal(err)
	}

	// First scan of a case has no baseline.
	if items, err := s.Baseline(ctx); err != nil || items != nil {
		t.Fatalf("baseline = %v, %v", items, err)
	}

	scan := []models.PersistItem{
		{Source: "HKLM Run", Location: models.LocationRegistry, Name: "Updater", Risk: models.Check("unusual location")},
		{Source: "Services", Location: models.LocationService, Name: "Spooler", Risk: models.OK()},
	}
	if err := s.SaveSnapshot(ctx, scan); err != nil {
		t.Fatal(err)
	}

	got, err := s.Baseline(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0].Name != "Updater" || !got[0].Risk.IsFlagged() {
		t.Errorf("baseline = %+v", got)
	}
}
