package remediation

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"hostmedic/internal/journal"
	"hostmedic/internal/winsys"
	"hostmedic/models"
)

const evilSvcKey = `HKLM\SYSTEM\CurrentControlSet\Services\EvilSvc`

type fixture struct {
	mock    *winsys.Mock
	queue   *Queue
	journal *journal.CleanupJournal
	exec    *Executor
	caseDir string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	caseDir := t.TempDir()
	j, err := journal.OpenCleanup(filepath.Join(caseDir, "cleanup_journal.json"))
	if err != nil {
		t.Fatal(err)
	}
	m := winsys.NewMock()
	q := NewQueue()
	return &fixture{
		mock:    m,
		queue:   q,
		journal: j,
		exec:    NewExecutor(m.Facility(), q, j, caseDir),
		caseDir: caseDir,
	}
}

func (f *fixture) enqueue(t *testing.T, item models.CleanupItem) string {
	t.Helper()
	if !f.queue.Enqueue(item) {
		t.Fatal("enqueue rejected")
	}
	items := f.queue.Items()
	return items[len(items)-1].ID
}

func TestExecuteQuarantineMovesFile(t *testing.T) {
	f := newFixture(t)
	src := filepath.Join(t.TempDir(), "evil.exe")
	if err := os.WriteFile(src, []byte("payload"), 0o644); err != nil {
		t.Fatal(err)
	}

	id := f.enqueue(t, models.CleanupItem{Type: models.ItemFile, Name: "evil.exe", OriginalPath: src})
	res := f.exec.Execute(context.Background(), id)

	if res.Status != models.StatusCompleted {
		t.Fatalf("status = %s: %s", res.Status, res.Message)
	}
	want := filepath.Join(f.caseDir, "files", id+"_evil.exe")
	if res.BackupPath != want {
		t.Errorf("backup path = %q, want %q", res.BackupPath, want)
	}
	if _, err := os.Stat(want); err != nil {
		t.Error("quarantine copy missing:", err)
	}
	if _, err := os.Stat(src); !os.IsNotExist(err) {
		t.Error("original still present")
	}

	item, _ := f.queue.Get(id)
	if item.Status != models.StatusCompleted || item.BackupPath != want || item.ExecutedAt == nil {
		t.Errorf("queue item = %+v", item)
	}

	entries := f.journal.Entries()
	if len(entries) != 1 {
		t.Fatalf("journal entries = %d", len(entries))
	}
	e := entries[0]
	if e.Action != models.ActionQuarantine || e.PrevState != src || e.BackupData != want {
		t.Errorf("journal entry = %+v", e)
	}
}

func TestExecuteQuarantineMissingFileFails(t *testing.T) {
	f := newFixture(t)
	id := f.enqueue(t, models.CleanupItem{Type: models.ItemFile, Name: "gone.exe", OriginalPath: filepath.Join(t.TempDir(), "gone.exe")})

	res := f.exec.Execute(context.Background(), id)
	if res.Status != models.StatusFailed {
		t.Fatalf("status = %s", res.Status)
	}
	if len(f.journal.Entries()) != 0 {
		t.Error("failed action was journaled")
	}
	item, _ := f.queue.Get(id)
	if item.Status != models.StatusFailed || item.ErrorMsg == "" {
		t.Errorf("item = %+v", item)
	}
}

func TestExecuteDisableService(t *testing.T) {
	f := newFixture(t)
	f.mock.SetDWord(evilSvcKey, "Start", 2)

	id := f.enqueue(t, models.CleanupItem{Type: models.ItemService, Name: "EvilSvc", OriginalPath: evilSvcKey})
	res := f.exec.Execute(context.Background(), id)

	if res.Status != models.StatusCompleted {
		t.Fatalf("status = %s: %s", res.Status, res.Message)
	}
	if v, _ := f.mock.DWordValue(evilSvcKey, "Start"); v != 4 {
		t.Errorf("Start = %d, want 4", v)
	}
	if len(f.mock.StoppedSvcs) != 1 || f.mock.StoppedSvcs[0] != "EvilSvc" {
		t.Errorf("stopped services = %v", f.mock.StoppedSvcs)
	}
	e := f.journal.Entries()[0]
	if e.PrevState != "2" || e.NewState != "4" || e.BackupData != evilSvcKey {
		t.Errorf("journal entry = %+v", e)
	}
}

func TestExecuteDisableServiceMissingKey(t *testing.T) {
	f := newFixture(t)
	id := f.enqueue(t, models.CleanupItem{Type: models.ItemService, Name: "Ghost", OriginalPath: `HKLM\SYSTEM\CurrentControlSet\Services\Ghost`})
	res := f.exec.Execute(context.Background(), id)
	if res.Status != models.StatusFailed {
		t.Fatalf("status = %s", res.Status)
	}
}

func TestExecuteDisableTask(t *testing.T) {
	f := newFixture(t)
	id := f.enqueue(t, models.CleanupItem{Type: models.ItemScheduledTask, Name: `\Updater`, OriginalPath: `\Updater`})

	res := f.exec.Execute(context.Background(), id)
	if res.Status != models.StatusCompleted {
		t.Fatalf("status = %s: %s", res.Status, res.Message)
	}
	if len(f.mock.DisabledTasks) != 1 || f.mock.DisabledTasks[0] != `\Updater` {
		t.Errorf("disabled tasks = %v", f.mock.DisabledTasks)
	}
}

func TestExecuteDisableTaskSurfacesStderr(t *testing.T) {
	f := newFixture(t)
	f.mock.TaskResult = winsys.ProcResult{ExitCode: 1, Stderr: "ERROR: access is denied"}
	id := f.enqueue(t, models.CleanupItem{Type: models.ItemScheduledTask, Name: `\Updater`, OriginalPath: `\Updater`})

	res := f.exec.Execute(context.Background(), id)
	if res.Status != models.StatusFailed {
		t.Fatalf("status = %s", res.Status)
	}
	item, _ := f.queue.Get(id)
	if !strings.Contains(item.ErrorMsg, "access is denied") {
		t.Errorf("error = %q", item.ErrorMsg)
	}
}

func TestExecuteBackupAndDelete(t *testing.T) {
	f := newFixture(t)
	key := `HKLM\SOFTWARE\Evil`
	f.mock.SetString(key, "Payload", "x")

	id := f.enqueue(t, models.CleanupItem{Type: models.ItemRegistryKey, Name: key, OriginalPath: key})
	res := f.exec.Execute(context.Background(), id)

	if res.Status != models.StatusCompleted {
		t.Fatalf("status = %s: %s", res.Status, res.Message)
	}
	backup := filepath.Join(f.caseDir, "registry", id+".reg")
	if res.BackupPath != backup {
		t.Errorf("backup = %q", res.BackupPath)
	}
	if _, err := os.Stat(backup); err != nil {
		t.Error("backup file missing:", err)
	}
	if len(f.mock.DeletedKeys) != 1 || f.mock.DeletedKeys[0] != key {
		t.Errorf("deleted keys = %v", f.mock.DeletedKeys)
	}
}

func TestExecuteBackupFailureAbortsDelete(t *testing.T) {
	f := newFixture(t)
	key := `HKLM\SOFTWARE\Evil`
	f.mock.SetString(key, "Payload", "x")
	f.mock.ExportResult = winsys.ProcResult{ExitCode: 1, Stderr: "ERROR: export failed"}

	id := f.enqueue(t, models.CleanupItem{Type: models.ItemRegistryKey, Name: key, OriginalPath: key})
	res := f.exec.Execute(context.Background(), id)

	if res.Status != models.StatusFailed {
		t.Fatalf("status = %s", res.Status)
	}
	if len(f.mock.DeletedKeys) != 0 {
		t.Error("delete attempted without a verified backup")
	}
}

func TestExecuteDeleteFailureAfterExportKeepsBackupAndJournalsNothing(t *testing.T) {
	f := newFixture(t)
	// Key absent from the mock: export still writes a file, delete then fails.
	key := `HKLM\SOFTWARE\Ghost`

	id := f.enqueue(t, models.CleanupItem{Type: models.ItemRegistryKey, Name: key, OriginalPath: key})
	res := f.exec.Execute(context.Background(), id)

	if res.Status != models.StatusFailed {
		t.Fatalf("status = %s", res.Status)
	}
	if len(f.journal.Entries()) != 0 {
		t.Error("journal entry written for an action that changed nothing")
	}
	backup := filepath.Join(f.caseDir, "registry", id+".reg")
	if _, err := os.Stat(backup); err != nil {
		t.Error("backup file should remain for manual retry:", err)
	}
}

func TestExecuteAllSequentialSummary(t *testing.T) {
	f := newFixture(t)
	src := filepath.Join(t.TempDir(), "a.exe")
	if err := os.WriteFile(src, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	f.mock.SetDWord(evilSvcKey, "Start", 2)

	f.enqueue(t, models.CleanupItem{Type: models.ItemFile, Name: "a.exe", OriginalPath: src})
	f.enqueue(t, models.CleanupItem{Type: models.ItemService, Name: "EvilSvc", OriginalPath: evilSvcKey})
	f.enqueue(t, models.CleanupItem{Type: models.ItemFile, Name: "gone.exe", OriginalPath: filepath.Join(t.TempDir(), "gone.exe")})

	summary := f.exec.ExecuteAll(context.Background())
	if summary.Succeeded != 2 || summary.Failed != 1 {
		t.Errorf("summary = %+v", summary)
	}
	if len(summary.Results) != 3 {
		t.Errorf("results = %d", len(summary.Results))
	}
	// Journal order matches enqueue order for the successful actions.
	entries := f.journal.Entries()
	if len(entries) != 2 || entries[0].ItemType != models.ItemFile || entries[1].ItemType != models.ItemService {
		t.Errorf("journal order = %+v", entries)
	}
}

func TestJournalWriteFailureIsWarningNotFailure(t *testing.T) {
	caseDir := t.TempDir()
	jPath := filepath.Join(caseDir, "sub", "cleanup_journal.json")
	j, err := journal.OpenCleanup(jPath)
	if err != nil {
		t.Fatal(err)
	}
	// Block the journal directory with a plain file so every persist fails.
	if err := os.WriteFile(filepath.Join(caseDir, "sub"), []byte("x"), 0o600); err != nil {
		t.Fatal(err)
	}

	m := winsys.NewMock()
	q := NewQueue()
	exec := NewExecutor(m.Facility(), q, j, caseDir)

	src := filepath.Join(t.TempDir(), "evil.exe")
	if err := os.WriteFile(src, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	q.Enqueue(models.CleanupItem{Type: models.ItemFile, Name: "evil.exe", OriginalPath: src})
	id := q.Items()[0].ID

	res := exec.Execute(context.Background(), id)
	if res.Status != models.StatusCompleted {
		t.Fatalf("status = %s: %s", res.Status, res.Message)
	}
	if res.JournalWarning == "" {
		t.Error("journal write failure not surfaced as a warning")
	}
}

func TestUndoQuarantineRestoresFile(t *testing.T) {
	f := newFixture(t)
	dir := t.TempDir()
	src := filepath.Join(dir, "evil.exe")
	if err := os.WriteFile(src, []byte("payload"), 0o644); err != nil {
		t.Fatal(err)
	}

	id := f.enqueue(t, models.CleanupItem{Type: models.ItemFile, Name: "evil.exe", OriginalPath: src})
	if res := f.exec.Execute(context.Background(), id); res.Status != models.StatusCompleted {
		t.Fatalf("execute: %s", res.Message)
	}

	res, ok := f.exec.UndoLast(context.Background())
	if !ok || res.Status != models.StatusUndone {
		t.Fatalf("undo = %+v, %v", res, ok)
	}

	data, err := os.ReadFile(src)
	if err != nil || string(data) != "payload" {
		t.Errorf("original not restored: %v %q", err, data)
	}
	if e := f.journal.Entries()[0]; !e.Undone || e.UndoneAt == nil {
		t.Error("journal entry not marked undone")
	}
	item, _ := f.queue.Get(id)
	if item.Status != models.StatusUndone {
		t.Errorf("item status = %s", item.Status)
	}

	// Undone is terminal; nothing is left to undo.
	if _, ok := f.exec.UndoLast(context.Background()); ok {
		t.Error("second undo found an undoable entry")
	}
}

func TestUndoQuarantineMissingCopyFails(t *testing.T) {
	f := newFixture(t)
	src := filepath.Join(t.TempDir(), "evil.exe")
	if err := os.WriteFile(src, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	id := f.enqueue(t, models.CleanupItem{Type: models.ItemFile, Name: "evil.exe", OriginalPath: src})
	exec := f.exec.Execute(context.Background(), id)
	if err := os.Remove(exec.BackupPath); err != nil {
		t.Fatal(err)
	}

	res, ok := f.exec.UndoLast(context.Background())
	if !ok || res.Status != models.StatusFailed {
		t.Fatalf("undo = %+v", res)
	}
	// A failed undo keeps the entry undoable for a retry.
	if _, ok := f.journal.GetLastUndoable(); !ok {
		t.Error("entry marked undone despite failed undo")
	}
}

func TestUndoDisableServiceRestoresStart(t *testing.T) {
	f := newFixture(t)
	f.mock.SetDWord(evilSvcKey, "Start", 2)
	id := f.enqueue(t, models.CleanupItem{Type: models.ItemService, Name: "EvilSvc", OriginalPath: evilSvcKey})
	_ = f.exec.Execute(context.Background(), id)

	res, ok := f.exec.UndoLast(context.Background())
	if !ok || res.Status != models.StatusUndone {
		t.Fatalf("undo = %+v", res)
	}
	if v, _ := f.mock.DWordValue(evilSvcKey, "Start"); v != 2 {
		t.Errorf("Start = %d, want restored 2", v)
	}
}

func TestUndoBackupAndDeleteImportsBackup(t *testing.T) {
	f := newFixture(t)
	key := `HKLM\SOFTWARE\Evil`
	f.mock.SetString(key, "Payload", "x")
	id := f.enqueue(t, models.CleanupItem{Type: models.ItemRegistryKey, Name: key, OriginalPath: key})
	exec := f.exec.Execute(context.Background(), id)

	res, ok := f.exec.UndoLast(context.Background())
	if !ok || res.Status != models.StatusUndone {
		t.Fatalf("undo = %+v", res)
	}
	if len(f.mock.Imports) != 1 || f.mock.Imports[0] != exec.BackupPath {
		t.Errorf("imports = %v", f.mock.Imports)
	}
}

func TestUndoAllUnwindsNewestFirst(t *testing.T) {
	f := newFixture(t)
	dir := t.TempDir()
	srcA := filepath.Join(dir, "a.exe")
	srcB := filepath.Join(dir, "b.exe")
	for _, p := range []string{srcA, srcB} {
		if err := os.WriteFile(p, []byte("payload"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	idA := f.enqueue(t, models.CleanupItem{Type: models.ItemFile, Name: "a.exe", OriginalPath: srcA})
	idB := f.enqueue(t, models.CleanupItem{Type: models.ItemFile, Name: "b.exe", OriginalPath: srcB})
	if s := f.exec.ExecuteAll(context.Background()); s.Failed != 0 {
		t.Fatalf("setup failed: %+v", s)
	}

	summary := f.exec.UndoAll(context.Background())
	if summary.Succeeded != 2 || summary.Failed != 0 {
		t.Fatalf("summary = %d/%d (undone/failed)", summary.Succeeded, summary.Failed)
	}
	// Newest action unwinds first.
	if summary.Results[0].ItemID != idB || summary.Results[1].ItemID != idA {
		t.Errorf("undo order = %s, %s", summary.Results[0].ItemID, summary.Results[1].ItemID)
	}
	for _, p := range []string{srcA, srcB} {
		if _, err := os.Stat(p); err != nil {
			t.Errorf("original %s not restored: %v", p, err)
		}
	}
	for _, e := range f.journal.Entries() {
		if !e.Undone {
			t.Errorf("entry %s not marked undone", e.ID)
		}
	}

	if s := f.exec.UndoAll(context.Background()); len(s.Results) != 0 {
		t.Error("second pass found undoable entries")
	}
}

func TestUndoAllContinuesPastFailure(t *testing.T) {
	f := newFixture(t)
	dir := t.TempDir()
	srcA := filepath.Join(dir, "a.exe")
	srcB := filepath.Join(dir, "b.exe")
	for _, p := range []string{srcA, srcB} {
		if err := os.WriteFile(p, []byte("payload"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	f.enqueue(t, models.CleanupItem{Type: models.ItemFile, Name: "a.exe", OriginalPath: srcA})
	idB := f.enqueue(t, models.CleanupItem{Type: models.ItemFile, Name: "b.exe", OriginalPath: srcB})
	f.exec.ExecuteAll(context.Background())

	// Sabotage the newest action's quarantine copy; its undo fails but
	// the older action still unwinds.
	itemB, _ := f.queue.Get(idB)
	if err := os.Remove(itemB.BackupPath); err != nil {
		t.Fatal(err)
	}

	summary := f.exec.UndoAll(context.Background())
	if summary.Succeeded != 1 || summary.Failed != 1 {
		t.Fatalf("summary = %d/%d (undone/failed)", summary.Succeeded, summary.Failed)
	}
	if _, err := os.Stat(srcA); err != nil {
		t.Error("older action not restored:", err)
	}
	// The failed entry stays retryable.
	if entry, ok := f.journal.GetLastUndoable(); !ok || entry.ItemID != idB {
		t.Errorf("last undoable = %+v, %v", entry, ok)
	}
}

func TestUndoDisableTaskReenables(t *testing.T) {
	f := newFixture(t)
	id := f.enqueue(t, models.CleanupItem{Type: models.ItemScheduledTask, Name: `\Updater`, OriginalPath: `\Updater`})
	_ = f.exec.Execute(context.Background(), id)

	if res, ok := f.exec.UndoLast(context.Background()); !ok || res.Status != models.StatusUndone {
		t.Fatalf("undo = %+v", res)
	}
	if len(f.mock.EnabledTasks) != 1 || f.mock.EnabledTasks[0] != `\Updater` {
		t.Errorf("enabled tasks = %v", f.mock.EnabledTasks)
	}
}
