package journal

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"hostmedic/models"
)

func cleanupEntry(id string) models.CleanupJournalEntry {
	return models.CleanupJournalEntry{
		ID:        id,
		ItemID:    "item-" + id,
		Action:    models.ActionQuarantine,
		Timestamp: time.Now().UTC(),
		ItemType:  models.ItemFile,
		Name:      "evil.exe",
	}
}

func TestRecordPersistsWholeArray(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cleanup_journal.json")
	j, err := OpenCleanup(path)
	if err != nil {
		t.Fatal(err)
	}

	if err := j.Record(cleanupEntry("a")); err != nil {
		t.Fatal(err)
	}
	if err := j.Record(cleanupEntry("b")); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var onDisk []models.CleanupJournalEntry
	if err := json.Unmarshal(data, &onDisk); err != nil {
		t.Fatal(err)
	}
	if len(onDisk) != 2 || onDisk[0].ID != "a" || onDisk[1].ID != "b" {
		t.Fatalf("on-disk journal = %+v", onDisk)
	}
}

func TestOpenCleanupReloadsHistory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cleanup_journal.json")
	j, _ := OpenCleanup(path)
	_ = j.Record(cleanupEntry("a"))
	_ = j.Record(cleanupEntry("b"))
	_ = j.MarkUndone("b")

	reopened, err := OpenCleanup(path)
	if err != nil {
		t.Fatal(err)
	}
	entries := reopened.Entries()
	if len(entries) != 2 {
		t.Fatalf("entries = %d", len(entries))
	}
	if !entries[1].Undone || entries[1].UndoneAt == nil {
		t.Error("undone flag lost across reload")
	}

	last, ok := reopened.GetLastUndoable()
	if !ok || last.ID != "a" {
		t.Errorf("last undoable = %+v, %v", last, ok)
	}
}

func TestGetLastUndoableScansBackward(t *testing.T) {
	j, _ := OpenCleanup(filepath.Join(t.TempDir(), "j.json"))
	_ = j.Record(cleanupEntry("a"))
	_ = j.Record(cleanupEntry("b"))
	_ = j.Record(cleanupEntry("c"))

	last, ok := j.GetLastUndoable()
	if !ok || last.ID != "c" {
		t.Fatalf("last = %+v", last)
	}
	_ = j.MarkUndone("c")

	last, ok = j.GetLastUndoable()
	if !ok || last.ID != "b" {
		t.Fatalf("after undo, last = %+v", last)
	}
	_ = j.MarkUndone("b")
	_ = j.MarkUndone("a")

	if _, ok := j.GetLastUndoable(); ok {
		t.Error("fully undone journal still reports an undoable entry")
	}
}

func TestMarkUndoneUnknownID(t *testing.T) {
	j, _ := OpenCleanup(filepath.Join(t.TempDir(), "j.json"))
	if err := j.MarkUndone("nope"); err != ErrNoEntry {
		t.Errorf("err = %v", err)
	}
}

func TestOpenCleanupRejectsCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "j.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := OpenCleanup(path); err == nil {
		t.Error("corrupt journal opened without error")
	}
}

func TestRecordKeepsEntryWhenWriteFails(t *testing.T) {
	// Point the journal at a path whose parent is a file, so every persist
	// attempt fails.
	dir := t.TempDir()
	blocker := filepath.Join(dir, "blocked")
	if err := os.WriteFile(blocker, []byte("x"), 0o600); err != nil {
		t.Fatal(err)
	}
	j := &CleanupJournal{path: filepath.Join(blocker, "j.json")}

	if err := j.Record(cleanupEntry("a")); err == nil {
		t.Fatal("expected write failure")
	}
	// The session copy must survive so undo still works.
	if last, ok := j.GetLastUndoable(); !ok || last.ID != "a" {
		t.Errorf("in-memory entry lost: %+v, %v", last, ok)
	}
}

func TestHardenJournalRollback(t *testing.T) {
	path := filepath.Join(t.TempDir(), "case1_harden.json")
	j, err := OpenHarden(path)
	if err != nil {
		t.Fatal(err)
	}
	_ = j.Record(models.HardenJournalEntry{ID: "h1", ActionID: "defender_rt", Name: "Defender real-time"})
	_ = j.Record(models.HardenJournalEntry{ID: "h2", ActionID: "smb1", Name: "SMBv1"})

	last, ok := j.GetLastUndoable()
	if !ok || last.ID != "h2" {
		t.Fatalf("last = %+v", last)
	}
	if err := j.MarkUndone("h2"); err != nil {
		t.Fatal(err)
	}
	got, _ := j.Get("h2")
	if !got.RolledBack || got.RolledBackAt == nil {
		t.Error("rollback flag not persisted")
	}
}
