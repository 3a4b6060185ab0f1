// Package journal persists the per-case action history that undo depends on.
// Each journal is an ordered JSON array on disk, rewritten wholesale on every
// append. Entries are logically append-only: after being recorded, only the
// undone flag and its timestamp ever change.
package journal

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"hostmedic/models"
)

// ErrNoEntry is returned when a lookup or mark targets a missing entry id.
var ErrNoEntry = errors.New("journal: no such entry")

// CleanupJournal records quarantine/disable/registry actions for one case.
type CleanupJournal struct {
	mu      sync.Mutex
	path    string
	entries []models.CleanupJournalEntry
}

// OpenCleanup loads the journal at path, tolerating a missing file. A file
// that exists but cannot be parsed is an error; silently discarding history
// would break undo.
func OpenCleanup(path string) (*CleanupJournal, error) {
	j := &CleanupJournal{path: path}
	if err := loadArray(path, &j.entries); err != nil {
		return nil, err
	}
	return j, nil
}

// Record appends the entry and persists the whole array synchronously. The
// entry is kept in memory even when the write fails, so undo keeps working
// for the current session; the returned error signals that on-disk history
// is behind.
func (j *CleanupJournal) Record(e models.CleanupJournalEntry) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.entries = append(j.entries, e)
	return writeArray(j.path, j.entries)
}

// Entries returns a copy of the journal in append order.
func (j *CleanupJournal) Entries() []models.CleanupJournalEntry {
	j.mu.Lock()
	defer j.mu.Unlock()
	return append([]models.CleanupJournalEntry(nil), j.entries...)
}

// GetLastUndoable scans backward for the most recent entry whose undone flag
// is clear.
func (j *CleanupJournal) GetLastUndoable() (models.CleanupJournalEntry, bool) {
	j.mu.Lock()
	defer j.mu.Unlock()
	for i := len(j.entries) - 1; i >= 0; i-- {
		if !j.entries[i].Undone {
			return j.entries[i], true
		}
	}
	return models.CleanupJournalEntry{}, false
}

// Get returns the entry with the given id.
func (j *CleanupJournal) Get(id string) (models.CleanupJournalEntry, bool) {
	j.mu.Lock()
	defer j.mu.Unlock()
	for _, e := range j.entries {
		if e.ID == id {
			return e, true
		}
	}
	return models.CleanupJournalEntry{}, false
}

// MarkUndone flips the undone flag, stamps the time and persists.
func (j *CleanupJournal) MarkUndone(id string) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	for i := range j.entries {
		if j.entries[i].ID == id {
			now := time.Now().UTC()
			j.entries[i].Undone = true
			j.entries[i].UndoneAt = &now
			return writeArray(j.path, j.entries)
		}
	}
	return ErrNoEntry
}

// HardenJournal records security-control toggles for one case. Same
// discipline as CleanupJournal.
type HardenJournal struct {
	mu      sync.Mutex
	path    string
	entries []models.HardenJournalEntry
}

// OpenHarden loads the hardening journal at path, tolerating a missing file.
func OpenHarden(path string) (*HardenJournal, error) {
	j := &HardenJournal{path: path}
	if err := loadArray(path, &j.entries); err != nil {
		return nil, err
	}
	return j, nil
}

func (j *HardenJournal) Record(e models.HardenJournalEntry) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.entries = append(j.entries, e)
	return writeArray(j.path, j.entries)
}

func (j *HardenJournal) Entries() []models.HardenJournalEntry {
	j.mu.Lock()
	defer j.mu.Unlock()
	return append([]models.HardenJournalEntry(nil), j.entries...)
}

// GetLastUndoable scans backward for the most recent entry not rolled back.
func (j *HardenJournal) GetLastUndoable() (models.HardenJournalEntry, bool) {
	j.mu.Lock()
	defer j.mu.Unlock()
	for i := len(j.entries) - 1; i >= 0; i-- {
		if !j.entries[i].RolledBack {
			return j.entries[i], true
		}
	}
	return models.HardenJournalEntry{}, false
}

func (j *HardenJournal) Get(id string) (models.HardenJournalEntry, bool) {
	j.mu.Lock()
	defer j.mu.Unlock()
	for _, e := range j.entries {
		if e.ID == id {
			return e, true
		}
	}
	return models.HardenJournalEntry{}, false
}

// MarkUndone flips the rolled-back flag, stamps the time and persists.
func (j *HardenJournal) MarkUndone(id string) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	for i := range j.entries {
		if j.entries[i].ID == id {
			now := time.Now().UTC()
			j.entries[i].RolledBack = true
			j.entries[i].RolledBackAt = &now
			return writeArray(j.path, j.entries)
		}
	}
	return ErrNoEntry
}

func loadArray(path string, dst any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read journal %s: %w", path, err)
	}
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("parse journal %s: %w", path, err)
	}
	return nil
}

func writeArray(path string, entries any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create journal dir: %w", err)
	}
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("encode journal: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write journal: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replace journal: %w", err)
	}
	return nil
}
