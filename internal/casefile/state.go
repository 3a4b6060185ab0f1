package casefile

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"hostmedic/models"
)

// Focus targets and the cleanup queue survive between invocations as plain
// JSON files next to the journals. Loaded on Open, saved through the Save*
// methods after mutations.

const (
	focusFile = "focus.json"
	queueFile = "queue.json"
)

// loadState seeds the focus registry and queue from the case directory.
func (s *Session) loadState() error {
	var targets []string
	if err := readJSON(filepath.Join(s.Dir, focusFile), &targets); err != nil {
		return err
	}
	for _, t := range targets {
		s.Focus.SetFocusTarget(t)
	}

	var items []models.CleanupItem
	if err := readJSON(filepath.Join(s.Dir, queueFile), &items); err != nil {
		return err
	}
	if len(items) > 0 {
		s.Queue.Restore(items)
	}
	return nil
}

// SaveFocus persists the current focus targets.
func (s *Session) SaveFocus() error {
	return writeJSON(filepath.Join(s.Dir, focusFile), s.Focus.GetFocusTargets())
}

// SaveQueue persists the current queue contents.
func (s *Session) SaveQueue() error {
	return writeJSON(filepath.Join(s.Dir, queueFile), s.Queue.Items())
}

func readJSON(path string, dst any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read %s: %w", path, err)
	}
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return os.Rename(tmp, path)
}
