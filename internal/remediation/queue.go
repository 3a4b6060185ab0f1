// Package remediation holds the cleanup queue and the executor that carries
// queued actions out against the host, journaling every change for undo.
package remediation

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"hostmedic/models"
)

var (
	// ErrNotQueued is returned when an operation names an unknown item id.
	ErrNotQueued = errors.New("remediation: item not in queue")
	// ErrCompleted is returned when removing a completed item; it must be
	// undone first.
	ErrCompleted = errors.New("remediation: completed item must be undone before removal")
)

// Queue is the in-memory staging area for cleanup items. At most one item
// per distinct original path (case-insensitive) may exist at a time;
// duplicate enqueues are silent no-ops.
type Queue struct {
	mu    sync.Mutex
	items []models.CleanupItem
}

// NewQueue returns an empty queue.
func NewQueue() *Queue {
	return &Queue{}
}

// Enqueue stages an item. A missing id is generated, the action defaults
// from the item type, and status is forced to Pending. Returns false when an
// item with the same original path is already staged.
func (q *Queue) Enqueue(item models.CleanupItem) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	for _, existing := range q.items {
		if strings.EqualFold(existing.OriginalPath, item.OriginalPath) {
			return false
		}
	}
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	if item.Action == "" {
		item.Action = item.Type.DefaultAction()
	}
	item.Status = models.StatusPending
	item.QueuedAt = time.Now().UTC()
	q.items = append(q.items, item)
	return true
}

// Dequeue removes an item from the queue. Completed items are protected;
// they carry the only queue-side record of a change that is still undoable.
func (q *Queue) Dequeue(id string) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	for i, item := range q.items {
		if item.ID != id {
			continue
		}
		if item.Status == models.StatusCompleted {
			return ErrCompleted
		}
		q.items = append(q.items[:i], q.items[i+1:]...)
		return nil
	}
	return ErrNotQueued
}

// Transition moves an item to the next lifecycle state, stamping the
// execution time on terminal transitions and attaching errMsg on failure.
func (q *Queue) Transition(id string, next models.CleanupStatus, errMsg string) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	for i := range q.items {
		if q.items[i].ID != id {
			continue
		}
		cur := q.items[i].Status
		if !cur.CanTransition(next) {
			return fmt.Errorf("remediation: illegal transition %s -> %s", cur, next)
		}
		q.items[i].Status = next
		q.items[i].ErrorMsg = errMsg
		if next.IsTerminal() {
			now := time.Now().UTC()
			q.items[i].ExecutedAt = &now
		}
		return nil
	}
	return ErrNotQueued
}

// SetBackupPath records where an item's quarantine copy or registry backup
// landed. Populated only after a successful action.
func (q *Queue) SetBackupPath(id, path string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for i := range q.items {
		if q.items[i].ID == id {
			q.items[i].BackupPath = path
			return
		}
	}
}

// Get returns a copy of the item with the given id.
func (q *Queue) Get(id string) (models.CleanupItem, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for _, item := range q.items {
		if item.ID == id {
			return item, true
		}
	}
	return models.CleanupItem{}, false
}

// Items returns a copy of the queue in enqueue order.
func (q *Queue) Items() []models.CleanupItem {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]models.CleanupItem(nil), q.items...)
}

// Pending returns the ids of all pending items in enqueue order.
func (q *Queue) Pending() []string {
	q.mu.Lock()
	defer q.mu.Unlock()
	var ids []string
	for _, item := range q.items {
		if item.Status == models.StatusPending {
			ids = append(ids, item.ID)
		}
	}
	return ids
}

// Restore replaces the queue contents with previously persisted items,
// keeping their ids, statuses and timestamps.
func (q *Queue) Restore(items []models.CleanupItem) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.items = append([]models.CleanupItem(nil), items...)
}

// Len reports the number of staged items.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}
