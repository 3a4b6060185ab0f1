// Package collector enumerates fixed autostart locations (run keys, startup
// folders, services, scheduled tasks, Winlogon, IFEO) and classifies each
// entry's risk. Collectors degrade per-location: an inaccessible hive or
// folder reduces coverage but never aborts the scan.
package collector

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"hostmedic/internal/focus"
	"hostmedic/internal/winsys"
	"hostmedic/models"
)

// Collector walks the persistence surface through the winsys facility.
type Collector struct {
	fac   *winsys.Facility
	focus *focus.Registry

	// FileExists is injectable for tests; defaults to an os.Stat probe.
	FileExists func(string) bool
	// ProfilesRoot is where user profiles live; default C:\Users.
	ProfilesRoot string
	// ProgramData is the machine-wide application data root.
	ProgramData string
	// HashWorkers bounds the hashing pool; 0 disables hashing.
	HashWorkers int
}

// New creates a Collector over the given facility and focus registry.
func New(fac *winsys.Facility, reg *focus.Registry) *Collector {
	return &Collector{
		fac:          fac,
		focus:        reg,
		FileExists:   defaultFileExists,
		ProfilesRoot: `C:\Users`,
		ProgramData:  `C:\ProgramData`,
		HashWorkers:  4,
	}
}

// collectorFunc is one autostart location walker.
type collectorFunc struct {
	name string
	run  func(ctx context.Context) ([]models.PersistItem, []string, error)
}

// Run executes every collector, classifies, flags focus hits, hashes flagged
// binaries off the calling goroutine, and returns the aggregate with a
// structured per-collector report.
func (c *Collector) Run(ctx context.Context, caseID string) ([]models.PersistItem, models.ScanReport) {
	report := models.ScanReport{
		CaseID:    caseID,
		Kind:      "persist",
		StartedAt: time.Now().UTC(),
	}

	collectors := []collectorFunc{
		{"run_keys", c.collectRunKeys},
		{"startup_folders", c.collectStartupFolders},
		{"services", c.collectServices},
		{"scheduled_tasks", c.collectTasks},
		{"winlogon", c.collectWinlogon},
		{"ifeo", c.collectIFEO},
	}

	var items []models.PersistItem
	for _, col := range collectors {
		start := time.Now()
		got, errs, err := col.run(ctx)
		res := models.CollectorResult{
			Collector: col.name,
			Status:    models.CollectorSuccess,
			Count:     len(got),
			Errors:    errs,
			Duration:  time.Since(start),
		}
		switch {
		case err != nil:
			res.Status = models.CollectorFailed
			res.Errors = append(res.Errors, err.Error())
			slog.Warn("collector failed", "collector", col.name, "error", err)
		case len(errs) > 0:
			res.Status = models.CollectorPartial
			slog.Debug("collector degraded", "collector", col.name, "errors", len(errs))
		}
		items = append(items, got...)
		report.Collectors = append(report.Collectors, res)
	}

	for i := range items {
		if _, hit := c.focus.Matches(items[i].ExePath); hit {
			items[i].FocusHit = true
		} else if _, hit := c.focus.Matches(items[i].Name); hit {
			items[i].FocusHit = true
		}
	}

	c.hashItems(ctx, items)

	sort.SliceStable(items, func(i, j int) bool {
		if items[i].Risk.IsFlagged() != items[j].Risk.IsFlagged() {
			return items[i].Risk.IsFlagged()
		}
		return items[i].Source < items[j].Source
	})

	report.FinishedAt = time.Now().UTC()
	report.Total = len(items)
	for _, it := range items {
		if it.Risk.IsFlagged() {
			report.Flagged++
		}
	}
	return items, report
}

// ApplyBaseline marks items absent from the previous snapshot. A nil
// previous set (first scan of the case) marks nothing new.
func ApplyBaseline(items []models.PersistItem, previous []models.PersistItem) {
	if previous == nil {
		return
	}
	known := make(map[string]struct{}, len(previous))
	for _, p := range previous {
		known[p.BaselineKey()] = struct{}{}
	}
	for i := range items {
		if _, ok := known[items[i].BaselineKey()]; !ok {
			items[i].NewSince = true
		}
	}
}
