// Package sweep walks user-writable locations for recently modified artifacts
// of interest, runs a services/drivers deep-scan, and correlates the batch
// against the investigator's focus targets.
package sweep

import (
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"hostmedic/internal/winsys"
	"hostmedic/models"
)

// Scanner discovers sweep entries. Walks have no mid-run cancellation; the
// MaxFiles and MaxSeconds limits bound the window instead.
type Scanner struct {
	fac *winsys.Facility

	// FileExists is injectable for tests; defaults to an os.Stat probe.
	FileExists func(string) bool
	// ProfilesRoot is where user profiles live; default C:\Users.
	ProfilesRoot string
	// ProgramData is the machine-wide application data root.
	ProgramData string
	// MaxFiles caps how many matching files one sweep may return.
	MaxFiles int
	// MaxElapsed caps total walk time.
	MaxElapsed time.Duration

	// now is injectable so age rules are testable.
	now func() time.Time
}

// NewScanner creates a Scanner with the standard limits.
func NewScanner(fac *winsys.Facility) *Scanner {
	return &Scanner{
		fac:          fac,
		FileExists:   fileExists,
		ProfilesRoot: `C:\Users`,
		ProgramData:  `C:\ProgramData`,
		MaxFiles:     20000,
		MaxElapsed:   5 * time.Minute,
		now:          time.Now,
	}
}

func fileExists(path string) bool {
	if path == "" {
		return false
	}
	_, err := os.Stat(path)
	return err == nil
}

// roots lists every directory a sweep walks: the visible and user-writable
// trees of each discoverable profile, plus ProgramData.
func (s *Scanner) roots() []struct{ dir, label string } {
	var out []struct{ dir, label string }
	if entries, err := os.ReadDir(s.ProfilesRoot); err == nil {
		for _, e := range entries {
			if !e.IsDir() {
				continue
			}
			profile := filepath.Join(s.ProfilesRoot, e.Name())
			for _, sub := range []string{"Desktop", "Downloads", "AppData"} {
				out = append(out, struct{ dir, label string }{
					dir:   filepath.Join(profile, sub),
					label: sub + " (" + e.Name() + ")",
				})
			}
		}
	}
	out = append(out, struct{ dir, label string }{dir: s.ProgramData, label: "ProgramData"})
	return out
}

// Run walks all roots for files within the lookback window and appends the
// services deep-scan. Entries come back severity-sorted, HIGH first. There is
// no mid-run cancellation; MaxFiles and MaxElapsed bound the walk instead.
func (s *Scanner) Run(lookback models.LookbackWindow) ([]models.SweepEntry, models.ScanReport) {
	report := models.ScanReport{
		Kind:      "sweep",
		StartedAt: time.Now().UTC(),
	}

	cutoff := s.now().Add(-lookback.Duration())
	deadline := s.now().Add(s.MaxElapsed)

	var entries []models.SweepEntry
	truncated := false
	fileErrs := []string{}
	start := time.Now()
	for _, root := range s.roots() {
		if truncated {
			break
		}
		err := filepath.WalkDir(root.dir, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				// Unreadable directories reduce coverage, nothing more.
				return nil
			}
			if len(entries) >= s.MaxFiles || s.now().After(deadline) {
				truncated = true
				return fs.SkipAll
			}
			if d.IsDir() {
				return nil
			}
			cc, ok := classifyContent(path)
			if !ok {
				return nil
			}
			info, err := d.Info()
			if err != nil {
				return nil
			}
			mod := info.ModTime()
			if mod.Before(cutoff) {
				return nil
			}
			loc := classifyLocation(path)
			sev, reason := fileSeverity(loc, cc, s.now().Sub(mod))
			entries = append(entries, models.SweepEntry{
				Category: models.SweepFile,
				Severity: sev,
				Path:     path,
				Name:     d.Name(),
				Source:   root.label,
				Reason:   reason,
				Modified: mod.UTC(),
			})
			return nil
		})
		if err != nil && !os.IsNotExist(err) {
			fileErrs = append(fileErrs, root.label+": "+err.Error())
		}
	}
	fileRes := models.CollectorResult{
		Collector: "files",
		Status:    models.CollectorSuccess,
		Count:     len(entries),
		Errors:    fileErrs,
		Duration:  time.Since(start),
	}
	if len(fileErrs) > 0 {
		fileRes.Status = models.CollectorPartial
	}
	report.Collectors = append(report.Collectors, fileRes)

	start = time.Now()
	deep, err := s.DeepScanServices()
	deepRes := models.CollectorResult{
		Collector: "services_deep",
		Status:    models.CollectorSuccess,
		Count:     len(deep),
		Duration:  time.Since(start),
	}
	if err != nil {
		deepRes.Status = models.CollectorFailed
		deepRes.Errors = []string{err.Error()}
		slog.Warn("services deep-scan failed", "error", err)
	}
	report.Collectors = append(report.Collectors, deepRes)
	entries = append(entries, deep...)

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Severity.Weight() > entries[j].Severity.Weight()
	})

	report.FinishedAt = time.Now().UTC()
	report.Total = len(entries)
	report.Truncated = truncated
	for _, e := range entries {
		if e.Severity == models.SeverityHigh {
			report.Flagged++
		}
	}
	return entries, report
}
