package sweep

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"hostmedic/models"
)

// Clusterer tags sweep entries that correlate with focus targets. Every run
// recomputes all flags for the whole batch from scratch; flags never
// accumulate across runs.
type Clusterer struct {
	// Stat resolves a focus target to its on-disk metadata; injectable for
	// tests. Targets that do not resolve still participate in focus-hit
	// matching but not in time or folder clustering.
	Stat func(string) (os.FileInfo, error)
}

// NewClusterer returns a Clusterer over the real filesystem.
func NewClusterer() *Clusterer {
	return &Clusterer{Stat: os.Stat}
}

type targetInfo struct {
	token   string
	modTime time.Time
	hasTime bool
	dir     string
}

// Apply recomputes FocusHit, TimeCluster, FolderCluster and ClusterTarget
// for every entry. When several conditions hold, focus-hit wins over
// time-cluster, which wins over folder-cluster; within a condition the first
// matching target in registry order is recorded.
func (c *Clusterer) Apply(entries []models.SweepEntry, targets []string, window models.ClusterWindow) {
	infos := make([]targetInfo, 0, len(targets))
	for _, t := range targets {
		ti := targetInfo{token: t}
		if fi, err := c.Stat(t); err == nil {
			ti.modTime = fi.ModTime()
			ti.hasTime = true
			if fi.IsDir() {
				ti.dir = t
			} else {
				ti.dir = filepath.Dir(t)
			}
		}
		infos = append(infos, ti)
	}

	for i := range entries {
		e := &entries[i]
		e.FocusHit, e.TimeCluster, e.FolderCluster = false, false, false
		e.ClusterTarget = ""

		if tok, ok := matchFocus(e, infos); ok {
			e.FocusHit = true
			e.ClusterTarget = tok
			continue
		}
		if tok, ok := matchTime(e, infos, window.Duration()); ok {
			e.TimeCluster = true
			e.ClusterTarget = tok
			continue
		}
		if tok, ok := matchFolder(e, infos); ok {
			e.FolderCluster = true
			e.ClusterTarget = tok
		}
	}
}

func matchFocus(e *models.SweepEntry, infos []targetInfo) (string, bool) {
	name := strings.ToLower(e.Name)
	path := strings.ToLower(e.Path)
	for _, ti := range infos {
		tok := strings.ToLower(ti.token)
		if strings.Contains(name, tok) || strings.Contains(path, tok) {
			return ti.token, true
		}
	}
	return "", false
}

func matchTime(e *models.SweepEntry, infos []targetInfo, window time.Duration) (string, bool) {
	if e.Modified.IsZero() {
		return "", false
	}
	for _, ti := range infos {
		if !ti.hasTime {
			continue
		}
		delta := e.Modified.Sub(ti.modTime)
		if delta < 0 {
			delta = -delta
		}
		if delta <= window {
			return ti.token, true
		}
	}
	return "", false
}

func matchFolder(e *models.SweepEntry, infos []targetInfo) (string, bool) {
	path := normPath(e.Path)
	for _, ti := range infos {
		if ti.dir == "" {
			continue
		}
		dir := normPath(ti.dir)
		if !strings.HasSuffix(dir, `\`) {
			dir += `\`
		}
		if strings.HasPrefix(path, dir) {
			return ti.token, true
		}
	}
	return "", false
}

// normPath lowers and backslash-normalises a path for comparison.
func normPath(p string) string {
	return strings.ToLower(strings.ReplaceAll(p, "/", `\`))
}
