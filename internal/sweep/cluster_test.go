package sweep

import (
	"io/fs"
	"os"
	"reflect"
	"testing"
	"time"

	"hostmedic/models"
)

// fakeInfo is a minimal fs.FileInfo for cluster target resolution.
type fakeInfo struct {
	mod time.Time
	dir bool
}

func (f fakeInfo) Name() string       { return "" }
func (f fakeInfo) Size() int64        { return 0 }
func (f fakeInfo) Mode() fs.FileMode  { return 0 }
func (f fakeInfo) ModTime() time.Time { return f.mod }
func (f fakeInfo) IsDir() bool        { return f.dir }
func (f fakeInfo) Sys() any           { return nil }

func statMap(m map[string]fakeInfo) func(string) (os.FileInfo, error) {
	return func(path string) (os.FileInfo, error) {
		if fi, ok := m[path]; ok {
			return fi, nil
		}
		return nil, os.ErrNotExist
	}
}

func TestApplyPriorityOrder(t *testing.T) {
	base := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
	target := `C:\Users\bob\Downloads\dropper.exe`

	c := &Clusterer{Stat: statMap(map[string]fakeInfo{
		target: {mod: base},
	})}

	entries := []models.SweepEntry{
		// Name contains the token, timestamp inside the window, and the path
		// is inside the target's folder: focus-hit must win.
		{Name: "dropper.exe.bak", Path: `C:\Users\bob\Downloads\dropper.exe.bak`, Modified: base.Add(10 * time.Minute)},
		// Inside the window and inside the folder: time-cluster wins.
		{Name: "helper.dll", Path: `C:\Users\bob\Downloads\helper.dll`, Modified: base.Add(30 * time.Minute)},
		// Only the folder matches.
		{Name: "old.exe", Path: `C:\Users\bob\Downloads\old.exe`, Modified: base.Add(-30 * time.Hour)},
		// Nothing matches.
		{Name: "sys.exe", Path: `C:\Windows\sys.exe`, Modified: base.Add(48 * time.Hour)},
	}

	c.Apply(entries, []string{target}, models.DefaultClusterWindow)

	if !entries[0].FocusHit || entries[0].TimeCluster || entries[0].FolderCluster {
		t.Errorf("entry 0 flags = %+v", entries[0])
	}
	if entries[1].FocusHit || !entries[1].TimeCluster || entries[1].FolderCluster {
		t.Errorf("entry 1 flags = %+v", entries[1])
	}
	if entries[2].FocusHit || entries[2].TimeCluster || !entries[2].FolderCluster {
		t.Errorf("entry 2 flags = %+v", entries[2])
	}
	if entries[3].ClusterTarget != "" || entries[3].FocusHit || entries[3].TimeCluster || entries[3].FolderCluster {
		t.Errorf("entry 3 flags = %+v", entries[3])
	}
	for i := 0; i < 3; i++ {
		if entries[i].ClusterTarget != target {
			t.Errorf("entry %d target = %q", i, entries[i].ClusterTarget)
		}
	}
}

func TestApplyIdempotent(t *testing.T) {
	base := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
	target := `C:\Users\bob\Downloads\dropper.exe`
	c := &Clusterer{Stat: statMap(map[string]fakeInfo{target: {mod: base}})}

	entries := []models.SweepEntry{
		{Name: "dropper-config.dat", Path: `C:\tmp\dropper-config.dat`, Modified: base},
		{Name: "near.exe", Path: `C:\other\near.exe`, Modified: base.Add(time.Hour)},
	}
	c.Apply(entries, []string{target}, models.DefaultClusterWindow)
	first := make([]models.SweepEntry, len(entries))
	copy(first, entries)

	c.Apply(entries, []string{target}, models.DefaultClusterWindow)
	if !reflect.DeepEqual(first, entries) {
		t.Errorf("recompute diverged:\n first: %+v\nsecond: %+v", first, entries)
	}
}

// Changing only the window must not change any focus-hit flag; time-cluster
// flags may flip.
func TestWindowChangeLeavesFocusHitsAlone(t *testing.T) {
	base := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
	target := `C:\Users\bob\Downloads\dropper.exe`
	c := &Clusterer{Stat: statMap(map[string]fakeInfo{target: {mod: base}})}

	entries := []models.SweepEntry{
		{Name: "dropper.log", Path: `C:\x\dropper.log`, Modified: base.Add(6 * time.Hour)},
		{Name: "other.exe", Path: `C:\x\other.exe`, Modified: base.Add(6 * time.Hour)},
	}

	c.Apply(entries, []string{target}, models.Cluster8h)
	if !entries[0].FocusHit || !entries[1].TimeCluster {
		t.Fatalf("wide window flags = %+v %+v", entries[0], entries[1])
	}

	c.Apply(entries, []string{target}, models.Cluster1h)
	if !entries[0].FocusHit {
		t.Error("window change flipped a focus-hit flag")
	}
	if entries[1].TimeCluster {
		t.Error("time-cluster flag survived a narrower window")
	}
}

func TestApplyDirectoryTarget(t *testing.T) {
	dir := `C:\staging`
	c := &Clusterer{Stat: statMap(map[string]fakeInfo{dir: {dir: true}})}

	entries := []models.SweepEntry{
		{Name: "a.exe", Path: `C:\staging\a.exe`},
		{Name: "b.exe", Path: `C:\stagingarea\b.exe`},
	}
	c.Apply(entries, []string{dir}, models.DefaultClusterWindow)

	if !entries[0].FolderCluster {
		t.Error("file under directory target not folder-clustered")
	}
	if entries[1].FolderCluster {
		t.Error("sibling prefix directory wrongly folder-clustered")
	}
}
