package models

import "time"

// SweepCategory identifies what kind of artifact a SweepEntry describes.
type SweepCategory string

const (
	SweepFile    SweepCategory = "File"
	SweepService SweepCategory = "Service"
	SweepDriver  SweepCategory = "Driver"
)

// LookbackWindow is the operator-selected sweep recency window.
type LookbackWindow time.Duration

const (
	Lookback24h LookbackWindow = LookbackWindow(24 * time.Hour)
	Lookback3d  LookbackWindow = LookbackWindow(3 * 24 * time.Hour)
	Lookback7d  LookbackWindow = LookbackWindow(7 * 24 * time.Hour)
	Lookback30d LookbackWindow = LookbackWindow(30 * 24 * time.Hour)
)

func (w LookbackWindow) Duration() time.Duration { return time.Duration(w) }

// ClusterWindow is the symmetric time tolerance for time-clustering a sweep
// entry against a focus target's own last-write timestamp.
type ClusterWindow time.Duration

const (
	Cluster1h ClusterWindow = ClusterWindow(1 * time.Hour)
	Cluster2h ClusterWindow = ClusterWindow(2 * time.Hour)
	Cluster4h ClusterWindow = ClusterWindow(4 * time.Hour)
	Cluster8h ClusterWindow = ClusterWindow(8 * time.Hour)

	// DefaultClusterWindow is the window used when the operator has not
	// picked one.
	DefaultClusterWindow = Cluster2h
)

func (w ClusterWindow) Duration() time.Duration { return time.Duration(w) }

// SweepEntry is one file/service/driver artifact found during a sweep.
// The three cluster flags are mutually independent and are always recomputed
// from scratch for the whole batch; they are never patched incrementally.
type SweepEntry struct {
	Category SweepCategory `json:"category"`
	Severity SeverityLevel `json:"severity"`
	Path     string        `json:"path"`
	Name     string        `json:"name"`
	Source   string        `json:"source"`
	Reason   string        `json:"reason"`
	Modified time.Time     `json:"modified"`

	FocusHit      bool   `json:"focus_hit"`
	TimeCluster   bool   `json:"time_cluster"`
	FolderCluster bool   `json:"folder_cluster"`
	ClusterTarget string `json:"cluster_target,omitempty"`
}
