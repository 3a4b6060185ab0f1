package models

import "time"

// LocationType identifies the autostart mechanism a PersistItem came from.
type LocationType string

const (
	LocationRegistry      LocationType = "Registry"
	LocationStartupFolder LocationType = "StartupFolder"
	LocationService       LocationType = "Service"
	LocationDriver        LocationType = "Driver"
	LocationScheduledTask LocationType = "ScheduledTask"
	LocationWinlogon      LocationType = "Winlogon"
	LocationIFEO          LocationType = "IFEO"
)

// MITRE ATT&CK technique ids attached to persistence findings.
const (
	TechniqueRunKeys       = "T1547.001"
	TechniqueStartupFolder = "T1547.001"
	TechniqueService       = "T1543.003"
	TechniqueScheduledTask = "T1053.005"
	TechniqueWinlogon      = "T1547.004"
	TechniqueIFEO          = "T1546.012"
	TechniqueDriver        = "T1547.006"
)

// PersistItem is one candidate autostart mechanism found by the persistence
// collector. Items are immutable once classified; only the aggregate case
// snapshot is persisted, never individual items.
type PersistItem struct {
	Source       string       `json:"source"`
	Location     LocationType `json:"location"`
	Name         string       `json:"name"`
	ExePath      string       `json:"exe_path"`
	RawValue     string       `json:"raw_value,omitempty"`
	KeyPath      string       `json:"key_path,omitempty"`
	Risk         Risk         `json:"risk"`
	Technique    string       `json:"technique,omitempty"`
	SHA256       string       `json:"sha256,omitempty"`
	Modified     *time.Time   `json:"modified,omitempty"`
	NewSince     bool         `json:"new_since_baseline"`
	FocusHit     bool         `json:"focus_hit"`
}

// BaselineKey returns the identity used to diff a scan against the previous
// snapshot: location, key path and name together identify the mechanism.
func (p PersistItem) BaselineKey() string {
	return string(p.Location) + "|" + p.KeyPath + "|" + p.Name
}
