package models

// HardenAction is one catalog entry describing a hardening control. The
// catalog is regenerated on every hardening scan; the harden journal is the
// durable history of what was actually changed.
type HardenAction struct {
	ID           string `json:"id"           yaml:"id"`
	Category     string `json:"category"     yaml:"category"`
	Name         string `json:"name"         yaml:"name"`
	Description  string `json:"description"  yaml:"description"`
	CurrentState string `json:"current_state"  yaml:"-"`
	Recommended  string `json:"recommended"  yaml:"recommended"`
	Selected     bool   `json:"selected"     yaml:"-"`
	Applied      bool   `json:"applied"      yaml:"-"`
	RollbackData string `json:"rollback_data,omitempty" yaml:"-"`
	Warning      string `json:"warning,omitempty"       yaml:"warning"`
}
