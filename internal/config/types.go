package config

// Config is the root configuration structure for hostmedic.
// Serialised to ~/.hostmedic/config.json.
type Config struct {
	Database DatabaseConfig `mapstructure:"database" json:"database"`
	Case     CaseConfig     `mapstructure:"case"     json:"case"`
	Sweep    SweepConfig    `mapstructure:"sweep"    json:"sweep"`
	Exec     ExecConfig     `mapstructure:"exec"     json:"exec"`
	Notify   NotifyConfig   `mapstructure:"notify"   json:"notify"`
	Watch    WatchConfig    `mapstructure:"watch"    json:"watch"`
}

// DatabaseConfig controls the case-store backend.
type DatabaseConfig struct {
	// Driver is "sqlite" (default) or "mysql".
	Driver string `mapstructure:"driver" json:"driver"`
	// Path is the SQLite file path (expanded at runtime).
	Path string `mapstructure:"path"   json:"path"`
	// DSN is the MySQL data source name (used when Driver == "mysql").
	DSN string `mapstructure:"dsn"    json:"dsn"`
}

// CaseConfig controls where per-case on-host artifacts live.
type CaseConfig struct {
	// Root is the directory holding one subdirectory per case
	// (quarantined files, registry backups, journals).
	Root string `mapstructure:"root" json:"root"`
	// Operator is recorded on new cases and audit events.
	Operator string `mapstructure:"operator" json:"operator"`
}

// SweepConfig tunes the artifact sweep's safety limits.
type SweepConfig struct {
	// MaxFiles stops enumeration once this many candidates were collected.
	MaxFiles int `mapstructure:"max_files" json:"max_files"`
	// MaxSeconds bounds a sweep's wall-clock time.
	MaxSeconds int `mapstructure:"max_seconds" json:"max_seconds"`
	// HashWorkers is the size of the hashing worker pool.
	HashWorkers int `mapstructure:"hash_workers" json:"hash_workers"`
}

// ExecConfig tunes remediation execution.
type ExecConfig struct {
	// ProcessTimeoutSec bounds external process calls (schtasks, reg, sc).
	ProcessTimeoutSec int `mapstructure:"process_timeout_sec" json:"process_timeout_sec"`
}

// NotifyConfig controls outbound notifications.
type NotifyConfig struct {
	// MinSeverity is the minimum severity to notify on (empty = all).
	MinSeverity string `mapstructure:"min_severity" json:"min_severity"`
	// Events limits which event types are sent (empty = defaults).
	Events  []string            `mapstructure:"events"  json:"events"`
	Slack   SlackNotifyConfig   `mapstructure:"slack"   json:"slack"`
	Webhook WebhookNotifyConfig `mapstructure:"webhook" json:"webhook"`
}

// SlackNotifyConfig holds a Slack incoming-webhook destination.
type SlackNotifyConfig struct {
	WebhookURL string `mapstructure:"webhook_url" json:"webhook_url"`
}

// WebhookNotifyConfig holds a generic HTTP endpoint with optional HMAC signing.
type WebhookNotifyConfig struct {
	URL    string `mapstructure:"url"    json:"url"`
	Secret string `mapstructure:"secret" json:"secret"`
}

// WatchConfig controls the scheduled re-scan loop.
type WatchConfig struct {
	// Expr is the cron expression driving periodic persistence scans.
	Expr string `mapstructure:"expr" json:"expr"`
}
