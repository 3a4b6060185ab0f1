package models

// RiskLevel is the closed set of classifier verdicts.
type RiskLevel string

const (
	RiskOK    RiskLevel = "OK"
	RiskCheck RiskLevel = "CHECK"
)

// Risk is the outcome of classifying a single persistence artifact.
// The Reason is empty for RiskOK.
type Risk struct {
	Level  RiskLevel `json:"level"`
	Reason string    `json:"reason,omitempty"`
}

// OK returns a clean verdict.
func OK() Risk {
	return Risk{Level: RiskOK}
}

// Check returns a flagged verdict with a short human-readable reason.
func Check(reason string) Risk {
	return Risk{Level: RiskCheck, Reason: reason}
}

// Verdict renders the legacy single-string form used in persisted case
// snapshots and reports: "OK" or "CHECK - <reason>".
func (r Risk) Verdict() string {
	if r.Level == RiskOK {
		return string(RiskOK)
	}
	if r.Reason == "" {
		return string(RiskCheck)
	}
	return string(RiskCheck) + " - " + r.Reason
}

// IsFlagged reports whether the verdict needs operator attention.
func (r Risk) IsFlagged() bool {
	return r.Level == RiskCheck
}
