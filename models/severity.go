package models

// SeverityLevel represents the severity of a finding or sweep entry.
type SeverityLevel string

const (
	SeverityHigh    SeverityLevel = "HIGH"
	SeverityMedium  SeverityLevel = "MEDIUM"
	SeverityLow     SeverityLevel = "LOW"
	SeverityInfo    SeverityLevel = "INFO"
	SeverityUnknown SeverityLevel = "UNKNOWN"
)

// Weight returns a numeric weight for sorting (higher = more severe).
func (s SeverityLevel) Weight() int {
	switch s {
	case SeverityHigh:
		return 4
	case SeverityMedium:
		return 3
	case SeverityLow:
		return 2
	case SeverityInfo:
		return 1
	default:
		return 0
	}
}

func (s SeverityLevel) String() string {
	return string(s)
}

// MapSeverity normalises free-form severity strings to SeverityLevel.
// Persisted case files from older tool versions used lowercase values.
func MapSeverity(raw string) SeverityLevel {
	switch raw {
	case "HIGH", "high", "CRITICAL", "critical":
		return SeverityHigh
	case "MEDIUM", "medium", "WARN", "warn":
		return SeverityMedium
	case "LOW", "low":
		return SeverityLow
	case "INFO", "info":
		return SeverityInfo
	default:
		return SeverityUnknown
	}
}
