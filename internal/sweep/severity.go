package sweep

import (
	"path/filepath"
	"strings"
	"time"

	"hostmedic/models"
)

// Location classes. Hot locations are where droppers land in front of the
// user; warm locations are user-writable but less visible.
type locationClass int

const (
	locNeutral locationClass = iota
	locWarm
	locHot
)

// Content classes derived from the file extension.
type contentClass int

const (
	contentOther contentClass = iota
	contentDLL
	contentScript
	contentDriver
	contentExecutable
)

// sweepExtensions is the interesting-extension allow-list. Anything else is
// skipped during the walk.
var sweepExtensions = map[string]contentClass{
	".exe": contentExecutable,
	".com": contentExecutable,
	".scr": contentExecutable,
	".sys": contentDriver,
	".bat": contentScript,
	".cmd": contentScript,
	".ps1": contentScript,
	".vbs": contentScript,
	".js":  contentScript,
	".dll": contentDLL,
}

// hotAgeLimit is how fresh a warm-location executable must be to rate HIGH.
const hotAgeLimit = 4 * time.Hour

func classifyLocation(path string) locationClass {
	lower := strings.ToLower(strings.ReplaceAll(path, "/", `\`))
	for _, frag := range []string{`\desktop\`, `\downloads\`, `\start menu\programs\startup`} {
		if strings.Contains(lower, frag) {
			return locHot
		}
	}
	for _, frag := range []string{`\appdata\`, `\temp\`} {
		if strings.Contains(lower, frag) {
			return locWarm
		}
	}
	return locNeutral
}

func classifyContent(path string) (contentClass, bool) {
	cc, ok := sweepExtensions[strings.ToLower(filepath.Ext(path))]
	return cc, ok
}

// fileSeverity applies the deterministic severity ladder. The rules are
// ordered; the first match wins.
func fileSeverity(loc locationClass, cc contentClass, age time.Duration) (models.SeverityLevel, string) {
	active := cc == contentExecutable || cc == contentDriver || cc == contentScript
	switch {
	case loc == locHot && active:
		return models.SeverityHigh, "executable content in a hot location"
	case loc == locWarm && active && age <= hotAgeLimit:
		return models.SeverityHigh, "very recent executable content in a user-writable location"
	case loc == locWarm && (active || cc == contentDLL):
		return models.SeverityMedium, "executable or library content in a user-writable location"
	default:
		return models.SeverityLow, "recently modified file of interest"
	}
}
