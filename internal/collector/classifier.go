package collector

import (
	"os"
	"strings"

	"hostmedic/models"
)

// Risk classification rules. All classifiers are pure functions of the
// resolved path and raw value; re-classifying the same input always yields
// the same verdict and reason.

const (
	reasonUnparseable   = "empty or unparseable value"
	reasonUserPath      = "unusual location"
	reasonOutsideSystem = "outside Windows/Program Files"
	reasonMissingBinary = "binary missing on disk"
	reasonNoAction      = "no resolvable action path"
)

// envExpansions maps the environment references commonly found in ImagePath
// and autorun values to their conventional locations.
var envExpansions = map[string]string{
	"%systemroot%":   `C:\Windows`,
	"%windir%":       `C:\Windows`,
	"%programdata%":  `C:\ProgramData`,
	"%programfiles%": `C:\Program Files`,
	"%systemdrive%":  `C:`,
}

// ResolveCommandPath extracts the executable path from a raw autorun or
// ImagePath value: quoted paths, unquoted paths with arguments, NT object
// prefixes and relative system32 driver paths are all handled. Returns ""
// when nothing path-like can be extracted.
func ResolveCommandPath(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ""
	}

	s = strings.TrimPrefix(s, `\??\`)

	lower := strings.ToLower(s)
	for ref, repl := range envExpansions {
		if idx := strings.Index(lower, ref); idx >= 0 {
			s = s[:idx] + repl + s[idx+len(ref):]
			lower = strings.ToLower(s)
		}
	}

	if strings.HasPrefix(s, `"`) {
		rest := s[1:]
		if end := strings.Index(rest, `"`); end > 0 {
			return rest[:end]
		}
		return ""
	}

	// Unquoted: cut after the first executable-ish extension so arguments
	// and rundll32-style tails do not leak into the path.
	for _, ext := range []string{".exe", ".sys", ".dll", ".bat", ".cmd"} {
		if idx := strings.Index(lower, ext); idx >= 0 {
			candidate := s[:idx+len(ext)]
			return normalizeSystemRelative(candidate)
		}
	}

	// Fall back to the first space-delimited token.
	if tok, _, ok := strings.Cut(s, " "); ok {
		return normalizeSystemRelative(tok)
	}
	return normalizeSystemRelative(s)
}

// normalizeSystemRelative prefixes driver-style relative paths
// ("system32\drivers\x.sys") with the Windows directory.
func normalizeSystemRelative(p string) string {
	lower := strings.ToLower(p)
	if strings.HasPrefix(lower, `system32\`) || strings.HasPrefix(lower, `\systemroot\`) {
		trimmed := strings.TrimPrefix(p, `\SystemRoot\`)
		trimmed = strings.TrimPrefix(trimmed, `\systemroot\`)
		return `C:\Windows\` + strings.TrimPrefix(trimmed, `\`)
	}
	return p
}

// suspiciousLocation applies the shared location rule: user-writable trees
// are flagged outright, anything outside the Windows and Program Files trees
// is flagged as foreign.
func suspiciousLocation(path string) (string, bool) {
	lower := strings.ToLower(path)
	for _, frag := range []string{`\users\`, `\appdata\`, `\temp\`} {
		if strings.Contains(lower, frag) {
			return reasonUserPath, true
		}
	}
	if !strings.Contains(lower, `\windows`) && !strings.Contains(lower, `\program files`) {
		return reasonOutsideSystem, true
	}
	return "", false
}

// ClassifyAutorun classifies a registry autorun value from its raw
// command line.
func ClassifyAutorun(raw string) (string, models.Risk) {
	exe := ResolveCommandPath(raw)
	if exe == "" {
		return "", models.Check(reasonUnparseable)
	}
	if reason, bad := suspiciousLocation(exe); bad {
		return exe, models.Check(reason)
	}
	return exe, models.OK()
}

// ClassifyStartupEntry classifies a startup-folder entry by its literal
// on-disk path. No command-line parsing happens here; a shortcut named
// "My App.lnk" is one path, spaces included.
func ClassifyStartupEntry(path string) (string, models.Risk) {
	p := strings.TrimSpace(path)
	if p == "" {
		return "", models.Check(reasonUnparseable)
	}
	if reason, bad := suspiciousLocation(p); bad {
		return p, models.Check(reason)
	}
	return p, models.OK()
}

// ClassifyService classifies a Boot/System/Automatic service or driver.
// Manual and Disabled entries must be filtered out before calling; they are
// omitted from results entirely, not reported OK.
func ClassifyService(imagePath string, exists func(string) bool) (string, models.Risk) {
	exe := ResolveCommandPath(imagePath)
	if exe == "" {
		return "", models.Check(reasonUnparseable)
	}
	if !exists(exe) {
		return exe, models.Check(reasonMissingBinary)
	}
	if reason, bad := suspiciousLocation(exe); bad {
		return exe, models.Check(reason)
	}
	return exe, models.OK()
}

// ClassifyTask classifies a scheduled task by its full name and action.
// Built-in tasks under \Microsoft\Windows\ are exempt from the location
// check but not from the missing-binary check.
func ClassifyTask(taskName, action string, exists func(string) bool) (string, models.Risk) {
	exe := ResolveCommandPath(action)
	if exe == "" {
		return "", models.Check(reasonNoAction)
	}
	if !exists(exe) {
		return exe, models.Check(reasonMissingBinary)
	}
	if !strings.HasPrefix(taskName, `\Microsoft\Windows\`) {
		if reason, bad := suspiciousLocation(exe); bad {
			return exe, models.Check(reason)
		}
	}
	return exe, models.OK()
}

// ClassifyWinlogon checks the Shell and Userinit values against their
// expected defaults.
func ClassifyWinlogon(valueName, value string) models.Risk {
	v := strings.ToLower(strings.TrimSpace(value))
	if v == "" {
		return models.Check("empty value")
	}
	switch valueName {
	case "Shell":
		if !strings.Contains(v, "explorer.exe") {
			return models.Check("non-default Shell value")
		}
	case "Userinit":
		if !strings.Contains(v, "userinit.exe") {
			return models.Check("non-default Userinit value")
		}
	}
	return models.OK()
}

// ClassifyIFEO classifies an Image File Execution Options debugger entry.
// Presence of any debugger is always reported; the reason distinguishes a
// plain configuration from a missing or oddly placed debugger binary.
func ClassifyIFEO(debugger string, exists func(string) bool) (string, models.Risk) {
	exe := ResolveCommandPath(debugger)
	if exe == "" {
		return "", models.Check("debugger configured")
	}
	if !exists(exe) {
		return exe, models.Check("debugger binary missing on disk")
	}
	if _, bad := suspiciousLocation(exe); bad {
		return exe, models.Check("debugger in unusual location")
	}
	return exe, models.Check("debugger configured")
}

// defaultFileExists is the production existence check.
func defaultFileExists(path string) bool {
	if path == "" {
		return false
	}
	_, err := os.Stat(path)
	return err == nil
}
