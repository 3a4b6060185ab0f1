package collector

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"hostmedic/internal/focus"
	"hostmedic/internal/winsys"
	"hostmedic/models"
)

// newTestCollector wires a Collector over a mock facility with an empty
// profiles root so startup-folder walking stays deterministic.
func newTestCollector(t *testing.T, m *winsys.Mock) *Collector {
	t.Helper()
	c := New(m.Facility(), focus.NewRegistry())
	c.ProfilesRoot = t.TempDir()
	c.ProgramData = t.TempDir()
	c.FileExists = existsNone
	c.HashWorkers = 0
	return c
}

func seedWinlogonDefaults(m *winsys.Mock) {
	m.SetString(winlogonKey, "Shell", "explorer.exe")
	m.SetString(winlogonKey, "Userinit", `C:\Windows\system32\userinit.exe,`)
}

func TestRunReportsPerCollectorStatus(t *testing.T) {
	m := winsys.NewMock()
	m.SetString(`HKLM\SOFTWARE\Microsoft\Windows\CurrentVersion\Run`, "Updater",
		`C:\Users\bob\AppData\Roaming\x.exe`)
	seedWinlogonDefaults(m)
	m.Subkeys[strings.ToUpper(ifeoRoot)] = nil

	c := newTestCollector(t, m)
	items, report := c.Run(context.Background(), "case-1")

	if report.CaseID != "case-1" {
		t.Errorf("CaseID = %q", report.CaseID)
	}
	statuses := map[string]models.CollectorStatus{}
	for _, res := range report.Collectors {
		statuses[res.Collector] = res.Status
	}
	// Only one of five autorun keys exists in the mock.
	if statuses["run_keys"] != models.CollectorPartial {
		t.Errorf("run_keys status = %s", statuses["run_keys"])
	}
	if statuses["services"] != models.CollectorSuccess {
		t.Errorf("services status = %s", statuses["services"])
	}
	if statuses["winlogon"] != models.CollectorSuccess {
		t.Errorf("winlogon status = %s", statuses["winlogon"])
	}

	var found bool
	for _, it := range items {
		if it.Name == "Updater" {
			found = true
			if !it.Risk.IsFlagged() {
				t.Error("user-path autorun not flagged")
			}
			if it.Technique != models.TechniqueRunKeys {
				t.Errorf("technique = %q", it.Technique)
			}
		}
	}
	if !found {
		t.Fatal("seeded autorun entry missing from results")
	}
	if report.Flagged < 1 {
		t.Errorf("Flagged = %d", report.Flagged)
	}
}

func TestRunFlagsAutomaticServiceWithMissingBinary(t *testing.T) {
	m := winsys.NewMock()
	seedWinlogonDefaults(m)
	m.Subkeys[strings.ToUpper(ifeoRoot)] = nil
	m.ServiceList = []winsys.ServiceEntry{
		{Name: "GoodSvc", Display: "Good Service", ImagePath: `C:\Windows\System32\good.exe`, Start: 2, Type: 16},
		{Name: "GhostSvc", Display: "Ghost Service", ImagePath: `C:\Windows\System32\ghost.exe`, Start: 2, Type: 16},
		{Name: "ManualSvc", ImagePath: `C:\Windows\System32\manual.exe`, Start: 3, Type: 16},
		{Name: "EvilDrv", ImagePath: `system32\drivers\evil.sys`, Start: 1, Type: 1},
	}

	c := newTestCollector(t, m)
	c.FileExists = func(p string) bool { return p == `C:\Windows\System32\good.exe` }

	items, _ := c.Run(context.Background(), "case-2")

	byName := map[string]models.PersistItem{}
	for _, it := range items {
		byName[it.Name] = it
	}
	if _, ok := byName["ManualSvc"]; ok {
		t.Error("manual-start service should be omitted")
	}
	if it := byName["Good Service"]; it.Risk.IsFlagged() {
		t.Errorf("good service flagged: %s", it.Risk.Verdict())
	}
	ghost := byName["Ghost Service"]
	if !ghost.Risk.IsFlagged() || ghost.Risk.Reason != reasonMissingBinary {
		t.Errorf("ghost service risk = %v", ghost.Risk)
	}
	drv := byName["EvilDrv"]
	if drv.Location != models.LocationDriver || drv.Technique != models.TechniqueDriver {
		t.Errorf("driver classified as %s/%s", drv.Location, drv.Technique)
	}
}

func TestRunCollectsIFEO(t *testing.T) {
	m := winsys.NewMock()
	seedWinlogonDefaults(m)
	m.Subkeys[strings.ToUpper(ifeoRoot)] = []string{"sethc.exe", "notepad.exe"}
	m.SetString(ifeoRoot+`\sethc.exe`, "Debugger", `C:\Users\x\cmd.exe`)
	m.StringValues[strings.ToUpper(ifeoRoot+`\notepad.exe`)] = map[string]string{}

	c := newTestCollector(t, m)
	c.FileExists = existsAll

	items, _ := c.Run(context.Background(), "case-3")

	var ifeo []models.PersistItem
	for _, it := range items {
		if it.Location == models.LocationIFEO {
			ifeo = append(ifeo, it)
		}
	}
	if len(ifeo) != 1 {
		t.Fatalf("ifeo items = %d, want 1", len(ifeo))
	}
	if ifeo[0].Name != "sethc.exe" {
		t.Errorf("name = %q", ifeo[0].Name)
	}
	if !ifeo[0].Risk.IsFlagged() || ifeo[0].Risk.Reason != "debugger in unusual location" {
		t.Errorf("risk = %v", ifeo[0].Risk)
	}
}

func TestRunFailedCollectorDoesNotAbortScan(t *testing.T) {
	m := winsys.NewMock()
	m.SetString(`HKCU\SOFTWARE\Microsoft\Windows\CurrentVersion\Run`, "App", `C:\Windows\app.exe`)
	// Winlogon key and IFEO root are absent: both collectors fail.

	c := newTestCollector(t, m)
	items, report := c.Run(context.Background(), "case-4")

	if len(items) == 0 {
		t.Fatal("surviving collectors produced no items")
	}
	statuses := map[string]models.CollectorStatus{}
	for _, res := range report.Collectors {
		statuses[res.Collector] = res.Status
	}
	if statuses["winlogon"] != models.CollectorFailed {
		t.Errorf("winlogon status = %s", statuses["winlogon"])
	}
	if statuses["ifeo"] != models.CollectorFailed {
		t.Errorf("ifeo status = %s", statuses["ifeo"])
	}
	if !report.Degraded() {
		t.Error("report with failed collectors not degraded")
	}
}

func TestRunFocusHits(t *testing.T) {
	m := winsys.NewMock()
	seedWinlogonDefaults(m)
	m.Subkeys[strings.ToUpper(ifeoRoot)] = nil
	m.SetString(`HKLM\SOFTWARE\Microsoft\Windows\CurrentVersion\Run`, "DarkComet",
		`C:\Windows\dc.exe`)

	reg := focus.NewRegistry()
	reg.SetFocusTarget("darkcomet")

	c := New(m.Facility(), reg)
	c.ProfilesRoot = t.TempDir()
	c.ProgramData = t.TempDir()
	c.FileExists = existsAll
	c.HashWorkers = 0

	items, _ := c.Run(context.Background(), "case-5")
	var hit bool
	for _, it := range items {
		if it.Name == "DarkComet" && it.FocusHit {
			hit = true
		}
	}
	if !hit {
		t.Error("focus target did not mark the matching item")
	}
}

func TestRunStartupFolders(t *testing.T) {
	m := winsys.NewMock()
	seedWinlogonDefaults(m)
	m.Subkeys[strings.ToUpper(ifeoRoot)] = nil

	c := newTestCollector(t, m)
	startup := filepath.Join(c.ProfilesRoot, "bob", startupSuffix)
	if err := os.MkdirAll(startup, 0o755); err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"launcher.exe", "My App.lnk", "desktop.ini"} {
		if err := os.WriteFile(filepath.Join(startup, name), []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	items, _ := c.Run(context.Background(), "case-6")
	got := map[string]models.PersistItem{}
	for _, it := range items {
		if it.Location == models.LocationStartupFolder {
			got[it.Name] = it
		}
	}
	if len(got) != 2 {
		t.Fatalf("startup items = %d, want 2 (desktop.ini excluded)", len(got))
	}
	if _, ok := got["launcher.exe"]; !ok {
		t.Error("launcher.exe not collected")
	}
	// Shortcut names with spaces keep their whole path; folder entries are
	// literal paths, not command lines.
	if it, ok := got["My App.lnk"]; !ok || it.ExePath != filepath.Join(startup, "My App.lnk") {
		t.Errorf("spaced entry ExePath = %q", it.ExePath)
	}
	if got["launcher.exe"].Modified == nil {
		t.Error("startup entry missing modification time")
	}
}

func TestApplyBaseline(t *testing.T) {
	prev := []models.PersistItem{
		{Location: models.LocationRegistry, KeyPath: `HKLM\...\Run`, Name: "Known"},
	}
	items := []models.PersistItem{
		{Location: models.LocationRegistry, KeyPath: `HKLM\...\Run`, Name: "Known"},
		{Location: models.LocationRegistry, KeyPath: `HKLM\...\Run`, Name: "Fresh"},
	}

	ApplyBaseline(items, prev)
	if items[0].NewSince {
		t.Error("known item marked new")
	}
	if !items[1].NewSince {
		t.Error("fresh item not marked new")
	}

	// First scan of a case has no baseline; nothing is marked.
	again := []models.PersistItem{{Name: "Anything"}}
	ApplyBaseline(again, nil)
	if again[0].NewSince {
		t.Error("nil baseline marked an item new")
	}
}
