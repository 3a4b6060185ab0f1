package collector

import (
	"testing"
)

func existsAll(string) bool  { return true }
func existsNone(string) bool { return false }

func TestResolveCommandPath(t *testing.T) {
	cases := []struct {
		raw  string
		want string
	}{
		{`"C:\Program Files\Vendor\agent.exe" --service`, `C:\Program Files\Vendor\agent.exe`},
		{`C:\Windows\System32\svchost.exe -k netsvcs`, `C:\Windows\System32\svchost.exe`},
		{`\??\C:\Windows\System32\drivers\acpi.sys`, `C:\Windows\System32\drivers\acpi.sys`},
		{`system32\drivers\ndis.sys`, `C:\Windows\system32\drivers\ndis.sys`},
		{`%SystemRoot%\System32\winlogon.exe`, `C:\Windows\System32\winlogon.exe`},
		{`rundll32.exe C:\temp\payload.dll,Start`, `rundll32.exe`},
		{``, ``},
		{`"unterminated`, ``},
	}
	for _, tc := range cases {
		if got := ResolveCommandPath(tc.raw); got != tc.want {
			t.Errorf("ResolveCommandPath(%q) = %q, want %q", tc.raw, got, tc.want)
		}
	}
}

func TestClassifyAutorunUserPath(t *testing.T) {
	exe, risk := ClassifyAutorun(`C:\Users\bob\AppData\Roaming\x.exe`)
	if exe != `C:\Users\bob\AppData\Roaming\x.exe` {
		t.Fatalf("exe = %q", exe)
	}
	if !risk.IsFlagged() {
		t.Fatal("expected a flagged verdict for a user-writable path")
	}
	if risk.Reason != reasonUserPath {
		t.Errorf("reason = %q, want %q", risk.Reason, reasonUserPath)
	}
}

func TestClassifyAutorunSystemPathOK(t *testing.T) {
	_, risk := ClassifyAutorun(`"C:\Program Files\Vendor\updater.exe" /quiet`)
	if risk.IsFlagged() {
		t.Errorf("unexpected flag: %s", risk.Verdict())
	}
}

func TestClassifyStartupEntryKeepsSpacedPath(t *testing.T) {
	path := `C:\Users\bob\AppData\Roaming\Microsoft\Windows\Start Menu\Programs\Startup\My App.lnk`
	exe, risk := ClassifyStartupEntry(path)
	if exe != path {
		t.Fatalf("exe = %q, want the literal entry path", exe)
	}
	if !risk.IsFlagged() || risk.Reason != reasonUserPath {
		t.Errorf("risk = %v", risk)
	}
}

func TestClassifyStartupEntryAllUsersOK(t *testing.T) {
	path := `C:\ProgramData\Microsoft\Windows\Start Menu\Programs\StartUp\Vendor Tray.lnk`
	exe, risk := ClassifyStartupEntry(path)
	if exe != path {
		t.Fatalf("exe = %q", exe)
	}
	if risk.IsFlagged() {
		t.Errorf("unexpected flag: %s", risk.Verdict())
	}
}

func TestClassifyStartupEntryEmpty(t *testing.T) {
	_, risk := ClassifyStartupEntry("  ")
	if !risk.IsFlagged() || risk.Reason != reasonUnparseable {
		t.Errorf("got %v", risk)
	}
}

func TestClassifyAutorunUnparseable(t *testing.T) {
	_, risk := ClassifyAutorun("")
	if !risk.IsFlagged() || risk.Reason != reasonUnparseable {
		t.Errorf("got %v", risk)
	}
}

func TestClassifyServiceMissingBinary(t *testing.T) {
	exe, risk := ClassifyService(`C:\Windows\System32\ghost.exe`, existsNone)
	if exe == "" {
		t.Fatal("expected resolved path")
	}
	if !risk.IsFlagged() || risk.Reason != reasonMissingBinary {
		t.Errorf("got %v", risk)
	}
}

func TestClassifyServicePresentSystemBinary(t *testing.T) {
	_, risk := ClassifyService(`%SystemRoot%\System32\svchost.exe -k LocalService`, existsAll)
	if risk.IsFlagged() {
		t.Errorf("unexpected flag: %s", risk.Verdict())
	}
}

func TestClassifyTaskMicrosoftExemption(t *testing.T) {
	// Built-in task paths skip the location rule but not the existence rule.
	_, risk := ClassifyTask(`\Microsoft\Windows\Defrag\ScheduledDefrag`, `D:\tools\defrag.exe`, existsAll)
	if risk.IsFlagged() {
		t.Errorf("built-in task flagged: %s", risk.Verdict())
	}
	_, risk = ClassifyTask(`\Microsoft\Windows\Defrag\ScheduledDefrag`, `D:\tools\defrag.exe`, existsNone)
	if !risk.IsFlagged() || risk.Reason != reasonMissingBinary {
		t.Errorf("got %v", risk)
	}
}

func TestClassifyTaskForeignLocation(t *testing.T) {
	_, risk := ClassifyTask(`\Updater`, `D:\stuff\run.exe`, existsAll)
	if !risk.IsFlagged() || risk.Reason != reasonOutsideSystem {
		t.Errorf("got %v", risk)
	}
}

func TestClassifyWinlogon(t *testing.T) {
	if risk := ClassifyWinlogon("Shell", "explorer.exe"); risk.IsFlagged() {
		t.Errorf("default shell flagged: %s", risk.Verdict())
	}
	if risk := ClassifyWinlogon("Shell", `C:\evil\shell.exe`); !risk.IsFlagged() {
		t.Error("non-default shell not flagged")
	}
	if risk := ClassifyWinlogon("Userinit", `C:\Windows\system32\userinit.exe,`); risk.IsFlagged() {
		t.Errorf("default userinit flagged: %s", risk.Verdict())
	}
	if risk := ClassifyWinlogon("Userinit", ""); !risk.IsFlagged() {
		t.Error("empty userinit not flagged")
	}
}

func TestClassifyIFEOAlwaysFlagged(t *testing.T) {
	_, risk := ClassifyIFEO(`C:\Windows\System32\vsjitdebugger.exe`, existsAll)
	if !risk.IsFlagged() {
		t.Fatal("IFEO debugger must always be reported")
	}
	if risk.Reason != "debugger configured" {
		t.Errorf("reason = %q", risk.Reason)
	}

	_, risk = ClassifyIFEO(`C:\Windows\System32\gone.exe`, existsNone)
	if risk.Reason != "debugger binary missing on disk" {
		t.Errorf("reason = %q", risk.Reason)
	}

	_, risk = ClassifyIFEO(`C:\Users\x\AppData\Local\dbg.exe`, existsAll)
	if risk.Reason != "debugger in unusual location" {
		t.Errorf("reason = %q", risk.Reason)
	}
}
