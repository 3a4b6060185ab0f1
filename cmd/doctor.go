package cmd

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"

	"github.com/spf13/cobra"

	"hostmedic/internal/config"
	"hostmedic/internal/database"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Verify tools, storage, and system health",
	Long: `Checks that the case database can be reached, the case root is
writable, and the external Windows tools hostmedic shells out to are on
PATH.`,
	RunE: runDoctor,
}

func runDoctor(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	allOK := true

	fmt.Println("=== hostmedic doctor ===")
	fmt.Println()

	fmt.Print("Database ................. ")
	db, err := database.New(cfg.Database)
	if err != nil {
		fmt.Printf("FAIL (%s)\n", err)
		allOK = false
	} else {
		if err := db.Ping(ctx); err != nil {
			fmt.Printf("FAIL (%s)\n", err)
			allOK = false
		} else {
			fmt.Printf("OK (%s: %s)\n", db.Driver(), cfg.Database.Path)
		}
		db.Close()
	}

	fmt.Print("Case root ................ ")
	if err := checkWritable(cfg.Case.Root); err != nil {
		fmt.Printf("FAIL (%s)\n", err)
		allOK = false
	} else {
		fmt.Printf("OK (%s)\n", cfg.Case.Root)
	}

	fmt.Println()
	fmt.Println("External tools:")
	tools := []struct {
		name string
		use  string
	}{
		{"reg.exe", "registry export and import"},
		{"schtasks.exe", "scheduled task enable/disable"},
		{"sc.exe", "service stop"},
	}
	for _, t := range tools {
		fmt.Printf("  %-14s ... ", t.name)
		if path, err := exec.LookPath(t.name); err != nil {
			fmt.Printf("MISSING (%s)\n", t.use)
			allOK = false
		} else {
			fmt.Printf("OK (%s)\n", path)
		}
	}

	fmt.Print("\nPlatform ................. ")
	if runtime.GOOS != "windows" {
		fmt.Printf("WARN (%s: live registry, service, and task access unavailable)\n", runtime.GOOS)
	} else {
		fmt.Println("OK (windows)")
	}

	fmt.Println()
	if allOK {
		fmt.Println(successStyle.Render("All checks passed."))
	} else {
		fmt.Println(warnStyle.Render("Some checks failed; see above."))
	}
	return nil
}

// checkWritable creates the directory if needed and proves write access with
// a throwaway file.
func checkWritable(dir string) error {
	if dir == "" {
		return fmt.Errorf("case root not configured")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	probe := filepath.Join(dir, ".doctor_probe")
	if err := os.WriteFile(probe, []byte("ok"), 0o600); err != nil {
		return err
	}
	return os.Remove(probe)
}
