package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"hostmedic/internal/collector"
	"hostmedic/internal/notify"
	"hostmedic/models"
)

var (
	scanOutputFmt string
	scanAll       bool
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan autostart persistence locations",
	Long: `Enumerates run keys, startup folders, services, drivers, scheduled
tasks, Winlogon and IFEO entries, classifies each for risk, and stores the
aggregate as the case baseline.

Examples:
  hostmedic scan
  hostmedic scan --all
  hostmedic scan --output json`,
	RunE: runScan,
}

func init() {
	scanCmd.Flags().StringVar(&scanOutputFmt, "output", "table", "Output format: table|json|yaml")
	scanCmd.Flags().BoolVar(&scanAll, "all", false, "Show unflagged entries too")
}

func runScan(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, db, err := openEnv(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	s, err := openSession(ctx, cfg, db)
	if err != nil {
		return err
	}

	baseline, err := s.Baseline(ctx)
	if err != nil {
		return err
	}

	col := collector.New(s.Facility, s.Focus)
	if cfg.Sweep.HashWorkers > 0 {
		col.HashWorkers = cfg.Sweep.HashWorkers
	}
	items, report := col.Run(ctx, s.Case.ID)
	collector.ApplyBaseline(items, baseline)

	if err := s.SaveSnapshot(ctx, items); err != nil {
		return fmt.Errorf("saving baseline snapshot: %w", err)
	}
	s.Audit.Emit(ctx, "Persistence", "scan_completed", "",
		s.Case.Hostname, fmt.Sprintf("%d entries, %d flagged", report.Total, report.Flagged))

	dispatcher := notify.NewDispatcher(cfg.Notify)
	dispatcher.Notify(ctx, notify.Event{
		Type:   "scan_completed",
		Title:  "Persistence scan completed",
		Body:   fmt.Sprintf("%d entries, %d flagged", report.Total, report.Flagged),
		CaseID: s.Case.ID,
	})
	for _, it := range items {
		if it.Risk.IsFlagged() && it.NewSince {
			dispatcher.Notify(ctx, notify.Event{
				Type:     "high_risk_finding",
				Title:    "New flagged persistence entry: " + it.Name,
				Body:     it.Risk.Verdict(),
				Severity: "high",
				CaseID:   s.Case.ID,
				Target:   it.ExePath,
			})
		}
	}

	if scanOutputFmt != "table" {
		return renderStructured(struct {
			Report models.ScanReport    `json:"report" yaml:"report"`
			Items  []models.PersistItem `json:"items"  yaml:"items"`
		}{report, items}, scanOutputFmt)
	}

	printScanTable(items, report)
	return nil
}

func printScanTable(items []models.PersistItem, report models.ScanReport) {
	fmt.Println("=== Persistence Scan ===")
	for _, c := range report.Collectors {
		marker := "OK  "
		switch c.Status {
		case models.CollectorPartial:
			marker = "WARN"
		case models.CollectorFailed:
			marker = "FAIL"
		}
		fmt.Printf("[%s] %-16s %3d entries", marker, c.Collector, c.Count)
		if len(c.Errors) > 0 {
			fmt.Printf("  %s", dimStyle.Render(c.Errors[0]))
		}
		fmt.Println()
	}
	fmt.Println()

	shown := 0
	for _, it := range items {
		if !scanAll && !it.Risk.IsFlagged() {
			continue
		}
		shown++
		tags := ""
		if it.NewSince {
			tags += " [new]"
		}
		if it.FocusHit {
			tags += " [focus]"
		}
		fmt.Printf("%-22s %-28s %s%s\n", it.Source, it.Name, it.Risk.Verdict(), tags)
		if it.ExePath != "" {
			fmt.Printf("  %s\n", dimStyle.Render(it.ExePath))
		}
	}
	if shown == 0 && !scanAll {
		fmt.Println("No flagged entries. Use --all to list everything.")
	}
	fmt.Println()
	line := fmt.Sprintf("Total: %d  Flagged: %d", report.Total, report.Flagged)
	if report.Degraded() {
		fmt.Println(warnStyle.Render(line + "  (coverage degraded)"))
	} else {
		fmt.Println(successStyle.Render(line))
	}
	fmt.Println("Stage remediations with 'hostmedic queue add' or 'hostmedic ui'.")
}
