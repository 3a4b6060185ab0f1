package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"hostmedic/internal/sweep"
	"hostmedic/models"
)

var (
	sweepWindow     string
	sweepClusterWin string
	sweepOutputFmt  string
)

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Sweep user-writable locations for dropped artifacts",
	Long: `Walks Desktop, Downloads, AppData, Temp, Startup and ProgramData for
recently modified files of interest, deep-scans services and drivers, and
correlates everything against the case's focus targets.

Examples:
  hostmedic sweep
  hostmedic sweep --window 3d --cluster-window 4h
  hostmedic sweep --output json`,
	RunE: runSweep,
}

func init() {
	sweepCmd.Flags().StringVar(&sweepWindow, "window", "24h", "Lookback window: 24h|3d|7d|30d")
	sweepCmd.Flags().StringVar(&sweepClusterWin, "cluster-window", "2h", "Time-cluster window: 1h|2h|4h|8h")
	sweepCmd.Flags().StringVar(&sweepOutputFmt, "output", "table", "Output format: table|json|yaml")
}

func parseLookback(s string) (models.LookbackWindow, error) {
	switch s {
	case "24h":
		return models.Lookback24h, nil
	case "3d":
		return models.Lookback3d, nil
	case "7d":
		return models.Lookback7d, nil
	case "30d":
		return models.Lookback30d, nil
	}
	return 0, fmt.Errorf("invalid lookback window %q (24h|3d|7d|30d)", s)
}

func parseClusterWindow(s string) (models.ClusterWindow, error) {
	switch s {
	case "1h":
		return models.Cluster1h, nil
	case "2h":
		return models.Cluster2h, nil
	case "4h":
		return models.Cluster4h, nil
	case "8h":
		return models.Cluster8h, nil
	}
	return 0, fmt.Errorf("invalid cluster window %q (1h|2h|4h|8h)", s)
}

func runSweep(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	lookback, err := parseLookback(sweepWindow)
	if err != nil {
		return err
	}
	clusterWin, err := parseClusterWindow(sweepClusterWin)
	if err != nil {
		return err
	}

	cfg, db, err := openEnv(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	s, err := openSession(ctx, cfg, db)
	if err != nil {
		return err
	}

	sc := sweep.NewScanner(s.Facility)
	if cfg.Sweep.MaxFiles > 0 {
		sc.MaxFiles = cfg.Sweep.MaxFiles
	}
	if cfg.Sweep.MaxSeconds > 0 {
		sc.MaxElapsed = time.Duration(cfg.Sweep.MaxSeconds) * time.Second
	}

	entries, report := sc.Run(lookback)
	sweep.NewClusterer().Apply(entries, s.Focus.GetFocusTargets(), clusterWin)

	s.Audit.Emit(ctx, "Sweep", "scan_completed", "",
		s.Case.Hostname, fmt.Sprintf("%d entries, %d high", report.Total, report.Flagged))

	if sweepOutputFmt != "table" {
		return renderStructured(struct {
			Report  models.ScanReport   `json:"report"  yaml:"report"`
			Entries []models.SweepEntry `json:"entries" yaml:"entries"`
		}{report, entries}, sweepOutputFmt)
	}

	printSweepTable(entries, report)
	return nil
}

func printSweepTable(entries []models.SweepEntry, report models.ScanReport) {
	fmt.Println("=== Artifact Sweep ===")
	for _, e := range entries {
		tags := ""
		if e.FocusHit {
			tags = " [focus: " + e.ClusterTarget + "]"
		} else if e.TimeCluster {
			tags = " [time-cluster: " + e.ClusterTarget + "]"
		} else if e.FolderCluster {
			tags = " [folder-cluster: " + e.ClusterTarget + "]"
		}
		fmt.Printf("%-6s %-8s %-24s %s%s\n", e.Severity, e.Category, e.Name, dimStyle.Render(e.Reason), tags)
		if e.Path != "" {
			fmt.Printf("  %s\n", dimStyle.Render(e.Path))
		}
	}
	fmt.Println()
	line := fmt.Sprintf("Total: %d  High: %d", report.Total, report.Flagged)
	if report.Truncated {
		fmt.Println(warnStyle.Render(line + "  (truncated by safety limits)"))
	} else {
		fmt.Println(successStyle.Render(line))
	}
}
