package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"hostmedic/internal/casefile"
	"hostmedic/internal/collector"
	"hostmedic/internal/config"
	"hostmedic/internal/notify"
)

var watchExpr string

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Re-scan persistence locations on a schedule",
	Long: `Runs a persistence scan on a cron schedule and alerts on findings
that are new since the case baseline. Blocks until interrupted.

Examples:
  hostmedic watch
  hostmedic watch --every '@every 30m'`,
	RunE: func(cmd *cobra.Command, args []string) error {
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

		expr := watchExpr
		if expr == "" {
			expr = cfg.Watch.Expr
		}
		if expr == "" {
			expr = "@every 6h"
		}

		dispatcher := notify.NewDispatcher(cfg.Notify)
		runner := cron.New()
		if _, err := runner.AddFunc(expr, func() {
			if err := watchScan(context.Background(), cfg, s, dispatcher); err != nil {
				slog.Warn("watch: scheduled scan failed", "error", err)
			}
		}); err != nil {
			return fmt.Errorf("invalid schedule %q: %w", expr, err)
		}

		// One immediate pass so the operator sees output before the first tick.
		if err := watchScan(ctx, cfg, s, dispatcher); err != nil {
			return err
		}

		runner.Start()
		fmt.Printf("Watching (schedule %s). Ctrl-C to stop.\n", expr)

		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
		<-sig
		<-runner.Stop().Done()
		slog.Info("watch stopped")
		return nil
	},
}

func watchScan(ctx context.Context, cfg *config.Config, s *casefile.Session, dispatcher *notify.Dispatcher) error {
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
		return err
	}

	newFlagged := 0
	for _, it := range items {
		if !it.Risk.IsFlagged() || !it.NewSince {
			continue
		}
		newFlagged++
		dispatcher.Notify(ctx, notify.Event{
			Type:     "high_risk_finding",
			Title:    "New flagged persistence entry: " + it.Name,
			Body:     it.Risk.Verdict(),
			Severity: "high",
			CaseID:   s.Case.ID,
			Target:   it.ExePath,
		})
	}
	s.Audit.Emit(ctx, "Persistence", "watch_scan", "", s.Case.Hostname,
		fmt.Sprintf("%d entries, %d flagged, %d new", report.Total, report.Flagged, newFlagged))
	slog.Info("watch scan finished",
		"total", report.Total, "flagged", report.Flagged, "new_flagged", newFlagged)
	return nil
}

func init() {
	watchCmd.Flags().StringVar(&watchExpr, "every", "", "cron expression (default from config, else @every 6h)")
}
