package cmd

import (
	"context"
	"fmt"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"hostmedic/models"
)

var (
	hardenIDs    []string
	hardenEntry  string
	hardenOutput string
	hardenYes    bool
)

var hardenCmd = &cobra.Command{
	Use:   "harden",
	Short: "Audit and enforce host hardening controls",
}

var hardenScanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Report each catalog control against the live registry",
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

		actions := s.Harden.Scan()
		if hardenOutput != "table" {
			return renderStructured(actions, hardenOutput)
		}
		fmt.Printf("%-18s %-10s %-24s %-20s %s\n", "ID", "STATE", "CURRENT", "RECOMMENDED", "NAME")
		for _, a := range actions {
			state := warnStyle.Render("drift")
			if a.Applied {
				state = successStyle.Render("ok")
			}
			fmt.Printf("%-18s %-10s %-24s %-20s %s\n", a.ID, state, a.CurrentState, a.Recommended, a.Name)
			if !a.Applied && a.Warning != "" {
				fmt.Printf("  %s\n", dimStyle.Render(a.Warning))
			}
		}
		s.Audit.Emit(ctx, "harden", "harden_scan", "", s.Case.Hostname, fmt.Sprintf("%d controls checked", len(actions)))
		return nil
	},
}

var hardenApplyCmd = &cobra.Command{
	Use:   "apply",
	Short: "Enforce selected controls, journaling the prior value of each",
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(hardenIDs) == 0 {
			return fmt.Errorf("no controls selected; pass --ids (see 'hostmedic harden scan')")
		}
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

		if !hardenYes {
			var confirmed bool
			form := huh.NewForm(
				huh.NewGroup(
					huh.NewConfirm().
						Title(fmt.Sprintf("Apply %d hardening control(s)?", len(hardenIDs))).
						Description("Registry values are changed system-wide; prior values are journaled for rollback").
						Value(&confirmed),
				),
			)
			if err := form.Run(); err != nil {
				return err
			}
			if !confirmed {
				fmt.Println("Aborted.")
				return nil
			}
		}

		summary := s.Harden.Apply(hardenIDs)
		for _, res := range summary.Results {
			switch res.Status {
			case models.StatusCompleted:
				msg := "applied"
				if res.Message != "" {
					msg = res.Message
				}
				fmt.Printf("%s  %s (%s)\n", successStyle.Render("ok"), res.ItemID, msg)
				s.Audit.Emit(ctx, "harden", "control_applied", "", res.ItemID, msg)
			default:
				fmt.Printf("%s  %s: %s\n", warnStyle.Render("failed"), res.ItemID, res.Message)
				s.Audit.Emit(ctx, "harden", "control_failed", "", res.ItemID, res.Message)
			}
			if res.JournalWarning != "" {
				fmt.Println(warnStyle.Render("  warning: " + res.JournalWarning))
			}
		}
		fmt.Printf("%d succeeded, %d failed\n", summary.Succeeded, summary.Failed)
		return nil
	},
}

var hardenRollbackCmd = &cobra.Command{
	Use:   "rollback",
	Short: "Revert the last applied control, or a specific journal entry",
	Long: `Restores the registry value recorded when the control was applied.
Controls marked protective are never weakened by a rollback; those
entries are closed without touching the registry.`,
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

		var res models.ActionResult
		if hardenEntry != "" {
			res = s.Harden.Rollback(hardenEntry)
		} else {
			var ok bool
			res, ok = s.Harden.RollbackLast()
			if !ok {
				fmt.Println("Nothing to roll back.")
				return nil
			}
		}
		if res.Status == models.StatusFailed {
			return fmt.Errorf("rollback failed: %s", res.Message)
		}
		line := "Rolled back " + res.ItemID
		if res.Message != "" {
			line += " (" + res.Message + ")"
		}
		fmt.Println(successStyle.Render(line))
		s.Audit.Emit(ctx, "harden", "control_rolled_back", "", res.ItemID, res.Message)
		return nil
	},
}

func init() {
	hardenApplyCmd.Flags().StringSliceVar(&hardenIDs, "ids", nil,
		"comma-separated control ids to enforce")
	hardenApplyCmd.Flags().BoolVar(&hardenYes, "yes", false, "skip the confirmation prompt")
	hardenRollbackCmd.Flags().StringVar(&hardenEntry, "entry", "", "harden journal entry id")
	hardenScanCmd.Flags().StringVarP(&hardenOutput, "output", "o", "table", "output format: table|json|yaml")
	hardenCmd.AddCommand(hardenScanCmd, hardenApplyCmd, hardenRollbackCmd)
}
