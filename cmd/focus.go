package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var focusCmd = &cobra.Command{
	Use:   "focus",
	Short: "Manage the case's focus targets",
	Long: `Focus targets are filenames, paths or substrings tied to the current
hunt. Scans mark matching entries and sweeps cluster artifacts around them.`,
}

var focusAddCmd = &cobra.Command{
	Use:   "add <target>...",
	Short: "Add focus targets (idempotent, case-insensitive)",
	Args:  cobra.MinimumNArgs(1),
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
		for _, target := range args {
			s.Focus.SetFocusTarget(target)
		}
		if err := s.SaveFocus(); err != nil {
			return err
		}
		fmt.Printf("%d focus target(s) set.\n", s.Focus.Len())
		return nil
	},
}

var focusListCmd = &cobra.Command{
	Use:   "list",
	Short: "List focus targets",
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
		targets := s.Focus.GetFocusTargets()
		if len(targets) == 0 {
			fmt.Println("No focus targets set.")
			return nil
		}
		for _, t := range targets {
			fmt.Println(t)
		}
		return nil
	},
}

var focusRemoveCmd = &cobra.Command{
	Use:   "remove <target>",
	Short: "Remove a focus target",
	Args:  cobra.ExactArgs(1),
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
		if !s.Focus.Remove(args[0]) {
			return fmt.Errorf("focus target %q not set", args[0])
		}
		return s.SaveFocus()
	},
}

func init() {
	focusCmd.AddCommand(focusAddCmd, focusListCmd, focusRemoveCmd)
}
