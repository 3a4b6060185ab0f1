package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"hostmedic/internal/casefile"
	"hostmedic/internal/database"
)

var (
	caseName     string
	caseOperator string
)

var caseCmd = &cobra.Command{
	Use:   "case",
	Short: "Create and inspect investigation cases",
}

var caseCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Open a new investigation case on this host",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		cfg, db, err := openEnv(ctx)
		if err != nil {
			return err
		}
		defer db.Close()

		operator := caseOperator
		if operator == "" {
			operator = cfg.Case.Operator
		}
		s, err := casefile.Create(ctx, db, newFacility(cfg), cfg.Case.Root, caseName, operator)
		if err != nil {
			return err
		}
		s.Audit.Emit(ctx, "Case", "case_created", "", s.Case.ID, caseName)

		fmt.Println(successStyle.Render("Case created"))
		fmt.Printf("  ID:       %s\n", s.Case.ID)
		fmt.Printf("  Name:     %s\n", s.Case.Name)
		fmt.Printf("  Operator: %s\n", s.Case.Operator)
		fmt.Printf("  Host:     %s\n", s.Case.Hostname)
		fmt.Printf("  Dir:      %s\n", s.Dir)
		return nil
	},
}

var caseListCmd = &cobra.Command{
	Use:   "list",
	Short: "List cases on this host",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		_, db, err := openEnv(ctx)
		if err != nil {
			return err
		}
		defer db.Close()

		cases, err := database.ListCases(ctx, db)
		if err != nil {
			return err
		}
		if len(cases) == 0 {
			fmt.Println("No cases. Run 'hostmedic case create' to start one.")
			return nil
		}
		fmt.Printf("%-38s %-20s %-12s %-8s %s\n", "ID", "NAME", "OPERATOR", "STATUS", "CREATED")
		for _, c := range cases {
			fmt.Printf("%-38s %-20s %-12s %-8s %s\n",
				c.ID, c.Name, c.Operator, c.Status, c.CreatedAt.Format("2006-01-02 15:04"))
		}
		return nil
	},
}

var caseTimelineCmd = &cobra.Command{
	Use:   "timeline",
	Short: "Print the case audit timeline",
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
		events, err := s.Audit.Timeline(ctx)
		if err != nil {
			return err
		}
		for _, e := range events {
			fmt.Printf("%s  [%-11s] %-18s %-8s %s  %s\n",
				e.Timestamp.Format("2006-01-02 15:04:05"), e.Tab, e.Action, e.Severity, e.Target, dimStyle.Render(e.Details))
		}
		return nil
	},
}

func init() {
	caseCreateCmd.Flags().StringVar(&caseName, "name", "", "case name (required)")
	caseCreateCmd.Flags().StringVar(&caseOperator, "operator", "", "operator name (default from config)")
	_ = caseCreateCmd.MarkFlagRequired("name")
	caseCmd.AddCommand(caseCreateCmd, caseListCmd, caseTimelineCmd)
}
