package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/flowplane-net/flowplane/pkg/audit"
	"github.com/flowplane-net/flowplane/pkg/cli"
)

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "View programming audit logs",
	Long: `View audit logs of switch programming sessions.

Every execute-mode programming attempt is logged with:
  - Timestamp
  - User who ran the session
  - Switch affected
  - Entries and groups installed
  - Success/failure status

Examples:
  flowplane audit list --switch s1
  flowplane audit list --last 24h
  flowplane audit list --failures`,
}

var (
	auditSwitch   string
	auditUserFlag string
	auditLast     string
	auditLimit    int
	auditFailures bool
)

var auditListCmd = &cobra.Command{
	Use:   "list",
	Short: "List audit events",
	RunE: func(cmd *cobra.Command, args []string) error {
		filter := audit.Filter{
			Switch:      auditSwitch,
			User:        auditUserFlag,
			Limit:       auditLimit,
			FailureOnly: auditFailures,
		}

		if auditLast != "" {
			duration, err := time.ParseDuration(auditLast)
			if err != nil {
				return fmt.Errorf("invalid duration: %s", auditLast)
			}
			filter.StartTime = time.Now().Add(-duration)
		}

		events, err := audit.Query(filter)
		if err != nil {
			return fmt.Errorf("querying audit log: %w", err)
		}

		if len(events) == 0 {
			fmt.Println("No audit events found")
			return nil
		}

		tbl := cli.NewTable("TIMESTAMP", "USER", "SWITCH", "ENTRIES", "GROUPS", "STATUS")
		for _, event := range events {
			status := green("ok")
			if !event.Success {
				status = red("failed")
			}
			tbl.Row(
				event.Timestamp.Format("2006-01-02 15:04:05"),
				event.User,
				event.Switch,
				fmt.Sprintf("%d", event.Entries),
				fmt.Sprintf("%d", event.Groups),
				status)
		}
		tbl.Flush()
		return nil
	},
}

func init() {
	auditListCmd.Flags().StringVar(&auditSwitch, "switch", "", "Filter by switch")
	auditListCmd.Flags().StringVar(&auditUserFlag, "user", "", "Filter by user")
	auditListCmd.Flags().StringVar(&auditLast, "last", "", "Only events from the last duration (e.g. 24h)")
	auditListCmd.Flags().IntVar(&auditLimit, "limit", 50, "Maximum events to show")
	auditListCmd.Flags().BoolVar(&auditFailures, "failures", false, "Only failed sessions")
	auditCmd.AddCommand(auditListCmd)
}
