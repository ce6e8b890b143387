package commands

import (
	"github.com/spf13/cobra"

	"github.com/cleared-dev/cashflow/internal/activity"
)

func newActivityCommand(a *app) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "activity",
		Short: "Show recent changes recorded in the activity log",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runActivity(cmd, a, limit)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of entries to show (0 for all)")

	return cmd
}

func runActivity(cmd *cobra.Command, a *app, limit int) error {
	entries, err := activity.Log{Path: a.cfg.Files.ActivityLog}.Tail(limit)
	if err != nil {
		return err
	}
	a.printer(cmd).Activity(entries)
	return nil
}
