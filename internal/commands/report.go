package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/cashflow/internal/common"
	"github.com/cleared-dev/cashflow/internal/model"
)

func newSummaryCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Show balance, burn rate and runway",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSummary(cmd, a)
		},
	}
}

func runSummary(cmd *cobra.Command, a *app) error {
	an, err := a.openSession()
	if err != nil {
		return err
	}
	a.printer(cmd).Summary(an.Summary())
	return nil
}

func newTrendsCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "trends",
		Short: "Show monthly aggregates, growth and seasonality",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runTrends(cmd, a)
		},
	}
}

func runTrends(cmd *cobra.Command, a *app) error {
	an, err := a.openSession()
	if err != nil {
		return err
	}
	a.printer(cmd).Trends(an.Trends(), an.Seasonal())
	return nil
}

type projectOptions struct {
	scenario string
	months   int
	all      bool
}

func newProjectCommand(a *app) *cobra.Command {
	var opts projectOptions

	cmd := &cobra.Command{
		Use:   "project",
		Short: "Show the month-by-month projection of a scenario",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runProject(cmd, a, opts)
		},
	}

	cmd.Flags().StringVar(&opts.scenario, "scenario", "", "scenario id (default: active scenario)")
	cmd.Flags().IntVar(&opts.months, "months", 0, "projection horizon (default: configured months ahead)")
	cmd.Flags().BoolVar(&opts.all, "all", false, "compare every scenario")

	return cmd
}

func runProject(cmd *cobra.Command, a *app, opts projectOptions) error {
	an, err := a.openSession()
	if err != nil {
		return err
	}
	p := a.printer(cmd)
	if opts.all {
		p.Scenarios(an.Scenarios(), an.ActiveScenario())
		p.ActualTrajectory(an.ActualTrajectory())
		return nil
	}

	id := an.ActiveScenario()
	if opts.scenario != "" {
		if id, err = model.ParseScenarioID(opts.scenario); err != nil {
			return fmt.Errorf("%w: %v", common.ErrNotFound, err)
		}
	}
	res, err := an.Forecast(id, opts.months)
	if err != nil {
		return err
	}

	sc := *an.Scenario(id)
	sc.Data = res.Points
	p.Projection(&sc, res.Skipped)
	p.ActualTrajectory(an.ActualTrajectory())
	return nil
}
