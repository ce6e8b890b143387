package commands

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/cleared-dev/cashflow/internal/common"
	"github.com/cleared-dev/cashflow/internal/model"
	"github.com/cleared-dev/cashflow/internal/period"
)

func newActualCommand(a *app) *cobra.Command {
	actualCmd := &cobra.Command{
		Use:   "actual",
		Short: "Record monthly actual expenses and incomes",
	}
	actualCmd.AddCommand(newActualAddCommand(a))
	actualCmd.AddCommand(newActualRemoveCommand(a))
	actualCmd.AddCommand(newActualListCommand(a))
	actualCmd.AddCommand(newActualMissingCommand(a))
	return actualCmd
}

func parseActualArgs(kindArg, monthArg string) (model.ActualKind, int, int, error) {
	kind, err := model.ParseActualKind(kindArg)
	if err != nil {
		return "", 0, 0, fmt.Errorf("%w: %v", common.ErrInvalidInput, err)
	}
	year, month, err := period.ParseMonthKey(monthArg)
	if err != nil {
		return "", 0, 0, fmt.Errorf("%w: %v", common.ErrInvalidInput, err)
	}
	return kind, month, year, nil
}

func newActualAddCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "add <expense|income> <YYYY-MM> <amount>",
		Short: "Add or overwrite the figure for a month",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runActualAdd(cmd, a, args)
		},
	}
}

func runActualAdd(cmd *cobra.Command, a *app, args []string) error {
	kind, month, year, err := parseActualArgs(args[0], args[1])
	if err != nil {
		return err
	}
	amount, err := decimal.NewFromString(args[2])
	if err != nil {
		return fmt.Errorf("%w: amount %q", common.ErrInvalidInput, args[2])
	}

	an, err := a.openSession()
	if err != nil {
		return err
	}
	res, err := an.UpsertActual(kind, month, year, amount)
	if err != nil {
		return err
	}
	if err := a.commit(an, "upsert_actual", "", fmt.Sprintf("%s %s %s", kind, args[1], amount.StringFixed(2))); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), res.Message(kind))
	return nil
}

func newActualRemoveCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <expense|income> <YYYY-MM>",
		Short: "Remove the figure for a month",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runActualRemove(cmd, a, args)
		},
	}
}

func runActualRemove(cmd *cobra.Command, a *app, args []string) error {
	kind, month, year, err := parseActualArgs(args[0], args[1])
	if err != nil {
		return err
	}
	an, err := a.openSession()
	if err != nil {
		return err
	}
	if err := an.RemoveActual(kind, month, year); err != nil {
		return err
	}
	if err := a.commit(an, "remove_actual", "", fmt.Sprintf("%s %s", kind, args[1])); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s for %s removed\n", kind, period.FormatMonthKey(year, month))
	return nil
}

func newActualListCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List recorded actual figures",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runActualList(cmd, a)
		},
	}
}

func runActualList(cmd *cobra.Command, a *app) error {
	an, err := a.openSession()
	if err != nil {
		return err
	}
	a.printer(cmd).Actuals(an.Actuals())
	return nil
}

func newActualMissingCommand(a *app) *cobra.Command {
	var months int

	cmd := &cobra.Command{
		Use:   "missing",
		Short: "Show recent months without actual figures",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runActualMissing(cmd, a, months)
		},
	}

	cmd.Flags().IntVar(&months, "months", 3, "how many past months to check")

	return cmd
}

func runActualMissing(cmd *cobra.Command, a *app, months int) error {
	if months < 1 {
		return fmt.Errorf("%w: --months must be positive", common.ErrInvalidInput)
	}
	an, err := a.openSession()
	if err != nil {
		return err
	}
	a.printer(cmd).Missing(an.MissingRecentMonths(months))
	return nil
}
