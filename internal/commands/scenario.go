package commands

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/cleared-dev/cashflow/internal/common"
	"github.com/cleared-dev/cashflow/internal/model"
	"github.com/cleared-dev/cashflow/internal/snapshot"
)

func parseScenario(s string) (model.ScenarioID, error) {
	id, err := model.ParseScenarioID(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", common.ErrNotFound, err)
	}
	return id, nil
}

// parseFactor accepts "0.8" or "80%".
func parseFactor(s string) (decimal.Decimal, error) {
	pct := strings.HasSuffix(s, "%")
	d, err := decimal.NewFromString(strings.TrimSuffix(s, "%"))
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: burn rate %q", common.ErrInvalidInput, s)
	}
	if pct {
		d = d.Shift(-2)
	}
	return d, nil
}

func newIncomeCommand(a *app) *cobra.Command {
	incomeCmd := &cobra.Command{
		Use:   "income",
		Short: "Manage one-time incomes of a scenario",
	}
	incomeCmd.AddCommand(newIncomeAddCommand(a))
	incomeCmd.AddCommand(newIncomeRemoveCommand(a))
	incomeCmd.AddCommand(newIncomeClearCommand(a))
	incomeCmd.AddCommand(newIncomeListCommand(a))
	return incomeCmd
}

func newIncomeAddCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "add <scenario> <YYYY-MM-DD> <amount>",
		Short: "Add a one-time income",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIncomeAdd(cmd, a, args)
		},
	}
}

func runIncomeAdd(cmd *cobra.Command, a *app, args []string) error {
	id, err := parseScenario(args[0])
	if err != nil {
		return err
	}
	date, err := snapshot.ParseTime(args[1])
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrInvalidInput, err)
	}
	amount, err := decimal.NewFromString(args[2])
	if err != nil {
		return fmt.Errorf("%w: amount %q", common.ErrInvalidInput, args[2])
	}

	an, err := a.openSession()
	if err != nil {
		return err
	}
	if err := an.AddIncome(id, date, amount); err != nil {
		return err
	}
	details := fmt.Sprintf("%s on %s", amount.StringFixed(2), date.Format("2006-01-02"))
	if err := a.commit(an, "add_income", id.String(), details); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Added income %s to %s\n", details, an.Scenario(id).Name)
	for _, s := range an.SkippedIncomes(id) {
		fmt.Fprintf(cmd.OutOrStdout(), "  not applied: %s\n", s.Describe())
	}
	return nil
}

func newIncomeRemoveCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <scenario> <index>",
		Short: "Remove an income by its index in 'income list'",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIncomeRemove(cmd, a, args)
		},
	}
}

func runIncomeRemove(cmd *cobra.Command, a *app, args []string) error {
	id, err := parseScenario(args[0])
	if err != nil {
		return err
	}
	index, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("%w: index %q", common.ErrInvalidInput, args[1])
	}

	an, err := a.openSession()
	if err != nil {
		return err
	}
	if err := an.RemoveIncome(id, index); err != nil {
		return err
	}
	return a.commit(an, "remove_income", id.String(), fmt.Sprintf("index %d", index))
}

func newIncomeClearCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "clear <scenario>",
		Short: "Remove every income of a scenario",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIncomeClear(cmd, a, args)
		},
	}
}

func runIncomeClear(cmd *cobra.Command, a *app, args []string) error {
	id, err := parseScenario(args[0])
	if err != nil {
		return err
	}
	an, err := a.openSession()
	if err != nil {
		return err
	}
	if err := an.ClearIncomes(id); err != nil {
		return err
	}
	return a.commit(an, "clear_incomes", id.String(), "")
}

func newIncomeListCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list <scenario>",
		Short: "List a scenario's incomes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIncomeList(cmd, a, args)
		},
	}
}

func runIncomeList(cmd *cobra.Command, a *app, args []string) error {
	id, err := parseScenario(args[0])
	if err != nil {
		return err
	}
	an, err := a.openSession()
	if err != nil {
		return err
	}
	a.printer(cmd).Incomes(an.Scenario(id))
	return nil
}

func newBurnCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "burn <scenario> <factor>",
		Short: "Scale a scenario's monthly expenses, e.g. 0.8 or 80%",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBurn(cmd, a, args)
		},
	}
}

func runBurn(cmd *cobra.Command, a *app, args []string) error {
	id, err := parseScenario(args[0])
	if err != nil {
		return err
	}
	factor, err := parseFactor(args[1])
	if err != nil {
		return err
	}
	an, err := a.openSession()
	if err != nil {
		return err
	}
	if err := an.SetBurnRate(id, factor); err != nil {
		return err
	}
	if err := a.commit(an, "set_burn_rate", id.String(), factor.String()); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s burn rate set to %s%%\n", an.Scenario(id).Name, factor.Shift(2).StringFixed(0))
	return nil
}

func newScenarioCommand(a *app) *cobra.Command {
	scenarioCmd := &cobra.Command{
		Use:   "scenario",
		Short: "Select and compare scenarios",
	}

	scenarioCmd.AddCommand(&cobra.Command{
		Use:   "use <id>",
		Short: "Make a scenario the active one",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScenarioUse(cmd, a, args)
		},
	})

	scenarioCmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "Compare every scenario",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runScenarioList(cmd, a)
		},
	})

	return scenarioCmd
}

func runScenarioUse(cmd *cobra.Command, a *app, args []string) error {
	id, err := parseScenario(args[0])
	if err != nil {
		return err
	}
	an, err := a.openSession()
	if err != nil {
		return err
	}
	if err := an.SetActiveScenario(id); err != nil {
		return err
	}
	return a.commit(an, "set_active", id.String(), "")
}

func runScenarioList(cmd *cobra.Command, a *app) error {
	an, err := a.openSession()
	if err != nil {
		return err
	}
	a.printer(cmd).Scenarios(an.Scenarios(), an.ActiveScenario())
	return nil
}
