package commands

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/cleared-dev/cashflow/internal/activity"
	"github.com/cleared-dev/cashflow/internal/analyzer"
	"github.com/cleared-dev/cashflow/internal/buildinfo"
	"github.com/cleared-dev/cashflow/internal/config"
	"github.com/cleared-dev/cashflow/internal/logging"
	"github.com/cleared-dev/cashflow/internal/report"
	"github.com/cleared-dev/cashflow/internal/snapshot"
)

// app carries the resolved configuration shared by every subcommand.
type app struct {
	cfgFile string
	v       *viper.Viper
	cfg     *config.Config
	log     *logrus.Logger
	now     func() time.Time
}

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	return newRootCommand(&app{now: time.Now})
}

func newRootCommand(a *app) *cobra.Command {
	a.v = config.NewViper()

	rootCmd := &cobra.Command{
		Use:     "cashflow",
		Short:   "Bank statement trends and cash flow projections",
		Version: buildinfo.String(),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.initConfig(cmd)
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&a.cfgFile, "config", "", "config file (default: ./"+config.FileName+")")
	pf.String("state", "", "session state file")
	pf.String("log-level", "", "log level (debug, info, warn, error)")
	pf.String("log-format", "", "log format (text, json)")
	_ = a.v.BindPFlag(config.KeyState, pf.Lookup("state"))
	_ = a.v.BindPFlag(config.KeyLogLevel, pf.Lookup("log-level"))
	_ = a.v.BindPFlag(config.KeyLogFormat, pf.Lookup("log-format"))

	rootCmd.AddCommand(newInitCommand(a))
	rootCmd.AddCommand(newImportCommand(a))
	rootCmd.AddCommand(newSummaryCommand(a))
	rootCmd.AddCommand(newTrendsCommand(a))
	rootCmd.AddCommand(newProjectCommand(a))
	rootCmd.AddCommand(newActualCommand(a))
	rootCmd.AddCommand(newIncomeCommand(a))
	rootCmd.AddCommand(newBurnCommand(a))
	rootCmd.AddCommand(newScenarioCommand(a))
	rootCmd.AddCommand(newClearCommand(a))
	rootCmd.AddCommand(newSnapshotCommand(a))
	rootCmd.AddCommand(newLedgerCommand(a))
	rootCmd.AddCommand(newActivityCommand(a))
	rootCmd.AddCommand(newServeCommand(a))

	return rootCmd
}

// initConfig loads cashflow.yaml, overlays CASHFLOW_* variables and flags,
// and sets up logging. A missing default config file is not an error.
func (a *app) initConfig(cmd *cobra.Command) error {
	var (
		cfg *config.Config
		err error
	)
	if a.cfgFile != "" {
		cfg, err = config.Load(a.cfgFile)
	} else {
		cfg, err = config.LoadOrDefault(config.FileName)
	}
	if err != nil {
		return err
	}
	if err := cfg.Apply(a.v); err != nil {
		return fmt.Errorf("applying overrides: %w", err)
	}
	a.cfg = cfg
	a.log = logging.NewWithOutput(cmd.ErrOrStderr(), cfg.Logging.Level, cfg.Logging.Format)
	return nil
}

func (a *app) newAnalyzer() *analyzer.Analyzer {
	return analyzer.New(analyzer.Options{
		MonthsAhead:    a.cfg.Projection.MonthsAhead,
		NormalizeYears: a.cfg.Projection.NormalizeYears,
		Now:            a.now,
		Logger:         a.log,
	})
}

// openSession restores the analyzer from the state file, starting empty when
// the file does not exist yet.
func (a *app) openSession() (*analyzer.Analyzer, error) {
	an := a.newAnalyzer()
	st, err := snapshot.Load(a.cfg.Files.State)
	switch {
	case errors.Is(err, os.ErrNotExist):
		a.log.WithField("path", a.cfg.Files.State).Debug("no session state, starting empty")
	case err != nil:
		return nil, fmt.Errorf("loading session state %s: %w", a.cfg.Files.State, err)
	default:
		an.Import(st)
	}
	a.cfg.ApplyScenarios(an.Scenarios())
	return an, nil
}

func (a *app) saveSession(an *analyzer.Analyzer) error {
	if err := snapshot.Save(a.cfg.Files.State, an.Export()); err != nil {
		return fmt.Errorf("saving session state: %w", err)
	}
	return nil
}

// commit saves the session and appends an activity entry.
func (a *app) commit(an *analyzer.Analyzer, action, scenario, details string) error {
	if err := a.saveSession(an); err != nil {
		return err
	}
	if err := a.recorder("cli").Record(action, scenario, details, ""); err != nil {
		a.log.WithError(err).Warn("recording activity")
	}
	return nil
}

func (a *app) recorder(source string) *activity.Recorder {
	return &activity.Recorder{Path: a.cfg.Files.ActivityLog, Source: source, Now: a.now}
}

func (a *app) printer(cmd *cobra.Command) *report.Printer {
	return report.New(cmd.OutOrStdout(), a.cfg.Currency)
}
