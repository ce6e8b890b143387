package commands

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/cashflow/internal/config"
	"github.com/cleared-dev/cashflow/internal/importer"
	"github.com/cleared-dev/cashflow/internal/model"
)

func newInitCommand(a *app) *cobra.Command {
	var currency string
	var months int

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Create a cashflow workspace",
		Long: `Create cashflow.yaml with defaults, an import/ inbox for statement
exports and a .gitignore that keeps session files out of version control.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(cmd, args, currency, months)
		},
	}

	cmd.Flags().StringVar(&currency, "currency", "EUR", "ISO 4217 currency code")
	cmd.Flags().IntVar(&months, "months", 24, "projection horizon in months")

	return cmd
}

func runInit(cmd *cobra.Command, args []string, currency string, months int) error {
	root := "."
	if len(args) == 1 {
		root = args[0]
	}
	root, err := filepath.Abs(root)
	if err != nil {
		return fmt.Errorf("workspace path: %w", err)
	}

	cfg := config.Default()
	cfg.Currency = strings.ToUpper(currency)
	cfg.Projection.MonthsAhead = months
	cfg.Scenarios = scenarioTemplate()
	if err := cfg.Validate(); err != nil {
		return err
	}

	if err := scaffold(root, cfg); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Initialized cashflow workspace at %s\n", root)
	return nil
}

// scenarioTemplate lists the default scenario names and colors so they can
// be edited in cashflow.yaml.
func scenarioTemplate() []config.ScenarioConfig {
	set := model.DefaultScenarios()
	out := make([]config.ScenarioConfig, 0, len(set))
	for _, sc := range set {
		out = append(out, config.ScenarioConfig{ID: sc.ID.String(), Name: sc.Name, Color: sc.Color})
	}
	return out
}

// scaffold lays out a workspace under root. It refuses to touch a directory
// that already has a cashflow.yaml.
func scaffold(root string, cfg *config.Config) error {
	cfgPath := filepath.Join(root, config.FileName)
	if _, err := os.Stat(cfgPath); err == nil {
		return fmt.Errorf("%s already exists", cfgPath)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return err
	}

	inbox := filepath.Join(root, cfg.Files.ImportDir)
	if err := os.MkdirAll(filepath.Join(inbox, importer.ProcessedDir), 0o755); err != nil {
		return fmt.Errorf("creating inbox: %w", err)
	}
	if err := config.Save(cfgPath, cfg); err != nil {
		return err
	}

	ignored := []string{
		cfg.Files.State,
		cfg.Files.Archive,
		cfg.Files.ActivityLog,
		cfg.Files.ImportDir + "/*",
		"!" + cfg.Files.ImportDir + "/.gitkeep",
	}
	extra := map[string]string{
		".gitignore": strings.Join(ignored, "\n") + "\n",
		filepath.Join(cfg.Files.ImportDir, ".gitkeep"): "",
	}
	for name, body := range extra {
		if err := os.WriteFile(filepath.Join(root, name), []byte(body), 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", name, err)
		}
	}
	return nil
}
