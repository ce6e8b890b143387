package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/cashflow/internal/analyzer"
	"github.com/cleared-dev/cashflow/internal/common"
	"github.com/cleared-dev/cashflow/internal/importer"
)

func newImportCommand(a *app) *cobra.Command {
	var format string
	var scan bool

	cmd := &cobra.Command{
		Use:   "import [file]",
		Short: "Load a bank statement, replacing the current ledger",
		Long: `Load a semicolon-delimited bank statement export. Actual figures and
scenario settings are kept. With --scan the newest statement in the import
directory is loaded and moved to import/processed.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd, a, args, format, scan)
		},
	}

	cmd.Flags().StringVar(&format, "format", importer.DefaultFormat, "statement format (semicolon, comma)")
	cmd.Flags().BoolVar(&scan, "scan", false, "load the newest statement from the import directory")

	return cmd
}

func runImport(cmd *cobra.Command, a *app, args []string, format string, scan bool) error {
	if scan == (len(args) == 1) {
		return fmt.Errorf("%w: pass either a file or --scan", common.ErrInvalidInput)
	}
	parser, err := importer.DefaultRegistry().Lookup(format)
	if err != nil {
		return err
	}

	an, err := a.openSession()
	if err != nil {
		return err
	}

	if scan {
		return runImportScan(cmd, a, an, parser)
	}
	if err := loadStatementFile(cmd, an, args[0], parser); err != nil {
		return err
	}
	return a.commit(an, "load_statement", "", args[0])
}

func loadStatementFile(cmd *cobra.Command, an *analyzer.Analyzer, path string, parser importer.Parser) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening statement: %w", err)
	}
	defer f.Close()

	if err := an.LoadStatement(cmd.Context(), f, parser); err != nil {
		return fmt.Errorf("loading %s: %w", path, err)
	}

	w := an.LastLoadWarnings()
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Loaded %d transactions from %s\n", len(an.Transactions()), path)
	if w.DroppedRows > 0 {
		fmt.Fprintf(out, "  %d rows skipped\n", w.DroppedRows)
	}
	if w.DateFallbacks > 0 {
		fmt.Fprintf(out, "  %d rows had unreadable dates and were dated today\n", w.DateFallbacks)
	}
	return nil
}

func runImportScan(cmd *cobra.Command, a *app, an *analyzer.Analyzer, parser importer.Parser) error {
	inbox := importer.Inbox{Dir: a.cfg.Files.ImportDir}
	pending, err := inbox.Pending()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if len(pending) == 0 {
		fmt.Fprintf(out, "No statements found in %s\n", inbox.Dir)
		return nil
	}
	newest := pending[0]

	if err := loadStatementFile(cmd, an, newest.Path, parser); err != nil {
		return err
	}
	if err := a.commit(an, "load_statement", "", newest.Name); err != nil {
		return err
	}
	archived, err := inbox.Archive(newest.Name)
	if err != nil {
		return err
	}
	a.log.WithField("path", archived).Debug("statement archived")
	if older := len(pending) - 1; older > 0 {
		fmt.Fprintf(out, "%d older statement(s) left in %s\n", older, inbox.Dir)
	}
	return nil
}
