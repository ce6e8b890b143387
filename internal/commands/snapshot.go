package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/cashflow/internal/ledger"
	"github.com/cleared-dev/cashflow/internal/snapshot"
)

func newSnapshotCommand(a *app) *cobra.Command {
	snapshotCmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Export, import and archive session snapshots",
	}
	snapshotCmd.AddCommand(newSnapshotExportCommand(a))
	snapshotCmd.AddCommand(newSnapshotImportCommand(a))
	snapshotCmd.AddCommand(newSnapshotArchiveCommand(a))
	snapshotCmd.AddCommand(newSnapshotHistoryCommand(a))
	snapshotCmd.AddCommand(newSnapshotRestoreCommand(a))
	return snapshotCmd
}

func newSnapshotExportCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "export [file]",
		Short: "Write the session to a snapshot file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSnapshotExport(cmd, a, args)
		},
	}
}

func runSnapshotExport(cmd *cobra.Command, a *app, args []string) error {
	an, err := a.openSession()
	if err != nil {
		return err
	}
	st := an.Export()
	path := snapshot.DefaultFileName(st.Timestamp)
	if len(args) == 1 {
		path = args[0]
	}
	if err := snapshot.Save(path, st); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Exported snapshot to %s\n", path)
	return nil
}

func newSnapshotImportCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Replace the session with a snapshot file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSnapshotImport(cmd, a, args)
		},
	}
}

func runSnapshotImport(cmd *cobra.Command, a *app, args []string) error {
	st, err := snapshot.Load(args[0])
	if err != nil {
		return err
	}
	an := a.newAnalyzer()
	an.Import(st)
	a.cfg.ApplyScenarios(an.Scenarios())
	if err := a.commit(an, "import_snapshot", "", args[0]); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Imported %d transactions from %s\n", len(an.Transactions()), args[0])
	return nil
}

func newSnapshotArchiveCommand(a *app) *cobra.Command {
	var label string

	cmd := &cobra.Command{
		Use:   "archive",
		Short: "Store the current session in the snapshot archive",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSnapshotArchive(cmd, a, label)
		},
	}

	cmd.Flags().StringVar(&label, "label", "", "label for the archived snapshot")

	return cmd
}

func runSnapshotArchive(cmd *cobra.Command, a *app, label string) error {
	an, err := a.openSession()
	if err != nil {
		return err
	}
	data, err := snapshot.Marshal(an.Export())
	if err != nil {
		return err
	}

	store, err := snapshot.Open(cmd.Context(), a.cfg.Files.Archive)
	if err != nil {
		return err
	}
	defer store.Close()

	rec, err := store.Put(cmd.Context(), label, data)
	if err != nil {
		return err
	}
	if err := a.recorder("cli").Record("archive_snapshot", "", label, rec.ID); err != nil {
		a.log.WithError(err).Warn("recording activity")
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Archived snapshot %s\n", rec.ID)
	return nil
}

func newSnapshotHistoryCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "history",
		Short: "List archived snapshots, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSnapshotHistory(cmd, a)
		},
	}
}

func runSnapshotHistory(cmd *cobra.Command, a *app) error {
	store, err := snapshot.Open(cmd.Context(), a.cfg.Files.Archive)
	if err != nil {
		return err
	}
	defer store.Close()

	records, err := store.List(cmd.Context())
	if err != nil {
		return err
	}
	a.printer(cmd).Archive(records)
	return nil
}

func newSnapshotRestoreCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "restore <id>",
		Short: "Replace the session with an archived snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSnapshotRestore(cmd, a, args)
		},
	}
}

func runSnapshotRestore(cmd *cobra.Command, a *app, args []string) error {
	store, err := snapshot.Open(cmd.Context(), a.cfg.Files.Archive)
	if err != nil {
		return err
	}
	defer store.Close()

	_, data, err := store.Get(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	st, err := snapshot.Unmarshal(data)
	if err != nil {
		return err
	}

	an := a.newAnalyzer()
	an.Import(st)
	a.cfg.ApplyScenarios(an.Scenarios())
	if err := a.saveSession(an); err != nil {
		return err
	}
	if err := a.recorder("cli").Record("restore_snapshot", "", "", args[0]); err != nil {
		a.log.WithError(err).Warn("recording activity")
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Restored snapshot %s\n", args[0])
	return nil
}

func newClearCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Reset the session, keeping scenario names",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runClear(cmd, a)
		},
	}
}

func runClear(cmd *cobra.Command, a *app) error {
	an, err := a.openSession()
	if err != nil {
		return err
	}
	an.Clear()
	if err := a.commit(an, "clear", "", ""); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Session cleared")
	return nil
}

func newLedgerCommand(a *app) *cobra.Command {
	ledgerCmd := &cobra.Command{
		Use:   "ledger",
		Short: "Work with the normalized transaction ledger",
	}

	ledgerCmd.AddCommand(&cobra.Command{
		Use:   "export <file>",
		Short: "Write the ledger as CSV (- for stdout)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLedgerExport(cmd, a, args)
		},
	})

	return ledgerCmd
}

func runLedgerExport(cmd *cobra.Command, a *app, args []string) error {
	an, err := a.openSession()
	if err != nil {
		return err
	}
	if args[0] == "-" {
		return ledger.WriteTransactions(cmd.OutOrStdout(), an.Transactions())
	}

	f, err := os.Create(args[0])
	if err != nil {
		return fmt.Errorf("creating %s: %w", args[0], err)
	}
	if err := ledger.WriteTransactions(f, an.Transactions()); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", args[0], err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d transactions to %s\n", len(an.Transactions()), args[0])
	return nil
}
