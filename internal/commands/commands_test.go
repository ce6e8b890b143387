package commands

import (
	"bytes"
	"os"
	"path/filepath"
	"regexp"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/cashflow/internal/activity"
	"github.com/cleared-dev/cashflow/internal/common"
	"github.com/cleared-dev/cashflow/internal/snapshot"
)

func fixedNow() time.Time { return time.Date(2025, 3, 20, 9, 0, 0, 0, time.UTC) }

var statementPath, _ = filepath.Abs("../../testdata/statement.csv")

// runCashflow executes the CLI in-process and returns its stdout.
func runCashflow(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand(&app{now: fixedNow})
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

// workspace initializes a workspace in a temp dir and makes it the cwd.
func workspace(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	_, err := runCashflow(t, "init")
	require.NoError(t, err)
	return dir
}

func loadStatement(t *testing.T) {
	t.Helper()
	out, err := runCashflow(t, "import", statementPath)
	require.NoError(t, err)
	require.Contains(t, out, "Loaded 6 transactions")
}

func TestInit_CreatesStructure(t *testing.T) {
	dir := workspace(t)

	for _, d := range []string{"import", filepath.Join("import", "processed")} {
		info, err := os.Stat(filepath.Join(dir, d))
		require.NoError(t, err, "directory %s should exist", d)
		assert.True(t, info.IsDir(), "%s should be a directory", d)
	}

	data, err := os.ReadFile(filepath.Join(dir, "cashflow.yaml"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "currency: EUR")
	assert.Contains(t, string(data), "months_ahead: 24")
	assert.Contains(t, string(data), "id: scenario2")
	assert.Contains(t, string(data), "name: Scenario 2")

	data, err = os.ReadFile(filepath.Join(dir, ".gitignore"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "cashflow-state.json")
	assert.Contains(t, string(data), "cashflow-activity.csv")

	_, err = os.Stat(filepath.Join(dir, "import", ".gitkeep"))
	assert.NoError(t, err)

	_, err = runCashflow(t, "init")
	assert.Error(t, err, "init over an existing workspace should fail")
}

func TestInit_Flags(t *testing.T) {
	dir := t.TempDir()
	_, err := runCashflow(t, "init", dir, "--currency", "USD", "--months", "12")
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, "cashflow.yaml"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "currency: USD")
	assert.Contains(t, string(data), "months_ahead: 12")

	_, err = runCashflow(t, "init", t.TempDir(), "--months", "0")
	assert.Error(t, err)
}

func TestImportAndSummary(t *testing.T) {
	dir := workspace(t)

	out, err := runCashflow(t, "summary")
	require.NoError(t, err)
	assert.Contains(t, out, "No data loaded")

	loadStatement(t)
	_, err = os.Stat(filepath.Join(dir, "cashflow-state.json"))
	require.NoError(t, err)

	out, err = runCashflow(t, "summary")
	require.NoError(t, err)
	assert.Contains(t, out, "€2,844.50")
	assert.Contains(t, out, "€577.75")
	assert.Contains(t, out, "6 (last 2025-03-03)")

	out, err = runCashflow(t, "trends")
	require.NoError(t, err)
	assert.Contains(t, out, "Jan 2025")
	assert.Contains(t, out, "Mar 2025")

	entries, err := activity.Read(filepath.Join(dir, activity.DefaultFile))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "load_statement", entries[0].Action)
	assert.Equal(t, "cli", entries[0].Source)

	out, err = runCashflow(t, "activity", "-n", "5")
	require.NoError(t, err)
	assert.Contains(t, out, "load_statement")
	assert.Contains(t, out, "2025-03-20 09:00")
}

func TestImport_Validation(t *testing.T) {
	workspace(t)

	_, err := runCashflow(t, "import")
	assert.ErrorIs(t, err, common.ErrInvalidInput)
	_, err = runCashflow(t, "import", statementPath, "--scan")
	assert.ErrorIs(t, err, common.ErrInvalidInput)
	_, err = runCashflow(t, "import", statementPath, "--format", "xml")
	assert.ErrorIs(t, err, common.ErrInvalidInput)

	bad := filepath.Join(t.TempDir(), "bad.csv")
	require.NoError(t, os.WriteFile(bad, []byte("Date;Amount\n01/01/2025;1,00\n"), 0o644))
	_, err = runCashflow(t, "import", bad)
	assert.ErrorIs(t, err, common.ErrMissingColumns)
	_, err = os.Stat("cashflow-state.json")
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestImport_Scan(t *testing.T) {
	dir := workspace(t)

	out, err := runCashflow(t, "import", "--scan")
	require.NoError(t, err)
	assert.Contains(t, out, "No statements found")

	data, err := os.ReadFile(statementPath)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "import", "2025-02.csv"), []byte("junk"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "import", "2025-03.csv"), data, 0o644))
	older := fixedNow().Add(-48 * time.Hour)
	require.NoError(t, os.Chtimes(filepath.Join(dir, "import", "2025-02.csv"), older, older))

	out, err = runCashflow(t, "import", "--scan")
	require.NoError(t, err)
	assert.Contains(t, out, "Loaded 6 transactions")
	assert.Contains(t, out, "1 older statement(s) left")

	_, err = os.Stat(filepath.Join(dir, "import", "processed", "2025-03.csv"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(dir, "import", "2025-02.csv"))
	assert.NoError(t, err)
}

func TestActualCommands(t *testing.T) {
	workspace(t)
	loadStatement(t)

	out, err := runCashflow(t, "actual", "add", "expense", "2025-02", "1000")
	require.NoError(t, err)
	assert.Contains(t, out, "expense for 2025-02 added")

	out, err = runCashflow(t, "actual", "add", "expenses", "2025-02", "1100")
	require.NoError(t, err)
	assert.Contains(t, out, "expense for 2025-02 updated")

	_, err = runCashflow(t, "actual", "add", "income", "2025-13", "10")
	assert.ErrorIs(t, err, common.ErrInvalidInput)
	_, err = runCashflow(t, "actual", "add", "income", "2025-01", "0")
	assert.ErrorIs(t, err, common.ErrInvalidInput)
	_, err = runCashflow(t, "actual", "add", "bonus", "2025-01", "10")
	assert.ErrorIs(t, err, common.ErrInvalidInput)

	out, err = runCashflow(t, "actual", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Feb 2025")
	assert.Contains(t, out, "€1,100.00")

	out, err = runCashflow(t, "summary")
	require.NoError(t, err)
	assert.Contains(t, out, "actual")
	assert.Contains(t, out, "€1,744.50")

	out, err = runCashflow(t, "actual", "missing")
	require.NoError(t, err)
	assert.Contains(t, out, "Feb 2025: income")
	assert.Contains(t, out, "Jan 2025: expense, income")
	assert.Contains(t, out, "Dec 2024: expense, income")

	_, err = runCashflow(t, "actual", "remove", "expense", "2025-05")
	assert.ErrorIs(t, err, common.ErrNotFound)
	out, err = runCashflow(t, "actual", "remove", "expense", "2025-02")
	require.NoError(t, err)
	assert.Contains(t, out, "expense for 2025-02 removed")
}

func TestProject_ActualData(t *testing.T) {
	workspace(t)
	loadStatement(t)

	out, err := runCashflow(t, "project")
	require.NoError(t, err)
	assert.NotContains(t, out, "Actual data")

	_, err = runCashflow(t, "actual", "add", "expense", "2025-03", "400")
	require.NoError(t, err)

	out, err = runCashflow(t, "project")
	require.NoError(t, err)
	assert.Contains(t, out, "Actual data")
	assert.Regexp(t, regexp.MustCompile(`Mar 2025\s+€400\.00\s+€2,444\.50`), out)

	out, err = runCashflow(t, "project", "--all")
	require.NoError(t, err)
	assert.Contains(t, out, "Actual data")
}

func TestScenarioCommands(t *testing.T) {
	workspace(t)
	loadStatement(t)

	out, err := runCashflow(t, "income", "add", "scenario1", "2025-05-10", "1000")
	require.NoError(t, err)
	assert.Contains(t, out, "Added income 1000.00 on 2025-05-10 to Scenario 1")

	out, err = runCashflow(t, "income", "add", "scenario1", "2030-01-01", "50")
	require.NoError(t, err)
	assert.Contains(t, out, "not applied: 50.00 on 2030-01-01: after horizon")

	_, err = runCashflow(t, "income", "add", "scenario7", "2025-05-10", "1000")
	assert.ErrorIs(t, err, common.ErrNotFound)
	_, err = runCashflow(t, "income", "add", "scenario1", "soon", "1000")
	assert.ErrorIs(t, err, common.ErrInvalidInput)

	out, err = runCashflow(t, "income", "list", "scenario1")
	require.NoError(t, err)
	assert.Contains(t, out, "2025-05-10")
	assert.Contains(t, out, "2030-01-01")

	out, err = runCashflow(t, "project", "--scenario", "scenario1", "--months", "12")
	require.NoError(t, err)
	assert.Contains(t, out, "Scenario 1")
	assert.Contains(t, out, "+€1,000.00")
	assert.Contains(t, out, "Mar 2026")

	_, err = runCashflow(t, "income", "remove", "scenario1", "1")
	require.NoError(t, err)
	_, err = runCashflow(t, "income", "remove", "scenario1", "4")
	assert.ErrorIs(t, err, common.ErrNotFound)

	out, err = runCashflow(t, "burn", "scenario2", "80%")
	require.NoError(t, err)
	assert.Contains(t, out, "Scenario 2 burn rate set to 80%")
	_, err = runCashflow(t, "burn", "--", "scenario2", "-1")
	assert.ErrorIs(t, err, common.ErrInvalidInput)

	_, err = runCashflow(t, "scenario", "use", "scenario2")
	require.NoError(t, err)

	out, err = runCashflow(t, "project", "--all")
	require.NoError(t, err)
	assert.Contains(t, out, "* scenario2")
	assert.Contains(t, out, "burn 80%")

	out, err = runCashflow(t, "scenario", "list")
	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`scenario1\s+Scenario 1\s+1 incomes`), out)

	_, err = runCashflow(t, "income", "clear", "scenario1")
	require.NoError(t, err)
	out, err = runCashflow(t, "income", "list", "scenario1")
	require.NoError(t, err)
	assert.Contains(t, out, "No incomes for Scenario 1")
}

func TestSnapshotCommands(t *testing.T) {
	dir := workspace(t)
	loadStatement(t)
	_, err := runCashflow(t, "income", "add", "scenario3", "2025-06-01", "500")
	require.NoError(t, err)

	out, err := runCashflow(t, "snapshot", "export")
	require.NoError(t, err)
	assert.Contains(t, out, "cashflow_data_2025-03-20.json")
	exported := filepath.Join(dir, "cashflow_data_2025-03-20.json")

	out, err = runCashflow(t, "snapshot", "archive", "--label", "before clear")
	require.NoError(t, err)
	id := regexp.MustCompile(`Archived snapshot (\S+)`).FindStringSubmatch(out)
	require.Len(t, id, 2)

	out, err = runCashflow(t, "clear")
	require.NoError(t, err)
	assert.Contains(t, out, "Session cleared")
	out, err = runCashflow(t, "summary")
	require.NoError(t, err)
	assert.Contains(t, out, "No data loaded")

	out, err = runCashflow(t, "snapshot", "import", exported)
	require.NoError(t, err)
	assert.Contains(t, out, "Imported 6 transactions")

	st, err := snapshot.Load(filepath.Join(dir, "cashflow-state.json"))
	require.NoError(t, err)
	require.Len(t, st.Scenarios[3].Incomes, 1)
	assert.True(t, st.Scenarios[3].Incomes[0].Amount.Equal(decimal.NewFromInt(500)))

	_, err = runCashflow(t, "clear")
	require.NoError(t, err)

	out, err = runCashflow(t, "snapshot", "history")
	require.NoError(t, err)
	assert.Contains(t, out, id[1])
	assert.Contains(t, out, "before clear")

	_, err = runCashflow(t, "snapshot", "restore", "missing-id")
	assert.ErrorIs(t, err, common.ErrNotFound)
	out, err = runCashflow(t, "snapshot", "restore", id[1])
	require.NoError(t, err)
	assert.Contains(t, out, "Restored snapshot")

	out, err = runCashflow(t, "summary")
	require.NoError(t, err)
	assert.Contains(t, out, "€2,844.50")

	_, err = runCashflow(t, "snapshot", "import", filepath.Join(dir, "cashflow.yaml"))
	assert.ErrorIs(t, err, common.ErrInvalidFormat)
}

func TestLedgerExport(t *testing.T) {
	dir := workspace(t)
	loadStatement(t)

	out, err := runCashflow(t, "ledger", "export", "-")
	require.NoError(t, err)
	assert.Contains(t, out, "transaction_date,value_date,description,amount,balance")
	assert.Contains(t, out, "2025-02-05,2025-02-06,ΕΝΟΙΚΙΟ,-800.00,3049.50")

	out, err = runCashflow(t, "ledger", "export", filepath.Join(dir, "ledger.csv"))
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote 6 transactions")
}

func TestOverrides(t *testing.T) {
	dir := workspace(t)

	t.Setenv("CASHFLOW_FILES_STATE", "env-state.json")
	loadStatement(t)
	_, err := os.Stat(filepath.Join(dir, "env-state.json"))
	require.NoError(t, err)

	_, err = runCashflow(t, "import", statementPath, "--state", "flag-state.json")
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(dir, "flag-state.json"))
	require.NoError(t, err)

	_, err = runCashflow(t, "summary", "--config", filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}

func TestParseFactor(t *testing.T) {
	tests := map[string]string{
		"0.8":  "0.8",
		"80%":  "0.8",
		"150%": "1.5",
		"0":    "0",
	}
	for in, want := range tests {
		got, err := parseFactor(in)
		require.NoError(t, err, in)
		assert.True(t, got.Equal(decimal.RequireFromString(want)), "%s => %s", in, got)
	}
	_, err := parseFactor("fast")
	assert.ErrorIs(t, err, common.ErrInvalidInput)
}
