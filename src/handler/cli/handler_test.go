package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"debtwatch/src/config"
	"debtwatch/src/service/state"
)

// debtProject has a single-char name, a generic name, a two-file
// dependency cycle, and a single-caller helper.
func debtProject(t *testing.T) string {
	t.Helper()
	return writeFixture(t, map[string]string{
		"src/a.ts": "import { helper } from './b';\n\n" +
			"export function f(x) {\n  return helper(x) + 1;\n}\n",
		"src/b.ts": "import { f } from './a';\n\n" +
			"export function helper(x) {\n  if (x > 0) {\n    return f(x - 1);\n  }\n  return 0;\n}\n",
	})
}

// cleanProject parses fine and trips no detector: the file is an entry
// point, the name is descriptive, and the body does real work.
func cleanProject(t *testing.T) string {
	t.Helper()
	return writeFixture(t, map[string]string{
		"index.ts": "export function parseConfig(raw) {\n" +
			"  const parsed = JSON.parse(raw);\n  return parsed.config;\n}\n",
	})
}

func writeFixture(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for rel, content := range files {
		p := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0644))
	}
	return root
}

func run(t *testing.T, args ...string) error {
	t.Helper()
	h := New()
	h.rootCmd.SetArgs(args)
	return h.Execute()
}

func TestScanCommandSignalsOpenFindings(t *testing.T) {
	root := debtProject(t)

	err := run(t, "scan", root, "--lang", "typescript")
	assert.ErrorIs(t, err, errFindingsRemain)

	_, statErr := os.Stat(filepath.Join(root, ".debtwatch", "state-typescript.json"))
	assert.NoError(t, statErr)
}

func TestScanCommandCleanProjectSucceeds(t *testing.T) {
	root := cleanProject(t)

	err := run(t, "scan", root, "--lang", "typescript")
	assert.NoError(t, err)
}

func TestScanCommandWritesReports(t *testing.T) {
	root := debtProject(t)
	out := filepath.Join(t.TempDir(), "reports")

	err := run(t, "scan", root, "--lang", "typescript", "--output", out, "--format", "sarif")
	assert.ErrorIs(t, err, errFindingsRemain)

	_, statErr := os.Stat(filepath.Join(out, "debt-typescript.sarif"))
	assert.NoError(t, statErr)
}

func TestStatusCommandBeforeAnyScan(t *testing.T) {
	root := cleanProject(t)

	err := run(t, "status", root, "--lang", "typescript")
	assert.NoError(t, err)
}

func TestStatusCommandReportsOpenDebt(t *testing.T) {
	root := debtProject(t)

	require.ErrorIs(t, run(t, "scan", root, "--lang", "typescript"), errFindingsRemain)

	err := run(t, "status", root, "--lang", "typescript", "--json")
	assert.ErrorIs(t, err, errFindingsRemain)
}

func TestStatusCommandWritesRecordFile(t *testing.T) {
	root := debtProject(t)
	record := filepath.Join(t.TempDir(), "status.json")

	require.ErrorIs(t, run(t, "scan", root, "--lang", "typescript"), errFindingsRemain)
	require.ErrorIs(t, run(t, "status", root, "--lang", "typescript", "--output", record), errFindingsRemain)

	data, err := os.ReadFile(record)
	require.NoError(t, err)
	assert.Contains(t, string(data), "\"scan_count\": 1")
}

func TestResolveCommandRequiresNoteForWontfix(t *testing.T) {
	root := debtProject(t)
	require.ErrorIs(t, run(t, "scan", root, "--lang", "typescript"), errFindingsRemain)

	err := run(t, "resolve", "wontfix", "naming", root, "--lang", "typescript")
	require.Error(t, err)
	assert.ErrorIs(t, err, state.ErrNoteRequired)
}

func TestResolveCommandRoundTrip(t *testing.T) {
	root := debtProject(t)
	require.ErrorIs(t, run(t, "scan", root, "--lang", "typescript"), errFindingsRemain)

	err := run(t, "resolve", "wontfix", "naming", root, "--lang", "typescript", "--note", "house style")
	assert.NoError(t, err)

	// the two naming findings no longer count as open
	err = run(t, "show", "naming", root, "--lang", "typescript")
	assert.NoError(t, err)

	err = run(t, "show", "cycles", root, "--lang", "typescript")
	assert.ErrorIs(t, err, errFindingsRemain)
}

func TestShowCommandRejectsBadStatus(t *testing.T) {
	root := debtProject(t)
	require.ErrorIs(t, run(t, "scan", root, "--lang", "typescript"), errFindingsRemain)

	err := run(t, "show", "naming", root, "--lang", "typescript", "--status", "bogus")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid status")
}

func TestNextCommandHonorsCount(t *testing.T) {
	root := debtProject(t)
	require.ErrorIs(t, run(t, "scan", root, "--lang", "typescript"), errFindingsRemain)

	err := run(t, "next", root, "--lang", "typescript", "-n", "2")
	assert.ErrorIs(t, err, errFindingsRemain)
}

func TestDetectCommandBypassesState(t *testing.T) {
	root := debtProject(t)

	err := run(t, "detect", "naming", root, "--lang", "typescript")
	assert.ErrorIs(t, err, errFindingsRemain)

	_, statErr := os.Stat(filepath.Join(root, ".debtwatch"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestDetectCommandUnknownDetector(t *testing.T) {
	root := debtProject(t)

	err := run(t, "detect", "phrenology", root, "--lang", "typescript")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown detector")
}

func TestPlanCommandRunsJSON(t *testing.T) {
	root := debtProject(t)
	require.ErrorIs(t, run(t, "scan", root, "--lang", "typescript"), errFindingsRemain)

	err := run(t, "plan", root, "--lang", "typescript", "--json")
	assert.ErrorIs(t, err, errFindingsRemain)
}

func TestVersionCommandRuns(t *testing.T) {
	assert.NoError(t, run(t, "version"))
}

func TestDetectorsCommandRuns(t *testing.T) {
	assert.NoError(t, run(t, "detectors"))
}

func TestLanguageFlagOverridesConfig(t *testing.T) {
	h := &Handler{cfg: config.DefaultConfig()}
	assert.Equal(t, "auto", h.language())

	h.lang = "go"
	assert.Equal(t, "go", h.language())
}

func TestRootArgDefaultsToCwd(t *testing.T) {
	assert.Equal(t, ".", rootArg(nil, 0))
	assert.Equal(t, "proj", rootArg([]string{"proj"}, 0))
	assert.Equal(t, ".", rootArg([]string{"wontfix", "naming"}, 2))
	assert.Equal(t, "proj", rootArg([]string{"wontfix", "naming", "proj"}, 2))
}
