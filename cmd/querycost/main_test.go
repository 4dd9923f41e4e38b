package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func execute(t *testing.T, log *zap.Logger, args ...string) (string, error) {
	t.Helper()
	if log == nil {
		log = zap.NewNop()
	}
	var out bytes.Buffer
	cmd := newRootCmd(&out, log)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestAnalyze(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	reportPath := filepath.Join(t.TempDir(), "report.json")

	out, err := execute(t, zap.New(core), "analyze",
		"--schema", "testdata/schema.graphql",
		"--operations", "testdata/operations.graphql",
		"--fragments", "testdata/fragments.graphql",
		"--out", reportPath,
		"--concurrency", "2",
	)
	require.NoError(t, err)
	require.Equal(t, "querycost: 4 operations scored, 2 failed, max complexity 25\n", out)

	b, err := os.ReadFile(reportPath)
	require.NoError(t, err)
	doc := string(b)
	require.Equal(t, int64(6), gjson.Get(doc, "#").Int())
	require.Equal(t, "(anonymous)", gjson.Get(doc, "0.queryName").String())
	require.Equal(t, "Rename", gjson.Get(doc, "1.queryName").String())
	require.Equal(t, "mutation", gjson.Get(doc, "1.type").String())
	require.Equal(t, int64(11), gjson.Get(doc, "1.complexityWithFragments").Int())
	require.Equal(t, []string{"Broken", "Since"}, stringsOf(gjson.GetMany(doc, "4.queryName", "5.queryName")))
	require.NotEmpty(t, gjson.Get(doc, "4.error").String())
	require.False(t, gjson.Get(doc, "3.error").Exists())

	require.Equal(t, 2, logs.FilterMessage("operation failed").Len())
}

func stringsOf(rs []gjson.Result) []string {
	var out []string
	for _, v := range rs {
		out = append(out, v.String())
	}
	return out
}

func TestAnalyzeYAMLToStdout(t *testing.T) {
	out, err := execute(t, nil, "analyze",
		"--schema", "testdata/schema.graphql",
		"--operations", "testdata/operations.graphql",
		"--fragments", "testdata/fragments.graphql",
		"--out", "-",
		"--format", "yaml",
	)
	require.NoError(t, err)
	require.Contains(t, out, "queryName: Rename\n")
	require.Contains(t, out, "complexityWithFragments: 25\n")
	require.True(t, strings.HasSuffix(out, "max complexity 25\n"))
}

func TestAnalyzeWithConfigFile(t *testing.T) {
	dir := t.TempDir()
	reportPath := filepath.Join(dir, "report.json")
	cfg := "schema: [testdata/schema.graphql]\n" +
		"operations: testdata/operations.graphql\n" +
		"fragments: testdata/fragments.graphql\n" +
		"output: " + reportPath + "\n" +
		"synth:\n  overrides:\n    DateTime: \"2024-01-01T00:00:00Z\"\n"
	cfgPath := filepath.Join(dir, "querycost.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(cfg), 0o644))

	out, err := execute(t, nil, "--config", cfgPath, "analyze")
	require.NoError(t, err)
	require.Equal(t, "querycost: 5 operations scored, 1 failed, max complexity 25\n", out)
	_, err = os.Stat(reportPath)
	require.NoError(t, err)
}

func TestAnalyzeCatastrophicFailures(t *testing.T) {
	_, err := execute(t, nil, "analyze",
		"--schema", "testdata/missing.graphql",
		"--operations", "testdata/operations.graphql",
		"--fragments", "testdata/fragments.graphql",
		"--out", "-")
	require.ErrorContains(t, err, "read schema")

	_, err = execute(t, nil, "analyze",
		"--schema", "testdata/schema.graphql",
		"--operations", "testdata/missing.graphql",
		"--fragments", "testdata/fragments.graphql",
		"--out", "-")
	require.ErrorContains(t, err, "read operations")

	_, err = execute(t, nil, "analyze",
		"--schema", "testdata/schema.graphql",
		"--operations", "testdata/operations.graphql",
		"--fragments", "testdata/fragments.graphql",
		"--format", "xml")
	require.ErrorContains(t, err, "invalid configuration")
}

func TestExtractThenAnalyze(t *testing.T) {
	dir := t.TempDir()
	opsPath := filepath.Join(dir, "ops.graphql")
	fragsPath := filepath.Join(dir, "frags.graphql")

	out, err := execute(t, nil, "extract",
		"--root", "testdata/src",
		"--operations-out", opsPath,
		"--fragments-out", fragsPath)
	require.NoError(t, err)
	require.Equal(t, "querycost: extracted 2 operations and 1 fragments from 1 files\n", out)

	frags, err := os.ReadFile(fragsPath)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(string(frags), "fragment UserParts on User {"))

	out, err = execute(t, nil, "analyze",
		"--schema", "testdata/schema.graphql",
		"--operations", opsPath,
		"--fragments", fragsPath,
		"--out", "-")
	require.NoError(t, err)
	require.Contains(t, out, "querycost: 2 operations scored, 0 failed, max complexity 11\n")
}

func TestCatalog(t *testing.T) {
	out, err := execute(t, nil, "catalog", "--schema", "testdata/schema.graphql")
	require.NoError(t, err)
	require.Contains(t, out, "input UserFilterInput {")
	require.Contains(t, out, "enum RoleEnum {")
	require.NotContains(t, out, "type Query")

	out, err = execute(t, nil, "catalog", "--schema", "testdata/schema.graphql", "--classify", "suffix")
	require.NoError(t, err)
	require.Contains(t, out, "input UserFilterInput {")
}
