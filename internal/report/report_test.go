package report

import (
	"bytes"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
	"gopkg.in/yaml.v3"

	operation "github.com/hanpama/querycost/internal/operation"
)

func sample() []Result {
	return []Result{
		{QueryName: "A", Type: operation.KindQuery, Complexity: 3, ComplexityWithFragments: 5},
		{QueryName: "B", Type: operation.KindMutation, Complexity: 9, ComplexityWithFragments: 9},
		{QueryName: "C", Type: operation.KindQuery, Error: "validate operation: boom"},
		{QueryName: "D", Type: operation.KindQuery, Complexity: 5, ComplexityWithFragments: 5},
		{QueryName: "E", Type: operation.KindQuery, Complexity: 1240, ComplexityWithFragments: 1240},
	}
}

func names(results []Result) []string {
	out := make([]string, len(results))
	for i, r := range results {
		out[i] = r.QueryName
	}
	return out
}

func TestBuildSortsStably(t *testing.T) {
	in := sample()
	r := Build(in)

	if diff := cmp.Diff([]string{"E", "B", "A", "D", "C"}, names(r.Results)); diff != "" {
		t.Errorf("order mismatch (-want +got):\n%s", diff)
	}
	require.Equal(t, []string{"A", "B", "C", "D", "E"}, names(in), "input must not be reordered")

	require.Equal(t, 4, r.Summary.Successes)
	require.Equal(t, 1, r.Summary.Failures)
	require.NotNil(t, r.Summary.MaxComplexity)
	require.Equal(t, 1240, *r.Summary.MaxComplexity)
	require.Equal(t, "querycost: 4 operations scored, 1 failed, max complexity 1,240", r.Line())
}

func TestBuildOneFailureOneSuccess(t *testing.T) {
	r := Build([]Result{
		{QueryName: "Bad", Type: operation.KindQuery, Error: "parse operation: unexpected <EOF>"},
		{QueryName: "Good", Type: operation.KindQuery, Complexity: 4, ComplexityWithFragments: 6},
	})
	require.Len(t, r.Results, 2)
	require.Equal(t, "Good", r.Results[0].QueryName)
	require.Equal(t, 6, r.Results[0].ComplexityWithFragments)
	require.True(t, r.Results[1].Failed())
	require.Zero(t, r.Results[1].Complexity)
	require.Equal(t, "querycost: 1 operation scored, 1 failed, max complexity 6", r.Line())
}

func TestBuildEmpty(t *testing.T) {
	r := Build(nil)
	require.Empty(t, r.Results)
	require.Nil(t, r.Summary.MaxComplexity)
	require.Equal(t, "querycost: 0 operations scored, 0 failed, max complexity n/a", r.Line())

	var buf bytes.Buffer
	require.NoError(t, r.Write(&buf, FormatJSON))
	require.Equal(t, "[]\n", buf.String())
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Build(sample()).Write(&buf, FormatJSON))
	out := buf.String()

	require.True(t, gjson.Valid(out))
	require.Equal(t, int64(5), gjson.Get(out, "#").Int())
	require.Equal(t, "E", gjson.Get(out, "0.queryName").String())
	require.Equal(t, "query", gjson.Get(out, "0.type").String())
	require.Equal(t, int64(1240), gjson.Get(out, "0.complexity").Int())
	require.Equal(t, "mutation", gjson.Get(out, "1.type").String())
	require.False(t, gjson.Get(out, "0.error").Exists(), "error is omitted when empty")
	require.Equal(t, "validate operation: boom", gjson.Get(out, "4.error").String())
	require.Equal(t, int64(0), gjson.Get(out, "4.complexityWithFragments").Int())
	require.True(t, gjson.Get(out, "4.complexityWithFragments").Exists())
}

func TestWriteYAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Build(sample()).Write(&buf, FormatYAML))

	var decoded []map[string]any
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &decoded))
	require.Len(t, decoded, 5)
	require.Equal(t, "E", decoded[0]["queryName"])
	require.Equal(t, 1240, decoded[0]["complexityWithFragments"])
	require.NotContains(t, decoded[0], "error")
	require.Equal(t, "validate operation: boom", decoded[4]["error"])
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("yml")
	require.NoError(t, err)
	require.Equal(t, FormatYAML, f)
	f, err = ParseFormat("")
	require.NoError(t, err)
	require.Equal(t, FormatJSON, f)
	_, err = ParseFormat("xml")
	require.Error(t, err)
	require.Error(t, Build(nil).Write(&bytes.Buffer{}, Format("xml")))
}
