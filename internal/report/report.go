// Package report ranks per-operation complexity results and writes them out.
package report

import (
	"fmt"
	"io"
	"sort"

	"github.com/dustin/go-humanize"
	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	operation "github.com/hanpama/querycost/internal/operation"
)

// Result is the outcome of scoring one operation. A failed operation has zero
// complexity and a non-empty Error.
type Result struct {
	QueryName               string         `json:"queryName" yaml:"queryName"`
	Type                    operation.Kind `json:"type" yaml:"type"`
	Complexity              int            `json:"complexity" yaml:"complexity"`
	ComplexityWithFragments int            `json:"complexityWithFragments" yaml:"complexityWithFragments"`
	Error                   string         `json:"error,omitempty" yaml:"error,omitempty"`
}

func (r Result) Failed() bool { return r.Error != "" }

type Summary struct {
	Successes int
	Failures  int
	// MaxComplexity is nil when there are no results.
	MaxComplexity *int
}

type Report struct {
	Results []Result
	Summary Summary
}

// Build sorts results by ComplexityWithFragments, highest first. Results with
// equal complexity keep their input order. The input slice is not modified.
func Build(results []Result) *Report {
	sorted := make([]Result, len(results))
	copy(sorted, results)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].ComplexityWithFragments > sorted[j].ComplexityWithFragments
	})

	r := &Report{Results: sorted}
	for _, res := range sorted {
		if res.Failed() {
			r.Summary.Failures++
		} else {
			r.Summary.Successes++
		}
	}
	if len(sorted) > 0 {
		top := sorted[0].ComplexityWithFragments
		r.Summary.MaxComplexity = &top
	}
	return r
}

// Line is the one-line console summary.
func (r *Report) Line() string {
	top := "n/a"
	if r.Summary.MaxComplexity != nil {
		top = humanize.Comma(int64(*r.Summary.MaxComplexity))
	}
	noun := "operations"
	if r.Summary.Successes == 1 {
		noun = "operation"
	}
	return fmt.Sprintf("querycost: %s %s scored, %s failed, max complexity %s",
		humanize.Comma(int64(r.Summary.Successes)), noun, humanize.Comma(int64(r.Summary.Failures)), top)
}

type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatJSON, "":
		return FormatJSON, nil
	case FormatYAML, "yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("unknown report format %q (want json or yaml)", s)
}

// Write encodes the ranked results as an array of objects.
func (r *Report) Write(w io.Writer, format Format) error {
	results := r.Results
	if results == nil {
		results = []Result{}
	}
	switch format {
	case FormatJSON, "":
		b, err := json.MarshalIndent(results, "", "  ")
		if err != nil {
			return fmt.Errorf("encode report: %w", err)
		}
		b = append(b, '\n')
		if _, err := w.Write(b); err != nil {
			return fmt.Errorf("write report: %w", err)
		}
		return nil
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(results); err != nil {
			return fmt.Errorf("encode report: %w", err)
		}
		return enc.Close()
	}
	return fmt.Errorf("unknown report format %q", format)
}
