// Package complexity scores GraphQL operations against a schema without
// executing them.
package complexity

import (
	"context"
	"errors"
	"fmt"

	gqlcomplexity "github.com/99designs/gqlgen/complexity"
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/validator"
	"github.com/vektah/gqlparser/v2/validator/rules"

	language "github.com/hanpama/querycost/internal/language"
)

var (
	ErrNoOperation = errors.New("document contains no operation")
	// ErrTimeout is returned when ctx ends before scoring does. The abandoned
	// work checks ctx between parsing, validation and walking and exits there.
	ErrTimeout = errors.New("scoring did not finish")
)

// DefaultFieldCost is the cost of a field without a cost annotation.
const DefaultFieldCost = 1

type Option func(*Scorer)

// WithDefaultFieldCost sets the cost of unannotated fields. Negative values are ignored.
func WithDefaultFieldCost(n int) Option {
	return func(s *Scorer) {
		if n >= 0 {
			s.defaultCost = n
		}
	}
}

// Scorer computes operation complexity. It is safe for concurrent use; every
// call parses its own document.
type Scorer struct {
	schema      *ast.Schema
	defaultCost int
	rules       *rules.Rules
	es          *costSchema
}

func NewScorer(schema *ast.Schema, opts ...Option) *Scorer {
	s := &Scorer{schema: schema, defaultCost: DefaultFieldCost}
	for _, f := range opts {
		f(s)
	}

	// Operations are scored one at a time out of a shared corpus, so unused
	// fragments and variables are expected.
	s.rules = rules.NewDefaultRules()
	s.rules.RemoveRule("NoUnusedFragments")
	s.rules.RemoveRule("NoUnusedVariables")

	s.es = &costSchema{
		schema:      schema,
		costs:       buildCostTable(schema, s.defaultCost),
		defaultCost: s.defaultCost,
	}
	return s
}

// Score returns the complexity of the first operation in text. Spreads of
// fragments that text does not define contribute nothing.
func (s *Scorer) Score(ctx context.Context, text string, vars map[string]any) (int, error) {
	return s.run(ctx, text, nil, vars, true)
}

// ScoreWithFragments scores the first operation in text with the fragments it
// reaches taken from fragments. A spread naming a fragment defined in neither
// is an error.
func (s *Scorer) ScoreWithFragments(ctx context.Context, text string, fragments *Fragments, vars map[string]any) (int, error) {
	return s.run(ctx, text, fragments, vars, false)
}

type outcome struct {
	complexity int
	err        error
}

// run scores in its own goroutine so a deadline is honoured even inside the
// walker. The goroutine is not interrupted: it stops at the next step boundary
// after ctx ends, or when the walker returns.
func (s *Scorer) run(ctx context.Context, text string, fragments *Fragments, vars map[string]any, lenient bool) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, fmt.Errorf("%w: %w", ErrTimeout, err)
	}
	done := make(chan outcome, 1)
	go func() {
		n, err := s.score(ctx, text, fragments, vars, lenient)
		done <- outcome{n, err}
	}()
	select {
	case o := <-done:
		return o.complexity, o.err
	case <-ctx.Done():
		return 0, fmt.Errorf("%w: %w", ErrTimeout, ctx.Err())
	}
}

func (s *Scorer) score(ctx context.Context, text string, fragments *Fragments, vars map[string]any, lenient bool) (n int, err error) {
	defer func() {
		if r := recover(); r != nil {
			n, err = 0, fmt.Errorf("complexity walker: %v", r)
		}
	}()

	doc, err := language.ParseQuery(text)
	if err != nil {
		return 0, fmt.Errorf("parse operation: %w", err)
	}
	if len(doc.Operations) == 0 {
		return 0, ErrNoOperation
	}
	op := doc.Operations[0]
	doc.Operations = ast.OperationList{op}
	if lenient {
		stubUndefinedSpreads(doc)
	} else if err := fragments.resolve(doc, op); err != nil {
		return 0, err
	}
	doc.Fragments = reachableFragments(doc, op)

	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if errs := validator.ValidateWithRules(s.schema, doc, s.rules); len(errs) > 0 {
		return 0, fmt.Errorf("validate operation: %w", errs)
	}

	coerced, err := validator.VariableValues(s.schema, op, vars)
	if err != nil {
		return 0, fmt.Errorf("coerce variables: %w", err)
	}

	if err := ctx.Err(); err != nil {
		return 0, err
	}
	pruneExcluded(doc, coerced)
	op.SelectionSet = s.es.dropFree(op.SelectionSet, coerced, make(map[*ast.FragmentDefinition]bool))
	return gqlcomplexity.Calculate(ctx, s.es, op, coerced), nil
}
