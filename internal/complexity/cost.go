package complexity

import (
	"context"
	"math"
	"reflect"
	"strconv"
	"strings"

	"github.com/99designs/gqlgen/graphql"
	"github.com/vektah/gqlparser/v2/ast"
)

// Directives holds the SDL of the cost directives the scorer understands,
// keyed by directive name. Schemas that do not declare them get these
// declarations added when loaded.
var Directives = map[string]string{
	"complexity": `directive @complexity(value: Int!, multipliers: [String!]) on FIELD_DEFINITION`,
	"cost":       `directive @cost(weight: Int!) on FIELD_DEFINITION`,
	"listSize":   `directive @listSize(assumedSize: Int, slicingArguments: [String!]) on FIELD_DEFINITION`,
}

type fieldKey struct {
	typeName  string
	fieldName string
}

// fieldCost is the cost annotation of one field definition.
// A field costs (value + child) * multiplier.
type fieldCost struct {
	value       int
	multipliers []string
	slicing     []string
	assumedSize int
	hasAssumed  bool
}

func buildCostTable(s *ast.Schema, defaultCost int) map[fieldKey]*fieldCost {
	table := make(map[fieldKey]*fieldCost)
	for _, def := range s.Types {
		if def.Kind != ast.Object && def.Kind != ast.Interface {
			continue
		}
		for _, f := range def.Fields {
			if c := parseFieldCost(f.Directives, defaultCost); c != nil {
				table[fieldKey{def.Name, f.Name}] = c
			}
		}
	}
	return table
}

func parseFieldCost(directives ast.DirectiveList, defaultCost int) *fieldCost {
	cx := directives.ForName("complexity")
	cost := directives.ForName("cost")
	size := directives.ForName("listSize")
	if cx == nil && cost == nil && size == nil {
		return nil
	}

	c := &fieldCost{value: defaultCost}
	if cx != nil {
		if v, ok := intArg(cx, "value"); ok {
			c.value = v
		}
		c.multipliers = stringsArg(cx, "multipliers")
	}
	if cost != nil {
		if v, ok := intArg(cost, "weight"); ok {
			c.value = v
		}
	}
	if size != nil {
		c.slicing = stringsArg(size, "slicingArguments")
		c.assumedSize, c.hasAssumed = intArg(size, "assumedSize")
	}
	return c
}

func (c *fieldCost) multiplier(args map[string]any) int {
	m := 1
	for _, name := range c.multipliers {
		if f, ok := factor(args[name]); ok {
			m = mul(m, f)
		}
	}
	if len(c.slicing) > 0 || c.hasAssumed {
		sized := false
		for _, name := range c.slicing {
			if f, ok := factor(args[name]); ok {
				m = mul(m, f)
				sized = true
				break
			}
		}
		if !sized && c.hasAssumed {
			m = mul(m, c.assumedSize)
		}
	}
	return m
}

// costSchema adapts the cost table to the gqlgen complexity walker.
// Only Schema and Complexity are used by the walker.
type costSchema struct {
	schema      *ast.Schema
	costs       map[fieldKey]*fieldCost
	defaultCost int
}

var _ graphql.ExecutableSchema = (*costSchema)(nil)

func (cs *costSchema) Schema() *ast.Schema { return cs.schema }

func (cs *costSchema) Exec(context.Context) graphql.ResponseHandler { return nil }

func (cs *costSchema) Complexity(_ context.Context, typeName, fieldName string, childComplexity int, args map[string]any) (int, bool) {
	c, ok := cs.costs[fieldKey{typeName, fieldName}]
	if !ok {
		return add(cs.defaultCost, childComplexity), true
	}
	return mul(add(c.value, childComplexity), c.multiplier(args)), true
}

// dropFree removes the selections of set that cost nothing: introspection
// fields, fields whose multiplier is zero, and zero-valued fields without
// costly children. The walker charges at least one for every field it visits,
// so these must not reach it. Fragment definitions are rewritten once.
func (cs *costSchema) dropFree(set ast.SelectionSet, vars map[string]any, done map[*ast.FragmentDefinition]bool) ast.SelectionSet {
	out := set[:0]
	for _, sel := range set {
		switch s := sel.(type) {
		case *ast.Field:
			if cs.free(s, vars, done) {
				continue
			}
		case *ast.InlineFragment:
			s.SelectionSet = cs.dropFree(s.SelectionSet, vars, done)
			if len(s.SelectionSet) == 0 {
				continue
			}
		case *ast.FragmentSpread:
			if s.Definition == nil {
				continue
			}
			if !done[s.Definition] {
				done[s.Definition] = true
				s.Definition.SelectionSet = cs.dropFree(s.Definition.SelectionSet, vars, done)
			}
			if len(s.Definition.SelectionSet) == 0 {
				continue
			}
		}
		out = append(out, sel)
	}
	return out
}

func (cs *costSchema) free(f *ast.Field, vars map[string]any, done map[*ast.FragmentDefinition]bool) bool {
	if strings.HasPrefix(f.Name, "__") {
		return true
	}
	f.SelectionSet = cs.dropFree(f.SelectionSet, vars, done)
	if f.ObjectDefinition == nil {
		return false
	}
	childFree := len(f.SelectionSet) == 0
	args := f.ArgumentMap(vars)
	if f.ObjectDefinition.Kind != ast.Interface {
		return cs.freeOn(f.ObjectDefinition.Name, f.Name, childFree, args)
	}
	// the walker takes the most expensive implementor
	for _, t := range cs.schema.GetPossibleTypes(f.ObjectDefinition) {
		if !cs.freeOn(t.Name, f.Name, childFree, args) {
			return false
		}
	}
	return true
}

func (cs *costSchema) freeOn(typeName, fieldName string, childFree bool, args map[string]any) bool {
	c, ok := cs.costs[fieldKey{typeName, fieldName}]
	if !ok {
		return cs.defaultCost == 0 && childFree
	}
	if c.multiplier(args) == 0 {
		return true
	}
	return c.value == 0 && childFree
}

func intArg(d *ast.Directive, name string) (int, bool) {
	arg := d.Arguments.ForName(name)
	if arg == nil || arg.Value == nil {
		return 0, false
	}
	v, err := arg.Value.Value(nil)
	if err != nil {
		return 0, false
	}
	if s, ok := v.(string); ok {
		n, err := strconv.Atoi(s)
		return n, err == nil
	}
	return factor(v)
}

func stringsArg(d *ast.Directive, name string) []string {
	arg := d.Arguments.ForName(name)
	if arg == nil || arg.Value == nil {
		return nil
	}
	v, err := arg.Value.Value(nil)
	if err != nil {
		return nil
	}
	list, _ := v.([]any)
	out := make([]string, 0, len(list))
	for _, e := range list {
		if s, ok := e.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// factor turns an argument value into a multiplier: numbers count as
// themselves, lists by their length.
func factor(v any) (int, bool) {
	switch n := v.(type) {
	case nil:
		return 0, false
	case int:
		return clamp(int64(n)), true
	case int32:
		return clamp(int64(n)), true
	case int64:
		return clamp(n), true
	case float64:
		if n >= math.MaxInt64 {
			return math.MaxInt, true
		}
		return clamp(int64(n)), true
	case []any:
		return len(n), true
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array {
		return rv.Len(), true
	}
	return 0, false
}

func clamp(n int64) int {
	switch {
	case n < 0:
		return 0
	case n > math.MaxInt:
		return math.MaxInt
	}
	return int(n)
}

func add(a, b int) int {
	if a > math.MaxInt-b {
		return math.MaxInt
	}
	return a + b
}

func mul(a, b int) int {
	if a == 0 || b == 0 {
		return 0
	}
	if a > math.MaxInt/b {
		return math.MaxInt
	}
	return a * b
}
