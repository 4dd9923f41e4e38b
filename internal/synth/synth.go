// Package synth generates placeholder variable values that satisfy the
// declared types of an operation, using only the schema's input-type graph.
package synth

import (
	"errors"
	"fmt"
	"strings"

	catalog "github.com/hanpama/querycost/internal/catalog"
	operation "github.com/hanpama/querycost/internal/operation"
)

// ErrUnsatisfiable is returned when a required variable has no synthesizable value.
var ErrUnsatisfiable = errors.New("required variable cannot be synthesized")

const (
	DefaultPlaceholder = "test"
	DefaultMaxDepth    = 32
)

type Option func(*Synthesizer)

// WithOverrides sets fixed values for type names. Keys match the type name
// with non-null markers removed; an exact match wins over a case-insensitive one.
func WithOverrides(overrides map[string]any) Option {
	return func(s *Synthesizer) {
		for name, v := range overrides {
			key := strings.ReplaceAll(name, "!", "")
			s.overrides[key] = v
			s.foldedOverrides[strings.ToLower(key)] = v
		}
	}
}

// WithPlaceholder sets the value used for string-like scalars.
func WithPlaceholder(p string) Option { return func(s *Synthesizer) { s.placeholder = p } }

// WithMaxDepth bounds input-object nesting. Values <= 0 keep the default.
func WithMaxDepth(n int) Option {
	return func(s *Synthesizer) {
		if n > 0 {
			s.maxDepth = n
		}
	}
}

// Synthesizer produces values for type names. It holds no per-call state and
// is safe for concurrent use.
type Synthesizer struct {
	catalog         catalog.Lookup
	overrides       map[string]any
	foldedOverrides map[string]any
	placeholder     string
	maxDepth        int
}

func New(c catalog.Lookup, opts ...Option) *Synthesizer {
	s := &Synthesizer{
		catalog:         c,
		overrides:       make(map[string]any),
		foldedOverrides: make(map[string]any),
		placeholder:     DefaultPlaceholder,
		maxDepth:        DefaultMaxDepth,
	}
	for _, f := range opts {
		f(s)
	}
	return s
}

// Synthesize returns a value for typeName. ok is false when no value can be
// produced; callers omit the variable or field in that case.
//
// Input objects that reference themselves, directly or through other inputs,
// stop at the first repeated type on the current path: that field is omitted.
func (s *Synthesizer) Synthesize(typeName string) (v any, ok bool) {
	return s.synthesize(typeName, make(map[string]bool), 0)
}

func (s *Synthesizer) synthesize(typeName string, visiting map[string]bool, depth int) (any, bool) {
	name := strings.ReplaceAll(strings.TrimSpace(typeName), "!", "")
	if name == "" {
		return nil, false
	}

	if v, ok := s.override(name); ok {
		return v, true
	}

	if strings.HasPrefix(name, "[") && strings.HasSuffix(name, "]") {
		return []any{}, true
	}

	if e, ok := s.catalog.LookupEnumType(name); ok {
		return e.Default(), true
	}

	switch name {
	case "String", "ID", "JSON":
		return s.placeholder, true
	case "Int", "Float":
		return 1, true
	case "Boolean":
		return true, true
	}

	in, ok := s.catalog.LookupInputType(name)
	if !ok {
		return nil, false
	}
	if visiting[name] || depth >= s.maxDepth {
		return nil, false
	}
	visiting[name] = true
	defer delete(visiting, name)

	obj := make(map[string]any, len(in.Fields))
	for _, f := range in.Fields {
		if v, ok := s.synthesize(f.TypeName, visiting, depth+1); ok {
			obj[f.Name] = v
		}
	}
	return obj, true
}

func (s *Synthesizer) override(name string) (any, bool) {
	v, ok := s.overrides[name]
	if !ok {
		v, ok = s.foldedOverrides[strings.ToLower(name)]
	}
	if !ok {
		return nil, false
	}
	return cloneValue(v), true
}

// ForOperation synthesizes the variables of one operation. Optional variables
// without a value are omitted; a required one fails with ErrUnsatisfiable.
func (s *Synthesizer) ForOperation(vars []operation.Variable) (map[string]any, error) {
	out := make(map[string]any, len(vars))
	for _, v := range vars {
		val, ok := s.Synthesize(v.Type)
		if !ok {
			if v.Required {
				return nil, fmt.Errorf("%w: $%s of type %s!", ErrUnsatisfiable, v.Name, v.Type)
			}
			continue
		}
		out[v.Name] = val
	}
	return out, nil
}

// cloneValue copies maps and slices so callers never share override values.
func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		m := make(map[string]any, len(t))
		for k, e := range t {
			m[k] = cloneValue(e)
		}
		return m
	case []any:
		l := make([]any, len(t))
		for i, e := range t {
			l[i] = cloneValue(e)
		}
		return l
	default:
		return v
	}
}
