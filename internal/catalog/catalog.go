// Package catalog exposes the input-object and enum types of a loaded schema,
// which is all the variable synthesizer needs to know about it.
package catalog

import (
	"fmt"
	"strings"

	schema "github.com/hanpama/querycost/internal/schema"
)

// Lookup is the read side of a Catalog.
type Lookup interface {
	LookupInputType(name string) (*InputType, bool)
	LookupEnumType(name string) (*EnumType, bool)
}

// InputType describes an input object by its fields.
type InputType struct {
	Name   string
	Fields []InputField
}

// InputField is one field of an input object. TypeName uses SDL spelling,
// for example "[ID!]!".
type InputField struct {
	Name     string
	TypeName string
}

// EnumType describes an enum; Values is never empty.
type EnumType struct {
	Name   string
	Values []string
}

// Default returns the canonical default value of the enum.
func (e *EnumType) Default() string { return e.Values[0] }

// Classifier decides how schema types are recognised as inputs or enums.
type Classifier string

const (
	// ByKind uses the structural kind of each type.
	ByKind Classifier = "kind"
	// BySuffix recognises types named "...Input" as input objects and
	// "...Enum" as enums.
	BySuffix Classifier = "suffix"
)

const (
	InputSuffix = "Input"
	EnumSuffix  = "Enum"
)

// ParseClassifier maps a configuration value to a Classifier.
func ParseClassifier(s string) (Classifier, error) {
	switch Classifier(strings.ToLower(strings.TrimSpace(s))) {
	case "", ByKind:
		return ByKind, nil
	case BySuffix:
		return BySuffix, nil
	default:
		return "", fmt.Errorf("unknown classifier %q (want %q or %q)", s, ByKind, BySuffix)
	}
}

type Option func(*options)

type options struct {
	classifier Classifier
}

// WithClassifier selects the classification strategy. The default is ByKind.
func WithClassifier(c Classifier) Option { return func(o *options) { o.classifier = c } }

// Catalog is an immutable index of input and enum types. It is safe for
// concurrent use.
type Catalog struct {
	inputs map[string]*InputType
	enums  map[string]*EnumType
	types  []*schema.Type
}

var _ Lookup = (*Catalog)(nil)

// New builds a Catalog from s.
func New(s *schema.Schema, opts ...Option) *Catalog {
	o := options{classifier: ByKind}
	for _, f := range opts {
		f(&o)
	}
	c := &Catalog{
		inputs: make(map[string]*InputType),
		enums:  make(map[string]*EnumType),
	}
	for name, t := range s.Types {
		if t.BuiltIn {
			continue
		}
		switch {
		case isInput(o.classifier, t):
			in := &InputType{Name: name, Fields: make([]InputField, 0, len(t.InputFields))}
			for _, f := range t.InputFields {
				in.Fields = append(in.Fields, InputField{Name: f.Name, TypeName: f.Type.String()})
			}
			c.inputs[name] = in
			c.types = append(c.types, t)
		case isEnum(o.classifier, t):
			e := &EnumType{Name: name, Values: make([]string, 0, len(t.EnumValues))}
			for _, v := range t.EnumValues {
				e.Values = append(e.Values, v.Name)
			}
			c.enums[name] = e
			c.types = append(c.types, t)
		}
	}
	return c
}

func isInput(c Classifier, t *schema.Type) bool {
	if c == BySuffix {
		// The suffix decides; the kind only has to carry input fields.
		return strings.HasSuffix(t.Name, InputSuffix) && t.Kind == schema.TypeKindInputObject
	}
	return t.Kind == schema.TypeKindInputObject
}

func isEnum(c Classifier, t *schema.Type) bool {
	if len(t.EnumValues) == 0 {
		return false
	}
	if c == BySuffix {
		return strings.HasSuffix(t.Name, EnumSuffix) && t.Kind == schema.TypeKindEnum
	}
	return t.Kind == schema.TypeKindEnum
}

func (c *Catalog) LookupInputType(name string) (*InputType, bool) {
	t, ok := c.inputs[name]
	return t, ok
}

func (c *Catalog) LookupEnumType(name string) (*EnumType, bool) {
	t, ok := c.enums[name]
	return t, ok
}

// Len reports the number of catalogued types.
func (c *Catalog) Len() int { return len(c.inputs) + len(c.enums) }

// Render returns the catalogued types as SDL.
func (c *Catalog) Render() string { return schema.Render(c.types) }
