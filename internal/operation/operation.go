// Package operation turns extracted GraphQL source text into classified
// operations and fragments, and reads variable declarations from operation
// signatures without a full parse.
package operation

// Kind classifies a top-level definition block.
type Kind string

const (
	KindQuery    Kind = "query"
	KindMutation Kind = "mutation"
	KindFragment Kind = "fragment"
)

// Operation is one query, mutation or fragment definition.
type Operation struct {
	Kind Kind
	// Name is empty for anonymous operations.
	Name string
	Text string
	// Variables is nil for fragments.
	Variables []Variable
}

// IsFragment reports whether o is a fragment definition.
func (o *Operation) IsFragment() bool { return o.Kind == KindFragment }

// Signature returns the name/kind prefix of the definition, e.g. "query GetUser".
func (o *Operation) Signature() string { return Signature(o.Text) }

// Variable is a declared operation variable. Type has its trailing non-null
// marker removed; Required records whether it was present.
type Variable struct {
	Name     string
	Type     string
	Required bool
}
