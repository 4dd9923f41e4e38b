package schema

// Schema is the structural view of a loaded GraphQL schema used for input
// synthesis. It keeps the kind metadata of every named type.
type Schema struct {
	Types map[string]*Type // keyed by name
}

// Type is a named GraphQL type. Only enums and input objects carry members;
// the other kinds are kept so lookups can tell them apart.
type Type struct {
	Name        string
	Kind        TypeKind
	Description string
	EnumValues  []*EnumValue  // ENUM, in declaration order
	InputFields []*InputValue // INPUT_OBJECT, in declaration order
	OneOf       bool
	BuiltIn     bool
}

type TypeKind string

const (
	TypeKindScalar      TypeKind = "SCALAR"
	TypeKindObject      TypeKind = "OBJECT"
	TypeKindInterface   TypeKind = "INTERFACE"
	TypeKindUnion       TypeKind = "UNION"
	TypeKindEnum        TypeKind = "ENUM"
	TypeKindInputObject TypeKind = "INPUT_OBJECT"
)

// TypeRef is a possibly wrapped reference to a named type.
type TypeRef struct {
	Named   string   // set on the innermost reference
	List    *TypeRef // element type when this is a list
	NonNull bool
}

// String renders the reference in SDL spelling, e.g. "[ID!]!".
func (t *TypeRef) String() string {
	if t == nil {
		return ""
	}
	s := t.Named
	if t.List != nil {
		s = "[" + t.List.String() + "]"
	}
	if t.NonNull {
		s += "!"
	}
	return s
}

type EnumValue struct {
	Name              string
	Description       string
	IsDeprecated      bool
	DeprecationReason string
}

type InputValue struct {
	Name              string
	Description       string
	Type              *TypeRef
	DefaultValue      any
	IsDeprecated      bool
	DeprecationReason string
}
