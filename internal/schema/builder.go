package schema

import (
	"strconv"

	language "github.com/hanpama/querycost/internal/language"
)

// BuildFromAST converts a validated gqlparser schema into the structural model.
// Input field and enum value order follow the declaration order.
func BuildFromAST(src *language.Schema) *Schema {
	s := &Schema{Types: make(map[string]*Type, len(src.Types))}
	for name, def := range src.Types {
		s.Types[name] = buildType(def)
	}
	return s
}

func buildType(def *language.Definition) *Type {
	t := &Type{
		Name:        def.Name,
		Description: def.Description,
		BuiltIn:     def.BuiltIn,
	}
	switch def.Kind {
	case language.Object:
		t.Kind = TypeKindObject
	case language.Interface:
		t.Kind = TypeKindInterface
	case language.Union:
		t.Kind = TypeKindUnion
	case language.Enum:
		t.Kind = TypeKindEnum
		for _, v := range def.EnumValues {
			t.EnumValues = append(t.EnumValues, buildEnumValue(v))
		}
	case language.InputObject:
		t.Kind = TypeKindInputObject
		t.OneOf = def.Directives.ForName("oneOf") != nil
		for _, f := range def.Fields {
			t.InputFields = append(t.InputFields, buildInputValue(f.Name, f.Description, f.Type, f.DefaultValue, f.Directives))
		}
	default:
		t.Kind = TypeKindScalar
	}
	return t
}

func buildEnumValue(v *language.EnumValueDefinition) *EnumValue {
	e := &EnumValue{Name: v.Name, Description: v.Description}
	e.IsDeprecated, e.DeprecationReason = deprecation(v.Directives)
	return e
}

func buildInputValue(name, description string, typ *language.Type, def *language.Value, dirs language.DirectiveList) *InputValue {
	in := &InputValue{
		Name:        name,
		Description: description,
		Type:        buildTypeRef(typ),
	}
	if def != nil {
		in.DefaultValue = astValueToGo(def)
	}
	in.IsDeprecated, in.DeprecationReason = deprecation(dirs)
	return in
}

func buildTypeRef(t *language.Type) *TypeRef {
	if t == nil {
		return nil
	}
	ref := &TypeRef{NonNull: t.NonNull}
	if t.Elem != nil {
		ref.List = buildTypeRef(t.Elem)
	} else {
		ref.Named = t.NamedType
	}
	return ref
}

func deprecation(dirs language.DirectiveList) (bool, string) {
	d := dirs.ForName("deprecated")
	if d == nil {
		return false, ""
	}
	if arg := d.Arguments.ForName("reason"); arg != nil && arg.Value != nil {
		return true, arg.Value.Raw
	}
	return true, ""
}

// enumLiteral marks an enum default so it renders unquoted.
type enumLiteral string

// astValueToGo converts a constant AST value to a Go value
func astValueToGo(value *language.Value) any {
	if value == nil {
		return nil
	}
	switch value.Kind {
	case language.IntValue:
		iv, _ := strconv.Atoi(value.Raw)
		return iv
	case language.FloatValue:
		fv, _ := strconv.ParseFloat(value.Raw, 64)
		return fv
	case language.StringValue, language.BlockValue:
		return value.Raw
	case language.EnumValue:
		return enumLiteral(value.Raw)
	case language.BooleanValue:
		return value.Raw == "true"
	case language.ListValue:
		out := make([]any, len(value.Children))
		for i, c := range value.Children {
			out[i] = astValueToGo(c.Value)
		}
		return out
	case language.ObjectValue:
		m := make(map[string]any)
		for _, f := range value.Children {
			m[f.Name] = astValueToGo(f.Value)
		}
		return m
	default:
		return nil
	}
}
