package schema

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	language "github.com/hanpama/querycost/internal/language"
	"github.com/stretchr/testify/require"
)

func loadTestSchema(t *testing.T) *Schema {
	t.Helper()
	src, err := Load([]string{filepath.Join("testdata", "catalog.graphql")}, nil)
	require.NoError(t, err, "failed to load schema")
	return BuildFromAST(src)
}

func TestBuildFromASTKeepsKindsAndOrder(t *testing.T) {
	s := loadTestSchema(t)

	role := s.Types["RoleEnum"]
	require.NotNil(t, role)
	require.Equal(t, TypeKindEnum, role.Kind)
	var values []string
	for _, v := range role.EnumValues {
		values = append(values, v.Name)
	}
	if diff := cmp.Diff([]string{"ADMIN", "EDITOR", "VIEWER"}, values); diff != "" {
		t.Errorf("enum values mismatch (-want +got):\n%s", diff)
	}
	require.True(t, role.EnumValues[2].IsDeprecated)
	require.Equal(t, "use EDITOR", role.EnumValues[2].DeprecationReason)

	input := s.Types["SearchInput"]
	require.NotNil(t, input)
	require.Equal(t, TypeKindInputObject, input.Kind)
	var fields []string
	for _, f := range input.InputFields {
		fields = append(fields, f.Name+": "+f.Type.String())
	}
	if diff := cmp.Diff([]string{"term: String!", "role: RoleEnum", "tags: [String!]"}, fields); diff != "" {
		t.Errorf("input fields mismatch (-want +got):\n%s", diff)
	}

	require.Equal(t, TypeKindScalar, s.Types["DateTime"].Kind)
	require.True(t, s.Types["String"].BuiltIn)
	require.Equal(t, TypeKindObject, s.Types["User"].Kind)
}

func TestTypeRefString(t *testing.T) {
	ref := &TypeRef{NonNull: true, List: &TypeRef{List: &TypeRef{Named: "ID", NonNull: true}}}
	require.Equal(t, "[[ID!]]!", ref.String())
	require.Equal(t, "Int", (&TypeRef{Named: "Int"}).String())

	var nilRef *TypeRef
	require.Empty(t, nilRef.String())
}

func TestRenderInputsAndEnums(t *testing.T) {
	s := loadTestSchema(t)
	actual := Render([]*Type{s.Types["SearchInput"], s.Types["RoleEnum"], s.Types["DateTime"]})

	expected := `scalar DateTime

"""
Roles a user can have.
"""
enum RoleEnum {
  ADMIN
  EDITOR
  VIEWER @deprecated(reason: "use EDITOR")
}

input SearchInput {
  term: String!
  role: RoleEnum = VIEWER
  tags: [String!]
}
`
	if diff := cmp.Diff(expected, actual); diff != "" {
		t.Errorf("Rendered schema mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadAddsMissingDirectives(t *testing.T) {
	sdl := `
type Query {
  items: [String!] @weight(value: 3)
}
`
	extra := map[string]string{"weight": "directive @weight(value: Int!) on FIELD_DEFINITION"}
	src, err := LoadSources([]*language.Source{{Name: "inline.graphql", Input: sdl}}, extra)
	require.NoError(t, err)
	require.NotNil(t, src.Directives["weight"])

	_, err = LoadSources([]*language.Source{{Name: "inline.graphql", Input: sdl}}, nil)
	require.Error(t, err)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load([]string{filepath.Join(t.TempDir(), "absent.graphql")}, nil)
	require.Error(t, err)
	require.ErrorIs(t, err, os.ErrNotExist)
}
