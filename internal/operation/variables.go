package operation

import (
	"regexp"
	"strings"

	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/lexer"
)

var (
	variableDefinition = regexp.MustCompile(`\$\s*([_A-Za-z][_0-9A-Za-z]*)\s*:\s*((?:\[\s*)*[_A-Za-z][_0-9A-Za-z]*\s*!?(?:\s*\]\s*!?)*)`)
	whitespace         = regexp.MustCompile(`\s+`)
)

// ExtractVariables reads the variable declarations from the signature of an
// operation. Declarations may span lines and carry default values.
func ExtractVariables(text string) []Variable {
	decl := declarationList(text)
	if decl == "" {
		return nil
	}

	var vars []Variable
	seen := make(map[string]bool)
	for _, m := range variableDefinition.FindAllStringSubmatch(decl, -1) {
		name := m[1]
		if seen[name] {
			continue
		}
		seen[name] = true
		typ := whitespace.ReplaceAllString(m[2], "")
		required := strings.HasSuffix(typ, "!")
		vars = append(vars, Variable{
			Name:     name,
			Type:     strings.TrimSuffix(typ, "!"),
			Required: required,
		})
	}
	return vars
}

// declarationList returns the tokens between the parentheses of the operation
// signature joined by spaces, with string values blanked, or "" if the
// operation declares no variables.
func declarationList(text string) string {
	runes := []rune(text)
	lex := lexer.New(&ast.Source{Input: text})

	var parts []string
	depth := 0
	for {
		tok, err := lex.ReadToken()
		if err != nil || tok.Kind == lexer.EOF {
			break
		}
		if depth == 0 {
			if tok.Kind == lexer.BraceL {
				return ""
			}
			if tok.Kind == lexer.ParenL {
				depth = 1
			}
			continue
		}
		switch tok.Kind {
		case lexer.ParenL:
			depth++
		case lexer.ParenR:
			depth--
			if depth == 0 {
				return strings.Join(parts, " ")
			}
		case lexer.String, lexer.BlockString:
			parts = append(parts, `""`)
			continue
		case lexer.Comment:
			continue
		}
		parts = append(parts, string(runes[tok.Pos.Start:tok.Pos.End]))
	}
	return strings.Join(parts, " ")
}

// Signature returns the text of a definition before its argument list and
// selection set, with whitespace collapsed.
func Signature(text string) string {
	body := stripLeadingComments(text)
	if i := strings.IndexAny(body, "({"); i >= 0 {
		body = body[:i]
	}
	sig := strings.TrimSpace(whitespace.ReplaceAllString(body, " "))
	if sig == "" {
		return "query"
	}
	return sig
}
