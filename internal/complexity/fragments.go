package complexity

import (
	"fmt"

	"github.com/vektah/gqlparser/v2/ast"

	language "github.com/hanpama/querycost/internal/language"
)

// Fragments is a set of fragment definitions shared by every operation of a
// corpus. Each definition is parsed on its own when added, so one malformed
// block never reaches the operations that do not spread it.
type Fragments struct {
	texts map[string]string
	order []string
}

func NewFragments() *Fragments {
	return &Fragments{texts: make(map[string]string)}
}

// Add parses text as a single fragment definition and keeps it. A later
// definition of a name already present is ignored.
func (f *Fragments) Add(text string) error {
	def, err := parseFragment(text)
	if err != nil {
		return err
	}
	if _, ok := f.texts[def.Name]; ok {
		return nil
	}
	f.texts[def.Name] = text
	f.order = append(f.order, def.Name)
	return nil
}

// Len reports the number of distinct fragment names.
func (f *Fragments) Len() int {
	if f == nil {
		return 0
	}
	return len(f.order)
}

// resolve appends to doc the fragments that op reaches and doc does not
// define. Definitions are parsed again for every call since validation and
// pruning rewrite them in place.
func (f *Fragments) resolve(doc *ast.QueryDocument, op *ast.OperationDefinition) error {
	if f.Len() == 0 {
		return nil
	}
	loaded := make(map[string]bool)
	var walk func(set ast.SelectionSet) error
	walk = func(set ast.SelectionSet) error {
		for _, sel := range set {
			switch s := sel.(type) {
			case *ast.Field:
				if err := walk(s.SelectionSet); err != nil {
					return err
				}
			case *ast.InlineFragment:
				if err := walk(s.SelectionSet); err != nil {
					return err
				}
			case *ast.FragmentSpread:
				if loaded[s.Name] {
					continue
				}
				loaded[s.Name] = true
				def := doc.Fragments.ForName(s.Name)
				if def == nil {
					text, ok := f.texts[s.Name]
					if !ok {
						continue
					}
					var err error
					if def, err = parseFragment(text); err != nil {
						return err
					}
					doc.Fragments = append(doc.Fragments, def)
				}
				if err := walk(def.SelectionSet); err != nil {
					return err
				}
			}
		}
		return nil
	}
	return walk(op.SelectionSet)
}

func parseFragment(text string) (*ast.FragmentDefinition, error) {
	doc, err := language.ParseQuery(text)
	if err != nil {
		return nil, fmt.Errorf("parse fragment: %w", err)
	}
	if len(doc.Operations) != 0 || len(doc.Fragments) != 1 {
		return nil, fmt.Errorf("parse fragment: want one fragment definition, got %d operations and %d fragments",
			len(doc.Operations), len(doc.Fragments))
	}
	return doc.Fragments[0], nil
}
