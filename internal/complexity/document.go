package complexity

import (
	"github.com/vektah/gqlparser/v2/ast"
)

// stubUndefinedSpreads replaces spreads of fragments the document does not
// define with a __typename selection, which validates anywhere a spread can
// appear and costs nothing.
func stubUndefinedSpreads(doc *ast.QueryDocument) {
	var walk func(set ast.SelectionSet)
	walk = func(set ast.SelectionSet) {
		for i, sel := range set {
			switch s := sel.(type) {
			case *ast.Field:
				walk(s.SelectionSet)
			case *ast.InlineFragment:
				walk(s.SelectionSet)
			case *ast.FragmentSpread:
				if doc.Fragments.ForName(s.Name) == nil {
					set[i] = &ast.Field{Alias: "__typename", Name: "__typename", Position: s.Position}
				}
			}
		}
	}
	for _, op := range doc.Operations {
		walk(op.SelectionSet)
	}
	for _, f := range doc.Fragments {
		walk(f.SelectionSet)
	}
}

// reachableFragments returns the fragments op uses, directly or through other
// fragments, in document order. Only the first definition of a name is kept.
func reachableFragments(doc *ast.QueryDocument, op *ast.OperationDefinition) ast.FragmentDefinitionList {
	used := make(map[string]bool)
	var walk func(set ast.SelectionSet)
	walk = func(set ast.SelectionSet) {
		for _, sel := range set {
			switch s := sel.(type) {
			case *ast.Field:
				walk(s.SelectionSet)
			case *ast.InlineFragment:
				walk(s.SelectionSet)
			case *ast.FragmentSpread:
				if used[s.Name] {
					continue
				}
				used[s.Name] = true
				if f := doc.Fragments.ForName(s.Name); f != nil {
					walk(f.SelectionSet)
				}
			}
		}
	}
	walk(op.SelectionSet)

	var out ast.FragmentDefinitionList
	seen := make(map[string]bool)
	for _, f := range doc.Fragments {
		if used[f.Name] && !seen[f.Name] {
			seen[f.Name] = true
			out = append(out, f)
		}
	}
	return out
}

// pruneExcluded drops selections that @skip or @include exclude under vars.
func pruneExcluded(doc *ast.QueryDocument, vars map[string]any) {
	for _, op := range doc.Operations {
		op.SelectionSet = pruneSelectionSet(op.SelectionSet, vars)
	}
	for _, f := range doc.Fragments {
		f.SelectionSet = pruneSelectionSet(f.SelectionSet, vars)
	}
}

func pruneSelectionSet(set ast.SelectionSet, vars map[string]any) ast.SelectionSet {
	if len(set) == 0 {
		return set
	}
	out := make(ast.SelectionSet, 0, len(set))
	for _, sel := range set {
		switch s := sel.(type) {
		case *ast.Field:
			if !shouldInclude(s.Directives, vars) {
				continue
			}
			s.SelectionSet = pruneSelectionSet(s.SelectionSet, vars)
		case *ast.InlineFragment:
			if !shouldInclude(s.Directives, vars) {
				continue
			}
			s.SelectionSet = pruneSelectionSet(s.SelectionSet, vars)
		case *ast.FragmentSpread:
			if !shouldInclude(s.Directives, vars) {
				continue
			}
		}
		out = append(out, sel)
	}
	return out
}

// shouldInclude reports whether a node survives its @skip and @include directives.
func shouldInclude(directives ast.DirectiveList, vars map[string]any) bool {
	if skip := directives.ForName("skip"); skip != nil {
		if v, ok := directiveArgument(skip, "if", vars).(bool); ok && v {
			return false
		}
	}
	if include := directives.ForName("include"); include != nil {
		if v, ok := directiveArgument(include, "if", vars).(bool); ok && !v {
			return false
		}
	}
	return true
}

func directiveArgument(d *ast.Directive, name string, vars map[string]any) any {
	arg := d.Arguments.ForName(name)
	if arg == nil || arg.Value == nil {
		return nil
	}
	v, err := arg.Value.Value(vars)
	if err != nil {
		return nil
	}
	return v
}
