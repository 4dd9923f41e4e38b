package schema

import (
	"fmt"
	"os"
	"sort"
	"strings"

	language "github.com/hanpama/querycost/internal/language"
)

// Load reads the SDL files at paths and returns the validated schema.
// Declarations in extra (directive name -> SDL) are added for every directive
// the files do not declare themselves.
func Load(paths []string, extra map[string]string) (*language.Schema, error) {
	sources := make([]*language.Source, 0, len(paths))
	for _, p := range paths {
		content, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("read schema %q: %w", p, err)
		}
		sources = append(sources, &language.Source{Name: p, Input: string(content)})
	}
	return LoadSources(sources, extra)
}

// LoadSources is Load for in-memory sources.
func LoadSources(sources []*language.Source, extra map[string]string) (*language.Schema, error) {
	if len(sources) == 0 {
		return nil, fmt.Errorf("no schema sources")
	}
	declared := make(map[string]bool)
	for _, src := range sources {
		doc, err := language.ParseSchema(src.Name, src.Input)
		if err != nil {
			return nil, fmt.Errorf("parse schema %q: %w", src.Name, err)
		}
		for _, d := range doc.Directives {
			declared[d.Name] = true
		}
	}

	var missing []string
	for name := range extra {
		if !declared[name] {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		var b strings.Builder
		for _, name := range missing {
			b.WriteString(extra[name])
			b.WriteString("\n")
		}
		sources = append(sources, &language.Source{Name: "querycost/directives.graphql", Input: b.String()})
	}

	s, err := language.LoadSchema(sources...)
	if err != nil {
		return nil, fmt.Errorf("load schema: %w", err)
	}
	return s, nil
}
