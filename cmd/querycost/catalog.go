package main

import (
	"fmt"

	"github.com/spf13/cobra"

	catalog "github.com/hanpama/querycost/internal/catalog"
	complexity "github.com/hanpama/querycost/internal/complexity"
	schema "github.com/hanpama/querycost/internal/schema"
)

func newCatalogCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Print the input and enum types variables are synthesized from",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := schema.Load(a.cfg.Schema, complexity.Directives)
			if err != nil {
				return err
			}
			classifier, err := catalog.ParseClassifier(a.cfg.Synth.Classify)
			if err != nil {
				return err
			}
			cat := catalog.New(schema.BuildFromAST(s), catalog.WithClassifier(classifier))
			fmt.Fprint(a.out, cat.Render())
			return nil
		},
	}
	f := cmd.Flags()
	f.StringSlice("schema", nil, "schema SDL file; repeatable (default schema.graphql)")
	f.String("classify", "", "input/enum classification: kind or suffix (default kind)")
	return cmd
}
