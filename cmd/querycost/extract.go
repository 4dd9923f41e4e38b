package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	extract "github.com/hanpama/querycost/internal/extract"
)

func newExtractCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "extract",
		Short: "Collect operations and fragments from a client source tree",
		Long: `extract walks a source tree for gql/graphql tagged templates, .graphql and .gql
documents and persisted operation JSON files, and writes the de-duplicated
operations and fragments as the two documents analyze reads.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.extract(cmd)
		},
	}
	f := cmd.Flags()
	f.String("root", "", "source tree to walk (default .)")
	f.String("operations-out", "", "operations document to write (default operations.graphql)")
	f.String("fragments-out", "", "fragments document to write (default fragments.graphql)")
	f.Int("concurrency", 0, "files read at once (default number of CPUs)")
	return cmd
}

func (a *app) extract(cmd *cobra.Command) error {
	cfg := a.cfg
	corpus, err := extract.Dir(cmd.Context(), cfg.Root,
		extract.WithLogger(a.log),
		extract.WithConcurrency(cfg.Concurrency))
	if err != nil {
		return err
	}

	if err := writeDocument(cfg.Operations, corpus.OperationsDocument()); err != nil {
		return err
	}
	if err := writeDocument(cfg.Fragments, corpus.FragmentsDocument()); err != nil {
		return err
	}
	a.log.Debug("corpus written",
		zap.String("operations", cfg.Operations),
		zap.String("fragments", cfg.Fragments))

	fmt.Fprintf(a.out, "querycost: extracted %d operations and %d fragments from %d files\n",
		len(corpus.Operations), len(corpus.Fragments), corpus.Files)
	return nil
}

func writeDocument(path, doc string) error {
	if doc != "" {
		doc += "\n"
	}
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		return fmt.Errorf("write %q: %w", path, err)
	}
	return nil
}
