package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	analyzer "github.com/hanpama/querycost/internal/analyzer"
	catalog "github.com/hanpama/querycost/internal/catalog"
	complexity "github.com/hanpama/querycost/internal/complexity"
	eventbus "github.com/hanpama/querycost/internal/eventbus"
	otel "github.com/hanpama/querycost/internal/otel"
	report "github.com/hanpama/querycost/internal/report"
	schema "github.com/hanpama/querycost/internal/schema"
	synth "github.com/hanpama/querycost/internal/synth"
)

func newAnalyzeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Score every operation and write the complexity report",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.analyze(cmd)
		},
	}
	f := cmd.Flags()
	f.StringSlice("schema", nil, "schema SDL file; repeatable (default schema.graphql)")
	f.String("operations", "", "operations document (default operations.graphql)")
	f.String("fragments", "", "fragments document (default fragments.graphql)")
	f.String("out", "", "report file, - for stdout (default complexity-report.json)")
	f.String("format", "", "report format: json or yaml (default json)")
	f.Int("concurrency", 0, "operations scored at once (default number of CPUs)")
	f.Duration("timeout", 0, "time limit per operation (default 10s)")
	f.String("placeholder", "", "value for String, ID and JSON variables (default \"test\")")
	f.Int("max-depth", 0, "input object nesting limit for synthesized variables (default 32)")
	f.String("classify", "", "input/enum classification: kind or suffix (default kind)")
	f.Int("default-field-cost", 0, "cost of a field without a cost directive (default 1)")
	f.String("otel-endpoint", "", "OTLP/gRPC collector endpoint; tracing is off when empty")
	f.String("otel-service", "", "OpenTelemetry service name (default querycost)")
	return cmd
}

func (a *app) analyze(cmd *cobra.Command) error {
	ctx := cmd.Context()
	cfg := a.cfg

	s, err := schema.Load(cfg.Schema, complexity.Directives)
	if err != nil {
		return err
	}
	classifier, err := catalog.ParseClassifier(cfg.Synth.Classify)
	if err != nil {
		return err
	}
	cat := catalog.New(schema.BuildFromAST(s), catalog.WithClassifier(classifier))
	a.log.Debug("schema loaded", zap.Strings("files", cfg.Schema), zap.Int("catalog", cat.Len()))

	operations, err := os.ReadFile(cfg.Operations)
	if err != nil {
		return fmt.Errorf("read operations: %w", err)
	}
	fragments, err := os.ReadFile(cfg.Fragments)
	if err != nil {
		return fmt.Errorf("read fragments: %w", err)
	}

	format, err := report.ParseFormat(cfg.Format)
	if err != nil {
		return err
	}

	bus := eventbus.New()
	shutdown, err := otel.Setup(ctx, bus, cfg.Otel.Endpoint, cfg.Otel.Service)
	if err != nil {
		return fmt.Errorf("otel setup: %w", err)
	}
	defer func() {
		if err := shutdown(ctx); err != nil {
			a.log.Warn("otel shutdown", zap.Error(err))
		}
	}()

	rep, err := analyzer.Run(ctx, analyzer.Input{
		Scorer: complexity.NewScorer(s, complexity.WithDefaultFieldCost(cfg.Cost.DefaultFieldCost)),
		Synthesizer: synth.New(cat,
			synth.WithOverrides(cfg.Synth.Overrides),
			synth.WithPlaceholder(cfg.Synth.Placeholder),
			synth.WithMaxDepth(cfg.Synth.MaxDepth)),
		Operations:  string(operations),
		Fragments:   string(fragments),
		Concurrency: cfg.Concurrency,
		Timeout:     cfg.Timeout,
		Logger:      a.log,
		Bus:         bus,
	})
	if err != nil {
		return err
	}

	if err := a.writeReport(rep, cfg.Output, format); err != nil {
		return err
	}
	fmt.Fprintln(a.out, rep.Line())
	return nil
}

func (a *app) writeReport(rep *report.Report, path string, format report.Format) error {
	if path == "-" {
		return rep.Write(a.out, format)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create report: %w", err)
	}
	if err := rep.Write(f, format); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close report: %w", err)
	}
	return nil
}
