// Package analyzer runs the scoring pipeline over an operations corpus:
// partition, synthesize variables, score each operation twice and rank.
package analyzer

import (
	"context"
	"runtime"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	complexity "github.com/hanpama/querycost/internal/complexity"
	eventbus "github.com/hanpama/querycost/internal/eventbus"
	events "github.com/hanpama/querycost/internal/events"
	logger "github.com/hanpama/querycost/internal/logger"
	operation "github.com/hanpama/querycost/internal/operation"
	opid "github.com/hanpama/querycost/internal/opid"
	report "github.com/hanpama/querycost/internal/report"
)

// DefaultTimeout bounds the scoring of a single operation.
const DefaultTimeout = 10 * time.Second

// AnonymousName is reported for operations without a name.
const AnonymousName = "(anonymous)"

// Scorer is implemented by *complexity.Scorer.
type Scorer interface {
	Score(ctx context.Context, text string, vars map[string]any) (int, error)
	ScoreWithFragments(ctx context.Context, text string, fragments *complexity.Fragments, vars map[string]any) (int, error)
}

// Synthesizer is implemented by *synth.Synthesizer.
type Synthesizer interface {
	ForOperation(vars []operation.Variable) (map[string]any, error)
}

type Input struct {
	Scorer      Scorer
	Synthesizer Synthesizer

	// Operations and Fragments are GraphQL documents of concatenated blocks.
	// Blocks are classified by their keyword, whichever document they come from.
	Operations string
	Fragments  string

	Concurrency int           // default runtime.NumCPU()
	Timeout     time.Duration // per operation, default DefaultTimeout

	Logger *zap.Logger
	Bus    *eventbus.Bus
}

// Run scores every query and mutation in the input. Each operation gets
// exactly one result; failures are recorded in the result rather than
// returned. The error is non-nil only when ctx ends before the batch does.
func Run(ctx context.Context, in Input) (*report.Report, error) {
	log := logger.OrNop(in.Logger)
	concurrency := in.Concurrency
	if concurrency < 1 {
		concurrency = runtime.NumCPU()
	}
	timeout := in.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	ops, fragmentOps, skipped := operation.Partition(operation.SplitAll(in.Operations, in.Fragments))
	for _, text := range skipped {
		log.Info("skipping block", zap.String("signature", operation.Signature(text)))
	}
	// A fragment that does not parse is dropped here; only operations
	// spreading it fail.
	fragments := complexity.NewFragments()
	for _, f := range fragmentOps {
		if err := fragments.Add(f.Text); err != nil {
			log.Info("skipping block", zap.String("signature", f.Signature()), zap.Error(err))
			skipped = append(skipped, f.Text)
		}
	}

	start := time.Now()
	eventbus.Publish(ctx, in.Bus, events.AnalysisStart{
		Operations: len(ops),
		Fragments:  fragments.Len(),
		Skipped:    len(skipped),
	})
	log.Debug("analysis started",
		zap.Int("operations", len(ops)),
		zap.Int("fragments", fragments.Len()),
		zap.Int("skipped", len(skipped)))

	results := make([]report.Result, len(ops))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for i, op := range ops {
		g.Go(func() error {
			results[i] = scoreOperation(gctx, in, log, op, fragments, timeout)
			return nil
		})
	}
	_ = g.Wait()

	rep := report.Build(results)
	eventbus.Publish(ctx, in.Bus, events.AnalysisFinish{
		Successes: rep.Summary.Successes,
		Failures:  rep.Summary.Failures,
		Duration:  time.Since(start),
	})
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return rep, nil
}

func scoreOperation(ctx context.Context, in Input, log *zap.Logger, op *operation.Operation, fragments *complexity.Fragments, timeout time.Duration) report.Result {
	ctx, _ = opid.NewContext(ctx)
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	name := op.Name
	if name == "" {
		name = AnonymousName
	}
	start := time.Now()
	eventbus.Publish(ctx, in.Bus, events.OperationStart{Name: name, Kind: string(op.Kind)})

	res := report.Result{QueryName: name, Type: op.Kind}
	err := func() error {
		vars, err := in.Synthesizer.ForOperation(op.Variables)
		if err != nil {
			return err
		}
		standalone, err := in.Scorer.Score(ctx, op.Text, vars)
		if err != nil {
			return err
		}
		withFragments, err := in.Scorer.ScoreWithFragments(ctx, op.Text, fragments, vars)
		if err != nil {
			return err
		}
		res.Complexity = standalone
		res.ComplexityWithFragments = withFragments
		return nil
	}()
	if err != nil {
		res.Complexity, res.ComplexityWithFragments = 0, 0
		res.Error = err.Error()
		log.Warn("operation failed", zap.String("signature", op.Signature()), zap.Error(err))
	} else {
		log.Debug("operation scored",
			zap.String("signature", op.Signature()),
			zap.Int("complexity", res.Complexity),
			zap.Int("complexityWithFragments", res.ComplexityWithFragments))
	}

	eventbus.Publish(ctx, in.Bus, events.OperationFinish{
		Name:                    name,
		Kind:                    string(op.Kind),
		Complexity:              res.Complexity,
		ComplexityWithFragments: res.ComplexityWithFragments,
		Err:                     err,
		Duration:                time.Since(start),
	})
	return res
}
