// Package otel exports analysis progress as OpenTelemetry traces: one span per
// run with a child span per scored operation.
package otel

import (
	"context"
	"sync"

	eventbus "github.com/hanpama/querycost/internal/eventbus"
	events "github.com/hanpama/querycost/internal/events"
	opid "github.com/hanpama/querycost/internal/opid"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/semconv/v1.17.0"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// Setup configures an OTLP/gRPC exporter and subscribes span recording to bus.
// If endpoint is empty, no telemetry is configured.
func Setup(ctx context.Context, bus *eventbus.Bus, endpoint, service string) (func(context.Context) error, error) {
	if endpoint == "" {
		return func(context.Context) error { return nil }, nil
	}
	exp, err := otlptracegrpc.New(ctx,
		otlptracegrpc.WithEndpoint(endpoint),
		otlptracegrpc.WithDialOption(grpc.WithTransportCredentials(insecure.NewCredentials())))
	if err != nil {
		return nil, err
	}
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exp),
		sdktrace.WithResource(resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(service),
		)),
	)
	otel.SetTracerProvider(tp)

	detach := Attach(bus, tp.Tracer("querycost"))
	return func(ctx context.Context) error {
		detach()
		return tp.Shutdown(ctx)
	}, nil
}

// Attach records spans with tracer for the events published on bus.
func Attach(bus *eventbus.Bus, tracer trace.Tracer) (detach func()) {
	s := &subscriber{tracer: tracer}
	unsubs := []func(){
		eventbus.Subscribe(bus, s.analysisStart),
		eventbus.Subscribe(bus, s.analysisFinish),
		eventbus.Subscribe(bus, s.operationStart),
		eventbus.Subscribe(bus, s.operationFinish),
	}
	return func() {
		for _, u := range unsubs {
			u()
		}
	}
}

type subscriber struct {
	tracer trace.Tracer

	mu       sync.Mutex
	analysis trace.Span

	opSpans sync.Map // operation id -> trace.Span
}

func (s *subscriber) analysisStart(ctx context.Context, e events.AnalysisStart) {
	_, span := s.tracer.Start(ctx, "querycost.analysis")
	span.SetAttributes(
		attribute.Int("querycost.operations", e.Operations),
		attribute.Int("querycost.fragments", e.Fragments),
		attribute.Int("querycost.skipped", e.Skipped),
	)
	s.mu.Lock()
	s.analysis = span
	s.mu.Unlock()
}

func (s *subscriber) analysisFinish(_ context.Context, e events.AnalysisFinish) {
	s.mu.Lock()
	span := s.analysis
	s.analysis = nil
	s.mu.Unlock()
	if span == nil {
		return
	}
	span.SetAttributes(
		attribute.Int("querycost.successes", e.Successes),
		attribute.Int("querycost.failures", e.Failures),
	)
	span.End()
}

func (s *subscriber) operationStart(ctx context.Context, e events.OperationStart) {
	id, ok := opid.FromContext(ctx)
	if !ok {
		return
	}
	parent := ctx
	s.mu.Lock()
	if s.analysis != nil {
		parent = trace.ContextWithSpan(ctx, s.analysis)
	}
	s.mu.Unlock()

	_, span := s.tracer.Start(parent, "querycost.operation")
	span.SetAttributes(
		attribute.String("graphql.operation.name", e.Name),
		attribute.String("graphql.operation.type", e.Kind),
	)
	s.opSpans.Store(id, span)
}

func (s *subscriber) operationFinish(ctx context.Context, e events.OperationFinish) {
	id, _ := opid.FromContext(ctx)
	v, ok := s.opSpans.LoadAndDelete(id)
	if !ok {
		return
	}
	span := v.(trace.Span)
	span.SetAttributes(
		attribute.Int("querycost.complexity", e.Complexity),
		attribute.Int("querycost.complexity_with_fragments", e.ComplexityWithFragments),
	)
	if e.Err != nil {
		span.RecordError(e.Err)
		span.SetStatus(codes.Error, e.Err.Error())
	}
	span.End()
}
