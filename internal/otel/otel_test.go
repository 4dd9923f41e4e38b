package otel

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	eventbus "github.com/hanpama/querycost/internal/eventbus"
	events "github.com/hanpama/querycost/internal/events"
	opid "github.com/hanpama/querycost/internal/opid"
)

func TestAttachRecordsSpans(t *testing.T) {
	rec := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec))
	bus := eventbus.New()
	detach := Attach(bus, tp.Tracer("test"))
	defer detach()

	ctx := context.Background()
	eventbus.Publish(ctx, bus, events.AnalysisStart{Operations: 2})

	okCtx, _ := opid.NewContext(ctx)
	badCtx, _ := opid.NewContext(ctx)
	eventbus.Publish(okCtx, bus, events.OperationStart{Name: "Good", Kind: "query"})
	eventbus.Publish(badCtx, bus, events.OperationStart{Name: "Bad", Kind: "mutation"})
	eventbus.Publish(badCtx, bus, events.OperationFinish{Name: "Bad", Kind: "mutation", Err: errors.New("boom")})
	eventbus.Publish(okCtx, bus, events.OperationFinish{Name: "Good", Kind: "query", Complexity: 3, ComplexityWithFragments: 5})
	eventbus.Publish(ctx, bus, events.AnalysisFinish{Successes: 1, Failures: 1})

	ended := rec.Ended()
	require.Len(t, ended, 3)
	require.Equal(t, "querycost.operation", ended[0].Name())
	require.Equal(t, codes.Error, ended[0].Status().Code)
	require.Equal(t, "querycost.operation", ended[1].Name())
	require.Equal(t, codes.Unset, ended[1].Status().Code)

	root := ended[2]
	require.Equal(t, "querycost.analysis", root.Name())
	require.Equal(t, root.SpanContext().SpanID(), ended[0].Parent().SpanID())
	require.Equal(t, root.SpanContext().TraceID(), ended[1].SpanContext().TraceID())
}

func TestOperationWithoutIDIsIgnored(t *testing.T) {
	rec := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec))
	bus := eventbus.New()
	Attach(bus, tp.Tracer("test"))

	eventbus.Publish(context.Background(), bus, events.OperationStart{Name: "X"})
	eventbus.Publish(context.Background(), bus, events.OperationFinish{Name: "X"})
	require.Empty(t, rec.Ended())
}

func TestSetupWithoutEndpoint(t *testing.T) {
	shutdown, err := Setup(context.Background(), eventbus.New(), "", "querycost")
	require.NoError(t, err)
	require.NoError(t, shutdown(context.Background()))
}
