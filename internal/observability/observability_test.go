package observability

import (
	"context"
	"testing"
	"time"

	"github.com/railzwaylabs/directdebit/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/fx/fxtest"
	"go.uber.org/zap"
)

func TestNewLogger(t *testing.T) {
	for _, env := range []string{config.EnvDevelopment, config.EnvProduction} {
		log, err := NewLogger(config.Config{AppEnv: env})
		require.NoError(t, err)
		assert.NotNil(t, log)
	}
}

func TestNewRegistry(t *testing.T) {
	families, err := NewRegistry().Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, families)
}

func TestTracerRecordsSpansWithServiceResource(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := newSDKProvider(config.Config{
		AppEnv:  config.EnvProduction,
		Tracing: config.TracingConfig{SampleRatio: 1},
	}, sdktrace.WithSpanProcessor(recorder))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	_, span := NewTracer(tp).Start(context.Background(), "payment.Execute")
	span.End()

	ended := recorder.Ended()
	require.Len(t, ended, 1)
	assert.Equal(t, "payment.Execute", ended[0].Name())
	assert.Contains(t, ended[0].Resource().Attributes(), attribute.String("service.name", ServiceName))
}

func TestTracerSampleRatioZeroDropsSpans(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := newSDKProvider(config.Config{}, sdktrace.WithSpanProcessor(recorder))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	_, span := NewTracer(tp).Start(context.Background(), "dropped")
	span.End()
	assert.Empty(t, recorder.Ended())
}

func TestNewTracerProvider(t *testing.T) {
	lc := fxtest.NewLifecycle(t)

	tp, err := NewTracerProvider(lc, config.Config{}, zap.NewNop())
	require.NoError(t, err)
	_, span := NewTracer(tp).Start(context.Background(), "noop")
	assert.False(t, span.SpanContext().IsValid())

	tp, err = NewTracerProvider(lc, config.Config{
		Tracing: config.TracingConfig{Endpoint: "http://127.0.0.1:4318", SampleRatio: 1},
	}, zap.NewNop())
	require.NoError(t, err)
	_, span = NewTracer(tp).Start(context.Background(), "exported")
	assert.True(t, span.SpanContext().IsValid())
	span.End()

	lc.RequireStart()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	_ = lc.Stop(ctx)
}
