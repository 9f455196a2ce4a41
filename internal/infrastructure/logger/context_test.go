package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func fieldMap(entry observer.LoggedEntry) map[string]any {
	return entry.ContextMap()
}

func TestFromContext(t *testing.T) {
	t.Run("returns stored logger", func(t *testing.T) {
		log := zap.NewExample()
		ctx := WithContext(context.Background(), log)
		assert.Same(t, log, FromContext(ctx))
	})

	t.Run("falls back to nop logger", func(t *testing.T) {
		log := FromContext(context.Background())
		require.NotNil(t, log)
		assert.NotPanics(t, func() { log.Info("dropped") })
	})

	t.Run("ignores values of the wrong type", func(t *testing.T) {
		ctx := context.WithValue(context.Background(), loggerKey, "not a logger")
		assert.NotNil(t, FromContext(ctx))
	})
}

func TestWithRequestID(t *testing.T) {
	core, recorded := observer.New(zapcore.InfoLevel)

	ctx, log := WithRequestID(context.Background(), zap.New(core), "req-42")
	log.Info("first")
	FromContext(ctx).Info("second")

	assert.Equal(t, "req-42", GetRequestID(ctx))
	require.Len(t, recorded.All(), 2)
	for _, entry := range recorded.All() {
		assert.Equal(t, "req-42", fieldMap(entry)["request_id"])
	}
}

func TestWithUserID(t *testing.T) {
	core, recorded := observer.New(zapcore.InfoLevel)

	ctx, _ := WithRequestID(context.Background(), zap.New(core), "req-1")
	ctx, _ = WithUserID(ctx, FromContext(ctx), "user-7")
	FromContext(ctx).Info("hello")

	assert.Equal(t, "user-7", GetUserID(ctx))
	assert.Equal(t, "req-1", GetRequestID(ctx))

	fields := fieldMap(recorded.All()[0])
	assert.Equal(t, "req-1", fields["request_id"])
	assert.Equal(t, "user-7", fields["user_id"])
}

func TestGetters_Empty(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, GetRequestID(ctx))
	assert.Empty(t, GetUserID(ctx))
	assert.Empty(t, GetTraceID(ctx))
}

func TestTraceCorrelation(t *testing.T) {
	tp := sdktrace.NewTracerProvider()
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	ctx, span := tp.Tracer("test").Start(context.Background(), "op")
	defer span.End()

	t.Run("trace id comes from the active span", func(t *testing.T) {
		assert.Equal(t, span.SpanContext().TraceID().String(), GetTraceID(ctx))
	})

	t.Run("WithTraceContext adds trace and span ids", func(t *testing.T) {
		core, recorded := observer.New(zapcore.InfoLevel)
		WithTraceContext(ctx, zap.New(core)).Info("traced")

		fields := fieldMap(recorded.All()[0])
		assert.Equal(t, span.SpanContext().TraceID().String(), fields["trace_id"])
		assert.Equal(t, span.SpanContext().SpanID().String(), fields["span_id"])
	})

	t.Run("WithTraceContext without span returns logger unchanged", func(t *testing.T) {
		log := zap.NewNop()
		assert.Same(t, log, WithTraceContext(context.Background(), log))
	})

	t.Run("L combines context logger and trace", func(t *testing.T) {
		core, recorded := observer.New(zapcore.InfoLevel)
		reqCtx, _ := WithRequestID(ctx, zap.New(core), "req-9")

		L(reqCtx).Info("done")

		fields := fieldMap(recorded.All()[0])
		assert.Equal(t, "req-9", fields["request_id"])
		assert.NotEmpty(t, fields["trace_id"])
	})
}
