package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func spanContext(t *testing.T) context.Context {
	t.Helper()
	traceID, err := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	require.NoError(t, err)
	spanID, err := trace.SpanIDFromHex("00f067aa0ba902b7")
	require.NoError(t, err)
	sc := trace.NewSpanContext(trace.SpanContextConfig{TraceID: traceID, SpanID: spanID, TraceFlags: trace.FlagsSampled})
	return trace.ContextWithSpanContext(context.Background(), sc)
}

func fieldMap(fields []zap.Field) map[string]interface{} {
	enc := zapcore.NewMapObjectEncoder()
	for _, f := range fields {
		f.AddTo(enc)
	}
	return enc.Fields
}

func TestFromContext(t *testing.T) {
	t.Run("missing logger is a no-op", func(t *testing.T) {
		assert.NotNil(t, FromContext(context.Background()))
	})

	t.Run("attached logger is returned", func(t *testing.T) {
		l := zap.NewExample()
		assert.Same(t, l, FromContext(WithContext(context.Background(), l)))
	})
}

func TestFields(t *testing.T) {
	t.Run("empty context has no fields", func(t *testing.T) {
		assert.Empty(t, Fields(context.Background()))
	})

	t.Run("carries span and request scope", func(t *testing.T) {
		ctx := WithSKU(WithOperator(WithRequestID(spanContext(t), "req-7"), "alice"), "SKU-1")

		assert.Equal(t, map[string]interface{}{
			"trace_id":   "4bf92f3577b34da6a3ce929d0e0e4736",
			"span_id":    "00f067aa0ba902b7",
			"request_id": "req-7",
			"operator":   "alice",
			"sku":        "SKU-1",
		}, fieldMap(Fields(ctx)))
		assert.Equal(t, "req-7", GetRequestID(ctx))
		assert.Equal(t, "alice", GetOperator(ctx))
		assert.Equal(t, "SKU-1", GetSKU(ctx))
	})

	t.Run("later sku replaces earlier", func(t *testing.T) {
		ctx := WithSKU(WithSKU(context.Background(), "A"), "B")
		assert.Equal(t, map[string]interface{}{"sku": "B"}, fieldMap(Fields(ctx)))
	})
}

func TestContextLogger(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	ctx := WithSKU(WithOperator(WithContext(context.Background(), zap.New(core)), "bob"), "SKU-2")

	L(ctx).Debug("d")
	L(ctx).Info("Cost recorded", zap.String("method", "fifo"))
	L(ctx).Warn("w")
	L(ctx).Error("e")

	entries := logs.All()
	require.Len(t, entries, 4)
	for _, e := range entries {
		assert.Equal(t, "SKU-2", e.ContextMap()["sku"])
		assert.Equal(t, "bob", e.ContextMap()["operator"])
	}
	assert.Equal(t, "fifo", entries[1].ContextMap()["method"])
	assert.Equal(t, []zapcore.Level{zapcore.DebugLevel, zapcore.InfoLevel, zapcore.WarnLevel, zapcore.ErrorLevel},
		[]zapcore.Level{entries[0].Level, entries[1].Level, entries[2].Level, entries[3].Level})

	t.Run("explicit logger ignores the one on context", func(t *testing.T) {
		other, otherLogs := observer.New(zapcore.InfoLevel)
		WithLogger(ctx, zap.New(other)).Info("Cost period transitioned")
		require.Equal(t, 1, otherLogs.Len())
		assert.Equal(t, "SKU-2", otherLogs.All()[0].ContextMap()["sku"])
	})

	t.Run("nil explicit logger is a no-op", func(t *testing.T) {
		assert.NotPanics(t, func() { WithLogger(ctx, nil).Error("dropped") })
	})
}
