package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestWithContext_AndFromContext(t *testing.T) {
	logger := zap.NewNop()
	ctx := WithContext(context.Background(), logger)

	assert.Same(t, logger, FromContext(ctx))
}

func TestFromContext_ReturnsNopWhenMissing(t *testing.T) {
	logger := FromContext(context.Background())

	assert.NotNil(t, logger)
}

func TestWithRequestID(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	logger := zap.New(core)

	ctx, enriched := WithRequestID(context.Background(), logger, "req-123")

	assert.Equal(t, "req-123", GetRequestID(ctx))
	assert.Same(t, enriched, FromContext(ctx))

	enriched.Info("hello")
	entries := logs.All()
	assert.Len(t, entries, 1)
	assert.Equal(t, "req-123", entries[0].ContextMap()["request_id"])
}

func TestWithUserID(t *testing.T) {
	ctx, _ := WithUserID(context.Background(), zap.NewNop(), "user-456")

	assert.Equal(t, "user-456", GetUserID(ctx))
}

func TestGetRequestID_NotFound(t *testing.T) {
	assert.Empty(t, GetRequestID(context.Background()))
	assert.Empty(t, GetUserID(context.Background()))
}

func TestWithTraceContext_NoSpanLeavesLoggerUnchanged(t *testing.T) {
	logger := zap.NewNop()

	assert.Same(t, logger, WithTraceContext(context.Background(), logger))
}

func TestContextLogger_InjectsCorrelationFields(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	logger := zap.New(core)

	ctx := WithContext(context.Background(), logger)
	ctx = context.WithValue(ctx, RequestIDKey, "req-789")
	ctx = context.WithValue(ctx, UserIDKey, "user-1")

	L(ctx).Info("processing invoice", zap.String("invoice_id", "abc"))

	entries := logs.All()
	assert.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "req-789", fields["request_id"])
	assert.Equal(t, "user-1", fields["user_id"])
	assert.Equal(t, "abc", fields["invoice_id"])
}

func TestContextLogger_WithLogger(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	logger := zap.New(core)

	WithLogger(context.Background(), logger).With(zap.String("module", "accounting")).Warn("slow sync")

	entries := logs.All()
	assert.Len(t, entries, 1)
	assert.Equal(t, "accounting", entries[0].ContextMap()["module"])
}
