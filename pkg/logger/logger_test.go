package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	appctx "retailops/internal/core/context"
)

func TestFromContextAddsActorFields(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	base := &Logger{zap.New(core).Sugar()}

	ctx := WithLogger(context.Background(), base)
	ctx = appctx.WithTrace(ctx, appctx.NewTraceContext("trace-1", "req-1"))
	ctx = appctx.WithUser(ctx, &appctx.UserContext{UserID: "7", Role: "ADMIN", StoreID: "s-1"})

	Info(ctx, "distribution accepted", "distribution_id", "d-1")

	entries := logs.All()
	if assert.Len(t, entries, 1) {
		fields := entries[0].ContextMap()
		assert.Equal(t, "trace-1", fields["trace_id"])
		assert.Equal(t, "req-1", fields["request_id"])
		assert.Equal(t, "7", fields["user_id"])
		assert.Equal(t, "s-1", fields["store_id"])
		assert.Equal(t, "d-1", fields["distribution_id"])
	}
}

func TestDebugFilteredByLevel(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	ctx := WithLogger(context.Background(), &Logger{zap.New(core).Sugar()})

	Debug(ctx, "noise")
	assert.Zero(t, logs.Len())
}
