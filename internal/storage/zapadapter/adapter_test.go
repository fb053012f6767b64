package zapadapter

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func observed() (*Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return NewLogger(zap.New(core)), logs
}

func TestContextID(t *testing.T) {
	ctx := NewContextWithID(context.Background(), "abc")
	id, ok := IDFromContext(ctx)
	require.True(t, ok)
	require.Equal(t, "abc", id)

	_, ok = IDFromContext(context.Background())
	require.False(t, ok)
}

func TestTrace(t *testing.T) {
	l, logs := observed()
	ctx := NewContextWithID(context.Background(), "abc")

	l.Trace(ctx, time.Now(), func() (string, int64) { return "select 1", 1 }, nil)

	entries := logs.All()
	require.Len(t, entries, 1)
	require.Equal(t, zapcore.DebugLevel, entries[0].Level)
	require.Equal(t, "abc", entries[0].ContextMap()["action_id"])
	require.Equal(t, "select 1", entries[0].ContextMap()["sql"])
}

func TestTrace_Error(t *testing.T) {
	l, logs := observed()

	l.Trace(context.Background(), time.Now(), func() (string, int64) { return "insert", 0 }, errors.New("boom"))

	entries := logs.All()
	require.Len(t, entries, 1)
	require.Equal(t, zapcore.WarnLevel, entries[0].Level)
	require.Equal(t, "boom", entries[0].ContextMap()["error"])
}

func TestTrace_RecordNotFound(t *testing.T) {
	l, logs := observed()

	l.Trace(context.Background(), time.Now(), func() (string, int64) { return "select", 0 }, gorm.ErrRecordNotFound)

	entries := logs.All()
	require.Len(t, entries, 1)
	require.Equal(t, zapcore.DebugLevel, entries[0].Level)
}

func TestLogMode_Silent(t *testing.T) {
	l, logs := observed()
	silent := l.LogMode(gormlogger.Silent)

	silent.Trace(context.Background(), time.Now(), func() (string, int64) { return "select 1", 1 }, nil)
	silent.Error(context.Background(), "failed %d", 1)

	require.Zero(t, logs.Len())
}
