package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestHelpersWriteToGlobalLogger(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	prev := Log
	Replace(zap.New(core))
	t.Cleanup(func() { Log = prev })

	Warn("cache read failed", zap.String("slug", "abc"))
	Debug("ignoring bot click")

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
	assert.Equal(t, "abc", entries[0].ContextMap()["slug"])
	assert.Equal(t, zapcore.DebugLevel, entries[1].Level)
}

func TestHelpersAreNoopsWithoutLogger(t *testing.T) {
	prev := Log
	Log = nil
	t.Cleanup(func() { Log = prev })

	assert.NotPanics(t, func() {
		Info("x")
		Warn("x")
		Error("x")
		Debug("x")
		Fatal("x")
		Sync()
	})
}

func TestInitFallsBackToInfoLevel(t *testing.T) {
	prev := Log
	t.Cleanup(func() { Log = prev })

	require.NoError(t, Init(Options{Env: "test", Level: "loud", Service: "shortlink"}))
	assert.False(t, Log.Core().Enabled(zapcore.DebugLevel))
	assert.True(t, Log.Core().Enabled(zapcore.InfoLevel))

	require.NoError(t, Init(Options{Env: "test", Level: "debug"}))
	assert.True(t, Log.Core().Enabled(zapcore.DebugLevel))
}
