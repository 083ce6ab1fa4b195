package logging

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newObservedLogger(level zapcore.Level) (Logger, *observer.ObservedLogs) {
	core, logs := observer.New(level)
	return NewLoggerFromCore(core), logs
}

func TestNewLogger_Formats(t *testing.T) {
	for _, format := range []string{"json", "console", ""} {
		l, err := NewLogger(LogConfig{Level: "debug", Format: format})
		require.NoError(t, err, format)
		assert.NotNil(t, l)
	}
}

func TestNewLogger_BadOutputPath(t *testing.T) {
	_, err := NewLogger(LogConfig{OutputPaths: []string{"/nonexistent-dir/x/y.log"}})
	assert.Error(t, err)
}

func TestZapLogger_FieldsAreTyped(t *testing.T) {
	l, logs := newObservedLogger(zapcore.DebugLevel)

	l.Info("ingested",
		String("file", "mols.txt"),
		Int("records", 3),
		Int64("bytes", 42),
		Float64("clogp", 1.6866),
		Bool("ok", true),
		Duration("took", 5*time.Millisecond),
		Err(errors.New("boom")),
		Any("tags", []string{"a"}),
	)

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "ingested", entry.Message)
	ctx := entry.ContextMap()
	assert.Equal(t, "mols.txt", ctx["file"])
	assert.EqualValues(t, 3, ctx["records"])
	assert.EqualValues(t, 42, ctx["bytes"])
	assert.Equal(t, 1.6866, ctx["clogp"])
	assert.Equal(t, true, ctx["ok"])
	assert.Equal(t, 5*time.Millisecond, ctx["took"])
	assert.Equal(t, "boom", ctx["error"])
}

func TestErr_Nil(t *testing.T) {
	f := Err(nil)
	assert.Equal(t, "error", f.Key)
	assert.Equal(t, "<nil>", f.Value)
}

func TestZapLogger_WithAndNamed(t *testing.T) {
	l, logs := newObservedLogger(zapcore.DebugLevel)

	child := l.Named("http").With(String("session", "abc"))
	child.Warn("hover suppressed")

	entry := logs.All()[0]
	assert.Equal(t, "http", entry.LoggerName)
	assert.Equal(t, zapcore.WarnLevel, entry.Level)
	assert.Equal(t, "abc", entry.ContextMap()["session"])
}

func TestZapLogger_LevelFiltering(t *testing.T) {
	l, logs := newObservedLogger(zapcore.WarnLevel)

	l.Debug("d")
	l.Info("i")
	l.Warn("w")
	l.Error("e")

	assert.Equal(t, 2, logs.Len())
}

func TestSetLevel_AppliesToChildren(t *testing.T) {
	l, err := NewLogger(LogConfig{Level: "info", OutputPaths: []string{"stdout"}})
	require.NoError(t, err)

	ctl, ok := l.(LevelController)
	require.True(t, ok)
	assert.Equal(t, "info", ctl.Level())

	child := l.Named("child")
	require.NoError(t, ctl.SetLevel("debug"))
	assert.Equal(t, "debug", child.(LevelController).Level())

	assert.Error(t, ctl.SetLevel("loud"))
	assert.Equal(t, "debug", ctl.Level())
}

func TestParseLevel(t *testing.T) {
	cases := map[string]zapcore.Level{
		"debug": zapcore.DebugLevel,
		"INFO":  zapcore.InfoLevel,
		"":      zapcore.InfoLevel,
		"warn":  zapcore.WarnLevel,
		"Error": zapcore.ErrorLevel,
	}
	for in, want := range cases {
		got, err := parseLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := parseLevel("verbose")
	assert.Error(t, err)
}

func TestNopLogger(t *testing.T) {
	l := NewNopLogger()
	assert.NotPanics(t, func() {
		l.Debug("x")
		l.Info("x")
		l.Warn("x")
		l.Error("x")
		l.With(String("k", "v")).Named("n").Info("x")
	})
	assert.NoError(t, Sync(l))
}

func TestDefault(t *testing.T) {
	orig := Default()
	t.Cleanup(func() { SetDefault(orig) })

	l, logs := newObservedLogger(zapcore.InfoLevel)
	SetDefault(l)
	SetDefault(nil)
	Default().Info("via default")

	assert.Equal(t, 1, logs.Len())
}
