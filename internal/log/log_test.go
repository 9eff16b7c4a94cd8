package log

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLog_FormatsFields(t *testing.T) {
	var buf bytes.Buffer
	InitWriter(&buf)
	t.Cleanup(Reset)

	Info(CatRegistry, "list fetched", "count", 3, "orphan")

	out := buf.String()
	require.Contains(t, out, "[INFO] [registry] list fetched")
	require.Contains(t, out, "count=3")
	require.Contains(t, out, "orphan=<missing>")
}

func TestLog_ErrorErr(t *testing.T) {
	var buf bytes.Buffer
	InitWriter(&buf)
	t.Cleanup(Reset)

	ErrorErr(CatList, "delete failed", errors.New("boom"), "id", "42")
	ErrorErr(CatList, "nil error", nil)

	out := buf.String()
	require.Contains(t, out, "id=42 error=boom")
	require.Contains(t, out, "error=<nil>")
}

func TestLog_MinLevelAndDisable(t *testing.T) {
	var buf bytes.Buffer
	InitWriter(&buf)
	t.Cleanup(Reset)

	SetMinLevel(LevelWarn)
	Debug(CatForm, "hidden")
	Warn(CatForm, "shown")
	require.NotContains(t, buf.String(), "hidden")
	require.Contains(t, buf.String(), "shown")

	buf.Reset()
	SetEnabled(false)
	Error(CatForm, "muted")
	require.Empty(t, buf.String())
}

func TestLog_NoLoggerIsNoop(t *testing.T) {
	Reset()
	require.NotPanics(t, func() { Info(CatUI, "nothing") })
	require.Nil(t, NewListener(context.Background()))
	require.Nil(t, Subscribe(context.Background()))
}

func TestLog_PublishesEntries(t *testing.T) {
	var buf bytes.Buffer
	InitWriter(&buf)
	t.Cleanup(Reset)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ch := Subscribe(ctx)
	require.NotNil(t, ch)

	Info(CatEncoder, "encoded", "bytes", 10)

	select {
	case ev := <-ch:
		require.Contains(t, ev.Payload, "encoded bytes=10")
	case <-time.After(time.Second):
		t.Fatal("expected log event")
	}
}

func TestLevel_String(t *testing.T) {
	require.Equal(t, "DEBUG", LevelDebug.String())
	require.Equal(t, "ERROR", LevelError.String())
	require.Equal(t, "UNKNOWN", Level(99).String())
}

func TestDebugEnabled(t *testing.T) {
	t.Setenv("OPTICSHIELD_DEBUG", "")
	require.False(t, DebugEnabled(false))
	require.True(t, DebugEnabled(true))

	t.Setenv("OPTICSHIELD_DEBUG", "1")
	require.True(t, DebugEnabled(false))
}

func TestLogPath(t *testing.T) {
	t.Setenv("OPTICSHIELD_LOG", "")
	require.Equal(t, "debug.log", LogPath())
	t.Setenv("OPTICSHIELD_LOG", "/tmp/x.log")
	require.Equal(t, "/tmp/x.log", LogPath())
}
