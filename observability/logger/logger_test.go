package logger

import (
	"errors"
	"testing"

	"github.com/code19m/errx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/buffer"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/rise-and-shine/filexfer/meta"
)

func newObserved() (Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return &logger{zap.New(core).Sugar()}, logs
}

func TestNewRejectsUnknownLevel(t *testing.T) {
	_, err := New(Config{Level: "loud", Encoding: encJSON})
	assert.Error(t, err)
}

func TestNewDisabled(t *testing.T) {
	l, err := New(Config{Disable: true})
	require.NoError(t, err)
	l.Info("dropped")
}

func TestWithContextAddsMeta(t *testing.T) {
	l, logs := newObserved()
	ctx := meta.InjectMetaToContext(t.Context(), map[meta.ContextKey]string{
		meta.TraceID:   "trace-1",
		meta.Operation: "fetch",
	})

	l.WithContext(ctx).Info("fetched")

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "trace-1", fields["trace_id"])
	assert.Equal(t, "fetch", fields["operation"])
}

func TestErrorxExpandsCode(t *testing.T) {
	l, logs := newObserved()

	l.Errorx(errx.New("boom", errx.WithCode("CONNECTION_FAILED")))
	l.Warnx(errors.New("plain"))

	require.Equal(t, 2, logs.Len())
	assert.Equal(t, "CONNECTION_FAILED", logs.All()[0].ContextMap()["error_code"])
	assert.Equal(t, "plain", logs.All()[1].Message)
	assert.NotContains(t, logs.All()[1].ContextMap(), "error_code")
}

func TestPrettyEncoderWritesHeaderAndFields(t *testing.T) {
	cfg, err := Config{Level: "debug", Encoding: encPretty}.getZapConfig()
	require.NoError(t, err)

	enc := &prettyEncoder{Encoder: zapcore.NewJSONEncoder(cfg.EncoderConfig), pool: buffer.NewPool()}
	buf, err := enc.EncodeEntry(
		zapcore.Entry{Level: zapcore.InfoLevel, Message: "saved", LoggerName: "transfer"},
		[]zapcore.Field{zap.String("file_name", "a.txt")},
	)
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "saved")
	assert.Contains(t, out, "[transfer]")
	assert.Contains(t, out, `"file_name": "a.txt"`)
}
