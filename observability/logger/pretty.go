package logger

import (
	"encoding/json"
	"os"
	"strings"

	"github.com/fatih/color"
	"go.uber.org/zap"
	"go.uber.org/zap/buffer"
	"go.uber.org/zap/zapcore"
)

//nolint:gochecknoglobals // static palette shared by all encoders
var levelColors = map[zapcore.Level]*color.Color{
	zapcore.DebugLevel:  color.New(color.FgCyan),
	zapcore.InfoLevel:   color.New(color.FgGreen),
	zapcore.WarnLevel:   color.New(color.FgYellow),
	zapcore.ErrorLevel:  color.New(color.FgRed, color.Bold),
	zapcore.DPanicLevel: color.New(color.FgRed, color.Bold),
	zapcore.PanicLevel:  color.New(color.FgRed, color.Bold),
	zapcore.FatalLevel:  color.New(color.FgMagenta, color.Bold),
}

// prettyEncoder renders a one-line colored header followed by indented JSON
// fields. It delegates field encoding to a JSON encoder.
type prettyEncoder struct {
	zapcore.Encoder
	pool buffer.Pool
}

func newPrettyLogger(cfg *zap.Config) *zap.Logger {
	enc := &prettyEncoder{
		Encoder: zapcore.NewJSONEncoder(cfg.EncoderConfig),
		pool:    buffer.NewPool(),
	}
	core := zapcore.NewCore(enc, zapcore.AddSync(os.Stdout), cfg.Level)
	return zap.New(core, zap.ErrorOutput(zapcore.AddSync(os.Stderr)))
}

func (e *prettyEncoder) Clone() zapcore.Encoder {
	return &prettyEncoder{Encoder: e.Encoder.Clone(), pool: e.pool}
}

func (e *prettyEncoder) EncodeEntry(entry zapcore.Entry, fields []zapcore.Field) (*buffer.Buffer, error) {
	raw, err := e.Encoder.EncodeEntry(entry, fields)
	if err != nil {
		return nil, err
	}
	defer raw.Free()

	var payload map[string]any
	if err = json.Unmarshal(raw.Bytes(), &payload); err != nil {
		// fall back to the plain JSON line
		out := e.pool.Get()
		out.AppendBytes(raw.Bytes())
		return out, nil
	}
	for _, k := range []string{messageKey, levelKey, timeKey, nameKey} {
		delete(payload, k)
	}

	out := e.pool.Get()
	out.AppendString(entry.Time.Format("15:04:05.000"))
	out.AppendByte(' ')
	out.AppendString(colorLevel(entry.Level))
	out.AppendByte(' ')
	if entry.LoggerName != "" {
		out.AppendString(color.New(color.Faint).Sprint("[" + entry.LoggerName + "]"))
		out.AppendByte(' ')
	}
	out.AppendString(entry.Message)

	if len(payload) > 0 {
		indented, mErr := json.MarshalIndent(payload, "  ", "  ")
		if mErr == nil {
			out.AppendString("\n  ")
			out.AppendString(strings.TrimSpace(string(indented)))
		}
	}
	out.AppendByte('\n')
	return out, nil
}

func colorLevel(level zapcore.Level) string {
	label := level.CapitalString()
	if c, ok := levelColors[level]; ok {
		return c.Sprint(label)
	}
	return label
}
