package logger

import (
	"context"
	"log/slog"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// zapLogger implements Logger on top of zap for JSON output.
type zapLogger struct {
	l *zap.Logger
}

func newZapLogger(level *slog.LevelVar) (*zapLogger, error) {
	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	enabler := zap.LevelEnablerFunc(func(l zapcore.Level) bool {
		return toSlogLevel(l) >= level.Level()
	})
	core := zapcore.NewCore(zapcore.NewJSONEncoder(encCfg), zapcore.Lock(os.Stdout), enabler)
	return &zapLogger{l: zap.New(core)}, nil
}

// toSlogLevel maps zap levels onto the shared slog.LevelVar scale.
func toSlogLevel(l zapcore.Level) slog.Level {
	switch {
	case l <= zapcore.DebugLevel:
		return slog.LevelDebug
	case l == zapcore.InfoLevel:
		return slog.LevelInfo
	case l == zapcore.WarnLevel:
		return slog.LevelWarn
	default:
		return slog.LevelError
	}
}

func (z *zapLogger) Named(name string) Logger {
	return &zapLogger{l: z.l.Named(name)}
}

func (z *zapLogger) Info(_ context.Context, msg string, fields ...Field) {
	z.l.Info(msg, z.convert(fields)...)
}

func (z *zapLogger) Error(_ context.Context, msg string, fields ...Field) {
	z.l.Error(msg, z.convert(fields)...)
}

func (z *zapLogger) Debug(_ context.Context, msg string, fields ...Field) {
	z.l.Debug(msg, z.convert(fields)...)
}

func (z *zapLogger) Warn(_ context.Context, msg string, fields ...Field) {
	z.l.Warn(msg, z.convert(fields)...)
}

func (z *zapLogger) Fatal(_ context.Context, msg string, fields ...Field) {
	z.l.Fatal(msg, z.convert(fields)...)
}

func (z *zapLogger) convert(fields []Field) []zap.Field {
	out := make([]zap.Field, 0, len(fields)+1)
	for _, f := range fields {
		if err, ok := f.Value.(error); ok {
			out = append(out, zap.NamedError(f.Key, err))
			continue
		}
		out = append(out, zap.Any(f.Key, f.Value))
	}
	// caller of Info/Error/... sits two frames above convert
	return append(out, zap.String("source", getCaller(callerSkipFrames+1)))
}

func (z *zapLogger) sync() error {
	// Sync on stdout returns EINVAL on some platforms; it is not actionable.
	_ = z.l.Sync()
	return nil
}
