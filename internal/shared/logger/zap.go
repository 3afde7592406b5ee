package logger

import (
	"context"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ZapLogger implements Logger on top of a zap SugaredLogger.
type ZapLogger struct {
	sugar *zap.SugaredLogger
}

// NewZapLogger builds a JSON zap logger honouring LOG_LEVEL.
func NewZapLogger() Logger {
	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "timestamp"
	encCfg.MessageKey = "message"
	encCfg.EncodeTime = zapcore.TimeEncoderOfLayout(timestampFormat)

	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encCfg),
		zapcore.Lock(os.Stdout),
		zap.NewAtomicLevelAt(zapLevel(os.Getenv("LOG_LEVEL"))),
	)
	return &ZapLogger{sugar: zap.New(core).Sugar()}
}

// NewZapLoggerFrom wraps an existing zap logger, e.g. zaptest or zap.NewNop in tests.
func NewZapLoggerFrom(l *zap.Logger) Logger {
	return &ZapLogger{sugar: l.Sugar()}
}

func zapLevel(level string) zapcore.Level {
	switch level {
	case logLevelDebug, "debug":
		return zapcore.DebugLevel
	case logLevelWarn, "warn", "WARNING", "warning":
		return zapcore.WarnLevel
	case logLevelError, "error":
		return zapcore.ErrorLevel
	case logLevelFatal, "fatal":
		return zapcore.FatalLevel
	default:
		return zapcore.InfoLevel
	}
}

func (z *ZapLogger) Debug(args ...interface{}) { z.sugar.Debug(args...) }
func (z *ZapLogger) Info(args ...interface{})  { z.sugar.Info(args...) }
func (z *ZapLogger) Warn(args ...interface{})  { z.sugar.Warn(args...) }
func (z *ZapLogger) Error(args ...interface{}) { z.sugar.Error(args...) }
func (z *ZapLogger) Fatal(args ...interface{}) { z.sugar.Fatal(args...) }

func (z *ZapLogger) Debugf(format string, args ...interface{}) { z.sugar.Debugf(format, args...) }
func (z *ZapLogger) Infof(format string, args ...interface{})  { z.sugar.Infof(format, args...) }
func (z *ZapLogger) Warnf(format string, args ...interface{})  { z.sugar.Warnf(format, args...) }
func (z *ZapLogger) Errorf(format string, args ...interface{}) { z.sugar.Errorf(format, args...) }
func (z *ZapLogger) Fatalf(format string, args ...interface{}) { z.sugar.Fatalf(format, args...) }

// WithFields adds structured fields to the logger
func (z *ZapLogger) WithFields(fields map[string]interface{}) Logger {
	kv := make([]interface{}, 0, len(fields)*2)
	for k, v := range fields {
		kv = append(kv, k, v)
	}
	return &ZapLogger{sugar: z.sugar.With(kv...)}
}

// WithContext lifts tenant and request identifiers out of ctx.
func (z *ZapLogger) WithContext(ctx context.Context) Logger {
	kv := make([]interface{}, 0, len(contextFieldNames)*2)
	for key, name := range contextFieldNames {
		if val, ok := ctx.Value(key).(string); ok && val != "" {
			kv = append(kv, name, val)
		}
	}
	return &ZapLogger{sugar: z.sugar.With(kv...)}
}

// WithComponent adds component name to the logger
func (z *ZapLogger) WithComponent(component string) Logger {
	return &ZapLogger{sugar: z.sugar.With("component", component)}
}

// Sync flushes buffered entries.
func (z *ZapLogger) Sync() error {
	return z.sugar.Sync()
}
