// Package logger wraps zap behind a small structured-logging interface so
// the rest of the codebase never imports zap directly.
package logger

import (
	"context"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/decisionflow-ai/decisionflow/internal/platform/config"
	"github.com/decisionflow-ai/decisionflow/pkg/middleware"
)

// Logger is the structured logging interface used across the service.
// Fields are alternating key/value pairs, zap sugar style.
type Logger interface {
	Debug(msg string, fields ...interface{})
	Info(msg string, fields ...interface{})
	Warn(msg string, fields ...interface{})
	Error(msg string, fields ...interface{})
	Fatal(msg string, fields ...interface{})
	WithFields(fields map[string]interface{}) Logger
	WithContext(ctx context.Context) Logger
}

type zapLogger struct {
	sugar *zap.SugaredLogger
}

// New builds a zap-backed logger from configuration. The level falls back
// to info when the configured value does not parse.
func New(cfg config.LoggerConfig) Logger {
	var zc zap.Config
	if cfg.Format == "json" {
		zc = zap.NewProductionConfig()
	} else {
		zc = zap.NewDevelopmentConfig()
		zc.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		level = zapcore.InfoLevel
	}
	zc.Level = zap.NewAtomicLevelAt(level)

	if cfg.OutputPath != "" && cfg.OutputPath != "stdout" {
		zc.OutputPaths = []string{cfg.OutputPath}
	} else {
		zc.OutputPaths = []string{"stdout"}
	}

	base, err := zc.Build(
		zap.AddCaller(),
		zap.AddCallerSkip(1),
		zap.AddStacktrace(zap.ErrorLevel),
	)
	if err != nil {
		panic(err)
	}
	return &zapLogger{sugar: base.Sugar()}
}

func (l *zapLogger) Debug(msg string, fields ...interface{}) { l.sugar.Debugw(msg, fields...) }
func (l *zapLogger) Info(msg string, fields ...interface{})  { l.sugar.Infow(msg, fields...) }
func (l *zapLogger) Warn(msg string, fields ...interface{})  { l.sugar.Warnw(msg, fields...) }
func (l *zapLogger) Error(msg string, fields ...interface{}) { l.sugar.Errorw(msg, fields...) }
func (l *zapLogger) Fatal(msg string, fields ...interface{}) { l.sugar.Fatalw(msg, fields...) }

// WithFields returns a child logger carrying the extra fields on every
// entry.
func (l *zapLogger) WithFields(fields map[string]interface{}) Logger {
	kv := make([]interface{}, 0, len(fields)*2)
	for k, v := range fields {
		kv = append(kv, k, v)
	}
	return &zapLogger{sugar: l.sugar.With(kv...)}
}

// WithContext returns a child logger annotated with the request id and
// user id the middleware chain stored on the context.
func (l *zapLogger) WithContext(ctx context.Context) Logger {
	sugar := l.sugar
	if requestID := middleware.GetRequestID(ctx); requestID != "" {
		sugar = sugar.With("request_id", requestID)
	}
	if userID := middleware.GetUserID(ctx); userID != "" {
		sugar = sugar.With("user_id", userID)
	}
	return &zapLogger{sugar: sugar}
}
