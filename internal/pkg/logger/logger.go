package logger

import (
	"context"

	"go.uber.org/zap"
)

var global *zap.SugaredLogger

func init() {
	l, err := zap.NewProduction(zap.AddCallerSkip(1))
	if err != nil {
		panic(err)
	}
	global = l.Sugar()
}

// SetLogger replaces the package-level logger. Used from cmd wiring and tests.
func SetLogger(l *zap.Logger) {
	global = l.Sugar()
}

type ctxFieldsKey struct{}

// WithFields returns a ctx whose log lines carry the given key-value pairs.
func WithFields(ctx context.Context, kvs ...interface{}) context.Context {
	return context.WithValue(ctx, ctxFieldsKey{}, append(fields(ctx), kvs...))
}

func fields(ctx context.Context) []interface{} {
	if ctx == nil {
		return nil
	}
	kvs, _ := ctx.Value(ctxFieldsKey{}).([]interface{})
	return kvs
}

func fromCtx(ctx context.Context) *zap.SugaredLogger {
	if kvs := fields(ctx); len(kvs) > 0 {
		return global.With(kvs...)
	}
	return global
}

func Debugf(ctx context.Context, format string, args ...interface{}) {
	fromCtx(ctx).Debugf(format, args...)
}

func Infof(ctx context.Context, format string, args ...interface{}) {
	fromCtx(ctx).Infof(format, args...)
}

func Warnf(ctx context.Context, format string, args ...interface{}) {
	fromCtx(ctx).Warnf(format, args...)
}

func Errorf(ctx context.Context, format string, args ...interface{}) {
	fromCtx(ctx).Errorf(format, args...)
}

func Error(ctx context.Context, msg string) {
	fromCtx(ctx).Error(msg)
}

func Fatal(ctx context.Context, err error) {
	if err != nil {
		fromCtx(ctx).Fatal(err)
	}
}
