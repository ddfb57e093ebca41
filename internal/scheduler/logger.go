package scheduler

import (
	"github.com/go-co-op/gocron/v2"
	"go.uber.org/zap"
)

type gocronLogger struct {
	sugar *zap.SugaredLogger
}

// NewGocronLogger adapts a zap logger to the gocron.Logger interface
func NewGocronLogger(logger *zap.Logger) gocron.Logger {
	return &gocronLogger{sugar: logger.Named("scheduler").Sugar()}
}

func (l *gocronLogger) Debug(msg string, args ...any) {
	l.sugar.Debugw(msg, args...)
}

func (l *gocronLogger) Error(msg string, args ...any) {
	l.sugar.Errorw(msg, args...)
}

func (l *gocronLogger) Info(msg string, args ...any) {
	l.sugar.Infow(msg, args...)
}

func (l *gocronLogger) Warn(msg string, args ...any) {
	l.sugar.Warnw(msg, args...)
}
