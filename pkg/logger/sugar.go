package logger

import "go.uber.org/zap"

// KV adapts a zap logger to the key-value logging shape the application
// services expect
type KV struct {
	s *zap.SugaredLogger
}

// NewKV wraps a zap logger for key-value style logging
func NewKV(l *zap.Logger) *KV {
	return &KV{s: l.WithOptions(zap.AddCallerSkip(1)).Sugar()}
}

func (k *KV) Info(msg string, keysAndValues ...interface{}) {
	k.s.Infow(msg, keysAndValues...)
}

func (k *KV) Error(msg string, keysAndValues ...interface{}) {
	k.s.Errorw(msg, keysAndValues...)
}
