package bootstrap

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// RuntimeEvent is an operational event about the server process itself,
// distinct from the domain audit trail in internal/audit.
type RuntimeEvent struct {
	Action  string
	Message string
	Meta    map[string]any
}

type RuntimeLogger interface {
	Log(ctx context.Context, event RuntimeEvent)
}

type StdoutRuntimeLogger struct{}

func NewStdoutRuntimeLogger() *StdoutRuntimeLogger {
	return &StdoutRuntimeLogger{}
}

func (l *StdoutRuntimeLogger) Log(ctx context.Context, event RuntimeEvent) {
	zap.L().Named("runtime").Info("runtime event",
		zap.String("timestamp", time.Now().UTC().Format(time.RFC3339)),
		zap.String("action", event.Action),
		zap.String("message", event.Message),
		zap.Any("meta", event.Meta),
	)
}
