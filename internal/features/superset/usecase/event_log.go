package usecase

import (
	"context"
	"log/slog"

	"superset-embed/internal/common"
	"superset-embed/internal/features/superset/domain"
)

// LogEventRecorder implements domain.EventRecorder by writing events to the context logger.
// It is used by stores that have no native event sink.
type LogEventRecorder struct{}

// NewLogEventRecorder creates a new log event recorder
func NewLogEventRecorder() domain.EventRecorder {
	return LogEventRecorder{}
}

// Record logs the event at Info, or Warn for warning events
func (LogEventRecorder) Record(ctx context.Context, eventType, reason, message string) error {
	level := slog.LevelInfo
	if eventType == domain.EventWarning {
		level = slog.LevelWarn
	}

	common.LoggerFromContext(ctx).Log(ctx, level, message,
		"event_type", eventType,
		"reason", reason)
	return nil
}
