package sink

import (
	"context"

	"github.com/therealhieu/wee/internal/analytics"
	"go.uber.org/zap"
)

// Log is an analytics.Sink that writes every event to the logger.
type Log struct {
	logger *zap.Logger
}

// NewLog creates a logging sink.
func NewLog(logger *zap.Logger) *Log {
	return &Log{logger: logger}
}

func (l *Log) SaveURLShortened(_ context.Context, event *analytics.URLShortenedEvent) error {
	l.logger.Info("url shortened event received",
		zap.String("short", event.Short),
		zap.Stringp("alias", event.Alias),
		zap.String("long", event.Long),
		zap.String("userId", event.UserID),
		zap.String("outcome", event.Outcome),
		zap.Time("occurredAt", event.OccurredAt),
	)

	return nil
}

func (l *Log) SaveURLRedirected(_ context.Context, event *analytics.URLRedirectedEvent) error {
	l.logger.Info("url redirected event received",
		zap.String("code", event.Code),
		zap.String("source", event.Source),
		zap.Time("accessedAt", event.AccessedAt),
		zap.String("referrer", event.Referrer),
	)

	return nil
}
