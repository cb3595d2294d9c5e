package store

import (
	"context"

	"github.com/serroba/redirect-gateway/internal/analytics"
	"go.uber.org/zap"
)

// Log is an analytics.Store that writes events to the logger.
type Log struct {
	logger *zap.Logger
}

func NewLog(logger *zap.Logger) *Log {
	return &Log{logger: logger}
}

func (l *Log) SaveIssued(_ context.Context, event *analytics.LinkIssuedEvent) error {
	l.logger.Info("link issued",
		zap.String("identifier", event.Identifier),
		zap.String("mode", event.Mode),
		zap.Bool("protected", event.Protected),
		zap.Time("issuedAt", event.IssuedAt),
		zap.String("requestId", event.RequestID),
	)

	return nil
}

func (l *Log) SaveResolved(_ context.Context, event *analytics.LinkResolvedEvent) error {
	l.logger.Info("link resolved",
		zap.String("identifier", event.Identifier),
		zap.String("mode", event.Mode),
		zap.String("outcome", event.Outcome),
		zap.Time("resolvedAt", event.ResolvedAt),
		zap.String("referrer", event.Referrer),
	)

	return nil
}

func (l *Log) SaveVerified(_ context.Context, event *analytics.LinkVerifiedEvent) error {
	l.logger.Info("link verification",
		zap.String("token", event.Token),
		zap.String("outcome", event.Outcome),
		zap.Time("verifiedAt", event.VerifiedAt),
	)

	return nil
}
