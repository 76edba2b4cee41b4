package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/SscSPs/estate_ledger/internal/core/domain"
	portssvc "github.com/SscSPs/estate_ledger/internal/core/ports/services"
	"github.com/SscSPs/estate_ledger/internal/middleware"
)

// BaseService provides common functionality for all services
type BaseService struct {
	Clock     func() time.Time
	Publisher portssvc.EventPublisher
}

// Now returns the current time in UTC, honouring an injected clock.
func (s *BaseService) Now() time.Time {
	if s.Clock != nil {
		return s.Clock().UTC()
	}
	return time.Now().UTC()
}

// GetLogger gets the logger from context or returns a default one
func (s *BaseService) GetLogger(ctx context.Context) *slog.Logger {
	return middleware.GetLoggerFromCtx(ctx)
}

// LogError logs an error with consistent formatting
func (s *BaseService) LogError(ctx context.Context, err error, msg string, keyvals ...any) {
	logger := s.GetLogger(ctx)
	args := make([]any, 0, len(keyvals)+2)
	args = append(args, slog.String("error", err.Error()))
	args = append(args, keyvals...)
	logger.Error(msg, args...)
}

// LogWarn logs a warning with consistent formatting
func (s *BaseService) LogWarn(ctx context.Context, msg string, keyvals ...any) {
	s.GetLogger(ctx).Warn(msg, keyvals...)
}

// LogInfo logs an info message with consistent formatting
func (s *BaseService) LogInfo(ctx context.Context, msg string, keyvals ...any) {
	logger := s.GetLogger(ctx)
	logger.Info(msg, keyvals...)
}

// LogDebug logs a debug message with consistent formatting
func (s *BaseService) LogDebug(ctx context.Context, msg string, keyvals ...any) {
	logger := s.GetLogger(ctx)
	logger.Debug(msg, keyvals...)
}

// Publish hands an event to the publisher. It must only be called after the unit of work committed.
func (s *BaseService) Publish(ctx context.Context, eventType domain.EventType, aggregateID string, payload any) {
	if s.Publisher == nil {
		return
	}
	s.Publisher.Publish(ctx, domain.LedgerEvent{
		Type:        eventType,
		AggregateID: aggregateID,
		OccurredAt:  s.Now(),
		Payload:     payload,
	})
}

// ServiceOption configures the shared BaseService of any service.
type ServiceOption func(*BaseService)

// WithClock overrides the time source.
func WithClock(clock func() time.Time) ServiceOption {
	return func(b *BaseService) {
		b.Clock = clock
	}
}

// WithPublisher sets the post-commit event publisher.
func WithPublisher(p portssvc.EventPublisher) ServiceOption {
	return func(b *BaseService) {
		b.Publisher = p
	}
}

func newBase(options []ServiceOption) BaseService {
	var b BaseService
	for _, opt := range options {
		opt(&b)
	}
	return b
}
