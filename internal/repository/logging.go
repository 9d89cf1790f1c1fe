package repository

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/Makepad-fr/fxlist/internal/model"
)

// Service is what the orchestrator and the CLI need from a repository.
type Service interface {
	FetchRemote(ctx context.Context) ([]model.Currency, error)
	ReadCache(ctx context.Context) ([]model.Currency, error)
	WriteCache(ctx context.Context, records []model.Currency) error
	ClearCache(ctx context.Context) error
	CacheName() string
}

// loggingService decorates a Service with logging
type loggingService struct {
	next   Service
	logger *zap.SugaredLogger
}

// NewLoggingService returns a new logging service
func NewLoggingService(logger *zap.SugaredLogger, s Service) Service {
	return &loggingService{
		next:   s,
		logger: logger,
	}
}

func (s *loggingService) FetchRemote(ctx context.Context) (records []model.Currency, err error) {
	defer func(begin time.Time) {
		s.logger.Debugw("repository call",
			"method", "fetch_remote",
			"count", len(records),
			"took", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.FetchRemote(ctx)
}

func (s *loggingService) ReadCache(ctx context.Context) (records []model.Currency, err error) {
	defer func(begin time.Time) {
		s.logger.Debugw("repository call",
			"method", "read_cache",
			"count", len(records),
			"took", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.ReadCache(ctx)
}

func (s *loggingService) WriteCache(ctx context.Context, records []model.Currency) (err error) {
	defer func(begin time.Time) {
		s.logger.Debugw("repository call",
			"method", "write_cache",
			"count", len(records),
			"took", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.WriteCache(ctx, records)
}

func (s *loggingService) ClearCache(ctx context.Context) (err error) {
	defer func(begin time.Time) {
		s.logger.Debugw("repository call",
			"method", "clear_cache",
			"took", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.ClearCache(ctx)
}

func (s *loggingService) CacheName() string { return s.next.CacheName() }
