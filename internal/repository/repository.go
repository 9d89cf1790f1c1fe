package repository

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Makepad-fr/fxlist/internal/apperrors"
	"github.com/Makepad-fr/fxlist/internal/model"
)

// Fetcher loads the latest rates from the network.
type Fetcher interface {
	Latest(ctx context.Context) ([]model.Currency, error)
}

// Cache is the local copy of the last good rates.
type Cache interface {
	Load(ctx context.Context) ([]model.Currency, error)
	Save(ctx context.Context, records []model.Currency) error
	Clear(ctx context.Context) error
	Describe() string
}

// writeTimeout bounds a background cache write.
const writeTimeout = 5 * time.Second

// Repository serves rates from the remote service and keeps the cache in
// step with every successful fetch.
type Repository struct {
	remote Fetcher
	cache  Cache
	logger *zap.SugaredLogger

	writes sync.WaitGroup
}

// New constructs a valid Repository.
func New(remote Fetcher, cache Cache, logger *zap.SugaredLogger) *Repository {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Repository{
		remote: remote,
		cache:  cache,
		logger: logger,
	}
}

// FetchRemote returns the latest rates. On success they are written to the
// cache in the background; the caller never waits for it.
func (r *Repository) FetchRemote(ctx context.Context) ([]model.Currency, error) {
	records, err := r.remote.Latest(ctx)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNetwork) && ctx.Err() == nil {
			err = fmt.Errorf("%w: %w", apperrors.ErrNetwork, err)
		}
		return nil, err
	}
	if len(records) > 0 {
		r.writeBehind(records)
	}
	return records, nil
}

// ReadCache returns whatever the cache holds. An empty slice means no data yet.
func (r *Repository) ReadCache(ctx context.Context) ([]model.Currency, error) {
	records, err := r.cache.Load(ctx)
	if err != nil {
		if !errors.Is(err, apperrors.ErrCache) && ctx.Err() == nil {
			err = fmt.Errorf("%w: %w", apperrors.ErrCache, err)
		}
		return nil, err
	}
	return records, nil
}

// WriteCache stores records synchronously.
func (r *Repository) WriteCache(ctx context.Context, records []model.Currency) error {
	return r.cache.Save(ctx, records)
}

// ClearCache empties the cache.
func (r *Repository) ClearCache(ctx context.Context) error {
	return r.cache.Clear(ctx)
}

// CacheName describes the cache backend.
func (r *Repository) CacheName() string { return r.cache.Describe() }

// Wait blocks until pending background writes are done.
func (r *Repository) Wait() { r.writes.Wait() }

// writeBehind detaches from the request context on purpose: the write must
// outlive a cancelled refresh.
func (r *Repository) writeBehind(records []model.Currency) {
	r.writes.Add(1)
	go func() {
		defer r.writes.Done()
		ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
		defer cancel()
		if err := r.cache.Save(ctx, records); err != nil {
			r.logger.Warnw("cache write failed", "count", len(records), "error", err)
		}
	}()
}
