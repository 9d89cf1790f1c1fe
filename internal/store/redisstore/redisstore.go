package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Makepad-fr/fxlist/internal/apperrors"
	"github.com/Makepad-fr/fxlist/internal/model"
)

// Store caches the last known rates in Redis as one JSON document.
type Store struct {
	client *redis.Client
	key    string
	exp    time.Duration // zero keeps the entry forever
}

// Key returns the cache key for a base currency.
func Key(base string) string {
	return fmt.Sprintf("fxlist:rates:%s", base)
}

// New creates a Store for the EUR rates with an optional TTL.
func New(client *redis.Client, expiration time.Duration) *Store {
	return &Store{
		client: client,
		key:    Key(model.BaseISOCode),
		exp:    expiration,
	}
}

// Load returns the cached rates. A missing key is an empty cache.
func (s *Store) Load(ctx context.Context) ([]model.Currency, error) {
	val, err := s.client.Get(ctx, s.key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return []model.Currency{}, nil
		}
		return nil, fmt.Errorf("%w: redis get %s: %w", apperrors.ErrCache, s.key, err)
	}

	var records []model.Currency
	if err := json.Unmarshal(val, &records); err != nil {
		return nil, fmt.Errorf("%w: decoding %s: %w", apperrors.ErrCache, s.key, err)
	}
	if records == nil {
		records = []model.Currency{}
	}
	return records, nil
}

// Save replaces the cached rates and resets the TTL.
func (s *Store) Save(ctx context.Context, records []model.Currency) error {
	b, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("json marshal: %w", err)
	}
	if err := s.client.Set(ctx, s.key, b, s.exp).Err(); err != nil {
		return fmt.Errorf("%w: redis set %s: %w", apperrors.ErrCache, s.key, err)
	}
	return nil
}

// Clear drops the cached rates.
func (s *Store) Clear(ctx context.Context) error {
	if err := s.client.Del(ctx, s.key).Err(); err != nil {
		return fmt.Errorf("%w: redis del %s: %w", apperrors.ErrCache, s.key, err)
	}
	return nil
}

// Describe names the backend for humans.
func (s *Store) Describe() string {
	return fmt.Sprintf("redis %s key %s", s.client.Options().Addr, s.key)
}
