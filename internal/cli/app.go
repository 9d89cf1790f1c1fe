package cli

import (
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/Makepad-fr/fxlist/internal/config"
	"github.com/Makepad-fr/fxlist/internal/logger"
	"github.com/Makepad-fr/fxlist/internal/remote"
	"github.com/Makepad-fr/fxlist/internal/repository"
	"github.com/Makepad-fr/fxlist/internal/store/jsonstore"
	"github.com/Makepad-fr/fxlist/internal/store/redisstore"
)

// app holds everything a subcommand needs, built once from config.
type app struct {
	cfg    *config.Config
	logger *zap.SugaredLogger

	// repo waits for background cache writes; svc is the logged view of it
	repo *repository.Repository
	svc  repository.Service

	closers []func() error
}

func newApp(opt Options) (*app, error) {
	cfg := opt.Config
	if cfg == nil {
		c, err := config.Load(opt.EnvFile)
		if err != nil {
			return nil, fmt.Errorf("config: %w", err)
		}
		cfg = c
	}

	log, err := logger.New(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}

	a := &app{cfg: cfg, logger: log}
	a.closers = append(a.closers, func() error { _ = log.Sync(); return nil })

	cache, err := a.cache()
	if err != nil {
		a.close()
		return nil, err
	}

	client := remote.NewClient(cfg.RatesURL, cfg.HTTPTimeout)
	a.repo = repository.New(client, cache, log)
	a.svc = repository.NewLoggingService(log, a.repo)

	log.Debugw("configured",
		"rates_url", cfg.RatesURL,
		"cache", cache.Describe(),
		"refresh_interval", cfg.RefreshInterval,
	)
	return a, nil
}

func (a *app) cache() (repository.Cache, error) {
	switch a.cfg.CacheBackend {
	case config.BackendRedis:
		rdb := redis.NewClient(&redis.Options{
			Addr:     a.cfg.RedisAddr,
			Password: a.cfg.RedisPassword,
			DB:       a.cfg.RedisDB,
		})
		a.closers = append(a.closers, rdb.Close)
		return redisstore.New(rdb, a.cfg.RedisTTL), nil
	default:
		s, err := jsonstore.New(a.cfg.CachePath)
		if err != nil {
			return nil, fmt.Errorf("cache: %w", err)
		}
		return s, nil
	}
}

// close waits for pending cache writes before releasing connections.
func (a *app) close() {
	if a.repo != nil {
		a.repo.Wait()
	}
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.logger.Warnw("close failed", "error", err)
		}
	}
}
