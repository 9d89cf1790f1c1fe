package redisstore

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/Makepad-fr/fxlist/internal/apperrors"
	"github.com/Makepad-fr/fxlist/internal/model"
)

func startRedis(t *testing.T) *redis.Client {
	t.Helper()
	if testing.Short() {
		t.Skip("redis container test skipped in -short mode")
	}
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "redis:7.0-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForListeningPort("6379/tcp"),
	}
	redisC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Skipf("no container runtime: %v", err)
	}
	t.Cleanup(func() { _ = redisC.Terminate(ctx) })

	host, err := redisC.Host(ctx)
	require.NoError(t, err)
	port, err := redisC.MappedPort(ctx, "6379")
	require.NoError(t, err)

	rdb := redis.NewClient(&redis.Options{
		Addr: fmt.Sprintf("%s:%s", host, port.Port()),
	})
	t.Cleanup(func() { _ = rdb.Close() })
	require.NoError(t, rdb.Ping(ctx).Err())
	return rdb
}

func TestStore(t *testing.T) {
	ctx := context.Background()
	rdb := startRedis(t)
	store := New(rdb, 0)

	records := []model.Currency{
		{ISOCode: "EUR", RateBasedOnEuro: 1},
		{ISOCode: "USD", RateBasedOnEuro: 1.12},
	}

	t.Run("empty cache", func(t *testing.T) {
		got, err := store.Load(ctx)
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("save and load", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, records))
		got, err := store.Load(ctx)
		require.NoError(t, err)
		assert.Equal(t, records, got)
	})

	t.Run("corrupt entry", func(t *testing.T) {
		require.NoError(t, rdb.Set(ctx, Key("EUR"), "{", 0).Err())
		_, err := store.Load(ctx)
		assert.ErrorIs(t, err, apperrors.ErrCache)
	})

	t.Run("clear", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, records))
		require.NoError(t, store.Clear(ctx))
		got, err := store.Load(ctx)
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("entry expires", func(t *testing.T) {
		short := New(rdb, time.Second)
		require.NoError(t, short.Save(ctx, records))
		assert.Eventually(t, func() bool {
			got, err := short.Load(ctx)
			return err == nil && len(got) == 0
		}, 5*time.Second, 100*time.Millisecond)
	})
}

func TestStore_Unreachable(t *testing.T) {
	rdb := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer rdb.Close()
	store := New(rdb, 0)

	_, err := store.Load(context.Background())
	assert.ErrorIs(t, err, apperrors.ErrCache)
	assert.ErrorIs(t, store.Save(context.Background(), nil), apperrors.ErrCache)
	assert.Equal(t, "redis 127.0.0.1:1 key fxlist:rates:EUR", store.Describe())
}
