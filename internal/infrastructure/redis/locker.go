// Package redis implementa el bloqueo distribuido por producto sobre Redis (bsm/redislock),
// para varias instancias del API o de la CLI recalculando contra la misma base.
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bsm/redislock"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/jhoicas/costeo-api/internal/application/costing"
	"github.com/jhoicas/costeo-api/internal/domain"
	"github.com/jhoicas/costeo-api/pkg/config"
)

var _ costing.Locker = (*Locker)(nil)

// releaseTimeout tiempo máximo para liberar el lock aunque el ctx del caller ya esté cancelado.
const releaseTimeout = 5 * time.Second

// Locker implementa costing.Locker con un lock Redis de TTL fijo y reintento lineal.
type Locker struct {
	client *redislock.Client
	ttl    time.Duration
	opts   *redislock.Options
	log    zerolog.Logger
}

// NewClient abre la conexión y verifica con PING.
func NewClient(ctx context.Context, cfg config.RedisConfig) (*goredis.Client, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("ping redis %s: %w", cfg.Address, err)
	}
	return rdb, nil
}

// NewLocker construye el locker. RetryCount <= 0 = un solo intento.
func NewLocker(rdb goredis.UniversalClient, cfg config.LockConfig, log zerolog.Logger) *Locker {
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	retry := redislock.NoRetry()
	if cfg.RetryCount > 0 && cfg.RetryEvery > 0 {
		retry = redislock.LimitRetry(redislock.LinearBackoff(cfg.RetryEvery), cfg.RetryCount)
	}
	return &Locker{
		client: redislock.New(rdb),
		ttl:    ttl,
		opts:   &redislock.Options{RetryStrategy: retry},
		log:    log,
	}
}

// Lock obtiene key o devuelve domain.ErrLockNotObtained cuando se agotan los reintentos.
func (l *Locker) Lock(ctx context.Context, key string) (func(), error) {
	lock, err := l.client.Obtain(ctx, key, l.ttl, l.opts)
	if err != nil {
		if errors.Is(err, redislock.ErrNotObtained) {
			return nil, fmt.Errorf("%s: %w", key, domain.ErrLockNotObtained)
		}
		return nil, fmt.Errorf("obtener lock %s: %w", key, err)
	}
	return func() {
		rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), releaseTimeout)
		defer cancel()
		if err := lock.Release(rctx); err != nil && !errors.Is(err, redislock.ErrLockNotHeld) {
			l.log.Warn().Err(err).Str("key", key).Msg("no se pudo liberar el lock redis")
		}
	}, nil
}
