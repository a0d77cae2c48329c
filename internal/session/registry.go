package session

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/workforce-service/internal/config"
	"github.com/spec-kit/workforce-service/internal/observability"
)

const sessionKeyPrefix = "session:"

// Registry is the single source of truth for which token identifier is
// currently authoritative for a subject. Implementations must never surface
// store failures to callers.
type Registry interface {
	// Put records tokenID as the authoritative token for the subject and
	// returns the token identifier it superseded, if any.
	Put(ctx context.Context, subjectID, tokenID string, ttl time.Duration) (previous string)
	// Get returns the currently authoritative token identifier for the subject.
	Get(ctx context.Context, subjectID string) (tokenID string, found bool)
	// Remove deletes the subject's session record (explicit logout).
	Remove(ctx context.Context, subjectID string)
}

// redisRegistry backs the registry with a shared Redis store and degrades to
// a bounded in-process cache when the store is unreachable. The fallback
// trades cross-instance consistency for availability; every degradation is
// logged and counted.
type redisRegistry struct {
	client   *redis.Client
	timeout  time.Duration
	fallback *Cache[string]
	logger   *zap.Logger
	metrics  *observability.Metrics
}

// NewRedisRegistry builds the production registry.
func NewRedisRegistry(client *redis.Client, cfg config.AuthConfig, logger *zap.Logger, metrics *observability.Metrics) Registry {
	return &redisRegistry{
		client:   client,
		timeout:  cfg.SessionStoreTimeout(),
		fallback: NewCache[string](cfg.SessionFallbackSize),
		logger:   logger,
		metrics:  metrics,
	}
}

func (r *redisRegistry) Put(ctx context.Context, subjectID, tokenID string, ttl time.Duration) string {
	opCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	prev, err := r.client.SetArgs(opCtx, sessionKey(subjectID), tokenID, redis.SetArgs{
		TTL: ttl,
		Get: true,
	}).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		r.degrade("put", err)
		previous, _ := r.fallback.Get(subjectID)
		r.fallback.Set(subjectID, tokenID, ttl)
		return previous
	}
	return prev
}

func (r *redisRegistry) Get(ctx context.Context, subjectID string) (string, bool) {
	opCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	val, err := r.client.Get(opCtx, sessionKey(subjectID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false
	}
	if err != nil {
		r.degrade("get", err)
		return r.fallback.Get(subjectID)
	}
	return val, true
}

func (r *redisRegistry) Remove(ctx context.Context, subjectID string) {
	opCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	// The fallback copy goes regardless so a recovered store cannot
	// resurrect a logged-out session from stale in-process state.
	r.fallback.Delete(subjectID)

	if err := r.client.Del(opCtx, sessionKey(subjectID)).Err(); err != nil {
		r.degrade("remove", err)
	}
}

func (r *redisRegistry) degrade(op string, err error) {
	r.logger.Warn("session store unavailable, using in-process fallback",
		zap.String("op", op),
		zap.Error(err),
	)
	r.metrics.RecordStoreFallback(op)
}

func sessionKey(subjectID string) string {
	return sessionKeyPrefix + subjectID
}
