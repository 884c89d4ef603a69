package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisProvisionGuard implements the provisioning dedupe contract with a
// per-email key set before the credential email goes out. A repeated
// request for the same email inside the TTL fails to acquire and is treated
// as an idempotent replay by the caller.
type RedisProvisionGuard struct {
	client *redis.Client
	ttl    time.Duration
	log    *zap.Logger
}

// NewRedisProvisionGuard creates a new Redis-backed provisioning guard.
func NewRedisProvisionGuard(client *redis.Client, ttl time.Duration, log *zap.Logger) *RedisProvisionGuard {
	return &RedisProvisionGuard{
		client: client,
		ttl:    ttl,
		log:    log,
	}
}

func (g *RedisProvisionGuard) guardKey(email string) string {
	return fmt.Sprintf("provision:%s", email)
}

// Acquire claims the dedupe key for the email. It returns false when the
// key is already held.
func (g *RedisProvisionGuard) Acquire(ctx context.Context, email string) (bool, error) {
	ok, err := g.client.SetNX(ctx, g.guardKey(email), time.Now().UTC().Format(time.RFC3339), g.ttl).Result()
	if err != nil {
		g.log.Error("failed to acquire provision guard", zap.String("email", email), zap.Error(err))
		return false, err
	}
	return ok, nil
}

// Release frees the dedupe key after a failed provisioning attempt so the
// client may retry.
func (g *RedisProvisionGuard) Release(ctx context.Context, email string) error {
	if err := g.client.Del(ctx, g.guardKey(email)).Err(); err != nil {
		g.log.Error("failed to release provision guard", zap.String("email", email), zap.Error(err))
		return err
	}
	return nil
}
