package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"credential-service/internal/domain/student"
)

// CredentialCache defines the interface for caching positive credential
// lookups, so a run of identical keystroke-driven validations does not hit
// the record store every time.
type CredentialCache interface {
	// Get retrieves a cached match for the pair.
	// Returns nil if the pair has no cached match.
	Get(ctx context.Context, email, password string) (*student.Student, error)

	// Set stores a matched student under the pair with the configured TTL.
	Set(ctx context.Context, s *student.Student) error
}

// RedisCredentialCache implements CredentialCache using Redis.
//
// Keys are SHA-256 digests of the (email, password) pair so raw credentials
// never appear in the keyspace, and values carry only the email and derived
// name. Entries expire by TTL; there is no invalidation path, so the TTL is
// the staleness bound after a new record is inserted.
type RedisCredentialCache struct {
	client *redis.Client
	ttl    time.Duration
	log    *zap.Logger
}

// NewRedisCredentialCache creates a new Redis-backed credential cache.
func NewRedisCredentialCache(client *redis.Client, ttl time.Duration, log *zap.Logger) CredentialCache {
	return &RedisCredentialCache{
		client: client,
		ttl:    ttl,
		log:    log,
	}
}

// cachedMatch is the stored shape; the password is deliberately omitted.
type cachedMatch struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

// cacheKey generates a Redis key for a credential pair.
func (c *RedisCredentialCache) cacheKey(email, password string) string {
	sum := sha256.Sum256([]byte(email + "\x00" + password))
	return "cred:" + hex.EncodeToString(sum[:])
}

// Get retrieves a cached credential match.
func (c *RedisCredentialCache) Get(ctx context.Context, email, password string) (*student.Student, error) {
	key := c.cacheKey(email, password)

	data, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		// Cache miss - not an error
		c.log.Debug("credential cache miss", zap.String("email", email))
		return nil, nil
	}
	if err != nil {
		c.log.Error("failed to get from credential cache", zap.String("email", email), zap.Error(err))
		return nil, err
	}

	var m cachedMatch
	if err := json.Unmarshal(data, &m); err != nil {
		c.log.Error("failed to unmarshal cached match", zap.String("email", email), zap.Error(err))
		return nil, err
	}

	c.log.Debug("credential cache hit", zap.String("email", email))
	return &student.Student{
		Email:    m.Email,
		Password: password,
		Name:     m.Name,
	}, nil
}

// Set stores a credential match with TTL.
func (c *RedisCredentialCache) Set(ctx context.Context, s *student.Student) error {
	if s == nil {
		return fmt.Errorf("cannot cache nil student")
	}

	key := c.cacheKey(s.Email, s.Password)

	data, err := json.Marshal(cachedMatch{Email: s.Email, Name: s.Name})
	if err != nil {
		c.log.Error("failed to marshal match for cache", zap.String("email", s.Email), zap.Error(err))
		return err
	}

	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		c.log.Error("failed to set credential cache", zap.String("email", s.Email), zap.Error(err))
		return err
	}

	c.log.Debug("cached credential match", zap.String("email", s.Email), zap.Duration("ttl", c.ttl))
	return nil
}
