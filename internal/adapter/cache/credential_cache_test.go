package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"credential-service/internal/domain/student"
)

// setupTestRedis creates a miniredis instance for testing
func setupTestRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
	t.Cleanup(func() {
		_ = client.Close()
	})
	return client, mr
}

func TestRedisCredentialCache_SetAndGet(t *testing.T) {
	client, _ := setupTestRedis(t)

	logger := zaptest.NewLogger(t)
	cache := NewRedisCredentialCache(client, 30*time.Second, logger)

	s := &student.Student{
		Email:    "john@example.com",
		Password: "abc12345",
		Name:     "John",
	}

	err := cache.Set(context.Background(), s)
	require.NoError(t, err)

	cached, err := cache.Get(context.Background(), "john@example.com", "abc12345")
	require.NoError(t, err)
	require.NotNil(t, cached)

	assert.Equal(t, s.Email, cached.Email)
	assert.Equal(t, s.Name, cached.Name)
	assert.Equal(t, s.Password, cached.Password)
}

func TestRedisCredentialCache_Get_Miss(t *testing.T) {
	client, _ := setupTestRedis(t)

	logger := zaptest.NewLogger(t)
	cache := NewRedisCredentialCache(client, 30*time.Second, logger)

	cached, err := cache.Get(context.Background(), "john@example.com", "abc12345")
	require.NoError(t, err)
	assert.Nil(t, cached)
}

func TestRedisCredentialCache_KeyVariesWithPassword(t *testing.T) {
	client, _ := setupTestRedis(t)

	logger := zaptest.NewLogger(t)
	cache := NewRedisCredentialCache(client, 30*time.Second, logger)

	require.NoError(t, cache.Set(context.Background(), &student.Student{
		Email:    "john@example.com",
		Password: "abc12345",
		Name:     "John",
	}))

	// A different password must not hit the cached entry
	cached, err := cache.Get(context.Background(), "john@example.com", "zzz99999")
	require.NoError(t, err)
	assert.Nil(t, cached)
}

func TestRedisCredentialCache_RawCredentialsNotInKeyspace(t *testing.T) {
	client, mr := setupTestRedis(t)

	logger := zaptest.NewLogger(t)
	cache := NewRedisCredentialCache(client, 30*time.Second, logger)

	require.NoError(t, cache.Set(context.Background(), &student.Student{
		Email:    "john@example.com",
		Password: "abc12345",
		Name:     "John",
	}))

	for _, key := range mr.Keys() {
		assert.NotContains(t, key, "john@example.com")
		assert.NotContains(t, key, "abc12345")
	}
}

func TestRedisCredentialCache_Set_NilStudent(t *testing.T) {
	client, _ := setupTestRedis(t)

	logger := zaptest.NewLogger(t)
	cache := NewRedisCredentialCache(client, 30*time.Second, logger)

	err := cache.Set(context.Background(), nil)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "cannot cache nil student")
}

func TestRedisCredentialCache_Expiry(t *testing.T) {
	client, mr := setupTestRedis(t)

	logger := zaptest.NewLogger(t)
	cache := NewRedisCredentialCache(client, 30*time.Second, logger)

	require.NoError(t, cache.Set(context.Background(), &student.Student{
		Email:    "john@example.com",
		Password: "abc12345",
		Name:     "John",
	}))

	mr.FastForward(31 * time.Second)

	cached, err := cache.Get(context.Background(), "john@example.com", "abc12345")
	require.NoError(t, err)
	assert.Nil(t, cached)
}

func TestRedisProvisionGuard_AcquireRelease(t *testing.T) {
	client, mr := setupTestRedis(t)

	logger := zaptest.NewLogger(t)
	guard := NewRedisProvisionGuard(client, 5*time.Minute, logger)

	ctx := context.Background()

	ok, err := guard.Acquire(ctx, "x@y.com")
	require.NoError(t, err)
	assert.True(t, ok)

	// Second acquire within the TTL is refused
	ok, err = guard.Acquire(ctx, "x@y.com")
	require.NoError(t, err)
	assert.False(t, ok)

	// Released key can be re-acquired
	require.NoError(t, guard.Release(ctx, "x@y.com"))
	ok, err = guard.Acquire(ctx, "x@y.com")
	require.NoError(t, err)
	assert.True(t, ok)

	// Expired key can be re-acquired
	mr.FastForward(6 * time.Minute)
	ok, err = guard.Acquire(ctx, "x@y.com")
	require.NoError(t, err)
	assert.True(t, ok)
}
