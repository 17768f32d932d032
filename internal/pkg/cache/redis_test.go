package cache

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNilClientDegrades(t *testing.T) {
	var c *Client
	ctx := context.Background()

	assert.False(t, c.Enabled())
	assert.NoError(t, c.BlacklistToken(ctx, "jti", time.Minute))

	blacklisted, err := c.IsBlacklisted(ctx, "jti")
	require.NoError(t, err)
	assert.False(t, blacklisted)

	allowed, err := c.CheckRateLimit(ctx, "1.2.3.4:/api/v1/auth/login", 1, time.Minute)
	require.NoError(t, err)
	assert.True(t, allowed)

	assert.NoError(t, c.Ping(ctx))
	assert.NoError(t, c.Close())
}

func TestBlacklistToken_SkipsExpired(t *testing.T) {
	// no server is listening here; a call that reaches Redis would fail
	rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", DialTimeout: 50 * time.Millisecond, MaxRetries: -1})
	c := NewFromRedis(rdb, zerolog.Nop())
	defer c.Close()

	assert.NoError(t, c.BlacklistToken(context.Background(), "jti", 0))
	assert.NoError(t, c.BlacklistToken(context.Background(), "", time.Minute))

	_, err := c.IsBlacklisted(context.Background(), "jti")
	assert.Error(t, err)
}

func TestCheckRateLimit_ZeroLimitAllows(t *testing.T) {
	rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", DialTimeout: 50 * time.Millisecond, MaxRetries: -1})
	c := NewFromRedis(rdb, zerolog.Nop())
	defer c.Close()

	allowed, err := c.CheckRateLimit(context.Background(), "k", 0, time.Minute)
	require.NoError(t, err)
	assert.True(t, allowed)

	_, err = c.CheckRateLimit(context.Background(), "k", 5, time.Minute)
	assert.Error(t, err)
}
