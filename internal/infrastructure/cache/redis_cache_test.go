package cache

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNop(t *testing.T) {
	ctx := context.Background()
	var c Nop
	require.NoError(t, c.Set(ctx, "k", []byte("v"), time.Minute))
	b, ok, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, b)
}

func TestRedisCache_ErrorDeConexion(t *testing.T) {
	rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", DialTimeout: 50 * time.Millisecond, MaxRetries: -1})
	defer rdb.Close()
	c := NewRedisCache(rdb, "gmz:")

	_, ok, err := c.Get(context.Background(), "report:dashboard:2026-01-01")
	assert.False(t, ok)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "report:dashboard:2026-01-01")
	assert.Error(t, c.Set(context.Background(), "k", []byte("v"), time.Second))
}
