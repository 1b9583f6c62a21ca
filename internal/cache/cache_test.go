package cache

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNop_AlwaysMisses(t *testing.T) {
	var c Cache = Nop{}
	require.NoError(t, c.Set(context.Background(), "k", "v", time.Minute))

	var got string
	ok, err := c.Get(context.Background(), "k", &got)
	assert.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, got)
}

func TestRedis_KeyPrefix(t *testing.T) {
	r := NewRedisWithClient(redis.NewClient(&redis.Options{Addr: "localhost:0"}), "dishfinder:")
	assert.Equal(t, "dishfinder:videos:dal:5", r.key("videos:dal:5"))
}

func TestNewRedis_InvalidURL(t *testing.T) {
	_, err := NewRedis(context.Background(), "not a url", "")
	assert.Error(t, err)
}
