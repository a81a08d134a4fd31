package app

import (
	"context"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
)

func TestKeyspace(t *testing.T) {
	ctx := context.Background()

	assert.Equal(t, "session", keyspace(redis.NewStringCmd(ctx, "getex", "session:abc", "ex", 60)))
	assert.Equal(t, "lock", keyspace(redis.NewBoolCmd(ctx, "set", "lock:payment:abc", "1", "nx")))
	assert.Equal(t, "plain", keyspace(redis.NewStringCmd(ctx, "get", "plain")))
	assert.Equal(t, "metro", keyspace(redis.NewStatusCmd(ctx, "ping")))
}
