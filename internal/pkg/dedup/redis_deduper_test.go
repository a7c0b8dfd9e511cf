package dedup

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeduper(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	d := NewDeduper(client, "stripe:event", 0)
	ctx := context.Background()

	seen, err := d.Seen(ctx, "evt_1")
	require.NoError(t, err)
	assert.False(t, seen)

	first, err := d.MarkProcessed(ctx, "evt_1")
	require.NoError(t, err)
	assert.True(t, first)

	again, err := d.MarkProcessed(ctx, "evt_1")
	require.NoError(t, err)
	assert.False(t, again)

	seen, err = d.Seen(ctx, "evt_1")
	require.NoError(t, err)
	assert.True(t, seen)
	assert.Equal(t, DefaultTTL, mr.TTL("stripe:event:evt_1"))

	mr.FastForward(DefaultTTL + time.Second)
	seen, err = d.Seen(ctx, "evt_1")
	require.NoError(t, err)
	assert.False(t, seen)
}

func TestDeduper_RedisDown(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()
	mr.Close()

	d := NewDeduper(client, "stripe:event", time.Minute)
	_, err := d.Seen(context.Background(), "evt_1")
	assert.Error(t, err)

	_, err = d.MarkProcessed(context.Background(), "evt_1")
	assert.Error(t, err)
}
