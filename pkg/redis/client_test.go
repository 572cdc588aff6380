package redis

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newTestClient(t *testing.T, maxLen int64) (*Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	c := NewFromClient(rdb, zaptest.NewLogger(t), maxLen)
	t.Cleanup(func() { _ = c.Close() })
	return c, mr
}

func TestClient_PublishJSON(t *testing.T) {
	c, _ := newTestClient(t, 0)
	ctx := context.Background()

	sub := c.client.Subscribe(ctx, "midgard:depth:page.ingested")
	defer sub.Close()
	_, err := sub.Receive(ctx)
	require.NoError(t, err)

	c.PublishJSON(ctx, "midgard:depth:page.ingested", map[string]any{"series": "depth", "written": 3})

	msg, err := sub.ReceiveTimeout(ctx, 2*time.Second)
	require.NoError(t, err)
	m, ok := msg.(*redis.Message)
	require.True(t, ok)

	var got map[string]any
	require.NoError(t, json.Unmarshal([]byte(m.Payload), &got))
	assert.Equal(t, "depth", got["series"])

	entries, err := c.client.XRange(ctx, "midgard:depth:page.ingested", "-", "+").Result()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Contains(t, entries[0].Values["data"], `"written":3`)
}

func TestClient_XAddRespectsMaxLen(t *testing.T) {
	c, _ := newTestClient(t, 2)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.NotEmpty(t, c.XAdd(ctx, "s", map[string]interface{}{"i": i}))
	}
	n, err := c.client.XLen(ctx, "s").Result()
	require.NoError(t, err)
	assert.LessOrEqual(t, n, int64(5))
}

func TestClient_HealthAndBestEffortPublish(t *testing.T) {
	c, mr := newTestClient(t, 0)
	ctx := context.Background()
	require.NoError(t, c.Health(ctx))

	mr.Close()
	assert.Error(t, c.Health(ctx))
	assert.NotPanics(t, func() {
		c.Publish(ctx, "ch", "x")
		assert.Empty(t, c.XAdd(ctx, "s", map[string]interface{}{"a": 1}))
	})
}

func TestClient_PSubscribeMatchesEverySeries(t *testing.T) {
	c, _ := newTestClient(t, 0)
	ctx := context.Background()

	sub := c.PSubscribe(ctx, "midgard:*:page.ingested")
	defer sub.Close()
	_, err := sub.Receive(ctx)
	require.NoError(t, err)

	c.Publish(ctx, "midgard:swap:page.ingested", "a")
	c.Publish(ctx, "other:swap:page.ingested", "b")
	c.Publish(ctx, "midgard:earnings:page.ingested", "c")

	var channels []string
	for len(channels) < 2 {
		msg, err := sub.ReceiveTimeout(ctx, 2*time.Second)
		require.NoError(t, err)
		if m, ok := msg.(*redis.Message); ok {
			channels = append(channels, m.Channel)
		}
	}
	assert.Equal(t, []string{"midgard:swap:page.ingested", "midgard:earnings:page.ingested"}, channels)
}
