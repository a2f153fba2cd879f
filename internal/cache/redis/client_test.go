package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupClient(t *testing.T) (*Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	return New(mr.Addr(), "", 0), mr
}

func TestClient_Ping(t *testing.T) {
	c, _ := setupClient(t)
	assert.NoError(t, c.Ping(context.Background()))
}

func TestClient_SetGetDel(t *testing.T) {
	c, mr := setupClient(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "conversations:all", `[{"conversationId":"conv_1"}]`, 10*time.Second))

	got, err := c.Get(ctx, "conversations:all")
	require.NoError(t, err)
	assert.Equal(t, `[{"conversationId":"conv_1"}]`, got)

	// TTL was applied.
	assert.Greater(t, mr.TTL("conversations:all"), time.Duration(0))

	require.NoError(t, c.Del(ctx, "conversations:all"))
	_, err = c.Get(ctx, "conversations:all")
	assert.Error(t, err)

	// Deleting a missing key is a no-op.
	assert.NoError(t, c.Del(ctx, "conversations:all"))
}

func TestClient_Incr(t *testing.T) {
	c, _ := setupClient(t)
	ctx := context.Background()

	n, err := c.Incr(ctx, "stats:messages_total")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = c.Incr(ctx, "stats:messages_total")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestClient_GetMissingKey(t *testing.T) {
	c, _ := setupClient(t)

	_, err := c.Get(context.Background(), "never-set")
	assert.Error(t, err)
}
