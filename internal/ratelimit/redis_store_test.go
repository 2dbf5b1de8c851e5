//go:build integration

package ratelimit

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisStoreSlidingWindow(t *testing.T) {
	url := os.Getenv("REDIS_URL")
	if url == "" {
		t.Skip("REDIS_URL not set")
	}

	store, err := NewRedisStore(url)
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()
	require.NoError(t, store.Ping(ctx))

	// the script's PEXPIRE removes the key once the window has passed
	key := "test:" + uuid.NewString()

	start := time.Now()
	for i := 0; i < 3; i++ {
		allowed, count, oldest, err := store.RecordIfAllowed(ctx, key, start.Add(time.Duration(i)*time.Second), time.Minute, 3)
		require.NoError(t, err)
		assert.True(t, allowed)
		assert.Equal(t, i+1, count)
		assert.Equal(t, start.UnixMilli(), oldest.UnixMilli())
	}

	allowed, count, _, err := store.RecordIfAllowed(ctx, key, start.Add(10*time.Second), time.Minute, 3)
	require.NoError(t, err)
	assert.False(t, allowed)
	assert.Equal(t, 3, count)

	// the first entry has aged out
	allowed, count, oldest, err := store.RecordIfAllowed(ctx, key, start.Add(time.Minute), time.Minute, 3)
	require.NoError(t, err)
	assert.True(t, allowed)
	assert.Equal(t, 3, count)
	assert.Equal(t, start.Add(time.Second).UnixMilli(), oldest.UnixMilli())
}
