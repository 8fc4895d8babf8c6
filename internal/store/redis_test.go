package store

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRedisFlagsBadURL(t *testing.T) {
	_, err := NewRedisFlags(context.Background(), "not a url")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing redis url")
}

func TestRedisFlags(t *testing.T) {
	url := os.Getenv("SAFESIGNAL_TEST_REDIS_URL")
	if url == "" {
		t.Skip("SAFESIGNAL_TEST_REDIS_URL not set")
	}

	ctx := context.Background()
	flags, err := NewRedisFlags(ctx, url)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = flags.ClearFlag(ctx, KeyWasOffline)
		flags.Close()
	})

	require.NoError(t, flags.ClearFlag(ctx, KeyWasOffline))

	set, err := flags.GetFlag(ctx, KeyWasOffline)
	require.NoError(t, err)
	assert.False(t, set)

	require.NoError(t, flags.SetFlag(ctx, KeyWasOffline))
	set, err = flags.GetFlag(ctx, KeyWasOffline)
	require.NoError(t, err)
	assert.True(t, set)

	require.NoError(t, flags.ClearFlag(ctx, KeyWasOffline))
	set, err = flags.GetFlag(ctx, KeyWasOffline)
	require.NoError(t, err)
	assert.False(t, set)
}
