package storage

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// These tests talk to real servers and run only when the matching
// environment variable is set, e.g.
//
//	FLASHCLIP_TEST_REDIS_URL=redis://localhost:6379/15
//	FLASHCLIP_TEST_MONGODB_URI=mongodb://localhost:27017

func runLiveStore(t *testing.T, store Store) {
	t.Helper()
	ctx := context.Background()
	key := fmt.Sprintf("it-%d", time.Now().UnixNano())

	require.NoError(t, store.Put(ctx, key, []byte(`{"content":"live"}`), time.Minute))

	got, err := store.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, `{"content":"live"}`, string(got))

	taker, ok := store.(Taker)
	require.True(t, ok)

	got, err = taker.Take(ctx, key)
	require.NoError(t, err)
	assert.NotNil(t, got)

	got, err = taker.Take(ctx, key)
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = store.Get(ctx, "missing-"+key)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestRedisStoreLive(t *testing.T) {
	url := os.Getenv("FLASHCLIP_TEST_REDIS_URL")
	if url == "" {
		t.Skip("FLASHCLIP_TEST_REDIS_URL not set")
	}

	store, err := NewRedisStore(context.Background(), url, "flashclip-test:")
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	runLiveStore(t, store)
}

func TestMongoStoreLive(t *testing.T) {
	uri := os.Getenv("FLASHCLIP_TEST_MONGODB_URI")
	if uri == "" {
		t.Skip("FLASHCLIP_TEST_MONGODB_URI not set")
	}

	store, err := NewMongoStore(context.Background(), uri, "flashclip_test", "clips")
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	runLiveStore(t, store)
}

func TestNewRedisStoreBadURL(t *testing.T) {
	_, err := NewRedisStore(context.Background(), "not a url", "clip:")
	assert.Error(t, err)
}
