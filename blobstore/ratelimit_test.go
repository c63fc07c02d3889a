package blobstore

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimitedStore_Passthrough(t *testing.T) {
	ctx := context.Background()
	store := NewRateLimitedStore(NewMemoryStore(), 0)

	data := bytes.Repeat([]byte{0x42}, 1024)
	require.NoError(t, store.Put(ctx, "blob", data))

	blob, err := store.Open(ctx, "blob")
	require.NoError(t, err)
	defer blob.Close()

	buf := make([]byte, len(data))
	n, err := blob.ReadAt(buf, 0)
	require.NoError(t, err)
	assert.Equal(t, len(data), n)
	assert.Equal(t, data, buf)
}

func TestRateLimitedStore_SplitsOversizedRequests(t *testing.T) {
	ctx := context.Background()
	// Burst of 64KiB with a huge rate: a 1MiB transfer must be split into
	// burst-sized waits instead of failing outright.
	store := NewRateLimitedStore(NewMemoryStore(), 1<<30)
	store.limiter.SetBurst(64 * 1024)

	data := bytes.Repeat([]byte{7}, 1<<20)
	require.NoError(t, store.Put(ctx, "big", data))

	blob, err := store.Open(ctx, "big")
	require.NoError(t, err)
	defer blob.Close()

	buf := make([]byte, len(data))
	_, err = blob.ReadAt(buf, 0)
	require.NoError(t, err)
	assert.Equal(t, data, buf)
}

func TestRateLimitedStore_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// 1 byte/sec cannot admit anything on a dead context.
	store := NewRateLimitedStore(NewMemoryStore(), 1)
	err := store.Put(ctx, "blob", []byte("data"))
	require.Error(t, err)
}

func TestRateLimitedStore_WriterIsThrottledByCreateContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	store := NewRateLimitedStore(NewMemoryStore(), 1)

	w, err := store.Create(ctx, "blob")
	require.NoError(t, err)
	cancel()

	_, err = w.Write(bytes.Repeat([]byte{1}, 16))
	require.Error(t, err)
}
