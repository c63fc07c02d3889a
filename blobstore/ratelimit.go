package blobstore

import (
	"context"

	"golang.org/x/time/rate"
)

// RateLimitedStore wraps a BlobStore and throttles the bytes moved through
// it. Dictionary syncs run in the background on end-user devices; the
// limit keeps them from saturating storage bandwidth.
type RateLimitedStore struct {
	inner   BlobStore
	limiter *rate.Limiter
}

// NewRateLimitedStore wraps inner with a bytes-per-second limit.
// bytesPerSec <= 0 means unlimited.
func NewRateLimitedStore(inner BlobStore, bytesPerSec int) *RateLimitedStore {
	var limiter *rate.Limiter
	if bytesPerSec > 0 {
		limiter = rate.NewLimiter(rate.Limit(bytesPerSec), bytesPerSec)
	}
	return &RateLimitedStore{inner: inner, limiter: limiter}
}

// waitN blocks until the limiter admits n bytes. Requests above the burst
// are split so arbitrarily large reads still pass.
func (s *RateLimitedStore) waitN(ctx context.Context, n int) error {
	if s.limiter == nil || n <= 0 {
		return nil
	}
	burst := s.limiter.Burst()
	for n > 0 {
		chunk := n
		if chunk > burst {
			chunk = burst
		}
		if err := s.limiter.WaitN(ctx, chunk); err != nil {
			return err
		}
		n -= chunk
	}
	return nil
}

func (s *RateLimitedStore) Open(ctx context.Context, name string) (Blob, error) {
	b, err := s.inner.Open(ctx, name)
	if err != nil {
		return nil, err
	}
	return &rateLimitedBlob{inner: b, store: s, ctx: ctx}, nil
}

func (s *RateLimitedStore) Create(ctx context.Context, name string) (WritableBlob, error) {
	w, err := s.inner.Create(ctx, name)
	if err != nil {
		return nil, err
	}
	return &rateLimitedWritableBlob{inner: w, store: s, ctx: ctx}, nil
}

func (s *RateLimitedStore) Put(ctx context.Context, name string, data []byte) error {
	if err := s.waitN(ctx, len(data)); err != nil {
		return err
	}
	return s.inner.Put(ctx, name, data)
}

func (s *RateLimitedStore) Delete(ctx context.Context, name string) error {
	return s.inner.Delete(ctx, name)
}

func (s *RateLimitedStore) List(ctx context.Context, prefix string) ([]string, error) {
	return s.inner.List(ctx, prefix)
}

// rateLimitedBlob charges the limiter before each read. The context of the
// Open call governs how long a throttled read may block.
type rateLimitedBlob struct {
	inner Blob
	store *RateLimitedStore
	ctx   context.Context
}

func (b *rateLimitedBlob) ReadAt(p []byte, off int64) (int, error) {
	if err := b.store.waitN(b.ctx, len(p)); err != nil {
		return 0, err
	}
	return b.inner.ReadAt(p, off)
}

func (b *rateLimitedBlob) Close() error {
	return b.inner.Close()
}

func (b *rateLimitedBlob) Size() int64 {
	return b.inner.Size()
}

type rateLimitedWritableBlob struct {
	inner WritableBlob
	store *RateLimitedStore
	ctx   context.Context
}

func (w *rateLimitedWritableBlob) Write(p []byte) (int, error) {
	if err := w.store.waitN(w.ctx, len(p)); err != nil {
		return 0, err
	}
	return w.inner.Write(p)
}

func (w *rateLimitedWritableBlob) Sync() error {
	return w.inner.Sync()
}

func (w *rateLimitedWritableBlob) Close() error {
	return w.inner.Close()
}
