package blobstore

import (
	"context"
	"fmt"
	"io"

	"golang.org/x/sync/errgroup"
)

// Mirror copies every blob under prefix from src to dst, up to concurrency
// blobs in flight at once. Blobs already present in dst are overwritten.
// The first failure cancels the remaining copies.
func Mirror(ctx context.Context, dst, src BlobStore, prefix string, concurrency int) error {
	if concurrency <= 0 {
		concurrency = 1
	}

	names, err := src.List(ctx, prefix)
	if err != nil {
		return fmt.Errorf("blobstore: list %q: %w", prefix, err)
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for _, name := range names {
		name := name
		g.Go(func() error {
			if err := copyBlob(ctx, dst, src, name); err != nil {
				return fmt.Errorf("blobstore: mirror %q: %w", name, err)
			}
			return nil
		})
	}
	return g.Wait()
}

func copyBlob(ctx context.Context, dst, src BlobStore, name string) error {
	b, err := src.Open(ctx, name)
	if err != nil {
		return err
	}
	defer b.Close()

	w, err := dst.Create(ctx, name)
	if err != nil {
		return err
	}
	if _, err := io.Copy(w, io.NewSectionReader(b, 0, b.Size())); err != nil {
		w.Close()
		return err
	}
	return w.Close()
}
