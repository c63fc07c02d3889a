package blobstore

import (
	"context"
	"fmt"
	"io"

	"github.com/textinput/lexdict/archive"
)

// PushDictionary packs the dictionary in dictDir and uploads it to store
// under name as a single compressed blob.
func PushDictionary(ctx context.Context, store BlobStore, name, dictDir string, optFns ...archive.Option) error {
	w, err := store.Create(ctx, name)
	if err != nil {
		return fmt.Errorf("blobstore: create %q: %w", name, err)
	}
	if err := archive.Pack(w, dictDir, optFns...); err != nil {
		w.Close()
		return fmt.Errorf("blobstore: pack %s: %w", dictDir, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("blobstore: upload %q: %w", name, err)
	}
	return nil
}

// PullDictionary downloads the blob called name from store and installs it
// as the dictionary directory dictDir. The install goes through the same
// staging-and-rename commit a flush uses, so a failed or cancelled pull
// leaves any existing dictionary untouched.
func PullDictionary(ctx context.Context, store BlobStore, name, dictDir string) error {
	b, err := store.Open(ctx, name)
	if err != nil {
		return fmt.Errorf("blobstore: open %q: %w", name, err)
	}
	defer b.Close()

	r := io.NewSectionReader(b, 0, b.Size())
	if err := archive.Unpack(r, dictDir); err != nil {
		return fmt.Errorf("blobstore: unpack %q: %w", name, err)
	}
	return nil
}
