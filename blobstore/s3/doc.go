// Package s3 provides an S3 implementation of the blobstore.BlobStore
// interface for hosting packed dictionaries.
//
// # Usage
//
//	store, err := s3.New(ctx, "my-bucket", s3.WithPrefix("dicts/"))
//	if err != nil { ... }
//
//	err = blobstore.PullDictionary(ctx, store, "main_en.dict", "/data/dicts/main_en")
//
// # Features
//
//   - Range reads for partial fetches
//   - Multipart uploads for large dictionaries
//   - Automatic pagination for listing
//   - Configurable prefix for multi-tenant isolation
package s3
