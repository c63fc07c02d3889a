// Package minio provides a BlobStore implementation using the MinIO
// client, for hosting packed dictionaries on MinIO or any S3-compatible
// storage system such as Ceph, SeaweedFS or Garage.
//
// # Basic Usage
//
//	client, err := minio.New("localhost:9000", &minio.Options{
//	    Creds:  credentials.NewStaticV4("minioadmin", "minioadmin", ""),
//	    Secure: false,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	store := minioblob.NewStore(client, "dictionaries", "dicts/")
//	err = blobstore.PullDictionary(ctx, store, "main_en.dict", dictDir)
//
// No AWS dependency is required, which suits air-gapped deployments.
package minio
