// Package s3 provides a small client for S3-compatible object storage.
//
// The cluster member registry keeps one JSON object per node in a bucket;
// this package covers the bucket and object calls the registry needs and
// maps provider error codes to [IsNotFound].
package s3
