// Package s3fs implements backend.Client on Amazon S3 via aws-sdk-go-v2.
//
// Files map to objects under a bucket and root prefix; directories are
// zero-byte marker objects with a trailing slash. Positional reads use
// ranged GETs, listings use the ListObjectsV2 paginator with a delimiter,
// and a writable file streams its appends through a manager.Uploader that
// completes on Close — Flush and Sync are accepted but cannot make bytes
// visible before the handle is closed. Renaming directories is not
// supported on object storage.
package s3fs
