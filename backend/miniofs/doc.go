// Package miniofs implements backend.Client on MinIO and other
// S3-compatible object storage.
//
// Files map to objects under a bucket and root prefix; directories are
// zero-byte marker objects with a trailing slash. Positional reads use
// ranged GETs; a writable file streams its appends into a single PUT that
// completes on Close, so Flush and Sync are accepted but cannot make bytes
// visible before the handle is closed. Renaming directories is not
// supported on object storage.
package miniofs
