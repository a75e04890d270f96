// Package backend defines the narrow client contract for a remote,
// append-oriented distributed filesystem.
//
// The [Client] interface mirrors the primitive operations such systems
// expose (open, read, pread, write, flush, sync, stat, list, delete,
// rename, mkdir). Everything above this package — the engine-facing file
// adapters in the root dfsenv package — is written against this contract
// only, so any storage system that can satisfy it can serve as a backend.
//
// # Built-in Implementations
//
//   - memfs.FS: In-memory backend with full append visibility (tests, embedding)
//   - miniofs.Client: MinIO and S3-compatible object storage
//   - s3fs.Client: Amazon S3 via aws-sdk-go-v2
//
// # Fault Injection
//
// [FaultyClient] wraps any Client and injects failures, short reads and
// short writes per path pattern. Use it to exercise error paths in tests:
//
//	fc := backend.NewFaultyClient(memfs.New())
//	fc.AddRule("CURRENT", backend.Fault{FailWrite: true})
package backend
