// Package dfsenv adapts a storage engine's file-access contract onto a
// remote, append-oriented distributed filesystem.
//
// The engine sees ordinary file primitives — sequential reads, positional
// reads, append-only writes, directory listings, metadata queries, rename,
// advisory locking and a diagnostic log writer — while every operation is
// translated onto the narrow client API defined in the backend package.
//
// # Usage
//
//	env := dfsenv.NewEnv(client)
//
//	w, err := env.NewWritableFile("/db/000001.log")
//	if err != nil { ... }
//	if err := w.Append(record); err != nil { ... }
//	if err := w.Sync(); err != nil { ... }
//
// # Semantics the backend cannot provide
//
// The adapter is honest about the backend's limits rather than papering
// over them:
//
//   - RenameFile deletes the target first and then renames; a crash between
//     the two calls loses the target. There is no atomic rename.
//   - LockFile and UnlockFile succeed without locking anything.
//   - CreateDirIfMissing is a check-then-create sequence and can race with
//     a concurrent creator.
//   - NewRandomRWFile is refused with ErrNotSupported; the backend has no
//     safe in-place random-write primitive.
//
// All operations block until the backend call returns; there is no
// cancellation or timeout at this layer. Adapter instances are independent
// and hold no locks; concurrent use is safe exactly insofar as the
// backend.Client is safe for concurrent calls.
package dfsenv
