// Package memfs provides an in-memory backend.Client implementation.
//
// It has the full semantics the file adapters are written against: appends
// are immediately visible to open readers, rename refuses an existing
// target, and directory deletes are recursive. It needs no network and no
// disk, which makes it the reference backend for unit tests and a usable
// backend for ephemeral embedding.
//
// All operations are safe for concurrent use.
package memfs
