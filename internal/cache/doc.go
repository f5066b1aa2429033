// Package cache provides the Lookup Cache that sits in front of the Record
// Store's read path.
//
// The cache never originates data. Every entry is a copy of a store result,
// either a record or the fact that the ID was absent, and disappears on
// Invalidate, on LRU eviction or when its TTL runs out.
//
// # Consistency
//
// Callers must Invalidate an ID after every successful write to it and before
// reporting the write as complete. Given that, a read that starts after the
// write never sees an older value:
//
//   - Invalidate removes the entry under the cache lock and bumps the
//     generation of that ID's in-flight loads. A load that began before the
//     bump does not store its result. Loads of other IDs are unaffected.
//   - Invalidate tells the singleflight group to forget the ID, so a reader
//     arriving later starts a new load instead of joining one in flight.
//
// Cross-reader staleness inside the validity window is not possible for this
// data: records are immutable and every write invalidates.
//
// # Disabling
//
// Disabled calls the loader every time. Results are identical with either
// implementation; only latency differs.
package cache
