// Package cache stores serialized shader blobs on disk, keyed by
// content.
//
// Entries live under a root directory, sharded by the first two hex
// characters of their key: <dir>/<xx>/<key>.nirc. Keys are keyed
// BLAKE3 digests over a driver identity blob plus the payload, so the
// same shader compiled by different driver versions never collides
// and a cache directory can be shared between machines.
//
// Each entry file is self-describing: a magic and version, CBOR
// metadata (driver id, creation time, payload size, key echo), a
// compression tag, and a CRC of the uncompressed payload. Get
// verifies all of these before returning bytes and silently drops
// entries that fail. The cache is the integrity gate in front of
// serialize.Deserialize, which trusts its input.
//
// Writes are atomic (temp file + rename), so readers never observe a
// partial entry. When the cache exceeds its maximum size, Put evicts
// least-recently-modified entries, probing a random shard first the
// way Mesa's shader cache does.
package cache
