package cache

import (
	"encoding/hex"
	"fmt"

	"github.com/zeebo/blake3"
)

// Key is a 32-byte BLAKE3 digest addressing one cache entry.
type Key [32]byte

// entryDomainKey is the fixed key for BLAKE3 keyed hashing. Keyed
// mode gives domain separation: bytes hashed here can never collide
// with digests computed elsewhere. The value is the ASCII domain
// name zero-padded to 32 bytes, readable in hex dumps. Changing it
// invalidates every existing cache.
var entryDomainKey = [32]byte{
	'n', 'i', 'r', '.', 'c', 'a', 'c', 'h', 'e', '.', 'e', 'n', 't', 'r', 'y',
	0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
}

// ComputeKey derives the cache key for a payload. driverKeys is the
// identity blob of the producing driver (version, device, build
// flags); hashing it alongside the payload keeps entries from
// different producers apart even when payloads coincide.
func ComputeKey(driverKeys, payload []byte) Key {
	hasher, err := blake3.NewKeyed(entryDomainKey[:])
	if err != nil {
		panic("cache: BLAKE3 keyed hash initialization failed: " + err.Error())
	}
	hasher.Write(driverKeys)
	hasher.Write(payload)
	var key Key
	copy(key[:], hasher.Sum(nil))
	return key
}

// String returns the canonical 64-character hex form of the key,
// used for entry filenames, logs, and CLI arguments.
func (k Key) String() string {
	return hex.EncodeToString(k[:])
}

// ParseKey parses a 64-character hex string into a Key.
func ParseKey(s string) (Key, error) {
	var key Key
	decoded, err := hex.DecodeString(s)
	if err != nil {
		return key, fmt.Errorf("parsing cache key: %w", err)
	}
	if len(decoded) != len(key) {
		return key, fmt.Errorf("cache key is %d bytes, want %d", len(decoded), len(key))
	}
	copy(key[:], decoded)
	return key, nil
}
