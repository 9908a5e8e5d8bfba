// Package blob provides the flat binary buffer underlying shader
// serialization.
//
// A Writer appends little-endian fixed-width integers, raw byte runs,
// and NUL-terminated strings to a growing buffer. Word slots whose
// values are only known later (object counts, phi sources) are
// reserved with ReserveUint32 and backfilled with PatchUint32.
//
// A Reader consumes the same encoding sequentially. The two sides
// share no framing: every read must mirror the write that produced
// it, and any overrun or malformed string panics. Callers are
// expected to verify integrity (checksums, versioning) before handing
// bytes to a Reader.
package blob
