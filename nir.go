// Package nir serializes shader IR graphs to compact binary blobs
// and reconstructs them.
//
// The IR is a typed SSA graph (package ir) built for caching compiled
// shaders: a driver lowers a shader once, stores the blob, and later
// restores the graph without re-running the front end. The codec
// (package serialize) writes a positional format, naming objects by
// dense integer IDs assigned in traversal order, so blobs carry no
// pointers and identical graphs produce identical bytes.
//
// Example round trip:
//
//	data := nir.Serialize(shader, true)
//	clone := nir.Deserialize(data)
//
// Deserialize trusts its input and panics on malformed bytes; callers
// holding untrusted data should store and fetch it through package
// cache, which verifies integrity before decoding, or gate the call
// themselves.
//
// For incremental writing, shared buffers, or mixed payloads, use the
// serialize and blob packages directly:
//
//	w := blob.NewWriter()
//	serialize.Serialize(w, shader, serialize.Options{Strip: true})
//	payload := w.Bytes()
package nir

import (
	"github.com/gogpu/nir/blob"
	"github.com/gogpu/nir/ir"
	"github.com/gogpu/nir/serialize"
)

// Version is the release version of the module.
const Version = "0.1.0-dev"

// Serialize returns the blob form of s. With strip set, debug names
// and non-interface locations are omitted, yielding the canonical
// form cache keys are computed over.
func Serialize(s *ir.Shader, strip bool) []byte {
	w := blob.NewWriter()
	serialize.Serialize(w, s, serialize.Options{Strip: strip})
	return w.Bytes()
}

// Deserialize rebuilds the shader graph stored in data. The bytes
// must have been produced by Serialize and arrive intact; malformed
// input panics.
func Deserialize(data []byte) *ir.Shader {
	return serialize.Deserialize(blob.NewReader(data))
}

// SerializeDeserialize rewrites s in place through a serialization
// round trip. The result is semantically identical with canonical
// object numbering: the graph a consumer of the blob would see.
func SerializeDeserialize(s *ir.Shader) {
	serialize.SerializeDeserialize(s, serialize.Options{})
}
