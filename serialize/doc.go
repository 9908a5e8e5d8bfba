// Package serialize converts shader graphs to and from a compact
// binary blob.
//
// The format is positional: every variable, function, register, block,
// and SSA value receives a dense integer ID in the order the writer
// first emits it, and the reader reconstructs the same IDs by replaying
// the identical traversal. Traversal order is stated once, as a shared
// section table walked by both Serialize and Deserialize, so the two
// sides cannot drift apart.
//
// Instructions are bit-packed: one 32-bit header word carries a 4-bit
// kind discriminant, kind-specific fields, and a shared 8-bit
// destination sub-field with quantized component-count and bit-size
// encodings. Sources are one word each, with a 20-bit object index and
// a kind-specific footer (swizzle and modifiers for arithmetic
// operands, a role tag for texture operands).
//
// Phi instructions may reference values and blocks that appear later
// in traversal order (loop back-edges). Both sides handle this with an
// explicit two-pass protocol: the writer reserves two words per phi
// source and patches them once the function body is complete; the
// reader queues raw IDs and resolves them, registering the deferred
// uses, after the body is read.
//
// The codec treats failure as a programming error, not input to
// recover from: exceeding the object ceiling, serializing an
// unsupported instruction, or decoding a malformed blob panics.
// Callers that accept untrusted bytes are expected to gate them with
// integrity checks (see the cache package) before deserializing.
package serialize
