package serialize

import (
	"github.com/gogpu/nir/blob"
	"github.com/gogpu/nir/ir"
)

// Options control serialization.
type Options struct {
	// Strip drops debug-only data: the shader name and label,
	// variable, register, value and function names, and the layout
	// locations of variables that are not shader inputs or outputs.
	// Stripped blobs are suitable as canonical cache payloads.
	Strip bool
}

// section is one top-level segment of the blob. Writer and reader walk
// the same table, which keeps the two traversals aligned by
// construction.
type section struct {
	write func(*writer)
	read  func(*reader)
}

var sections = []section{
	{(*writer).writeObjectCount, (*reader).readObjectCount},
	{(*writer).writeInfo, (*reader).readInfo},
	{(*writer).writeVarLists, (*reader).readVarLists},
	{(*writer).writeStats, (*reader).readStats},
	{(*writer).writeSignatures, (*reader).readSignatures},
	{(*writer).writeBodies, (*reader).readBodies},
	{(*writer).writeConstantData, (*reader).readConstantData},
}

// varLists enumerates the shader-level variable lists in blob order.
var varLists = []func(*ir.Shader) *[]*ir.Variable{
	func(s *ir.Shader) *[]*ir.Variable { return &s.Uniforms },
	func(s *ir.Shader) *[]*ir.Variable { return &s.Inputs },
	func(s *ir.Shader) *[]*ir.Variable { return &s.Outputs },
	func(s *ir.Shader) *[]*ir.Variable { return &s.Shared },
	func(s *ir.Shader) *[]*ir.Variable { return &s.Globals },
	func(s *ir.Shader) *[]*ir.Variable { return &s.SystemValues },
}

// Serialize appends the shader's binary form to b. The shader is not
// modified. Serialize panics on graphs that violate codec invariants:
// unrepresentable shapes, unregistered references, parallel copies, or
// more than MaxObjects objects.
func Serialize(b *blob.Writer, s *ir.Shader, opts Options) {
	w := &writer{b: b, s: s, idx: newWriteIndex(), strip: opts.Strip}
	for _, sec := range sections {
		sec.write(w)
	}
	b.PatchUint32(w.countOffset, w.idx.count())
}

// Deserialize reads one shader from b, leaving the reader positioned
// after it. It panics on malformed input; callers are expected to
// verify blob integrity before decoding.
func Deserialize(b *blob.Reader) *ir.Shader {
	r := &reader{b: b, s: &ir.Shader{}}
	for _, sec := range sections {
		sec.read(r)
	}
	return r.s
}

// SerializeDeserialize replaces s's contents with the result of a
// serialization round trip, normalizing the in-memory graph to
// exactly what a cache hit would produce.
func SerializeDeserialize(s *ir.Shader, opts Options) {
	w := blob.NewWriter()
	Serialize(w, s, opts)
	*s = *Deserialize(blob.NewReader(w.Bytes()))
	for _, fn := range s.Functions {
		fn.Shader = s
	}
}
