// Package ir defines the NIR shader intermediate representation.
//
// The IR models one compiled shader as a graph of functions, basic
// blocks, and instructions in SSA form, connected by a structured
// control-flow tree (straight blocks, if-nodes, loop-nodes) rather
// than an arbitrary CFG.
//
// # Structure
//
// The IR is organized around a Shader type that contains:
//   - Variable lists: Uniforms, Inputs, Outputs, Shared, Globals, SystemValues
//   - Functions: signatures plus optional bodies (FunctionImpl)
//   - Info: stage-level metadata (ShaderInfo)
//   - ConstantData: a raw trailing constant block
//
// A FunctionImpl owns local variables, registers, and a control-flow
// tree (CFList). Control-flow lists alternate Block and If/Loop nodes
// and always begin and end with a Block; CFList maintains that
// invariant structurally, so a well-formed tree cannot be built
// without the implicit tail Block.
//
// # Values and uses
//
// Each value-producing instruction defines exactly one Def. Sources
// (Src) reference either a Def or a Register slot. Use lists are
// maintained at insertion time: Block.Append registers the uses of an
// instruction's sources, and PhiInstr.AddSrc registers uses for
// sources added after insertion.
//
// # Construction
//
// Builder provides a cursor-based API for assembling valid graphs:
//
//	b := ir.NewBuilder(impl)
//	one := b.LoadConst(32, 0x3f800000)
//	loop := b.PushLoop()
//	...
//	b.PopLoop()
//
// # References
//
// The representation follows NIR, Mesa's shader IR:
// https://docs.mesa3d.org/nir/
package ir
