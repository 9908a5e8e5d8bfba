package serialize

import (
	"fmt"

	"github.com/gogpu/nir/blob"
	"github.com/gogpu/nir/ir"
)

// Shader-info strings mask.
const (
	infoHasName  = 1 << 0
	infoHasLabel = 1 << 1
)

// Variable flags word.
const (
	varHasName = 1 << 0
	varHasInit = 1 << 1
)

// Function signature flags word.
const (
	fnIsEntryPoint = 1 << 0
	fnHasName      = 1 << 1
	fnHasImpl      = 1 << 2
)

// phiFixup records one phi source whose operand words were reserved
// during the first pass and are patched once the whole body has
// assigned its ids.
type phiFixup struct {
	offset int
	def    *ir.Def
	pred   *ir.Block
}

type writer struct {
	b     *blob.Writer
	s     *ir.Shader
	idx   *writeIndex
	strip bool

	countOffset int
	phiFixups   []phiFixup
}

func (w *writer) writeObjectCount() {
	w.countOffset = w.b.ReserveUint32()
}

func (w *writer) writeInfo() {
	info := &w.s.Info
	var mask uint32
	if !w.strip && info.Name != "" {
		mask |= infoHasName
	}
	if !w.strip && info.Label != "" {
		mask |= infoHasLabel
	}
	w.b.WriteUint32(mask)
	if mask&infoHasName != 0 {
		w.b.WriteString(info.Name)
	}
	if mask&infoHasLabel != 0 {
		w.b.WriteString(info.Label)
	}

	w.b.WriteUint8(uint8(info.Stage))
	w.b.WriteUint8(info.NumTextures)
	w.b.WriteUint8(info.NumUBOs)
	w.b.WriteUint8(info.NumSSBOs)
	w.b.WriteUint8(info.NumImages)
	w.b.WriteUint64(info.InputsRead)
	w.b.WriteUint64(info.OutputsWritten)
	w.b.WriteUint64(info.SystemValuesRead)
	w.b.WriteUint32(uint32(info.Flags))
	for _, v := range info.WorkgroupSize {
		w.b.WriteUint32(v)
	}
	w.b.WriteUint32(info.SharedSize)
}

func (w *writer) writeVarLists() {
	for _, list := range varLists {
		vars := *list(w.s)
		w.b.WriteUint32(uint32(len(vars)))
		for _, v := range vars {
			w.writeVariable(v)
		}
	}
}

// writeVariable assigns the variable its id before any payload so
// that the reader can mirror the registration at the same point.
func (w *writer) writeVariable(v *ir.Variable) {
	w.idx.assign(v)

	var flags uint32
	if !w.strip && v.Name != "" {
		flags |= varHasName
	}
	if v.ConstantInit != nil {
		flags |= varHasInit
	}
	w.b.WriteUint32(flags)
	if flags&varHasName != 0 {
		w.b.WriteString(v.Name)
	}
	w.writeType(v.Type)
	w.writeVarData(&v.Data)
	if flags&varHasInit != 0 {
		w.writeConstant(v.ConstantInit)
	}
}

func (w *writer) writeVarData(d *ir.VarData) {
	w.b.WriteUint32(uint32(d.Mode) | uint32(d.Flags)<<16)
	w.b.WriteUint8(uint8(d.Interp))
	loc := d.Location
	if w.strip && d.Mode&(ir.ModeShaderIn|ir.ModeShaderOut) == 0 {
		loc = 0
	}
	w.b.WriteUint32(uint32(loc))
	w.b.WriteUint32(d.DriverLocation)
	w.b.WriteUint32(d.Binding)
	w.b.WriteUint32(d.DescriptorSet)
	w.b.WriteUint32(uint32(d.Offset))
}

func (w *writer) writeConstant(c *ir.Constant) {
	for _, v := range c.Values {
		w.b.WriteUint64(v)
	}
	w.b.WriteUint32(uint32(len(c.Elements)))
	for _, e := range c.Elements {
		w.writeConstant(e)
	}
}

func (w *writer) writeType(t *ir.Type) {
	if t == nil {
		panic("nir/serialize: variable without a type")
	}
	switch inner := t.Inner.(type) {
	case ir.ScalarType:
		w.b.WriteUint8(typeScalar)
		w.b.WriteUint8(uint8(inner.Base))
		w.b.WriteUint8(inner.Bits)
	case ir.VectorType:
		w.b.WriteUint8(typeVector)
		w.b.WriteUint8(uint8(inner.Scalar.Base))
		w.b.WriteUint8(inner.Scalar.Bits)
		w.b.WriteUint8(inner.Size)
	case ir.MatrixType:
		w.b.WriteUint8(typeMatrix)
		w.b.WriteUint8(inner.Scalar.Bits)
		w.b.WriteUint8(inner.Columns)
		w.b.WriteUint8(inner.Rows)
	case ir.ArrayType:
		w.b.WriteUint8(typeArray)
		w.b.WriteUint32(inner.Length)
		w.b.WriteUint32(inner.Stride)
		w.writeType(inner.Elem)
	case ir.StructType:
		// Struct names are part of type identity and survive
		// stripping.
		w.b.WriteUint8(typeStruct)
		w.b.WriteString(t.Name)
		w.b.WriteUint32(uint32(len(inner.Fields)))
		for _, f := range inner.Fields {
			w.b.WriteString(f.Name)
			w.b.WriteUint32(f.Offset)
			w.writeType(f.Type)
		}
	case ir.SamplerType:
		w.b.WriteUint8(typeSampler)
		var bits uint8
		if inner.Array {
			bits |= 1
		}
		if inner.Shadow {
			bits |= 2
		}
		w.b.WriteUint8(uint8(inner.Dim))
		w.b.WriteUint8(bits)
	case ir.ImageType:
		w.b.WriteUint8(typeImage)
		var bits uint8
		if inner.Array {
			bits |= 1
		}
		w.b.WriteUint8(uint8(inner.Dim))
		w.b.WriteUint8(bits)
		w.b.WriteUint8(uint8(inner.Base))
	default:
		panic(fmt.Sprintf("nir/serialize: unhandled type %T", inner))
	}
}

func (w *writer) writeStats() {
	w.b.WriteUint32(w.s.NumInputs)
	w.b.WriteUint32(w.s.NumUniforms)
	w.b.WriteUint32(w.s.NumOutputs)
	w.b.WriteUint32(w.s.NumShared)
	w.b.WriteUint32(w.s.ScratchSize)
}

// writeSignatures writes every function's signature so that call
// instructions in any body can reference any callee. Bodies follow in
// a separate pass.
func (w *writer) writeSignatures() {
	w.b.WriteUint32(uint32(len(w.s.Functions)))
	for _, fn := range w.s.Functions {
		var flags uint32
		if fn.IsEntryPoint {
			flags |= fnIsEntryPoint
		}
		if !w.strip && fn.Name != "" {
			flags |= fnHasName
		}
		if fn.Impl != nil {
			flags |= fnHasImpl
		}
		w.b.WriteUint32(flags)
		if flags&fnHasName != 0 {
			w.b.WriteString(fn.Name)
		}
		w.idx.assign(fn)
		w.b.WriteUint32(uint32(len(fn.Params)))
		for _, p := range fn.Params {
			w.b.WriteUint32(uint32(p.NumComponents) | uint32(p.BitSize)<<8)
		}
	}
}

func (w *writer) writeBodies() {
	for _, fn := range w.s.Functions {
		if fn.Impl != nil {
			w.writeImpl(fn.Impl)
		}
	}
}

func (w *writer) writeImpl(impl *ir.FunctionImpl) {
	w.b.WriteUint32(uint32(len(impl.Locals)))
	for _, v := range impl.Locals {
		w.writeVariable(v)
	}
	w.b.WriteUint32(uint32(len(impl.Registers)))
	for _, reg := range impl.Registers {
		w.writeRegister(reg)
	}
	w.b.WriteUint32(impl.RegAlloc)

	w.phiFixups = w.phiFixups[:0]
	w.writeCFList(&impl.Body)
	w.fixupPhis()
}

func (w *writer) writeRegister(reg *ir.Register) {
	w.idx.assign(reg)
	w.b.WriteUint32(uint32(reg.NumComponents))
	w.b.WriteUint32(uint32(reg.BitSize))
	w.b.WriteUint32(reg.NumArrayElems)
	w.b.WriteUint32(reg.Index)
	if !w.strip && reg.Name != "" {
		w.b.WriteUint32(1)
		w.b.WriteString(reg.Name)
	} else {
		w.b.WriteUint32(0)
	}
}

func (w *writer) writeCFList(list *ir.CFList) {
	w.b.WriteUint32(uint32(len(list.Nodes)))
	for _, node := range list.Nodes {
		switch n := node.(type) {
		case *ir.Block:
			w.b.WriteUint32(cfBlock)
			w.writeBlock(n)
		case *ir.If:
			w.b.WriteUint32(cfIf)
			w.writeSrc(&n.Condition)
			w.writeCFList(&n.Then)
			w.writeCFList(&n.Else)
		case *ir.Loop:
			w.b.WriteUint32(cfLoop)
			w.writeCFList(&n.Body)
		default:
			panic(fmt.Sprintf("nir/serialize: unhandled control-flow node %T", node))
		}
	}
}

// writeBlock assigns the block id before its instructions so that phi
// sources in later blocks can reference it.
func (w *writer) writeBlock(b *ir.Block) {
	w.idx.assign(b)
	w.b.WriteUint32(uint32(len(b.Instrs)))
	for _, instr := range b.Instrs {
		w.writeInstr(instr)
	}
}

func (w *writer) writeInstr(instr ir.Instr) {
	switch i := instr.(type) {
	case *ir.AluInstr:
		w.writeAlu(i)
	case *ir.DerefInstr:
		w.writeDeref(i)
	case *ir.CallInstr:
		w.writeCall(i)
	case *ir.TexInstr:
		w.writeTex(i)
	case *ir.IntrinsicInstr:
		w.writeIntrinsic(i)
	case *ir.LoadConstInstr:
		w.writeLoadConst(i)
	case *ir.UndefInstr:
		w.writeUndef(i)
	case *ir.PhiInstr:
		w.writePhi(i)
	case *ir.JumpInstr:
		w.writeJump(i)
	case *ir.ParallelCopyInstr:
		panic("nir/serialize: parallel copies cannot be serialized")
	default:
		panic(fmt.Sprintf("nir/serialize: unhandled instruction %T", instr))
	}
}

// writeDest folds the destination sub-field into the header word,
// emits it, then writes the destination's trailing data: the fresh
// def id (and optional name) for SSA, or the register reference for
// register form.
func (w *writer) writeDest(header uint32, d *ir.Dest) {
	pd := packedDest{isSSA: d.IsSSA()}
	if pd.isSSA {
		pd.numComponents = d.SSA.NumComponents
		pd.bitSize = d.SSA.BitSize
		pd.flag = !w.strip && d.SSA.Name != ""
	} else {
		pd.flag = d.Reg.Indirect != nil
	}
	w.b.WriteUint32(header | packDest(pd)<<headerDestShift)

	if pd.isSSA {
		w.idx.assign(d.SSA)
		if pd.flag {
			w.b.WriteString(d.SSA.Name)
		}
		return
	}
	w.b.WriteUint32(w.idx.lookup(d.Reg.Reg))
	w.b.WriteUint32(d.Reg.BaseOffset)
	if d.Reg.Indirect != nil {
		w.writeSrc(d.Reg.Indirect)
	}
}

// writeSrcFull writes one source word with a caller-supplied footer,
// then the indirect source for indirect register references.
func (w *writer) writeSrcFull(s *ir.Src, footer uint32) {
	if s.IsSSA() {
		w.b.WriteUint32(packSrcWord(true, false, w.idx.lookup(s.SSA), footer))
		return
	}
	indirect := s.Reg.Indirect != nil
	w.b.WriteUint32(packSrcWord(false, indirect, w.idx.lookup(s.Reg.Reg), footer))
	w.b.WriteUint32(s.Reg.BaseOffset)
	if indirect {
		w.writeSrc(s.Reg.Indirect)
	}
}

func (w *writer) writeSrc(s *ir.Src) {
	w.writeSrcFull(s, 0)
}

func (w *writer) writeAlu(i *ir.AluInstr) {
	info := i.Op.Info()
	if info.Name == "invalid" {
		panic(fmt.Sprintf("nir/serialize: invalid alu op %d", i.Op))
	}
	if len(i.Srcs) != int(info.NumInputs) {
		panic(fmt.Sprintf("nir/serialize: alu %s has %d sources, expects %d",
			info.Name, len(i.Srcs), info.NumInputs))
	}

	header := kindAlu
	if i.Exact {
		header |= aluExactBit
	}
	if i.NoSignedWrap {
		header |= aluNoSignedWrapBit
	}
	if i.NoUnsignedWrap {
		header |= aluNoUnsignedWrapBit
	}
	if i.Dest.Saturate {
		header |= aluSaturateBit
	}
	header |= (uint32(i.Dest.WriteMask) & aluWriteMaskMask) << aluWriteMaskShift
	header |= uint32(i.Op) << aluOpShift
	w.writeDest(header, &i.Dest.Dest)

	for n := range i.Srcs {
		as := &i.Srcs[n]
		w.writeSrcFull(&as.Src, packAluFooter(as))
	}
}

func (w *writer) writeDeref(i *ir.DerefInstr) {
	header := kindDeref
	header |= (uint32(i.Kind) & derefKindMask) << derefKindShift
	header |= (uint32(i.Mode) & derefModeMask) << derefModeShift
	w.writeDest(header, &i.Dest)

	// The node type is written for every kind so that chains round-trip
	// without consulting variables or parents.
	w.writeType(i.Type)

	switch i.Kind {
	case ir.DerefVar:
		w.b.WriteUint32(w.idx.lookup(i.Var))
	case ir.DerefArray, ir.DerefPtrAsArray:
		w.writeSrc(&i.Parent)
		w.writeSrc(&i.Index)
	case ir.DerefArrayWildcard:
		w.writeSrc(&i.Parent)
	case ir.DerefStruct:
		w.writeSrc(&i.Parent)
		w.b.WriteUint32(i.StructIndex)
	case ir.DerefCast:
		w.writeSrc(&i.Parent)
		w.b.WriteUint32(i.CastPtrStride)
	default:
		panic(fmt.Sprintf("nir/serialize: unhandled deref kind %d", i.Kind))
	}
}

func (w *writer) writeCall(i *ir.CallInstr) {
	if len(i.Params) != len(i.Callee.Params) {
		panic(fmt.Sprintf("nir/serialize: call passes %d params, callee expects %d",
			len(i.Params), len(i.Callee.Params)))
	}
	w.b.WriteUint32(kindCall)
	w.b.WriteUint32(w.idx.lookup(i.Callee))
	for n := range i.Params {
		w.writeSrc(&i.Params[n])
	}
}

func (w *writer) writeTex(i *ir.TexInstr) {
	if len(i.Srcs) > int(texNumSrcsMask) {
		panic(fmt.Sprintf("nir/serialize: tex has %d sources, limit is %d",
			len(i.Srcs), texNumSrcsMask))
	}
	if uint8(i.Op) >= ir.NumTexOps {
		panic(fmt.Sprintf("nir/serialize: invalid tex op %d", i.Op))
	}
	if i.TextureArraySize > texArraySizeMask {
		panic(fmt.Sprintf("nir/serialize: texture array size %d is not representable", i.TextureArraySize))
	}

	header := kindTex
	header |= uint32(len(i.Srcs)) << texNumSrcsShift
	header |= uint32(i.Op) << texOpShift
	header |= i.TextureArraySize << texArraySizeShift
	w.writeDest(header, &i.Dest)

	w.b.WriteUint32(packTexFlags(i))
	w.b.WriteUint32(i.TextureIndex)
	w.b.WriteUint32(i.SamplerIndex)
	if i.Op == ir.TexOpTg4 {
		for _, pair := range i.TG4Offsets {
			w.b.WriteUint8(uint8(pair[0]))
			w.b.WriteUint8(uint8(pair[1]))
		}
	}
	for n := range i.Srcs {
		ts := &i.Srcs[n]
		if uint8(ts.Type) >= ir.NumTexSrcTypes {
			panic(fmt.Sprintf("nir/serialize: invalid tex source role %d", ts.Type))
		}
		w.writeSrcFull(&ts.Src, uint32(ts.Type)<<srcTexTypeShift)
	}
}

func (w *writer) writeIntrinsic(i *ir.IntrinsicInstr) {
	if uint16(i.Op) >= ir.NumIntrinsicOps {
		panic(fmt.Sprintf("nir/serialize: invalid intrinsic op %d", i.Op))
	}
	info := i.Op.Info()
	if len(i.Srcs) != int(info.NumSrcs) {
		panic(fmt.Sprintf("nir/serialize: intrinsic %s has %d sources, expects %d",
			info.Name, len(i.Srcs), info.NumSrcs))
	}
	if len(i.ConstIndex) != int(info.NumIndices) {
		panic(fmt.Sprintf("nir/serialize: intrinsic %s has %d indices, expects %d",
			info.Name, len(i.ConstIndex), info.NumIndices))
	}

	header := kindIntrinsic
	header |= uint32(i.Op) << intrOpShift
	header |= encodeComponents(i.NumComponents) << intrCompShift
	if info.HasDest {
		w.writeDest(header, &i.Dest)
	} else {
		w.b.WriteUint32(header)
	}

	for n := range i.Srcs {
		w.writeSrc(&i.Srcs[n])
	}
	for _, idx := range i.ConstIndex {
		w.b.WriteUint32(uint32(idx))
	}
}

// writeLoadConst packs the def's shape into its own header fields
// rather than the destination sub-field; the def's debug name is not
// serialized.
func (w *writer) writeLoadConst(i *ir.LoadConstInstr) {
	def := i.Def
	if len(i.Values) != int(def.NumComponents) {
		panic(fmt.Sprintf("nir/serialize: load_const has %d values for %d components",
			len(i.Values), def.NumComponents))
	}

	header := kindLoadConst
	header |= lastComponent(def.NumComponents) << constLastCompShift
	header |= encodeBitSize(def.BitSize) << constBitSizeShift
	w.b.WriteUint32(header)
	w.idx.assign(def)

	for _, v := range i.Values {
		w.b.WriteUint64(v)
	}
}

func (w *writer) writeUndef(i *ir.UndefInstr) {
	def := i.Def
	header := kindUndef
	header |= lastComponent(def.NumComponents) << constLastCompShift
	header |= encodeBitSize(def.BitSize) << constBitSizeShift
	w.b.WriteUint32(header)
	w.idx.assign(def)
}

// lastComponent encodes a 1-16 component count as its highest lane
// index, the form the load_const and undef headers carry.
func lastComponent(n uint8) uint32 {
	if n < 1 || n > constLastCompMask+1 {
		panic(fmt.Sprintf("nir/serialize: component count %d is not representable", n))
	}
	return uint32(n - 1)
}

// writePhi reserves two words per source instead of writing them:
// sources may name defs and blocks that appear later in the body.
// fixupPhis patches the reserved words once every id is assigned.
func (w *writer) writePhi(i *ir.PhiInstr) {
	if len(i.Srcs) == 0 {
		panic("nir/serialize: phi without sources")
	}
	if len(i.Srcs) > phiNumSrcsMask {
		panic(fmt.Sprintf("nir/serialize: phi has %d sources, limit is %d",
			len(i.Srcs), phiNumSrcsMask))
	}
	header := kindPhi
	header |= uint32(len(i.Srcs)) << phiNumSrcsShift
	w.writeDest(header, &i.Dest)

	for _, ps := range i.Srcs {
		if !ps.Src.IsSSA() {
			panic("nir/serialize: phi source references a register")
		}
		off := w.b.ReserveUint32()
		w.b.ReserveUint32()
		w.phiFixups = append(w.phiFixups, phiFixup{
			offset: off,
			def:    ps.Src.SSA,
			pred:   ps.Pred,
		})
	}
}

func (w *writer) fixupPhis() {
	for _, fx := range w.phiFixups {
		w.b.PatchUint32(fx.offset, w.idx.lookup(fx.def))
		w.b.PatchUint32(fx.offset+4, w.idx.lookup(fx.pred))
	}
	w.phiFixups = w.phiFixups[:0]
}

func (w *writer) writeJump(i *ir.JumpInstr) {
	if i.Kind > ir.JumpHalt {
		panic(fmt.Sprintf("nir/serialize: invalid jump kind %d", i.Kind))
	}
	header := kindJump
	header |= uint32(i.Kind) << jumpKindShift
	w.b.WriteUint32(header)
}

func (w *writer) writeConstantData() {
	w.b.WriteUint32(uint32(len(w.s.ConstantData)))
	w.b.WriteBytes(w.s.ConstantData)
}
