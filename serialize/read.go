package serialize

import (
	"fmt"

	"github.com/gogpu/nir/blob"
	"github.com/gogpu/nir/ir"
)

// pendingPhiSrc is one phi edge whose ids were read before the
// referenced objects existed. fixupPhis resolves it after the whole
// body has registered its defs and blocks.
type pendingPhiSrc struct {
	ps     *ir.PhiSrc
	valID  uint32
	predID uint32
}

type reader struct {
	b   *blob.Reader
	s   *ir.Shader
	idx *readIndex

	curImpl *ir.FunctionImpl
	phiSrcs []pendingPhiSrc
	hasImpl []bool
}

func (r *reader) readObjectCount() {
	r.idx = newReadIndex(r.b.ReadUint32())
}

func (r *reader) readInfo() {
	info := &r.s.Info
	mask := r.b.ReadUint32()
	if mask&infoHasName != 0 {
		info.Name = r.b.ReadString()
	}
	if mask&infoHasLabel != 0 {
		info.Label = r.b.ReadString()
	}

	info.Stage = ir.Stage(r.b.ReadUint8())
	info.NumTextures = r.b.ReadUint8()
	info.NumUBOs = r.b.ReadUint8()
	info.NumSSBOs = r.b.ReadUint8()
	info.NumImages = r.b.ReadUint8()
	info.InputsRead = r.b.ReadUint64()
	info.OutputsWritten = r.b.ReadUint64()
	info.SystemValuesRead = r.b.ReadUint64()
	info.Flags = ir.InfoFlags(r.b.ReadUint32())
	for n := range info.WorkgroupSize {
		info.WorkgroupSize[n] = r.b.ReadUint32()
	}
	info.SharedSize = r.b.ReadUint32()
}

func (r *reader) readVarLists() {
	for _, list := range varLists {
		count := r.b.ReadUint32()
		vars := list(r.s)
		for n := uint32(0); n < count; n++ {
			*vars = append(*vars, r.readVariable())
		}
	}
}

// readVariable registers the variable before decoding its payload,
// mirroring the writer's id assignment point.
func (r *reader) readVariable() *ir.Variable {
	v := &ir.Variable{}
	r.idx.add(v)

	flags := r.b.ReadUint32()
	if flags&varHasName != 0 {
		v.Name = r.b.ReadString()
	}
	v.Type = r.readType()
	r.readVarData(&v.Data)
	if flags&varHasInit != 0 {
		v.ConstantInit = r.readConstant()
	}
	return v
}

func (r *reader) readVarData(d *ir.VarData) {
	packed := r.b.ReadUint32()
	d.Mode = ir.VarMode(packed & 0xffff)
	d.Flags = ir.VarFlags(packed >> 16)
	d.Interp = ir.InterpMode(r.b.ReadUint8())
	d.Location = int32(r.b.ReadUint32())
	d.DriverLocation = r.b.ReadUint32()
	d.Binding = r.b.ReadUint32()
	d.DescriptorSet = r.b.ReadUint32()
	d.Offset = int32(r.b.ReadUint32())
}

func (r *reader) readConstant() *ir.Constant {
	c := &ir.Constant{}
	for n := range c.Values {
		c.Values[n] = r.b.ReadUint64()
	}
	count := r.b.ReadUint32()
	for n := uint32(0); n < count; n++ {
		c.Elements = append(c.Elements, r.readConstant())
	}
	return c
}

func (r *reader) readType() *ir.Type {
	tag := r.b.ReadUint8()
	switch tag {
	case typeScalar:
		base := ir.BaseType(r.b.ReadUint8())
		bits := r.b.ReadUint8()
		return ir.TypeScalar(base, bits)
	case typeVector:
		base := ir.BaseType(r.b.ReadUint8())
		bits := r.b.ReadUint8()
		size := r.b.ReadUint8()
		return ir.TypeVector(base, bits, size)
	case typeMatrix:
		bits := r.b.ReadUint8()
		cols := r.b.ReadUint8()
		rows := r.b.ReadUint8()
		return ir.TypeMatrix(bits, cols, rows)
	case typeArray:
		length := r.b.ReadUint32()
		stride := r.b.ReadUint32()
		return ir.TypeArrayOf(r.readType(), length, stride)
	case typeStruct:
		name := r.b.ReadString()
		count := r.b.ReadUint32()
		var fields []ir.StructField
		for n := uint32(0); n < count; n++ {
			fname := r.b.ReadString()
			offset := r.b.ReadUint32()
			fields = append(fields, ir.StructField{
				Name:   fname,
				Type:   r.readType(),
				Offset: offset,
			})
		}
		return ir.TypeStructOf(name, fields)
	case typeSampler:
		dim := ir.SamplerDim(r.b.ReadUint8())
		bits := r.b.ReadUint8()
		return ir.TypeSampler(dim, bits&1 != 0, bits&2 != 0)
	case typeImage:
		dim := ir.SamplerDim(r.b.ReadUint8())
		bits := r.b.ReadUint8()
		base := ir.BaseType(r.b.ReadUint8())
		return ir.TypeImage(dim, bits&1 != 0, base)
	}
	panic(fmt.Sprintf("nir/serialize: unknown type tag %d", tag))
}

func (r *reader) readStats() {
	r.s.NumInputs = r.b.ReadUint32()
	r.s.NumUniforms = r.b.ReadUint32()
	r.s.NumOutputs = r.b.ReadUint32()
	r.s.NumShared = r.b.ReadUint32()
	r.s.ScratchSize = r.b.ReadUint32()
}

func (r *reader) readSignatures() {
	count := r.b.ReadUint32()
	for n := uint32(0); n < count; n++ {
		flags := r.b.ReadUint32()
		var name string
		if flags&fnHasName != 0 {
			name = r.b.ReadString()
		}
		fn := r.s.AddFunction(name)
		fn.IsEntryPoint = flags&fnIsEntryPoint != 0
		r.idx.add(fn)

		numParams := r.b.ReadUint32()
		for p := uint32(0); p < numParams; p++ {
			packed := r.b.ReadUint32()
			fn.Params = append(fn.Params, ir.Param{
				NumComponents: uint8(packed & 0xff),
				BitSize:       uint8(packed >> 8),
			})
		}
		r.hasImpl = append(r.hasImpl, flags&fnHasImpl != 0)
	}
}

func (r *reader) readBodies() {
	for n, fn := range r.s.Functions {
		if r.hasImpl[n] {
			r.readImpl(fn)
		}
	}
}

func (r *reader) readImpl(fn *ir.Function) {
	impl := ir.NewFunctionImpl(fn)
	r.curImpl = impl

	numLocals := r.b.ReadUint32()
	for n := uint32(0); n < numLocals; n++ {
		impl.AddLocal(r.readVariable())
	}
	numRegs := r.b.ReadUint32()
	for n := uint32(0); n < numRegs; n++ {
		impl.Registers = append(impl.Registers, r.readRegister())
	}
	impl.RegAlloc = r.b.ReadUint32()

	r.phiSrcs = r.phiSrcs[:0]
	r.readCFList(&impl.Body)
	r.fixupPhis()
	r.curImpl = nil
}

func (r *reader) readRegister() *ir.Register {
	reg := &ir.Register{}
	r.idx.add(reg)
	reg.NumComponents = uint8(r.b.ReadUint32())
	reg.BitSize = uint8(r.b.ReadUint32())
	reg.NumArrayElems = r.b.ReadUint32()
	reg.Index = r.b.ReadUint32()
	if r.b.ReadUint32() != 0 {
		reg.Name = r.b.ReadString()
	}
	return reg
}

// readCFList rebuilds a control-flow list in place. Block tags fill
// the pending tail block; if and loop tags append through the list
// helpers, which create the next tail. The alternation invariant
// therefore holds by construction.
func (r *reader) readCFList(list *ir.CFList) {
	count := r.b.ReadUint32()
	for n := uint32(0); n < count; n++ {
		switch tag := r.b.ReadUint32(); tag {
		case cfBlock:
			r.readBlock(list.TailBlock())
		case cfIf:
			nif := ir.NewIf()
			nif.Condition = r.readSrc()
			list.AppendIf(nif)
			r.readCFList(&nif.Then)
			r.readCFList(&nif.Else)
		case cfLoop:
			loop := ir.NewLoop()
			list.AppendLoop(loop)
			r.readCFList(&loop.Body)
		default:
			panic(fmt.Sprintf("nir/serialize: unknown control-flow tag %d", tag))
		}
	}
}

// readBlock registers the block before its instructions so that phi
// fixups can reference every block of the body.
func (r *reader) readBlock(b *ir.Block) {
	r.idx.add(b)
	count := r.b.ReadUint32()
	for n := uint32(0); n < count; n++ {
		r.readInstr(b)
	}
}

func (r *reader) readInstr(b *ir.Block) {
	header := r.b.ReadUint32()
	switch header & instrKindMask {
	case kindAlu:
		b.Append(r.readAlu(header))
	case kindDeref:
		b.Append(r.readDeref(header))
	case kindCall:
		b.Append(r.readCall())
	case kindTex:
		b.Append(r.readTex(header))
	case kindIntrinsic:
		b.Append(r.readIntrinsic(header))
	case kindLoadConst:
		b.Append(r.readLoadConst(header))
	case kindUndef:
		b.Append(r.readUndef(header))
	case kindPhi:
		r.readPhi(header, b)
	case kindJump:
		b.Append(r.readJump(header))
	case kindParallelCopy:
		panic("nir/serialize: parallel copies cannot appear in a blob")
	default:
		panic(fmt.Sprintf("nir/serialize: unknown instruction kind %d", header&instrKindMask))
	}
}

// readDest decodes the destination packed into the header's top byte
// and consumes its trailing data. SSA destinations allocate and
// register a fresh def at the same point the writer assigned its id.
func (r *reader) readDest(header uint32, parent ir.Instr) ir.Dest {
	pd := unpackDest(header >> headerDestShift)
	if pd.isSSA {
		def := r.curImpl.NewDef(parent, pd.numComponents, pd.bitSize)
		r.idx.add(def)
		if pd.flag {
			def.Name = r.b.ReadString()
		}
		return ir.DestForSSA(def)
	}
	ref := &ir.RegRef{
		Reg:        r.idx.register(r.b.ReadUint32()),
		BaseOffset: r.b.ReadUint32(),
	}
	if pd.flag {
		ind := r.readSrc()
		ref.Indirect = &ind
	}
	return ir.Dest{Reg: ref}
}

func (r *reader) readSrc() ir.Src {
	return r.readSrcWord(r.b.ReadUint32())
}

// readSrcWord decodes the source a word references, consuming the
// register trailer when present. Uses are not registered here; block
// insertion and phi fixups do that.
func (r *reader) readSrcWord(w uint32) ir.Src {
	if srcWordIsSSA(w) {
		return ir.Src{SSA: r.idx.def(srcWordIndex(w))}
	}
	ref := &ir.RegRef{
		Reg:        r.idx.register(srcWordIndex(w)),
		BaseOffset: r.b.ReadUint32(),
	}
	if srcWordIndirect(w) {
		ind := r.readSrc()
		ref.Indirect = &ind
	}
	return ir.Src{Reg: ref}
}

func (r *reader) readAlu(header uint32) *ir.AluInstr {
	op := ir.AluOp((header >> aluOpShift) & aluOpMask)
	if uint16(op) >= ir.NumAluOps {
		panic(fmt.Sprintf("nir/serialize: unknown alu op %d in blob", op))
	}
	i := &ir.AluInstr{
		Op:             op,
		Exact:          header&aluExactBit != 0,
		NoSignedWrap:   header&aluNoSignedWrapBit != 0,
		NoUnsignedWrap: header&aluNoUnsignedWrapBit != 0,
	}
	i.Dest.Saturate = header&aluSaturateBit != 0
	i.Dest.WriteMask = uint8((header >> aluWriteMaskShift) & aluWriteMaskMask)
	i.Dest.Dest = r.readDest(header, i)

	i.Srcs = make([]ir.AluSrc, op.Info().NumInputs)
	for n := range i.Srcs {
		w := r.b.ReadUint32()
		i.Srcs[n].Src = r.readSrcWord(w)
		unpackAluFooter(w, &i.Srcs[n])
	}
	return i
}

func (r *reader) readDeref(header uint32) *ir.DerefInstr {
	i := &ir.DerefInstr{
		Kind: ir.DerefKind((header >> derefKindShift) & derefKindMask),
		Mode: ir.VarMode((header >> derefModeShift) & derefModeMask),
	}
	i.Dest = r.readDest(header, i)
	i.Type = r.readType()

	switch i.Kind {
	case ir.DerefVar:
		i.Var = r.idx.variable(r.b.ReadUint32())
	case ir.DerefArray, ir.DerefPtrAsArray:
		i.Parent = r.readSrc()
		i.Index = r.readSrc()
	case ir.DerefArrayWildcard:
		i.Parent = r.readSrc()
	case ir.DerefStruct:
		i.Parent = r.readSrc()
		i.StructIndex = r.b.ReadUint32()
	case ir.DerefCast:
		i.Parent = r.readSrc()
		i.CastPtrStride = r.b.ReadUint32()
	default:
		panic(fmt.Sprintf("nir/serialize: unknown deref kind %d in blob", i.Kind))
	}
	return i
}

func (r *reader) readCall() *ir.CallInstr {
	i := &ir.CallInstr{Callee: r.idx.function(r.b.ReadUint32())}
	i.Params = make([]ir.Src, len(i.Callee.Params))
	for n := range i.Params {
		i.Params[n] = r.readSrc()
	}
	return i
}

func (r *reader) readTex(header uint32) *ir.TexInstr {
	op := ir.TexOp((header >> texOpShift) & texOpMask)
	if uint8(op) >= ir.NumTexOps {
		panic(fmt.Sprintf("nir/serialize: unknown tex op %d in blob", op))
	}
	i := &ir.TexInstr{
		Op:               op,
		TextureArraySize: (header >> texArraySizeShift) & texArraySizeMask,
	}
	numSrcs := (header >> texNumSrcsShift) & texNumSrcsMask
	i.Dest = r.readDest(header, i)

	unpackTexFlags(r.b.ReadUint32(), i)
	i.TextureIndex = r.b.ReadUint32()
	i.SamplerIndex = r.b.ReadUint32()
	if op == ir.TexOpTg4 {
		for n := range i.TG4Offsets {
			i.TG4Offsets[n][0] = int8(r.b.ReadUint8())
			i.TG4Offsets[n][1] = int8(r.b.ReadUint8())
		}
	}

	i.Srcs = make([]ir.TexSrc, numSrcs)
	for n := range i.Srcs {
		w := r.b.ReadUint32()
		role := ir.TexSrcType((w >> srcTexTypeShift) & srcTexTypeMask)
		if uint8(role) >= ir.NumTexSrcTypes {
			panic(fmt.Sprintf("nir/serialize: unknown tex source role %d in blob", role))
		}
		i.Srcs[n].Type = role
		i.Srcs[n].Src = r.readSrcWord(w)
	}
	return i
}

func (r *reader) readIntrinsic(header uint32) *ir.IntrinsicInstr {
	op := ir.IntrinsicOp((header >> intrOpShift) & intrOpMask)
	if uint16(op) >= ir.NumIntrinsicOps {
		panic(fmt.Sprintf("nir/serialize: unknown intrinsic op %d in blob", op))
	}
	info := op.Info()
	i := &ir.IntrinsicInstr{
		Op:            op,
		NumComponents: decodeComponents((header >> intrCompShift) & intrCompMask),
	}
	if info.HasDest {
		i.Dest = r.readDest(header, i)
	}

	i.Srcs = make([]ir.Src, info.NumSrcs)
	for n := range i.Srcs {
		i.Srcs[n] = r.readSrc()
	}
	if info.NumIndices > 0 {
		i.ConstIndex = make([]int32, info.NumIndices)
		for n := range i.ConstIndex {
			i.ConstIndex[n] = int32(r.b.ReadUint32())
		}
	}
	return i
}

func (r *reader) readLoadConst(header uint32) *ir.LoadConstInstr {
	lastComp := (header >> constLastCompShift) & constLastCompMask
	numComponents := uint8(lastComp + 1)
	bitSize := decodeBitSize((header >> constBitSizeShift) & constBitSizeMask)

	i := &ir.LoadConstInstr{}
	i.Def = r.curImpl.NewDef(i, numComponents, bitSize)
	r.idx.add(i.Def)

	i.Values = make([]uint64, numComponents)
	for n := range i.Values {
		i.Values[n] = r.b.ReadUint64()
	}
	return i
}

func (r *reader) readUndef(header uint32) *ir.UndefInstr {
	lastComp := (header >> constLastCompShift) & constLastCompMask
	numComponents := uint8(lastComp + 1)
	bitSize := decodeBitSize((header >> constBitSizeShift) & constBitSizeMask)

	i := &ir.UndefInstr{}
	i.Def = r.curImpl.NewDef(i, numComponents, bitSize)
	r.idx.add(i.Def)
	return i
}

// readPhi appends the phi before decoding its sources: edges may
// reference defs and blocks that only appear later in the body, so
// each one is queued with raw ids and resolved by fixupPhis.
func (r *reader) readPhi(header uint32, b *ir.Block) {
	numSrcs := (header >> phiNumSrcsShift) & phiNumSrcsMask
	i := &ir.PhiInstr{}
	i.Dest = r.readDest(header, i)
	b.Append(i)

	for n := uint32(0); n < numSrcs; n++ {
		valID := r.b.ReadUint32()
		predID := r.b.ReadUint32()
		ps := &ir.PhiSrc{}
		ps.Src.Parent = i
		i.Srcs = append(i.Srcs, ps)
		r.phiSrcs = append(r.phiSrcs, pendingPhiSrc{ps: ps, valID: valID, predID: predID})
	}
}

func (r *reader) fixupPhis() {
	for _, p := range r.phiSrcs {
		p.ps.Pred = r.idx.block(p.predID)
		p.ps.Src.LinkSSA(r.idx.def(p.valID))
	}
	r.phiSrcs = r.phiSrcs[:0]
}

func (r *reader) readJump(header uint32) *ir.JumpInstr {
	return &ir.JumpInstr{Kind: ir.JumpKind((header >> jumpKindShift) & jumpKindMask)}
}

func (r *reader) readConstantData() {
	count := r.b.ReadUint32()
	if count > 0 {
		data := r.b.ReadBytes(int(count))
		r.s.ConstantData = append([]byte(nil), data...)
	}
}
