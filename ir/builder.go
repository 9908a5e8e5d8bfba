package ir

import "fmt"

// Builder assembles instructions into a function body, maintaining a
// cursor block and a stack of open control-flow constructs.
type Builder struct {
	Impl *FunctionImpl

	list   *CFList
	cursor *Block
	frames []builderFrame
}

// builderFrame remembers the list to resume when a construct closes,
// and the open if-node for StartElse.
type builderFrame struct {
	list *CFList
	nif  *If
}

// NewBuilder returns a builder appending into impl's start block.
func NewBuilder(impl *FunctionImpl) *Builder {
	return &Builder{
		Impl:   impl,
		list:   &impl.Body,
		cursor: impl.Body.StartBlock(),
	}
}

// Block returns the block currently receiving instructions.
func (b *Builder) Block() *Block {
	return b.cursor
}

// Insert appends instr to the cursor block.
func (b *Builder) Insert(instr Instr) {
	b.cursor.Append(instr)
}

// InsertWithDef allocates a fresh SSA destination for instr, stores
// it through dest, inserts the instruction, and returns the def.
func (b *Builder) InsertWithDef(instr Instr, dest *Dest, numComponents, bitSize uint8) *Def {
	def := b.Impl.NewDef(instr, numComponents, bitSize)
	*dest = DestForSSA(def)
	b.Insert(instr)
	return def
}

// ---------------------------------------------------------------------------
// Value producers
// ---------------------------------------------------------------------------

// LoadConst materializes an immediate vector with one component per
// value word.
func (b *Builder) LoadConst(bitSize uint8, values ...uint64) *Def {
	instr := &LoadConstInstr{Values: values}
	instr.Def = b.Impl.NewDef(instr, uint8(len(values)), bitSize)
	b.Insert(instr)
	return instr.Def
}

// Undef produces an undefined value of the given shape.
func (b *Builder) Undef(numComponents, bitSize uint8) *Def {
	instr := &UndefInstr{}
	instr.Def = b.Impl.NewDef(instr, numComponents, bitSize)
	b.Insert(instr)
	return instr.Def
}

// isCompareOp reports whether op produces a 1-bit boolean.
func isCompareOp(op AluOp) bool {
	switch op {
	case AluFEq, AluFNeu, AluFLt, AluFGe,
		AluIEq, AluINe, AluILt, AluIGe, AluULt, AluUGe:
		return true
	}
	return false
}

// Alu builds an ALU instruction with identity swizzles and a full
// writemask. The destination shape follows the first source, except
// that vecN ops produce N components and comparisons produce 1-bit
// values.
func (b *Builder) Alu(op AluOp, srcs ...*Def) *Def {
	info := op.Info()
	if len(srcs) != int(info.NumInputs) {
		panic(fmt.Sprintf("nir/ir: %s expects %d sources, got %d", info.Name, info.NumInputs, len(srcs)))
	}
	instr := &AluInstr{Op: op}
	for _, s := range srcs {
		instr.Srcs = append(instr.Srcs, AluSrc{
			Src:     SrcForSSA(s),
			Swizzle: [4]uint8{0, 1, 2, 3},
		})
	}

	numComponents := srcs[0].NumComponents
	bitSize := srcs[0].BitSize
	switch op {
	case AluVec2:
		numComponents = 2
	case AluVec3:
		numComponents = 3
	case AluVec4:
		numComponents = 4
	}
	if isCompareOp(op) {
		bitSize = 1
	}

	instr.Dest.WriteMask = uint8(1<<numComponents) - 1
	def := b.Impl.NewDef(instr, numComponents, bitSize)
	instr.Dest.Dest = DestForSSA(def)
	b.Insert(instr)
	return def
}

// Mov copies a value.
func (b *Builder) Mov(src *Def) *Def {
	return b.Alu(AluMov, src)
}

// Intrinsic builds an intrinsic instruction. The source count and
// index count must match the op's shape; a destination is allocated
// only for value-producing ops.
func (b *Builder) Intrinsic(op IntrinsicOp, numComponents, bitSize uint8, srcs []*Def, indices ...int32) *IntrinsicInstr {
	info := op.Info()
	if len(srcs) != int(info.NumSrcs) {
		panic(fmt.Sprintf("nir/ir: %s expects %d sources, got %d", info.Name, info.NumSrcs, len(srcs)))
	}
	if len(indices) != int(info.NumIndices) {
		panic(fmt.Sprintf("nir/ir: %s expects %d indices, got %d", info.Name, info.NumIndices, len(indices)))
	}
	instr := &IntrinsicInstr{
		Op:            op,
		NumComponents: numComponents,
		ConstIndex:    indices,
	}
	for _, s := range srcs {
		instr.Srcs = append(instr.Srcs, SrcForSSA(s))
	}
	if info.HasDest {
		instr.Dest = DestForSSA(b.Impl.NewDef(instr, numComponents, bitSize))
	}
	b.Insert(instr)
	return instr
}

// LoadInput reads numComponents components of a shader input slot.
func (b *Builder) LoadInput(numComponents, bitSize uint8, offset *Def, base, component int32) *Def {
	instr := b.Intrinsic(IntrinsicLoadInput, numComponents, bitSize, []*Def{offset}, base, component)
	return instr.Dest.SSA
}

// StoreOutput writes value to a shader output slot.
func (b *Builder) StoreOutput(value, offset *Def, base, writeMask, component int32) *IntrinsicInstr {
	return b.Intrinsic(IntrinsicStoreOutput, value.NumComponents, value.BitSize,
		[]*Def{value, offset}, base, writeMask, component)
}

// ---------------------------------------------------------------------------
// Deref chains
// ---------------------------------------------------------------------------

// derefDef allocates the address-valued destination of a deref node.
func (b *Builder) derefDef(instr *DerefInstr) *Def {
	def := b.Impl.NewDef(instr, 1, 32)
	instr.Dest = DestForSSA(def)
	b.Insert(instr)
	return def
}

// DerefVar roots a deref chain at a variable.
func (b *Builder) DerefVar(v *Variable) *DerefInstr {
	instr := &DerefInstr{
		Kind: DerefVar,
		Mode: v.Data.Mode,
		Type: v.Type,
		Var:  v,
	}
	b.derefDef(instr)
	return instr
}

// DerefArray refines a deref chain by a dynamic array index.
func (b *Builder) DerefArray(parent *DerefInstr, index *Def) *DerefInstr {
	elem := parent.Type
	if arr, ok := parent.Type.Inner.(ArrayType); ok {
		elem = arr.Elem
	}
	instr := &DerefInstr{
		Kind:   DerefArray,
		Mode:   parent.Mode,
		Type:   elem,
		Parent: SrcForSSA(parent.Dest.SSA),
		Index:  SrcForSSA(index),
	}
	b.derefDef(instr)
	return instr
}

// DerefStruct refines a deref chain by a struct member.
func (b *Builder) DerefStruct(parent *DerefInstr, field uint32) *DerefInstr {
	ftype := parent.Type
	if st, ok := parent.Type.Inner.(StructType); ok && int(field) < len(st.Fields) {
		ftype = st.Fields[field].Type
	}
	instr := &DerefInstr{
		Kind:        DerefStruct,
		Mode:        parent.Mode,
		Type:        ftype,
		Parent:      SrcForSSA(parent.Dest.SSA),
		StructIndex: field,
	}
	b.derefDef(instr)
	return instr
}

// LoadDeref reads through a deref chain.
func (b *Builder) LoadDeref(deref *DerefInstr, numComponents, bitSize uint8) *Def {
	instr := b.Intrinsic(IntrinsicLoadDeref, numComponents, bitSize, []*Def{deref.Dest.SSA})
	return instr.Dest.SSA
}

// StoreDeref writes value through a deref chain.
func (b *Builder) StoreDeref(deref *DerefInstr, value *Def, writeMask int32) *IntrinsicInstr {
	return b.Intrinsic(IntrinsicStoreDeref, value.NumComponents, value.BitSize,
		[]*Def{deref.Dest.SSA, value}, writeMask)
}

// ---------------------------------------------------------------------------
// Control flow
// ---------------------------------------------------------------------------

// Phi inserts an empty phi into the cursor block; edges are attached
// with AddSrc.
func (b *Builder) Phi(numComponents, bitSize uint8) *PhiInstr {
	instr := &PhiInstr{}
	instr.Dest = DestForSSA(b.Impl.NewDef(instr, numComponents, bitSize))
	b.Insert(instr)
	return instr
}

// Jump inserts a jump, ending the cursor block.
func (b *Builder) Jump(kind JumpKind) {
	b.Insert(&JumpInstr{Kind: kind})
}

// Call inserts a call to callee.
func (b *Builder) Call(callee *Function, params ...Src) *CallInstr {
	if len(params) != len(callee.Params) {
		panic(fmt.Sprintf("nir/ir: call to %s expects %d params, got %d", callee.Name, len(callee.Params), len(params)))
	}
	instr := &CallInstr{Callee: callee, Params: params}
	b.Insert(instr)
	return instr
}

// PushLoop opens a loop at the cursor and enters its body.
func (b *Builder) PushLoop() *Loop {
	loop := NewLoop()
	b.list.AppendLoop(loop)
	b.frames = append(b.frames, builderFrame{list: b.list})
	b.list = &loop.Body
	b.cursor = loop.Body.StartBlock()
	return loop
}

// PopLoop closes the innermost loop and resumes after it.
func (b *Builder) PopLoop() {
	frame := b.pop()
	if frame.nif != nil {
		panic("nir/ir: PopLoop inside an open if")
	}
	b.list = frame.list
	b.cursor = b.list.TailBlock()
}

// PushIf opens an if on cond at the cursor and enters its then-branch.
func (b *Builder) PushIf(cond *Def) *If {
	nif := NewIf()
	nif.Condition = SrcForSSA(cond)
	b.list.AppendIf(nif)
	b.frames = append(b.frames, builderFrame{list: b.list, nif: nif})
	b.list = &nif.Then
	b.cursor = nif.Then.StartBlock()
	return nif
}

// StartElse switches from the then-branch to the else-branch.
func (b *Builder) StartElse() {
	frame := b.top()
	if frame.nif == nil {
		panic("nir/ir: StartElse outside an if")
	}
	b.list = &frame.nif.Else
	b.cursor = frame.nif.Else.StartBlock()
}

// PopIf closes the innermost if and resumes after it.
func (b *Builder) PopIf() {
	frame := b.pop()
	if frame.nif == nil {
		panic("nir/ir: PopIf outside an if")
	}
	b.list = frame.list
	b.cursor = b.list.TailBlock()
}

func (b *Builder) top() *builderFrame {
	if len(b.frames) == 0 {
		panic("nir/ir: no open control-flow construct")
	}
	return &b.frames[len(b.frames)-1]
}

func (b *Builder) pop() builderFrame {
	frame := *b.top()
	b.frames = b.frames[:len(b.frames)-1]
	return frame
}

