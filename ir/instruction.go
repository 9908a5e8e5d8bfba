package ir

// Def is an SSA value: defined by exactly one instruction, referenced
// by any number of sources.
type Def struct {
	Name          string // debug only, subject to stripping
	Index         uint32 // body-local value number
	NumComponents uint8
	BitSize       uint8
	Parent        Instr
	Uses          []*Src
}

// RegRef is a reference to a register slot, with an optional
// dynamically-computed indirect offset.
type RegRef struct {
	Reg        *Register
	BaseOffset uint32
	Indirect   *Src // nil unless dynamically indexed
}

// Src references either an SSA value or a register slot. Exactly one
// of SSA and Reg is non-nil.
type Src struct {
	SSA    *Def
	Reg    *RegRef
	Parent Instr // owning instruction; nil for if-conditions
}

// SrcForSSA returns a source referencing def. The use is registered
// when the owning instruction is appended to a block.
func SrcForSSA(def *Def) Src {
	return Src{SSA: def}
}

// SrcForReg returns a source referencing reg with no offset.
func SrcForReg(reg *Register) Src {
	return Src{Reg: &RegRef{Reg: reg}}
}

// IsSSA reports whether the source references an SSA value.
func (s *Src) IsSSA() bool { return s.SSA != nil }

// LinkSSA points the source at def and registers the use. It is the
// low-level hook for sources wired after their instruction was
// inserted (phi sources, deferred fixups).
func (s *Src) LinkSSA(def *Def) {
	s.SSA = def
	def.Uses = append(def.Uses, s)
}

// Dest is an instruction destination. Exactly one of SSA and Reg is
// non-nil.
type Dest struct {
	SSA *Def
	Reg *RegRef
}

// IsSSA reports whether the destination defines an SSA value.
func (d *Dest) IsSSA() bool { return d.SSA != nil }

// DestForSSA returns a destination wrapping def.
func DestForSSA(def *Def) Dest { return Dest{SSA: def} }

// DestForReg returns a destination writing reg.
func DestForReg(reg *Register) Dest { return Dest{Reg: &RegRef{Reg: reg}} }

// Instr is the closed set of instruction kinds. The unexported source
// visitor both closes the set and powers use-list registration.
type Instr interface {
	// eachSrc visits every source slot, including register indirects
	// on sources and destinations.
	eachSrc(fn func(*Src))
}

// visitSrc applies fn to s and any nested indirect sources.
func visitSrc(s *Src, fn func(*Src)) {
	fn(s)
	if s.Reg != nil && s.Reg.Indirect != nil {
		visitSrc(s.Reg.Indirect, fn)
	}
}

// visitDest applies fn to the indirect source of a register
// destination, if any.
func visitDest(d *Dest, fn func(*Src)) {
	if d.Reg != nil && d.Reg.Indirect != nil {
		visitSrc(d.Reg.Indirect, fn)
	}
}

// ---------------------------------------------------------------------------
// Arithmetic
// ---------------------------------------------------------------------------

// AluSrc is an arithmetic operand: a source plus per-operand
// modifiers and a component swizzle.
type AluSrc struct {
	Src     Src
	Negate  bool
	Abs     bool
	Swizzle [4]uint8
}

// AluDest is an arithmetic destination with saturate and writemask.
type AluDest struct {
	Dest      Dest
	Saturate  bool
	WriteMask uint8 // low 4 bits, one per component
}

// AluInstr is an arithmetic/logic instruction.
type AluInstr struct {
	Op             AluOp
	Exact          bool
	NoSignedWrap   bool
	NoUnsignedWrap bool
	Dest           AluDest
	Srcs           []AluSrc
}

func (i *AluInstr) eachSrc(fn func(*Src)) {
	for n := range i.Srcs {
		visitSrc(&i.Srcs[n].Src, fn)
	}
	visitDest(&i.Dest.Dest, fn)
}

// ---------------------------------------------------------------------------
// Deref chains
// ---------------------------------------------------------------------------

// DerefKind discriminates the deref chain node kinds.
type DerefKind uint8

const (
	DerefVar DerefKind = iota
	DerefArray
	DerefArrayWildcard
	DerefPtrAsArray
	DerefStruct
	DerefCast
)

// String returns the deref kind name.
func (k DerefKind) String() string {
	switch k {
	case DerefVar:
		return "var"
	case DerefArray:
		return "array"
	case DerefArrayWildcard:
		return "array_wildcard"
	case DerefPtrAsArray:
		return "ptr_as_array"
	case DerefStruct:
		return "struct"
	case DerefCast:
		return "cast"
	}
	return "unknown"
}

// DerefInstr computes a structured memory address: the root of a
// chain names a Variable, inner nodes refine it by array index,
// struct member, or pointer cast.
type DerefInstr struct {
	Kind DerefKind
	Mode VarMode
	Type *Type
	Dest Dest

	Var           *Variable // DerefVar only
	Parent        Src       // all non-var kinds
	Index         Src       // DerefArray, DerefPtrAsArray
	StructIndex   uint32    // DerefStruct
	CastPtrStride uint32    // DerefCast
}

func (i *DerefInstr) eachSrc(fn func(*Src)) {
	if i.Kind != DerefVar {
		visitSrc(&i.Parent, fn)
	}
	if i.Kind == DerefArray || i.Kind == DerefPtrAsArray {
		visitSrc(&i.Index, fn)
	}
	visitDest(&i.Dest, fn)
}

// ---------------------------------------------------------------------------
// Intrinsics
// ---------------------------------------------------------------------------

// IntrinsicInstr is a call to a builtin operation with typed source
// and constant-index counts fixed per op.
type IntrinsicInstr struct {
	Op            IntrinsicOp
	NumComponents uint8 // for vectorized intrinsics
	Dest          Dest  // valid only if Op.Info().HasDest
	Srcs          []Src
	ConstIndex    []int32 // length Op.Info().NumIndices
}

func (i *IntrinsicInstr) eachSrc(fn func(*Src)) {
	for n := range i.Srcs {
		visitSrc(&i.Srcs[n], fn)
	}
	if i.Op.Info().HasDest {
		visitDest(&i.Dest, fn)
	}
}

// ---------------------------------------------------------------------------
// Constants and undefined values
// ---------------------------------------------------------------------------

// LoadConstInstr materializes an immediate vector. One value word per
// component; only the low BitSize bits of each word are significant.
type LoadConstInstr struct {
	Def    *Def
	Values []uint64
}

func (i *LoadConstInstr) eachSrc(fn func(*Src)) {}

// UndefInstr produces an undefined SSA value.
type UndefInstr struct {
	Def *Def
}

func (i *UndefInstr) eachSrc(fn func(*Src)) {}

// ---------------------------------------------------------------------------
// Texture sampling
// ---------------------------------------------------------------------------

// TexSrc is a texture operand tagged with its role.
type TexSrc struct {
	Src  Src
	Type TexSrcType
}

// TexInstr is a texture sampling operation.
type TexInstr struct {
	Op   TexOp
	Dest Dest
	Srcs []TexSrc

	TextureIndex     uint32
	SamplerIndex     uint32
	TextureArraySize uint32 // bound texture array length, 0 if not an array

	SamplerDim       SamplerDim
	DestType         AluType
	CoordComponents  uint8
	IsArray          bool
	IsShadow         bool
	IsNewStyleShadow bool
	Component        uint8      // gather component
	TG4Offsets       [4][2]int8 // explicit gather offsets, Op == TexTg4 only
}

func (i *TexInstr) eachSrc(fn func(*Src)) {
	for n := range i.Srcs {
		visitSrc(&i.Srcs[n].Src, fn)
	}
	visitDest(&i.Dest, fn)
}

// ---------------------------------------------------------------------------
// Control-flow instructions
// ---------------------------------------------------------------------------

// PhiSrc is one incoming edge of a phi: the predecessor block control
// arrives from and the value selected for that edge.
type PhiSrc struct {
	Pred *Block
	Src  Src
}

// PhiInstr selects among incoming values at a control-flow merge
// point. Its destination is always SSA.
type PhiInstr struct {
	Dest Dest
	Srcs []*PhiSrc
}

// Phi sources are wired after insertion and register their own uses
// in AddSrc, so the visitor deliberately skips them.
func (i *PhiInstr) eachSrc(fn func(*Src)) {}

// AddSrc appends an incoming edge and registers the use. The phi must
// already be linked into a block.
func (i *PhiInstr) AddSrc(pred *Block, def *Def) *PhiSrc {
	ps := &PhiSrc{Pred: pred}
	ps.Src.Parent = i
	ps.Src.LinkSSA(def)
	i.Srcs = append(i.Srcs, ps)
	return ps
}

// JumpKind discriminates jump instructions.
type JumpKind uint8

const (
	JumpReturn JumpKind = iota
	JumpBreak
	JumpContinue
	JumpHalt
)

// String returns the jump mnemonic.
func (k JumpKind) String() string {
	switch k {
	case JumpReturn:
		return "return"
	case JumpBreak:
		return "break"
	case JumpContinue:
		return "continue"
	case JumpHalt:
		return "halt"
	}
	return "unknown"
}

// JumpInstr transfers control out of the structured flow: loop break,
// loop continue, function return, or halt.
type JumpInstr struct {
	Kind JumpKind
}

func (i *JumpInstr) eachSrc(fn func(*Src)) {}

// CallInstr calls another function of the same shader. Parameter
// count matches the callee signature.
type CallInstr struct {
	Callee *Function
	Params []Src
}

func (i *CallInstr) eachSrc(fn func(*Src)) {
	for n := range i.Params {
		visitSrc(&i.Params[n], fn)
	}
}

// ---------------------------------------------------------------------------
// Pseudo instructions
// ---------------------------------------------------------------------------

// ParallelCopyEntry is one simultaneous copy of a parallel-copy
// group.
type ParallelCopyEntry struct {
	Dest Dest
	Src  Src
}

// ParallelCopyInstr is a transient pseudo-instruction used while
// leaving SSA form. It never appears in a finished graph and cannot
// be serialized.
type ParallelCopyInstr struct {
	Entries []ParallelCopyEntry
}

func (i *ParallelCopyInstr) eachSrc(fn func(*Src)) {
	for n := range i.Entries {
		visitSrc(&i.Entries[n].Src, fn)
		visitDest(&i.Entries[n].Dest, fn)
	}
}
