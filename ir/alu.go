package ir

// AluOp identifies an arithmetic/logic operation.
type AluOp uint16

const (
	AluMov AluOp = iota
	AluVec2
	AluVec3
	AluVec4

	// Float arithmetic
	AluFAdd
	AluFSub
	AluFMul
	AluFFma
	AluFDiv
	AluFMod
	AluFMin
	AluFMax
	AluFNeg
	AluFAbs
	AluFSign
	AluFFloor
	AluFCeil
	AluFFract
	AluFTrunc
	AluFRoundEven
	AluFRcp
	AluFRsq
	AluFSqrt
	AluFExp2
	AluFLog2
	AluFPow
	AluFSin
	AluFCos
	AluFSat
	AluFLrp

	// Float comparison
	AluFEq
	AluFNeu
	AluFLt
	AluFGe

	// Integer arithmetic
	AluIAdd
	AluISub
	AluIMul
	AluIDiv
	AluUDiv
	AluIMod
	AluUMod
	AluINeg
	AluIAbs
	AluISign
	AluIMin
	AluIMax
	AluUMin
	AluUMax

	// Shifts and bitwise
	AluIShl
	AluIShr
	AluUShr
	AluIAnd
	AluIOr
	AluIXor
	AluINot

	// Integer comparison
	AluIEq
	AluINe
	AluILt
	AluIGe
	AluULt
	AluUGe

	// Conversions
	AluB2F32
	AluB2I32
	AluI2F32
	AluU2F32
	AluF2I32
	AluF2U32
	AluF2F16
	AluF2F32
	AluF2F64
	AluI2I8
	AluI2I16
	AluI2I32
	AluI2I64
	AluU2U8
	AluU2U16
	AluU2U32
	AluU2U64

	// Select
	AluBCSel

	aluOpCount
)

// NumAluOps is the number of defined ALU operations.
const NumAluOps = uint16(aluOpCount)

// AluOpInfo describes the fixed shape of an ALU operation.
type AluOpInfo struct {
	Name      string
	NumInputs uint8
}

var aluOpInfos = [aluOpCount]AluOpInfo{
	AluMov:  {"mov", 1},
	AluVec2: {"vec2", 2},
	AluVec3: {"vec3", 3},
	AluVec4: {"vec4", 4},

	AluFAdd:       {"fadd", 2},
	AluFSub:       {"fsub", 2},
	AluFMul:       {"fmul", 2},
	AluFFma:       {"ffma", 3},
	AluFDiv:       {"fdiv", 2},
	AluFMod:       {"fmod", 2},
	AluFMin:       {"fmin", 2},
	AluFMax:       {"fmax", 2},
	AluFNeg:       {"fneg", 1},
	AluFAbs:       {"fabs", 1},
	AluFSign:      {"fsign", 1},
	AluFFloor:     {"ffloor", 1},
	AluFCeil:      {"fceil", 1},
	AluFFract:     {"ffract", 1},
	AluFTrunc:     {"ftrunc", 1},
	AluFRoundEven: {"fround_even", 1},
	AluFRcp:       {"frcp", 1},
	AluFRsq:       {"frsq", 1},
	AluFSqrt:      {"fsqrt", 1},
	AluFExp2:      {"fexp2", 1},
	AluFLog2:      {"flog2", 1},
	AluFPow:       {"fpow", 2},
	AluFSin:       {"fsin", 1},
	AluFCos:       {"fcos", 1},
	AluFSat:       {"fsat", 1},
	AluFLrp:       {"flrp", 3},

	AluFEq:  {"feq", 2},
	AluFNeu: {"fneu", 2},
	AluFLt:  {"flt", 2},
	AluFGe:  {"fge", 2},

	AluIAdd:  {"iadd", 2},
	AluISub:  {"isub", 2},
	AluIMul:  {"imul", 2},
	AluIDiv:  {"idiv", 2},
	AluUDiv:  {"udiv", 2},
	AluIMod:  {"imod", 2},
	AluUMod:  {"umod", 2},
	AluINeg:  {"ineg", 1},
	AluIAbs:  {"iabs", 1},
	AluISign: {"isign", 1},
	AluIMin:  {"imin", 2},
	AluIMax:  {"imax", 2},
	AluUMin:  {"umin", 2},
	AluUMax:  {"umax", 2},

	AluIShl: {"ishl", 2},
	AluIShr: {"ishr", 2},
	AluUShr: {"ushr", 2},
	AluIAnd: {"iand", 2},
	AluIOr:  {"ior", 2},
	AluIXor: {"ixor", 2},
	AluINot: {"inot", 1},

	AluIEq: {"ieq", 2},
	AluINe: {"ine", 2},
	AluILt: {"ilt", 2},
	AluIGe: {"ige", 2},
	AluULt: {"ult", 2},
	AluUGe: {"uge", 2},

	AluB2F32: {"b2f32", 1},
	AluB2I32: {"b2i32", 1},
	AluI2F32: {"i2f32", 1},
	AluU2F32: {"u2f32", 1},
	AluF2I32: {"f2i32", 1},
	AluF2U32: {"f2u32", 1},
	AluF2F16: {"f2f16", 1},
	AluF2F32: {"f2f32", 1},
	AluF2F64: {"f2f64", 1},
	AluI2I8:  {"i2i8", 1},
	AluI2I16: {"i2i16", 1},
	AluI2I32: {"i2i32", 1},
	AluI2I64: {"i2i64", 1},
	AluU2U8:  {"u2u8", 1},
	AluU2U16: {"u2u16", 1},
	AluU2U32: {"u2u32", 1},
	AluU2U64: {"u2u64", 1},

	AluBCSel: {"bcsel", 3},
}

// Info returns the op's fixed shape.
func (op AluOp) Info() AluOpInfo {
	if uint16(op) >= NumAluOps {
		return AluOpInfo{Name: "invalid"}
	}
	return aluOpInfos[op]
}

// String returns the op mnemonic.
func (op AluOp) String() string {
	return op.Info().Name
}
