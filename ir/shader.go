package ir

// Stage identifies the pipeline stage a shader was compiled for.
type Stage uint8

const (
	StageVertex Stage = iota
	StageTessCtrl
	StageTessEval
	StageGeometry
	StageFragment
	StageCompute
	StageKernel
)

// String returns the stage name.
func (s Stage) String() string {
	switch s {
	case StageVertex:
		return "vertex"
	case StageTessCtrl:
		return "tess_ctrl"
	case StageTessEval:
		return "tess_eval"
	case StageGeometry:
		return "geometry"
	case StageFragment:
		return "fragment"
	case StageCompute:
		return "compute"
	case StageKernel:
		return "kernel"
	}
	return "unknown"
}

// InfoFlags is a bitfield of boolean shader-level properties.
type InfoFlags uint32

const (
	InfoUsesDiscard InfoFlags = 1 << iota
	InfoEarlyFragmentTests
	InfoUsesTextureGather
	InfoPositionInvariant
	InfoUsesFragCoord
)

// ShaderInfo holds stage-level metadata serialized alongside the
// graph. Name and Label are debug-only and subject to stripping.
type ShaderInfo struct {
	Name  string
	Label string

	Stage Stage

	// Resource counts
	NumTextures uint8
	NumUBOs     uint8
	NumSSBOs    uint8
	NumImages   uint8

	// Per-slot usage bitmasks
	InputsRead       uint64
	OutputsWritten   uint64
	SystemValuesRead uint64

	Flags InfoFlags

	// Compute-only
	WorkgroupSize [3]uint32
	SharedSize    uint32
}

// VarMode is a bitmask classifying where a variable lives. Exactly one
// bit is set per variable; the mask form allows mode-set queries.
type VarMode uint16

const (
	ModeShaderIn VarMode = 1 << iota
	ModeShaderOut
	ModeUniform
	ModeUBO
	ModeSSBO
	ModeShared
	ModeGlobal
	ModeSystemValue
	ModeFunctionTemp
	ModePushConst
)

// String returns the mode name for a single-bit mode value.
func (m VarMode) String() string {
	switch m {
	case ModeShaderIn:
		return "shader_in"
	case ModeShaderOut:
		return "shader_out"
	case ModeUniform:
		return "uniform"
	case ModeUBO:
		return "ubo"
	case ModeSSBO:
		return "ssbo"
	case ModeShared:
		return "shared"
	case ModeGlobal:
		return "global"
	case ModeSystemValue:
		return "system_value"
	case ModeFunctionTemp:
		return "function_temp"
	case ModePushConst:
		return "push_const"
	}
	return "unknown"
}

// VarFlags is a bitfield of per-variable boolean properties.
type VarFlags uint16

const (
	VarReadOnly VarFlags = 1 << iota
	VarPatch
	VarInvariant
	VarCentroid
	VarSample
	VarBindless
)

// InterpMode selects fragment input interpolation.
type InterpMode uint8

const (
	InterpNone InterpMode = iota
	InterpSmooth
	InterpFlat
	InterpNoPerspective
)

// VarData is the layout/state record of a variable. It is serialized
// field by field; Location is zeroed by strip mode unless the mode is
// shader_in or shader_out.
type VarData struct {
	Mode           VarMode
	Flags          VarFlags
	Interp         InterpMode
	Location       int32
	DriverLocation uint32
	Binding        uint32
	DescriptorSet  uint32
	Offset         int32
}

// Variable is a named or anonymous storage location outside plain SSA
// values: shader inputs/outputs, uniforms, function temporaries.
type Variable struct {
	Name         string
	Type         *Type
	Data         VarData
	ConstantInit *Constant // optional initializer
}

// Register is a mutable storage slot used by non-SSA sources and
// destinations (post-SSA or array access lowering).
type Register struct {
	Name          string
	Index         uint32
	NumComponents uint8
	BitSize       uint8
	NumArrayElems uint32 // 0 for non-array registers
}

// constantSlots is the fixed scalar capacity of one Constant node.
const constantSlots = 16

// Constant is a scalar vector or a recursively nested array of
// constants, used for variable initializers. Scalar payloads occupy
// the fixed-width Values block regardless of component count.
type Constant struct {
	Values   [constantSlots]uint64
	Elements []*Constant
}

// Param describes one function parameter slot.
type Param struct {
	NumComponents uint8
	BitSize       uint8
}

// Function is a function signature with an optional body.
type Function struct {
	Name         string
	Shader       *Shader
	Params       []Param
	IsEntryPoint bool
	Impl         *FunctionImpl
}

// FunctionImpl is a function body: local storage plus the control-flow
// tree holding all instructions.
type FunctionImpl struct {
	Function  *Function
	Locals    []*Variable
	Registers []*Register
	RegAlloc  uint32 // next register index
	SSAAlloc  uint32 // next SSA value index
	Body      CFList
}

// Shader is one compiled unit: variable lists, functions, metadata,
// and a raw trailing constant-data block.
type Shader struct {
	Info ShaderInfo

	Uniforms     []*Variable
	Inputs       []*Variable
	Outputs      []*Variable
	Shared       []*Variable
	Globals      []*Variable
	SystemValues []*Variable

	Functions []*Function

	// Scalar graph stats
	NumInputs   uint32
	NumUniforms uint32
	NumOutputs  uint32
	NumShared   uint32
	ScratchSize uint32

	ConstantData []byte
}

// NewShader returns an empty shader for the given stage.
func NewShader(stage Stage) *Shader {
	s := &Shader{}
	s.Info.Stage = stage
	return s
}

// AddFunction appends a new empty function (no body) to the shader.
func (s *Shader) AddFunction(name string) *Function {
	fn := &Function{Name: name, Shader: s}
	s.Functions = append(s.Functions, fn)
	return fn
}

// EntryPoint returns the function flagged as the entry point, or nil.
func (s *Shader) EntryPoint() *Function {
	for _, fn := range s.Functions {
		if fn.IsEntryPoint {
			return fn
		}
	}
	return nil
}

// AddVariable appends v to the list selected by its mode. Function
// temporaries belong to a FunctionImpl and are rejected here.
func (s *Shader) AddVariable(v *Variable) {
	switch v.Data.Mode {
	case ModeUniform, ModeUBO, ModeSSBO, ModePushConst:
		s.Uniforms = append(s.Uniforms, v)
	case ModeShaderIn:
		s.Inputs = append(s.Inputs, v)
	case ModeShaderOut:
		s.Outputs = append(s.Outputs, v)
	case ModeShared:
		s.Shared = append(s.Shared, v)
	case ModeGlobal:
		s.Globals = append(s.Globals, v)
	case ModeSystemValue:
		s.SystemValues = append(s.SystemValues, v)
	default:
		panic("nir/ir: AddVariable: variable mode " + v.Data.Mode.String() + " does not belong to a shader-level list")
	}
}

// NewFunctionImpl creates an empty body for fn and attaches it. The
// body starts with a single empty block.
func NewFunctionImpl(fn *Function) *FunctionImpl {
	impl := &FunctionImpl{Function: fn, Body: NewCFList()}
	fn.Impl = impl
	return impl
}

// StartBlock returns the first block of the body.
func (impl *FunctionImpl) StartBlock() *Block {
	return impl.Body.StartBlock()
}

// EndBlock returns the last block of the body.
func (impl *FunctionImpl) EndBlock() *Block {
	return impl.Body.TailBlock()
}

// AddLocal appends a function-temporary variable to the body.
func (impl *FunctionImpl) AddLocal(v *Variable) {
	impl.Locals = append(impl.Locals, v)
}

// NewRegister allocates a fresh register in this body.
func (impl *FunctionImpl) NewRegister(numComponents, bitSize uint8) *Register {
	reg := &Register{
		Index:         impl.RegAlloc,
		NumComponents: numComponents,
		BitSize:       bitSize,
	}
	impl.RegAlloc++
	impl.Registers = append(impl.Registers, reg)
	return reg
}

// NewDef allocates a fresh SSA value defined by parent.
func (impl *FunctionImpl) NewDef(parent Instr, numComponents, bitSize uint8) *Def {
	def := &Def{
		Index:         impl.SSAAlloc,
		NumComponents: numComponents,
		BitSize:       bitSize,
		Parent:        parent,
	}
	impl.SSAAlloc++
	return def
}
