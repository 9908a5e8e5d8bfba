package ir

// IntrinsicOp identifies a builtin operation.
type IntrinsicOp uint16

const (
	// Deref-based memory access
	IntrinsicLoadDeref IntrinsicOp = iota
	IntrinsicStoreDeref
	IntrinsicCopyDeref

	// Direct I/O
	IntrinsicLoadInput
	IntrinsicStoreOutput
	IntrinsicLoadUniform
	IntrinsicLoadUBO
	IntrinsicLoadSSBO
	IntrinsicStoreSSBO
	IntrinsicLoadShared
	IntrinsicStoreShared
	IntrinsicLoadPushConstant

	// System values
	IntrinsicLoadVertexID
	IntrinsicLoadInstanceID
	IntrinsicLoadFrontFace
	IntrinsicLoadFragCoord
	IntrinsicLoadLocalInvocationID
	IntrinsicLoadGlobalInvocationID
	IntrinsicLoadWorkgroupID
	IntrinsicLoadNumWorkgroups

	// Fragment and geometry control
	IntrinsicDiscard
	IntrinsicDiscardIf
	IntrinsicEmitVertex
	IntrinsicEndPrimitive

	// Synchronization
	IntrinsicBarrier
	IntrinsicMemoryBarrier

	intrinsicOpCount
)

// NumIntrinsicOps is the number of defined intrinsic operations.
const NumIntrinsicOps = uint16(intrinsicOpCount)

// IntrinsicInfo describes the fixed shape of an intrinsic: its source
// count, constant-index count, and whether it produces a value.
// DestComponents is the fixed destination width, 0 when the width
// comes from the instruction.
type IntrinsicInfo struct {
	Name           string
	NumSrcs        uint8
	NumIndices     uint8
	HasDest        bool
	DestComponents uint8
}

var intrinsicInfos = [intrinsicOpCount]IntrinsicInfo{
	IntrinsicLoadDeref:  {Name: "load_deref", NumSrcs: 1, HasDest: true},
	IntrinsicStoreDeref: {Name: "store_deref", NumSrcs: 2, NumIndices: 1}, // wrmask
	IntrinsicCopyDeref:  {Name: "copy_deref", NumSrcs: 2},

	IntrinsicLoadInput:        {Name: "load_input", NumSrcs: 1, NumIndices: 2, HasDest: true},   // base, component
	IntrinsicStoreOutput:      {Name: "store_output", NumSrcs: 2, NumIndices: 3},                // base, wrmask, component
	IntrinsicLoadUniform:      {Name: "load_uniform", NumSrcs: 1, NumIndices: 2, HasDest: true}, // base, range
	IntrinsicLoadUBO:          {Name: "load_ubo", NumSrcs: 2, HasDest: true},
	IntrinsicLoadSSBO:         {Name: "load_ssbo", NumSrcs: 2, NumIndices: 1, HasDest: true}, // access
	IntrinsicStoreSSBO:        {Name: "store_ssbo", NumSrcs: 3, NumIndices: 2},               // wrmask, access
	IntrinsicLoadShared:       {Name: "load_shared", NumSrcs: 1, NumIndices: 1, HasDest: true},
	IntrinsicStoreShared:      {Name: "store_shared", NumSrcs: 2, NumIndices: 2},
	IntrinsicLoadPushConstant: {Name: "load_push_constant", NumSrcs: 1, NumIndices: 2, HasDest: true},

	IntrinsicLoadVertexID:           {Name: "load_vertex_id", HasDest: true, DestComponents: 1},
	IntrinsicLoadInstanceID:         {Name: "load_instance_id", HasDest: true, DestComponents: 1},
	IntrinsicLoadFrontFace:          {Name: "load_front_face", HasDest: true, DestComponents: 1},
	IntrinsicLoadFragCoord:          {Name: "load_frag_coord", HasDest: true, DestComponents: 4},
	IntrinsicLoadLocalInvocationID:  {Name: "load_local_invocation_id", HasDest: true, DestComponents: 3},
	IntrinsicLoadGlobalInvocationID: {Name: "load_global_invocation_id", HasDest: true, DestComponents: 3},
	IntrinsicLoadWorkgroupID:        {Name: "load_workgroup_id", HasDest: true, DestComponents: 3},
	IntrinsicLoadNumWorkgroups:      {Name: "load_num_workgroups", HasDest: true, DestComponents: 3},

	IntrinsicDiscard:      {Name: "discard"},
	IntrinsicDiscardIf:    {Name: "discard_if", NumSrcs: 1},
	IntrinsicEmitVertex:   {Name: "emit_vertex", NumIndices: 1},   // stream
	IntrinsicEndPrimitive: {Name: "end_primitive", NumIndices: 1}, // stream

	IntrinsicBarrier:       {Name: "barrier"},
	IntrinsicMemoryBarrier: {Name: "memory_barrier"},
}

// Info returns the op's fixed shape.
func (op IntrinsicOp) Info() IntrinsicInfo {
	if uint16(op) >= NumIntrinsicOps {
		return IntrinsicInfo{Name: "invalid"}
	}
	return intrinsicInfos[op]
}

// String returns the op name.
func (op IntrinsicOp) String() string {
	return op.Info().Name
}
