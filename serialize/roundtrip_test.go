package serialize

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/gogpu/nir/blob"
	"github.com/gogpu/nir/ir"
)

func serializeBytes(t *testing.T, s *ir.Shader, opts Options) []byte {
	t.Helper()
	w := blob.NewWriter()
	Serialize(w, s, opts)
	return w.Bytes()
}

func roundTrip(t *testing.T, s *ir.Shader, opts Options) *ir.Shader {
	t.Helper()
	return Deserialize(blob.NewReader(serializeBytes(t, s, opts)))
}

func validateClean(t *testing.T, s *ir.Shader) {
	t.Helper()
	errs, err := ir.Validate(s)
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if len(errs) != 0 {
		t.Fatalf("Expected a valid shader, got %d errors, first: %s", len(errs), errs[0].Error())
	}
}

func collectInstrs(list *ir.CFList, out *[]ir.Instr) {
	for _, node := range list.Nodes {
		switch n := node.(type) {
		case *ir.Block:
			*out = append(*out, n.Instrs...)
		case *ir.If:
			collectInstrs(&n.Then, out)
			collectInstrs(&n.Else, out)
		case *ir.Loop:
			collectInstrs(&n.Body, out)
		}
	}
}

// buildLoopShader constructs a fragment shader whose body holds a loop
// with a two-component phi, an inner if that conditionally writes the
// shader output from the phi value, and a back-edge update.
func buildLoopShader() *ir.Shader {
	s := ir.NewShader(ir.StageFragment)
	s.Info.Name = "loop_sample"
	s.NumInputs = 1
	s.NumOutputs = 1

	s.AddVariable(&ir.Variable{
		Name: "cond_in",
		Type: ir.TypeScalar(ir.BaseUint, 32),
		Data: ir.VarData{Mode: ir.ModeShaderIn, Location: 0},
	})
	s.AddVariable(&ir.Variable{
		Name: "color_out",
		Type: ir.TypeVector(ir.BaseFloat, 32, 2),
		Data: ir.VarData{Mode: ir.ModeShaderOut, Location: 0},
	})

	fn := s.AddFunction("main")
	fn.IsEntryPoint = true
	impl := ir.NewFunctionImpl(fn)
	b := ir.NewBuilder(impl)

	entry := b.Block()
	zero := b.LoadConst(32, 0)
	initial := b.LoadConst(32, 1, 2)

	b.PushLoop()
	phi := b.Phi(2, 32)
	phi.AddSrc(entry, initial)
	flag := b.LoadInput(1, 32, zero, 0, 0)

	b.PushIf(flag)
	b.StoreOutput(phi.Dest.SSA, zero, 0, 0x3, 0)
	b.Jump(ir.JumpBreak)
	b.StartElse()
	b.PopIf()

	next := b.Alu(ir.AluIAdd, phi.Dest.SSA, initial)
	phi.AddSrc(b.Block(), next)
	b.Jump(ir.JumpContinue)
	b.PopLoop()

	b.Jump(ir.JumpReturn)
	return s
}

func TestRoundTrip_LoopShader(t *testing.T) {
	original := buildLoopShader()
	validateClean(t, original)

	clone := roundTrip(t, original, Options{})
	validateClean(t, clone)

	if got, want := ir.Sprint(clone), ir.Sprint(original); got != want {
		t.Errorf("Round trip changed the listing.\nwant:\n%s\ngot:\n%s", want, got)
	}
}

// TestRoundTrip_LoopScenario pins the structural contract for the
// canonical loop graph: one function, a loop containing an if, a
// two-source phi, and an output write fed by the phi's value.
func TestRoundTrip_LoopScenario(t *testing.T) {
	clone := roundTrip(t, buildLoopShader(), Options{})

	if len(clone.Functions) != 1 {
		t.Fatalf("Expected 1 function, got %d", len(clone.Functions))
	}
	impl := clone.Functions[0].Impl
	if impl == nil {
		t.Fatal("Expected the function to keep its body")
	}

	loop, ok := impl.Body.Nodes[1].(*ir.Loop)
	if !ok {
		t.Fatalf("Expected a loop at body node 1, got %T", impl.Body.Nodes[1])
	}
	nif, ok := loop.Body.Nodes[1].(*ir.If)
	if !ok {
		t.Fatalf("Expected an if at loop node 1, got %T", loop.Body.Nodes[1])
	}

	head := loop.Body.StartBlock()
	phi, ok := head.Instrs[0].(*ir.PhiInstr)
	if !ok {
		t.Fatalf("Expected a phi at the loop head, got %T", head.Instrs[0])
	}
	if len(phi.Srcs) != 2 {
		t.Fatalf("Expected 2 phi sources, got %d", len(phi.Srcs))
	}
	if phi.Dest.SSA.NumComponents != 2 || phi.Dest.SSA.BitSize != 32 {
		t.Errorf("Expected a 2x32 phi, got %dx%d", phi.Dest.SSA.NumComponents, phi.Dest.SSA.BitSize)
	}

	store, ok := nif.Then.StartBlock().Instrs[0].(*ir.IntrinsicInstr)
	if !ok || store.Op != ir.IntrinsicStoreOutput {
		t.Fatalf("Expected store_output in the then-branch, got %T", nif.Then.StartBlock().Instrs[0])
	}
	if store.Srcs[0].SSA != phi.Dest.SSA {
		t.Error("Expected the output write to source the phi value")
	}
}

// TestRoundTrip_PhiForwardReference checks that a phi edge naming a
// block and value that appear after the phi resolves to the rebuilt
// objects rather than stale or nil ones.
func TestRoundTrip_PhiForwardReference(t *testing.T) {
	clone := roundTrip(t, buildLoopShader(), Options{})

	impl := clone.Functions[0].Impl
	loop := impl.Body.Nodes[1].(*ir.Loop)
	head := loop.Body.StartBlock()
	tail := loop.Body.TailBlock()
	phi := head.Instrs[0].(*ir.PhiInstr)

	var backEdge *ir.PhiSrc
	for _, ps := range phi.Srcs {
		if ps.Pred == tail {
			backEdge = ps
		}
	}
	if backEdge == nil {
		t.Fatal("Expected a phi edge from the loop tail block")
	}

	add, ok := tail.Instrs[0].(*ir.AluInstr)
	if !ok || add.Op != ir.AluIAdd {
		t.Fatalf("Expected iadd in the loop tail, got %T", tail.Instrs[0])
	}
	if backEdge.Src.SSA != add.Dest.Dest.SSA {
		t.Error("Expected the back edge to carry the iadd result")
	}

	found := false
	for _, use := range add.Dest.Dest.SSA.Uses {
		if use == &backEdge.Src {
			found = true
		}
	}
	if !found {
		t.Error("Expected the phi edge to be registered as a use of the iadd result")
	}
}

func TestRoundTrip_Idempotent(t *testing.T) {
	original := buildLoopShader()
	first := serializeBytes(t, original, Options{})
	clone := Deserialize(blob.NewReader(first))
	second := serializeBytes(t, clone, Options{})

	if !bytes.Equal(first, second) {
		t.Errorf("Re-serialization is not byte-identical: %d vs %d bytes", len(first), len(second))
	}
}

func TestRoundTrip_EmptyShader(t *testing.T) {
	clone := roundTrip(t, ir.NewShader(ir.StageVertex), Options{})
	if clone.Info.Stage != ir.StageVertex {
		t.Errorf("Expected vertex stage, got %s", clone.Info.Stage)
	}
	if len(clone.Functions) != 0 || len(clone.Uniforms) != 0 || clone.ConstantData != nil {
		t.Error("Expected an empty shader to stay empty")
	}
}

func TestRoundTrip_ComputeInfo(t *testing.T) {
	s := ir.NewShader(ir.StageCompute)
	s.Info.WorkgroupSize = [3]uint32{8, 4, 1}
	s.Info.SharedSize = 1024
	s.Info.SystemValuesRead = 1 << 16
	s.NumShared = 1
	s.AddVariable(&ir.Variable{
		Name: "tile",
		Type: ir.TypeArrayOf(ir.TypeScalar(ir.BaseFloat, 32), 64, 4),
		Data: ir.VarData{Mode: ir.ModeShared},
	})

	fn := s.AddFunction("main")
	fn.IsEntryPoint = true
	impl := ir.NewFunctionImpl(fn)
	b := ir.NewBuilder(impl)
	b.Intrinsic(ir.IntrinsicBarrier, 0, 0, nil)
	b.Jump(ir.JumpReturn)

	clone := roundTrip(t, s, Options{})
	if clone.Info.WorkgroupSize != s.Info.WorkgroupSize {
		t.Errorf("Workgroup size = %v, want %v", clone.Info.WorkgroupSize, s.Info.WorkgroupSize)
	}
	if clone.Info.SharedSize != 1024 || clone.Info.SystemValuesRead != 1<<16 {
		t.Error("Compute info fields did not survive the round trip")
	}
	if len(clone.Shared) != 1 || clone.Shared[0].Type != s.Shared[0].Type {
		t.Error("Expected the shared variable to keep its interned type")
	}
}

// buildKitchenSink exercises every instruction kind, register forms
// with indirects, deref chains of all kinds, a signature-only callee,
// variable initializers, and trailing constant data.
func buildKitchenSink() *ir.Shader {
	s := ir.NewShader(ir.StageFragment)
	s.Info.Name = "kitchen_sink"
	s.Info.Label = "unit test"
	s.Info.NumTextures = 2
	s.Info.NumUBOs = 1
	s.Info.NumImages = 1
	s.Info.InputsRead = 0x1
	s.Info.OutputsWritten = 0x1
	s.Info.SystemValuesRead = 1 << 9
	s.Info.Flags = ir.InfoUsesDiscard | ir.InfoUsesTextureGather

	lightType := ir.TypeStructOf("Light", []ir.StructField{
		{Name: "dir", Type: ir.TypeVector(ir.BaseFloat, 32, 4)},
		{Name: "intensity", Type: ir.TypeScalar(ir.BaseFloat, 32), Offset: 16},
	})

	lights := &ir.Variable{
		Name: "lights",
		Type: ir.TypeArrayOf(lightType, 4, 32),
		Data: ir.VarData{Mode: ir.ModeUBO, Binding: 1, DescriptorSet: 0, Location: 9},
	}
	s.AddVariable(lights)
	s.AddVariable(&ir.Variable{
		Name: "albedo",
		Type: ir.TypeSampler(ir.SamplerDim2D, false, false),
		Data: ir.VarData{Mode: ir.ModeUniform, Binding: 2},
	})
	s.AddVariable(&ir.Variable{
		Name: "lut",
		Type: ir.TypeImage(ir.SamplerDim2D, false, ir.BaseFloat),
		Data: ir.VarData{Mode: ir.ModeUniform, Binding: 3},
	})
	s.AddVariable(&ir.Variable{
		Name: "push_scale",
		Type: ir.TypeScalar(ir.BaseFloat, 32),
		Data: ir.VarData{Mode: ir.ModePushConst, Offset: 8},
	})
	s.AddVariable(&ir.Variable{
		Name: "uv_in",
		Type: ir.TypeVector(ir.BaseFloat, 32, 2),
		Data: ir.VarData{Mode: ir.ModeShaderIn, Interp: ir.InterpSmooth, Location: 0},
	})
	s.AddVariable(&ir.Variable{
		Name: "color_out",
		Type: ir.TypeVector(ir.BaseFloat, 32, 4),
		Data: ir.VarData{Mode: ir.ModeShaderOut, Location: 0},
	})
	// Anonymous shared scratch: exercises the nameless encoding.
	s.AddVariable(&ir.Variable{
		Type: ir.TypeArrayOf(ir.TypeScalar(ir.BaseFloat, 32), 64, 4),
		Data: ir.VarData{Mode: ir.ModeShared},
	})

	ambient := &ir.Variable{
		Name: "ambient",
		Type: ir.TypeVector(ir.BaseFloat, 32, 4),
		Data: ir.VarData{Mode: ir.ModeGlobal},
	}
	ambient.ConstantInit = &ir.Constant{
		Elements: []*ir.Constant{{}, {}},
	}
	ambient.ConstantInit.Values[0] = 0x3f800000
	ambient.ConstantInit.Elements[1].Values[3] = 0xffeeddccbbaa9988
	s.AddVariable(ambient)

	s.AddVariable(&ir.Variable{
		Name: "frag_coord",
		Type: ir.TypeVector(ir.BaseFloat, 32, 4),
		Data: ir.VarData{Mode: ir.ModeSystemValue},
	})

	helper := s.AddFunction("helper")
	helper.Params = []ir.Param{{NumComponents: 2, BitSize: 32}}

	fn := s.AddFunction("main")
	fn.IsEntryPoint = true
	impl := ir.NewFunctionImpl(fn)
	b := ir.NewBuilder(impl)

	impl.AddLocal(&ir.Variable{
		Name: "tmp",
		Type: ir.TypeVector(ir.BaseFloat, 32, 4),
		Data: ir.VarData{Mode: ir.ModeFunctionTemp},
	})

	reg := impl.NewRegister(4, 32)
	spill := impl.NewRegister(1, 64)
	spill.NumArrayElems = 8
	spill.Name = "spill"

	zero := b.LoadConst(32, 0)
	one := b.LoadConst(32, 1)
	b.LoadConst(64, 0xdeadbeefcafebabe)
	b.LoadConst(32, 1, 2, 3, 4, 5, 6, 7, 8)
	uv := b.LoadInput(2, 32, zero, 0, 0)

	root := b.DerefVar(lights)
	elem := b.DerefArray(root, one)
	dirD := b.DerefStruct(elem, 0)
	dir := b.LoadDeref(dirD, 4, 32)

	wild := &ir.DerefInstr{
		Kind:   ir.DerefArrayWildcard,
		Mode:   root.Mode,
		Type:   lightType,
		Parent: ir.SrcForSSA(root.Dest.SSA),
	}
	wild.Dest = ir.DestForSSA(impl.NewDef(wild, 1, 32))
	b.Insert(wild)

	cast := &ir.DerefInstr{
		Kind:          ir.DerefCast,
		Mode:          root.Mode,
		Type:          lightType,
		Parent:        ir.SrcForSSA(wild.Dest.SSA),
		CastPtrStride: 32,
	}
	cast.Dest = ir.DestForSSA(impl.NewDef(cast, 1, 32))
	b.Insert(cast)

	paa := &ir.DerefInstr{
		Kind:   ir.DerefPtrAsArray,
		Mode:   root.Mode,
		Type:   lightType,
		Parent: ir.SrcForSSA(cast.Dest.SSA),
		Index:  ir.SrcForSSA(zero),
	}
	paa.Dest = ir.DestForSSA(impl.NewDef(paa, 1, 32))
	b.Insert(paa)

	lit := b.Alu(ir.AluFMul, dir, dir)
	mul := lit.Parent.(*ir.AluInstr)
	mul.Exact = true
	mul.Srcs[1].Negate = true
	mul.Srcs[1].Abs = true
	mul.Srcs[1].Swizzle = [4]uint8{3, 2, 1, 0}
	mul.Dest.Saturate = true

	sum := b.Alu(ir.AluIAdd, one, one)
	add := sum.Parent.(*ir.AluInstr)
	add.NoSignedWrap = true
	add.NoUnsignedWrap = true

	movToReg := &ir.AluInstr{
		Op:   ir.AluMov,
		Srcs: []ir.AluSrc{{Src: ir.SrcForSSA(lit), Swizzle: [4]uint8{0, 1, 2, 3}}},
	}
	movToReg.Dest.WriteMask = 0xf
	movToReg.Dest.Dest = ir.DestForReg(reg)
	b.Insert(movToReg)

	wide := b.Undef(1, 64)

	spillStore := &ir.AluInstr{
		Op:   ir.AluMov,
		Srcs: []ir.AluSrc{{Src: ir.SrcForSSA(wide), Swizzle: [4]uint8{0, 1, 2, 3}}},
	}
	spillStore.Dest.WriteMask = 0x1
	storeRef := &ir.RegRef{Reg: spill, BaseOffset: 2}
	storeIdx := ir.SrcForSSA(sum)
	storeRef.Indirect = &storeIdx
	spillStore.Dest.Dest = ir.Dest{Reg: storeRef}
	b.Insert(spillStore)

	spillLoad := &ir.AluInstr{Op: ir.AluMov}
	loadSrc := ir.SrcForReg(spill)
	loadSrc.Reg.BaseOffset = 1
	loadIdx := ir.SrcForSSA(sum)
	loadSrc.Reg.Indirect = &loadIdx
	spillLoad.Srcs = []ir.AluSrc{{Src: loadSrc, Swizzle: [4]uint8{0, 1, 2, 3}}}
	spillLoad.Dest.WriteMask = 0x1
	spillLoad.Dest.Dest = ir.DestForSSA(impl.NewDef(spillLoad, 1, 64))
	b.Insert(spillLoad)

	tg4 := &ir.TexInstr{
		Op:               ir.TexOpTg4,
		TextureIndex:     1,
		SamplerIndex:     2,
		TextureArraySize: 6,
		SamplerDim:       ir.SamplerDimCube,
		DestType:         ir.TypeFloat32,
		CoordComponents:  2,
		IsArray:          true,
		Component:        3,
		TG4Offsets:       [4][2]int8{{0, 1}, {1, -1}, {-2, 0}, {3, 2}},
	}
	tg4.Srcs = []ir.TexSrc{
		{Type: ir.TexSrcCoord, Src: ir.SrcForSSA(uv)},
		{Type: ir.TexSrcOffset, Src: ir.SrcForSSA(sum)},
	}
	tg4.Dest = ir.DestForSSA(impl.NewDef(tg4, 4, 32))
	b.Insert(tg4)

	texl := &ir.TexInstr{
		Op:              ir.TexOpTxl,
		SamplerDim:      ir.SamplerDim2D,
		DestType:        ir.TypeFloat32,
		CoordComponents: 2,
	}
	texl.Srcs = []ir.TexSrc{
		{Type: ir.TexSrcCoord, Src: ir.SrcForSSA(uv)},
		{Type: ir.TexSrcLod, Src: ir.SrcForSSA(zero)},
	}
	texl.Dest = ir.DestForSSA(impl.NewDef(texl, 4, 32))
	b.Insert(texl)

	b.Call(helper, ir.SrcForSSA(uv))

	cmp := b.Alu(ir.AluULt, sum, one)
	b.Intrinsic(ir.IntrinsicDiscardIf, 0, 0, []*ir.Def{cmp})
	b.Intrinsic(ir.IntrinsicBarrier, 0, 0, nil)
	b.Intrinsic(ir.IntrinsicLoadFrontFace, 1, 1, nil)

	b.PushIf(cmp)
	b.StoreOutput(tg4.Dest.SSA, zero, 0, 0xf, 0)
	b.StartElse()
	b.StoreOutput(texl.Dest.SSA, zero, 0, 0xf, 0)
	b.PopIf()
	b.Jump(ir.JumpReturn)

	s.NumInputs = 1
	s.NumUniforms = 3
	s.NumOutputs = 1
	s.NumShared = 1
	s.ScratchSize = 64
	s.ConstantData = []byte{0xde, 0xad, 0xbe, 0xef, 0x00, 0x42}
	return s
}

func TestRoundTrip_KitchenSink(t *testing.T) {
	original := buildKitchenSink()
	validateClean(t, original)

	clone := roundTrip(t, original, Options{})
	validateClean(t, clone)

	if got, want := ir.Sprint(clone), ir.Sprint(original); got != want {
		t.Errorf("Round trip changed the listing.\nwant:\n%s\ngot:\n%s", want, got)
	}
	if !bytes.Equal(clone.ConstantData, original.ConstantData) {
		t.Errorf("Constant data = %x, want %x", clone.ConstantData, original.ConstantData)
	}

	info := clone.Info
	if info.Name != "kitchen_sink" || info.Label != "unit test" {
		t.Errorf("Info strings = %q/%q", info.Name, info.Label)
	}
	if info.NumTextures != 2 || info.NumUBOs != 1 || info.NumImages != 1 {
		t.Error("Resource counts did not survive the round trip")
	}
	if info.Flags != ir.InfoUsesDiscard|ir.InfoUsesTextureGather {
		t.Errorf("Info flags = %#x", info.Flags)
	}
	if clone.NumUniforms != 3 || clone.ScratchSize != 64 {
		t.Error("Scalar stats did not survive the round trip")
	}
}

func TestRoundTrip_KitchenSinkDetails(t *testing.T) {
	original := buildKitchenSink()
	clone := roundTrip(t, original, Options{})

	// Interning gives back pointer-identical types.
	if clone.Uniforms[0].Type != original.Uniforms[0].Type {
		t.Error("Expected the UBO array type to intern to the same *Type")
	}
	if clone.Uniforms[0].Data.Location != 9 {
		t.Errorf("UBO location = %d, want 9", clone.Uniforms[0].Data.Location)
	}
	if clone.Inputs[0].Data.Interp != ir.InterpSmooth {
		t.Errorf("Input interpolation = %d, want smooth", clone.Inputs[0].Data.Interp)
	}
	if clone.Shared[0].Name != "" {
		t.Errorf("Expected the shared variable to stay anonymous, got %q", clone.Shared[0].Name)
	}

	init := clone.Globals[0].ConstantInit
	if init == nil {
		t.Fatal("Expected the global initializer to survive")
	}
	if init.Values[0] != 0x3f800000 || len(init.Elements) != 2 {
		t.Errorf("Initializer root = %x with %d elements", init.Values[0], len(init.Elements))
	}
	if init.Elements[1].Values[3] != 0xffeeddccbbaa9988 {
		t.Errorf("Nested initializer value = %x", init.Elements[1].Values[3])
	}

	helper := clone.Functions[0]
	if helper.Name != "helper" || helper.Impl != nil {
		t.Fatalf("Expected a signature-only helper, got %q impl=%v", helper.Name, helper.Impl)
	}
	if len(helper.Params) != 1 || helper.Params[0] != (ir.Param{NumComponents: 2, BitSize: 32}) {
		t.Errorf("Helper params = %+v", helper.Params)
	}

	impl := clone.Functions[1].Impl
	if impl.RegAlloc != 2 || len(impl.Registers) != 2 {
		t.Fatalf("Expected 2 registers, got %d (alloc %d)", len(impl.Registers), impl.RegAlloc)
	}
	spill := impl.Registers[1]
	if spill.Name != "spill" || spill.NumArrayElems != 8 || spill.BitSize != 64 {
		t.Errorf("Spill register = %+v", spill)
	}
	if len(impl.Locals) != 1 || impl.Locals[0].Data.Mode != ir.ModeFunctionTemp {
		t.Error("Expected one function-temp local")
	}

	var instrs []ir.Instr
	collectInstrs(&impl.Body, &instrs)

	var tg4 *ir.TexInstr
	var call *ir.CallInstr
	var derefKinds []ir.DerefKind
	for _, instr := range instrs {
		switch i := instr.(type) {
		case *ir.TexInstr:
			if i.Op == ir.TexOpTg4 {
				tg4 = i
			}
		case *ir.CallInstr:
			call = i
		case *ir.DerefInstr:
			derefKinds = append(derefKinds, i.Kind)
		}
	}

	if tg4 == nil {
		t.Fatal("Expected a tg4 instruction")
	}
	if tg4.TG4Offsets != [4][2]int8{{0, 1}, {1, -1}, {-2, 0}, {3, 2}} {
		t.Errorf("TG4 offsets = %v", tg4.TG4Offsets)
	}
	if tg4.TextureArraySize != 6 || !tg4.IsArray || tg4.SamplerDim != ir.SamplerDimCube {
		t.Error("Tex fields did not survive the round trip")
	}
	if tg4.Srcs[1].Type != ir.TexSrcOffset {
		t.Errorf("Tex source role = %s, want offset", tg4.Srcs[1].Type)
	}

	if call == nil {
		t.Fatal("Expected a call instruction")
	}
	if call.Callee != helper {
		t.Error("Expected the call to reference the rebuilt helper function")
	}

	wantKinds := []ir.DerefKind{
		ir.DerefVar, ir.DerefArray, ir.DerefStruct,
		ir.DerefArrayWildcard, ir.DerefCast, ir.DerefPtrAsArray,
	}
	if len(derefKinds) != len(wantKinds) {
		t.Fatalf("Deref kinds = %v, want %v", derefKinds, wantKinds)
	}
	for n := range wantKinds {
		if derefKinds[n] != wantKinds[n] {
			t.Errorf("Deref kind %d = %s, want %s", n, derefKinds[n], wantKinds[n])
		}
	}
}

func TestRoundTrip_KitchenSinkIdempotent(t *testing.T) {
	first := serializeBytes(t, buildKitchenSink(), Options{})
	second := serializeBytes(t, Deserialize(blob.NewReader(first)), Options{})
	if !bytes.Equal(first, second) {
		t.Errorf("Re-serialization is not byte-identical: %d vs %d bytes", len(first), len(second))
	}
}

func TestSerializeDeserialize_NormalizesInPlace(t *testing.T) {
	s := buildLoopShader()
	SerializeDeserialize(s, Options{})
	validateClean(t, s)

	for _, fn := range s.Functions {
		if fn.Shader != s {
			t.Error("Expected function backlinks to point at the normalized shader")
		}
	}
	if got, want := ir.Sprint(s), ir.Sprint(buildLoopShader()); got != want {
		t.Errorf("Normalization changed the listing.\nwant:\n%s\ngot:\n%s", want, got)
	}
}

func TestSerialize_ParallelCopyPanics(t *testing.T) {
	s := ir.NewShader(ir.StageVertex)
	fn := s.AddFunction("main")
	fn.IsEntryPoint = true
	impl := ir.NewFunctionImpl(fn)
	impl.StartBlock().Append(&ir.ParallelCopyInstr{})

	expectPanic(t, "Serialize", func() {
		Serialize(blob.NewWriter(), s, Options{})
	})
}

func TestDeserialize_ObjectCountCeiling(t *testing.T) {
	data := serializeBytes(t, buildLoopShader(), Options{})
	binary.LittleEndian.PutUint32(data[:4], MaxObjects+1)

	expectPanic(t, "Deserialize", func() {
		Deserialize(blob.NewReader(data))
	})
}

func TestDeserialize_TruncatedBlob(t *testing.T) {
	data := serializeBytes(t, buildKitchenSink(), Options{})
	expectPanic(t, "Deserialize", func() {
		Deserialize(blob.NewReader(data[:len(data)/2]))
	})
}
