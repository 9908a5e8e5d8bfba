package serialize

import (
	"bytes"
	"testing"

	"github.com/gogpu/nir/blob"
	"github.com/gogpu/nir/ir"
)

// buildNamedShader carries a debug name in every strippable slot, all
// sharing the "dbg_" prefix so a byte scan can prove their absence.
func buildNamedShader() *ir.Shader {
	s := ir.NewShader(ir.StageVertex)
	s.Info.Name = "dbg_shader"
	s.Info.Label = "dbg_label"

	s.AddVariable(&ir.Variable{
		Name: "dbg_var",
		Type: ir.TypeVector(ir.BaseFloat, 32, 4),
		Data: ir.VarData{Mode: ir.ModeUniform, Location: 7, Binding: 4},
	})
	s.AddVariable(&ir.Variable{
		Name: "dbg_in",
		Type: ir.TypeVector(ir.BaseFloat, 32, 4),
		Data: ir.VarData{Mode: ir.ModeShaderIn, Location: 3},
	})
	s.AddVariable(&ir.Variable{
		Name: "dbg_light",
		Type: ir.TypeStructOf("Light", []ir.StructField{
			{Name: "dir", Type: ir.TypeVector(ir.BaseFloat, 32, 4)},
		}),
		Data: ir.VarData{Mode: ir.ModeUBO, Binding: 1, Location: 5},
	})

	fn := s.AddFunction("dbg_main")
	fn.IsEntryPoint = true
	impl := ir.NewFunctionImpl(fn)
	b := ir.NewBuilder(impl)

	reg := impl.NewRegister(1, 32)
	reg.Name = "dbg_reg"

	c := b.LoadConst(32, 42)
	v := b.Mov(c)
	v.Name = "dbg_val"

	mov := &ir.AluInstr{
		Op:   ir.AluMov,
		Srcs: []ir.AluSrc{{Src: ir.SrcForSSA(v), Swizzle: [4]uint8{0, 1, 2, 3}}},
	}
	mov.Dest.WriteMask = 0x1
	mov.Dest.Dest = ir.DestForReg(reg)
	b.Insert(mov)

	b.Jump(ir.JumpReturn)
	return s
}

func TestStrip_RemovesNameBytes(t *testing.T) {
	s := buildNamedShader()

	plain := serializeBytes(t, s, Options{})
	if !bytes.Contains(plain, []byte("dbg_")) {
		t.Fatal("Expected debug names in the unstripped blob")
	}

	stripped := serializeBytes(t, s, Options{Strip: true})
	if bytes.Contains(stripped, []byte("dbg_")) {
		t.Error("Expected no debug names in the stripped blob")
	}
	if len(stripped) >= len(plain) {
		t.Errorf("Expected the stripped blob to shrink: %d vs %d bytes", len(stripped), len(plain))
	}
}

func TestStrip_ZeroesNonIOLocations(t *testing.T) {
	clone := roundTrip(t, buildNamedShader(), Options{Strip: true})

	if loc := clone.Uniforms[0].Data.Location; loc != 0 {
		t.Errorf("Uniform location = %d, want 0 after stripping", loc)
	}
	if loc := clone.Uniforms[1].Data.Location; loc != 0 {
		t.Errorf("UBO location = %d, want 0 after stripping", loc)
	}
	if loc := clone.Inputs[0].Data.Location; loc != 3 {
		t.Errorf("Input location = %d, want 3", loc)
	}
	if clone.Uniforms[0].Data.Binding != 4 {
		t.Error("Expected bindings to survive stripping")
	}
}

func TestStrip_PreservesGraph(t *testing.T) {
	original := buildNamedShader()
	clone := roundTrip(t, original, Options{Strip: true})
	validateClean(t, clone)

	if clone.Info.Stage != ir.StageVertex {
		t.Errorf("Stage = %s, want vertex", clone.Info.Stage)
	}
	if clone.Info.Name != "" || clone.Info.Label != "" {
		t.Errorf("Info strings = %q/%q, want empty", clone.Info.Name, clone.Info.Label)
	}
	if len(clone.Functions) != 1 || !clone.Functions[0].IsEntryPoint {
		t.Fatal("Expected the entry point to survive stripping")
	}

	impl := clone.Functions[0].Impl
	if len(impl.Registers) != 1 || impl.Registers[0].Name != "" {
		t.Error("Expected an anonymous register after stripping")
	}

	var instrs []ir.Instr
	collectInstrs(&impl.Body, &instrs)
	if len(instrs) != 4 {
		t.Fatalf("Expected 4 instructions, got %d", len(instrs))
	}
	if mov, ok := instrs[1].(*ir.AluInstr); !ok || mov.Dest.Dest.SSA.Name != "" {
		t.Error("Expected the value name to be stripped")
	}
}

func TestStrip_StructTypeNamesSurvive(t *testing.T) {
	original := buildNamedShader()
	stripped := serializeBytes(t, original, Options{Strip: true})

	if !bytes.Contains(stripped, []byte("Light")) {
		t.Error("Expected the struct type name to survive stripping")
	}

	clone := Deserialize(blob.NewReader(stripped))
	if clone.Uniforms[1].Type != original.Uniforms[1].Type {
		t.Error("Expected the struct type to intern back to the same *Type")
	}
}

// TestStrip_Canonical proves the stripped form is a fixed point: once
// debug data is gone, re-serialization with or without stripping
// yields identical bytes. Cache keys depend on this.
func TestStrip_Canonical(t *testing.T) {
	first := serializeBytes(t, buildNamedShader(), Options{Strip: true})
	clone := Deserialize(blob.NewReader(first))

	again := serializeBytes(t, clone, Options{Strip: true})
	if !bytes.Equal(first, again) {
		t.Error("Expected stripping to be idempotent")
	}

	plain := serializeBytes(t, clone, Options{})
	if !bytes.Equal(first, plain) {
		t.Error("Expected a stripped clone to re-serialize identically without the strip option")
	}
}
