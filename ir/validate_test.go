package ir

import (
	"strings"
	"testing"
)

func TestValidate_ValidShader(t *testing.T) {
	s := buildLoopShader()
	errors, err := Validate(s)
	if err != nil {
		t.Fatalf("Validate returned error: %v", err)
	}
	if len(errors) > 0 {
		t.Errorf("Valid shader has validation errors:")
		for _, e := range errors {
			t.Errorf("  - %s", e.Error())
		}
	}
}

func TestValidate_NilShader(t *testing.T) {
	_, err := Validate(nil)
	if err == nil {
		t.Error("Expected error for nil shader, got nil")
	}
}

func TestValidate_AluSourceCount(t *testing.T) {
	s := NewShader(StageCompute)
	fn := s.AddFunction("f")
	impl := NewFunctionImpl(fn)
	b := NewBuilder(impl)
	c := b.LoadConst(32, 1)

	// Hand-build an iadd with a single source.
	instr := &AluInstr{Op: AluIAdd, Srcs: []AluSrc{{Src: SrcForSSA(c)}}}
	instr.Dest.WriteMask = 0x1
	instr.Dest.Dest = DestForSSA(impl.NewDef(instr, 1, 32))
	b.Insert(instr)

	errors, err := Validate(s)
	if err != nil {
		t.Fatalf("Validate returned error: %v", err)
	}
	if !hasError(errors, "sources, expects") {
		t.Errorf("Expected source-count error, got %v", errors)
	}
}

func TestValidate_ForeignValue(t *testing.T) {
	s := NewShader(StageCompute)

	other := s.AddFunction("other")
	otherImpl := NewFunctionImpl(other)
	foreign := NewBuilder(otherImpl).LoadConst(32, 9)

	fn := s.AddFunction("f")
	impl := NewFunctionImpl(fn)
	b := NewBuilder(impl)
	b.Alu(AluINeg, foreign)
	_ = impl

	errors, err := Validate(s)
	if err != nil {
		t.Fatalf("Validate returned error: %v", err)
	}
	if !hasError(errors, "defined outside this body") {
		t.Errorf("Expected foreign-value error, got %v", errors)
	}
}

func TestValidate_AdjacentBlocks(t *testing.T) {
	s := NewShader(StageCompute)
	fn := s.AddFunction("f")
	impl := NewFunctionImpl(fn)
	impl.Body.Nodes = append(impl.Body.Nodes, &Block{})

	errors, err := Validate(s)
	if err != nil {
		t.Fatalf("Validate returned error: %v", err)
	}
	if !hasError(errors, "adjacent blocks") {
		t.Errorf("Expected adjacent-blocks error, got %v", errors)
	}
}

func TestValidate_ListEndsWithNonBlock(t *testing.T) {
	s := NewShader(StageCompute)
	fn := s.AddFunction("f")
	impl := NewFunctionImpl(fn)
	impl.Body.Nodes = append(impl.Body.Nodes, NewLoop())

	errors, err := Validate(s)
	if err != nil {
		t.Fatalf("Validate returned error: %v", err)
	}
	if !hasError(errors, "does not end with a block") {
		t.Errorf("Expected tail-block error, got %v", errors)
	}
}

func TestValidate_PhiPredOutsideBody(t *testing.T) {
	s := NewShader(StageCompute)
	fn := s.AddFunction("f")
	impl := NewFunctionImpl(fn)
	b := NewBuilder(impl)

	c := b.LoadConst(32, 1)
	phi := b.Phi(1, 32)
	phi.AddSrc(&Block{}, c)

	errors, err := Validate(s)
	if err != nil {
		t.Fatalf("Validate returned error: %v", err)
	}
	if !hasError(errors, "predecessor is outside this body") {
		t.Errorf("Expected phi predecessor error, got %v", errors)
	}
}

func TestValidate_PhiWithoutSources(t *testing.T) {
	s := NewShader(StageCompute)
	fn := s.AddFunction("f")
	impl := NewFunctionImpl(fn)
	NewBuilder(impl).Phi(1, 32)

	errors, err := Validate(s)
	if err != nil {
		t.Fatalf("Validate returned error: %v", err)
	}
	if !hasError(errors, "phi has no sources") {
		t.Errorf("Expected empty-phi error, got %v", errors)
	}
}

func TestValidate_DoubleDefinition(t *testing.T) {
	s := NewShader(StageCompute)
	fn := s.AddFunction("f")
	impl := NewFunctionImpl(fn)
	b := NewBuilder(impl)

	c := b.LoadConst(32, 1)
	dup := &LoadConstInstr{Def: c, Values: []uint64{1}}
	b.Insert(dup)

	errors, err := Validate(s)
	if err != nil {
		t.Fatalf("Validate returned error: %v", err)
	}
	if !hasError(errors, "defined more than once") {
		t.Errorf("Expected double-definition error, got %v", errors)
	}
}

func TestValidate_InvalidShape(t *testing.T) {
	s := NewShader(StageCompute)
	fn := s.AddFunction("f")
	impl := NewFunctionImpl(fn)
	b := NewBuilder(impl)
	b.LoadConst(24, 1, 1, 1, 1, 1) // 5 components of 24 bits

	errors, err := Validate(s)
	if err != nil {
		t.Fatalf("Validate returned error: %v", err)
	}
	if !hasError(errors, "invalid shape 5x24") {
		t.Errorf("Expected shape error, got %v", errors)
	}
}

func TestValidate_MultipleEntryPoints(t *testing.T) {
	s := NewShader(StageCompute)
	a := s.AddFunction("a")
	a.IsEntryPoint = true
	b := s.AddFunction("b")
	b.IsEntryPoint = true

	errors, err := Validate(s)
	if err != nil {
		t.Fatalf("Validate returned error: %v", err)
	}
	if !hasError(errors, "entry points") {
		t.Errorf("Expected entry-point error, got %v", errors)
	}
}

func TestValidate_VariableListMismatch(t *testing.T) {
	s := NewShader(StageCompute)
	s.Outputs = append(s.Outputs, &Variable{
		Name: "misfiled",
		Type: TypeScalar(BaseFloat, 32),
		Data: VarData{Mode: ModeShaderIn},
	})

	errors, err := Validate(s)
	if err != nil {
		t.Fatalf("Validate returned error: %v", err)
	}
	if !hasError(errors, "listed under outputs") {
		t.Errorf("Expected variable-list error, got %v", errors)
	}
}

func TestValidate_CallParamCount(t *testing.T) {
	s := NewShader(StageCompute)
	callee := s.AddFunction("helper")
	callee.Params = []Param{{NumComponents: 1, BitSize: 32}}

	fn := s.AddFunction("f")
	impl := NewFunctionImpl(fn)
	b := NewBuilder(impl)
	b.Insert(&CallInstr{Callee: callee})

	errors, err := Validate(s)
	if err != nil {
		t.Fatalf("Validate returned error: %v", err)
	}
	if !hasError(errors, "params, expects") {
		t.Errorf("Expected call-arity error, got %v", errors)
	}
}

func TestValidate_ParallelCopyRejected(t *testing.T) {
	s := NewShader(StageCompute)
	fn := s.AddFunction("f")
	impl := NewFunctionImpl(fn)
	NewBuilder(impl).Insert(&ParallelCopyInstr{})

	errors, err := Validate(s)
	if err != nil {
		t.Fatalf("Validate returned error: %v", err)
	}
	if !hasError(errors, "parallel copy") {
		t.Errorf("Expected parallel-copy error, got %v", errors)
	}
}

func TestValidationError_Context(t *testing.T) {
	e := ValidationError{Message: "bad", Function: "main", Block: 2}
	if got := e.Error(); !strings.Contains(got, "main") || !strings.Contains(got, "bad") {
		t.Errorf("Error() = %q, want function and message present", got)
	}
}

func hasError(errors []ValidationError, substr string) bool {
	for _, e := range errors {
		if strings.Contains(e.Message, substr) {
			return true
		}
	}
	return false
}
