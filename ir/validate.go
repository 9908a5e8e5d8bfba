package ir

import (
	"fmt"
)

// ValidationError represents a structural rule violation found in a
// shader.
type ValidationError struct {
	Message string
	// Optional context
	Function string
	Block    int
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	if e.Function != "" {
		if e.Block >= 0 {
			return fmt.Sprintf("in function %s, block %d: %s", e.Function, e.Block, e.Message)
		}
		return fmt.Sprintf("in function %s: %s", e.Function, e.Message)
	}
	return e.Message
}

// Validator checks shaders for structural correctness.
type Validator struct {
	shader *Shader
	errors []ValidationError

	// Per-function context
	functionName string
	blockIndex   int
	defs         map[*Def]bool
	regs         map[*Register]bool
	blocks       map[*Block]bool
}

// Validate checks the shader against the IR's structural rules:
// well-formed control-flow lists, unique value definitions, in-scope
// source references, and per-kind operand shapes. It returns the
// violations found, or nil if the shader is valid.
func Validate(s *Shader) ([]ValidationError, error) {
	if s == nil {
		return nil, fmt.Errorf("shader is nil")
	}
	v := &Validator{shader: s, errors: make([]ValidationError, 0)}
	v.validateShader()
	if len(v.errors) > 0 {
		return v.errors, nil
	}
	return nil, nil
}

func (v *Validator) errorf(format string, args ...any) {
	v.errors = append(v.errors, ValidationError{
		Message:  fmt.Sprintf(format, args...),
		Function: v.functionName,
		Block:    v.blockIndex,
	})
}

func (v *Validator) validateShader() {
	v.blockIndex = -1
	lists := []struct {
		name string
		vars []*Variable
		mode VarMode
	}{
		{"uniforms", v.shader.Uniforms, ModeUniform | ModeUBO | ModeSSBO | ModePushConst},
		{"inputs", v.shader.Inputs, ModeShaderIn},
		{"outputs", v.shader.Outputs, ModeShaderOut},
		{"shared", v.shader.Shared, ModeShared},
		{"globals", v.shader.Globals, ModeGlobal},
		{"system values", v.shader.SystemValues, ModeSystemValue},
	}
	for _, l := range lists {
		for _, vr := range l.vars {
			v.validateVariable(vr, l.name, l.mode)
		}
	}

	entryPoints := 0
	for _, fn := range v.shader.Functions {
		if fn.IsEntryPoint {
			entryPoints++
		}
		v.validateFunction(fn)
	}
	if entryPoints > 1 {
		v.functionName = ""
		v.errorf("shader has %d entry points", entryPoints)
	}
}

func (v *Validator) validateVariable(vr *Variable, list string, allowed VarMode) {
	if vr.Type == nil {
		v.errorf("variable %q in %s has no type", vr.Name, list)
	}
	if vr.Data.Mode&(vr.Data.Mode-1) != 0 || vr.Data.Mode == 0 {
		v.errorf("variable %q has non-singular mode %#x", vr.Name, uint16(vr.Data.Mode))
	} else if vr.Data.Mode&allowed == 0 {
		v.errorf("variable %q with mode %s listed under %s", vr.Name, vr.Data.Mode, list)
	}
}

func (v *Validator) validateFunction(fn *Function) {
	v.functionName = fn.Name
	v.blockIndex = -1
	if fn.Shader != v.shader {
		v.errorf("function does not point back at its shader")
	}
	for i, p := range fn.Params {
		if !validComponents(p.NumComponents) || !validBitSize(p.BitSize) {
			v.errorf("param %d has invalid shape %dx%d", i, p.NumComponents, p.BitSize)
		}
	}
	impl := fn.Impl
	if impl == nil {
		return
	}
	if impl.Function != fn {
		v.errorf("body does not point back at its function")
	}

	for _, vr := range impl.Locals {
		if vr.Data.Mode != ModeFunctionTemp {
			v.errorf("local variable %q has mode %s", vr.Name, vr.Data.Mode)
		}
		if vr.Type == nil {
			v.errorf("local variable %q has no type", vr.Name)
		}
	}

	// First pass collects everything in scope so forward references
	// (phi edges) validate.
	v.defs = make(map[*Def]bool)
	v.regs = make(map[*Register]bool)
	v.blocks = make(map[*Block]bool)
	for _, reg := range impl.Registers {
		v.regs[reg] = true
	}
	v.collectCFList(&impl.Body)

	v.blockIndex = 0
	v.checkCFList(&impl.Body)
}

func (v *Validator) collectCFList(list *CFList) {
	if len(list.Nodes) == 0 {
		v.errorf("empty control-flow list")
		return
	}
	for i, node := range list.Nodes {
		wantBlock := i%2 == 0
		switch n := node.(type) {
		case *Block:
			if !wantBlock {
				v.errorf("adjacent blocks at list position %d", i)
			}
			v.blocks[n] = true
			for _, instr := range n.Instrs {
				if def := instrDef(instr); def != nil {
					if v.defs[def] {
						v.errorf("value defined more than once")
					}
					v.defs[def] = true
				}
			}
		case *If:
			if wantBlock {
				v.errorf("if-node at block position %d", i)
			}
			v.collectCFList(&n.Then)
			v.collectCFList(&n.Else)
		case *Loop:
			if wantBlock {
				v.errorf("loop-node at block position %d", i)
			}
			v.collectCFList(&n.Body)
		}
	}
	if _, ok := list.Nodes[len(list.Nodes)-1].(*Block); !ok {
		v.errorf("control-flow list does not end with a block")
	}
}

func (v *Validator) checkCFList(list *CFList) {
	for _, node := range list.Nodes {
		switch n := node.(type) {
		case *Block:
			for _, instr := range n.Instrs {
				v.checkInstr(instr)
			}
			v.blockIndex++
		case *If:
			v.checkSrc(&n.Condition)
			v.checkCFList(&n.Then)
			v.checkCFList(&n.Else)
		case *Loop:
			v.checkCFList(&n.Body)
		}
	}
}

func (v *Validator) checkSrc(s *Src) {
	switch {
	case s.SSA != nil && s.Reg != nil:
		v.errorf("source references both a value and a register")
	case s.SSA != nil:
		if !v.defs[s.SSA] {
			v.errorf("source references a value defined outside this body")
		}
	case s.Reg != nil:
		if !v.regs[s.Reg.Reg] {
			v.errorf("source references a register outside this body")
		}
		if s.Reg.Indirect != nil {
			v.checkSrc(s.Reg.Indirect)
		}
	default:
		v.errorf("source references nothing")
	}
}

func (v *Validator) checkDest(d *Dest) {
	switch {
	case d.SSA != nil && d.Reg != nil:
		v.errorf("destination is both a value and a register")
	case d.SSA != nil:
		if !validComponents(d.SSA.NumComponents) || !validBitSize(d.SSA.BitSize) {
			v.errorf("destination has invalid shape %dx%d", d.SSA.NumComponents, d.SSA.BitSize)
		}
	case d.Reg != nil:
		if !v.regs[d.Reg.Reg] {
			v.errorf("destination references a register outside this body")
		}
		if d.Reg.Indirect != nil {
			v.checkSrc(d.Reg.Indirect)
		}
	default:
		v.errorf("destination references nothing")
	}
}

func (v *Validator) checkInstr(instr Instr) {
	switch i := instr.(type) {
	case *AluInstr:
		if uint16(i.Op) >= NumAluOps {
			v.errorf("alu op %d out of range", i.Op)
			return
		}
		info := i.Op.Info()
		if len(i.Srcs) != int(info.NumInputs) {
			v.errorf("%s has %d sources, expects %d", info.Name, len(i.Srcs), info.NumInputs)
		}
		for n := range i.Srcs {
			v.checkSrc(&i.Srcs[n].Src)
		}
		v.checkDest(&i.Dest.Dest)
	case *DerefInstr:
		if i.Kind == DerefVar {
			if i.Var == nil {
				v.errorf("deref_var without a variable")
			}
		} else {
			v.checkSrc(&i.Parent)
		}
		if i.Kind == DerefArray || i.Kind == DerefPtrAsArray {
			v.checkSrc(&i.Index)
		}
		v.checkDest(&i.Dest)
	case *IntrinsicInstr:
		if uint16(i.Op) >= NumIntrinsicOps {
			v.errorf("intrinsic op %d out of range", i.Op)
			return
		}
		info := i.Op.Info()
		if len(i.Srcs) != int(info.NumSrcs) {
			v.errorf("%s has %d sources, expects %d", info.Name, len(i.Srcs), info.NumSrcs)
		}
		if len(i.ConstIndex) != int(info.NumIndices) {
			v.errorf("%s has %d indices, expects %d", info.Name, len(i.ConstIndex), info.NumIndices)
		}
		for n := range i.Srcs {
			v.checkSrc(&i.Srcs[n])
		}
		if info.HasDest {
			v.checkDest(&i.Dest)
		}
	case *LoadConstInstr:
		if len(i.Values) != int(i.Def.NumComponents) {
			v.errorf("load_const has %d values for %d components", len(i.Values), i.Def.NumComponents)
		}
		if !validComponents(i.Def.NumComponents) || !validBitSize(i.Def.BitSize) {
			v.errorf("load_const has invalid shape %dx%d", i.Def.NumComponents, i.Def.BitSize)
		}
	case *UndefInstr:
		if !validComponents(i.Def.NumComponents) || !validBitSize(i.Def.BitSize) {
			v.errorf("undef has invalid shape %dx%d", i.Def.NumComponents, i.Def.BitSize)
		}
	case *TexInstr:
		if i.Op >= TexOp(NumTexOps) {
			v.errorf("tex op %d out of range", i.Op)
		}
		for n := range i.Srcs {
			if i.Srcs[n].Type >= TexSrcType(NumTexSrcTypes) {
				v.errorf("tex source %d has unknown role %d", n, i.Srcs[n].Type)
			}
			v.checkSrc(&i.Srcs[n].Src)
		}
		v.checkDest(&i.Dest)
	case *PhiInstr:
		if i.Dest.SSA == nil {
			v.errorf("phi destination is not an SSA value")
		}
		if len(i.Srcs) == 0 {
			v.errorf("phi has no sources")
		}
		for _, ps := range i.Srcs {
			if ps.Pred == nil {
				v.errorf("phi edge has no predecessor block")
			} else if !v.blocks[ps.Pred] {
				v.errorf("phi edge predecessor is outside this body")
			}
			v.checkSrc(&ps.Src)
		}
	case *JumpInstr:
		if i.Kind > JumpHalt {
			v.errorf("jump kind %d out of range", i.Kind)
		}
	case *CallInstr:
		if i.Callee == nil {
			v.errorf("call without a callee")
			return
		}
		if i.Callee.Shader != v.shader {
			v.errorf("call to a function of another shader")
		}
		if len(i.Params) != len(i.Callee.Params) {
			v.errorf("call to %s has %d params, expects %d", i.Callee.Name, len(i.Params), len(i.Callee.Params))
		}
		for n := range i.Params {
			v.checkSrc(&i.Params[n])
		}
	case *ParallelCopyInstr:
		v.errorf("parallel copy in a finished graph")
	}
}

// validBitSize reports whether bits is a representable value width.
func validBitSize(bits uint8) bool {
	switch bits {
	case 1, 2, 4, 8, 16, 32, 64:
		return true
	}
	return false
}

// validComponents reports whether n is a representable component
// count.
func validComponents(n uint8) bool {
	switch n {
	case 1, 2, 3, 4, 8, 16:
		return true
	}
	return false
}
