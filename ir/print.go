package ir

import (
	"fmt"
	"io"
	"strings"
)

// Fprint writes a textual listing of the shader to w. The listing is
// deterministic: value and block numbers are assigned in traversal
// order, so two structurally identical shaders print identically.
func Fprint(w io.Writer, s *Shader) error {
	_, err := io.WriteString(w, Sprint(s))
	return err
}

// Sprint returns the textual listing of the shader.
func Sprint(s *Shader) string {
	p := &printer{
		defIDs:   make(map[*Def]int),
		blockIDs: make(map[*Block]int),
	}
	p.shader(s)
	return p.b.String()
}

type printer struct {
	b        strings.Builder
	defIDs   map[*Def]int
	blockIDs map[*Block]int
	indent   int
}

func (p *printer) printf(format string, args ...any) {
	for i := 0; i < p.indent; i++ {
		p.b.WriteString("  ")
	}
	fmt.Fprintf(&p.b, format, args...)
}

func (p *printer) shader(s *Shader) {
	name := s.Info.Name
	if name == "" {
		name = "(unnamed)"
	}
	p.printf("shader: %s %s\n", s.Info.Stage, name)
	if s.Info.Label != "" {
		p.printf("label: %s\n", s.Info.Label)
	}
	p.printf("inputs: %d | uniforms: %d | outputs: %d | shared: %d | scratch: %d\n",
		s.NumInputs, s.NumUniforms, s.NumOutputs, s.NumShared, s.ScratchSize)

	for _, list := range [][]*Variable{s.Uniforms, s.Inputs, s.Outputs, s.Shared, s.Globals, s.SystemValues} {
		for _, v := range list {
			p.variable(v)
		}
	}
	for _, fn := range s.Functions {
		p.function(fn)
	}
	if len(s.ConstantData) > 0 {
		p.printf("constant_data: %d bytes\n", len(s.ConstantData))
	}
}

func (p *printer) variable(v *Variable) {
	name := v.Name
	if name == "" {
		name = "_"
	}
	p.printf("decl_var %s %s %s (loc=%d, drv=%d, binding=%d, set=%d)\n",
		v.Data.Mode, v.Type, name, v.Data.Location, v.Data.DriverLocation,
		v.Data.Binding, v.Data.DescriptorSet)
}

func (p *printer) function(fn *Function) {
	name := fn.Name
	if name == "" {
		name = "_"
	}
	attrs := ""
	if fn.IsEntryPoint {
		attrs = " (entrypoint)"
	}
	p.printf("fn %s params=%d%s {\n", name, len(fn.Params), attrs)
	if fn.Impl != nil {
		p.indent++
		for _, v := range fn.Impl.Locals {
			p.variable(v)
		}
		for _, reg := range fn.Impl.Registers {
			p.register(reg)
		}
		p.numberCFList(&fn.Impl.Body)
		p.cfList(&fn.Impl.Body)
		p.indent--
	}
	p.printf("}\n")
}

func (p *printer) register(reg *Register) {
	if reg.NumArrayElems > 0 {
		p.printf("decl_reg r%d %dx%d[%d]\n", reg.Index, reg.NumComponents, reg.BitSize, reg.NumArrayElems)
	} else {
		p.printf("decl_reg r%d %dx%d\n", reg.Index, reg.NumComponents, reg.BitSize)
	}
}

// numberCFList assigns block and value numbers ahead of printing so
// that forward references (phi edges) print resolved numbers.
func (p *printer) numberCFList(list *CFList) {
	for _, node := range list.Nodes {
		switch n := node.(type) {
		case *Block:
			p.blockIDs[n] = len(p.blockIDs)
			for _, instr := range n.Instrs {
				if def := instrDef(instr); def != nil {
					p.defIDs[def] = len(p.defIDs)
				}
			}
		case *If:
			p.numberCFList(&n.Then)
			p.numberCFList(&n.Else)
		case *Loop:
			p.numberCFList(&n.Body)
		}
	}
}

// instrDef returns the SSA value defined by instr, or nil.
func instrDef(instr Instr) *Def {
	switch i := instr.(type) {
	case *AluInstr:
		return i.Dest.Dest.SSA
	case *DerefInstr:
		return i.Dest.SSA
	case *IntrinsicInstr:
		return i.Dest.SSA
	case *LoadConstInstr:
		return i.Def
	case *UndefInstr:
		return i.Def
	case *TexInstr:
		return i.Dest.SSA
	case *PhiInstr:
		return i.Dest.SSA
	}
	return nil
}

func (p *printer) cfList(list *CFList) {
	for _, node := range list.Nodes {
		switch n := node.(type) {
		case *Block:
			p.printf("block b%d:\n", p.blockIDs[n])
			p.indent++
			for _, instr := range n.Instrs {
				p.instr(instr)
			}
			p.indent--
		case *If:
			p.printf("if %s {\n", p.src(&n.Condition))
			p.indent++
			p.cfList(&n.Then)
			p.indent--
			p.printf("} else {\n")
			p.indent++
			p.cfList(&n.Else)
			p.indent--
			p.printf("}\n")
		case *Loop:
			p.printf("loop {\n")
			p.indent++
			p.cfList(&n.Body)
			p.indent--
			p.printf("}\n")
		}
	}
}

func (p *printer) def(def *Def) string {
	if id, ok := p.defIDs[def]; ok {
		return fmt.Sprintf("v%d", id)
	}
	return "v?"
}

func (p *printer) src(s *Src) string {
	if s.SSA != nil {
		return p.def(s.SSA)
	}
	if s.Reg == nil {
		return "(nil)"
	}
	return p.regRef(s.Reg)
}

func (p *printer) regRef(rr *RegRef) string {
	out := fmt.Sprintf("r%d", rr.Reg.Index)
	if rr.Indirect != nil {
		return fmt.Sprintf("%s[%d + %s]", out, rr.BaseOffset, p.src(rr.Indirect))
	}
	if rr.BaseOffset != 0 {
		return fmt.Sprintf("%s[%d]", out, rr.BaseOffset)
	}
	return out
}

func (p *printer) dest(d *Dest) string {
	if d.SSA != nil {
		return p.def(d.SSA)
	}
	if d.Reg == nil {
		return "(nil)"
	}
	return p.regRef(d.Reg)
}

var swizzleNames = [4]byte{'x', 'y', 'z', 'w'}

func (p *printer) aluSrc(as *AluSrc, numComponents uint8) string {
	out := p.src(&as.Src)
	if as.Abs {
		out = "|" + out + "|"
	}
	if as.Negate {
		out = "-" + out
	}
	identity := true
	for i := uint8(0); i < numComponents && i < 4; i++ {
		if as.Swizzle[i] != i {
			identity = false
		}
	}
	if !identity {
		var sw []byte
		for i := uint8(0); i < numComponents && i < 4; i++ {
			sw = append(sw, swizzleNames[as.Swizzle[i]&3])
		}
		out += "." + string(sw)
	}
	return out
}

func (p *printer) instr(instr Instr) {
	switch i := instr.(type) {
	case *AluInstr:
		srcs := make([]string, len(i.Srcs))
		for n := range i.Srcs {
			srcs[n] = p.aluSrc(&i.Srcs[n], srcComponents(i, n))
		}
		mods := ""
		if i.Exact {
			mods += " exact"
		}
		if i.Dest.Saturate {
			mods += " sat"
		}
		p.printf("%s = %s %s%s\n", p.dest(&i.Dest.Dest), i.Op, strings.Join(srcs, ", "), mods)
	case *DerefInstr:
		switch i.Kind {
		case DerefVar:
			name := i.Var.Name
			if name == "" {
				name = "_"
			}
			p.printf("%s = deref_var &%s (%s %s)\n", p.dest(&i.Dest), name, i.Mode, i.Type)
		case DerefArray, DerefPtrAsArray:
			p.printf("%s = deref_%s %s[%s]\n", p.dest(&i.Dest), i.Kind, p.src(&i.Parent), p.src(&i.Index))
		case DerefArrayWildcard:
			p.printf("%s = deref_array %s[*]\n", p.dest(&i.Dest), p.src(&i.Parent))
		case DerefStruct:
			p.printf("%s = deref_struct %s.%d\n", p.dest(&i.Dest), p.src(&i.Parent), i.StructIndex)
		case DerefCast:
			p.printf("%s = deref_cast (%s)%s stride=%d\n", p.dest(&i.Dest), i.Type, p.src(&i.Parent), i.CastPtrStride)
		}
	case *IntrinsicInstr:
		srcs := make([]string, len(i.Srcs))
		for n := range i.Srcs {
			srcs[n] = p.src(&i.Srcs[n])
		}
		idx := ""
		if len(i.ConstIndex) > 0 {
			parts := make([]string, len(i.ConstIndex))
			for n, c := range i.ConstIndex {
				parts[n] = fmt.Sprintf("%d", c)
			}
			idx = " (" + strings.Join(parts, ", ") + ")"
		}
		if i.Op.Info().HasDest {
			p.printf("%s = intrinsic %s (%s)%s\n", p.dest(&i.Dest), i.Op, strings.Join(srcs, ", "), idx)
		} else {
			p.printf("intrinsic %s (%s)%s\n", i.Op, strings.Join(srcs, ", "), idx)
		}
	case *LoadConstInstr:
		vals := make([]string, len(i.Values))
		for n, v := range i.Values {
			vals[n] = fmt.Sprintf("%#x", v)
		}
		p.printf("%s = load_const (%s) %dx%d\n", p.def(i.Def), strings.Join(vals, ", "), i.Def.NumComponents, i.Def.BitSize)
	case *UndefInstr:
		p.printf("%s = undef %dx%d\n", p.def(i.Def), i.Def.NumComponents, i.Def.BitSize)
	case *TexInstr:
		srcs := make([]string, len(i.Srcs))
		for n := range i.Srcs {
			srcs[n] = fmt.Sprintf("%s: %s", i.Srcs[n].Type, p.src(&i.Srcs[n].Src))
		}
		p.printf("%s = %s texture=%d sampler=%d (%s)\n", p.dest(&i.Dest), i.Op,
			i.TextureIndex, i.SamplerIndex, strings.Join(srcs, ", "))
	case *PhiInstr:
		srcs := make([]string, len(i.Srcs))
		for n, ps := range i.Srcs {
			srcs[n] = fmt.Sprintf("b%d: %s", p.blockIDs[ps.Pred], p.src(&ps.Src))
		}
		p.printf("%s = phi %s\n", p.dest(&i.Dest), strings.Join(srcs, ", "))
	case *JumpInstr:
		p.printf("%s\n", i.Kind)
	case *CallInstr:
		params := make([]string, len(i.Params))
		for n := range i.Params {
			params[n] = p.src(&i.Params[n])
		}
		name := i.Callee.Name
		if name == "" {
			name = "_"
		}
		p.printf("call %s (%s)\n", name, strings.Join(params, ", "))
	case *ParallelCopyInstr:
		p.printf("parallel_copy (%d entries)\n", len(i.Entries))
	default:
		p.printf("<unknown instruction>\n")
	}
}

// srcComponents returns how many components of source n an ALU
// instruction reads, for swizzle display.
func srcComponents(i *AluInstr, n int) uint8 {
	switch i.Op {
	case AluVec2, AluVec3, AluVec4:
		return 1
	}
	if i.Dest.Dest.SSA != nil {
		return i.Dest.Dest.SSA.NumComponents
	}
	if i.Dest.Dest.Reg != nil {
		return i.Dest.Dest.Reg.Reg.NumComponents
	}
	return 4
}
