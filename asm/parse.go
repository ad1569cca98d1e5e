// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package asm

import (
	"math"
	"strconv"
	"strings"

	"github.com/gogpu/hlsldec/bytecode"
)

// Parse reads an assembly listing into a program.
//
// The first statement must be the version (ps_3_0, vs_2_0, ps_4_0, ...).
// Reflection data is taken from the listing's header comments when the
// compiler emitted them, and from sampler and constant buffer declarations
// otherwise.
func Parse(source string) (*bytecode.Program, error) {
	ast := &listing{}
	if err := listingParser.ParseString(source+"\n", ast); err != nil {
		return nil, &SourceError{Message: err.Error(), Source: source}
	}

	r := &reader{source: source}
	program, err := r.program(ast)
	if err != nil {
		return nil, err
	}
	if err := readHeader(program, source); err != nil {
		return nil, err
	}
	r.declare(program)
	return program, nil
}

type reader struct {
	source string

	// Resources seen in declaration statements, added to the reflection
	// data unless the header already describes them.
	samplers []bytecode.ConstantDeclaration
	buffers  []bytecode.ConstantBufferDescription
}

// declare completes program's reflection data from declaration statements.
func (r *reader) declare(program *bytecode.Program) {
	for _, s := range r.samplers {
		declared := false
		for i := range program.Constants {
			c := &program.Constants[i]
			if c.RegisterSet != bytecode.RegisterSetSampler || !c.ContainsRegister(s.RegisterIndex) {
				continue
			}
			// A header may declare a sampler without its dimension.
			if c.ParameterType == bytecode.ParamSampler {
				c.ParameterType = s.ParameterType
			}
			declared = true
			break
		}
		if !declared {
			program.Constants = append(program.Constants, s)
		}
	}

	for _, b := range r.buffers {
		declared := false
		for i := range program.ConstantBuffers {
			if cb := &program.ConstantBuffers[i]; cb.Register == b.Register {
				cb.Size = max(cb.Size, b.Size)
				declared = true
				break
			}
		}
		if !declared {
			program.ConstantBuffers = append(program.ConstantBuffers, b)
		}
	}
}

// declareSampler records an unnamed sampler bound to register n.
func (r *reader) declareSampler(n int, typ bytecode.ParameterType) {
	r.samplers = append(r.samplers, bytecode.ConstantDeclaration{
		RegisterSet:    bytecode.RegisterSetSampler,
		RegisterIndex:  n,
		RegisterCount:  1,
		ParameterClass: bytecode.ClassObject,
		ParameterType:  typ,
	})
}

func (r *reader) errorf(s *statement, format string, args ...any) *SourceError {
	return newSourceErrorf(s.Pos.Line, s.Pos.Column, r.source, format, args...)
}

func (r *reader) operandErrorf(o *operand, format string, args ...any) *SourceError {
	return newSourceErrorf(o.Pos.Line, o.Pos.Column, r.source, format, args...)
}

func (r *reader) program(ast *listing) (*bytecode.Program, error) {
	var program *bytecode.Program
	for _, s := range ast.Lines {
		if s.Mnemonic == "" {
			continue
		}
		if program == nil {
			p, err := r.version(s)
			if err != nil {
				return nil, err
			}
			program = p
			continue
		}

		var inst bytecode.Instruction
		var err error
		if program.IsD3D10() {
			inst, err = r.d3d10Instruction(s)
		} else {
			inst, err = r.d3d9Instruction(s)
		}
		if err != nil {
			return nil, err
		}
		program.Instructions = append(program.Instructions, inst)
	}

	if program == nil {
		return nil, &SourceError{Message: "missing version statement", Source: r.source}
	}
	return program, nil
}

var stagePrefixes = map[string]bytecode.ShaderStage{
	"ps": bytecode.StagePixel,
	"vs": bytecode.StageVertex,
	"gs": bytecode.StageGeometry,
	"hs": bytecode.StageHull,
	"ds": bytecode.StageDomain,
	"cs": bytecode.StageCompute,
}

// version parses a version statement such as ps_3_0 or vs_2_x.
func (r *reader) version(s *statement) (*bytecode.Program, error) {
	parts := strings.Split(s.Mnemonic, "_")
	if len(parts) != 3 || len(s.Operands) != 0 {
		return nil, r.errorf(s, "expected version statement, found %q", s.Mnemonic)
	}
	stage, ok := stagePrefixes[parts[0]]
	if !ok {
		return nil, r.errorf(s, "unknown shader type %q", parts[0])
	}
	major, err := strconv.Atoi(parts[1])
	if err != nil {
		return nil, r.errorf(s, "invalid major version %q", parts[1])
	}

	var minor int
	switch parts[2] {
	case "x":
		minor = 1
	case "sw":
		minor = 0
	default:
		if minor, err = strconv.Atoi(parts[2]); err != nil {
			return nil, r.errorf(s, "invalid minor version %q", parts[2])
		}
	}
	return &bytecode.Program{MajorVersion: major, MinorVersion: minor, Stage: stage}, nil
}

// instructionModifiers are mnemonic suffixes that do not change the opcode.
var instructionModifiers = map[string]bool{
	"sat": true, "pp": true, "centroid": true,
	"x2": true, "x4": true, "x8": true, "d2": true, "d4": true, "d8": true,
	"z": true, "nz": true,
	"gt": true, "lt": true, "ge": true, "le": true, "eq": true, "ne": true,
	"coarse": true, "fine": true,
}

// resultShifts are the suffixes scaling the result by a power of two.
var resultShifts = map[string]int8{
	"x2": 1, "x4": 2, "x8": 3,
	"d2": -1, "d4": -2, "d8": -3,
}

// suffixes are the instruction modifiers read off a mnemonic.
type suffixes struct {
	saturate bool
	shift    int8
}

// splitMnemonic strips modifier suffixes from m until lookup accepts it.
func splitMnemonic(m string, lookup func(string) bool) (name string, mods suffixes, ok bool) {
	name = m
	for !lookup(name) {
		i := strings.LastIndexByte(name, '_')
		if i < 0 || !instructionModifiers[name[i+1:]] {
			return m, suffixes{}, false
		}
		suffix := name[i+1:]
		if suffix == "sat" {
			mods.saturate = true
		}
		if shift, ok := resultShifts[suffix]; ok {
			mods.shift = shift
		}
		name = name[:i]
	}
	return name, mods, true
}

// d3d9TextureControls are the texld spellings selecting a sampling variant.
var d3d9TextureControls = map[string]bytecode.TextureControl{
	"texldp": bytecode.TextureProject,
	"texldb": bytecode.TextureBias,
}

func lookupD3D9(name string) (bytecode.Opcode, bytecode.TextureControl, bool) {
	if control, ok := d3d9TextureControls[name]; ok {
		return bytecode.OpTex, control, true
	}
	op, ok := bytecode.LookupOpcode(name)
	return op, bytecode.TextureSample, ok
}

func (r *reader) d3d9Instruction(s *statement) (bytecode.Instruction, error) {
	if strings.HasPrefix(s.Mnemonic, "dcl") {
		return r.d3d9Declaration(s)
	}

	name, mods, ok := splitMnemonic(s.Mnemonic, func(n string) bool {
		_, _, ok := lookupD3D9(n)
		return ok
	})
	if !ok {
		return nil, r.errorf(s, "unknown instruction %q", s.Mnemonic)
	}
	op, control, _ := lookupD3D9(name)
	inst := &bytecode.D3D9Instruction{Opcode: op, Saturate: mods.saturate, Shift: mods.shift, Control: control}

	if op == bytecode.OpDef || op == bytecode.OpDefI || op == bytecode.OpDefB {
		return r.d3d9Define(inst, s)
	}

	for i, o := range s.Operands {
		p, err := r.d3d9Param(o, i == 0 && inst.HasDestination())
		if err != nil {
			return nil, err
		}
		inst.Params = append(inst.Params, p)
	}
	return inst, nil
}

// d3d9Declaration reads dcl_<usage> and dcl_<texture type> statements.
func (r *reader) d3d9Declaration(s *statement) (bytecode.Instruction, error) {
	if len(s.Operands) != 1 {
		return nil, r.errorf(s, "%s expects one register", s.Mnemonic)
	}
	p, err := r.d3d9Param(s.Operands[0], true)
	if err != nil {
		return nil, err
	}

	if p.Register.Type == bytecode.RegisterSampler {
		usage := strings.TrimPrefix(s.Mnemonic, "dcl_")
		kind, ok := d3d9SamplerKinds[usage]
		if !ok {
			return nil, r.errorf(s, "unknown sampler type %q", usage)
		}
		r.declareSampler(p.Register.Number, kind)
	}
	return &bytecode.D3D9Instruction{Opcode: bytecode.OpDcl, Params: []bytecode.D3D9Param{p}}, nil
}

var d3d9SamplerKinds = map[string]bytecode.ParameterType{
	"1d":     bytecode.ParamSampler1D,
	"2d":     bytecode.ParamSampler2D,
	"cube":   bytecode.ParamSamplerCube,
	"volume": bytecode.ParamSampler3D,
}

func (r *reader) d3d9Define(inst *bytecode.D3D9Instruction, s *statement) (bytecode.Instruction, error) {
	if len(s.Operands) < 2 {
		return nil, r.errorf(s, "%s expects a register and values", s.Mnemonic)
	}
	dst, err := r.d3d9Param(s.Operands[0], true)
	if err != nil {
		return nil, err
	}
	inst.Params = []bytecode.D3D9Param{dst}

	values := s.Operands[1:]
	if inst.Opcode == bytecode.OpDefB {
		if len(values) != 1 || values[0].Ref == nil {
			return nil, r.errorf(s, "defb expects true or false")
		}
		switch values[0].Ref.Name {
		case "true":
			inst.Literals[0] = 1
		case "false":
		default:
			return nil, r.operandErrorf(values[0], "defb expects true or false, found %q", values[0].Ref.Name)
		}
		return inst, nil
	}

	if len(values) != 4 {
		return nil, r.errorf(s, "%s expects 4 values, found %d", s.Mnemonic, len(values))
	}
	for i, o := range values {
		if o.Number == nil {
			return nil, r.operandErrorf(o, "expected a number")
		}
		text := *o.Number
		if o.Negate {
			text = "-" + text
		}
		if inst.Opcode == bytecode.OpDefI {
			v, err := strconv.ParseInt(text, 0, 32)
			if err != nil {
				return nil, r.operandErrorf(o, "invalid integer %q", text)
			}
			inst.Literals[i] = uint32(int32(v))
			continue
		}
		v, err := strconv.ParseFloat(text, 32)
		if err != nil {
			return nil, r.operandErrorf(o, "invalid number %q", text)
		}
		inst.Literals[i] = math.Float32bits(float32(v))
	}
	return inst, nil
}

// d3d9SourceModifiers are register name suffixes selecting a source modifier.
var d3d9SourceModifiers = map[string][2]bytecode.SourceModifier{
	"bias": {bytecode.SourceModifierBias, bytecode.SourceModifierBiasAndNegate},
	"bx2":  {bytecode.SourceModifierSign, bytecode.SourceModifierSignAndNegate},
	"x2":   {bytecode.SourceModifierX2, bytecode.SourceModifierX2AndNegate},
	"abs":  {bytecode.SourceModifierAbs, bytecode.SourceModifierAbsAndNegate},
	"dz":   {bytecode.SourceModifierDivideByZ, bytecode.SourceModifierDivideByZ},
	"dw":   {bytecode.SourceModifierDivideByW, bytecode.SourceModifierDivideByW},
}

func (r *reader) d3d9Param(o *operand, destination bool) (bytecode.D3D9Param, error) {
	ref, abs := o.Ref, false
	if o.Abs != nil {
		ref, abs = o.Abs, true
	}
	if ref == nil || ref.Index != nil || ref.Immediate != nil {
		return bytecode.D3D9Param{}, r.operandErrorf(o, "expected a register")
	}

	name := ref.Name
	modifier := bytecode.SourceModifierNone
	if o.Negate {
		modifier = bytecode.SourceModifierNegate
	}
	if i := strings.LastIndexByte(name, '_'); i > 0 {
		m, ok := d3d9SourceModifiers[name[i+1:]]
		if !ok {
			return bytecode.D3D9Param{}, r.operandErrorf(o, "unknown source modifier %q", name[i+1:])
		}
		name = name[:i]
		modifier = m[0]
		if o.Negate {
			modifier = m[1]
		}
	}
	if abs {
		if modifier != bytecode.SourceModifierNone && modifier != bytecode.SourceModifierNegate {
			return bytecode.D3D9Param{}, r.operandErrorf(o, "abs cannot combine with %s", modifier)
		}
		modifier = bytecode.SourceModifierAbs
		if o.Negate {
			modifier = bytecode.SourceModifierAbsAndNegate
		}
	}

	reg, ok := parseD3D9Register(name)
	if !ok {
		return bytecode.D3D9Param{}, r.operandErrorf(o, "unknown register %q", ref.Name)
	}
	p := bytecode.D3D9Param{Register: reg, Mask: bytecode.MaskAll, Swizzle: bytecode.IdentitySwizzle}
	if reg.Type == bytecode.RegisterDepthOut {
		p.Mask = 1
	}

	if destination {
		if modifier != bytecode.SourceModifierNone {
			return bytecode.D3D9Param{}, r.operandErrorf(o, "destination %s cannot carry a source modifier", name)
		}
		if ref.Suffix != "" {
			mask, err := bytecode.ParseWriteMask(ref.Suffix)
			if err != nil {
				return bytecode.D3D9Param{}, r.operandErrorf(o, "%v", err)
			}
			p.Mask = mask
		}
		return p, nil
	}

	p.Modifier = modifier
	if ref.Suffix != "" {
		sw, err := bytecode.ParseSwizzle(ref.Suffix)
		if err != nil {
			return bytecode.D3D9Param{}, r.operandErrorf(o, "%v", err)
		}
		p.Swizzle = sw
	}
	return p, nil
}

type registerSpelling[T any] struct {
	prefix string
	typ    T

	// fixed is the register number of spellings without digits, or -1.
	fixed int
}

// Longer prefixes come first.
var d3d9Registers = []registerSpelling[bytecode.RegisterType]{
	{"oDepth", bytecode.RegisterDepthOut, 0},
	{"oPos", bytecode.RegisterRastOut, 0},
	{"oFog", bytecode.RegisterRastOut, 1},
	{"oPts", bytecode.RegisterRastOut, 2},
	{"vPos", bytecode.RegisterMiscType, 0},
	{"vFace", bytecode.RegisterMiscType, 1},
	{"aL", bytecode.RegisterLoop, 0},
	{"oC", bytecode.RegisterColorOut, -1},
	{"oD", bytecode.RegisterAttrOut, -1},
	{"oT", bytecode.RegisterOutput, -1},
	{"o", bytecode.RegisterOutput, -1},
	{"r", bytecode.RegisterTemp, -1},
	{"v", bytecode.RegisterInput, -1},
	{"c", bytecode.RegisterConst, -1},
	{"a", bytecode.RegisterAddress, -1},
	{"t", bytecode.RegisterTexture, -1},
	{"i", bytecode.RegisterConstInt, -1},
	{"b", bytecode.RegisterConstBool, -1},
	{"s", bytecode.RegisterSampler, -1},
	{"p", bytecode.RegisterPredicate, -1},
}

func parseD3D9Register(name string) (bytecode.D3D9RegisterKey, bool) {
	typ, n, ok := lookupRegister(d3d9Registers, name)
	return bytecode.D3D9RegisterKey{Type: typ, Number: n}, ok
}

func lookupRegister[T any](spellings []registerSpelling[T], name string) (T, int, bool) {
	for _, s := range spellings {
		if s.fixed >= 0 {
			if name == s.prefix {
				return s.typ, s.fixed, true
			}
			continue
		}
		digits, ok := strings.CutPrefix(name, s.prefix)
		if !ok || digits == "" {
			continue
		}
		n, err := strconv.Atoi(digits)
		if err != nil || n < 0 {
			continue
		}
		return s.typ, n, true
	}
	var zero T
	return zero, 0, false
}
