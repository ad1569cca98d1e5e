// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package asm

import (
	"math"
	"strconv"
	"strings"

	"github.com/gogpu/hlsldec/bytecode"
)

// d3d10Resources maps dcl_resource_<dimension> suffixes to sampler types.
// Array and multisample resources have no sampler equivalent.
var d3d10Resources = map[string]bytecode.ParameterType{
	"texture1d":   bytecode.ParamSampler1D,
	"texture2d":   bytecode.ParamSampler2D,
	"texture3d":   bytecode.ParamSampler3D,
	"texturecube": bytecode.ParamSamplerCube,
}

func (r *reader) d3d10Instruction(s *statement) (bytecode.Instruction, error) {
	mnemonic := s.Mnemonic
	var resource string
	if rest, ok := strings.CutPrefix(mnemonic, "dcl_resource_"); ok {
		mnemonic, resource = "dcl_resource", rest
	}
	mnemonic = strings.Replace(mnemonic, "_indexable", "", 1)

	name, mods, ok := splitMnemonic(mnemonic, func(n string) bool {
		_, ok := bytecode.LookupD3D10Opcode(n)
		return ok
	})
	if !ok {
		return nil, r.errorf(s, "unknown instruction %q", s.Mnemonic)
	}
	if mods.shift != 0 {
		return nil, r.errorf(s, "result shift in %q is not valid in shader model 4", s.Mnemonic)
	}
	op, _ := bytecode.LookupD3D10Opcode(name)
	inst := &bytecode.D3D10Instruction{Opcode: op, Saturate: mods.saturate}

	// Declarations mix registers with keywords (linear, immediateIndexed,
	// position) and counts; only registers become operands.
	for _, o := range s.Operands {
		if o.Group != nil || o.Number != nil {
			continue
		}
		if !isD3D10Operand(o) {
			continue
		}
		operand, err := r.d3d10Operand(o, len(inst.Operands) < inst.DestinationCount())
		if err != nil {
			return nil, err
		}
		inst.Operands = append(inst.Operands, operand)
	}

	switch op {
	case bytecode.D3D10DclResource:
		if len(inst.Operands) != 1 || inst.Operands[0].Type != bytecode.OperandResource {
			return nil, r.errorf(s, "%s expects one resource register", s.Mnemonic)
		}
		if typ, ok := d3d10Resources[resource]; ok {
			r.declareSampler(inst.Operands[0].Number, typ)
		}
	case bytecode.D3D10DclConstantBuffer:
		if len(inst.Operands) != 1 || inst.Operands[0].Type != bytecode.OperandConstantBuffer {
			return nil, r.errorf(s, "%s expects one constant buffer register", s.Mnemonic)
		}
		cb := inst.Operands[0]
		r.buffers = append(r.buffers, bytecode.ConstantBufferDescription{Register: cb.Number, Size: cb.Index})
	}
	return inst, nil
}

func isD3D10Operand(o *operand) bool {
	ref := o.Ref
	if o.Abs != nil {
		ref = o.Abs
	}
	if ref.Immediate != nil || ref.Name == "icb" {
		return true
	}
	_, _, ok := lookupRegister(d3d10Registers, ref.Name)
	return ok
}

// Longer prefixes come first.
var d3d10Registers = []registerSpelling[bytecode.OperandType]{
	{"null", bytecode.OperandNull, 0},
	{"oDepth", bytecode.OperandOutputDepth, 0},
	{"oMask", bytecode.OperandOutputCoverageMask, 0},
	{"vPrim", bytecode.OperandInputPrimitiveID, 0},
	{"vCoverage", bytecode.OperandInputCoverageMask, 0},
	{"vThreadIDInGroupFlattened", bytecode.OperandInputThreadIDInGroupFlattened, 0},
	{"vThreadIDInGroup", bytecode.OperandInputThreadIDInGroup, 0},
	{"vThreadGroupID", bytecode.OperandInputThreadGroupID, 0},
	{"vThreadID", bytecode.OperandInputThreadID, 0},
	{"cb", bytecode.OperandConstantBuffer, -1},
	{"r", bytecode.OperandTemp, -1},
	{"v", bytecode.OperandInput, -1},
	{"o", bytecode.OperandOutput, -1},
	{"x", bytecode.OperandIndexableTemp, -1},
	{"s", bytecode.OperandSampler, -1},
	{"t", bytecode.OperandResource, -1},
	{"u", bytecode.OperandUnorderedAccessView, -1},
	{"g", bytecode.OperandThreadGroupSharedMemory, -1},
}

func (r *reader) d3d10Operand(o *operand, destination bool) (bytecode.D3D10Operand, error) {
	ref := o.Ref
	var modifier bytecode.OperandModifier
	if o.Abs != nil {
		ref = o.Abs
		modifier |= bytecode.ModifierAbs
	}
	if o.Negate {
		modifier |= bytecode.ModifierNeg
	}
	if destination && modifier != bytecode.ModifierNone {
		return bytecode.D3D10Operand{}, r.operandErrorf(o, "destination %s cannot carry a modifier", ref.Name)
	}

	operand := bytecode.D3D10Operand{
		Mask:     bytecode.MaskAll,
		Swizzle:  bytecode.IdentitySwizzle,
		Modifier: modifier,
	}

	switch {
	case ref.Immediate != nil:
		if ref.Name != "l" || destination {
			return bytecode.D3D10Operand{}, r.operandErrorf(o, "unexpected immediate %s(...)", ref.Name)
		}
		if n := len(ref.Immediate); n != 1 && n != 4 {
			return bytecode.D3D10Operand{}, r.operandErrorf(o, "immediate needs 1 or 4 values, found %d", n)
		}
		operand.Type = bytecode.OperandImmediate32
		operand.Components = len(ref.Immediate)
		for i, lit := range ref.Immediate {
			bits, err := immediateBits(lit.Value)
			if err != nil {
				return bytecode.D3D10Operand{}, r.operandErrorf(o, "invalid immediate %q", lit.Value)
			}
			operand.Immediate[i] = bits
		}

	case ref.Name == "icb":
		if ref.Index == nil {
			return bytecode.D3D10Operand{}, r.operandErrorf(o, "icb needs an index")
		}
		n, err := strconv.Atoi(*ref.Index)
		if err != nil {
			return bytecode.D3D10Operand{}, r.operandErrorf(o, "invalid index %q", *ref.Index)
		}
		operand.Type = bytecode.OperandImmediateConstantBuffer
		operand.Number = n

	default:
		typ, n, ok := lookupRegister(d3d10Registers, ref.Name)
		if !ok {
			return bytecode.D3D10Operand{}, r.operandErrorf(o, "unknown register %q", ref.Name)
		}
		operand.Type = typ
		operand.Number = n

		indexed := typ == bytecode.OperandConstantBuffer || typ == bytecode.OperandIndexableTemp
		switch {
		case indexed && ref.Index == nil:
			return bytecode.D3D10Operand{}, r.operandErrorf(o, "%s needs an index", ref.Name)
		case !indexed && ref.Index != nil:
			return bytecode.D3D10Operand{}, r.operandErrorf(o, "%s cannot be indexed", ref.Name)
		case indexed:
			index, err := strconv.Atoi(*ref.Index)
			if err != nil {
				return bytecode.D3D10Operand{}, r.operandErrorf(o, "invalid index %q", *ref.Index)
			}
			operand.Index = index
		}
		if typ == bytecode.OperandOutputDepth || typ == bytecode.OperandOutputCoverageMask {
			operand.Mask = 1
		}
	}

	if ref.Suffix == "" {
		return operand, nil
	}
	var err error
	if destination {
		operand.Mask, err = bytecode.ParseWriteMask(ref.Suffix)
	} else {
		operand.Swizzle, err = bytecode.ParseSwizzle(ref.Suffix)
	}
	if err != nil {
		return bytecode.D3D10Operand{}, r.operandErrorf(o, "%v", err)
	}
	return operand, nil
}

// immediateBits encodes an immediate value. Hexadecimal values are raw bits;
// other values are stored as floats.
func immediateBits(text string) (uint32, error) {
	if digits, ok := strings.CutPrefix(text, "0x"); ok {
		v, err := strconv.ParseUint(digits, 16, 32)
		return uint32(v), err
	}
	v, err := strconv.ParseFloat(text, 32)
	if err != nil {
		return 0, err
	}
	return math.Float32bits(float32(v)), nil
}
