// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package dataflow

import (
	"fmt"

	"github.com/gogpu/hlsldec/bytecode"
	"github.com/gogpu/hlsldec/expr"
)

// destination is one register written by an instruction.
type destination struct {
	register bytecode.RegisterKey
	mask     bytecode.WriteMask

	// index is the position among the instruction's destinations.
	index int
}

// view is the capability surface the replay algorithm is written against.
type view interface {
	semantic() (semantic, bool)
	destinations() []destination

	// operandCount is the total number of operands, destinations included.
	operandCount() int

	// firstSource is the operand index of the first source operand.
	firstSource() int

	register(operand int) bytecode.RegisterKey

	// read returns the node feeding lane of operand, with the operand's
	// swizzle and modifiers applied.
	read(b *builder, operand, lane int) (expr.Handle, error)

	// textureLane maps a destination lane through the texture operand.
	textureLane(lane int) int

	// literal returns lane of the values carried by a define instruction.
	literal(lane int) float64

	// sinCos returns the function written to lane of dst by sincos.
	sinCos(dst destination, lane int) expr.OpKind

	// textureControl is the sampling variant of a texture instruction.
	textureControl() bytecode.TextureControl

	// shift is the power of two scaling every written lane.
	shift() int

	saturate() bool
}

func viewOf(inst bytecode.Instruction) (view, error) {
	switch inst := inst.(type) {
	case *bytecode.D3D9Instruction:
		return d3d9View{inst}, nil
	case *bytecode.D3D10Instruction:
		return d3d10View{inst}, nil
	default:
		return nil, NewError(ErrInvalidProgram, fmt.Sprintf("unknown instruction type %T", inst))
	}
}

type d3d9View struct {
	inst *bytecode.D3D9Instruction
}

func (v d3d9View) semantic() (semantic, bool) {
	s, ok := d3d9Semantics[v.inst.Opcode]
	return s, ok
}

func (v d3d9View) destinations() []destination {
	p := v.inst.Params[v.inst.DestinationParamIndex()]
	return []destination{{register: p.Register, mask: p.Mask}}
}

func (v d3d9View) operandCount() int { return len(v.inst.Params) }

// texkill reads the register named by its only parameter.
func (v d3d9View) firstSource() int {
	if v.inst.Opcode == bytecode.OpTexKill {
		return 0
	}
	return 1
}

func (v d3d9View) register(operand int) bytecode.RegisterKey {
	return v.inst.Params[operand].Register
}

func (v d3d9View) read(b *builder, operand, lane int) (expr.Handle, error) {
	p := v.inst.Params[operand]
	src := int(p.Swizzle[lane])
	if operand == v.inst.DestinationParamIndex() {
		src = lane
	}
	h, err := b.lookup(bytecode.RegisterComponentKey{Register: p.Register, Lane: src})
	if err != nil {
		return 0, err
	}

	switch p.Modifier {
	case bytecode.SourceModifierNone:
		return h, nil
	case bytecode.SourceModifierNegate:
		return b.graph.AddOperation(expr.OpNegate, h)
	case bytecode.SourceModifierAbs:
		return b.graph.AddOperation(expr.OpAbsolute, h)
	case bytecode.SourceModifierAbsAndNegate:
		abs, err := b.graph.AddOperation(expr.OpAbsolute, h)
		if err != nil {
			return 0, err
		}
		return b.graph.AddOperation(expr.OpNegate, abs)
	default:
		return 0, NewError(ErrUnsupportedModifier,
			fmt.Sprintf("source modifier %s on %s", p.Modifier, p.Register))
	}
}

func (v d3d9View) textureLane(lane int) int {
	return int(v.inst.Params[v.firstSource()+1].Swizzle[lane])
}

func (v d3d9View) literal(lane int) float64 {
	switch v.inst.Opcode {
	case bytecode.OpDefI:
		return float64(v.inst.ParamInt(lane))
	case bytecode.OpDefB:
		if v.inst.ParamBool() {
			return 1
		}
		return 0
	default:
		return float64(v.inst.ParamSingle(lane))
	}
}

func (v d3d9View) saturate() bool { return v.inst.Saturate }

func (v d3d9View) shift() int { return int(v.inst.Shift) }

func (v d3d9View) textureControl() bytecode.TextureControl { return v.inst.Control }

func (v d3d9View) sinCos(_ destination, lane int) expr.OpKind {
	if lane == 0 {
		return expr.OpCosine
	}
	return expr.OpSine
}

type d3d10View struct {
	inst *bytecode.D3D10Instruction
}

func (v d3d10View) semantic() (semantic, bool) {
	s, ok := d3d10Semantics[v.inst.Opcode]
	return s, ok
}

func (v d3d10View) destinations() []destination {
	n := v.inst.DestinationCount()
	if n > len(v.inst.Operands) {
		n = len(v.inst.Operands)
	}
	dsts := make([]destination, 0, n)
	for i := 0; i < n; i++ {
		o := &v.inst.Operands[i]
		dsts = append(dsts, destination{register: o.Register(), mask: o.Mask, index: i})
	}
	return dsts
}

func (v d3d10View) operandCount() int { return len(v.inst.Operands) }

func (v d3d10View) firstSource() int { return v.inst.DestinationCount() }

func (v d3d10View) register(operand int) bytecode.RegisterKey {
	return v.inst.Operands[operand].Register()
}

func (v d3d10View) read(b *builder, operand, lane int) (expr.Handle, error) {
	o := &v.inst.Operands[operand]
	h, err := fetch(b, o, lane)
	if err != nil {
		return 0, err
	}
	if o.Modifier.Has(bytecode.ModifierAbs) {
		if h, err = b.graph.AddOperation(expr.OpAbsolute, h); err != nil {
			return 0, err
		}
	}
	if o.Modifier.Has(bytecode.ModifierNeg) {
		if h, err = b.graph.AddOperation(expr.OpNegate, h); err != nil {
			return 0, err
		}
	}
	return h, nil
}

// fetch returns the immediate or register lane named by o.
func fetch(b *builder, o *bytecode.D3D10Operand, lane int) (expr.Handle, error) {
	if o.IsImmediate() {
		return b.graph.AddConstant(float64(o.Single(lane)), expr.Float), nil
	}
	return b.lookup(bytecode.RegisterComponentKey{Register: o.Register(), Lane: int(o.Swizzle[lane])})
}

func (v d3d10View) textureLane(lane int) int {
	return int(v.inst.Operands[v.firstSource()+1].Swizzle[lane])
}

func (v d3d10View) literal(int) float64 { return 0 }

func (v d3d10View) saturate() bool { return v.inst.Saturate }

func (v d3d10View) shift() int { return 0 }

func (v d3d10View) textureControl() bytecode.TextureControl { return bytecode.TextureSample }

// sincos writes the sine to its first destination and the cosine to its second.
func (v d3d10View) sinCos(dst destination, _ int) expr.OpKind {
	if dst.index == 0 {
		return expr.OpSine
	}
	return expr.OpCosine
}
