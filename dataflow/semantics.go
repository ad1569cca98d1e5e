// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package dataflow

import (
	"github.com/gogpu/hlsldec/bytecode"
	"github.com/gogpu/hlsldec/expr"
)

// action is what replaying an instruction does to its destination lanes.
type action uint8

const (
	actionIgnore action = iota
	actionDeclareInput
	actionDefine
	actionOperation
	actionMultiplyAdd
	actionDot
	actionDot2Add
	actionSinCos
	actionTexture
	actionNormalize
	actionKill
)

// semantic is the generation-independent meaning of an opcode.
type semantic struct {
	action action

	// op is the operation of actionOperation.
	op expr.OpKind

	// inputs is the number of source operands read.
	inputs int

	// width is the number of lanes summed by actionDot.
	width int

	// literal is the constant type written by actionDefine.
	literal expr.NumericType

	// order lists the source operand feeding each operation operand,
	// when it differs from parameter order.
	order []int
}

var ignore = semantic{action: actionIgnore}

func operation(op expr.OpKind) semantic {
	return semantic{action: actionOperation, op: op, inputs: op.Arity()}
}

func reordered(op expr.OpKind, order ...int) semantic {
	s := operation(op)
	s.order = order
	return s
}

func dot(width int) semantic {
	return semantic{action: actionDot, inputs: 2, width: width}
}

func define(typ expr.NumericType) semantic {
	return semantic{action: actionDefine, literal: typ}
}

var (
	declareInput = semantic{action: actionDeclareInput}
	multiplyAdd  = semantic{action: actionMultiplyAdd, inputs: 3}
	dot2Add      = semantic{action: actionDot2Add, inputs: 3}
	sinCos       = semantic{action: actionSinCos, inputs: 1}
	texture      = semantic{action: actionTexture, inputs: 2}
	normalize    = semantic{action: actionNormalize, inputs: 1}
	kill         = semantic{action: actionKill, inputs: 1}
)

var d3d9Semantics = map[bytecode.Opcode]semantic{
	bytecode.OpNop:     ignore,
	bytecode.OpComment: ignore,
	bytecode.OpEnd:     ignore,
	bytecode.OpPhase:   ignore,
	bytecode.OpRet:     ignore,
	bytecode.OpCall:    ignore,
	bytecode.OpCallNZ:  ignore,
	bytecode.OpLabel:   ignore,
	bytecode.OpLoop:    ignore,
	bytecode.OpEndLoop: ignore,
	bytecode.OpRep:     ignore,
	bytecode.OpEndRep:  ignore,
	bytecode.OpIf:      ignore,
	bytecode.OpIfC:     ignore,
	bytecode.OpElse:    ignore,
	bytecode.OpEndIf:   ignore,
	bytecode.OpBreak:   ignore,
	bytecode.OpBreakC:  ignore,
	bytecode.OpBreakP:  ignore,

	bytecode.OpDcl:  declareInput,
	bytecode.OpDef:  define(expr.Float),
	bytecode.OpDefI: define(expr.Int),
	bytecode.OpDefB: define(expr.Bool),

	bytecode.OpMov:    operation(expr.OpMove),
	bytecode.OpAbs:    operation(expr.OpAbsolute),
	bytecode.OpAdd:    operation(expr.OpAdd),
	bytecode.OpSub:    operation(expr.OpSubtract),
	bytecode.OpMul:    operation(expr.OpMultiply),
	bytecode.OpRcp:    operation(expr.OpReciprocal),
	bytecode.OpRsq:    operation(expr.OpReciprocalSquareRoot),
	bytecode.OpFrc:    operation(expr.OpFractional),
	bytecode.OpMax:    operation(expr.OpMaximum),
	bytecode.OpMin:    operation(expr.OpMinimum),
	bytecode.OpPow:    operation(expr.OpPower),
	bytecode.OpCmp:    operation(expr.OpCompare),
	bytecode.OpLrp:    reordered(expr.OpLinearInterpolate, 2, 1, 0),
	bytecode.OpSge:    operation(expr.OpSignGreaterOrEqual),
	bytecode.OpSlt:    operation(expr.OpSignLess),
	bytecode.OpMad:    multiplyAdd,
	bytecode.OpDp3:    dot(3),
	bytecode.OpDp4:    dot(4),
	bytecode.OpDp2Add: dot2Add,
	bytecode.OpSinCos: sinCos,
	bytecode.OpNrm:    normalize,

	bytecode.OpTex:     texture,
	bytecode.OpTexLDL:  texture,
	bytecode.OpTexLDD:  texture,
	bytecode.OpTexKill: kill,
}

var d3d10Semantics = map[bytecode.D3D10Opcode]semantic{
	bytecode.D3D10Nop:        ignore,
	bytecode.D3D10Ret:        ignore,
	bytecode.D3D10RetC:       ignore,
	bytecode.D3D10Discard:    ignore,
	bytecode.D3D10CustomData: ignore,
	bytecode.D3D10Break:      ignore,
	bytecode.D3D10BreakC:     ignore,
	bytecode.D3D10Call:       ignore,
	bytecode.D3D10CallC:      ignore,
	bytecode.D3D10Case:       ignore,
	bytecode.D3D10Continue:   ignore,
	bytecode.D3D10ContinueC:  ignore,
	bytecode.D3D10Default:    ignore,
	bytecode.D3D10Else:       ignore,
	bytecode.D3D10EndIf:      ignore,
	bytecode.D3D10EndLoop:    ignore,
	bytecode.D3D10EndSwitch:  ignore,
	bytecode.D3D10If:         ignore,
	bytecode.D3D10Label:      ignore,
	bytecode.D3D10Loop:       ignore,
	bytecode.D3D10Switch:     ignore,

	bytecode.D3D10DclResource:             ignore,
	bytecode.D3D10DclConstantBuffer:       ignore,
	bytecode.D3D10DclSampler:              ignore,
	bytecode.D3D10DclIndexRange:           ignore,
	bytecode.D3D10DclOutputTopology:       ignore,
	bytecode.D3D10DclInputPrimitive:       ignore,
	bytecode.D3D10DclMaxOutputVertexCount: ignore,
	bytecode.D3D10DclTemps:                ignore,
	bytecode.D3D10DclIndexableTemp:        ignore,
	bytecode.D3D10DclGlobalFlags:          ignore,
	bytecode.D3D10DclOutput:               ignore,
	bytecode.D3D10DclOutputSgv:            ignore,
	bytecode.D3D10DclOutputSiv:            ignore,

	bytecode.D3D10DclInput:      declareInput,
	bytecode.D3D10DclInputSgv:   declareInput,
	bytecode.D3D10DclInputSiv:   declareInput,
	bytecode.D3D10DclInputPS:    declareInput,
	bytecode.D3D10DclInputPSSgv: declareInput,
	bytecode.D3D10DclInputPSSiv: declareInput,

	bytecode.D3D10Mov:    operation(expr.OpMove),
	bytecode.D3D10Add:    operation(expr.OpAdd),
	bytecode.D3D10Mul:    operation(expr.OpMultiply),
	bytecode.D3D10Div:    operation(expr.OpDivide),
	bytecode.D3D10Frc:    operation(expr.OpFractional),
	bytecode.D3D10Max:    operation(expr.OpMaximum),
	bytecode.D3D10Min:    operation(expr.OpMinimum),
	bytecode.D3D10Rcp:    operation(expr.OpReciprocal),
	bytecode.D3D10Rsq:    operation(expr.OpReciprocalSquareRoot),
	bytecode.D3D10Sqrt:   operation(expr.OpSquareRoot),
	bytecode.D3D10Mad:    multiplyAdd,
	bytecode.D3D10Dp2:    dot(2),
	bytecode.D3D10Dp3:    dot(3),
	bytecode.D3D10Dp4:    dot(4),
	bytecode.D3D10SinCos: sinCos,

	bytecode.D3D10Sample:    texture,
	bytecode.D3D10SampleC:   texture,
	bytecode.D3D10SampleCLZ: texture,
	bytecode.D3D10SampleL:   texture,
	bytecode.D3D10SampleD:   texture,
	bytecode.D3D10SampleB:   texture,
}
