// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package bytecode

import (
	"fmt"
	"math"
	"strings"
)

// Instruction is one decoded instruction of either generation.
// The set of implementations is closed: *D3D9Instruction and
// *D3D10Instruction.
type Instruction interface {
	instruction()

	// Mnemonic returns the opcode mnemonic, used in diagnostics.
	Mnemonic() string

	// HasDestination reports whether the instruction writes a register.
	HasDestination() bool
}

// SourceModifier is the D3D9 source parameter modifier.
type SourceModifier uint8

const (
	SourceModifierNone SourceModifier = iota
	SourceModifierNegate
	SourceModifierBias
	SourceModifierBiasAndNegate
	SourceModifierSign
	SourceModifierSignAndNegate
	SourceModifierComplement
	SourceModifierX2
	SourceModifierX2AndNegate
	SourceModifierDivideByZ
	SourceModifierDivideByW
	SourceModifierAbs
	SourceModifierAbsAndNegate
	SourceModifierNot
)

var sourceModifierNames = [...]string{
	"None", "Negate", "Bias", "BiasAndNegate", "Sign", "SignAndNegate",
	"Complement", "X2", "X2AndNegate", "DivideByZ", "DivideByW", "Abs",
	"AbsAndNegate", "Not",
}

// String returns the modifier name.
func (m SourceModifier) String() string {
	if int(m) < len(sourceModifierNames) {
		return sourceModifierNames[m]
	}
	return fmt.Sprintf("SourceModifier(%d)", uint8(m))
}

// D3D9Param is one parameter of a D3D9 instruction. Mask is meaningful for
// the destination parameter, Swizzle and Modifier for source parameters.
type D3D9Param struct {
	Register D3D9RegisterKey
	Mask     WriteMask
	Swizzle  Swizzle
	Modifier SourceModifier
}

// TextureControl selects the sampling variant of texld.
type TextureControl uint8

const (
	TextureSample TextureControl = iota

	// TextureProject divides the coordinates by their w lane (texldp).
	TextureProject

	// TextureBias biases the mip level by the w lane (texldb).
	TextureBias
)

// D3D9Instruction is a decoded Shader Model 1-3 instruction.
// For def, defi and defb the literal values follow the destination and are
// stored as raw 32-bit words in Literals.
type D3D9Instruction struct {
	Opcode   Opcode
	Params   []D3D9Param
	Literals [4]uint32

	// Saturate clamps every written lane to [0, 1] (_sat).
	Saturate bool

	// Shift scales every written lane by 2^Shift before saturation
	// (_x2, _x4, _x8, _d2, _d4, _d8).
	Shift int8

	// Control is the texld variant.
	Control TextureControl
}

func (*D3D9Instruction) instruction() {}

// Mnemonic returns the opcode mnemonic.
func (i *D3D9Instruction) Mnemonic() string {
	if i.Opcode == OpTex {
		switch i.Control {
		case TextureProject:
			return "texldp"
		case TextureBias:
			return "texldb"
		}
	}
	return i.Opcode.String()
}

// HasDestination reports whether the first parameter is a destination.
func (i *D3D9Instruction) HasDestination() bool { return i.Opcode.hasDestination() }

// DestinationParamIndex returns the parameter index of the destination.
func (i *D3D9Instruction) DestinationParamIndex() int { return 0 }

// ParamSingle returns literal lane as a float.
func (i *D3D9Instruction) ParamSingle(lane int) float32 {
	return math.Float32frombits(i.Literals[lane])
}

// ParamInt returns literal lane as a signed integer.
func (i *D3D9Instruction) ParamInt(lane int) int32 {
	return int32(i.Literals[lane])
}

// ParamBool returns the boolean literal of a defb instruction.
func (i *D3D9Instruction) ParamBool() bool {
	return i.Literals[0] != 0
}

// String returns an assembly-like rendering, for diagnostics.
func (i *D3D9Instruction) String() string {
	var b strings.Builder
	b.WriteString(i.Mnemonic())
	for n, p := range i.Params {
		if n == 0 {
			b.WriteByte(' ')
		} else {
			b.WriteString(", ")
		}
		b.WriteString(p.Register.String())
		if n == 0 && i.HasDestination() {
			if p.Mask != MaskAll {
				b.WriteString("." + p.Mask.String())
			}
		} else if p.Swizzle != IdentitySwizzle {
			b.WriteString("." + p.Swizzle.String())
		}
	}
	return b.String()
}

// OperandModifier is the D3D10 operand modifier flag pair.
type OperandModifier uint8

const (
	ModifierNone OperandModifier = 0
	ModifierNeg  OperandModifier = 1 << 0
	ModifierAbs  OperandModifier = 1 << 1
)

// Has reports whether the modifier flag is set.
func (m OperandModifier) Has(flag OperandModifier) bool {
	return m&flag != 0
}

// D3D10Operand is one operand of a D3D10 instruction.
type D3D10Operand struct {
	Type     OperandType
	Number   int
	Index    int
	Mask     WriteMask
	Swizzle  Swizzle
	Modifier OperandModifier

	// Immediate holds raw 32-bit words of an Immediate32 operand.
	// Components is 1 for a scalar immediate, 4 for a vector.
	Immediate  [4]uint32
	Components int
}

// Register returns the register key addressed by the operand.
func (o *D3D10Operand) Register() D3D10RegisterKey {
	return D3D10RegisterKey{Type: o.Type, Number: o.Number, Index: o.Index}
}

// IsImmediate reports whether the operand value is encoded inline.
func (o *D3D10Operand) IsImmediate() bool {
	return o.Type == OperandImmediate32 || o.Type == OperandImmediate64
}

// Single returns the immediate value selected for lane as a float.
// Scalar immediates replicate across lanes.
func (o *D3D10Operand) Single(lane int) float32 {
	if o.Components == 1 {
		return math.Float32frombits(o.Immediate[0])
	}
	return math.Float32frombits(o.Immediate[o.Swizzle[lane]])
}

// D3D10Instruction is a decoded Shader Model 4+ instruction.
// Destination operands come first.
type D3D10Instruction struct {
	Opcode   D3D10Opcode
	Operands []D3D10Operand

	// Saturate clamps every written lane to [0, 1] (_sat).
	Saturate bool
}

func (*D3D10Instruction) instruction() {}

// Mnemonic returns the opcode mnemonic.
func (i *D3D10Instruction) Mnemonic() string { return i.Opcode.String() }

// HasDestination reports whether the instruction writes a register.
func (i *D3D10Instruction) HasDestination() bool { return i.Opcode.hasDestination() }

// DestinationCount returns the number of leading destination operands.
func (i *D3D10Instruction) DestinationCount() int { return i.Opcode.destinationCount() }
