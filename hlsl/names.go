// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package hlsl

import (
	"fmt"

	"github.com/gogpu/hlsldec/bytecode"
)

// RegisterNames maps the registers of one program to the identifiers and
// declared widths expressions render them with.
//
// A RegisterNames is immutable after construction and safe for concurrent use.
type RegisterNames struct {
	names    map[bytecode.RegisterKey]string
	widths   map[bytecode.RegisterKey]int
	matrices []matrixDeclaration
}

// matrixDeclaration is a declared constant spanning several registers.
type matrixDeclaration struct {
	name      string
	base      bytecode.RegisterKey
	registers int
	class     bytecode.ParameterClass
}

// NewRegisterNames derives register names from the program's constant table,
// constant buffer reflection and input/output declarations.
// With options.RawRegisterNames set, only declared widths are derived and
// every register renders by its assembly spelling.
func NewRegisterNames(program *bytecode.Program, options *Options) *RegisterNames {
	if options == nil {
		options = DefaultOptions()
	}
	n := &RegisterNames{
		names:  make(map[bytecode.RegisterKey]string),
		widths: make(map[bytecode.RegisterKey]int),
	}
	if program == nil {
		return n
	}

	n.declareWidths(program)
	if options.RawRegisterNames {
		return n
	}

	nm := newNamer(registerSpellings(program)...)
	for i := range program.Constants {
		n.declareConstant(nm, program, &program.Constants[i])
	}
	for i := range program.ConstantBuffers {
		n.declareBuffer(nm, &program.ConstantBuffers[i])
	}
	return n
}

// Name returns the identifier for reg.
func (n *RegisterNames) Name(reg bytecode.RegisterKey) string {
	if name, ok := n.names[reg]; ok {
		return name
	}
	return reg.String()
}

// Width returns the number of lanes reg is declared with, 4 if undeclared.
func (n *RegisterNames) Width(reg bytecode.RegisterKey) int {
	if w, ok := n.widths[reg]; ok {
		return w
	}
	if scalarRegister(reg) {
		return 1
	}
	return 4
}

// scalarRegister reports whether reg holds a single lane.
func scalarRegister(reg bytecode.RegisterKey) bool {
	switch k := reg.(type) {
	case bytecode.D3D9RegisterKey:
		return k.Type == bytecode.RegisterDepthOut
	case bytecode.D3D10RegisterKey:
		return k.Type == bytecode.OperandOutputDepth || k.Type == bytecode.OperandOutputCoverageMask
	}
	return false
}

// matrix returns the declaration covering exactly registers consecutive
// registers starting at base.
func (n *RegisterNames) matrix(base bytecode.RegisterKey, registers int) (matrixDeclaration, bool) {
	for _, m := range n.matrices {
		if m.base == base && m.registers == registers {
			return m, true
		}
	}
	return matrixDeclaration{}, false
}

func (n *RegisterNames) declareConstant(nm *namer, program *bytecode.Program, decl *bytecode.ConstantDeclaration) {
	// Unnamed declarations only bind registers; they keep raw spellings.
	if decl.Name == "" {
		return
	}
	if decl.RegisterSet == bytecode.RegisterSetSampler {
		name := nm.call(decl.Name)
		for r := 0; r < max(decl.RegisterCount, 1); r++ {
			key := samplerRegister(program, decl.RegisterIndex+r)
			n.names[key] = indexed(name, r, decl.RegisterCount, decl.ParameterClass)
		}
		return
	}

	typ, err := decl.RegisterType()
	if err != nil {
		return
	}
	name := nm.call(decl.Name)
	base := bytecode.D3D9RegisterKey{Type: typ, Number: decl.RegisterIndex}
	for r := 0; r < decl.RegisterCount; r++ {
		key := bytecode.D3D9RegisterKey{Type: typ, Number: decl.RegisterIndex + r}
		n.names[key] = indexed(name, r, decl.RegisterCount, decl.ParameterClass)
		n.widths[key] = declaredWidth(decl.ParameterClass, decl.Rows, decl.Columns)
	}
	if decl.ParameterClass.IsMatrix() && decl.RegisterCount > 1 {
		n.matrices = append(n.matrices, matrixDeclaration{
			name:      name,
			base:      base,
			registers: decl.RegisterCount,
			class:     decl.ParameterClass,
		})
	}
}

func (n *RegisterNames) declareBuffer(nm *namer, cb *bytecode.ConstantBufferDescription) {
	for i := range cb.Variables {
		v := &cb.Variables[i]
		name := nm.call(v.Name)
		for slot := 0; slot < v.Slots; slot++ {
			// Overlapping reflection entries keep the first owner of a slot.
			if owner, ok := cb.VariableAt(v.StartSlot + slot); ok && owner != v {
				continue
			}
			key := bytecode.D3D10RegisterKey{
				Type:   bytecode.OperandConstantBuffer,
				Number: cb.Register,
				Index:  v.StartSlot + slot,
			}
			n.names[key] = indexed(name, slot, v.Slots, v.Class)
			n.widths[key] = declaredWidth(v.Class, v.Rows, v.Columns)
		}
		if owner, _ := cb.VariableAt(v.StartSlot); owner != v {
			continue
		}
		if v.Class.IsMatrix() && v.Slots > 1 {
			n.matrices = append(n.matrices, matrixDeclaration{
				name: name,
				base: bytecode.D3D10RegisterKey{
					Type:   bytecode.OperandConstantBuffer,
					Number: cb.Register,
					Index:  v.StartSlot,
				},
				registers: v.Slots,
				class:     v.Class,
			})
		}
	}
}

// declareWidths records input and output widths from declaration masks.
func (n *RegisterNames) declareWidths(program *bytecode.Program) {
	for _, inst := range program.Instructions {
		switch inst := inst.(type) {
		case *bytecode.D3D9Instruction:
			if inst.Opcode != bytecode.OpDcl || len(inst.Params) == 0 {
				continue
			}
			p := inst.Params[0]
			if p.Register.Type != bytecode.RegisterSampler {
				n.widths[p.Register] = maskWidth(p.Mask)
			}
		case *bytecode.D3D10Instruction:
			switch inst.Opcode {
			case bytecode.D3D10DclInput, bytecode.D3D10DclInputSgv, bytecode.D3D10DclInputSiv,
				bytecode.D3D10DclInputPS, bytecode.D3D10DclInputPSSgv, bytecode.D3D10DclInputPSSiv,
				bytecode.D3D10DclOutput, bytecode.D3D10DclOutputSgv, bytecode.D3D10DclOutputSiv:
				if len(inst.Operands) > 0 {
					o := &inst.Operands[0]
					n.widths[o.Register()] = maskWidth(o.Mask)
				}
			}
		}
	}
}

func samplerRegister(program *bytecode.Program, n int) bytecode.RegisterKey {
	if program.IsD3D10() {
		return bytecode.D3D10RegisterKey{Type: bytecode.OperandResource, Number: n}
	}
	return bytecode.D3D9RegisterKey{Type: bytecode.RegisterSampler, Number: n}
}

// indexed names register r of a declaration spanning count registers.
// Registers of a column-major matrix hold its columns.
func indexed(name string, r, count int, class bytecode.ParameterClass) string {
	switch {
	case count <= 1:
		return name
	case class == bytecode.ClassMatrixColumns:
		return fmt.Sprintf("transpose(%s)[%d]", name, r)
	default:
		return fmt.Sprintf("%s[%d]", name, r)
	}
}

// declaredWidth is the number of lanes one register of a declaration holds.
func declaredWidth(class bytecode.ParameterClass, rows, columns int) int {
	w := columns
	if class == bytecode.ClassMatrixColumns {
		w = rows
	}
	if w < 1 || w > 4 {
		return 4
	}
	return w
}

// maskWidth is the width of a prefix mask (.x, .xy, .xyz, .xyzw), 4 otherwise.
func maskWidth(mask bytecode.WriteMask) int {
	for w := 1; w <= 4; w++ {
		if mask == bytecode.WriteMask(1<<w-1) {
			return w
		}
	}
	return 4
}

// registerSpellings lists the assembly spellings of every register the
// program references.
func registerSpellings(program *bytecode.Program) []string {
	var spellings []string
	for _, inst := range program.Instructions {
		switch inst := inst.(type) {
		case *bytecode.D3D9Instruction:
			for _, p := range inst.Params {
				spellings = append(spellings, p.Register.String())
			}
		case *bytecode.D3D10Instruction:
			for i := range inst.Operands {
				if o := &inst.Operands[i]; !o.IsImmediate() {
					spellings = append(spellings, fmt.Sprintf("%s%d", o.Type.Prefix(), o.Number))
				}
			}
		}
	}
	return spellings
}
