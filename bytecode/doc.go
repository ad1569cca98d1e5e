// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package bytecode defines the decoded form of Direct3D shader bytecode that
// the decompiler consumes.
//
// Two instruction set generations are modelled:
//   - D3D9: Shader Model 1.x-3.0 tokens. Every register is four lanes wide and
//     is addressed by register type and number.
//   - D3D10: Shader Model 4.0+ tokens. Operands carry an operand type, up to
//     two index dimensions and may be encoded as immediates.
//
// The package does not parse binary containers. A decoder (or the asm
// package for textual listings) produces a Program, and reflection data is
// attached as ConstantBufferDescription and ConstantDeclaration values.
//
// # Registers
//
// Every scalar slot of the abstract register file is identified by a
// RegisterComponentKey, a RegisterKey plus a lane index 0-3:
//
//	key := bytecode.RegisterComponentKey{
//	    Register: bytecode.D3D9RegisterKey{Type: bytecode.RegisterConst, Number: 4},
//	    Lane:     1,
//	}
//	fmt.Println(key) // c4.y
package bytecode
