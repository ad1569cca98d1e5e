// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package asm reads Direct3D shader assembly listings, as printed by the
// effect compiler's disassembler, into bytecode programs.
//
// # Usage
//
//	program, err := asm.Parse(`
//	ps_2_0
//	dcl t0.xy
//	dcl_2d s0
//	texld r0, t0, s0
//	mov oC0, r0
//	`)
//	if err != nil {
//	    var serr *asm.SourceError
//	    if errors.As(err, &serr) {
//	        fmt.Println(serr.FormatWithContext())
//	    }
//	    log.Fatal(err)
//	}
//
// # Reflection
//
// Listings printed by the compiler start with comments describing the
// program's constants. Parse reads them to name registers:
//
//   - Shader Model 1-3: the "Parameters:" declarations and the "Registers:"
//     table.
//   - Shader Model 4+: the cbuffer blocks under "Buffer Definitions:" and
//     the "Resource Bindings:" table.
//
// Samplers and constant buffers that only appear in declaration statements
// (dcl_2d s0, dcl_resource_texture2d t0, dcl_constantbuffer cb0[4]) are
// recorded without names, so a bare listing still decompiles with register
// spellings.
//
// # Supported Syntax
//
//   - Instruction modifiers (_sat, _pp, _centroid, comparison suffixes)
//   - Source modifiers: negation, |abs| and the D3D9 suffixes _abs, _bias,
//     _bx2, _x2, _dz and _dw
//   - Write masks and swizzles, in xyzw or rgba letters
//   - Indexed constant buffer operands (cb0[3]) and immediates (l(1.0, 0, 0, 0))
//
// Relative addressing (c[a0.x + 4]) and immediate constant buffer
// declarations are not supported.
package asm
