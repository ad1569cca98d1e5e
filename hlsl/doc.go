// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package hlsl renders expression graph nodes as HLSL source expressions.
//
// A Compiler takes a group of up to four single-lane nodes, the lanes of
// one register value, and produces one HLSL expression of that width.
// Lanes that share a shape collapse into one vector expression with a
// swizzle; lanes that differ are split into runs and combined with a
// floatN constructor.
//
// # Pattern Recognition
//
// Before rendering lane by lane, the compiler recognizes:
//   - matrix-vector products against consecutive constant registers,
//     rendered as mul(M, v) or mul(v, M)
//   - x * rsqrt(dot(x, x)) over all lanes, rendered as normalize(x)
//
// # Usage
//
//	names := hlsl.NewRegisterNames(program, hlsl.DefaultOptions())
//	c := hlsl.NewCompiler(names, graph)
//	text, err := c.Compile([]expr.Handle{root})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// # Register Names
//
// RegisterNames maps registers to identifiers found in the constant table
// or constant buffer reflection. Registers without a declaration render by
// their assembly spelling (r0, v1, cb0[2]).
package hlsl
