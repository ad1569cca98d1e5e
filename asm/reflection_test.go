// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package asm

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/gogpu/hlsldec/bytecode"
)

const d3d9Listing = `//
// Generated by Microsoft (R) HLSL Shader Compiler 9.29.952.3111
//
// Parameters:
//
//   float4x4 world;
//   row_major float3x4 view;
//   float3 $tint;
//   sampler2D diffuse;
//   sampler shadow;
//
//
// Registers:
//
//   Name         Reg   Size
//   ------------ ----- ----
//   world        c0       4
//   view         c4       3
//   $tint        c7       1
//   diffuse      s0       1
//   shadow       s1       1
//

    ps_3_0
    dcl_texcoord v0.xy
    dcl_2d s0
    dcl_cube s1
    texld r0, v0, s0
    mov oC0, r0
`

func TestReadHeaderD3D9(t *testing.T) {
	program, err := Parse(d3d9Listing)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	want := []bytecode.ConstantDeclaration{
		{
			Name: "world", RegisterSet: bytecode.RegisterSetFloat4, RegisterIndex: 0, RegisterCount: 4,
			ParameterClass: bytecode.ClassMatrixColumns, ParameterType: bytecode.ParamFloat, Rows: 4, Columns: 4,
		},
		{
			Name: "view", RegisterSet: bytecode.RegisterSetFloat4, RegisterIndex: 4, RegisterCount: 3,
			ParameterClass: bytecode.ClassMatrixRows, ParameterType: bytecode.ParamFloat, Rows: 3, Columns: 4,
		},
		{
			Name: "tint", RegisterSet: bytecode.RegisterSetFloat4, RegisterIndex: 7, RegisterCount: 1,
			ParameterClass: bytecode.ClassVector, ParameterType: bytecode.ParamFloat, Rows: 1, Columns: 3,
		},
		{
			Name: "diffuse", RegisterSet: bytecode.RegisterSetSampler, RegisterIndex: 0, RegisterCount: 1,
			ParameterClass: bytecode.ClassObject, ParameterType: bytecode.ParamSampler2D,
		},
		{
			Name: "shadow", RegisterSet: bytecode.RegisterSetSampler, RegisterIndex: 1, RegisterCount: 1,
			ParameterClass: bytecode.ClassObject, ParameterType: bytecode.ParamSamplerCube,
		},
	}
	if diff := cmp.Diff(want, program.Constants); diff != "" {
		t.Errorf("constants mismatch (-want +got):\n%s", diff)
	}
	if len(program.Instructions) != 5 {
		t.Errorf("got %d instructions, want 5", len(program.Instructions))
	}
}

const d3d10Listing = `//
// Generated by Microsoft (R) HLSL Shader Compiler 10.1
//
//
// Buffer Definitions:
//
// cbuffer $Globals
// {
//
//   float4 color;                      // Offset:    0 Size:    16
//   float3 dir;                        // Offset:   16 Size:    12
//   float power;                       // Offset:   28 Size:     4 [unused]
//   row_major float4x4 transform;      // Offset:   32 Size:    64
//
// }
//
//
// Resource Bindings:
//
// Name                                 Type  Format         Dim      HLSL Bind  Count
// ------------------------------ ---------- ------- ----------- -------------- ------
// diffuseSampler                    sampler      NA          NA             s0      1
// diffuse                           texture  float4          2d             t0      1
// $Globals                          cbuffer      NA          NA            cb0      1
//
ps_4_0
dcl_constantbuffer cb0[6], immediateIndexed
dcl_sampler s0, mode_default
dcl_resource_texture2d (float,float,float,float) t0
dcl_input_ps linear v0.xy
dcl_output o0.xyzw
sample o0.xyzw, v0.xyxx, t0.xyzw, s0
ret
`

func TestReadHeaderD3D10(t *testing.T) {
	program, err := Parse(d3d10Listing)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	wantBuffers := []bytecode.ConstantBufferDescription{{
		Name:     "$Globals",
		Register: 0,
		Size:     6,
		Variables: []bytecode.ConstantBufferVariable{
			{Name: "color", StartSlot: 0, Slots: 1, Class: bytecode.ClassVector, Rows: 1, Columns: 4},
			{Name: "dir", StartSlot: 1, Slots: 1, Class: bytecode.ClassVector, Rows: 1, Columns: 3},
			{Name: "transform", StartSlot: 2, Slots: 4, Class: bytecode.ClassMatrixRows, Rows: 4, Columns: 4},
		},
	}}
	if diff := cmp.Diff(wantBuffers, program.ConstantBuffers); diff != "" {
		t.Errorf("constant buffers mismatch (-want +got):\n%s", diff)
	}

	wantConstants := []bytecode.ConstantDeclaration{{
		Name:           "diffuse",
		RegisterSet:    bytecode.RegisterSetSampler,
		RegisterIndex:  0,
		RegisterCount:  1,
		ParameterClass: bytecode.ClassObject,
		ParameterType:  bytecode.ParamSampler2D,
	}}
	if diff := cmp.Diff(wantConstants, program.Constants); diff != "" {
		t.Errorf("constants mismatch (-want +got):\n%s", diff)
	}
}

func TestReadHeaderBindingSlots(t *testing.T) {
	// Older compilers print bare slot numbers.
	program, err := Parse(`// Buffer Definitions:
//
// cbuffer Lights
// {
//   float4 ambient;                    // Offset:    0 Size:    16
// }
//
// Resource Bindings:
//
// Name                                 Type  Format         Dim Slot Elements
// ------------------------------ ---------- ------- ----------- ---- --------
// env                               texture  float4        cube    3        1
// Lights                            cbuffer      NA          NA    2        1
//
vs_4_0
`)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if len(program.ConstantBuffers) != 1 || program.ConstantBuffers[0].Register != 2 {
		t.Errorf("constant buffers = %+v, want Lights at cb2", program.ConstantBuffers)
	}
	if len(program.Constants) != 1 || program.Constants[0].RegisterIndex != 3 ||
		program.Constants[0].ParameterType != bytecode.ParamSamplerCube {
		t.Errorf("constants = %+v, want env cube texture at t3", program.Constants)
	}
}

func TestParseType(t *testing.T) {
	tests := []struct {
		spelling string
		layout   string
		want     parameterType
		ok       bool
	}{
		{"float", "", parameterType{bytecode.ParamFloat, bytecode.ClassScalar, 1, 1}, true},
		{"half2", "", parameterType{bytecode.ParamFloat, bytecode.ClassVector, 1, 2}, true},
		{"int4", "", parameterType{bytecode.ParamInt, bytecode.ClassVector, 1, 4}, true},
		{"bool", "", parameterType{bytecode.ParamBool, bytecode.ClassScalar, 1, 1}, true},
		{"float4x3", "", parameterType{bytecode.ParamFloat, bytecode.ClassMatrixColumns, 4, 3}, true},
		{"float4x3", "column_major", parameterType{bytecode.ParamFloat, bytecode.ClassMatrixColumns, 4, 3}, true},
		{"float2x4", "row_major", parameterType{bytecode.ParamFloat, bytecode.ClassMatrixRows, 2, 4}, true},
		{"sampler2D", "", parameterType{bytecode.ParamSampler2D, bytecode.ClassObject, 0, 0}, true},
		{"samplerCUBE", "", parameterType{bytecode.ParamSamplerCube, bytecode.ClassObject, 0, 0}, true},
		{"float5", "", parameterType{}, false},
		{"float4x", "", parameterType{}, false},
		{"Light", "", parameterType{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.layout+tt.spelling, func(t *testing.T) {
			got, ok := parseType(tt.spelling, tt.layout)
			if ok != tt.ok {
				t.Fatalf("parseType(%q) ok = %v, want %v", tt.spelling, ok, tt.ok)
			}
			if got != tt.want {
				t.Errorf("parseType(%q) = %+v, want %+v", tt.spelling, got, tt.want)
			}
		})
	}
}
