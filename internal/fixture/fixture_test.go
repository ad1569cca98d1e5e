// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package fixture

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/gogpu/hlsldec/bytecode"
)

const tinted = `name: tinted texture
listing: |
  ps_2_0
  dcl t0
  dcl_2d s0
  texld r0, t0, s0
  mul oC0, r0, c0
constants:
  - {name: tint, set: float4, register: 0, count: 1, class: vector, type: float, rows: 1, columns: 4}
  - {name: diffuse, set: sampler, register: 0, count: 1, class: object, type: sampler2d}
expect:
  - {name: oC0, expression: "tex2D(diffuse, t0.xy) * tint"}
`

func TestParse(t *testing.T) {
	f, err := Parse([]byte(tinted))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if f.Name != "tinted texture" {
		t.Errorf("Name = %q", f.Name)
	}
	want := []Expectation{{Name: "oC0", Expression: "tex2D(diffuse, t0.xy) * tint"}}
	if diff := cmp.Diff(want, f.Expect); diff != "" {
		t.Errorf("Expect mismatch (-want +got):\n%s", diff)
	}

	program, err := f.Program()
	if err != nil {
		t.Fatalf("Program() error = %v", err)
	}
	if len(program.Instructions) != 4 {
		t.Errorf("got %d instructions, want 4", len(program.Instructions))
	}
	wantConstants := []bytecode.ConstantDeclaration{
		{
			Name: "tint", RegisterSet: bytecode.RegisterSetFloat4, RegisterIndex: 0, RegisterCount: 1,
			ParameterClass: bytecode.ClassVector, ParameterType: bytecode.ParamFloat, Rows: 1, Columns: 4,
		},
		{
			Name: "diffuse", RegisterSet: bytecode.RegisterSetSampler, RegisterIndex: 0, RegisterCount: 1,
			ParameterClass: bytecode.ClassObject, ParameterType: bytecode.ParamSampler2D,
		},
	}
	if diff := cmp.Diff(wantConstants, program.Constants); diff != "" {
		t.Errorf("constants mismatch (-want +got):\n%s", diff)
	}
}

func TestProgramBuffers(t *testing.T) {
	f, err := Parse([]byte(`listing: |
  ps_4_0
  dcl_constantbuffer cb0[5], immediateIndexed
  dcl_output o0.xyzw
  mov o0.xyzw, cb0[0].xyzw
buffers:
  - name: Material
    register: 0
    size: 5
    variables:
      - {name: color, slot: 0, slots: 1, class: vector, rows: 1, columns: 4}
      - {name: transform, slot: 1, slots: 4, class: matrix_columns, rows: 4, columns: 4}
`))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	program, err := f.Program()
	if err != nil {
		t.Fatalf("Program() error = %v", err)
	}

	want := []bytecode.ConstantBufferDescription{{
		Name:     "Material",
		Register: 0,
		Size:     5,
		Variables: []bytecode.ConstantBufferVariable{
			{Name: "color", StartSlot: 0, Slots: 1, Class: bytecode.ClassVector, Rows: 1, Columns: 4},
			{Name: "transform", StartSlot: 1, Slots: 4, Class: bytecode.ClassMatrixColumns, Rows: 4, Columns: 4},
		},
	}}
	if diff := cmp.Diff(want, program.ConstantBuffers); diff != "" {
		t.Errorf("constant buffers mismatch (-want +got):\n%s", diff)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		message string
	}{
		{"no listing", "name: empty\n", "listing is empty"},
		{"unknown class", "listing: ps_2_0\nconstants:\n  - {name: x, set: float4, class: tensor, type: float}\n", `unknown class "tensor"`},
		{"unknown set", "listing: ps_2_0\nconstants:\n  - {name: x, set: float8, class: vector, type: float}\n", `unknown register set "float8"`},
		{"type not scalar", "listing: ps_2_0\nconstants:\n  - {name: x, set: float4, class: vector, type: [float]}\n", "type must be a string"},
		{"malformed", "listing: [", "fixture:"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc))
			if err == nil {
				t.Fatal("Parse() succeeded, want error")
			}
			if !strings.Contains(err.Error(), tt.message) {
				t.Errorf("Parse() error = %q, want it to contain %q", err, tt.message)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tinted.yaml")
	if err := os.WriteFile(path, []byte(tinted), 0o644); err != nil {
		t.Fatal(err)
	}

	f, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(f.Constants) != 2 {
		t.Errorf("got %d constants, want 2", len(f.Constants))
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("Load() of a missing file succeeded")
	}
}
