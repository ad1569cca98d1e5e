// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package hlsl

import (
	"errors"
	"strings"
	"testing"

	"github.com/gogpu/hlsldec/bytecode"
)

func TestShaderModel_String(t *testing.T) {
	tests := []struct {
		name string
		sm   ShaderModel
		want string
	}{
		{"SM 1.1", ShaderModel1_1, "SM 1.1"},
		{"SM 1.4", ShaderModel1_4, "SM 1.4"},
		{"SM 2.0", ShaderModel2_0, "SM 2.0"},
		{"SM 3.0", ShaderModel3_0, "SM 3.0"},
		{"SM 4.0", ShaderModel4_0, "SM 4.0"},
		{"SM 4.1", ShaderModel4_1, "SM 4.1"},
		{"SM 5.0", ShaderModel5_0, "SM 5.0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.sm.String()
			if got != tt.want {
				t.Errorf("ShaderModel.String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestShaderModel_Profile(t *testing.T) {
	tests := []struct {
		name  string
		sm    ShaderModel
		stage bytecode.ShaderStage
		want  string
	}{
		{"pixel 2.0", ShaderModel2_0, bytecode.StagePixel, "ps_2_0"},
		{"pixel 3.0", ShaderModel3_0, bytecode.StagePixel, "ps_3_0"},
		{"vertex 1.1", ShaderModel1_1, bytecode.StageVertex, "vs_1_1"},
		{"vertex 4.0", ShaderModel4_0, bytecode.StageVertex, "vs_4_0"},
		{"geometry 4.1", ShaderModel4_1, bytecode.StageGeometry, "gs_4_1"},
		{"compute 5.0", ShaderModel5_0, bytecode.StageCompute, "cs_5_0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.sm.Profile(tt.stage); got != tt.want {
				t.Errorf("Profile(%s) = %q, want %q", tt.stage, got, tt.want)
			}
		})
	}
}

func TestShaderModelOf(t *testing.T) {
	tests := []struct {
		name    string
		major   int
		minor   int
		want    ShaderModel
		wantErr bool
	}{
		{"1.4", 1, 4, ShaderModel1_4, false},
		{"2.x", 2, 1, ShaderModel2_0, false},
		{"3.0", 3, 0, ShaderModel3_0, false},
		{"4.1", 4, 1, ShaderModel4_1, false},
		{"5.0", 5, 0, ShaderModel5_0, false},
		{"6.0", 6, 0, 0, true},
		{"1.0", 1, 0, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ShaderModelOf(&bytecode.Program{MajorVersion: tt.major, MinorVersion: tt.minor})
			if (err != nil) != tt.wantErr {
				t.Fatalf("ShaderModelOf() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && got != tt.want {
				t.Errorf("ShaderModelOf() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestShaderModel_Features(t *testing.T) {
	tests := []struct {
		sm      ShaderModel
		buffers bool
		abs     bool
	}{
		{ShaderModel2_0, false, false},
		{ShaderModel3_0, false, true},
		{ShaderModel4_0, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.sm.String(), func(t *testing.T) {
			if got := tt.sm.UsesConstantBuffers(); got != tt.buffers {
				t.Errorf("UsesConstantBuffers() = %v, want %v", got, tt.buffers)
			}
			if got := tt.sm.SupportsAbsModifier(); got != tt.abs {
				t.Errorf("SupportsAbsModifier() = %v, want %v", got, tt.abs)
			}
		})
	}
}

func TestShaderModel_Check(t *testing.T) {
	r0 := bytecode.D3D9RegisterKey{Type: bytecode.RegisterTemp, Number: 0}
	oC0 := bytecode.D3D9RegisterKey{Type: bytecode.RegisterColorOut, Number: 0}
	absMove := &bytecode.D3D9Instruction{Opcode: bytecode.OpMov, Params: []bytecode.D3D9Param{
		{Register: oC0, Mask: bytecode.MaskAll},
		{Register: r0, Swizzle: bytecode.IdentitySwizzle, Modifier: bytecode.SourceModifierAbs},
	}}
	d3d10Move := &bytecode.D3D10Instruction{Opcode: bytecode.D3D10Mov}

	tests := []struct {
		name    string
		sm      ShaderModel
		inst    bytecode.Instruction
		message string
	}{
		{"abs on SM 3", ShaderModel3_0, absMove, ""},
		{"abs on SM 2", ShaderModel2_0, absMove, "abs source modifier on r0 requires SM 3.0"},
		{"tokenized on SM 4", ShaderModel4_0, d3d10Move, ""},
		{"tokenized on SM 3", ShaderModel3_0, d3d10Move, "uses the Shader Model 1-3 encoding"},
		{"legacy on SM 4", ShaderModel4_0, absMove, "uses the Shader Model 4 encoding"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.sm.Check(&bytecode.Program{Instructions: []bytecode.Instruction{tt.inst}})
			if tt.message == "" {
				if err != nil {
					t.Errorf("Check() error = %v", err)
				}
				return
			}
			var hlslErr *Error
			if !errors.As(err, &hlslErr) || hlslErr.Kind != ErrUnsupportedFeature {
				t.Fatalf("Check() error = %v, want UnsupportedFeature", err)
			}
			if !strings.Contains(err.Error(), tt.message) {
				t.Errorf("Check() error = %q, want it to contain %q", err, tt.message)
			}
		})
	}
}
