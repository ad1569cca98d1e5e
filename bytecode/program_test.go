// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package bytecode

import "testing"

func TestOutputRegister(t *testing.T) {
	pixel9 := &Program{MajorVersion: 3, Stage: StagePixel}
	vertex9 := &Program{MajorVersion: 3, Stage: StageVertex}
	pixel10 := &Program{MajorVersion: 4, Stage: StagePixel}

	tests := []struct {
		name    string
		program *Program
		key     RegisterKey
		want    bool
	}{
		{"ps color", pixel9, D3D9RegisterKey{Type: RegisterColorOut}, true},
		{"ps depth", pixel9, D3D9RegisterKey{Type: RegisterDepthOut}, true},
		{"ps temp", pixel9, D3D9RegisterKey{Type: RegisterTemp}, false},
		{"vs output", vertex9, D3D9RegisterKey{Type: RegisterOutput, Number: 3}, true},
		{"vs position", vertex9, D3D9RegisterKey{Type: RegisterRastOut}, true},
		{"vs color", vertex9, D3D9RegisterKey{Type: RegisterAttrOut}, true},
		{"vs input", vertex9, D3D9RegisterKey{Type: RegisterInput}, false},
		{"sm4 output", pixel10, D3D10RegisterKey{Type: OperandOutput}, true},
		{"sm4 depth", pixel10, D3D10RegisterKey{Type: OperandOutputDepth}, false},
		{"mixed generation", pixel10, D3D9RegisterKey{Type: RegisterColorOut}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.program.OutputRegister(tt.key); got != tt.want {
				t.Errorf("OutputRegister(%s) = %v, want %v", tt.key, got, tt.want)
			}
		})
	}
}

func TestConstantDeclaration(t *testing.T) {
	sampler := ConstantDeclaration{Name: "env", RegisterSet: RegisterSetSampler, ParameterType: ParamSamplerCube}
	kind, err := sampler.SamplerKind()
	if err != nil || kind != SamplerCube || kind.Dimension() != 3 {
		t.Errorf("SamplerKind() = %v, %v, want Cube", kind, err)
	}
	if _, err := sampler.RegisterType(); err == nil {
		t.Error("RegisterType() of a sampler succeeded")
	}

	matrix := ConstantDeclaration{Name: "world", RegisterIndex: 4, RegisterCount: 4, ParameterType: ParamFloat}
	if typ, err := matrix.RegisterType(); err != nil || typ != RegisterConst {
		t.Errorf("RegisterType() = %v, %v, want Const", typ, err)
	}
	if _, err := matrix.SamplerKind(); err == nil {
		t.Error("SamplerKind() of a float constant succeeded")
	}
	if !matrix.ContainsRegister(7) || matrix.ContainsRegister(8) || matrix.ContainsRegister(3) {
		t.Error("ContainsRegister should cover c4 through c7")
	}
}

func TestVariableAt(t *testing.T) {
	cb := ConstantBufferDescription{
		Name: "Material",
		Size: 5,
		Variables: []ConstantBufferVariable{
			{Name: "color", StartSlot: 0, Slots: 1},
			{Name: "transform", StartSlot: 1, Slots: 4},
		},
	}
	if v, ok := cb.VariableAt(3); !ok || v.Name != "transform" {
		t.Errorf("VariableAt(3) = %v, %v, want transform", v, ok)
	}
	if _, ok := cb.VariableAt(5); ok {
		t.Error("VariableAt(5) found a variable past the buffer")
	}
}

func TestLookupOpcode(t *testing.T) {
	for _, mnemonic := range []string{"mov", "mad", "texld", "texkill", "dp4", "def"} {
		op, ok := LookupOpcode(mnemonic)
		if !ok {
			t.Errorf("LookupOpcode(%q) failed", mnemonic)
			continue
		}
		if op.String() != mnemonic {
			t.Errorf("LookupOpcode(%q).String() = %q", mnemonic, op)
		}
	}
	if _, ok := LookupOpcode("frobnicate"); ok {
		t.Error("LookupOpcode(frobnicate) succeeded")
	}

	for _, mnemonic := range []string{"mov", "sample", "sincos", "dcl_constantbuffer", "rcp"} {
		op, ok := LookupD3D10Opcode(mnemonic)
		if !ok || op.String() != mnemonic {
			t.Errorf("LookupD3D10Opcode(%q) = %v, %v", mnemonic, op, ok)
		}
	}

	sincos := &D3D10Instruction{Opcode: D3D10SinCos}
	if sincos.DestinationCount() != 2 {
		t.Errorf("sincos DestinationCount() = %d, want 2", sincos.DestinationCount())
	}
	ret := &D3D10Instruction{Opcode: D3D10Ret}
	if ret.HasDestination() || ret.DestinationCount() != 0 {
		t.Error("ret should have no destination")
	}
}
