// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package hlsl

import (
	"fmt"

	"github.com/gogpu/hlsldec/bytecode"
)

// ShaderModel represents the DirectX Shader Model a program was compiled for.
type ShaderModel uint8

// Shader Models the decompiler reads.
const (
	// ShaderModel1_1 is the first programmable pipeline (DirectX 8).
	ShaderModel1_1 ShaderModel = iota
	ShaderModel1_2
	ShaderModel1_3
	ShaderModel1_4

	// ShaderModel2_0 is DirectX 9.
	ShaderModel2_0

	// ShaderModel3_0 adds the abs source modifier and vFace.
	ShaderModel3_0

	// ShaderModel4_0 switches to the tokenized encoding with constant
	// buffers (DirectX 10).
	ShaderModel4_0
	ShaderModel4_1

	// ShaderModel5_0 is DirectX 11.
	ShaderModel5_0
)

var shaderModelVersions = [...][2]uint8{
	ShaderModel1_1: {1, 1},
	ShaderModel1_2: {1, 2},
	ShaderModel1_3: {1, 3},
	ShaderModel1_4: {1, 4},
	ShaderModel2_0: {2, 0},
	ShaderModel3_0: {3, 0},
	ShaderModel4_0: {4, 0},
	ShaderModel4_1: {4, 1},
	ShaderModel5_0: {5, 0},
}

// ShaderModelOf returns the shader model of program's version.
// Version 2.x (2.1) reads as 2.0.
func ShaderModelOf(program *bytecode.Program) (ShaderModel, error) {
	major, minor := program.MajorVersion, program.MinorVersion
	if major == 2 {
		minor = 0
	}
	for sm, v := range shaderModelVersions {
		if int(v[0]) == major && int(v[1]) == minor {
			return ShaderModel(sm), nil
		}
	}
	return 0, fmt.Errorf("unsupported shader model %d.%d", program.MajorVersion, program.MinorVersion)
}

// String returns a human-readable representation of the shader model.
// Example: "SM 3.0", "SM 4.1"
func (sm ShaderModel) String() string {
	return fmt.Sprintf("SM %d.%d", sm.Major(), sm.Minor())
}

// ProfileSuffix returns the shader profile suffix for this model.
// Example: "3_0", "4_0"
func (sm ShaderModel) ProfileSuffix() string {
	return fmt.Sprintf("%d_%d", sm.Major(), sm.Minor())
}

// Profile returns the compiler profile of stage under this model,
// e.g. "ps_3_0" or "vs_4_0".
func (sm ShaderModel) Profile(stage bytecode.ShaderStage) string {
	prefix := "ps"
	switch stage {
	case bytecode.StageVertex:
		prefix = "vs"
	case bytecode.StageGeometry:
		prefix = "gs"
	case bytecode.StageHull:
		prefix = "hs"
	case bytecode.StageDomain:
		prefix = "ds"
	case bytecode.StageCompute:
		prefix = "cs"
	}
	return prefix + "_" + sm.ProfileSuffix()
}

func (sm ShaderModel) version() (major, minor uint8) {
	if int(sm) < len(shaderModelVersions) {
		v := shaderModelVersions[sm]
		return v[0], v[1]
	}
	return 3, 0
}

// Major returns the major version number.
func (sm ShaderModel) Major() uint8 {
	major, _ := sm.version()
	return major
}

// Minor returns the minor version number.
func (sm ShaderModel) Minor() uint8 {
	_, minor := sm.version()
	return minor
}

// UsesConstantBuffers returns true if constants live in constant buffers
// rather than the constant register file.
func (sm ShaderModel) UsesConstantBuffers() bool {
	return sm >= ShaderModel4_0
}

// SupportsAbsModifier returns true if source operands may carry abs.
func (sm ShaderModel) SupportsAbsModifier() bool {
	return sm >= ShaderModel3_0
}

// Check reports the first instruction of program the shader model cannot
// encode: an instruction of the other encoding generation, or an abs
// source modifier before Shader Model 3.
func (sm ShaderModel) Check(program *bytecode.Program) error {
	for i, inst := range program.Instructions {
		switch inst := inst.(type) {
		case *bytecode.D3D9Instruction:
			if sm.UsesConstantBuffers() {
				return unsupported(i, inst, fmt.Sprintf("%s uses the Shader Model 4 encoding", sm))
			}
			if sm.SupportsAbsModifier() {
				continue
			}
			for _, p := range inst.Params {
				if p.Modifier == bytecode.SourceModifierAbs || p.Modifier == bytecode.SourceModifierAbsAndNegate {
					return unsupported(i, inst, fmt.Sprintf("abs source modifier on %s requires SM 3.0", p.Register))
				}
			}
		case *bytecode.D3D10Instruction:
			if !sm.UsesConstantBuffers() {
				return unsupported(i, inst, fmt.Sprintf("%s uses the Shader Model 1-3 encoding", sm))
			}
		}
	}
	return nil
}

func unsupported(i int, inst bytecode.Instruction, message string) *Error {
	return NewError(ErrUnsupportedFeature, fmt.Sprintf("instruction %d (%s): %s", i, inst.Mnemonic(), message))
}
