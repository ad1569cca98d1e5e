// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package bytecode

import "fmt"

// ShaderStage is the pipeline stage a program runs in.
type ShaderStage uint8

const (
	StagePixel ShaderStage = iota
	StageVertex
	StageGeometry
	StageHull
	StageDomain
	StageCompute
)

// String returns the stage name.
func (s ShaderStage) String() string {
	switch s {
	case StagePixel:
		return "pixel"
	case StageVertex:
		return "vertex"
	case StageGeometry:
		return "geometry"
	case StageHull:
		return "hull"
	case StageDomain:
		return "domain"
	case StageCompute:
		return "compute"
	default:
		return fmt.Sprintf("ShaderStage(%d)", uint8(s))
	}
}

// Program is a decoded shader together with its reflection data.
type Program struct {
	MajorVersion int
	MinorVersion int
	Stage        ShaderStage
	Instructions []Instruction

	// ConstantBuffers describes Shader Model 4+ constant buffers.
	ConstantBuffers []ConstantBufferDescription

	// Constants describes the constant table of the program.
	Constants []ConstantDeclaration
}

// IsD3D10 reports whether the program uses the Shader Model 4+ encoding.
func (p *Program) IsD3D10() bool {
	return p.MajorVersion >= 4
}

// OutputRegister reports whether key denotes a shader output of the
// program's stage and generation.
func (p *Program) OutputRegister(key RegisterKey) bool {
	switch k := key.(type) {
	case D3D9RegisterKey:
		if p.IsD3D10() {
			return false
		}
		if p.Stage == StagePixel {
			return k.Type == RegisterColorOut || k.Type == RegisterDepthOut
		}
		return k.Type == RegisterOutput || k.Type == RegisterRastOut || k.Type == RegisterAttrOut
	case D3D10RegisterKey:
		return p.IsD3D10() && k.Type == OperandOutput
	default:
		return false
	}
}

// ConstantBufferVariable is a reflected variable of a constant buffer.
type ConstantBufferVariable struct {
	Name      string
	StartSlot int
	Slots     int
	Class     ParameterClass
	Rows      int
	Columns   int
}

// ConstantBufferDescription is a Shader Model 4+ constant buffer.
// Size is counted in four-float slots.
type ConstantBufferDescription struct {
	Name      string
	Register  int
	Size      int
	Variables []ConstantBufferVariable
}

// VariableAt returns the reflected variable covering slot, if any.
func (d *ConstantBufferDescription) VariableAt(slot int) (*ConstantBufferVariable, bool) {
	for i := range d.Variables {
		v := &d.Variables[i]
		if slot >= v.StartSlot && slot < v.StartSlot+v.Slots {
			return v, true
		}
	}
	return nil, false
}

// RegisterSet is the register file a constant is bound to.
type RegisterSet uint8

const (
	RegisterSetBool RegisterSet = iota
	RegisterSetInt4
	RegisterSetFloat4
	RegisterSetSampler
)

// String returns the register set name.
func (s RegisterSet) String() string {
	switch s {
	case RegisterSetBool:
		return "Bool"
	case RegisterSetInt4:
		return "Int4"
	case RegisterSetFloat4:
		return "Float4"
	case RegisterSetSampler:
		return "Sampler"
	default:
		return fmt.Sprintf("RegisterSet(%d)", uint8(s))
	}
}

// ParameterClass is the shape class of a reflected constant.
type ParameterClass uint8

const (
	ClassScalar ParameterClass = iota
	ClassVector
	ClassMatrixRows
	ClassMatrixColumns
	ClassObject
	ClassStruct
)

// String returns the class name.
func (c ParameterClass) String() string {
	switch c {
	case ClassScalar:
		return "Scalar"
	case ClassVector:
		return "Vector"
	case ClassMatrixRows:
		return "MatrixRows"
	case ClassMatrixColumns:
		return "MatrixColumns"
	case ClassObject:
		return "Object"
	case ClassStruct:
		return "Struct"
	default:
		return fmt.Sprintf("ParameterClass(%d)", uint8(c))
	}
}

// IsMatrix reports whether the class is a row- or column-major matrix.
func (c ParameterClass) IsMatrix() bool {
	return c == ClassMatrixRows || c == ClassMatrixColumns
}

// ParameterType is the element type of a reflected constant.
type ParameterType uint8

const (
	ParamVoid ParameterType = iota
	ParamBool
	ParamInt
	ParamFloat
	ParamString
	ParamTexture
	ParamTexture1D
	ParamTexture2D
	ParamTexture3D
	ParamTextureCube
	ParamSampler
	ParamSampler1D
	ParamSampler2D
	ParamSampler3D
	ParamSamplerCube
)

var parameterTypeNames = [...]string{
	"Void", "Bool", "Int", "Float", "String", "Texture", "Texture1D",
	"Texture2D", "Texture3D", "TextureCube", "Sampler", "Sampler1D",
	"Sampler2D", "Sampler3D", "SamplerCube",
}

// String returns the type name.
func (t ParameterType) String() string {
	if int(t) < len(parameterTypeNames) {
		return parameterTypeNames[t]
	}
	return fmt.Sprintf("ParameterType(%d)", uint8(t))
}

// SamplerKind is the texture dimensionality a sampler is declared with.
type SamplerKind uint8

const (
	Sampler1D SamplerKind = iota
	Sampler2D
	Sampler3D
	SamplerCube
)

// String returns the kind name.
func (k SamplerKind) String() string {
	switch k {
	case Sampler1D:
		return "1D"
	case Sampler2D:
		return "2D"
	case Sampler3D:
		return "3D"
	case SamplerCube:
		return "Cube"
	default:
		return fmt.Sprintf("SamplerKind(%d)", uint8(k))
	}
}

// Dimension returns the number of texture coordinate lanes the sampler reads.
func (k SamplerKind) Dimension() int {
	switch k {
	case Sampler1D:
		return 1
	case Sampler2D:
		return 2
	default:
		return 3
	}
}

// ConstantDeclaration is one entry of the constant table.
type ConstantDeclaration struct {
	Name           string
	RegisterSet    RegisterSet
	RegisterIndex  int
	RegisterCount  int
	ParameterClass ParameterClass
	ParameterType  ParameterType
	Rows           int
	Columns        int
}

// ContainsRegister reports whether register number n lies in the
// declaration's register range.
func (d *ConstantDeclaration) ContainsRegister(n int) bool {
	return n >= d.RegisterIndex && n < d.RegisterIndex+d.RegisterCount
}

// SamplerKind returns the sampler dimensionality of a sampler declaration.
func (d *ConstantDeclaration) SamplerKind() (SamplerKind, error) {
	switch d.ParameterType {
	case ParamSampler1D:
		return Sampler1D, nil
	case ParamSampler2D:
		return Sampler2D, nil
	case ParamSampler3D:
		return Sampler3D, nil
	case ParamSamplerCube:
		return SamplerCube, nil
	default:
		return 0, fmt.Errorf("constant %q: parameter type %s is not a sampler", d.Name, d.ParameterType)
	}
}

// RegisterType returns the D3D9 register file of a non-sampler declaration.
func (d *ConstantDeclaration) RegisterType() (RegisterType, error) {
	switch d.ParameterType {
	case ParamFloat:
		return RegisterConst, nil
	case ParamInt:
		return RegisterConstInt, nil
	case ParamBool:
		return RegisterConstBool, nil
	default:
		return 0, fmt.Errorf("constant %q: unsupported parameter type %s", d.Name, d.ParameterType)
	}
}
