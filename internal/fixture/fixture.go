// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package fixture loads decompiler test cases: an assembly listing, optional
// reflection data and the expected HLSL expressions, stored as YAML.
//
//	name: tinted texture
//	listing: |
//	  ps_2_0
//	  dcl t0
//	  dcl_2d s0
//	  texld r0, t0, s0
//	  mul oC0, r0, c0
//	constants:
//	  - {name: tint, set: float4, register: 0, count: 1, class: vector, type: float, rows: 1, columns: 4}
//	  - {name: diffuse, set: sampler, register: 0, count: 1, class: object, type: sampler2d}
//	expect:
//	  - {name: oC0, expression: "tex2D(diffuse, t0.xy) * tint"}
//
// Constants and buffers, when present, replace the reflection data read from
// the listing.
package fixture

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/gogpu/hlsldec/asm"
	"github.com/gogpu/hlsldec/bytecode"
)

// Fixture is one decompiler test case.
type Fixture struct {
	Name    string `yaml:"name"`
	Listing string `yaml:"listing"`

	Constants []Constant `yaml:"constants,omitempty"`
	Buffers   []Buffer   `yaml:"buffers,omitempty"`

	// RawNames renders registers by their assembly spelling.
	RawNames bool `yaml:"raw_names,omitempty"`

	Expect   []Expectation `yaml:"expect,omitempty"`
	Discards []string      `yaml:"discards,omitempty"`
}

// Constant is a constant table entry.
type Constant struct {
	Name     string      `yaml:"name"`
	Set      RegisterSet `yaml:"set"`
	Register int         `yaml:"register"`
	Count    int         `yaml:"count"`
	Class    Class       `yaml:"class"`
	Type     Type        `yaml:"type"`
	Rows     int         `yaml:"rows,omitempty"`
	Columns  int         `yaml:"columns,omitempty"`
}

// Buffer is a constant buffer with its variables.
type Buffer struct {
	Name      string     `yaml:"name"`
	Register  int        `yaml:"register"`
	Size      int        `yaml:"size"`
	Variables []Variable `yaml:"variables,omitempty"`
}

// Variable is a constant buffer variable. Slot and Slots count four-float
// registers.
type Variable struct {
	Name    string `yaml:"name"`
	Slot    int    `yaml:"slot"`
	Slots   int    `yaml:"slots"`
	Class   Class  `yaml:"class"`
	Rows    int    `yaml:"rows,omitempty"`
	Columns int    `yaml:"columns,omitempty"`
}

// Expectation is the expected expression of one output register.
type Expectation struct {
	Name       string `yaml:"name"`
	Expression string `yaml:"expression"`
}

// Load reads and parses the fixture at path.
func Load(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	f, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

// Parse parses a fixture document.
func Parse(data []byte) (*Fixture, error) {
	var f Fixture
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("fixture: %w", err)
	}
	if f.Listing == "" {
		return nil, fmt.Errorf("fixture: listing is empty")
	}
	return &f, nil
}

// Program assembles the listing and attaches the fixture's reflection data.
func (f *Fixture) Program() (*bytecode.Program, error) {
	program, err := asm.Parse(f.Listing)
	if err != nil {
		return nil, err
	}

	if len(f.Constants) > 0 {
		program.Constants = make([]bytecode.ConstantDeclaration, 0, len(f.Constants))
		for _, c := range f.Constants {
			program.Constants = append(program.Constants, bytecode.ConstantDeclaration{
				Name:           c.Name,
				RegisterSet:    bytecode.RegisterSet(c.Set),
				RegisterIndex:  c.Register,
				RegisterCount:  c.Count,
				ParameterClass: bytecode.ParameterClass(c.Class),
				ParameterType:  bytecode.ParameterType(c.Type),
				Rows:           c.Rows,
				Columns:        c.Columns,
			})
		}
	}

	if len(f.Buffers) > 0 {
		program.ConstantBuffers = make([]bytecode.ConstantBufferDescription, 0, len(f.Buffers))
		for _, b := range f.Buffers {
			cb := bytecode.ConstantBufferDescription{Name: b.Name, Register: b.Register, Size: b.Size}
			for _, v := range b.Variables {
				cb.Variables = append(cb.Variables, bytecode.ConstantBufferVariable{
					Name:      v.Name,
					StartSlot: v.Slot,
					Slots:     v.Slots,
					Class:     bytecode.ParameterClass(v.Class),
					Rows:      v.Rows,
					Columns:   v.Columns,
				})
			}
			program.ConstantBuffers = append(program.ConstantBuffers, cb)
		}
	}
	return program, nil
}

// RegisterSet is a bytecode.RegisterSet spelled bool, int4, float4 or sampler.
type RegisterSet bytecode.RegisterSet

// Class is a bytecode.ParameterClass spelled scalar, vector, matrix_rows,
// matrix_columns, object or struct.
type Class bytecode.ParameterClass

// Type is a bytecode.ParameterType spelled bool, int, float, sampler1d,
// sampler2d, sampler3d or samplercube.
type Type bytecode.ParameterType

var registerSets = map[string]bytecode.RegisterSet{
	"bool":    bytecode.RegisterSetBool,
	"int4":    bytecode.RegisterSetInt4,
	"float4":  bytecode.RegisterSetFloat4,
	"sampler": bytecode.RegisterSetSampler,
}

var classes = map[string]bytecode.ParameterClass{
	"scalar":         bytecode.ClassScalar,
	"vector":         bytecode.ClassVector,
	"matrix_rows":    bytecode.ClassMatrixRows,
	"matrix_columns": bytecode.ClassMatrixColumns,
	"object":         bytecode.ClassObject,
	"struct":         bytecode.ClassStruct,
}

var types = map[string]bytecode.ParameterType{
	"bool":        bytecode.ParamBool,
	"int":         bytecode.ParamInt,
	"float":       bytecode.ParamFloat,
	"sampler1d":   bytecode.ParamSampler1D,
	"sampler2d":   bytecode.ParamSampler2D,
	"sampler3d":   bytecode.ParamSampler3D,
	"samplercube": bytecode.ParamSamplerCube,
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (s *RegisterSet) UnmarshalYAML(value *yaml.Node) error {
	v, err := lookup(value, "register set", registerSets)
	*s = RegisterSet(v)
	return err
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (c *Class) UnmarshalYAML(value *yaml.Node) error {
	v, err := lookup(value, "class", classes)
	*c = Class(v)
	return err
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (t *Type) UnmarshalYAML(value *yaml.Node) error {
	v, err := lookup(value, "type", types)
	*t = Type(v)
	return err
}

func lookup[T any](value *yaml.Node, what string, names map[string]T) (T, error) {
	var zero T
	if value.Kind != yaml.ScalarNode {
		return zero, fmt.Errorf("line %d: %s must be a string", value.Line, what)
	}
	v, ok := names[value.Value]
	if !ok {
		return zero, fmt.Errorf("line %d: unknown %s %q", value.Line, what, value.Value)
	}
	return v, nil
}
