// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package asm

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/gogpu/hlsldec/bytecode"
)

// The compiler prefixes a listing with comments describing its constant
// table (Shader Model 1-3) or its constant buffers and resource bindings
// (Shader Model 4+). These patterns match one comment line each.
var (
	parameterLine = regexp.MustCompile(`^//\s+(?:(row_major|column_major)\s+)?([A-Za-z]\w*)\s+\$?(\w+)(?:\[(\d+)\])?;\s*$`)
	registerLine  = regexp.MustCompile(`^//\s+\$?(\w+)\s+([cibs])(\d+)\s+(\d+)\s*$`)
	cbufferLine   = regexp.MustCompile(`^//\s*cbuffer\s+(\$?\w+)\s*$`)
	variableLine  = regexp.MustCompile(`^//\s+(?:(row_major|column_major)\s+)?([A-Za-z]\w*)\s+(\w+)(?:\[(\d+)\])?;\s*//\s*Offset:\s*(\d+)\s+Size:\s*(\d+)`)
	bindingLine   = regexp.MustCompile(`^//\s*(\$?\w+)\s+(\w+)\s+(\w+)\s+(\w+)\s+([a-z]*)(\d+)\s+(\d+)\s*$`)
)

type headerSection int

const (
	sectionNone headerSection = iota
	sectionParameters
	sectionRegisters
	sectionBuffers
	sectionBindings
)

// parameterType is a parsed HLSL type spelling such as float4x3 or sampler2D.
type parameterType struct {
	typ     bytecode.ParameterType
	class   bytecode.ParameterClass
	rows    int
	columns int
}

// header accumulates reflection comments.
type header struct {
	types     map[string]parameterType
	constants []bytecode.ConstantDeclaration

	buffers []bytecode.ConstantBufferDescription

	// bufferRegisters maps constant buffer names to registers.
	bufferRegisters map[string]int
}

// readHeader fills program's reflection data from the listing's header
// comments. Listings without a header are left unchanged.
func readHeader(program *bytecode.Program, source string) error {
	h := &header{
		types:           make(map[string]parameterType),
		bufferRegisters: make(map[string]int),
	}

	section := sectionNone
	var buffer *bytecode.ConstantBufferDescription
	for n, raw := range strings.Split(source, "\n") {
		line := strings.TrimSpace(raw)
		if !strings.HasPrefix(line, "//") {
			// The header ends at the first statement.
			if line != "" {
				break
			}
			continue
		}

		text := strings.TrimSpace(strings.TrimPrefix(line, "//"))
		switch text {
		case "Parameters:":
			section = sectionParameters
			continue
		case "Registers:":
			section = sectionRegisters
			continue
		case "Buffer Definitions:":
			section = sectionBuffers
			continue
		case "Resource Bindings:":
			section = sectionBindings
			continue
		}

		var err error
		switch section {
		case sectionParameters:
			h.parameter(line)
		case sectionRegisters:
			err = h.register(line, n+1, source)
		case sectionBuffers:
			if m := cbufferLine.FindStringSubmatch(line); m != nil {
				h.buffers = append(h.buffers, bytecode.ConstantBufferDescription{Name: m[1]})
				buffer = &h.buffers[len(h.buffers)-1]
				continue
			}
			if buffer != nil {
				err = h.variable(buffer, line, n+1, source)
			}
		case sectionBindings:
			err = h.binding(line, n+1, source)
		}
		if err != nil {
			return err
		}
	}

	program.Constants = append(program.Constants, h.constants...)
	for _, cb := range h.buffers {
		reg, ok := h.bufferRegisters[cb.Name]
		if !ok {
			continue
		}
		cb.Register = reg
		program.ConstantBuffers = append(program.ConstantBuffers, cb)
	}
	return nil
}

func (h *header) parameter(line string) {
	m := parameterLine.FindStringSubmatch(line)
	if m == nil {
		return
	}
	t, ok := parseType(m[2], m[1])
	if !ok {
		return
	}
	h.types[m[3]] = t
}

func (h *header) register(line string, n int, source string) error {
	m := registerLine.FindStringSubmatch(line)
	if m == nil {
		return nil
	}
	index, err := strconv.Atoi(m[3])
	if err != nil {
		return newSourceErrorf(n, 1, source, "invalid register %s%s", m[2], m[3])
	}
	count, err := strconv.Atoi(m[4])
	if err != nil {
		return newSourceErrorf(n, 1, source, "invalid register count %q", m[4])
	}

	decl := bytecode.ConstantDeclaration{
		Name:          m[1],
		RegisterIndex: index,
		RegisterCount: count,
	}
	t, declared := h.types[m[1]]
	switch m[2] {
	case "c":
		decl.RegisterSet = bytecode.RegisterSetFloat4
		if !declared || t.class == bytecode.ClassObject {
			t = parameterType{typ: bytecode.ParamFloat, class: bytecode.ClassVector, rows: 1, columns: 4}
		}
		// Constants of other element types still live in float registers.
		t.typ = bytecode.ParamFloat
	case "i":
		decl.RegisterSet = bytecode.RegisterSetInt4
		if !declared {
			t = parameterType{class: bytecode.ClassVector, rows: 1, columns: 4}
		}
		t.typ = bytecode.ParamInt
	case "b":
		decl.RegisterSet = bytecode.RegisterSetBool
		if !declared {
			t = parameterType{class: bytecode.ClassScalar, rows: 1, columns: 1}
		}
		t.typ = bytecode.ParamBool
	case "s":
		decl.RegisterSet = bytecode.RegisterSetSampler
		if !declared || t.class != bytecode.ClassObject {
			t = parameterType{typ: bytecode.ParamSampler, class: bytecode.ClassObject}
		}
	}
	decl.ParameterType = t.typ
	decl.ParameterClass = t.class
	decl.Rows = t.rows
	decl.Columns = t.columns
	h.constants = append(h.constants, decl)
	return nil
}

func (h *header) variable(cb *bytecode.ConstantBufferDescription, line string, n int, source string) error {
	m := variableLine.FindStringSubmatch(line)
	if m == nil {
		return nil
	}
	t, ok := parseType(m[2], m[1])
	if !ok {
		return nil
	}
	offset, err := strconv.Atoi(m[5])
	if err != nil {
		return newSourceErrorf(n, 1, source, "invalid offset %q", m[5])
	}
	size, err := strconv.Atoi(m[6])
	if err != nil {
		return newSourceErrorf(n, 1, source, "invalid size %q", m[6])
	}

	cb.Size = max(cb.Size, (offset+size+15)/16)

	// A variable packed behind another one in the same slot has no
	// register of its own; its lanes keep raw spellings.
	if offset%16 != 0 {
		return nil
	}
	cb.Variables = append(cb.Variables, bytecode.ConstantBufferVariable{
		Name:      m[3],
		StartSlot: offset / 16,
		Slots:     (size + 15) / 16,
		Class:     t.class,
		Rows:      t.rows,
		Columns:   t.columns,
	})
	return nil
}

var resourceDimensions = map[string]bytecode.ParameterType{
	"1d":   bytecode.ParamSampler1D,
	"2d":   bytecode.ParamSampler2D,
	"3d":   bytecode.ParamSampler3D,
	"cube": bytecode.ParamSamplerCube,
}

func (h *header) binding(line string, n int, source string) error {
	m := bindingLine.FindStringSubmatch(line)
	if m == nil {
		return nil
	}
	slot, err := strconv.Atoi(m[6])
	if err != nil {
		return newSourceErrorf(n, 1, source, "invalid binding slot %q", m[6])
	}

	switch m[2] {
	case "cbuffer":
		h.bufferRegisters[m[1]] = slot
	case "texture":
		typ, ok := resourceDimensions[m[4]]
		if !ok {
			return nil
		}
		h.constants = append(h.constants, bytecode.ConstantDeclaration{
			Name:           strings.TrimPrefix(m[1], "$"),
			RegisterSet:    bytecode.RegisterSetSampler,
			RegisterIndex:  slot,
			RegisterCount:  1,
			ParameterClass: bytecode.ClassObject,
			ParameterType:  typ,
		})
	}
	return nil
}

var samplerTypes = map[string]bytecode.ParameterType{
	"sampler":     bytecode.ParamSampler,
	"sampler1D":   bytecode.ParamSampler1D,
	"sampler2D":   bytecode.ParamSampler2D,
	"sampler3D":   bytecode.ParamSampler3D,
	"samplerCUBE": bytecode.ParamSamplerCube,
}

var elementTypes = map[string]bytecode.ParameterType{
	"float": bytecode.ParamFloat,
	"half":  bytecode.ParamFloat,
	"int":   bytecode.ParamInt,
	"uint":  bytecode.ParamInt,
	"bool":  bytecode.ParamBool,
}

// parseType parses a type spelling. Matrices are column-major unless
// layout says row_major.
func parseType(spelling, layout string) (parameterType, bool) {
	if typ, ok := samplerTypes[spelling]; ok {
		return parameterType{typ: typ, class: bytecode.ClassObject}, true
	}

	base := strings.TrimRight(spelling, "0123456789x")
	typ, ok := elementTypes[base]
	if !ok {
		return parameterType{}, false
	}
	dims := spelling[len(base):]

	switch {
	case dims == "":
		return parameterType{typ: typ, class: bytecode.ClassScalar, rows: 1, columns: 1}, true
	case len(dims) == 1:
		n := int(dims[0] - '0')
		if n < 1 || n > 4 {
			return parameterType{}, false
		}
		return parameterType{typ: typ, class: bytecode.ClassVector, rows: 1, columns: n}, true
	case len(dims) == 3 && dims[1] == 'x':
		rows, columns := int(dims[0]-'0'), int(dims[2]-'0')
		if rows < 1 || rows > 4 || columns < 1 || columns > 4 {
			return parameterType{}, false
		}
		class := bytecode.ClassMatrixColumns
		if layout == "row_major" {
			class = bytecode.ClassMatrixRows
		}
		return parameterType{typ: typ, class: class, rows: rows, columns: columns}, true
	default:
		return parameterType{}, false
	}
}
