// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package hlsl

import (
	"fmt"
	"slices"
	"strings"

	"github.com/gogpu/hlsldec/bytecode"
	"github.com/gogpu/hlsldec/expr"
)

// orientation is how matrix registers map onto output lanes.
type orientation uint8

const (
	// rowsPerLane: lane i is the dot product of register base+i with the
	// vector, as dp4 against consecutive registers produces.
	rowsPerLane orientation = iota

	// columnsPerLane: lane i sums component i of each register base+j
	// scaled by vector component j, as a mul/mad chain produces.
	columnsPerLane
)

// matrixProduct is a recognized matrix-vector multiply.
type matrixProduct struct {
	orientation orientation
	base        bytecode.RegisterKey

	// vector holds the vector factor of each term, in term order.
	vector []expr.Handle

	// registers holds the matrix factor lanes of each register, in
	// register order.
	registers [][]expr.Handle
}

// matrixTerm is one product of a flattened lane.
type matrixTerm struct {
	key    bytecode.RegisterComponentKey
	factor expr.Handle
	vector expr.Handle
}

// matchMatrix recognizes lanes that together form a matrix-vector product
// against consecutive constant registers.
func (c *Compiler) matchMatrix(lanes []expr.Handle) (*matrixProduct, bool) {
	if len(lanes) < 2 {
		return nil, false
	}

	terms := make([][]matrixTerm, len(lanes))
	for i, h := range lanes {
		t, ok := c.matrixTerms(h)
		if !ok || len(t) < 2 || len(t) != len(terms[0]) && i > 0 {
			return nil, false
		}
		terms[i] = t
	}

	base := terms[0][0].key.Register
	if m, ok := matchOrientation(terms, base, rowsPerLane); ok {
		return m, true
	}
	return matchOrientation(terms, base, columnsPerLane)
}

func matchOrientation(terms [][]matrixTerm, base bytecode.RegisterKey, o orientation) (*matrixProduct, bool) {
	lanes, width := len(terms), len(terms[0])
	m := &matrixProduct{orientation: o, base: base, vector: make([]expr.Handle, width)}

	count, components := lanes, width
	if o == columnsPerLane {
		count, components = width, lanes
	}
	m.registers = make([][]expr.Handle, count)
	for r := range m.registers {
		m.registers[r] = make([]expr.Handle, components)
	}

	for i, lane := range terms {
		for j, term := range lane {
			reg, component := i, j
			if o == columnsPerLane {
				reg, component = j, i
			}
			want, ok := offsetRegister(base, reg)
			if !ok || term.key.Register != want || term.key.Lane != component {
				return nil, false
			}
			if i == 0 {
				m.vector[j] = term.vector
			} else if term.vector != m.vector[j] {
				return nil, false
			}
			m.registers[reg][component] = term.factor
		}
	}
	return m, true
}

// matrixTerms flattens a lane into products of a constant register lane
// and a vector factor, ordered by register and lane.
func (c *Compiler) matrixTerms(h expr.Handle) ([]matrixTerm, bool) {
	leaves := c.flattenAdd(h)
	terms := make([]matrixTerm, 0, len(leaves))
	for _, leaf := range leaves {
		m, ok := c.operation(leaf, expr.OpMultiply)
		if !ok {
			return nil, false
		}
		factor, vector := m.Operands[1], m.Operands[0]
		key, ok := c.matrixRegister(factor)
		if !ok {
			factor, vector = vector, factor
			if key, ok = c.matrixRegister(factor); !ok {
				return nil, false
			}
		}
		terms = append(terms, matrixTerm{key: key, factor: factor, vector: vector})
	}
	slices.SortStableFunc(terms, func(a, b matrixTerm) int {
		if d := bytecode.CompareRegisterKeys(a.key.Register, b.key.Register); d != 0 {
			return d
		}
		return a.key.Lane - b.key.Lane
	})
	return terms, true
}

// matrixRegister reports whether h reads a lane of a uniform constant register.
func (c *Compiler) matrixRegister(h expr.Handle) (bytecode.RegisterComponentKey, bool) {
	in, ok := c.graph.Kind(h).(expr.RegisterInput)
	if !ok || in.Sampler != nil {
		return bytecode.RegisterComponentKey{}, false
	}
	switch k := in.Key.Register.(type) {
	case bytecode.D3D9RegisterKey:
		return in.Key, k.Type == bytecode.RegisterConst
	case bytecode.D3D10RegisterKey:
		return in.Key, k.Type == bytecode.OperandConstantBuffer
	default:
		return bytecode.RegisterComponentKey{}, false
	}
}

// offsetRegister returns the register n places after base.
func offsetRegister(base bytecode.RegisterKey, n int) (bytecode.RegisterKey, bool) {
	switch k := base.(type) {
	case bytecode.D3D9RegisterKey:
		k.Number += n
		return k, true
	case bytecode.D3D10RegisterKey:
		k.Index += n
		return k, true
	default:
		return nil, false
	}
}

// renderMatrix emits mul() with the matrix named by its declaration when
// one covers exactly the registers used, or built from register rows.
func (c *Compiler) renderMatrix(m *matrixProduct) (fragment, error) {
	vector, err := c.compile(m.vector, AnyWidth)
	if err != nil {
		return fragment{}, err
	}

	// With registers as matrix rows, rowsPerLane is mul(M, v).
	registersAreRows := true
	matrix := ""
	if decl, ok := c.names.matrix(m.base, len(m.registers)); ok {
		matrix = decl.name
		registersAreRows = decl.class != bytecode.ClassMatrixColumns
	} else {
		rows := make([]string, len(m.registers))
		for r, lanes := range m.registers {
			f, err := c.compile(lanes, len(lanes))
			if err != nil {
				return fragment{}, err
			}
			rows[r] = f.text
		}
		matrix = fmt.Sprintf("float%dx%d(%s)", len(m.registers), len(m.registers[0]), strings.Join(rows, ", "))
	}

	if (m.orientation == rowsPerLane) == registersAreRows {
		return atomic(fmt.Sprintf("mul(%s, %s)", matrix, vector.text)), nil
	}
	return atomic(fmt.Sprintf("mul(%s, %s)", vector.text, matrix)), nil
}
