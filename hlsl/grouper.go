// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package hlsl

import (
	"slices"

	"github.com/gogpu/hlsldec/expr"
)

// split partitions lanes into maximal contiguous runs that render as one
// expression each. A run starting at some lane is the longest prefix that
// forms a matrix multiply or normalize, or else the lanes groupable with
// the run's first lane.
func (c *Compiler) split(lanes []expr.Handle) [][]expr.Handle {
	var runs [][]expr.Handle
	for start := 0; start < len(lanes); {
		end := c.patternEnd(lanes, start)
		if end == 0 {
			end = start + 1
			for end < len(lanes) && c.groupable(lanes[start], lanes[end]) {
				end++
			}
		}
		runs = append(runs, lanes[start:end])
		start = end
	}
	return runs
}

// patternEnd returns the end of the longest run from start that is a matrix
// multiply or normalize as a whole, or 0.
func (c *Compiler) patternEnd(lanes []expr.Handle, start int) int {
	for end := len(lanes); end >= start+2; end-- {
		if _, ok := c.matchMatrix(lanes[start:end]); ok {
			return end
		}
		if _, ok := c.matchNormalize(lanes[start:end]); ok {
			return end
		}
	}
	return 0
}

// groupable reports whether two lanes can render as one vector expression.
func (c *Compiler) groupable(a, b expr.Handle) bool {
	if a == b {
		return true
	}
	switch ka := c.graph.Kind(a).(type) {
	case expr.Constant:
		kb, ok := c.graph.Kind(b).(expr.Constant)
		return ok && ka.Type == kb.Type
	case expr.RegisterInput:
		kb, ok := c.graph.Kind(b).(expr.RegisterInput)
		return ok && ka.Key.Register == kb.Key.Register && (ka.Sampler == nil) == (kb.Sampler == nil)
	case expr.TextureLoadOutput:
		kb, ok := c.graph.Kind(b).(expr.TextureLoadOutput)
		return ok && ka.Sampler == kb.Sampler && ka.Control == kb.Control && slices.Equal(ka.Coordinates, kb.Coordinates)
	case expr.NormalizeOutput:
		kb, ok := c.graph.Kind(b).(expr.NormalizeOutput)
		return ok && ka.Inputs == kb.Inputs
	case expr.Operation:
		kb, ok := c.graph.Kind(b).(expr.Operation)
		if !ok || ka.Op != kb.Op || len(ka.Operands) != len(kb.Operands) {
			return false
		}
		for i := range ka.Operands {
			if !c.groupable(ka.Operands[i], kb.Operands[i]) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// matchNormalize recognizes lanes x_i * rsqrt(x_0*x_0 + ... + x_n*x_n)
// sharing one reciprocal square root node, and returns the x_i.
func (c *Compiler) matchNormalize(lanes []expr.Handle) ([]expr.Handle, bool) {
	if len(lanes) < 2 {
		return nil, false
	}

	first, ok := c.operation(lanes[0], expr.OpMultiply)
	if !ok {
		return nil, false
	}
	var rsq expr.Handle
	switch {
	case c.isOperation(first.Operands[1], expr.OpReciprocalSquareRoot):
		rsq = first.Operands[1]
	case c.isOperation(first.Operands[0], expr.OpReciprocalSquareRoot):
		rsq = first.Operands[0]
	default:
		return nil, false
	}

	inputs := make([]expr.Handle, len(lanes))
	for i, h := range lanes {
		m, ok := c.operation(h, expr.OpMultiply)
		if !ok {
			return nil, false
		}
		switch rsq {
		case m.Operands[1]:
			inputs[i] = m.Operands[0]
		case m.Operands[0]:
			inputs[i] = m.Operands[1]
		default:
			return nil, false
		}
	}

	r, _ := c.operation(rsq, expr.OpReciprocalSquareRoot)
	terms := c.flattenAdd(r.Operands[0])
	if len(terms) != len(inputs) {
		return nil, false
	}
	for i, term := range terms {
		sq, ok := c.operation(term, expr.OpMultiply)
		if !ok || sq.Operands[0] != sq.Operands[1] || sq.Operands[0] != inputs[i] {
			return nil, false
		}
	}
	return inputs, true
}

// flattenAdd returns the leaves of the Add tree rooted at h, left to right.
func (c *Compiler) flattenAdd(h expr.Handle) []expr.Handle {
	if add, ok := c.operation(h, expr.OpAdd); ok {
		return append(c.flattenAdd(add.Operands[0]), c.flattenAdd(add.Operands[1])...)
	}
	return []expr.Handle{h}
}

func (c *Compiler) operation(h expr.Handle, op expr.OpKind) (expr.Operation, bool) {
	k, ok := c.graph.Kind(h).(expr.Operation)
	if !ok || k.Op != op || len(k.Operands) != op.Arity() {
		return expr.Operation{}, false
	}
	return k, true
}

func (c *Compiler) isOperation(h expr.Handle, op expr.OpKind) bool {
	_, ok := c.operation(h, op)
	return ok
}
