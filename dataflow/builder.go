// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package dataflow

import (
	"fmt"
	"math"
	"slices"

	"github.com/gogpu/hlsldec/bytecode"
	"github.com/gogpu/hlsldec/expr"
)

// Root is the expression left in a register once replay finishes.
type Root struct {
	Register bytecode.RegisterKey

	// Mask holds the written lanes.
	Mask bytecode.WriteMask

	// Node is a Group with one member per written lane, in lane order.
	Node expr.Handle
}

// Result is the outcome of replaying a program.
type Result struct {
	Program *bytecode.Program
	Graph   *expr.Graph

	// Outputs holds one root per written output register, ordered by register.
	Outputs []Root

	// Discards holds one root per texkill register, ordered by first kill.
	// A later texkill of the same register replaces the earlier condition.
	Discards []Root
}

// Build replays program and returns the expression graph of its outputs.
func Build(program *bytecode.Program) (*Result, error) {
	if program == nil {
		return nil, NewError(ErrInvalidProgram, "program is nil")
	}

	b := newBuilder(program)
	if err := b.seed(); err != nil {
		return nil, err
	}
	for i, inst := range program.Instructions {
		if err := b.replay(inst); err != nil {
			return nil, fmt.Errorf("instruction %d (%s): %w", i, inst.Mnemonic(), err)
		}
	}
	res, err := b.result()
	if err != nil {
		return nil, err
	}

	errs, err := expr.Validate(res.Graph)
	if err != nil {
		return nil, err
	}
	if len(errs) > 0 {
		return nil, NewError(ErrInvalidProgram, fmt.Sprintf("invalid expression graph: %v", errs[0]))
	}
	return res, nil
}

type builder struct {
	program *bytecode.Program
	graph   *expr.Graph

	// live maps each register lane to the node currently held there.
	live map[bytecode.RegisterComponentKey]expr.Handle

	// samplers maps sampler registers to their sampler leaves.
	samplers map[bytecode.RegisterKey]expr.Handle

	discards []Root
}

func newBuilder(program *bytecode.Program) *builder {
	return &builder{
		program:  program,
		graph:    expr.NewGraph(),
		live:     make(map[bytecode.RegisterComponentKey]expr.Handle),
		samplers: make(map[bytecode.RegisterKey]expr.Handle),
	}
}

// seed binds constant registers and samplers from reflection data.
func (b *builder) seed() error {
	for _, cb := range b.program.ConstantBuffers {
		for slot := 0; slot < cb.Size; slot++ {
			b.seedRegister(bytecode.D3D10RegisterKey{
				Type:   bytecode.OperandConstantBuffer,
				Number: cb.Register,
				Index:  slot,
			})
		}
	}

	for i := range b.program.Constants {
		decl := &b.program.Constants[i]
		if decl.RegisterSet == bytecode.RegisterSetSampler {
			kind, err := decl.SamplerKind()
			if err != nil {
				return NewError(ErrInvalidProgram, err.Error())
			}
			for r := 0; r < max(decl.RegisterCount, 1); r++ {
				key := b.samplerKey(decl.RegisterIndex + r)
				b.samplers[key] = b.graph.AddSampler(bytecode.RegisterComponentKey{Register: key}, kind)
			}
			continue
		}

		typ, err := decl.RegisterType()
		if err != nil {
			return NewError(ErrInvalidProgram, err.Error())
		}
		for r := 0; r < decl.RegisterCount; r++ {
			b.seedRegister(bytecode.D3D9RegisterKey{Type: typ, Number: decl.RegisterIndex + r})
		}
	}
	return nil
}

func (b *builder) seedRegister(reg bytecode.RegisterKey) {
	for lane := 0; lane < 4; lane++ {
		key := bytecode.RegisterComponentKey{Register: reg, Lane: lane}
		b.live[key] = b.graph.AddRegisterInput(key)
	}
}

// samplerKey is the register a texture sample names its sampler by:
// the sampler register for D3D9, the resource register for D3D10.
func (b *builder) samplerKey(n int) bytecode.RegisterKey {
	if b.program.IsD3D10() {
		return bytecode.D3D10RegisterKey{Type: bytecode.OperandResource, Number: n}
	}
	return bytecode.D3D9RegisterKey{Type: bytecode.RegisterSampler, Number: n}
}

func (b *builder) lookup(key bytecode.RegisterComponentKey) (expr.Handle, error) {
	h, ok := b.live[key]
	if !ok {
		return 0, invalidRegisterReference(key)
	}
	return h, nil
}

// shared holds nodes built once per instruction and referenced by every
// destination lane.
type shared struct {
	node        expr.Handle
	sampler     expr.Handle
	coordinates []expr.Handle
	control     bytecode.TextureControl
	inputs      [3]expr.Handle
}

type write struct {
	key  bytecode.RegisterComponentKey
	node expr.Handle
}

func (b *builder) replay(inst bytecode.Instruction) error {
	v, err := viewOf(inst)
	if err != nil {
		return err
	}
	sem, ok := v.semantic()
	if !ok {
		return unsupportedInstruction(inst.Mnemonic())
	}
	if sem.action == actionIgnore {
		return nil
	}
	if need := max(v.firstSource()+sem.inputs, 1); v.operandCount() < need {
		return NewError(ErrInvalidProgram,
			fmt.Sprintf("%s needs %d operands, got %d", inst.Mnemonic(), need, v.operandCount()))
	}

	s, err := b.prepare(v, sem)
	if err != nil {
		return err
	}

	// Lanes are written after every lane is built, so an instruction
	// reading its own destination sees the previous values.
	var writes []write
	for _, dst := range v.destinations() {
		if b.skipDestination(sem, dst.register) {
			continue
		}
		for _, lane := range dst.mask.Lanes() {
			h, err := b.buildLane(v, sem, s, dst, lane)
			if err != nil {
				return err
			}
			if shift := v.shift(); shift != 0 && sem.action != actionKill {
				scale := b.graph.AddConstant(math.Ldexp(1, shift), expr.Float)
				if h, err = b.graph.AddOperation(expr.OpMultiply, h, scale); err != nil {
					return err
				}
			}
			if v.saturate() && sem.action != actionKill {
				if h, err = b.graph.AddOperation(expr.OpSaturate, h); err != nil {
					return err
				}
			}
			writes = append(writes, write{
				key:  bytecode.RegisterComponentKey{Register: dst.register, Lane: lane},
				node: h,
			})
		}
	}

	if sem.action == actionKill {
		return b.addDiscard(v.register(v.firstSource()), writes)
	}
	for _, w := range writes {
		b.live[w.key] = w.node
	}
	return nil
}

func (b *builder) skipDestination(sem semantic, reg bytecode.RegisterKey) bool {
	switch k := reg.(type) {
	case bytecode.D3D9RegisterKey:
		if k.Type == bytecode.RegisterSampler {
			return true
		}
	case bytecode.D3D10RegisterKey:
		if k.Type == bytecode.OperandNull {
			return true
		}
	}
	return sem.action == actionDeclareInput && b.program.OutputRegister(reg)
}

// prepare builds the nodes an instruction shares across its lanes.
func (b *builder) prepare(v view, sem semantic) (shared, error) {
	var s shared
	src := v.firstSource()

	switch sem.action {
	case actionDot, actionDot2Add:
		width := sem.width
		if sem.action == actionDot2Add {
			width = 2
		}
		sum, err := b.dotProduct(v, src, width)
		if err != nil {
			return s, err
		}
		if sem.action == actionDot2Add {
			c, err := v.read(b, src+2, 0)
			if err != nil {
				return s, err
			}
			if sum, err = b.graph.AddOperation(expr.OpAdd, sum, c); err != nil {
				return s, err
			}
		}
		s.node = sum

	case actionTexture:
		key := v.register(src + 1)
		sampler, ok := b.samplers[key]
		if !ok {
			return s, NewError(ErrUnknownSampler, fmt.Sprintf("sampler %s is not declared", key))
		}
		in := b.graph.Kind(sampler).(expr.RegisterInput)
		s.sampler = sampler
		s.control = v.textureControl()
		// Projection and bias read the w lane too.
		dimension := in.SamplerDimension()
		if s.control != bytecode.TextureSample {
			dimension = 4
		}
		s.coordinates = make([]expr.Handle, dimension)
		for lane := range s.coordinates {
			h, err := v.read(b, src, lane)
			if err != nil {
				return s, err
			}
			s.coordinates[lane] = h
		}

	case actionNormalize:
		for lane := range s.inputs {
			h, err := v.read(b, src, lane)
			if err != nil {
				return s, err
			}
			s.inputs[lane] = h
		}
	}
	return s, nil
}

// dotProduct builds the sum of lane-wise products of the two operands at
// src, folded left.
func (b *builder) dotProduct(v view, src, width int) (expr.Handle, error) {
	var sum expr.Handle
	for lane := 0; lane < width; lane++ {
		x, err := v.read(b, src, lane)
		if err != nil {
			return 0, err
		}
		y, err := v.read(b, src+1, lane)
		if err != nil {
			return 0, err
		}
		term, err := b.graph.AddOperation(expr.OpMultiply, x, y)
		if err != nil {
			return 0, err
		}
		if lane == 0 {
			sum = term
			continue
		}
		if sum, err = b.graph.AddOperation(expr.OpAdd, sum, term); err != nil {
			return 0, err
		}
	}
	return sum, nil
}

func (b *builder) buildLane(v view, sem semantic, s shared, dst destination, lane int) (expr.Handle, error) {
	src := v.firstSource()

	switch sem.action {
	case actionDeclareInput:
		return b.graph.AddRegisterInput(bytecode.RegisterComponentKey{Register: dst.register, Lane: lane}), nil

	case actionDefine:
		return b.graph.AddConstant(v.literal(lane), sem.literal), nil

	case actionOperation:
		operands := make([]expr.Handle, sem.inputs)
		for i := range operands {
			param := i
			if sem.order != nil {
				param = sem.order[i]
			}
			h, err := v.read(b, src+param, lane)
			if err != nil {
				return 0, err
			}
			operands[i] = h
		}
		return b.graph.AddOperation(sem.op, operands...)

	case actionMultiplyAdd:
		var in [3]expr.Handle
		for i := range in {
			h, err := v.read(b, src+i, lane)
			if err != nil {
				return 0, err
			}
			in[i] = h
		}
		product, err := b.graph.AddOperation(expr.OpMultiply, in[0], in[1])
		if err != nil {
			return 0, err
		}
		return b.graph.AddOperation(expr.OpAdd, product, in[2])

	case actionDot, actionDot2Add:
		return s.node, nil

	case actionSinCos:
		h, err := v.read(b, src, lane)
		if err != nil {
			return 0, err
		}
		return b.graph.AddOperation(v.sinCos(dst, lane), h)

	case actionTexture:
		return b.graph.AddTextureLoad(s.sampler, s.coordinates, s.control, v.textureLane(lane))

	case actionNormalize:
		if lane == 3 {
			return b.normalizeW(v, s, src)
		}
		return b.graph.AddNormalize(s.inputs, lane)

	case actionKill:
		h, err := v.read(b, src, lane)
		if err != nil {
			return 0, err
		}
		return b.graph.AddOperation(expr.OpClip, h)

	default:
		return 0, NewError(ErrInvalidProgram, fmt.Sprintf("unhandled action %d", sem.action))
	}
}

// normalizeW builds the w lane of nrm: src.w scaled by the reciprocal
// length of src.xyz.
func (b *builder) normalizeW(v view, s shared, src int) (expr.Handle, error) {
	var sum expr.Handle
	for i, in := range s.inputs {
		square, err := b.graph.AddOperation(expr.OpMultiply, in, in)
		if err != nil {
			return 0, err
		}
		if i == 0 {
			sum = square
			continue
		}
		if sum, err = b.graph.AddOperation(expr.OpAdd, sum, square); err != nil {
			return 0, err
		}
	}
	rsq, err := b.graph.AddOperation(expr.OpReciprocalSquareRoot, sum)
	if err != nil {
		return 0, err
	}
	w, err := v.read(b, src, 3)
	if err != nil {
		return 0, err
	}
	return b.graph.AddOperation(expr.OpMultiply, w, rsq)
}

func (b *builder) addDiscard(reg bytecode.RegisterKey, writes []write) error {
	if len(writes) == 0 {
		return nil
	}
	var mask bytecode.WriteMask
	members := make([]expr.Handle, len(writes))
	for i, w := range writes {
		members[i] = w.node
		mask |= 1 << w.key.Lane
	}
	group, err := b.graph.AddGroup(members)
	if err != nil {
		return err
	}

	root := Root{Register: reg, Mask: mask, Node: group}
	for i := range b.discards {
		if b.discards[i].Register == reg {
			b.discards[i] = root
			return nil
		}
	}
	b.discards = append(b.discards, root)
	return nil
}

// result groups the output lanes left in the live map by register.
func (b *builder) result() (*Result, error) {
	lanes := make(map[bytecode.RegisterKey][]int)
	for key := range b.live {
		if b.program.OutputRegister(key.Register) {
			lanes[key.Register] = append(lanes[key.Register], key.Lane)
		}
	}

	registers := make([]bytecode.RegisterKey, 0, len(lanes))
	for reg := range lanes {
		registers = append(registers, reg)
	}
	slices.SortFunc(registers, bytecode.CompareRegisterKeys)

	res := &Result{
		Program:  b.program,
		Graph:    b.graph,
		Outputs:  make([]Root, 0, len(registers)),
		Discards: b.discards,
	}
	for _, reg := range registers {
		written := lanes[reg]
		slices.Sort(written)
		var mask bytecode.WriteMask
		members := make([]expr.Handle, len(written))
		for i, lane := range written {
			members[i] = b.live[bytecode.RegisterComponentKey{Register: reg, Lane: lane}]
			mask |= 1 << lane
		}
		group, err := b.graph.AddGroup(members)
		if err != nil {
			return nil, err
		}
		res.Outputs = append(res.Outputs, Root{Register: reg, Mask: mask, Node: group})
	}
	return res, nil
}
