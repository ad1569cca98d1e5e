// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package hlsl

import (
	"fmt"
	"strings"

	"github.com/gogpu/hlsldec/bytecode"
	"github.com/gogpu/hlsldec/expr"
)

// AnyWidth lets a group render at its natural width.
const AnyWidth = -1

// Options configures HLSL expression generation.
type Options struct {
	// RawRegisterNames renders every register by its assembly spelling
	// (c4, cb0[2], s0) instead of the names found in reflection data.
	RawRegisterNames bool
}

// DefaultOptions returns the default options: declared names are used.
func DefaultOptions() *Options {
	return &Options{}
}

// Compiler renders groups of expression nodes as HLSL source expressions.
//
// A Compiler keeps no state between calls; one Compiler may be used from
// several goroutines at once.
type Compiler struct {
	names *RegisterNames
	graph *expr.Graph

	// strict spells uniform constants out lane by lane at forced widths.
	strict bool
}

// NewCompiler creates a compiler over graph using names for registers.
func NewCompiler(names *RegisterNames, graph *expr.Graph) *Compiler {
	if names == nil {
		names = NewRegisterNames(nil, nil)
	}
	return &Compiler{names: names, graph: graph}
}

// Compile renders the lanes at their natural width.
func (c *Compiler) Compile(lanes []expr.Handle) (string, error) {
	return c.CompileWidth(lanes, AnyWidth)
}

// CompileWidth renders the lanes as a value of exactly width components.
// With AnyWidth, a selection of one repeated lane collapses to a scalar.
func (c *Compiler) CompileWidth(lanes []expr.Handle, width int) (string, error) {
	if c.graph == nil {
		return "", NewError(ErrInternalError, "compiler has no graph")
	}
	for _, h := range lanes {
		if int(h) >= c.graph.Len() {
			return "", NewError(ErrInvalidGroup, fmt.Sprintf("invalid node handle %d", h))
		}
	}
	f, err := c.compile(lanes, width)
	if err != nil {
		return "", err
	}
	if f, err = c.widen(f, lanes, width); err != nil {
		return "", err
	}
	return f.text, nil
}

// widen re-renders a one-component fragment that must fill width lanes,
// with constants spelled out lane by lane.
func (c *Compiler) widen(f fragment, lanes []expr.Handle, width int) (fragment, error) {
	if !f.scalar || width <= 1 || c.strict {
		return f, nil
	}
	strict := *c
	strict.strict = true
	return strict.compile(lanes, width)
}

// form classifies a rendered fragment for parenthesization.
type form uint8

const (
	// formAtomic is a literal, name, swizzle, call or constructor.
	formAtomic form = iota

	// formProduct is a product whose factors all render unparenthesized.
	formProduct

	// formFactor is a product with a parenthesized factor.
	formFactor

	// formSum is an addition or subtraction.
	formSum

	// formNegation is a unary minus.
	formNegation

	// formTernary is a conditional.
	formTernary
)

// multiplicative reports whether the fragment can be an operand of * or /
// without parentheses.
func (f form) multiplicative() bool {
	return f == formAtomic || f == formProduct
}

type fragment struct {
	text string
	form form

	// scalar is set when the text is a single component HLSL broadcasts.
	scalar bool
}

func atomic(text string) fragment {
	return fragment{text: text, form: formAtomic}
}

func parenthesize(f fragment) string {
	return "(" + f.text + ")"
}

func allScalar(args []fragment) bool {
	for _, a := range args {
		if !a.scalar {
			return false
		}
	}
	return true
}

func (c *Compiler) compile(lanes []expr.Handle, width int) (fragment, error) {
	if len(lanes) == 0 || len(lanes) > 4 {
		return fragment{}, NewError(ErrInvalidGroup, fmt.Sprintf("group of %d lanes", len(lanes)))
	}

	if _, ok := c.graph.Kind(lanes[0]).(expr.Group); ok {
		members, err := c.members(lanes)
		if err != nil {
			return fragment{}, err
		}
		return c.compile(members, width)
	}

	if len(lanes) > 1 {
		if runs := c.split(lanes); len(runs) > 1 {
			return c.construct(lanes, runs)
		}
		if m, ok := c.matchMatrix(lanes); ok {
			return c.renderMatrix(m)
		}
		if inputs, ok := c.matchNormalize(lanes); ok {
			inner, err := c.compile(inputs, AnyWidth)
			if err != nil {
				return fragment{}, err
			}
			return atomic("normalize(" + inner.text + ")"), nil
		}
	}

	switch k := c.graph.Kind(lanes[0]).(type) {
	case expr.Constant:
		return c.compileConstants(lanes, width)
	case expr.Operation:
		return c.compileOperation(lanes, k.Op, width)
	case expr.RegisterInput, expr.TextureLoadOutput, expr.NormalizeOutput:
		return c.compileLeaf(lanes, width)
	default:
		return fragment{}, unrecognized(lanes[0], k)
	}
}

// members flattens a group of Group nodes into their member lanes.
func (c *Compiler) members(lanes []expr.Handle) ([]expr.Handle, error) {
	var members []expr.Handle
	for _, h := range lanes {
		g, ok := c.graph.Kind(h).(expr.Group)
		if !ok {
			return nil, unrecognized(h, c.graph.Kind(h))
		}
		members = append(members, g.Members...)
	}
	return members, nil
}

// construct renders lanes split into runs as a vector constructor.
// Runs of constants are spelled out lane by lane.
func (c *Compiler) construct(lanes []expr.Handle, runs [][]expr.Handle) (fragment, error) {
	var parts []string
	for _, run := range runs {
		if constants, ok := c.constants(run); ok {
			for _, k := range constants {
				parts = append(parts, formatLiteral(k))
			}
			continue
		}
		f, err := c.compile(run, len(run))
		if err == nil {
			f, err = c.widen(f, run, len(run))
		}
		if err != nil {
			return fragment{}, err
		}
		parts = append(parts, f.text)
	}
	return atomic(fmt.Sprintf("float%d(%s)", len(lanes), strings.Join(parts, ", "))), nil
}

func (c *Compiler) constants(lanes []expr.Handle) ([]expr.Constant, bool) {
	constants := make([]expr.Constant, len(lanes))
	for i, h := range lanes {
		k, ok := c.graph.Kind(h).(expr.Constant)
		if !ok {
			return nil, false
		}
		constants[i] = k
	}
	return constants, true
}

func (c *Compiler) compileConstants(lanes []expr.Handle, width int) (fragment, error) {
	constants, ok := c.constants(lanes)
	if !ok {
		return fragment{}, unrecognized(lanes[0], c.graph.Kind(lanes[0]))
	}
	for len(constants) < width {
		constants = append(constants, constants[len(constants)-1])
	}
	if c.strict && width != AnyWidth && len(constants) > 1 {
		parts := make([]string, len(constants))
		for i, k := range constants {
			parts[i] = formatLiteral(k)
		}
		return atomic(fmt.Sprintf("%s%d(%s)", constants[0].Type, len(constants), strings.Join(parts, ", "))), nil
	}
	return fragment{text: formatConstants(constants), form: formAtomic, scalar: uniform(constants)}, nil
}

// operands collects operand i of every lane.
func (c *Compiler) operands(ops []expr.Operation, i int) []expr.Handle {
	slice := make([]expr.Handle, len(ops))
	for lane, op := range ops {
		slice[lane] = op.Operands[i]
	}
	return slice
}

func (c *Compiler) compileOperation(lanes []expr.Handle, op expr.OpKind, width int) (fragment, error) {
	ops := make([]expr.Operation, len(lanes))
	for i, h := range lanes {
		k, ok := c.graph.Kind(h).(expr.Operation)
		if !ok || k.Op != op || len(k.Operands) != op.Arity() {
			return fragment{}, unrecognized(h, c.graph.Kind(h))
		}
		ops[i] = k
	}

	args := make([]fragment, op.Arity())
	compileArgs := func(width int, order ...int) error {
		for i, operand := range order {
			f, err := c.compile(c.operands(ops, operand), width)
			if err != nil {
				return err
			}
			args[i] = f
		}
		return nil
	}

	switch op {
	case expr.OpMove:
		if err := compileArgs(width, 0); err != nil {
			return fragment{}, err
		}
		return args[0], nil

	case expr.OpNegate:
		if err := compileArgs(width, 0); err != nil {
			return fragment{}, err
		}
		// A leading minus would fuse into a decrement.
		text := args[0].text
		if !args[0].form.multiplicative() || strings.HasPrefix(text, "-") {
			text = parenthesize(args[0])
		}
		return fragment{text: "-" + text, form: formNegation, scalar: args[0].scalar}, nil

	case expr.OpAdd, expr.OpSubtract:
		if err := compileArgs(width, 0, 1); err != nil {
			return fragment{}, err
		}
		a, b := args[0].text, args[1].text
		if args[0].form == formTernary {
			a = parenthesize(args[0])
		}
		if args[1].form == formTernary || (op == expr.OpSubtract && args[1].form == formSum) {
			b = parenthesize(args[1])
		}
		return fragment{text: a + " " + op.Mnemonic() + " " + b, form: formSum, scalar: allScalar(args)}, nil

	case expr.OpMultiply, expr.OpDivide:
		order := []int{0, 1}
		if op == expr.OpMultiply && c.isConstant(ops[0].Operands[0]) && !c.isConstant(ops[0].Operands[1]) {
			order = []int{1, 0}
		}
		if err := compileArgs(width, order...); err != nil {
			return fragment{}, err
		}
		result := formProduct
		sides := make([]string, 2)
		for i, f := range args {
			sides[i] = f.text
			// A divisor binds tighter than any product.
			if !f.form.multiplicative() || (op == expr.OpDivide && i == 1 && f.form != formAtomic) {
				sides[i] = parenthesize(f)
				result = formFactor
			}
		}
		return fragment{text: sides[0] + " " + op.Mnemonic() + " " + sides[1], form: result, scalar: allScalar(args)}, nil

	case expr.OpCompare:
		if err := compileArgs(width, 0); err != nil {
			return fragment{}, err
		}
		cond := args[0]
		if err := compileArgs(len(lanes), 1, 2); err != nil {
			return fragment{}, err
		}
		parts := []fragment{cond, args[0], args[1]}
		texts := make([]string, 3)
		for i, f := range parts {
			texts[i] = f.text
			if f.form == formTernary {
				texts[i] = parenthesize(f)
			}
		}
		return fragment{
			text:   fmt.Sprintf("%s >= 0 ? %s : %s", texts[0], texts[1], texts[2]),
			form:   formTernary,
			scalar: allScalar(parts),
		}, nil

	case expr.OpSignGreaterOrEqual, expr.OpSignLess:
		// step(y, x) is x >= y ? 1 : 0.
		if err := compileArgs(width, 1, 0); err != nil {
			return fragment{}, err
		}
		step := fmt.Sprintf("step(%s, %s)", args[0].text, args[1].text)
		if op == expr.OpSignLess {
			return fragment{text: "1.0 - " + step, form: formSum, scalar: allScalar(args)}, nil
		}
		return fragment{text: step, form: formAtomic, scalar: allScalar(args)}, nil

	case expr.OpDotProduct, expr.OpLength:
		order := make([]int, op.Arity())
		for i := range order {
			order[i] = i
		}
		if err := compileArgs(AnyWidth, order...); err != nil {
			return fragment{}, err
		}
		f := call(op.Mnemonic(), args)
		f.scalar = true
		return f, nil

	case expr.OpAbsolute, expr.OpReciprocal, expr.OpReciprocalSquareRoot, expr.OpSquareRoot,
		expr.OpFractional, expr.OpSine, expr.OpCosine, expr.OpClip, expr.OpSaturate,
		expr.OpPower, expr.OpMaximum, expr.OpMinimum, expr.OpLinearInterpolate:
		order := make([]int, op.Arity())
		for i := range order {
			order[i] = i
		}
		if err := compileArgs(width, order...); err != nil {
			return fragment{}, err
		}
		return call(op.Mnemonic(), args), nil

	default:
		return fragment{}, unrecognized(lanes[0], ops[0])
	}
}

// call renders an elementwise function of args.
func call(name string, args []fragment) fragment {
	texts := make([]string, len(args))
	for i, a := range args {
		texts[i] = a.text
	}
	return fragment{text: name + "(" + strings.Join(texts, ", ") + ")", form: formAtomic, scalar: allScalar(args)}
}

func (c *Compiler) isConstant(h expr.Handle) bool {
	_, ok := c.graph.Kind(h).(expr.Constant)
	return ok
}

// compileLeaf renders a group of lane-tagged leaves of one source with a
// swizzle selecting their lanes.
func (c *Compiler) compileLeaf(lanes []expr.Handle, width int) (fragment, error) {
	selected := make([]int, len(lanes))
	for i, h := range lanes {
		tagged, ok := c.graph.Kind(h).(expr.LaneTagged)
		if !ok || !c.groupable(lanes[0], h) {
			return fragment{}, unrecognized(h, c.graph.Kind(h))
		}
		selected[i] = tagged.Lane()
	}

	switch k := c.graph.Kind(lanes[0]).(type) {
	case expr.RegisterInput:
		name := c.names.Name(k.Key.Register)
		if k.Sampler != nil {
			return atomic(name), nil
		}
		return leaf(name, selected, c.names.Width(k.Key.Register), width), nil

	case expr.TextureLoadOutput:
		sampler, ok := c.graph.Kind(k.Sampler).(expr.RegisterInput)
		if !ok || sampler.Sampler == nil {
			return fragment{}, unrecognized(k.Sampler, c.graph.Kind(k.Sampler))
		}
		coords, err := c.compile(k.Coordinates, AnyWidth)
		if err != nil {
			return fragment{}, err
		}
		text := fmt.Sprintf("%s(%s, %s)", textureFunction(*sampler.Sampler, k.Control), c.names.Name(sampler.Key.Register), coords.text)
		return leaf(text, selected, 4, width), nil

	case expr.NormalizeOutput:
		inner, err := c.compile(k.Inputs[:], AnyWidth)
		if err != nil {
			return fragment{}, err
		}
		return leaf("normalize("+inner.text+")", selected, 3, width), nil

	default:
		return fragment{}, unrecognized(lanes[0], k)
	}
}

// leaf renders the lanes selected from a source of declared components.
func leaf(source string, selected []int, declared, width int) fragment {
	suffix := swizzle(selected, declared, width)
	scalar := width == 1 || width == AnyWidth && (len(suffix) == 2 || suffix == "" && declared == 1)
	return fragment{text: source + suffix, form: formAtomic, scalar: scalar}
}

func textureFunction(kind bytecode.SamplerKind, control bytecode.TextureControl) string {
	name := "tex2D"
	switch kind {
	case bytecode.Sampler1D:
		name = "tex1D"
	case bytecode.Sampler3D:
		name = "tex3D"
	case bytecode.SamplerCube:
		name = "texCUBE"
	}
	switch control {
	case bytecode.TextureProject:
		return name + "proj"
	case bytecode.TextureBias:
		return name + "bias"
	}
	return name
}

// swizzle returns the suffix selecting lanes from a source declared with
// declared lanes. The suffix is empty for the identity selection and
// collapses to one letter for a repeated lane unless width is forced.
func swizzle(lanes []int, declared, width int) string {
	for len(lanes) < width {
		lanes = append(lanes, lanes[len(lanes)-1])
	}

	identity := len(lanes) == declared
	same := true
	for i, lane := range lanes {
		if lane != i {
			identity = false
		}
		if lane != lanes[0] {
			same = false
		}
	}
	switch {
	case identity:
		return ""
	case same && width == AnyWidth:
		if declared == 1 && lanes[0] == 0 {
			return ""
		}
		return "." + string(bytecode.LaneName(lanes[0]))
	}

	var b strings.Builder
	b.WriteByte('.')
	for _, lane := range lanes {
		b.WriteByte(bytecode.LaneName(lane))
	}
	return b.String()
}

func unrecognized(h expr.Handle, kind expr.NodeKind) *Error {
	return NewError(ErrUnrecognizedNodeShape, fmt.Sprintf("no rendering for node %d (%T)", h, kind))
}
