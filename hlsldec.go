// Package hlsldec decompiles Direct3D shader bytecode into HLSL expressions.
//
// A program is replayed symbolically into an expression graph (package
// dataflow); the value left in every output register, and the condition of
// every texkill, is then rendered as one HLSL expression (package hlsl).
//
// Example usage:
//
//	program, err := asm.Parse(listing)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	result, err := hlsldec.Decompile(program, nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Print(result)
//
// For lower-level access, build the graph with dataflow.Build and render
// lanes with hlsl.Compiler.
package hlsldec

import (
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/gogpu/hlsldec/bytecode"
	"github.com/gogpu/hlsldec/dataflow"
	"github.com/gogpu/hlsldec/expr"
	"github.com/gogpu/hlsldec/hlsl"
)

// Options configures decompilation.
type Options struct {
	// Parallel compiles output expressions concurrently.
	// Results are identical to sequential compilation.
	Parallel bool

	// RawRegisterNames renders registers by their assembly spelling
	// instead of names from reflection data.
	RawRegisterNames bool
}

// DefaultOptions returns sensible default options.
func DefaultOptions() *Options {
	return &Options{}
}

// Output is the decompiled value of one output register.
type Output struct {
	Register bytecode.RegisterKey

	// Name is the register's identifier, with a write mask suffix when
	// only some of its declared lanes are written.
	Name string

	Expression string
}

// Discard is the condition of a texkill: the pixel is discarded when any
// lane is negative.
type Discard struct {
	Register bytecode.RegisterKey

	// Expression is a clip(...) call.
	Expression string
}

// Result holds the decompiled expressions of a program.
type Result struct {
	// Profile is the compiler profile of the program, e.g. "ps_3_0".
	Profile string

	Outputs  []Output
	Discards []Discard

	// Dataflow is the replayed graph the expressions were rendered from.
	Dataflow *dataflow.Result
}

// String renders the result as HLSL statements, discards first.
func (r *Result) String() string {
	var b strings.Builder
	if r.Profile != "" {
		fmt.Fprintf(&b, "// %s\n", r.Profile)
	}
	for _, d := range r.Discards {
		fmt.Fprintf(&b, "%s;\n", d.Expression)
	}
	for _, o := range r.Outputs {
		fmt.Fprintf(&b, "%s = %s;\n", o.Name, o.Expression)
	}
	return b.String()
}

// Decompile replays program and renders every output register and discard
// condition. A nil opts means DefaultOptions.
func Decompile(program *bytecode.Program, opts *Options) (*Result, error) {
	if opts == nil {
		opts = DefaultOptions()
	}
	if program == nil {
		return nil, fmt.Errorf("decompile: program is nil")
	}

	sm, err := hlsl.ShaderModelOf(program)
	if err != nil {
		return nil, fmt.Errorf("decompile: %w", err)
	}
	if err := sm.Check(program); err != nil {
		return nil, fmt.Errorf("decompile: %w", err)
	}

	flow, err := dataflow.Build(program)
	if err != nil {
		return nil, fmt.Errorf("dataflow error: %w", err)
	}

	names := hlsl.NewRegisterNames(program, &hlsl.Options{RawRegisterNames: opts.RawRegisterNames})
	compiler := hlsl.NewCompiler(names, flow.Graph)

	result := &Result{
		Profile:  sm.Profile(program.Stage),
		Outputs:  make([]Output, len(flow.Outputs)),
		Discards: make([]Discard, len(flow.Discards)),
		Dataflow: flow,
	}

	// Each job writes only its own slot, so order does not depend on
	// scheduling.
	var jobs []func() error
	for i, root := range flow.Outputs {
		i, root := i, root
		jobs = append(jobs, func() error {
			text, err := compiler.Compile([]expr.Handle{root.Node})
			if err != nil {
				return fmt.Errorf("output %s: %w", root.Register, err)
			}
			result.Outputs[i] = Output{
				Register:   root.Register,
				Name:       outputName(names, root),
				Expression: text,
			}
			return nil
		})
	}
	for i, root := range flow.Discards {
		i, root := i, root
		jobs = append(jobs, func() error {
			text, err := compiler.Compile([]expr.Handle{root.Node})
			if err != nil {
				return fmt.Errorf("discard %s: %w", root.Register, err)
			}
			result.Discards[i] = Discard{Register: root.Register, Expression: text}
			return nil
		})
	}

	if err := run(jobs, opts.Parallel); err != nil {
		return nil, fmt.Errorf("HLSL generation error: %w", err)
	}
	return result, nil
}

// run executes jobs in order, or concurrently when parallel is set.
// Either way the error of the first failing job in order is returned.
func run(jobs []func() error, parallel bool) error {
	if !parallel {
		for _, job := range jobs {
			if err := job(); err != nil {
				return err
			}
		}
		return nil
	}

	errs := make([]error, len(jobs))
	var g errgroup.Group
	for i, job := range jobs {
		i, job := i, job
		g.Go(func() error {
			errs[i] = job()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

// outputName spells the register with its written lanes unless every
// declared lane is written.
func outputName(names *hlsl.RegisterNames, root dataflow.Root) string {
	name := names.Name(root.Register)
	if root.Mask == bytecode.WriteMask(1<<names.Width(root.Register)-1) {
		return name
	}
	return name + "." + root.Mask.String()
}
