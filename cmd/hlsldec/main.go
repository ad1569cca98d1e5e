// Command hlsldec decompiles a shader assembly listing into HLSL expressions.
//
// Usage:
//
//	hlsldec [options] <input>
//
// The input is an assembly listing, or a YAML fixture (.yaml, .yml) holding
// a listing with reflection data and expected expressions.
//
// Examples:
//
//	hlsldec shader.asm                 # Print output expressions
//	hlsldec -raw shader.asm            # Keep register spellings
//	hlsldec -check case.yaml           # Compare against the fixture's expectations
//	hlsldec -dump shader.asm           # Also dump the expression graph
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/davecgh/go-spew/spew"
	"github.com/logrusorgru/aurora"

	"github.com/gogpu/hlsldec"
	"github.com/gogpu/hlsldec/asm"
	"github.com/gogpu/hlsldec/bytecode"
	"github.com/gogpu/hlsldec/internal/fixture"
)

const hlsldecVersion = "0.1.0-dev"

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		os.Exit(1)
	}
}

// config holds parsed command line flags.
type config struct {
	output   string
	parallel bool
	raw      bool
	dump     bool
	check    bool
	verbose  bool
	noColor  bool
	input    string
}

// run executes the command. Errors are reported on stderr before they are
// returned.
func run(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("hlsldec", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() { usage(fs) }

	var cfg config
	fs.StringVar(&cfg.output, "o", "", "output file (default: stdout)")
	fs.BoolVar(&cfg.parallel, "parallel", false, "compile output expressions concurrently")
	fs.BoolVar(&cfg.raw, "raw", false, "render registers by their assembly spelling")
	fs.BoolVar(&cfg.dump, "dump", false, "dump the expression graph after the expressions")
	fs.BoolVar(&cfg.check, "check", false, "compare results with a fixture's expectations")
	fs.BoolVar(&cfg.verbose, "v", false, "log progress")
	fs.BoolVar(&cfg.noColor, "no-color", false, "disable colored diagnostics")
	version := fs.Bool("version", false, "print version")
	if err := fs.Parse(args); err != nil {
		return err
	}

	au := aurora.NewAurora(!cfg.noColor)
	if *version {
		fmt.Fprintf(stdout, "hlsldec version %s\n", hlsldecVersion)
		return nil
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(stderr, au.Red("Error: expected exactly one input file"))
		usage(fs)
		return errors.New("missing input")
	}
	cfg.input = fs.Arg(0)

	logger := log.New(io.Discard, "hlsldec: ", 0)
	if cfg.verbose {
		logger.SetOutput(stderr)
	}

	if err := decompile(cfg, logger, stdout, stderr); err != nil {
		report(stderr, au, err)
		return err
	}
	return nil
}

func decompile(cfg config, logger *log.Logger, stdout, stderr io.Writer) error {
	program, f, err := load(cfg.input)
	if err != nil {
		return err
	}
	logger.Printf("%s: %d instructions, %d constants, %d constant buffers",
		cfg.input, len(program.Instructions), len(program.Constants), len(program.ConstantBuffers))

	opts := hlsldec.DefaultOptions()
	opts.Parallel = cfg.parallel
	opts.RawRegisterNames = cfg.raw || (f != nil && f.RawNames)
	result, err := hlsldec.Decompile(program, opts)
	if err != nil {
		return err
	}
	logger.Printf("%s: %d outputs, %d discards, %d graph nodes",
		cfg.input, len(result.Outputs), len(result.Discards), len(result.Dataflow.Graph.Nodes))

	text := result.String()
	if cfg.dump {
		text += spew.Sdump(result.Dataflow)
	}

	if cfg.output != "" {
		if err := os.WriteFile(cfg.output, []byte(text), 0o644); err != nil {
			return fmt.Errorf("writing output: %w", err)
		}
		logger.Printf("wrote %s (%d bytes)", cfg.output, len(text))
	} else if _, err := io.WriteString(stdout, text); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}

	if cfg.check {
		if f == nil {
			return errors.New("-check needs a fixture input")
		}
		return check(f, result, stderr)
	}
	return nil
}

// load reads a listing or a fixture. The fixture is nil for listings.
func load(path string) (*bytecode.Program, *fixture.Fixture, error) {
	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		f, err := fixture.Load(path)
		if err != nil {
			return nil, nil, err
		}
		program, err := f.Program()
		if err != nil {
			return nil, nil, err
		}
		return program, f, nil
	default:
		source, err := os.ReadFile(path)
		if err != nil {
			return nil, nil, fmt.Errorf("reading file: %w", err)
		}
		program, err := asm.Parse(string(source))
		if err != nil {
			return nil, nil, err
		}
		return program, nil, nil
	}
}

// check compares the result with the fixture's expected expressions.
func check(f *fixture.Fixture, result *hlsldec.Result, stderr io.Writer) error {
	got := make(map[string]string, len(result.Outputs))
	for _, o := range result.Outputs {
		got[o.Name] = o.Expression
	}

	failures := 0
	expected := make(map[string]bool, len(f.Expect))
	for _, want := range f.Expect {
		expected[want.Name] = true
		if expr, ok := got[want.Name]; !ok {
			fmt.Fprintf(stderr, "%s: no such output\n", want.Name)
			failures++
		} else if expr != want.Expression {
			fmt.Fprintf(stderr, "%s:\n  got:  %s\n  want: %s\n", want.Name, expr, want.Expression)
			failures++
		}
	}
	for i, want := range f.Discards {
		if i >= len(result.Discards) || result.Discards[i].Expression != want {
			fmt.Fprintf(stderr, "discard %d: want %s\n", i, want)
			failures++
		}
	}
	for _, o := range result.Outputs {
		if !expected[o.Name] {
			fmt.Fprintf(stderr, "%s: unexpected output %s\n", o.Name, o.Expression)
			failures++
		}
	}
	for i := len(f.Discards); i < len(result.Discards); i++ {
		fmt.Fprintf(stderr, "discard %d: unexpected %s\n", i, result.Discards[i].Expression)
		failures++
	}

	if failures > 0 {
		return fmt.Errorf("%d expectation(s) failed", failures)
	}
	return nil
}

// report prints err in red, with the listing line for assembly errors.
func report(w io.Writer, au aurora.Aurora, err error) {
	var serr *asm.SourceError
	if errors.As(err, &serr) {
		fmt.Fprint(w, au.Red(serr.FormatWithContext()))
		if serr.Line == 0 {
			fmt.Fprintln(w)
		}
		return
	}
	fmt.Fprintln(w, au.Red("Error: "+err.Error()))
}

func usage(fs *flag.FlagSet) {
	w := fs.Output()
	fmt.Fprintf(w, "Usage: hlsldec [options] <input>\n\n")
	fmt.Fprintf(w, "Options:\n")
	fs.PrintDefaults()
	fmt.Fprintf(w, "\nExamples:\n")
	fmt.Fprintf(w, "  hlsldec shader.asm           Print output expressions\n")
	fmt.Fprintf(w, "  hlsldec -raw shader.asm      Keep register spellings\n")
	fmt.Fprintf(w, "  hlsldec -check case.yaml     Compare against expectations\n")
}
