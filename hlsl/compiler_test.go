// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package hlsl

import (
	"errors"
	"testing"

	"github.com/gogpu/hlsldec/bytecode"
	"github.com/gogpu/hlsldec/expr"
)

var (
	regC0 = bytecode.D3D9RegisterKey{Type: bytecode.RegisterConst, Number: 0}
	regV0 = bytecode.D3D9RegisterKey{Type: bytecode.RegisterInput, Number: 0}
	regV1 = bytecode.D3D9RegisterKey{Type: bytecode.RegisterInput, Number: 1}
	regV2 = bytecode.D3D9RegisterKey{Type: bytecode.RegisterInput, Number: 2}
	regT0 = bytecode.D3D9RegisterKey{Type: bytecode.RegisterTexture, Number: 0}
	regS0 = bytecode.D3D9RegisterKey{Type: bytecode.RegisterSampler, Number: 0}
)

func constReg(n int) bytecode.D3D9RegisterKey {
	return bytecode.D3D9RegisterKey{Type: bytecode.RegisterConst, Number: n}
}

// fixture builds small graphs with one node per register lane.
type fixture struct {
	g      *expr.Graph
	inputs map[bytecode.RegisterComponentKey]expr.Handle
}

func newFixture() *fixture {
	return &fixture{g: expr.NewGraph(), inputs: make(map[bytecode.RegisterComponentKey]expr.Handle)}
}

func (f *fixture) in(reg bytecode.RegisterKey, lane int) expr.Handle {
	key := bytecode.RegisterComponentKey{Register: reg, Lane: lane}
	if h, ok := f.inputs[key]; ok {
		return h
	}
	h := f.g.AddRegisterInput(key)
	f.inputs[key] = h
	return h
}

func (f *fixture) lanes(reg bytecode.RegisterKey, lanes ...int) []expr.Handle {
	hs := make([]expr.Handle, len(lanes))
	for i, l := range lanes {
		hs[i] = f.in(reg, l)
	}
	return hs
}

func (f *fixture) k(v float64) expr.Handle {
	return f.g.AddConstant(v, expr.Float)
}

func (f *fixture) op(op expr.OpKind, operands ...expr.Handle) expr.Handle {
	h, err := f.g.AddOperation(op, operands...)
	if err != nil {
		panic(err)
	}
	return h
}

func (f *fixture) compile(t *testing.T, names *RegisterNames, lanes ...expr.Handle) string {
	t.Helper()
	got, err := NewCompiler(names, f.g).Compile(lanes)
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}
	return got
}

func TestCompile_Arithmetic(t *testing.T) {
	f := newFixture()
	v0, v1, v2 := f.in(regV0, 0), f.in(regV1, 0), f.in(regV2, 0)

	tests := []struct {
		name string
		root expr.Handle
		want string
	}{
		{"constant fold shape", f.op(expr.OpAdd, f.op(expr.OpMultiply, f.k(2), f.k(3)), f.k(10)), "2.0 * 3.0 + 10.0"},
		{"left product", f.op(expr.OpMultiply, f.op(expr.OpMultiply, v0, v1), v2), "v0.x * v1.x * v2.x"},
		{"right product", f.op(expr.OpMultiply, v0, f.op(expr.OpMultiply, v1, v2)), "v0.x * v1.x * v2.x"},
		{"product of sum", f.op(expr.OpMultiply, v0, f.op(expr.OpAdd, v1, v2)), "v0.x * (v1.x + v2.x)"},
		{"sum times", f.op(expr.OpMultiply, f.op(expr.OpAdd, v0, v1), v2), "(v0.x + v1.x) * v2.x"},
		{"divide product", f.op(expr.OpDivide, v0, f.op(expr.OpMultiply, v1, v2)), "v0.x / (v1.x * v2.x)"},
		{"divide sum", f.op(expr.OpDivide, f.op(expr.OpAdd, v0, v1), v2), "(v0.x + v1.x) / v2.x"},
		{"constant factor last", f.op(expr.OpMultiply, f.k(2), v0), "v0.x * 2.0"},
		{"sum of sums", f.op(expr.OpAdd, v0, f.op(expr.OpAdd, v1, v2)), "v0.x + v1.x + v2.x"},
		{"subtract sum", f.op(expr.OpSubtract, v0, f.op(expr.OpAdd, v1, v2)), "v0.x - (v1.x + v2.x)"},
		{"negate", f.op(expr.OpNegate, v0), "-v0.x"},
		{"negate sum", f.op(expr.OpNegate, f.op(expr.OpAdd, v0, v1)), "-(v0.x + v1.x)"},
		{"negate factor", f.op(expr.OpMultiply, f.op(expr.OpNegate, v0), v1), "(-v0.x) * v1.x"},
		{"negate negative literal", f.op(expr.OpNegate, f.k(-2)), "-(-2.0)"},
		{"negated literal factor", f.op(expr.OpMultiply, v0, f.op(expr.OpNegate, f.k(-2))), "v0.x * (-(-2.0))"},
		{"negate negation", f.op(expr.OpNegate, f.op(expr.OpNegate, v0)), "-(-v0.x)"},
		{"move", f.op(expr.OpMove, f.op(expr.OpAdd, v0, v1)), "v0.x + v1.x"},
		{"max", f.op(expr.OpMaximum, v0, f.k(0)), "max(v0.x, 0.0)"},
		{"rsqrt", f.op(expr.OpReciprocalSquareRoot, v0), "rsqrt(v0.x)"},
		{"saturate", f.op(expr.OpSaturate, f.op(expr.OpAdd, v0, v1)), "saturate(v0.x + v1.x)"},
		{"compare", f.op(expr.OpCompare, v0, v1, v2), "v0.x >= 0 ? v1.x : v2.x"},
		{"nested compare", f.op(expr.OpAdd, f.op(expr.OpCompare, v0, v1, v2), v0), "(v0.x >= 0 ? v1.x : v2.x) + v0.x"},
		{"step", f.op(expr.OpSignGreaterOrEqual, v0, v1), "step(v1.x, v0.x)"},
		{"step less", f.op(expr.OpSignLess, v0, v1), "1.0 - step(v1.x, v0.x)"},
		{"subtract step", f.op(expr.OpSubtract, v2, f.op(expr.OpSignLess, v0, v1)), "v2.x - (1.0 - step(v1.x, v0.x))"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := f.compile(t, nil, tt.root); got != tt.want {
				t.Errorf("Compile() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCompile_Swizzle(t *testing.T) {
	f := newFixture()

	// Distinct nodes for the same lane still collapse to one letter.
	repeated := []expr.Handle{
		f.g.AddRegisterInput(bytecode.RegisterComponentKey{Register: regC0}),
		f.g.AddRegisterInput(bytecode.RegisterComponentKey{Register: regC0}),
		f.g.AddRegisterInput(bytecode.RegisterComponentKey{Register: regC0}),
		f.g.AddRegisterInput(bytecode.RegisterComponentKey{Register: regC0}),
	}

	tests := []struct {
		name  string
		lanes []expr.Handle
		want  string
	}{
		{"single lane", f.lanes(regC0, 1), "c0.y"},
		{"repeated lane", repeated, "c0.x"},
		{"identity", f.lanes(regC0, 0, 1, 2, 3), "c0"},
		{"subset", f.lanes(regC0, 0, 2), "c0.xz"},
		{"reordered", f.lanes(regC0, 3, 2, 1, 0), "c0.wzyx"},
		{"prefix", f.lanes(regC0, 0, 1, 2), "c0.xyz"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := f.compile(t, nil, tt.lanes...); got != tt.want {
				t.Errorf("Compile() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCompile_Constants(t *testing.T) {
	f := newFixture()

	tests := []struct {
		name  string
		lanes []expr.Handle
		want  string
	}{
		{"broadcast", []expr.Handle{f.k(1), f.k(1), f.k(1), f.k(1)}, "1.0"},
		{"vector", []expr.Handle{f.k(1), f.k(2), f.k(3), f.k(4)}, "float4(1.0, 2.0, 3.0, 4.0)"},
		{"scalar", []expr.Handle{f.k(0.5)}, "0.5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := f.compile(t, nil, tt.lanes...); got != tt.want {
				t.Errorf("Compile() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCompile_ElementwiseGroups(t *testing.T) {
	f := newFixture()

	tests := []struct {
		name  string
		lanes []expr.Handle
		want  string
	}{
		{
			name: "shared constant",
			lanes: []expr.Handle{
				f.op(expr.OpAdd, f.in(regV0, 0), f.k(1)),
				f.op(expr.OpAdd, f.in(regV0, 1), f.k(1)),
			},
			want: "v0.xy + 1.0",
		},
		{
			name: "lane constants",
			lanes: []expr.Handle{
				f.op(expr.OpMultiply, f.in(regV0, 0), f.k(2)),
				f.op(expr.OpMultiply, f.in(regV0, 1), f.k(3)),
			},
			want: "v0.xy * float2(2.0, 3.0)",
		},
		{
			name: "lerp",
			lanes: []expr.Handle{
				f.op(expr.OpLinearInterpolate, f.in(regC0, 0), f.in(constReg(1), 0), f.in(regV0, 3)),
				f.op(expr.OpLinearInterpolate, f.in(regC0, 1), f.in(constReg(1), 1), f.in(regV0, 3)),
			},
			want: "lerp(c0.xy, c1.xy, v0.w)",
		},
		{
			name: "constructor",
			lanes: []expr.Handle{
				f.in(regV0, 0),
				f.k(1),
				f.in(regV1, 1),
				f.in(regV1, 2),
			},
			want: "float4(v0.x, 1.0, v1.yz)",
		},
		{
			name: "constructor forces operand width",
			lanes: []expr.Handle{
				f.op(expr.OpAdd, f.in(regV0, 0), f.k(1)),
				f.op(expr.OpAdd, f.in(regV0, 1), f.k(1)),
				f.in(regV2, 3),
			},
			want: "float3(v0.xy + 1.0, v2.w)",
		},
		{
			name: "constructor widens constant operations",
			lanes: []expr.Handle{
				f.op(expr.OpAdd, f.k(1), f.k(2)),
				f.op(expr.OpAdd, f.k(1), f.k(2)),
				f.in(regV2, 3),
			},
			want: "float3(float2(1.0, 1.0) + float2(2.0, 2.0), v2.w)",
		},
		{
			name: "compare broadcasts constant branches",
			lanes: []expr.Handle{
				f.op(expr.OpCompare, f.in(regV0, 0), f.k(1), f.k(0)),
				f.op(expr.OpCompare, f.in(regV0, 1), f.k(1), f.k(0)),
			},
			want: "v0.xy >= 0 ? 1.0 : 0.0",
		},
		{
			name: "compare broadcasts branches",
			lanes: []expr.Handle{
				f.op(expr.OpCompare, f.in(regV0, 0), f.in(regV1, 0), f.in(regV2, 0)),
				f.op(expr.OpCompare, f.in(regV0, 0), f.in(regV1, 0), f.in(regV2, 0)),
			},
			want: "v0.x >= 0 ? v1.xx : v2.xx",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := f.compile(t, nil, tt.lanes...); got != tt.want {
				t.Errorf("Compile() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCompile_Group(t *testing.T) {
	f := newFixture()
	group, err := f.g.AddGroup(f.lanes(regV0, 0, 1, 2, 3))
	if err != nil {
		t.Fatal(err)
	}
	if got := f.compile(t, nil, group); got != "v0" {
		t.Errorf("Compile(group) = %q, want %q", got, "v0")
	}
}

func TestCompile_Idempotent(t *testing.T) {
	f := newFixture()
	lanes := []expr.Handle{
		f.op(expr.OpMultiply, f.in(regV0, 0), f.op(expr.OpAdd, f.in(regV1, 0), f.k(0.5))),
		f.in(regC0, 2),
	}
	c := NewCompiler(nil, f.g)
	first, err := c.Compile(lanes)
	if err != nil {
		t.Fatal(err)
	}
	second, err := c.Compile(lanes)
	if err != nil {
		t.Fatal(err)
	}
	if first != second {
		t.Errorf("Compile() not stable: %q then %q", first, second)
	}
}

func TestCompileWidth(t *testing.T) {
	f := newFixture()
	c := NewCompiler(nil, f.g)

	tests := []struct {
		name  string
		lanes []expr.Handle
		width int
		want  string
	}{
		{"replicated lane", f.lanes(regC0, 0), 4, "c0.xxxx"},
		{"constant", []expr.Handle{f.k(1)}, 4, "float4(1.0, 1.0, 1.0, 1.0)"},
		{"identity", f.lanes(regC0, 0, 1, 2, 3), 4, "c0"},
		{"scalar", f.lanes(regC0, 2), 1, "c0.z"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := c.CompileWidth(tt.lanes, tt.width)
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Errorf("CompileWidth(%d) = %q, want %q", tt.width, got, tt.want)
			}
		})
	}
}

func TestCompile_Texture(t *testing.T) {
	f := newFixture()
	sampler := f.g.AddSampler(bytecode.RegisterComponentKey{Register: regS0}, bytecode.Sampler2D)
	coords := f.lanes(regT0, 0, 1)

	lanes := make([]expr.Handle, 4)
	for i := range lanes {
		h, err := f.g.AddTextureLoad(sampler, coords, bytecode.TextureSample, i)
		if err != nil {
			t.Fatal(err)
		}
		lanes[i] = h
	}

	if got := f.compile(t, nil, lanes...); got != "tex2D(s0, t0.xy)" {
		t.Errorf("Compile() = %q, want %q", got, "tex2D(s0, t0.xy)")
	}
	if got := f.compile(t, nil, lanes[3]); got != "tex2D(s0, t0.xy).w" {
		t.Errorf("Compile(w) = %q, want %q", got, "tex2D(s0, t0.xy).w")
	}

	tests := []struct {
		control bytecode.TextureControl
		want    string
	}{
		{bytecode.TextureProject, "tex2Dproj(s0, t0)"},
		{bytecode.TextureBias, "tex2Dbias(s0, t0)"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			lanes := make([]expr.Handle, 4)
			for i := range lanes {
				h, err := f.g.AddTextureLoad(sampler, f.lanes(regT0, 0, 1, 2, 3), tt.control, i)
				if err != nil {
					t.Fatal(err)
				}
				lanes[i] = h
			}
			if got := f.compile(t, nil, lanes...); got != tt.want {
				t.Errorf("Compile() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCompile_NormalizeOutput(t *testing.T) {
	f := newFixture()
	inputs := [3]expr.Handle{f.in(regV0, 0), f.in(regV0, 1), f.in(regV0, 2)}

	lanes := make([]expr.Handle, 3)
	for i := range lanes {
		h, err := f.g.AddNormalize(inputs, i)
		if err != nil {
			t.Fatal(err)
		}
		lanes[i] = h
	}

	if got := f.compile(t, nil, lanes...); got != "normalize(v0.xyz)" {
		t.Errorf("Compile() = %q, want %q", got, "normalize(v0.xyz)")
	}
}

func TestCompile_NormalizePattern(t *testing.T) {
	f := newFixture()
	x := f.lanes(regV0, 0, 1, 2)
	sum := f.op(expr.OpAdd,
		f.op(expr.OpAdd, f.op(expr.OpMultiply, x[0], x[0]), f.op(expr.OpMultiply, x[1], x[1])),
		f.op(expr.OpMultiply, x[2], x[2]))
	rsq := f.op(expr.OpReciprocalSquareRoot, sum)

	lanes := []expr.Handle{
		f.op(expr.OpMultiply, x[0], rsq),
		f.op(expr.OpMultiply, rsq, x[1]),
		f.op(expr.OpMultiply, x[2], rsq),
	}
	if got := f.compile(t, nil, lanes...); got != "normalize(v0.xyz)" {
		t.Errorf("Compile() = %q, want %q", got, "normalize(v0.xyz)")
	}
}

// dp4 builds the folded sum of v.j * m_j over four lanes.
func (f *fixture) dp4(v, m []expr.Handle) expr.Handle {
	sum := f.op(expr.OpMultiply, v[0], m[0])
	for j := 1; j < len(v); j++ {
		sum = f.op(expr.OpAdd, sum, f.op(expr.OpMultiply, v[j], m[j]))
	}
	return sum
}

func TestCompile_Matrix(t *testing.T) {
	f := newFixture()
	v := f.lanes(regV0, 0, 1, 2, 3)

	rows := make([]expr.Handle, 4)
	columns := make([]expr.Handle, 4)
	for i := range rows {
		rows[i] = f.dp4(v, f.lanes(constReg(i), 0, 1, 2, 3))
		columns[i] = f.dp4(v, []expr.Handle{
			f.in(constReg(0), i), f.in(constReg(1), i), f.in(constReg(2), i), f.in(constReg(3), i),
		})
	}

	world := bytecode.ConstantDeclaration{
		Name:           "world",
		RegisterSet:    bytecode.RegisterSetFloat4,
		RegisterIndex:  0,
		RegisterCount:  4,
		ParameterClass: bytecode.ClassMatrixRows,
		ParameterType:  bytecode.ParamFloat,
		Rows:           4,
		Columns:        4,
	}
	named := func(class bytecode.ParameterClass) *RegisterNames {
		decl := world
		decl.ParameterClass = class
		return NewRegisterNames(&bytecode.Program{
			MajorVersion: 2,
			Stage:        bytecode.StageVertex,
			Constants:    []bytecode.ConstantDeclaration{decl},
		}, nil)
	}

	tests := []struct {
		name  string
		names *RegisterNames
		lanes []expr.Handle
		want  string
	}{
		{"register rows", nil, rows, "mul(float4x4(c0, c1, c2, c3), v0)"},
		{"register columns", nil, columns, "mul(v0, float4x4(c0, c1, c2, c3))"},
		{"row major", named(bytecode.ClassMatrixRows), rows, "mul(world, v0)"},
		{"column major", named(bytecode.ClassMatrixColumns), rows, "mul(v0, world)"},
		{"column major columns", named(bytecode.ClassMatrixColumns), columns, "mul(world, v0)"},
		{"partial", nil, rows[:3], "mul(float3x4(c0, c1, c2), v0)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := f.compile(t, tt.names, tt.lanes...); got != tt.want {
				t.Errorf("Compile() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCompile_MatrixConstantBuffer(t *testing.T) {
	f := newFixture()
	v := f.lanes(regV0, 0, 1, 2, 3)
	row := func(i int) bytecode.D3D10RegisterKey {
		return bytecode.D3D10RegisterKey{Type: bytecode.OperandConstantBuffer, Number: 0, Index: i}
	}

	rows := make([]expr.Handle, 4)
	for i := range rows {
		rows[i] = f.dp4(v, f.lanes(row(i), 0, 1, 2, 3))
	}
	want := "mul(float4x4(cb0[0], cb0[1], cb0[2], cb0[3]), v0)"
	if got := f.compile(t, nil, rows...); got != want {
		t.Errorf("Compile() = %q, want %q", got, want)
	}

	// Rows of another buffer do not continue the matrix.
	rows[3] = f.dp4(v, f.lanes(bytecode.D3D10RegisterKey{Type: bytecode.OperandConstantBuffer, Number: 1, Index: 3}, 0, 1, 2, 3))
	if got := f.compile(t, nil, rows...); got == want {
		t.Errorf("Compile() = %q, want no single matrix across buffers", got)
	}
}

func TestCompile_MatrixTermOrder(t *testing.T) {
	f := newFixture()
	v := f.lanes(regV0, 0, 1, 2)

	// The first lane sums its products in a different order.
	lanes := []expr.Handle{
		f.op(expr.OpAdd,
			f.op(expr.OpAdd, f.op(expr.OpMultiply, f.in(regC0, 2), v[2]), f.op(expr.OpMultiply, v[0], f.in(regC0, 0))),
			f.op(expr.OpMultiply, v[1], f.in(regC0, 1))),
		f.dp4(v, f.lanes(constReg(1), 0, 1, 2)),
		f.dp4(v, f.lanes(constReg(2), 0, 1, 2)),
	}
	want := "mul(float3x3(c0.xyz, c1.xyz, c2.xyz), v0.xyz)"
	if got := f.compile(t, nil, lanes...); got != want {
		t.Errorf("Compile() = %q, want %q", got, want)
	}
}

func TestCompile_Errors(t *testing.T) {
	f := newFixture()
	bogus := expr.Handle(f.g.Len())
	f.g.Nodes = append(f.g.Nodes, expr.Node{Kind: expr.Operation{Op: expr.OpKind(200)}})

	tests := []struct {
		name  string
		lanes []expr.Handle
		kind  ErrorKind
	}{
		{"empty group", nil, ErrInvalidGroup},
		{"too many lanes", f.lanes(regV0, 0, 1, 2, 3, 0), ErrInvalidGroup},
		{"handle out of range", []expr.Handle{expr.Handle(f.g.Len() + 10)}, ErrInvalidGroup},
		{"unknown operation", []expr.Handle{bogus}, ErrUnrecognizedNodeShape},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewCompiler(nil, f.g).Compile(tt.lanes)
			var hlslErr *Error
			if !errors.As(err, &hlslErr) {
				t.Fatalf("Compile() error = %v, want *Error", err)
			}
			if hlslErr.Kind != tt.kind {
				t.Errorf("error kind = %v, want %v", hlslErr.Kind, tt.kind)
			}
		})
	}
}

func TestCompile_NoGraph(t *testing.T) {
	_, err := NewCompiler(nil, nil).Compile([]expr.Handle{0})
	var hlslErr *Error
	if !errors.As(err, &hlslErr) || !hlslErr.IsInternalError() {
		t.Errorf("Compile() error = %v, want internal error", err)
	}
}
