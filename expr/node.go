package expr

import (
	"fmt"

	"github.com/gogpu/hlsldec/bytecode"
)

// Handle references a node in a Graph.
type Handle uint32

// Node is one vertex of the expression graph.
type Node struct {
	Kind NodeKind
}

// NodeKind represents the different kinds of nodes.
type NodeKind interface {
	nodeKind()
}

// LaneTagged is implemented by node kinds that stand for one lane of a
// multi-lane source.
type LaneTagged interface {
	NodeKind
	Lane() int
}

// NumericType is the scalar type of a constant.
type NumericType uint8

const (
	Float NumericType = iota
	Int
	Bool
)

// String returns the HLSL scalar type name.
func (t NumericType) String() string {
	switch t {
	case Float:
		return "float"
	case Int:
		return "int"
	case Bool:
		return "bool"
	default:
		return fmt.Sprintf("NumericType(%d)", uint8(t))
	}
}

// Constant is a literal lane value.
type Constant struct {
	Value float64
	Type  NumericType
}

func (Constant) nodeKind() {}

// RegisterInput references one lane of a register whose value comes from
// outside the program: a declared constant, constant buffer slot, input or
// sampler. Sampler is set only for sampler registers.
type RegisterInput struct {
	Key     bytecode.RegisterComponentKey
	Sampler *bytecode.SamplerKind
}

func (RegisterInput) nodeKind() {}

// Lane returns the register lane.
func (r RegisterInput) Lane() int { return r.Key.Lane }

// SamplerDimension returns the number of texture coordinate lanes of a
// sampler input, or 0 if the input is not a sampler.
func (r RegisterInput) SamplerDimension() int {
	if r.Sampler == nil {
		return 0
	}
	return r.Sampler.Dimension()
}

// Operation applies Op to Operands in order.
type Operation struct {
	Op       OpKind
	Operands []Handle
}

func (Operation) nodeKind() {}

// Group bundles single-lane nodes that together form one register value.
type Group struct {
	Members []Handle
}

func (Group) nodeKind() {}

// TextureLoadOutput is lane Lane of sampling Sampler at Coordinates.
// All lanes of one sample share the sampler and coordinate handles.
type TextureLoadOutput struct {
	Sampler     Handle
	Coordinates []Handle
	Control     bytecode.TextureControl
	OutputLane  int
}

func (TextureLoadOutput) nodeKind() {}

// Lane returns the sampled lane.
func (t TextureLoadOutput) Lane() int { return t.OutputLane }

// NormalizeOutput is lane Lane of normalizing the vector Inputs.
// All lanes of one normalize share the input handles.
type NormalizeOutput struct {
	Inputs     [3]Handle
	OutputLane int
}

func (NormalizeOutput) nodeKind() {}

// Lane returns the normalized lane.
func (n NormalizeOutput) Lane() int { return n.OutputLane }
