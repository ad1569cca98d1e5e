package expr

import (
	"fmt"

	"github.com/gogpu/hlsldec/bytecode"
)

// Graph is the arena holding all nodes of one replayed program.
type Graph struct {
	Nodes []Node
}

// NewGraph creates an empty graph.
func NewGraph() *Graph {
	return &Graph{Nodes: make([]Node, 0, 64)}
}

// Len returns the number of nodes.
func (g *Graph) Len() int {
	return len(g.Nodes)
}

// Kind returns the kind of the node at h.
// It panics if h is out of range; handles only come from this graph.
func (g *Graph) Kind(h Handle) NodeKind {
	return g.Nodes[h].Kind
}

// Kinds returns the kinds of the nodes at handles, in order.
func (g *Graph) Kinds(handles []Handle) []NodeKind {
	kinds := make([]NodeKind, len(handles))
	for i, h := range handles {
		kinds[i] = g.Nodes[h].Kind
	}
	return kinds
}

func (g *Graph) add(kind NodeKind) Handle {
	h := Handle(len(g.Nodes))
	g.Nodes = append(g.Nodes, Node{Kind: kind})
	return h
}

// AddConstant appends a literal node.
func (g *Graph) AddConstant(value float64, typ NumericType) Handle {
	return g.add(Constant{Value: value, Type: typ})
}

// AddRegisterInput appends a register lane leaf.
func (g *Graph) AddRegisterInput(key bytecode.RegisterComponentKey) Handle {
	return g.add(RegisterInput{Key: key})
}

// AddSampler appends a sampler register leaf carrying its declared kind.
func (g *Graph) AddSampler(key bytecode.RegisterComponentKey, kind bytecode.SamplerKind) Handle {
	return g.add(RegisterInput{Key: key, Sampler: &kind})
}

// AddOperation appends an operation node.
// It fails if the operand count does not match the operation's arity or an
// operand does not exist yet.
func (g *Graph) AddOperation(op OpKind, operands ...Handle) (Handle, error) {
	if arity := op.Arity(); arity == 0 || arity != len(operands) {
		return 0, fmt.Errorf("operation %s takes %d operands, got %d", op, op.Arity(), len(operands))
	}
	if err := g.checkHandles(operands); err != nil {
		return 0, fmt.Errorf("operation %s: %w", op, err)
	}
	ops := make([]Handle, len(operands))
	copy(ops, operands)
	return g.add(Operation{Op: op, Operands: ops}), nil
}

// AddGroup appends a group of single-lane members.
func (g *Graph) AddGroup(members []Handle) (Handle, error) {
	if len(members) == 0 || len(members) > 4 {
		return 0, fmt.Errorf("group must have 1 to 4 members, got %d", len(members))
	}
	if err := g.checkHandles(members); err != nil {
		return 0, fmt.Errorf("group: %w", err)
	}
	m := make([]Handle, len(members))
	copy(m, members)
	return g.add(Group{Members: m}), nil
}

// AddTextureLoad appends one output lane of a texture sample.
func (g *Graph) AddTextureLoad(sampler Handle, coordinates []Handle, control bytecode.TextureControl, lane int) (Handle, error) {
	if err := g.checkLane(lane); err != nil {
		return 0, err
	}
	if err := g.checkHandles(append([]Handle{sampler}, coordinates...)); err != nil {
		return 0, fmt.Errorf("texture load: %w", err)
	}
	if _, ok := g.Nodes[sampler].Kind.(RegisterInput); !ok {
		return 0, fmt.Errorf("texture load: sampler %d is not a register input", sampler)
	}
	coords := make([]Handle, len(coordinates))
	copy(coords, coordinates)
	return g.add(TextureLoadOutput{Sampler: sampler, Coordinates: coords, Control: control, OutputLane: lane}), nil
}

// AddNormalize appends one output lane of a normalize. The result is a
// three component vector, so lane is x, y or z.
func (g *Graph) AddNormalize(inputs [3]Handle, lane int) (Handle, error) {
	if lane < 0 || lane > 2 {
		return 0, fmt.Errorf("normalize lane %d out of range", lane)
	}
	if err := g.checkHandles(inputs[:]); err != nil {
		return 0, fmt.Errorf("normalize: %w", err)
	}
	return g.add(NormalizeOutput{Inputs: inputs, OutputLane: lane}), nil
}

func (g *Graph) checkHandles(handles []Handle) error {
	for _, h := range handles {
		if int(h) >= len(g.Nodes) {
			return fmt.Errorf("invalid node handle %d", h)
		}
	}
	return nil
}

func (g *Graph) checkLane(lane int) error {
	if lane < 0 || lane > 3 {
		return fmt.Errorf("lane %d out of range", lane)
	}
	return nil
}

// Operands returns the handles a node references, in order.
func Operands(kind NodeKind) []Handle {
	switch k := kind.(type) {
	case Operation:
		return k.Operands
	case Group:
		return k.Members
	case TextureLoadOutput:
		return append([]Handle{k.Sampler}, k.Coordinates...)
	case NormalizeOutput:
		return k.Inputs[:]
	default:
		return nil
	}
}
