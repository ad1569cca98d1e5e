package expr

import "fmt"

// ValidationError represents a validation error.
type ValidationError struct {
	Message string
	// Node is the offending node, if any.
	Node *Handle
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	if e.Node != nil {
		return fmt.Sprintf("node %d: %s", *e.Node, e.Message)
	}
	return e.Message
}

// Validate checks the structural invariants of the graph:
//   - every referenced handle precedes the referencing node (acyclicity)
//   - operation operand counts match their arity
//   - lane tags and group sizes are in range
//   - texture loads reference sampler inputs
//
// Returns all validation errors found, or nil if the graph is valid.
func Validate(g *Graph) ([]ValidationError, error) {
	if g == nil {
		return nil, fmt.Errorf("graph is nil")
	}

	var errs []ValidationError
	report := func(h Handle, format string, args ...any) {
		node := h
		errs = append(errs, ValidationError{Message: fmt.Sprintf(format, args...), Node: &node})
	}

	for i := range g.Nodes {
		h := Handle(i)
		kind := g.Nodes[i].Kind
		if kind == nil {
			report(h, "node has no kind")
			continue
		}
		for _, operand := range Operands(kind) {
			if operand >= h {
				report(h, "references handle %d which does not precede it", operand)
			}
		}

		switch k := kind.(type) {
		case Constant:
			if k.Type > Bool {
				report(h, "unknown numeric type %d", k.Type)
			}
		case RegisterInput:
			if k.Key.Register == nil {
				report(h, "register input has no register")
			}
			if k.Key.Lane < 0 || k.Key.Lane > 3 {
				report(h, "lane %d out of range", k.Key.Lane)
			}
		case Operation:
			if arity := k.Op.Arity(); arity == 0 || arity != len(k.Operands) {
				report(h, "operation %s has %d operands", k.Op, len(k.Operands))
			}
		case Group:
			if len(k.Members) == 0 || len(k.Members) > 4 {
				report(h, "group has %d members", len(k.Members))
			}
		case TextureLoadOutput:
			if k.OutputLane < 0 || k.OutputLane > 3 {
				report(h, "lane %d out of range", k.OutputLane)
			}
			if k.Sampler < h {
				if in, ok := g.Nodes[k.Sampler].Kind.(RegisterInput); !ok || in.Sampler == nil {
					report(h, "texture load sampler %d is not a sampler input", k.Sampler)
				}
			}
		case NormalizeOutput:
			if k.OutputLane < 0 || k.OutputLane > 2 {
				report(h, "lane %d out of range", k.OutputLane)
			}
		default:
			report(h, "unknown node kind %T", kind)
		}
	}

	return errs, nil
}
