// Package expr defines the expression graph produced by replaying shader
// bytecode.
//
// The graph is a DAG stored in an arena: nodes are appended to Graph.Nodes
// and referenced by Handle. A node may be shared by any number of parents,
// so "is this the same sub-expression" is a handle comparison. Nodes are
// immutable once added and only ever reference handles created before them,
// which keeps the graph acyclic by construction.
//
// # Node kinds
//
// NodeKind is a closed set of variants:
//   - Constant: a literal lane value
//   - RegisterInput: a lane of an externally provided register
//   - Operation: an arithmetic operation over operand handles
//   - Group: several single-lane nodes forming one register value
//   - TextureLoadOutput: one lane of a texture sample
//   - NormalizeOutput: one lane of a three-component normalize
//
// RegisterInput, TextureLoadOutput and NormalizeOutput are LaneTagged: they
// record which lane of their source they stand for, which the HLSL
// compiler turns into swizzles.
package expr
