package expr

import "fmt"

// OpKind represents the operations an Operation node can apply.
type OpKind uint8

const (
	OpNegate               OpKind = iota // -a
	OpAbsolute                           // abs(a)
	OpAdd                                // a + b
	OpSubtract                           // a - b
	OpMultiply                           // a * b
	OpDivide                             // a / b
	OpReciprocal                         // 1 / a
	OpReciprocalSquareRoot               // 1 / sqrt(a)
	OpSquareRoot                         // sqrt(a)
	OpPower                              // pow(a, b)
	OpMaximum                            // max(a, b)
	OpMinimum                            // min(a, b)
	OpLinearInterpolate                  // lerp(a, b, t) = a + t * (b - a)
	OpCompare                            // a >= 0 ? b : c
	OpDotProduct                         // dot(a, b)
	OpLength                             // length(a)
	OpFractional                         // frac(a)
	OpSine                               // sin(a)
	OpCosine                             // cos(a)
	OpClip                               // clip(a)
	OpMove                               // a
	OpSignGreaterOrEqual                 // a >= b ? 1 : 0
	OpSignLess                           // a < b ? 1 : 0
	OpSaturate                           // saturate(a)
)

type opInfo struct {
	name     string
	mnemonic string
	arity    int
}

var opInfos = [...]opInfo{
	OpNegate:               {"Negate", "-", 1},
	OpAbsolute:             {"Absolute", "abs", 1},
	OpAdd:                  {"Add", "+", 2},
	OpSubtract:             {"Subtract", "-", 2},
	OpMultiply:             {"Multiply", "*", 2},
	OpDivide:               {"Divide", "/", 2},
	OpReciprocal:           {"Reciprocal", "rcp", 1},
	OpReciprocalSquareRoot: {"ReciprocalSquareRoot", "rsqrt", 1},
	OpSquareRoot:           {"SquareRoot", "sqrt", 1},
	OpPower:                {"Power", "pow", 2},
	OpMaximum:              {"Maximum", "max", 2},
	OpMinimum:              {"Minimum", "min", 2},
	OpLinearInterpolate:    {"LinearInterpolate", "lerp", 3},
	OpCompare:              {"Compare", "cmp", 3},
	OpDotProduct:           {"DotProduct", "dot", 2},
	OpLength:               {"Length", "length", 1},
	OpFractional:           {"Fractional", "frac", 1},
	OpSine:                 {"Sine", "sin", 1},
	OpCosine:               {"Cosine", "cos", 1},
	OpClip:                 {"Clip", "clip", 1},
	OpMove:                 {"Move", "mov", 1},
	OpSignGreaterOrEqual:   {"SignGreaterOrEqual", "step", 2},
	OpSignLess:             {"SignLess", "step", 2},
	OpSaturate:             {"Saturate", "saturate", 1},
}

// String returns the operation name.
func (k OpKind) String() string {
	if int(k) < len(opInfos) {
		return opInfos[k].name
	}
	return fmt.Sprintf("OpKind(%d)", uint8(k))
}

// Mnemonic returns the HLSL function name or operator symbol of the
// operation.
func (k OpKind) Mnemonic() string {
	if int(k) < len(opInfos) {
		return opInfos[k].mnemonic
	}
	return ""
}

// Arity returns the number of operands the operation takes, or 0 for an
// unknown kind.
func (k OpKind) Arity() int {
	if int(k) < len(opInfos) {
		return opInfos[k].arity
	}
	return 0
}
