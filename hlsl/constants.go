// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package hlsl

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/gogpu/hlsldec/expr"
)

// formatFloat formats a float literal for HLSL output.
func formatFloat(f float64) string {
	if math.IsInf(f, 1) {
		return "1.#INF"
	}
	if math.IsInf(f, -1) {
		return "-1.#INF"
	}
	if math.IsNaN(f) {
		return "0.0/0.0"
	}
	// Register values are single precision.
	s := strconv.FormatFloat(f, 'g', -1, 32)
	if !strings.Contains(s, ".") && !strings.Contains(s, "e") && !strings.Contains(s, "E") {
		s += ".0"
	}
	return s
}

// formatLiteral formats one constant lane per its numeric type.
func formatLiteral(c expr.Constant) string {
	switch c.Type {
	case expr.Int:
		return strconv.FormatInt(int64(c.Value), 10)
	case expr.Bool:
		if c.Value != 0 {
			return "true"
		}
		return "false"
	default:
		return formatFloat(c.Value)
	}
}

// formatConstants renders a group of constant lanes: a single literal when
// every lane holds the same value, a vector constructor otherwise.
func formatConstants(constants []expr.Constant) string {
	first := constants[0]
	if uniform(constants) {
		return formatLiteral(first)
	}

	parts := make([]string, len(constants))
	for i, c := range constants {
		parts[i] = formatLiteral(c)
	}
	return fmt.Sprintf("%s%d(%s)", first.Type, len(constants), strings.Join(parts, ", "))
}

// uniform reports whether every lane renders as the same literal.
func uniform(constants []expr.Constant) bool {
	for _, c := range constants[1:] {
		if formatLiteral(c) != formatLiteral(constants[0]) {
			return false
		}
	}
	return true
}
