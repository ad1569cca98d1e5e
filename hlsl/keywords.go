// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package hlsl

import "strings"

// UnnamedIdentifier is the default name for empty identifiers.
const UnnamedIdentifier = "_unnamed"

// reservedKeywords contains the HLSL keywords, type names and intrinsics a
// declared constant name must not shadow in Shader Model 2-5 source.
var reservedKeywords = map[string]struct{}{
	// Keywords
	"asm": {}, "bool": {}, "break": {}, "case": {}, "cbuffer": {},
	"centroid": {}, "class": {}, "column_major": {}, "compile": {},
	"const": {}, "continue": {}, "default": {}, "discard": {}, "do": {},
	"double": {}, "else": {}, "extern": {}, "false": {}, "float": {},
	"for": {}, "half": {}, "if": {}, "in": {}, "inline": {}, "inout": {},
	"int": {}, "interface": {}, "linear": {}, "matrix": {}, "namespace": {},
	"nointerpolation": {}, "noperspective": {}, "out": {}, "packoffset": {},
	"pass": {}, "precise": {}, "register": {}, "return": {}, "row_major": {},
	"sample": {}, "sampler": {}, "sampler1D": {}, "sampler2D": {},
	"sampler3D": {}, "samplerCUBE": {}, "SamplerState": {}, "shared": {},
	"snorm": {}, "static": {}, "string": {}, "struct": {}, "switch": {},
	"tbuffer": {}, "technique": {}, "texture": {}, "Texture1D": {},
	"Texture2D": {}, "Texture3D": {}, "TextureCube": {}, "true": {},
	"typedef": {}, "uint": {}, "uniform": {}, "unorm": {}, "unsigned": {},
	"vector": {}, "void": {}, "volatile": {}, "while": {},

	// Reserved words
	"auto": {}, "catch": {}, "char": {}, "const_cast": {}, "delete": {},
	"dynamic_cast": {}, "enum": {}, "explicit": {}, "friend": {}, "goto": {},
	"long": {}, "mutable": {}, "new": {}, "operator": {}, "private": {},
	"protected": {}, "public": {}, "reinterpret_cast": {}, "short": {},
	"signed": {}, "sizeof": {}, "static_cast": {}, "template": {}, "this": {},
	"throw": {}, "try": {}, "typename": {}, "union": {}, "using": {},
	"virtual": {},

	// Intrinsics
	"abs": {}, "acos": {}, "all": {}, "any": {}, "asfloat": {}, "asin": {},
	"asint": {}, "asuint": {}, "atan": {}, "atan2": {}, "ceil": {},
	"clamp": {}, "clip": {}, "cos": {}, "cosh": {}, "cross": {}, "ddx": {},
	"ddy": {}, "degrees": {}, "determinant": {}, "distance": {}, "dot": {},
	"dst": {}, "exp": {}, "exp2": {}, "faceforward": {}, "floor": {},
	"fmod": {}, "frac": {}, "frexp": {}, "fwidth": {}, "isfinite": {},
	"isinf": {}, "isnan": {}, "ldexp": {}, "length": {}, "lerp": {},
	"lit": {}, "log": {}, "log10": {}, "log2": {}, "mad": {}, "max": {},
	"min": {}, "modf": {}, "mul": {}, "noise": {}, "normalize": {}, "pow": {},
	"radians": {}, "rcp": {}, "reflect": {}, "refract": {}, "round": {},
	"rsqrt": {}, "saturate": {}, "sign": {}, "sin": {}, "sincos": {},
	"sinh": {}, "smoothstep": {}, "sqrt": {}, "step": {}, "tan": {},
	"tanh": {}, "tex1D": {}, "tex1Dbias": {}, "tex1Dgrad": {}, "tex1Dlod": {},
	"tex1Dproj": {}, "tex2D": {}, "tex2Dbias": {}, "tex2Dgrad": {},
	"tex2Dlod": {}, "tex2Dproj": {}, "tex3D": {}, "tex3Dbias": {},
	"tex3Dgrad": {}, "tex3Dlod": {}, "tex3Dproj": {}, "texCUBE": {},
	"texCUBEbias": {}, "texCUBEgrad": {}, "texCUBElod": {},
	"texCUBEproj": {}, "transpose": {}, "trunc": {},
}

// typeShorthands contains the vector and matrix type names, e.g. float4
// and int3x3.
var typeShorthands = func() map[string]struct{} {
	result := make(map[string]struct{})
	for _, scalar := range []string{"bool", "int", "uint", "half", "float", "double", "min16float", "min16int"} {
		for n := 1; n <= 4; n++ {
			result[scalar+string(rune('0'+n))] = struct{}{}
			for m := 1; m <= 4; m++ {
				result[scalar+string(rune('0'+n))+"x"+string(rune('0'+m))] = struct{}{}
			}
		}
	}
	return result
}()

// IsReserved checks if a name is an HLSL reserved keyword.
func IsReserved(name string) bool {
	if _, ok := reservedKeywords[name]; ok {
		return true
	}
	if _, ok := typeShorthands[name]; ok {
		return true
	}
	return false
}

// Escape returns a safe identifier name.
// If the name is reserved or empty, it's prefixed with underscore.
// Characters that cannot appear in an identifier, such as the '$' of
// "$Globals", are replaced with underscores.
func Escape(name string) string {
	if name == "" {
		return UnnamedIdentifier
	}
	name = strings.Map(func(r rune) rune {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		default:
			return '_'
		}
	}, name)
	if IsReserved(name) || (name[0] >= '0' && name[0] <= '9') {
		return "_" + name
	}
	return name
}
