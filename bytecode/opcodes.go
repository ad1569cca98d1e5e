// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package bytecode

import "fmt"

// Opcode is a D3D9 (Shader Model 1-3) instruction opcode.
// Values match the instruction token encoding.
type Opcode uint16

const (
	OpNop     Opcode = 0
	OpMov     Opcode = 1
	OpAdd     Opcode = 2
	OpSub     Opcode = 3
	OpMad     Opcode = 4
	OpMul     Opcode = 5
	OpRcp     Opcode = 6
	OpRsq     Opcode = 7
	OpDp3     Opcode = 8
	OpDp4     Opcode = 9
	OpMin     Opcode = 10
	OpMax     Opcode = 11
	OpSlt     Opcode = 12
	OpSge     Opcode = 13
	OpExp     Opcode = 14
	OpLog     Opcode = 15
	OpLit     Opcode = 16
	OpDst     Opcode = 17
	OpLrp     Opcode = 18
	OpFrc     Opcode = 19
	OpM4x4    Opcode = 20
	OpM4x3    Opcode = 21
	OpM3x4    Opcode = 22
	OpM3x3    Opcode = 23
	OpM3x2    Opcode = 24
	OpCall    Opcode = 25
	OpCallNZ  Opcode = 26
	OpLoop    Opcode = 27
	OpRet     Opcode = 28
	OpEndLoop Opcode = 29
	OpLabel   Opcode = 30
	OpDcl     Opcode = 31
	OpPow     Opcode = 32
	OpCrs     Opcode = 33
	OpSgn     Opcode = 34
	OpAbs     Opcode = 35
	OpNrm     Opcode = 36
	OpSinCos  Opcode = 37
	OpRep     Opcode = 38
	OpEndRep  Opcode = 39
	OpIf      Opcode = 40
	OpIfC     Opcode = 41
	OpElse    Opcode = 42
	OpEndIf   Opcode = 43
	OpBreak   Opcode = 44
	OpBreakC  Opcode = 45
	OpMovA    Opcode = 46
	OpDefB    Opcode = 47
	OpDefI    Opcode = 48

	OpTexCoord     Opcode = 64
	OpTexKill      Opcode = 65
	OpTex          Opcode = 66
	OpTexBem       Opcode = 67
	OpTexBemL      Opcode = 68
	OpTexReg2AR    Opcode = 69
	OpTexReg2GB    Opcode = 70
	OpTexM3x2Pad   Opcode = 71
	OpTexM3x2Tex   Opcode = 72
	OpTexM3x3Pad   Opcode = 73
	OpTexM3x3Tex   Opcode = 74
	OpTexM3x3Spec  Opcode = 76
	OpTexM3x3VSpec Opcode = 77
	OpExpP         Opcode = 78
	OpLogP         Opcode = 79
	OpCnd          Opcode = 80
	OpDef          Opcode = 81
	OpTexReg2RGB   Opcode = 82
	OpTexDp3Tex    Opcode = 83
	OpTexM3x2Depth Opcode = 84
	OpTexDp3       Opcode = 85
	OpTexM3x3      Opcode = 86
	OpTexDepth     Opcode = 87
	OpCmp          Opcode = 88
	OpBem          Opcode = 89
	OpDp2Add       Opcode = 90
	OpDsx          Opcode = 91
	OpDsy          Opcode = 92
	OpTexLDD       Opcode = 93
	OpSetP         Opcode = 94
	OpTexLDL       Opcode = 95
	OpBreakP       Opcode = 96

	OpPhase   Opcode = 0xFFFD
	OpComment Opcode = 0xFFFE
	OpEnd     Opcode = 0xFFFF
)

var opcodeNames = map[Opcode]string{
	OpNop: "nop", OpMov: "mov", OpAdd: "add", OpSub: "sub", OpMad: "mad",
	OpMul: "mul", OpRcp: "rcp", OpRsq: "rsq", OpDp3: "dp3", OpDp4: "dp4",
	OpMin: "min", OpMax: "max", OpSlt: "slt", OpSge: "sge", OpExp: "exp",
	OpLog: "log", OpLit: "lit", OpDst: "dst", OpLrp: "lrp", OpFrc: "frc",
	OpM4x4: "m4x4", OpM4x3: "m4x3", OpM3x4: "m3x4", OpM3x3: "m3x3",
	OpM3x2: "m3x2", OpCall: "call", OpCallNZ: "callnz", OpLoop: "loop",
	OpRet: "ret", OpEndLoop: "endloop", OpLabel: "label", OpDcl: "dcl",
	OpPow: "pow", OpCrs: "crs", OpSgn: "sgn", OpAbs: "abs", OpNrm: "nrm",
	OpSinCos: "sincos", OpRep: "rep", OpEndRep: "endrep", OpIf: "if",
	OpIfC: "ifc", OpElse: "else", OpEndIf: "endif", OpBreak: "break",
	OpBreakC: "breakc", OpMovA: "mova", OpDefB: "defb", OpDefI: "defi",

	OpTexCoord: "texcoord", OpTexKill: "texkill", OpTex: "texld",
	OpTexBem: "texbem", OpTexBemL: "texbeml", OpTexReg2AR: "texreg2ar",
	OpTexReg2GB: "texreg2gb", OpTexM3x2Pad: "texm3x2pad",
	OpTexM3x2Tex: "texm3x2tex", OpTexM3x3Pad: "texm3x3pad",
	OpTexM3x3Tex: "texm3x3tex", OpTexM3x3Spec: "texm3x3spec",
	OpTexM3x3VSpec: "texm3x3vspec", OpExpP: "expp", OpLogP: "logp",
	OpCnd: "cnd", OpDef: "def", OpTexReg2RGB: "texreg2rgb",
	OpTexDp3Tex: "texdp3tex", OpTexM3x2Depth: "texm3x2depth",
	OpTexDp3: "texdp3", OpTexM3x3: "texm3x3", OpTexDepth: "texdepth",
	OpCmp: "cmp", OpBem: "bem", OpDp2Add: "dp2add", OpDsx: "dsx",
	OpDsy: "dsy", OpTexLDD: "texldd", OpSetP: "setp", OpTexLDL: "texldl",
	OpBreakP: "breakp",

	OpPhase: "phase", OpComment: "comment", OpEnd: "end",
}

// String returns the assembly mnemonic.
func (op Opcode) String() string {
	if name, ok := opcodeNames[op]; ok {
		return name
	}
	return fmt.Sprintf("opcode(%d)", uint16(op))
}

// LookupOpcode returns the D3D9 opcode for an assembly mnemonic.
func LookupOpcode(mnemonic string) (Opcode, bool) {
	for op, name := range opcodeNames {
		if name == mnemonic {
			return op, true
		}
	}
	return 0, false
}

// hasDestination reports whether instructions of this opcode carry a
// destination parameter.
func (op Opcode) hasDestination() bool {
	switch op {
	case OpNop, OpCall, OpCallNZ, OpLoop, OpRet, OpEndLoop, OpLabel,
		OpRep, OpEndRep, OpIf, OpIfC, OpElse, OpEndIf, OpBreak, OpBreakC,
		OpBreakP, OpPhase, OpComment, OpEnd:
		return false
	default:
		return true
	}
}

// D3D10Opcode is a Shader Model 4+ instruction opcode.
// Values match the opcode token encoding.
type D3D10Opcode uint16

const (
	D3D10Add D3D10Opcode = iota
	D3D10And
	D3D10Break
	D3D10BreakC
	D3D10Call
	D3D10CallC
	D3D10Case
	D3D10Continue
	D3D10ContinueC
	D3D10Cut
	D3D10Default
	D3D10DerivRtx
	D3D10DerivRty
	D3D10Discard
	D3D10Div
	D3D10Dp2
	D3D10Dp3
	D3D10Dp4
	D3D10Else
	D3D10Emit
	D3D10EmitThenCut
	D3D10EndIf
	D3D10EndLoop
	D3D10EndSwitch
	D3D10Eq
	D3D10Exp
	D3D10Frc
	D3D10FtoI
	D3D10FtoU
	D3D10Ge
	D3D10IAdd
	D3D10If
	D3D10IEq
	D3D10IGe
	D3D10ILt
	D3D10IMad
	D3D10IMax
	D3D10IMin
	D3D10IMul
	D3D10INe
	D3D10INeg
	D3D10IShl
	D3D10IShr
	D3D10ItoF
	D3D10Label
	D3D10Ld
	D3D10LdMS
	D3D10Log
	D3D10Loop
	D3D10Lt
	D3D10Mad
	D3D10Min
	D3D10Max
	D3D10CustomData
	D3D10Mov
	D3D10MovC
	D3D10Mul
	D3D10Ne
	D3D10Nop
	D3D10Not
	D3D10Or
	D3D10ResInfo
	D3D10Ret
	D3D10RetC
	D3D10RoundNE
	D3D10RoundNI
	D3D10RoundPI
	D3D10RoundZ
	D3D10Rsq
	D3D10Sample
	D3D10SampleC
	D3D10SampleCLZ
	D3D10SampleL
	D3D10SampleD
	D3D10SampleB
	D3D10Sqrt
	D3D10Switch
	D3D10SinCos
	D3D10UDiv
	D3D10ULt
	D3D10UGe
	D3D10UMul
	D3D10UMad
	D3D10UMax
	D3D10UMin
	D3D10UShr
	D3D10UtoF
	D3D10Xor
	D3D10DclResource
	D3D10DclConstantBuffer
	D3D10DclSampler
	D3D10DclIndexRange
	D3D10DclOutputTopology
	D3D10DclInputPrimitive
	D3D10DclMaxOutputVertexCount
	D3D10DclInput
	D3D10DclInputSgv
	D3D10DclInputSiv
	D3D10DclInputPS
	D3D10DclInputPSSgv
	D3D10DclInputPSSiv
	D3D10DclOutput
	D3D10DclOutputSgv
	D3D10DclOutputSiv
	D3D10DclTemps
	D3D10DclIndexableTemp
	D3D10DclGlobalFlags
)

const (
	D3D10Lod        D3D10Opcode = 108
	D3D10Gather4    D3D10Opcode = 109
	D3D10SamplePos  D3D10Opcode = 110
	D3D10SampleInfo D3D10Opcode = 111
	D3D10Rcp        D3D10Opcode = 129
)

var d3d10OpcodeNames = [...]string{
	"add", "and", "break", "breakc", "call", "callc", "case", "continue",
	"continuec", "cut", "default", "deriv_rtx", "deriv_rty", "discard",
	"div", "dp2", "dp3", "dp4", "else", "emit", "emit_then_cut", "endif",
	"endloop", "endswitch", "eq", "exp", "frc", "ftoi", "ftou", "ge", "iadd",
	"if", "ieq", "ige", "ilt", "imad", "imax", "imin", "imul", "ine", "ineg",
	"ishl", "ishr", "itof", "label", "ld", "ld_ms", "log", "loop", "lt",
	"mad", "min", "max", "customdata", "mov", "movc", "mul", "ne", "nop",
	"not", "or", "resinfo", "ret", "retc", "round_ne", "round_ni",
	"round_pi", "round_z", "rsq", "sample", "sample_c", "sample_c_lz",
	"sample_l", "sample_d", "sample_b", "sqrt", "switch", "sincos", "udiv",
	"ult", "uge", "umul", "umad", "umax", "umin", "ushr", "utof", "xor",
	"dcl_resource", "dcl_constantbuffer", "dcl_sampler", "dcl_index_range",
	"dcl_outputtopology", "dcl_inputprimitive", "dcl_maxout", "dcl_input",
	"dcl_input_sgv", "dcl_input_siv", "dcl_input_ps", "dcl_input_ps_sgv",
	"dcl_input_ps_siv", "dcl_output", "dcl_output_sgv", "dcl_output_siv",
	"dcl_temps", "dcl_indexableTemp", "dcl_globalFlags",
}

var d3d10ExtraOpcodeNames = map[D3D10Opcode]string{
	D3D10Lod:        "lod",
	D3D10Gather4:    "gather4",
	D3D10SamplePos:  "samplepos",
	D3D10SampleInfo: "sampleinfo",
	D3D10Rcp:        "rcp",
}

// String returns the assembly mnemonic.
func (op D3D10Opcode) String() string {
	if int(op) < len(d3d10OpcodeNames) {
		return d3d10OpcodeNames[op]
	}
	if name, ok := d3d10ExtraOpcodeNames[op]; ok {
		return name
	}
	return fmt.Sprintf("opcode(%d)", uint16(op))
}

// LookupD3D10Opcode returns the D3D10 opcode for an assembly mnemonic.
func LookupD3D10Opcode(mnemonic string) (D3D10Opcode, bool) {
	for i, name := range d3d10OpcodeNames {
		if name == mnemonic {
			return D3D10Opcode(i), true
		}
	}
	for op, name := range d3d10ExtraOpcodeNames {
		if name == mnemonic {
			return op, true
		}
	}
	return 0, false
}

func (op D3D10Opcode) hasDestination() bool {
	switch op {
	case D3D10Break, D3D10BreakC, D3D10Call, D3D10CallC, D3D10Case,
		D3D10Continue, D3D10ContinueC, D3D10Cut, D3D10Default, D3D10Discard,
		D3D10Else, D3D10Emit, D3D10EmitThenCut, D3D10EndIf, D3D10EndLoop,
		D3D10EndSwitch, D3D10If, D3D10Label, D3D10Loop, D3D10Nop, D3D10Ret,
		D3D10RetC, D3D10Switch, D3D10CustomData, D3D10DclResource,
		D3D10DclConstantBuffer, D3D10DclSampler, D3D10DclIndexRange,
		D3D10DclOutputTopology, D3D10DclInputPrimitive,
		D3D10DclMaxOutputVertexCount, D3D10DclTemps, D3D10DclIndexableTemp,
		D3D10DclGlobalFlags:
		return false
	default:
		return true
	}
}

// destinationCount is the number of leading destination operands.
func (op D3D10Opcode) destinationCount() int {
	switch {
	case op == D3D10SinCos:
		return 2
	case op.hasDestination():
		return 1
	default:
		return 0
	}
}
