// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package bytecode

import (
	"fmt"
	"strings"
)

// RegisterType is the register file class of a D3D9 operand.
type RegisterType uint8

const (
	RegisterTemp RegisterType = iota
	RegisterInput
	RegisterConst
	RegisterAddress
	RegisterTexture
	RegisterRastOut
	RegisterAttrOut
	RegisterOutput
	RegisterConstInt
	RegisterColorOut
	RegisterDepthOut
	RegisterSampler
	RegisterConst2
	RegisterConst3
	RegisterConst4
	RegisterConstBool
	RegisterLoop
	RegisterTempFloat16
	RegisterMiscType
	RegisterLabel
	RegisterPredicate
)

var registerTypeNames = [...]string{
	RegisterTemp:        "Temp",
	RegisterInput:       "Input",
	RegisterConst:       "Const",
	RegisterAddress:     "Address",
	RegisterTexture:     "Texture",
	RegisterRastOut:     "RastOut",
	RegisterAttrOut:     "AttrOut",
	RegisterOutput:      "Output",
	RegisterConstInt:    "ConstInt",
	RegisterColorOut:    "ColorOut",
	RegisterDepthOut:    "DepthOut",
	RegisterSampler:     "Sampler",
	RegisterConst2:      "Const2",
	RegisterConst3:      "Const3",
	RegisterConst4:      "Const4",
	RegisterConstBool:   "ConstBool",
	RegisterLoop:        "Loop",
	RegisterTempFloat16: "TempFloat16",
	RegisterMiscType:    "MiscType",
	RegisterLabel:       "Label",
	RegisterPredicate:   "Predicate",
}

// String returns the register type name.
func (t RegisterType) String() string {
	if int(t) < len(registerTypeNames) {
		return registerTypeNames[t]
	}
	return fmt.Sprintf("RegisterType(%d)", uint8(t))
}

// Prefix returns the assembly register prefix, e.g. "c" for constants.
func (t RegisterType) Prefix() string {
	switch t {
	case RegisterTemp, RegisterTempFloat16:
		return "r"
	case RegisterInput:
		return "v"
	case RegisterConst, RegisterConst2, RegisterConst3, RegisterConst4:
		return "c"
	case RegisterAddress:
		return "a"
	case RegisterTexture:
		return "t"
	case RegisterRastOut:
		return "oPos"
	case RegisterAttrOut:
		return "oD"
	case RegisterOutput:
		return "o"
	case RegisterConstInt:
		return "i"
	case RegisterColorOut:
		return "oC"
	case RegisterDepthOut:
		return "oDepth"
	case RegisterSampler:
		return "s"
	case RegisterConstBool:
		return "b"
	case RegisterLoop:
		return "aL"
	case RegisterMiscType:
		return "vPos"
	case RegisterLabel:
		return "l"
	case RegisterPredicate:
		return "p"
	default:
		return "?"
	}
}

// IsConstant reports whether the register type holds uniform constants.
func (t RegisterType) IsConstant() bool {
	switch t {
	case RegisterConst, RegisterConst2, RegisterConst3, RegisterConst4,
		RegisterConstInt, RegisterConstBool:
		return true
	default:
		return false
	}
}

// OperandType is the operand class of a D3D10 operand token.
type OperandType uint8

const (
	OperandTemp                          OperandType = 0
	OperandInput                         OperandType = 1
	OperandOutput                        OperandType = 2
	OperandIndexableTemp                 OperandType = 3
	OperandImmediate32                   OperandType = 4
	OperandImmediate64                   OperandType = 5
	OperandSampler                       OperandType = 6
	OperandResource                      OperandType = 7
	OperandConstantBuffer                OperandType = 8
	OperandImmediateConstantBuffer       OperandType = 9
	OperandLabel                         OperandType = 10
	OperandInputPrimitiveID              OperandType = 11
	OperandOutputDepth                   OperandType = 12
	OperandNull                          OperandType = 13
	OperandRasterizer                    OperandType = 14
	OperandOutputCoverageMask            OperandType = 15
	OperandUnorderedAccessView           OperandType = 30
	OperandThreadGroupSharedMemory       OperandType = 31
	OperandInputThreadID                 OperandType = 32
	OperandInputThreadGroupID            OperandType = 33
	OperandInputThreadIDInGroup          OperandType = 34
	OperandInputCoverageMask             OperandType = 35
	OperandInputThreadIDInGroupFlattened OperandType = 36
)

var operandTypeNames = map[OperandType]string{
	OperandTemp:                          "Temp",
	OperandInput:                         "Input",
	OperandOutput:                        "Output",
	OperandIndexableTemp:                 "IndexableTemp",
	OperandImmediate32:                   "Immediate32",
	OperandImmediate64:                   "Immediate64",
	OperandSampler:                       "Sampler",
	OperandResource:                      "Resource",
	OperandConstantBuffer:                "ConstantBuffer",
	OperandImmediateConstantBuffer:       "ImmediateConstantBuffer",
	OperandLabel:                         "Label",
	OperandInputPrimitiveID:              "InputPrimitiveID",
	OperandOutputDepth:                   "OutputDepth",
	OperandNull:                          "Null",
	OperandRasterizer:                    "Rasterizer",
	OperandOutputCoverageMask:            "OutputCoverageMask",
	OperandUnorderedAccessView:           "UnorderedAccessView",
	OperandThreadGroupSharedMemory:       "ThreadGroupSharedMemory",
	OperandInputThreadID:                 "InputThreadID",
	OperandInputThreadGroupID:            "InputThreadGroupID",
	OperandInputThreadIDInGroup:          "InputThreadIDInGroup",
	OperandInputCoverageMask:             "InputCoverageMask",
	OperandInputThreadIDInGroupFlattened: "InputThreadIDInGroupFlattened",
}

// String returns the operand type name.
func (t OperandType) String() string {
	if name, ok := operandTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("OperandType(%d)", uint8(t))
}

// Prefix returns the assembly register prefix, e.g. "cb" for constant buffers.
func (t OperandType) Prefix() string {
	switch t {
	case OperandTemp:
		return "r"
	case OperandInput:
		return "v"
	case OperandOutput:
		return "o"
	case OperandIndexableTemp:
		return "x"
	case OperandImmediate32, OperandImmediate64:
		return "l"
	case OperandSampler:
		return "s"
	case OperandResource:
		return "t"
	case OperandConstantBuffer:
		return "cb"
	case OperandImmediateConstantBuffer:
		return "icb"
	case OperandInputPrimitiveID:
		return "vPrim"
	case OperandOutputDepth:
		return "oDepth"
	case OperandNull:
		return "null"
	case OperandOutputCoverageMask:
		return "oMask"
	case OperandUnorderedAccessView:
		return "u"
	case OperandThreadGroupSharedMemory:
		return "g"
	case OperandInputThreadID:
		return "vThreadID"
	case OperandInputThreadGroupID:
		return "vThreadGroupID"
	case OperandInputThreadIDInGroup:
		return "vThreadIDInGroup"
	case OperandInputCoverageMask:
		return "vCoverage"
	case OperandInputThreadIDInGroupFlattened:
		return "vThreadIDInGroupFlattened"
	default:
		return "?"
	}
}

// RegisterKey identifies one register of either bytecode generation.
// Implementations are comparable and can be used as map keys.
type RegisterKey interface {
	registerKey()
	String() string
}

// D3D9RegisterKey addresses a legacy register by type and number.
type D3D9RegisterKey struct {
	Type   RegisterType
	Number int
}

func (D3D9RegisterKey) registerKey() {}

// String returns the assembly spelling, e.g. "c3" or "oC0".
func (k D3D9RegisterKey) String() string {
	switch k.Type {
	case RegisterDepthOut:
		return "oDepth"
	case RegisterRastOut:
		switch k.Number {
		case 0:
			return "oPos"
		case 1:
			return "oFog"
		case 2:
			return "oPts"
		}
	case RegisterMiscType:
		if k.Number == 1 {
			return "vFace"
		}
		return "vPos"
	case RegisterLoop:
		return "aL"
	}
	return fmt.Sprintf("%s%d", k.Type.Prefix(), k.Number)
}

// D3D10RegisterKey addresses an operand register by operand type and index.
// Index is the second index dimension, the slot of a constant buffer
// reference like cb0[3]; it is zero for one-dimensional operands.
type D3D10RegisterKey struct {
	Type   OperandType
	Number int
	Index  int
}

func (D3D10RegisterKey) registerKey() {}

// String returns the assembly spelling, e.g. "cb0[3]" or "o1".
func (k D3D10RegisterKey) String() string {
	switch k.Type {
	case OperandConstantBuffer, OperandIndexableTemp:
		return fmt.Sprintf("%s%d[%d]", k.Type.Prefix(), k.Number, k.Index)
	case OperandImmediateConstantBuffer:
		return fmt.Sprintf("icb[%d]", k.Number)
	case OperandOutputDepth, OperandNull, OperandOutputCoverageMask,
		OperandInputPrimitiveID, OperandInputThreadID, OperandInputThreadGroupID,
		OperandInputThreadIDInGroup, OperandInputCoverageMask,
		OperandInputThreadIDInGroupFlattened:
		return k.Type.Prefix()
	}
	return fmt.Sprintf("%s%d", k.Type.Prefix(), k.Number)
}

// RegisterComponentKey identifies a single lane of a register.
type RegisterComponentKey struct {
	Register RegisterKey
	Lane     int
}

// String returns the register with a one-letter lane suffix, e.g. "r0.z".
func (k RegisterComponentKey) String() string {
	return fmt.Sprintf("%s.%c", k.Register, LaneName(k.Lane))
}

// LaneName returns the swizzle letter of a lane index.
func LaneName(lane int) byte {
	return "xyzw"[lane&3]
}

// Swizzle selects a source lane for each of the four destination lanes.
type Swizzle [4]uint8

// IdentitySwizzle reads every lane from itself (.xyzw).
var IdentitySwizzle = Swizzle{0, 1, 2, 3}

// ReplicateSwizzle returns a swizzle reading lane for every destination lane.
func ReplicateSwizzle(lane int) Swizzle {
	l := uint8(lane & 3)
	return Swizzle{l, l, l, l}
}

// ParseSwizzle parses a swizzle suffix such as "xyzw", "wzyx" or "x".
// Shorter suffixes replicate their last letter, matching assembler syntax.
func ParseSwizzle(s string) (Swizzle, error) {
	if len(s) == 0 || len(s) > 4 {
		return Swizzle{}, fmt.Errorf("invalid swizzle %q", s)
	}
	var sw Swizzle
	for i := 0; i < 4; i++ {
		c := s[len(s)-1]
		if i < len(s) {
			c = s[i]
		}
		lane := laneIndex(c)
		if lane < 0 {
			return Swizzle{}, fmt.Errorf("invalid swizzle %q", s)
		}
		sw[i] = uint8(lane)
	}
	return sw, nil
}

// String returns the four swizzle letters.
func (s Swizzle) String() string {
	var b strings.Builder
	for _, lane := range s {
		b.WriteByte(LaneName(int(lane)))
	}
	return b.String()
}

// WriteMask selects destination lanes; bit i set means lane i is written.
type WriteMask uint8

// MaskAll writes all four lanes.
const MaskAll WriteMask = 0xF

// ParseWriteMask parses a destination mask suffix such as "xz".
// Letters must appear in ascending lane order.
func ParseWriteMask(s string) (WriteMask, error) {
	if len(s) == 0 || len(s) > 4 {
		return 0, fmt.Errorf("invalid write mask %q", s)
	}
	var m WriteMask
	last := -1
	for i := 0; i < len(s); i++ {
		lane := laneIndex(s[i])
		if lane <= last {
			return 0, fmt.Errorf("invalid write mask %q", s)
		}
		m |= 1 << lane
		last = lane
	}
	return m, nil
}

// Has reports whether lane is written.
func (m WriteMask) Has(lane int) bool {
	return m&(1<<lane) != 0
}

// Lanes returns the written lanes in ascending order.
func (m WriteMask) Lanes() []int {
	lanes := make([]int, 0, 4)
	for lane := 0; lane < 4; lane++ {
		if m.Has(lane) {
			lanes = append(lanes, lane)
		}
	}
	return lanes
}

// String returns the mask letters, e.g. "xyw".
func (m WriteMask) String() string {
	var b strings.Builder
	for _, lane := range m.Lanes() {
		b.WriteByte(LaneName(lane))
	}
	return b.String()
}

func laneIndex(c byte) int {
	switch c {
	case 'x', 'r':
		return 0
	case 'y', 'g':
		return 1
	case 'z', 'b':
		return 2
	case 'w', 'a':
		return 3
	default:
		return -1
	}
}

// CompareRegisterKeys orders register keys: D3D9 keys before D3D10 keys,
// then by type, number and index. It returns -1, 0 or +1.
func CompareRegisterKeys(a, b RegisterKey) int {
	ra, rb := keyRank(a), keyRank(b)
	for i := range ra {
		switch {
		case ra[i] < rb[i]:
			return -1
		case ra[i] > rb[i]:
			return 1
		}
	}
	return 0
}

func keyRank(k RegisterKey) [4]int {
	switch k := k.(type) {
	case D3D9RegisterKey:
		return [4]int{0, int(k.Type), k.Number, 0}
	case D3D10RegisterKey:
		return [4]int{1, int(k.Type), k.Number, k.Index}
	default:
		return [4]int{2, 0, 0, 0}
	}
}
