// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package dataflow

import (
	"fmt"

	"github.com/gogpu/hlsldec/bytecode"
)

// ErrorKind categorizes dataflow errors.
type ErrorKind uint8

const (
	// ErrUnsupportedInstruction indicates an opcode outside the supported table.
	ErrUnsupportedInstruction ErrorKind = iota

	// ErrInvalidRegisterReference indicates a lane read before any write reached it.
	ErrInvalidRegisterReference

	// ErrUnsupportedModifier indicates a source modifier that has no expression form.
	ErrUnsupportedModifier

	// ErrUnknownSampler indicates a texture sample through an undeclared sampler.
	ErrUnknownSampler

	// ErrInvalidProgram indicates malformed program or reflection data.
	ErrInvalidProgram
)

// String returns a human-readable error kind name.
func (k ErrorKind) String() string {
	switch k {
	case ErrUnsupportedInstruction:
		return "UnsupportedInstruction"
	case ErrInvalidRegisterReference:
		return "InvalidRegisterReference"
	case ErrUnsupportedModifier:
		return "UnsupportedModifier"
	case ErrUnknownSampler:
		return "UnknownSampler"
	case ErrInvalidProgram:
		return "InvalidProgram"
	default:
		return "Unknown"
	}
}

// Error represents a dataflow error.
type Error struct {
	// Kind categorizes the error.
	Kind ErrorKind

	// Message provides details about the error.
	Message string

	// Opcode is the mnemonic of the offending instruction, if known.
	Opcode string

	// Register is the offending register lane, if any.
	Register *bytecode.RegisterComponentKey
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Opcode != "" {
		return fmt.Sprintf("dataflow %s (%s): %s", e.Kind, e.Opcode, e.Message)
	}
	return fmt.Sprintf("dataflow %s: %s", e.Kind, e.Message)
}

// NewError creates a new dataflow error.
func NewError(kind ErrorKind, message string) *Error {
	return &Error{
		Kind:    kind,
		Message: message,
	}
}

// IsUnsupportedInstruction returns true if the error is ErrUnsupportedInstruction.
func (e *Error) IsUnsupportedInstruction() bool {
	return e.Kind == ErrUnsupportedInstruction
}

// IsInvalidRegisterReference returns true if the error is ErrInvalidRegisterReference.
func (e *Error) IsInvalidRegisterReference() bool {
	return e.Kind == ErrInvalidRegisterReference
}

func unsupportedInstruction(mnemonic string) *Error {
	return &Error{
		Kind:    ErrUnsupportedInstruction,
		Message: fmt.Sprintf("instruction %q is not supported", mnemonic),
		Opcode:  mnemonic,
	}
}

func invalidRegisterReference(key bytecode.RegisterComponentKey) *Error {
	return &Error{
		Kind:     ErrInvalidRegisterReference,
		Message:  fmt.Sprintf("%s is read before it is written", key),
		Register: &key,
	}
}
