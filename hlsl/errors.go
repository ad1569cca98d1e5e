// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package hlsl

import "fmt"

// ErrorKind categorizes HLSL compilation errors.
type ErrorKind uint8

const (
	// ErrUnrecognizedNodeShape indicates a node group no rendering rule covers.
	ErrUnrecognizedNodeShape ErrorKind = iota

	// ErrInvalidGroup indicates an empty or oversized lane group.
	ErrInvalidGroup

	// ErrInternalError indicates an internal compiler error.
	ErrInternalError

	// ErrUnsupportedFeature indicates an instruction the program's shader
	// model cannot encode.
	ErrUnsupportedFeature
)

// String returns a human-readable error kind name.
func (k ErrorKind) String() string {
	switch k {
	case ErrUnrecognizedNodeShape:
		return "UnrecognizedNodeShape"
	case ErrInvalidGroup:
		return "InvalidGroup"
	case ErrInternalError:
		return "InternalError"
	case ErrUnsupportedFeature:
		return "UnsupportedFeature"
	default:
		return "Unknown"
	}
}

// Error represents an HLSL compilation error.
type Error struct {
	// Kind categorizes the error.
	Kind ErrorKind

	// Message provides details about the error.
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("hlsl %s: %s", e.Kind, e.Message)
}

// NewError creates a new HLSL error.
func NewError(kind ErrorKind, message string) *Error {
	return &Error{
		Kind:    kind,
		Message: message,
	}
}

// IsUnrecognizedNodeShape returns true if the error is ErrUnrecognizedNodeShape.
func (e *Error) IsUnrecognizedNodeShape() bool {
	return e.Kind == ErrUnrecognizedNodeShape
}

// IsInternalError returns true if the error is ErrInternalError.
func (e *Error) IsInternalError() bool {
	return e.Kind == ErrInternalError
}
