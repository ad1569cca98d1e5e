// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package asm

import (
	"errors"
	"strings"
	"testing"
)

func TestSourceError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *SourceError
		expected string
	}{
		{
			name:     "with position",
			err:      &SourceError{Message: "unknown register \"q1\"", Line: 5, Column: 10},
			expected: "5:10: unknown register \"q1\"",
		},
		{
			name:     "without position",
			err:      &SourceError{Message: "missing version statement"},
			expected: "missing version statement",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.err.Error()
			if got != tt.expected {
				t.Errorf("Error() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestSourceError_FormatWithContext(t *testing.T) {
	source := "ps_3_0\nmov r0, r1\nadd r0, r0, q2\nmov oC0, r0"

	_, err := Parse(source)
	var serr *SourceError
	if !errors.As(err, &serr) {
		t.Fatalf("Parse() error = %v, want *SourceError", err)
	}

	formatted := serr.FormatWithContext()
	if !strings.Contains(formatted, "unknown register") {
		t.Error("formatted error should contain message")
	}
	if !strings.Contains(formatted, "line 3:13") {
		t.Errorf("formatted error should contain line:column, got:\n%s", formatted)
	}
	if !strings.Contains(formatted, "add r0, r0, q2") {
		t.Error("formatted error should contain source line")
	}
	if !strings.Contains(formatted, "^") {
		t.Error("formatted error should contain caret pointer")
	}
}

func TestSourceError_FormatWithContext_NoSource(t *testing.T) {
	err := &SourceError{Message: "error without source", Line: 1, Column: 1}

	formatted := err.FormatWithContext()
	if formatted != "1:1: error without source" {
		t.Errorf("expected simple format without source, got: %q", formatted)
	}
}

func TestNewSourceErrorf(t *testing.T) {
	err := newSourceErrorf(5, 3, "source code", "unknown instruction %q", "frob")

	if err.Message != `unknown instruction "frob"` {
		t.Errorf("expected formatted message, got: %q", err.Message)
	}
	if err.Line != 5 || err.Column != 3 {
		t.Errorf("expected 5:3, got %d:%d", err.Line, err.Column)
	}
}
