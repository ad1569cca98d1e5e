// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package dataflow replays a decoded shader program into an expression graph.
//
// Replay is symbolic: every instruction turns the current contents of its
// source lanes into new expression nodes and rebinds its destination lanes.
// When the last instruction has run, the lanes still bound to output
// registers are the program's results, and every texkill leaves a discard
// condition.
//
// Both bytecode generations are replayed by the same algorithm through a
// per-generation view of an instruction.
//
// Control flow is not modelled; flow-control instructions are skipped and
// the program is replayed as straight-line code.
package dataflow
