// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package asm

import (
	"github.com/alecthomas/participle"
	"github.com/alecthomas/participle/lexer"
)

// Comments and horizontal whitespace are unnamed groups and never reach
// the parser. Newlines end statements.
const lexerRegex = `(//[^\n]*)|` +
	`(?P<EOL>\n)|` +
	`([ \t\r]+)|` +
	`(?P<Float>\d+\.\d*(?:[eE][-+]?\d+)?|\.\d+(?:[eE][-+]?\d+)?|\d+[eE][-+]?\d+)|` +
	`(?P<Int>0[xX][0-9a-fA-F]+|\d+)|` +
	`(?P<Ident>[a-zA-Z_$][a-zA-Z0-9_]*)|` +
	`(?P<Punct>[-+,.|\[\]()])`

type listing struct {
	Lines []*statement `{ @@ }`
}

// statement is one line: a mnemonic with operands, or nothing.
type statement struct {
	Pos lexer.Position

	Mnemonic string     `[ @Ident`
	Operands []*operand `  { @@ [ "," ] } ] EOL`
}

type operand struct {
	Pos lexer.Position

	Negate bool       `[ @"-" ]`
	Abs    *reference `( "|" @@ "|"`
	Ref    *reference `| @@`
	Number *string    `| @( Float | Int )`
	Group  []string   `| "(" @Ident { "," @Ident } ")" )`
}

// reference names a register: r0.xyz, cb0[3].x, l(1.0, 0, 0, 0).
type reference struct {
	Name      string     `@Ident`
	Index     *string    `[ "[" @Int "]" ]`
	Immediate []*literal `[ "(" @@ { "," @@ } ")" ]`
	Suffix    string     `[ "." @Ident ]`
}

type literal struct {
	Value string `@( [ "-" ] ( Float | Int ) )`
}

var listingParser = participle.MustBuild(
	&listing{},
	participle.Lexer(lexer.Must(lexer.Regexp(lexerRegex))),
)
