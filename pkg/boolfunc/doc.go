// Package boolfunc provides an immutable Boolean function value used to
// describe the behavior of gate output pins and of whole gate subgraphs.
//
// # Overview
//
// A Function is an expression tree over named variables built from the
// operators NOT, AND, OR and XOR plus the constants 0 and 1. Functions are
// single-bit unless they are bare multi-bit variables (see Vector); index
// nodes select one bit of such a vector.
//
// Functions are created by parsing:
//
//	f, err := boolfunc.Parse("(A & B) | !C")
//
// or programmatically:
//
//	f := boolfunc.Or(boolfunc.And(boolfunc.Var("A"), boolfunc.Var("B")),
//		boolfunc.Var("C").Not())
//
// # Queries
//
// The netlist tooling only depends on a small query surface: IsEmpty,
// IsConstant, IsVariable, IsIndex, TopLevelNode, Parameters, VariableNames,
// Substitute and the string renderings handed to external tools.
//
// # Operator Precedence
//
// The parser binds, from strongest to weakest: NOT ("!" or "~"), AND ("&"),
// XOR ("^"), OR ("|").
package boolfunc
