package boolfunc

import (
	"fmt"
	"strings"
)

type syntax struct {
	not      string
	and      string
	or       string
	xor      string
	zero     string
	one      string
	variable func(name string) string
	// expandXor rewrites XOR into AND/OR/NOT for formats without it.
	expandXor bool
}

var (
	defaultSyntax = syntax{
		not: "!", and: " & ", or: " | ", xor: " ^ ",
		zero: "0", one: "1",
		variable: func(name string) string { return name },
	}
	verilogSyntax = syntax{
		not: "~", and: " & ", or: " | ", xor: " ^ ",
		zero: "1'b0", one: "1'b1",
		variable: VerilogIdent,
	}
	genlibSyntax = syntax{
		not: "!", and: "*", or: "+",
		zero: "CONST0", one: "CONST1",
		variable:  func(name string) string { return name },
		expandXor: true,
	}
)

// String renders f with the operators accepted by Parse.
func (f Function) String() string {
	if f.e == nil {
		return "<empty>"
	}
	return render(f.e, &defaultSyntax)
}

// Verilog renders f as a Verilog continuous-assignment expression.
func (f Function) Verilog() string {
	if f.e == nil {
		return ""
	}
	return render(f.e, &verilogSyntax)
}

// Genlib renders f in the equation syntax of genlib cell libraries.
func (f Function) Genlib() string {
	if f.e == nil {
		return ""
	}
	return render(f.e, &genlibSyntax)
}

func render(e *expr, s *syntax) string {
	switch e.typ {
	case NodeConstant:
		if e.value {
			return s.one
		}
		return s.zero
	case NodeVariable:
		return s.variable(e.name)
	case NodeIndex:
		if s == &verilogSyntax {
			return fmt.Sprintf("%s[%d]", VerilogIdent(e.name), e.bit)
		}
		return s.variable(indexName(e.name, e.bit))
	case NodeNot:
		return s.not + operand(e.params[0], s)
	case NodeXor:
		if s.expandXor {
			return render(expandXor(e.params), s)
		}
	}

	var sep string
	switch e.typ {
	case NodeAnd:
		sep = s.and
	case NodeOr:
		sep = s.or
	default:
		sep = s.xor
	}
	parts := make([]string, len(e.params))
	for i, p := range e.params {
		parts[i] = operand(p, s)
	}
	return strings.Join(parts, sep)
}

func operand(e *expr, s *syntax) string {
	if len(e.params) > 1 || (e.typ == NodeXor && s.expandXor) {
		return "(" + render(e, s) + ")"
	}
	return render(e, s)
}

// expandXor rewrites a ^ b ^ ... as nested (a & !b) | (!a & b).
func expandXor(params []*expr) *expr {
	acc := params[0]
	for _, p := range params[1:] {
		left := &expr{typ: NodeAnd, size: 1, params: []*expr{
			acc, {typ: NodeNot, size: 1, params: []*expr{p}},
		}}
		right := &expr{typ: NodeAnd, size: 1, params: []*expr{
			{typ: NodeNot, size: 1, params: []*expr{acc}}, p,
		}}
		acc = &expr{typ: NodeOr, size: 1, params: []*expr{left, right}}
	}
	return acc
}

// VerilogIdent returns name as a legal Verilog identifier, escaping it when
// it contains characters outside [A-Za-z0-9_$] or starts with a digit.
func VerilogIdent(name string) string {
	if strings.HasPrefix(name, `\`) {
		return name + " "
	}
	for i, r := range name {
		ok := r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') ||
			(i > 0 && (r == '$' || (r >= '0' && r <= '9')))
		if !ok {
			return `\` + name + " "
		}
	}
	return name
}
