package boolfunc

import (
	"fmt"
	"sort"
)

// NodeType identifies the operator or operand kind at an expression node.
type NodeType int

const (
	// NodeEmpty is the root of the empty function.
	NodeEmpty NodeType = iota
	// NodeConstant is the constant 0 or 1.
	NodeConstant
	// NodeVariable is a named input.
	NodeVariable
	// NodeIndex selects a single bit of a multi-bit variable.
	NodeIndex
	// NodeNot is logical negation.
	NodeNot
	// NodeAnd is n-ary conjunction.
	NodeAnd
	// NodeOr is n-ary disjunction.
	NodeOr
	// NodeXor is n-ary exclusive or.
	NodeXor
)

func (t NodeType) String() string {
	switch t {
	case NodeEmpty:
		return "Empty"
	case NodeConstant:
		return "Constant"
	case NodeVariable:
		return "Variable"
	case NodeIndex:
		return "Index"
	case NodeNot:
		return "Not"
	case NodeAnd:
		return "And"
	case NodeOr:
		return "Or"
	case NodeXor:
		return "Xor"
	default:
		return fmt.Sprintf("NodeType(%d)", int(t))
	}
}

// IsOperation reports whether the node type is a logic operator.
func (t NodeType) IsOperation() bool {
	return t == NodeNot || t == NodeAnd || t == NodeOr || t == NodeXor
}

// Node describes the top-level node of a Function.
type Node struct {
	Type  NodeType
	Value bool   // constant value
	Name  string // variable or index base name
	Bit   int    // selected bit of an index node
	Size  int    // bit width of the node
}

type expr struct {
	typ    NodeType
	value  bool
	name   string
	bit    int
	size   int
	params []*expr
}

// Function is an immutable Boolean function. The zero value is the empty
// function, which is what failed constructions return.
type Function struct {
	e *expr
}

// Const returns the single-bit constant function.
func Const(v bool) Function {
	return Function{e: &expr{typ: NodeConstant, value: v, size: 1}}
}

// Var returns a single-bit variable.
func Var(name string) Function {
	if name == "" {
		return Function{}
	}
	return Function{e: &expr{typ: NodeVariable, name: name, size: 1}}
}

// Vector returns a variable with the given bit width.
func Vector(name string, size int) Function {
	if name == "" || size < 1 {
		return Function{}
	}
	return Function{e: &expr{typ: NodeVariable, name: name, size: size}}
}

// Slice returns bit `bit` of the vector called name.
func Slice(name string, bit int) Function {
	if name == "" || bit < 0 {
		return Function{}
	}
	return Function{e: &expr{typ: NodeIndex, name: name, bit: bit, size: 1}}
}

// Not returns the negation of f.
func (f Function) Not() Function {
	if !f.singleBit() {
		return Function{}
	}
	return Function{e: &expr{typ: NodeNot, size: 1, params: []*expr{f.e}}}
}

// And returns the conjunction of the operands.
func And(fs ...Function) Function {
	return nary(NodeAnd, fs)
}

// Or returns the disjunction of the operands.
func Or(fs ...Function) Function {
	return nary(NodeOr, fs)
}

// Xor returns the exclusive or of the operands.
func Xor(fs ...Function) Function {
	return nary(NodeXor, fs)
}

func nary(t NodeType, fs []Function) Function {
	if len(fs) == 0 {
		return Function{}
	}
	if len(fs) == 1 {
		if !fs[0].singleBit() {
			return Function{}
		}
		return fs[0]
	}
	params := make([]*expr, 0, len(fs))
	for _, f := range fs {
		if !f.singleBit() {
			return Function{}
		}
		params = append(params, f.e)
	}
	return Function{e: &expr{typ: t, size: 1, params: params}}
}

func (f Function) singleBit() bool {
	return f.e != nil && f.e.size == 1
}

// IsEmpty reports whether f is the empty function.
func (f Function) IsEmpty() bool {
	return f.e == nil
}

// IsConstant reports whether f is a constant.
func (f Function) IsConstant() bool {
	return f.e != nil && f.e.typ == NodeConstant
}

// IsConstantValue reports whether f is the constant v.
func (f Function) IsConstantValue(v bool) bool {
	return f.IsConstant() && f.e.value == v
}

// ConstantValue returns the value of a constant function. ok is false when
// f is not a constant.
func (f Function) ConstantValue() (v, ok bool) {
	if !f.IsConstant() {
		return false, false
	}
	return f.e.value, true
}

// IsVariable reports whether f is a bare variable.
func (f Function) IsVariable() bool {
	return f.e != nil && f.e.typ == NodeVariable
}

// IsIndex reports whether f is a bit selection.
func (f Function) IsIndex() bool {
	return f.e != nil && f.e.typ == NodeIndex
}

// Size returns the bit width of f, 0 for the empty function.
func (f Function) Size() int {
	if f.e == nil {
		return 0
	}
	return f.e.size
}

// TopLevelNode returns the root node of f. The empty function has a node of
// type NodeEmpty.
func (f Function) TopLevelNode() Node {
	if f.e == nil {
		return Node{Type: NodeEmpty}
	}
	return Node{
		Type:  f.e.typ,
		Value: f.e.value,
		Name:  f.e.name,
		Bit:   f.e.bit,
		Size:  f.e.size,
	}
}

// Parameters returns the operands of the top-level node.
func (f Function) Parameters() []Function {
	if f.e == nil {
		return nil
	}
	out := make([]Function, len(f.e.params))
	for i, p := range f.e.params {
		out[i] = Function{e: p}
	}
	return out
}

// VariableNames returns the sorted, unique variable names f depends on.
// Index nodes contribute their "name[bit]" form.
func (f Function) VariableNames() []string {
	seen := make(map[string]bool)
	var walk func(e *expr)
	walk = func(e *expr) {
		switch e.typ {
		case NodeVariable:
			seen[e.name] = true
		case NodeIndex:
			seen[indexName(e.name, e.bit)] = true
		}
		for _, p := range e.params {
			walk(p)
		}
	}
	if f.e != nil {
		walk(f.e)
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// NodeCount returns the number of expression nodes in f.
func (f Function) NodeCount() int {
	var count func(e *expr) int
	count = func(e *expr) int {
		n := 1
		for _, p := range e.params {
			n += count(p)
		}
		return n
	}
	if f.e == nil {
		return 0
	}
	return count(f.e)
}

// Identical reports whether f and g have the same expression tree.
func (f Function) Identical(g Function) bool {
	return identical(f.e, g.e)
}

func identical(a, b *expr) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.typ != b.typ || a.value != b.value || a.name != b.name ||
		a.bit != b.bit || a.size != b.size || len(a.params) != len(b.params) {
		return false
	}
	for i := range a.params {
		if !identical(a.params[i], b.params[i]) {
			return false
		}
	}
	return true
}

func indexName(name string, bit int) string {
	return fmt.Sprintf("%s[%d]", name, bit)
}
