package boolfunc

import (
	"fmt"
	"sort"
)

// MaxTruthTableVariables bounds truth-table based queries.
const MaxTruthTableVariables = 20

// Evaluate computes f under the given assignment. Every variable of f must be
// assigned.
func (f Function) Evaluate(assignment map[string]bool) (bool, error) {
	if f.e == nil {
		return false, fmt.Errorf("boolfunc: cannot evaluate empty function")
	}
	if f.e.size != 1 {
		return false, fmt.Errorf("boolfunc: cannot evaluate %d-bit function", f.e.size)
	}
	return eval(f.e, assignment)
}

func eval(e *expr, assignment map[string]bool) (bool, error) {
	switch e.typ {
	case NodeConstant:
		return e.value, nil

	case NodeVariable, NodeIndex:
		name := e.name
		if e.typ == NodeIndex {
			name = indexName(e.name, e.bit)
		}
		v, ok := assignment[name]
		if !ok {
			return false, fmt.Errorf("boolfunc: variable %q not assigned", name)
		}
		return v, nil

	case NodeNot:
		v, err := eval(e.params[0], assignment)
		return !v, err

	case NodeAnd, NodeOr, NodeXor:
		var acc bool
		for i, p := range e.params {
			v, err := eval(p, assignment)
			if err != nil {
				return false, err
			}
			if i == 0 {
				acc = v
				continue
			}
			switch e.typ {
			case NodeAnd:
				acc = acc && v
			case NodeOr:
				acc = acc || v
			default:
				acc = acc != v
			}
		}
		return acc, nil
	}
	return false, fmt.Errorf("boolfunc: unknown node type %v", e.typ)
}

// TruthTable evaluates f for every assignment of vars. Row r assigns
// vars[k] the value of bit k of r. Variables of f missing from vars are an
// error.
func (f Function) TruthTable(vars []string) ([]bool, error) {
	if len(vars) > MaxTruthTableVariables {
		return nil, fmt.Errorf("boolfunc: %d variables exceed truth table limit %d",
			len(vars), MaxTruthTableVariables)
	}
	rows := 1 << uint(len(vars))
	table := make([]bool, rows)
	assignment := make(map[string]bool, len(vars))
	for r := 0; r < rows; r++ {
		for k, name := range vars {
			assignment[name] = r&(1<<uint(k)) != 0
		}
		v, err := f.Evaluate(assignment)
		if err != nil {
			return nil, err
		}
		table[r] = v
	}
	return table, nil
}

// Equivalent reports whether f and g have identical truth tables over the
// union of their variables.
func (f Function) Equivalent(g Function) (bool, error) {
	if f.IsEmpty() || g.IsEmpty() {
		return false, fmt.Errorf("boolfunc: cannot compare empty functions")
	}
	vars := unionNames(f.VariableNames(), g.VariableNames())
	ft, err := f.TruthTable(vars)
	if err != nil {
		return false, err
	}
	gt, err := g.TruthTable(vars)
	if err != nil {
		return false, err
	}
	for i := range ft {
		if ft[i] != gt[i] {
			return false, nil
		}
	}
	return true, nil
}

func unionNames(a, b []string) []string {
	seen := make(map[string]bool, len(a)+len(b))
	var out []string
	for _, list := range [][]string{a, b} {
		for _, n := range list {
			if !seen[n] {
				seen[n] = true
				out = append(out, n)
			}
		}
	}
	sort.Strings(out)
	return out
}
