package boolfunc

import "fmt"

// Substitute replaces every occurrence of variable name with g.
func (f Function) Substitute(name string, g Function) (Function, error) {
	return f.SubstituteAll(map[string]Function{name: g})
}

// SubstituteAll replaces variables simultaneously, so a replacement that
// mentions another substituted name is not rewritten again.
func (f Function) SubstituteAll(repl map[string]Function) (Function, error) {
	if f.e == nil {
		return Function{}, fmt.Errorf("boolfunc: cannot substitute in empty function")
	}
	for name, g := range repl {
		if g.IsEmpty() {
			return Function{}, fmt.Errorf("boolfunc: empty replacement for %q", name)
		}
	}
	e, err := substitute(f.e, repl)
	if err != nil {
		return Function{}, err
	}
	return Function{e: e}, nil
}

// RenameVariables substitutes variables by variables.
func (f Function) RenameVariables(names map[string]string) (Function, error) {
	repl := make(map[string]Function, len(names))
	for from, to := range names {
		repl[from] = Var(to)
	}
	return f.SubstituteAll(repl)
}

func substitute(e *expr, repl map[string]Function) (*expr, error) {
	switch e.typ {
	case NodeVariable:
		if g, ok := repl[e.name]; ok {
			if g.e.size != e.size {
				return nil, fmt.Errorf("boolfunc: size mismatch substituting %q", e.name)
			}
			return g.e, nil
		}
		return e, nil
	case NodeIndex:
		if g, ok := repl[indexName(e.name, e.bit)]; ok {
			if g.e.size != 1 {
				return nil, fmt.Errorf("boolfunc: size mismatch substituting %q",
					indexName(e.name, e.bit))
			}
			return g.e, nil
		}
		return e, nil
	case NodeConstant:
		return e, nil
	}

	params := make([]*expr, len(e.params))
	changed := false
	for i, p := range e.params {
		np, err := substitute(p, repl)
		if err != nil {
			return nil, err
		}
		params[i] = np
		changed = changed || np != p
	}
	if !changed {
		return e, nil
	}
	return &expr{typ: e.typ, size: e.size, params: params}, nil
}
