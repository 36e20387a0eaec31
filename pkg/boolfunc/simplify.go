package boolfunc

// Simplify applies local rewrite rules until none matches: constant folding,
// double negation, flattening of nested n-ary operators, idempotence,
// complementation and XOR pair cancellation. The result is equivalent to f.
func (f Function) Simplify() Function {
	if f.e == nil {
		return f
	}
	return Function{e: simplify(f.e)}
}

func simplify(e *expr) *expr {
	switch e.typ {
	case NodeConstant, NodeVariable, NodeIndex:
		return e

	case NodeNot:
		p := simplify(e.params[0])
		switch p.typ {
		case NodeConstant:
			return constExpr(!p.value)
		case NodeNot:
			return p.params[0]
		}
		return &expr{typ: NodeNot, size: 1, params: []*expr{p}}

	case NodeAnd, NodeOr:
		return simplifyAndOr(e)

	case NodeXor:
		return simplifyXor(e)
	}
	return e
}

func simplifyAndOr(e *expr) *expr {
	// For AND the absorbing constant is 0, for OR it is 1.
	absorbing := e.typ == NodeOr

	var params []*expr
	for _, p := range flatten(e) {
		p = simplify(p)
		if p.typ == e.typ {
			params = append(params, p.params...)
			continue
		}
		if p.typ == NodeConstant {
			if p.value == absorbing {
				return constExpr(absorbing)
			}
			continue
		}
		if containsExpr(params, p) {
			continue
		}
		params = append(params, p)
	}
	for _, p := range params {
		if p.typ == NodeNot && containsExpr(params, p.params[0]) {
			return constExpr(absorbing)
		}
	}
	switch len(params) {
	case 0:
		return constExpr(!absorbing)
	case 1:
		return params[0]
	}
	return &expr{typ: e.typ, size: 1, params: params}
}

func simplifyXor(e *expr) *expr {
	parity := false
	var params []*expr
	for _, p := range flatten(e) {
		p = simplify(p)
		var items []*expr
		if p.typ == NodeXor {
			items = p.params
		} else {
			items = []*expr{p}
		}
		for _, item := range items {
			if item.typ == NodeConstant {
				parity = parity != item.value
				continue
			}
			if idx := indexExpr(params, item); idx >= 0 {
				params = append(params[:idx], params[idx+1:]...)
				continue
			}
			params = append(params, item)
		}
	}

	var result *expr
	switch len(params) {
	case 0:
		return constExpr(parity)
	case 1:
		result = params[0]
	default:
		result = &expr{typ: NodeXor, size: 1, params: params}
	}
	if parity {
		return simplify(&expr{typ: NodeNot, size: 1, params: []*expr{result}})
	}
	return result
}

func flatten(e *expr) []*expr {
	var out []*expr
	for _, p := range e.params {
		if p.typ == e.typ {
			out = append(out, flatten(p)...)
		} else {
			out = append(out, p)
		}
	}
	return out
}

func containsExpr(list []*expr, e *expr) bool {
	return indexExpr(list, e) >= 0
}

func indexExpr(list []*expr, e *expr) int {
	for i, p := range list {
		if identical(p, e) {
			return i
		}
	}
	return -1
}

func constExpr(v bool) *expr {
	return &expr{typ: NodeConstant, value: v, size: 1}
}
