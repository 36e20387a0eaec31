package hdl

import "sort"

// aliases groups signal bits joined by assignments using a union-find with
// path compression and union by rank.
type aliases struct {
	parent map[string]string
	rank   map[string]int
	order  []string
}

func newAliases() *aliases {
	return &aliases{
		parent: make(map[string]string),
		rank:   make(map[string]int),
	}
}

// add registers bit as its own set when it is new.
func (a *aliases) add(bit string) {
	if _, ok := a.parent[bit]; ok {
		return
	}
	a.parent[bit] = bit
	a.rank[bit] = 0
	a.order = append(a.order, bit)
}

// connect merges the sets of x and y.
func (a *aliases) connect(x, y string) {
	a.add(x)
	a.add(y)
	rx, ry := a.find(x), a.find(y)
	if rx == ry {
		return
	}
	switch {
	case a.rank[rx] < a.rank[ry]:
		a.parent[rx] = ry
	case a.rank[rx] > a.rank[ry]:
		a.parent[ry] = rx
	default:
		a.parent[ry] = rx
		a.rank[rx]++
	}
}

// find returns the representative of the set holding bit.
func (a *aliases) find(bit string) string {
	a.add(bit)
	root := bit
	for a.parent[root] != root {
		root = a.parent[root]
	}
	for cur := bit; cur != root; {
		next := a.parent[cur]
		a.parent[cur] = root
		cur = next
	}
	return root
}

// groups returns the members of every set, keyed by representative, with
// members in registration order.
func (a *aliases) groups() map[string][]string {
	out := make(map[string][]string)
	for _, bit := range a.order {
		root := a.find(bit)
		out[root] = append(out[root], bit)
	}
	return out
}

// roots returns the representatives ordered by the registration of their
// first member.
func (a *aliases) roots() []string {
	first := make(map[string]int)
	for i, bit := range a.order {
		root := a.find(bit)
		if _, ok := first[root]; !ok {
			first[root] = i
		}
	}
	out := make([]string, 0, len(first))
	for root := range first {
		out = append(out, root)
	}
	sort.Slice(out, func(i, j int) bool { return first[out[i]] < first[out[j]] })
	return out
}
