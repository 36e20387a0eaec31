// Package sexp provides a small streaming S-expression reader for gate
// library files.
package sexp

import (
	"fmt"
	"io"
	"strings"
)

// Node is either an *Atom or a *List.
type Node interface {
	// Line returns the source line the node starts on.
	Line() int
	String() string
}

// Atom is a bare or quoted symbol.
type Atom struct {
	Value  string
	Quoted bool
	line   int
}

func (a *Atom) Line() int { return a.line }

func (a *Atom) String() string {
	if a.Quoted {
		return `"` + strings.ReplaceAll(a.Value, `"`, `\"`) + `"`
	}
	return a.Value
}

// List is a parenthesised sequence of nodes.
type List struct {
	Items []Node
	line  int
}

func (l *List) Line() int { return l.line }

func (l *List) String() string {
	parts := make([]string, len(l.Items))
	for i, item := range l.Items {
		parts[i] = item.String()
	}
	return "(" + strings.Join(parts, " ") + ")"
}

// Head returns the first element when it is an atom, otherwise "".
func (l *List) Head() string {
	if len(l.Items) == 0 {
		return ""
	}
	if a, ok := l.Items[0].(*Atom); ok {
		return a.Value
	}
	return ""
}

// Args returns every element after the head.
func (l *List) Args() []Node {
	if len(l.Items) <= 1 {
		return nil
	}
	return l.Items[1:]
}

// Find returns the first child list whose head is key.
func (l *List) Find(key string) (*List, bool) {
	for _, item := range l.Items {
		if sub, ok := item.(*List); ok && sub.Head() == key {
			return sub, true
		}
	}
	return nil, false
}

// FindAll returns all child lists whose head is key, in order.
func (l *List) FindAll(key string) []*List {
	var out []*List
	for _, item := range l.Items {
		if sub, ok := item.(*List); ok && sub.Head() == key {
			out = append(out, sub)
		}
	}
	return out
}

// Atom returns the atom value at index i (0 is the head).
func (l *List) Atom(i int) (string, error) {
	if i < 0 || i >= len(l.Items) {
		return "", fmt.Errorf("sexp: line %d: (%s) has no element %d", l.line, l.Head(), i)
	}
	a, ok := l.Items[i].(*Atom)
	if !ok {
		return "", fmt.Errorf("sexp: line %d: element %d of (%s) is a list", l.line, i, l.Head())
	}
	return a.Value, nil
}

// AtomArgs returns all arguments as atom values. Nested lists are an error.
func (l *List) AtomArgs() ([]string, error) {
	args := l.Args()
	out := make([]string, 0, len(args))
	for i := range args {
		v, err := l.Atom(i + 1)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// Parse reads every top-level expression from r.
func Parse(r io.Reader) ([]Node, error) {
	return NewParser(r).ParseAll()
}

// ParseString is Parse on a string.
func ParseString(s string) ([]Node, error) {
	return Parse(strings.NewReader(s))
}
