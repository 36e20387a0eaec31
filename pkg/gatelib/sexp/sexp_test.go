package sexp

import (
	"testing"
)

func parseOne(t *testing.T, input string) *List {
	t.Helper()
	nodes, err := ParseString(input)
	if err != nil {
		t.Fatalf("ParseString(%q) failed: %v", input, err)
	}
	if len(nodes) != 1 {
		t.Fatalf("ParseString(%q) returned %d nodes, want 1", input, len(nodes))
	}
	l, ok := nodes[0].(*List)
	if !ok {
		t.Fatalf("ParseString(%q) returned %T, want *List", input, nodes[0])
	}
	return l
}

func TestParseNested(t *testing.T) {
	l := parseOne(t, `(gate_type AND2
  ; two input and
  (properties combinational c_and)
  (pin A input data)
  (pin B input data)
  (function O "A & B"))`)

	if l.Head() != "gate_type" {
		t.Errorf("Head() = %q", l.Head())
	}
	name, err := l.Atom(1)
	if err != nil || name != "AND2" {
		t.Errorf("Atom(1) = %q, %v", name, err)
	}
	if pins := l.FindAll("pin"); len(pins) != 2 {
		t.Errorf("FindAll(pin) returned %d lists, want 2", len(pins))
	}
	fn, ok := l.Find("function")
	if !ok {
		t.Fatal("function list not found")
	}
	args, err := fn.AtomArgs()
	if err != nil {
		t.Fatalf("AtomArgs failed: %v", err)
	}
	if len(args) != 2 || args[1] != "A & B" {
		t.Errorf("function args = %q", args)
	}
	if fn.Line() != 6 {
		t.Errorf("function line = %d, want 6", fn.Line())
	}
	if _, ok := l.Find("missing"); ok {
		t.Error("Find(missing) unexpectedly succeeded")
	}
}

func TestParseStringEscapes(t *testing.T) {
	l := parseOne(t, `(doc "say \"hi\"\n")`)
	v, err := l.Atom(1)
	if err != nil {
		t.Fatalf("Atom failed: %v", err)
	}
	if v != "say \"hi\"\n" {
		t.Errorf("Atom(1) = %q", v)
	}
	if got := l.String(); got != `(doc "say \"hi\"`+"\n"+`")` {
		t.Errorf("String() = %q", got)
	}
}

func TestParseErrors(t *testing.T) {
	inputs := []string{
		"(a (b c)",
		")",
		`(a "open)`,
	}
	for _, input := range inputs {
		if _, err := ParseString(input); err == nil {
			t.Errorf("ParseString(%q) succeeded, expected error", input)
		}
	}
}

func TestAtomErrors(t *testing.T) {
	l := parseOne(t, "(a (b) c)")
	if _, err := l.Atom(1); err == nil {
		t.Error("Atom on nested list should fail")
	}
	if _, err := l.Atom(5); err == nil {
		t.Error("Atom out of range should fail")
	}
	if _, err := l.AtomArgs(); err == nil {
		t.Error("AtomArgs with nested list should fail")
	}
}

func TestParseMultipleTopLevel(t *testing.T) {
	nodes, err := ParseString("# header\n(a) (b) atom")
	if err != nil {
		t.Fatalf("ParseString failed: %v", err)
	}
	if len(nodes) != 3 {
		t.Fatalf("got %d nodes, want 3", len(nodes))
	}
	if a, ok := nodes[2].(*Atom); !ok || a.Value != "atom" {
		t.Errorf("third node = %v", nodes[2])
	}
}
