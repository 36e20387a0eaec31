package boolfunc

import (
	"strings"
	"testing"
)

func TestParsePrecedence(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"A", "A"},
		{"!A", "!A"},
		{"~A", "!A"},
		{"A & B | C", "(A & B) | C"},
		{"A | B & C", "A | (B & C)"},
		{"A ^ B & C", "A ^ (B & C)"},
		{"A | B ^ C", "A | (B ^ C)"},
		{"!(A | B)", "!(A | B)"},
		{"(A & B) & C", "(A & B) & C"},
		{"A & B & C", "A & B & C"},
		{"bus[3] & en", "bus[3] & en"},
		{"0 | 1", "0 | 1"},
		{"0b1 & x", "1 & x"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			f, err := Parse(tt.input)
			if err != nil {
				t.Fatalf("Parse(%q) failed: %v", tt.input, err)
			}
			if got := f.String(); got != tt.want {
				t.Errorf("Parse(%q).String() = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseErrors(t *testing.T) {
	inputs := []string{
		"",
		"   ",
		"A &",
		"(A | B",
		"A B",
		"2",
		"A[",
	}
	for _, input := range inputs {
		if _, err := Parse(input); err == nil {
			t.Errorf("Parse(%q) succeeded, expected error", input)
		} else if !strings.HasPrefix(err.Error(), "boolfunc:") {
			t.Errorf("Parse(%q) error %q lacks package prefix", input, err)
		}
	}
}

func TestParseHierarchicalNames(t *testing.T) {
	f, err := Parse("u1/core.q_reg & net_12")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	names := f.VariableNames()
	if len(names) != 2 || names[0] != "net_12" || names[1] != "u1/core.q_reg" {
		t.Errorf("VariableNames() = %v", names)
	}
}

func TestParseRoundTripEquivalence(t *testing.T) {
	inputs := []string{
		"(A & !B) | (C ^ D)",
		"!(!A | B) & C",
		"A ^ B ^ C ^ D",
	}
	for _, input := range inputs {
		f := MustParse(input)
		g, err := Parse(f.String())
		if err != nil {
			t.Fatalf("reparse of %q failed: %v", f.String(), err)
		}
		eq, err := f.Equivalent(g)
		if err != nil {
			t.Fatalf("Equivalent failed: %v", err)
		}
		if !eq {
			t.Errorf("%q not equivalent to reparsed %q", input, g)
		}
	}
}
