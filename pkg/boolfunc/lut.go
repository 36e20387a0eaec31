package boolfunc

import (
	"fmt"
	"math/big"
	"strings"
)

// FromLUT builds the sum-of-minterms function of a lookup table. init is the
// hexadecimal configuration string; bit i of init is the output for input
// combination i. With ascending set, inputs[0] is the least significant
// address bit, otherwise inputs[len-1] is.
func FromLUT(init string, inputs []string, ascending bool) (Function, error) {
	if len(inputs) == 0 {
		return Function{}, fmt.Errorf("boolfunc: LUT without inputs")
	}
	if len(inputs) > MaxTruthTableVariables {
		return Function{}, fmt.Errorf("boolfunc: LUT with %d inputs too large", len(inputs))
	}
	cleaned := strings.TrimPrefix(strings.TrimPrefix(strings.TrimSpace(init), "0x"), "0X")
	if cleaned == "" {
		return Function{}, fmt.Errorf("boolfunc: empty LUT configuration")
	}
	value, ok := new(big.Int).SetString(cleaned, 16)
	if !ok {
		return Function{}, fmt.Errorf("boolfunc: invalid LUT configuration %q", init)
	}

	rows := 1 << uint(len(inputs))
	if value.BitLen() > rows {
		return Function{}, fmt.Errorf("boolfunc: LUT configuration %q exceeds %d entries",
			init, rows)
	}

	var minterms []Function
	for r := 0; r < rows; r++ {
		if value.Bit(r) == 0 {
			continue
		}
		literals := make([]Function, len(inputs))
		for k := range inputs {
			name := inputs[k]
			if !ascending {
				name = inputs[len(inputs)-1-k]
			}
			if r&(1<<uint(k)) != 0 {
				literals[k] = Var(name)
			} else {
				literals[k] = Var(name).Not()
			}
		}
		minterms = append(minterms, And(literals...))
	}

	switch len(minterms) {
	case 0:
		return Const(false), nil
	case rows:
		return Const(true), nil
	}
	return Or(minterms...), nil
}
