package gatelib

import (
	"errors"
	"fmt"
)

// Error classes of the gate library. pkg/netlist re-exports them as part of
// its error taxonomy.
var (
	ErrInvalidArgument = errors.New("invalid argument")
	ErrLookup          = errors.New("lookup failure")
	ErrStructural      = errors.New("structural violation")
	ErrIO              = errors.New("i/o failure")
)

// malformed marks err as a library format error unless it already carries
// an error class.
func malformed(err error) error {
	for _, class := range []error{ErrInvalidArgument, ErrLookup, ErrStructural, ErrIO} {
		if errors.Is(err, class) {
			return err
		}
	}
	return fmt.Errorf("%w: %w", ErrStructural, err)
}
