package netlist

import (
	"errors"
	"fmt"

	"github.com/OpenTraceLab/OpenTraceNetlist/pkg/gatelib"
)

// Error classes. Every error returned by this module wraps exactly one of
// them; test with errors.Is. All but ErrExternalTool are shared with the
// gate library.
var (
	ErrInvalidArgument = gatelib.ErrInvalidArgument
	ErrLookup          = gatelib.ErrLookup
	ErrStructural      = gatelib.ErrStructural
	ErrExternalTool    = errors.New("external tool failure")
	ErrIO              = gatelib.ErrIO
)

// PartialError reports a multi-step operation that failed after it had
// already changed the netlist. Stage names the step that failed; the steps
// before it were applied and are not rolled back.
type PartialError struct {
	Op    string
	Stage string
	Err   error
}

func (e *PartialError) Error() string {
	return fmt.Sprintf("%s: partially applied, failed at %s: %v", e.Op, e.Stage, e.Err)
}

func (e *PartialError) Unwrap() error {
	return e.Err
}

// IsPartial reports whether err records a partially applied operation.
func IsPartial(err error) bool {
	var pe *PartialError
	return errors.As(err, &pe)
}
