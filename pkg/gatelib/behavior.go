package gatelib

// Behavior is the base behaviour of a gate type. It is one of
// CombinationalBehavior, LUT or SequentialBehavior.
type Behavior interface {
	behavior()
	Kind() string
}

// CombinationalBehavior gate types compute their outputs from the per-pin functions
// of the gate type.
type CombinationalBehavior struct{}

// LUT gate types compute their output from a configuration string stored in
// the data container of each gate under (Category, Key). With Ascending set,
// the first input pin is the least significant address bit.
type LUT struct {
	Category  string
	Key       string
	Ascending bool
}

// SequentialBehavior gate types hold state. The fields name functions over the input
// pins of the gate type; empty strings mean the feature is absent.
type SequentialBehavior struct {
	Clock     string
	NextState string
	Set       string
	Reset     string
}

func (CombinationalBehavior) behavior() {}
func (LUT) behavior()                   {}
func (SequentialBehavior) behavior()    {}

func (CombinationalBehavior) Kind() string { return "combinational" }
func (LUT) Kind() string                   { return "lut" }
func (SequentialBehavior) Kind() string    { return "sequential" }
