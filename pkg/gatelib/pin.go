package gatelib

import (
	"fmt"
	"strings"
)

// PinDirection is the signal direction of a pin.
type PinDirection int

const (
	DirectionNone PinDirection = iota
	DirectionInput
	DirectionOutput
	DirectionInout
	DirectionInternal
)

var directionNames = map[PinDirection]string{
	DirectionNone:     "none",
	DirectionInput:    "input",
	DirectionOutput:   "output",
	DirectionInout:    "inout",
	DirectionInternal: "internal",
}

func (d PinDirection) String() string {
	if s, ok := directionNames[d]; ok {
		return s
	}
	return fmt.Sprintf("PinDirection(%d)", int(d))
}

// IsInput reports whether the pin receives a signal (input or inout).
func (d PinDirection) IsInput() bool {
	return d == DirectionInput || d == DirectionInout
}

// IsOutput reports whether the pin drives a signal (output or inout).
func (d PinDirection) IsOutput() bool {
	return d == DirectionOutput || d == DirectionInout
}

// ParsePinDirection converts a direction name.
func ParsePinDirection(s string) (PinDirection, error) {
	for d, name := range directionNames {
		if strings.EqualFold(name, s) {
			return d, nil
		}
	}
	return DirectionNone, fmt.Errorf("gatelib: %w: unknown pin direction %q", ErrInvalidArgument, s)
}

// PinType is the semantic role of a pin.
type PinType int

const (
	PinNone PinType = iota
	PinPower
	PinGround
	PinLUT
	PinState
	PinNegState
	PinClock
	PinEnable
	PinSet
	PinReset
	PinData
	PinAddress
	PinIOPad
	PinSelect
	PinCarry
	PinSum
)

var pinTypeNames = map[PinType]string{
	PinNone:     "none",
	PinPower:    "power",
	PinGround:   "ground",
	PinLUT:      "lut",
	PinState:    "state",
	PinNegState: "neg_state",
	PinClock:    "clock",
	PinEnable:   "enable",
	PinSet:      "set",
	PinReset:    "reset",
	PinData:     "data",
	PinAddress:  "address",
	PinIOPad:    "io_pad",
	PinSelect:   "select",
	PinCarry:    "carry",
	PinSum:      "sum",
}

func (t PinType) String() string {
	if s, ok := pinTypeNames[t]; ok {
		return s
	}
	return fmt.Sprintf("PinType(%d)", int(t))
}

// ParsePinType converts a pin type name.
func ParsePinType(s string) (PinType, error) {
	for t, name := range pinTypeNames {
		if strings.EqualFold(name, s) {
			return t, nil
		}
	}
	return PinNone, fmt.Errorf("gatelib: %w: unknown pin type %q", ErrInvalidArgument, s)
}

// Pin is a pin of a gate type. Group and Index describe bus membership; a
// pin without a group has Group == "".
type Pin struct {
	Name      string
	Direction PinDirection
	Type      PinType
	Group     string
	Index     int
}

func (p Pin) String() string {
	return fmt.Sprintf("%s(%s,%s)", p.Name, p.Direction, p.Type)
}
