package gatelib

import "fmt"

// Names of the gate types in the built-in primitive library.
const (
	TypeGND   = "GND"
	TypeVCC   = "VCC"
	TypeBUF   = "BUF"
	TypeINV   = "INV"
	TypeAND2  = "AND2"
	TypeOR2   = "OR2"
	TypeXOR2  = "XOR2"
	TypeNAND2 = "NAND2"
	TypeNOR2  = "NOR2"
	TypeXNOR2 = "XNOR2"
	TypeAND3  = "AND3"
	TypeMUX2  = "MUX2"
	TypeLUT4  = "LUT4"
	TypeDFF   = "DFF"
)

type primitive struct {
	name   string
	props  []Property
	inputs []string
	output string
	expr   string
}

var combinationalPrimitives = []primitive{
	{TypeGND, []Property{Combinational, Ground}, nil, "O", "0"},
	{TypeVCC, []Property{Combinational, Power}, nil, "O", "1"},
	{TypeBUF, []Property{Combinational, CBuffer}, []string{"I"}, "O", "I"},
	{TypeINV, []Property{Combinational, CInverter}, []string{"I"}, "O", "!I"},
	{TypeAND2, []Property{Combinational, CAnd}, []string{"I0", "I1"}, "O", "I0 & I1"},
	{TypeOR2, []Property{Combinational, COr}, []string{"I0", "I1"}, "O", "I0 | I1"},
	{TypeXOR2, []Property{Combinational, CXor}, []string{"I0", "I1"}, "O", "I0 ^ I1"},
	{TypeNAND2, []Property{Combinational, CNand}, []string{"I0", "I1"}, "O", "!(I0 & I1)"},
	{TypeNOR2, []Property{Combinational, CNor}, []string{"I0", "I1"}, "O", "!(I0 | I1)"},
	{TypeXNOR2, []Property{Combinational, CXnor}, []string{"I0", "I1"}, "O", "!(I0 ^ I1)"},
	{TypeAND3, []Property{Combinational, CAnd}, []string{"I0", "I1", "I2"}, "O", "I0 & I1 & I2"},
}

// Primitives returns a new library with constant drivers, the basic
// two-input logic cells, a 2:1 multiplexer, a 4-input LUT and a D flip-flop.
func Primitives() *Library {
	lib := NewLibrary("primitives")
	for _, p := range combinationalPrimitives {
		gt := NewGateType(p.name, p.props...)
		for _, in := range p.inputs {
			gt.AddPin(in, DirectionInput, PinData)
		}
		outType := PinData
		switch {
		case gt.HasProperty(Ground):
			outType = PinGround
		case gt.HasProperty(Power):
			outType = PinPower
		}
		gt.AddPin(p.output, DirectionOutput, outType)
		mustAdd(lib, gt, p.output, p.expr)
	}

	mux := NewGateType(TypeMUX2, Combinational, Mux, CMux).
		AddPin("I0", DirectionInput, PinData).
		AddPin("I1", DirectionInput, PinData).
		AddPin("S", DirectionInput, PinSelect).
		AddPin("O", DirectionOutput, PinData)
	mustAdd(lib, mux, "O", "(I0 & !S) | (I1 & S)")

	lut := NewGateType(TypeLUT4, Combinational, LUTProperty, CLUT)
	for i := 0; i < 4; i++ {
		lut.Pins = append(lut.Pins, Pin{
			Name:      fmt.Sprintf("I%d", i),
			Direction: DirectionInput,
			Type:      PinData,
			Group:     "I",
			Index:     i,
		})
	}
	lut.AddPin("O", DirectionOutput, PinLUT)
	lut.Behavior = LUT{Category: "generic", Key: "INIT", Ascending: true}
	mustAdd(lib, lut, "", "")

	dff := NewGateType(TypeDFF, Sequential, FlipFlop).
		AddPin("CLK", DirectionInput, PinClock).
		AddPin("D", DirectionInput, PinData).
		AddPin("Q", DirectionOutput, PinState)
	dff.Behavior = SequentialBehavior{Clock: "CLK", NextState: "D"}
	mustAdd(lib, dff, "", "")

	return lib
}

func mustAdd(lib *Library, gt *GateType, pin, expr string) {
	if expr != "" {
		if err := gt.SetFunction(pin, expr); err != nil {
			panic(err)
		}
	}
	if err := lib.AddGateType(gt); err != nil {
		panic(err)
	}
}
