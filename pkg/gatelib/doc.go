// Package gatelib describes cell libraries: the gate types a netlist can
// instantiate, their pins and the Boolean behaviour of their outputs.
//
// # Gate Types
//
// A GateType has a name, a property set, an ordered pin list and a base
// behaviour. Combinational types carry one Boolean function per output pin,
// written over the names of the input pins. LUT types read their function
// from a configuration string attached to every gate instance. Sequential
// types describe their clock and next-state functions.
//
// Property sets identify canonical functions. The gate tree compiler, for
// example, looks up the inverter as the type whose properties are exactly
// {combinational, c_inverter} and which has one input and one output:
//
//	inv, err := lib.FindExact([]gatelib.Property{gatelib.Combinational, gatelib.CInverter}, 1, 1)
//
// # Libraries
//
// Primitives returns a small built-in library (GND, VCC, BUF, INV, the
// two-input logic cells, MUX2, LUT4 and DFF). Other libraries are loaded
// from s-expression files with Load; see Load for the format.
//
// Ground and power types must have no inputs and a single output driving
// constant 0 or 1 respectively. AddGateType rejects types that break this.
package gatelib
