package netlist

import (
	"fmt"

	"github.com/OpenTraceLab/OpenTraceNetlist/pkg/gatelib"
)

// Endpoint attaches a net to one pin of a gate, either as a source (the pin
// drives the net) or as a destination (the pin reads it).
type Endpoint struct {
	net    *Net
	gate   *Gate
	pin    string
	source bool
}

// Net returns the net owning the endpoint.
func (ep *Endpoint) Net() *Net { return ep.net }

// Gate returns the gate the endpoint connects.
func (ep *Endpoint) Gate() *Gate { return ep.gate }

// Pin returns the pin name.
func (ep *Endpoint) Pin() string { return ep.pin }

// IsSource reports whether the pin drives the net.
func (ep *Endpoint) IsSource() bool { return ep.source }

// IsDestination reports whether the pin reads the net.
func (ep *Endpoint) IsDestination() bool { return !ep.source }

// PinInfo returns the gate type's description of the pin.
func (ep *Endpoint) PinInfo() gatelib.Pin {
	p, _ := ep.gate.typ.Pin(ep.pin)
	return p
}

func (ep *Endpoint) String() string {
	dir := "dst"
	if ep.source {
		dir = "src"
	}
	return fmt.Sprintf("%s:%s.%s->%s", dir, ep.gate.name, ep.pin, ep.net.name)
}
