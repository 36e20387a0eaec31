package netlist

import "sort"

// PortCategory is the data category recording which ports of a fragment a
// global net stands for. Keys are port names, values "input" or "output".
// A net can carry several ports when synthesis aliases them.
const PortCategory = "port"

const (
	portInput  = "input"
	portOutput = "output"
)

// AddInputPort records that n carries the input port name.
func (n *Net) AddInputPort(name string) {
	n.SetData(PortCategory, name, "string", portInput)
}

// AddOutputPort records that n carries the output port name.
func (n *Net) AddOutputPort(name string) {
	n.SetData(PortCategory, name, "string", portOutput)
}

// Ports returns the sorted input and output port names recorded on n.
func (n *Net) Ports() (inputs, outputs []string) {
	for k, v := range n.data {
		if k.Category != PortCategory {
			continue
		}
		switch v.Value {
		case portInput:
			inputs = append(inputs, k.Key)
		case portOutput:
			outputs = append(outputs, k.Key)
		}
	}
	sort.Strings(inputs)
	sort.Strings(outputs)
	return inputs, outputs
}

// PortNet returns the net carrying the named port, or nil.
func (nl *Netlist) PortNet(name string) *Net {
	for _, n := range nl.Nets(nil) {
		if n.HasData(PortCategory, name) {
			return n
		}
	}
	return nil
}
