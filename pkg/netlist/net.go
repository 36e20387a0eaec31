package netlist

import (
	"fmt"
	"strconv"
)

// Net is a wire with zero or more sources and destinations.
type Net struct {
	DataContainer

	id           int
	name         string
	netlist      *Netlist
	sources      []*Endpoint
	destinations []*Endpoint
}

// ID returns the net ID, unique within its netlist.
func (n *Net) ID() int { return n.id }

// Name returns the net name.
func (n *Net) Name() string { return n.name }

// Netlist returns the owning netlist.
func (n *Net) Netlist() *Netlist { return n.netlist }

func (n *Net) String() string {
	return fmt.Sprintf("Net(%d, %q)", n.id, n.name)
}

// SetName renames the net. Names are unique within a netlist.
func (n *Net) SetName(name string) error {
	if name == n.name {
		return nil
	}
	if name == "" {
		return fmt.Errorf("netlist: %w: empty net name", ErrInvalidArgument)
	}
	if other, ok := n.netlist.netNames[name]; ok && other != n {
		return fmt.Errorf("netlist: %w: net name %q already in use", ErrStructural, name)
	}
	delete(n.netlist.netNames, n.name)
	n.name = name
	n.netlist.netNames[name] = n
	return nil
}

// Sources returns the source endpoints in insertion order.
func (n *Net) Sources() []*Endpoint {
	return append([]*Endpoint(nil), n.sources...)
}

// Destinations returns the destination endpoints in insertion order.
func (n *Net) Destinations() []*Endpoint {
	return append([]*Endpoint(nil), n.destinations...)
}

// NumSources returns the number of drivers.
func (n *Net) NumSources() int { return len(n.sources) }

// NumDestinations returns the number of readers.
func (n *Net) NumDestinations() int { return len(n.destinations) }

// Source returns the source endpoint for (g, pin), or nil.
func (n *Net) Source(g *Gate, pin string) *Endpoint {
	return findEndpoint(n.sources, g, pin)
}

// Destination returns the destination endpoint for (g, pin), or nil.
func (n *Net) Destination(g *Gate, pin string) *Endpoint {
	return findEndpoint(n.destinations, g, pin)
}

// SourceGates returns the distinct driving gates in endpoint order.
func (n *Net) SourceGates() []*Gate {
	return distinctGates(n.sources)
}

// DestinationGates returns the distinct reading gates in endpoint order.
func (n *Net) DestinationGates() []*Gate {
	return distinctGates(n.destinations)
}

// AddSource makes pin of g drive the net.
func (n *Net) AddSource(g *Gate, pin string) (*Endpoint, error) {
	return n.addEndpoint(g, pin, true)
}

// AddDestination makes pin of g read the net.
func (n *Net) AddDestination(g *Gate, pin string) (*Endpoint, error) {
	return n.addEndpoint(g, pin, false)
}

func (n *Net) addEndpoint(g *Gate, pin string, source bool) (*Endpoint, error) {
	if g == nil {
		return nil, fmt.Errorf("netlist: %w: nil gate", ErrInvalidArgument)
	}
	if g.netlist != n.netlist || n.netlist.gates[g.id] != g {
		return nil, fmt.Errorf("netlist: %w: gate %s does not belong to the netlist of %s",
			ErrInvalidArgument, g, n)
	}
	if n.netlist.nets[n.id] != n {
		return nil, fmt.Errorf("netlist: %w: %s has been deleted", ErrInvalidArgument, n)
	}
	p, ok := g.typ.Pin(pin)
	if !ok {
		return nil, fmt.Errorf("netlist: %w: gate type %s has no pin %q", ErrLookup, g.typ.Name, pin)
	}

	pins := g.inputs
	if source {
		if !p.Direction.IsOutput() {
			return nil, fmt.Errorf("netlist: %w: pin %s of %s is not an output",
				ErrStructural, pin, g)
		}
		pins = g.outputs
	} else if !p.Direction.IsInput() {
		return nil, fmt.Errorf("netlist: %w: pin %s of %s is not an input", ErrStructural, pin, g)
	}
	if existing, ok := pins[pin]; ok {
		return nil, fmt.Errorf("netlist: %w: pin %s of %s is already connected to %s",
			ErrStructural, pin, g, existing.net)
	}

	ep := &Endpoint{net: n, gate: g, pin: pin, source: source}
	pins[pin] = ep
	if source {
		n.sources = append(n.sources, ep)
	} else {
		n.destinations = append(n.destinations, ep)
	}
	return ep, nil
}

// RemoveSource disconnects the driving pin (g, pin).
func (n *Net) RemoveSource(g *Gate, pin string) error {
	ep := n.Source(g, pin)
	if ep == nil {
		return fmt.Errorf("netlist: %w: %s is not driven by %s.%s", ErrLookup, n, gateName(g), pin)
	}
	return n.RemoveEndpoint(ep)
}

// RemoveDestination disconnects the reading pin (g, pin).
func (n *Net) RemoveDestination(g *Gate, pin string) error {
	ep := n.Destination(g, pin)
	if ep == nil {
		return fmt.Errorf("netlist: %w: %s is not read by %s.%s", ErrLookup, n, gateName(g), pin)
	}
	return n.RemoveEndpoint(ep)
}

// RemoveEndpoint disconnects ep from the net.
func (n *Net) RemoveEndpoint(ep *Endpoint) error {
	if ep == nil || ep.net != n {
		return fmt.Errorf("netlist: %w: endpoint does not belong to %s", ErrInvalidArgument, n)
	}
	if ep.source {
		n.sources = removeEndpoint(n.sources, ep)
		delete(ep.gate.outputs, ep.pin)
	} else {
		n.destinations = removeEndpoint(n.destinations, ep)
		delete(ep.gate.inputs, ep.pin)
	}
	return nil
}

// IsGlobalInput reports whether the net is a global input of its netlist.
func (n *Net) IsGlobalInput() bool { return n.netlist.IsGlobalInputNet(n) }

// IsGlobalOutput reports whether the net is a global output of its netlist.
func (n *Net) IsGlobalOutput() bool { return n.netlist.IsGlobalOutputNet(n) }

// IsGndNet reports whether a ground gate drives the net.
func (n *Net) IsGndNet() bool {
	for _, ep := range n.sources {
		if ep.gate.IsGndGate() {
			return true
		}
	}
	return false
}

// IsVccNet reports whether a power gate drives the net.
func (n *Net) IsVccNet() bool {
	for _, ep := range n.sources {
		if ep.gate.IsVccGate() {
			return true
		}
	}
	return false
}

// IsUnrouted reports whether the net lacks sources or destinations.
func (n *Net) IsUnrouted() bool {
	return len(n.sources) == 0 || len(n.destinations) == 0
}

// NetVariableName is the Boolean variable name used for n in subgraph
// functions.
func NetVariableName(n *Net) string {
	return "net_" + strconv.Itoa(n.id)
}

func findEndpoint(eps []*Endpoint, g *Gate, pin string) *Endpoint {
	for _, ep := range eps {
		if ep.gate == g && ep.pin == pin {
			return ep
		}
	}
	return nil
}

func removeEndpoint(eps []*Endpoint, ep *Endpoint) []*Endpoint {
	for i, e := range eps {
		if e == ep {
			return append(eps[:i], eps[i+1:]...)
		}
	}
	return eps
}

func distinctGates(eps []*Endpoint) []*Gate {
	seen := make(map[*Gate]bool, len(eps))
	var out []*Gate
	for _, ep := range eps {
		if !seen[ep.gate] {
			seen[ep.gate] = true
			out = append(out, ep.gate)
		}
	}
	return out
}

func gateName(g *Gate) string {
	if g == nil {
		return "<nil>"
	}
	return g.name
}
