package netlist

import (
	"errors"
	"fmt"
)

// Validate checks the structural invariants of the netlist:
//   - endpoints are consistent between nets and gates, and every (gate, pin)
//     pair is a source of at most one net and a destination of at most one net
//   - every gate belongs to exactly one module of the netlist
//   - the module tree is rooted at the top module and acyclic
//   - name indices match the objects
//   - flagged nets and gates belong to the netlist, constant gates are well formed
//
// All violations are reported, joined, each wrapping ErrStructural.
func (nl *Netlist) Validate() error {
	var errs []error
	fail := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("netlist: %w: "+format, append([]any{ErrStructural}, args...)...))
	}

	type pinKey struct {
		gate *Gate
		pin  string
	}
	srcSeen := make(map[pinKey]*Net)
	dstSeen := make(map[pinKey]*Net)

	for id, n := range nl.nets {
		if n.id != id || n.netlist != nl {
			fail("net index entry %d does not match %s", id, n)
		}
		if nl.netNames[n.name] != n {
			fail("net name index does not resolve %q", n.name)
		}
		for _, ep := range n.sources {
			key := pinKey{ep.gate, ep.pin}
			if other, dup := srcSeen[key]; dup {
				fail("%s.%s drives both %s and %s", ep.gate.name, ep.pin, other, n)
			}
			srcSeen[key] = n
			nl.checkEndpoint(ep, n, ep.gate.outputs, fail)
		}
		for _, ep := range n.destinations {
			key := pinKey{ep.gate, ep.pin}
			if other, dup := dstSeen[key]; dup {
				fail("%s.%s reads both %s and %s", ep.gate.name, ep.pin, other, n)
			}
			dstSeen[key] = n
			nl.checkEndpoint(ep, n, ep.gate.inputs, fail)
		}
	}

	owners := make(map[*Gate]int)
	for id, m := range nl.modules {
		if m.id != id || m.netlist != nl {
			fail("module index entry %d does not match %s", id, m)
		}
		for gid, g := range m.gates {
			owners[g]++
			if g.id != gid || g.module != m {
				fail("%s lists %s but the gate points to %v", m, g, g.module)
			}
		}
		if m == nl.top {
			if m.parent != nil {
				fail("top module has a parent")
			}
			continue
		}
		steps := 0
		for p := m.parent; p != nl.top; p = p.parent {
			if p == nil || nl.modules[p.id] != p {
				fail("%s is not connected to the top module", m)
				break
			}
			if steps++; steps > len(nl.modules) {
				fail("module tree contains a cycle through %s", m)
				break
			}
		}
	}

	for id, g := range nl.gates {
		if g.id != id || g.netlist != nl {
			fail("gate index entry %d does not match %s", id, g)
		}
		if nl.gateNames[g.name] != g {
			fail("gate name index does not resolve %q", g.name)
		}
		if owners[g] != 1 {
			fail("%s belongs to %d modules", g, owners[g])
		}
		for pin, ep := range g.inputs {
			if ep.gate != g || ep.pin != pin || ep.source || ep.net.Destination(g, pin) != ep {
				fail("%s input %s has a dangling endpoint", g, pin)
			}
		}
		for pin, ep := range g.outputs {
			if ep.gate != g || ep.pin != pin || !ep.source || ep.net.Source(g, pin) != ep {
				fail("%s output %s has a dangling endpoint", g, pin)
			}
		}
	}
	if len(nl.gateNames) != len(nl.gates) {
		fail("gate name index has %d entries for %d gates", len(nl.gateNames), len(nl.gates))
	}
	if len(nl.netNames) != len(nl.nets) {
		fail("net name index has %d entries for %d nets", len(nl.netNames), len(nl.nets))
	}

	for _, n := range append(nl.GlobalInputNets(), nl.globalOutputs...) {
		if !nl.ContainsNet(n) {
			fail("global net %s is not part of the netlist", n)
		}
	}
	for _, g := range nl.gndGates {
		if err := nl.checkConstantGate(g, false); err != nil {
			errs = append(errs, err)
		}
	}
	for _, g := range nl.vccGates {
		if err := nl.checkConstantGate(g, true); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

func (nl *Netlist) checkEndpoint(ep *Endpoint, n *Net, pins map[string]*Endpoint, fail func(string, ...any)) {
	if ep.net != n {
		fail("endpoint %s.%s listed on %s belongs to %s", ep.gate.name, ep.pin, n, ep.net)
	}
	if !nl.ContainsGate(ep.gate) {
		fail("%s references gate %q outside the netlist", n, ep.gate.name)
		return
	}
	if pins[ep.pin] != ep {
		fail("%s.%s does not point back to %s", ep.gate.name, ep.pin, n)
	}
}
