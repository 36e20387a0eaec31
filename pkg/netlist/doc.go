// Package netlist is the in-memory graph model of a gate-level design.
//
// A Netlist owns every Gate, Net, Module and Grouping of a design, indexed
// by integer IDs that are unique per kind. Gates are instances of gate types
// from a gatelib.Library. Nets connect gate pins through Endpoints: a source
// endpoint means the pin drives the net, a destination endpoint means the pin
// reads it. A pin is a source of at most one net and a destination of at
// most one net.
//
// # Ownership
//
// Objects are created and destroyed only through their netlist:
//
//	nl := netlist.New(gatelib.Primitives())
//	and2 := nl.Library().GateTypeByName(gatelib.TypeAND2)
//	g, err := nl.CreateGate(and2, "u1")
//	n, err := nl.CreateNet("y")
//	_, err = n.AddSource(g, "O")
//
// Modules form a tree rooted at TopModule. Every gate belongs to exactly one
// module; new gates start in the top module. Deleting a module hands its
// gates and submodules to its parent.
//
// Objects of different netlists are never connected. Operations that build
// structure from another netlist copy it.
//
// # Flags
//
// Global input and output flags live on the netlist and are queried through
// nets. Global ground and power gates are flagged the same way; a net driven
// by such a gate is a ground or power net.
//
// # Errors
//
// Every error wraps one of ErrInvalidArgument, ErrLookup, ErrStructural,
// ErrExternalTool or ErrIO. Multi-step operations in other packages report
// partially applied changes with *PartialError.
//
// The model is not safe for concurrent use.
package netlist
