package hdl

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/OpenTraceLab/OpenTraceNetlist/pkg/boolfunc"
	"github.com/OpenTraceLab/OpenTraceNetlist/pkg/netlist"
)

type port struct {
	name string
	dir  string
}

// Write writes nl as one structural Verilog module. Global nets become
// ports named after their recorded port data, or after the net when none
// is recorded. Ground and power gates are written as ordinary instances and
// generic gate data as instance parameters.
func Write(nl *netlist.Netlist, w io.Writer) error {
	if nl == nil {
		return fmt.Errorf("hdl: %w: nil netlist", netlist.ErrInvalidArgument)
	}
	module := nl.DesignName()
	if module == "" {
		module = nl.Name()
	}
	if module == "" {
		module = "top"
	}

	ident := make(map[*netlist.Net]string)
	var ports []port
	var aliases [][2]string
	dirOf := make(map[string]int)
	add := func(name, dir string) {
		if i, ok := dirOf[name]; ok {
			if ports[i].dir != dir {
				ports[i].dir = "inout"
			}
			return
		}
		dirOf[name] = len(ports)
		ports = append(ports, port{name, dir})
	}
	bind := func(n *netlist.Net, name, dir string) {
		add(name, dir)
		primary, ok := ident[n]
		if !ok {
			ident[n] = name
			return
		}
		if primary != name {
			aliases = append(aliases, [2]string{name, primary})
		}
	}
	for _, n := range nl.GlobalInputNets() {
		ins, _ := n.Ports()
		if len(ins) == 0 {
			ins = []string{n.Name()}
		}
		for _, name := range ins {
			bind(n, name, "input")
		}
	}
	for _, n := range nl.GlobalOutputNets() {
		_, outs := n.Ports()
		if len(outs) == 0 {
			outs = []string{n.Name()}
		}
		for _, name := range outs {
			bind(n, name, "output")
		}
	}

	var sb strings.Builder
	names := make([]string, len(ports))
	for i, p := range ports {
		names[i] = boolfunc.VerilogIdent(p.name)
	}
	fmt.Fprintf(&sb, "module %s (%s);\n", boolfunc.VerilogIdent(module), strings.Join(names, ", "))
	for _, p := range ports {
		fmt.Fprintf(&sb, "  %s %s;\n", p.dir, boolfunc.VerilogIdent(p.name))
	}
	for _, n := range nl.Nets(nil) {
		if _, ok := ident[n]; ok {
			continue
		}
		ident[n] = n.Name()
		fmt.Fprintf(&sb, "  wire %s;\n", boolfunc.VerilogIdent(n.Name()))
	}
	for _, a := range aliases {
		fmt.Fprintf(&sb, "  assign %s = %s;\n", boolfunc.VerilogIdent(a[0]), boolfunc.VerilogIdent(a[1]))
	}

	for _, g := range nl.Gates(nil) {
		sb.WriteString("  ")
		sb.WriteString(boolfunc.VerilogIdent(g.Type().Name))
		if params := instanceParams(g); len(params) > 0 {
			fmt.Fprintf(&sb, " #(%s)", strings.Join(params, ", "))
		}
		fmt.Fprintf(&sb, " %s (", boolfunc.VerilogIdent(g.Name()))
		var conns []string
		for _, p := range g.Type().Pins {
			var n *netlist.Net
			if p.Direction.IsInput() {
				n = g.FaninNet(p.Name)
			} else {
				n = g.FanoutNet(p.Name)
			}
			if n == nil {
				continue
			}
			conns = append(conns, fmt.Sprintf(".%s(%s)", boolfunc.VerilogIdent(p.Name), boolfunc.VerilogIdent(ident[n])))
		}
		sb.WriteString(strings.Join(conns, ", "))
		sb.WriteString(");\n")
	}
	sb.WriteString("endmodule\n")

	if _, err := io.WriteString(w, sb.String()); err != nil {
		return fmt.Errorf("hdl: %w: %w", netlist.ErrIO, err)
	}
	return nil
}

// WriteFile writes nl to the file at path.
func WriteFile(nl *netlist.Netlist, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("hdl: %w: %w", netlist.ErrIO, err)
	}
	if err := Write(nl, f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("hdl: %w: %w", netlist.ErrIO, err)
	}
	return nil
}

// WriteFunctions writes a behavioral module with one continuous assignment
// per function. Every variable becomes an input port and every function
// name an output port.
func WriteFunctions(w io.Writer, module string, functions map[string]boolfunc.Function) error {
	if module == "" || len(functions) == 0 {
		return fmt.Errorf("hdl: %w: module name and functions are required", netlist.ErrInvalidArgument)
	}
	outputs := make([]string, 0, len(functions))
	vars := make(map[string]bool)
	for name, f := range functions {
		if f.IsEmpty() || f.Size() != 1 || hasIndex(f) {
			return fmt.Errorf("hdl: %w: function %s is not a single-bit expression over scalar variables",
				netlist.ErrStructural, name)
		}
		outputs = append(outputs, name)
		for _, v := range f.VariableNames() {
			vars[v] = true
		}
	}
	sort.Strings(outputs)
	inputs := make([]string, 0, len(vars))
	for v := range vars {
		if _, clash := functions[v]; clash {
			return fmt.Errorf("hdl: %w: %s is both an input and an output", netlist.ErrInvalidArgument, v)
		}
		inputs = append(inputs, v)
	}
	sort.Strings(inputs)

	var sb strings.Builder
	var all []string
	for _, name := range append(append([]string(nil), inputs...), outputs...) {
		all = append(all, boolfunc.VerilogIdent(name))
	}
	fmt.Fprintf(&sb, "module %s (%s);\n", boolfunc.VerilogIdent(module), strings.Join(all, ", "))
	for _, name := range inputs {
		fmt.Fprintf(&sb, "  input %s;\n", boolfunc.VerilogIdent(name))
	}
	for _, name := range outputs {
		fmt.Fprintf(&sb, "  output %s;\n", boolfunc.VerilogIdent(name))
	}
	for _, name := range outputs {
		fmt.Fprintf(&sb, "  assign %s = %s;\n", boolfunc.VerilogIdent(name), functions[name].Verilog())
	}
	sb.WriteString("endmodule\n")

	if _, err := io.WriteString(w, sb.String()); err != nil {
		return fmt.Errorf("hdl: %w: %w", netlist.ErrIO, err)
	}
	return nil
}

func hasIndex(f boolfunc.Function) bool {
	if f.IsIndex() {
		return true
	}
	for _, p := range f.Parameters() {
		if hasIndex(p) {
			return true
		}
	}
	return false
}

// instanceParams renders the generic data of g as parameter overrides.
func instanceParams(g *netlist.Gate) []string {
	var out []string
	for _, k := range g.DataKeys() {
		if k.Category != GenericCategory {
			continue
		}
		v, _ := g.Data(k.Category, k.Key)
		var value string
		switch v.Type {
		case "bit_vector":
			value = fmt.Sprintf("%d'h%s", 4*len(v.Value), v.Value)
		case "integer":
			value = v.Value
		default:
			value = strconv.Quote(v.Value)
		}
		out = append(out, fmt.Sprintf(".%s(%s)", boolfunc.VerilogIdent(k.Key), value))
	}
	return out
}
