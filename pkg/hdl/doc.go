// Package hdl reads and writes gate-level netlists as structural Verilog.
//
// # Reading
//
// Read accepts the subset written by Write and by synthesis tools such as
// Yosys (write_verilog -noattr -noexpr): module headers in plain or ANSI
// style, input/output/inout/wire declarations with optional [msb:lsb]
// ranges, supply0/supply1 nets, continuous assignments between nets,
// constants and concatenations, and instances with named connections and
// parameter overrides:
//
//	module top (a, b, y);
//	  input a, b;
//	  output y;
//	  wire n;
//	  LUT4 #(.INIT(16'h8000)) l0 (.I0(a), .I1(b), .I2(1'b1), .I3(1'b1), .O(n));
//	  INV i0 (.I(n), .O(y));
//	endmodule
//
// Vectors are split into one net per bit, named name[i]. Assignments alias
// nets; each alias set becomes one netlist net named after its first port
// bit. Constant literals are driven by ground and power gates from the
// library, and x or z bits leave pins unconnected. Parameters are stored as
// gate data of category "generic", which is where LUT gate types look for
// their configuration.
//
// Ports become global input or output nets and record their names with
// netlist.Net.AddInputPort and AddOutputPort, so a netlist read back from a
// synthesis tool can be mapped onto the pins it was synthesized for.
//
// # Writing
//
// Write emits one module per netlist. WriteFunctions emits a behavioral
// module with one assign statement per Boolean function; it is the input
// handed to external synthesis.
package hdl
