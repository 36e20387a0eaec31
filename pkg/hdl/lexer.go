package hdl

import (
	"github.com/alecthomas/participle/v2/lexer"
)

// VerilogLexer covers the structural Verilog subset written by Write and by
// synthesis tools.
var VerilogLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Comment", Pattern: `//[^\n]*|/\*([^*]|\*+[^*/])*\*+/`},
	// (* attributes *) carry nothing the reader keeps
	{Name: "Attribute", Pattern: `\(\*([^*]|\*+[^*)])*\*+\)`},
	{Name: "Whitespace", Pattern: `\s+`},

	{Name: "Keyword", Pattern: `\b(module|endmodule|input|output|inout|wire|reg|supply0|supply1|assign)\b`},

	// Sized literals such as 1'b0, 16'h8000; must precede plain numbers
	{Name: "Literal", Pattern: `[0-9]*'[sS]?[bBoOdDhH][0-9a-fA-FxXzZ_?]+`},
	{Name: "Number", Pattern: `[0-9]+`},
	{Name: "String", Pattern: `"(?:[^"\\]|\\.)*"`},

	// Escaped identifiers run to the next whitespace
	{Name: "EscIdent", Pattern: `\\\S+`},
	{Name: "Ident", Pattern: `[a-zA-Z_][a-zA-Z0-9_$]*`},

	{Name: "Punct", Pattern: `[()\[\]{};:,.=#]`},
})
