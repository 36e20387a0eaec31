package boolfunc

import (
	"github.com/alecthomas/participle/v2/lexer"
)

// ExprLexer defines the lexical structure of Boolean expressions.
var ExprLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Whitespace", Pattern: `[ \t\r\n]+`},

	// Binary literals such as 0b1; must precede plain numbers
	{Name: "Binary", Pattern: `0b[01]`},
	{Name: "Number", Pattern: `[0-9]+`},

	// Identifiers may carry hierarchy separators used by netlist tools
	{Name: "Ident", Pattern: `[a-zA-Z_$\\][a-zA-Z0-9_$./\\]*`},

	{Name: "Punct", Pattern: `[!~&|^()\[\]]`},
})
