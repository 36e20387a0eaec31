package hdl

// File is a parsed Verilog source.
type File struct {
	Modules []*Module `@@*`
}

// Module is one module definition.
type Module struct {
	Name  string      `"module" @(Ident | EscIdent)`
	Ports []*PortItem `( "(" ( @@ ( "," @@ )* )? ")" )? ";"`
	Items []*Item     `@@* "endmodule"`
}

// PortItem is an entry of the module header, either a bare name or an ANSI
// style declaration.
type PortItem struct {
	Dir   string `@( "input" | "output" | "inout" )?`
	Net   bool   `@( "wire" | "reg" )?`
	Range *Range `@@?`
	Name  string `@(Ident | EscIdent)`
}

// Item is a module body statement.
type Item struct {
	Decl     *Decl     `  @@`
	Assign   *Assign   `| @@`
	Instance *Instance `| @@`
}

// Decl declares ports or nets.
type Decl struct {
	Kind  string   `@( "input" | "output" | "inout" | "wire" | "reg" | "supply0" | "supply1" )`
	Net   bool     `@( "wire" | "reg" )?`
	Range *Range   `@@?`
	Names []string `@(Ident | EscIdent) ( "," @(Ident | EscIdent) )* ";"`
}

// Range is a [msb:lsb] vector range.
type Range struct {
	MSB int `"[" @Number ":"`
	LSB int `@Number "]"`
}

// Assign is a continuous assignment between nets.
type Assign struct {
	LHS *Expr `"assign" @@ "="`
	RHS *Expr `@@ ";"`
}

// Instance instantiates a gate type.
type Instance struct {
	Type   string  `@(Ident | EscIdent)`
	Params []*Conn `( "#" "(" ( @@ ( "," @@ )* )? ")" )?`
	Name   string  `@(Ident | EscIdent)`
	Conns  []*Conn `"(" ( @@ ( "," @@ )* )? ")" ";"`
}

// Conn is a named port connection or parameter override.
type Conn struct {
	Pin  string `"." @(Ident | EscIdent)`
	Expr *Expr  `"(" @@? ")"`
}

// Expr is a connection expression.
type Expr struct {
	Literal *string `  @Literal`
	Number  *string `| @Number`
	String  *string `| @String`
	Concat  []*Expr `| "{" @@ ( "," @@ )* "}"`
	Ref     *Ref    `| @@`
}

// Ref names a net or a single bit or part of a vector.
type Ref struct {
	Name  string `@(Ident | EscIdent)`
	Range *Sel   `( "[" @@ "]" )?`
}

// Sel selects a bit or a part of a vector.
type Sel struct {
	MSB int  `@Number`
	LSB *int `( ":" @Number )?`
}
