package boolfunc

import (
	"fmt"
	"strings"
	"sync"

	"github.com/alecthomas/participle/v2"
)

// Grammar, weakest binding first.

type orExpr struct {
	Terms []*xorExpr `@@ ( "|" @@ )*`
}

type xorExpr struct {
	Terms []*andExpr `@@ ( "^" @@ )*`
}

type andExpr struct {
	Terms []*unaryExpr `@@ ( "&" @@ )*`
}

type unaryExpr struct {
	Not     *unaryExpr `  ( "!" | "~" ) @@`
	Primary *primary   `| @@`
}

type primary struct {
	Binary *string     `  @Binary`
	Number *int        `| @Number`
	Ident  *identifier `| @@`
	Sub    *orExpr     `| "(" @@ ")"`
}

type identifier struct {
	Name  string `@Ident`
	Index *int   `( "[" @Number "]" )?`
}

var (
	buildOnce sync.Once
	exprParse *participle.Parser[orExpr]
	buildErr  error
)

func parser() (*participle.Parser[orExpr], error) {
	buildOnce.Do(func() {
		exprParse, buildErr = participle.Build[orExpr](
			participle.Lexer(ExprLexer),
			participle.Elide("Whitespace"),
			participle.UseLookahead(2),
		)
	})
	return exprParse, buildErr
}

// Parse parses a Boolean expression such as "(A & B) | !C".
func Parse(input string) (Function, error) {
	if strings.TrimSpace(input) == "" {
		return Function{}, fmt.Errorf("boolfunc: empty expression")
	}
	p, err := parser()
	if err != nil {
		return Function{}, fmt.Errorf("boolfunc: failed to build parser: %w", err)
	}
	ast, err := p.ParseString("", input)
	if err != nil {
		return Function{}, fmt.Errorf("boolfunc: parse error: %w", err)
	}
	return ast.function()
}

// MustParse is like Parse but panics on error.
func MustParse(input string) Function {
	f, err := Parse(input)
	if err != nil {
		panic(err)
	}
	return f
}

func (o *orExpr) function() (Function, error) {
	fs := make([]Function, 0, len(o.Terms))
	for _, t := range o.Terms {
		f, err := t.function()
		if err != nil {
			return Function{}, err
		}
		fs = append(fs, f)
	}
	return checked(Or(fs...))
}

func (x *xorExpr) function() (Function, error) {
	fs := make([]Function, 0, len(x.Terms))
	for _, t := range x.Terms {
		f, err := t.function()
		if err != nil {
			return Function{}, err
		}
		fs = append(fs, f)
	}
	return checked(Xor(fs...))
}

func (a *andExpr) function() (Function, error) {
	fs := make([]Function, 0, len(a.Terms))
	for _, t := range a.Terms {
		f, err := t.function()
		if err != nil {
			return Function{}, err
		}
		fs = append(fs, f)
	}
	return checked(And(fs...))
}

func (u *unaryExpr) function() (Function, error) {
	if u.Not != nil {
		f, err := u.Not.function()
		if err != nil {
			return Function{}, err
		}
		return checked(f.Not())
	}
	return u.Primary.function()
}

func (p *primary) function() (Function, error) {
	switch {
	case p.Binary != nil:
		return Const(strings.HasSuffix(*p.Binary, "1")), nil
	case p.Number != nil:
		switch *p.Number {
		case 0:
			return Const(false), nil
		case 1:
			return Const(true), nil
		}
		return Function{}, fmt.Errorf("boolfunc: invalid constant %d", *p.Number)
	case p.Ident != nil:
		if p.Ident.Index != nil {
			return Slice(p.Ident.Name, *p.Ident.Index), nil
		}
		return Var(p.Ident.Name), nil
	case p.Sub != nil:
		return p.Sub.function()
	}
	return Function{}, fmt.Errorf("boolfunc: empty primary expression")
}

func checked(f Function) (Function, error) {
	if f.IsEmpty() {
		return f, fmt.Errorf("boolfunc: operand is not a single-bit function")
	}
	return f, nil
}
