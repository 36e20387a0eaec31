package sexp

import (
	"fmt"
	"io"
)

// Parser builds nodes from a token stream.
type Parser struct {
	lex *Lexer
	tok Token
}

// NewParser returns a parser reading from r.
func NewParser(r io.Reader) *Parser {
	return &Parser{lex: NewLexer(r)}
}

// ParseAll parses top-level expressions until end of input.
func (p *Parser) ParseAll() ([]Node, error) {
	var nodes []Node
	for {
		if err := p.advance(); err != nil {
			return nil, err
		}
		if p.tok.Type == TokenEOF {
			return nodes, nil
		}
		n, err := p.expr()
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, n)
	}
}

func (p *Parser) advance() error {
	tok, err := p.lex.Next()
	if err != nil {
		return err
	}
	p.tok = tok
	return nil
}

func (p *Parser) expr() (Node, error) {
	switch p.tok.Type {
	case TokenOpen:
		return p.list()
	case TokenSymbol:
		return &Atom{Value: p.tok.Value, line: p.tok.Line}, nil
	case TokenString:
		return &Atom{Value: p.tok.Value, Quoted: true, line: p.tok.Line}, nil
	}
	return nil, fmt.Errorf("sexp: line %d: unexpected %v", p.tok.Line, p.tok.Type)
}

func (p *Parser) list() (Node, error) {
	l := &List{line: p.tok.Line}
	for {
		if err := p.advance(); err != nil {
			return nil, err
		}
		switch p.tok.Type {
		case TokenClose:
			return l, nil
		case TokenEOF:
			return nil, fmt.Errorf("sexp: line %d: list opened here is not closed", l.line)
		}
		n, err := p.expr()
		if err != nil {
			return nil, err
		}
		l.Items = append(l.Items, n)
	}
}
