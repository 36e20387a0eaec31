package sexp

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"unicode"
)

// TokenType classifies lexer output.
type TokenType int

const (
	TokenEOF TokenType = iota
	TokenOpen
	TokenClose
	TokenSymbol
	TokenString
)

func (t TokenType) String() string {
	switch t {
	case TokenEOF:
		return "EOF"
	case TokenOpen:
		return "'('"
	case TokenClose:
		return "')'"
	case TokenSymbol:
		return "symbol"
	case TokenString:
		return "string"
	}
	return fmt.Sprintf("TokenType(%d)", int(t))
}

// Token is one lexical unit with the line it started on.
type Token struct {
	Type  TokenType
	Value string
	Line  int
}

// Lexer splits a byte stream into tokens. Comments run from ';' or '#' to
// the end of the line.
type Lexer struct {
	r      *bufio.Reader
	line   int
	peeked rune
	has    bool
}

// NewLexer returns a lexer reading from r.
func NewLexer(r io.Reader) *Lexer {
	return &Lexer{r: bufio.NewReader(r), line: 1}
}

// Next returns the next token. At end of input it returns a TokenEOF token
// and a nil error.
func (l *Lexer) Next() (Token, error) {
	if err := l.skip(); err != nil {
		if errors.Is(err, io.EOF) {
			return Token{Type: TokenEOF, Line: l.line}, nil
		}
		return Token{}, err
	}

	ch, _ := l.peek()
	line := l.line
	switch ch {
	case '(':
		l.read()
		return Token{Type: TokenOpen, Value: "(", Line: line}, nil
	case ')':
		l.read()
		return Token{Type: TokenClose, Value: ")", Line: line}, nil
	case '"':
		return l.quoted()
	}
	return l.symbol()
}

func (l *Lexer) skip() error {
	for {
		ch, err := l.peek()
		if err != nil {
			return err
		}
		switch {
		case unicode.IsSpace(ch):
			l.read()
		case ch == ';' || ch == '#':
			for {
				c, err := l.read()
				if err != nil {
					return err
				}
				if c == '\n' {
					break
				}
			}
		default:
			return nil
		}
	}
}

func (l *Lexer) peek() (rune, error) {
	if l.has {
		return l.peeked, nil
	}
	ch, _, err := l.r.ReadRune()
	if err != nil {
		return 0, err
	}
	l.peeked, l.has = ch, true
	return ch, nil
}

func (l *Lexer) read() (rune, error) {
	ch, err := l.peek()
	if err != nil {
		return 0, err
	}
	l.has = false
	if ch == '\n' {
		l.line++
	}
	return ch, nil
}

func (l *Lexer) quoted() (Token, error) {
	line := l.line
	l.read()

	var buf []rune
	for {
		ch, err := l.read()
		if err != nil {
			return Token{}, fmt.Errorf("sexp: line %d: unterminated string", line)
		}
		switch ch {
		case '"':
			return Token{Type: TokenString, Value: string(buf), Line: line}, nil
		case '\\':
			next, err := l.read()
			if err != nil {
				return Token{}, fmt.Errorf("sexp: line %d: unterminated escape", line)
			}
			switch next {
			case 'n':
				buf = append(buf, '\n')
			case 't':
				buf = append(buf, '\t')
			default:
				buf = append(buf, next)
			}
		default:
			buf = append(buf, ch)
		}
	}
}

func (l *Lexer) symbol() (Token, error) {
	line := l.line
	var buf []rune
	for {
		ch, err := l.peek()
		if err != nil {
			break
		}
		if unicode.IsSpace(ch) || ch == '(' || ch == ')' || ch == '"' || ch == ';' {
			break
		}
		l.read()
		buf = append(buf, ch)
	}
	if len(buf) == 0 {
		return Token{}, fmt.Errorf("sexp: line %d: empty symbol", line)
	}
	return Token{Type: TokenSymbol, Value: string(buf), Line: line}, nil
}
