package reader

import (
	"github.com/gitrdm/schemecore/pkg/ast"
	"github.com/gitrdm/schemecore/pkg/schemeerr"
)

// Parser turns a token stream into ast.Expr trees, one top-level form at
// a time.
type Parser struct {
	lx  *lexer
	buf *token
}

// NewParser builds a Parser over src.
func NewParser(src string) *Parser {
	return &Parser{lx: newLexer(src)}
}

func (p *Parser) peek() (token, error) {
	if p.buf == nil {
		t, err := p.lx.next()
		if err != nil {
			return token{}, err
		}
		p.buf = &t
	}
	return *p.buf, nil
}

func (p *Parser) take() (token, error) {
	t, err := p.peek()
	if err != nil {
		return token{}, err
	}
	p.buf = nil
	return t, nil
}

// AtEOF reports whether the stream is exhausted.
func (p *Parser) AtEOF() (bool, error) {
	t, err := p.peek()
	if err != nil {
		return false, err
	}
	return t.kind == tokEOF, nil
}

// ParseForm reads exactly one top-level expression.
func (p *Parser) ParseForm() (*ast.Expr, error) {
	t, err := p.take()
	if err != nil {
		return nil, err
	}
	switch t.kind {
	case tokEOF:
		return nil, schemeerr.New(schemeerr.Read, "unexpected end of input")
	case tokLParen:
		return p.parseListTail()
	case tokRParen:
		return nil, schemeerr.New(schemeerr.Read, "unexpected close paren")
	case tokDot:
		return nil, schemeerr.New(schemeerr.Read, "unexpected dot outside list")
	case tokQuote:
		datum, err := p.ParseForm()
		if err != nil {
			return nil, err
		}
		return ast.NewQuote(datum), nil
	case tokInt:
		return ast.NewInt(t.ival), nil
	case tokFloat:
		return ast.NewFloat(t.fval), nil
	case tokBool:
		return ast.NewBool(t.bval), nil
	case tokString:
		return ast.NewStr(t.text), nil
	case tokIdent:
		return ast.NewIdent(t.text), nil
	default:
		return nil, schemeerr.New(schemeerr.Read, "unrecognized token")
	}
}

// parseListTail parses the contents of a list after its opening paren
// has already been consumed, handling both proper lists and the dotted
// "(a b . c)" improper-list form.
func (p *Parser) parseListTail() (*ast.Expr, error) {
	t, err := p.peek()
	if err != nil {
		return nil, err
	}
	switch t.kind {
	case tokRParen:
		p.take()
		return ast.EmptyExpr(), nil
	case tokEOF:
		return nil, schemeerr.New(schemeerr.Read, "unterminated list")
	case tokDot:
		return nil, schemeerr.New(schemeerr.Read, "dot in wrong context")
	}

	car, err := p.ParseForm()
	if err != nil {
		return nil, err
	}

	t, err = p.peek()
	if err != nil {
		return nil, err
	}
	if t.kind == tokDot {
		p.take()
		cdr, err := p.ParseForm()
		if err != nil {
			return nil, err
		}
		closeT, err := p.take()
		if err != nil {
			return nil, err
		}
		if closeT.kind != tokRParen {
			return nil, schemeerr.New(schemeerr.Read, "malformed dotted list: expected close paren")
		}
		return ast.NewPair(car, cdr), nil
	}

	cdr, err := p.parseListTail()
	if err != nil {
		return nil, err
	}
	return ast.NewPair(car, cdr), nil
}

// ParseAll reads every top-level form in src, in order, stopping at the
// first malformed one.
func ParseAll(src string) ([]*ast.Expr, error) {
	p := NewParser(src)
	var forms []*ast.Expr
	for {
		atEOF, err := p.AtEOF()
		if err != nil {
			return nil, err
		}
		if atEOF {
			break
		}
		form, err := p.ParseForm()
		if err != nil {
			return nil, err
		}
		forms = append(forms, form)
	}
	return forms, nil
}
