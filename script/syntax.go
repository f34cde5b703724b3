package script

import (
	"fmt"
	"go/scanner"
	"go/token"
	"strconv"
	"strings"
)

// The script syntax is the declaration surface of the engine:
//
//	Cons(_1, List[_1])                       constructor signatures
//	A(a=_1, b=_1)                            keyword fields
//	List[int].Cons(1, List[int].Nil())       values
//	Cons(head, tail)  A(a=x, b=_)            patterns
//
// It is tokenized with go/scanner, so literals follow Go's rules.

type node interface {
	Pos() int
	String() string
}

type identNode struct {
	pos  int
	name string
}

type litNode struct {
	pos    int
	value  any
	syntax string
}

type indexNode struct {
	base node
	args []node
}

type selectorNode struct {
	base node
	sel  string
}

type kwNode struct {
	key   string
	value node
}

type callNode struct {
	fn     node
	args   []node
	kwargs []kwNode
}

func (n *identNode) Pos() int    { return n.pos }
func (n *litNode) Pos() int      { return n.pos }
func (n *indexNode) Pos() int    { return n.base.Pos() }
func (n *selectorNode) Pos() int { return n.base.Pos() }
func (n *callNode) Pos() int     { return n.fn.Pos() }

func (n *identNode) String() string    { return n.name }
func (n *litNode) String() string      { return n.syntax }
func (n *selectorNode) String() string { return n.base.String() + "." + n.sel }

func (n *indexNode) String() string {
	args := make([]string, len(n.args))
	for i, arg := range n.args {
		args[i] = arg.String()
	}
	return n.base.String() + "[" + strings.Join(args, ", ") + "]"
}

func (n *callNode) String() string {
	var args []string
	for _, arg := range n.args {
		args = append(args, arg.String())
	}
	for _, kw := range n.kwargs {
		args = append(args, kw.key+"="+kw.value.String())
	}
	return n.fn.String() + "(" + strings.Join(args, ", ") + ")"
}

type item struct {
	pos int
	tok token.Token
	lit string
}

type syntaxError struct {
	src string
	pos int
	msg string
}

func (e syntaxError) Error() string {
	return fmt.Sprintf("syntax error in %q at offset %d: %s", e.src, e.pos, e.msg)
}

type parser struct {
	src   string
	items []item
	at    int
}

func parse(src string) (node, error) {
	p := &parser{src: src}
	if err := p.tokenize(); err != nil {
		return nil, err
	}
	n, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if tok := p.peek(); tok.tok != token.EOF {
		return nil, p.errorf(tok, "unexpected %s after expression", describe(tok))
	}
	return n, nil
}

func (p *parser) tokenize() error {
	fset := token.NewFileSet()
	file := fset.AddFile("", fset.Base(), len(p.src))
	var errs scanner.ErrorList
	s := scanner.Scanner{}
	s.Init(file, []byte(p.src), func(pos token.Position, msg string) { errs.Add(pos, msg) }, 0)
	for {
		pos, tok, lit := s.Scan()
		if tok == token.SEMICOLON && lit == "\n" {
			// automatically inserted at the end of the source
			continue
		}
		p.items = append(p.items, item{pos: file.Offset(pos), tok: tok, lit: lit})
		if tok == token.EOF {
			break
		}
	}
	if err := errs.Err(); err != nil {
		return syntaxError{src: p.src, msg: err.Error()}
	}
	return nil
}

func (p *parser) peek() item {
	return p.items[p.at]
}

func (p *parser) peekAt(offset int) item {
	if p.at+offset >= len(p.items) {
		return p.items[len(p.items)-1]
	}
	return p.items[p.at+offset]
}

func (p *parser) next() item {
	it := p.items[p.at]
	if it.tok != token.EOF {
		p.at++
	}
	return it
}

func (p *parser) expect(tok token.Token) (item, error) {
	it := p.next()
	if it.tok != tok {
		return it, p.errorf(it, "expected %s, found %s", tok, describe(it))
	}
	return it, nil
}

func (p *parser) errorf(at item, format string, args ...any) error {
	return syntaxError{src: p.src, pos: at.pos, msg: fmt.Sprintf(format, args...)}
}

func describe(it item) string {
	if it.tok == token.EOF {
		return "end of input"
	}
	if it.lit != "" {
		return fmt.Sprintf("%q", it.lit)
	}
	return fmt.Sprintf("'%s'", it.tok)
}

func (p *parser) parseExpr() (node, error) {
	if p.peek().tok == token.SUB {
		minus := p.next()
		operand, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		lit, ok := operand.(*litNode)
		if !ok {
			return nil, p.errorf(minus, "'-' only applies to number literals")
		}
		switch v := lit.value.(type) {
		case int:
			return &litNode{pos: minus.pos, value: -v, syntax: "-" + lit.syntax}, nil
		case float64:
			return &litNode{pos: minus.pos, value: -v, syntax: "-" + lit.syntax}, nil
		default:
			return nil, p.errorf(minus, "'-' only applies to number literals")
		}
	}
	x, err := p.parseOperand()
	if err != nil {
		return nil, err
	}
	for {
		switch p.peek().tok {
		case token.LBRACK:
			p.next()
			args, err := p.parseList(token.RBRACK)
			if err != nil {
				return nil, err
			}
			if len(args) == 0 {
				return nil, p.errorf(p.peekAt(-1), "empty type argument list")
			}
			x = &indexNode{base: x, args: args}
		case token.PERIOD:
			p.next()
			sel, err := p.expect(token.IDENT)
			if err != nil {
				return nil, err
			}
			x = &selectorNode{base: x, sel: sel.lit}
		case token.LPAREN:
			p.next()
			call, err := p.parseCall(x)
			if err != nil {
				return nil, err
			}
			x = call
		default:
			return x, nil
		}
	}
}

func (p *parser) parseOperand() (node, error) {
	it := p.next()
	switch it.tok {
	case token.IDENT:
		return &identNode{pos: it.pos, name: it.lit}, nil
	case token.INT:
		v, err := strconv.ParseInt(it.lit, 0, 0)
		if err != nil {
			return nil, p.errorf(it, "invalid integer %s: %v", it.lit, err)
		}
		return &litNode{pos: it.pos, value: int(v), syntax: it.lit}, nil
	case token.FLOAT:
		v, err := strconv.ParseFloat(it.lit, 64)
		if err != nil {
			return nil, p.errorf(it, "invalid float %s: %v", it.lit, err)
		}
		return &litNode{pos: it.pos, value: v, syntax: it.lit}, nil
	case token.STRING:
		v, err := strconv.Unquote(it.lit)
		if err != nil {
			return nil, p.errorf(it, "invalid string %s: %v", it.lit, err)
		}
		return &litNode{pos: it.pos, value: v, syntax: it.lit}, nil
	case token.CHAR:
		v, _, _, err := strconv.UnquoteChar(it.lit[1:len(it.lit)-1], '\'')
		if err != nil {
			return nil, p.errorf(it, "invalid rune %s: %v", it.lit, err)
		}
		return &litNode{pos: it.pos, value: v, syntax: it.lit}, nil
	default:
		return nil, p.errorf(it, "unexpected %s", describe(it))
	}
}

// parseList parses comma-separated expressions up to and including closing
func (p *parser) parseList(closing token.Token) ([]node, error) {
	var list []node
	for p.peek().tok != closing {
		n, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		list = append(list, n)
		if p.peek().tok != token.COMMA {
			break
		}
		p.next()
	}
	if _, err := p.expect(closing); err != nil {
		return nil, err
	}
	return list, nil
}

// parseCall parses arguments after '('. Keyword arguments are key=value and
// must come after every positional argument.
func (p *parser) parseCall(fn node) (*callNode, error) {
	call := &callNode{fn: fn}
	for p.peek().tok != token.RPAREN {
		if p.peek().tok == token.IDENT && p.peekAt(1).tok == token.ASSIGN {
			key := p.next()
			p.next()
			value, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			call.kwargs = append(call.kwargs, kwNode{key: key.lit, value: value})
		} else {
			if len(call.kwargs) > 0 {
				return nil, p.errorf(p.peek(), "positional argument after keyword argument")
			}
			arg, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			call.args = append(call.args, arg)
		}
		if p.peek().tok != token.COMMA {
			break
		}
		p.next()
	}
	if _, err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}
	return call, nil
}
