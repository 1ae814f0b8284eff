package syntax

import (
	"github.com/goliatone/go-trs/pkg/ast"
	"github.com/goliatone/go-trs/pkg/diag"
	"github.com/goliatone/go-trs/pkg/tags"
	"github.com/goliatone/go-trs/pkg/tree"
)

// Parse turns template source into an AST, validating tags (and declared
// attributes) against reg. An empty source yields a template with a nil
// root. Any failure aborts the whole parse and is reported as a *diag.Error.
func Parse(name, src string, reg *tags.Registry) (*ast.Template, error) {
	toks, err := Tokenize(name, src)
	if err != nil {
		return nil, err
	}
	if reg == nil {
		reg = tags.Minimal()
	}
	p := &parser{name: name, src: src, toks: toks, reg: reg}

	tmpl := &ast.Template{Name: name, Source: src}
	if p.at(EOF) {
		return tmpl, nil
	}
	root, err := p.parseNode()
	if err != nil {
		return nil, err
	}
	if !p.at(EOF) {
		return nil, p.errorAt(p.cur(), diag.ErrSyntax, "unexpected %s after root node", p.cur().describe())
	}
	tmpl.Root = root
	return tmpl, nil
}

type parser struct {
	name string
	src  string
	toks []Token
	pos  int
	reg  *tags.Registry
}

func (p *parser) cur() Token {
	return p.toks[p.pos]
}

func (p *parser) peek() Token {
	if p.pos+1 < len(p.toks) {
		return p.toks[p.pos+1]
	}
	return p.toks[len(p.toks)-1]
}

func (p *parser) at(kind TokenKind) bool {
	return p.cur().Kind == kind
}

func (p *parser) atKeyword(word string) bool {
	tok := p.cur()
	return tok.Kind == IDENT && tok.Raw == word
}

func (p *parser) advance() Token {
	tok := p.toks[p.pos]
	if tok.Kind != EOF {
		p.pos++
	}
	return tok
}

func (p *parser) expect(kind TokenKind, context string) (Token, error) {
	tok := p.cur()
	if tok.Kind != kind {
		return Token{}, p.errorAt(tok, diag.ErrSyntax, "expected %s %s, found %s", kind, context, tok.describe())
	}
	return p.advance(), nil
}

func (p *parser) errorAt(tok Token, kind error, format string, args ...any) error {
	return diag.New(kind, p.name, p.src, tok.From, tok.To, format, args...)
}

func (p *parser) errorSpan(span ast.Span, kind error, format string, args ...any) error {
	return diag.New(kind, p.name, p.src, span.From, span.To, format, args...)
}

func (p *parser) span(from, to int) ast.Span {
	return ast.Span{From: from, To: to, Src: p.src[from:to]}
}

func tokenSpan(src string, tok Token) ast.Span {
	return ast.Span{From: tok.From, To: tok.To, Src: src[tok.From:tok.To]}
}

// parseNode parses `"text"`, `{ expr }` or `tag { members }`.
func (p *parser) parseNode() (ast.Node, error) {
	tok := p.cur()
	switch tok.Kind {
	case STRING:
		p.advance()
		return &ast.TextNode{Value: tok.Value, Span: tokenSpan(p.src, tok)}, nil
	case LBRACE:
		open := tok
		expr, closeTok, err := p.hostBlock("expression")
		if err != nil {
			return nil, err
		}
		return &ast.ExpressionNode{Expr: expr, Span: p.span(open.From, closeTok.To)}, nil
	case IDENT:
		return p.parseElement()
	default:
		return nil, p.errorAt(tok, diag.ErrSyntax, "expected a node (text, {expression} or tag { ... }), found %s", tok.describe())
	}
}

func (p *parser) parseElement() (ast.Node, error) {
	nameTok := p.advance()
	schema, ok := p.reg.Lookup(nameTok.Raw)
	if !ok {
		return nil, p.errorAt(nameTok, diag.ErrUnknownTag, "%s is not a valid tag", nameTok.Raw)
	}

	open, err := p.expect(LBRACE, "after tag "+nameTok.Raw)
	if err != nil {
		return nil, err
	}

	el := &ast.ElementNode{Tag: nameTok.Raw, TagSpan: tokenSpan(p.src, nameTok)}
	for {
		switch decideMember(p.cur().Kind, p.peek().Kind) {
		case memberEnd:
			closeTok := p.advance()
			el.Span = p.span(nameTok.From, closeTok.To)
			return el, nil
		case memberUnclosed:
			return nil, p.errorAt(open, diag.ErrSyntax, "unclosed '{' of tag %s", nameTok.Raw)
		case memberAttr:
			attr, err := p.parseAttr(schema)
			if err != nil {
				return nil, err
			}
			el.Attrs = append(el.Attrs, attr)
		default:
			child, err := p.parseNode()
			if err != nil {
				return nil, err
			}
			el.Children = append(el.Children, child)
		}
	}
}

// parseAttr parses `name: value [,]`.
func (p *parser) parseAttr(schema tags.Schema) (ast.Attr, error) {
	nameTok := p.advance()
	kind, permitted := schema.Permits(nameTok.Raw)
	if !permitted {
		return ast.Attr{}, p.errorAt(nameTok, diag.ErrUnknownAttribute, "attribute %s is not permitted on tag %s", nameTok.Raw, schema.Name)
	}
	p.advance() // ':'

	value, err := p.parseAttrValue()
	if err != nil {
		return ast.Attr{}, err
	}
	if lit, ok := value.(*ast.LiteralExpr); ok && kind != tree.KindAny {
		coerced, ok := tree.Coerce(lit.Value, kind)
		if !ok {
			return ast.Attr{}, p.errorSpan(lit.Span, diag.ErrAttributeType, "attribute %s of tag %s expects %s, got %s", nameTok.Raw, schema.Name, kind, lit.Value.Kind())
		}
		lit.Value = coerced
	}
	if p.at(COMMA) {
		p.advance()
	}
	return ast.Attr{
		Name:     nameTok.Raw,
		NameSpan: tokenSpan(p.src, nameTok),
		Kind:     kind,
		Value:    value,
	}, nil
}

// hostBlock consumes `{ ... }` and returns the span strictly inside the
// braces. what names the construct for error messages.
func (p *parser) hostBlock(what string) (ast.Span, Token, error) {
	open, err := p.expect(LBRACE, "to open "+what)
	if err != nil {
		return ast.Span{}, Token{}, err
	}
	span, err := p.capture(open, func(tok Token) bool { return tok.Kind == RBRACE })
	if err != nil {
		return ast.Span{}, Token{}, err
	}
	closeTok := p.advance()
	if span.From == span.To {
		return ast.Span{}, Token{}, p.errorSpan(p.span(open.From, closeTok.To), diag.ErrSyntax, "empty %s", what)
	}
	return span, closeTok, nil
}

// capture scans a balanced run of tokens up to (not including) the first
// token at nesting depth zero for which stop reports true. The returned span
// covers the scanned tokens; it is empty when stop matches immediately.
// opener is the token that owns the run, used for unclosed-bracket errors.
func (p *parser) capture(opener Token, stop func(Token) bool) (ast.Span, error) {
	var stack []Token
	first := p.cur()
	last := Token{To: first.From}

	for {
		tok := p.cur()
		if tok.Kind == EOF {
			if len(stack) > 0 {
				opener = stack[len(stack)-1]
			}
			return ast.Span{}, p.errorAt(opener, diag.ErrSyntax, "unclosed %s", opener.Kind)
		}
		if len(stack) == 0 && stop(tok) {
			break
		}
		switch tok.Kind {
		case LBRACE, LPAREN, LBRACK:
			stack = append(stack, tok)
		case RBRACE, RPAREN, RBRACK:
			if len(stack) == 0 {
				return ast.Span{}, p.errorAt(tok, diag.ErrSyntax, "unexpected %s", tok.Kind)
			}
			top := stack[len(stack)-1]
			if closerOf(top.Kind) != tok.Kind {
				return ast.Span{}, p.errorAt(tok, diag.ErrSyntax, "mismatched %s, expected %s", tok.Kind, closerOf(top.Kind))
			}
			stack = stack[:len(stack)-1]
		}
		last = p.advance()
	}
	return p.span(first.From, max(first.From, last.To)), nil
}

func closerOf(kind TokenKind) TokenKind {
	switch kind {
	case LBRACE:
		return RBRACE
	case LPAREN:
		return RPAREN
	default:
		return RBRACK
	}
}
