package syntax

import (
	"errors"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/goliatone/go-trs/pkg/ast"
	"github.com/goliatone/go-trs/pkg/diag"
	"github.com/goliatone/go-trs/pkg/tree"
)

const (
	keywordIf    = "if"
	keywordElse  = "else"
	keywordMatch = "match"
	wildcard     = "_"
)

// parseAttrValue classifies the right-hand side of an attribute. Quoted text,
// characters, numbers and booleans resolve to literals; braces, if and match
// defer to evaluation time.
func (p *parser) parseAttrValue() (ast.AttrExpr, error) {
	tok := p.cur()
	switch {
	case tok.Kind == LBRACE:
		open := tok
		expr, closeTok, err := p.hostBlock("attribute expression")
		if err != nil {
			return nil, err
		}
		return &ast.DynamicExpr{Value: &ast.HostExpr{Expr: expr}, Span: p.span(open.From, closeTok.To)}, nil
	case p.atKeyword(keywordIf):
		v, err := p.parseIf()
		if err != nil {
			return nil, err
		}
		return &ast.DynamicExpr{Value: v, Span: v.Span}, nil
	case p.atKeyword(keywordMatch):
		v, err := p.parseMatch()
		if err != nil {
			return nil, err
		}
		return &ast.DynamicExpr{Value: v, Span: v.Span}, nil
	}

	value, span, ok, err := p.parseLiteral()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, p.errorAt(tok, diag.ErrExpectedAttributeValue, "expected an attribute value (literal, {expression}, if or match), found %s", tok.describe())
	}
	return &ast.LiteralExpr{Value: value, Span: span}, nil
}

// parseLiteral consumes a literal token when one is present. ok is false,
// with nothing consumed, when the current token is not a literal.
func (p *parser) parseLiteral() (tree.AttrValue, ast.Span, bool, error) {
	tok := p.cur()
	switch tok.Kind {
	case STRING:
		p.advance()
		return tree.Text(tok.Value), tokenSpan(p.src, tok), true, nil
	case CHAR:
		if utf8.RuneCountInString(tok.Value) != 1 {
			return nil, ast.Span{}, false, p.errorAt(tok, diag.ErrSyntax, "invalid character literal %s", tok.Raw)
		}
		p.advance()
		return tree.Text(tok.Value), tokenSpan(p.src, tok), true, nil
	case BOOL:
		p.advance()
		return tree.Bool(tok.Raw == "true"), tokenSpan(p.src, tok), true, nil
	case INT, FLOAT:
		p.advance()
		value, err := p.number(tok, false)
		return value, tokenSpan(p.src, tok), err == nil, err
	case OP:
		next := p.peek()
		if tok.Raw != "-" || (next.Kind != INT && next.Kind != FLOAT) || next.From != tok.To {
			return nil, ast.Span{}, false, nil
		}
		p.advance()
		p.advance()
		value, err := p.number(next, true)
		return value, p.span(tok.From, next.To), err == nil, err
	default:
		return nil, ast.Span{}, false, nil
	}
}

// number parses an INT or FLOAT token. Integers are base 10; Go-style digit
// separators are accepted between digits.
func (p *parser) number(tok Token, negative bool) (tree.AttrValue, error) {
	digits, ok := stripSeparators(tok.Raw)
	if !ok {
		return nil, p.errorAt(tok, diag.ErrNumberFormat, "malformed number %s", tok.Raw)
	}
	if negative {
		digits = "-" + digits
	}

	if tok.Kind == FLOAT {
		f, err := strconv.ParseFloat(digits, 64)
		if err != nil {
			return nil, p.errorAt(tok, diag.ErrNumberFormat, "invalid float %s: %s", tok.Raw, numErrReason(err))
		}
		return tree.Float(f), nil
	}
	for _, c := range strings.TrimPrefix(digits, "-") {
		if c < '0' || c > '9' {
			return nil, p.errorAt(tok, diag.ErrNumberFormat, "invalid integer %s: only base-10 digits are allowed", tok.Raw)
		}
	}
	n, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return nil, p.errorAt(tok, diag.ErrNumberFormat, "invalid integer %s: %s", tok.Raw, numErrReason(err))
	}
	return tree.Int(n), nil
}

func numErrReason(err error) string {
	if errors.Is(err, strconv.ErrRange) {
		return "value out of range"
	}
	return "invalid syntax"
}

// stripSeparators removes '_' digit separators, rejecting leading, trailing
// or doubled ones and any separator not between two digits.
func stripSeparators(raw string) (string, bool) {
	if !strings.Contains(raw, "_") {
		return raw, true
	}
	var b strings.Builder
	for i := 0; i < len(raw); i++ {
		c := raw[i]
		if c != '_' {
			b.WriteByte(c)
			continue
		}
		if i == 0 || i == len(raw)-1 || !isDigit(raw[i-1]) || !isDigit(raw[i+1]) {
			return "", false
		}
	}
	return b.String(), true
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func (p *parser) lastEnd() int {
	if p.pos == 0 {
		return 0
	}
	return p.toks[p.pos-1].To
}

// parseIf parses `if cond { then } else { else }` with optional else-if
// chaining. The else branch is mandatory so evaluation always has a value.
func (p *parser) parseIf() (*ast.IfExpr, error) {
	ifTok := p.advance()
	cond, err := p.capture(ifTok, func(tok Token) bool { return tok.Kind == LBRACE })
	if err != nil {
		return nil, err
	}
	if cond.From == cond.To {
		return nil, p.errorAt(ifTok, diag.ErrSyntax, "if expression is missing a condition")
	}
	then, err := p.parseBranch("if branch")
	if err != nil {
		return nil, err
	}
	if !p.atKeyword(keywordElse) {
		return nil, p.errorSpan(p.span(ifTok.From, p.lastEnd()), diag.ErrSyntax, "if expression requires an else branch")
	}
	p.advance()

	var otherwise ast.Value
	if p.atKeyword(keywordIf) {
		otherwise, err = p.parseIf()
	} else {
		otherwise, err = p.parseBranch("else branch")
	}
	if err != nil {
		return nil, err
	}
	return &ast.IfExpr{
		Cond: cond,
		Then: then,
		Else: otherwise,
		Span: p.span(ifTok.From, p.lastEnd()),
	}, nil
}

// parseBranch parses a braced branch body: a nested if or match, or a host
// expression.
func (p *parser) parseBranch(what string) (ast.Value, error) {
	if !p.at(LBRACE) {
		return nil, p.errorAt(p.cur(), diag.ErrSyntax, "expected '{' to open %s, found %s", what, p.cur().describe())
	}
	if p.peekKeyword(keywordIf) || p.peekKeyword(keywordMatch) {
		open := p.advance()
		nested, err := p.parseNested()
		if err != nil {
			return nil, err
		}
		if !p.at(RBRACE) {
			return nil, p.errorAt(open, diag.ErrSyntax, "unclosed '{' of %s", what)
		}
		p.advance()
		return nested, nil
	}
	expr, _, err := p.hostBlock(what)
	if err != nil {
		return nil, err
	}
	return &ast.HostExpr{Expr: expr}, nil
}

func (p *parser) parseNested() (ast.Value, error) {
	if p.atKeyword(keywordIf) {
		return p.parseIf()
	}
	return p.parseMatch()
}

func (p *parser) peekKeyword(word string) bool {
	next := p.peek()
	return next.Kind == IDENT && next.Raw == word
}

// parseMatch parses `match subject { p1 | p2 => body, _ => body }`. Arm
// bodies are braced values or bare host expressions ending at ',' or '}'.
func (p *parser) parseMatch() (*ast.MatchExpr, error) {
	matchTok := p.advance()
	subject, err := p.capture(matchTok, func(tok Token) bool { return tok.Kind == LBRACE })
	if err != nil {
		return nil, err
	}
	if subject.From == subject.To {
		return nil, p.errorAt(matchTok, diag.ErrSyntax, "match expression is missing a subject")
	}
	open := p.advance()

	m := &ast.MatchExpr{Subject: subject}
	hasWildcard := false
	for !p.at(RBRACE) {
		if p.at(EOF) {
			return nil, p.errorAt(open, diag.ErrSyntax, "unclosed '{' of match expression")
		}
		arm, err := p.parseArm()
		if err != nil {
			return nil, err
		}
		hasWildcard = hasWildcard || arm.Wildcard
		m.Arms = append(m.Arms, arm)
	}
	p.advance()
	m.Span = p.span(matchTok.From, p.lastEnd())

	if !hasWildcard {
		return nil, p.errorSpan(m.Span, diag.ErrSyntax, "match expression requires a %q arm", wildcard)
	}
	return m, nil
}

func (p *parser) parseArm() (ast.MatchArm, error) {
	start := p.cur()
	var arm ast.MatchArm
	for {
		if p.atKeyword(wildcard) {
			p.advance()
			arm.Wildcard = true
		} else {
			value, _, ok, err := p.parseLiteral()
			if err != nil {
				return ast.MatchArm{}, err
			}
			if !ok {
				return ast.MatchArm{}, p.errorAt(p.cur(), diag.ErrSyntax, "expected a literal pattern or %q, found %s", wildcard, p.cur().describe())
			}
			arm.Patterns = append(arm.Patterns, value)
		}
		if !p.at(PIPE) {
			break
		}
		p.advance()
	}
	if _, err := p.expect(ARROW, "after match pattern"); err != nil {
		return ast.MatchArm{}, err
	}

	switch {
	case p.at(LBRACE):
		body, err := p.parseBranch("match arm")
		if err != nil {
			return ast.MatchArm{}, err
		}
		arm.Body = body
	case p.atKeyword(keywordIf) || p.atKeyword(keywordMatch):
		body, err := p.parseNested()
		if err != nil {
			return ast.MatchArm{}, err
		}
		arm.Body = body
	default:
		arrowEnd := p.lastEnd()
		expr, err := p.capture(start, func(tok Token) bool { return tok.Kind == COMMA || tok.Kind == RBRACE })
		if err != nil {
			return ast.MatchArm{}, err
		}
		if expr.From == expr.To {
			return ast.MatchArm{}, p.errorSpan(p.span(start.From, arrowEnd), diag.ErrSyntax, "match arm is missing a body")
		}
		arm.Body = &ast.HostExpr{Expr: expr}
	}
	arm.Span = p.span(start.From, p.lastEnd())
	if p.at(COMMA) {
		p.advance()
	}
	return arm, nil
}
