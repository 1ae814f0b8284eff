package hostexpr

import (
	"strconv"
)

type tokenStream struct {
	tokens []token
	pos    int
	funcs  map[string]Func
}

func (s *tokenStream) peek() token {
	return s.tokens[s.pos]
}

func (s *tokenStream) match(kinds ...tokenKind) (token, bool) {
	tok := s.tokens[s.pos]
	for _, kind := range kinds {
		if tok.kind == kind {
			if tok.kind != tokenEOF {
				s.pos++
			}
			return tok, true
		}
	}
	return token{}, false
}

func describe(tok token) string {
	if tok.kind == tokenEOF {
		return "end of expression"
	}
	return strconv.Quote(tok.raw)
}

func parseExpression(tokens []token, funcs map[string]Func) (exprNode, error) {
	stream := &tokenStream{tokens: tokens, funcs: funcs}
	if stream.peek().kind == tokenEOF {
		return nil, errorf(0, "empty expression")
	}
	node, err := parseOr(stream)
	if err != nil {
		return nil, err
	}
	if tok := stream.peek(); tok.kind != tokenEOF {
		return nil, errorf(tok.pos, "unexpected token %s", describe(tok))
	}
	return node, nil
}

func parseOr(stream *tokenStream) (exprNode, error) {
	left, err := parseAnd(stream)
	if err != nil {
		return nil, err
	}
	for {
		if _, ok := stream.match(tokenOr); !ok {
			return left, nil
		}
		right, err := parseAnd(stream)
		if err != nil {
			return nil, err
		}
		left = exprOr{left: left, right: right}
	}
}

func parseAnd(stream *tokenStream) (exprNode, error) {
	left, err := parseComparison(stream)
	if err != nil {
		return nil, err
	}
	for {
		if _, ok := stream.match(tokenAnd); !ok {
			return left, nil
		}
		right, err := parseComparison(stream)
		if err != nil {
			return nil, err
		}
		left = exprAnd{left: left, right: right}
	}
}

// Comparisons do not chain: `a < b < c` is rejected as an unexpected token.
func parseComparison(stream *tokenStream) (exprNode, error) {
	left, err := parseAdditive(stream)
	if err != nil {
		return nil, err
	}
	op, ok := stream.match(tokenEq, tokenNeq, tokenLt, tokenLte, tokenGt, tokenGte)
	if !ok {
		return left, nil
	}
	right, err := parseAdditive(stream)
	if err != nil {
		return nil, err
	}
	return exprBinary{op: op.kind, raw: op.raw, left: left, right: right}, nil
}

func parseAdditive(stream *tokenStream) (exprNode, error) {
	left, err := parseMultiplicative(stream)
	if err != nil {
		return nil, err
	}
	for {
		op, ok := stream.match(tokenPlus, tokenMinus)
		if !ok {
			return left, nil
		}
		right, err := parseMultiplicative(stream)
		if err != nil {
			return nil, err
		}
		left = exprBinary{op: op.kind, raw: op.raw, left: left, right: right}
	}
}

func parseMultiplicative(stream *tokenStream) (exprNode, error) {
	left, err := parseUnary(stream)
	if err != nil {
		return nil, err
	}
	for {
		op, ok := stream.match(tokenStar, tokenSlash, tokenPercent)
		if !ok {
			return left, nil
		}
		right, err := parseUnary(stream)
		if err != nil {
			return nil, err
		}
		left = exprBinary{op: op.kind, raw: op.raw, left: left, right: right}
	}
}

func parseUnary(stream *tokenStream) (exprNode, error) {
	if _, ok := stream.match(tokenNot); ok {
		inner, err := parseUnary(stream)
		if err != nil {
			return nil, err
		}
		return exprNot{inner: inner}, nil
	}
	if _, ok := stream.match(tokenMinus); ok {
		inner, err := parseUnary(stream)
		if err != nil {
			return nil, err
		}
		if lit, ok := inner.(exprLiteral); ok {
			switch v := lit.value.(type) {
			case int64:
				return exprLiteral{value: -v}, nil
			case float64:
				return exprLiteral{value: -v}, nil
			}
		}
		return exprNeg{inner: inner}, nil
	}
	return parsePrimary(stream)
}

func parsePrimary(stream *tokenStream) (exprNode, error) {
	tok := stream.peek()
	switch tok.kind {
	case tokenLParen:
		stream.pos++
		inner, err := parseOr(stream)
		if err != nil {
			return nil, err
		}
		if _, ok := stream.match(tokenRParen); !ok {
			return nil, errorf(stream.peek().pos, "missing closing ')'")
		}
		return inner, nil
	case tokenString:
		stream.pos++
		return exprLiteral{value: tok.raw}, nil
	case tokenBool:
		stream.pos++
		return exprLiteral{value: tok.raw == "true"}, nil
	case tokenNull:
		stream.pos++
		return exprLiteral{value: nil}, nil
	case tokenInt:
		stream.pos++
		n, err := strconv.ParseInt(tok.raw, 0, 64)
		if err != nil {
			return nil, errorf(tok.pos, "invalid integer literal %q", tok.raw)
		}
		return exprLiteral{value: n}, nil
	case tokenFloat:
		stream.pos++
		f, err := strconv.ParseFloat(tok.raw, 64)
		if err != nil {
			return nil, errorf(tok.pos, "invalid float literal %q", tok.raw)
		}
		return exprLiteral{value: f}, nil
	case tokenIdentifier:
		stream.pos++
		if stream.peek().kind == tokenLParen {
			return parseCall(stream, tok)
		}
		return exprIdent{name: tok.raw, pos: tok.pos}, nil
	case tokenEOF:
		return nil, errorf(tok.pos, "unexpected end of expression")
	default:
		return nil, errorf(tok.pos, "unexpected token %s", describe(tok))
	}
}

func parseCall(stream *tokenStream, name token) (exprNode, error) {
	fn, ok := stream.funcs[name.raw]
	if !ok {
		return nil, errorf(name.pos, "unknown function %q", name.raw)
	}
	stream.pos++ // '('

	call := exprCall{name: name.raw, fn: fn}
	if _, ok := stream.match(tokenRParen); ok {
		return call, nil
	}
	for {
		arg, err := parseOr(stream)
		if err != nil {
			return nil, err
		}
		call.args = append(call.args, arg)
		if _, ok := stream.match(tokenComma); ok {
			continue
		}
		if _, ok := stream.match(tokenRParen); ok {
			return call, nil
		}
		return nil, errorf(stream.peek().pos, "expected ',' or ')' in call to %s, found %s", name.raw, describe(stream.peek()))
	}
}
