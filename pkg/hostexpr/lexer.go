package hostexpr

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

type tokenKind int

const (
	tokenEOF tokenKind = iota
	tokenIdentifier
	tokenString
	tokenInt
	tokenFloat
	tokenBool
	tokenNull
	tokenEq
	tokenNeq
	tokenLt
	tokenLte
	tokenGt
	tokenGte
	tokenAnd
	tokenOr
	tokenNot
	tokenPlus
	tokenMinus
	tokenStar
	tokenSlash
	tokenPercent
	tokenLParen
	tokenRParen
	tokenComma
)

type token struct {
	kind tokenKind
	raw  string
	pos  int
}

var operators = []struct {
	raw  string
	kind tokenKind
}{
	{"==", tokenEq},
	{"!=", tokenNeq},
	{"<=", tokenLte},
	{">=", tokenGte},
	{"&&", tokenAnd},
	{"||", tokenOr},
	{"<", tokenLt},
	{">", tokenGt},
	{"!", tokenNot},
	{"+", tokenPlus},
	{"-", tokenMinus},
	{"*", tokenStar},
	{"/", tokenSlash},
	{"%", tokenPercent},
	{"(", tokenLParen},
	{")", tokenRParen},
	{",", tokenComma},
}

func tokenize(input string) ([]token, error) {
	var tokens []token
	i := 0

	for i < len(input) {
		r, size := utf8.DecodeRuneInString(input[i:])
		if unicode.IsSpace(r) {
			i += size
			continue
		}

		switch {
		case r == '"' || r == '`' || r == '\'':
			end, err := scanQuoted(input, i)
			if err != nil {
				return nil, err
			}
			value, err := strconv.Unquote(input[i:end])
			if err != nil {
				return nil, errorf(i, "invalid string literal %s", input[i:end])
			}
			tokens = append(tokens, token{kind: tokenString, raw: value, pos: i})
			i = end
			continue
		case r >= '0' && r <= '9':
			start := i
			kind := tokenInt
			for i < len(input) {
				c := input[i]
				switch {
				case c == '.' && i+1 < len(input) && input[i+1] >= '0' && input[i+1] <= '9':
					kind = tokenFloat
				case (c == 'e' || c == 'E') && !strings.HasPrefix(input[start:], "0x") && !strings.HasPrefix(input[start:], "0X"):
					kind = tokenFloat
					if i+1 < len(input) && (input[i+1] == '+' || input[i+1] == '-') {
						i++
					}
				case c == '_' || isAlnum(c):
				default:
					goto done
				}
				i++
			}
		done:
			tokens = append(tokens, token{kind: kind, raw: input[start:i], pos: start})
			continue
		case r == '_' || unicode.IsLetter(r):
			start := i
			for i < len(input) {
				c, n := utf8.DecodeRuneInString(input[i:])
				if c != '_' && c != '.' && !unicode.IsLetter(c) && !unicode.IsDigit(c) {
					break
				}
				i += n
			}
			raw := input[start:i]
			if strings.HasSuffix(raw, ".") || strings.Contains(raw, "..") {
				return nil, errorf(start, "malformed identifier %q", raw)
			}
			switch raw {
			case "true", "false":
				tokens = append(tokens, token{kind: tokenBool, raw: raw, pos: start})
			case "nil", "null":
				tokens = append(tokens, token{kind: tokenNull, raw: raw, pos: start})
			default:
				tokens = append(tokens, token{kind: tokenIdentifier, raw: raw, pos: start})
			}
			continue
		}

		matched := false
		for _, op := range operators {
			if strings.HasPrefix(input[i:], op.raw) {
				tokens = append(tokens, token{kind: op.kind, raw: op.raw, pos: i})
				i += len(op.raw)
				matched = true
				break
			}
		}
		if !matched {
			return nil, errorf(i, "unexpected character %q", r)
		}
	}

	tokens = append(tokens, token{kind: tokenEOF, pos: len(input)})
	return tokens, nil
}

func scanQuoted(input string, start int) (int, error) {
	quote := input[start]
	i := start + 1
	for i < len(input) {
		c := input[i]
		switch {
		case c == '\\' && quote != '`':
			i += 2
			continue
		case c == quote:
			return i + 1, nil
		}
		i++
	}
	return 0, errorf(start, "unterminated string literal")
}

func isAlnum(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
