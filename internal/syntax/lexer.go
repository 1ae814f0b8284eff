package syntax

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/goliatone/go-trs/pkg/diag"
)

// TokenKind classifies lexed tokens.
type TokenKind int

const (
	EOF TokenKind = iota
	IDENT
	STRING
	CHAR
	INT
	FLOAT
	BOOL
	LBRACE
	RBRACE
	LPAREN
	RPAREN
	LBRACK
	RBRACK
	COLON
	COMMA
	ARROW
	PIPE
	OP
)

var kindNames = map[TokenKind]string{
	EOF:    "end of input",
	IDENT:  "identifier",
	STRING: "string",
	CHAR:   "character",
	INT:    "integer",
	FLOAT:  "float",
	BOOL:   "boolean",
	LBRACE: "'{'",
	RBRACE: "'}'",
	LPAREN: "'('",
	RPAREN: "')'",
	LBRACK: "'['",
	RBRACK: "']'",
	COLON:  "':'",
	COMMA:  "','",
	ARROW:  "'=>'",
	PIPE:   "'|'",
	OP:     "operator",
}

func (k TokenKind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "token"
}

// Token is one lexeme. Raw is the exact source text; Value holds the decoded
// string for STRING tokens.
type Token struct {
	Kind  TokenKind
	Raw   string
	Value string
	From  int
	To    int
}

func (t Token) describe() string {
	switch t.Kind {
	case EOF:
		return "end of input"
	case OP, IDENT, INT, FLOAT, BOOL:
		return strconv.Quote(t.Raw)
	default:
		return t.Kind.String()
	}
}

// twoCharOps are operators lexed as a single OP token.
var twoCharOps = map[string]bool{
	"==": true, "!=": true, "<=": true, ">=": true, "&&": true, "||": true,
	"<<": true, ">>": true, ":=": true, "&^": true, "++": true, "--": true,
}

type lexer struct {
	name string
	src  string
	pos  int
	toks []Token
}

// Tokenize splits src into tokens, ending with a single EOF token.
func Tokenize(name, src string) ([]Token, error) {
	lx := &lexer{name: name, src: src}
	for {
		if err := lx.skipSpaceAndComments(); err != nil {
			return nil, err
		}
		if lx.pos >= len(lx.src) {
			lx.toks = append(lx.toks, Token{Kind: EOF, From: lx.pos, To: lx.pos})
			return lx.toks, nil
		}
		if err := lx.next(); err != nil {
			return nil, err
		}
	}
}

func (lx *lexer) errorf(from, to int, format string, args ...any) error {
	return diag.New(diag.ErrSyntax, lx.name, lx.src, from, to, format, args...)
}

func (lx *lexer) emit(kind TokenKind, from int) {
	lx.toks = append(lx.toks, Token{Kind: kind, Raw: lx.src[from:lx.pos], From: from, To: lx.pos})
}

func (lx *lexer) skipSpaceAndComments() error {
	for lx.pos < len(lx.src) {
		r, size := utf8.DecodeRuneInString(lx.src[lx.pos:])
		switch {
		case unicode.IsSpace(r):
			lx.pos += size
		case strings.HasPrefix(lx.src[lx.pos:], "//"):
			end := strings.IndexByte(lx.src[lx.pos:], '\n')
			if end < 0 {
				lx.pos = len(lx.src)
			} else {
				lx.pos += end + 1
			}
		case strings.HasPrefix(lx.src[lx.pos:], "/*"):
			end := strings.Index(lx.src[lx.pos+2:], "*/")
			if end < 0 {
				return lx.errorf(lx.pos, lx.pos+2, "unterminated block comment")
			}
			lx.pos += end + 4
		default:
			return nil
		}
	}
	return nil
}

func (lx *lexer) next() error {
	start := lx.pos
	r, size := utf8.DecodeRuneInString(lx.src[lx.pos:])

	switch {
	case r == '"':
		return lx.quoted(start, '"', STRING)
	case r == '`':
		end := strings.IndexByte(lx.src[start+1:], '`')
		if end < 0 {
			return lx.errorf(start, len(lx.src), "unterminated raw string")
		}
		lx.pos = start + 1 + end + 1
		lx.toks = append(lx.toks, Token{
			Kind:  STRING,
			Raw:   lx.src[start:lx.pos],
			Value: lx.src[start+1 : lx.pos-1],
			From:  start,
			To:    lx.pos,
		})
		return nil
	case r == '\'':
		return lx.quoted(start, '\'', CHAR)
	case r >= '0' && r <= '9':
		lx.number(start)
		return nil
	case r == '_' || unicode.IsLetter(r):
		lx.pos += size
		for lx.pos < len(lx.src) {
			c, n := utf8.DecodeRuneInString(lx.src[lx.pos:])
			if c != '_' && !unicode.IsLetter(c) && !unicode.IsDigit(c) {
				break
			}
			lx.pos += n
		}
		kind := IDENT
		if word := lx.src[start:lx.pos]; word == "true" || word == "false" {
			kind = BOOL
		}
		lx.emit(kind, start)
		return nil
	}

	lx.pos += size
	switch r {
	case '{':
		lx.emit(LBRACE, start)
	case '}':
		lx.emit(RBRACE, start)
	case '(':
		lx.emit(LPAREN, start)
	case ')':
		lx.emit(RPAREN, start)
	case '[':
		lx.emit(LBRACK, start)
	case ']':
		lx.emit(RBRACK, start)
	case ',':
		lx.emit(COMMA, start)
	case ':':
		if lx.peekByte() == '=' {
			lx.pos++
			lx.emit(OP, start)
			return nil
		}
		lx.emit(COLON, start)
	case '=':
		if lx.peekByte() == '>' {
			lx.pos++
			lx.emit(ARROW, start)
			return nil
		}
		lx.operator(start)
	case '|':
		if lx.peekByte() == '|' {
			lx.pos++
			lx.emit(OP, start)
			return nil
		}
		lx.emit(PIPE, start)
	default:
		if !unicode.IsPrint(r) {
			return lx.errorf(start, lx.pos, "unexpected character %q", r)
		}
		lx.operator(start)
	}
	return nil
}

func (lx *lexer) peekByte() byte {
	if lx.pos >= len(lx.src) {
		return 0
	}
	return lx.src[lx.pos]
}

func (lx *lexer) operator(start int) {
	if lx.pos < len(lx.src) && twoCharOps[lx.src[start:lx.pos+1]] {
		lx.pos++
	}
	lx.emit(OP, start)
}

func (lx *lexer) quoted(start int, quote byte, kind TokenKind) error {
	i := start + 1
	for i < len(lx.src) {
		switch lx.src[i] {
		case '\\':
			i += 2
			continue
		case '\n':
			return lx.errorf(start, i, "newline in string literal")
		case quote:
			raw := lx.src[start : i+1]
			value, err := strconv.Unquote(raw)
			if err != nil && kind == STRING {
				return lx.errorf(start, i+1, "invalid string literal %s", raw)
			}
			lx.pos = i + 1
			lx.toks = append(lx.toks, Token{Kind: kind, Raw: raw, Value: value, From: start, To: lx.pos})
			return nil
		}
		i++
	}
	return lx.errorf(start, len(lx.src), "unterminated string literal")
}

// number scans a numeric literal greedily. Malformed shapes (hex prefixes,
// stray letters) are kept in one token so the classifier can report them as
// number format errors.
func (lx *lexer) number(start int) {
	isFloat := false
	scanDigits := func() {
		for lx.pos < len(lx.src) {
			c := lx.src[lx.pos]
			if c == '_' || (c >= '0' && c <= '9') || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') {
				if (c == 'e' || c == 'E') && lx.pos+1 < len(lx.src) && (lx.src[lx.pos+1] == '+' || lx.src[lx.pos+1] == '-') && !isHex(lx.src[start:lx.pos]) {
					isFloat = true
					lx.pos += 2
					continue
				}
				lx.pos++
				continue
			}
			break
		}
	}
	scanDigits()
	if lx.pos+1 < len(lx.src) && lx.src[lx.pos] == '.' && lx.src[lx.pos+1] >= '0' && lx.src[lx.pos+1] <= '9' {
		isFloat = true
		lx.pos++
		scanDigits()
	}
	raw := lx.src[start:lx.pos]
	if !isHex(raw) && strings.ContainsAny(raw, "eE") {
		isFloat = true
	}
	kind := INT
	if isFloat {
		kind = FLOAT
	}
	lx.emit(kind, start)
}

func isHex(raw string) bool {
	return strings.HasPrefix(raw, "0x") || strings.HasPrefix(raw, "0X")
}
