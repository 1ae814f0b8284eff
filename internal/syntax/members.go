package syntax

type memberKind int

const (
	memberInvalid memberKind = iota
	memberEnd
	memberUnclosed
	memberAttr
	memberExpr
	memberText
	memberElement
)

func (k memberKind) String() string {
	switch k {
	case memberEnd:
		return "end"
	case memberUnclosed:
		return "unclosed"
	case memberAttr:
		return "attribute"
	case memberExpr:
		return "expression"
	case memberText:
		return "text"
	case memberElement:
		return "element"
	default:
		return "invalid"
	}
}

// memberRule maps the current token (and, unless anyNext is set, the one
// after it) to the kind of member that starts there. Rules are tried in order.
type memberRule struct {
	cur     TokenKind
	next    TokenKind
	anyNext bool
	kind    memberKind
}

var memberRules = []memberRule{
	{cur: RBRACE, anyNext: true, kind: memberEnd},
	{cur: EOF, anyNext: true, kind: memberUnclosed},
	{cur: IDENT, next: COLON, kind: memberAttr},
	{cur: LBRACE, anyNext: true, kind: memberExpr},
	{cur: STRING, anyNext: true, kind: memberText},
	{cur: IDENT, anyNext: true, kind: memberElement},
}

// decideMember picks what the body of an element holds at the current
// position. memberInvalid falls through to parseNode, which reports the error.
func decideMember(cur, next TokenKind) memberKind {
	for _, rule := range memberRules {
		if rule.cur != cur {
			continue
		}
		if rule.anyNext || rule.next == next {
			return rule.kind
		}
	}
	return memberInvalid
}
