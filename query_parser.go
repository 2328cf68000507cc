package facet

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// tokenType classifies boolean query tokens.
type tokenType int

const (
	tokenField tokenType = iota
	tokenValue
	tokenAnd
	tokenOr
	tokenNot
	tokenLParen
	tokenRParen
	tokenEOF
)

func (t tokenType) String() string {
	switch t {
	case tokenField:
		return "FIELD"
	case tokenValue:
		return "VALUE"
	case tokenAnd:
		return "AND"
	case tokenOr:
		return "OR"
	case tokenNot:
		return "NOT"
	case tokenLParen:
		return "LPAREN"
	case tokenRParen:
		return "RPAREN"
	case tokenEOF:
		return "EOF"
	default:
		return "UNKNOWN"
	}
}

type token struct {
	typ   tokenType
	value string
	pos   int
}

func (t token) String() string {
	if t.value != "" {
		return fmt.Sprintf("%s(%s)", t.typ, t.value)
	}
	return t.typ.String()
}

// queryLexer splits a boolean filter query into tokens. A field token is the
// part of a word before its first colon; the rest of the word, or the quoted
// string that follows the colon, is the value token.
type queryLexer struct {
	input     string
	pos       int
	wantValue bool
}

func (l *queryLexer) tokenize() ([]token, error) {
	var tokens []token
	for {
		tok, err := l.next()
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, tok)
		if tok.typ == tokenEOF {
			return tokens, nil
		}
	}
}

func (l *queryLexer) next() (token, error) {
	if l.wantValue {
		l.wantValue = false
		return l.readValue()
	}

	for l.pos < len(l.input) {
		r, width := utf8.DecodeRuneInString(l.input[l.pos:])
		if !unicode.IsSpace(r) {
			break
		}
		l.pos += width
	}
	if l.pos >= len(l.input) {
		return token{typ: tokenEOF, pos: l.pos}, nil
	}

	start := l.pos
	switch l.input[l.pos] {
	case '(':
		l.pos++
		return token{typ: tokenLParen, value: "(", pos: start}, nil
	case ')':
		l.pos++
		return token{typ: tokenRParen, value: ")", pos: start}, nil
	case '-':
		l.pos++
		return token{typ: tokenNot, value: "-", pos: start}, nil
	case '"':
		return token{}, dataErrorf("unexpected quoted value at position %d", start)
	}

	word := l.readWord()
	switch word {
	case "AND":
		return token{typ: tokenAnd, value: word, pos: start}, nil
	case "OR":
		return token{typ: tokenOr, value: word, pos: start}, nil
	case "NOT":
		return token{typ: tokenNot, value: word, pos: start}, nil
	}

	colon := strings.IndexByte(word, ':')
	if colon <= 0 {
		return token{}, dataErrorf("expected field:value at position %d, got %q", start, word)
	}
	// rewind to just after the colon so the value is read separately
	l.pos = start + colon + 1
	l.wantValue = true
	return token{typ: tokenField, value: word[:colon], pos: start}, nil
}

func (l *queryLexer) readWord() string {
	start := l.pos
	for l.pos < len(l.input) {
		r, width := utf8.DecodeRuneInString(l.input[l.pos:])
		if unicode.IsSpace(r) || r == '(' || r == ')' {
			break
		}
		l.pos += width
	}
	return l.input[start:l.pos]
}

func (l *queryLexer) readValue() (token, error) {
	start := l.pos
	if l.pos < len(l.input) && l.input[l.pos] == '"' {
		l.pos++
		var sb strings.Builder
		for l.pos < len(l.input) && l.input[l.pos] != '"' {
			if l.input[l.pos] == '\\' && l.pos+1 < len(l.input) && l.input[l.pos+1] == '"' {
				sb.WriteByte('"')
				l.pos += 2
				continue
			}
			sb.WriteByte(l.input[l.pos])
			l.pos++
		}
		if l.pos >= len(l.input) {
			return token{}, dataErrorf("unterminated quoted value at position %d", start)
		}
		l.pos++
		return token{typ: tokenValue, value: sb.String(), pos: start}, nil
	}

	value := l.readWord()
	if value == "" {
		return token{}, dataErrorf("missing value after field at position %d", start)
	}
	return token{typ: tokenValue, value: value, pos: start}, nil
}

// queryParser is a recursive-descent parser that evaluates a token stream
// straight into disjunctive normal form.
//
//	expr    := andExpr ("OR" andExpr)*
//	andExpr := primary (["AND"] primary)*
//	primary := field ":" value | "(" expr ")"
type queryParser struct {
	tokens []token
	pos    int
}

// ParseBooleanQuery parses a textual filter query into clause groups.
//
// The result is in disjunctive normal form: each group is a conjunction of
// field/value clauses, and the groups are OR-ed together. AND binds tighter
// than OR, juxtaposed atoms are AND-ed and parentheses override precedence.
// Negation is not part of the textual form and is rejected with a *DataError,
// as are malformed queries. A blank query yields no groups.
//
// Example:
//
//	groups, _ := ParseBooleanQuery("tags:novel OR category:Western")
//	// [[{tags novel}] [{category Western}]]
//
//	groups, _ = ParseBooleanQuery(`genre:Drama AND (year:1999 OR title:"The Matrix")`)
//	// [[{genre Drama} {year 1999}] [{genre Drama} {title The Matrix}]]
func ParseBooleanQuery(query string) ([]ClauseGroup, error) {
	if strings.TrimSpace(query) == "" {
		return nil, nil
	}
	lexer := &queryLexer{input: query}
	tokens, err := lexer.tokenize()
	if err != nil {
		return nil, err
	}

	p := &queryParser{tokens: tokens}
	groups, err := p.parseOrExpr()
	if err != nil {
		return nil, err
	}
	if tok := p.current(); tok.typ != tokenEOF {
		return nil, dataErrorf("unexpected %s at position %d", tok, tok.pos)
	}
	return groups, nil
}

func (p *queryParser) current() token {
	if p.pos >= len(p.tokens) {
		return token{typ: tokenEOF}
	}
	return p.tokens[p.pos]
}

func (p *queryParser) advance() token {
	tok := p.current()
	p.pos++
	return tok
}

func (p *queryParser) parseOrExpr() ([]ClauseGroup, error) {
	groups, err := p.parseAndExpr()
	if err != nil {
		return nil, err
	}
	for p.current().typ == tokenOr {
		p.advance()
		right, err := p.parseAndExpr()
		if err != nil {
			return nil, err
		}
		groups = append(groups, right...)
	}
	return groups, nil
}

func (p *queryParser) parseAndExpr() ([]ClauseGroup, error) {
	groups, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for {
		switch p.current().typ {
		case tokenAnd:
			p.advance()
		case tokenField, tokenLParen, tokenNot:
		default:
			return groups, nil
		}
		right, err := p.parsePrimary()
		if err != nil {
			return nil, err
		}
		groups = distribute(groups, right)
	}
}

func (p *queryParser) parsePrimary() ([]ClauseGroup, error) {
	tok := p.current()
	switch tok.typ {
	case tokenLParen:
		p.advance()
		groups, err := p.parseOrExpr()
		if err != nil {
			return nil, err
		}
		if p.current().typ != tokenRParen {
			return nil, dataErrorf("expected ')' at position %d, got %s", p.current().pos, p.current())
		}
		p.advance()
		return groups, nil
	case tokenField:
		p.advance()
		value := p.advance()
		if value.typ != tokenValue {
			return nil, dataErrorf("expected value after field %q", tok.value)
		}
		return []ClauseGroup{{{Field: tok.value, Value: value.value}}}, nil
	case tokenNot:
		return nil, dataErrorf("negation is not supported in filter queries (position %d)", tok.pos)
	case tokenEOF:
		return nil, dataErrorf("unexpected end of filter query")
	default:
		return nil, dataErrorf("unexpected %s at position %d", tok, tok.pos)
	}
}

// distribute returns the AND of two DNF expressions: every group of left
// joined with every group of right.
func distribute(left, right []ClauseGroup) []ClauseGroup {
	out := make([]ClauseGroup, 0, len(left)*len(right))
	for _, l := range left {
		for _, r := range right {
			g := make(ClauseGroup, 0, len(l)+len(r))
			g = append(g, l...)
			g = append(g, r...)
			out = append(out, g)
		}
	}
	return out
}
