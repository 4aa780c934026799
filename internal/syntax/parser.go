package syntax

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/alecthomas/participle/v2/lexer"
)

// DefaultMaxDepth bounds group and class nesting.
const DefaultMaxDepth = 1000

// Parser turns pattern source into a syntax tree. The zero value is ready
// to use.
type Parser struct {
	// MaxDepth bounds nesting of groups and classes; zero means DefaultMaxDepth.
	MaxDepth int
}

// Parse parses pattern with the default settings. filename only labels
// positions in errors and may be empty.
func Parse(filename, pattern string) (Node, error) {
	return Parser{}.Parse(filename, pattern)
}

// Error is a parse error with the position it was detected at.
type Error = lexer.Error

// Parse parses pattern. Errors are *Error values.
func (cfg Parser) Parse(filename, pattern string) (Node, error) {
	if err := checkUTF8(filename, pattern); err != nil {
		return nil, err
	}
	lex, err := lexDef.LexString(filename, pattern)
	if err != nil {
		return nil, err
	}
	toks, err := lexer.ConsumeAll(lex)
	if err != nil {
		return nil, err
	}
	p := &parser{toks: toks, maxDepth: cfg.MaxDepth}
	if p.maxDepth <= 0 {
		p.maxDepth = DefaultMaxDepth
	}
	p.end = toks[0].Pos
	n, err := p.parseAlt()
	if err != nil {
		return nil, err
	}
	switch tok := p.peek(); tok.Type {
	case tEOF:
		return n, nil
	case tGroupClose:
		return nil, errorf(tok.Pos, "unmatched )")
	default:
		return nil, errorf(tok.Pos, "unexpected %q", tok.Value)
	}
}

// checkUTF8 reports the first byte of pattern that is not valid UTF-8.
func checkUTF8(filename, pattern string) error {
	if utf8.ValidString(pattern) {
		return nil
	}
	pos := lexer.Position{Filename: filename, Line: 1, Column: 1}
	for i, r := range pattern {
		if r == utf8.RuneError {
			if _, size := utf8.DecodeRuneInString(pattern[i:]); size == 1 {
				pos.Advance(pattern[:i])
				return errorf(pos, "invalid UTF-8 byte %#x", pattern[i])
			}
		}
	}
	return nil
}

type parser struct {
	toks     []lexer.Token
	pos      int
	end      lexer.Position // end of the last consumed token
	depth    int
	maxDepth int
}

func errorf(pos lexer.Position, format string, args ...any) error {
	return &Error{Msg: fmt.Sprintf(format, args...), Pos: pos}
}

func (p *parser) peek() lexer.Token { return p.toks[p.pos] }

func (p *parser) next() lexer.Token {
	tok := p.toks[p.pos]
	if tok.Type != tEOF {
		p.pos++
		p.end = tok.Pos
		p.end.Advance(tok.Value)
	}
	return tok
}

func (p *parser) span(start lexer.Position) Location {
	return Location{Start: start, End: p.end}
}

func (p *parser) enter(pos lexer.Position) error {
	p.depth++
	if p.depth > p.maxDepth {
		return errorf(pos, "pattern nests deeper than %d levels", p.maxDepth)
	}
	return nil
}

func (p *parser) leave() { p.depth-- }

/* ----------------------------- expressions ----------------------------- */

// parseAlt handles concat ('|' concat)*.
func (p *parser) parseAlt() (Node, error) {
	start := p.peek().Pos
	first, err := p.parseConcat()
	if err != nil {
		return nil, err
	}
	if p.peek().Type != tAlt {
		return first, nil
	}
	branches := []Node{first}
	for p.peek().Type == tAlt {
		p.next()
		n, err := p.parseConcat()
		if err != nil {
			return nil, err
		}
		branches = append(branches, n)
	}
	return &Alternation{Location: p.span(start), Branches: branches}, nil
}

// parseConcat handles a run of quantified atoms up to '|', ')' or the end.
func (p *parser) parseConcat() (Node, error) {
	start := p.peek().Pos
	var items []Node
	for {
		switch p.peek().Type {
		case tEOF, tAlt, tGroupClose:
			switch len(items) {
			case 0:
				return &Empty{Location: Location{Start: start, End: start}}, nil
			case 1:
				return items[0], nil
			}
			return &Concatenation{Location: p.span(start), Items: items}, nil
		}
		n, err := p.parseQuantified()
		if err != nil {
			return nil, err
		}
		items = append(items, n)
	}
}

func (p *parser) parseQuantified() (Node, error) {
	if tok := p.peek(); tok.Type == tQuant || tok.Type == tCount {
		return nil, errorf(tok.Pos, "quantifier %q has nothing to repeat", tok.Value)
	}
	start := p.peek().Pos
	n, err := p.parseAtom()
	if err != nil {
		return nil, err
	}
	for {
		tok := p.peek()
		if tok.Type != tQuant && tok.Type != tCount {
			return n, nil
		}
		p.next()
		amount, rest := parseAmount(tok.Value)
		q := &Quantification{Amount: amount, Kind: Eager, Child: n}
		switch rest {
		case "?":
			q.Kind = Reluctant
		case "+":
			q.Kind = Possessive
		}
		q.Location = p.span(start)
		n = q
	}
}

// parseAmount decodes "*", "+", "?" or "{n,m}", returning any trailing
// modifier.
func parseAmount(s string) (Amount, string) {
	switch s[0] {
	case '*':
		return Amount{Kind: ZeroOrMore}, s[1:]
	case '+':
		return Amount{Kind: OneOrMore}, s[1:]
	case '?':
		return Amount{Kind: ZeroOrOne}, s[1:]
	}
	end := strings.IndexByte(s, '}')
	body, rest := s[1:end], s[end+1:]
	lo, hi, comma := strings.Cut(body, ",")
	switch {
	case !comma:
		return Amount{Kind: Exactly, N: number(lo)}, rest
	case lo == "":
		return Amount{Kind: UpToN, N: number(hi)}, rest
	case hi == "":
		return Amount{Kind: NOrMore, N: number(lo)}, rest
	}
	return Amount{Kind: RangeOf, N: number(lo), M: number(hi)}, rest
}

func number(digits string) Number {
	v, err := strconv.Atoi(digits)
	if err != nil {
		return Number{}
	}
	return Number{Value: v, Valid: true}
}

func (p *parser) parseAtom() (Node, error) {
	tok := p.next()
	loc := func() Location { return p.span(tok.Pos) }
	switch tok.Type {
	case tGroupOpen:
		return p.parseGroup(tok)
	case tOptionsOpen:
		opts := tok.Value[2 : len(tok.Value)-1]
		if strings.HasSuffix(tok.Value, ")") {
			return &Atom{Location: loc(), Kind: AtomChangeMatchingOptions, Name: opts, Text: tok.Value}, nil
		}
		g, err := p.parseGroup(tok)
		if err != nil {
			return nil, err
		}
		g.(*Group).Options = opts
		return g, nil
	case tCondOpen:
		return p.parseConditional(tok)
	case tAbsentOpen:
		if err := p.enter(tok.Pos); err != nil {
			return nil, err
		}
		defer p.leave()
		child, err := p.parseAlt()
		if err != nil {
			return nil, err
		}
		if err := p.expectClose(tok); err != nil {
			return nil, err
		}
		return &AbsentFunction{Location: loc(), Child: child}, nil
	case tClassOpen:
		return p.parseClass(tok)
	case tQuote:
		return &Quote{Location: loc(), Literal: quoted(tok.Value)}, nil
	case tComment:
		return &Trivia{Location: loc(), Text: tok.Value}, nil
	case tInterpolation:
		return &Interpolation{Location: loc(), Text: tok.Value[2 : len(tok.Value)-2]}, nil
	case tDot:
		return &Atom{Location: loc(), Kind: AtomDot, Text: tok.Value}, nil
	case tCaret:
		return &Atom{Location: loc(), Kind: AtomStartOfLine, Text: tok.Value}, nil
	case tDollar:
		return &Atom{Location: loc(), Kind: AtomEndOfLine, Text: tok.Value}, nil
	case tCallout:
		return &Atom{Location: loc(), Kind: AtomCallout, Text: tok.Value}, nil
	case tVerb:
		return &Atom{Location: loc(), Kind: AtomBacktrackingDirective, Text: tok.Value}, nil
	case tRecurse:
		return &Atom{Location: loc(), Kind: AtomSubpattern, Name: tok.Value[2 : len(tok.Value)-1], Text: tok.Value}, nil
	case tGroupClose:
		return nil, errorf(tok.Pos, "unmatched )")
	case tEOF:
		return nil, errorf(tok.Pos, "unexpected end of pattern")
	}
	return p.atom(tok)
}

func (p *parser) expectClose(open lexer.Token) error {
	tok := p.peek()
	if tok.Type != tGroupClose {
		return errorf(open.Pos, "missing ) for %q", open.Value)
	}
	p.next()
	return nil
}

func (p *parser) parseGroup(open lexer.Token) (Node, error) {
	if err := p.enter(open.Pos); err != nil {
		return nil, err
	}
	defer p.leave()
	g := &Group{}
	switch v := open.Value; {
	case v == "(":
		g.Kind = GroupCapture
	case v == "(?:":
		g.Kind = GroupNonCapture
	case v == "(?>":
		g.Kind = GroupAtomic
	case v == "(?=":
		g.Kind = GroupLookahead
	case v == "(?!":
		g.Kind = GroupNegativeLookahead
	case v == "(?<=":
		g.Kind = GroupLookbehind
	case v == "(?<!":
		g.Kind = GroupNegativeLookbehind
	case open.Type == tOptionsOpen:
		g.Kind = GroupOptions
	default:
		g.Kind = GroupNamedCapture
		g.Name = strings.TrimLeft(v, "(?P")
		g.Name = g.Name[1 : len(g.Name)-1]
	}
	child, err := p.parseAlt()
	if err != nil {
		return nil, err
	}
	if err := p.expectClose(open); err != nil {
		return nil, err
	}
	g.Child = child
	g.Location = p.span(open.Pos)
	return g, nil
}

func (p *parser) parseConditional(open lexer.Token) (Node, error) {
	if err := p.enter(open.Pos); err != nil {
		return nil, err
	}
	defer p.leave()
	var cond strings.Builder
	for {
		tok := p.next()
		switch tok.Type {
		case tEOF:
			return nil, errorf(open.Pos, "unterminated condition")
		case tGroupClose:
		default:
			cond.WriteString(tok.Value)
			continue
		}
		break
	}
	branches, err := p.parseAlt()
	if err != nil {
		return nil, err
	}
	if err := p.expectClose(open); err != nil {
		return nil, err
	}
	return &Conditional{Location: p.span(open.Pos), Condition: cond.String(), Branches: branches}, nil
}

func quoted(v string) string {
	v = strings.TrimPrefix(v, `\Q`)
	return strings.TrimSuffix(v, `\E`)
}

/* ----------------------------- atoms ----------------------------------- */

var escapes = map[rune]rune{
	'n': '\n',
	't': '\t',
	'r': '\r',
	'f': '\f',
	'a': '\a',
	'e': 0x1B,
	'0': 0,
}

// introducers start escapes with their own syntax. Seeing one as a plain
// escaped character means the rest of that syntax did not follow.
const introducers = "xuUocCMNpPkg"

// atom decodes a single-token atom valid both inside and outside classes.
func (p *parser) atom(tok lexer.Token) (*Atom, error) {
	a := &Atom{Location: p.span(tok.Pos), Text: tok.Value}
	v := tok.Value
	switch tok.Type {
	case tChar:
		if v == `\` {
			return nil, errorf(tok.Pos, "trailing backslash")
		}
		a.Kind = AtomChar
		a.Char, _ = utf8.DecodeRuneInString(v)
	case tEscaped:
		a.Kind = AtomEscaped
		r, _ := utf8.DecodeRuneInString(v[1:])
		if strings.ContainsRune(introducers, r) {
			return nil, errorf(tok.Pos, "malformed %s escape", v)
		}
		if c, ok := escapes[r]; ok {
			r = c
		}
		a.Char = r
	case tScalar:
		vals, err := scalars(v)
		if err != nil {
			return nil, errorf(tok.Pos, "invalid scalar %q: %v", v, err)
		}
		if len(vals) == 1 {
			a.Kind, a.Char = AtomScalar, vals[0]
		} else {
			a.Kind, a.Scalars = AtomScalarSequence, vals
		}
	case tNamedChar:
		a.Kind = AtomNamedCharacter
		a.Name = v[3 : len(v)-1]
	case tProperty:
		a.Kind = AtomProperty
		a.Name = strings.Trim(v[2:], "{}")
	case tPosix:
		a.Kind = AtomProperty
		a.Name = v[2 : len(v)-2]
	case tControl:
		a.Kind = AtomKeyboardControl
		a.Char = lastRune(v)
	case tMeta:
		a.Kind = AtomKeyboardMeta
		a.Char = lastRune(v)
	case tMetaControl:
		a.Kind = AtomKeyboardMetaControl
		a.Char = lastRune(v)
	case tBackRef:
		a.Kind = AtomBackreference
		a.Name = strings.Trim(strings.TrimLeft(v[1:], "kg"), "<>'{}")
	case tSubpattern:
		a.Kind = AtomSubpattern
		a.Name = strings.Trim(v[2:], "<>'")
	case tBuiltinClass:
		a.Kind = AtomBuiltinClass
	case tAssertion:
		a.Kind = AtomAssertion
	default:
		return nil, errorf(tok.Pos, "unexpected %q", v)
	}
	return a, nil
}

func lastRune(s string) rune {
	r, _ := utf8.DecodeLastRuneInString(s)
	return r
}

// scalars decodes \xHH, \uHHHH, \UHHHHHHHH and the braced forms, which may
// list several whitespace separated values.
func scalars(v string) ([]rune, error) {
	base := 16
	if v[1] == 'o' {
		base = 8
	}
	body := v[2:]
	if strings.HasPrefix(body, "{") {
		body = body[1 : len(body)-1]
	}
	fields := strings.Fields(body)
	if len(fields) == 0 {
		return nil, fmt.Errorf("no digits")
	}
	out := make([]rune, 0, len(fields))
	for _, f := range fields {
		n, err := strconv.ParseUint(f, base, 32)
		if err != nil {
			return nil, err
		}
		if n > utf8.MaxRune {
			return nil, fmt.Errorf("%s is beyond the Unicode range", f)
		}
		out = append(out, rune(n))
	}
	return out, nil
}

/* ----------------------------- classes --------------------------------- */

func (p *parser) parseClass(open lexer.Token) (Node, error) {
	if err := p.enter(open.Pos); err != nil {
		return nil, err
	}
	defer p.leave()
	cc := &CustomClass{Inverted: open.Value == "[^"}
	members, err := p.parseMembers(open)
	if err != nil {
		return nil, err
	}
	for p.peek().Type == tSetOp {
		opTok := p.next()
		rhs, err := p.parseMembers(open)
		if err != nil {
			return nil, err
		}
		op := Subtraction
		switch opTok.Value {
		case "&&":
			op = Intersection
		case "~~":
			op = SymmetricDifference
		}
		start := opTok.Pos
		if len(members) > 0 {
			start = members[0].Loc().Start
		}
		members = []Member{&SetOperation{Location: p.span(start), Lhs: members, Op: op, Rhs: rhs}}
	}
	p.next() // ]
	cc.Members = members
	cc.Location = p.span(open.Pos)
	return cc, nil
}

// parseMembers reads members up to a set operator or the closing bracket,
// leaving that token unread.
func (p *parser) parseMembers(open lexer.Token) ([]Member, error) {
	var out []Member
	for {
		tok := p.peek()
		switch tok.Type {
		case tClassClose, tSetOp:
			return out, nil
		case tEOF:
			return nil, errorf(open.Pos, "missing ] for %q", open.Value)
		}
		m, err := p.parseMember()
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
}

func (p *parser) parseMember() (Member, error) {
	tok := p.next()
	switch tok.Type {
	case tClassOpen:
		n, err := p.parseClass(tok)
		if err != nil {
			return nil, err
		}
		return n.(*CustomClass), nil
	case tQuote:
		return &Quote{Location: p.span(tok.Pos), Literal: quoted(tok.Value)}, nil
	case tDash:
		return &Atom{Location: p.span(tok.Pos), Kind: AtomChar, Char: '-', Text: tok.Value}, nil
	}
	lo, err := p.atom(tok)
	if err != nil {
		return nil, err
	}
	if p.peek().Type != tDash {
		return lo, nil
	}
	// A dash right before ']' or an operator is a literal, not a range.
	switch p.toks[p.pos+1].Type {
	case tClassClose, tSetOp, tEOF:
		return lo, nil
	}
	p.next()
	hiTok := p.next()
	hi, err := p.atom(hiTok)
	if err != nil {
		return nil, errorf(hiTok.Pos, "invalid range end %q", hiTok.Value)
	}
	return &Range{Location: p.span(tok.Pos), Lo: lo, Hi: hi}, nil
}
