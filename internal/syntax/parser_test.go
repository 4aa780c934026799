package syntax

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"testing"

	"github.com/alecthomas/participle/v2/lexer"
)

// ------------------------------------------------------------------- helpers

// dump renders a tree compactly so expectations stay readable.
func dump(n Node) string {
	switch n := n.(type) {
	case *Alternation:
		return "alt(" + dumpAll(n.Branches) + ")"
	case *Concatenation:
		return "cat(" + dumpAll(n.Items) + ")"
	case *Group:
		kind := n.Kind.String()
		if n.Name != "" {
			kind += ":" + n.Name
		}
		return "(" + kind + " " + dump(n.Child) + ")"
	case *Quantification:
		suffix := ""
		switch n.Kind {
		case Reluctant:
			suffix = "?"
		case Possessive:
			suffix = "+"
		}
		return "rep(" + dump(n.Child) + " " + amount(n.Amount) + suffix + ")"
	case *Empty:
		return "ε"
	case *Conditional:
		return "cond(" + dump(n.Branches) + ")"
	case *AbsentFunction:
		return "absent(" + dump(n.Child) + ")"
	case *Interpolation:
		return "interp"
	case Member:
		return member(n)
	}
	panic(fmt.Sprintf("unexpected node %T", n))
}

func dumpAll(ns []Node) string {
	parts := make([]string, len(ns))
	for i, n := range ns {
		parts[i] = dump(n)
	}
	return strings.Join(parts, ",")
}

func member(m Member) string {
	switch m := m.(type) {
	case *Atom:
		switch m.Kind {
		case AtomChar, AtomEscaped, AtomScalar:
			return strconv.QuoteRune(m.Char)
		}
		return "<" + m.Text + ">"
	case *Quote:
		return "Q" + strconv.Quote(m.Literal)
	case *Trivia:
		return "#"
	case *Range:
		return member(m.Lo) + "-" + member(m.Hi)
	case *CustomClass:
		inv := ""
		if m.Inverted {
			inv = "^"
		}
		return "[" + inv + members(m.Members) + "]"
	case *SetOperation:
		return "(" + members(m.Lhs) + " " + m.Op.String() + " " + members(m.Rhs) + ")"
	}
	panic(fmt.Sprintf("unexpected member %T", m))
}

func members(ms []Member) string {
	parts := make([]string, len(ms))
	for i, m := range ms {
		parts[i] = member(m)
	}
	return strings.Join(parts, " ")
}

func amount(a Amount) string {
	num := func(n Number) string {
		if !n.Valid {
			return "!"
		}
		return strconv.Itoa(n.Value)
	}
	switch a.Kind {
	case ZeroOrMore:
		return "*"
	case OneOrMore:
		return "+"
	case ZeroOrOne:
		return "?"
	case Exactly:
		return "{" + num(a.N) + "}"
	case NOrMore:
		return "{" + num(a.N) + ",}"
	case UpToN:
		return "{," + num(a.N) + "}"
	}
	return "{" + num(a.N) + "," + num(a.M) + "}"
}

func mustParse(t *testing.T, pattern string) Node {
	t.Helper()
	n, err := Parse("", pattern)
	if err != nil {
		t.Fatalf("parse %q: %v", pattern, err)
	}
	return n
}

// ------------------------------------------------------------------- lexer

func TestLexerTokens(t *testing.T) {
	lex, err := lexDef.LexString("", `a\*(?:b)|[^c-d]{2}`)
	if err != nil {
		t.Fatal(err)
	}
	toks, err := lexer.ConsumeAll(lex)
	if err != nil {
		t.Fatal(err)
	}
	want := []lexer.TokenType{
		tChar, tEscaped, tGroupOpen, tChar, tGroupClose, tAlt,
		tClassOpen, tChar, tDash, tChar, tClassClose, tCount, tEOF,
	}
	if len(toks) != len(want) {
		t.Fatalf("want %d tokens got %d: %v", len(want), len(toks), toks)
	}
	for i, typ := range want {
		if toks[i].Type != typ {
			t.Fatalf("tok %d (%q) want %v got %v", i, toks[i].Value, typ, toks[i].Type)
		}
	}
}

func TestLexerClassStateIsScoped(t *testing.T) {
	// '-' and '&&' are only operators inside brackets.
	lex, _ := lexDef.LexString("", `a-b&&[c&&d]]`)
	toks, err := lexer.ConsumeAll(lex)
	if err != nil {
		t.Fatal(err)
	}
	want := []lexer.TokenType{
		tChar, tChar, tChar, tChar, tChar,
		tClassOpen, tChar, tSetOp, tChar, tClassClose, tChar, tEOF,
	}
	for i, typ := range want {
		if toks[i].Type != typ {
			t.Fatalf("tok %d (%q) want %v got %v", i, toks[i].Value, typ, toks[i].Type)
		}
	}
}

// ------------------------------------------------------------------- parser

func TestParseShapes(t *testing.T) {
	tests := []struct {
		pattern string
		want    string
	}{
		{`ab`, `cat('a','b')`},
		{`a|b*`, `alt('a',rep('b' *))`},
		{``, `ε`},
		{`a|`, `alt('a',ε)`},
		{`(?:ab)+?`, `rep((non-capture cat('a','b')) +?)`},
		{`(a)`, `(capture 'a')`},
		{`(?<n>x)`, `(named capture:n 'x')`},
		{`(?P<n>x)`, `(named capture:n 'x')`},
		{`(?'n'x)`, `(named capture:n 'x')`},
		{`(?>x)`, `(atomic 'x')`},
		{`(?=a)(?!b)`, `cat((lookahead 'a'),(negative lookahead 'b'))`},
		{`(?<=a)(?<!b)`, `cat((lookbehind 'a'),(negative lookbehind 'b'))`},
		{`(?i:a)`, `(options 'a')`},
		{`(?i)a`, `cat(<(?i)>,'a')`},
		{`x{2,5}+`, `rep('x' {2,5}+)`},
		{`x{3,}`, `rep('x' {3,})`},
		{`x{,5}`, `rep('x' {,5})`},
		{`x{4}`, `rep('x' {4})`},
		{`x{99999999999999999999}`, `rep('x' {!})`},
		{`a**`, `rep(rep('a' *) *)`},
		{`a{x}`, `cat('a','{','x','}')`},
		{`\Qa.b\E`, `Q"a.b"`},
		{`\Qab`, `Q"ab"`},
		{`(?#note)a`, `cat(#,'a')`},
		{`\x41\x{42 43}`, `cat('A',<\x{42 43}>)`},
		{`é\U0001F600`, `cat('é','😀')`},
		{`\n\.`, `cat('\n','.')`},
		{`.^$`, `cat(<.>,<^>,<$>)`},
		{`\1\k<name>\g{2}`, `cat(<\1>,<\k<name>>,<\g{2}>)`},
		{`\d\b`, `cat(<\d>,<\b>)`},
		{`(?R)(?1)`, `cat(<(?R)>,<(?1)>)`},
		{`(?C1)(*FAIL)`, `cat(<(?C1)>,<(*FAIL)>)`},
		{`(?(1)a|b)`, `cond(alt('a','b'))`},
		{`(?~ab)`, `absent(cat('a','b'))`},
		{`<{x}>`, `interp`},
		{`[^a-c\d]`, `[^'a'-'c' <\d>]`},
		{`[a-z&&[^aeiou]]`, `[('a'-'z' && [^'a' 'e' 'i' 'o' 'u'])]`},
		{`[a-]`, `['a' '-']`},
		{`[-a]`, `['-' 'a']`},
		{`[\w--[:digit:]]`, `[(<\w> -- <[:digit:]>)]`},
		{`[a~~b--c]`, `[(('a' ~~ 'b') -- 'c')]`},
		{`[\Qa]\E]`, `[Q"a]"]`},
		{`[]`, `[]`},
	}
	for _, tt := range tests {
		if got := dump(mustParse(t, tt.pattern)); got != tt.want {
			t.Errorf("%q: want %s got %s", tt.pattern, tt.want, got)
		}
	}
}

func TestParseAtomPayloads(t *testing.T) {
	tests := []struct {
		pattern string
		kind    AtomKind
		char    rune
		name    string
	}{
		{`\cA`, AtomKeyboardControl, 'A', ""},
		{`\C-b`, AtomKeyboardControl, 'b', ""},
		{`\M-a`, AtomKeyboardMeta, 'a', ""},
		{`\M-\C-z`, AtomKeyboardMetaControl, 'z', ""},
		{`\N{GREEK SMALL LETTER ALPHA}`, AtomNamedCharacter, 0, "GREEK SMALL LETTER ALPHA"},
		{`\p{Greek}`, AtomProperty, 0, "Greek"},
		{`\pL`, AtomProperty, 0, "L"},
		{`\k<flag>`, AtomBackreference, 0, "flag"},
		{`\12`, AtomBackreference, 0, "12"},
		{`\g<sub>`, AtomSubpattern, 0, "sub"},
		{`\o{101}`, AtomScalar, 'A', ""},
		{`\e`, AtomEscaped, 0x1B, ""},
		{`\0`, AtomEscaped, 0, ""},
	}
	for _, tt := range tests {
		a, ok := mustParse(t, tt.pattern).(*Atom)
		if !ok {
			t.Fatalf("%q: not an atom", tt.pattern)
		}
		if a.Kind != tt.kind || a.Char != tt.char || a.Name != tt.name {
			t.Errorf("%q: want (%d %q %q) got (%d %q %q)", tt.pattern, tt.kind, tt.char, tt.name, a.Kind, a.Char, a.Name)
		}
	}

	seq := mustParse(t, `\u{61 62 63}`).(*Atom)
	if seq.Kind != AtomScalarSequence || string(seq.Scalars) != "abc" {
		t.Fatalf("scalar sequence: %+v", seq)
	}
}

func TestParseLocations(t *testing.T) {
	n := mustParse(t, "ab|cd")
	alt := n.(*Alternation)
	if alt.Start.Offset != 0 || alt.End.Offset != 5 {
		t.Fatalf("alternation span %v..%v", alt.Start, alt.End)
	}
	cd := alt.Branches[1].(*Concatenation)
	if cd.Start.Offset != 3 || cd.End.Offset != 5 {
		t.Fatalf("branch span %v..%v", cd.Start, cd.End)
	}
	d := cd.Items[1].(*Atom)
	if d.Start.Column != 5 || d.End.Column != 6 {
		t.Fatalf("atom span %v..%v", d.Start, d.End)
	}

	multi, err := Parse("rules.yaml", "a\n(?:b)")
	if err != nil {
		t.Fatal(err)
	}
	g := multi.(*Concatenation).Items[2].(*Group)
	if g.Start.Line != 2 || g.Start.Column != 1 || g.Start.Filename != "rules.yaml" {
		t.Fatalf("group start %v", g.Start)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		pattern string
		column  int
		msg     string
	}{
		{`(a`, 1, "missing )"},
		{`ab)`, 3, "unmatched )"},
		{`*a`, 1, "nothing to repeat"},
		{`a|+`, 3, "nothing to repeat"},
		{`[ab`, 1, "missing ]"},
		{`x[^a`, 2, "missing ]"},
		{`\x{110000}`, 1, "beyond the Unicode range"},
		{`\x{}`, 1, "invalid scalar"},
		{`(?(1)a`, 1, "missing )"},
		{`[a-[b]]`, 4, "invalid range end"},
		{`\xZZ`, 1, `malformed \x escape`},
		{`a\u12`, 2, `malformed \u escape`},
		{`\o12`, 1, `malformed \o escape`},
		{`[\k]`, 2, `malformed \k escape`},
		{`\pé`, 1, `malformed \p escape`},
		{`ab\c`, 3, `malformed \c escape`},
		{`\M`, 1, `malformed \M escape`},
		{`a\`, 2, "trailing backslash"},
		{`[a\`, 3, "trailing backslash"},
		{"a\xffb", 2, "invalid UTF-8 byte 0xff"},
		{"é\xe9", 2, "invalid UTF-8"},
	}
	for _, tt := range tests {
		_, err := Parse("", tt.pattern)
		var perr *Error
		if !errors.As(err, &perr) {
			t.Fatalf("%q: want *Error got %v", tt.pattern, err)
		}
		if perr.Pos.Column != tt.column || !strings.Contains(perr.Msg, tt.msg) {
			t.Errorf("%q: want %q at column %d got %v", tt.pattern, tt.msg, tt.column, err)
		}
	}
}

func TestParseDepthLimit(t *testing.T) {
	if _, err := (Parser{MaxDepth: 3}).Parse("", "(((a)))"); err != nil {
		t.Fatalf("depth 3 should pass: %v", err)
	}
	if _, err := (Parser{MaxDepth: 3}).Parse("", "((((a))))"); err == nil {
		t.Fatal("depth 4 should fail")
	}

	deep := strings.Repeat("(", 5000) + "a" + strings.Repeat(")", 5000)
	_, err := Parse("", deep)
	if err == nil || !strings.Contains(err.Error(), "nests deeper") {
		t.Fatalf("want depth error got %v", err)
	}
	classes := strings.Repeat("[", 5000) + "a" + strings.Repeat("]", 5000)
	if _, err := Parse("", classes); err == nil {
		t.Fatal("want depth error for nested classes")
	}
}
