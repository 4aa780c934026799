package hir

import (
	"unicode/utf8"

	"lexhir/internal/charclass"
	"lexhir/internal/syntax"
	"lexhir/internal/unames"
)

// DefaultMaxDepth bounds the nesting of a translated tree.
const DefaultMaxDepth = 1000

// NameResolver maps a Unicode character name to the text it denotes.
type NameResolver interface {
	Lookup(name string) (string, bool)
}

// Translator converts syntax trees into HIR. The zero value uses
// DefaultMaxDepth and the Unicode character database.
type Translator struct {
	MaxDepth int
	Names    NameResolver
}

// Translate converts n using the zero Translator.
func Translate(n syntax.Node) (Node, error) {
	return Translator{}.Translate(n)
}

// Translate converts n. The first unsupported or malformed construct
// aborts translation; the error is an *Error located at that construct.
func (cfg Translator) Translate(n syntax.Node) (Node, error) {
	t := &translator{maxDepth: cfg.MaxDepth, names: cfg.Names}
	if t.maxDepth <= 0 {
		t.maxDepth = DefaultMaxDepth
	}
	if t.names == nil {
		t.names = unames.Default
	}
	return t.node(n)
}

type translator struct {
	maxDepth int
	depth    int
	names    NameResolver
}

// enter counts one level of groups, quantifications, classes or set
// operations, the constructs that nest.
func (t *translator) enter(n interface{ Loc() syntax.Location }) error {
	t.depth++
	if t.depth > t.maxDepth {
		return errorf(Invalid, n, "pattern nests deeper than %d levels", t.maxDepth)
	}
	return nil
}

func (t *translator) leave() { t.depth-- }

func (t *translator) node(n syntax.Node) (Node, error) {
	switch n := n.(type) {
	case *syntax.Alternation:
		children, err := t.nodes(n.Branches)
		if err != nil {
			return nil, err
		}
		return &Alternation{Children: children}, nil
	case *syntax.Concatenation:
		children, err := t.nodes(n.Items)
		if err != nil {
			return nil, err
		}
		return &Concat{Children: children}, nil
	case *syntax.Group:
		return t.group(n)
	case *syntax.Quantification:
		return t.quantification(n)
	case *syntax.Quote:
		if n.Literal == "" {
			return &Empty{}, nil
		}
		return &Literal{Chars: []rune(n.Literal)}, nil
	case *syntax.Trivia, *syntax.Empty:
		return &Empty{}, nil
	case *syntax.Atom:
		return t.atom(n)
	case *syntax.CustomClass:
		c, err := t.class(n)
		if err != nil {
			return nil, err
		}
		return &Class{Class: c}, nil
	case *syntax.Conditional:
		return nil, errorf(Unsupported, n, "conditionals")
	case *syntax.AbsentFunction:
		return nil, errorf(Unsupported, n, "absent functions")
	case *syntax.Interpolation:
		return nil, errorf(Unsupported, n, "interpolation")
	}
	return nil, errorf(Invalid, n, "unknown syntax node %T", n)
}

func (t *translator) nodes(ns []syntax.Node) ([]Node, error) {
	out := make([]Node, 0, len(ns))
	for _, n := range ns {
		h, err := t.node(n)
		if err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	return out, nil
}

func (t *translator) group(g *syntax.Group) (Node, error) {
	if err := t.enter(g); err != nil {
		return nil, err
	}
	defer t.leave()

	switch g.Kind {
	case syntax.GroupCapture, syntax.GroupNamedCapture, syntax.GroupNonCapture:
	case syntax.GroupOptions:
		return nil, errorf(Unavailable, g, "matching options group (?%s:...)", g.Options)
	default:
		return nil, errorf(Unsupported, g, "%s groups", g.Kind)
	}
	child, err := t.node(g.Child)
	if err != nil {
		return nil, err
	}
	return &Group{Child: child}, nil
}

func (t *translator) quantification(q *syntax.Quantification) (Node, error) {
	if err := t.enter(q); err != nil {
		return nil, err
	}
	defer t.leave()

	if q.Kind == syntax.Possessive {
		return nil, errorf(Unsupported, q, "possessive quantifiers")
	}
	lo, hi, err := bounds(q)
	if err != nil {
		return nil, err
	}
	child, err := t.node(q.Child)
	if err != nil {
		return nil, err
	}
	return &Quantification{Min: lo, Max: hi, Eager: q.Kind == syntax.Eager, Child: child}, nil
}

// bounds resolves the repetition amount of q to explicit limits.
func bounds(q *syntax.Quantification) (lo, hi int, err error) {
	a := q.Amount
	num := func(n syntax.Number) (int, error) {
		if !n.Valid {
			return 0, errorf(Invalid, q, "repetition count is not a valid number")
		}
		return n.Value, nil
	}
	switch a.Kind {
	case syntax.ZeroOrMore:
		lo, hi = 0, Unbounded
	case syntax.OneOrMore:
		lo, hi = 1, Unbounded
	case syntax.ZeroOrOne:
		lo, hi = 0, 1
	case syntax.Exactly:
		if lo, err = num(a.N); err != nil {
			return 0, 0, err
		}
		hi = lo
	case syntax.NOrMore:
		if lo, err = num(a.N); err != nil {
			return 0, 0, err
		}
		hi = Unbounded
	case syntax.UpToN:
		if hi, err = num(a.N); err != nil {
			return 0, 0, err
		}
	case syntax.RangeOf:
		if lo, err = num(a.N); err != nil {
			return 0, 0, err
		}
		if hi, err = num(a.M); err != nil {
			return 0, 0, err
		}
	}
	if lo < 0 || (hi != Unbounded && hi < lo) {
		return 0, 0, errorf(Invalid, q, "repetition range {%d,%d} has min greater than max", lo, hi)
	}
	return lo, hi, nil
}

func (t *translator) atom(a *syntax.Atom) (Node, error) {
	switch a.Kind {
	case syntax.AtomDot:
		return &Class{Class: charclass.Dot()}, nil
	case syntax.AtomScalarSequence:
		return nil, errorf(Unavailable, a, "scalar sequences")
	case syntax.AtomProperty:
		return nil, errorf(Unavailable, a, "Unicode property %q", a.Name)
	case syntax.AtomBuiltinClass:
		return nil, errorf(Unavailable, a, "builtin character class %s", a.Text)
	case syntax.AtomStartOfLine, syntax.AtomEndOfLine:
		return nil, errorf(Unsupported, a, "anchor %s", a.Text)
	case syntax.AtomAssertion:
		return nil, errorf(Unsupported, a, "assertion %s", a.Text)
	case syntax.AtomBackreference:
		return nil, errorf(Unsupported, a, "backreferences")
	case syntax.AtomSubpattern:
		return nil, errorf(Unavailable, a, "subpattern calls")
	case syntax.AtomCallout:
		return nil, errorf(Unavailable, a, "callouts")
	case syntax.AtomBacktrackingDirective:
		return nil, errorf(Unsupported, a, "backtracking directive %s", a.Text)
	case syntax.AtomChangeMatchingOptions:
		return nil, errorf(Unavailable, a, "changing matching options")
	case syntax.AtomInvalid:
		return nil, errorf(Invalid, a, "invalid atom %q", a.Text)
	}
	r, err := t.char(a)
	if err != nil {
		return nil, err
	}
	return &Literal{Chars: []rune{r}}, nil
}

// char resolves an atom that stands for exactly one scalar.
func (t *translator) char(a *syntax.Atom) (rune, error) {
	var r rune
	switch a.Kind {
	case syntax.AtomChar, syntax.AtomEscaped, syntax.AtomScalar:
		r = a.Char
	case syntax.AtomKeyboardControl:
		return control(a, a.Char, 0)
	case syntax.AtomKeyboardMeta:
		if a.Char >= utf8.RuneSelf {
			return 0, errorf(Invalid, a, "meta key needs an ASCII character, got %q", a.Char)
		}
		return a.Char | 0x80, nil
	case syntax.AtomKeyboardMetaControl:
		return control(a, a.Char, 0x80)
	case syntax.AtomNamedCharacter:
		s, ok := t.names.Lookup(a.Name)
		if !ok {
			return 0, errorf(Invalid, a, "unknown character name %q", a.Name)
		}
		if n := utf8.RuneCountInString(s); n != 1 {
			return 0, errorf(Invalid, a, "character name %q denotes %d characters", a.Name, n)
		}
		r, _ = utf8.DecodeRuneInString(s)
	default:
		return 0, errorf(Invalid, a, "%s does not denote a single character", a.Text)
	}
	if !charclass.IsScalar(r) {
		return 0, errorf(Invalid, a, "%U is not a Unicode scalar value", r)
	}
	return r, nil
}

// control applies the control key to c, then sets meta bits.
func control(a *syntax.Atom, c, meta rune) (rune, error) {
	if c >= utf8.RuneSelf {
		return 0, errorf(Invalid, a, "control key needs an ASCII character, got %q", c)
	}
	if c == '?' {
		return 0x7F | meta, nil
	}
	return c&0x1F | meta, nil
}

/* ----------------------------- classes --------------------------------- */

func (t *translator) class(c *syntax.CustomClass) (charclass.Class, error) {
	if err := t.enter(c); err != nil {
		return charclass.Class{}, err
	}
	defer t.leave()

	out, err := t.members(c.Members)
	if err != nil {
		return charclass.Class{}, err
	}
	if c.Inverted {
		out.Invert()
	}
	return out, nil
}

// members folds the member list by union, starting from the first member.
func (t *translator) members(ms []syntax.Member) (charclass.Class, error) {
	var out charclass.Class
	for i, m := range ms {
		c, err := t.member(m)
		if err != nil {
			return charclass.Class{}, err
		}
		if i == 0 {
			out = c
			continue
		}
		out.Union(c)
	}
	return out, nil
}

func (t *translator) member(m syntax.Member) (charclass.Class, error) {
	switch m := m.(type) {
	case *syntax.CustomClass:
		return t.class(m)
	case *syntax.Range:
		lo, err := t.char(m.Lo)
		if err != nil {
			return charclass.Class{}, err
		}
		hi, err := t.char(m.Hi)
		if err != nil {
			return charclass.Class{}, err
		}
		if lo > hi {
			return charclass.Class{}, errorf(Invalid, m, "range %s-%s is out of order", m.Lo.Text, m.Hi.Text)
		}
		return charclass.New(charclass.Range{Lo: lo, Hi: hi}), nil
	case *syntax.Atom:
		r, err := t.char(m)
		if err != nil {
			return charclass.Class{}, err
		}
		return charclass.Single(r), nil
	case *syntax.Quote:
		var c charclass.Class
		for _, r := range m.Literal {
			c.Add(r, r)
		}
		return c, nil
	case *syntax.Trivia:
		return charclass.Class{}, nil
	case *syntax.SetOperation:
		return t.setOperation(m)
	}
	return charclass.Class{}, errorf(Invalid, m, "unknown class member %T", m)
}

func (t *translator) setOperation(op *syntax.SetOperation) (charclass.Class, error) {
	if err := t.enter(op); err != nil {
		return charclass.Class{}, err
	}
	defer t.leave()

	lhs, err := t.members(op.Lhs)
	if err != nil {
		return charclass.Class{}, err
	}
	rhs, err := t.members(op.Rhs)
	if err != nil {
		return charclass.Class{}, err
	}
	switch op.Op {
	case syntax.Subtraction:
		lhs.Subtract(rhs)
	case syntax.Intersection:
		lhs.Intersect(rhs)
	case syntax.SymmetricDifference:
		lhs.SymmetricDifference(rhs)
	}
	return lhs, nil
}
