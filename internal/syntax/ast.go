// Package syntax defines the surface syntax tree of a pattern and a parser
// that produces it. Every node records where in the source it came from so
// later stages can report precise diagnostics.
package syntax

import "github.com/alecthomas/participle/v2/lexer"

// Location is the source span of a node.
type Location struct {
	Start lexer.Position
	End   lexer.Position
}

// Loc returns the span itself; embedding Location gives every node a Loc method.
func (l Location) Loc() Location { return l }

// Node is a node of the syntax tree. The set of implementations is closed.
type Node interface {
	Loc() Location
	node()
}

// Member is an element of a custom character class.
type Member interface {
	Loc() Location
	member()
}

// Alternation matches any one of its branches.
type Alternation struct {
	Location
	Branches []Node
}

// Concatenation matches its items in sequence.
type Concatenation struct {
	Location
	Items []Node
}

type GroupKind int

const (
	GroupCapture GroupKind = iota
	GroupNamedCapture
	GroupNonCapture
	GroupAtomic
	GroupLookahead
	GroupNegativeLookahead
	GroupLookbehind
	GroupNegativeLookbehind
	GroupOptions // (?i:...)
)

var groupKindNames = [...]string{
	GroupCapture:            "capture",
	GroupNamedCapture:       "named capture",
	GroupNonCapture:         "non-capture",
	GroupAtomic:             "atomic",
	GroupLookahead:          "lookahead",
	GroupNegativeLookahead:  "negative lookahead",
	GroupLookbehind:         "lookbehind",
	GroupNegativeLookbehind: "negative lookbehind",
	GroupOptions:            "options",
}

func (k GroupKind) String() string { return groupKindNames[k] }

// Group is a parenthesised sub-expression.
type Group struct {
	Location
	Kind    GroupKind
	Name    string // named captures
	Options string // GroupOptions, e.g. "i-s"
	Child   Node
}

// QuantKind selects how a quantifier consumes input.
type QuantKind int

const (
	Eager QuantKind = iota
	Reluctant
	Possessive
)

type AmountKind int

const (
	ZeroOrMore AmountKind = iota // *
	OneOrMore                    // +
	ZeroOrOne                    // ?
	Exactly                      // {n}
	NOrMore                      // {n,}
	UpToN                        // {,n}
	RangeOf                      // {n,m}
)

// Number is a repetition count. Valid is false when the digits in the
// source could not be represented.
type Number struct {
	Value int
	Valid bool
}

// Amount is the repetition written in the source. N and M are used by
// the counted forms: Exactly, NOrMore and UpToN use N; RangeOf uses N..M.
type Amount struct {
	Kind AmountKind
	N, M Number
}

// Quantification repeats Child.
type Quantification struct {
	Location
	Amount Amount
	Kind   QuantKind
	Child  Node
}

// Quote is a literal run written as \Q...\E.
type Quote struct {
	Location
	Literal string
}

// Trivia is source text with no matching semantics, such as (?#...).
type Trivia struct {
	Location
	Text string
}

// Empty matches the empty string.
type Empty struct {
	Location
}

type AtomKind int

const (
	AtomChar AtomKind = iota
	AtomScalar
	AtomScalarSequence
	AtomProperty
	AtomEscaped
	AtomKeyboardControl
	AtomKeyboardMeta
	AtomKeyboardMetaControl
	AtomNamedCharacter
	AtomDot
	AtomStartOfLine
	AtomEndOfLine
	AtomBackreference
	AtomSubpattern
	AtomCallout
	AtomBacktrackingDirective
	AtomChangeMatchingOptions
	AtomBuiltinClass
	AtomAssertion
	AtomInvalid
)

// Atom is a single-token construct.
type Atom struct {
	Location
	Kind AtomKind
	// Char is the character for AtomChar, AtomScalar and AtomEscaped, and
	// the operand letter for the keyboard kinds.
	Char rune
	// Scalars holds the values of an AtomScalarSequence.
	Scalars []rune
	// Name is the payload of named characters, properties and references.
	Name string
	// Text is the verbatim source of the atom.
	Text string
}

// CustomClass is a bracketed character class.
type CustomClass struct {
	Location
	Inverted bool
	Members  []Member
}

// Range is a lo-hi member of a custom class.
type Range struct {
	Location
	Lo, Hi *Atom
}

type SetOp int

const (
	Subtraction         SetOp = iota // --
	Intersection                     // &&
	SymmetricDifference              // ~~
)

func (op SetOp) String() string {
	switch op {
	case Subtraction:
		return "--"
	case Intersection:
		return "&&"
	}
	return "~~"
}

// SetOperation combines two member lists of a class.
type SetOperation struct {
	Location
	Lhs []Member
	Op  SetOp
	Rhs []Member
}

// Conditional is (?(condition)yes|no).
type Conditional struct {
	Location
	Condition string
	Branches  Node
}

// AbsentFunction is (?~...).
type AbsentFunction struct {
	Location
	Child Node
}

// Interpolation is <{...}>.
type Interpolation struct {
	Location
	Text string
}

func (*Alternation) node()    {}
func (*Concatenation) node()  {}
func (*Group) node()          {}
func (*Quantification) node() {}
func (*Quote) node()          {}
func (*Trivia) node()         {}
func (*Empty) node()          {}
func (*Atom) node()           {}
func (*CustomClass) node()    {}
func (*Conditional) node()    {}
func (*AbsentFunction) node() {}
func (*Interpolation) node()  {}

func (*CustomClass) member()  {}
func (*Range) member()        {}
func (*Atom) member()         {}
func (*Quote) member()        {}
func (*Trivia) member()       {}
func (*SetOperation) member() {}
