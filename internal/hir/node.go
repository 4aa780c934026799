// Package hir is the high-level intermediate representation of a pattern:
// the subset of regular expression semantics a finite automaton can match.
//
// Trees are built by Translate and are not modified afterwards. Repetition
// is always expressed by Quantification bounds, never by surface syntax.
package hir

import (
	"slices"
	"strconv"
	"strings"

	"lexhir/internal/charclass"
)

// Unbounded is the Max of a quantification with no upper limit.
const Unbounded = -1

// Node is an HIR node. The set of implementations is closed.
type Node interface {
	String() string
	node()
}

// Empty matches the empty string.
type Empty struct{}

// Concat matches its children in sequence.
type Concat struct {
	Children []Node
}

// Alternation matches any one of its children.
type Alternation struct {
	Children []Node
}

// Quantification repeats Child between Min and Max times. Max is
// Unbounded or at least Min.
type Quantification struct {
	Min, Max int
	Eager    bool
	Child    Node
}

// Bounded reports whether q has an upper limit.
func (q *Quantification) Bounded() bool { return q.Max != Unbounded }

// Literal matches a non-empty run of scalars.
type Literal struct {
	Chars []rune
}

// Class matches one scalar from a character class.
type Class struct {
	Class charclass.Class
}

// Group is a parenthesised child. Capturing is not modelled.
type Group struct {
	Child Node
}

func (*Empty) node()          {}
func (*Concat) node()         {}
func (*Alternation) node()    {}
func (*Quantification) node() {}
func (*Literal) node()        {}
func (*Class) node()          {}
func (*Group) node()          {}

func (*Empty) String() string { return "empty" }

func (n *Concat) String() string      { return "concat(" + join(n.Children) + ")" }
func (n *Alternation) String() string { return "alt(" + join(n.Children) + ")" }
func (n *Group) String() string       { return "group(" + n.Child.String() + ")" }
func (n *Literal) String() string     { return "lit(" + strconv.Quote(string(n.Chars)) + ")" }
func (n *Class) String() string       { return "class" + n.Class.String() }

func (n *Quantification) String() string {
	var b strings.Builder
	b.WriteString("rep{")
	b.WriteString(strconv.Itoa(n.Min))
	b.WriteByte(',')
	if n.Bounded() {
		b.WriteString(strconv.Itoa(n.Max))
	}
	b.WriteByte('}')
	if !n.Eager {
		b.WriteByte('?')
	}
	b.WriteByte('(')
	b.WriteString(n.Child.String())
	b.WriteByte(')')
	return b.String()
}

func join(ns []Node) string {
	parts := make([]string, len(ns))
	for i, n := range ns {
		parts[i] = n.String()
	}
	return strings.Join(parts, ", ")
}

// Equal reports whether a and b are structurally identical.
func Equal(a, b Node) bool {
	switch a := a.(type) {
	case *Empty:
		_, ok := b.(*Empty)
		return ok
	case *Concat:
		b, ok := b.(*Concat)
		return ok && slices.EqualFunc(a.Children, b.Children, Equal)
	case *Alternation:
		b, ok := b.(*Alternation)
		return ok && slices.EqualFunc(a.Children, b.Children, Equal)
	case *Quantification:
		b, ok := b.(*Quantification)
		return ok && a.Min == b.Min && a.Max == b.Max && a.Eager == b.Eager && Equal(a.Child, b.Child)
	case *Literal:
		b, ok := b.(*Literal)
		return ok && slices.Equal(a.Chars, b.Chars)
	case *Class:
		b, ok := b.(*Class)
		return ok && a.Class.Equal(b.Class)
	case *Group:
		b, ok := b.(*Group)
		return ok && Equal(a.Child, b.Child)
	}
	return false
}

// Walk calls fn for n and each of its descendants in depth-first order.
// Returning false from fn skips the children of that node.
func Walk(n Node, fn func(Node) bool) {
	if !fn(n) {
		return
	}
	switch n := n.(type) {
	case *Concat:
		for _, c := range n.Children {
			Walk(c, fn)
		}
	case *Alternation:
		for _, c := range n.Children {
			Walk(c, fn)
		}
	case *Quantification:
		Walk(n.Child, fn)
	case *Group:
		Walk(n.Child, fn)
	}
}
