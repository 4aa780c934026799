package automaton

import (
	"errors"
	"fmt"

	"lexhir/internal/charclass"
	"lexhir/internal/hir"
)

// DefaultMaxStates bounds the NFA and DFA built for one pattern.
const DefaultMaxStates = 10000

// ErrTooLarge is returned when an automaton exceeds its state limit.
var ErrTooLarge = errors.New("automaton: state limit exceeded")

// NFA is a Thompson automaton whose edges are labelled by character
// classes. It has exactly one accepting state.
type NFA struct {
	Start  *nfaState
	states []*nfaState
}

// Len returns the number of states.
func (n *NFA) Len() int { return len(n.states) }

type nfaState struct {
	id     int
	edges  []nfaEdge
	accept bool
}

type nfaEdge struct {
	class *charclass.Class // nil = ε
	to    *nfaState
}

type nfaFrag struct {
	start *nfaState
	outs  []*nfaState // dangling ε edges that need patching to the next state
}

// Builder turns HIR into automata. The zero value uses DefaultMaxStates.
type Builder struct {
	MaxStates int
}

// Build compiles n into a minimal DFA using the zero Builder.
func Build(n hir.Node) (*DFA, error) {
	return Builder{}.Build(n)
}

// Build compiles n into a minimal DFA.
func (b Builder) Build(n hir.Node) (*DFA, error) {
	nfa, err := b.NFA(n)
	if err != nil {
		return nil, err
	}
	d, err := b.DFA(nfa)
	if err != nil {
		return nil, err
	}
	return Minimize(d), nil
}

func (b Builder) limit() int {
	if b.MaxStates <= 0 {
		return DefaultMaxStates
	}
	return b.MaxStates
}

// NFA builds the Thompson automaton for n.
func (b Builder) NFA(n hir.Node) (*NFA, error) {
	nb := &nfaBuilder{max: b.limit()}
	frag, err := nb.build(n)
	if err != nil {
		return nil, err
	}
	accept, err := nb.newState()
	if err != nil {
		return nil, err
	}
	accept.accept = true
	patchOuts(frag.outs, accept)
	return &NFA{Start: frag.start, states: nb.states}, nil
}

type nfaBuilder struct {
	states []*nfaState
	max    int
}

func (b *nfaBuilder) newState() (*nfaState, error) {
	if len(b.states) >= b.max {
		return nil, fmt.Errorf("%w: NFA has more than %d states", ErrTooLarge, b.max)
	}
	s := &nfaState{id: len(b.states)}
	b.states = append(b.states, s)
	return s, nil
}

func patchOuts(outs []*nfaState, to *nfaState) {
	for _, s := range outs {
		s.edges = append(s.edges, nfaEdge{to: to})
	}
}

// step returns a fragment consuming one scalar from c.
func (b *nfaBuilder) step(c charclass.Class) (nfaFrag, error) {
	s1, err := b.newState()
	if err != nil {
		return nfaFrag{}, err
	}
	s2, err := b.newState()
	if err != nil {
		return nfaFrag{}, err
	}
	s1.edges = append(s1.edges, nfaEdge{class: &c, to: s2})
	return nfaFrag{start: s1, outs: []*nfaState{s2}}, nil
}

func (b *nfaBuilder) empty() (nfaFrag, error) {
	s, err := b.newState()
	if err != nil {
		return nfaFrag{}, err
	}
	return nfaFrag{start: s, outs: []*nfaState{s}}, nil
}

// seq appends next to frag, or returns next when frag has no start yet.
func seq(frag, next nfaFrag) nfaFrag {
	if frag.start == nil {
		return next
	}
	patchOuts(frag.outs, next.start)
	return nfaFrag{start: frag.start, outs: next.outs}
}

func (b *nfaBuilder) build(n hir.Node) (nfaFrag, error) {
	switch n := n.(type) {
	case *hir.Empty:
		return b.empty()
	case *hir.Literal:
		var frag nfaFrag
		for _, r := range n.Chars {
			piece, err := b.step(charclass.Single(r))
			if err != nil {
				return nfaFrag{}, err
			}
			frag = seq(frag, piece)
		}
		if frag.start == nil {
			return b.empty()
		}
		return frag, nil
	case *hir.Class:
		return b.step(n.Class)
	case *hir.Group:
		return b.build(n.Child)
	case *hir.Concat:
		var frag nfaFrag
		for _, c := range n.Children {
			piece, err := b.build(c)
			if err != nil {
				return nfaFrag{}, err
			}
			frag = seq(frag, piece)
		}
		if frag.start == nil {
			return b.empty()
		}
		return frag, nil
	case *hir.Alternation:
		s, err := b.newState()
		if err != nil {
			return nfaFrag{}, err
		}
		var outs []*nfaState
		for _, c := range n.Children {
			piece, err := b.build(c)
			if err != nil {
				return nfaFrag{}, err
			}
			s.edges = append(s.edges, nfaEdge{to: piece.start})
			outs = append(outs, piece.outs...)
		}
		return nfaFrag{start: s, outs: outs}, nil
	case *hir.Quantification:
		return b.repeat(n)
	}
	return nfaFrag{}, fmt.Errorf("automaton: unexpected node %T", n)
}

// repeat expands q into Min mandatory copies followed by either a loop or
// Max-Min optional copies.
func (b *nfaBuilder) repeat(q *hir.Quantification) (nfaFrag, error) {
	frag, err := b.empty()
	if err != nil {
		return nfaFrag{}, err
	}
	for i := 0; i < q.Min; i++ {
		piece, err := b.build(q.Child)
		if err != nil {
			return nfaFrag{}, err
		}
		frag = seq(frag, piece)
	}
	if !q.Bounded() {
		loop, err := b.newState()
		if err != nil {
			return nfaFrag{}, err
		}
		piece, err := b.build(q.Child)
		if err != nil {
			return nfaFrag{}, err
		}
		patchOuts(frag.outs, loop)
		loop.edges = append(loop.edges, nfaEdge{to: piece.start})
		patchOuts(piece.outs, loop)
		return nfaFrag{start: frag.start, outs: []*nfaState{loop}}, nil
	}
	for i := 0; i < q.Max-q.Min; i++ {
		piece, err := b.build(q.Child)
		if err != nil {
			return nfaFrag{}, err
		}
		skip, err := b.newState()
		if err != nil {
			return nfaFrag{}, err
		}
		patchOuts(frag.outs, skip)
		patchOuts(frag.outs, piece.start)
		frag.outs = append(piece.outs, skip)
	}
	return frag, nil
}
