package automaton

import (
	"container/list"
	"fmt"
	"sort"

	"lexhir/internal/charclass"
)

// DFA is a deterministic automaton over Segments, a partition of the
// scalars its patterns mention. States[i].id == i.
type DFA struct {
	Start    *dfaState
	States   []*dfaState
	Segments []charclass.Range
}

type dfaState struct {
	id     int
	accept bool
	trans  map[int]*dfaState // segment index -> target
}

// Len returns the number of states.
func (d *DFA) Len() int { return len(d.States) }

// Match reports whether d accepts the whole of s.
func (d *DFA) Match(s string) bool {
	cur := d.Start
	for _, r := range s {
		i, ok := lookup(d.Segments, r)
		if !ok {
			return false
		}
		if cur = cur.trans[i]; cur == nil {
			return false
		}
	}
	return cur.accept
}

// Empty reports whether d accepts no string at all.
func (d *DFA) Empty() bool {
	_, ok := d.Shortest()
	return !ok
}

// Shortest returns a shortest string accepted by d. Each segment is
// represented by its lowest scalar.
func (d *DFA) Shortest() (string, bool) {
	type step struct {
		prev *dfaState
		seg  int
	}
	seen := map[*dfaState]step{d.Start: {}}
	queue := []*dfaState{d.Start}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if cur.accept {
			var out []rune
			for s := cur; s != d.Start; s = seen[s].prev {
				out = append(out, d.Segments[seen[s].seg].Lo)
			}
			for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
				out[i], out[j] = out[j], out[i]
			}
			return string(out), true
		}
		for _, c := range cur.order() {
			to := cur.trans[c]
			if _, ok := seen[to]; !ok {
				seen[to] = step{prev: cur, seg: c}
				queue = append(queue, to)
			}
		}
	}
	return "", false
}

// order returns the segment indices s has transitions on, ascending.
func (s *dfaState) order() []int {
	segs := make([]int, 0, len(s.trans))
	for c := range s.trans {
		segs = append(segs, c)
	}
	sort.Ints(segs)
	return segs
}

func epsilonClosure(set map[*nfaState]struct{}) map[*nfaState]struct{} {
	stack := list.New()
	for s := range set {
		stack.PushBack(s)
	}
	for stack.Len() > 0 {
		elem := stack.Remove(stack.Back()).(*nfaState)
		for _, e := range elem.edges {
			if e.class == nil {
				if _, ok := set[e.to]; !ok {
					set[e.to] = struct{}{}
					stack.PushBack(e.to)
				}
			}
		}
	}
	return set
}

func moveNFA(set map[*nfaState]struct{}, seg charclass.Range) map[*nfaState]struct{} {
	res := make(map[*nfaState]struct{})
	for s := range set {
		for _, e := range s.edges {
			if e.class != nil && e.class.Contains(seg.Lo) {
				res[e.to] = struct{}{}
			}
		}
	}
	return res
}

func hasAccept(set map[*nfaState]struct{}) bool {
	for s := range set {
		if s.accept {
			return true
		}
	}
	return false
}

func setKey(set map[*nfaState]struct{}) string {
	ids := make([]int, 0, len(set))
	for s := range set {
		ids = append(ids, s.id)
	}
	sort.Ints(ids)
	return fmt.Sprint(ids)
}

// DFA determinises nfa by subset construction over the segments of its
// edge labels.
func (b Builder) DFA(nfa *NFA) (*DFA, error) {
	var classes []charclass.Class
	for _, s := range nfa.states {
		for _, e := range s.edges {
			if e.class != nil {
				classes = append(classes, *e.class)
			}
		}
	}
	alpha := partition(classes)

	initSet := epsilonClosure(map[*nfaState]struct{}{nfa.Start: {}})
	mp := map[string]*dfaState{}
	dStart := &dfaState{id: 0, accept: hasAccept(initSet), trans: map[int]*dfaState{}}
	mp[setKey(initSet)] = dStart
	queue := []map[*nfaState]struct{}{initSet}
	states := []*dfaState{dStart}
	limit := b.limit()
	for len(queue) > 0 {
		curSet := queue[0]
		queue = queue[1:]
		curD := mp[setKey(curSet)]
		for i, seg := range alpha {
			moveSet := moveNFA(curSet, seg)
			if len(moveSet) == 0 {
				continue
			}
			clo := epsilonClosure(moveSet)
			k := setKey(clo)
			d, exists := mp[k]
			if !exists {
				if len(states) >= limit {
					return nil, fmt.Errorf("%w: DFA has more than %d states", ErrTooLarge, limit)
				}
				d = &dfaState{id: len(states), accept: hasAccept(clo), trans: map[int]*dfaState{}}
				mp[k] = d
				states = append(states, d)
				queue = append(queue, clo)
			}
			curD.trans[i] = d
		}
	}
	return &DFA{Start: dStart, States: states, Segments: alpha}, nil
}
