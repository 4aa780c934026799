package automaton

import "lexhir/internal/charclass"

// Intersect returns a DFA accepting exactly the strings both a and b
// accept. It runs the product construction over the common refinement of
// their segments.
func Intersect(a, b *DFA) *DFA {
	var classes []charclass.Class
	for _, s := range a.Segments {
		classes = append(classes, charclass.New(s))
	}
	for _, s := range b.Segments {
		classes = append(classes, charclass.New(s))
	}
	alpha := partition(classes)

	// Segment index in a and b for each refined segment, -1 if absent.
	inA := make([]int, len(alpha))
	inB := make([]int, len(alpha))
	for i, seg := range alpha {
		inA[i], inB[i] = -1, -1
		if j, ok := lookup(a.Segments, seg.Lo); ok {
			inA[i] = j
		}
		if j, ok := lookup(b.Segments, seg.Lo); ok {
			inB[i] = j
		}
	}

	type pair struct{ i, j int }
	mp := map[pair]*dfaState{}
	startPair := pair{a.Start.id, b.Start.id}
	start := &dfaState{id: 0, accept: a.Start.accept && b.Start.accept, trans: map[int]*dfaState{}}
	mp[startPair] = start
	queue := []pair{startPair}
	states := []*dfaState{start}
	for len(queue) > 0 {
		p := queue[0]
		queue = queue[1:]
		cur := mp[p]
		for c := range alpha {
			if inA[c] < 0 || inB[c] < 0 {
				continue
			}
			ta, oka := a.States[p.i].trans[inA[c]]
			tb, okb := b.States[p.j].trans[inB[c]]
			if !oka || !okb {
				continue
			}
			np := pair{ta.id, tb.id}
			ns, exists := mp[np]
			if !exists {
				ns = &dfaState{id: len(states), accept: ta.accept && tb.accept, trans: map[int]*dfaState{}}
				mp[np] = ns
				states = append(states, ns)
				queue = append(queue, np)
			}
			cur.trans[c] = ns
		}
	}
	return &DFA{Start: start, States: states, Segments: alpha}
}
