package automaton

import "slices"

// Minimize returns the minimal DFA for the language of d (Hopcroft).
// States are numbered breadth-first from the start state, so equal
// languages yield identical automata.
func Minimize(d *DFA) *DFA {
	if d == nil || d.Start == nil {
		return d
	}
	n, k := len(d.States), len(d.Segments)

	// --- 1. complete the automaton with an explicit dead state -------------
	sink := n
	total := n + 1
	delta := func(s, c int) int {
		if s == sink {
			return sink
		}
		if t, ok := d.States[s].trans[c]; ok {
			return t.id
		}
		return sink
	}
	inv := make([][][]int, k)
	for c := range inv {
		inv[c] = make([][]int, total)
		for s := 0; s < total; s++ {
			t := delta(s, c)
			inv[c][t] = append(inv[c][t], s)
		}
	}

	// --- 2. initial partition ---------------------------------------------
	blockOf := make([]int, total)
	var blocks [][]int
	var acc, non []int
	for s := 0; s < total; s++ {
		if s < n && d.States[s].accept {
			acc = append(acc, s)
		} else {
			non = append(non, s)
		}
	}
	for _, b := range [][]int{acc, non} {
		if len(b) == 0 {
			continue
		}
		for _, s := range b {
			blockOf[s] = len(blocks)
		}
		blocks = append(blocks, b)
	}
	work := make([]int, len(blocks))
	inWork := make([]bool, len(blocks))
	for i := range work {
		work[i] = i
		inWork[i] = true
	}

	// --- 3. refine ----------------------------------------------------------
	mark := make([]bool, total)
	for len(work) > 0 {
		idx := work[0]
		work = work[1:]
		inWork[idx] = false
		splitter := slices.Clone(blocks[idx])

		for c := 0; c < k; c++ {
			// X is the preimage of the splitter on c.
			var x, touched []int
			for _, t := range splitter {
				for _, s := range inv[c][t] {
					if !mark[s] {
						mark[s] = true
						x = append(x, s)
						touched = append(touched, blockOf[s])
					}
				}
			}
			slices.Sort(touched)
			touched = slices.Compact(touched)

			for _, y := range touched {
				var inter, diff []int
				for _, s := range blocks[y] {
					if mark[s] {
						inter = append(inter, s)
					} else {
						diff = append(diff, s)
					}
				}
				if len(diff) == 0 {
					continue
				}
				blocks[y] = inter
				nb := len(blocks)
				blocks = append(blocks, diff)
				inWork = append(inWork, false)
				for _, s := range diff {
					blockOf[s] = nb
				}
				switch {
				case inWork[y]:
					work = append(work, nb)
					inWork[nb] = true
				case len(inter) <= len(diff):
					work = append(work, y)
					inWork[y] = true
				default:
					work = append(work, nb)
					inWork[nb] = true
				}
			}
			for _, s := range x {
				mark[s] = false
			}
		}
	}

	// --- 4. build the quotient, dropping the dead block ---------------------
	dead := blockOf[sink]
	out := &DFA{Segments: d.Segments}
	byBlock := map[int]*dfaState{}
	get := func(b int) *dfaState {
		if st, ok := byBlock[b]; ok {
			return st
		}
		rep := blocks[b][0]
		st := &dfaState{
			id:     len(out.States),
			accept: rep < n && d.States[rep].accept,
			trans:  map[int]*dfaState{},
		}
		byBlock[b] = st
		out.States = append(out.States, st)
		return st
	}
	start := blockOf[d.Start.id]
	out.Start = get(start)
	queue := []int{start}
	for len(queue) > 0 {
		b := queue[0]
		queue = queue[1:]
		cur := byBlock[b]
		rep := blocks[b][0]
		for c := 0; c < k; c++ {
			t := blockOf[delta(rep, c)]
			if t == dead {
				continue
			}
			_, seen := byBlock[t]
			cur.trans[c] = get(t)
			if !seen {
				queue = append(queue, t)
			}
		}
	}
	return out
}
