package automaton

import (
	"fmt"
	"io"
	"sort"
	"strings"
)

// ExportDOT writes a Graphviz rendering of an *NFA or *DFA to w.
func ExportDOT(w io.Writer, g any) error {
	var b strings.Builder
	fmt.Fprintln(&b, "digraph G {")
	fmt.Fprintln(&b, "    rankdir=LR;")

	switch t := g.(type) {

	//------------------------------------------------------------------ DFA
	case *DFA:
		for _, s := range t.States {
			fmt.Fprintf(&b, "    q%d [shape=%s];\n", s.id, shape(s.accept))
			// One edge per target, labelled with the union of its segments.
			targets := map[int][]int{}
			for _, c := range s.order() {
				to := s.trans[c].id
				targets[to] = append(targets[to], c)
			}
			ids := make([]int, 0, len(targets))
			for id := range targets {
				ids = append(ids, id)
			}
			sort.Ints(ids)
			for _, id := range ids {
				l := label(t.Segments, targets[id]).String()
				fmt.Fprintf(&b, "    q%d -> q%d [label=%s];\n", s.id, id, quote(l))
			}
		}
		fmt.Fprintf(&b, "    _start [shape=point]; _start -> q%d;\n", t.Start.id)

	//------------------------------------------------------------------ NFA
	case *NFA:
		for _, s := range t.states {
			fmt.Fprintf(&b, "    n%d [shape=%s];\n", s.id, shape(s.accept))
			for _, e := range s.edges {
				l := "ε"
				if e.class != nil {
					l = e.class.String()
				}
				fmt.Fprintf(&b, "    n%d -> n%d [label=%s];\n", s.id, e.to.id, quote(l))
			}
		}
		fmt.Fprintf(&b, "    _start [shape=point]; _start -> n%d;\n", t.Start.id)

	default:
		return fmt.Errorf("automaton: cannot render %T", g)
	}

	fmt.Fprintln(&b, "}")
	_, err := io.WriteString(w, b.String())
	return err
}

func shape(accept bool) string {
	if accept {
		return "doublecircle"
	}
	return "circle"
}

func quote(s string) string {
	return `"` + strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(s) + `"`
}
