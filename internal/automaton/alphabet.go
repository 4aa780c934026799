package automaton

import (
	"slices"

	"lexhir/internal/charclass"
)

// partition splits the scalars used by classes into disjoint segments such
// that every class either covers a segment completely or not at all.
// Segments not covered by any class are dropped.
func partition(classes []charclass.Class) []charclass.Range {
	var cuts []rune
	var used charclass.Class
	for _, c := range classes {
		for _, r := range c.Ranges() {
			cuts = append(cuts, r.Lo, r.Hi+1)
		}
		used.Union(c)
	}
	slices.Sort(cuts)
	cuts = slices.Compact(cuts)

	var segs []charclass.Range
	for i := 0; i+1 < len(cuts); i++ {
		lo, hi := cuts[i], cuts[i+1]-1
		if !charclass.IsScalar(lo) {
			// Only the surrogate block can start a segment here.
			lo = 0xE000
		}
		if lo > hi || !used.Contains(lo) {
			continue
		}
		segs = append(segs, charclass.Range{Lo: lo, Hi: hi})
	}
	return segs
}

// lookup returns the index of the segment holding r.
func lookup(segs []charclass.Range, r rune) (int, bool) {
	if !charclass.IsScalar(r) {
		return 0, false
	}
	return slices.BinarySearchFunc(segs, r, func(s charclass.Range, r rune) int {
		switch {
		case s.Hi < r:
			return -1
		case s.Lo > r:
			return 1
		}
		return 0
	})
}

// label merges segments back into the class they span.
func label(segs []charclass.Range, idx []int) charclass.Class {
	ranges := make([]charclass.Range, len(idx))
	for i, j := range idx {
		ranges[i] = segs[j]
	}
	return charclass.New(ranges...)
}
