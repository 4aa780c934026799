// Package interval implements sets of closed intervals over a bounded,
// totally ordered domain.
//
// A Set is always kept normalized: intervals are sorted by their lower
// bound, never overlap and are never adjacent. Every mutating operation
// restores that invariant before it returns.
package interval

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
)

// Domain describes the bounded value space a Set ranges over.
//
// Increment and Decrement return false at the domain boundary. A domain
// with holes (Unicode scalars skip the surrogate block) steps over the hole.
type Domain[T cmp.Ordered] interface {
	Min() T
	Max() T
	Increment(v T) (T, bool)
	Decrement(v T) (T, bool)
}

// Interval is the closed range [Lo, Hi].
type Interval[T cmp.Ordered] struct {
	Lo, Hi T
}

func (iv Interval[T]) String() string {
	if iv.Lo == iv.Hi {
		return fmt.Sprint(iv.Lo)
	}
	return fmt.Sprintf("%v-%v", iv.Lo, iv.Hi)
}

// Set is an owned, normalized collection of intervals. The zero value is
// the empty set. D is a stateless type implementing Domain.
type Set[T cmp.Ordered, D Domain[T]] struct {
	ranges []Interval[T]
}

// New returns the normalized set denoted by ivs. It panics if an interval
// has Lo > Hi.
func New[T cmp.Ordered, D Domain[T]](ivs ...Interval[T]) Set[T, D] {
	for _, iv := range ivs {
		if iv.Lo > iv.Hi {
			panic(fmt.Sprintf("interval: inverted range %v > %v", iv.Lo, iv.Hi))
		}
	}
	s := Set[T, D]{ranges: slices.Clone(ivs)}
	s.normalize()
	return s
}

// Single returns the set holding the one interval [lo, hi].
func Single[T cmp.Ordered, D Domain[T]](lo, hi T) Set[T, D] {
	return New[T, D](Interval[T]{lo, hi})
}

// Full returns the set spanning the whole domain.
func Full[T cmp.Ordered, D Domain[T]]() Set[T, D] {
	var d D
	return Set[T, D]{ranges: []Interval[T]{{d.Min(), d.Max()}}}
}

// Intervals returns a copy of the normalized intervals.
func (s Set[T, D]) Intervals() []Interval[T] {
	return slices.Clone(s.ranges)
}

// Len returns the number of intervals.
func (s Set[T, D]) Len() int { return len(s.ranges) }

// IsEmpty reports whether the set denotes no values.
func (s Set[T, D]) IsEmpty() bool { return len(s.ranges) == 0 }

// Clone returns a deep copy whose storage is not shared with s.
func (s Set[T, D]) Clone() Set[T, D] {
	return Set[T, D]{ranges: slices.Clone(s.ranges)}
}

// Equal reports whether both sets hold the same intervals.
func (s Set[T, D]) Equal(o Set[T, D]) bool {
	return slices.Equal(s.ranges, o.ranges)
}

// Contains reports whether v lies inside one of the intervals.
func (s Set[T, D]) Contains(v T) bool {
	_, found := slices.BinarySearchFunc(s.ranges, v, func(iv Interval[T], v T) int {
		switch {
		case iv.Hi < v:
			return -1
		case iv.Lo > v:
			return 1
		}
		return 0
	})
	return found
}

func (s Set[T, D]) String() string {
	var b strings.Builder
	b.WriteByte('[')
	for i, iv := range s.ranges {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(iv.String())
	}
	b.WriteByte(']')
	return b.String()
}

// set installs out as the backing storage; the empty set is always nil.
func (s *Set[T, D]) set(out []Interval[T]) {
	if len(out) == 0 {
		out = nil
	}
	s.ranges = out
}

// adjacent reports whether b starts right after a ends.
func adjacent[T cmp.Ordered, D Domain[T]](a, b Interval[T]) bool {
	var d D
	next, ok := d.Increment(a.Hi)
	return ok && next == b.Lo
}

// Normalize sorts the intervals and merges any that overlap or touch.
func (s *Set[T, D]) Normalize() {
	s.ranges = slices.Clone(s.ranges)
	s.normalize()
}

// normalize works in place; s must own its storage.
func (s *Set[T, D]) normalize() {
	if len(s.ranges) < 2 {
		s.set(s.ranges)
		return
	}
	slices.SortFunc(s.ranges, func(a, b Interval[T]) int {
		if c := cmp.Compare(a.Lo, b.Lo); c != 0 {
			return c
		}
		return cmp.Compare(a.Hi, b.Hi)
	})
	out := s.ranges[:1]
	for _, iv := range s.ranges[1:] {
		last := &out[len(out)-1]
		if iv.Lo <= last.Hi || adjacent[T, D](*last, iv) || adjacent[T, D](iv, *last) {
			last.Hi = max(last.Hi, iv.Hi)
			continue
		}
		out = append(out, iv)
	}
	s.set(out)
}

// Add inserts the single interval iv.
func (s *Set[T, D]) Add(iv Interval[T]) {
	if iv.Lo > iv.Hi {
		panic(fmt.Sprintf("interval: inverted range %v > %v", iv.Lo, iv.Hi))
	}
	s.ranges = append(slices.Clip(s.ranges), iv)
	s.normalize()
}

// Union adds every value of o to s.
func (s *Set[T, D]) Union(o Set[T, D]) {
	if o.IsEmpty() || s.Equal(o) {
		return
	}
	s.ranges = append(slices.Clip(s.ranges), o.ranges...)
	s.normalize()
}

// Intersect keeps only the values present in both s and o.
func (s *Set[T, D]) Intersect(o Set[T, D]) {
	if s.IsEmpty() {
		return
	}
	if o.IsEmpty() {
		s.set(nil)
		return
	}
	out := make([]Interval[T], 0, max(len(s.ranges), len(o.ranges)))
	i, j := 0, 0
	for i < len(s.ranges) && j < len(o.ranges) {
		a, b := s.ranges[i], o.ranges[j]
		lo, hi := max(a.Lo, b.Lo), min(a.Hi, b.Hi)
		if lo <= hi {
			out = append(out, Interval[T]{lo, hi})
		}
		if a.Hi < b.Hi {
			i++
		} else {
			j++
		}
	}
	s.set(out)
}

// Subtract removes every value of o from s.
func (s *Set[T, D]) Subtract(o Set[T, D]) {
	if s.IsEmpty() || o.IsEmpty() {
		return
	}
	out := make([]Interval[T], 0, len(s.ranges))
	j := 0
	for _, cur := range s.ranges {
		for j < len(o.ranges) && o.ranges[j].Hi < cur.Lo {
			j++
		}
		keep := true
		for j < len(o.ranges) && o.ranges[j].Lo <= cur.Hi {
			left, right := difference[T, D](cur, o.ranges[j])
			if left != nil {
				out = append(out, *left)
			}
			if right == nil {
				// o.ranges[j] reaches past cur and may cut the next interval.
				keep = false
				break
			}
			cur = *right
			j++
		}
		if keep {
			out = append(out, cur)
		}
	}
	s.set(out)
}

// difference splits a around the overlapping interval b. Either remainder
// is nil when b covers that side of a.
func difference[T cmp.Ordered, D Domain[T]](a, b Interval[T]) (left, right *Interval[T]) {
	var d D
	if b.Lo > a.Lo {
		if hi, ok := d.Decrement(b.Lo); ok {
			left = &Interval[T]{a.Lo, hi}
		}
	}
	if b.Hi < a.Hi {
		if lo, ok := d.Increment(b.Hi); ok {
			right = &Interval[T]{lo, a.Hi}
		}
	}
	return left, right
}

// SymmetricDifference keeps the values present in exactly one of s and o.
func (s *Set[T, D]) SymmetricDifference(o Set[T, D]) {
	// The intersection must be taken before s is widened by the union.
	both := s.Clone()
	both.Intersect(o)
	s.Union(o)
	s.Subtract(both)
}

// Invert replaces s by its complement within [Min, Max].
func (s *Set[T, D]) Invert() {
	var d D
	if s.IsEmpty() {
		s.ranges = []Interval[T]{{d.Min(), d.Max()}}
		return
	}
	out := make([]Interval[T], 0, len(s.ranges)+1)
	first := s.ranges[0]
	if first.Lo != d.Min() {
		if hi, ok := d.Decrement(first.Lo); ok {
			out = append(out, Interval[T]{d.Min(), hi})
		}
	}
	for i := 1; i < len(s.ranges); i++ {
		lo, okLo := d.Increment(s.ranges[i-1].Hi)
		hi, okHi := d.Decrement(s.ranges[i].Lo)
		if okLo && okHi && lo <= hi {
			out = append(out, Interval[T]{lo, hi})
		}
	}
	last := s.ranges[len(s.ranges)-1]
	if last.Hi != d.Max() {
		if lo, ok := d.Increment(last.Hi); ok {
			out = append(out, Interval[T]{lo, d.Max()})
		}
	}
	s.set(out)
}

// Inverting returns the complement of s, leaving s untouched.
func (s Set[T, D]) Inverting() Set[T, D] {
	c := s.Clone()
	c.Invert()
	return c
}
