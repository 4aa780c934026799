// Package charclass provides character classes: normalized sets of
// Unicode scalar ranges with set-algebra operations.
package charclass

import (
	"fmt"
	"strings"

	"lexhir/internal/interval"
)

// Range is a closed range of scalars.
type Range = interval.Interval[rune]

type set = interval.Set[rune, Scalars]

// Class is a set of Unicode scalar values. The zero value is the empty
// class. Operations mutate the receiver and never share storage with
// their argument.
type Class struct {
	set set
}

// New returns the class holding the given ranges.
func New(ranges ...Range) Class {
	return Class{set: interval.New[rune, Scalars](ranges...)}
}

// Single returns the class holding only r.
func Single(r rune) Class { return New(Range{Lo: r, Hi: r}) }

// Dot returns the class matching any scalar.
//
// There is a single "any character" class; it ignores dot-all and
// multiline distinctions.
func Dot() Class {
	return Class{set: interval.Full[rune, Scalars]()}
}

// Ranges returns a copy of the normalized ranges.
func (c Class) Ranges() []Range { return c.set.Intervals() }

func (c Class) IsEmpty() bool       { return c.set.IsEmpty() }
func (c Class) Contains(r rune) bool { return IsScalar(r) && c.set.Contains(r) }
func (c Class) Equal(o Class) bool   { return c.set.Equal(o.set) }

// Add inserts [lo, hi].
func (c *Class) Add(lo, hi rune) { c.set.Add(Range{Lo: lo, Hi: hi}) }

func (c *Class) Union(o Class)               { c.set.Union(o.set) }
func (c *Class) Intersect(o Class)           { c.set.Intersect(o.set) }
func (c *Class) Subtract(o Class)            { c.set.Subtract(o.set) }
func (c *Class) SymmetricDifference(o Class) { c.set.SymmetricDifference(o.set) }
func (c *Class) Invert()                     { c.set.Invert() }

// Inverting returns the complement of c without modifying it.
func (c Class) Inverting() Class { return Class{set: c.set.Inverting()} }

// Clone returns a copy of c with its own storage.
func (c Class) Clone() Class { return Class{set: c.set.Clone()} }

// String renders c in bracket syntax, e.g. [a-z_\x{E000}].
func (c Class) String() string {
	var b strings.Builder
	b.WriteByte('[')
	for _, r := range c.set.Intervals() {
		b.WriteString(formatRune(r.Lo))
		if r.Hi != r.Lo {
			b.WriteByte('-')
			b.WriteString(formatRune(r.Hi))
		}
	}
	b.WriteByte(']')
	return b.String()
}

func formatRune(r rune) string {
	switch {
	case r == '\\' || r == ']' || r == '[' || r == '-' || r == '^':
		return `\` + string(r)
	case r > ' ' && r < 0x7F:
		return string(r)
	}
	return fmt.Sprintf(`\x{%X}`, r)
}
