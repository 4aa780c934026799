package charclass

import "unicode"

const (
	surrogateMin = 0xD800
	surrogateMax = 0xDFFF
)

// Scalars is the domain of Unicode scalar values: every code point from 0
// to unicode.MaxRune except the surrogate block D800..DFFF.
type Scalars struct{}

func (Scalars) Min() rune { return 0 }
func (Scalars) Max() rune { return unicode.MaxRune }

// Increment returns the next scalar after r, stepping over the surrogates.
func (Scalars) Increment(r rune) (rune, bool) {
	switch {
	case r >= unicode.MaxRune:
		return 0, false
	case r == surrogateMin-1:
		return surrogateMax + 1, true
	}
	return r + 1, true
}

// Decrement returns the scalar before r, stepping over the surrogates.
func (Scalars) Decrement(r rune) (rune, bool) {
	switch {
	case r <= 0:
		return 0, false
	case r == surrogateMax+1:
		return surrogateMin - 1, true
	}
	return r - 1, true
}

// IsScalar reports whether r is a Unicode scalar value.
func IsScalar(r rune) bool {
	return r >= 0 && r <= unicode.MaxRune && (r < surrogateMin || r > surrogateMax)
}
