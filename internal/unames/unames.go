// Package unames resolves Unicode character names, as written in \N{...}
// escapes, to the characters they denote.
package unames

import (
	"slices"
	"strconv"
	"strings"
	"sync"
	"unicode"

	"golang.org/x/text/unicode/runenames"
)

// Default is the shared index over the Unicode character database.
var Default = &Index{}

// Index maps character names to runes. The table is built on first use;
// an Index is safe for concurrent use.
type Index struct {
	once   sync.Once
	byName map[string]rune
}

// unified ideographs are named after their code point and carry no entry
// of their own in the database.
const unified = "CJK UNIFIED IDEOGRAPH-"

// Hangul syllable names are composed from the short names of their jamo.
const syllable = "HANGUL SYLLABLE "

var (
	jamoL = []string{"G", "GG", "N", "D", "DD", "R", "M", "B", "BB", "S", "SS", "", "J", "JJ", "C", "K", "T", "P", "H"}
	jamoV = []string{"A", "AE", "YA", "YAE", "EO", "E", "YEO", "YE", "O", "WA", "WAE", "OE", "YO", "U", "WEO", "WE", "WI", "YU", "EU", "YI", "I"}
	jamoT = []string{"", "G", "GG", "GS", "N", "NJ", "NH", "D", "L", "LG", "LM", "LB", "LS", "LT", "LP", "LH", "M", "B", "BS", "S", "SS", "NG", "J", "C", "K", "T", "P", "H"}
)

// Lookup returns the character called name. Matching ignores case and
// treats underscores and runs of spaces as a single space. "U+XXXX" is
// accepted for any assigned scalar.
func (x *Index) Lookup(name string) (string, bool) {
	key := fold(name)
	if key == "" {
		return "", false
	}
	if hex, ok := strings.CutPrefix(key, "U+"); ok {
		return byCode(hex)
	}
	if hex, ok := strings.CutPrefix(key, unified); ok {
		s, ok := byCode(hex)
		if !ok || !strings.HasPrefix(runenames.Name([]rune(s)[0]), "<CJK Ideograph") {
			return "", false
		}
		return s, true
	}
	if short, ok := strings.CutPrefix(key, syllable); ok {
		return hangul(short)
	}
	x.once.Do(x.build)
	r, ok := x.byName[key]
	if !ok {
		return "", false
	}
	return string(r), true
}

func (x *Index) build() {
	x.byName = make(map[string]rune, 1<<15)
	for r := rune(0); r <= unicode.MaxRune; r++ {
		if r == 0xD800 {
			r = 0xE000
		}
		name := runenames.Name(r)
		if name == "" || name[0] == '<' {
			continue
		}
		x.byName[name] = r
	}
}

// hangul finds the syllable whose leading, vowel and trailing jamo spell
// short. Syllable names are unique, so the first split that fits is it.
func hangul(short string) (string, bool) {
	for l, lead := range jamoL {
		rest, ok := strings.CutPrefix(short, lead)
		if !ok {
			continue
		}
		for v, vowel := range jamoV {
			tail, ok := strings.CutPrefix(rest, vowel)
			if !ok {
				continue
			}
			if t := slices.Index(jamoT, tail); t >= 0 {
				return string(rune(0xAC00 + (l*len(jamoV)+v)*len(jamoT) + t)), true
			}
		}
	}
	return "", false
}

func byCode(hex string) (string, bool) {
	n, err := strconv.ParseUint(hex, 16, 32)
	if err != nil || n > unicode.MaxRune || (n >= 0xD800 && n <= 0xDFFF) {
		return "", false
	}
	if runenames.Name(rune(n)) == "" {
		return "", false
	}
	return string(rune(n)), true
}

func fold(name string) string {
	name = strings.ReplaceAll(name, "_", " ")
	return strings.ToUpper(strings.Join(strings.Fields(name), " "))
}
