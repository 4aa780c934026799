// Package compile runs the whole pipeline: pattern source to syntax tree,
// syntax tree to HIR, HIR to a minimal DFA. Results are memoised.
package compile

import (
	"errors"

	lru "github.com/hashicorp/golang-lru/v2"

	"lexhir/internal/automaton"
	"lexhir/internal/hir"
	"lexhir/internal/syntax"
)

// DefaultCacheSize is the number of compiled patterns a Compiler keeps.
const DefaultCacheSize = 256

// Options tunes a Compiler. Zero fields take the package defaults of the
// stage they configure.
type Options struct {
	MaxDepth  int
	MaxStates int
	CacheSize int
	Names     hir.NameResolver
}

// Pattern is a compiled pattern and the artifacts of every stage.
type Pattern struct {
	Source string
	Syntax syntax.Node
	HIR    hir.Node
	DFA    *automaton.DFA
}

// Match reports whether the whole of s matches p.
func (p *Pattern) Match(s string) bool { return p.DFA.Match(s) }

// Compiler compiles patterns. It is safe for concurrent use.
type Compiler struct {
	parser     syntax.Parser
	translator hir.Translator
	builder    automaton.Builder
	cache      *lru.Cache[key, result]
}

type key struct {
	filename, pattern string
}

type result struct {
	p   *Pattern
	err error
}

// New returns a Compiler configured by opts.
func New(opts Options) (*Compiler, error) {
	size := opts.CacheSize
	if size <= 0 {
		size = DefaultCacheSize
	}
	cache, err := lru.New[key, result](size)
	if err != nil {
		return nil, err
	}
	return &Compiler{
		parser:     syntax.Parser{MaxDepth: opts.MaxDepth},
		translator: hir.Translator{MaxDepth: opts.MaxDepth, Names: opts.Names},
		builder:    automaton.Builder{MaxStates: opts.MaxStates},
		cache:      cache,
	}, nil
}

// Compile compiles pattern. filename labels error positions and may be
// empty. Errors are *syntax.Error, *hir.Error or wrap
// automaton.ErrTooLarge, and are cached like successes.
func (c *Compiler) Compile(filename, pattern string) (*Pattern, error) {
	k := key{filename, pattern}
	if r, ok := c.cache.Get(k); ok {
		metricCacheHits.Inc()
		return r.p, r.err
	}
	metricCacheMisses.Inc()
	p, err := c.compile(filename, pattern)
	metricCompiles.WithLabelValues(outcome(err)).Inc()
	c.cache.Add(k, result{p, err})
	return p, err
}

func (c *Compiler) compile(filename, pattern string) (*Pattern, error) {
	n, err := c.parser.Parse(filename, pattern)
	if err != nil {
		return nil, err
	}
	h, err := c.translator.Translate(n)
	if err != nil {
		return nil, err
	}
	d, err := c.builder.Build(h)
	if err != nil {
		return nil, err
	}
	return &Pattern{Source: pattern, Syntax: n, HIR: h, DFA: d}, nil
}

// Len returns the number of cached results.
func (c *Compiler) Len() int { return c.cache.Len() }

// Overlap returns a shortest string matched by both a and b, if any.
func Overlap(a, b *Pattern) (string, bool) {
	return automaton.Intersect(a.DFA, b.DFA).Shortest()
}

// outcome names the stage that rejected a pattern, or "ok".
func outcome(err error) string {
	var herr *hir.Error
	var serr *syntax.Error
	switch {
	case err == nil:
		return "ok"
	case errors.As(err, &serr):
		return "syntax"
	case errors.As(err, &herr):
		return herr.Kind.String()
	case errors.Is(err, automaton.ErrTooLarge):
		return "too_large"
	}
	return "error"
}
