package compile

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"lexhir/internal/automaton"
	"lexhir/internal/hir"
	"lexhir/internal/syntax"
)

func newCompiler(t *testing.T, opts Options) *Compiler {
	t.Helper()
	c, err := New(opts)
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func TestCompileAndMatch(t *testing.T) {
	c := newCompiler(t, Options{})
	p, err := c.Compile("", `[a-zA-Z_][a-zA-Z0-9_]*`)
	if err != nil {
		t.Fatal(err)
	}
	for in, want := range map[string]bool{"ident_1": true, "_": true, "1abc": false, "": false} {
		if got := p.Match(in); got != want {
			t.Errorf("%q: want %v got %v", in, want, got)
		}
	}
	if p.Source != `[a-zA-Z_][a-zA-Z0-9_]*` || p.Syntax == nil || p.HIR == nil {
		t.Fatalf("incomplete pattern %+v", p)
	}
}

func TestCacheReturnsSameResult(t *testing.T) {
	c := newCompiler(t, Options{})
	hits := testutil.ToFloat64(metricCacheHits)

	a, err := c.Compile("", `x+`)
	if err != nil {
		t.Fatal(err)
	}
	b, _ := c.Compile("", `x+`)
	if a != b {
		t.Fatal("second compile did not come from the cache")
	}
	if got := testutil.ToFloat64(metricCacheHits) - hits; got != 1 {
		t.Fatalf("want 1 cache hit got %v", got)
	}

	// The filename is part of the key since it appears in errors.
	if other, _ := c.Compile("f.yaml", `x+`); other == a {
		t.Fatal("different filenames share a cache entry")
	}
}

func TestErrorsAreCachedAndTyped(t *testing.T) {
	c := newCompiler(t, Options{})
	invalid := testutil.ToFloat64(metricCompiles.WithLabelValues("invalid"))

	_, err1 := c.Compile("", `a{5,2}`)
	_, err2 := c.Compile("", `a{5,2}`)
	var herr *hir.Error
	if !errors.As(err1, &herr) || herr.Kind != hir.Invalid {
		t.Fatalf("want invalid hir error got %v", err1)
	}
	if err1 != err2 {
		t.Fatal("cached error differs")
	}
	if got := testutil.ToFloat64(metricCompiles.WithLabelValues("invalid")) - invalid; got != 1 {
		t.Fatalf("want one invalid compile got %v", got)
	}

	_, err := c.Compile("p.yaml", `(a`)
	var serr *syntax.Error
	if !errors.As(err, &serr) || serr.Pos.Filename != "p.yaml" {
		t.Fatalf("want syntax error got %v", err)
	}

	small := newCompiler(t, Options{MaxStates: 10})
	if _, err := small.Compile("", `a{50}`); !errors.Is(err, automaton.ErrTooLarge) {
		t.Fatalf("want ErrTooLarge got %v", err)
	}
}

func TestOutcome(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, "ok"},
		{&syntax.Error{Msg: "x"}, "syntax"},
		{&hir.Error{Kind: hir.Unsupported}, "unsupported"},
		{&hir.Error{Kind: hir.Unavailable}, "unavailable"},
		{fmt.Errorf("%w: big", automaton.ErrTooLarge), "too_large"},
		{errors.New("other"), "error"},
	}
	for _, tt := range tests {
		if got := outcome(tt.err); got != tt.want {
			t.Errorf("%v: want %s got %s", tt.err, tt.want, got)
		}
	}
}

func TestCacheEviction(t *testing.T) {
	c := newCompiler(t, Options{CacheSize: 2})
	for _, p := range []string{"a", "b", "c"} {
		if _, err := c.Compile("", p); err != nil {
			t.Fatal(err)
		}
	}
	if c.Len() != 2 {
		t.Fatalf("want 2 cached got %d", c.Len())
	}
}

func TestConcurrentCompile(t *testing.T) {
	c := newCompiler(t, Options{CacheSize: 4})
	patterns := []string{`[0-9]+`, `[a-f]+`, `x|y|z`, `(ab)*`, `a\1`, `.?`}
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				pat := patterns[(i+j)%len(patterns)]
				p, err := c.Compile("", pat)
				if err == nil && p.Source != pat {
					t.Errorf("got pattern %q for %q", p.Source, pat)
				}
			}
		}(i)
	}
	wg.Wait()
}

func TestOverlap(t *testing.T) {
	c := newCompiler(t, Options{})
	ident, _ := c.Compile("", `[a-z]+`)
	kw, _ := c.Compile("", `if`)
	num, _ := c.Compile("", `[0-9]+`)
	if w, ok := Overlap(ident, kw); !ok || w != "if" {
		t.Fatalf("ident/keyword overlap: %q %v", w, ok)
	}
	if w, ok := Overlap(ident, num); ok {
		t.Fatalf("ident/number overlap: %q", w)
	}
}
