package main

import (
	"errors"
	"fmt"
	"io"
	"time"

	"sigs.k8s.io/yaml"

	"lexhir/internal/compile"
)

// rulesFile is the layout of a rules file:
//
//	patterns:
//	  - name: ident
//	    pattern: '[a-z_][a-z0-9_]*'
type rulesFile struct {
	Patterns []rule `json:"patterns"`
}

type rule struct {
	Name    string `json:"name"`
	Pattern string `json:"pattern"`
}

func loadRules(data []byte) ([]rule, error) {
	var f rulesFile
	if err := yaml.UnmarshalStrict(data, &f); err != nil {
		return nil, err
	}
	if len(f.Patterns) == 0 {
		return nil, errNoRules
	}
	seen := make(map[string]bool, len(f.Patterns))
	for i, r := range f.Patterns {
		if r.Name == "" {
			return nil, fmt.Errorf("pattern #%d has no name", i+1)
		}
		if seen[r.Name] {
			return nil, fmt.Errorf("duplicate pattern name %q", r.Name)
		}
		seen[r.Name] = true
	}
	return f.Patterns, nil
}

// check compiles every rule, writing one line per failure and one warning
// per pair of rules that match a common string.
func check(w io.Writer, c *compile.Compiler, logf logger, rules []rule, strict bool) error {
	start := time.Now()
	type compiled struct {
		name string
		p    *compile.Pattern
	}
	var ok []compiled
	failed := 0
	for _, r := range rules {
		p, err := compileLogged(c, logf, r.Name, r.Pattern)
		if err != nil {
			failed++
			fmt.Fprintln(w, err)
			continue
		}
		ok = append(ok, compiled{r.Name, p})
	}

	overlaps, pairs := 0, 0
	overlapStart := time.Now()
	for i, a := range ok {
		for _, b := range ok[i+1:] {
			pairs++
			if s, found := compile.Overlap(a.p, b.p); found {
				overlaps++
				fmt.Fprintf(w, "warning: %s and %s both match %q\n", a.name, b.name, s)
			}
		}
	}

	logf("compared %d pairs in %v", pairs, time.Since(overlapStart))
	logf("checked %d patterns in %v, %d cached results", len(rules), time.Since(start), c.Len())

	switch {
	case failed > 0:
		return fmt.Errorf("%d of %d patterns failed to compile", failed, len(rules))
	case strict && overlaps > 0:
		return fmt.Errorf("%d overlapping pattern pairs", overlaps)
	}
	return nil
}

// logger receives progress details; it discards them unless --verbose is set.
type logger func(format string, args ...any)

func compileLogged(c *compile.Compiler, logf logger, name, pattern string) (*compile.Pattern, error) {
	start := time.Now()
	p, err := c.Compile(name, pattern)
	if err != nil {
		logf("%s: rejected after %v", name, time.Since(start))
		return nil, err
	}
	logf("%s: compiled in %v, %d DFA states", name, time.Since(start), p.DFA.Len())
	return p, nil
}

var errNoRules = errors.New("no patterns")
