package hir

import (
	"fmt"

	"lexhir/internal/syntax"
)

// ErrorKind classifies why a pattern could not be translated.
type ErrorKind int

const (
	// Unsupported constructs need backtracking or more than a finite
	// automaton and will not be supported.
	Unsupported ErrorKind = iota
	// Unavailable constructs could be supported but are not implemented.
	Unavailable
	// Invalid patterns are malformed whatever the engine, e.g. {5,2}.
	Invalid
)

func (k ErrorKind) String() string {
	switch k {
	case Unsupported:
		return "unsupported"
	case Unavailable:
		return "unavailable"
	case Invalid:
		return "invalid"
	}
	return fmt.Sprintf("ErrorKind(%d)", int(k))
}

// Error is a translation failure at a source location.
type Error struct {
	Kind   ErrorKind
	Reason string
	Loc    syntax.Location
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s: %s", e.Loc.Start, e.Kind, e.Reason)
}

func errorf(kind ErrorKind, n interface{ Loc() syntax.Location }, format string, args ...any) error {
	return &Error{Kind: kind, Reason: fmt.Sprintf(format, args...), Loc: n.Loc()}
}
