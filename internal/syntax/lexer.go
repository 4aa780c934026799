package syntax

import "github.com/alecthomas/participle/v2/lexer"

const (
	ident   = `[A-Za-z_][A-Za-z0-9_]*`
	anyChar = `(?s:.)`
)

// lexDef tokenises patterns. Root is the top level, Class the inside of
// brackets; Escapes is shared by both.
var lexDef = lexer.MustStateful(lexer.Rules{
	"Escapes": {
		{Name: "Quote", Pattern: `\\Q(?s:.*?)(?:\\E|$)`},
		{Name: "NamedChar", Pattern: `\\N\{[^}]*\}`},
		{Name: "Property", Pattern: `\\[pP](?:\{[^}]*\}|[A-Za-z])`},
		{Name: "Scalar", Pattern: `\\[xuo]\{[^}]*\}|\\x[0-9A-Fa-f]{1,2}|\\u[0-9A-Fa-f]{4}|\\U[0-9A-Fa-f]{8}`},
		{Name: "MetaControl", Pattern: `\\M-\\C-` + anyChar},
		{Name: "Meta", Pattern: `\\M-` + anyChar},
		{Name: "Control", Pattern: `\\c` + anyChar + `|\\C-` + anyChar},
		{Name: "BackRef", Pattern: `\\[1-9][0-9]*|\\k<[^>]*>|\\k'[^']*'|\\k\{[^}]*\}|\\g\{[^}]*\}|\\g-?[0-9]+`},
		{Name: "SubpatternCall", Pattern: `\\g<[^>]*>|\\g'[^']*'`},
		{Name: "BuiltinClass", Pattern: `\\[dDwWsShHvVRXN]`},
		{Name: "Assertion", Pattern: `\\[bBAzZGKyY]`},
		{Name: "Escaped", Pattern: `\\` + anyChar},
	},
	"Root": {
		lexer.Include("Escapes"),
		{Name: "Comment", Pattern: `\(\?#[^)]*\)`},
		{Name: "Callout", Pattern: `\(\?C[^)]*\)`},
		{Name: "Verb", Pattern: `\(\*[A-Za-z_]*(?::[^)]*)?\)`},
		{Name: "Recurse", Pattern: `\(\?(?:R|[+-]?[0-9]+|&` + ident + `|P>` + ident + `)\)`},
		{Name: "CondOpen", Pattern: `\(\?\(`},
		{Name: "AbsentOpen", Pattern: `\(\?~`},
		{Name: "OptionsOpen", Pattern: `\(\?(?:\^[a-zA-Z]*|[a-zA-Z]+(?:-[a-zA-Z]*)?|-[a-zA-Z]+)[:)]`},
		{Name: "GroupOpen", Pattern: `\((?:\?(?::|>|=|!|<=|<!|P?<` + ident + `>|'` + ident + `'))?`},
		{Name: "GroupClose", Pattern: `\)`},
		{Name: "Interpolation", Pattern: `<\{(?s:.*?)\}>`},
		{Name: "Alt", Pattern: `\|`},
		{Name: "Quant", Pattern: `[*+?][?+]?`},
		{Name: "Count", Pattern: `\{(?:[0-9]+(?:,[0-9]*)?|,[0-9]+)\}[?+]?`},
		{Name: "Dot", Pattern: `\.`},
		{Name: "Caret", Pattern: `\^`},
		{Name: "Dollar", Pattern: `\$`},
		{Name: "ClassOpen", Pattern: `\[\^?`, Action: lexer.Push("Class")},
		{Name: "Char", Pattern: anyChar},
	},
	"Class": {
		{Name: "Posix", Pattern: `\[:\^?[A-Za-z]+:\]`},
		{Name: "ClassOpen", Pattern: `\[\^?`, Action: lexer.Push("Class")},
		{Name: "ClassClose", Pattern: `\]`, Action: lexer.Pop()},
		lexer.Include("Escapes"),
		{Name: "SetOp", Pattern: `&&|--|~~`},
		{Name: "Dash", Pattern: `-`},
		{Name: "Char", Pattern: anyChar},
	},
})

var (
	symbols = lexDef.Symbols()

	tEOF           = lexer.EOF
	tQuote         = symbols["Quote"]
	tNamedChar     = symbols["NamedChar"]
	tProperty      = symbols["Property"]
	tScalar        = symbols["Scalar"]
	tMetaControl   = symbols["MetaControl"]
	tMeta          = symbols["Meta"]
	tControl       = symbols["Control"]
	tBackRef       = symbols["BackRef"]
	tSubpattern    = symbols["SubpatternCall"]
	tBuiltinClass  = symbols["BuiltinClass"]
	tAssertion     = symbols["Assertion"]
	tEscaped       = symbols["Escaped"]
	tComment       = symbols["Comment"]
	tCallout       = symbols["Callout"]
	tVerb          = symbols["Verb"]
	tRecurse       = symbols["Recurse"]
	tCondOpen      = symbols["CondOpen"]
	tAbsentOpen    = symbols["AbsentOpen"]
	tOptionsOpen   = symbols["OptionsOpen"]
	tGroupOpen     = symbols["GroupOpen"]
	tGroupClose    = symbols["GroupClose"]
	tInterpolation = symbols["Interpolation"]
	tAlt           = symbols["Alt"]
	tQuant         = symbols["Quant"]
	tCount         = symbols["Count"]
	tDot           = symbols["Dot"]
	tCaret         = symbols["Caret"]
	tDollar        = symbols["Dollar"]
	tClassOpen     = symbols["ClassOpen"]
	tClassClose    = symbols["ClassClose"]
	tPosix         = symbols["Posix"]
	tSetOp         = symbols["SetOp"]
	tDash          = symbols["Dash"]
	tChar          = symbols["Char"]
)
