package main

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/alecthomas/kong"

	"lexhir/internal/automaton"
	"lexhir/internal/compile"
)

type CLI struct {
	MaxDepth  int  `help:"Maximum nesting depth of a pattern" env:"LEXHIR_MAX_DEPTH" default:"1000"`
	MaxStates int  `help:"Maximum automaton size per pattern" env:"LEXHIR_MAX_STATES" default:"10000"`
	CacheSize int  `help:"Number of compiled patterns to keep" env:"LEXHIR_CACHE_SIZE" default:"256"`
	Verbose   bool `short:"v" help:"Log compile times, automaton sizes and cache use"`

	HIR   hirCommand   `cmd:"" name:"hir" help:"Print the HIR of a pattern"`
	Dot   dotCommand   `cmd:"" help:"Export the automaton of a pattern as Graphviz DOT"`
	Match matchCommand `cmd:"" help:"Match inputs against a pattern"`
	Check checkCommand `cmd:"" help:"Compile every pattern of a rules file and report overlaps"`
}

type hirCommand struct {
	Pattern string `arg:""`
}

func (h *hirCommand) Run(c *compile.Compiler, logf logger) error {
	p, err := compileLogged(c, logf, "pattern", h.Pattern)
	if err != nil {
		return err
	}
	fmt.Println(p.HIR)
	return nil
}

type dotCommand struct {
	Pattern string `arg:""`
	NFA     bool   `help:"Export the Thompson NFA" xor:"kind"`
	Raw     bool   `help:"Export the DFA before minimisation" xor:"kind"`
	Output  string `short:"o" default:"-" help:"Output file, - for stdout"`
}

func (d *dotCommand) Run(c *compile.Compiler, cli *CLI, logf logger) error {
	p, err := compileLogged(c, logf, "pattern", d.Pattern)
	if err != nil {
		return err
	}

	var graph any = p.DFA
	if d.NFA || d.Raw {
		b := automaton.Builder{MaxStates: cli.MaxStates}
		nfa, err := b.NFA(p.HIR)
		if err != nil {
			return err
		}
		graph = nfa
		logf("NFA has %d states", nfa.Len())
		if d.Raw {
			if graph, err = b.DFA(nfa); err != nil {
				return err
			}
		}
	}

	var w io.Writer = os.Stdout
	if d.Output != "-" {
		f, err := os.Create(d.Output)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}
	if err := automaton.ExportDOT(w, graph); err != nil {
		return err
	}
	if d.Output != "-" {
		log.Printf("DOT written to %s", d.Output)
	}
	return nil
}

type matchCommand struct {
	Pattern string   `arg:""`
	Inputs  []string `arg:"" optional:""`
}

func (m *matchCommand) Run(c *compile.Compiler, logf logger) error {
	p, err := compileLogged(c, logf, "pattern", m.Pattern)
	if err != nil {
		return err
	}
	misses := 0
	for _, in := range m.Inputs {
		ok := p.Match(in)
		if !ok {
			misses++
		}
		fmt.Printf("%q\t%v\n", in, ok)
	}
	if misses > 0 {
		return fmt.Errorf("%d of %d inputs did not match", misses, len(m.Inputs))
	}
	return nil
}

type checkCommand struct {
	File   string `arg:"" type:"existingfile" help:"YAML rules file"`
	Strict bool   `help:"Treat overlapping patterns as failures"`
}

func (k *checkCommand) Run(c *compile.Compiler, logf logger) error {
	data, err := os.ReadFile(k.File)
	if err != nil {
		return err
	}
	rules, err := loadRules(data)
	if err != nil {
		return fmt.Errorf("%s: %w", k.File, err)
	}
	logf("loaded %d patterns from %s", len(rules), k.File)
	return check(os.Stdout, c, logf, rules, k.Strict)
}

func main() {
	log.SetFlags(0)
	log.SetPrefix("lexhir: ")

	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("lexhir"),
		kong.Description("Translate lexer patterns into HIR and automata."),
		kong.UsageOnError(),
	)
	logf := logger(func(string, ...any) {})
	if cli.Verbose {
		logf = log.Printf
	}

	c, err := compile.New(compile.Options{
		MaxDepth:  cli.MaxDepth,
		MaxStates: cli.MaxStates,
		CacheSize: cli.CacheSize,
	})
	if err != nil {
		log.Fatal(err)
	}
	if err := ctx.Run(c, &cli, logf); err != nil {
		log.Fatal(err)
	}
}
