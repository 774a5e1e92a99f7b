// Package engine benchmarks Set variants against a vocabulary and serves
// spelling suggestions on top of them.
package engine

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/acronis/perfkit-sets/benchmark"
	"github.com/acronis/perfkit-sets/logger"
	"github.com/acronis/perfkit-sets/set"
	"github.com/acronis/perfkit-sets/spell"
	"github.com/acronis/perfkit-sets/spellserver"
	"github.com/acronis/perfkit-sets/wordsource"
)

// Version is a version of the acronis-set-bench
var Version = "1-main-dev"

func printVersion(out io.Writer) {
	fmt.Fprintf(out, "Acronis Set Benchmark: version v%s\n", Version)
}

// TestOpts is a structure to store all the test options
type TestOpts struct {
	BenchOpts BenchOpts
}

// BenchOpts is a structure to store all the benchmark options
type BenchOpts struct {
	Test      string  `short:"t" long:"test" description:"select a test to execute (add|contains|suggest|all), run --list to see available tests list" required:"false"`
	List      bool    `short:"a" long:"list" description:"list available tests, set kinds and word sources" required:"false"`
	Sets      string  `long:"set" description:"comma separated list of set kinds to test, all kinds by default" required:"false"`
	Source    string  `long:"source" description:"word source connection string, e.g. file:///usr/share/dict/words" required:"false" default:"synthetic://10000"`
	Limit     int     `short:"U" long:"limit" description:"max number of words to load, 0 means all" required:"false" default:"0"`
	Case      string  `long:"case" description:"normalize loaded words (keep|upper|lower)" required:"false" default:"upper"`
	MissRatio float64 `long:"miss-ratio" description:"share of 'contains' lookups of absent words" required:"false" default:"0.5"`
	Validate  bool    `long:"validate" description:"check set invariants after loading the vocabulary" required:"false"`
	Check     string  `long:"check" description:"print whether the given word exists and its suggestions, then exit" required:"false"`
	Format    string  `long:"format" description:"score output format (text|json)" required:"false" default:"text"`
	Hash      string  `long:"hash" description:"string hash function for the hash set (xxh3|city)" required:"false" default:"xxh3"`
	Alphabet  string  `long:"alphabet" description:"letters tried by the suggestion engine" required:"false" default:"ABCDEFGHIJKLMNOPQRSTUVWXYZ"`
	Serve     string  `long:"serve" description:"serve lookups and suggestions over HTTP on the given address, e.g. :8080" required:"false"`
}

var header = strings.Repeat("=", 120) + "\n"

// Main is the main function of the acronis-set-bench
func Main() {
	b := benchmark.NewBenchmark()

	b.AddOpts = func() benchmark.TestOpts {
		var testOpts TestOpts
		b.Cli.AddFlagGroup("acronis-set-bench specific options", "", &testOpts.BenchOpts)

		return &testOpts
	}

	b.InitOpts()

	testOpts, ok := b.TestOpts.(*TestOpts)
	if !ok {
		b.Exit("set-bench options type conversion error")
	}

	if testOpts.BenchOpts.Format != formatJSON {
		fmt.Fprint(b.Out, header)
		printVersion(b.Out)
	}

	if testOpts.BenchOpts.List {
		listTests(b.Out)
		b.Exit()
	}

	d, err := NewSetTestData(&testOpts.BenchOpts)
	if err != nil {
		b.Exit(err)
	}
	b.Vault = d

	if err = d.LoadVocabulary(context.Background(), b.Logger, b.CommonOpts.RandSeed); err != nil {
		b.Exit(err)
	}

	b.PrintScore = func(score benchmark.Score) {
		printScore(b, score)
	}

	switch {
	case testOpts.BenchOpts.Check != "":
		if err = checkWord(b.Out, d, testOpts.BenchOpts.Check); err != nil {
			b.Exit(err)
		}
	case testOpts.BenchOpts.Serve != "":
		if err = serve(b, d, testOpts.BenchOpts.Serve); err != nil {
			b.Exit(err)
		}
	case testOpts.BenchOpts.Test != "":
		if err = executeTests(b, testOpts.BenchOpts.Test); err != nil {
			b.Exit(err)
		}
	default:
		b.Exit("either --test, --check or --serve option must be set, run --list to see available tests")
	}

	b.Exit()
}

// vocabularySet builds a set of the first requested kind holding the whole vocabulary
func vocabularySet(d *SetTestData) (set.Set[string], error) {
	s, err := d.NewSet(d.Kinds[0])
	if err != nil {
		return nil, err
	}
	set.AddAll(s, d.Vocabulary...)

	if d.Opts.Validate {
		if err = validate(s); err != nil {
			return nil, err
		}
	}

	return s, nil
}

func checkWord(out io.Writer, d *SetTestData, word string) error {
	s, err := vocabularySet(d)
	if err != nil {
		return err
	}

	word = d.Case.Normalize(word)
	checker := spell.NewWordChecker(s, spell.WithAlphabet(d.Opts.Alphabet))

	if checker.WordExists(word) {
		fmt.Fprintf(out, "%s: exists\n", word)
	} else {
		fmt.Fprintf(out, "%s: not found\n", word)
	}

	suggestions := checker.FindSuggestions(word)
	if len(suggestions) == 0 {
		fmt.Fprintf(out, "no suggestions\n")
		return nil
	}

	fmt.Fprintf(out, "suggestions: %s\n", strings.Join(suggestions, ", "))

	return nil
}

func serve(b *benchmark.Benchmark, d *SetTestData, addr string) error {
	s, err := vocabularySet(d)
	if err != nil {
		return err
	}

	b.Logger.Info("serving %d words from a %s set", s.Size(), d.Kinds[0])

	srv := spellserver.New(s, logger.ForWorker(b.Logger, logger.MainWorkerID), spell.WithAlphabet(d.Opts.Alphabet))

	return srv.Run(addr)
}

func listTests(out io.Writer) {
	fmt.Fprint(out, header)

	str := "  -- tests"
	fmt.Fprintf(out, "\n%s %s\n\n", str, strings.Repeat("-", 120-len(str)))
	for _, t := range GetTests() {
		fmt.Fprintf(out, "  %-10s : %-16s : %s\n", t.Name, t.Metric, t.Description)
	}
	fmt.Fprintf(out, "  %-10s : %-16s : %s\n", TestAll.Name, "", TestAll.Description)

	str = "  -- set kinds"
	fmt.Fprintf(out, "\n%s %s\n\n", str, strings.Repeat("-", 120-len(str)))
	for _, k := range set.Kinds() {
		fmt.Fprintf(out, "  %s\n", k)
	}

	str = "  -- word sources"
	fmt.Fprintf(out, "\n%s %s\n\n", str, strings.Repeat("-", 120-len(str)))
	for _, s := range wordsource.Schemes() {
		fmt.Fprintf(out, "  %s://\n", s)
	}
	fmt.Fprintln(out)
}
