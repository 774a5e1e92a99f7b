package engine

import (
	"fmt"

	"github.com/acronis/perfkit-sets/benchmark"
	"github.com/acronis/perfkit-sets/set"
)

type workerInitFunc func(w *benchmark.BenchmarkWorker, d *SetTestData) error
type workerRunFunc func(w *benchmark.BenchmarkWorker, d *SetTestData) (loops int)

// TestDesc describes a test
type TestDesc struct {
	Name        string
	Metric      string
	Description string

	initFunc workerInitFunc
	runFunc  workerRunFunc
}

// TestAdd inserts vocabulary words into an initially empty set
var TestAdd = TestDesc{
	Name:        "add",
	Metric:      "words/sec",
	Description: "insert vocabulary words into an empty set, every worker fills its own set",
	initFunc:    initEmptySet,
	runFunc:     addWorker,
}

// TestContains queries a preloaded set with present and absent words
var TestContains = TestDesc{
	Name:        "contains",
	Metric:      "lookups/sec",
	Description: "look up present and absent words (see --miss-ratio) in a preloaded set",
	initFunc:    initLoadedSet,
	runFunc:     containsWorker,
}

// TestSuggest asks for spelling suggestions of misspelled vocabulary words
var TestSuggest = TestDesc{
	Name:        "suggest",
	Metric:      "suggestions/sec",
	Description: "misspell a vocabulary word and find its suggestions in a preloaded set",
	initFunc:    initChecker,
	runFunc:     suggestWorker,
}

// TestAll runs every test for every requested set kind
var TestAll = TestDesc{
	Name:        "all",
	Description: "execute all tests for every set kind and print the geomean per kind",
}

// GetTests returns the runnable tests in execution order
func GetTests() []*TestDesc {
	return []*TestDesc{&TestAdd, &TestContains, &TestSuggest}
}

func findTest(name string) (*TestDesc, bool) {
	for _, t := range GetTests() {
		if t.Name == name {
			return t, true
		}
	}

	return nil, false
}

// executeTests runs the named test against every requested set kind
func executeTests(b *benchmark.Benchmark, name string) error {
	if name == TestAll.Name {
		executeAllTests(b)
		return nil
	}

	test, exists := findTest(name)
	if !exists {
		return fmt.Errorf("test: '%s' doesn't exist, see the list of available tests using --list option", name)
	}

	d := b.Vault.(*SetTestData)
	for _, kind := range d.Kinds {
		runTest(b, test, kind)
		if b.NeedToExit() {
			break
		}
	}

	return nil
}

func executeAllTests(b *benchmark.Benchmark) {
	d := b.Vault.(*SetTestData)

	for _, kind := range d.Kinds {
		for _, test := range GetTests() {
			runTest(b, test, kind)
			if b.NeedToExit() {
				printGeomeans(b)
				return
			}
		}
	}

	printGeomeans(b)
}

// runTest wires the test into the benchmark and runs it for one set kind
func runTest(b *benchmark.Benchmark, test *TestDesc, kind set.Kind) {
	d := b.Vault.(*SetTestData)
	d.TestDesc = test
	d.Kind = kind
	d.resetCounters()

	b.Metric = func() string {
		return test.Metric
	}

	b.Init = func() {
		b.Logger.Debug("running test '%s' on a %s set with %d words", test.Name, kind, len(d.Vocabulary))
	}

	b.WorkerInitFunc = func(w *benchmark.BenchmarkWorker) {
		if err := test.initFunc(w, d); err != nil {
			w.Exit(err)
		}
	}

	b.WorkerRunFunc = func(w *benchmark.BenchmarkWorker) (loops int) {
		return test.runFunc(w, d)
	}

	b.WorkerFinishFunc = func(w *benchmark.BenchmarkWorker) {
		if !d.Opts.Validate {
			return
		}
		if data, ok := w.Data.(*SetWorkerData); ok {
			if err := validate(data.set); err != nil {
				w.Exit(err)
			}
		}
	}

	b.Finish = func() {
		switch test.Name {
		case TestContains.Name:
			b.Logger.Info("%s: %d hits, %d misses", kind, d.hits.Load(), d.misses.Load())
		case TestSuggest.Name:
			b.Logger.Info("%s: %d suggestions found", kind, d.suggestions.Load())
		}
	}

	b.Run()

	d.scores[kind] = append(d.scores[kind], b.Score)
}
