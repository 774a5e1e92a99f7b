// Package benchmark is a library to create benchmarks.
//
// A Benchmark runs WorkerRunFunc on CommonOpts.Workers goroutines either for
// a total number of loops or for a duration, then reports a Score built from
// the executed loops and the elapsed time. Every worker gets its own logger
// and its own seeded random streams, so a run is reproducible for a given
// --randseed.
//
// The CLI wrapper around go-flags registers the common options and any tool
// specific groups. Values can also come from an INI file passed with --config,
// flags given on the command line override it.
//
// Example:
//
//	b := benchmark.NewBenchmark()
//	b.AddOpts = func() benchmark.TestOpts {
//	    var opts MyOpts
//	    b.Cli.AddFlagGroup("My options", "", &opts)
//	    return &opts
//	}
//	b.WorkerRunFunc = func(w *benchmark.BenchmarkWorker) int {
//	    doSomething(w.Randomizer.Intn(100))
//	    return 1
//	}
//	b.Run()
package benchmark
