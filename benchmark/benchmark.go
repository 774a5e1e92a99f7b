package benchmark

import (
	"context"
	"fmt"
	"io"
	"math"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"go.uber.org/atomic"

	"github.com/acronis/perfkit-sets/logger"
)

// TestOpts represents all user specified flags
type TestOpts interface{}

// WorkerData represents test specific data
type WorkerData interface{}

// AnyData represents any data
type AnyData interface{}

// Score represents test score
type Score struct {
	Workers int     `json:"workers"`
	Seconds float64 `json:"seconds"`
	Loops   uint64  `json:"loops"`
	Rate    float64 `json:"rate"`
	Metric  string  `json:"metric"`
}

// FormatRate formats rate to n significant figures
func (s *Score) FormatRate(n int) string {
	if s.Rate == 0.0 {
		return "0"
	}

	// Calculate magnitude of the number
	order := math.Floor(math.Log10(math.Abs(s.Rate))) + 1

	precision := n - int(order)
	if precision < 0 {
		precision = 0
	}

	format := fmt.Sprintf("%%.%df", precision)

	return fmt.Sprintf(format, s.Rate)
}

// Benchmark is used for running tests
// Init is called once before WorkerInitFunc and should prepare the data shared by all workers
// WorkerInitFunc is called for every worker and should initialize worker.Data
// WorkerRunFunc runs user logic and returns the number of loops done, zero stops the worker
// WorkerFinishFunc is called for every worker after the last repeat
// Finish is called once after WorkerFinishFunc
type Benchmark struct {
	AddOpts          func() TestOpts
	Init             func()
	WorkerInitFunc   func(worker *BenchmarkWorker)
	WorkerPreRunFunc func(worker *BenchmarkWorker)
	WorkerRunFunc    func(worker *BenchmarkWorker) (loops int)
	WorkerFinishFunc func(worker *BenchmarkWorker)
	Finish           func()
	PreExit          func()
	Metric           func() (metric string)
	GetRate          func(loops uint64, seconds float64) float64
	PrintScore       func(score Score)
	CommonOpts       CommonOpts
	Cli              CLI
	TestOpts         TestOpts
	OptsInitialized  bool
	Logger           logger.Logger

	// Out receives scores and reports
	Out io.Writer

	Score Score

	CliArgs []string
	Vault   AnyData

	Randomizer *Randomizer

	Workers []*BenchmarkWorker

	ShutdownCh   chan struct{}
	shutdownOnce sync.Once
	needToExit   atomic.Bool
	doneLoops    atomic.Uint64
}

// Log prints a message on behalf of the given worker, -1 stands for the main process
func (b *Benchmark) Log(level logger.LogLevel, workerID int, format string, args ...interface{}) {
	logger.ForWorker(b.Logger, workerID).Log(level, format, args...)
}

// NewBenchmark creates a new Benchmark instance with default values
func NewBenchmark() *Benchmark {
	b := Benchmark{
		AddOpts: func() TestOpts {
			var testOpts TestOpts

			return &testOpts
		},
		Init: func() {
		},
		WorkerInitFunc: func(worker *BenchmarkWorker) {
		},
		WorkerPreRunFunc: func(worker *BenchmarkWorker) {
		},
		WorkerRunFunc: func(worker *BenchmarkWorker) (loops int) {
			return 0
		},
		PreExit: func() {
		},
		WorkerFinishFunc: func(worker *BenchmarkWorker) {
		},
		Finish: func() {
		},
		Metric: func() (metric string) {
			return "loops/sec"
		},
		GetRate: func(loops uint64, seconds float64) float64 {
			return float64(loops) / seconds
		},
		Out:        os.Stdout,
		ShutdownCh: make(chan struct{}),
	}

	b.PrintScore = func(score Score) {
		fmt.Fprintf(b.Out, "time: %.1f sec; workers: %d; loops: %d; rate: %s %s\n",
			score.Seconds, score.Workers, score.Loops, score.FormatRate(4), score.Metric)
	}

	b.Logger = logger.NewPlaneLogger(logger.LevelWarn, false)
	b.Cli.Init(os.Args[0], &b.CommonOpts)

	return &b
}

// InitOpts parses the command line and creates the logger for the requested verbosity
func (b *Benchmark) InitOpts() {
	if b.OptsInitialized {
		return
	}
	b.TestOpts = b.AddOpts()
	b.CliArgs = b.Cli.Parse()
	b.OptsInitialized = true

	b.Logger = logger.NewPlaneLogger(logger.VerbosityLevel(len(b.CommonOpts.Verbose), b.CommonOpts.Quiet), false)
}

// SetUsage sets usage information
func (b *Benchmark) SetUsage(usage string) {
	b.Cli.SetUsage(usage)
}

// NeedToExit reports whether a shutdown was requested
func (b *Benchmark) NeedToExit() bool {
	return b.needToExit.Load()
}

// DoneLoops returns the number of loops completed by all workers in the current run so far
func (b *Benchmark) DoneLoops() uint64 {
	return b.doneLoops.Load()
}

// RunOnce runs the test once and prints the score
func (b *Benchmark) RunOnce(printScore bool) {
	if len(b.Workers) == 0 {
		b.Exit("internal error: Workers not initialized")
	}

	if b.CommonOpts.Loops != 0 {
		l := b.CommonOpts.Loops / len(b.Workers)
		rest := b.CommonOpts.Loops % len(b.Workers)
		for i, w := range b.Workers {
			w.PlannedLoops = l
			if i < rest {
				w.PlannedLoops++
			}
		}
	}

	b.doneLoops.Store(0)

	var wg sync.WaitGroup
	wg.Add(len(b.Workers))

	startTime := time.Now()
	for i, w := range b.Workers {
		if w == nil {
			b.Exit("internal error: Worker %d not initialized", i)
		}
		go runner(w, &wg)
	}
	wg.Wait()

	elapsed := time.Since(startTime)

	var totalLoops uint64
	for _, w := range b.Workers {
		totalLoops += uint64(w.ExecutedLoops)
	}

	if totalLoops == 0 {
		b.Score = Score{Workers: len(b.Workers), Metric: b.Metric()}
		return
	}

	b.Score.Seconds = elapsed.Seconds()
	b.Score.Rate = b.GetRate(totalLoops, b.Score.Seconds)
	b.Score.Metric = b.Metric()
	b.Score.Workers = len(b.Workers)
	b.Score.Loops = totalLoops

	if printScore {
		b.PrintScore(b.Score)
	}
}

// Run runs the test and prints the score (if repeat is 1) or the average, min and max scores (if repeat is > 1)
func (b *Benchmark) Run() {
	b.InitOpts()

	if b.CommonOpts.Workers < 1 {
		b.CommonOpts.Workers = 1
	}
	if b.CommonOpts.Repeat < 1 {
		b.CommonOpts.Repeat = 1
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		select {
		case sig := <-sigChan:
			b.Logger.Info("received signal %v, initiating graceful shutdown...", sig)
			b.Shutdown()
		case <-ctx.Done():
		}
		signal.Stop(sigChan)
	}()

	b.Randomizer = NewRandomizer(b.CommonOpts.RandSeed, b.CommonOpts.Workers)
	b.Workers = make([]*BenchmarkWorker, b.CommonOpts.Workers)

	for i := range b.Workers {
		b.Workers[i] = NewBenchmarkWorker(b, i)
	}

	b.Init()

	b.Logger.Debug("per-worker initialization")
	for _, w := range b.Workers {
		b.WorkerInitFunc(w)
		if b.NeedToExit() {
			break
		}
	}

	var minRate, maxRate, sumRate float64
	minRate = -1
	maxRate = -1

	for r := 0; r < b.CommonOpts.Repeat; r++ {
		b.RunOnce(r != b.CommonOpts.Repeat-1)
		if minRate == -1 || minRate > b.Score.Rate {
			minRate = b.Score.Rate
		}
		if maxRate == -1 || maxRate < b.Score.Rate {
			maxRate = b.Score.Rate
		}
		sumRate += b.Score.Rate
		if b.NeedToExit() {
			break
		}
	}

	b.Logger.Debug("per-worker termination")

	for _, w := range b.Workers {
		b.WorkerFinishFunc(w)
	}

	b.Finish()

	b.PrintScore(b.Score)

	if b.CommonOpts.Repeat > 1 {
		fmt.Fprintf(b.Out, "Avg rate: %8.1f; Min rate: %8.1f; Max rate: %8.1f\n", sumRate/float64(b.CommonOpts.Repeat), minRate, maxRate)
	}
}

// runner is a helper function for running tests in parallel
func runner(w *BenchmarkWorker, wg *sync.WaitGroup) {
	var doneLoops = 0

	defer func() {
		w.ExecutedLoops = doneLoops
		wg.Done()
	}()

	b := w.Benchmark
	deadline := time.Now().Add(time.Duration(b.CommonOpts.Duration) * time.Second)

	for {
		select {
		case <-b.ShutdownCh:
			w.Logger.Info("shutting down...")
			return
		default:
		}

		if b.CommonOpts.Loops != 0 {
			if doneLoops >= w.PlannedLoops {
				return
			}
		} else if !time.Now().Before(deadline) {
			return
		}

		b.WorkerPreRunFunc(w)
		l := b.WorkerRunFunc(w)
		if l == 0 {
			return
		}
		doneLoops += l
		b.doneLoops.Add(uint64(l))

		if b.NeedToExit() {
			return
		}

		if b.CommonOpts.Sleep > 0 {
			time.Sleep(time.Millisecond * time.Duration(b.CommonOpts.Sleep))
		}
	}
}

// Exit calls os.Exit() and sets 127 exit code if there is a message (+ args) passed, otherwise just exit with 0 (successful exit)
func (b *Benchmark) Exit(fmtAndArgs ...interface{}) {
	if len(fmtAndArgs) == 0 {
		b.PreExit()
		os.Exit(0)
	}

	switch first := fmtAndArgs[0].(type) {
	case string:
		if len(fmtAndArgs) > 1 {
			fmt.Printf(first, fmtAndArgs[1:]...)
		} else {
			fmt.Print(first)
		}
	case error:
		fmt.Print(first.Error())
	default:
		fmt.Println("First argument must be a format string or an error.")
	}

	fmt.Println()
	b.PreExit()
	os.Exit(127)
}

// Geomean calculates geometric mean of the given scores
func (b *Benchmark) Geomean(x []Score) float64 {
	if len(x) == 0 {
		return 0
	}

	var s float64
	for _, v := range x {
		s += math.Log(v.Rate)
	}
	s /= float64(len(x))

	return math.Exp(s)
}

// Shutdown gracefully shuts down the benchmark, it is safe to call it more than once
func (b *Benchmark) Shutdown() {
	b.shutdownOnce.Do(func() {
		b.needToExit.Store(true)
		close(b.ShutdownCh)
	})
}
