package benchmark

import "github.com/acronis/perfkit-sets/logger"

// BenchmarkWorker holds the state of one worker goroutine
type BenchmarkWorker struct {
	Benchmark *Benchmark
	WorkerID  int
	Logger    logger.Logger
	Data      WorkerData

	Randomizer *RandomizerWorker

	PlannedLoops  int
	ExecutedLoops int
}

// NewBenchmarkWorker creates a worker with its own logger prefix and random streams
func NewBenchmarkWorker(b *Benchmark, workerID int) *BenchmarkWorker {
	return &BenchmarkWorker{
		Benchmark:  b,
		WorkerID:   workerID,
		Logger:     logger.ForWorker(b.Logger, workerID),
		Randomizer: b.Randomizer.GetWorker(workerID),
	}
}

// Exit stops the whole benchmark with the given error
func (w *BenchmarkWorker) Exit(err error) {
	w.Benchmark.Exit("worker # %03d: %v", w.WorkerID, err)
}
