package engine

import (
	"fmt"

	jsoniter "github.com/json-iterator/go"

	"github.com/acronis/perfkit-sets/benchmark"
)

var quickJSON = jsoniter.ConfigCompatibleWithStandardLibrary

// ScoreReport is one line of the json score output
type ScoreReport struct {
	Test string `json:"test"`
	Set  string `json:"set"`
	Size int    `json:"size"`
	benchmark.Score
}

// GeomeanReport summarizes all tests of one set kind
type GeomeanReport struct {
	Set     string  `json:"set"`
	Geomean float64 `json:"geomean"`
}

func printJSON(b *benchmark.Benchmark, v interface{}) {
	line, err := quickJSON.Marshal(v)
	if err != nil {
		b.Logger.Error("cannot encode score: %v", err)
		return
	}
	fmt.Fprintf(b.Out, "%s\n", line)
}

func printScore(b *benchmark.Benchmark, score benchmark.Score) {
	d := b.Vault.(*SetTestData)
	size := d.setSize(b.Workers)

	if d.Opts.Format == formatJSON {
		printJSON(b, ScoreReport{Test: d.TestDesc.Name, Set: string(d.Kind), Size: size, Score: score})
		return
	}

	var format string
	if d.Opts.Test == TestAll.Name {
		format = "test: %-10s; set: %-8s; size: %8d; time: %5.1f sec; workers: %2d; loops: %8d; rate: %8s %s\n"
	} else {
		format = "test: %s; set: %s; size: %d; time: %.1f sec; workers: %d; loops: %d; rate: %s %s\n"
	}

	fmt.Fprintf(b.Out, format, d.TestDesc.Name, d.Kind, size, score.Seconds, score.Workers, score.Loops,
		score.FormatRate(4), score.Metric)
}

func printGeomeans(b *benchmark.Benchmark) {
	d := b.Vault.(*SetTestData)

	if d.Opts.Format != formatJSON {
		fmt.Fprintf(b.Out, "--------------------------------------------------------------------\n")
	}

	for _, kind := range d.Kinds {
		scores, ok := d.scores[kind]
		if !ok {
			continue
		}

		g := b.Geomean(scores)
		if d.Opts.Format == formatJSON {
			printJSON(b, GeomeanReport{Set: string(kind), Geomean: g})
		} else {
			fmt.Fprintf(b.Out, "%s geomean: %.0f\n", kind, g)
		}
	}
}
