package engine

import (
	"fmt"
	"slices"

	"github.com/acronis/perfkit-sets/benchmark"
	"github.com/acronis/perfkit-sets/set"
	"github.com/acronis/perfkit-sets/spell"
)

// SetWorkerData is owned by one worker, sets are never shared between goroutines
type SetWorkerData struct {
	set     set.Set[string]
	checker *spell.WordChecker
	next    int
}

/*
 * Worker initialization
 */

func initEmptySet(w *benchmark.BenchmarkWorker, d *SetTestData) error {
	s, err := d.NewSet(d.Kind)
	if err != nil {
		return err
	}
	w.Data = &SetWorkerData{set: s}

	return nil
}

func initLoadedSet(w *benchmark.BenchmarkWorker, d *SetTestData) error {
	s, err := d.NewSet(d.Kind)
	if err != nil {
		return err
	}
	set.AddAll(s, d.Vocabulary...)

	if d.Opts.Validate {
		if err = validate(s); err != nil {
			return err
		}
	}

	w.Logger.Debug("loaded %d words into a %s set", s.Size(), d.Kind)
	w.Data = &SetWorkerData{set: s}

	return nil
}

func initChecker(w *benchmark.BenchmarkWorker, d *SetTestData) error {
	if err := initLoadedSet(w, d); err != nil {
		return err
	}

	data := w.Data.(*SetWorkerData)
	data.checker = spell.NewWordChecker(data.set, spell.WithAlphabet(d.Opts.Alphabet))

	return nil
}

/*
 * Worker loops
 */

// addWorker interleaves the vocabulary between workers, each worker starts at its own offset
func addWorker(w *benchmark.BenchmarkWorker, d *SetTestData) (loops int) {
	data := w.Data.(*SetWorkerData)

	i := (data.next*len(w.Benchmark.Workers) + w.WorkerID) % len(d.Vocabulary)
	data.next++
	data.set.Add(d.Vocabulary[i])

	return 1
}

func containsWorker(w *benchmark.BenchmarkWorker, d *SetTestData) (loops int) {
	data := w.Data.(*SetWorkerData)

	if len(d.Misses) > 0 && w.Randomizer.Chance(d.Opts.MissRatio) {
		word := d.Misses[w.Randomizer.Intn(len(d.Misses))]
		if data.set.Contains(word) {
			w.Exit(fmt.Errorf("%s set reports absent word '%s' as present", d.Kind, word))
		}
		d.misses.Inc()

		return 1
	}

	word := d.Vocabulary[w.Randomizer.Intn(len(d.Vocabulary))]
	if !data.set.Contains(word) {
		w.Exit(fmt.Errorf("%s set lost word '%s'", d.Kind, word))
	}
	d.hits.Inc()

	return 1
}

func suggestWorker(w *benchmark.BenchmarkWorker, d *SetTestData) (loops int) {
	data := w.Data.(*SetWorkerData)

	word := misspell(d.Vocabulary[w.Randomizer.Intn(len(d.Vocabulary))], []rune(d.Opts.Alphabet), w.Randomizer)
	d.suggestions.Add(uint64(len(data.checker.FindSuggestions(word))))

	return 1
}

// misspell applies one random replacement, deletion or insertion to word
func misspell(word string, alphabet []rune, rw *benchmark.RandomizerWorker) string {
	r := []rune(word)
	letter := alphabet[rw.Intn(len(alphabet))]

	if len(r) == 0 {
		return string(letter)
	}

	switch rw.Intn(3) {
	case 0:
		r[rw.Intn(len(r))] = letter
	case 1:
		i := rw.Intn(len(r))
		r = append(r[:i], r[i+1:]...)
	default:
		r = slices.Insert(r, rw.Intn(len(r)+1), letter)
	}

	return string(r)
}
