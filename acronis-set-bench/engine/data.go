package engine

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"go.uber.org/atomic"

	"github.com/acronis/perfkit-sets/benchmark"
	"github.com/acronis/perfkit-sets/logger"
	"github.com/acronis/perfkit-sets/set"
	"github.com/acronis/perfkit-sets/spell"
	"github.com/acronis/perfkit-sets/wordsource"
)

const (
	formatText = "text"
	formatJSON = "json"

	// maxMisses bounds the number of absent words prepared for the 'contains' test
	maxMisses = 100000
)

// SetTestData is shared by all workers of a test run
type SetTestData struct {
	Opts  *BenchOpts
	Kinds []set.Kind
	Case  wordsource.Case
	Hash  set.HashFunc[string]

	Vocabulary []string // distinct words in source order
	Misses     []string // words guaranteed to be absent from Vocabulary

	TestDesc *TestDesc
	Kind     set.Kind

	hits        atomic.Uint64
	misses      atomic.Uint64
	suggestions atomic.Uint64

	scores map[set.Kind][]benchmark.Score
}

// parseKinds converts a comma separated list of kinds, an empty list means all kinds
func parseKinds(list string) ([]set.Kind, error) {
	if strings.TrimSpace(list) == "" {
		return set.Kinds(), nil
	}

	var kinds []set.Kind
	for _, name := range strings.Split(list, ",") {
		k, err := set.ParseKind(name)
		if err != nil {
			return nil, err
		}
		if !slices.Contains(kinds, k) {
			kinds = append(kinds, k)
		}
	}

	return kinds, nil
}

// NewSetTestData validates the options and prepares an empty test data
func NewSetTestData(opts *BenchOpts) (*SetTestData, error) {
	kinds, err := parseKinds(opts.Sets)
	if err != nil {
		return nil, err
	}

	c, err := wordsource.ParseCase(opts.Case)
	if err != nil {
		return nil, err
	}

	hash, ok := set.StringHashFunc(opts.Hash)
	if !ok {
		return nil, fmt.Errorf("unknown hash function '%s', expected xxh3|city", opts.Hash)
	}

	if opts.Format != formatText && opts.Format != formatJSON {
		return nil, fmt.Errorf("unknown output format '%s', expected text|json", opts.Format)
	}

	if opts.MissRatio < 0 || opts.MissRatio > 1 {
		return nil, fmt.Errorf("--miss-ratio should be within 0...1, got %v", opts.MissRatio)
	}

	if opts.Alphabet == "" {
		return nil, errors.New("--alphabet should not be empty")
	}
	if c == wordsource.CaseLower && opts.Alphabet == spell.DefaultAlphabet {
		opts.Alphabet = strings.ToLower(opts.Alphabet)
	}

	if opts.Limit < 0 {
		return nil, errors.New("--limit should be >= 0")
	}

	return &SetTestData{
		Opts:   opts,
		Kinds:  kinds,
		Case:   c,
		Hash:   hash,
		scores: make(map[set.Kind][]benchmark.Score),
	}, nil
}

// NewSet creates an empty set of the given kind with the configured hash function
func (d *SetTestData) NewSet(kind set.Kind) (set.Set[string], error) {
	return set.New[string](kind, d.Hash)
}

// LoadVocabulary reads the word source, drops duplicates and prepares the absent words
func (d *SetTestData) LoadVocabulary(ctx context.Context, lg logger.Logger, seed int64) error {
	src, err := wordsource.Open(wordsource.Config{
		ConnString: d.Opts.Source,
		Case:       d.Case,
		Logger:     lg,
	})
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := src.Close(); closeErr != nil {
			lg.Warn("cannot close word source: %v", closeErr)
		}
	}()

	seen := &vocabularyRecorder{
		Set: set.NewHashSet[string](d.Hash, set.WithCapacity(max(d.Opts.Limit, 1024))),
	}

	read, err := wordsource.Load(ctx, src, seen, d.Opts.Limit)
	if err != nil {
		return fmt.Errorf("cannot read words: %w", err)
	}
	d.Vocabulary = seen.order

	if len(d.Vocabulary) == 0 {
		return errors.New("word source returned no words")
	}

	d.Misses = absentWords(d.Vocabulary, seen, []rune(d.Opts.Alphabet), benchmark.NewRandomizerWorker(seed, logger.MainWorkerID))

	lg.Info("loaded %d distinct words out of %d, prepared %d absent words", len(d.Vocabulary), read, len(d.Misses))

	return nil
}

// vocabularyRecorder remembers the first occurrence of every added word in order
type vocabularyRecorder struct {
	set.Set[string]
	order []string
}

func (r *vocabularyRecorder) Add(word string) {
	if r.Contains(word) {
		return
	}
	r.Set.Add(word)
	r.order = append(r.order, word)
}

// absentWords derives words that vocabulary does not contain by inserting one letter into vocabulary words
func absentWords(vocabulary []string, vocabularySet set.Reader[string], alphabet []rune, rw *benchmark.RandomizerWorker) []string {
	want := min(len(vocabulary), maxMisses)
	misses := make([]string, 0, want)
	taken := make(map[string]struct{}, want)

	for attempt := 0; len(misses) < want && attempt < 4*want; attempt++ {
		r := []rune(vocabulary[rw.Intn(len(vocabulary))])
		r = slices.Insert(r, rw.Intn(len(r)+1), alphabet[rw.Intn(len(alphabet))])

		w := string(r)
		if vocabularySet.Contains(w) {
			continue
		}
		if _, ok := taken[w]; ok {
			continue
		}
		taken[w] = struct{}{}
		misses = append(misses, w)
	}

	return misses
}

func (d *SetTestData) resetCounters() {
	d.hits.Store(0)
	d.misses.Store(0)
	d.suggestions.Store(0)
}

// setSize returns the size of the largest worker set of the current run
func (d *SetTestData) setSize(workers []*benchmark.BenchmarkWorker) int {
	var size int
	for _, w := range workers {
		if w == nil {
			continue
		}
		if data, ok := w.Data.(*SetWorkerData); ok && data.set != nil {
			size = max(size, data.set.Size())
		}
	}

	return size
}

func validate(s set.Set[string]) error {
	if v, ok := s.(set.Validator); ok {
		return v.Validate()
	}

	return nil
}
