package engine

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	jsoniter "github.com/json-iterator/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/acronis/perfkit-sets/benchmark"
	"github.com/acronis/perfkit-sets/logger"
	"github.com/acronis/perfkit-sets/set"
	"github.com/acronis/perfkit-sets/spell"
)

func defaultOpts() BenchOpts {
	return BenchOpts{
		Source:    "synthetic://300?seed=2",
		Case:      "upper",
		MissRatio: 0.5,
		Format:    formatText,
		Hash:      "xxh3",
		Alphabet:  spell.DefaultAlphabet,
	}
}

func newTestBench(t *testing.T, opts BenchOpts) (*benchmark.Benchmark, *bytes.Buffer) {
	t.Helper()

	var out bytes.Buffer

	b := benchmark.NewBenchmark()
	b.OptsInitialized = true
	b.Logger = logger.NewPlaneLoggerWithOutput(io.Discard, logger.LevelDebug, false)
	b.Out = &out
	b.CommonOpts.Workers = 2
	b.CommonOpts.Loops = 200
	b.CommonOpts.Duration = 5
	b.CommonOpts.Repeat = 1
	b.CommonOpts.RandSeed = 1

	testOpts := &TestOpts{BenchOpts: opts}
	b.TestOpts = testOpts

	d, err := NewSetTestData(&testOpts.BenchOpts)
	require.NoError(t, err)
	require.NoError(t, d.LoadVocabulary(context.Background(), b.Logger, b.CommonOpts.RandSeed))
	b.Vault = d

	b.PrintScore = func(score benchmark.Score) {
		printScore(b, score)
	}

	return b, &out
}

func TestNewSetTestDataValidation(t *testing.T) {
	for name, mutate := range map[string]func(o *BenchOpts){
		"kind":       func(o *BenchOpts) { o.Sets = "avl,btree" },
		"case":       func(o *BenchOpts) { o.Case = "title" },
		"hash":       func(o *BenchOpts) { o.Hash = "md5" },
		"format":     func(o *BenchOpts) { o.Format = "xml" },
		"miss ratio": func(o *BenchOpts) { o.MissRatio = 1.5 },
		"alphabet":   func(o *BenchOpts) { o.Alphabet = "" },
		"limit":      func(o *BenchOpts) { o.Limit = -1 },
	} {
		t.Run(name, func(t *testing.T) {
			opts := defaultOpts()
			mutate(&opts)
			_, err := NewSetTestData(&opts)
			assert.Error(t, err)
		})
	}

	opts := defaultOpts()
	d, err := NewSetTestData(&opts)
	require.NoError(t, err)
	assert.Equal(t, set.Kinds(), d.Kinds)

	opts.Case = "lower"
	_, err = NewSetTestData(&opts)
	require.NoError(t, err)
	assert.Equal(t, strings.ToLower(spell.DefaultAlphabet), opts.Alphabet)
}

func TestParseKinds(t *testing.T) {
	kinds, err := parseKinds(" avl, HASH,avl")
	require.NoError(t, err)
	assert.Equal(t, []set.Kind{set.KindAVL, set.KindHash}, kinds)

	kinds, err = parseKinds("")
	require.NoError(t, err)
	assert.Equal(t, set.Kinds(), kinds)

	_, err = parseKinds("avl,btree")
	assert.ErrorIs(t, err, set.ErrUnknownKind)
}

func TestLoadVocabularyDropsDuplicates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "words.txt")
	require.NoError(t, os.WriteFile(path, []byte("hello\nhelp\nHELLO\n\nheld\n"), 0o600))

	opts := defaultOpts()
	opts.Source = "file://" + path

	d, err := NewSetTestData(&opts)
	require.NoError(t, err)
	require.NoError(t, d.LoadVocabulary(context.Background(), logger.NewPlaneLoggerWithOutput(io.Discard, logger.LevelError, false), 1))

	assert.Equal(t, []string{"HELLO", "HELP", "HELD"}, d.Vocabulary)
	require.NotEmpty(t, d.Misses)
	for _, m := range d.Misses {
		assert.NotContains(t, d.Vocabulary, m)
	}
}

func TestLoadVocabularyLimitCountsDuplicates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "words.txt")
	require.NoError(t, os.WriteFile(path, []byte("hello\nHELLO\nhelp\nheld\n"), 0o600))

	opts := defaultOpts()
	opts.Source = "file://" + path
	opts.Limit = 3

	d, err := NewSetTestData(&opts)
	require.NoError(t, err)
	require.NoError(t, d.LoadVocabulary(context.Background(), logger.NewPlaneLoggerWithOutput(io.Discard, logger.LevelError, false), 1))

	assert.Equal(t, []string{"HELLO", "HELP"}, d.Vocabulary)
}

func TestLoadVocabularyEmptySource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.txt")
	require.NoError(t, os.WriteFile(path, []byte("\n\n"), 0o600))

	opts := defaultOpts()
	opts.Source = "file://" + path

	d, err := NewSetTestData(&opts)
	require.NoError(t, err)
	assert.Error(t, d.LoadVocabulary(context.Background(), logger.NewPlaneLoggerWithOutput(io.Discard, logger.LevelError, false), 1))
}

func TestAbsentWords(t *testing.T) {
	vocabulary := []string{"A", "B", "AB", "BA"}
	ref := set.NewAVL[string]()
	set.AddAll(ref, vocabulary...)

	misses := absentWords(vocabulary, ref, []rune("AB"), benchmark.NewRandomizerWorker(1, 0))
	require.NotEmpty(t, misses)
	seen := make(map[string]bool)
	for _, m := range misses {
		assert.False(t, ref.Contains(m), m)
		assert.False(t, seen[m], "duplicate %s", m)
		seen[m] = true
	}
}

func TestMisspell(t *testing.T) {
	rw := benchmark.NewRandomizerWorker(1, 0)
	for i := 0; i < 100; i++ {
		w := misspell("HELLO", []rune("XYZ"), rw)
		assert.InDelta(t, 5, len(w), 1, w)
		assert.Regexp(t, "^[HELOXYZ]+$", w)
	}
	assert.Len(t, misspell("", []rune("X"), rw), 1)
}

func TestAddTest(t *testing.T) {
	opts := defaultOpts()
	opts.Sets = "avl,hash"
	opts.Validate = true
	opts.Test = TestAdd.Name

	b, out := newTestBench(t, opts)
	require.NoError(t, executeTests(b, TestAdd.Name))

	assert.Equal(t, uint64(200), b.Score.Loops)
	assert.Equal(t, 2, b.Score.Workers)
	assert.Equal(t, "words/sec", b.Score.Metric)

	d := b.Vault.(*SetTestData)
	assert.Len(t, d.scores[set.KindAVL], 1)
	assert.Len(t, d.scores[set.KindHash], 1)

	assert.Contains(t, out.String(), "test: add; set: avl; size: 100; ")
	assert.Contains(t, out.String(), "test: add; set: hash; size: 100; ")
	assert.Contains(t, out.String(), "words/sec")
}

func TestContainsTest(t *testing.T) {
	opts := defaultOpts()
	opts.Sets = "skiplist"
	opts.Test = TestContains.Name

	b, out := newTestBench(t, opts)
	require.NoError(t, executeTests(b, TestContains.Name))

	d := b.Vault.(*SetTestData)
	assert.Equal(t, uint64(200), d.hits.Load()+d.misses.Load())
	assert.NotZero(t, d.hits.Load())
	assert.NotZero(t, d.misses.Load())
	assert.Contains(t, out.String(), "test: contains; set: skiplist; size: 300; ")
}

func TestContainsTestWithoutMisses(t *testing.T) {
	opts := defaultOpts()
	opts.Sets = "bst"
	opts.MissRatio = 0

	b, _ := newTestBench(t, opts)
	require.NoError(t, executeTests(b, TestContains.Name))

	d := b.Vault.(*SetTestData)
	assert.Equal(t, uint64(200), d.hits.Load())
	assert.Zero(t, d.misses.Load())
}

func TestSuggestTest(t *testing.T) {
	opts := defaultOpts()
	opts.Sets = "hash"
	opts.Hash = "city"

	b, out := newTestBench(t, opts)
	require.NoError(t, executeTests(b, TestSuggest.Name))

	assert.Equal(t, uint64(200), b.Score.Loops)
	assert.Equal(t, "suggestions/sec", b.Score.Metric)
	assert.Contains(t, out.String(), "test: suggest; set: hash; size: 300; ")
}

func TestAllTestsPrintGeomean(t *testing.T) {
	opts := defaultOpts()
	opts.Sets = "bst,avl"
	opts.Test = TestAll.Name

	b, out := newTestBench(t, opts)
	b.CommonOpts.Loops = 30
	require.NoError(t, executeTests(b, TestAll.Name))

	d := b.Vault.(*SetTestData)
	assert.Len(t, d.scores[set.KindBST], 3)
	assert.Len(t, d.scores[set.KindAVL], 3)

	text := out.String()
	assert.Equal(t, 6, strings.Count(text, "test: "))
	assert.Contains(t, text, "bst geomean: ")
	assert.Contains(t, text, "avl geomean: ")
}

func TestJSONScores(t *testing.T) {
	opts := defaultOpts()
	opts.Sets = "skiplist"
	opts.Format = formatJSON
	opts.Test = TestAll.Name

	b, out := newTestBench(t, opts)
	require.NoError(t, executeTests(b, TestAll.Name))

	var reports []ScoreReport
	var geomeans []GeomeanReport
	scanner := bufio.NewScanner(out)
	for scanner.Scan() {
		line := scanner.Bytes()
		if bytes.Contains(line, []byte(`"geomean"`)) {
			var g GeomeanReport
			require.NoError(t, jsoniter.Unmarshal(line, &g))
			geomeans = append(geomeans, g)
			continue
		}

		var r ScoreReport
		require.NoError(t, jsoniter.Unmarshal(line, &r), string(line))
		reports = append(reports, r)
	}

	require.Len(t, reports, 3)
	assert.Equal(t, "add", reports[0].Test)
	assert.Equal(t, "contains", reports[1].Test)
	assert.Equal(t, "suggest", reports[2].Test)
	for _, r := range reports {
		assert.Equal(t, "skiplist", r.Set)
		assert.Equal(t, uint64(200), r.Loops)
		assert.Equal(t, 2, r.Workers)
	}
	assert.Equal(t, 300, reports[1].Size)

	require.Len(t, geomeans, 1)
	assert.Equal(t, "skiplist", geomeans[0].Set)
	assert.Greater(t, geomeans[0].Geomean, 0.0)
}

func TestExecuteUnknownTest(t *testing.T) {
	b, _ := newTestBench(t, defaultOpts())
	assert.Error(t, executeTests(b, "delete"))
}

func TestCheckWord(t *testing.T) {
	path := filepath.Join(t.TempDir(), "words.txt")
	require.NoError(t, os.WriteFile(path, []byte("hello\nhelp\n"), 0o600))

	opts := defaultOpts()
	opts.Source = "file://" + path
	opts.Sets = "avl"
	opts.Validate = true

	d, err := NewSetTestData(&opts)
	require.NoError(t, err)
	require.NoError(t, d.LoadVocabulary(context.Background(), logger.NewPlaneLoggerWithOutput(io.Discard, logger.LevelError, false), 1))

	var out bytes.Buffer
	require.NoError(t, checkWord(&out, d, "hellp"))
	assert.Equal(t, "HELLP: not found\nsuggestions: HELP, HELLO\n", out.String())

	out.Reset()
	require.NoError(t, checkWord(&out, d, "xyzzy"))
	assert.Equal(t, "XYZZY: not found\nno suggestions\n", out.String())

	out.Reset()
	require.NoError(t, checkWord(&out, d, "help"))
	assert.True(t, strings.HasPrefix(out.String(), "HELP: exists\n"))
}

func TestListTests(t *testing.T) {
	var out bytes.Buffer
	listTests(&out)

	text := out.String()
	for _, s := range []string{"add", "contains", "suggest", "all", "skiplist", "synthetic://", "parquet://", "sqlite://"} {
		assert.Contains(t, text, s)
	}
}
