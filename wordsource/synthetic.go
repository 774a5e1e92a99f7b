package wordsource

import (
	"context"
	"fmt"
	"math/rand"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

func init() {
	if err := Register("synthetic", openSynthetic); err != nil {
		panic(err)
	}
	if err := Register("synthetic-uuid", openSynthetic); err != nil {
		panic(err)
	}
}

const syntheticAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// syntheticSource generates count distinct words from a seeded generator,
// the same connection string always yields the same words in the same order
type syntheticSource struct {
	count    int
	seed     int64
	minLen   int
	maxLen   int
	uuids    bool
	wordCase Case
}

func openSynthetic(cfg Config) (Source, error) {
	scheme, uri, err := ParseScheme(cfg.ConnString)
	if err != nil {
		return nil, err
	}

	countStr, params, err := splitParams(uri, "seed", "min", "max")
	if err != nil {
		return nil, err
	}

	s := &syntheticSource{
		seed:     1,
		minLen:   3,
		maxLen:   10,
		uuids:    scheme == "synthetic-uuid",
		wordCase: cfg.Case,
	}

	if s.count, err = strconv.Atoi(strings.TrimSuffix(countStr, "/")); err != nil || s.count < 0 {
		return nil, fmt.Errorf("invalid words count '%s'", countStr)
	}

	if v, ok := params["seed"]; ok {
		if s.seed, err = strconv.ParseInt(v, 10, 64); err != nil {
			return nil, fmt.Errorf("invalid seed '%s': %w", v, err)
		}
	}
	if v, ok := params["min"]; ok {
		if s.minLen, err = strconv.Atoi(v); err != nil {
			return nil, fmt.Errorf("invalid min length '%s': %w", v, err)
		}
	}
	if v, ok := params["max"]; ok {
		if s.maxLen, err = strconv.Atoi(v); err != nil {
			return nil, fmt.Errorf("invalid max length '%s': %w", v, err)
		}
	}

	if s.minLen < 1 || s.maxLen < s.minLen {
		return nil, fmt.Errorf("invalid word length range %d...%d", s.minLen, s.maxLen)
	}

	return s, nil
}

func (s *syntheticSource) word(r *rand.Rand) string {
	if s.uuids {
		id, err := uuid.NewRandomFromReader(r)
		if err != nil {
			return ""
		}
		return strings.ToUpper(id.String())
	}

	var b strings.Builder
	n := s.minLen + r.Intn(s.maxLen-s.minLen+1)
	for i := 0; i < n; i++ {
		b.WriteByte(syntheticAlphabet[r.Intn(len(syntheticAlphabet))])
	}

	return b.String()
}

func (s *syntheticSource) Words(ctx context.Context, fn func(word string) bool) error {
	r := rand.New(rand.NewSource(s.seed))
	seen := make(map[string]struct{}, s.count)

	// a short length range may hold fewer distinct words than requested
	attempts := 0
	for len(seen) < s.count {
		if attempts > 100*s.count {
			return fmt.Errorf("cannot generate %d distinct words of %d...%d letters", s.count, s.minLen, s.maxLen)
		}
		attempts++

		w := s.word(r)
		if _, ok := seen[w]; ok || w == "" {
			continue
		}
		seen[w] = struct{}{}

		if err := ctx.Err(); err != nil {
			return err
		}
		if !fn(s.wordCase.Normalize(w)) {
			return nil
		}
	}

	return nil
}

func (s *syntheticSource) Close() error {
	return nil
}
