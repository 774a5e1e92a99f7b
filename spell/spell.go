// Package spell suggests corrections for misspelled words using any set of
// valid words that answers membership queries.
package spell

import (
	"github.com/acronis/perfkit-sets/set"
)

// DefaultAlphabet is used for insertions and replacements, vocabularies are upper-case
const DefaultAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// Option configures a WordChecker
type Option func(*WordChecker)

// WithAlphabet replaces the letters tried for insertions and replacements
func WithAlphabet(alphabet string) Option {
	return func(c *WordChecker) {
		c.alphabet = []rune(alphabet)
	}
}

// WordChecker checks words against a vocabulary and proposes repairs
type WordChecker struct {
	words    set.Reader[string]
	alphabet []rune
}

// NewWordChecker creates a checker reading the given vocabulary
func NewWordChecker(words set.Reader[string], opts ...Option) *WordChecker {
	c := &WordChecker{
		words:    words,
		alphabet: []rune(DefaultAlphabet),
	}
	for _, opt := range opts {
		opt(c)
	}

	return c
}

// WordExists reports whether word is in the vocabulary
func (c *WordChecker) WordExists(word string) bool {
	return c.words.Contains(word)
}

// FindSuggestions returns the vocabulary words one edit away from word, without
// duplicates and in the order the edits are tried: adjacent swaps, insertions,
// deletions, replacements, splits into two words
func (c *WordChecker) FindSuggestions(word string) []string {
	var suggestions []string
	seen := make(map[string]struct{})

	c.Candidates(word, func(candidate string) {
		if candidate == word {
			return
		}
		if _, ok := seen[candidate]; ok {
			return
		}
		if c.words.Contains(candidate) {
			seen[candidate] = struct{}{}
			suggestions = append(suggestions, candidate)
		}
	})

	return suggestions
}

// Candidates calls emit for every single edit of word, duplicates included
func (c *WordChecker) Candidates(word string, emit func(candidate string)) {
	letters := []rune(word)
	n := len(letters)
	buf := make([]rune, 0, n+1)

	// swap each adjacent pair
	for i := 0; i+1 < n; i++ {
		buf = append(buf[:0], letters...)
		buf[i], buf[i+1] = buf[i+1], buf[i]
		emit(string(buf))
	}

	// insert a letter before each position and at the end
	for i := 0; i <= n; i++ {
		for _, l := range c.alphabet {
			buf = append(buf[:0], letters[:i]...)
			buf = append(buf, l)
			buf = append(buf, letters[i:]...)
			emit(string(buf))
		}
	}

	// delete each letter
	for i := 0; i < n; i++ {
		buf = append(buf[:0], letters[:i]...)
		buf = append(buf, letters[i+1:]...)
		emit(string(buf))
	}

	// replace each letter
	for i := 0; i < n; i++ {
		for _, l := range c.alphabet {
			buf = append(buf[:0], letters...)
			buf[i] = l
			emit(string(buf))
		}
	}

	// split in two words
	for i := 1; i < n; i++ {
		buf = append(buf[:0], letters[:i]...)
		buf = append(buf, ' ')
		buf = append(buf, letters[i:]...)
		emit(string(buf))
	}
}
