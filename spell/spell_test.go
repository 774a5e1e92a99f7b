package spell

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/acronis/perfkit-sets/set"
)

func vocabulary(t *testing.T, kind set.Kind, words ...string) set.Set[string] {
	t.Helper()

	s, err := set.New[string](kind, set.HashString)
	require.NoError(t, err)
	set.AddAll(s, words...)

	return s
}

func TestWordExists(t *testing.T) {
	for _, kind := range set.Kinds() {
		t.Run(string(kind), func(t *testing.T) {
			c := NewWordChecker(vocabulary(t, kind, "APPLE", "BANANA"))

			assert.True(t, c.WordExists("APPLE"))
			assert.False(t, c.WordExists("apple"))
			assert.False(t, c.WordExists(""))
		})
	}
}

func TestFindSuggestions(t *testing.T) {
	words := []string{"HELLO", "HELP", "HELD", "HELO", "HE", "LO", "HEL LO", "SHELL", "HEAL"}

	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{name: "swap", input: "HLELO", want: []string{"HELLO", "HELO"}},
		{name: "insert and replace", input: "HELL", want: []string{"SHELL", "HELLO", "HEAL", "HELD", "HELO", "HELP"}},
		{name: "delete", input: "HELLLO", want: []string{"HELLO"}},
		{name: "replace", input: "HALP", want: []string{"HELP"}},
		{name: "split", input: "HELLO", want: []string{"HELO", "HEL LO"}},
		{name: "nothing close", input: "XYZZY", want: nil},
	}

	for _, kind := range set.Kinds() {
		c := NewWordChecker(vocabulary(t, kind, words...))
		for _, tc := range tests {
			t.Run(string(kind)+"/"+tc.name, func(t *testing.T) {
				assert.Equal(t, tc.want, c.FindSuggestions(tc.input))
			})
		}
	}
}

func TestFindSuggestionsOrderAndDuplicates(t *testing.T) {
	// "AB" is reachable from "AAB" both by deleting the first and the second A
	c := NewWordChecker(vocabulary(t, set.KindAVL, "AB", "BAAB", "AAB"))

	assert.Equal(t, []string{"BAAB", "AB"}, c.FindSuggestions("AAB"))
}

func TestFindSuggestionsShortWords(t *testing.T) {
	c := NewWordChecker(vocabulary(t, set.KindSkipList, "A", "I", "AT", ""))

	assert.NotPanics(t, func() { c.FindSuggestions("") })
	assert.Equal(t, []string{"A", "I"}, c.FindSuggestions(""))

	assert.Equal(t, []string{"AT", ""}, c.FindSuggestions("T")[:2])
	assert.NotPanics(t, func() { c.FindSuggestions("Q") })
}

func TestWithAlphabet(t *testing.T) {
	c := NewWordChecker(vocabulary(t, set.KindHash, "ÉTÉ", "ETE"), WithAlphabet("É"))

	assert.Equal(t, []string{"ÉTÉ"}, c.FindSuggestions("ÉTE"))
	assert.Equal(t, []string{"ÉTÉ"}, c.FindSuggestions("TÉ"))
}

func TestCandidates(t *testing.T) {
	c := NewWordChecker(vocabulary(t, set.KindBST), WithAlphabet("XY"))

	var got []string
	c.Candidates("AB", func(candidate string) {
		got = append(got, candidate)
	})

	want := []string{
		"BA",
		"XAB", "YAB", "AXB", "AYB", "ABX", "ABY",
		"B", "A",
		"XB", "YB", "AX", "AY",
		"A B",
	}
	assert.Equal(t, want, got)
}
