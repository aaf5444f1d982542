package generator

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FlyingPenguinGit/TypingRythm/internal/parser"
)

func beatsEvery(step float64, from, to float64) []float64 {
	var beats []float64
	for t := from; t <= to; t += step {
		beats = append(beats, t)
	}
	return beats
}

func TestGenerateEmptyAnalysis(t *testing.T) {
	t.Parallel()

	notes, difficulty := Generate(parser.Analysis{}, "", rand.New(rand.NewSource(1)))
	assert.Empty(t, notes)
	assert.Equal(t, 1, difficulty)
}

func TestGenerateRespectsSpacingAndLeadIn(t *testing.T) {
	t.Parallel()

	a := parser.Analysis{
		Duration:  60,
		BeatTimes: append([]float64{1.0, 2.2, 2.25, 2.3}, beatsEvery(0.5, 3, 59)...),
	}
	notes, _ := Generate(a, "", rand.New(rand.NewSource(1)))
	require.NotEmpty(t, notes)

	last := -1.0
	for _, n := range notes {
		assert.Greater(t, n.Time, 2.0, "nothing inside the lead-in")
		assert.Greater(t, n.Time-last, 0.15, "minimum note spacing")
		last = n.Time
	}
}

func TestGenerateLyricsMapping(t *testing.T) {
	t.Parallel()

	a := parser.Analysis{
		Duration:  20,
		BeatTimes: []float64{3, 4, 5, 6, 7},
	}
	notes, _ := Generate(a, "Go on", rand.New(rand.NewSource(1)))
	require.Len(t, notes, 5)

	// Spaces are skipped and the text loops.
	assert.Equal(t, []string{"G", "o", "o", "n", "G"}, chars(notes))
	assert.Equal(t, "g", notes[0].Key, "keys are lowercased")
	assert.Equal(t, "o", notes[1].Key)
}

func TestGenerateRandomNotesAreLetters(t *testing.T) {
	t.Parallel()

	a := parser.Analysis{
		Duration:  20,
		BeatTimes: []float64{3, 4, 5, 6},
	}
	notes, _ := Generate(a, "   ", rand.New(rand.NewSource(2)))
	require.Len(t, notes, 4)
	for _, n := range notes {
		require.Len(t, n.Key, 1)
		assert.GreaterOrEqual(t, n.Key[0], byte('a'))
		assert.LessOrEqual(t, n.Key[0], byte('z'))
	}
}

func TestGenerateDeterministicWithSeed(t *testing.T) {
	t.Parallel()

	a := parser.Analysis{
		Duration:   120,
		BeatTimes:  beatsEvery(0.5, 2.5, 119),
		OnsetTimes: beatsEvery(0.73, 3, 119),
	}
	first, d1 := Generate(a, "", rand.New(rand.NewSource(42)))
	second, d2 := Generate(a, "", rand.New(rand.NewSource(42)))
	assert.Equal(t, first, second)
	assert.Equal(t, d1, d2)
}

func TestDifficultyScale(t *testing.T) {
	t.Parallel()

	tests := []struct {
		notes    int
		duration float64
		stars    int
	}{
		{30, 60, 1},
		{90, 60, 2},
		{150, 60, 3},
		{240, 60, 4},
		{300, 60, 5},
		{10, 0, 5}, // unknown duration treated as a second
	}
	for _, test := range tests {
		assert.Equal(t, test.stars, difficulty(test.notes, test.duration),
			"%v notes over %vs", test.notes, test.duration)
	}
}

func chars(notes []parser.Note) []string {
	out := make([]string, len(notes))
	for i, n := range notes {
		out[i] = n.Char
	}
	return out
}
