// Package generator builds a playable beat map from a track's beat/onset
// analysis, optionally mapping lyrics text onto the note times.
package generator

import (
	"math"
	"math/rand"
	"sort"
	"strings"
	"unicode"

	"github.com/FlyingPenguinGit/TypingRythm/internal/parser"
)

const (
	// Minimum spacing between generated notes; anything tighter plays as
	// an unreadable burst.
	minGapSec = 0.15

	// Nothing is scheduled inside the opening lead-in.
	startOffsetSec = 2.0

	// Onsets closer than this to a beat are redundant with it.
	onsetThresholdSec = 0.1
)

const letters = "abcdefghijklmnopqrstuvwxyz"

// Generate derives notes and a 1-5 difficulty rating from analysis data.
// All beats are kept; off-beat onsets join with a probability that grows
// with their distance from the beat grid, which keeps the map steady rather
// than chaotic. rng drives onset selection and random letters, so a seeded
// source makes generation reproducible.
func Generate(a parser.Analysis, lyrics string, rng *rand.Rand) ([]parser.Note, int) {
	if len(a.BeatTimes) == 0 && len(a.OnsetTimes) == 0 {
		return nil, 1
	}

	combined := make([]float64, 0, len(a.BeatTimes)+len(a.OnsetTimes))
	combined = append(combined, a.BeatTimes...)

	for _, onset := range a.OnsetTimes {
		if len(a.BeatTimes) == 0 {
			continue
		}
		dist := math.Inf(1)
		for _, beat := range a.BeatTimes {
			dist = math.Min(dist, math.Abs(beat-onset))
		}
		if dist > onsetThresholdSec {
			prob := (dist / onsetThresholdSec) / 3
			if rng.Float64() < prob {
				combined = append(combined, onset)
			}
		}
	}
	sort.Float64s(combined)

	times := make([]float64, 0, len(combined))
	last := -1.0
	for _, t := range combined {
		if t-last > minGapSec && t > startOffsetSec {
			times = append(times, t)
			last = t
		}
	}

	var notes []parser.Note
	if strings.TrimSpace(lyrics) != "" {
		notes = lyricsNotes(times, lyrics)
	} else {
		notes = randomNotes(times, rng)
	}

	return notes, difficulty(len(notes), a.Duration)
}

// lyricsNotes maps the text's characters onto the note times in order,
// skipping spaces and looping the text when it runs out.
func lyricsNotes(times []float64, lyrics string) []parser.Note {
	chars := []rune(lyrics)
	notes := make([]parser.Note, 0, len(times))
	textIndex := 0
	for _, t := range times {
		for chars[textIndex%len(chars)] == ' ' {
			textIndex++
		}
		c := chars[textIndex%len(chars)]
		notes = append(notes, parser.Note{
			Time: t,
			Key:  strings.ToLower(string(c)),
			Char: string(c),
		})
		textIndex++
	}
	return notes
}

func randomNotes(times []float64, rng *rand.Rand) []parser.Note {
	notes := make([]parser.Note, 0, len(times))
	for _, t := range times {
		c := rune(letters[rng.Intn(len(letters))])
		notes = append(notes, parser.Note{
			Time: t,
			Key:  string(c),
			Char: string(unicode.ToUpper(c)),
		})
	}
	return notes
}

// difficulty scales notes per second into 1-5 stars.
func difficulty(noteCount int, durationSec float64) int {
	if durationSec <= 0 {
		durationSec = 1
	}
	nps := float64(noteCount) / durationSec
	switch {
	case nps < 1.0:
		return 1
	case nps < 2.0:
		return 2
	case nps < 3.0:
		return 3
	case nps < 4.5:
		return 4
	}
	return 5
}
