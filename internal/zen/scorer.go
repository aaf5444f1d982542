// Package zen scores free typing against a track's rhythm grid instead of
// discrete notes: how beat-aligned, how evenly spaced, and how consistent
// with the player's own recent timing patterns a completed word was.
package zen

import (
	"math"
)

const (
	// rhythmWindowMs is how close a keystroke must land to a rhythm point
	// to count as aligned.
	rhythmWindowMs = 200

	// shortWordScore is returned when a word carries too little timing
	// signal to score, and stands in for any term that cannot be computed.
	shortWordScore = 20

	maxPatternHistory  = 10
	comparedPatterns   = 5
	alignmentMaxScore  = 40
	coherenceMaxScore  = 30
	patternMaxScore    = 30
	coherenceStdevNorm = 100
)

// Scorer accumulates rhythm statistics across a zen run. Rhythm points are
// seconds, keystroke timestamps are milliseconds.
type Scorer struct {
	points  []float64
	history [][]float64 // normalized interval patterns, oldest first

	keypresses int
	rhythmHits int
}

func NewScorer(points []float64) *Scorer {
	return &Scorer{points: points}
}

// KeystrokeTyped records one accepted keystroke for the session's
// rhythm-accuracy stat.
func (s *Scorer) KeystrokeTyped() {
	s.keypresses++
}

// RhythmAccuracy is the fraction of accepted keystrokes that landed on a
// rhythm point, 0 before any input.
func (s *Scorer) RhythmAccuracy() float64 {
	if s.keypresses == 0 {
		return 0
	}
	return float64(s.rhythmHits) / float64(s.keypresses)
}

// ScoreWord scores a completed word from its keystroke timestamps and
// appends its timing pattern to the history. Words with fewer than two
// keystrokes carry no rhythm signal and get the flat minimum.
func (s *Scorer) ScoreWord(timestamps []float64) int {
	if len(timestamps) < 2 {
		return shortWordScore
	}

	total := s.scoreBeatAlignment(timestamps) +
		s.scoreCoherence(timestamps) +
		s.scorePatternConsistency(timestamps)

	s.storePattern(timestamps)

	return int(math.Round(total))
}

// scoreBeatAlignment rewards keystrokes landing near any rhythm point, and
// feeds the session rhythm-hit counter.
func (s *Scorer) scoreBeatAlignment(timestamps []float64) float64 {
	aligned := 0
	for _, ks := range timestamps {
		closest := math.Inf(1)
		for _, t := range s.points {
			d := math.Abs(ks - t*1000)
			if d < closest {
				closest = d
			}
		}
		if closest < rhythmWindowMs {
			aligned++
			s.rhythmHits++
		}
	}
	return float64(aligned) / float64(len(timestamps)) * alignmentMaxScore
}

// scoreCoherence rewards evenly spaced typing regardless of absolute tempo.
func (s *Scorer) scoreCoherence(timestamps []float64) float64 {
	if len(timestamps) < 3 {
		return shortWordScore
	}
	intervals := intervalsOf(timestamps)

	mean := 0.0
	for _, iv := range intervals {
		mean += iv
	}
	mean /= float64(len(intervals))

	variance := 0.0
	for _, iv := range intervals {
		variance += (iv - mean) * (iv - mean)
	}
	variance /= float64(len(intervals))
	stdev := math.Sqrt(variance)

	coherence := math.Max(0, 1-stdev/coherenceStdevNorm)
	return coherence * coherenceMaxScore
}

// scorePatternConsistency compares the word's normalized interval shape
// against the most recent stored patterns.
func (s *Scorer) scorePatternConsistency(timestamps []float64) float64 {
	if len(s.history) == 0 {
		return shortWordScore
	}

	current := normalizePattern(intervalsOf(timestamps))

	recent := s.history
	if len(recent) > comparedPatterns {
		recent = recent[len(recent)-comparedPatterns:]
	}

	total := 0.0
	for _, past := range recent {
		total += patternSimilarity(current, past)
	}
	return total / float64(len(recent)) * patternMaxScore
}

func (s *Scorer) storePattern(timestamps []float64) {
	if len(timestamps) < 2 {
		return
	}
	s.history = append(s.history, normalizePattern(intervalsOf(timestamps)))
	if len(s.history) > maxPatternHistory {
		s.history = s.history[1:]
	}
}

func intervalsOf(timestamps []float64) []float64 {
	intervals := make([]float64, 0, len(timestamps)-1)
	for i := 1; i < len(timestamps); i++ {
		intervals = append(intervals, timestamps[i]-timestamps[i-1])
	}
	return intervals
}

// normalizePattern divides each interval by the sequence mean, giving a
// scale invariant shape vector.
func normalizePattern(intervals []float64) []float64 {
	if len(intervals) == 0 {
		return nil
	}
	mean := 0.0
	for _, iv := range intervals {
		mean += iv
	}
	mean /= float64(len(intervals))

	pattern := make([]float64, len(intervals))
	for i, iv := range intervals {
		pattern[i] = iv / mean
	}
	return pattern
}

// patternSimilarity is a position-wise absolute difference over the shared
// prefix, folded into a 0..1 similarity.
func patternSimilarity(a, b []float64) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	if n == 0 {
		return 0
	}
	diff := 0.0
	for i := 0; i < n; i++ {
		diff += math.Abs(a[i] - b[i])
	}
	return math.Max(0, 1-diff/float64(n))
}
